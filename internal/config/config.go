// Package config holds operator-level configuration for an Anonimiser
// installation: data directory, recognizer pattern file, score floor, NER
// backend URL, audit signing key and input size limits. Set via env vars
// (ANONIMISER_*) or a config file (anonimiser.config.yaml).
//
// The signing key is the only piece of crypto material here. When unset we
// derive a deterministic per-machine fallback and warn, so `anonimiser serve`
// works out of the box while still signing audit records.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/AutmateStudio/Anonimiser/internal/cryptoutil"
)

// Viper keys. Each maps to an env var with the ANONIMISER_ prefix
// (e.g. "signing_key" → ANONIMISER_SIGNING_KEY) and to a YAML field
// in anonimiser.config.yaml.
const (
	KeyDataDir     = "data_dir"
	KeyPatternFile = "pattern_file"
	KeyMinScore    = "min_score"
	KeyNERURL      = "ner_url"
	KeySigningKey  = "signing_key"
	KeyMaxTextKB   = "max_text_kb"
)

// Defaults that do not involve crypto material.
const (
	DefaultMinScore  = 0.5
	DefaultMaxTextKB = 64
)

// Config holds resolved operator-level configuration for an Anonimiser
// process.
type Config struct {
	DataDir     string  // Base directory for all state (~/.anonimiser)
	PatternFile string  // Extra recognizer YAML merged over the built-in set
	MinScore    float64 // Candidates below this score are discarded
	NERURL      string  // NER service endpoint; empty disables the NER detector
	SigningKey  string  // HMAC-SHA256 key for audit signing (≥32 bytes)
	MaxTextKB   int     // Maximum request text size in KB

	usingDefaultSigningKey bool
}

// UsingDefaultSigningKey returns true if the audit signing key was derived
// rather than set explicitly. Commands should warn when this is the case.
func (c *Config) UsingDefaultSigningKey() bool {
	return c.usingDefaultSigningKey
}

// AuditDBPath returns the full path to the audit SQLite database.
func (c *Config) AuditDBPath() string {
	return filepath.Join(c.DataDir, "audit.db")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func (c *Config) EnsureDataDir() error {
	return os.MkdirAll(c.DataDir, 0o700)
}

// WarnIfDefaultKey logs a warning when the signing key is not explicitly set.
func (c *Config) WarnIfDefaultKey() {
	if c.usingDefaultSigningKey {
		log.Warn().Msg("Using generated default ANONIMISER_SIGNING_KEY; set via env var or config file for production")
	}
}

func init() {
	viper.SetEnvPrefix("ANONIMISER")
	viper.AutomaticEnv()
	viper.SetDefault(KeyMinScore, DefaultMinScore)
	viper.SetDefault(KeyMaxTextKB, DefaultMaxTextKB)
}

// Load reads configuration from Viper (which merges env vars, config
// file, and defaults) and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{
		DataDir:     resolveDataDir(),
		PatternFile: viper.GetString(KeyPatternFile),
		MinScore:    viper.GetFloat64(KeyMinScore),
		NERURL:      viper.GetString(KeyNERURL),
		SigningKey:  viper.GetString(KeySigningKey),
		MaxTextKB:   viper.GetInt(KeyMaxTextKB),
	}

	if cfg.SigningKey == "" {
		cfg.SigningKey = deriveDefaultKey(cfg.DataDir, "audit-signing")
		cfg.usingDefaultSigningKey = true
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func resolveDataDir() string {
	if dir := viper.GetString(KeyDataDir); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".anonimiser"
	}
	return filepath.Join(home, ".anonimiser")
}

// deriveDefaultKey produces a deterministic 32-byte fallback key from the
// data directory path and a salt. Not cryptographically strong; it exists
// solely so the service runs out of the box while still signing audit
// records with a per-machine-unique key.
func deriveDefaultKey(dataDir, salt string) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("anonimiser:%s:%s", dataDir, salt)))
	return hex.EncodeToString(h[:])
}

func (c *Config) validate() error {
	if _, err := cryptoutil.ResolveKey(c.SigningKey, 32); err != nil {
		return fmt.Errorf("signing_key: %w; set ANONIMISER_SIGNING_KEY", err)
	}
	if c.MinScore < 0 || c.MinScore > 1 {
		return fmt.Errorf("min_score must be within [0,1] (got %v)", c.MinScore)
	}
	if c.MaxTextKB <= 0 {
		return fmt.Errorf("max_text_kb must be positive")
	}
	return nil
}
