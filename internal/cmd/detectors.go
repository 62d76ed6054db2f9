package cmd

import (
	"fmt"

	"github.com/AutmateStudio/Anonimiser/internal/anonymize"
	"github.com/AutmateStudio/Anonimiser/internal/config"
	"github.com/AutmateStudio/Anonimiser/internal/detect"
)

// buildEngine wires the detector set from config: the built-in regex
// recognizers (plus any operator pattern file) and, when a URL is
// configured, the external NER service. Returns the engine and whether NER
// is part of it.
func buildEngine(cfg *config.Config) (*detect.Engine, bool, error) {
	regexOpts := []detect.Option{detect.WithMinScore(cfg.MinScore)}
	if cfg.PatternFile != "" {
		regexOpts = append(regexOpts, detect.WithPatternFile(cfg.PatternFile))
	}
	regexDetector, err := detect.NewRegexDetector(regexOpts...)
	if err != nil {
		return nil, false, fmt.Errorf("building regex detector: %w", err)
	}

	detectors := []detect.Detector{regexDetector}
	nerEnabled := cfg.NERURL != ""
	if nerEnabled {
		detectors = append(detectors, detect.NewNERClient(cfg.NERURL, 0))
	}

	return detect.NewEngine(detectors...), nerEnabled, nil
}

// buildAnonymizer is the one-shot variant used by redact and batch.
func buildAnonymizer(cfg *config.Config) (*anonymize.Anonymizer, error) {
	engine, _, err := buildEngine(cfg)
	if err != nil {
		return nil, err
	}
	return anonymize.New(engine), nil
}
