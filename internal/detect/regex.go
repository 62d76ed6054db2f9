package detect

import (
	"context"
	"fmt"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"

	"github.com/AutmateStudio/Anonimiser/internal/entity"
	"github.com/AutmateStudio/Anonimiser/patterns"
)

const (
	// DefaultMinScore is the minimum pattern confidence for a match to be
	// reported as a candidate at all; fusion handles everything above it.
	DefaultMinScore = 0.5
)

// RegexDetector proposes candidate spans from the compiled recognizer
// registry. It is the rule-based half of the detector pair; a NER model
// covers what patterns cannot.
type RegexDetector struct {
	patterns []Pattern
	minScore float64
}

// Option configures a RegexDetector via the functional options pattern.
type Option func(*regexConfig)

type regexConfig struct {
	patternFile       string
	enabledEntities   []string
	disabledEntities  []string
	customRecognizers []RecognizerConfig
	minScore          float64
}

// WithPatternFile loads additional recognizers from an operator YAML file.
// A missing file is silently skipped.
func WithPatternFile(path string) Option {
	return func(c *regexConfig) { c.patternFile = path }
}

// WithEnabledEntities sets a whitelist of entity categories.
func WithEnabledEntities(entities []string) Option {
	return func(c *regexConfig) { c.enabledEntities = entities }
}

// WithDisabledEntities sets a blacklist of entity categories.
func WithDisabledEntities(entities []string) Option {
	return func(c *regexConfig) { c.disabledEntities = entities }
}

// WithCustomRecognizers adds per-deployment recognizer definitions on top of
// the embedded defaults and the operator file.
func WithCustomRecognizers(recognizers []RecognizerConfig) Option {
	return func(c *regexConfig) { c.customRecognizers = recognizers }
}

// WithMinScore overrides the default minimum confidence threshold.
func WithMinScore(score float64) Option {
	return func(c *regexConfig) { c.minScore = score }
}

// DefaultRecognizers returns the built-in Russian recognizers parsed from the
// embedded pii_ru.yaml. First layer in the merge chain.
func DefaultRecognizers() ([]RecognizerConfig, error) {
	rf, err := ParseRecognizerFile(patterns.PIIRUYAML())
	if err != nil {
		return nil, fmt.Errorf("parsing embedded recognizers: %w", err)
	}
	return rf.Recognizers, nil
}

// NewRegexDetector builds the rule-based detector. Without options it runs
// the embedded Russian defaults; options layer operator and per-deployment
// recognizers on top.
func NewRegexDetector(opts ...Option) (*RegexDetector, error) {
	var cfg regexConfig
	for _, o := range opts {
		o(&cfg)
	}

	defaults, err := DefaultRecognizers()
	if err != nil {
		return nil, fmt.Errorf("loading default recognizers: %w", err)
	}

	var fileRecs []*RecognizerConfig
	if cfg.patternFile != "" {
		rf, err := LoadRecognizerFile(cfg.patternFile)
		if err != nil {
			return nil, fmt.Errorf("loading pattern file: %w", err)
		}
		if rf != nil {
			fileRecs = toPtrSlice(rf.Recognizers)
		}
	}

	var customRecs []*RecognizerConfig
	if len(cfg.customRecognizers) > 0 {
		customRecs = toPtrSlice(cfg.customRecognizers)
	}

	merged := MergeRecognizers(toPtrSlice(defaults), fileRecs, customRecs)
	merged = FilterByEntities(merged, cfg.enabledEntities, cfg.disabledEntities)

	compiled, err := CompilePatterns(merged)
	if err != nil {
		return nil, fmt.Errorf("compiling patterns: %w", err)
	}

	minScore := DefaultMinScore
	if cfg.minScore > 0 {
		minScore = cfg.minScore
	}

	return &RegexDetector{patterns: compiled, minScore: minScore}, nil
}

// MustNewRegexDetector is like NewRegexDetector but panics on error. The
// embedded defaults are expected to always compile.
func MustNewRegexDetector(opts ...Option) *RegexDetector {
	d, err := NewRegexDetector(opts...)
	if err != nil {
		panic(fmt.Sprintf("detect.NewRegexDetector: %v", err))
	}
	return d
}

// Name implements Detector.
func (d *RegexDetector) Name() string { return "regex" }

// Detect runs every compiled pattern over the text and reports matches as
// candidate spans with rune offsets.
func (d *RegexDetector) Detect(ctx context.Context, text string) ([]entity.CandidateSpan, error) {
	_, span := tracer.Start(ctx, "detect.regex")
	defer span.End()

	offsets := runeOffsets(text)

	var out []entity.CandidateSpan
	for _, p := range d.patterns {
		if p.Score < d.minScore {
			continue
		}
		for _, m := range p.Regexp.FindAllStringIndex(text, -1) {
			out = append(out, entity.CandidateSpan{
				Category: p.Entity,
				Start:    offsets[m[0]],
				End:      offsets[m[1]],
				Text:     text[m[0]:m[1]],
				Score:    p.Score,
			})
		}
	}

	span.SetAttributes(attribute.Int("detect.regex.candidates", len(out)))
	return out, nil
}

// runeOffsets maps every byte offset of text (inclusive of len(text)) to its
// rune offset. regexp reports byte offsets; the rest of the pipeline works
// in runes.
func runeOffsets(text string) []int {
	offsets := make([]int, len(text)+1)
	count := 0
	for i := 0; i < len(text); {
		_, size := utf8.DecodeRuneInString(text[i:])
		for j := 0; j < size; j++ {
			offsets[i+j] = count
		}
		i += size
		count++
	}
	offsets[len(text)] = count
	return offsets
}
