// Package anonymize holds the per-request placeholder state and the
// substitution/restoration transforms built on top of fused spans.
//
// Everything here is scoped to exactly one redaction request: counters and
// the placeholder mapping are created fresh per call and never shared, so
// concurrent requests need no locking at all.
package anonymize

import (
	"fmt"

	"github.com/AutmateStudio/Anonimiser/internal/entity"
)

// CleanerFunc normalizes captured text before it is stored in the mapping.
// Must be a pure function of its input.
type CleanerFunc func(string) string

// Pair is one placeholder → original-value entry, in registration order.
type Pair struct {
	Placeholder string `json:"placeholder"`
	Value       string `json:"value"`
}

// Request owns the mutable state of a single redaction request: per-label
// counters and the ordered placeholder mapping.
type Request struct {
	counters map[string]int
	pairs    []Pair
	values   map[string]string
	cleaners map[string]CleanerFunc
}

// NewRequest returns fresh request state with the built-in cleaners attached:
// name cleaning for person categories, address cleaning for location
// categories. Other categories store captured text as-is.
func NewRequest() *Request {
	r := &Request{
		counters: make(map[string]int),
		values:   make(map[string]string),
		cleaners: make(map[string]CleanerFunc),
	}
	for _, cat := range []string{"PERSON", "PER"} {
		r.cleaners[cat] = CleanName
	}
	for _, cat := range []string{"ADDRESS", "LOCATION", "LOC"} {
		r.cleaners[cat] = CleanAddress
	}
	return r
}

// WithCleaner overrides or adds the cleaner for a detector category.
// Returns the request for chaining.
func (r *Request) WithCleaner(category string, fn CleanerFunc) *Request {
	r.cleaners[category] = fn
	return r
}

// Register allocates the next placeholder for the category's label and
// records (placeholder, cleaned original) in the mapping. Every call yields
// a new placeholder: identical original text seen twice gets two slots, one
// per detected occurrence. If cleaning yields an empty string the raw text
// is stored instead.
func (r *Request) Register(category, original string) string {
	label := entity.Label(category)

	n := r.counters[label]
	if n == 0 {
		n = 1
	}
	placeholder := fmt.Sprintf("{%s_%d}", label, n)
	r.counters[label] = n + 1

	value := original
	if clean, ok := r.cleaners[category]; ok {
		if cleaned := clean(original); cleaned != "" {
			value = cleaned
		}
	}

	r.pairs = append(r.pairs, Pair{Placeholder: placeholder, Value: value})
	r.values[placeholder] = value
	return placeholder
}

// Mapping returns the placeholder → value table in registration order.
func (r *Request) Mapping() Mapping {
	m := make(Mapping, len(r.pairs))
	copy(m, r.pairs)
	return m
}

// Counts returns how many placeholders were allocated per label.
func (r *Request) Counts() map[string]int {
	counts := make(map[string]int, len(r.counters))
	for label, next := range r.counters {
		counts[label] = next - 1
	}
	return counts
}
