package anonymize

import (
	"sort"
	"strings"
)

// Restore replaces every placeholder occurrence in text with its stored
// value. Best-effort inverse of Substitute: placeholders missing from the
// mapping are left as literal text, and all occurrences of a known
// placeholder are replaced.
//
// Keys are applied longest-first so a short placeholder ({ИМЯ_1}) can never
// match inside a longer one's literal text ({ИМЯ_10}); ascending order would
// corrupt {ИМЯ_10} into "<value of ИМЯ_1>0".
func Restore(text string, mapping map[string]string) string {
	if len(mapping) == 0 {
		return text
	}
	keys := make([]string, 0, len(mapping))
	for k := range mapping {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	for _, k := range keys {
		text = strings.ReplaceAll(text, k, mapping[k])
	}
	return text
}
