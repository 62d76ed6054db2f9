// Package patterns provides the embedded default recognizer definitions for
// Russian personal data: phone numbers, tax IDs (ИНН), passport numbers, and
// street addresses.
package patterns

import _ "embed"

//go:embed pii_ru.yaml
var piiRUYAML []byte

// PIIRUYAML returns the embedded default Russian PII recognizer definitions.
func PIIRUYAML() []byte { return piiRUYAML }
