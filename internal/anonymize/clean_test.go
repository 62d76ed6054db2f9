package anonymize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"simple name", "Иван", "Иван"},
		{"full name", "Иван Петров", "Иван Петров"},
		{"stop word truncates", "Иван время встречи уточню", "Иван"},
		{"trailing context dropped", "Анна Сергеевна телефон запишите", "Анна Сергеевна"},
		{"punctuation stripped", "Иван, Петров.", "Иван Петров"},
		{"hyphenated surname", "Мария Салтыкова-Щедрина", "Мария Салтыкова-Щедрина"},
		{"lowercase tokens skipped", "Иван из офиса Пётр", "Иван Пётр"},
		{"whitespace collapsed", "  Иван   Петров  ", "Иван Петров"},
		{"fallback to first token", "завтра в офисе", "завтра"},
		{"stop word first", "телефон Иван", "телефон"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanName(tt.in))
		})
	}
}

func TestCleanNameCapsLength(t *testing.T) {
	long := strings.Repeat("Абвгдеёжз ", 10) // 9-rune tokens, all capitalized
	got := CleanName(long)
	assert.LessOrEqual(t, len([]rune(got)), 50)
}

func TestCleanAddress(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"simple", "Невский проспект 28", "Невский проспект 28"},
		{"trailing punctuation", "ул. Ленина, д. 5,", "ул. Ленина, д. 5"},
		{"whitespace collapsed", "г.  Москва,   ул. Тверская", "г. Москва, ул. Тверская"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanAddress(tt.in))
		})
	}
}

func TestCleanAddressTruncatesAtDelimiter(t *testing.T) {
	// Over 200 chars with a comma after position 100: truncated at the last
	// comma inside the first 200 characters.
	head := strings.Repeat("а", 150)
	in := head + ", " + strings.Repeat("б", 100)
	got := CleanAddress(in)
	assert.Equal(t, head, got)
}

func TestCleanAddressHardTruncate(t *testing.T) {
	in := strings.Repeat("а", 300) // no delimiters anywhere
	got := CleanAddress(in)
	assert.Len(t, []rune(got), 200)
}

func TestCleanersArePure(t *testing.T) {
	in := "Иван время"
	assert.Equal(t, CleanName(in), CleanName(in))
	addr := "г. Москва, ул. Тверская, д. 1"
	assert.Equal(t, CleanAddress(addr), CleanAddress(addr))
}
