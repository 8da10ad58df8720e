// Package presentation turns matched catalog records into display cards.
package presentation

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxValueLength is the first value length hidden from detail rows. Longer
// cells are free-text notes that break the table layout.
const MaxValueLength = 70

// FormatBrand capitalises the first letter and lower-cases the rest.
func FormatBrand(brand string) string {
	r, size := utf8.DecodeRuneInString(brand)
	if size == 0 {
		return brand
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(brand[size:])
}

// FormatModel formats each space-separated word of a model name. Short
// words are treated as codes and upper-cased ("gt", "rs"), except the
// i-prefixed ones ("iS", "i3"). Longer words are title-cased unless they
// start with "i".
func FormatModel(model string) string {
	words := strings.Split(model, " ")
	for i, w := range words {
		words[i] = formatModelWord(w)
	}
	return strings.Join(words, " ")
}

func formatModelWord(word string) string {
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	first := runes[0]
	rest := string(runes[1:])

	if letterCount(word) <= 2 {
		switch {
		case unicode.ToLower(first) == 'i':
			return string(first) + strings.ToUpper(rest)
		case len(runes) > 1 && unicode.ToLower(runes[1]) == 'i':
			return string(unicode.ToUpper(first)) + rest
		default:
			return strings.ToUpper(word)
		}
	}

	if unicode.ToLower(first) == 'i' {
		return word
	}
	return string(unicode.ToUpper(first)) + strings.ToLower(rest)
}

// letterCount counts ASCII letters only; digits and punctuation in codes
// like "R1" or "Z-900" do not make a word long.
func letterCount(word string) int {
	n := 0
	for _, ch := range word {
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') {
			n++
		}
	}
	return n
}
