package cipher

import (
	"unicode/utf8"
)

// Substitute maps every rune of text found in search to the rune at the same
// position in replace. Other runes pass through. Calling it again with search
// and replace swapped undoes it when both strings hold the same rune set.
func Substitute(text, search, replace string) (string, error) {
	if utf8.RuneCountInString(search) != utf8.RuneCountInString(replace) {
		return "", NewError(ErrCodeInvalidKey, "substitution tables differ in length", search+" / "+replace)
	}
	from := []rune(search)
	to := []rune(replace)
	table := make(map[rune]rune, len(from))
	for i, r := range from {
		table[r] = to[i]
	}

	out := []rune(text)
	for i, r := range out {
		if m, ok := table[r]; ok {
			out[i] = m
		}
	}
	return string(out), nil
}

// Reverse reverses text rune by rune.
func Reverse(text string) string {
	r := []rune(text)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}
