// Package tokenizer turns raw input lines into lower-cased word tokens. A token
// is a maximal run of ASCII letters and apostrophes; every other byte,
// hyphens and digits included, separates tokens. Hyphenated compounds
// therefore come out as two words, and a run of bare apostrophes is a token.
package tokenizer

import "iter"

// Tokens yields the tokens of line in order. The sequence is lazy and may be
// ranged over any number of times.
func Tokens(line string) iter.Seq[string] {
	return func(yield func(string) bool) {
		i := 0
		for i < len(line) {
			for i < len(line) && !isWordByte(line[i]) {
				i++
			}
			start := i
			for i < len(line) && isWordByte(line[i]) {
				i++
			}
			if start == i {
				return
			}
			if !yield(lower(line[start:i])) {
				return
			}
		}
	}
}

// Tokenize collects Tokens(line) into a slice.
func Tokenize(line string) []string {
	var out []string
	for tok := range Tokens(line) {
		out = append(out, tok)
	}
	return out
}

func isWordByte(c byte) bool {
	return c == '\'' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// lower folds ASCII upper case, returning s itself when nothing changes.
func lower(s string) string {
	upper := false
	for i := 0; i < len(s); i++ {
		if 'A' <= s[i] && s[i] <= 'Z' {
			upper = true
			break
		}
	}
	if !upper {
		return s
	}
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
