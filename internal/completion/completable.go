package completion

import (
	"strings"
	"unicode"
)

// QuotedCompletable returns the term ending at caret in a comma or space
// separated list. Separators inside a double-quoted span do not split terms.
// Leading whitespace of the term is trimmed.
func QuotedCompletable(text string, caret int) string {
	caret = clampCaret(text, caret)

	start := 0
	inQuote := false
	for i := 0; i < caret; i++ {
		switch text[i] {
		case '"':
			inQuote = !inQuote
		case ',', ' ':
			if !inQuote {
				start = i + 1
			}
		}
	}

	return strings.TrimLeftFunc(text[start:caret], unicode.IsSpace)
}

// WordCompletable returns the whitespace-delimited word ending at caret
func WordCompletable(text string, caret int) string {
	caret = clampCaret(text, caret)
	start := strings.LastIndexFunc(text[:caret], unicode.IsSpace) + 1
	return text[start:caret]
}

func clampCaret(text string, caret int) int {
	if caret < 0 {
		return 0
	}
	if caret > len(text) {
		return len(text)
	}
	return caret
}
