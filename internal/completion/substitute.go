package completion

import "strings"

// SentinelPrefix marks a synthetic completable that stands for "list
// everything" and consumed no characters of the buffer.
const SentinelPrefix = "*"

// ListSeparator is inserted after a complete term by the default joiner
const ListSeparator = ", "

// ConsumedLength is how many bytes before the caret a completable occupies
func ConsumedLength(completable string) int {
	if strings.HasPrefix(completable, SentinelPrefix) {
		return 0
	}
	return len(completable)
}

// IsCompleteTerm reports whether a value is a finished term that the default
// joiner follows with a separator. Bare operators ending in ':' or '=' and
// values ending in an empty quote pair are not.
func IsCompleteTerm(value string) bool {
	if strings.HasSuffix(value, `""`) {
		return false
	}
	return !strings.HasSuffix(value, ":") && !strings.HasSuffix(value, "=")
}

// DefaultSubstitute replaces completable with the completion value and
// appends ListSeparator after complete terms.
func DefaultSubstitute(text string, caret int, completable string, c Completion) string {
	caret = clampCaret(text, caret)
	start := caret - ConsumedLength(completable)
	if start < 0 {
		start = 0
	}

	inserted := c.Value
	if IsCompleteTerm(c.Value) {
		inserted += ListSeparator
	}
	return text[:start] + inserted + text[caret:]
}

// DefaultCaret computes the caret after DefaultSubstitute
func DefaultCaret(caret int, completable string, c Completion) int {
	newCaret := caret + len(c.Value)
	newCaret -= ConsumedLength(completable)

	if strings.HasSuffix(c.Value, `""`) {
		// Land between the quotes
		newCaret--
	} else if IsCompleteTerm(c.Value) {
		newCaret += len(ListSeparator)
	}

	if newCaret < 0 {
		return 0
	}
	return newCaret
}

// Apply substitutes c into text through the store and computes the caret
// after it, using the store's CaretPlacer when it has one.
func Apply(s Store, text string, caret int, completable string, c Completion) (string, int) {
	newText := s.Substitute(text, caret, completable, c)
	if placer, ok := s.(CaretPlacer); ok {
		return newText, placer.CaretAfter(text, caret, completable, c)
	}
	return newText, DefaultCaret(caret, completable, c)
}
