// Package stores provides the completion policies built on top of
// completion.IndexedStore: how a term is found in the buffer and how an
// accepted value is joined back into it.
package stores

import (
	"strings"

	"github.com/NikitaCOEUR/autocomplete/internal/completion"
)

// NewCommaList returns the default store: terms separated by commas or
// spaces, accepted values followed by ", ".
func NewCommaList(candidates []completion.Candidate, opts ...completion.Option) *completion.IndexedStore {
	return completion.NewIndexedStore(candidates, opts...)
}

// SpaceJoined completes free text one whitespace-delimited word at a time.
// Accepted values are followed by a single space unless they end in an
// operator (':' or '=') or an empty quote pair.
type SpaceJoined struct {
	*completion.IndexedStore
}

// NewSpaceJoined builds a space-joined store. COMMA does not accept by default.
func NewSpaceJoined(candidates []completion.Candidate, opts ...completion.Option) *SpaceJoined {
	opts = append([]completion.Option{completion.WithCommaCompletes(false)}, opts...)
	return &SpaceJoined{IndexedStore: completion.NewIndexedStore(candidates, opts...)}
}

// Completable returns the word ending at caret
func (s *SpaceJoined) Completable(text string, caret int) string {
	return completion.WordCompletable(text, caret)
}

// Substitute replaces the word with the value and a trailing space
func (s *SpaceJoined) Substitute(text string, caret int, completable string, c completion.Completion) string {
	caret, start := bounds(text, caret, completable)
	return text[:start] + c.Value + spaceSuffix(c.Value) + text[caret:]
}

// CaretAfter places the caret after the inserted suffix, or between the
// quotes of a value ending in "".
func (s *SpaceJoined) CaretAfter(text string, caret int, completable string, c completion.Completion) int {
	_, start := bounds(text, caret, completable)
	pos := start + len(c.Value) + len(spaceSuffix(c.Value))
	if strings.HasSuffix(c.Value, `""`) {
		pos--
	}
	return pos
}

func spaceSuffix(value string) string {
	if completion.IsCompleteTerm(value) {
		return " "
	}
	return ""
}

// bounds clamps caret and returns where the completable starts
func bounds(text string, caret int, completable string) (int, int) {
	caret = max(0, min(caret, len(text)))
	start := max(0, caret-completion.ConsumedLength(completable))
	return caret, start
}

// Replace treats the whole buffer as the completable; accepting a value
// replaces everything and leaves the caret at the end.
type Replace struct {
	*completion.IndexedStore
}

// NewReplace builds a replace store. COMMA does not accept by default.
func NewReplace(candidates []completion.Candidate, opts ...completion.Option) *Replace {
	opts = append([]completion.Option{completion.WithCommaCompletes(false)}, opts...)
	return &Replace{IndexedStore: completion.NewIndexedStore(candidates, opts...)}
}

// Completable returns the trimmed buffer
func (s *Replace) Completable(text string, _ int) string {
	return strings.TrimSpace(text)
}

// Substitute returns the value alone
func (s *Replace) Substitute(_ string, _ int, _ string, c completion.Completion) string {
	return c.Value
}

// CaretAfter puts the caret at the end of the value
func (s *Replace) CaretAfter(_ string, _ int, _ string, c completion.Completion) int {
	return len(c.Value)
}
