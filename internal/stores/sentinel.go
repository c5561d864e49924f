package stores

import (
	"strings"

	"github.com/NikitaCOEUR/autocomplete/internal/completion"
)

// Lister is implemented by stores that can enumerate every candidate
type Lister interface {
	All() []completion.Completion
}

// Sentinel wraps a store so that an empty completable becomes a synthetic
// "show everything" completable. The sentinel consumes no characters of the
// buffer on acceptance.
//
// While the sentinel list is showing, the first row is never implicitly
// selected: TAB or ENTER on an untouched field keeps its normal meaning
// unless the user picked a row.
type Sentinel struct {
	completion.Store
	sentinel string
}

// WithSentinel wraps store. A sentinel without the "*" prefix gets one.
func WithSentinel(store completion.Store, sentinel string) *Sentinel {
	if !strings.HasPrefix(sentinel, completion.SentinelPrefix) {
		sentinel = completion.SentinelPrefix + sentinel
	}
	return &Sentinel{Store: store, sentinel: sentinel}
}

// Sentinel returns the synthetic completable
func (s *Sentinel) Sentinel() string {
	return s.sentinel
}

// Unwrap returns the wrapped store
func (s *Sentinel) Unwrap() completion.Store {
	return s.Store
}

// Completable substitutes the sentinel for an empty completable
func (s *Sentinel) Completable(text string, caret int) string {
	c := s.Store.Completable(text, caret)
	if c == "" {
		return s.sentinel
	}
	return c
}

// Completions lists everything for the sentinel when the wrapped store can
func (s *Sentinel) Completions(prefix string, toFilter []completion.Completion) []completion.Completion {
	if prefix == s.sentinel {
		if l, ok := s.Store.(Lister); ok {
			return l.All()
		}
	}
	return s.Store.Completions(prefix, toFilter)
}

// AutoselectFirstRowFor is false for the sentinel list
func (s *Sentinel) AutoselectFirstRowFor(completable string) bool {
	if completable == s.sentinel {
		return false
	}
	return completion.Autoselects(s.Store, completable)
}

// CaretAfter defers to the wrapped store's caret policy
func (s *Sentinel) CaretAfter(text string, caret int, completable string, c completion.Completion) int {
	if p, ok := s.Store.(completion.CaretPlacer); ok {
		return p.CaretAfter(text, caret, completable, c)
	}
	return completion.DefaultCaret(caret, completable, c)
}

// SetAvoid forwards the avoid set to the wrapped store
func (s *Sentinel) SetAvoid(avoid completion.AvoidSet) {
	if a, ok := s.Store.(completion.AvoidAware); ok {
		a.SetAvoid(avoid)
	}
}
