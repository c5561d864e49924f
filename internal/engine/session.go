package engine

import (
	"sort"

	"github.com/NikitaCOEUR/autocomplete/internal/completion"
)

// Session is the per-focus-target runtime state. All mutation goes through
// the Engine; stores never touch it.
type Session struct {
	store     completion.Store
	storeName string

	lastCompletable string
	hasCompletable  bool

	completions []completion.Completion
	selected    int
	everTyped   bool
	avoid       completion.AvoidSet
}

func newSession() Session {
	return Session{selected: -1}
}

// active reports whether a store is bound
func (s *Session) active() bool {
	return s.store != nil
}

// clearList forgets the list and the selection
func (s *Session) clearList() {
	s.completions = nil
	s.selected = -1
}

// resetAfterAccept clears everything but the bound store and avoid set
func (s *Session) resetAfterAccept() {
	s.clearList()
	s.lastCompletable = ""
	s.hasCompletable = false
	s.everTyped = false
}

// selectedCompletion returns the selected completion, if any
func (s *Session) selectedCompletion() (completion.Completion, bool) {
	if s.selected < 0 || s.selected >= len(s.completions) {
		return completion.Completion{}, false
	}
	return s.completions[s.selected], true
}

func (s *Session) moveUp() {
	floor := -1
	if len(s.completions) >= 1 {
		floor = 0
	}
	s.selected = max(floor, s.selected-1)
}

func (s *Session) moveDown(maxVisible int) {
	limit := min(maxVisible, len(s.completions)) - 1
	s.selected = min(limit, s.selected+1)
}

// Snapshot is a read-only copy of the session for hosts and tests
type Snapshot struct {
	Active         bool
	TargetID       string
	StoreName      string
	Completable    string
	HasCompletable bool
	Completions    []string
	Selected       int
	EverTyped      bool
	Suppressed     bool
	Avoid          []string
}

func (s *Session) snapshot() Snapshot {
	avoid := make([]string, 0, len(s.avoid))
	for v := range s.avoid {
		avoid = append(avoid, v)
	}
	sort.Strings(avoid)

	return Snapshot{
		Active:         s.active(),
		StoreName:      s.storeName,
		Completable:    s.lastCompletable,
		HasCompletable: s.hasCompletable,
		Completions:    completion.Values(s.completions),
		Selected:       s.selected,
		EverTyped:      s.everTyped,
		Avoid:          avoid,
	}
}
