package engine

import (
	"fmt"

	"github.com/NikitaCOEUR/autocomplete/internal/completion"
)

// ActionKind identifies an outbound signal for the host
type ActionKind int

// Outbound signals
const (
	// ShowList asks the host to display Completions with Selected highlighted
	ShowList ActionKind = iota
	// HideList asks the host to remove the completion list
	HideList
	// ApplyText asks the host to replace the buffer with Text and move the caret to Caret
	ApplyText
	// BlurTarget asks the host to take focus away from the target
	BlurTarget
	// SuppressDefault tells the host to cancel its default handling of the keystroke
	SuppressDefault
)

func (k ActionKind) String() string {
	switch k {
	case ShowList:
		return "show-list"
	case HideList:
		return "hide-list"
	case ApplyText:
		return "apply-text"
	case BlurTarget:
		return "blur"
	case SuppressDefault:
		return "suppress-default"
	}
	return fmt.Sprintf("action(%d)", int(k))
}

// Action is one instruction for the UI layer. Only the fields relevant to
// Kind are set.
type Action struct {
	Kind        ActionKind
	Completions []completion.Completion
	Selected    int
	Text        string
	Caret       int
}

func (a Action) String() string {
	switch a.Kind {
	case ShowList:
		return fmt.Sprintf("%s %q selected=%d", a.Kind, completion.Values(a.Completions), a.Selected)
	case ApplyText:
		return fmt.Sprintf("%s %q caret=%d", a.Kind, a.Text, a.Caret)
	}
	return a.Kind.String()
}

// Find returns the first action of the given kind
func Find(actions []Action, kind ActionKind) (Action, bool) {
	for _, a := range actions {
		if a.Kind == kind {
			return a, true
		}
	}
	return Action{}, false
}

// Has reports whether actions contains an action of the given kind
func Has(actions []Action, kind ActionKind) bool {
	_, ok := Find(actions, kind)
	return ok
}
