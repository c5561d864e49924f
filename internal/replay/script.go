// Package replay drives the engine from a keystroke script the way a browser
// would: keydown and keypress phases, default key handling, then the deferred
// handlers in order. It backs the replay command and end-to-end tests.
package replay

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/NikitaCOEUR/autocomplete/internal/derrors"
	"github.com/NikitaCOEUR/autocomplete/internal/keys"
)

// Script is a replay scenario
type Script struct {
	// Target is the ID of the focused input
	Target string `yaml:"target"`
	// Text is the initial buffer content
	Text string `yaml:"text"`
	// Caret is the initial byte offset; the end of Text when omitted
	Caret *int `yaml:"caret,omitempty"`
	Steps []Step `yaml:"steps"`
	// Expect is checked against the result when present
	Expect *Expect `yaml:"expect,omitempty"`
}

// Step is one scripted user action. Exactly one field is set.
type Step struct {
	// Type presses one key per rune
	Type string `yaml:"type,omitempty"`
	// Key presses a named key such as DOWN or TAB
	Key   string `yaml:"key,omitempty"`
	Shift bool   `yaml:"shift,omitempty"`
	// Cancel calls the engine's explicit cancel
	Cancel bool `yaml:"cancel,omitempty"`
	// Blur moves focus away from the target
	Blur bool `yaml:"blur,omitempty"`
	// Focus gives focus back to the target
	Focus bool `yaml:"focus,omitempty"`
}

func (s Step) String() string {
	switch {
	case s.Type != "":
		return fmt.Sprintf("type %q", s.Type)
	case s.Key != "":
		if s.Shift {
			return "key SHIFT+" + strings.ToUpper(s.Key)
		}
		return "key " + strings.ToUpper(s.Key)
	case s.Cancel:
		return "cancel"
	case s.Blur:
		return "blur"
	case s.Focus:
		return "focus"
	}
	return "noop"
}

func (s Step) actionCount() int {
	n := 0
	for _, set := range []bool{s.Type != "", s.Key != "", s.Cancel, s.Blur, s.Focus} {
		if set {
			n++
		}
	}
	return n
}

// Expect lists the outcomes a script asserts. Nil fields are not checked.
type Expect struct {
	Text        *string  `yaml:"text,omitempty"`
	Caret       *int     `yaml:"caret,omitempty"`
	Completions []string `yaml:"completions,omitempty"`
	Submitted   *bool    `yaml:"submitted,omitempty"`
}

// ParseScript decodes and validates a YAML script
func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, derrors.NewValidationError("script", "invalid script YAML", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadScript reads a script file
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, derrors.NewNotFoundError(path, "script not found")
		}
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return ParseScript(data)
}

// Validate checks the target, the caret and every step
func (s *Script) Validate() error {
	if strings.TrimSpace(s.Target) == "" {
		return derrors.NewValidationError("target", "script has no target", nil)
	}
	if s.Caret != nil && (*s.Caret < 0 || *s.Caret > len(s.Text)) {
		return derrors.NewValidationError("caret", fmt.Sprintf("caret %d outside text of length %d", *s.Caret, len(s.Text)), nil)
	}
	for i, step := range s.Steps {
		field := fmt.Sprintf("steps/%d", i)
		if step.actionCount() != 1 {
			return derrors.NewValidationError(field, "step must set exactly one of type, key, cancel, blur, focus", nil)
		}
		if step.Key != "" {
			if _, ok := keys.Parse(step.Key); !ok {
				return derrors.NewValidationError(field, fmt.Sprintf("unknown key '%s'", step.Key), nil)
			}
		}
	}
	return nil
}
