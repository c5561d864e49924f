package replay

import (
	"context"
	"fmt"
	"slices"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/NikitaCOEUR/autocomplete/internal/completion"
	"github.com/NikitaCOEUR/autocomplete/internal/engine"
	"github.com/NikitaCOEUR/autocomplete/internal/keys"
	"github.com/NikitaCOEUR/autocomplete/internal/logger"
	"github.com/NikitaCOEUR/autocomplete/internal/timing"
	"github.com/NikitaCOEUR/autocomplete/internal/trace"
)

// Buffer is a single-line text input. It implements engine.Target.
type Buffer struct {
	id    string
	text  string
	caret int
}

// NewBuffer creates a buffer with the caret clamped into text
func NewBuffer(id, text string, caret int) *Buffer {
	return &Buffer{id: id, text: text, caret: max(0, min(caret, len(text)))}
}

func (b *Buffer) ID() string   { return b.id }
func (b *Buffer) Text() string { return b.text }
func (b *Buffer) Caret() int   { return b.caret }

func (b *Buffer) insert(r rune) {
	s := string(r)
	b.text = b.text[:b.caret] + s + b.text[b.caret:]
	b.caret += len(s)
}

func (b *Buffer) backspace() {
	if b.caret == 0 {
		return
	}
	_, n := utf8.DecodeLastRuneInString(b.text[:b.caret])
	b.text = b.text[:b.caret-n] + b.text[b.caret:]
	b.caret -= n
}

func (b *Buffer) deleteForward() {
	if b.caret >= len(b.text) {
		return
	}
	_, n := utf8.DecodeRuneInString(b.text[b.caret:])
	b.text = b.text[:b.caret] + b.text[b.caret+n:]
}

func (b *Buffer) left() {
	if b.caret > 0 {
		_, n := utf8.DecodeLastRuneInString(b.text[:b.caret])
		b.caret -= n
	}
}

func (b *Buffer) right() {
	if b.caret < len(b.text) {
		_, n := utf8.DecodeRuneInString(b.text[b.caret:])
		b.caret += n
	}
}

// StepResult is what one script step produced
type StepResult struct {
	Step    string
	Actions []engine.Action
	Text    string
	Caret   int
	Focused bool
}

// Result is the outcome of a replay
type Result struct {
	Text      string
	Caret     int
	Focused   bool
	Submitted bool
	// List is the completion list showing at the end, nil when hidden
	List     []completion.Completion
	Selected int
	Steps    []StepResult
}

// Check compares the result with exp and returns one message per mismatch
func (r *Result) Check(exp *Expect) []string {
	if exp == nil {
		return nil
	}
	var problems []string
	if exp.Text != nil && *exp.Text != r.Text {
		problems = append(problems, fmt.Sprintf("text: want %q, got %q", *exp.Text, r.Text))
	}
	if exp.Caret != nil && *exp.Caret != r.Caret {
		problems = append(problems, fmt.Sprintf("caret: want %d, got %d", *exp.Caret, r.Caret))
	}
	if exp.Completions != nil {
		got := completion.Values(r.List)
		if !slices.Equal(exp.Completions, got) {
			problems = append(problems, fmt.Sprintf("completions: want %q, got %q", exp.Completions, got))
		}
	}
	if exp.Submitted != nil && *exp.Submitted != r.Submitted {
		problems = append(problems, fmt.Sprintf("submitted: want %t, got %t", *exp.Submitted, r.Submitted))
	}
	return problems
}

// Host plays a script against an engine
type Host struct {
	engine   *engine.Engine
	buffer   *Buffer
	focused  bool
	list     []completion.Completion
	selected int
	submit   bool
	log      *logger.Logger
	recorder *timing.Recorder
}

// Option configures a Host
type Option func(*Host)

// WithLogger sets the host logger
func WithLogger(log *logger.Logger) Option {
	return func(h *Host) {
		h.log = logger.OrDiscard(log)
	}
}

// WithRecorder records the engine time of every step
func WithRecorder(r *timing.Recorder) Option {
	return func(h *Host) {
		h.recorder = r
	}
}

// NewHost creates a host with a focused buffer
func NewHost(e *engine.Engine, buffer *Buffer, opts ...Option) *Host {
	h := &Host{
		engine:   e,
		buffer:   buffer,
		focused:  true,
		selected: -1,
		log:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run plays every step of the script on a fresh buffer
func Run(ctx context.Context, e *engine.Engine, s *Script, opts ...Option) (*Result, error) {
	caret := len(s.Text)
	if s.Caret != nil {
		caret = *s.Caret
	}
	h := NewHost(e, NewBuffer(s.Target, s.Text, caret), opts...)

	steps := make([]StepResult, 0, len(s.Steps))
	for _, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		steps = append(steps, h.Do(ctx, step))
	}

	result := h.Result()
	result.Steps = steps
	return result, nil
}

// Do performs one step
func (h *Host) Do(ctx context.Context, step Step) StepResult {
	label := step.String()
	defer trace.Region(ctx, "replay.step")()
	trace.Log(ctx, "step", label)

	var stop func() time.Duration
	if h.recorder != nil {
		stop = h.recorder.Start(label)
	}

	var actions []engine.Action
	switch {
	case step.Type != "":
		for _, r := range step.Type {
			code, shift := keys.KeyForRune(r)
			actions = append(actions, h.Press(code, r, shift || unicode.IsUpper(r))...)
		}
	case step.Key != "":
		code, _ := keys.Parse(step.Key)
		actions = h.Press(code, keys.RuneFor(code, step.Shift), step.Shift)
	case step.Cancel:
		actions = h.apply(h.engine.Cancel())
	case step.Blur:
		actions = h.blur()
	case step.Focus:
		h.focused = true
	}

	if stop != nil {
		stop()
	}

	h.log.Debug().
		Str("step", label).
		Str("text", h.buffer.text).
		Int("caret", h.buffer.caret).
		Int("actions", len(actions)).
		Msg("Replay step")

	return StepResult{
		Step:    label,
		Actions: actions,
		Text:    h.buffer.text,
		Caret:   h.buffer.caret,
		Focused: h.focused,
	}
}

// Press simulates one physical key: keydown, keypress for keys that produce
// one, default handling unless suppressed, then the deferred handlers.
// r is the character the key inserts, or 0.
func (h *Host) Press(code keys.Code, r rune, shift bool) []engine.Action {
	if !h.focused {
		return h.apply(h.engine.HandleKey(nil, keys.Event{Code: code, IsKeyDown: true, IsShift: shift}).Actions)
	}

	var actions []engine.Action
	down := h.engine.HandleKey(h.buffer, keys.Event{TargetID: h.buffer.id, Code: code, IsKeyDown: true, IsShift: shift})
	actions = append(actions, h.apply(down.Actions)...)
	if !h.focused {
		// The engine released focus; the key never reaches the input
		return actions
	}

	steps := []engine.Step{down}
	if code == keys.Enter || keys.IsContent(code) {
		press := h.engine.HandleKey(h.buffer, keys.Event{TargetID: h.buffer.id, Code: code, IsShift: shift})
		actions = append(actions, h.apply(press.Actions)...)
		steps = append(steps, press)
	}

	suppressed := false
	for _, s := range steps {
		suppressed = suppressed || s.Suppress()
	}
	if !suppressed {
		h.defaultAction(code, r)
	}

	for _, s := range steps {
		actions = append(actions, h.apply(h.engine.Resume(s.Pending))...)
	}

	// TAB moves focus once the handlers have run
	if !suppressed && code == keys.Tab {
		actions = append(actions, h.blur()...)
	}

	return actions
}

func (h *Host) defaultAction(code keys.Code, r rune) {
	switch code {
	case keys.Backspace:
		h.buffer.backspace()
	case keys.Delete:
		h.buffer.deleteForward()
	case keys.Left:
		h.buffer.left()
	case keys.Right:
		h.buffer.right()
	case keys.Up:
		h.buffer.caret = 0
	case keys.Down:
		h.buffer.caret = len(h.buffer.text)
	case keys.Enter:
		h.submit = true
	case keys.Tab, keys.Esc, keys.Shift:
	default:
		if r != 0 {
			h.buffer.insert(r)
		}
	}
}

func (h *Host) blur() []engine.Action {
	h.focused = false
	return h.apply(h.engine.Blur())
}

// apply updates the host from engine actions and returns them
func (h *Host) apply(actions []engine.Action) []engine.Action {
	for _, a := range actions {
		switch a.Kind {
		case engine.ShowList:
			h.list = a.Completions
			h.selected = a.Selected
		case engine.HideList:
			h.list = nil
			h.selected = -1
		case engine.ApplyText:
			h.buffer.text = a.Text
			h.buffer.caret = max(0, min(a.Caret, len(a.Text)))
		case engine.BlurTarget:
			h.focused = false
		}
	}
	return actions
}

// Result returns the current host state
func (h *Host) Result() *Result {
	return &Result{
		Text:      h.buffer.text,
		Caret:     h.buffer.caret,
		Focused:   h.focused,
		Submitted: h.submit,
		List:      h.list,
		Selected:  h.selected,
	}
}
