// Package engine implements the keystroke-driven completion state machine.
//
// Hosts feed every keystroke phase to HandleKey, apply their default handling
// of the key (unless told to suppress it) and then call Resume with the
// returned Pending. The deferral lets the engine read the buffer after the
// keystroke has been applied. Exactly one handler runs per Pending, in the
// order the host resumes them.
package engine

import (
	"github.com/NikitaCOEUR/autocomplete/internal/completion"
	"github.com/NikitaCOEUR/autocomplete/internal/keys"
	"github.com/NikitaCOEUR/autocomplete/internal/logger"
)

// DefaultMaxVisibleOptions caps how far DOWN can move the selection
const DefaultMaxVisibleOptions = 100

type pendingKind int

const (
	pendingUpdate pendingKind = iota
	pendingAccept
)

// Pending is a deferred handler scheduled by HandleKey
type Pending struct {
	kind       pendingKind
	event      keys.Event
	target     Target
	generation uint64
}

// Kind returns "accept" or "update"
func (p *Pending) Kind() string {
	if p.kind == pendingAccept {
		return "accept"
	}
	return "update"
}

// Event returns the keystroke that scheduled the handler
func (p *Pending) Event() keys.Event {
	return p.event
}

// Step is the immediate outcome of a keystroke
type Step struct {
	// Actions are signals to act on before the default key handling,
	// SuppressDefault and BlurTarget in particular.
	Actions []Action
	// Pending must be resumed once the keystroke has reached the buffer.
	// Nil when nothing was scheduled.
	Pending *Pending
}

// Suppress reports whether the host must cancel default handling of the key
func (s Step) Suppress() bool {
	return Has(s.Actions, SuppressDefault)
}

// Engine routes keystrokes to the active store and owns the session
type Engine struct {
	registry   *Registry
	session    Session
	target     Target
	suppressed bool
	generation uint64
	maxVisible int
	log        *logger.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithMaxVisibleOptions sets the navigation clamp and the number of rows
// included in ShowList actions
func WithMaxVisibleOptions(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxVisible = n
		}
	}
}

// WithLogger sets the engine logger
func WithLogger(log *logger.Logger) Option {
	return func(e *Engine) {
		e.log = logger.OrDiscard(log)
	}
}

// WithRegistry uses an existing registry instead of an empty one
func WithRegistry(r *Registry) Option {
	return func(e *Engine) {
		if r != nil {
			e.registry = r
		}
	}
}

// New creates an engine with no registered stores
func New(opts ...Option) *Engine {
	e := &Engine{
		registry:   NewRegistry(),
		session:    newSession(),
		maxVisible: DefaultMaxVisibleOptions,
		log:        logger.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Register adds a store constructor. Re-registering a name is a no-op.
func (e *Engine) Register(name string, c Constructor) bool {
	return e.registry.Register(name, c)
}

// Registry returns the engine's constructor registry
func (e *Engine) Registry() *Registry {
	return e.registry
}

// MaxVisibleOptions returns the navigation clamp
func (e *Engine) MaxVisibleOptions() int {
	return e.maxVisible
}

// Snapshot returns a copy of the current session state
func (e *Engine) Snapshot() Snapshot {
	snap := e.session.snapshot()
	snap.Suppressed = e.suppressed
	if e.target != nil {
		snap.TargetID = e.target.ID()
	}
	return snap
}

// HandleKey classifies one keystroke phase. It never reads the buffer for
// completion purposes; that happens in Resume.
func (e *Engine) HandleKey(target Target, ev keys.Event) Step {
	var step Step

	if target == nil {
		e.log.Debug().Str("key", ev.Code.String()).Msg("Keystroke without target, blurring")
		step.Actions = e.Blur()
		return step
	}
	if ev.TargetID == "" {
		ev.TargetID = target.ID()
	}

	focusChanged := e.target == nil || e.target.ID() != target.ID()
	if (focusChanged || !e.session.active()) && ev.Code != keys.Enter && ev.Code != keys.Esc {
		step.Actions = append(step.Actions, e.bind(target, ev)...)
	}

	if !e.session.active() || e.target == nil || e.target.ID() != target.ID() {
		return step
	}

	if ev.Code == keys.Esc && !e.listVisible() {
		e.log.Debug().Str("target", target.ID()).Msg("Escape with no list, releasing focus")
		step.Actions = append(step.Actions, e.Blur()...)
		step.Actions = append(step.Actions, Action{Kind: BlurTarget})
		return step
	}

	store := e.session.store
	if store.IsCompletionKey(ev.Code, ev.IsKeyDown, ev.IsShift) {
		if len(e.session.completions) == 0 {
			store.OnComplete(false, ev.Code, target.ID(), "")
			return step
		}
		step.Pending = e.schedule(pendingAccept, target, ev)
		if e.session.selected != -1 && !e.suppressed {
			step.Actions = append(step.Actions, Action{Kind: SuppressDefault})
		}
		return step
	}

	step.Pending = e.schedule(pendingUpdate, target, ev)
	if keys.IsNavigation(ev.Code) && e.listVisible() {
		step.Actions = append(step.Actions, Action{Kind: SuppressDefault})
	}
	return step
}

// Resume runs a handler scheduled by HandleKey. It is a no-op when the
// session it was scheduled for has since been torn down or replaced.
func (e *Engine) Resume(p *Pending) []Action {
	if p == nil || p.generation != e.generation || !e.session.active() {
		return nil
	}
	if p.kind == pendingAccept {
		return e.accept(p)
	}
	return e.update(p)
}

// Cancel hides the list and stops completing until the target is blurred
// or focus moves elsewhere. The store stays bound.
func (e *Engine) Cancel() []Action {
	e.suppressed = true
	e.session.clearList()
	e.log.Debug().Str("store", e.session.storeName).Msg("Completion cancelled")
	return []Action{{Kind: HideList}}
}

// Blur tears down the session
func (e *Engine) Blur() []Action {
	wasActive := e.session.active()
	if wasActive && e.log.DebugEnabled() {
		e.log.Debug().Str("store", e.session.storeName).Msg("Session closed")
	}

	e.session = newSession()
	e.target = nil
	e.suppressed = false
	e.generation++

	if !wasActive {
		return nil
	}
	return []Action{{Kind: HideList}}
}

// bind tries every constructor for a newly focused target
func (e *Engine) bind(target Target, ev keys.Event) []Action {
	name, store := e.registry.Match(target, ev)
	actions := e.Blur()
	if store == nil {
		return actions
	}

	e.target = target
	e.session.store = store
	e.session.storeName = name
	e.session.avoid = completion.NewAvoidSet(store.ComputeAvoid())
	if aware, ok := store.(completion.AvoidAware); ok {
		aware.SetAvoid(e.session.avoid)
	}

	e.log.Debug().
		Str("store", name).
		Str("target", target.ID()).
		Int("avoid", len(e.session.avoid)).
		Msg("Store bound")
	return actions
}

func (e *Engine) schedule(kind pendingKind, target Target, ev keys.Event) *Pending {
	return &Pending{
		kind:       kind,
		event:      ev,
		target:     target,
		generation: e.generation,
	}
}

// listVisible reports whether the host is currently showing a list
func (e *Engine) listVisible() bool {
	return !e.suppressed && len(e.session.completions) > 0
}

// checkCompletions recomputes the list when the completable changed
func (e *Engine) checkCompletions(target Target) {
	s := &e.session
	completable := s.store.Completable(target.Text(), target.Caret())
	if s.hasCompletable && completable == s.lastCompletable {
		return
	}

	previous, hadSelection := s.selectedCompletion()

	s.lastCompletable = completable
	s.hasCompletable = true
	s.completions = s.avoid.Filter(s.store.Completions(completable, s.completions))
	s.selected = -1

	// Coarse sticky selection: if the old choice survived, select the top row
	if hadSelection {
		for _, c := range s.completions {
			if c.Value == previous.Value {
				s.selected = 0
				break
			}
		}
	}

	if e.log.DebugEnabled() {
		e.log.Debug().
			Str("completable", completable).
			Int("count", len(s.completions)).
			Int("selected", s.selected).
			Msg("Completions updated")
	}
}

func (e *Engine) update(p *Pending) []Action {
	if e.suppressed {
		return nil
	}
	s := &e.session
	ev := p.event

	e.checkCompletions(p.target)

	show := true
	switch ev.Code {
	case keys.Esc:
		show = false
		s.clearList()
	case keys.Up:
		if ev.IsKeyDown {
			s.moveUp()
		}
	case keys.Down:
		if ev.IsKeyDown {
			s.moveDown(e.maxVisible)
		}
	}

	if ev.IsKeyDown && keys.IsContent(ev.Code) {
		s.everTyped = true
	}

	return e.listActions(show)
}

func (e *Engine) accept(p *Pending) []Action {
	if e.suppressed {
		return nil
	}
	s := &e.session
	store := s.store
	ev := p.event

	e.checkCompletions(p.target)

	n := len(s.completions)
	if s.selected < 0 && n >= 1 && (n == 1 || completion.Autoselects(store, s.lastCompletable)) {
		s.selected = 0
	}

	chosen, ok := s.selectedCompletion()
	if !ok {
		return e.listActions(true)
	}

	text, caret := p.target.Text(), p.target.Caret()
	completable := s.lastCompletable
	newText, newCaret := completion.Apply(store, text, caret, completable, chosen)

	e.log.Debug().
		Str("store", s.storeName).
		Str("completable", completable).
		Str("value", chosen.Value).
		Msg("Completion accepted")

	store.OnComplete(true, ev.Code, p.target.ID(), chosen.Value)
	s.resetAfterAccept()

	return []Action{
		{Kind: ApplyText, Text: newText, Caret: newCaret},
		{Kind: HideList},
	}
}

func (e *Engine) listActions(show bool) []Action {
	s := &e.session
	if !show || len(s.completions) == 0 {
		return []Action{{Kind: HideList}}
	}

	visible := s.completions
	if len(visible) > e.maxVisible {
		visible = visible[:e.maxVisible]
	}
	return []Action{{
		Kind:        ShowList,
		Completions: visible,
		Selected:    s.selected,
	}}
}
