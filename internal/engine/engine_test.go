package engine

import (
	"bytes"
	"testing"
	"unicode/utf8"

	"github.com/NikitaCOEUR/autocomplete/internal/completion"
	"github.com/NikitaCOEUR/autocomplete/internal/keys"
	"github.com/NikitaCOEUR/autocomplete/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type buffer struct {
	id    string
	text  string
	caret int
}

func newBuffer(id, text string) *buffer {
	return &buffer{id: id, text: text, caret: len(text)}
}

func (b *buffer) ID() string   { return b.id }
func (b *buffer) Text() string { return b.text }
func (b *buffer) Caret() int   { return b.caret }

func (b *buffer) insert(r rune) {
	b.text = b.text[:b.caret] + string(r) + b.text[b.caret:]
	b.caret += utf8.RuneLen(r)
}

func (b *buffer) apply(actions []Action) {
	if a, ok := Find(actions, ApplyText); ok {
		b.text = a.Text
		b.caret = a.Caret
	}
}

// typeText sends keydown and keypress for every rune, inserts the rune
// unless suppressed, then resumes both handlers in order.
func typeText(e *Engine, b *buffer, s string) []Action {
	var last []Action
	for _, r := range s {
		code := keys.CodeForRune(r)
		down := e.HandleKey(b, keys.Event{Code: code, IsKeyDown: true})
		press := e.HandleKey(b, keys.Event{Code: code})
		if !down.Suppress() && !press.Suppress() {
			b.insert(r)
		}
		last = append(e.Resume(down.Pending), e.Resume(press.Pending)...)
		b.apply(last)
	}
	return last
}

// pressKey sends a single keydown and resumes its handler
func pressKey(e *Engine, b *buffer, code keys.Code) (Step, []Action) {
	step := e.HandleKey(b, keys.Event{Code: code, IsKeyDown: true})
	actions := e.Resume(step.Pending)
	b.apply(actions)
	return step, actions
}

// keypress sends a single keypress and resumes its handler
func keypress(e *Engine, b *buffer, code keys.Code) (Step, []Action) {
	step := e.HandleKey(b, keys.Event{Code: code})
	actions := e.Resume(step.Pending)
	b.apply(actions)
	return step, actions
}

func fruitStore(opts ...completion.Option) Constructor {
	return func(target Target, _ keys.Event) completion.Store {
		if target.ID() != "fruit" {
			return nil
		}
		return completion.NewIndexedStoreFromStrings([]string{"Apple", "apricot", "Banana"}, opts...)
	}
}

func newFruitEngine(t *testing.T, opts ...completion.Option) (*Engine, *buffer) {
	t.Helper()
	e := New()
	require.True(t, e.Register("fruit", fruitStore(opts...)))
	return e, newBuffer("fruit", "")
}

func lastList(t *testing.T, actions []Action) Action {
	t.Helper()
	var found *Action
	for i := range actions {
		if actions[i].Kind == ShowList || actions[i].Kind == HideList {
			found = &actions[i]
		}
	}
	require.NotNil(t, found, "no list action in %v", actions)
	return *found
}

func TestEngine_NoStoreRegistered(t *testing.T) {
	e := New()
	b := newBuffer("fruit", "")

	step := e.HandleKey(b, keys.Event{Code: keys.Code('A'), IsKeyDown: true})

	assert.Nil(t, step.Pending)
	assert.Empty(t, step.Actions)
	assert.False(t, e.Snapshot().Active)
}

func TestEngine_TypingShowsList(t *testing.T) {
	e, b := newFruitEngine(t)

	actions := typeText(e, b, "ap")

	list := lastList(t, actions)
	assert.Equal(t, ShowList, list.Kind)
	assert.Equal(t, []string{"Apple", "apricot"}, completion.Values(list.Completions))
	assert.Equal(t, -1, list.Selected)

	snap := e.Snapshot()
	assert.True(t, snap.Active)
	assert.Equal(t, "fruit", snap.StoreName)
	assert.Equal(t, "fruit", snap.TargetID)
	assert.Equal(t, "ap", snap.Completable)
	assert.True(t, snap.EverTyped)
}

func TestEngine_NoMatchHidesList(t *testing.T) {
	e, b := newFruitEngine(t)

	actions := typeText(e, b, "zz")

	assert.Equal(t, HideList, lastList(t, actions).Kind)
	assert.Empty(t, e.Snapshot().Completions)
}

func TestEngine_Navigation(t *testing.T) {
	e, b := newFruitEngine(t)
	typeText(e, b, "ap")

	step, actions := pressKey(e, b, keys.Down)
	assert.True(t, step.Suppress())
	assert.Equal(t, 0, lastList(t, actions).Selected)

	_, actions = pressKey(e, b, keys.Down)
	assert.Equal(t, 1, lastList(t, actions).Selected)

	// Clamped at the last row
	_, actions = pressKey(e, b, keys.Down)
	assert.Equal(t, 1, lastList(t, actions).Selected)

	_, actions = pressKey(e, b, keys.Up)
	assert.Equal(t, 0, lastList(t, actions).Selected)

	// Floored at the first row
	_, actions = pressKey(e, b, keys.Up)
	assert.Equal(t, 0, lastList(t, actions).Selected)
}

func TestEngine_NavigationIgnoresKeypress(t *testing.T) {
	e, b := newFruitEngine(t)
	typeText(e, b, "ap")

	_, actions := keypress(e, b, keys.Down)

	assert.Equal(t, -1, lastList(t, actions).Selected)
}

func TestEngine_SelectionClamp(t *testing.T) {
	e := New(WithMaxVisibleOptions(1))
	e.Register("fruit", fruitStore())
	b := newBuffer("fruit", "")
	typeText(e, b, "ap")

	sequence := []keys.Code{keys.Down, keys.Down, keys.Up, keys.Up, keys.Down, keys.Up, keys.Down, keys.Down}
	for _, code := range sequence {
		pressKey(e, b, code)
		snap := e.Snapshot()
		assert.GreaterOrEqual(t, snap.Selected, -1)
		assert.Less(t, snap.Selected, len(snap.Completions))
		assert.LessOrEqual(t, snap.Selected, 0, "max visible options caps the selection")
	}
}

func TestEngine_SelectionClampEmptyList(t *testing.T) {
	e, b := newFruitEngine(t)
	typeText(e, b, "zz")

	pressKey(e, b, keys.Down)
	assert.Equal(t, -1, e.Snapshot().Selected)

	pressKey(e, b, keys.Up)
	assert.Equal(t, -1, e.Snapshot().Selected)
}

func TestEngine_ShowListTruncatedToMaxVisible(t *testing.T) {
	e := New(WithMaxVisibleOptions(1))
	e.Register("fruit", fruitStore())
	b := newBuffer("fruit", "")

	actions := typeText(e, b, "ap")

	list := lastList(t, actions)
	assert.Equal(t, []string{"Apple"}, completion.Values(list.Completions))
	assert.Len(t, e.Snapshot().Completions, 2)
	assert.Equal(t, 1, e.MaxVisibleOptions())
}

func TestEngine_AcceptWithEnter(t *testing.T) {
	var accepted []string
	e, b := newFruitEngine(t, completion.WithOnComplete(func(ok bool, code keys.Code, targetID, value string) {
		if ok {
			accepted = append(accepted, targetID+":"+value)
		}
	}))
	typeText(e, b, "ap")
	pressKey(e, b, keys.Down)

	// Keydown for ENTER only refreshes the list
	down, _ := pressKey(e, b, keys.Enter)
	assert.False(t, down.Suppress())

	step, actions := keypress(e, b, keys.Enter)
	assert.True(t, step.Suppress())
	require.NotNil(t, step.Pending)
	assert.Equal(t, "accept", step.Pending.Kind())

	apply, ok := Find(actions, ApplyText)
	require.True(t, ok)
	assert.Equal(t, "Apple, ", apply.Text)
	assert.Equal(t, 7, apply.Caret)
	assert.True(t, Has(actions, HideList))
	assert.Equal(t, []string{"fruit:Apple"}, accepted)

	snap := e.Snapshot()
	assert.True(t, snap.Active)
	assert.False(t, snap.HasCompletable)
	assert.Empty(t, snap.Completions)
	assert.Equal(t, -1, snap.Selected)
	assert.False(t, snap.EverTyped)
}

func TestEngine_AcceptRoundTripInList(t *testing.T) {
	e := New()
	e.Register("fruit", func(Target, keys.Event) completion.Store {
		return completion.NewIndexedStoreFromStrings([]string{"banana"})
	})
	b := newBuffer("fruit", "a, ")

	typeText(e, b, "b")
	pressKey(e, b, keys.Down)
	_, actions := keypress(e, b, keys.Enter)

	apply, ok := Find(actions, ApplyText)
	require.True(t, ok)
	assert.Equal(t, "a, banana, ", apply.Text)
	assert.Equal(t, len("a, banana, "), apply.Caret)
}

func TestEngine_TabAutoselectsFirstRow(t *testing.T) {
	e, b := newFruitEngine(t)
	typeText(e, b, "ap")

	step, actions := pressKey(e, b, keys.Tab)

	// No explicit selection, so the host keeps its default handling
	assert.False(t, step.Suppress())
	apply, ok := Find(actions, ApplyText)
	require.True(t, ok)
	assert.Equal(t, "Apple, ", apply.Text)
}

func TestEngine_NoAutoselectNeedsSelection(t *testing.T) {
	e, b := newFruitEngine(t, completion.WithAutoselectFirstRow(false))
	typeText(e, b, "ap")

	_, actions := pressKey(e, b, keys.Tab)

	assert.False(t, Has(actions, ApplyText))
	assert.Equal(t, ShowList, lastList(t, actions).Kind)
}

func TestEngine_SingleCompletionAcceptedWithoutSelection(t *testing.T) {
	e, b := newFruitEngine(t, completion.WithAutoselectFirstRow(false))
	typeText(e, b, "ban")

	_, actions := pressKey(e, b, keys.Tab)

	apply, ok := Find(actions, ApplyText)
	require.True(t, ok)
	assert.Equal(t, "Banana, ", apply.Text)
}

func TestEngine_CommaCompletes(t *testing.T) {
	e, b := newFruitEngine(t)
	typeText(e, b, "ban")
	pressKey(e, b, keys.Down)

	actions := typeText(e, b, ",")

	apply, ok := Find(actions, ApplyText)
	require.True(t, ok)
	assert.Equal(t, "Banana, ", apply.Text)
	assert.Equal(t, "Banana, ", b.text)
}

func TestEngine_AcceptKeyWithEmptyList(t *testing.T) {
	var calls []bool
	e, b := newFruitEngine(t, completion.WithOnComplete(func(ok bool, _ keys.Code, _, value string) {
		calls = append(calls, ok)
		assert.Empty(t, value)
	}))
	typeText(e, b, "zz")

	step := e.HandleKey(b, keys.Event{Code: keys.Tab, IsKeyDown: true})

	assert.Nil(t, step.Pending)
	assert.False(t, step.Suppress())
	assert.Equal(t, []bool{false}, calls)
}

func TestEngine_CacheHitKeepsState(t *testing.T) {
	e, b := newFruitEngine(t)
	typeText(e, b, "ap")
	pressKey(e, b, keys.Down)
	before := e.Snapshot()

	_, actions := pressKey(e, b, keys.Shift)

	after := e.Snapshot()
	assert.Equal(t, before.Completions, after.Completions)
	assert.Equal(t, before.Selected, after.Selected)
	assert.Equal(t, 0, lastList(t, actions).Selected)
}

func TestEngine_StickySelection(t *testing.T) {
	t.Run("surviving selection reselects top row", func(t *testing.T) {
		e, b := newFruitEngine(t)
		typeText(e, b, "ap")
		pressKey(e, b, keys.Down)
		pressKey(e, b, keys.Down) // apricot

		actions := typeText(e, b, "r")

		list := lastList(t, actions)
		assert.Equal(t, []string{"apricot"}, completion.Values(list.Completions))
		assert.Equal(t, 0, list.Selected)
	})

	t.Run("lost selection resets", func(t *testing.T) {
		e, b := newFruitEngine(t)
		typeText(e, b, "ap")
		pressKey(e, b, keys.Down) // Apple

		actions := typeText(e, b, "r")

		assert.Equal(t, -1, lastList(t, actions).Selected)
	})
}

func TestEngine_EscapeHidesThenBlurs(t *testing.T) {
	e, b := newFruitEngine(t)
	typeText(e, b, "ap")

	step, actions := pressKey(e, b, keys.Esc)
	assert.True(t, step.Suppress())
	assert.Equal(t, HideList, lastList(t, actions).Kind)
	assert.True(t, e.Snapshot().Active)
	assert.Empty(t, e.Snapshot().Completions)

	// Same completable, the list stays hidden
	_, actions = pressKey(e, b, keys.Shift)
	assert.Equal(t, HideList, lastList(t, actions).Kind)

	step = e.HandleKey(b, keys.Event{Code: keys.Esc, IsKeyDown: true})
	assert.Nil(t, step.Pending)
	assert.True(t, Has(step.Actions, BlurTarget))
	assert.False(t, e.Snapshot().Active)
}

func TestEngine_EscapeDoesNotBindStore(t *testing.T) {
	e, b := newFruitEngine(t)

	step := e.HandleKey(b, keys.Event{Code: keys.Esc, IsKeyDown: true})
	assert.Empty(t, step.Actions)
	assert.Nil(t, step.Pending)

	step = e.HandleKey(b, keys.Event{Code: keys.Enter})
	assert.Nil(t, step.Pending)
	assert.False(t, e.Snapshot().Active)
}

func TestEngine_Cancel(t *testing.T) {
	e, b := newFruitEngine(t)
	typeText(e, b, "ap")

	actions := e.Cancel()
	assert.Equal(t, []Action{{Kind: HideList}}, actions)

	snap := e.Snapshot()
	assert.True(t, snap.Active)
	assert.True(t, snap.Suppressed)

	// Further edits do not bring the list back
	actions = typeText(e, b, "r")
	assert.Empty(t, actions)
	assert.Equal(t, "apr", b.text)

	// TAB has no list to accept from
	step := e.HandleKey(b, keys.Event{Code: keys.Tab, IsKeyDown: true})
	assert.Nil(t, step.Pending)

	// Blur and refocus restores completion
	e.Blur()
	assert.False(t, e.Snapshot().Suppressed)
	actions = typeText(e, b, "i")
	assert.Equal(t, []string{"apricot"}, completion.Values(lastList(t, actions).Completions))
}

func TestEngine_FocusChangeRebinds(t *testing.T) {
	e := New()
	e.Register("fruit", fruitStore())
	e.Register("veg", func(target Target, _ keys.Event) completion.Store {
		if target.ID() != "veg" {
			return nil
		}
		return completion.NewIndexedStoreFromStrings([]string{"Carrot", "Celery"})
	})
	fruit := newBuffer("fruit", "")
	veg := newBuffer("veg", "")

	typeText(e, fruit, "ap")
	stale := e.HandleKey(fruit, keys.Event{Code: keys.Down, IsKeyDown: true})

	actions := typeText(e, veg, "c")
	assert.Equal(t, "veg", e.Snapshot().StoreName)
	assert.Equal(t, []string{"Carrot", "Celery"}, completion.Values(lastList(t, actions).Completions))

	// The handler scheduled for the old session is dropped
	assert.Nil(t, e.Resume(stale.Pending))
	assert.Equal(t, -1, e.Snapshot().Selected)
}

func TestEngine_UnmatchedTargetTearsDownSession(t *testing.T) {
	e, b := newFruitEngine(t)
	typeText(e, b, "ap")

	other := newBuffer("notes", "")
	step := e.HandleKey(other, keys.Event{Code: keys.Code('X'), IsKeyDown: true})

	assert.True(t, Has(step.Actions, HideList))
	assert.Nil(t, step.Pending)
	assert.False(t, e.Snapshot().Active)
}

func TestEngine_NilTargetBlurs(t *testing.T) {
	e, b := newFruitEngine(t)
	typeText(e, b, "ap")

	step := e.HandleKey(nil, keys.Event{Code: keys.Down, IsKeyDown: true})

	assert.True(t, Has(step.Actions, HideList))
	assert.False(t, e.Snapshot().Active)
}

func TestEngine_EnterOnOtherTargetPassesThrough(t *testing.T) {
	e, b := newFruitEngine(t)
	typeText(e, b, "ap")

	other := newBuffer("notes", "")
	step := e.HandleKey(other, keys.Event{Code: keys.Enter})

	assert.Nil(t, step.Pending)
	assert.Empty(t, step.Actions)
	assert.Equal(t, "fruit", e.Snapshot().TargetID)
}

func TestEngine_AvoidList(t *testing.T) {
	e, b := newFruitEngine(t, completion.WithAvoid("APPLE"))

	actions := typeText(e, b, "ap")

	assert.Equal(t, []string{"apricot"}, completion.Values(lastList(t, actions).Completions))
	assert.Equal(t, []string{"apple"}, e.Snapshot().Avoid)
}

type plainStore struct {
	completion.Base
	values []string
}

func (s *plainStore) Completable(text string, caret int) string {
	return completion.WordCompletable(text, caret)
}

func (s *plainStore) Completions(prefix string, _ []completion.Completion) []completion.Completion {
	var out []completion.Completion
	for _, v := range s.values {
		if prefix != "" && len(v) >= len(prefix) && v[:len(prefix)] == prefix {
			out = append(out, completion.Completion{Value: v})
		}
	}
	return out
}

func TestEngine_AvoidListFilteredForUnawareStores(t *testing.T) {
	e := New()
	e.Register("plain", func(Target, keys.Event) completion.Store {
		s := &plainStore{Base: completion.NewBase(nil), values: []string{"owner:me", "owner:you"}}
		s.Avoid = []string{"OWNER:ME"}
		return s
	})
	b := newBuffer("q", "")

	actions := typeText(e, b, "ow")

	assert.Equal(t, []string{"owner:you"}, completion.Values(lastList(t, actions).Completions))
}

type spaceStore struct {
	plainStore
}

func (s *spaceStore) Substitute(text string, caret int, completable string, c completion.Completion) string {
	start := caret - len(completable)
	return text[:start] + c.Value + " " + text[caret:]
}

func (s *spaceStore) CaretAfter(_ string, caret int, completable string, c completion.Completion) int {
	return caret - len(completable) + len(c.Value) + 1
}

func TestEngine_CaretPlacer(t *testing.T) {
	e := New()
	e.Register("space", func(Target, keys.Event) completion.Store {
		return &spaceStore{plainStore{Base: completion.NewBase(nil), values: []string{"status:open"}}}
	})
	b := newBuffer("q", "is:new ")

	typeText(e, b, "st")
	_, actions := pressKey(e, b, keys.Tab)

	apply, ok := Find(actions, ApplyText)
	require.True(t, ok)
	assert.Equal(t, "is:new status:open ", apply.Text)
	assert.Equal(t, len("is:new status:open "), apply.Caret)
}

func TestEngine_EverTyped(t *testing.T) {
	e, b := newFruitEngine(t)

	typeText(e, b, "a")
	assert.True(t, e.Snapshot().EverTyped)

	pressKey(e, b, keys.Down)
	pressKey(e, b, keys.Tab)
	assert.False(t, e.Snapshot().EverTyped, "accept resets the flag")

	pressKey(e, b, keys.Left)
	pressKey(e, b, keys.Backspace)
	assert.False(t, e.Snapshot().EverTyped, "navigation and deletion are not typing")
}

func TestEngine_UnimplementedStoreDoesNotCrash(t *testing.T) {
	buf := &bytes.Buffer{}
	e := New()
	e.Register("broken", func(Target, keys.Event) completion.Store {
		b := completion.NewBase(logger.New("error", buf))
		return &b
	})
	b := newBuffer("q", "")

	actions := typeText(e, b, "x")

	assert.Equal(t, HideList, lastList(t, actions).Kind)
	assert.Contains(t, buf.String(), "store does not implement Completable")
}

func TestEngine_ResumeNilPending(t *testing.T) {
	e := New()
	assert.Nil(t, e.Resume(nil))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	none := func(Target, keys.Event) completion.Store { return nil }
	some := func(Target, keys.Event) completion.Store {
		return completion.NewIndexedStoreFromStrings([]string{"x"})
	}

	assert.True(t, r.Register("none", none))
	assert.True(t, r.Register("first", some))
	assert.False(t, r.Register("first", none), "re-registering is a no-op")
	assert.True(t, r.Register("second", some))
	assert.False(t, r.Register("nil", nil))

	assert.Equal(t, []string{"none", "first", "second"}, r.Names())
	assert.Equal(t, 3, r.Len())

	name, store := r.Match(newBuffer("any", ""), keys.Event{})
	assert.Equal(t, "first", name)
	assert.NotNil(t, store)
}

func TestEngine_WithRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register("fruit", fruitStore())

	e := New(WithRegistry(r), WithLogger(nil))

	assert.Same(t, r, e.Registry())
	assert.False(t, e.Register("fruit", fruitStore()))
}

func TestAction_String(t *testing.T) {
	show := Action{Kind: ShowList, Completions: []completion.Completion{{Value: "a"}}, Selected: 0}
	assert.Equal(t, `show-list ["a"] selected=0`, show.String())
	assert.Equal(t, `apply-text "a, " caret=3`, Action{Kind: ApplyText, Text: "a, ", Caret: 3}.String())
	assert.Equal(t, "blur", Action{Kind: BlurTarget}.String())
	assert.Equal(t, "action(42)", ActionKind(42).String())
}
