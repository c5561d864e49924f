package completion

import (
	"github.com/NikitaCOEUR/autocomplete/internal/derrors"
	"github.com/NikitaCOEUR/autocomplete/internal/keys"
	"github.com/NikitaCOEUR/autocomplete/internal/logger"
)

// Store is a pluggable completion policy bound to one focused input
type Store interface {
	// Completable returns the substring ending at caret that is subject to
	// completion. It is called on every keystroke and must not depend on
	// completion state.
	Completable(text string, caret int) string

	// Completions returns ranked completions for prefix. An empty prefix
	// yields an empty list unless the store defines a show-everything sentinel.
	// toFilter is the previous list and may be ignored.
	Completions(prefix string, toFilter []Completion) []Completion

	// Substitute returns the full buffer text after replacing completable
	// with the completion value at caret.
	Substitute(text string, caret int, completable string, c Completion) string

	// IsCompletionKey decides whether a keystroke accepts the current selection
	IsCompletionKey(code keys.Code, isKeyDown, isShift bool) bool

	// AutoselectFirstRow reports whether the first row counts as selected
	// when no explicit selection exists
	AutoselectFirstRow() bool

	// ComputeAvoid returns values that must never be offered
	ComputeAvoid() []string

	// OnComplete is called after every accept attempt. accepted is false
	// when a completion key arrived while no list was showing.
	OnComplete(accepted bool, code keys.Code, targetID string, value string)
}

// CaretPlacer is implemented by stores whose Substitute uses a joiner other
// than the default comma list. The engine uses it instead of DefaultCaret.
type CaretPlacer interface {
	CaretAfter(text string, caret int, completable string, c Completion) int
}

// AvoidAware stores receive the session's normalized avoid set at bind time
type AvoidAware interface {
	SetAvoid(avoid AvoidSet)
}

// FirstRowChooser is implemented by stores whose autoselect policy depends
// on the completable a list was computed for
type FirstRowChooser interface {
	AutoselectFirstRowFor(completable string) bool
}

// Autoselects reports whether store implicitly selects the first row of a
// list computed for completable
func Autoselects(store Store, completable string) bool {
	if c, ok := store.(FirstRowChooser); ok {
		return c.AutoselectFirstRowFor(completable)
	}
	return store.AutoselectFirstRow()
}

// OnCompleteFunc is the signature of Store.OnComplete
type OnCompleteFunc func(accepted bool, code keys.Code, targetID string, value string)

// Base supplies default behavior for the store contract. Policies embed it
// and override what they need. Completable and Completions are stubs that
// every real store must override.
type Base struct {
	// CommaCompletes makes COMMA accept the selection on keypress
	CommaCompletes bool
	// AutoselectFirst is returned by AutoselectFirstRow
	AutoselectFirst bool
	// Avoid is returned by ComputeAvoid
	Avoid []string
	// Complete is invoked by OnComplete when set
	Complete OnCompleteFunc

	log *logger.Logger
}

// NewBase returns defaults: comma completes and the first row is autoselected
func NewBase(log *logger.Logger) Base {
	return Base{
		CommaCompletes:  true,
		AutoselectFirst: true,
		log:             logger.OrDiscard(log),
	}
}

// Logger returns the store's logger
func (b *Base) Logger() *logger.Logger {
	if b.log == nil {
		b.log = logger.Discard()
	}
	return b.log
}

// SetLogger replaces the store's logger
func (b *Base) SetLogger(log *logger.Logger) {
	b.log = logger.OrDiscard(log)
}

func (b *Base) unimplemented(method string) {
	b.Logger().Error().
		Err(derrors.NewUnimplementedError(method)).
		Msg("Store contract violation")
}

// Completable is a stub; stores must override it
func (b *Base) Completable(_ string, _ int) string {
	b.unimplemented("Completable")
	return ""
}

// Completions is a stub; stores must override it
func (b *Base) Completions(_ string, _ []Completion) []Completion {
	b.unimplemented("Completions")
	return []Completion{}
}

// Substitute joins completions into a comma separated list
func (b *Base) Substitute(text string, caret int, completable string, c Completion) string {
	return DefaultSubstitute(text, caret, completable, c)
}

// IsCompletionKey accepts ENTER, and COMMA when CommaCompletes is set, on
// keypress, and un-shifted TAB on either phase. Shifted COMMA types '<'.
func (b *Base) IsCompletionKey(code keys.Code, isKeyDown, isShift bool) bool {
	if !isKeyDown && (code == keys.Enter || (code == keys.Comma && !isShift && b.CommaCompletes)) {
		return true
	}
	// Some hosts never deliver a keypress for TAB, so keydown counts too.
	return code == keys.Tab && !isShift
}

// AutoselectFirstRow returns the AutoselectFirst flag
func (b *Base) AutoselectFirstRow() bool {
	return b.AutoselectFirst
}

// ComputeAvoid returns the configured avoid list
func (b *Base) ComputeAvoid() []string {
	return b.Avoid
}

// OnComplete forwards to the Complete callback when one is set
func (b *Base) OnComplete(accepted bool, code keys.Code, targetID string, value string) {
	if b.Complete != nil {
		b.Complete(accepted, code, targetID, value)
	}
}
