package cli

import (
	"fmt"

	"github.com/NikitaCOEUR/autocomplete/internal/completion"
	"github.com/NikitaCOEUR/autocomplete/internal/derrors"
	"github.com/NikitaCOEUR/autocomplete/internal/render"
	"github.com/NikitaCOEUR/autocomplete/internal/stores"
)

// CompleteParams contains parameters for the Complete command
type CompleteParams struct {
	CommonParams
	Store string
	Text  string
	// Caret is a byte offset into Text; negative means the end
	Caret int
	// Accept is the 0-based row to accept; negative shows the list only
	Accept int
}

// CompleteResult is what Complete computed
type CompleteResult struct {
	Completable string
	Completions []completion.Completion
	// Text and Caret are set when a row was accepted
	Text     string
	Caret    int
	Accepted bool
}

// Complete runs one store against a buffer without the keystroke machinery
func Complete(params CompleteParams) (*CompleteResult, error) {
	comps, err := initializeComponents(params.CommonParams)
	if err != nil {
		return nil, err
	}

	store, err := stores.ByName(comps.config, params.Store, comps.log, comps.storeOptions()...)
	if err != nil {
		return nil, err
	}

	caret := params.Caret
	if caret < 0 || caret > len(params.Text) {
		caret = len(params.Text)
	}

	avoid := completion.NewAvoidSet(store.ComputeAvoid())
	if aware, ok := store.(completion.AvoidAware); ok {
		aware.SetAvoid(avoid)
	}

	result := &CompleteResult{Completable: store.Completable(params.Text, caret)}
	result.Completions = avoid.Filter(store.Completions(result.Completable, nil))

	comps.log.Debug().
		Str("store", params.Store).
		Str("completable", result.Completable).
		Int("count", len(result.Completions)).
		Msg("Completions computed")

	out := params.out()
	_, _ = fmt.Fprintf(out, "Completable: %q\n", result.Completable)
	_, _ = fmt.Fprintln(out, render.List(result.Completions, params.Accept))

	if params.Accept < 0 {
		return result, nil
	}
	if params.Accept >= len(result.Completions) {
		return nil, derrors.NewValidationError("accept",
			fmt.Sprintf("row %d out of range, %d completions", params.Accept, len(result.Completions)), nil)
	}

	chosen := result.Completions[params.Accept]
	result.Text, result.Caret = completion.Apply(store, params.Text, caret, result.Completable, chosen)
	result.Accepted = true
	store.OnComplete(true, 0, params.Store, chosen.Value)

	_, _ = fmt.Fprintf(out, "\nAccepted %q\n%s\n", chosen.Value, render.Buffer(result.Text, result.Caret))
	return result, nil
}
