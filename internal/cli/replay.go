package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/NikitaCOEUR/autocomplete/internal/config"
	"github.com/NikitaCOEUR/autocomplete/internal/render"
	"github.com/NikitaCOEUR/autocomplete/internal/replay"
	"github.com/NikitaCOEUR/autocomplete/internal/timing"
)

// ReplayParams contains parameters for the Replay command
type ReplayParams struct {
	CommonParams
	ScriptPath string
	Timing     bool
	// Watch reruns the script whenever it or the config file changes
	Watch bool
}

// Replay plays a keystroke script against the configured stores, prints the
// trace and checks the script's expectations. In watch mode failures are
// printed and the command runs until ctx is done.
func Replay(ctx context.Context, params ReplayParams) (*replay.Result, error) {
	if !params.Watch {
		return replayOnce(ctx, params)
	}

	comps, err := initializeComponents(params.CommonParams)
	if err != nil {
		return nil, err
	}
	paths := []string{params.ScriptPath}
	if comps.config.Source != config.DefaultsSource {
		paths = append(paths, comps.config.Source)
	}

	out := params.out()
	var last *replay.Result
	err = replay.Watch(ctx, paths, comps.log, func(ctx context.Context) {
		_, _ = fmt.Fprintf(out, "\n▶ %s\n", params.ScriptPath)
		result, err := replayOnce(ctx, params)
		if err != nil {
			_, _ = fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		last = result
	})
	return last, err
}

func replayOnce(ctx context.Context, params ReplayParams) (*replay.Result, error) {
	script, err := replay.LoadScript(params.ScriptPath)
	if err != nil {
		return nil, err
	}

	comps, err := initializeComponents(params.CommonParams)
	if err != nil {
		return nil, err
	}

	e, err := comps.newEngine()
	if err != nil {
		return nil, err
	}

	recorder := timing.NewRecorder()
	result, err := replay.Run(ctx, e, script,
		replay.WithLogger(comps.log),
		replay.WithRecorder(recorder),
	)
	if err != nil {
		return nil, fmt.Errorf("replay failed: %w", err)
	}

	out := params.out()
	samples := recorder.Samples()
	for i, step := range result.Steps {
		line := fmt.Sprintf("%2d. %-20s %s", i+1, step.Step, render.Buffer(step.Text, step.Caret))
		if params.Timing && i < len(samples) {
			line += fmt.Sprintf("  (%s)", samples[i].Duration)
		}
		_, _ = fmt.Fprintln(out, line)
		_, _ = fmt.Fprintf(out, "    %s\n", render.Actions(step.Actions))
	}

	_, _ = fmt.Fprintf(out, "\nFinal: %s\n", render.Buffer(result.Text, result.Caret))
	if result.Submitted {
		_, _ = fmt.Fprintln(out, "Submitted")
	}
	if result.List != nil {
		_, _ = fmt.Fprintln(out, render.List(result.List, result.Selected))
	}
	if params.Timing {
		_, _ = fmt.Fprintln(out, recorder.Summary())
	}

	if problems := result.Check(script.Expect); len(problems) > 0 {
		_, _ = fmt.Fprintln(out, "\n❌ Expectations not met:")
		for i, p := range problems {
			_, _ = fmt.Fprintf(out, "%d. %s\n", i+1, p)
		}
		return result, fmt.Errorf("replay expectations failed: %s", strings.Join(problems, "; "))
	}
	if script.Expect != nil {
		_, _ = fmt.Fprintln(out, "\n✅ Expectations met")
	}

	return result, nil
}
