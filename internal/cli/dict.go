package cli

import (
	"fmt"

	"github.com/NikitaCOEUR/autocomplete/internal/dictionary"
)

// DictPackParams contains parameters for the DictPack command
type DictPackParams struct {
	CommonParams
	Input  string
	Output string
}

// DictPack converts a YAML, JSON or text dictionary to msgpack
func DictPack(params DictPackParams) error {
	log := params.logger()

	candidates, err := dictionary.Load(params.Input)
	if err != nil {
		return err
	}
	if err := dictionary.Pack(candidates, params.Output); err != nil {
		return err
	}

	log.Debug().
		Str("input", params.Input).
		Str("format", dictionary.DetectFormat(params.Input).String()).
		Str("output", params.Output).
		Int("entries", len(candidates)).
		Msg("Dictionary packed")

	_, _ = fmt.Fprintf(params.out(), "Packed %d entries into %s\n", len(candidates), params.Output)
	return nil
}
