package cli

import (
	"fmt"

	"github.com/NikitaCOEUR/autocomplete/internal/status"
)

// Stores displays the resolved configuration and every configured store
func Stores(params CommonParams) error {
	comps, err := initializeComponents(params)
	if err != nil {
		return err
	}

	data := status.Collect(comps.config, comps.loader, params.CacheDir)
	_, _ = fmt.Fprintln(params.out(), status.Render(data))
	return nil
}
