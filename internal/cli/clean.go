package cli

import (
	"fmt"
	"path/filepath"

	"github.com/NikitaCOEUR/autocomplete/internal/cache"
)

// CleanParams holds parameters for the Clean function
type CleanParams struct {
	CommonParams
	// Dictionary limits the cleanup to one source file
	Dictionary string
}

// Clean removes cached dictionaries
func Clean(params CleanParams) error {
	if params.CacheDir == "" {
		return fmt.Errorf("no cache directory configured")
	}
	log := params.logger()

	c, err := cache.New(params.CacheDir, log)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	out := params.out()
	if params.Dictionary == "" {
		if err := c.Clear(); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		log.Info().Str("dir", c.Dir()).Msg("All cache entries cleared")
		_, _ = fmt.Fprintln(out, "✓ All cache entries cleared")
		return nil
	}

	abs, err := filepath.Abs(params.Dictionary)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", params.Dictionary, err)
	}
	if _, found := c.Get(abs); !found {
		_, _ = fmt.Fprintf(out, "%s is not cached\n", abs)
		return nil
	}
	if err := c.Delete(abs); err != nil {
		return fmt.Errorf("failed to remove cache entry: %w", err)
	}
	log.Info().Str("dictionary", abs).Msg("Cache entry removed")
	_, _ = fmt.Fprintf(out, "✓ Cache cleared for %s\n", abs)
	return nil
}
