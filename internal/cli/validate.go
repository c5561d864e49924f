package cli

import (
	"fmt"
	"os"

	"github.com/NikitaCOEUR/autocomplete/internal/config"
	"github.com/NikitaCOEUR/autocomplete/internal/stores"
)

// ValidateParams contains parameters for the Validate command
type ValidateParams struct {
	CommonParams
	// Path is the file to validate; the resolved config file when empty
	Path string
}

// Validate validates an autocomplete configuration file
func Validate(params ValidateParams) error {
	configPath := params.Path
	if configPath == "" {
		configPath = params.ConfigPath
	}
	if configPath == "" {
		configPath = os.Getenv(config.EnvConfigPath)
	}
	if configPath == "" {
		globalPath, err := config.GetGlobalConfigPath()
		if err == nil {
			if _, statErr := os.Stat(globalPath); statErr == nil {
				configPath = globalPath
			}
		}
	}
	if configPath == "" {
		return fmt.Errorf("no config file found")
	}

	out := params.out()
	_, _ = fmt.Fprintf(out, "Validating: %s\n\n", configPath)

	result, err := config.Validate(configPath)
	if err != nil {
		return err
	}

	// Dictionaries and store conditions only fail once stores are built
	if result.Valid {
		if err := checkStores(configPath); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, config.ValidationError{Field: "stores", Message: err.Error()})
		}
	}

	if result.Valid {
		_, _ = fmt.Fprintln(out, "✅ Configuration is valid!")
		return nil
	}

	_, _ = fmt.Fprintln(out, "❌ Configuration has errors:")
	for i, validationErr := range result.Errors {
		_, _ = fmt.Fprintf(out, "%d. [%s] %s\n", i+1, validationErr.Field, validationErr.Message)
	}

	_, _ = fmt.Fprintf(out, "\nFound %d error(s)\n", len(result.Errors))

	return fmt.Errorf("validation failed")
}

func checkStores(configPath string) error {
	cfg, err := config.New(nil).Load(configPath)
	if err != nil {
		return err
	}
	_, err = stores.Constructors(cfg, nil)
	return err
}
