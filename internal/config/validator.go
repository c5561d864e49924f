package config

import (
	"fmt"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/NikitaCOEUR/autocomplete/internal/completion"
)

// ValidationError represents a validation error with details
type ValidationError struct {
	Field   string
	Message string
}

// ValidationResult contains the results of config validation
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
}

func (r *ValidationResult) addError(field, message string) {
	r.Valid = false
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: message})
}

// Validate checks a config file against the schema, then loads it and runs
// the semantic checks.
func Validate(file string) (*ValidationResult, error) {
	content, err := os.ReadFile(file)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", file)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	result, err := ValidateWithSchema(file, content)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return result, nil
	}

	cfg, err := New(nil).Load(file)
	if err != nil {
		result.addError("syntax", fmt.Sprintf("Failed to parse config: %v", err))
		return result, nil
	}

	CheckConfig(cfg, result)
	return result, nil
}

// CheckConfig runs the semantic checks the schema cannot express
func CheckConfig(cfg *Config, result *ValidationResult) {
	if cfg.Engine.MaxVisibleOptions <= 0 {
		result.addError("engine/max_visible_options", "Must be positive")
	}
	if cfg.Engine.CountThreshold <= 0 {
		result.addError("engine/count_threshold", "Must be positive")
	}

	seen := make(map[string]bool)
	for i, s := range cfg.Stores {
		field := fmt.Sprintf("stores/%d", i)
		if s.Name != "" {
			field = "stores/" + s.Name
		}

		if strings.TrimSpace(s.Name) == "" {
			result.addError(field, "Store name is empty")
		} else if seen[s.Name] {
			result.addError(field, fmt.Sprintf("Duplicate store name '%s'", s.Name))
		}
		seen[s.Name] = true

		if !slices.Contains(Kinds, s.Kind) {
			result.addError(field, fmt.Sprintf("Unknown store kind '%s' (want one of %s)", s.Kind, strings.Join(Kinds, ", ")))
		}

		if len(s.Targets) == 0 {
			result.addError(field, "No targets")
		}
		for _, pattern := range s.Targets {
			if _, err := path.Match(pattern, ""); err != nil {
				result.addError(field, fmt.Sprintf("Invalid target pattern '%s': %v", pattern, err))
			}
		}

		if s.Sentinel != "" && (!strings.HasPrefix(s.Sentinel, completion.SentinelPrefix) || len(s.Sentinel) < 2) {
			result.addError(field, fmt.Sprintf("Sentinel '%s' must start with '%s'", s.Sentinel, completion.SentinelPrefix))
		}

		if s.Dictionary == "" && len(s.Candidates) == 0 {
			result.addError(field, "Store has neither candidates nor a dictionary")
		}
		if s.Dictionary != "" {
			if _, err := os.Stat(s.Dictionary); err != nil {
				result.addError(field, fmt.Sprintf("Dictionary not readable: %v", err))
			}
		}

		for j, c := range s.Candidates {
			if strings.TrimSpace(c.Value) == "" {
				result.addError(fmt.Sprintf("%s/candidates/%d", field, j), "Candidate value is empty")
			}
		}
	}
}
