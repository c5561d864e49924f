package condition

import (
	"fmt"
	"regexp"

	"github.com/NikitaCOEUR/autocomplete/internal/config"
)

// Parse converts a config.When into a Condition.
// Returns an error if the When is invalid (e.g., no conditions specified)
func Parse(when *config.When) (Condition, error) {
	if when == nil {
		return nil, fmt.Errorf("when is nil")
	}

	atomicCount := countAtomicConditions(when)
	if err := validateConditions(atomicCount, when); err != nil {
		return nil, err
	}

	if len(when.All) > 0 {
		return parseList("all", when.All, func(c []Condition) Condition { return AllCondition{Conditions: c} })
	}
	if len(when.Any) > 0 {
		return parseList("any", when.Any, func(c []Condition) Condition { return AnyCondition{Conditions: c} })
	}

	conditions, err := collectAtomicConditions(when)
	if err != nil {
		return nil, err
	}
	if len(conditions) == 1 {
		return conditions[0], nil
	}
	return AllCondition{Conditions: conditions}, nil
}

func countAtomicConditions(when *config.When) int {
	count := 0
	for _, field := range []string{when.File, when.Var, when.Text} {
		if field != "" {
			count++
		}
	}
	return count
}

// validateConditions validates the condition structure
func validateConditions(atomicCount int, when *config.When) error {
	composite := len(when.All) > 0 || len(when.Any) > 0

	if atomicCount == 0 && !composite {
		return fmt.Errorf("when block must specify at least one condition")
	}
	if atomicCount > 0 && composite {
		return fmt.Errorf("cannot mix atomic conditions (file, var, text) with composite conditions (all, any) at the same level")
	}
	if len(when.All) > 0 && len(when.Any) > 0 {
		return fmt.Errorf("cannot have both 'all' and 'any' at the same level")
	}
	return nil
}

func collectAtomicConditions(when *config.When) ([]Condition, error) {
	var conditions []Condition

	if when.File != "" {
		conditions = append(conditions, FileCondition{Path: when.File})
	}
	if when.Var != "" {
		conditions = append(conditions, VarCondition{Name: when.Var})
	}
	if when.Text != "" {
		pattern, err := regexp.Compile(when.Text)
		if err != nil {
			return nil, fmt.Errorf("invalid text pattern: %w", err)
		}
		conditions = append(conditions, TextCondition{Pattern: pattern})
	}

	return conditions, nil
}

func parseList(name string, whens []config.When, combine func([]Condition) Condition) (Condition, error) {
	conditions := make([]Condition, 0, len(whens))
	for i := range whens {
		cond, err := Parse(&whens[i])
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", name, i, err)
		}
		conditions = append(conditions, cond)
	}
	return combine(conditions), nil
}
