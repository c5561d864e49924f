// Package condition evaluates store activation conditions
package condition

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Condition represents a testable condition
type Condition interface {
	// Evaluate tests the condition and returns:
	// - bool: true if condition is met, false otherwise
	// - string: user-friendly reason if condition fails
	// - error: technical error if evaluation failed (file system error, etc.)
	Evaluate(ctx Context) (bool, string, error)
}

// Context provides the environment for condition evaluation
type Context struct {
	// Env overrides process environment variables
	Env map[string]string
	// ConfigDir anchors relative file paths
	ConfigDir string
	// TargetID and Text describe the focused input
	TargetID string
	Text     string
}

func (ctx Context) getenv(key string) string {
	if val, ok := ctx.Env[key]; ok {
		return val
	}
	return os.Getenv(key)
}

// expandEnv expands environment variables in a string using the context's env map
func (ctx Context) expandEnv(s string) string {
	return os.Expand(s, ctx.getenv)
}

// resolveRelativePath resolves a path relative to the config directory
func (ctx Context) resolveRelativePath(path string) string {
	if filepath.IsAbs(path) || ctx.ConfigDir == "" {
		return path
	}
	return filepath.Join(ctx.ConfigDir, path)
}

// FileCondition tests if a file exists
type FileCondition struct {
	Path string // Path to file (supports env var expansion)
}

// Evaluate implements Condition
func (c FileCondition) Evaluate(ctx Context) (bool, string, error) {
	resolvedPath := ctx.resolveRelativePath(ctx.expandEnv(c.Path))

	info, err := os.Stat(resolvedPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, fmt.Sprintf("file '%s' does not exist", c.Path), nil
		}
		return false, "", fmt.Errorf("failed to check file '%s': %w", c.Path, err)
	}

	if info.IsDir() {
		return false, fmt.Sprintf("'%s' is a directory, not a file", c.Path), nil
	}

	return true, "", nil
}

// VarCondition tests if an environment variable is set and non-empty
type VarCondition struct {
	Name string
}

// Evaluate implements Condition
func (c VarCondition) Evaluate(ctx Context) (bool, string, error) {
	if ctx.getenv(c.Name) != "" {
		return true, "", nil
	}
	return false, fmt.Sprintf("environment variable '%s' is not set or empty", c.Name), nil
}

// TextCondition tests the focused buffer against a regular expression
type TextCondition struct {
	Pattern *regexp.Regexp
}

// Evaluate implements Condition
func (c TextCondition) Evaluate(ctx Context) (bool, string, error) {
	if c.Pattern.MatchString(ctx.Text) {
		return true, "", nil
	}
	return false, fmt.Sprintf("text of '%s' does not match /%s/", ctx.TargetID, c.Pattern), nil
}

// AllCondition tests if all sub-conditions are true (AND logic)
type AllCondition struct {
	Conditions []Condition
}

// Evaluate implements Condition
func (c AllCondition) Evaluate(ctx Context) (bool, string, error) {
	var failedMessages []string

	for _, cond := range c.Conditions {
		ok, msg, err := cond.Evaluate(ctx)
		if err != nil {
			return false, "", err
		}
		if !ok {
			failedMessages = append(failedMessages, msg)
		}
	}

	if len(failedMessages) > 0 {
		return false, "  - " + strings.Join(failedMessages, "\n  - "), nil
	}

	return true, "", nil
}

// AnyCondition tests if at least one sub-condition is true (OR logic)
type AnyCondition struct {
	Conditions []Condition
}

// Evaluate implements Condition
func (c AnyCondition) Evaluate(ctx Context) (bool, string, error) {
	var allMessages []string

	for _, cond := range c.Conditions {
		ok, msg, err := cond.Evaluate(ctx)
		if err != nil {
			return false, "", err
		}
		if ok {
			return true, "", nil
		}
		allMessages = append(allMessages, msg)
	}

	combinedMsg := "none of the following conditions were met:\n"
	for _, msg := range allMessages {
		combinedMsg += "  - " + msg + "\n"
	}

	return false, combinedMsg, nil
}
