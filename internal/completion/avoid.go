package completion

import "strings"

// AvoidSet holds lowercase values a store must never offer
type AvoidSet map[string]struct{}

// NewAvoidSet normalizes values to lowercase. Empty values are skipped.
func NewAvoidSet(values []string) AvoidSet {
	set := make(AvoidSet, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		set[strings.ToLower(v)] = struct{}{}
	}
	return set
}

// Contains reports whether value, compared case-insensitively, is avoided
func (s AvoidSet) Contains(value string) bool {
	if len(s) == 0 {
		return false
	}
	_, ok := s[strings.ToLower(value)]
	return ok
}

// Filter drops avoided completions, keeping order. The input is not modified.
func (s AvoidSet) Filter(list []Completion) []Completion {
	if len(s) == 0 || len(list) == 0 {
		return list
	}
	out := make([]Completion, 0, len(list))
	for _, c := range list {
		if !s.Contains(c.Value) {
			out = append(out, c)
		}
	}
	return out
}
