// Package completion defines completion candidates, the store contract every
// completion policy implements, and the default first-character indexed store.
package completion

import "strings"

// Span is a run of text, optionally highlighted as the matched part
type Span struct {
	Text      string
	Highlight bool
}

// RichText is presentation-only text owned by the UI layer.
// The engine never inspects it.
type RichText []Span

// Plain returns RichText with a single unhighlighted span
func Plain(s string) RichText {
	if s == "" {
		return nil
	}
	return RichText{{Text: s}}
}

// String flattens the spans back to text
func (r RichText) String() string {
	var b strings.Builder
	for _, s := range r {
		b.WriteString(s.Text)
	}
	return b.String()
}

// Candidate is one source entry a store can offer
type Candidate struct {
	Value string `json:"value" yaml:"value" msgpack:"value"`
	Doc   string `json:"doc,omitempty" yaml:"doc,omitempty" msgpack:"doc,omitempty"`
}

// Completion is one ranked candidate replacement.
// It is created when a store computes a match and never mutated afterwards.
type Completion struct {
	// Value is the canonical completion text inserted on acceptance
	Value string
	// Display is the value with the matched part highlighted
	Display RichText
	// DocDisplay is the doc-string, highlighted when it was the match source
	DocDisplay RichText
	// Heading marks the first completion of a rendered group
	Heading string
}

// Values returns the canonical values of a completion list, in order
func Values(list []Completion) []string {
	values := make([]string, len(list))
	for i, c := range list {
		values[i] = c.Value
	}
	return values
}
