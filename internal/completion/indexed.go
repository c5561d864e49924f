package completion

import (
	"regexp"
	"unicode"
	"unicode/utf8"

	"github.com/NikitaCOEUR/autocomplete/internal/logger"
)

// DefaultCountThreshold bounds how many matches a single lookup collects
const DefaultCountThreshold = 2500

var wordSplitter = regexp.MustCompile(`\W+`)

// IndexedStore is the default store: a comma separated list completed from a
// fixed candidate list. Candidates are bucketed by the lowercased first
// character of every word in their value and doc-string, so a lookup only
// scans the bucket of the prefix's first character.
type IndexedStore struct {
	Base

	candidates     []Candidate
	index          map[rune][]int
	countThreshold int
	showAll        map[string]bool
	avoid          AvoidSet
}

// Option configures an IndexedStore
type Option func(*IndexedStore)

// WithCountThreshold caps the number of matches per lookup
func WithCountThreshold(n int) Option {
	return func(s *IndexedStore) {
		if n > 0 {
			s.countThreshold = n
		}
	}
}

// WithShowAll registers sentinel prefixes that list every candidate
func WithShowAll(sentinels ...string) Option {
	return func(s *IndexedStore) {
		for _, sentinel := range sentinels {
			if sentinel != "" {
				s.showAll[sentinel] = true
			}
		}
	}
}

// WithCommaCompletes sets whether COMMA accepts the selection
func WithCommaCompletes(enabled bool) Option {
	return func(s *IndexedStore) {
		s.CommaCompletes = enabled
	}
}

// WithAutoselectFirstRow sets whether the first row is implicitly selected
func WithAutoselectFirstRow(enabled bool) Option {
	return func(s *IndexedStore) {
		s.AutoselectFirst = enabled
	}
}

// WithAvoid sets the values returned by ComputeAvoid
func WithAvoid(values ...string) Option {
	return func(s *IndexedStore) {
		s.Avoid = append([]string(nil), values...)
	}
}

// WithLogger sets the store's logger
func WithLogger(log *logger.Logger) Option {
	return func(s *IndexedStore) {
		s.SetLogger(log)
	}
}

// WithOnComplete sets the acceptance callback
func WithOnComplete(fn OnCompleteFunc) Option {
	return func(s *IndexedStore) {
		s.Complete = fn
	}
}

// NewIndexedStore builds the first-character index over candidates.
// Empty values are skipped. The index is read-only afterwards.
func NewIndexedStore(candidates []Candidate, opts ...Option) *IndexedStore {
	s := &IndexedStore{
		Base:           NewBase(nil),
		candidates:     make([]Candidate, 0, len(candidates)),
		index:          make(map[rune][]int),
		countThreshold: DefaultCountThreshold,
		showAll:        make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, c := range candidates {
		if c.Value == "" {
			continue
		}
		s.candidates = append(s.candidates, c)
		pos := len(s.candidates) - 1
		s.indexWords(c.Value, pos)
		if c.Doc != "" {
			s.indexWords(c.Doc, pos)
		}
	}

	return s
}

// NewIndexedStoreFromStrings is NewIndexedStore for values without doc-strings
func NewIndexedStoreFromStrings(values []string, opts ...Option) *IndexedStore {
	candidates := make([]Candidate, len(values))
	for i, v := range values {
		candidates[i] = Candidate{Value: v}
	}
	return NewIndexedStore(candidates, opts...)
}

// indexWords appends pos to the bucket of every word's first character,
// unless the bucket already ends with the same value.
func (s *IndexedStore) indexWords(text string, pos int) {
	value := s.candidates[pos].Value
	for _, word := range wordSplitter.Split(text, -1) {
		if word == "" {
			continue
		}
		ch, _ := utf8.DecodeRuneInString(word)
		ch = unicode.ToLower(ch)

		bucket := s.index[ch]
		if n := len(bucket); n > 0 && s.candidates[bucket[n-1]].Value == value {
			continue
		}
		s.index[ch] = append(bucket, pos)
	}
}

// Len returns the number of indexed candidates
func (s *IndexedStore) Len() int {
	return len(s.candidates)
}

// BucketSize returns the number of entries indexed under ch
func (s *IndexedStore) BucketSize(ch rune) int {
	return len(s.index[unicode.ToLower(ch)])
}

// CountThreshold returns the per-lookup match cap
func (s *IndexedStore) CountThreshold() int {
	return s.countThreshold
}

// SetAvoid installs the session's avoid set
func (s *IndexedStore) SetAvoid(avoid AvoidSet) {
	s.avoid = avoid
}

// Completable returns the comma or space separated term ending at caret
func (s *IndexedStore) Completable(text string, caret int) string {
	return QuotedCompletable(text, caret)
}

// Completions ranks candidates matching prefix at the start of the value or
// right after a non-word character. Value matches come first, then matches
// found only in the doc-string; each group keeps index order.
func (s *IndexedStore) Completions(prefix string, _ []Completion) []Completion {
	if prefix == "" {
		return []Completion{}
	}
	if s.showAll[prefix] {
		return s.All()
	}

	ch, _ := utf8.DecodeRuneInString(prefix)
	bucket, ok := s.index[unicode.ToLower(ch)]
	if !ok {
		return []Completion{}
	}

	pattern, err := MatchPattern(prefix)
	if err != nil {
		s.Logger().Error().Err(err).Str("prefix", prefix).Msg("Failed to build match pattern")
		return []Completion{}
	}

	var valueMatches, docMatches []Completion
	for _, pos := range bucket {
		c := s.candidates[pos]
		if loc := pattern.FindStringSubmatchIndex(c.Value); loc != nil {
			valueMatches = append(valueMatches, Completion{
				Value:      c.Value,
				Display:    highlight(c.Value, loc),
				DocDisplay: Plain(c.Doc),
			})
		} else if c.Doc != "" {
			if loc := pattern.FindStringSubmatchIndex(c.Doc); loc != nil {
				docMatches = append(docMatches, Completion{
					Value:      c.Value,
					Display:    Plain(c.Value),
					DocDisplay: highlight(c.Doc, loc),
				})
			}
		}
		if len(valueMatches)+len(docMatches) >= s.countThreshold {
			break
		}
	}

	result := make([]Completion, 0, len(valueMatches)+len(docMatches))
	result = append(result, valueMatches...)
	result = append(result, docMatches...)
	return s.avoid.Filter(result)
}

// All lists each distinct candidate once, in source order, without
// highlighting. The result is capped and avoid-filtered like Completions.
func (s *IndexedStore) All() []Completion {
	return s.avoid.Filter(s.everything())
}

func (s *IndexedStore) everything() []Completion {
	seen := make(map[string]bool, len(s.candidates))
	result := make([]Completion, 0, len(s.candidates))
	for _, c := range s.candidates {
		if seen[c.Value] {
			continue
		}
		seen[c.Value] = true
		result = append(result, Completion{
			Value:      c.Value,
			Display:    Plain(c.Value),
			DocDisplay: Plain(c.Doc),
		})
		if len(result) >= s.countThreshold {
			break
		}
	}
	return result
}

// MatchPattern compiles the case-insensitive boundary pattern for prefix.
// Group 2 is the matched prefix, group 1 what precedes it.
func MatchPattern(prefix string) (*regexp.Regexp, error) {
	return regexp.Compile(`(?i)^(.*\W)?(` + regexp.QuoteMeta(prefix) + `)(.*)`)
}

// highlight splits text at the submatch boundaries of MatchPattern
func highlight(text string, loc []int) RichText {
	start, end := loc[4], loc[5]
	var rt RichText
	if start > 0 {
		rt = append(rt, Span{Text: text[:start]})
	}
	rt = append(rt, Span{Text: text[start:end], Highlight: true})
	if end < len(text) {
		rt = append(rt, Span{Text: text[end:]})
	}
	return rt
}
