package stores

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/tchap/go-patricia/v2/patricia"

	"github.com/NikitaCOEUR/autocomplete/internal/completion"
)

// Prefix matches only at the start of a value, case-insensitively, and lists
// matches in lexicographic order. It suits operator vocabularies such as
// search terms ("is:open", "label:") where a mid-word hit is noise.
// Joining follows SpaceJoined.
type Prefix struct {
	*SpaceJoined
	trie  *patricia.Trie
	avoid completion.AvoidSet
}

// NewPrefix builds the trie over candidate values. Options apply as for
// IndexedStore; COMMA does not accept by default.
func NewPrefix(candidates []completion.Candidate, opts ...completion.Option) *Prefix {
	p := &Prefix{
		SpaceJoined: NewSpaceJoined(nil, opts...),
		trie:        patricia.NewTrie(),
	}

	for _, c := range candidates {
		if c.Value == "" {
			continue
		}
		key := patricia.Prefix(strings.ToLower(c.Value))
		if item := p.trie.Get(key); item != nil {
			p.trie.Set(key, append(item.([]completion.Candidate), c))
		} else {
			p.trie.Insert(key, []completion.Candidate{c})
		}
	}

	return p
}

// Len returns the number of indexed candidates
func (p *Prefix) Len() int {
	n := 0
	_ = p.trie.Visit(func(_ patricia.Prefix, item patricia.Item) error {
		n += len(item.([]completion.Candidate))
		return nil
	})
	return n
}

// SetAvoid installs the session's avoid set
func (p *Prefix) SetAvoid(avoid completion.AvoidSet) {
	p.avoid = avoid
	p.SpaceJoined.SetAvoid(avoid)
}

// Completions lists values starting with prefix
func (p *Prefix) Completions(prefix string, _ []completion.Completion) []completion.Completion {
	if prefix == "" {
		return []completion.Completion{}
	}
	key := strings.ToLower(prefix)
	return p.collect(func(visit patricia.VisitorFunc) error {
		return p.trie.VisitSubtree(patricia.Prefix(key), visit)
	}, utf8.RuneCountInString(key))
}

// All lists every value in lexicographic order
func (p *Prefix) All() []completion.Completion {
	return p.collect(p.trie.Visit, 0)
}

// collect gathers candidates from a trie walk, sorts them and applies the
// avoid set and the count threshold.
func (p *Prefix) collect(walk func(patricia.VisitorFunc) error, highlight int) []completion.Completion {
	var matches []completion.Candidate
	limit := p.CountThreshold()

	err := walk(func(_ patricia.Prefix, item patricia.Item) error {
		for _, c := range item.([]completion.Candidate) {
			if p.avoid.Contains(c.Value) {
				continue
			}
			matches = append(matches, c)
		}
		return nil
	})
	if err != nil {
		p.Logger().Error().Err(err).Msg("Trie walk failed")
		return []completion.Completion{}
	}

	// Child order in the trie is not guaranteed to be sorted
	sort.SliceStable(matches, func(i, j int) bool {
		return strings.ToLower(matches[i].Value) < strings.ToLower(matches[j].Value)
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}

	result := make([]completion.Completion, 0, len(matches))
	for _, c := range matches {
		result = append(result, completion.Completion{
			Value:      c.Value,
			Display:    highlightPrefix(c.Value, highlight),
			DocDisplay: completion.Plain(c.Doc),
		})
	}
	return result
}

// highlightPrefix marks the first n runes of value. Lowercasing maps rune to
// rune, so the matched prefix spans as many runes as the typed one even when
// their byte lengths differ.
func highlightPrefix(value string, n int) completion.RichText {
	if n <= 0 {
		return completion.Plain(value)
	}
	end, count := len(value), 0
	for i := range value {
		if count == n {
			end = i
			break
		}
		count++
	}
	if count < n {
		return completion.Plain(value)
	}
	rt := completion.RichText{{Text: value[:end], Highlight: true}}
	if end < len(value) {
		rt = append(rt, completion.Span{Text: value[end:]})
	}
	return rt
}
