package stores

import (
	"sort"
	"strings"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"

	"github.com/NikitaCOEUR/autocomplete/internal/completion"
)

// fzf's bonus tables are empty until a scoring scheme is chosen
func init() {
	algo.Init("default")
}

// Fuzzy ranks candidates with fzf's scoring, so "tdf" finds "Type-Defect".
// Matches are ordered by score, then by length. Joining follows Replace.
type Fuzzy struct {
	*Replace
	candidates []completion.Candidate
	avoid      completion.AvoidSet
}

// NewFuzzy builds a fuzzy store. COMMA does not accept by default.
func NewFuzzy(candidates []completion.Candidate, opts ...completion.Option) *Fuzzy {
	f := &Fuzzy{Replace: NewReplace(candidates, opts...)}
	for _, c := range candidates {
		if c.Value != "" {
			f.candidates = append(f.candidates, c)
		}
	}
	return f
}

// SetAvoid installs the session's avoid set
func (f *Fuzzy) SetAvoid(avoid completion.AvoidSet) {
	f.avoid = avoid
	f.Replace.SetAvoid(avoid)
}

type fuzzyHit struct {
	candidate completion.Candidate
	score     int
	positions []int
}

// Completions lists every value containing the runes of pattern in order
func (f *Fuzzy) Completions(pattern string, _ []completion.Completion) []completion.Completion {
	if pattern == "" {
		return []completion.Completion{}
	}
	runes := []rune(strings.ToLower(pattern))

	var hits []fuzzyHit
	for _, c := range f.candidates {
		if f.avoid.Contains(c.Value) {
			continue
		}
		if score, positions, ok := fuzzyMatch(c.Value, runes); ok {
			hits = append(hits, fuzzyHit{candidate: c, score: score, positions: positions})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return len(hits[i].candidate.Value) < len(hits[j].candidate.Value)
	})
	if limit := f.CountThreshold(); len(hits) > limit {
		hits = hits[:limit]
	}

	result := make([]completion.Completion, 0, len(hits))
	for _, h := range hits {
		result = append(result, completion.Completion{
			Value:      h.candidate.Value,
			Display:    highlightRunes(h.candidate.Value, h.positions),
			DocDisplay: completion.Plain(h.candidate.Doc),
		})
	}
	return result
}

// fuzzyMatch scores value against a lowercased pattern. Positions are rune
// offsets into value.
func fuzzyMatch(value string, pattern []rune) (int, []int, bool) {
	chars := util.ToChars([]byte(value))
	res, positions := algo.FuzzyMatchV2(false, false, true, &chars, pattern, true, nil)
	if res.Start < 0 || res.Score <= 0 {
		return 0, nil, false
	}
	if positions == nil {
		return res.Score, nil, true
	}
	return res.Score, *positions, true
}

// highlightRunes marks the runes at positions, merging adjacent ones
func highlightRunes(value string, positions []int) completion.RichText {
	if len(positions) == 0 {
		return completion.Plain(value)
	}
	marked := make(map[int]bool, len(positions))
	for _, p := range positions {
		marked[p] = true
	}

	var rt completion.RichText
	var current strings.Builder
	currentHighlight := false
	i := 0
	for _, r := range value {
		if current.Len() > 0 && marked[i] != currentHighlight {
			rt = append(rt, completion.Span{Text: current.String(), Highlight: currentHighlight})
			current.Reset()
		}
		currentHighlight = marked[i]
		current.WriteRune(r)
		i++
	}
	if current.Len() > 0 {
		rt = append(rt, completion.Span{Text: current.String(), Highlight: currentHighlight})
	}
	return rt
}
