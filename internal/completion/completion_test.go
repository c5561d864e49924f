package completion

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/NikitaCOEUR/autocomplete/internal/keys"
	"github.com/NikitaCOEUR/autocomplete/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexedStore_Completions_InsertionOrder(t *testing.T) {
	store := NewIndexedStoreFromStrings([]string{"Apple", "apricot", "Banana"})

	got := store.Completions("ap", nil)

	assert.Equal(t, []string{"Apple", "apricot"}, Values(got))
}

func TestIndexedStore_Completions_WordBoundary(t *testing.T) {
	store := NewIndexedStoreFromStrings([]string{"The-Great-Gatsby", "Megalodon", "Gamma"})

	got := store.Completions("Ga", nil)

	// "Megalodon" contains "ga" mid-word and is not indexed under 'g' anyway
	assert.Equal(t, []string{"The-Great-Gatsby", "Gamma"}, Values(got))
}

func TestIndexedStore_Completions_MidWordNotMatched(t *testing.T) {
	// "Ggal" is indexed under 'g' but "al" appears only mid-word
	store := NewIndexedStoreFromStrings([]string{"Gal", "Ggal"})

	got := store.Completions("ga", nil)

	assert.Equal(t, []string{"Gal"}, Values(got))
}

func TestIndexedStore_Completions_EmptyPrefix(t *testing.T) {
	store := NewIndexedStoreFromStrings([]string{"Apple"})

	got := store.Completions("", nil)

	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestIndexedStore_Completions_MissingBucket(t *testing.T) {
	store := NewIndexedStoreFromStrings([]string{"Apple"})

	assert.Empty(t, store.Completions("zebra", nil))
	assert.Empty(t, store.Completions("-x", nil))
}

func TestIndexedStore_Completions_RegexMetacharacters(t *testing.T) {
	store := NewIndexedStoreFromStrings([]string{"c++", "c#", "C(lang)", "cobol"})

	tests := []struct {
		prefix string
		want   []string
	}{
		{"c+", []string{"c++"}},
		{"c#", []string{"c#"}},
		{"C(", []string{"C(lang)"}},
		{"c.", []string{}},
		{"c[", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			got := store.Completions(tt.prefix, nil)
			assert.Equal(t, tt.want, Values(got))
		})
	}
}

func TestIndexedStore_Completions_DocMatchesRankedLast(t *testing.T) {
	store := NewIndexedStore([]Candidate{
		{Value: "Type-Defect", Doc: "Something is broken"},
		{Value: "Browser-Chrome"},
		{Value: "Pri-1", Doc: "Blocks a release"},
		{Value: "Build-Bot"},
	})

	got := store.Completions("b", nil)

	assert.Equal(t, []string{"Browser-Chrome", "Build-Bot", "Type-Defect", "Pri-1"}, Values(got))

	valueMatches := 0
	for i, c := range got {
		if hasHighlight(c.Display) {
			valueMatches++
			assert.Equal(t, i+1, valueMatches, "value match %q after a doc match", c.Value)
		}
	}
}

func TestIndexedStore_Completions_Highlight(t *testing.T) {
	store := NewIndexedStore([]Candidate{
		{Value: "Key-Value", Doc: "compound label"},
		{Value: "Type-Defect", Doc: "Something is broken"},
	})

	got := store.Completions("val", nil)
	require.Len(t, got, 1)
	assert.Equal(t, RichText{
		{Text: "Key-"},
		{Text: "Val", Highlight: true},
		{Text: "ue"},
	}, got[0].Display)
	assert.Equal(t, "Key-Value", got[0].Display.String())
	assert.Equal(t, Plain("compound label"), got[0].DocDisplay)

	got = store.Completions("bro", nil)
	require.Len(t, got, 1)
	assert.Equal(t, Plain("Type-Defect"), got[0].Display)
	assert.Equal(t, RichText{
		{Text: "Something is "},
		{Text: "bro", Highlight: true},
		{Text: "ken"},
	}, got[0].DocDisplay)
}

func TestIndexedStore_Completions_CaseInsensitive(t *testing.T) {
	store := NewIndexedStoreFromStrings([]string{"apple", "APRICOT"})

	assert.Equal(t, []string{"apple", "APRICOT"}, Values(store.Completions("AP", nil)))
}

func TestIndexedStore_Completions_CountThreshold(t *testing.T) {
	values := make([]string, 50)
	for i := range values {
		values[i] = fmt.Sprintf("item-%02d", i)
	}
	store := NewIndexedStoreFromStrings(values, WithCountThreshold(10))

	got := store.Completions("item", nil)

	assert.Len(t, got, 10)
	assert.Equal(t, "item-00", got[0].Value)
	assert.Equal(t, "item-09", got[9].Value)
}

func TestIndexedStore_Completions_DefaultThreshold(t *testing.T) {
	values := make([]string, DefaultCountThreshold+100)
	for i := range values {
		values[i] = fmt.Sprintf("x%d", i)
	}
	store := NewIndexedStoreFromStrings(values)

	assert.Equal(t, DefaultCountThreshold, store.CountThreshold())
	assert.LessOrEqual(t, len(store.Completions("x", nil)), DefaultCountThreshold)
}

func TestIndexedStore_Completions_ShowAll(t *testing.T) {
	store := NewIndexedStoreFromStrings([]string{"Apple", "Banana", "Apple", "cherry"}, WithShowAll("*"))

	got := store.Completions("*", nil)

	assert.Equal(t, []string{"Apple", "Banana", "cherry"}, Values(got))
	for _, c := range got {
		assert.False(t, hasHighlight(c.Display))
	}
}

func TestIndexedStore_Completions_Avoid(t *testing.T) {
	store := NewIndexedStoreFromStrings([]string{"Apple", "apricot", "Avocado"}, WithShowAll("*"))
	store.SetAvoid(NewAvoidSet([]string{"APPLE"}))

	assert.Equal(t, []string{"apricot", "Avocado"}, Values(store.Completions("a", nil)))
	assert.Equal(t, []string{"apricot", "Avocado"}, Values(store.Completions("*", nil)))
}

func TestIndexedStore_Index(t *testing.T) {
	store := NewIndexedStoreFromStrings([]string{"Key-Kind-Value", "", "Key-Kind-Value", "other"})

	assert.Equal(t, 3, store.Len())
	// Consecutive duplicates collapse, both for words of one value and for
	// adjacent identical values
	assert.Equal(t, 1, store.BucketSize('k'))
	assert.Equal(t, 1, store.BucketSize('V'))
	assert.Equal(t, 1, store.BucketSize('o'))
	assert.Equal(t, 0, store.BucketSize('z'))
}

func TestIndexedStore_Completable(t *testing.T) {
	store := NewIndexedStoreFromStrings(nil)

	tests := []struct {
		name  string
		text  string
		caret int
		want  string
	}{
		{"single term", "app", 3, "app"},
		{"after comma", "a, b", 4, "b"},
		{"after space", "foo bar", 7, "bar"},
		{"quoted comma", `foo, "a,b", ba`, len(`foo, "a,b", ba`), "ba"},
		{"inside quotes", `foo, "a b`, len(`foo, "a b`), `"a b`},
		{"caret mid text", "alpha, beta", 9, "be"},
		{"trailing separator", "alpha, ", 7, ""},
		{"caret past end", "ab", 10, "ab"},
		{"negative caret", "ab", -1, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, store.Completable(tt.text, tt.caret))
			// Repeated calls return the same value
			assert.Equal(t, tt.want, store.Completable(tt.text, tt.caret))
		})
	}
}

func TestWordCompletable(t *testing.T) {
	assert.Equal(t, "own", WordCompletable("is:open own", 11))
	assert.Equal(t, "is:open", WordCompletable("is:open", 7))
	assert.Equal(t, "", WordCompletable("is:open ", 8))
	assert.Equal(t, "is", WordCompletable("is:open", 2))
}

func TestDefaultSubstitute_RoundTrip(t *testing.T) {
	text := "a, b"
	c := Completion{Value: "banana"}

	newText := DefaultSubstitute(text, 4, "b", c)
	caret := DefaultCaret(4, "b", c)

	assert.Equal(t, "a, banana, ", newText)
	assert.Equal(t, len("a, banana, "), caret)
}

func TestDefaultSubstitute(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		caret       int
		completable string
		value       string
		wantText    string
		wantCaret   int
	}{
		{"first term", "ap", 2, "ap", "Apple", "Apple, ", 7},
		{"middle of list", "x, ap, y", 5, "ap", "Apple", "x, Apple, , y", 10},
		{"operator colon", "lab", 3, "lab", "label:", "label:", 6},
		{"operator equals", "k", 1, "k", "key=", "key=", 4},
		{"empty quotes", "su", 2, "su", `summary:""`, `summary:""`, 9},
		{"sentinel completable", "", 0, "*label", "Type-Defect", "Type-Defect, ", 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Completion{Value: tt.value}
			assert.Equal(t, tt.wantText, DefaultSubstitute(tt.text, tt.caret, tt.completable, c))
			assert.Equal(t, tt.wantCaret, DefaultCaret(tt.caret, tt.completable, c))
		})
	}
}

func TestConsumedLength(t *testing.T) {
	assert.Equal(t, 3, ConsumedLength("abc"))
	assert.Equal(t, 0, ConsumedLength("*status"))
	assert.Equal(t, 0, ConsumedLength(""))
}

func TestAvoidSet(t *testing.T) {
	set := NewAvoidSet([]string{"Foo", "", "BAR"})

	assert.Len(t, set, 2)
	assert.True(t, set.Contains("foo"))
	assert.True(t, set.Contains("Bar"))
	assert.False(t, set.Contains("baz"))

	list := []Completion{{Value: "foo"}, {Value: "baz"}, {Value: "bar"}}
	assert.Equal(t, []string{"baz"}, Values(set.Filter(list)))
	assert.Len(t, list, 3)

	var empty AvoidSet
	assert.False(t, empty.Contains("foo"))
	assert.Equal(t, list, empty.Filter(list))
}

func TestBase_IsCompletionKey(t *testing.T) {
	base := NewBase(nil)

	tests := []struct {
		name      string
		code      keys.Code
		isKeyDown bool
		isShift   bool
		want      bool
	}{
		{"enter keypress", keys.Enter, false, false, true},
		{"enter keydown", keys.Enter, true, false, false},
		{"comma keypress", keys.Comma, false, false, true},
		{"comma keydown", keys.Comma, true, false, false},
		{"shift comma keypress", keys.Comma, false, true, false},
		{"tab keydown", keys.Tab, true, false, true},
		{"tab keypress", keys.Tab, false, false, true},
		{"shift tab", keys.Tab, true, true, false},
		{"down", keys.Down, true, false, false},
		{"letter", keys.Code('A'), false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.IsCompletionKey(tt.code, tt.isKeyDown, tt.isShift))
		})
	}

	base.CommaCompletes = false
	assert.False(t, base.IsCompletionKey(keys.Comma, false, false))
}

func TestBase_Defaults(t *testing.T) {
	base := NewBase(nil)

	assert.True(t, base.AutoselectFirstRow())
	assert.Empty(t, base.ComputeAvoid())
	assert.Equal(t, "x, y, ", base.Substitute("x, ", 3, "", Completion{Value: "y"}))

	var calls []string
	base.Complete = func(accepted bool, code keys.Code, targetID string, value string) {
		calls = append(calls, fmt.Sprintf("%v %s %s %s", accepted, code, targetID, value))
	}
	base.OnComplete(true, keys.Enter, "labels", "Apple")
	assert.Equal(t, []string{"true ENTER labels Apple"}, calls)
}

func TestBase_UnimplementedLogsDefect(t *testing.T) {
	buf := &bytes.Buffer{}
	base := NewBase(logger.New("error", buf))

	assert.Equal(t, "", base.Completable("abc", 3))
	assert.Empty(t, base.Completions("abc", nil))

	output := buf.String()
	assert.Equal(t, 2, strings.Count(output, "Store contract violation"))
	assert.Contains(t, output, "store does not implement Completable")
	assert.Contains(t, output, "store does not implement Completions")
}

func TestBase_ZeroValueLogger(t *testing.T) {
	var base Base
	assert.NotPanics(t, func() {
		base.Completable("x", 1)
	})
}

func hasHighlight(rt RichText) bool {
	for _, s := range rt {
		if s.Highlight {
			return true
		}
	}
	return false
}

type fixedCaretStore struct {
	*IndexedStore
}

func (s fixedCaretStore) CaretAfter(string, int, string, Completion) int {
	return 1
}

func TestApply(t *testing.T) {
	store := NewIndexedStoreFromStrings([]string{"banana"})
	c := Completion{Value: "banana"}

	text, caret := Apply(store, "a, b", 4, "b", c)
	assert.Equal(t, "a, banana, ", text)
	assert.Equal(t, len("a, banana, "), caret)

	text, caret = Apply(fixedCaretStore{store}, "a, b", 4, "b", c)
	assert.Equal(t, "a, banana, ", text)
	assert.Equal(t, 1, caret)
}
