package index

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-explorer/internal/loader"
)

func conv(id, title string, updated time.Time, texts ...string) loader.Conversation {
	c := loader.Conversation{ID: id, Title: title, UpdatedAt: updated}
	for _, t := range texts {
		c.Messages = append(c.Messages, loader.Message{Role: loader.RoleUser, Text: t})
	}
	return c
}

func TestQueryTitleAndBody(t *testing.T) {
	idx := Build([]loader.Conversation{
		conv("a", "Paris travel", time.Time{}, "booking flights"),
		conv("b", "Groceries", time.Time{}, "paris has nice bakeries"),
		conv("c", "Weather", time.Time{}, "tokyo forecast"),
	})

	assert.Equal(t, []string{"a", "b"}, idx.Query("paris"))
	assert.Equal(t, []string{"c"}, idx.Query("tokyo"))
	assert.Empty(t, idx.Query("paris tokyo"), "tokens must all match the same conversation")
}

func TestQueryIsConjunctive(t *testing.T) {
	idx := Build([]loader.Conversation{
		conv("a", "Travel notes", time.Time{}, "paris in june", "pack light"),
		conv("b", "Travel notes", time.Time{}, "june weather at home"),
	})

	broad := idx.Query("june")
	narrow := idx.Query("june paris")
	require.Equal(t, []string{"a", "b"}, broad)
	require.Equal(t, []string{"a"}, narrow)
	for _, id := range narrow {
		assert.Contains(t, broad, id, "adding a token can only narrow the result")
	}
}

func TestQuerySubstringAndCaseFold(t *testing.T) {
	idx := Build([]loader.Conversation{
		conv("a", "Deployment checklist", time.Time{}, "kubernetes rollout"),
	})

	assert.Equal(t, []string{"a"}, idx.Query("deploy"))
	assert.Equal(t, []string{"a"}, idx.Query("KUBE"))
	assert.Equal(t, []string{"a"}, idx.Query("ROLLOUT checklist"))
	assert.Empty(t, idx.Query("deployx"))
}

func TestRankingTitleAboveBodyThenRecency(t *testing.T) {
	old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mid := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)

	idx := Build([]loader.Conversation{
		conv("body-new", "Misc", newer, "all about paris"),
		conv("title-old", "Paris guide", old),
		conv("title-new", "Paris itinerary", mid),
		conv("body-unknown", "Misc", time.Time{}, "paris again"),
	})

	matches := idx.Matches("paris")
	require.Len(t, matches, 4)
	assert.Equal(t, "title-new", matches[0].ID)
	assert.Equal(t, "title-old", matches[1].ID)
	assert.True(t, matches[0].InTitle)
	assert.Equal(t, "body-new", matches[2].ID)
	assert.False(t, matches[2].InTitle)
	assert.Equal(t, "body-unknown", matches[3].ID, "unknown recency sorts last within its rank")
}

func TestMixedTitleBodyMatchRanksAsBody(t *testing.T) {
	idx := Build([]loader.Conversation{
		conv("mixed", "Paris", time.Time{}, "the eiffel tower"),
		conv("pure", "Paris eiffel", time.Time{}),
	})

	matches := idx.Matches("paris eiffel")
	require.Len(t, matches, 2)
	assert.Equal(t, "pure", matches[0].ID)
	assert.True(t, matches[0].InTitle)
	assert.Equal(t, "mixed", matches[1].ID)
	assert.False(t, matches[1].InTitle, "a token matched only in the body demotes the hit")
}

func TestSummaryRanksWithTitle(t *testing.T) {
	idx := Build([]loader.Conversation{
		{ID: "s", Summary: "quarterly budget review"},
		conv("b", "Other", time.Time{}, "budget spreadsheet"),
	})

	matches := idx.Matches("budget")
	require.Len(t, matches, 2)
	assert.Equal(t, "s", matches[0].ID)
	assert.True(t, matches[0].InTitle)
}

func TestEmptyQueryReturnsAllInLoadOrder(t *testing.T) {
	idx := Build([]loader.Conversation{
		conv("first", "A", time.Time{}),
		conv("second", "B", time.Time{}),
		conv("third", "C", time.Time{}),
	})

	assert.Equal(t, []string{"first", "second", "third"}, idx.Query(""))
	assert.Equal(t, []string{"first", "second", "third"}, idx.Query("  ...  "))
}

func TestEmptyAndNilIndex(t *testing.T) {
	var nilIdx *Index
	assert.Zero(t, nilIdx.Len())
	assert.Empty(t, nilIdx.Query("anything"))

	empty := Build(nil)
	assert.Zero(t, empty.Len())
	assert.Empty(t, empty.Query(""))
	assert.Empty(t, empty.Query("anything"))
}

func TestBuildIsDeterministic(t *testing.T) {
	records := []loader.Conversation{
		conv("a", "shared words here", time.Time{}, "alpha beta", "gamma"),
		conv("b", "shared words there", time.Time{}, "beta gamma"),
		conv("c", "unrelated", time.Time{}, "delta"),
	}

	one := Build(records)
	two := Build(records)
	for _, q := range []string{"", "shared", "beta", "gamma shared", "delta", "missing"} {
		assert.Equal(t, one.Query(q), two.Query(q), "query %q", q)
	}
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"hello", "world", "42"}, Tokenize("Hello, WORLD! 42"))
	assert.Empty(t, Tokenize("  --- !!! "))
	assert.Equal(t, []string{"café"}, Tokenize("Café"))
}
