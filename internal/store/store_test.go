package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-explorer/internal/loader"
)

func conv(id, title string, created time.Time, texts ...string) loader.Conversation {
	c := loader.Conversation{ID: id, Title: title, CreatedAt: created}
	for _, t := range texts {
		c.Messages = append(c.Messages, loader.Message{Role: loader.RoleUser, Text: t})
	}
	return c
}

func TestEmptyStore(t *testing.T) {
	s := New()

	assert.Empty(t, s.List())
	assert.Empty(t, s.Search("anything"))
	_, ok := s.Get("missing")
	assert.False(t, ok)
	assert.Zero(t, s.Stats().Generation)
}

func TestListSortedNewestFirst(t *testing.T) {
	s := New()
	s.Replace([]loader.Conversation{
		conv("old", "Old", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		conv("new", "New", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)),
		conv("undated", "Undated", time.Time{}),
	}, nil)

	list := s.List()
	require.Len(t, list, 3)
	assert.Equal(t, "new", list[0].ID)
	assert.Equal(t, "old", list[1].ID)
	assert.Equal(t, "undated", list[2].ID, "unknown creation time sorts last")
}

func TestGetReturnsFullConversation(t *testing.T) {
	s := New()
	s.Replace([]loader.Conversation{
		conv("a", "Title A", time.Now(), "first message", "second message"),
	}, nil)

	got, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "Title A", got.Title)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "first message", got.Messages[0].Text)
}

func TestReplaceIsComplete(t *testing.T) {
	s := New()
	s.Replace([]loader.Conversation{
		conv("only-in-a", "File A topic", time.Now(), "alpha content"),
	}, nil)
	require.Len(t, s.Search("alpha"), 1)

	s.Replace([]loader.Conversation{
		conv("only-in-b", "File B topic", time.Now(), "beta content"),
	}, nil)

	assert.Empty(t, s.Search("alpha"), "no residue from the replaced collection")
	require.Len(t, s.Search("beta"), 1)
	_, ok := s.Get("only-in-a")
	assert.False(t, ok)
	require.Len(t, s.List(), 1)
	assert.Equal(t, "only-in-b", s.List()[0].ID)
}

func TestSupersededLoadIsDiscarded(t *testing.T) {
	s := New()

	slow := s.Begin()
	fast := s.Begin()

	require.True(t, s.ReplaceIfCurrent(fast, []loader.Conversation{
		conv("fast", "Fast load", time.Now()),
	}, nil))

	assert.False(t, s.ReplaceIfCurrent(slow, []loader.Conversation{
		conv("slow", "Slow load", time.Now()),
	}, nil), "an overtaken load must not clobber the newer one")

	list := s.List()
	require.Len(t, list, 1)
	assert.Equal(t, "fast", list[0].ID)
	assert.Equal(t, fast, s.Stats().Generation)
}

func TestSearchHitShape(t *testing.T) {
	s := New()
	s.Replace([]loader.Conversation{
		conv("t", "Budget planning", time.Now()),
		conv("m", "Unrelated", time.Now(), "my budget spreadsheet"),
	}, nil)

	hits := s.Search("budget")
	require.Len(t, hits, 2)
	assert.Equal(t, "t", hits[0].ID)
	assert.Equal(t, "title", hits[0].MatchType)
	assert.Equal(t, "m", hits[1].ID)
	assert.Equal(t, "message", hits[1].MatchType)
}

func TestDuplicateIDsFirstOccurrenceWins(t *testing.T) {
	s := New()
	s.Replace([]loader.Conversation{
		conv("dup", "First copy", time.Now(), "original words"),
		conv("dup", "Second copy", time.Now(), "duplicate words"),
	}, nil)

	require.Len(t, s.List(), 1)
	got, ok := s.Get("dup")
	require.True(t, ok)
	assert.Equal(t, "First copy", got.Title)

	hits := s.Search("words")
	require.Len(t, hits, 1, "duplicate ids yield one hit, not two")
	assert.Equal(t, "First copy", hits[0].Title)
}

func TestStatsReflectReport(t *testing.T) {
	s := New()
	s.Replace([]loader.Conversation{
		conv("a", "A", time.Now(), "one", "two"),
	}, &loader.Report{Conversations: 1, Messages: 2, DroppedMessages: 3})

	stats := s.Stats()
	assert.Equal(t, 1, stats.Conversations)
	assert.Equal(t, 2, stats.Messages)
	assert.Equal(t, 3, stats.DroppedMessages)
	assert.False(t, stats.LoadedAt.IsZero())
}
