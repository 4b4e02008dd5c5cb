// Package store owns the one live collection/index pair. A reload builds a
// complete new snapshot and publishes it with a single pointer swap, so
// readers never observe a partially updated collection. Load generations
// let a newer load supersede a slower in-flight one.
package store

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"chat-explorer/internal/index"
	"chat-explorer/internal/loader"
)

// Meta is the lightweight conversation listing entry.
type Meta struct {
	ID           string    `json:"uuid"`
	Title        string    `json:"name"`
	Summary      string    `json:"summary,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
	MessageCount int       `json:"message_count"`
}

// Hit is one search result: the conversation metadata plus where the match
// was found.
type Hit struct {
	Meta
	MatchType string `json:"match_type"` // "title" or "message"
}

// Stats describes the current snapshot.
type Stats struct {
	Conversations   int       `json:"conversations"`
	Messages        int       `json:"messages"`
	DroppedMessages int       `json:"dropped_messages"`
	Generation      uint64    `json:"generation"`
	LoadedAt        time.Time `json:"loaded_at,omitempty"`
}

// snapshot is an immutable collection/index pair.
type snapshot struct {
	conversations []loader.Conversation
	byID          map[string]*loader.Conversation
	list          []Meta // sorted newest created first
	idx           *index.Index
	report        loader.Report
	generation    uint64
	loadedAt      time.Time
}

// Store holds the live snapshot. All methods are safe for concurrent use.
type Store struct {
	snap atomic.Pointer[snapshot]

	mu        sync.Mutex // serializes writers
	issuedGen uint64
	committed uint64
}

// New returns an empty store: queries succeed and return nothing until the
// first Replace.
func New() *Store {
	return &Store{}
}

// Begin reserves a load generation. Pass it to ReplaceIfCurrent when the
// load finishes; a load that was overtaken by a newer Begin+Replace is
// discarded.
func (s *Store) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issuedGen++
	return s.issuedGen
}

// Replace publishes a new collection unconditionally, consuming a fresh
// generation.
func (s *Store) Replace(conversations []loader.Conversation, report *loader.Report) {
	s.ReplaceIfCurrent(s.Begin(), conversations, report)
}

// ReplaceIfCurrent publishes a new collection built from a load that began
// at gen. It returns false, leaving the store untouched, when a newer load
// has already been committed.
func (s *Store) ReplaceIfCurrent(gen uint64, conversations []loader.Conversation, report *loader.Report) bool {
	snap := buildSnapshot(gen, conversations, report)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen <= s.committed {
		return false
	}
	s.committed = gen
	s.snap.Store(snap)
	return true
}

func buildSnapshot(gen uint64, conversations []loader.Conversation, report *loader.Report) *snapshot {
	snap := &snapshot{
		conversations: conversations,
		byID:          make(map[string]*loader.Conversation, len(conversations)),
		list:          make([]Meta, 0, len(conversations)),
		idx:           index.Build(conversations),
		generation:    gen,
		loadedAt:      time.Now(),
	}
	if report != nil {
		snap.report = *report
	}
	for i := range conversations {
		conv := &conversations[i]
		// First occurrence wins on duplicate ids.
		if _, ok := snap.byID[conv.ID]; ok {
			continue
		}
		snap.byID[conv.ID] = conv
		snap.list = append(snap.list, metaOf(conv))
	}
	sort.SliceStable(snap.list, func(i, j int) bool {
		a, b := snap.list[i].CreatedAt, snap.list[j].CreatedAt
		if a.Equal(b) {
			return false
		}
		if a.IsZero() || b.IsZero() {
			return b.IsZero() // unknown creation time sorts last
		}
		return a.After(b)
	})
	return snap
}

func metaOf(conv *loader.Conversation) Meta {
	return Meta{
		ID:           conv.ID,
		Title:        conv.Title,
		Summary:      conv.Summary,
		CreatedAt:    conv.CreatedAt,
		UpdatedAt:    conv.UpdatedAt,
		MessageCount: len(conv.Messages),
	}
}

// List returns conversation metadata, newest created first.
func (s *Store) List() []Meta {
	snap := s.snap.Load()
	if snap == nil {
		return []Meta{}
	}
	out := make([]Meta, len(snap.list))
	copy(out, snap.list)
	return out
}

// Get returns the full conversation for id.
func (s *Store) Get(id string) (*loader.Conversation, bool) {
	snap := s.snap.Load()
	if snap == nil {
		return nil, false
	}
	conv, ok := snap.byID[id]
	return conv, ok
}

// Search runs a ranked query against the current index. An empty store
// yields an empty result, never an error.
func (s *Store) Search(query string) []Hit {
	snap := s.snap.Load()
	if snap == nil {
		return []Hit{}
	}
	matches := snap.idx.Matches(query)
	hits := make([]Hit, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		conv, ok := snap.byID[m.ID]
		if !ok {
			continue
		}
		matchType := "message"
		if m.InTitle {
			matchType = "title"
		}
		hits = append(hits, Hit{Meta: metaOf(conv), MatchType: matchType})
	}
	return hits
}

// Stats reports the size and provenance of the current snapshot.
func (s *Store) Stats() Stats {
	snap := s.snap.Load()
	if snap == nil {
		return Stats{}
	}
	return Stats{
		Conversations:   len(snap.list),
		Messages:        snap.report.Messages,
		DroppedMessages: snap.report.DroppedMessages,
		Generation:      snap.generation,
		LoadedAt:        snap.loadedAt,
	}
}
