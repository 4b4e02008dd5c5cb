// Package index builds a rebuildable in-memory search index over a loaded
// conversation collection and answers ranked substring queries against it.
// An index is immutable once built; a reload builds a fresh one.
package index

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"chat-explorer/internal/loader"
)

// Index maps normalized tokens to the conversations containing them, with a
// separate title-token map used for ranking. The zero value (or nil) is the
// empty state: queries succeed and return nothing.
type Index struct {
	order []string // conversation ids in load order

	// postings map each token to the ordinals (load positions) of the
	// conversations whose title or body contains it.
	titlePostings map[string][]int
	bodyPostings  map[string][]int

	updatedAt []time.Time // per ordinal, for recency ranking
}

// Match is one query hit. InTitle reports whether every query token matched
// the conversation title, which ranks the hit above body-only matches.
type Match struct {
	ID      string
	InTitle bool
}

// Build constructs an index over records. It is deterministic: identical
// collections produce indexes that answer every query identically. Cost is
// linear in total content length.
func Build(records []loader.Conversation) *Index {
	x := &Index{
		order:         make([]string, len(records)),
		titlePostings: make(map[string][]int),
		bodyPostings:  make(map[string][]int),
		updatedAt:     make([]time.Time, len(records)),
	}
	for i, conv := range records {
		x.order[i] = conv.ID
		x.updatedAt[i] = conv.UpdatedAt

		for _, tok := range Tokenize(conv.Title) {
			x.add(x.titlePostings, tok, i)
		}
		// Summary text ranks with the title: both describe the whole
		// conversation rather than one message.
		for _, tok := range Tokenize(conv.Summary) {
			x.add(x.titlePostings, tok, i)
		}
		for _, msg := range conv.Messages {
			for _, tok := range Tokenize(msg.Text) {
				x.add(x.bodyPostings, tok, i)
			}
		}
	}
	return x
}

// add appends ordinal to the posting list for tok, deduplicating the tail.
func (x *Index) add(postings map[string][]int, tok string, ordinal int) {
	list := postings[tok]
	if n := len(list); n > 0 && list[n-1] == ordinal {
		return
	}
	postings[tok] = append(list, ordinal)
}

// Len returns the number of indexed conversations.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.order)
}

// Query returns the ids of matching conversations, ranked. See Matches for
// the semantics; this is the plain-id form of the same result.
func (x *Index) Query(text string) []string {
	matches := x.Matches(text)
	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
	}
	return ids
}

// Matches evaluates a free-text query. The query is tokenized by
// case-folding and splitting on non-alphanumeric boundaries; a conversation
// matches when every query token is a substring of its title/summary or of
// some message's text (AND across tokens, OR across fields).
//
// Ranking: matches found in the title rank above body-only matches; within
// a rank more recent updatedAt ranks first (unknown timestamps last), and
// remaining ties keep original load order.
//
// An empty query returns every conversation in load order: the explorer
// treats an emptied search box as "show the full list". Matches is a pure
// function of the index and query, so results are restartable; on a nil or
// empty index it returns no matches.
func (x *Index) Matches(text string) []Match {
	if x == nil || len(x.order) == 0 {
		return nil
	}

	tokens := Tokenize(text)
	if len(tokens) == 0 {
		all := make([]Match, len(x.order))
		for i, id := range x.order {
			all[i] = Match{ID: id}
		}
		return all
	}

	// Per-conversation hit state across all query tokens.
	type hit struct {
		ordinal  int
		allTitle bool
	}
	var current map[int]*hit

	for _, tok := range tokens {
		inTitle := x.scan(x.titlePostings, tok)
		inBody := x.scan(x.bodyPostings, tok)

		if current == nil {
			current = make(map[int]*hit)
			for ord := range inTitle {
				current[ord] = &hit{ordinal: ord, allTitle: true}
			}
			for ord := range inBody {
				if _, ok := current[ord]; !ok {
					current[ord] = &hit{ordinal: ord}
				}
			}
			continue
		}

		// AND semantics: drop conversations this token does not reach.
		for ord, h := range current {
			_, title := inTitle[ord]
			_, body := inBody[ord]
			switch {
			case !title && !body:
				delete(current, ord)
			case !title:
				h.allTitle = false
			}
		}
		if len(current) == 0 {
			return nil
		}
	}

	hits := make([]*hit, 0, len(current))
	for _, h := range current {
		hits = append(hits, h)
	}
	sort.Slice(hits, func(i, j int) bool {
		a, b := hits[i], hits[j]
		if a.allTitle != b.allTitle {
			return a.allTitle
		}
		at, bt := x.updatedAt[a.ordinal], x.updatedAt[b.ordinal]
		if !at.Equal(bt) {
			if at.IsZero() || bt.IsZero() {
				return bt.IsZero() // unknown recency sorts last
			}
			return at.After(bt)
		}
		return a.ordinal < b.ordinal
	})

	out := make([]Match, len(hits))
	for i, h := range hits {
		out[i] = Match{ID: x.order[h.ordinal], InTitle: h.allTitle}
	}
	return out
}

// scan collects the ordinals of conversations with any indexed token
// containing tok as a substring. Because tokens are maximal alphanumeric
// runs, substring-of-a-token is equivalent to substring-of-the-text for
// alphanumeric query tokens.
func (x *Index) scan(postings map[string][]int, tok string) map[int]struct{} {
	found := make(map[int]struct{})
	// Exact-token fast path.
	for _, ord := range postings[tok] {
		found[ord] = struct{}{}
	}
	for key, ordinals := range postings {
		if key == tok || !strings.Contains(key, tok) {
			continue
		}
		for _, ord := range ordinals {
			found[ord] = struct{}{}
		}
	}
	return found
}

// Tokenize case-folds s and splits it on non-alphanumeric boundaries.
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
