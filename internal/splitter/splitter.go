// Package splitter partitions a merged conversation collection into
// size-bounded JSON chunk files suitable for static hosting, with a
// manifest describing the chunks.
package splitter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"chat-explorer/internal/loader"
)

// DefaultMaxChunkBytes keeps each chunk comfortably under common hosting
// file-size limits.
const DefaultMaxChunkBytes = 45 * 1024 * 1024

// Chunk is one output file's worth of conversations.
type Chunk struct {
	Conversations []loader.Conversation
	Size          int // compact-JSON bytes of the conversations
}

// Manifest summarizes a completed split.
type Manifest struct {
	TotalConversations int             `json:"total_conversations"`
	Chunks             []ManifestChunk `json:"chunks"`
}

// ManifestChunk describes one written chunk file.
type ManifestChunk struct {
	File  string `json:"file"`
	Count int    `json:"count"`
	Bytes int    `json:"bytes"`
}

// Split partitions conversations into chunks whose compact-JSON size stays
// under maxBytes. Conversations are ordered newest created first; a single
// conversation larger than the limit still gets a chunk of its own.
func Split(conversations []loader.Conversation, maxBytes int) ([]Chunk, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxChunkBytes
	}

	ordered := make([]loader.Conversation, len(conversations))
	copy(ordered, conversations)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i].CreatedAt, ordered[j].CreatedAt
		if a.Equal(b) {
			return false
		}
		if a.IsZero() || b.IsZero() {
			return b.IsZero()
		}
		return a.After(b)
	})

	var chunks []Chunk
	var current Chunk
	for _, conv := range ordered {
		b, err := json.Marshal(conv)
		if err != nil {
			return nil, fmt.Errorf("encode conversation %s: %w", conv.ID, err)
		}
		size := len(b)
		if len(current.Conversations) > 0 && current.Size+size > maxBytes {
			chunks = append(chunks, current)
			current = Chunk{}
		}
		current.Conversations = append(current.Conversations, conv)
		current.Size += size
	}
	if len(current.Conversations) > 0 {
		chunks = append(chunks, current)
	}
	return chunks, nil
}

// WriteChunks writes conversations_NN.json files plus manifest.json into
// dir, creating it if needed. Files are written atomically so a crash never
// leaves a truncated chunk behind.
func WriteChunks(dir string, chunks []Chunk) (*Manifest, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	manifest := &Manifest{}
	for i, chunk := range chunks {
		name := fmt.Sprintf("conversations_%02d.json", i+1)
		b, err := json.Marshal(chunk.Conversations)
		if err != nil {
			return nil, fmt.Errorf("encode chunk %s: %w", name, err)
		}
		if err := atomicWriteFile(filepath.Join(dir, name), b, 0o644); err != nil {
			return nil, fmt.Errorf("write chunk %s: %w", name, err)
		}
		manifest.TotalConversations += len(chunk.Conversations)
		manifest.Chunks = append(manifest.Chunks, ManifestChunk{
			File:  name,
			Count: len(chunk.Conversations),
			Bytes: len(b),
		})
	}

	b, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	if err := atomicWriteFile(filepath.Join(dir, "manifest.json"), b, 0o644); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}
	return manifest, nil
}

// atomicWriteFile writes via a temp file in the same directory, syncs, and
// renames over the target, so the target is never partially written.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, ".tmp-")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if tmp != "" {
			f.Close()
			os.Remove(tmp)
		}
	}()

	if _, err := f.Write(data); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp, perm); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return err
	}
	tmp = ""
	return nil
}
