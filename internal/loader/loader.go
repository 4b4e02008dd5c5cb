// Package loader decodes raw conversation export JSON into normalized
// in-memory records. It is deliberately permissive: it understands both the
// Claude-style export shape (uuid/name/chat_messages/sender) and generic
// shapes (id/title/messages/role), applies defensive defaults for missing
// fields, and only fails a load on a malformed top-level structure.
package loader

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role classifies who produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleOther     Role = "other"
)

// Message is one normalized message inside a conversation. Multi-segment
// content has been flattened into Text.
type Message struct {
	ID        string    `json:"id,omitempty"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Conversation is one normalized chat session. Records are immutable once
// constructed for a given load cycle.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
	Messages  []Message `json:"messages"`
}

// Report carries soft diagnostics from a load: what was kept and what was
// skipped. Dropped messages never fail a load.
type Report struct {
	Conversations   int      `json:"conversations"`
	Messages        int      `json:"messages"`
	DroppedMessages int      `json:"dropped_messages"`
	DropReasons     []string `json:"drop_reasons,omitempty"`
}

// maxDropReasons bounds the sample of reasons kept in a Report.
const maxDropReasons = 10

func (r *Report) drop(reason string) {
	r.DroppedMessages++
	if len(r.DropReasons) < maxDropReasons {
		r.DropReasons = append(r.DropReasons, reason)
	}
}

// MalformedExportError names the first structural violation found in an
// export. It aborts the whole load attempt; the previously loaded
// collection is unaffected.
type MalformedExportError struct {
	Path   string // JSON path of the violation, e.g. "[3].messages"
	Reason string
}

func (e *MalformedExportError) Error() string {
	if e.Path == "" {
		return "malformed export: " + e.Reason
	}
	return fmt.Sprintf("malformed export at %s: %s", e.Path, e.Reason)
}

// ParseExport decodes data as JSON and normalizes it. Unparseable JSON is a
// *MalformedExportError.
func ParseExport(data []byte) ([]Conversation, *Report, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, &MalformedExportError{Reason: "invalid JSON: " + err.Error()}
	}
	return Normalize(raw)
}

// Normalize converts one decoded JSON value into an ordered sequence of
// Conversation records. The value may be a single conversation object or an
// array of them; both shapes normalize to a slice. The input is never
// mutated.
func Normalize(raw any) ([]Conversation, *Report, error) {
	report := &Report{}

	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case map[string]any:
		items = []any{v}
	default:
		return nil, nil, &MalformedExportError{Reason: fmt.Sprintf("expected object or array of objects, got %T", raw)}
	}

	out := make([]Conversation, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, nil, &MalformedExportError{
				Path:   fmt.Sprintf("[%d]", i),
				Reason: fmt.Sprintf("expected conversation object, got %T", item),
			}
		}
		conv, err := normalizeConversation(obj, fmt.Sprintf("[%d]", i), report)
		if err != nil {
			return nil, nil, err
		}
		out = append(out, conv)
	}
	report.Conversations = len(out)
	return out, report, nil
}

func normalizeConversation(obj map[string]any, path string, report *Report) (Conversation, error) {
	conv := Conversation{
		ID:      firstString(obj, "uuid", "id"),
		Title:   firstString(obj, "name", "title"),
		Summary: firstString(obj, "summary"),
	}
	// Exports key conversations by uuid; records without one still get a
	// session-unique id so they stay browsable.
	if strings.TrimSpace(conv.ID) == "" {
		conv.ID = uuid.NewString()
	}
	if ts, ok := parseTime(obj["created_at"], obj["createdAt"]); ok {
		conv.CreatedAt = ts
	}
	if ts, ok := parseTime(obj["updated_at"], obj["updatedAt"]); ok {
		conv.UpdatedAt = ts
	}

	rawMsgs, key := messageList(obj)
	if key != "" {
		list, ok := rawMsgs.([]any)
		if !ok {
			return Conversation{}, &MalformedExportError{
				Path:   path + "." + key,
				Reason: fmt.Sprintf("expected message array, got %T", rawMsgs),
			}
		}
		conv.Messages = make([]Message, 0, len(list))
		for j, rm := range list {
			msg, ok := normalizeMessage(rm, fmt.Sprintf("%s.%s[%d]", path, key, j), report)
			if !ok {
				continue
			}
			conv.Messages = append(conv.Messages, msg)
		}
	}
	report.Messages += len(conv.Messages)
	return conv, nil
}

// messageList returns the raw message list and the key it was found under.
// A missing list is fine (empty conversation); a present non-array is a
// structural violation handled by the caller.
func messageList(obj map[string]any) (any, string) {
	for _, key := range []string{"chat_messages", "messages"} {
		if v, ok := obj[key]; ok && v != nil {
			return v, key
		}
	}
	return nil, ""
}

// normalizeMessage maps one raw message to a Message. Malformed messages
// are skipped, not fatal: a message survives as long as it is an object
// with some usable text and a well-typed role.
func normalizeMessage(raw any, path string, report *Report) (Message, bool) {
	obj, ok := raw.(map[string]any)
	if !ok {
		report.drop(fmt.Sprintf("%s: not an object (%T)", path, raw))
		return Message{}, false
	}

	role, ok := extractRole(obj)
	if !ok {
		report.drop(fmt.Sprintf("%s: role is not a string", path))
		return Message{}, false
	}

	text := flattenContent(obj)
	if strings.TrimSpace(text) == "" {
		report.drop(path + ": no usable text content")
		return Message{}, false
	}

	msg := Message{
		ID:   firstString(obj, "uuid", "id"),
		Role: role,
		Text: text,
	}
	if ts, ok := parseTime(obj["created_at"], obj["timestamp"], obj["ts"]); ok {
		msg.CreatedAt = ts
	}
	return msg, true
}

// extractRole reads the message's role field. A missing role defaults to
// RoleOther; a role that is present but not a string fails the message.
func extractRole(obj map[string]any) (Role, bool) {
	for _, key := range []string{"sender", "role"} {
		v, ok := obj[key]
		if !ok || v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return RoleOther, false
		}
		return normalizeRole(s), true
	}
	return RoleOther, true
}

// normalizeRole folds export role spellings onto the three supported roles.
// An unknown role string is not a reason to drop a message.
func normalizeRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user", "human":
		return RoleUser
	case "assistant", "ai", "model":
		return RoleAssistant
	default:
		return RoleOther
	}
}

// flattenContent collapses a message's content into a single string,
// preserving segment order. Rules:
//   - a top-level "text" string comes first;
//   - "content" may be a string, or a list of segments: plain strings,
//     {type:"text",text:...} objects, and tool_use/tool_result segments
//     which render as bracketed placeholders.
func flattenContent(obj map[string]any) string {
	var parts []string
	if s, ok := obj["text"].(string); ok && s != "" {
		parts = append(parts, s)
	}

	switch v := obj["content"].(type) {
	case string:
		if v != "" {
			parts = append(parts, v)
		}
	case []any:
		for _, el := range v {
			switch seg := el.(type) {
			case string:
				if seg != "" {
					parts = append(parts, seg)
				}
			case map[string]any:
				typ, _ := seg["type"].(string)
				switch typ {
				case "text", "input_text", "output_text":
					if t, _ := seg["text"].(string); t != "" {
						parts = append(parts, t)
					}
				case "tool_use":
					name, _ := seg["name"].(string)
					if name == "" {
						name = "unknown"
					}
					parts = append(parts, "[Tool: "+name+"]")
				case "tool_result":
					body := stringOr(seg["content"])
					if body != "" {
						parts = append(parts, "[Tool Result]\n"+body)
					} else {
						parts = append(parts, "[Tool Result]")
					}
				}
			}
		}
	}
	return strings.Join(parts, "\n")
}

// firstString returns the first non-empty string value found under keys.
func firstString(obj map[string]any, keys ...string) string {
	for _, key := range keys {
		if s := stringOr(obj[key]); s != "" {
			return s
		}
	}
	return ""
}

func stringOr(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return fmt.Sprintf("%g", t)
	default:
		return ""
	}
}

// parseTime tries the candidate values in order. Accepted encodings are
// RFC3339 (with or without sub-second precision) and unix seconds as a
// number or digit string. Failure yields the zero time, which sorts last.
func parseTime(values ...any) (time.Time, bool) {
	for _, v := range values {
		switch t := v.(type) {
		case string:
			if ts, err := time.Parse(time.RFC3339Nano, t); err == nil {
				return ts, true
			}
			if ts, err := time.Parse(time.RFC3339, t); err == nil {
				return ts, true
			}
			if n, err := parseUnixSeconds(t); err == nil {
				return time.Unix(n, 0).UTC(), true
			}
		case float64:
			if t > 1000000000 {
				return time.Unix(int64(t), 0).UTC(), true
			}
		case json.Number:
			if n, err := t.Int64(); err == nil && n > 1000000000 {
				return time.Unix(n, 0).UTC(), true
			}
		}
	}
	return time.Time{}, false
}

func parseUnixSeconds(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty")
	}
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return 0, fmt.Errorf("not unix seconds: %q", s)
		}
	}
	var n int64
	if _, err := fmt.Sscan(s, &n); err != nil {
		return 0, err
	}
	return n, nil
}
