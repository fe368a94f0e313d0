// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transcript records the message history of a routed session.
package transcript

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/flux-engine/internal/util"
)

// MaxMessages caps the retained history. When exceeded, the oldest
// messages are pruned to prevent unbounded memory growth.
const MaxMessages = 1000

// =============================================================================
// MESSAGE TYPES
// =============================================================================

// Role identifies who produced a transcript message.
type Role int

const (
	RoleUser Role = iota
	RoleAssistant
)

// String returns a human-readable role name.
func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAssistant:
		return "assistant"
	default:
		return "unknown"
	}
}

// Message is a single entry in the session transcript.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// IsClientOnly marks assistant answers resolved without a model call.
	IsClientOnly bool `json:"is_client_only,omitempty"`

	// LatencyMs is the time taken to produce an assistant answer.
	LatencyMs int64 `json:"latency_ms,omitempty"`
}

// Preview returns a truncated single-line preview of the message.
func (m *Message) Preview(maxLen int) string {
	return util.TruncateForLog(m.Content, maxLen)
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// Transcript holds the ordered message history of one session.
type Transcript struct {
	SessionID string     `json:"session_id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Messages  []*Message `json:"messages"`
}

// New creates an empty transcript for the given session.
func New(sessionID string) *Transcript {
	now := time.Now()
	return &Transcript{
		SessionID: sessionID,
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  make([]*Message, 0),
	}
}

// AddUser appends a user message and returns it.
func (t *Transcript) AddUser(content string) *Message {
	msg := &Message{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}
	t.add(msg)
	return msg
}

// AddAssistant appends an assistant message and returns it.
func (t *Transcript) AddAssistant(content string, clientOnly bool, latency time.Duration) *Message {
	msg := &Message{
		ID:           uuid.NewString(),
		Role:         RoleAssistant,
		Content:      content,
		Timestamp:    time.Now(),
		IsClientOnly: clientOnly,
		LatencyMs:    latency.Milliseconds(),
	}
	t.add(msg)
	return msg
}

func (t *Transcript) add(msg *Message) {
	t.Messages = append(t.Messages, msg)
	t.UpdatedAt = time.Now()
	t.updateTitle()
	t.prune()
}

// Last returns the most recent message, or nil if empty.
func (t *Transcript) Last() *Message {
	if len(t.Messages) == 0 {
		return nil
	}
	return t.Messages[len(t.Messages)-1]
}

// LastUser returns the most recent user message, or nil.
func (t *Transcript) LastUser() *Message {
	for i := len(t.Messages) - 1; i >= 0; i-- {
		if t.Messages[i].Role == RoleUser {
			return t.Messages[i]
		}
	}
	return nil
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	return len(t.Messages)
}

// IsEmpty reports whether the transcript has no messages.
func (t *Transcript) IsEmpty() bool {
	return len(t.Messages) == 0
}

// Clear removes all messages.
func (t *Transcript) Clear() {
	t.Messages = make([]*Message, 0)
	t.Title = ""
	t.UpdatedAt = time.Now()
}

// =============================================================================
// CONTEXT RENDERING
// =============================================================================

// RecentContext renders the last n exchanges as a plain-text block suitable
// for priming a generative backend. Client-only assistant answers are
// included: the model should not contradict what the user already saw.
func (t *Transcript) RecentContext(n int) string {
	return renderContext(t.Messages, n)
}

// PriorContext is RecentContext with a trailing user message left out.
// Callers that send the current user message separately use this so the
// backend does not receive the same text twice.
func (t *Transcript) PriorContext(n int) string {
	msgs := t.Messages
	if last := len(msgs) - 1; last >= 0 && msgs[last].Role == RoleUser {
		msgs = msgs[:last]
	}
	return renderContext(msgs, n)
}

func renderContext(msgs []*Message, n int) string {
	if n <= 0 || len(msgs) == 0 {
		return ""
	}

	start := len(msgs) - n
	if start < 0 {
		start = 0
	}

	var b strings.Builder
	for _, msg := range msgs[start:] {
		b.WriteString(msg.Role.String())
		b.WriteString(": ")
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// =============================================================================
// TITLE AND PRUNING
// =============================================================================

// updateTitle derives a title from the first user message if not yet set.
func (t *Transcript) updateTitle() {
	if t.Title != "" {
		return
	}
	for _, msg := range t.Messages {
		if msg.Role == RoleUser {
			t.Title = msg.Preview(50)
			return
		}
	}
}

// prune drops the oldest messages once the cap is exceeded.
func (t *Transcript) prune() {
	if len(t.Messages) <= MaxMessages {
		return
	}
	t.Messages = t.Messages[len(t.Messages)-MaxMessages:]
}
