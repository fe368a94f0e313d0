// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package intent

import (
	"time"

	"github.com/jeranaias/flux-engine/internal/node"
)

// =============================================================================
// PENDING INTENT
// =============================================================================

// PendingIntent is the single outstanding confirmation or slot-filling
// request awaiting the user's next message.
type PendingIntent struct {
	// Intent is the catalogued intent (or flow step) this pend guards.
	Intent string

	// ConfirmationMessage is the question shown to the user.
	ConfirmationMessage string

	// OriginalMessage is the user message that triggered the intent.
	OriginalMessage string

	// IsConfirmation marks a slot-filling pend: the next free-text message
	// is captured as the answer rather than classified afresh.
	IsConfirmation bool

	// Actions are the buttons offered alongside the confirmation.
	Actions []node.Action

	// ExpectedActionID, when set, names the action click this pend follows
	// (e.g. "add_project_description").
	ExpectedActionID string

	armedAt time.Time
}

// =============================================================================
// PENDING-INTENT SLOT
// =============================================================================

// State is the per-session single-slot holder for the pending intent.
// Setting a new pend silently replaces any prior one; there is no stacking.
//
// An optional TTL time-boxes an abandoned confirmation so it cannot block
// intent detection forever. TTL zero means no expiry.
type State struct {
	pending *PendingIntent
	ttl     time.Duration
	now     func() time.Time
}

// NewState creates an idle pending-intent slot with the given TTL
// (0 = pends never expire).
func NewState(ttl time.Duration) *State {
	return &State{ttl: ttl, now: time.Now}
}

// Set arms the slot, replacing any prior pend.
func (s *State) Set(p *PendingIntent) {
	if p != nil {
		p.armedAt = s.now()
	}
	s.pending = p
}

// Get returns the live pend, discarding it first if it has expired.
// Returns nil when the slot is idle.
func (s *State) Get() *PendingIntent {
	if s.pending == nil {
		return nil
	}
	if s.ttl > 0 && s.now().Sub(s.pending.armedAt) > s.ttl {
		s.pending = nil
		return nil
	}
	return s.pending
}

// Clear empties the slot.
func (s *State) Clear() {
	s.pending = nil
}

// Active reports whether a live pend occupies the slot.
func (s *State) Active() bool {
	return s.Get() != nil
}
