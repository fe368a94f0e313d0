// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import (
	"fmt"

	"github.com/jeranaias/flux-engine/internal/node"
	"github.com/jeranaias/flux-engine/internal/session"
)

// =============================================================================
// MATCH RESULT
// =============================================================================

// Match is the outcome of node matching: the selected node and its
// proximity classification. Strategy records which strategy produced it.
type Match struct {
	// Node is the selected conversation node. Never nil for results
	// returned by Matcher.Match (the fallback strategy always succeeds).
	Node *node.Node

	// Proximity is the routing classification for this answer.
	Proximity node.Proximity

	// Strategy names the matching strategy that won.
	Strategy string
}

// IsHighProximity reports whether the answer is safe to produce client-side.
func (m Match) IsHighProximity() bool {
	return m.Proximity == node.ProximityHigh
}

// String returns a human-readable summary of the match.
func (m Match) String() string {
	id := "<none>"
	if m.Node != nil {
		id = m.Node.ID
	}
	return fmt.Sprintf("%s (proximity=%s, strategy=%s)", id, m.Proximity, m.Strategy)
}

// =============================================================================
// REQUEST
// =============================================================================

// Request carries one message through the strategy list.
type Request struct {
	// Message is the raw user message.
	Message string

	// Query is the normalized (lower-cased, trimmed) message.
	Query string

	// Turn is the 1-based user turn number.
	Turn int

	// Registry is the node catalog to match against.
	Registry *node.Registry

	// Session is the current session context for condition evaluation
	// and templated content.
	Session *session.Context

	// AppRelated is precomputed once per request: the message is an app
	// question or contains an app-domain keyword.
	AppRelated bool
}

// =============================================================================
// STRATEGY
// =============================================================================

// Strategy is one named matching step. Returns ok=false to pass the
// request to the next strategy in the list.
type Strategy struct {
	// Name identifies the strategy in logs and tests.
	Name string

	// Match attempts to select a node for the request.
	Match func(req *Request) (Match, bool)
}
