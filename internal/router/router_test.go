// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import (
	"strings"
	"testing"

	"github.com/jeranaias/flux-engine/internal/node"
	"github.com/jeranaias/flux-engine/internal/session"
)

func newTestSession() *session.Context {
	return session.NewContext("rae")
}

func TestMatchGreetings(t *testing.T) {
	m := NewMatcher()
	reg := node.DefaultRegistry()
	ctx := newTestSession()

	tests := []struct {
		name             string
		message          string
		expectedNode     string
		expectedStrategy string
	}{
		{"assistant_greeting", "hello flux", node.IDGreeting, "assistant_greeting"},
		{"assistant_greeting_cased", "Hey Flux!", node.IDGreeting, "assistant_greeting"},
		{"general_greeting", "good morning", node.IDGeneralGreeting, "general_greeting"},
		{"gratitude", "thanks a lot", node.IDGratitude, "gratitude"},
		{"farewell", "goodbye", node.IDFarewell, "farewell"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Match(tt.message, 1, reg, ctx)
			if got.Node == nil || got.Node.ID != tt.expectedNode {
				t.Fatalf("Match(%q) = %v, want node %q", tt.message, got, tt.expectedNode)
			}
			if !got.IsHighProximity() {
				t.Errorf("Match(%q) should be high proximity", tt.message)
			}
			if got.Strategy != tt.expectedStrategy {
				t.Errorf("Match(%q) strategy = %q, want %q", tt.message, got.Strategy, tt.expectedStrategy)
			}
		})
	}
}

func TestMatchAppKeywordNodes(t *testing.T) {
	m := NewMatcher()
	reg := node.DefaultRegistry()
	ctx := newTestSession()

	tests := []struct {
		message      string
		expectedNode string
	}{
		{"where do I find my settings", "settings"},
		{"question about billing please", "billing"},
		{"show me the dashboard", "dashboard"},
		{"how is my team doing", "team"},
	}

	for _, tt := range tests {
		got := m.Match(tt.message, 2, reg, ctx)
		if got.Node == nil || got.Node.ID != tt.expectedNode {
			t.Errorf("Match(%q) = %v, want node %q", tt.message, got, tt.expectedNode)
			continue
		}
		if !got.IsHighProximity() {
			t.Errorf("Match(%q) should be high proximity", tt.message)
		}
	}
}

func TestMatchCapabilityAndHelp(t *testing.T) {
	m := NewMatcher()
	reg := node.DefaultRegistry()
	ctx := newTestSession()

	got := m.Match("what can you do", 1, reg, ctx)
	if got.Node == nil || got.Node.ID != node.IDCapabilities {
		t.Errorf("capability question matched %v, want %q", got, node.IDCapabilities)
	}

	got = m.Match("how do I use the grid", 1, reg, ctx)
	if got.Node == nil || got.Node.ID != node.IDHelp {
		t.Errorf("help question matched %v, want %q", got, node.IDHelp)
	}
}

func TestMatchLowKeywordNodes(t *testing.T) {
	m := NewMatcher()
	reg := node.DefaultRegistry()
	ctx := newTestSession()

	got := m.Match("explain kanban to me", 1, reg, ctx)
	if got.Node == nil || got.Node.ID != "kanban" {
		t.Fatalf("Match = %v, want node kanban", got)
	}
	if got.IsHighProximity() {
		t.Error("domain knowledge should be low proximity")
	}
}

// TestMatchNeverViolatesConditions verifies the invariant that no strategy
// returns a node whose conditions evaluate false.
func TestMatchNeverViolatesConditions(t *testing.T) {
	m := NewMatcher()
	reg := node.DefaultRegistry()

	messages := []string{
		"hello flux",
		"thanks",
		"where are my settings",
		"tell me about my project",
		"explain kanban",
		"what can you do",
		"random chatter about nothing in particular",
		"something about the grid maybe",
	}
	for turn := 1; turn <= 8; turn++ {
		ctx := newTestSession()
		for i := 0; i < turn; i++ {
			ctx.RecordInteraction()
		}
		for _, msg := range messages {
			got := m.Match(msg, turn, reg, ctx)
			if got.Node == nil {
				t.Fatalf("Match(%q) returned no node", msg)
			}
			if !got.Node.Eligible(ctx) {
				t.Errorf("Match(%q) turn %d returned node %q with failing conditions", msg, turn, got.Node.ID)
			}
		}
	}
}

func TestMatchCategoryRescan(t *testing.T) {
	m := NewMatcher()
	reg := node.DefaultRegistry()

	// Early in a session, an app-related message with no keyword-node hit
	// lands on the condition-only first_steps node.
	ctx := newTestSession()
	got := m.Match("something about my account maybe", 1, reg, ctx)
	if got.Node == nil || got.Node.ID != "first_steps" {
		t.Fatalf("Match = %v, want first_steps via rescan", got)
	}
	if got.Strategy != "category_rescan" {
		t.Errorf("strategy = %q, want category_rescan", got.Strategy)
	}
}

func TestMatchFallbacks(t *testing.T) {
	m := NewMatcher()
	reg := node.DefaultRegistry()

	// App-related, no node hit, no condition node eligible -> fallback_client.
	ctx := newTestSession()
	for i := 0; i < 4; i++ {
		ctx.RecordInteraction() // between first_steps (<3) and project_followup (>5)
	}
	got := m.Match("something about my account maybe", 5, reg, ctx)
	if got.Node == nil || got.Node.ID != node.IDFallbackClient {
		t.Fatalf("Match = %v, want fallback_client", got)
	}
	if !got.IsHighProximity() {
		t.Error("app-related fallback should be high proximity")
	}

	// Not app-related, nothing matches -> fallback_llm, low proximity.
	got = m.Match("tell me something interesting about deep oceans", 5, reg, ctx)
	if got.Node == nil || got.Node.ID != node.IDFallbackLLM {
		t.Fatalf("Match = %v, want fallback_llm", got)
	}
	if got.IsHighProximity() {
		t.Error("non-app fallback should be low proximity")
	}
}

// TestStrategyOrder pins the documented priority order so a reordering
// shows up as a test failure, not a behavior surprise.
func TestStrategyOrder(t *testing.T) {
	m := NewMatcher()
	expected := []string{
		"assistant_greeting",
		"general_greeting",
		"gratitude",
		"farewell",
		"app_keyword_nodes",
		"capability_question",
		"low_keyword_nodes",
		"category_rescan",
		"fallback",
	}
	got := m.Strategies()
	if len(got) != len(expected) {
		t.Fatalf("strategy count = %d, want %d", len(got), len(expected))
	}
	for i, s := range got {
		if s.Name != expected[i] {
			t.Errorf("strategy[%d] = %q, want %q", i, s.Name, expected[i])
		}
	}
}

func TestExtraAppKeywords(t *testing.T) {
	reg := node.DefaultRegistry()
	ctx := newTestSession()

	// Without the extra keyword the message is not app-related.
	plain := NewMatcher()
	got := plain.Match("anything on the sprint front?", 1, reg, ctx)
	if got.Node.ID != node.IDFallbackLLM {
		t.Fatalf("without extra keyword, want fallback_llm, got %v", got)
	}

	// With "sprint" configured as an app keyword, the message routes
	// app-side instead.
	custom := NewMatcher("sprint")
	got = custom.Match("anything on the sprint front?", 1, reg, ctx)
	if !got.IsHighProximity() {
		t.Errorf("with extra keyword, expected app-side routing, got %v", got)
	}
}

func TestMatchRendersAgainstSession(t *testing.T) {
	m := NewMatcher()
	reg := node.DefaultRegistry()
	ctx := newTestSession()
	ctx.LastProjectName = "Atlas"

	got := m.Match("what about my project", 2, reg, ctx)
	if got.Node == nil || got.Node.ID != "project" {
		t.Fatalf("Match = %v, want project node", got)
	}
	text := got.Node.Render(ctx)
	if !strings.Contains(text, "Atlas") {
		t.Errorf("templated project node should mention Atlas, got %q", text)
	}
}
