// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package node

import (
	"fmt"

	"github.com/jeranaias/flux-engine/internal/session"
)

// =============================================================================
// PROXIMITY
// =============================================================================

// Proximity classifies how close a node's subject matter is to the app.
// High-proximity answers are safe to produce from local data alone;
// low-proximity answers route to the generative backend.
type Proximity int

const (
	// ProximityLow routes to the generative backend, optionally with the
	// node's content as context.
	ProximityLow Proximity = iota
	// ProximityHigh is answered client-side from the node catalog.
	ProximityHigh
)

// String returns the human-readable name of the proximity level.
func (p Proximity) String() string {
	switch p {
	case ProximityHigh:
		return "high"
	case ProximityLow:
		return "low"
	default:
		return fmt.Sprintf("Proximity(%d)", p)
	}
}

// =============================================================================
// CATEGORY
// =============================================================================

// Category is the subject area a conversation node belongs to.
// App, user, session, interaction, and project categories are
// high-proximity; domain, career, and general are low-proximity.
type Category int

const (
	// CategoryApp covers questions about the app itself.
	CategoryApp Category = iota
	// CategoryUser covers the current user's profile and preferences.
	CategoryUser
	// CategorySession covers facts about the running session.
	CategorySession
	// CategoryInteraction covers the conversation itself.
	CategoryInteraction
	// CategoryProject covers the user's projects in the app.
	CategoryProject
	// CategoryDomain covers project-management domain knowledge.
	CategoryDomain
	// CategoryCareer covers career and professional-growth topics.
	CategoryCareer
	// CategoryGeneral covers everything else.
	CategoryGeneral
	// CategoryFallback marks the designated fallback nodes.
	CategoryFallback
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryApp:
		return "app"
	case CategoryUser:
		return "user"
	case CategorySession:
		return "session"
	case CategoryInteraction:
		return "interaction"
	case CategoryProject:
		return "project"
	case CategoryDomain:
		return "domain"
	case CategoryCareer:
		return "career"
	case CategoryGeneral:
		return "general"
	case CategoryFallback:
		return "fallback"
	default:
		return fmt.Sprintf("Category(%d)", c)
	}
}

// Proximity returns the proximity level implied by the category.
func (c Category) Proximity() Proximity {
	switch c {
	case CategoryApp, CategoryUser, CategorySession, CategoryInteraction, CategoryProject:
		return ProximityHigh
	default:
		return ProximityLow
	}
}

// HighProximityCategories lists the categories answered client-side.
var HighProximityCategories = []Category{
	CategoryApp, CategoryUser, CategorySession, CategoryInteraction, CategoryProject,
}

// LowProximityCategories lists the categories routed to the backend.
var LowProximityCategories = []Category{
	CategoryDomain, CategoryCareer, CategoryGeneral,
}

// =============================================================================
// ACTIONS
// =============================================================================

// ActionVariant selects the visual style of an action button.
type ActionVariant string

const (
	VariantDefault     ActionVariant = "default"
	VariantSecondary   ActionVariant = "secondary"
	VariantOutline     ActionVariant = "outline"
	VariantDestructive ActionVariant = "destructive"
)

// Action describes a button emitted with a response. The UI feeds the ID
// back into the orchestrator when clicked.
type Action struct {
	ID      string        `json:"id"`
	Label   string        `json:"label"`
	Variant ActionVariant `json:"variant"`
}

// =============================================================================
// CONTENT
// =============================================================================

// Content is node response text: either a literal string or a function of
// the session context, resolved by a single Render call.
type Content interface {
	Render(ctx *session.Context) string
}

// Literal is fixed response text.
type Literal string

// Render returns the literal text unchanged.
func (l Literal) Render(*session.Context) string { return string(l) }

// Templated is response text computed from the session context.
// Must be pure: same context in, same text out, no side effects.
type Templated func(ctx *session.Context) string

// Render invokes the template function.
func (t Templated) Render(ctx *session.Context) string { return t(ctx) }

// =============================================================================
// NODE
// =============================================================================

// Node is one entry in the conversation catalog: a response bound to a
// category and a set of eligibility conditions over the session context.
// Nodes are immutable after process start.
type Node struct {
	// ID uniquely identifies the node within the registry. For keyword
	// nodes the ID doubles as the match text looked for in the message.
	ID string

	// Content is the response, literal or templated.
	Content Content

	// Category determines the default proximity classification.
	Category Category

	// Conditions gate eligibility; all must hold (empty list always holds).
	Conditions []Condition

	// ClientOnly forces client-side resolution even for low-proximity nodes.
	ClientOnly bool

	// Actions are optional buttons attached to the response.
	Actions []Action

	// Component optionally names an embeddable widget for the UI.
	Component string
}

// Render resolves the node's content against the session context.
// A node with nil content renders to the empty string.
func (n *Node) Render(ctx *session.Context) string {
	if n == nil || n.Content == nil {
		return ""
	}
	return n.Content.Render(ctx)
}

// Eligible reports whether the node's conditions hold for the context.
func (n *Node) Eligible(ctx *session.Context) bool {
	return EvaluateConditions(n.Conditions, ctx)
}
