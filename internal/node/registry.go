// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package node

import (
	"fmt"

	"github.com/jeranaias/flux-engine/internal/session"
)

// =============================================================================
// REGISTRY
// =============================================================================

// Registry is the fixed catalog of conversation nodes. Built once at
// process start; never mutated afterwards.
type Registry struct {
	nodes []*Node
	byID  map[string]*Node
}

// NewRegistry builds a registry from the given nodes, preserving order.
// Returns an error if two nodes share an ID.
func NewRegistry(nodes ...*Node) (*Registry, error) {
	r := &Registry{
		nodes: nodes,
		byID:  make(map[string]*Node, len(nodes)),
	}
	for _, n := range nodes {
		if _, dup := r.byID[n.ID]; dup {
			return nil, fmt.Errorf("duplicate node id %q", n.ID)
		}
		r.byID[n.ID] = n
	}
	return r, nil
}

// MustNewRegistry is NewRegistry for static catalogs; panics on duplicates.
func MustNewRegistry(nodes ...*Node) *Registry {
	r, err := NewRegistry(nodes...)
	if err != nil {
		panic(err)
	}
	return r
}

// Get returns the node with the given ID, or nil.
func (r *Registry) Get(id string) *Node {
	return r.byID[id]
}

// All returns the nodes in registry order.
func (r *Registry) All() []*Node {
	return r.nodes
}

// Len returns the number of catalogued nodes.
func (r *Registry) Len() int {
	return len(r.nodes)
}

// ByCategory returns the nodes belonging to any of the given categories,
// in registry order.
func (r *Registry) ByCategory(cats ...Category) []*Node {
	want := make(map[Category]bool, len(cats))
	for _, c := range cats {
		want[c] = true
	}
	var out []*Node
	for _, n := range r.nodes {
		if want[n.Category] {
			out = append(out, n)
		}
	}
	return out
}

// =============================================================================
// WELL-KNOWN NODE IDS
// =============================================================================

// IDs of nodes the matcher addresses directly.
const (
	IDGreeting        = "greeting"
	IDGeneralGreeting = "general_greeting"
	IDGratitude       = "gratitude"
	IDFarewell        = "farewell"
	IDCapabilities    = "capabilities"
	IDHelp            = "help"
	IDFallbackClient  = "fallback_client"
	IDFallbackLLM     = "fallback_llm"
)

// =============================================================================
// DEFAULT CATALOG
// =============================================================================

// DefaultRegistry returns the built-in conversation catalog for the grid.
func DefaultRegistry() *Registry {
	return MustNewRegistry(
		// Dedicated conversational nodes.
		&Node{
			ID:       IDGreeting,
			Category: CategoryApp,
			Content: Templated(func(c *session.Context) string {
				if c.UserName != "" {
					return fmt.Sprintf("Good %s, %s! Welcome to the grid. What are we building today?", c.TimeOfDay, c.UserName)
				}
				return fmt.Sprintf("Good %s! Welcome to the grid. What are we building today?", c.TimeOfDay)
			}),
			ClientOnly: true,
		},
		&Node{
			ID:       IDGeneralGreeting,
			Category: CategoryApp,
			Content: Templated(func(c *session.Context) string {
				return fmt.Sprintf("Good %s! How can I help?", c.TimeOfDay)
			}),
			ClientOnly: true,
		},
		&Node{
			ID:         IDGratitude,
			Category:   CategoryInteraction,
			Content:    Literal("Happy to help! Anything else you'd like to do?"),
			ClientOnly: true,
		},
		&Node{
			ID:       IDFarewell,
			Category: CategoryInteraction,
			Content: Templated(func(c *session.Context) string {
				if c.UserName != "" {
					return fmt.Sprintf("See you next time, %s!", c.UserName)
				}
				return "See you next time!"
			}),
			ClientOnly: true,
		},
		&Node{
			ID:       IDCapabilities,
			Category: CategoryApp,
			Content: Literal("I can create and update projects, generate social posts about them, " +
				"walk you through the grid's boards and settings, and answer general questions."),
			Actions: []Action{
				{ID: "create_project", Label: "Create a project", Variant: VariantDefault},
				{ID: "show_help", Label: "Show me around", Variant: VariantOutline},
			},
		},
		&Node{
			ID:       IDHelp,
			Category: CategoryApp,
			Content: Literal("Start from the board view: every project is a column, every task a card. " +
				"Ask me to create a project and I'll take it from there."),
		},

		// Keyword nodes. The ID doubles as the match text.
		&Node{
			ID:       "project",
			Category: CategoryProject,
			Content: Templated(func(c *session.Context) string {
				if c.LastProjectName != "" {
					return fmt.Sprintf("Your latest project is %q. You can open it from the board, or ask me to create another.", c.LastProjectName)
				}
				return "You don't have a project in this session yet. Want me to create one?"
			}),
		},
		&Node{
			ID:       "settings",
			Category: CategoryApp,
			Content:  Literal("Settings live behind the gear icon, top right. Theme, notifications, and account details are all in there."),
		},
		&Node{
			ID:       "billing",
			Category: CategoryApp,
			Content:  Literal("Billing is under Settings > Plan. You can change plans or download invoices there."),
		},
		&Node{
			ID:        "dashboard",
			Category:  CategoryApp,
			Content:   Literal("The dashboard summarizes activity across your projects."),
			Component: "dashboard_preview",
		},
		&Node{
			ID:       "team",
			Category: CategoryApp,
			Content:  Literal("Invite teammates from Settings > Members. Everyone on the board sees updates live."),
		},
		&Node{
			ID:       "notification",
			Category: CategoryApp,
			Content:  Literal("Notification preferences are per-project: open a project and hit the bell icon."),
		},
		&Node{
			ID:       "language",
			Category: CategoryUser,
			Conditions: []Condition{
				{Key: "preferredLanguages", Op: OpContains, Value: "en-US"},
			},
			Content: Literal("The grid is currently English-only; more languages are on the roadmap."),
		},

		// Condition-only nodes, found by the category rescan.
		&Node{
			ID:       "first_steps",
			Category: CategoryInteraction,
			Conditions: []Condition{
				{Key: "interactionCount", Op: OpLessThan, Value: 3},
			},
			Content: Literal("Since you're just getting started: try \"create a new project\" and I'll walk you through it."),
		},
		&Node{
			ID:       "project_followup",
			Category: CategoryProject,
			Conditions: []Condition{
				{Key: "interactionCount", Op: OpGreaterThan, Value: 5},
			},
			Content: Templated(func(c *session.Context) string {
				if c.LastProjectName != "" {
					return fmt.Sprintf("Still working on %q? I can update its description or draft a post about it.", c.LastProjectName)
				}
				return "I can set up a project for whatever you're working on. Just say the word."
			}),
		},
		&Node{
			ID:       "mobile_hint",
			Category: CategorySession,
			Conditions: []Condition{
				{Key: "deviceType", Op: OpEquals, Value: "mobile"},
			},
			Content: Literal("Tip: on mobile, swipe a card left to archive it."),
		},

		// Low-proximity knowledge nodes. Content is fed to the backend as
		// context rather than returned verbatim.
		&Node{
			ID:       "kanban",
			Category: CategoryDomain,
			Content:  Literal("The grid uses a kanban model: columns are stages, cards are tasks, and work-in-progress limits are configurable per column."),
		},
		&Node{
			ID:       "roadmap",
			Category: CategoryDomain,
			Content:  Literal("A roadmap in the grid is a timeline view derived from project milestones."),
		},
		&Node{
			ID:       "career",
			Category: CategoryCareer,
			Content:  Literal("The user works in software project management and uses the grid to organize delivery."),
		},
		&Node{
			ID:       "productivity",
			Category: CategoryGeneral,
			Content:  Literal("The user is asking about personal productivity in the context of a project workspace."),
		},

		// Fallbacks. Must come last so every scan strategy misses first.
		&Node{
			ID:       IDFallbackClient,
			Category: CategoryFallback,
			Content: Literal("I'm not sure I caught that. I can create projects, update them, or show you around the grid — " +
				"what would you like to do?"),
			ClientOnly: true,
		},
		&Node{
			ID:       IDFallbackLLM,
			Category: CategoryFallback,
			Content:  Literal("The user is chatting inside the grid, a project management workspace."),
		},
	)
}
