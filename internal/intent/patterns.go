// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package intent

import "github.com/jeranaias/flux-engine/internal/node"

// =============================================================================
// INTENT PATTERN
// =============================================================================

// Pattern describes one catalogued intent: the keywords that score it, the
// words that gate it, and the confirmation the orchestrator asks before
// acting on it.
type Pattern struct {
	// Keywords are scored by occurrence in the message (token or substring).
	Keywords []string

	// RequiredWords must all appear as tokens or the pattern is skipped.
	RequiredWords []string

	// MinMatchCount is the minimum keyword hits to qualify (>= 1).
	MinMatchCount int

	// ConfirmationMessage, when set, makes the intent confirmable: the
	// orchestrator asks before running the bound handler.
	ConfirmationMessage string

	// Actions are the buttons offered with the confirmation prompt.
	Actions []node.Action
}

// Intent names, shared with the flow handlers.
const (
	IntentCreateProject = "create_project"
	IntentUpdateProject = "update_project"
	IntentDeleteProject = "delete_project"
	IntentGeneratePost  = "generate_post"

	// IntentDenial is the synthetic intent returned when a pending
	// confirmation is answered with a no.
	IntentDenial = "denial"
)

// Well-known action IDs used on confirmation prompts.
const (
	ActionYes = "yes"
	ActionNo  = "no"
)

// confirmActions is the standard yes/no pair attached to confirmations.
func confirmActions() []node.Action {
	return []node.Action{
		{ID: ActionYes, Label: "Yes", Variant: node.VariantDefault},
		{ID: ActionNo, Label: "No", Variant: node.VariantOutline},
	}
}

// DefaultPatterns returns the built-in intent catalog, keyed by intent name.
func DefaultPatterns() map[string]Pattern {
	return map[string]Pattern{
		IntentCreateProject: {
			Keywords:            []string{"create", "new", "project", "start", "make", "set up", "add"},
			RequiredWords:       []string{"project"},
			MinMatchCount:       2,
			ConfirmationMessage: "Want me to create a new project for you?",
			Actions:             confirmActions(),
		},
		IntentUpdateProject: {
			Keywords:            []string{"update", "change", "edit", "rename", "describe", "description", "project"},
			RequiredWords:       []string{"project"},
			MinMatchCount:       2,
			ConfirmationMessage: "Should I update your project?",
			Actions:             confirmActions(),
		},
		IntentDeleteProject: {
			Keywords:            []string{"delete", "remove", "archive", "project"},
			RequiredWords:       []string{"project"},
			MinMatchCount:       2,
			ConfirmationMessage: "This archives the project. Are you sure?",
			Actions: []node.Action{
				{ID: ActionYes, Label: "Archive it", Variant: node.VariantDestructive},
				{ID: ActionNo, Label: "Keep it", Variant: node.VariantOutline},
			},
		},
		IntentGeneratePost: {
			Keywords:            []string{"generate", "post", "tweet", "share", "social", "announce", "draft"},
			MinMatchCount:       2,
			ConfirmationMessage: "Should I draft a post about your latest project?",
			Actions:             confirmActions(),
		},
	}
}
