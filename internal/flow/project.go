// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package flow

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jeranaias/flux-engine/internal/intent"
	"github.com/jeranaias/flux-engine/internal/node"
	"github.com/jeranaias/flux-engine/internal/session"
	"github.com/jeranaias/flux-engine/internal/util"
)

// =============================================================================
// ACTION IDS
// =============================================================================

// Action IDs emitted by the project flow and fed back on click.
const (
	ActionNavigateToProject = "navigate_to_project"
	ActionAddDescription    = "add_project_description"
	ActionDoSomethingElse   = "do_something_else"
	ActionGeneratePost      = "generate_project_x_post"
	ActionCopyPost          = "copy_post"
	ActionRegeneratePost    = "regenerate_post"
)

// =============================================================================
// RESULT
// =============================================================================

// Result is a handler-produced response. A nil *Result from a handler means
// "not applicable, let the orchestrator try other strategies".
type Result struct {
	Response     string
	IsClientOnly bool
	Actions      []node.Action
	Component    string
	Metadata     map[string]any
}

// =============================================================================
// PROJECT FLOW
// =============================================================================

// ProjectFlow owns the multi-turn project conversation: create (name prompt,
// service call), describe (slot-filled description), and social-post
// generation. State here is per-session, like everything the engine owns;
// external service failures degrade to plain-language apologies and reset
// the flow to idle so the user can retry.
type ProjectFlow struct {
	projects ProjectService
	posts    PostGenerator
	pending  *intent.State

	waitingForProjectName    bool
	waitingForDescriptionFor *Project
	waitingForPostGeneration bool
	lastCreatedProject       *Project
	lastPost                 string
}

// NewProjectFlow wires the flow to its external services and the session's
// pending-intent slot.
func NewProjectFlow(projects ProjectService, posts PostGenerator, pending *intent.State) *ProjectFlow {
	return &ProjectFlow{
		projects: projects,
		posts:    posts,
		pending:  pending,
	}
}

// Waiting reports whether the flow owns the next free-text message.
func (f *ProjectFlow) Waiting() bool {
	return f.waitingForProjectName || f.waitingForDescriptionFor != nil
}

// Reset returns the flow to idle, abandoning any outstanding prompt.
func (f *ProjectFlow) Reset() {
	f.waitingForProjectName = false
	f.waitingForDescriptionFor = nil
	f.waitingForPostGeneration = false
}

// LastProject returns the most recently created project, or nil.
func (f *ProjectFlow) LastProject() *Project {
	return f.lastCreatedProject
}

// =============================================================================
// MESSAGE HANDLING
// =============================================================================

// HandleMessage consumes a free-text message if the flow is waiting for
// one. Returns nil when the flow is idle so the orchestrator can try other
// strategies.
func (f *ProjectFlow) HandleMessage(ctx context.Context, message string, sctx *session.Context) *Result {
	switch {
	case f.waitingForProjectName:
		return f.createProject(ctx, strings.TrimSpace(message), sctx)
	case f.waitingForDescriptionFor != nil:
		return f.describeProject(ctx, strings.TrimSpace(message), sctx)
	default:
		return nil
	}
}

// createProject treats the message as the project name and calls the
// project service.
func (f *ProjectFlow) createProject(ctx context.Context, name string, sctx *session.Context) *Result {
	f.waitingForProjectName = false
	if name == "" {
		f.waitingForProjectName = true
		return &Result{
			Response:     "I still need a name for the project. What should we call it?",
			IsClientOnly: true,
		}
	}

	project, err := f.projects.CreateProject(ctx, CreateProjectInput{Name: name, Type: "standard"})
	if err != nil {
		log.Printf("FLOW: create project %q failed: %v", util.TruncateForLog(name, 40), err)
		f.Reset()
		return &Result{
			Response:     fmt.Sprintf("Sorry — I couldn't create %q just now. Mind trying again in a moment?", name),
			IsClientOnly: true,
		}
	}

	f.lastCreatedProject = project
	sctx.LastProjectName = project.Name
	log.Printf("FLOW: created project id=%s name=%q", project.ID, util.TruncateForLog(project.Name, 40))

	return &Result{
		Response:     fmt.Sprintf("Done! %q is on your board. What next?", project.Name),
		IsClientOnly: true,
		Actions: []node.Action{
			{ID: ActionNavigateToProject, Label: "Open it", Variant: node.VariantDefault},
			{ID: ActionAddDescription, Label: "Add a description", Variant: node.VariantSecondary},
			{ID: ActionDoSomethingElse, Label: "Something else", Variant: node.VariantOutline},
		},
		Metadata: map[string]any{"projectId": project.ID},
	}
}

// describeProject treats the message as the description for the project
// armed by the add-description action.
func (f *ProjectFlow) describeProject(ctx context.Context, description string, sctx *session.Context) *Result {
	project := f.waitingForDescriptionFor
	f.waitingForDescriptionFor = nil
	f.pending.Clear()

	if description == "" {
		f.waitingForDescriptionFor = project
		return &Result{
			Response:     "Give me a sentence or two and I'll attach it to the project.",
			IsClientOnly: true,
		}
	}

	err := f.projects.UpdateProject(ctx, project.ID, ProjectPatch{Description: &description})
	if err != nil {
		log.Printf("FLOW: update project id=%s failed: %v", project.ID, err)
		return &Result{
			Response:     fmt.Sprintf("Sorry — I couldn't save the description for %q. Want to try again?", project.Name),
			IsClientOnly: true,
		}
	}

	project.Description = description
	if f.lastCreatedProject != nil && f.lastCreatedProject.ID == project.ID {
		f.lastCreatedProject.Description = description
	}
	log.Printf("FLOW: updated project id=%s description", project.ID)

	return &Result{
		Response:     fmt.Sprintf("Updated — %q now has a description. Want to show it off?", project.Name),
		IsClientOnly: true,
		Actions: []node.Action{
			{ID: ActionNavigateToProject, Label: "Open it", Variant: node.VariantDefault},
			{ID: ActionGeneratePost, Label: "Draft a post about it", Variant: node.VariantSecondary},
		},
		Metadata: map[string]any{"projectId": project.ID},
	}
}

// =============================================================================
// INTENT CONFIRMATION
// =============================================================================

// ConfirmIntent runs the flow step bound to a confirmed intent. Returns nil
// for intents the project flow doesn't own.
func (f *ProjectFlow) ConfirmIntent(ctx context.Context, name string, sctx *session.Context) *Result {
	switch name {
	case intent.IntentCreateProject:
		f.waitingForProjectName = true
		return &Result{
			Response:     "Great — what should we call the project?",
			IsClientOnly: true,
		}
	case intent.IntentUpdateProject:
		if f.lastCreatedProject == nil {
			return &Result{
				Response:     "There's no project from this session to update yet. Want to create one first?",
				IsClientOnly: true,
			}
		}
		return f.armDescriptionPrompt(f.lastCreatedProject)
	case intent.IntentGeneratePost:
		if f.lastCreatedProject == nil {
			return &Result{
				Response:     "I need a project to post about. Create one and I'll draft something.",
				IsClientOnly: true,
			}
		}
		return f.generatePost(ctx, f.lastCreatedProject)
	default:
		return nil
	}
}

// =============================================================================
// ACTION CLICKS
// =============================================================================

// HandleAction consumes an action-button click. Returns nil for action IDs
// the project flow doesn't own.
func (f *ProjectFlow) HandleAction(ctx context.Context, actionID string, sctx *session.Context) *Result {
	switch actionID {
	case ActionNavigateToProject:
		project := f.lastCreatedProject
		if project == nil {
			return &Result{Response: "Nothing to open yet — create a project first.", IsClientOnly: true}
		}
		return &Result{
			Response:     fmt.Sprintf("Opening %q.", project.Name),
			IsClientOnly: true,
			Component:    "project_view",
			Metadata:     map[string]any{"projectId": project.ID},
		}

	case ActionAddDescription:
		project := f.lastCreatedProject
		if project == nil {
			return &Result{Response: "There's no project to describe yet.", IsClientOnly: true}
		}
		return f.armDescriptionPrompt(project)

	case ActionDoSomethingElse:
		f.Reset()
		f.pending.Clear()
		return &Result{Response: "No problem — what would you like to do instead?", IsClientOnly: true}

	case ActionGeneratePost, ActionRegeneratePost:
		project := f.lastCreatedProject
		if project == nil {
			return &Result{Response: "I need a project to post about first.", IsClientOnly: true}
		}
		return f.generatePost(ctx, project)

	case ActionCopyPost:
		if f.lastPost == "" {
			return &Result{Response: "There's no post to copy yet.", IsClientOnly: true}
		}
		return &Result{
			Response:     "Copied! Paste it wherever you like.",
			IsClientOnly: true,
			Metadata:     map[string]any{"clipboard": f.lastPost},
		}

	default:
		return nil
	}
}

// armDescriptionPrompt puts the flow (and the pending-intent slot) into the
// slot-filling state for a project description. The pend's IsConfirmation
// flag keeps the next free-text message from misfiring as a denial or a
// fresh intent.
func (f *ProjectFlow) armDescriptionPrompt(project *Project) *Result {
	f.waitingForDescriptionFor = project
	f.pending.Set(&intent.PendingIntent{
		Intent:           intent.IntentUpdateProject,
		IsConfirmation:   true,
		ExpectedActionID: ActionAddDescription,
	})
	return &Result{
		Response:     fmt.Sprintf("Sure — how would you describe %q?", project.Name),
		IsClientOnly: true,
	}
}

// generatePost calls the post generator for a project and offers
// copy/regenerate follow-ups.
func (f *ProjectFlow) generatePost(ctx context.Context, project *Project) *Result {
	if f.waitingForPostGeneration {
		return &Result{Response: "Still drafting — one moment.", IsClientOnly: true}
	}
	f.waitingForPostGeneration = true
	defer func() { f.waitingForPostGeneration = false }()

	post, err := f.posts.GeneratePost(ctx, project.Name, project.Description)
	if err != nil {
		log.Printf("FLOW: generate post for id=%s failed: %v", project.ID, err)
		return &Result{
			Response:     "Sorry — the post generator isn't cooperating right now. Try again in a bit?",
			IsClientOnly: true,
		}
	}

	f.lastPost = post
	return &Result{
		Response:     fmt.Sprintf("Here's a draft:\n\n%s", post),
		IsClientOnly: true,
		Actions: []node.Action{
			{ID: ActionCopyPost, Label: "Copy", Variant: node.VariantDefault},
			{ID: ActionRegeneratePost, Label: "Try another", Variant: node.VariantOutline},
		},
		Metadata: map[string]any{"projectId": project.ID},
	}
}
