// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package flow

import (
	"context"
	"time"
)

// =============================================================================
// EXTERNAL COLLABORATORS
// =============================================================================

// Project is a project record as returned by the project service.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateProjectInput is the payload for project creation.
type CreateProjectInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type,omitempty"`
}

// ProjectPatch is a partial update to a project. Nil fields are untouched.
type ProjectPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// ProjectService is the app's project CRUD service, consumed as an opaque
// async collaborator. Calls may be slow and may fail.
type ProjectService interface {
	CreateProject(ctx context.Context, in CreateProjectInput) (*Project, error)
	UpdateProject(ctx context.Context, id string, patch ProjectPatch) error
}

// PostGenerator drafts a social post about a project.
type PostGenerator interface {
	GeneratePost(ctx context.Context, projectName, projectDescription string) (string, error)
}
