// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package services provides HTTP implementations of the external
// collaborators the flow handlers depend on: the grid's project CRUD
// service and the social-post generator. The engine itself only sees the
// flow package's interfaces; these clients are wired in by the binary.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/flux-engine/internal/flow"
)

// Configuration constants for the grid API client.
const (
	// DefaultTimeout is the default timeout for API requests.
	DefaultTimeout = 15 * time.Second

	// maxResponseSize caps response bodies.
	maxResponseSize = 1 * 1024 * 1024 // 1MB

	// requestsPerSecond is the outgoing rate limit.
	requestsPerSecond = 5
)

// Config holds configuration for the grid API client.
type Config struct {
	// BaseURL is the grid REST API base URL.
	BaseURL string

	// APIKey is sent as a bearer token when non-empty.
	APIKey string

	// Timeout for API requests (default: 15s).
	Timeout time.Duration
}

// =============================================================================
// GRID CLIENT
// =============================================================================

// Grid is the HTTP client for the grid's REST API. It implements both
// flow.ProjectService and flow.PostGenerator.
type Grid struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
}

// interface conformance
var (
	_ flow.ProjectService = (*Grid)(nil)
	_ flow.PostGenerator  = (*Grid)(nil)
)

// NewGrid creates a grid API client.
func NewGrid(cfg Config) *Grid {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Grid{
		cfg: cfg,
		http: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
	}
}

// CreateProject creates a project via POST /projects.
func (g *Grid) CreateProject(ctx context.Context, in flow.CreateProjectInput) (*flow.Project, error) {
	var project flow.Project
	if err := g.call(ctx, http.MethodPost, "/projects", in, &project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return &project, nil
}

// UpdateProject patches a project via PATCH /projects/{id}.
func (g *Grid) UpdateProject(ctx context.Context, id string, patch flow.ProjectPatch) error {
	if err := g.call(ctx, http.MethodPatch, "/projects/"+id, patch, nil); err != nil {
		return fmt.Errorf("update project %s: %w", id, err)
	}
	return nil
}

// GeneratePost drafts a social post via POST /posts/generate.
func (g *Grid) GeneratePost(ctx context.Context, projectName, projectDescription string) (string, error) {
	req := map[string]string{
		"projectName":        projectName,
		"projectDescription": projectDescription,
	}
	var resp struct {
		Post string `json:"post"`
	}
	if err := g.call(ctx, http.MethodPost, "/posts/generate", req, &resp); err != nil {
		return "", fmt.Errorf("generate post: %w", err)
	}
	return resp.Post, nil
}

// call performs one JSON request/response round trip.
func (g *Grid) call(ctx context.Context, method, path string, payload, out any) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.cfg.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("grid API returned status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
