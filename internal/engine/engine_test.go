// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/flux-engine/internal/config"
	"github.com/jeranaias/flux-engine/internal/flow"
)

// =============================================================================
// FAKES
// =============================================================================

type fakeProjects struct {
	createCalls []flow.CreateProjectInput
	updateCalls []flow.ProjectPatch
	createErr   error
	updateErr   error
}

func (f *fakeProjects) CreateProject(_ context.Context, in flow.CreateProjectInput) (*flow.Project, error) {
	f.createCalls = append(f.createCalls, in)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &flow.Project{ID: "proj-1", Name: in.Name, Type: in.Type, CreatedAt: time.Now()}, nil
}

func (f *fakeProjects) UpdateProject(_ context.Context, id string, patch flow.ProjectPatch) error {
	f.updateCalls = append(f.updateCalls, patch)
	return f.updateErr
}

type fakePosts struct {
	calls int
	err   error
}

func (f *fakePosts) GeneratePost(_ context.Context, name, description string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "Check out " + name + "!", nil
}

type fakeBackend struct {
	calls       int
	lastMessage string
	lastContext string
	answer      string
	err         error
}

func (f *fakeBackend) Complete(_ context.Context, message, contextText string) (string, error) {
	f.calls++
	f.lastMessage = message
	f.lastContext = contextText
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func newTestEngine(t *testing.T) (*Engine, *fakeProjects, *fakePosts, *fakeBackend) {
	t.Helper()
	cfg := config.Default()
	cfg.Routing.ClientDelayMs = 0
	cfg.UI.UserName = "Ada"

	projects := &fakeProjects{}
	posts := &fakePosts{}
	backend := &fakeBackend{answer: "Here's what I think."}

	e := New(cfg, projects, posts, backend)
	e.sleep = func(time.Duration) {}
	return e, projects, posts, backend
}

// =============================================================================
// ROUTING SCENARIOS
// =============================================================================

func TestGreetingResolvesClientSide(t *testing.T) {
	e, _, _, backend := newTestEngine(t)

	resp := e.HandleMessage(context.Background(), "hello flux")

	if !resp.IsClientOnly {
		t.Error("greeting should be client-resolved")
	}
	if !strings.Contains(strings.ToLower(resp.Response), "welcome to the grid") {
		t.Errorf("greeting = %q, want it to welcome to the grid", resp.Response)
	}
	if backend.calls != 0 {
		t.Error("greeting must not reach the backend")
	}
}

func TestNonAppQuestionGoesToBackend(t *testing.T) {
	e, _, _, backend := newTestEngine(t)

	resp := e.HandleMessage(context.Background(), "tell me a joke about compilers")

	if resp.IsClientOnly {
		t.Error("non-app chatter should be model-resolved")
	}
	if resp.Response != "Here's what I think." {
		t.Errorf("Response = %q, want backend answer", resp.Response)
	}
	if len(resp.Actions) != 0 {
		t.Error("model answers carry no actions")
	}
	if backend.calls != 1 {
		t.Fatalf("backend.calls = %d, want 1", backend.calls)
	}
	if !strings.Contains(backend.lastContext, "You are Flux") {
		t.Error("backend context should identify the assistant")
	}
	if !strings.Contains(backend.lastContext, "Ada") {
		t.Error("backend context should carry the user's name")
	}
}

func TestBackendContextOmitsCurrentMessage(t *testing.T) {
	e, _, _, backend := newTestEngine(t)

	// Seed an earlier exchange so there is history to prime with.
	e.HandleMessage(context.Background(), "hello flux")

	e.HandleMessage(context.Background(), "tell me a joke about compilers")

	if backend.calls != 1 {
		t.Fatalf("backend.calls = %d, want 1", backend.calls)
	}
	if backend.lastMessage != "tell me a joke about compilers" {
		t.Errorf("lastMessage = %q", backend.lastMessage)
	}
	// The prompt already carries the current message; repeating it in the
	// context window would send it twice.
	if strings.Contains(backend.lastContext, "tell me a joke about compilers") {
		t.Errorf("context repeats the current message: %q", backend.lastContext)
	}
	if !strings.Contains(backend.lastContext, "user: hello flux") {
		t.Errorf("context should carry the earlier exchange: %q", backend.lastContext)
	}
}

func TestBackendFailureApologizes(t *testing.T) {
	e, _, _, backend := newTestEngine(t)
	backend.err = errors.New("connection refused")

	resp := e.HandleMessage(context.Background(), "tell me a joke")

	if !resp.IsClientOnly {
		t.Error("apology should be client-resolved")
	}
	if !strings.Contains(resp.Response, "Sorry") {
		t.Errorf("Response = %q, want an apology", resp.Response)
	}
}

func TestAppKeywordNodeResolvesWithComponent(t *testing.T) {
	e, _, _, backend := newTestEngine(t)

	resp := e.HandleMessage(context.Background(), "show me my dashboard")

	if !resp.IsClientOnly {
		t.Error("dashboard answer should be client-resolved")
	}
	if resp.Component != "dashboard_preview" {
		t.Errorf("Component = %q, want dashboard_preview", resp.Component)
	}
	if backend.calls != 0 {
		t.Error("keyword node must not reach the backend")
	}

	topics := e.Session().Context().LastTopics
	if len(topics) == 0 || topics[0] != "dashboard" {
		t.Errorf("LastTopics = %v, want dashboard recorded", topics)
	}
}

func TestEmptyInputShortCircuits(t *testing.T) {
	e, _, _, _ := newTestEngine(t)

	resp := e.HandleMessage(context.Background(), "   ")

	if !resp.IsClientOnly {
		t.Error("empty-input reply should be client-resolved")
	}
	if e.Session().Context().InteractionCount != 0 {
		t.Error("empty input must not count as an interaction")
	}
	if !e.Transcript().IsEmpty() {
		t.Error("empty input must not enter the transcript")
	}
}

// =============================================================================
// CREATE-PROJECT FLOW
// =============================================================================

func TestCreateProjectFlowEndToEnd(t *testing.T) {
	e, projects, _, _ := newTestEngine(t)
	ctx := context.Background()

	// Detection arms a confirmation with yes/no buttons.
	resp := e.HandleMessage(ctx, "I want to create a new project")
	if resp.Response != "Want me to create a new project for you?" {
		t.Fatalf("confirmation = %q", resp.Response)
	}
	if len(resp.Actions) != 2 || resp.Actions[0].ID != "yes" || resp.Actions[1].ID != "no" {
		t.Fatalf("Actions = %+v, want yes/no", resp.Actions)
	}

	// A typed yes confirms and prompts for the name.
	resp = e.HandleMessage(ctx, "yes")
	if !strings.Contains(resp.Response, "call the project") {
		t.Fatalf("name prompt = %q", resp.Response)
	}
	if len(projects.createCalls) != 0 {
		t.Fatal("nothing should be created before a name is given")
	}

	// The next message is consumed as the project name.
	resp = e.HandleMessage(ctx, "Atlas")
	if len(projects.createCalls) != 1 || projects.createCalls[0].Name != "Atlas" {
		t.Fatalf("createCalls = %+v, want Atlas", projects.createCalls)
	}
	if !strings.Contains(resp.Response, "Atlas") {
		t.Errorf("creation reply = %q, want it to name Atlas", resp.Response)
	}
	if got := e.Session().Context().LastProjectName; got != "Atlas" {
		t.Errorf("LastProjectName = %q, want Atlas", got)
	}

	hasAction := func(id string) bool {
		for _, a := range resp.Actions {
			if a.ID == id {
				return true
			}
		}
		return false
	}
	if !hasAction(flow.ActionAddDescription) || !hasAction(flow.ActionNavigateToProject) {
		t.Errorf("Actions = %+v, want open + add-description", resp.Actions)
	}
}

func TestAddDescriptionSlotFilling(t *testing.T) {
	e, projects, posts, _ := newTestEngine(t)
	ctx := context.Background()

	e.HandleMessage(ctx, "I want to create a new project")
	e.HandleAction(ctx, "yes")
	e.HandleMessage(ctx, "Atlas")

	// Clicking add-description arms the slot-filling prompt.
	resp := e.HandleAction(ctx, flow.ActionAddDescription)
	if !strings.Contains(resp.Response, "describe") {
		t.Fatalf("description prompt = %q", resp.Response)
	}

	// The next free text is captured as the description, even when it
	// starts like a denial.
	resp = e.HandleMessage(ctx, "Nothing fancy, a map of everything we ship")
	if len(projects.updateCalls) != 1 {
		t.Fatalf("updateCalls = %d, want 1", len(projects.updateCalls))
	}
	if got := *projects.updateCalls[0].Description; !strings.Contains(got, "map of everything") {
		t.Errorf("description = %q", got)
	}
	if !strings.Contains(resp.Response, "Atlas") {
		t.Errorf("update reply = %q", resp.Response)
	}

	// Generate-post follow-up drafts via the post service.
	resp = e.HandleAction(ctx, flow.ActionGeneratePost)
	if posts.calls != 1 {
		t.Fatalf("posts.calls = %d, want 1", posts.calls)
	}
	if !strings.Contains(resp.Response, "Check out Atlas!") {
		t.Errorf("post reply = %q", resp.Response)
	}
}

func TestDenialAbortsIntent(t *testing.T) {
	e, projects, _, backend := newTestEngine(t)
	ctx := context.Background()

	e.HandleMessage(ctx, "I want to create a new project")
	resp := e.HandleMessage(ctx, "no")

	if !strings.Contains(resp.Response, "No problem") {
		t.Errorf("denial reply = %q", resp.Response)
	}

	// Subsequent free text is routed normally, not consumed as a name.
	e.HandleMessage(ctx, "Atlas")
	if len(projects.createCalls) != 0 {
		t.Errorf("createCalls = %+v, want none after a denial", projects.createCalls)
	}
	if backend.calls == 0 {
		t.Error("post-denial chatter should route normally")
	}
}

func TestActionNoAborts(t *testing.T) {
	e, projects, _, _ := newTestEngine(t)
	ctx := context.Background()

	e.HandleMessage(ctx, "I want to create a new project")
	resp := e.HandleAction(ctx, "no")

	if !strings.Contains(resp.Response, "No problem") {
		t.Errorf("reply = %q", resp.Response)
	}
	e.HandleMessage(ctx, "Atlas")
	if len(projects.createCalls) != 0 {
		t.Error("no button must abort the pending intent")
	}
}

func TestAmbiguousReplyKeepsPendingArmed(t *testing.T) {
	e, projects, _, _ := newTestEngine(t)
	ctx := context.Background()

	e.HandleMessage(ctx, "I want to create a new project")

	// Neither a yes nor a no: routes normally, the pend survives.
	e.HandleMessage(ctx, "hello flux")

	resp := e.HandleMessage(ctx, "yes")
	if !strings.Contains(resp.Response, "call the project") {
		t.Fatalf("late yes should still confirm, got %q", resp.Response)
	}
	e.HandleMessage(ctx, "Atlas")
	if len(projects.createCalls) != 1 {
		t.Errorf("createCalls = %d, want 1", len(projects.createCalls))
	}
}

func TestServiceFailureResetsFlow(t *testing.T) {
	e, projects, _, _ := newTestEngine(t)
	projects.createErr = errors.New("503")
	ctx := context.Background()

	e.HandleMessage(ctx, "I want to create a new project")
	e.HandleAction(ctx, "yes")
	resp := e.HandleMessage(ctx, "Atlas")

	if !strings.Contains(resp.Response, "Sorry") {
		t.Errorf("failure reply = %q, want an apology", resp.Response)
	}
	if got := e.Session().Context().LastProjectName; got != "" {
		t.Errorf("LastProjectName = %q, want empty after failure", got)
	}
}

// =============================================================================
// ACTION EDGE CASES
// =============================================================================

func TestYesWithoutPendingExpires(t *testing.T) {
	e, _, _, _ := newTestEngine(t)

	resp := e.HandleAction(context.Background(), "yes")
	if !strings.Contains(resp.Response, "expired") {
		t.Errorf("reply = %q, want expiry notice", resp.Response)
	}
}

func TestUnknownActionIsHarmless(t *testing.T) {
	e, _, _, _ := newTestEngine(t)

	resp := e.HandleAction(context.Background(), "launch_rocket")
	if !resp.IsClientOnly {
		t.Error("unknown-action reply should be client-resolved")
	}
	if resp.Response != unknownActionReply {
		t.Errorf("reply = %q", resp.Response)
	}
}

func TestUnboundIntentDeclinesHonestly(t *testing.T) {
	e, projects, _, _ := newTestEngine(t)
	ctx := context.Background()

	e.HandleMessage(ctx, "delete this project and remove it")
	resp := e.HandleAction(ctx, "yes")

	if !strings.Contains(resp.Response, "can't do that one myself") {
		t.Errorf("reply = %q, want a decline", resp.Response)
	}
	if len(projects.createCalls)+len(projects.updateCalls) != 0 {
		t.Error("unbound intent must not touch the project service")
	}
}

// =============================================================================
// TRANSCRIPT AND CONFIG
// =============================================================================

func TestTranscriptRecordsExchanges(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	ctx := context.Background()

	e.HandleMessage(ctx, "hello flux")
	e.HandleMessage(ctx, "tell me a joke")

	tr := e.Transcript()
	if tr.Len() != 4 {
		t.Fatalf("transcript Len = %d, want 4", tr.Len())
	}
	if !tr.Messages[1].IsClientOnly {
		t.Error("greeting answer should be marked client-only")
	}
	if tr.Messages[3].IsClientOnly {
		t.Error("model answer should not be marked client-only")
	}
}

func TestUpdateConfigExtendsAppKeywords(t *testing.T) {
	e, _, _, backend := newTestEngine(t)
	ctx := context.Background()

	// Unknown word: model-resolved.
	e.HandleMessage(ctx, "how is the sprint going")
	if backend.calls != 1 {
		t.Fatalf("backend.calls = %d, want 1", backend.calls)
	}

	cfg := config.Default()
	cfg.Routing.ClientDelayMs = 0
	cfg.Routing.AppKeywords = []string{"sprint"}
	e.UpdateConfig(cfg)

	// Same word is now app-related and resolves client-side.
	resp := e.HandleMessage(ctx, "how is the sprint going")
	if !resp.IsClientOnly {
		t.Error("configured keyword should make the message app-related")
	}
	if backend.calls != 1 {
		t.Errorf("backend.calls = %d, want still 1", backend.calls)
	}
}

// Compile-time interface checks for the fakes.
var (
	_ flow.ProjectService = (*fakeProjects)(nil)
	_ flow.PostGenerator  = (*fakePosts)(nil)
	_ Completer           = (*fakeBackend)(nil)
)

// The language node is gated on the session's preferred languages; it must
// stay invisible until the condition actually holds.
func TestConditionedNodeRespectsSessionState(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	ctx := context.Background()

	resp := e.HandleMessage(ctx, "can you switch the language")
	if strings.Contains(resp.Response, "English-only") {
		t.Fatalf("language node served without its condition: %q", resp.Response)
	}

	e.Session().Context().AddLanguage("en-US")

	resp = e.HandleMessage(ctx, "can you switch the language")
	if !strings.Contains(resp.Response, "English-only") {
		t.Errorf("language node should serve once en-US is preferred, got %q", resp.Response)
	}
}
