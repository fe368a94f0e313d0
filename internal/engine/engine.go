// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package engine is the routing orchestrator: it composes session state,
// intent detection, the node matcher, and the project flow into a single
// message-in, response-out surface for the front end.
package engine

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/flux-engine/internal/config"
	"github.com/jeranaias/flux-engine/internal/flow"
	"github.com/jeranaias/flux-engine/internal/intent"
	"github.com/jeranaias/flux-engine/internal/node"
	"github.com/jeranaias/flux-engine/internal/router"
	"github.com/jeranaias/flux-engine/internal/session"
	"github.com/jeranaias/flux-engine/internal/transcript"
	"github.com/jeranaias/flux-engine/internal/util"
)

// =============================================================================
// CANNED REPLIES
// =============================================================================

const (
	emptyInputReply    = "I didn't catch anything there — type a message and I'll help."
	deniedReply        = "No problem — let me know if you need anything else."
	backendApology     = "Sorry — I'm having trouble answering that right now. Try again in a moment?"
	expiredActionReply = "That one's expired — just tell me what you'd like to do."
	unboundReply       = "I can't do that one myself yet — you can manage it from the project's settings page."
	unknownActionReply = "Hmm, that didn't do anything. Try asking me directly?"
)

// recentContextWindow is how many transcript messages prime the backend.
const recentContextWindow = 6

// =============================================================================
// TYPES
// =============================================================================

// Completer produces a generative answer for messages no client-side node
// can resolve.
type Completer interface {
	Complete(ctx context.Context, message, contextText string) (string, error)
}

// Response is one engine answer, ready for the front end to present.
type Response struct {
	Response     string
	IsClientOnly bool
	Actions      []node.Action
	Component    string
	Metadata     map[string]any
}

// Engine routes one session's messages. All state is per-session: a new
// Engine starts from a clean slate, and nothing survives it.
//
// Not safe for concurrent use across sessions; a single session's calls are
// serialized internally.
type Engine struct {
	mu         sync.Mutex
	cfg        *config.Config
	sess       *session.Manager
	registry   *node.Registry
	matcher    *router.Matcher
	detector   *intent.Detector
	pending    *intent.State
	flow       *flow.ProjectFlow
	backend    Completer
	transcript *transcript.Transcript

	// sleep paces client-resolved answers; injectable for tests.
	sleep func(time.Duration)
}

// New wires an engine for one session from configuration and external
// services.
func New(cfg *config.Config, projects flow.ProjectService, posts flow.PostGenerator, backend Completer) *Engine {
	sess := session.NewManager(cfg.UI.UserName)
	pending := intent.NewState(cfg.Routing.PendingTTL())
	return &Engine{
		cfg:        cfg,
		sess:       sess,
		registry:   node.DefaultRegistry(),
		matcher:    router.NewMatcher(cfg.Routing.AppKeywords...),
		detector:   intent.NewDetector(intent.DefaultPatterns()),
		pending:    pending,
		flow:       flow.NewProjectFlow(projects, posts, pending),
		backend:    backend,
		transcript: transcript.New(sess.SessionID()),
		sleep:      time.Sleep,
	}
}

// Session exposes the session manager (read-mostly, for the front end).
func (e *Engine) Session() *session.Manager {
	return e.sess
}

// Transcript exposes the session transcript.
func (e *Engine) Transcript() *transcript.Transcript {
	return e.transcript
}

// UpdateConfig applies a reloaded configuration. Routing keywords and
// thresholds take effect on the next message; the session itself is
// untouched.
func (e *Engine) UpdateConfig(cfg *config.Config) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg = cfg
	e.matcher = router.NewMatcher(cfg.Routing.AppKeywords...)
}

// =============================================================================
// MESSAGE HANDLING
// =============================================================================

// HandleMessage routes one user message through the full decision chain:
//
//  1. empty input short-circuits without counting an interaction;
//  2. an armed flow (project name, description) owns the message;
//  3. a pending confirmation is resolved (yes runs the handler, no aborts,
//     anything else leaves the pend armed and keeps routing);
//  4. a fresh confirmable intent above the threshold arms a pend and asks;
//  5. the node matcher picks a node: high proximity or client-only renders
//     locally, anything else goes to the generative backend.
func (e *Engine) HandleMessage(ctx context.Context, message string) Response {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sess.Touch()

	if strings.TrimSpace(message) == "" {
		return Response{Response: emptyInputReply, IsClientOnly: true}
	}

	sctx := e.sess.Context()
	sctx.RecordInteraction()
	for _, kw := range e.matcher.KeywordsIn(message) {
		sctx.RecordTopic(kw)
	}
	e.transcript.AddUser(message)
	started := time.Now()

	// An armed flow owns the next free-text message outright.
	if res := e.flow.HandleMessage(ctx, message, sctx); res != nil {
		return e.finish(res, started)
	}

	if p := e.pending.Get(); p != nil {
		det := e.detector.Detect(message, p)
		switch {
		case det.Intent == p.Intent && det.Confidence == 1.0:
			e.pending.Clear()
			return e.finish(e.confirmIntent(ctx, p.Intent, sctx), started)
		case det.Intent == intent.IntentDenial:
			e.pending.Clear()
			e.flow.Reset()
			return e.finish(&flow.Result{Response: deniedReply, IsClientOnly: true}, started)
		}
		// Neither a yes nor a no: the pend stays armed and the message
		// routes normally.
	} else {
		det := e.detector.Detect(message, nil)
		if det.Matched() && det.Confidence > e.cfg.Routing.ConfirmThreshold && det.ConfirmationMessage != "" {
			log.Printf("ENGINE: intent=%s confidence=%.2f -> confirming", det.Intent, det.Confidence)
			e.pending.Set(&intent.PendingIntent{
				Intent:              det.Intent,
				ConfirmationMessage: det.ConfirmationMessage,
				OriginalMessage:     message,
				Actions:             det.Actions,
			})
			return e.finish(&flow.Result{
				Response:     det.ConfirmationMessage,
				IsClientOnly: true,
				Actions:      det.Actions,
			}, started)
		}
	}

	m := e.matcher.Match(message, sctx.InteractionCount, e.registry, sctx)
	if m.IsHighProximity() || m.Node.ClientOnly {
		return e.finish(&flow.Result{
			Response:     m.Node.Render(sctx),
			IsClientOnly: true,
			Actions:      m.Node.Actions,
			Component:    m.Node.Component,
		}, started)
	}

	answer, err := e.backend.Complete(ctx, message, e.modelContext(m, sctx))
	if err != nil {
		log.Printf("ENGINE: backend completion failed for %q: %v",
			util.TruncateForLog(message, 50), err)
		return e.finish(&flow.Result{Response: backendApology, IsClientOnly: true}, started)
	}
	e.transcript.AddAssistant(answer, false, time.Since(started))
	return Response{Response: answer, IsClientOnly: false}
}

// =============================================================================
// ACTION HANDLING
// =============================================================================

// HandleAction routes an action-button click. Yes/no buttons resolve the
// pending confirmation; everything else is offered to the flow handlers.
func (e *Engine) HandleAction(ctx context.Context, actionID string) Response {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sess.Touch()

	sctx := e.sess.Context()
	started := time.Now()

	switch actionID {
	case intent.ActionYes:
		p := e.pending.Get()
		if p == nil {
			return e.finish(&flow.Result{Response: expiredActionReply, IsClientOnly: true}, started)
		}
		e.pending.Clear()
		return e.finish(e.confirmIntent(ctx, p.Intent, sctx), started)

	case intent.ActionNo:
		e.pending.Clear()
		e.flow.Reset()
		return e.finish(&flow.Result{Response: deniedReply, IsClientOnly: true}, started)

	default:
		if res := e.flow.HandleAction(ctx, actionID, sctx); res != nil {
			return e.finish(res, started)
		}
		log.Printf("ENGINE: unknown action id=%q", actionID)
		return e.finish(&flow.Result{Response: unknownActionReply, IsClientOnly: true}, started)
	}
}

// =============================================================================
// INTERNALS
// =============================================================================

// confirmIntent runs the handler bound to a confirmed intent. Intents with
// no bound handler get an honest decline rather than a silent no-op.
func (e *Engine) confirmIntent(ctx context.Context, name string, sctx *session.Context) *flow.Result {
	if res := e.flow.ConfirmIntent(ctx, name, sctx); res != nil {
		return res
	}
	log.Printf("ENGINE: confirmed intent %q has no handler", name)
	return &flow.Result{Response: unboundReply, IsClientOnly: true}
}

// finish paces a client-resolved answer, records it, and converts it to a
// Response.
func (e *Engine) finish(res *flow.Result, started time.Time) Response {
	if res.IsClientOnly {
		if d := e.cfg.Routing.ClientDelay(); d > 0 {
			e.sleep(d)
		}
	}
	e.transcript.AddAssistant(res.Response, res.IsClientOnly, time.Since(started))
	return Response{
		Response:     res.Response,
		IsClientOnly: res.IsClientOnly,
		Actions:      res.Actions,
		Component:    res.Component,
		Metadata:     res.Metadata,
	}
}

// modelContext builds the grounding text for a backend completion: who the
// assistant is, what the matched node suggests, and the recent exchange.
func (e *Engine) modelContext(m router.Match, sctx *session.Context) string {
	var b strings.Builder
	b.WriteString("You are Flux, the assistant inside the grid, a project management app. Keep answers short and practical.")
	if sctx.UserName != "" {
		b.WriteString(" The user's name is ")
		b.WriteString(sctx.UserName)
		b.WriteString(".")
	}
	if m.Node != nil && m.Node.ID != node.IDFallbackLLM {
		if hint := m.Node.Render(sctx); hint != "" {
			b.WriteString("\n\nRelevant guidance: ")
			b.WriteString(hint)
		}
	}
	// The current user message rides separately as the completion prompt,
	// so the context window stops before it.
	if recent := e.transcript.PriorContext(recentContextWindow); recent != "" {
		b.WriteString("\n\nRecent conversation:\n")
		b.WriteString(recent)
	}
	return b.String()
}
