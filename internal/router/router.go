// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import (
	"log"
	"strings"

	"github.com/jeranaias/flux-engine/internal/match"
	"github.com/jeranaias/flux-engine/internal/node"
	"github.com/jeranaias/flux-engine/internal/session"
	"github.com/jeranaias/flux-engine/internal/util"
)

// =============================================================================
// APP-DOMAIN KEYWORDS
// =============================================================================

// defaultAppKeywords mark a message as app-related for routing purposes.
var defaultAppKeywords = []string{
	"project",
	"task",
	"board",
	"card",
	"grid",
	"settings",
	"billing",
	"dashboard",
	"team",
	"member",
	"notification",
	"account",
	"workspace",
	"milestone",
	"deadline",
}

// capability/help question phrasings, checked only for app-related messages.
var (
	capabilityPhrases = []string{"what can you", "capabilities", "features", "able to"}
	helpPhrases       = []string{"how do i", "how to use", "how does this work", "help"}
)

// =============================================================================
// MATCHER
// =============================================================================

// Matcher selects a conversation node and proximity classification for a
// message. The decision policy is an ordered list of named strategies
// combined first-success-wins, so the priority order is explicit and each
// step is independently testable.
type Matcher struct {
	appKeywords []string
	strategies  []Strategy
}

// NewMatcher creates a matcher. Extra app-domain keywords (typically from
// config) extend the built-in list.
func NewMatcher(extraAppKeywords ...string) *Matcher {
	m := &Matcher{
		appKeywords: append(append([]string{}, defaultAppKeywords...), extraAppKeywords...),
	}
	m.strategies = []Strategy{
		{Name: "assistant_greeting", Match: m.matchAssistantGreeting},
		{Name: "general_greeting", Match: m.matchGeneralGreeting},
		{Name: "gratitude", Match: m.matchGratitude},
		{Name: "farewell", Match: m.matchFarewell},
		{Name: "app_keyword_nodes", Match: m.matchAppKeywordNodes},
		{Name: "capability_question", Match: m.matchCapabilityQuestion},
		{Name: "low_keyword_nodes", Match: m.matchLowKeywordNodes},
		{Name: "category_rescan", Match: m.matchCategoryRescan},
		{Name: "fallback", Match: m.matchFallback},
	}
	return m
}

// Strategies exposes the ordered strategy list (read-only, for tests and
// diagnostics).
func (m *Matcher) Strategies() []Strategy {
	return m.strategies
}

// Match runs the strategy list for a message and returns the first success.
// The fallback strategy always succeeds, so a node is always returned, and
// no strategy returns a node whose conditions evaluate false.
func (m *Matcher) Match(message string, turn int, reg *node.Registry, ctx *session.Context) Match {
	req := &Request{
		Message:  message,
		Query:    util.Normalize(message),
		Turn:     turn,
		Registry: reg,
		Session:  ctx,
	}
	req.AppRelated = match.IsAppQuestion(message) || util.ContainsAny(req.Query, m.appKeywords)

	for _, s := range m.strategies {
		if result, ok := s.Match(req); ok {
			result.Strategy = s.Name
			log.Printf("ROUTING: query=%q -> node=%s proximity=%s strategy=%s",
				util.TruncateForLog(message, 50), result.Node.ID, result.Proximity, s.Name)
			return result
		}
	}

	// Unreachable: matchFallback always succeeds.
	return Match{Proximity: node.ProximityLow}
}

// KeywordsIn returns the app-domain keywords present in the message, in
// list order. Used for session topic tracking.
func (m *Matcher) KeywordsIn(message string) []string {
	q := util.Normalize(message)
	var hits []string
	for _, kw := range m.appKeywords {
		if strings.Contains(q, kw) {
			hits = append(hits, kw)
		}
	}
	return hits
}

// =============================================================================
// STRATEGIES
// =============================================================================

func (m *Matcher) matchAssistantGreeting(req *Request) (Match, bool) {
	if !match.IsGreeting(req.Message) {
		return Match{}, false
	}
	return m.dedicated(req, node.IDGreeting)
}

func (m *Matcher) matchGeneralGreeting(req *Request) (Match, bool) {
	if !match.IsGeneralGreeting(req.Message, req.Turn) {
		return Match{}, false
	}
	return m.dedicated(req, node.IDGeneralGreeting)
}

func (m *Matcher) matchGratitude(req *Request) (Match, bool) {
	if !match.IsGratitude(req.Message) {
		return Match{}, false
	}
	return m.dedicated(req, node.IDGratitude)
}

func (m *Matcher) matchFarewell(req *Request) (Match, bool) {
	if !match.IsFarewell(req.Message) {
		return Match{}, false
	}
	return m.dedicated(req, node.IDFarewell)
}

// matchAppKeywordNodes scans high-proximity nodes for an ID contained in
// the message, subject to the node's conditions. App-related messages only.
func (m *Matcher) matchAppKeywordNodes(req *Request) (Match, bool) {
	if !req.AppRelated {
		return Match{}, false
	}
	return scanKeywordNodes(req, node.HighProximityCategories, node.ProximityHigh)
}

// matchCapabilityQuestion answers "what can you do" and "how do I use this"
// for app-related messages.
func (m *Matcher) matchCapabilityQuestion(req *Request) (Match, bool) {
	if !req.AppRelated {
		return Match{}, false
	}
	if util.ContainsAny(req.Query, capabilityPhrases) {
		return m.dedicated(req, node.IDCapabilities)
	}
	if util.ContainsAny(req.Query, helpPhrases) {
		return m.dedicated(req, node.IDHelp)
	}
	return Match{}, false
}

// matchLowKeywordNodes scans low-proximity nodes by the same ID-substring
// plus condition test.
func (m *Matcher) matchLowKeywordNodes(req *Request) (Match, bool) {
	return scanKeywordNodes(req, node.LowProximityCategories, node.ProximityLow)
}

// matchCategoryRescan re-scans by category using condition evaluation only:
// high-proximity categories for app-related messages, low otherwise. Only
// nodes that actually carry conditions participate, so unconditional
// keyword nodes cannot shadow the fallbacks.
func (m *Matcher) matchCategoryRescan(req *Request) (Match, bool) {
	cats := node.LowProximityCategories
	prox := node.ProximityLow
	if req.AppRelated {
		cats = node.HighProximityCategories
		prox = node.ProximityHigh
	}
	for _, n := range req.Registry.ByCategory(cats...) {
		if len(n.Conditions) == 0 {
			continue
		}
		if n.Eligible(req.Session) {
			return Match{Node: n, Proximity: prox}, true
		}
	}
	return Match{}, false
}

// matchFallback selects the designated fallback node; proximity mirrors
// app-relatedness. Always succeeds.
func (m *Matcher) matchFallback(req *Request) (Match, bool) {
	if req.AppRelated {
		return Match{Node: req.Registry.Get(node.IDFallbackClient), Proximity: node.ProximityHigh}, true
	}
	return Match{Node: req.Registry.Get(node.IDFallbackLLM), Proximity: node.ProximityLow}, true
}

// =============================================================================
// HELPERS
// =============================================================================

// dedicated returns a named catalog node at high proximity, if present and
// eligible.
func (m *Matcher) dedicated(req *Request, id string) (Match, bool) {
	n := req.Registry.Get(id)
	if n == nil || !n.Eligible(req.Session) {
		return Match{}, false
	}
	return Match{Node: n, Proximity: node.ProximityHigh}, true
}

// scanKeywordNodes finds the first node in the given categories whose ID is
// contained in the query and whose conditions hold.
func scanKeywordNodes(req *Request, cats []node.Category, prox node.Proximity) (Match, bool) {
	for _, n := range req.Registry.ByCategory(cats...) {
		if !strings.Contains(req.Query, n.ID) {
			continue
		}
		if !n.Eligible(req.Session) {
			continue
		}
		return Match{Node: n, Proximity: prox}, true
	}
	return Match{}, false
}
