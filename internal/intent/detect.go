// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package intent

import (
	"sort"
	"strings"

	"github.com/jeranaias/flux-engine/internal/match"
	"github.com/jeranaias/flux-engine/internal/node"
	"github.com/jeranaias/flux-engine/internal/util"
)

// =============================================================================
// DETECTION RESULT
// =============================================================================

// Detection is the outcome of classifying one message.
// A zero Detection (empty Intent, zero Confidence) means no intent matched.
type Detection struct {
	// Intent is the matched intent name, empty for no match.
	Intent string
	// Confidence is the match score in [0, 1].
	Confidence float64
	// ConfirmationMessage is the pattern's confirmation question, if any.
	ConfirmationMessage string
	// Actions are the pattern's confirmation buttons, if any.
	Actions []node.Action
}

// Matched reports whether any intent was detected.
func (d Detection) Matched() bool {
	return d.Intent != ""
}

// =============================================================================
// DETECTOR
// =============================================================================

// confidenceDenomCap caps the confidence denominator so patterns with many
// keywords don't get artificially low scores. Short, high-specificity
// patterns stay competitive against long generic ones.
const confidenceDenomCap = 5

// Detector classifies free text against the intent catalog, honoring any
// pending confirmation first.
type Detector struct {
	patterns map[string]Pattern
	// names holds the catalog keys sorted, so scanning order (and thus
	// tie-breaking) is deterministic.
	names []string
}

// NewDetector builds a detector over the given catalog.
func NewDetector(patterns map[string]Pattern) *Detector {
	names := make([]string, 0, len(patterns))
	for name := range patterns {
		names = append(names, name)
	}
	sort.Strings(names)
	return &Detector{patterns: patterns, names: names}
}

// Pattern returns the catalogued pattern for an intent name.
func (d *Detector) Pattern(name string) (Pattern, bool) {
	p, ok := d.patterns[name]
	return p, ok
}

// Detect classifies a message. Pending state always pre-empts fresh
// classification:
//
//  1. pending + confirmation (or a pend flagged IsConfirmation, which
//     captures any free text) returns the pending intent at confidence 1.0;
//  2. pending + denial returns the synthetic denial intent at 1.0;
//  3. otherwise the best catalog pattern wins, scored as
//     matchCount / min(len(keywords), 5);
//  4. no qualifying pattern returns the zero Detection.
//
// Deterministic: identical (message, pending) inputs produce identical
// results.
func (d *Detector) Detect(message string, pending *PendingIntent) Detection {
	if pending != nil {
		if pending.IsConfirmation || match.IsConfirmation(message) {
			return Detection{
				Intent:              pending.Intent,
				Confidence:          1.0,
				ConfirmationMessage: pending.ConfirmationMessage,
				Actions:             pending.Actions,
			}
		}
		if match.IsDenial(message) {
			return Detection{Intent: IntentDenial, Confidence: 1.0}
		}
	}

	q := util.Normalize(message)
	tokens := tokenSet(q)

	var best Detection
	for _, name := range d.names {
		p := d.patterns[name]

		if !hasAllTokens(tokens, p.RequiredWords) {
			continue
		}

		matched := 0
		for _, kw := range p.Keywords {
			if tokens[kw] || strings.Contains(q, kw) {
				matched++
			}
		}
		if matched < p.MinMatchCount || matched == 0 {
			continue
		}

		denom := len(p.Keywords)
		if denom > confidenceDenomCap {
			denom = confidenceDenomCap
		}
		confidence := float64(matched) / float64(denom)
		if confidence > 1.0 {
			confidence = 1.0
		}

		if confidence > best.Confidence {
			best = Detection{
				Intent:              name,
				Confidence:          confidence,
				ConfirmationMessage: p.ConfirmationMessage,
				Actions:             p.Actions,
			}
		}
	}
	return best
}

// tokenSet splits normalized text into a token membership set.
func tokenSet(q string) map[string]bool {
	fields := strings.Fields(q)
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[strings.Trim(f, ".,!?;:'\"")] = true
	}
	return set
}

// hasAllTokens reports whether every required word appears as a token.
func hasAllTokens(tokens map[string]bool, required []string) bool {
	for _, w := range required {
		if !tokens[w] {
			return false
		}
	}
	return true
}
