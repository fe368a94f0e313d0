// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package match provides stateless text classifiers for the routing engine.
//
// All matchers are pure functions over normalized (lower-cased, trimmed)
// text. Absence of a match is a normal false, never an error. Keyword
// matching is deliberately simple substring/prefix work; at this data scale
// a linear scan over short phrase lists beats anything fancier.
package match

import (
	"strings"

	"github.com/jeranaias/flux-engine/internal/util"
)

// =============================================================================
// PHRASE LISTS
// =============================================================================

// assistantGreetings are direct greetings addressed to the assistant by name.
var assistantGreetings = []string{
	"hello flux",
	"hi flux",
	"hey flux",
	"yo flux",
	"greetings flux",
}

// generalGreetings are bare greeting words. Only short messages qualify
// (see IsGeneralGreeting) to avoid false positives on longer sentences
// that merely contain a greeting word.
var generalGreetings = []string{
	"hello",
	"hi",
	"hey",
	"yo",
	"howdy",
	"good morning",
	"good afternoon",
	"good evening",
	"what's up",
	"whats up",
	"sup",
}

// gratitudePhrases indicate thanks.
var gratitudePhrases = []string{
	"thank",
	"thanks",
	"thx",
	"appreciate",
	"much obliged",
}

// farewellPhrases indicate the user is leaving.
var farewellPhrases = []string{
	"bye",
	"goodbye",
	"see you",
	"see ya",
	"later",
	"farewell",
	"good night",
	"gotta go",
}

// appQuestionPhrases indicate a question about the app itself.
var appQuestionPhrases = []string{
	"the grid",
	"this app",
	"this application",
	"the app",
	"this tool",
	"this platform",
	"can you",
	"what can you do",
	"how do i use",
	"how does this work",
}

// confirmationPhrases are yes-style answers. Matched exactly or as a
// "phrase + trailing space" prefix, never as an arbitrary substring.
var confirmationPhrases = []string{
	"yes",
	"yeah",
	"yep",
	"yup",
	"sure",
	"ok",
	"okay",
	"absolutely",
	"definitely",
	"of course",
	"go ahead",
	"do it",
	"please do",
	"sounds good",
	"let's do it",
	"lets do it",
}

// denialPhrases are no-style answers. Matched exactly or as a
// "phrase + trailing space" prefix so "nothing" does not match "no".
var denialPhrases = []string{
	"no",
	"nope",
	"nah",
	"no thanks",
	"not now",
	"never mind",
	"nevermind",
	"cancel",
	"stop",
	"don't",
	"dont",
	"forget it",
}

// =============================================================================
// MATCHERS
// =============================================================================

// IsGreeting reports whether the message is a direct greeting to the
// assistant by name ("hello flux" and friends).
func IsGreeting(text string) bool {
	q := util.Normalize(text)
	for _, phrase := range assistantGreetings {
		if strings.Contains(q, phrase) {
			return true
		}
	}
	return false
}

// IsGeneralGreeting reports whether the message is a bare greeting.
// Requires the message be at most three words so longer sentences that
// merely contain a greeting word do not match. The turn number is accepted
// for parity with the node matcher call site; greeting detection itself
// does not depend on it.
func IsGeneralGreeting(text string, turn int) bool {
	q := util.Normalize(text)
	if util.WordCount(q) > 3 {
		return false
	}
	for _, phrase := range generalGreetings {
		if q == phrase || strings.HasPrefix(q, phrase+" ") || strings.HasSuffix(q, " "+phrase) {
			return true
		}
	}
	return false
}

// IsGratitude reports whether the message expresses thanks.
func IsGratitude(text string) bool {
	return util.ContainsAny(util.Normalize(text), gratitudePhrases)
}

// IsFarewell reports whether the message is a goodbye.
func IsFarewell(text string) bool {
	return util.ContainsAny(util.Normalize(text), farewellPhrases)
}

// IsAppQuestion reports whether the message asks about the app itself.
func IsAppQuestion(text string) bool {
	return util.ContainsAny(util.Normalize(text), appQuestionPhrases)
}

// IsConfirmation reports whether the message is a yes-style answer.
// Matches exact phrases or "phrase + trailing space" prefixes only, so a
// longer sentence that merely contains "ok" somewhere does not confirm.
func IsConfirmation(text string) bool {
	return matchesPhrasePrefix(text, confirmationPhrases)
}

// IsDenial reports whether the message is a no-style answer.
// Same prefix discipline as IsConfirmation: "nothing" must not match "no".
func IsDenial(text string) bool {
	return matchesPhrasePrefix(text, denialPhrases)
}

// matchesPhrasePrefix implements exact-match or "phrase + trailing space"
// prefix matching against a phrase list.
func matchesPhrasePrefix(text string, phrases []string) bool {
	q := util.Normalize(text)
	for _, phrase := range phrases {
		if q == phrase || strings.HasPrefix(q, phrase+" ") {
			return true
		}
	}
	return false
}
