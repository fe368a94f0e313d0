// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package intent provides keyword-based intent detection with confidence
// scoring, plus the single-slot pending-intent state machine.
//
// # Key Types
//
//   - Pattern: a catalogued intent (keywords, required words, confirmation)
//   - Detector: scores free text against the catalog
//   - Detection: the result, with confidence in [0, 1]
//   - PendingIntent / State: the one outstanding confirmation or
//     slot-filling request shared across turns
//
// Pending state always pre-empts fresh classification: while a confirmation
// is outstanding, the next message is interpreted as an answer to it, not
// as a new request.
package intent
