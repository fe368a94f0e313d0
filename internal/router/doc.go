// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package router selects a conversation node and proximity classification
// for each user message.
//
// The decision policy is an ordered list of named strategies, combined
// first-success-wins:
//
//  1. assistant_greeting  - direct greeting to the assistant by name
//  2. general_greeting    - bare greeting, three words or fewer
//  3. gratitude           - thanks
//  4. farewell            - goodbye
//  5. app_keyword_nodes   - high-proximity nodes by ID substring + conditions
//  6. capability_question - "what can you do" / "how do I use this"
//  7. low_keyword_nodes   - low-proximity nodes by ID substring + conditions
//  8. category_rescan     - condition-only scan by category prefix
//  9. fallback            - fallback_client or fallback_llm, always succeeds
//
// High-proximity matches are answered client-side from the catalog;
// low-proximity matches route to the generative backend with the node's
// content as optional context. The matcher never returns a node whose
// conditions evaluate false.
package router
