// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds per-session mutable state for the routing engine.
//
// # Key Types
//
//   - Context: the facts every classifier and node condition can read
//     (user name, time of day, interaction count, recent topics, device)
//   - Manager: session identity and activity tracking
//
// A session is single-threaded by construction: turns are sent and awaited
// sequentially by the caller, so Context is accessed without locking. All
// state here is scoped to one session and discarded when the session ends;
// nothing is persisted.
package session
