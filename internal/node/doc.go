// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package node defines the conversation node catalog.
//
// A Node binds response content to a proximity category and a set of
// eligibility conditions over the session context. Content is a tagged
// union: Literal fixed text or a Templated function of the session,
// resolved by one Render call either way.
//
// The catalog is static: DefaultRegistry builds it at process start and
// nothing mutates it afterwards. Node IDs are unique within a registry
// (NewRegistry enforces this) and for keyword nodes the ID doubles as the
// text the matcher looks for in the message.
package node
