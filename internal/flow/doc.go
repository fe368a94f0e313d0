// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package flow contains the side-effecting conversation handlers.
//
// A handler consumes a message or action click when its flow owns the
// conversation, calls external services, and produces a Result; nil means
// "not applicable" and the orchestrator falls through to classification.
// An outstanding flow (e.g. waiting for a project name) fully owns the
// conversation until it resolves or is denied.
//
// External services are consumed through small interfaces (ProjectService,
// PostGenerator); every call is wrapped so a failure degrades to a
// plain-language apology instead of propagating, with flow state reset so
// the user can simply retry.
package flow
