// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Manager tracks the lifecycle of one interactive session: identity, start
// time, and last activity. The routing engine itself is single-threaded per
// session, but the manager may be polled from a UI goroutine, so it locks.
type Manager struct {
	mu sync.Mutex

	sessionID    string
	startTime    time.Time
	lastActivity time.Time

	ctx *Context
}

// NewManager starts a new session for the given user and returns its manager.
func NewManager(userName string) *Manager {
	now := time.Now()
	return &Manager{
		sessionID:    uuid.NewString(),
		startTime:    now,
		lastActivity: now,
		ctx:          NewContext(userName),
	}
}

// SessionID returns the unique ID of this session.
func (m *Manager) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionID
}

// Context returns the session context. The caller owns single-threaded
// access to it for the duration of a turn.
func (m *Manager) Context() *Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ctx
}

// StartTime returns when the session started.
func (m *Manager) StartTime() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startTime
}

// Duration returns how long the session has been active.
func (m *Manager) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return time.Since(m.startTime)
}

// IdleTime returns how long since the last recorded activity.
func (m *Manager) IdleTime() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return time.Since(m.lastActivity)
}

// Touch records user activity, resetting the idle clock.
func (m *Manager) Touch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastActivity = time.Now()
}
