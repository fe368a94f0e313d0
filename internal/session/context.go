// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// =============================================================================
// TIME OF DAY
// =============================================================================

// TimeOfDay is the coarse part of day a session is running in.
// Used by templated node content for time-aware greetings.
type TimeOfDay int

const (
	// Morning covers 00:00 to 11:59.
	Morning TimeOfDay = iota
	// Afternoon covers 12:00 to 17:59.
	Afternoon
	// Evening covers 18:00 to 23:59.
	Evening
)

// String returns the human-readable name of the time of day.
func (t TimeOfDay) String() string {
	switch t {
	case Morning:
		return "morning"
	case Afternoon:
		return "afternoon"
	case Evening:
		return "evening"
	default:
		return fmt.Sprintf("TimeOfDay(%d)", t)
	}
}

// TimeOfDayAt returns the time of day for the given clock time.
func TimeOfDayAt(now time.Time) TimeOfDay {
	switch h := now.Hour(); {
	case h < 12:
		return Morning
	case h < 18:
		return Afternoon
	default:
		return Evening
	}
}

// =============================================================================
// DEVICE TYPE
// =============================================================================

// DeviceType is the kind of device the session originates from.
type DeviceType int

const (
	// DeviceUnknown is used when the device cannot be determined.
	DeviceUnknown DeviceType = iota
	// DeviceMobile represents phones and tablets.
	DeviceMobile
	// DeviceDesktop represents desktop and laptop browsers.
	DeviceDesktop
)

// String returns the human-readable name of the device type.
func (d DeviceType) String() string {
	switch d {
	case DeviceMobile:
		return "mobile"
	case DeviceDesktop:
		return "desktop"
	default:
		return "unknown"
	}
}

// =============================================================================
// SESSION CONTEXT
// =============================================================================

// MaxTopics caps how many recent topics are retained, most recent first.
const MaxTopics = 5

// Context holds the mutable per-session facts the routing engine reads.
//
// Ownership: exclusively owned by one session. All components read it; only
// the orchestrator (topic extraction, interaction count) and the side-effect
// handlers (LastProjectName) write it. A session is single-threaded by
// construction, so access is unlocked.
type Context struct {
	// UserName is the display name used in templated responses.
	UserName string

	// TimeOfDay is set at session start from the local clock.
	TimeOfDay TimeOfDay

	// InteractionCount is the number of user turns processed so far.
	InteractionCount int

	// LastTopics holds recently discussed topics, most recent first,
	// capped at MaxTopics.
	LastTopics []string

	// PreferredLanguages holds normalized BCP 47 language tags.
	PreferredLanguages []string

	// DeviceType is the originating device kind.
	DeviceType DeviceType

	// StartTime is when the session began. SessionDuration derives from it.
	StartTime time.Time

	// LastProjectName is the name of the most recently created project,
	// empty until the project flow creates one.
	LastProjectName string
}

// NewContext creates a session context with defaults for the given user.
func NewContext(userName string) *Context {
	now := time.Now()
	return &Context{
		UserName:   userName,
		TimeOfDay:  TimeOfDayAt(now),
		DeviceType: DeviceUnknown,
		StartTime:  now,
	}
}

// SessionDuration returns how long the session has been running.
func (c *Context) SessionDuration() time.Duration {
	if c.StartTime.IsZero() {
		return 0
	}
	return time.Since(c.StartTime)
}

// RecordInteraction increments the interaction counter.
// Called by the orchestrator once per user turn.
func (c *Context) RecordInteraction() {
	c.InteractionCount++
}

// RecordTopic pushes a topic to the front of LastTopics.
// A topic already present is moved to the front rather than duplicated.
func (c *Context) RecordTopic(topic string) {
	topic = strings.ToLower(strings.TrimSpace(topic))
	if topic == "" {
		return
	}
	out := make([]string, 0, MaxTopics)
	out = append(out, topic)
	for _, t := range c.LastTopics {
		if t == topic {
			continue
		}
		out = append(out, t)
		if len(out) == MaxTopics {
			break
		}
	}
	c.LastTopics = out
}

// AddLanguage records a preferred language, normalizing the tag
// (e.g. "EN-us" becomes "en-US"). Unparseable tags are ignored.
func (c *Context) AddLanguage(tag string) {
	parsed, err := language.Parse(tag)
	if err != nil {
		return
	}
	normalized := parsed.String()
	for _, l := range c.PreferredLanguages {
		if l == normalized {
			return
		}
	}
	c.PreferredLanguages = append(c.PreferredLanguages, normalized)
}

// =============================================================================
// FIELD ACCESS
// =============================================================================

// Field returns the value of a named context field for condition evaluation.
// Field keys match the wire names used by the node catalog. The second
// return is false for unknown keys.
func (c *Context) Field(key string) (any, bool) {
	switch key {
	case "userName":
		return c.UserName, true
	case "timeOfDay":
		return c.TimeOfDay.String(), true
	case "interactionCount":
		return c.InteractionCount, true
	case "lastTopics":
		return c.LastTopics, true
	case "preferredLanguages":
		return c.PreferredLanguages, true
	case "deviceType":
		return c.DeviceType.String(), true
	case "sessionDurationMs":
		return int(c.SessionDuration() / time.Millisecond), true
	case "lastProjectName":
		return c.LastProjectName, true
	default:
		return nil, false
	}
}
