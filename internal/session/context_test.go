// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"testing"
	"time"
)

func TestTimeOfDayAt(t *testing.T) {
	tests := []struct {
		name     string
		hour     int
		expected TimeOfDay
	}{
		{"midnight", 0, Morning},
		{"late_morning", 11, Morning},
		{"noon", 12, Afternoon},
		{"late_afternoon", 17, Afternoon},
		{"evening", 18, Evening},
		{"night", 23, Evening},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := time.Date(2025, 6, 1, tt.hour, 30, 0, 0, time.UTC)
			if got := TimeOfDayAt(now); got != tt.expected {
				t.Errorf("TimeOfDayAt(hour=%d) = %v, want %v", tt.hour, got, tt.expected)
			}
		})
	}
}

func TestNewContextDefaults(t *testing.T) {
	ctx := NewContext("rae")

	if ctx.UserName != "rae" {
		t.Errorf("UserName = %q, want %q", ctx.UserName, "rae")
	}
	if ctx.InteractionCount != 0 {
		t.Errorf("InteractionCount = %d, want 0", ctx.InteractionCount)
	}
	if len(ctx.LastTopics) != 0 {
		t.Errorf("LastTopics should start empty, got %v", ctx.LastTopics)
	}
	if ctx.DeviceType != DeviceUnknown {
		t.Errorf("DeviceType = %v, want DeviceUnknown", ctx.DeviceType)
	}
	if ctx.LastProjectName != "" {
		t.Errorf("LastProjectName should start empty, got %q", ctx.LastProjectName)
	}
}

func TestRecordTopic(t *testing.T) {
	ctx := NewContext("rae")

	ctx.RecordTopic("projects")
	ctx.RecordTopic("billing")
	if len(ctx.LastTopics) != 2 || ctx.LastTopics[0] != "billing" {
		t.Errorf("most recent topic should be first, got %v", ctx.LastTopics)
	}

	// Re-recording moves to front without duplicating
	ctx.RecordTopic("projects")
	if len(ctx.LastTopics) != 2 || ctx.LastTopics[0] != "projects" {
		t.Errorf("re-recorded topic should move to front, got %v", ctx.LastTopics)
	}

	// Cap at MaxTopics
	for _, topic := range []string{"a", "b", "c", "d", "e", "f"} {
		ctx.RecordTopic(topic)
	}
	if len(ctx.LastTopics) != MaxTopics {
		t.Errorf("LastTopics length = %d, want %d", len(ctx.LastTopics), MaxTopics)
	}
	if ctx.LastTopics[0] != "f" {
		t.Errorf("newest topic should be first, got %v", ctx.LastTopics)
	}

	// Blank topics are ignored
	before := len(ctx.LastTopics)
	ctx.RecordTopic("   ")
	if len(ctx.LastTopics) != before {
		t.Error("blank topic should be ignored")
	}
}

func TestAddLanguage(t *testing.T) {
	ctx := NewContext("rae")

	ctx.AddLanguage("EN-us")
	if len(ctx.PreferredLanguages) != 1 || ctx.PreferredLanguages[0] != "en-US" {
		t.Errorf("expected normalized tag en-US, got %v", ctx.PreferredLanguages)
	}

	// Duplicate after normalization is not added twice
	ctx.AddLanguage("en-US")
	if len(ctx.PreferredLanguages) != 1 {
		t.Errorf("duplicate language should not be added, got %v", ctx.PreferredLanguages)
	}

	// Garbage tags are dropped
	ctx.AddLanguage("!!not-a-tag!!")
	if len(ctx.PreferredLanguages) != 1 {
		t.Errorf("invalid tag should be ignored, got %v", ctx.PreferredLanguages)
	}
}

func TestContextField(t *testing.T) {
	ctx := NewContext("rae")
	ctx.RecordInteraction()
	ctx.RecordInteraction()
	ctx.RecordTopic("projects")
	ctx.LastProjectName = "Atlas"

	tests := []struct {
		key      string
		expected any
	}{
		{"userName", "rae"},
		{"interactionCount", 2},
		{"lastProjectName", "Atlas"},
		{"deviceType", "unknown"},
	}
	for _, tt := range tests {
		got, ok := ctx.Field(tt.key)
		if !ok {
			t.Errorf("Field(%q) not found", tt.key)
			continue
		}
		switch want := tt.expected.(type) {
		case string:
			if got != want {
				t.Errorf("Field(%q) = %v, want %v", tt.key, got, want)
			}
		case int:
			if got != want {
				t.Errorf("Field(%q) = %v, want %v", tt.key, got, want)
			}
		}
	}

	if topics, ok := ctx.Field("lastTopics"); !ok {
		t.Error("Field(lastTopics) not found")
	} else if list, isList := topics.([]string); !isList || len(list) != 1 {
		t.Errorf("Field(lastTopics) = %v, want one-element list", topics)
	}

	if _, ok := ctx.Field("noSuchField"); ok {
		t.Error("unknown field key should return ok=false")
	}
}

func TestManagerLifecycle(t *testing.T) {
	m := NewManager("rae")

	if m.SessionID() == "" {
		t.Error("SessionID should not be empty")
	}
	if m.Context() == nil {
		t.Fatal("Context should not be nil")
	}
	if m.Context().UserName != "rae" {
		t.Errorf("Context.UserName = %q, want %q", m.Context().UserName, "rae")
	}

	m.Touch()
	if m.IdleTime() > time.Second {
		t.Errorf("IdleTime after Touch = %v, should be near zero", m.IdleTime())
	}
	if m.Duration() < 0 {
		t.Errorf("Duration should be non-negative, got %v", m.Duration())
	}
}
