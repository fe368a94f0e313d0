// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestAddAndOrder(t *testing.T) {
	tr := New("sess-1")

	tr.AddUser("hello flux")
	tr.AddAssistant("Good morning! Welcome to the grid.", true, 400*time.Millisecond)

	if tr.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", tr.Len())
	}
	if tr.Messages[0].Role != RoleUser || tr.Messages[1].Role != RoleAssistant {
		t.Error("messages out of order")
	}
	if !tr.Messages[1].IsClientOnly {
		t.Error("assistant message should be client-only")
	}
	if tr.Messages[1].LatencyMs != 400 {
		t.Errorf("LatencyMs = %d, want 400", tr.Messages[1].LatencyMs)
	}
	if tr.Messages[0].ID == tr.Messages[1].ID {
		t.Error("message IDs must be unique")
	}
}

func TestTitleFromFirstUserMessage(t *testing.T) {
	tr := New("sess-1")
	tr.AddUser("how do I create a project?")
	tr.AddUser("never mind")

	if tr.Title != "how do I create a project?" {
		t.Errorf("Title = %q", tr.Title)
	}
}

func TestLastUser(t *testing.T) {
	tr := New("sess-1")
	if tr.LastUser() != nil {
		t.Error("LastUser on empty transcript should be nil")
	}

	tr.AddUser("first")
	tr.AddAssistant("ok", true, 0)
	tr.AddUser("second")

	if got := tr.LastUser().Content; got != "second" {
		t.Errorf("LastUser = %q, want second", got)
	}
}

func TestRecentContext(t *testing.T) {
	tr := New("sess-1")
	tr.AddUser("hello")
	tr.AddAssistant("hi there", true, 0)
	tr.AddUser("show me my dashboard")

	got := tr.RecentContext(2)
	want := "assistant: hi there\nuser: show me my dashboard"
	if got != want {
		t.Errorf("RecentContext(2) = %q, want %q", got, want)
	}

	if tr.RecentContext(0) != "" {
		t.Error("RecentContext(0) should be empty")
	}
	// Window larger than history returns everything.
	if !strings.HasPrefix(tr.RecentContext(10), "user: hello") {
		t.Errorf("RecentContext(10) = %q", tr.RecentContext(10))
	}
}

func TestPriorContextExcludesTrailingUserMessage(t *testing.T) {
	tr := New("sess-1")
	tr.AddUser("hello")
	tr.AddAssistant("hi there", true, 0)
	tr.AddUser("show me my dashboard")

	got := tr.PriorContext(4)
	want := "user: hello\nassistant: hi there"
	if got != want {
		t.Errorf("PriorContext(4) = %q, want %q", got, want)
	}

	// A trailing assistant message stays in the window.
	tr.AddAssistant("here it is", false, 0)
	if !strings.HasSuffix(tr.PriorContext(4), "assistant: here it is") {
		t.Errorf("PriorContext(4) = %q", tr.PriorContext(4))
	}

	// A lone user message yields nothing to prime with.
	fresh := New("sess-2")
	fresh.AddUser("first question")
	if fresh.PriorContext(4) != "" {
		t.Errorf("PriorContext(4) = %q, want empty", fresh.PriorContext(4))
	}
}

func TestPruneKeepsRecent(t *testing.T) {
	tr := New("sess-1")
	for i := 0; i < MaxMessages+25; i++ {
		tr.AddUser(fmt.Sprintf("message %d", i))
	}

	if tr.Len() != MaxMessages {
		t.Fatalf("Len() = %d, want %d", tr.Len(), MaxMessages)
	}
	if got := tr.Messages[0].Content; got != "message 25" {
		t.Errorf("oldest retained = %q, want message 25", got)
	}
	if got := tr.Last().Content; got != fmt.Sprintf("message %d", MaxMessages+24) {
		t.Errorf("newest = %q", got)
	}
}

func TestClear(t *testing.T) {
	tr := New("sess-1")
	tr.AddUser("hello")
	tr.Clear()

	if !tr.IsEmpty() {
		t.Error("transcript should be empty after Clear")
	}
	if tr.Title != "" {
		t.Error("title should reset on Clear")
	}
}
