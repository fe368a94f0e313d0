// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import "testing"

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxRunes int
		expected string
	}{
		{"no_truncation_needed", "hello", 10, "hello"},
		{"exact_length", "hello", 5, "hello"},
		{"truncated_with_ellipsis", "hello world", 8, "hello..."},
		{"very_short_max", "hello", 2, "he"},
		{"zero_max", "hello", 0, ""},
		{"negative_max", "hello", -1, ""},
		{"multibyte_safe", "héllo wörld", 8, "héllo..."},
		{"empty_string", "", 5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateRunes(tt.input, tt.maxRunes)
			if got != tt.expected {
				t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tt.input, tt.maxRunes, got, tt.expected)
			}
		})
	}
}

func TestTruncateForLog(t *testing.T) {
	got := TruncateForLog("line one\nline two", 50)
	if got != "line one line two" {
		t.Errorf("TruncateForLog should collapse newlines, got %q", got)
	}
	got = TruncateForLog("a very long message that should be cut", 10)
	if got != "a very ..." {
		t.Errorf("TruncateForLog = %q, want %q", got, "a very ...")
	}
}

func TestStringWidth(t *testing.T) {
	if w := StringWidth("abc"); w != 3 {
		t.Errorf("StringWidth(abc) = %d, want 3", w)
	}
	// CJK characters are double-width
	if w := StringWidth("日本"); w != 4 {
		t.Errorf("StringWidth(日本) = %d, want 4", w)
	}
}

func TestWordCount(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"", 0},
		{"one", 1},
		{"one two three", 3},
		{"  padded   words  ", 2},
	}
	for _, tt := range tests {
		if got := WordCount(tt.input); got != tt.expected {
			t.Errorf("WordCount(%q) = %d, want %d", tt.input, got, tt.expected)
		}
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  Hello Flux  "); got != "hello flux" {
		t.Errorf("Normalize = %q, want %q", got, "hello flux")
	}
}

func TestContainsAny(t *testing.T) {
	if !ContainsAny("create a new project", []string{"project", "task"}) {
		t.Error("ContainsAny should find 'project'")
	}
	if ContainsAny("hello there", []string{"project", "task"}) {
		t.Error("ContainsAny should not match")
	}
	if ContainsAny("anything", nil) {
		t.Error("ContainsAny with empty list should be false")
	}
}
