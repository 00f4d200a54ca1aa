// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAtomicWriteFile_Basic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.json")
	data := []byte(`{"key": "value"}`)

	if err := AtomicWriteFile(path, data, 0644); err != nil {
		t.Fatalf("AtomicWriteFile: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(data) {
		t.Errorf("got %q, want %q", got, data)
	}
}

func TestAtomicWriteFile_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "test.txt")

	if err := AtomicWriteFile(path, []byte("data"), 0644); err != nil {
		t.Fatalf("AtomicWriteFile: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("file not created: %v", err)
	}
}

func TestAtomicWriteFile_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.txt")

	if err := AtomicWriteFile(path, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := AtomicWriteFile(path, []byte("new"), 0644); err != nil {
		t.Fatal(err)
	}

	got, _ := os.ReadFile(path)
	if string(got) != "new" {
		t.Errorf("got %q, want %q", got, "new")
	}
}

func TestAtomicWriteFile_NoTempLeftover(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.txt")

	if err := AtomicWriteFile(path, []byte("data"), 0644); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the target file, found %d entries", len(entries))
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in       string
		maxRunes int
		want     string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"hello", 5, "hello"},
		{"hello", 2, "he"},
		{"hello", 0, ""},
		{"héllo wörld", 8, "héllo..."},
		{"日本語のテキスト", 5, "日本..."},
	}
	for _, tt := range tests {
		if got := TruncateRunes(tt.in, tt.maxRunes); got != tt.want {
			t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tt.in, tt.maxRunes, got, tt.want)
		}
	}
}

func TestTruncateRunesNoEllipsis(t *testing.T) {
	if got := TruncateRunesNoEllipsis("hello world", 5); got != "hello" {
		t.Errorf("got %q", got)
	}
	if got := TruncateRunesNoEllipsis("日本語", 2); got != "日本" {
		t.Errorf("got %q", got)
	}
	if got := TruncateRunesNoEllipsis("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
}

func TestTruncateWidth(t *testing.T) {
	// CJK characters are 2 columns wide.
	if got := TruncateWidth("日本語テキスト", 20); got != "日本語テキスト" {
		t.Errorf("got %q, want unchanged", got)
	}
	got := TruncateWidth("日本語テキスト", 7)
	if StringWidth(got) > 7 {
		t.Errorf("TruncateWidth result %q is %d columns, want <= 7", got, StringWidth(got))
	}
	if got := TruncateWidth("hello", 0); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestStringWidth(t *testing.T) {
	if got := StringWidth("hello"); got != 5 {
		t.Errorf("StringWidth(hello) = %d, want 5", got)
	}
	if got := StringWidth("日本"); got != 4 {
		t.Errorf("StringWidth(日本) = %d, want 4", got)
	}
}

func TestRuneLen(t *testing.T) {
	if got := RuneLen("héllo"); got != 5 {
		t.Errorf("RuneLen = %d, want 5", got)
	}
	if got := RuneLen("日本語"); got != 3 {
		t.Errorf("RuneLen = %d, want 3", got)
	}
}
