package faq

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFAQ(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "faq.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeFAQ(t, t.TempDir(), `[
		{"topic": "playback", "question": "Video won't play?", "answer": "Try another source."},
		{"question": "How do I get subtitles?", "answer": "Use the captions menu."}
	]`)

	entries, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Topic != "playback" || entries[0].Question != "Video won't play?" {
		t.Errorf("first entry = %+v", entries[0])
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("Load on missing file returned nil error")
	}
}

func TestLoadBadJSON(t *testing.T) {
	path := writeFAQ(t, t.TempDir(), `{"not": "a list"}`)
	if _, err := Load(path); err == nil {
		t.Error("Load on malformed file returned nil error")
	}
}

func TestFormatForPrompt(t *testing.T) {
	entries := []Entry{
		{Question: "Q1", Answer: "A1"},
		{Question: "Q2", Answer: "A2"},
	}
	want := "Q: Q1\nA: A1\n\nQ: Q2\nA: A2"
	if got := FormatForPrompt(entries); got != want {
		t.Errorf("FormatForPrompt = %q, want %q", got, want)
	}
	if got := FormatForPrompt(nil); got != "" {
		t.Errorf("FormatForPrompt(nil) = %q, want empty", got)
	}
}

func TestStoreReloadKeepsSnapshotOnError(t *testing.T) {
	dir := t.TempDir()
	path := writeFAQ(t, dir, `[{"question": "Q", "answer": "A"}]`)

	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if len(s.Entries()) != 1 {
		t.Fatalf("initial entries = %d, want 1", len(s.Entries()))
	}

	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := s.Reload(); err == nil {
		t.Error("Reload on corrupt file returned nil error")
	}
	if len(s.Entries()) != 1 {
		t.Error("failed reload replaced the previous snapshot")
	}
	if s.PromptText() != "Q: Q\nA: A" {
		t.Errorf("PromptText = %q", s.PromptText())
	}
}
