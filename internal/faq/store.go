// Package faq loads the human-authored question/answer list injected into
// support and conversational prompts, with live reload on file change.
package faq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Entry is one FAQ item. Topic is optional and used by the local responder
// for keyword scoring.
type Entry struct {
	Topic    string `json:"topic,omitempty"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Load reads and parses the FAQ file. Callers degrade to an empty list on
// error rather than failing startup.
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read faq file: %w", err)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse faq file: %w", err)
	}
	return entries, nil
}

// FormatForPrompt renders entries as Q:/A: blocks for prompt injection.
func FormatForPrompt(entries []Entry) string {
	blocks := make([]string, 0, len(entries))
	for _, e := range entries {
		blocks = append(blocks, fmt.Sprintf("Q: %s\nA: %s", e.Question, e.Answer))
	}
	return strings.Join(blocks, "\n\n")
}

// Store holds the current FAQ snapshot and refreshes it when the backing
// file changes. A failed reload keeps the previous snapshot.
type Store struct {
	path string

	mu      sync.RWMutex
	entries []Entry
	prompt  string
}

// NewStore builds a store around path and attempts an initial load. A load
// error leaves the store empty and is returned for the caller to log.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path}
	err := s.Reload()
	return s, err
}

// Entries returns the current snapshot.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries
}

// PromptText returns the current snapshot pre-rendered for prompts.
func (s *Store) PromptText() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prompt
}

// Reload re-reads the file and swaps the snapshot on success.
func (s *Store) Reload() error {
	entries, err := Load(s.path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.entries = entries
	s.prompt = FormatForPrompt(entries)
	s.mu.Unlock()
	return nil
}

// Watch blocks until ctx is done, reloading the store whenever the FAQ file
// is written or recreated. Editors that replace the file atomically emit
// create events, so the watch is on the parent directory.
func (s *Store) Watch(ctx context.Context, log *slog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create faq watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	target := filepath.Clean(s.path)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if err := s.Reload(); err != nil {
				log.Warn("faq reload failed, keeping previous entries", "error", err)
				continue
			}
			log.Info("faq reloaded", "entries", len(s.Entries()))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("faq watcher error", "error", err)
		}
	}
}
