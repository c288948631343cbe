package submissions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileStore persists the bounded submission list as a single JSON
// document on local disk, rewritten atomically on every append. With the
// retention cap enforced at write time the document stays small, so a
// full rewrite is cheaper than maintaining an append log with
// compaction.
type FileStore struct {
	mu   sync.Mutex
	path string
	cap  int
	subs []Submission // oldest first, mirrors the on-disk document
}

// NewFileStore opens (or creates on first append) the JSON document at
// path. Existing content beyond the cap is trimmed on load.
func NewFileStore(path string, cap int) (*FileStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("file store path is required")
	}
	if cap <= 0 {
		cap = DefaultRetentionCap
	}
	s := &FileStore{path: path, cap: cap}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read submissions file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	var subs []Submission
	if err := json.Unmarshal(data, &subs); err != nil {
		return fmt.Errorf("decode submissions file %s: %w", s.path, err)
	}
	if len(subs) > s.cap {
		subs = subs[len(subs)-s.cap:]
	}
	s.subs = subs
	return nil
}

// Append adds sub, trims to the cap, and rewrites the document. The
// in-memory mirror is only updated after the rewrite lands, so a failed
// write leaves both copies on the previous state.
func (s *FileStore) Append(_ context.Context, sub Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	subs := append(append([]Submission(nil), s.subs...), sub)
	if len(subs) > s.cap {
		subs = subs[len(subs)-s.cap:]
	}
	if err := s.write(subs); err != nil {
		return err
	}
	s.subs = subs
	return nil
}

// write replaces the document via a temp file and rename so readers
// never observe a partial write.
func (s *FileStore) write(subs []Submission) error {
	data, err := json.MarshalIndent(subs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode submissions: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create submissions dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".submissions-*.json")
	if err != nil {
		return fmt.Errorf("create temp submissions file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write submissions file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close submissions file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace submissions file: %w", err)
	}
	return nil
}

// Recent returns up to limit submissions, newest first.
func (s *FileStore) Recent(_ context.Context, limit int) ([]Submission, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit > len(s.subs) {
		limit = len(s.subs)
	}
	out := make([]Submission, 0, limit)
	for i := len(s.subs) - 1; i >= len(s.subs)-limit; i-- {
		out = append(out, s.subs[i])
	}
	return out, nil
}

// Close is a no-op; every append already leaves a complete document on
// disk.
func (s *FileStore) Close() error { return nil }
