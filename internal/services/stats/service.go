// Package stats counts confess-button presses per submitter. Counters are
// operator-facing curiosity data, kept in their own file so the policy store
// stays small.
package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

type Entry struct {
	SubmitterID int64
	Count       uint64
}

type fileState struct {
	PressCounts map[int64]uint64 `json:"press_counts"`
}

type Service struct {
	path string

	mu     sync.RWMutex
	counts map[int64]uint64
}

func NewService(path string) (*Service, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("stats path is empty")
	}

	s := &Service{
		path:   path,
		counts: make(map[int64]uint64),
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create stats directory: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read stats file: %w", err)
	}

	var state fileState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("unmarshal stats file: %w", err)
	}
	if state.PressCounts != nil {
		s.counts = state.PressCounts
	}

	return s, nil
}

// Increment bumps a submitter's press count and persists the counters.
func (s *Service) Increment(submitterID int64) error {
	s.mu.Lock()
	s.counts[submitterID]++
	data, err := json.MarshalIndent(fileState{PressCounts: s.counts}, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write stats file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace stats file: %w", err)
	}
	return nil
}

func (s *Service) Count(submitterID int64) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counts[submitterID]
}

// Top returns up to n entries ordered by press count descending, ties by
// submitter id for stable output.
func (s *Service) Top(n int) []Entry {
	s.mu.RLock()
	entries := make([]Entry, 0, len(s.counts))
	for id, count := range s.counts {
		entries = append(entries, Entry{SubmitterID: id, Count: count})
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].SubmitterID < entries[j].SubmitterID
	})

	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// Totals reports how many submitters pressed the button and the overall
// press count.
func (s *Service) Totals() (submitters int, presses uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, count := range s.counts {
		presses += count
	}
	return len(s.counts), presses
}
