// Package store owns all mutable moderation state for the process: community
// policies, the pending-review map, and the per-submitter cooldown record.
// One reader/writer lock guards everything; persistence happens from a
// snapshot taken under the lock and written outside it.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/darktohka/confessions-bot/internal/domain/model"
)

// State is the durable policy snapshot. Per-submitter cooldown timestamps
// are deliberately excluded: they reset on restart.
type State struct {
	Destinations map[int64]model.Destination        `json:"destinations"`
	Cooldowns    map[int64]int64                    `json:"cooldowns"`
	Blacklists   map[int64][]string                 `json:"blacklists"`
	Categories   map[int64][]string                 `json:"categories"`
	Pending      map[string]model.PendingConfession `json:"pending"`
}

func emptyState() State {
	return State{
		Destinations: make(map[int64]model.Destination),
		Cooldowns:    make(map[int64]int64),
		Blacklists:   make(map[int64][]string),
		Categories:   make(map[int64][]string),
		Pending:      make(map[string]model.PendingConfession),
	}
}

type cooldownKey struct {
	community int64
	submitter int64
}

type Store struct {
	path string

	mu             sync.RWMutex
	state          State
	lastSubmission map[cooldownKey]int64
}

func New(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("store path is empty")
	}

	s := &Store{
		path:           path,
		state:          emptyState(),
		lastSubmission: make(map[cooldownKey]int64),
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	if err := s.loadFromFile(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Store) loadFromFile() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read store file: %w", err)
	}

	state := emptyState()
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("unmarshal store file: %w", err)
	}
	if state.Destinations == nil {
		state.Destinations = make(map[int64]model.Destination)
	}
	if state.Cooldowns == nil {
		state.Cooldowns = make(map[int64]int64)
	}
	if state.Blacklists == nil {
		state.Blacklists = make(map[int64][]string)
	}
	if state.Categories == nil {
		state.Categories = make(map[int64][]string)
	}
	if state.Pending == nil {
		state.Pending = make(map[string]model.PendingConfession)
	}

	s.state = state
	return nil
}

// Save persists the policy snapshot. The snapshot is marshalled under the
// read lock and written to disk after the lock is released, so a slow disk
// never stalls submissions.
func (s *Store) Save() error {
	s.mu.RLock()
	data, err := json.MarshalIndent(s.state, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal store state: %w", err)
	}

	// Temp-and-rename keeps the file whole if a save is interrupted.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}

// --- destinations ---

func (s *Store) Destination(community int64) (model.Destination, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dest, ok := s.state.Destinations[community]
	return dest, ok
}

func (s *Store) SetDestination(community int64, dest model.Destination) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Destinations[community] = dest
}

// --- cooldown policy and record ---

func (s *Store) CooldownSeconds(community int64) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	secs, ok := s.state.Cooldowns[community]
	return secs, ok
}

func (s *Store) SetCooldownSeconds(community, seconds int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Cooldowns[community] = seconds
}

func (s *Store) LastSubmission(community, submitter int64) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ts, ok := s.lastSubmission[cooldownKey{community, submitter}]
	return ts, ok
}

func (s *Store) RecordSubmission(community, submitter, timestamp int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSubmission[cooldownKey{community, submitter}] = timestamp
}

// --- blacklist ---

func (s *Store) BlacklistTerms(community int64) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	terms := s.state.Blacklists[community]
	out := make([]string, len(terms))
	copy(out, terms)
	return out
}

// AddBlacklistTerm appends a term, keeping its original casing. Returns
// false when an equal term (case-insensitive) is already present.
func (s *Store) AddBlacklistTerm(community int64, term string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	lower := strings.ToLower(term)
	for _, existing := range s.state.Blacklists[community] {
		if strings.ToLower(existing) == lower {
			return false
		}
	}
	s.state.Blacklists[community] = append(s.state.Blacklists[community], term)
	return true
}

func (s *Store) RemoveBlacklistTerm(community int64, term string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	lower := strings.ToLower(term)
	terms := s.state.Blacklists[community]
	kept := terms[:0]
	for _, existing := range terms {
		if strings.ToLower(existing) != lower {
			kept = append(kept, existing)
		}
	}
	removed := len(kept) != len(terms)
	s.state.Blacklists[community] = kept
	return removed
}

// --- categories ---

func (s *Store) CategoryNames(community int64) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := s.state.Categories[community]
	out := make([]string, len(names))
	copy(out, names)
	return out
}

func (s *Store) AddCategory(community int64, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.state.Categories[community] {
		if strings.EqualFold(existing, name) {
			return false
		}
	}
	s.state.Categories[community] = append(s.state.Categories[community], name)
	return true
}

func (s *Store) RemoveCategory(community int64, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := s.state.Categories[community]
	kept := names[:0]
	for _, existing := range names {
		if !strings.EqualFold(existing, name) {
			kept = append(kept, existing)
		}
	}
	removed := len(kept) != len(names)
	s.state.Categories[community] = kept
	return removed
}

// --- pending confessions ---

func (s *Store) PutPending(pc model.PendingConfession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Pending[pc.ID] = pc
}

func (s *Store) ListPending(community int64) []model.PendingConfession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.PendingConfession, 0)
	for _, pc := range s.state.Pending {
		if pc.CommunityID == community {
			out = append(out, pc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// DeletePendingOwned removes the entry only when it exists and belongs to
// the given community. A mismatched entry is left untouched.
func (s *Store) DeletePendingOwned(id string, community int64) (model.PendingConfession, bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pc, found := s.state.Pending[id]
	if !found {
		return model.PendingConfession{}, false, false
	}
	if pc.CommunityID != community {
		return model.PendingConfession{}, true, false
	}

	delete(s.state.Pending, id)
	return pc, true, true
}
