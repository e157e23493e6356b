package cooldown

import (
	"fmt"

	"github.com/darktohka/confessions-bot/internal/store"
)

// DefaultSeconds applies when a community has no cooldown policy set.
const DefaultSeconds int64 = 3600

// Gate rate-limits submissions per (community, submitter). The record lives
// in the shared store and resets on process restart.
type Gate struct {
	store *store.Store
}

func NewGate(st *store.Store) (*Gate, error) {
	if st == nil {
		return nil, fmt.Errorf("cooldown store is nil")
	}
	return &Gate{store: st}, nil
}

// Seconds returns the effective cooldown policy for a community.
func (g *Gate) Seconds(community int64) int64 {
	secs, ok := g.store.CooldownSeconds(community)
	if !ok {
		return DefaultSeconds
	}
	return secs
}

// Check reports whether a submitter may submit at the given time. When
// blocked, retryAfter is the positive number of seconds left to wait.
func (g *Gate) Check(community, submitter, now int64) (retryAfter int64, allowed bool) {
	secs := g.Seconds(community)
	if secs == 0 {
		return 0, true
	}

	last, ok := g.store.LastSubmission(community, submitter)
	if !ok {
		return 0, true
	}

	elapsed := now - last
	if elapsed < secs {
		return secs - elapsed, false
	}
	return 0, true
}

// Record overwrites the submitter's last-submission timestamp. Callers must
// invoke it only for accepted or queued submissions, never for blocked ones.
func (g *Gate) Record(community, submitter, now int64) {
	g.store.RecordSubmission(community, submitter, now)
}
