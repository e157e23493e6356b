package review

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/darktohka/confessions-bot/internal/domain/model"
	"github.com/darktohka/confessions-bot/internal/store"
)

var (
	ErrPendingNotFound = errors.New("pending confession not found")
	ErrWrongCommunity  = errors.New("pending confession belongs to a different community")
)

// Queue holds flagged confessions until a moderator approves or rejects
// them. Resolution removes the entry, so a resolved id is simply absent.
type Queue struct {
	store *store.Store
}

func NewQueue(st *store.Store) (*Queue, error) {
	if st == nil {
		return nil, fmt.Errorf("review store is nil")
	}
	return &Queue{store: st}, nil
}

// Enqueue stores a flagged submission and returns its generated id.
func (q *Queue) Enqueue(community int64, authorTag, content, categories string, flaggedTerms []string, now int64) string {
	pc := model.PendingConfession{
		ID:           uuid.NewString(),
		CommunityID:  community,
		AuthorTag:    authorTag,
		Content:      content,
		Categories:   categories,
		FlaggedTerms: flaggedTerms,
		CreatedAt:    now,
	}
	q.store.PutPending(pc)
	return pc.ID
}

// List returns a community's pending confessions, oldest first.
func (q *Queue) List(community int64) []model.PendingConfession {
	return q.store.ListPending(community)
}

// Approve removes and returns the entry. A foreign community's entry is
// left untouched so one community's moderators cannot drain another's queue.
func (q *Queue) Approve(id string, community int64) (model.PendingConfession, error) {
	pc, found, owned := q.store.DeletePendingOwned(id, community)
	if !found {
		return model.PendingConfession{}, ErrPendingNotFound
	}
	if !owned {
		return model.PendingConfession{}, ErrWrongCommunity
	}
	return pc, nil
}

// Reject discards the entry under the same ownership rules as Approve.
func (q *Queue) Reject(id string, community int64) error {
	_, found, owned := q.store.DeletePendingOwned(id, community)
	if !found {
		return ErrPendingNotFound
	}
	if !owned {
		return ErrWrongCommunity
	}
	return nil
}
