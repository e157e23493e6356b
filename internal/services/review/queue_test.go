package review

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/darktohka/confessions-bot/internal/store"
)

func newTestQueue(t *testing.T) *Queue {
	t.Helper()

	st, err := store.New(filepath.Join(t.TempDir(), "confessions.json"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	q, err := NewQueue(st)
	if err != nil {
		t.Fatalf("create queue: %v", err)
	}
	return q
}

func TestEnqueueGeneratesUniqueIDs(t *testing.T) {
	q := newTestQueue(t)

	first := q.Enqueue(1, "tag", "one", "", []string{"spam"}, 1000)
	second := q.Enqueue(1, "tag", "two", "", []string{"spam"}, 1001)

	if first == "" || second == "" || first == second {
		t.Fatalf("enqueue should generate distinct non-empty ids: %q %q", first, second)
	}
	if got := len(q.List(1)); got != 2 {
		t.Fatalf("unexpected pending count: %d", got)
	}
}

func TestApproveReturnsAndRemovesEntry(t *testing.T) {
	q := newTestQueue(t)

	id := q.Enqueue(1, "tag", "content", "Funny", []string{"spam"}, 1000)

	pc, err := q.Approve(id, 1)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if pc.Content != "content" || pc.Categories != "Funny" || pc.CreatedAt != 1000 {
		t.Fatalf("approve returned wrong entry: %+v", pc)
	}

	if _, err := q.Approve(id, 1); !errors.Is(err, ErrPendingNotFound) {
		t.Fatalf("second approve should report not found, got %v", err)
	}
}

func TestRejectRemovesEntryAtMostOnce(t *testing.T) {
	q := newTestQueue(t)

	id := q.Enqueue(1, "tag", "content", "", []string{"spam"}, 1000)

	if err := q.Reject(id, 1); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if err := q.Reject(id, 1); !errors.Is(err, ErrPendingNotFound) {
		t.Fatalf("second reject should report not found, got %v", err)
	}
	if got := len(q.List(1)); got != 0 {
		t.Fatalf("queue should be empty after reject, has %d", got)
	}
}

func TestCrossCommunityResolutionIsRefused(t *testing.T) {
	q := newTestQueue(t)

	id := q.Enqueue(1, "tag", "content", "", []string{"spam"}, 1000)

	if _, err := q.Approve(id, 2); !errors.Is(err, ErrWrongCommunity) {
		t.Fatalf("foreign approve should be refused, got %v", err)
	}
	if err := q.Reject(id, 2); !errors.Is(err, ErrWrongCommunity) {
		t.Fatalf("foreign reject should be refused, got %v", err)
	}

	// The entry must survive foreign attempts and still resolve at home.
	if _, err := q.Approve(id, 1); err != nil {
		t.Fatalf("owning community approve should still succeed: %v", err)
	}
}

func TestListIsScopedAndOrdered(t *testing.T) {
	q := newTestQueue(t)

	q.Enqueue(1, "tag", "late", "", []string{"spam"}, 2000)
	q.Enqueue(1, "tag", "early", "", []string{"spam"}, 1000)
	q.Enqueue(2, "tag", "foreign", "", []string{"spam"}, 500)

	pending := q.List(1)
	if len(pending) != 2 {
		t.Fatalf("unexpected pending count: %d", len(pending))
	}
	if pending[0].Content != "early" || pending[1].Content != "late" {
		t.Fatalf("pending should be oldest first: %+v", pending)
	}
}
