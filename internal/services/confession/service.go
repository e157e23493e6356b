package confession

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/darktohka/confessions-bot/internal/domain/enums"
	"github.com/darktohka/confessions-bot/internal/domain/model"
	"github.com/darktohka/confessions-bot/internal/pkg/validate"
	"github.com/darktohka/confessions-bot/internal/services/anonymize"
	"github.com/darktohka/confessions-bot/internal/services/audit"
	"github.com/darktohka/confessions-bot/internal/services/blacklist"
	"github.com/darktohka/confessions-bot/internal/services/cooldown"
	"github.com/darktohka/confessions-bot/internal/services/review"
	"github.com/darktohka/confessions-bot/internal/store"
)

var (
	ErrNoDestination     = errors.New("no confession destination configured for this community")
	ErrEmptyContent      = errors.New("confession content is empty")
	ErrContentTooLong    = errors.New("confession content exceeds the maximum length")
	ErrCategoriesTooLong = errors.New("categories input exceeds the maximum length")
	ErrCategoryEmpty     = errors.New("category name is empty")
	ErrCategoryTooLong   = errors.New("category name exceeds the maximum length")
	ErrCategoryExists    = errors.New("category already exists")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrTermEmpty         = errors.New("blacklist term is empty")
	ErrTermExists        = errors.New("term is already blacklisted")
	ErrTermNotFound      = errors.New("term is not blacklisted")
	ErrNegativeCooldown  = errors.New("cooldown seconds must not be negative")

	// ErrPersistence wraps a failed durable save. The in-memory effect of the
	// operation stands; callers should warn, not retry or roll back.
	ErrPersistence = errors.New("failed to persist configuration")
)

// Disposition is the outcome of a submission attempt or a moderator
// decision. Exactly the fields implied by Outcome are populated.
type Disposition struct {
	Outcome       enums.Outcome
	Rendered      model.RenderedConfession
	Destination   model.Destination
	PendingID     string
	FlaggedTerms  []string
	RetryAfterSec int64
}

// Service orchestrates the submission pipeline: cooldown gating, blacklist
// classification, audit, and the pending-review state machine. It never
// performs network I/O; publishing is the caller's job after a Published
// disposition.
type Service struct {
	store  *store.Store
	gate   *cooldown.Gate
	queue  *review.Queue
	audit  *audit.Log
	logger *zap.Logger
	now    func() int64
}

func NewService(st *store.Store, gate *cooldown.Gate, queue *review.Queue, auditLog *audit.Log, logger *zap.Logger, now func() int64) (*Service, error) {
	if st == nil || gate == nil || queue == nil || auditLog == nil {
		return nil, fmt.Errorf("confession service dependencies are not configured")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		return nil, fmt.Errorf("confession service clock is nil")
	}

	return &Service{
		store:  st,
		gate:   gate,
		queue:  queue,
		audit:  auditLog,
		logger: logger,
		now:    now,
	}, nil
}

// Submit runs one confession attempt through the pipeline.
//
// A flagged submission consumes the submitter's cooldown slot immediately,
// the same as a published one: otherwise a blocked-by-blacklist submitter
// could spam the review queue until a wording slips through.
func (s *Service) Submit(community, submitter int64, content, categories string) (Disposition, error) {
	content = strings.TrimSpace(content)
	categories = strings.TrimSpace(categories)
	if content == "" {
		return Disposition{}, ErrEmptyContent
	}
	if !validate.WithinLen(content, validate.MaxContentLen) {
		return Disposition{}, ErrContentTooLong
	}
	if !validate.WithinLen(categories, validate.MaxCategoriesLen) {
		return Disposition{}, ErrCategoriesTooLong
	}

	dest, ok := s.store.Destination(community)
	if !ok {
		return Disposition{}, ErrNoDestination
	}

	now := s.now()

	if retryAfter, allowed := s.gate.Check(community, submitter, now); !allowed {
		return Disposition{
			Outcome:       enums.OutcomeBlocked,
			RetryAfterSec: retryAfter,
		}, nil
	}

	tag := anonymize.Tag(submitter)
	s.audit.Record(tag, content)

	if flagged := blacklist.Scan(content, s.store.BlacklistTerms(community)); len(flagged) > 0 {
		id := s.queue.Enqueue(community, tag, content, categories, flagged, now)
		s.gate.Record(community, submitter, now)
		s.saveOrWarn("enqueue pending confession")

		s.logger.Info("confession flagged for review",
			zap.Int64("community", community),
			zap.String("pending_id", id),
			zap.Strings("flagged_terms", flagged),
		)
		return Disposition{
			Outcome:      enums.OutcomePending,
			PendingID:    id,
			FlaggedTerms: flagged,
		}, nil
	}

	s.gate.Record(community, submitter, now)

	return Disposition{
		Outcome:     enums.OutcomePublished,
		Rendered:    model.Render(content, categories, now),
		Destination: dest,
	}, nil
}

// Resolve applies a moderator decision to a pending confession.
func (s *Service) Resolve(community int64, pendingID string, decision enums.Decision) (Disposition, error) {
	switch decision {
	case enums.DecisionApprove:
		pc, err := s.queue.Approve(pendingID, community)
		if err != nil {
			return Disposition{}, err
		}

		dest, ok := s.store.Destination(community)
		if !ok {
			// Approval already consumed the entry; restore it rather than
			// losing the confession to a config gap.
			s.store.PutPending(pc)
			return Disposition{}, ErrNoDestination
		}

		s.saveOrWarn("approve pending confession")
		return Disposition{
			Outcome:     enums.OutcomePublished,
			Rendered:    model.Render(pc.Content, pc.Categories, s.now()),
			Destination: dest,
		}, nil

	case enums.DecisionReject:
		if err := s.queue.Reject(pendingID, community); err != nil {
			return Disposition{}, err
		}
		s.saveOrWarn("reject pending confession")
		return Disposition{Outcome: enums.OutcomeDiscarded}, nil

	default:
		return Disposition{}, fmt.Errorf("unknown decision %q", decision)
	}
}

// ListPending returns a community's review queue, oldest first.
func (s *Service) ListPending(community int64) []model.PendingConfession {
	return s.queue.List(community)
}

// --- policy administration ---

func (s *Service) Destination(community int64) (model.Destination, bool) {
	return s.store.Destination(community)
}

func (s *Service) SetDestination(community int64, dest model.Destination) error {
	s.store.SetDestination(community, dest)
	return s.save()
}

func (s *Service) CooldownSeconds(community int64) int64 {
	return s.gate.Seconds(community)
}

func (s *Service) SetCooldownSeconds(community, seconds int64) error {
	if seconds < 0 {
		return ErrNegativeCooldown
	}
	s.store.SetCooldownSeconds(community, seconds)
	return s.save()
}

func (s *Service) BlacklistTerms(community int64) []string {
	return s.store.BlacklistTerms(community)
}

func (s *Service) AddBlacklistTerm(community int64, term string) error {
	term = strings.TrimSpace(term)
	if term == "" {
		return ErrTermEmpty
	}
	if !s.store.AddBlacklistTerm(community, term) {
		return ErrTermExists
	}
	return s.save()
}

func (s *Service) RemoveBlacklistTerm(community int64, term string) error {
	if !s.store.RemoveBlacklistTerm(community, strings.TrimSpace(term)) {
		return ErrTermNotFound
	}
	return s.save()
}

func (s *Service) Categories(community int64) []string {
	return s.store.CategoryNames(community)
}

func (s *Service) AddCategory(community int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrCategoryEmpty
	}
	if !validate.WithinLen(name, validate.MaxCategoryNameLen) {
		return ErrCategoryTooLong
	}
	if !s.store.AddCategory(community, name) {
		return ErrCategoryExists
	}
	return s.save()
}

func (s *Service) RemoveCategory(community int64, name string) error {
	if !s.store.RemoveCategory(community, strings.TrimSpace(name)) {
		return ErrCategoryNotFound
	}
	return s.save()
}

func (s *Service) save() error {
	if err := s.store.Save(); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

func (s *Service) saveOrWarn(op string) {
	if err := s.store.Save(); err != nil {
		s.logger.Warn("store save failed, in-memory state stands",
			zap.String("operation", op),
			zap.Error(err),
		)
	}
}
