package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/darktohka/confessions-bot/internal/domain/model"
	"github.com/darktohka/confessions-bot/internal/services/audit"
	confsvc "github.com/darktohka/confessions-bot/internal/services/confession"
	"github.com/darktohka/confessions-bot/internal/services/cooldown"
	"github.com/darktohka/confessions-bot/internal/services/review"
	"github.com/darktohka/confessions-bot/internal/store"
)

type stubDeliverer struct {
	calls    int
	lastDest model.Destination
	fail     bool
}

func (d *stubDeliverer) Deliver(_ context.Context, dest model.Destination, _ model.RenderedConfession) (int64, error) {
	d.calls++
	d.lastDest = dest
	if d.fail {
		return 0, context.DeadlineExceeded
	}
	return 1, nil
}

type handlerFixture struct {
	service   *confsvc.Service
	deliverer *stubDeliverer
	router    *chi.Mux
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	st, err := store.New(filepath.Join(t.TempDir(), "confessions.json"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	gate, err := cooldown.NewGate(st)
	if err != nil {
		t.Fatalf("create gate: %v", err)
	}
	queue, err := review.NewQueue(st)
	if err != nil {
		t.Fatalf("create queue: %v", err)
	}
	auditLog, err := audit.NewLog(zap.NewNop())
	if err != nil {
		t.Fatalf("create audit log: %v", err)
	}
	svc, err := confsvc.NewService(st, gate, queue, auditLog, zap.NewNop(), func() int64 {
		return time.Now().Unix()
	})
	if err != nil {
		t.Fatalf("create confession service: %v", err)
	}

	deliverer := &stubDeliverer{}
	h := NewConfessionHandler(svc, deliverer, zap.NewNop())

	r := chi.NewRouter()
	r.Route("/communities/{communityID}", func(r chi.Router) {
		r.Post("/confessions", h.Submit)
		r.Get("/pending", h.ListPending)
		r.Post("/pending/{pendingID}/approve", h.Approve)
		r.Post("/pending/{pendingID}/reject", h.Reject)
	})

	return &handlerFixture{service: svc, deliverer: deliverer, router: r}
}

func (f *handlerFixture) submit(t *testing.T, community string, submitterID int64, content string) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(map[string]any{
		"submitter_id": submitterID,
		"content":      content,
	})
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/communities/"+community+"/confessions", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func TestSubmitDeliversCleanConfession(t *testing.T) {
	f := newHandlerFixture(t)
	if err := f.service.SetDestination(7, model.Destination{ChatID: 900}); err != nil {
		t.Fatalf("set destination: %v", err)
	}

	rr := f.submit(t, "7", 1001, "I still sleep with a night light")
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d body=%s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if f.deliverer.calls != 1 {
		t.Fatalf("expected one delivery, got %d", f.deliverer.calls)
	}
	if f.deliverer.lastDest.ChatID != 900 {
		t.Fatalf("delivered to wrong chat: %d", f.deliverer.lastDest.ChatID)
	}

	var payload struct {
		Outcome   string `json:"outcome"`
		Delivered bool   `json:"delivered"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Outcome != "published" || !payload.Delivered {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestSubmitFlaggedContentIsQueuedNotDelivered(t *testing.T) {
	f := newHandlerFixture(t)
	if err := f.service.SetDestination(7, model.Destination{ChatID: 900}); err != nil {
		t.Fatalf("set destination: %v", err)
	}
	if err := f.service.AddBlacklistTerm(7, "drugs"); err != nil {
		t.Fatalf("add term: %v", err)
	}

	rr := f.submit(t, "7", 1001, "I once tried Drugs at a party")
	if rr.Code != http.StatusAccepted {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusAccepted)
	}
	if f.deliverer.calls != 0 {
		t.Fatalf("flagged confession must not be delivered")
	}

	var payload struct {
		Outcome   string `json:"outcome"`
		PendingID string `json:"pending_id"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Outcome != "pending" || payload.PendingID == "" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestSubmitSecondAttemptIsRateLimited(t *testing.T) {
	f := newHandlerFixture(t)
	if err := f.service.SetDestination(7, model.Destination{ChatID: 900}); err != nil {
		t.Fatalf("set destination: %v", err)
	}

	if rr := f.submit(t, "7", 1001, "first"); rr.Code != http.StatusOK {
		t.Fatalf("first submit failed: %d", rr.Code)
	}
	rr := f.submit(t, "7", 1001, "second")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusTooManyRequests)
	}

	var payload struct {
		Code          string `json:"code"`
		RetryAfterSec int64  `json:"retry_after_sec"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Code != "RATE_LIMITED" {
		t.Fatalf("unexpected error code: %q", payload.Code)
	}
	if payload.RetryAfterSec <= 0 || payload.RetryAfterSec > 3600 {
		t.Fatalf("retry_after_sec out of range: %d", payload.RetryAfterSec)
	}
}

func TestSubmitWithoutDestinationIsConflict(t *testing.T) {
	f := newHandlerFixture(t)

	rr := f.submit(t, "7", 1001, "anything")
	if rr.Code != http.StatusConflict {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusConflict)
	}
}

func TestApprovePublishesPendingConfession(t *testing.T) {
	f := newHandlerFixture(t)
	if err := f.service.SetDestination(7, model.Destination{ChatID: 900}); err != nil {
		t.Fatalf("set destination: %v", err)
	}
	if err := f.service.AddBlacklistTerm(7, "secret"); err != nil {
		t.Fatalf("add term: %v", err)
	}

	rr := f.submit(t, "7", 1001, "my secret hobby")
	var submitted struct {
		PendingID string `json:"pending_id"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &submitted); err != nil {
		t.Fatalf("decode submit response: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/communities/7/pending/"+submitted.PendingID+"/approve", nil)
	arr := httptest.NewRecorder()
	f.router.ServeHTTP(arr, req)

	if arr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d body=%s", arr.Code, arr.Body.String())
	}
	if f.deliverer.calls != 1 {
		t.Fatalf("expected one delivery after approval, got %d", f.deliverer.calls)
	}

	req = httptest.NewRequest(http.MethodPost, "/communities/7/pending/"+submitted.PendingID+"/approve", nil)
	again := httptest.NewRecorder()
	f.router.ServeHTTP(again, req)
	if again.Code != http.StatusNotFound {
		t.Fatalf("second approval must 404, got %d", again.Code)
	}
}

func TestRejectDiscardsWithoutDelivery(t *testing.T) {
	f := newHandlerFixture(t)
	if err := f.service.SetDestination(7, model.Destination{ChatID: 900}); err != nil {
		t.Fatalf("set destination: %v", err)
	}
	if err := f.service.AddBlacklistTerm(7, "secret"); err != nil {
		t.Fatalf("add term: %v", err)
	}

	rr := f.submit(t, "7", 1001, "my secret hobby")
	var submitted struct {
		PendingID string `json:"pending_id"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &submitted); err != nil {
		t.Fatalf("decode submit response: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/communities/7/pending/"+submitted.PendingID+"/reject", nil)
	drr := httptest.NewRecorder()
	f.router.ServeHTTP(drr, req)

	if drr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d", drr.Code)
	}
	if f.deliverer.calls != 0 {
		t.Fatalf("rejected confession must not be delivered")
	}

	var payload struct {
		Outcome string `json:"outcome"`
	}
	if err := json.Unmarshal(drr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Outcome != "discarded" {
		t.Fatalf("unexpected outcome: %q", payload.Outcome)
	}
}

func TestApproveFromWrongCommunityIsForbidden(t *testing.T) {
	f := newHandlerFixture(t)
	if err := f.service.SetDestination(7, model.Destination{ChatID: 900}); err != nil {
		t.Fatalf("set destination: %v", err)
	}
	if err := f.service.AddBlacklistTerm(7, "secret"); err != nil {
		t.Fatalf("add term: %v", err)
	}

	rr := f.submit(t, "7", 1001, "a secret")
	var submitted struct {
		PendingID string `json:"pending_id"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &submitted); err != nil {
		t.Fatalf("decode submit response: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/communities/8/pending/"+submitted.PendingID+"/approve", nil)
	arr := httptest.NewRecorder()
	f.router.ServeHTTP(arr, req)
	if arr.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: got %d want %d", arr.Code, http.StatusForbidden)
	}
}

func TestListPendingTruncatesLongContent(t *testing.T) {
	f := newHandlerFixture(t)
	if err := f.service.SetDestination(7, model.Destination{ChatID: 900}); err != nil {
		t.Fatalf("set destination: %v", err)
	}
	if err := f.service.AddBlacklistTerm(7, "secret"); err != nil {
		t.Fatalf("add term: %v", err)
	}

	long := "secret "
	for len(long) < 300 {
		long += "padding words to pass the preview cutoff "
	}
	if rr := f.submit(t, "7", 1001, long); rr.Code != http.StatusAccepted {
		t.Fatalf("submit failed: %d", rr.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/communities/7/pending", nil)
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d", rr.Code)
	}

	var payload struct {
		Pending []struct {
			ID             string   `json:"id"`
			AuthorTag      string   `json:"author_tag"`
			ContentPreview string   `json:"content_preview"`
			FlaggedTerms   []string `json:"flagged_terms"`
		} `json:"pending"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Pending) != 1 {
		t.Fatalf("expected one pending entry, got %d", len(payload.Pending))
	}
	entry := payload.Pending[0]
	if len(entry.ContentPreview) != previewLen+len("...") {
		t.Fatalf("preview not truncated: %d chars", len(entry.ContentPreview))
	}
	if len(entry.AuthorTag) != 64 {
		t.Fatalf("author tag must be a sha256 hex digest, got %q", entry.AuthorTag)
	}
	if len(entry.FlaggedTerms) != 1 || entry.FlaggedTerms[0] != "secret" {
		t.Fatalf("unexpected flagged terms: %v", entry.FlaggedTerms)
	}
}

func TestListPendingPreviewStaysValidUTF8(t *testing.T) {
	f := newHandlerFixture(t)
	if err := f.service.SetDestination(7, model.Destination{ChatID: 900}); err != nil {
		t.Fatalf("set destination: %v", err)
	}
	if err := f.service.AddBlacklistTerm(7, "тайна"); err != nil {
		t.Fatalf("add term: %v", err)
	}

	long := "тайна " + strings.Repeat("ж", 200)
	if rr := f.submit(t, "7", 1001, long); rr.Code != http.StatusAccepted {
		t.Fatalf("submit failed: %d", rr.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/communities/7/pending", nil)
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)

	var payload struct {
		Pending []struct {
			ContentPreview string `json:"content_preview"`
		} `json:"pending"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Pending) != 1 {
		t.Fatalf("expected one pending entry, got %d", len(payload.Pending))
	}
	preview := payload.Pending[0].ContentPreview
	if !utf8.ValidString(preview) {
		t.Fatalf("preview is not valid utf-8: %q", preview)
	}
	if !strings.HasSuffix(preview, "...") {
		t.Fatalf("long preview must be truncated: %q", preview)
	}
}

func TestSubmitDeliveryFailureIsBadGateway(t *testing.T) {
	f := newHandlerFixture(t)
	f.deliverer.fail = true
	if err := f.service.SetDestination(7, model.Destination{ChatID: 900}); err != nil {
		t.Fatalf("set destination: %v", err)
	}

	rr := f.submit(t, "7", 1001, "hello")
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusBadGateway)
	}

	var payload struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Code != "DELIVERY_FAILED" {
		t.Fatalf("unexpected error code: %q", payload.Code)
	}
}
