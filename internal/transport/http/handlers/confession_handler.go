package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/darktohka/confessions-bot/internal/domain/enums"
	"github.com/darktohka/confessions-bot/internal/pkg/validate"
	confsvc "github.com/darktohka/confessions-bot/internal/services/confession"
	"github.com/darktohka/confessions-bot/internal/services/review"
	"github.com/darktohka/confessions-bot/internal/transport/http/dto"
	httperrors "github.com/darktohka/confessions-bot/internal/transport/http/errors"
)

const previewLen = 100

type ConfessionHandler struct {
	service   *confsvc.Service
	deliverer confsvc.Deliverer
	logger    *zap.Logger
}

func NewConfessionHandler(service *confsvc.Service, deliverer confsvc.Deliverer, logger *zap.Logger) *ConfessionHandler {
	return &ConfessionHandler{service: service, deliverer: deliverer, logger: logger}
}

func (h *ConfessionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "CONFESSION_SERVICE_UNAVAILABLE", "confession service is unavailable")
		return
	}

	community, ok := communityParam(w, r)
	if !ok {
		return
	}

	var req dto.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "INVALID_BODY", "request body is not valid json")
		return
	}
	if req.SubmitterID <= 0 {
		writeBadRequest(w, "INVALID_SUBMITTER", "submitter_id is required")
		return
	}

	disp, err := h.service.Submit(community, req.SubmitterID, req.Content, req.Categories)
	if err != nil {
		writePipelineError(w, err)
		return
	}

	switch disp.Outcome {
	case enums.OutcomeBlocked:
		httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
			Code:          "RATE_LIMITED",
			Message:       "submission cooldown is active",
			RetryAfterSec: disp.RetryAfterSec,
		})
	case enums.OutcomePending:
		httperrors.Write(w, http.StatusAccepted, dto.SubmitResponse{
			Outcome:   string(disp.Outcome),
			PendingID: disp.PendingID,
		})
	case enums.OutcomePublished:
		delivered := h.deliver(w, r, disp)
		if !delivered {
			return
		}
		httperrors.Write(w, http.StatusOK, dto.SubmitResponse{
			Outcome:   string(disp.Outcome),
			Delivered: true,
		})
	default:
		writeInternal(w, "INTERNAL_ERROR", "unexpected submission outcome")
	}
}

func (h *ConfessionHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "CONFESSION_SERVICE_UNAVAILABLE", "confession service is unavailable")
		return
	}

	community, ok := communityParam(w, r)
	if !ok {
		return
	}

	pending := h.service.ListPending(community)
	out := make([]dto.PendingConfessionResponse, 0, len(pending))
	for _, pc := range pending {
		preview := validate.Truncate(pc.Content, previewLen)
		out = append(out, dto.PendingConfessionResponse{
			ID:             pc.ID,
			AuthorTag:      pc.AuthorTag,
			ContentPreview: preview,
			Categories:     pc.Categories,
			FlaggedTerms:   pc.FlaggedTerms,
			CreatedAt:      pc.CreatedAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.PendingListResponse{Pending: out})
}

func (h *ConfessionHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, enums.DecisionApprove)
}

func (h *ConfessionHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, enums.DecisionReject)
}

func (h *ConfessionHandler) resolve(w http.ResponseWriter, r *http.Request, decision enums.Decision) {
	if h.service == nil {
		writeInternal(w, "CONFESSION_SERVICE_UNAVAILABLE", "confession service is unavailable")
		return
	}

	community, ok := communityParam(w, r)
	if !ok {
		return
	}
	pendingID, ok := pendingParam(w, r)
	if !ok {
		return
	}

	disp, err := h.service.Resolve(community, pendingID, decision)
	if err != nil {
		writePipelineError(w, err)
		return
	}

	if disp.Outcome == enums.OutcomePublished {
		if delivered := h.deliver(w, r, disp); !delivered {
			return
		}
		httperrors.Write(w, http.StatusOK, dto.ResolveResponse{
			Outcome:   string(disp.Outcome),
			Delivered: true,
		})
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ResolveResponse{Outcome: string(disp.Outcome)})
}

// deliver posts a published confession and reports delivery failures as
// 502. The submission already counted against audit and cooldown either
// way.
func (h *ConfessionHandler) deliver(w http.ResponseWriter, r *http.Request, disp confsvc.Disposition) bool {
	if h.deliverer == nil {
		writeInternal(w, "DELIVERER_UNAVAILABLE", "confession deliverer is unavailable")
		return false
	}

	if _, err := h.deliverer.Deliver(r.Context(), disp.Destination, disp.Rendered); err != nil {
		if h.logger != nil {
			h.logger.Error("confession delivery failed", zap.Error(err))
		}
		httperrors.Write(w, http.StatusBadGateway, httperrors.APIError{
			Code:    "DELIVERY_FAILED",
			Message: "the confession was accepted but could not be delivered",
		})
		return false
	}
	return true
}

func writePipelineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, confsvc.ErrNoDestination):
		httperrors.Write(w, http.StatusConflict, httperrors.APIError{
			Code:    "CONFIG_MISSING",
			Message: "no confession destination configured for this community",
		})
	case errors.Is(err, confsvc.ErrEmptyContent),
		errors.Is(err, confsvc.ErrContentTooLong),
		errors.Is(err, confsvc.ErrCategoriesTooLong):
		writeBadRequest(w, "VALIDATION_FAILED", err.Error())
	case errors.Is(err, review.ErrPendingNotFound):
		httperrors.Write(w, http.StatusNotFound, httperrors.APIError{
			Code:    "PENDING_NOT_FOUND",
			Message: "no pending confession with that id",
		})
	case errors.Is(err, review.ErrWrongCommunity):
		httperrors.Write(w, http.StatusForbidden, httperrors.APIError{
			Code:    "WRONG_COMMUNITY",
			Message: "that pending confession belongs to a different community",
		})
	case errors.Is(err, confsvc.ErrPersistence):
		httperrors.Write(w, http.StatusOK, httperrors.APIError{
			Code:    "PERSISTENCE_WARNING",
			Message: "the change was applied but could not be saved to disk",
		})
	default:
		writeInternal(w, "INTERNAL_ERROR", "confession pipeline failed")
	}
}
