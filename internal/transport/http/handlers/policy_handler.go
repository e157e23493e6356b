package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/darktohka/confessions-bot/internal/domain/model"
	confsvc "github.com/darktohka/confessions-bot/internal/services/confession"
	"github.com/darktohka/confessions-bot/internal/transport/http/dto"
	httperrors "github.com/darktohka/confessions-bot/internal/transport/http/errors"
)

type PolicyHandler struct {
	service *confsvc.Service
}

func NewPolicyHandler(service *confsvc.Service) *PolicyHandler {
	return &PolicyHandler{service: service}
}

func (h *PolicyHandler) GetCooldown(w http.ResponseWriter, r *http.Request) {
	community, ok := communityParam(w, r)
	if !ok {
		return
	}
	httperrors.Write(w, http.StatusOK, dto.CooldownResponse{
		Seconds: h.service.CooldownSeconds(community),
	})
}

func (h *PolicyHandler) SetCooldown(w http.ResponseWriter, r *http.Request) {
	community, ok := communityParam(w, r)
	if !ok {
		return
	}

	var req dto.CooldownRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "INVALID_BODY", "request body is not valid json")
		return
	}

	if err := h.service.SetCooldownSeconds(community, req.Seconds); err != nil {
		writePolicyError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.CooldownResponse{Seconds: req.Seconds})
}

func (h *PolicyHandler) GetDestination(w http.ResponseWriter, r *http.Request) {
	community, ok := communityParam(w, r)
	if !ok {
		return
	}

	dest, set := h.service.Destination(community)
	httperrors.Write(w, http.StatusOK, dto.DestinationResponse{
		ChatID:  dest.ChatID,
		TopicID: dest.TopicID,
		Set:     set,
	})
}

func (h *PolicyHandler) SetDestination(w http.ResponseWriter, r *http.Request) {
	community, ok := communityParam(w, r)
	if !ok {
		return
	}

	var req dto.DestinationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "INVALID_BODY", "request body is not valid json")
		return
	}
	if req.ChatID == 0 {
		writeBadRequest(w, "INVALID_DESTINATION", "chat_id is required")
		return
	}

	if err := h.service.SetDestination(community, model.Destination{ChatID: req.ChatID, TopicID: req.TopicID}); err != nil {
		writePolicyError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.DestinationResponse{
		ChatID:  req.ChatID,
		TopicID: req.TopicID,
		Set:     true,
	})
}

func (h *PolicyHandler) ListBlacklist(w http.ResponseWriter, r *http.Request) {
	community, ok := communityParam(w, r)
	if !ok {
		return
	}
	httperrors.Write(w, http.StatusOK, dto.BlacklistResponse{
		Terms: h.service.BlacklistTerms(community),
	})
}

func (h *PolicyHandler) AddBlacklistTerm(w http.ResponseWriter, r *http.Request) {
	community, ok := communityParam(w, r)
	if !ok {
		return
	}

	var req dto.TermRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "INVALID_BODY", "request body is not valid json")
		return
	}

	if err := h.service.AddBlacklistTerm(community, req.Term); err != nil {
		writePolicyError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.BlacklistResponse{
		Terms: h.service.BlacklistTerms(community),
	})
}

func (h *PolicyHandler) RemoveBlacklistTerm(w http.ResponseWriter, r *http.Request) {
	community, ok := communityParam(w, r)
	if !ok {
		return
	}

	var req dto.TermRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "INVALID_BODY", "request body is not valid json")
		return
	}

	if err := h.service.RemoveBlacklistTerm(community, req.Term); err != nil {
		writePolicyError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.BlacklistResponse{
		Terms: h.service.BlacklistTerms(community),
	})
}

func (h *PolicyHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	community, ok := communityParam(w, r)
	if !ok {
		return
	}
	httperrors.Write(w, http.StatusOK, dto.CategoriesResponse{
		Categories: h.service.Categories(community),
	})
}

func (h *PolicyHandler) AddCategory(w http.ResponseWriter, r *http.Request) {
	community, ok := communityParam(w, r)
	if !ok {
		return
	}

	var req dto.CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "INVALID_BODY", "request body is not valid json")
		return
	}

	if err := h.service.AddCategory(community, req.Name); err != nil {
		writePolicyError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.CategoriesResponse{
		Categories: h.service.Categories(community),
	})
}

func (h *PolicyHandler) RemoveCategory(w http.ResponseWriter, r *http.Request) {
	community, ok := communityParam(w, r)
	if !ok {
		return
	}

	var req dto.CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "INVALID_BODY", "request body is not valid json")
		return
	}

	if err := h.service.RemoveCategory(community, req.Name); err != nil {
		writePolicyError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.CategoriesResponse{
		Categories: h.service.Categories(community),
	})
}

func writePolicyError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, confsvc.ErrNegativeCooldown),
		errors.Is(err, confsvc.ErrTermEmpty),
		errors.Is(err, confsvc.ErrCategoryEmpty),
		errors.Is(err, confsvc.ErrCategoryTooLong):
		writeBadRequest(w, "VALIDATION_FAILED", err.Error())
	case errors.Is(err, confsvc.ErrTermExists),
		errors.Is(err, confsvc.ErrCategoryExists):
		httperrors.Write(w, http.StatusConflict, httperrors.APIError{
			Code:    "ALREADY_EXISTS",
			Message: err.Error(),
		})
	case errors.Is(err, confsvc.ErrTermNotFound),
		errors.Is(err, confsvc.ErrCategoryNotFound):
		httperrors.Write(w, http.StatusNotFound, httperrors.APIError{
			Code:    "NOT_FOUND",
			Message: err.Error(),
		})
	case errors.Is(err, confsvc.ErrPersistence):
		httperrors.Write(w, http.StatusOK, httperrors.APIError{
			Code:    "PERSISTENCE_WARNING",
			Message: "the change was applied but could not be saved to disk",
		})
	default:
		writeInternal(w, "INTERNAL_ERROR", "policy update failed")
	}
}
