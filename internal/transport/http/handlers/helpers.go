package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	httperrors "github.com/darktohka/confessions-bot/internal/transport/http/errors"
)

func communityParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "communityID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id == 0 {
		writeBadRequest(w, "INVALID_COMMUNITY", "communityID must be a non-zero integer")
		return 0, false
	}
	return id, true
}

func pendingParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "pendingID"))
	if id == "" {
		writeBadRequest(w, "INVALID_PENDING_ID", "pendingID is required")
		return "", false
	}
	return id, true
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: code, Message: message})
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{Code: code, Message: message})
}
