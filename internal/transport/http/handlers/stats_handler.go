package handlers

import (
	"net/http"

	"github.com/darktohka/confessions-bot/internal/services/stats"
	"github.com/darktohka/confessions-bot/internal/transport/http/dto"
	httperrors "github.com/darktohka/confessions-bot/internal/transport/http/errors"
)

const statsTopLimit = 25

type StatsHandler struct {
	stats *stats.Service
}

func NewStatsHandler(stats *stats.Service) *StatsHandler {
	return &StatsHandler{stats: stats}
}

func (h *StatsHandler) ButtonStats(w http.ResponseWriter, r *http.Request) {
	top := h.stats.Top(statsTopLimit)
	entries := make([]dto.ButtonStatsEntry, 0, len(top))
	for _, e := range top {
		entries = append(entries, dto.ButtonStatsEntry{
			SubmitterID: e.SubmitterID,
			Count:       e.Count,
		})
	}

	submitters, presses := h.stats.Totals()
	httperrors.Write(w, http.StatusOK, dto.ButtonStatsResponse{
		Top:        entries,
		Submitters: submitters,
		Presses:    presses,
	})
}
