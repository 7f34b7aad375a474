package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vncsmyrnk/idolvote/internal/core/ports"
	"github.com/vncsmyrnk/idolvote/internal/utils"
)

type DashboardHandler struct {
	service ports.ResultsService
}

func NewDashboardHandler(service ports.ResultsService) *DashboardHandler {
	return &DashboardHandler{
		service: service,
	}
}

func (h *DashboardHandler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid voting window id", nil, err)
		return
	}

	stats, err := h.service.GetDashboard(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, stats)
}
