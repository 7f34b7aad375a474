package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vncsmyrnk/idolvote/internal/core/ports"
	"github.com/vncsmyrnk/idolvote/internal/utils"
)

type WindowHandler struct {
	service ports.WindowService
}

func NewWindowHandler(service ports.WindowService) *WindowHandler {
	return &WindowHandler{
		service: service,
	}
}

type createWindowRequest struct {
	Name            string      `json:"name" validate:"required"`
	StartTime       time.Time   `json:"start_time" validate:"required"`
	EndTime         time.Time   `json:"end_time" validate:"required,gtfield=StartTime"`
	MaxVotesPerUser int         `json:"max_votes_per_user" validate:"gt=0,lte=2147483647"`
	ContestantIDs   []uuid.UUID `json:"contestant_ids"`
}

func (h *WindowHandler) CreateWindow(w http.ResponseWriter, r *http.Request) {
	var req createWindowRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	window, err := h.service.Create(r.Context(), ports.CreateWindowInput{
		Name:            req.Name,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		MaxVotesPerUser: req.MaxVotesPerUser,
		ContestantIDs:   req.ContestantIDs,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, window)
}

func (h *WindowHandler) ListWindows(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	windows, err := h.service.List(r.Context(), page)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, windows)
}

func (h *WindowHandler) ActivateWindow(w http.ResponseWriter, r *http.Request) {
	id, ok := windowIDParam(w, r)
	if !ok {
		return
	}

	window, err := h.service.Activate(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, window)
}

func (h *WindowHandler) DeactivateWindow(w http.ResponseWriter, r *http.Request) {
	id, ok := windowIDParam(w, r)
	if !ok {
		return
	}

	window, err := h.service.Deactivate(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, window)
}

func windowIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid voting window id", nil, err)
		return uuid.Nil, false
	}
	return id, true
}
