package http

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/idolvote/internal/core/domain"
	"github.com/vncsmyrnk/idolvote/internal/core/ports"
	"github.com/vncsmyrnk/idolvote/internal/utils"
)

type VoteHandler struct {
	service ports.VoteService
}

func NewVoteHandler(service ports.VoteService) *VoteHandler {
	return &VoteHandler{
		service: service,
	}
}

type submitVotesRequest struct {
	Votes map[string]int `json:"votes" validate:"required"`
}

type historyEntry struct {
	VotingWindowName  string    `json:"voting_window_name"`
	VotingWindowDates string    `json:"voting_window_dates"`
	ContestantName    string    `json:"contestant_name"`
	VoteCount         int       `json:"vote_count"`
	VotedAt           time.Time `json:"voted_at"`
}

type historyResponse struct {
	History []historyEntry `json:"history"`
}

func (h *VoteHandler) VotingState(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Missing user context", nil)
		return
	}

	state, err := h.service.VotingState(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, domain.ErrWindowClosed) {
			utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeVotingClosed, "No active voting window", nil)
			return
		}
		respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, state)
}

func (h *VoteHandler) SubmitVotes(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Missing user context", nil)
		return
	}

	var req submitVotesRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	allocations, err := allocationsFromRequest(req.Votes)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if err := h.service.SubmitVotes(r.Context(), user.ID, allocations); err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.StatusResponse{Status: "success", Message: "Votes submitted successfully."})
}

func (h *VoteHandler) History(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Missing user context", nil)
		return
	}

	entries, err := h.service.History(r.Context(), user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	resp := historyResponse{History: make([]historyEntry, 0, len(entries))}
	for _, e := range entries {
		resp.History = append(resp.History, historyEntry{
			VotingWindowName:  e.VotingWindowName,
			VotingWindowDates: e.DateRange(),
			ContestantName:    e.ContestantName,
			VoteCount:         e.VoteCount,
			VotedAt:           e.VotedAt,
		})
	}

	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// allocationsFromRequest turns the contestant-id keyed map into allocations
// ordered by contestant id.
func allocationsFromRequest(votes map[string]int) ([]domain.Allocation, error) {
	allocations := make([]domain.Allocation, 0, len(votes))
	for key, count := range votes {
		id, err := uuid.Parse(key)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid contestant id %q", domain.ErrValidation, key)
		}
		allocations = append(allocations, domain.Allocation{ContestantID: id, Count: count})
	}
	sort.Slice(allocations, func(i, j int) bool {
		return allocations[i].ContestantID.String() < allocations[j].ContestantID.String()
	})
	return allocations, nil
}
