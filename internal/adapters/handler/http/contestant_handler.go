package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/vncsmyrnk/idolvote/internal/core/domain"
	"github.com/vncsmyrnk/idolvote/internal/core/ports"
	"github.com/vncsmyrnk/idolvote/internal/utils"
)

const maxImageUploadBytes = 10 << 20

type ContestantHandler struct {
	service ports.ContestantService
}

func NewContestantHandler(service ports.ContestantService) *ContestantHandler {
	return &ContestantHandler{
		service: service,
	}
}

type createContestantRequest struct {
	Name     string  `json:"name" validate:"required"`
	Age      int     `json:"age" validate:"gt=0,lte=2147483647"`
	Gender   string  `json:"gender" validate:"required,oneof=Male Female Others"`
	Details  *string `json:"details"`
	ImageURL *string `json:"image_url"`
}

// CreateContestant accepts a JSON body, or a multipart form with an optional
// "image" file part.
func (h *ContestantHandler) CreateContestant(w http.ResponseWriter, r *http.Request) {
	var (
		req   createContestantRequest
		input ports.CreateContestantInput
	)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxImageUploadBytes); err != nil {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid multipart form", nil, err)
			return
		}
		age, err := strconv.Atoi(r.FormValue("age"))
		if err != nil {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Age must be an integer", nil, err)
			return
		}
		req = createContestantRequest{
			Name:   r.FormValue("name"),
			Age:    age,
			Gender: r.FormValue("gender"),
		}
		if details := r.FormValue("details"); details != "" {
			req.Details = &details
		}
		if !validateRequest(w, &req) {
			return
		}

		file, header, err := r.FormFile("image")
		switch {
		case err == nil:
			defer file.Close()
			input.Image = file
			input.ImageName = header.Filename
		case err != http.ErrMissingFile:
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid image upload", nil, err)
			return
		}
	} else if !decodeAndValidate(w, r, &req) {
		return
	}

	input.Name = req.Name
	input.Age = req.Age
	input.Gender = domain.Gender(req.Gender)
	input.Details = req.Details
	input.ImageURL = req.ImageURL

	contestant, err := h.service.Create(r.Context(), input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, contestant)
}

func (h *ContestantHandler) ListContestants(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	contestants, err := h.service.List(r.Context(), page)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, contestants)
}
