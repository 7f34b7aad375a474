package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/vncsmyrnk/idolvote/internal/adapters/token"
	"github.com/vncsmyrnk/idolvote/internal/core/domain"
	"github.com/vncsmyrnk/idolvote/internal/core/ports"
	"github.com/vncsmyrnk/idolvote/internal/utils"
)

var validate = validator.New()

// respondServiceError maps domain errors to status codes. Anything unrecognized is
// an infrastructure failure.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, token.ErrTokenExpired):
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeTokenExpired, "Token expired", nil, err)
	case errors.Is(err, domain.ErrAuthentication):
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, err.Error(), nil, err)
	case errors.Is(err, domain.ErrValidation):
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil, err)
	case errors.Is(err, domain.ErrEmptySubmission):
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeEmptySubmission, "No votes to submit", nil, err)
	case errors.Is(err, domain.ErrNotFound):
		utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, err.Error(), nil, err)
	case errors.Is(err, domain.ErrWindowClosed):
		utils.RespondErrorWithCode(w, http.StatusForbidden, utils.ErrCodeVotingClosed, "Voting is currently closed", nil, err)
	case errors.Is(err, domain.ErrQuotaExceeded):
		utils.RespondErrorWithCode(w, http.StatusConflict, utils.ErrCodeQuotaExceeded, err.Error(), nil, err)
	case errors.Is(err, domain.ErrConflict):
		utils.RespondErrorWithCode(w, http.StatusConflict, utils.ErrCodeConflict, err.Error(), nil, err)
	case errors.Is(err, domain.ErrRateLimited):
		utils.RespondErrorWithCode(w, http.StatusTooManyRequests, utils.ErrCodeRateLimited, err.Error(), nil, err)
	case errors.Is(err, domain.ErrDelivery):
		utils.RespondErrorWithCode(w, http.StatusBadGateway, utils.ErrCodeExternalService, "Failed to send verification code", nil, err)
	default:
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Internal server error", nil, err)
	}
}

// decodeAndValidate writes the error response itself and reports whether the
// handler may continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid request body", nil, err)
		return false
	}
	return validateRequest(w, dst)
}

func validateRequest(w http.ResponseWriter, req any) bool {
	err := validate.Struct(req)
	if err == nil {
		return true
	}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation error", formatValidationErrors(validationErrs), err)
		return false
	}
	utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid request", nil, err)
	return false
}

func formatValidationErrors(errs validator.ValidationErrors) []utils.ValidationErrorDetail {
	var details []utils.ValidationErrorDetail
	for _, err := range errs {
		var message string
		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("Field '%s' is required", err.Field())
		case "required_without":
			message = fmt.Sprintf("Field '%s' is required when '%s' is missing", err.Field(), err.Param())
		case "email":
			message = fmt.Sprintf("Field '%s' must be a valid email address", err.Field())
		case "e164":
			message = fmt.Sprintf("Field '%s' must be a phone number in E.164 format", err.Field())
		case "gt":
			message = fmt.Sprintf("Field '%s' must be greater than %s", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("Field '%s' must be one of [%s]", err.Field(), err.Param())
		default:
			message = fmt.Sprintf("Field validation for '%s' failed on the '%s' tag", err.Field(), err.Tag())
		}
		details = append(details, utils.ValidationErrorDetail{
			Field:   err.Field(),
			Message: message,
			Code:    "validation_" + err.Tag(),
		})
	}
	return details
}

func pageFromQuery(r *http.Request) (ports.PageInput, error) {
	var page ports.PageInput
	var err error
	if v := r.URL.Query().Get("skip"); v != "" {
		if page.Skip, err = strconv.Atoi(v); err != nil {
			return page, fmt.Errorf("%w: skip must be an integer", domain.ErrValidation)
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if page.Limit, err = strconv.Atoi(v); err != nil {
			return page, fmt.Errorf("%w: limit must be an integer", domain.ErrValidation)
		}
		if page.Limit == 0 {
			return page, fmt.Errorf("%w: limit must be positive", domain.ErrValidation)
		}
	}
	return page, nil
}
