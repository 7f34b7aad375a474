package utils

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

const (
	ErrCodeInvalidPayload  = "invalid_payload"
	ErrCodeValidation      = "validation_error"
	ErrCodeUnauthorized    = "unauthorized"
	ErrCodeTokenExpired    = "token_expired"
	ErrCodeNotFound        = "not_found"
	ErrCodeConflict        = "conflict"
	ErrCodeVotingClosed    = "voting_closed"
	ErrCodeEmptySubmission = "empty_submission"
	ErrCodeQuotaExceeded   = "quota_exceeded"
	ErrCodeRateLimited     = "rate_limit_exceeded"
	ErrCodeExternalService = "external_service_failure"
	ErrCodeInternal        = "internal_server_error"
)

// ErrorResponse carries an optional Details field for structured failures such as
// per-field validation errors.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ValidationErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// RespondErrorWithCode writes a JSON error body. Server-side failures are logged at
// error level with the developer error attached; client errors only at debug.
func RespondErrorWithCode(
	w http.ResponseWriter,
	status int,
	errorCode string,
	publicMessage string,
	details any,
	devErrs ...error,
) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	errBody := ErrorResponse{
		Code:    errorCode,
		Message: publicMessage,
	}
	if details != nil {
		errBody.Details = details
	}
	_ = json.NewEncoder(w).Encode(errBody)

	entry := Logger.WithField("status", status)
	if len(devErrs) > 0 && devErrs[0] != nil {
		entry = entry.WithField("error", devErrs[0].Error())
	}
	if status >= http.StatusInternalServerError {
		entry.Error(publicMessage)
	} else {
		entry.WithFields(logrus.Fields{"code": errorCode}).Debug(publicMessage)
	}
}

func RespondWithJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		Logger.WithError(err).Error("failed to encode response")
	}
}
