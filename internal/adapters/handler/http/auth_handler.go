package http

import (
	"net/http"

	"github.com/vncsmyrnk/idolvote/internal/core/domain"
	"github.com/vncsmyrnk/idolvote/internal/core/ports"
	"github.com/vncsmyrnk/idolvote/internal/utils"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

type sendCodeRequest struct {
	MobileNumber string `json:"mobile_number" validate:"required_without=Email,omitempty,e164"`
	Email        string `json:"email" validate:"required_without=MobileNumber,omitempty,email"`
}

type verifyCodeRequest struct {
	MobileNumber string `json:"mobile_number" validate:"required_without=Email,omitempty,e164"`
	Email        string `json:"email" validate:"required_without=MobileNumber,omitempty,email"`
	OTPCode      string `json:"otp_code" validate:"required,numeric"`
}

type adminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// SendOTP issues a one-time code to the given mobile number or email.
func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req sendCodeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	identifier := domain.Identifier{MobileNumber: req.MobileNumber, Email: req.Email}
	if err := h.authService.RequestCode(r.Context(), identifier); err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.StatusResponse{Status: "success", Message: "OTP sent successfully."})
}

// VerifyOTP exchanges a valid one-time code for a user session token.
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyCodeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	identifier := domain.Identifier{MobileNumber: req.MobileNumber, Email: req.Email}
	accessToken, err := h.authService.VerifyCode(r.Context(), identifier, req.OTPCode)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, tokenResponse{AccessToken: accessToken, TokenType: "bearer"})
}

func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	accessToken, err := h.authService.AdminLogin(r.Context(), req.Username, req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, tokenResponse{AccessToken: accessToken, TokenType: "bearer"})
}
