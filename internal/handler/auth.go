package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/notedesk/notedesk/internal/auth"
	"github.com/notedesk/notedesk/internal/handler/dto"
	"github.com/notedesk/notedesk/internal/middleware"
	"github.com/notedesk/notedesk/internal/model"
	"github.com/notedesk/notedesk/internal/service"
)

// Accounts performs credential operations inside the request tenant.
type Accounts interface {
	Login(ctx context.Context, input service.LoginInput) (*service.AuthResult, error)
	Register(ctx context.Context, input service.RegisterUserInput) (*service.AuthResult, error)
	CurrentUser(ctx context.Context, principal *model.AuthContext) (*model.User, error)
	Logout(ctx context.Context, plaintext string, principal *model.AuthContext) error
}

// AuthHandler handles login, registration and session endpoints.
type AuthHandler struct {
	accounts Accounts
	errors   *Errors
	logger   *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(accounts Accounts, errs *Errors, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, errors: errs, logger: logger}
}

// Login handles POST /login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errors.BadJSON(w)
		return
	}

	result, err := h.accounts.Login(r.Context(), service.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		Abilities: req.Abilities,
	})
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AuthResponse{
		User:  dto.ToUserResponse(result.User),
		Token: result.Token,
	})
}

// Register handles POST /register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterUserRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errors.BadJSON(w)
		return
	}

	result, err := h.accounts.Register(r.Context(), service.RegisterUserInput{
		Name:                 req.Name,
		Email:                req.Email,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
	})
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	h.logger.Info("user_registered",
		"user_id", result.User.ID,
		"tenant_id", result.User.TenantID,
	)

	writeJSON(w, http.StatusCreated, dto.AuthResponse{
		User:  dto.ToUserResponse(result.User),
		Token: result.Token,
	})
}

// Me handles GET /user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.accounts.CurrentUser(r.Context(), auth.FromContext(r.Context()))
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// Logout handles POST /logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	principal := auth.FromContext(r.Context())
	if err := h.accounts.Logout(r.Context(), middleware.BearerToken(r), principal); err != nil {
		h.errors.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Logged out"})
}
