package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/tripkit/internal/auth"
)

type UserHandler struct {
	credentials *auth.Credentials
	tokens      *auth.TokenManager
	logger      *slog.Logger
}

func NewUserHandler(c *auth.Credentials, tm *auth.TokenManager, logger *slog.Logger) *UserHandler {
	return &UserHandler{credentials: c, tokens: tm, logger: logger}
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type passwordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	u, err := h.credentials.Register(r.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.logger.Info("user registered", "user_id", u.ID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "user registered",
		"user":    toUserResponse(u),
	})
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	u, err := h.credentials.Verify(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	token, err := h.tokens.Issue(u.ID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access_token": token})
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.credentials.User(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	userID := auth.UserID(r.Context())
	if err := h.credentials.SetPassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.logger.Info("password changed", "user_id", userID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}
