package handlers

import (
	"net/http"

	"conceptcraft/internal/auth"
	"conceptcraft/internal/wizard"
	"conceptcraft/middleware"
)

type AuthHandler struct {
	Auth *auth.Service
	Orch *wizard.Orchestrator
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User  *auth.User `json:"user"`
	Token string     `json:"token"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req credentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, token, err := h.Auth.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, sessionResponse{User: user, Token: token})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req credentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, token, err := h.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse{User: user, Token: token})
}

// Logout tears the wizard session down. The token itself simply expires;
// state is rebuilt from the store on the next login.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	userID := middleware.UserID(r)
	h.Orch.End(userID)
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}
