package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"chatrelay-backend/internal/middleware"
	"chatrelay-backend/internal/models"
	"chatrelay-backend/internal/services"
)

type AuthHandler struct {
	authService  *services.AuthService
	sessions     *middleware.SessionAuth
	secureCookie bool
}

func NewAuthHandler(authService *services.AuthService, sessions *middleware.SessionAuth, secureCookie bool) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions, secureCookie: secureCookie}
}

func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.GoogleLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid request body"))
		return
	}

	token, session, err := h.authService.GoogleLogin(r.Context(), req.Credential)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	http.SetCookie(w, h.sessionCookie(token, session.Expires))
	writeJSON(w, http.StatusOK, session)
}

// Session returns the current session, or an empty object when signed out.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	if h.sessions == nil {
		writeJSON(w, http.StatusOK, struct{}{})
		return
	}

	session, err := h.sessions.SessionFromRequest(r)
	if err != nil {
		writeJSON(w, http.StatusOK, struct{}{})
		return
	}

	writeJSON(w, http.StatusOK, session)
}

func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	cookie := h.sessionCookie("", time.Unix(0, 0))
	cookie.MaxAge = -1
	http.SetCookie(w, cookie)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Signed out"})
}

func (h *AuthHandler) sessionCookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}
