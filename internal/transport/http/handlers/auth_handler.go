package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	adminauthsvc "github.com/raulshma/chromatica/internal/services/adminauth"
	"github.com/raulshma/chromatica/internal/transport/http/dto"
	httperrors "github.com/raulshma/chromatica/internal/transport/http/errors"
)

// SessionCookieName is the browser session cookie set on login.
const SessionCookieName = "admin_session"

type AuthHandler struct {
	service       *adminauthsvc.Service
	secureCookies bool
}

func NewAuthHandler(service *adminauthsvc.Service, secureCookies bool) *AuthHandler {
	return &AuthHandler{service: service, secureCookies: secureCookies}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	var req dto.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	token, err := h.service.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, adminauthsvc.ErrInvalidCredentials) {
			writeUnauthorized(w, "UNAUTHORIZED", "invalid credentials")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "login failed")
		return
	}

	expires := time.Now().Add(h.service.TTL())
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	httperrors.Write(w, http.StatusOK, dto.LoginResponse{OK: true, ExpiresAt: expires.UTC()})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	httperrors.Write(w, http.StatusOK, dto.LogoutResponse{OK: true})
}

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: code, Message: message})
}

func writeUnauthorized(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{Code: code, Message: message})
}

func writeNotFound(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusNotFound, httperrors.APIError{Code: code, Message: message})
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{Code: code, Message: message})
}
