package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	adminauthsvc "github.com/raulshma/chromatica/internal/services/adminauth"
)

func newAuthService(t *testing.T) *adminauthsvc.Service {
	t.Helper()

	svc, err := adminauthsvc.NewService("admin", "hunter2", "api-token", "secret", time.Hour)
	if err != nil {
		t.Fatalf("new auth service: %v", err)
	}
	return svc
}

func TestLoginSetsSessionCookie(t *testing.T) {
	handler := NewAuthHandler(newAuthService(t), false)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"admin","password":"hunter2"}`))
	rec := httptest.NewRecorder()
	handler.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d, body %s", rec.Code, rec.Body.String())
	}

	cookies := rec.Result().Cookies()
	var session *http.Cookie
	for _, c := range cookies {
		if c.Name == SessionCookieName {
			session = c
		}
	}
	if session == nil {
		t.Fatal("session cookie not set")
	}
	if session.Value == "" || !session.HttpOnly {
		t.Fatalf("unexpected cookie: %+v", session)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	handler := NewAuthHandler(newAuthService(t), false)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"admin","password":"wrong"}`))
	rec := httptest.NewRecorder()
	handler.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("no cookie may be set on failed login")
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	handler := NewAuthHandler(newAuthService(t), false)

	rec := httptest.NewRecorder()
	handler.Logout(rec, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != SessionCookieName || cookies[0].MaxAge >= 0 {
		t.Fatalf("expected expired session cookie, got %+v", cookies)
	}
}
