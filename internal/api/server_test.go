package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"turmoil/internal/auth"
	"turmoil/internal/config"
	"turmoil/internal/game"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.APIConfig{Addr: ":0"}
	tokens := auth.NewTokens("test-secret", time.Hour)
	return New(cfg, nil, tokens, nil)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status=%d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: status=%d", rec.Code)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
	}
	for _, tc := range tests {
		if got := bearerToken(tc.header); got != tc.want {
			t.Fatalf("header=%q got=%q want=%q", tc.header, got, tc.want)
		}
	}
}

func TestWriteDomainError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{game.ErrInvalidRequest, http.StatusBadRequest},
		{game.ErrInsufficientGold, http.StatusBadRequest},
		{game.ErrInsufficientHealth, http.StatusBadRequest},
		{game.ErrUnauthorized, http.StatusForbidden},
		{game.ErrNotOwner, http.StatusForbidden},
		{game.ErrUserNotFound, http.StatusNotFound},
		{game.ErrOfferNotFound, http.StatusNotFound},
		{game.ErrNewspaperNotFound, http.StatusNotFound},
		{game.ErrAlreadyPerformedToday, http.StatusConflict},
		{game.ErrAlreadyPublisher, http.StatusConflict},
		{game.ErrDailiesIncomplete, http.StatusConflict},
		{game.ErrTxConflict, http.StatusConflict},
	}
	for _, tc := range tests {
		rec := httptest.NewRecorder()
		writeDomainError(rec, tc.err)
		if rec.Code != tc.want {
			t.Fatalf("err=%v status=%d want=%d", tc.err, rec.Code, tc.want)
		}
	}
}
