package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"community-grocery-go/internal/auth"
	"community-grocery-go/internal/config"
	"community-grocery-go/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingEnsurer struct {
	ids []string
}

func (e *recordingEnsurer) EnsureUser(ctx context.Context, userID, email, name string) error {
	e.ids = append(e.ids, userID)
	return nil
}

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		_, _ = w.Write([]byte(user.ID))
	})
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	tokens := auth.NewTokens("secret", time.Hour)
	signed, _, err := tokens.Issue("user-1")
	require.NoError(t, err)

	mw := NewJWTAuth(config.AuthConfig{}, tokens, nil, logger.Discard())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()

	mw.Middleware(echoUser()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", rec.Body.String())
}

func TestJWTAuthRejectsMissingAndBadTokens(t *testing.T) {
	mw := NewJWTAuth(config.AuthConfig{}, auth.NewTokens("secret", time.Hour), nil, logger.Discard())

	cases := map[string]string{
		"":                 "missing_token",
		"Token abc":        "missing_token",
		"Bearer not-a-jwt": "invalid_token",
	}
	for header, code := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()

		mw.Middleware(echoUser()).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
		body := decodeError(t, rec)
		assert.Equal(t, code, body["error"], header)
		assert.Equal(t, "unauthorized", body["message"], header)
	}
}

func TestJWTAuthSkipInjectsMockUser(t *testing.T) {
	ensurer := &recordingEnsurer{}
	mw := NewJWTAuth(config.AuthConfig{SkipAuth: true, MockUserID: " mock-1 "}, nil, ensurer, logger.Discard())
	rec := httptest.NewRecorder()

	mw.Middleware(echoUser()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "mock-1", rec.Body.String())
	assert.Equal(t, []string{"mock-1"}, ensurer.ids)
}

func TestJWTAuthSkipWithoutMockUser(t *testing.T) {
	mw := NewJWTAuth(config.AuthConfig{SkipAuth: true}, nil, nil, logger.Discard())
	rec := httptest.NewRecorder()

	mw.Middleware(echoUser()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "auth_not_configured", decodeError(t, rec)["error"])
}

func TestCORS(t *testing.T) {
	handler := NewCORS([]string{"http://app.local"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://app.local")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://app.local", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.local")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
