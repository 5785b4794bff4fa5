package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eventify/internal/auth"
	"eventify/internal/database/dbtest"
	"eventify/internal/events"
	"eventify/internal/events/db"
	"eventify/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("server-test-secret")

func newTestRouter(t *testing.T) http.Handler {
	store := &db.DB{Bun: dbtest.NewSQLiteDB(t)}
	log := logger.Discard()
	return NewRouter(Deps{
		Service:        events.NewEventService(store, nil, log),
		Store:          store,
		Verifier:       auth.NewJWTVerifier(secret, ""),
		Logger:         log,
		AllowedOrigins: []string{"http://localhost:5173"},
		PublicBaseURL:  "http://localhost:5173",
	})
}

func TestHealthAndPublicReads(t *testing.T) {
	r := newTestRouter(t)

	for _, path := range []string{"/healthz", "/api/events", "/api/categories"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestMeRequiresToken(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	tok, err := auth.IssueToken(secret, "", auth.Identity{Subject: "U1", Name: "Ada"}, time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var id auth.Identity
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &id))
	assert.Equal(t, "U1", id.Subject)
	assert.Equal(t, "Ada", id.Name)
}

func TestLogoutWithoutRevocationStore(t *testing.T) {
	r := newTestRouter(t)
	tok, err := auth.IssueToken(secret, "", auth.Identity{Subject: "U1"}, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/events", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/events", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

type deadlineVerifier struct {
	deadline time.Time
	ok       bool
}

func (v *deadlineVerifier) Verify(ctx context.Context, _ string) (auth.Identity, error) {
	v.deadline, v.ok = ctx.Deadline()
	return auth.Identity{Subject: "U1"}, nil
}

func TestRequestTimeoutAppliedToHandlers(t *testing.T) {
	store := &db.DB{Bun: dbtest.NewSQLiteDB(t)}
	log := logger.Discard()

	for _, tc := range []struct {
		name    string
		timeout time.Duration
		want    time.Duration
	}{
		{"configured", 2 * time.Second, 2 * time.Second},
		{"default", 0, DefaultRequestTimeout},
	} {
		t.Run(tc.name, func(t *testing.T) {
			v := &deadlineVerifier{}
			r := NewRouter(Deps{
				Service:        events.NewEventService(store, nil, log),
				Store:          store,
				Verifier:       v,
				Logger:         log,
				RequestTimeout: tc.timeout,
			})

			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			req.Header.Set("Authorization", "Bearer anything")
			start := time.Now()
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			require.True(t, v.ok)
			assert.WithinDuration(t, start.Add(tc.want), v.deadline, time.Second)
		})
	}
}
