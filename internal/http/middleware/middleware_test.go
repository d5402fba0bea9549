package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/MrJamesThe3rd/freightdesk/internal/http/middleware"
	"github.com/MrJamesThe3rd/freightdesk/internal/idempotency"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestAuthenticate(t *testing.T) {
	auth := middleware.NewAuthenticator("s3cret", false, zap.NewNop())
	other := middleware.NewAuthenticator("other", false, zap.NewNop())

	valid, err := auth.Issue("user-1", middleware.RoleAdmin, time.Hour)
	require.NoError(t, err)

	expired, err := auth.Issue("user-1", middleware.RoleAdmin, -time.Minute)
	require.NoError(t, err)

	foreign, err := other.Issue("user-1", middleware.RoleAdmin, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid token", "Bearer " + valid, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Token " + valid, http.StatusUnauthorized},
		{"expired", "Bearer " + expired, http.StatusUnauthorized},
		{"wrong secret", "Bearer " + foreign, http.StatusUnauthorized},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sub string

			h := auth.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				claims, ok := middleware.ClaimsFrom(r.Context())
				require.True(t, ok)

				sub = claims.Subject

				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)

			if tt.want == http.StatusOK {
				assert.Equal(t, "user-1", sub)
			}
		})
	}
}

func TestAuthenticate_Disabled(t *testing.T) {
	auth := middleware.NewAuthenticator("", true, zap.NewNop())

	var role middleware.Role

	h := auth.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.ClaimsFrom(r.Context())
		role = claims.Role
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, middleware.RoleAdmin, role)
}

func TestIssue_InvalidRole(t *testing.T) {
	auth := middleware.NewAuthenticator("s3cret", false, zap.NewNop())

	_, err := auth.Issue("user-1", middleware.Role("root"), time.Hour)
	require.Error(t, err)
}

func TestRequireRole(t *testing.T) {
	h := middleware.RequireRole(middleware.RoleAdmin, middleware.RoleContractor)(http.HandlerFunc(okHandler))

	tests := []struct {
		name   string
		claims *middleware.Claims
		want   int
	}{
		{"admin allowed", &middleware.Claims{Role: middleware.RoleAdmin}, http.StatusOK},
		{"contractor allowed", &middleware.Claims{Role: middleware.RoleContractor}, http.StatusOK},
		{"driver forbidden", &middleware.Claims{Role: middleware.RoleDriver}, http.StatusForbidden},
		{"no claims", nil, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.claims != nil {
				req = req.WithContext(middleware.WithClaims(req.Context(), tt.claims))
			}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestIdempotency(t *testing.T) {
	store := idempotency.NewMemory()

	var calls atomic.Int32

	status := http.StatusCreated
	h := middleware.Idempotency(store, time.Hour, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(status)
	}))

	send := func(key string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices/1/payments", nil)
		if key != "" {
			req.Header.Set(middleware.IdempotencyHeader, key)
		}

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		return rec.Code
	}

	assert.Equal(t, http.StatusCreated, send("k1"))
	assert.Equal(t, http.StatusConflict, send("k1"))
	assert.Equal(t, int32(1), calls.Load())

	// Requests without a key are never de-duplicated.
	assert.Equal(t, http.StatusCreated, send(""))
	assert.Equal(t, http.StatusCreated, send(""))

	// A failed request frees its key.
	status = http.StatusUnprocessableEntity
	assert.Equal(t, http.StatusUnprocessableEntity, send("k2"))

	status = http.StatusCreated
	assert.Equal(t, http.StatusCreated, send("k2"))
}

type brokenStore struct{}

func (brokenStore) Acquire(context.Context, string, time.Duration) (bool, error) {
	return false, errors.New("redis down")
}

func (brokenStore) Release(context.Context, string) error { return nil }

func TestIdempotency_StoreDownPassesThrough(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)

	h := middleware.Idempotency(brokenStore{}, time.Hour, zap.New(core))(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set(middleware.IdempotencyHeader, "k1")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, logs.FilterMessage("idempotency store unavailable").Len())
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	h := middleware.RequestLogger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/bookings/x", nil))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, int64(http.StatusNotFound), entries[0].ContextMap()["status"])
	assert.Equal(t, "/api/v1/bookings/x", entries[0].ContextMap()["path"])
}
