package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/freightdesk/internal/http/respond"
	"github.com/MrJamesThe3rd/freightdesk/internal/idempotency"
)

const IdempotencyHeader = "Idempotency-Key"

// Idempotency rejects a replayed request carrying the same Idempotency-Key
// while the first one is in flight or after it succeeded. Failed requests
// release the key so the client can retry. Requests without the header pass
// through, and so do all requests when the store is unreachable.
func Idempotency(store idempotency.Store, ttl time.Duration, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get(IdempotencyHeader)
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Method + " " + r.URL.Path + " " + header

			acquired, err := store.Acquire(r.Context(), key, ttl)
			if err != nil {
				log.Warn("idempotency store unavailable", zap.String("key", key), zap.Error(err))
				next.ServeHTTP(w, r)

				return
			}

			if !acquired {
				respond.Fail(w, http.StatusConflict, respond.CodeDuplicateRequest, "request with this idempotency key was already processed")
				return
			}

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			if ww.Status() >= http.StatusBadRequest {
				if err := store.Release(context.WithoutCancel(r.Context()), key); err != nil {
					log.Warn("releasing idempotency key", zap.String("key", key), zap.Error(err))
				}
			}
		})
	}
}
