package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"mealmate/internal/session"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type contextKey string

const sessionKey contextKey = "session"

// requestLogger logs every request and feeds the HTTP instruments. The
// route label is the chi pattern so ids do not explode its cardinality.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		if s.services.Collector != nil {
			s.services.Collector.ObserveHTTP(r.Method, route, status, elapsed)
		}

		s.logger.Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", elapsed),
			zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			zap.String("remote_addr", r.RemoteAddr),
		)
	})
}

// sessionAuth resolves the bearer token to a session and loads its state.
// Expired state behind a still valid token starts over empty.
func (s *Server) sessionAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			s.writeUnauthorized(w, "missing bearer token")
			return
		}

		id, err := s.services.Tokens.Verify(strings.TrimSpace(token))
		if err != nil {
			s.writeUnauthorized(w, "invalid or expired session token")
			return
		}

		st, err := session.Load(r.Context(), s.services.Sessions, id)
		if err != nil {
			s.logger.Error("failed to load session", zap.String("session_id", id), zap.Error(err))
			s.writeError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), sessionKey, st)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(ctx context.Context) *session.State {
	st, _ := ctx.Value(sessionKey).(*session.State)
	return st
}

func (s *Server) saveSession(ctx context.Context, st *session.State) error {
	st.UpdatedAt = time.Now().UTC()
	return s.services.Sessions.Save(ctx, st)
}
