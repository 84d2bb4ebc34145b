package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/konsumhq/konsum/pkg/config"
	"github.com/konsumhq/konsum/pkg/logger"
	"github.com/konsumhq/konsum/pkg/session"
)

type loggingResponseWriter struct {
	http.ResponseWriter
	StatusCode int
}

func NewLoggingResponseWriter(w http.ResponseWriter) *loggingResponseWriter {
	return &loggingResponseWriter{w, http.StatusOK}
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.StatusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if f, ok := lrw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()

		lrw := NewLoggingResponseWriter(w)
		next.ServeHTTP(lrw, r)

		logf := logger.Infof
		if lrw.StatusCode < http.StatusBadRequest {
			logf = logger.Debugf
		}

		logf(
			"method=%s status=%d duration=%s request=%s",
			r.Method,
			lrw.StatusCode,
			time.Since(startTime).String(),
			r.RequestURI,
		)
	})
}

// RequireValidToken is the authentication gate for restricted routes. On
// success the decoded identity rides the request context; on failure the
// chain stops here with a 401.
func RequireValidToken(cfg *config.Config, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := session.Parse(cfg, r.Header.Get("Authorization"))
		if err != nil {
			logger.Error(errors.Wrapf(err, "request %q", r.RequestURI))
			JSON(w, http.StatusUnauthorized, MessageResponse{Message: "Authentication failed"})
			return
		}

		next(w, session.ContextSetIdentity(r, identity))
	}
}

// RequireJSONBody is the body-decode stage for routes that carry a body.
// A body that is present but not valid JSON ends the request with a 400
// before any entitlement check or handler runs; an empty body passes
// through, each handler decides whether that is acceptable.
func RequireJSONBody(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			JSON(w, http.StatusBadRequest, MessageResponse{Message: "malformed request body"})
			return
		}

		if len(bytes.TrimSpace(body)) > 0 && !json.Valid(body) {
			JSON(w, http.StatusBadRequest, MessageResponse{Message: "malformed request body"})
			return
		}

		r.Body = io.NopCloser(bytes.NewReader(body))
		next(w, r)
	}
}

func setNoCacheHeaders(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
}
