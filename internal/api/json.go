// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-drafter/internal/document"
	"github.com/pdiddy/paper-drafter/internal/generate"
	"github.com/pdiddy/paper-drafter/internal/library"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 10 << 20

type errResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("json encode failed", zap.Error(err))
	}
}

func writeText(w http.ResponseWriter, contentType, body string) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, s.logger, http.StatusBadRequest, errResponse{Error: "invalid JSON body"})
		return false
	}
	return true
}

// writeError maps domain errors to status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validation.Errors
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, document.ErrSectionNotFound),
		errors.Is(err, library.ErrNotFound),
		errors.Is(err, generate.ErrFigureNotFound):
		status = http.StatusNotFound
	case errors.Is(err, document.ErrSelectionNotFound),
		errors.Is(err, generate.ErrReferencesBlock),
		errors.Is(err, generate.ErrNoAbstractSection),
		errors.As(err, &verrs):
		status = http.StatusBadRequest
	case errors.Is(err, generate.ErrEmptyResponse):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
		writeJSON(w, s.logger, status, errResponse{Error: "internal error"})
		return
	}
	writeJSON(w, s.logger, status, errResponse{Error: err.Error()})
}

// requestLogger logs one line per request.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
