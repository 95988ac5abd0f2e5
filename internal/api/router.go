// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package api serves a paper being drafted over a small JSON HTTP API.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-drafter/internal/document"
	"github.com/pdiddy/paper-drafter/internal/generate"
	"github.com/pdiddy/paper-drafter/internal/library"
)

// Server holds the state behind the API routes.
type Server struct {
	editor  *document.Editor
	drafter *generate.Drafter
	library *library.Library
	logger  *zap.Logger
}

// NewServer creates a Server. drafter may be nil when no API key is
// configured; generation routes then answer 503.
func NewServer(editor *document.Editor, drafter *generate.Drafter, lib *library.Library, logger *zap.Logger) *Server {
	if lib == nil {
		lib = library.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{editor: editor, drafter: drafter, library: lib, logger: logger}
}

// Router returns a chi router with every route mounted.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Get("/paper", s.GetPaper)
	r.Patch("/paper", s.UpdatePaper)
	r.Post("/paper/structure", s.ApplyStructure)

	r.Post("/sections", s.AddSection)
	r.Get("/sections/{id}", s.GetSection)
	r.Patch("/sections/{id}", s.UpdateSection)
	r.Delete("/sections/{id}", s.DeleteSection)
	r.Put("/sections/{id}/body", s.SetBody)
	r.Post("/sections/{id}/move", s.MoveSection)
	r.Post("/sections/{id}/generate", s.GenerateSection)
	r.Post("/sections/{id}/rewrite", s.RewriteSection)

	r.Get("/references", s.GetReferences)
	r.Post("/references/sync", s.SyncReferences)

	r.Get("/library", s.ListLibrary)
	r.Post("/library", s.AddCitation)
	r.Delete("/library/{id}", s.DeleteCitation)

	r.Get("/export/latex", s.ExportLaTeX)
	r.Get("/export/bibtex", s.ExportBibTeX)
	r.Get("/export/json", s.ExportJSON)

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}
