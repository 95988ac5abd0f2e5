// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pdiddy/paper-drafter/internal/export"
	"github.com/pdiddy/paper-drafter/internal/references"
	"github.com/pdiddy/paper-drafter/pkg/types"
)

// syncResponse reports a References synchronisation pass.
type syncResponse struct {
	Action     references.Action `json:"action"`
	BlockID    string            `json:"block_id,omitempty"`
	References []types.Reference `json:"references"`
}

func newSyncResponse(res references.Result) syncResponse {
	refs := res.References
	if refs == nil {
		refs = []types.Reference{}
	}
	return syncResponse{Action: res.Action, BlockID: res.BlockID, References: refs}
}

// sectionResponse is returned by routes that change a section body.
type sectionResponse struct {
	Section    types.TextBlock `json:"section"`
	References syncResponse    `json:"references"`
}

func (s *Server) sectionResult(w http.ResponseWriter, r *http.Request, id string, res references.Result) {
	b, err := s.editor.Section(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, sectionResponse{Section: b, References: newSyncResponse(res)})
}

// GetPaper handles GET /paper.
func (s *Server) GetPaper(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, http.StatusOK, s.editor.Paper())
}

// UpdatePaper handles PATCH /paper. Only fields present in the body change.
func (s *Server) UpdatePaper(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title   *string `json:"title"`
		Authors *string `json:"authors"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	p := s.editor.Paper()
	if req.Title != nil {
		p.Title = *req.Title
	}
	if req.Authors != nil {
		p.Authors = *req.Authors
	}
	s.editor.SetMetadata(p.Title, p.Authors)
	writeJSON(w, s.logger, http.StatusOK, s.editor.Paper())
}

// ApplyStructure handles POST /paper/structure.
func (s *Server) ApplyStructure(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, http.StatusOK, s.editor.ApplyStandardStructure())
}

// AddSection handles POST /sections.
func (s *Server) AddSection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeJSON(w, s.logger, http.StatusBadRequest, errResponse{Error: "title is required"})
		return
	}
	writeJSON(w, s.logger, http.StatusCreated, s.editor.AddSection(req.Title, req.Description))
}

// GetSection handles GET /sections/{id}.
func (s *Server) GetSection(w http.ResponseWriter, r *http.Request) {
	b, err := s.editor.Section(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, b)
}

// UpdateSection handles PATCH /sections/{id}. The body is not editable here.
func (s *Server) UpdateSection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title        *string            `json:"title"`
		Description  *string            `json:"description"`
		BulletPoints []string           `json:"bullet_points"`
		Subsections  []types.Subsection `json:"subsections"`
		Figures      []types.Figure     `json:"figures"`
		MinWordCount *int               `json:"min_word_count"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	b, err := s.editor.UpdateSection(chi.URLParam(r, "id"), func(b *types.TextBlock) {
		if req.Title != nil {
			b.Title = *req.Title
		}
		if req.Description != nil {
			b.Description = *req.Description
		}
		if req.BulletPoints != nil {
			b.BulletPoints = req.BulletPoints
		}
		if req.Subsections != nil {
			b.Subsections = req.Subsections
		}
		if req.Figures != nil {
			b.Figures = req.Figures
		}
		if req.MinWordCount != nil {
			b.MinWordCount = *req.MinWordCount
		}
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, b)
}

// DeleteSection handles DELETE /sections/{id}.
func (s *Server) DeleteSection(w http.ResponseWriter, r *http.Request) {
	res, err := s.editor.DeleteSection(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, newSyncResponse(res))
}

// SetBody handles PUT /sections/{id}/body.
func (s *Server) SetBody(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Body string `json:"body"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")
	res, err := s.editor.SetBody(id, req.Body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.sectionResult(w, r, id, res)
}

// MoveSection handles POST /sections/{id}/move.
func (s *Server) MoveSection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		To int `json:"to"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	res, err := s.editor.MoveSection(chi.URLParam(r, "id"), req.To)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, newSyncResponse(res))
}

// GenerateSection handles POST /sections/{id}/generate.
func (s *Server) GenerateSection(w http.ResponseWriter, r *http.Request) {
	if !s.requireDrafter(w) {
		return
	}
	id := chi.URLParam(r, "id")
	res, err := s.drafter.DraftSection(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.sectionResult(w, r, id, res)
}

// RewriteSection handles POST /sections/{id}/rewrite.
func (s *Server) RewriteSection(w http.ResponseWriter, r *http.Request) {
	if !s.requireDrafter(w) {
		return
	}
	var req struct {
		Selected     string `json:"selected"`
		Instructions string `json:"instructions"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")
	_, res, err := s.drafter.Rewrite(r.Context(), id, req.Selected, req.Instructions)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.sectionResult(w, r, id, res)
}

func (s *Server) requireDrafter(w http.ResponseWriter) bool {
	if s.drafter == nil {
		writeJSON(w, s.logger, http.StatusServiceUnavailable, errResponse{Error: "text generation is not configured"})
		return false
	}
	return true
}

// GetReferences handles GET /references.
func (s *Server) GetReferences(w http.ResponseWriter, r *http.Request) {
	refs := s.editor.References()
	if refs == nil {
		refs = []types.Reference{}
	}
	writeJSON(w, s.logger, http.StatusOK, map[string]any{
		"state":      references.StateOf(s.editor.Blocks()).String(),
		"references": refs,
	})
}

// SyncReferences handles POST /references/sync.
func (s *Server) SyncReferences(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, http.StatusOK, newSyncResponse(s.editor.EnsureReferences()))
}

// ListLibrary handles GET /library. The optional q parameter filters.
func (s *Server) ListLibrary(w http.ResponseWriter, r *http.Request) {
	items := s.library.Search(r.URL.Query().Get("q"))
	if items == nil {
		items = []types.LibraryCitation{}
	}
	writeJSON(w, s.logger, http.StatusOK, items)
}

// AddCitation handles POST /library.
func (s *Server) AddCitation(w http.ResponseWriter, r *http.Request) {
	var c types.LibraryCitation
	if !s.decode(w, r, &c) {
		return
	}
	added, err := s.library.Add(c)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, s.logger, http.StatusCreated, added)
}

// DeleteCitation handles DELETE /library/{id}.
func (s *Server) DeleteCitation(w http.ResponseWriter, r *http.Request) {
	if err := s.library.Delete(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportLaTeX handles GET /export/latex.
func (s *Server) ExportLaTeX(w http.ResponseWriter, r *http.Request) {
	tex, err := export.LaTeX(s.editor.Paper())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="paper.tex"`)
	writeText(w, "application/x-tex; charset=utf-8", tex)
}

// ExportBibTeX handles GET /export/bibtex.
func (s *Server) ExportBibTeX(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Disposition", `attachment; filename="references.bib"`)
	writeText(w, "application/x-bibtex; charset=utf-8", export.BibTeX(s.editor.References(), s.library.All()))
}

// ExportJSON handles GET /export/json.
func (s *Server) ExportJSON(w http.ResponseWriter, r *http.Request) {
	data, err := export.JSON(s.editor.Paper())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeText(w, "application/json; charset=utf-8", string(data))
}
