// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package document holds the in-memory paper being drafted and is the only
// writer of its block collection. Every mutation that can change the set of
// citation markers resynchronises the References block before the lock is
// released, so readers never observe a stale reference list.
package document

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-drafter/internal/references"
	"github.com/pdiddy/paper-drafter/pkg/types"
)

// NoContent is returned by ContextContent when no section has a body yet.
const NoContent = "No content available yet."

var (
	// ErrSectionNotFound is returned when an id matches no block.
	ErrSectionNotFound = errors.New("section not found")

	// ErrSelectionNotFound is returned when a rewrite's selected text does
	// not occur in the block body.
	ErrSelectionNotFound = errors.New("selected text not found in section")
)

// standardStructure is the section template offered for new papers.
var standardStructure = []struct{ title, description string }{
	{"Abstract", "Brief summary of the research, methodology, and key findings"},
	{"Introduction", "Background, motivation, and research objectives"},
	{"Related Work", "Review of existing literature and previous research"},
	{"Methodology", "Research methods, experimental setup, and approach"},
	{"Results", "Experimental results and findings"},
	{"Discussion", "Interpretation of results and implications"},
	{"Conclusion", "Summary of contributions and future work"},
}

// Editor owns a Paper. It is safe for concurrent use; concurrent generation
// completions are serialised by the editor's lock.
type Editor struct {
	mu     sync.Mutex
	paper  types.Paper
	syncer *references.Synchronizer
	newID  func() string
	logger *zap.Logger
}

// Option configures an Editor.
type Option func(*Editor)

// WithSynchronizer sets the References synchronizer.
func WithSynchronizer(s *references.Synchronizer) Option {
	return func(e *Editor) {
		e.syncer = s
	}
}

// WithIDGenerator replaces the generator for new section ids.
func WithIDGenerator(fn func() string) Option {
	return func(e *Editor) {
		e.newID = fn
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Editor) {
		e.logger = l
	}
}

// NewEditor creates an Editor over a copy of paper. The copy is synchronised
// once so a paper loaded from storage starts out consistent.
func NewEditor(paper types.Paper, opts ...Option) *Editor {
	e := &Editor{
		paper: paper.Clone(),
		newID: func() string {
			return "section-" + uuid.NewString()
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.syncer == nil {
		e.syncer = references.New(references.WithLogger(e.logger))
	}
	e.resync()
	return e
}

// Paper returns a snapshot of the paper.
func (e *Editor) Paper() types.Paper {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paper.Clone()
}

// Blocks returns a snapshot of the block collection.
func (e *Editor) Blocks() []types.TextBlock {
	e.mu.Lock()
	defer e.mu.Unlock()
	return types.CloneBlocks(e.paper.Blocks)
}

// Section returns a snapshot of one block.
func (e *Editor) Section(id string) (types.TextBlock, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := e.indexOf(id)
	if i < 0 {
		return types.TextBlock{}, fmt.Errorf("%w: %s", ErrSectionNotFound, id)
	}
	return e.paper.Blocks[i].Clone(), nil
}

// SetMetadata sets the paper title and author line.
func (e *Editor) SetMetadata(title, authors string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paper.Title = title
	e.paper.Authors = authors
}

// AddSection appends a new empty section and returns it. A section titled
// like "References" becomes the References block, so the synchronizer
// adopts it instead of appending another.
func (e *Editor) AddSection(title, description string) types.TextBlock {
	e.mu.Lock()
	defer e.mu.Unlock()
	kind := types.KindStandard
	if strings.Contains(strings.ToLower(title), "reference") {
		kind = types.KindReferences
	}
	b := types.TextBlock{
		ID:          e.newID(),
		Title:       title,
		Kind:        kind,
		Description: description,
	}
	e.paper.Blocks = append(e.paper.Blocks, b)
	return b.Clone()
}

// ApplyStandardStructure replaces the block collection with the standard
// seven-section template.
func (e *Editor) ApplyStandardStructure() []types.TextBlock {
	e.mu.Lock()
	defer e.mu.Unlock()
	blocks := make([]types.TextBlock, len(standardStructure))
	for i, s := range standardStructure {
		blocks[i] = types.TextBlock{
			ID:          e.newID(),
			Title:       s.title,
			Kind:        types.KindStandard,
			Description: s.description,
		}
	}
	e.paper.Blocks = blocks
	return types.CloneBlocks(blocks)
}

// UpdateSection applies a structural edit (title, description, bullet
// points, subsections, figures) to one block. Body, id and kind changes made
// by fn are discarded; use SetBody for content.
func (e *Editor) UpdateSection(id string, fn func(*types.TextBlock)) (types.TextBlock, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := e.indexOf(id)
	if i < 0 {
		return types.TextBlock{}, fmt.Errorf("%w: %s", ErrSectionNotFound, id)
	}
	b := e.paper.Blocks[i].Clone()
	fn(&b)
	b.ID = e.paper.Blocks[i].ID
	b.Kind = e.paper.Blocks[i].Kind
	b.Body = e.paper.Blocks[i].Body
	e.paper.Blocks[i] = b
	return b.Clone(), nil
}

// SetBody replaces a block's body and resynchronises the References block.
func (e *Editor) SetBody(id, body string) (references.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := e.indexOf(id)
	if i < 0 {
		return references.Result{}, fmt.Errorf("%w: %s", ErrSectionNotFound, id)
	}
	e.paper.Blocks[i].Body = body
	return e.resync(), nil
}

// ApplyRewrite replaces the first occurrence of selected in a block's body
// with replacement and resynchronises.
func (e *Editor) ApplyRewrite(id, selected, replacement string) (references.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := e.indexOf(id)
	if i < 0 {
		return references.Result{}, fmt.Errorf("%w: %s", ErrSectionNotFound, id)
	}
	body := e.paper.Blocks[i].Body
	if selected == "" || !strings.Contains(body, selected) {
		return references.Result{}, ErrSelectionNotFound
	}
	e.paper.Blocks[i].Body = strings.Replace(body, selected, replacement, 1)
	return e.resync(), nil
}

// DeleteSection removes a block. Deleting may drop markers, so the
// References block is resynchronised.
func (e *Editor) DeleteSection(id string) (references.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := e.indexOf(id)
	if i < 0 {
		return references.Result{}, fmt.Errorf("%w: %s", ErrSectionNotFound, id)
	}
	e.paper.Blocks = append(e.paper.Blocks[:i], e.paper.Blocks[i+1:]...)
	return e.resync(), nil
}

// MoveSection moves a block to position to (clamped to the collection).
// Reordering changes first-seen numbering, so it resynchronises.
func (e *Editor) MoveSection(id string, to int) (references.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := e.indexOf(id)
	if i < 0 {
		return references.Result{}, fmt.Errorf("%w: %s", ErrSectionNotFound, id)
	}
	if to < 0 {
		to = 0
	}
	if to >= len(e.paper.Blocks) {
		to = len(e.paper.Blocks) - 1
	}
	b := e.paper.Blocks[i]
	blocks := append(e.paper.Blocks[:i:i], e.paper.Blocks[i+1:]...)
	blocks = append(blocks[:to], append([]types.TextBlock{b}, blocks[to:]...)...)
	e.paper.Blocks = blocks
	return e.resync(), nil
}

// EnsureReferences runs a synchronisation pass on demand.
func (e *Editor) EnsureReferences() references.Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resync()
}

// HasCitations reports whether any non-References block carries a marker.
func (e *Editor) HasCitations() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(references.Derive(e.paper.Blocks)) > 0
}

// References returns the current derived reference list.
func (e *Editor) References() []types.Reference {
	e.mu.Lock()
	defer e.mu.Unlock()
	return references.Derive(e.paper.Blocks)
}

// FullContent returns the title, authors and every drafted section.
func (e *Editor) FullContent() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	var parts []string
	for _, b := range e.paper.Blocks {
		if b.HasBody() {
			parts = append(parts, b.Title+"\n\n"+b.Body)
		}
	}
	return fmt.Sprintf("Title: %s\n\nAuthors: %s\n\n%s", e.paper.Title, e.paper.Authors, strings.Join(parts, "\n\n"))
}

// ContextContent returns every drafted section except the Abstract, used as
// context for abstract and title prompts.
func (e *Editor) ContextContent() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	var parts []string
	for _, b := range e.paper.Blocks {
		if b.HasBody() && !IsAbstract(b) {
			parts = append(parts, b.Title+"\n\n"+b.Body)
		}
	}
	if len(parts) == 0 {
		return NoContent
	}
	return strings.Join(parts, "\n\n")
}

// Abstract returns the body of the Abstract block, or "".
func (e *Editor) Abstract() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, b := range e.paper.Blocks {
		if IsAbstract(b) {
			return b.Body
		}
	}
	return ""
}

// IsAbstract reports whether b is the Abstract section.
func IsAbstract(b types.TextBlock) bool {
	return strings.EqualFold(strings.TrimSpace(b.Title), "abstract")
}

func (e *Editor) indexOf(id string) int {
	for i, b := range e.paper.Blocks {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// resync must be called with e.mu held.
func (e *Editor) resync() references.Result {
	res := e.syncer.Sync(e.paper.Blocks)
	e.paper.Blocks = res.Blocks
	if res.Changed() {
		e.logger.Info("references block "+string(res.Action),
			zap.String("block_id", res.BlockID),
			zap.Int("references", len(res.References)))
	}
	res.Blocks = types.CloneBlocks(res.Blocks)
	return res
}
