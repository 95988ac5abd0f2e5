// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/paper-drafter/internal/document"
	"github.com/pdiddy/paper-drafter/internal/references"
	"github.com/pdiddy/paper-drafter/pkg/types"
)

// ErrReferencesBlock is returned when asked to draft the References block,
// whose body is derived from the other blocks.
var ErrReferencesBlock = errors.New("the References block is maintained automatically")

// ErrNoAbstractSection is returned by GenerateAbstract when the paper has no
// Abstract block to write into.
var ErrNoAbstractSection = errors.New("paper has no Abstract section")

// ErrFigureNotFound is returned when a figure id matches nothing in the
// section.
var ErrFigureNotFound = errors.New("figure not found")

// maxTitleSuggestions is how many lines SuggestTitles keeps.
const maxTitleSuggestions = 5

// BatchSummary holds counts from a DraftAll run.
type BatchSummary struct {
	Drafted int
	Skipped int
	Failed  int
}

// Total returns the number of sections considered.
func (s BatchSummary) Total() int {
	return s.Drafted + s.Skipped + s.Failed
}

// HasFailures reports whether any section failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// Drafter generates text for an editor's paper.
type Drafter struct {
	backend Backend
	editor  *document.Editor
	cfg     types.GenerationConfig
	logger  *zap.Logger
}

// NewDrafter creates a Drafter. A nil logger is replaced with a no-op.
func NewDrafter(backend Backend, editor *document.Editor, cfg types.GenerationConfig, logger *zap.Logger) *Drafter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Drafter{backend: backend, editor: editor, cfg: cfg, logger: logger}
}

// DraftSection generates the body of one section and stores it. The
// returned Result reports what happened to the References block.
func (d *Drafter) DraftSection(ctx context.Context, id string) (references.Result, error) {
	b, err := d.editor.Section(id)
	if err != nil {
		return references.Result{}, err
	}
	if references.IsReferencesBlock(b) {
		return references.Result{}, ErrReferencesBlock
	}

	paper := d.editor.Paper()
	prompt, err := SectionPrompt(b, paper.Title, d.editor.Abstract())
	if err != nil {
		return references.Result{}, err
	}

	text, err := d.backend.GenerateText(ctx, Request{
		System:      sectionSystem,
		Prompt:      prompt,
		MaxTokens:   sectionMaxTokens,
		Temperature: defaultTemperature,
	})
	if err != nil {
		return references.Result{}, fmt.Errorf("generating %q: %w", b.Title, err)
	}

	res, err := d.editor.SetBody(id, text)
	if err != nil {
		return references.Result{}, err
	}
	d.logger.Info("section drafted",
		zap.String("section_id", id),
		zap.String("title", b.Title),
		zap.Int("words", len(strings.Fields(text))),
		zap.String("references", string(res.Action)))
	return res, nil
}

// DraftAll drafts every section that has no body yet, skipping the
// References block. Up to cfg.Concurrency sections are generated at once;
// with a concurrency of one, cfg.Delay separates consecutive calls.
// Progress lines are written to w. Individual failures are counted, not
// returned; the error is non-nil only when ctx is cancelled.
func (d *Drafter) DraftAll(ctx context.Context, w io.Writer) (BatchSummary, error) {
	var (
		summary BatchSummary
		mu      sync.Mutex
	)
	report := func(format string, args ...any) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(w, format, args...)
	}

	var pending []types.TextBlock
	for _, b := range d.editor.Blocks() {
		switch {
		case references.IsReferencesBlock(b):
		case b.HasBody():
			report("skipped %s\n", b.Title)
			summary.Skipped++
		default:
			pending = append(pending, b)
		}
	}

	limit := d.cfg.Concurrency
	if limit <= 0 {
		limit = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, b := range pending {
		if limit == 1 && i > 0 && d.cfg.Delay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(d.cfg.Delay):
			}
		}
		if ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			report("drafting %s\n", b.Title)
			_, err := d.DraftSection(gctx, b.ID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				fmt.Fprintf(w, "failed  %s: %v\n", b.Title, err)
				summary.Failed++
				return nil
			}
			fmt.Fprintf(w, "drafted %s\n", b.Title)
			summary.Drafted++
			return nil
		})
	}

	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

// GenerateCaption writes a caption for one figure of a section and returns
// it.
func (d *Drafter) GenerateCaption(ctx context.Context, sectionID, figureID string) (string, error) {
	b, err := d.editor.Section(sectionID)
	if err != nil {
		return "", err
	}
	fig := -1
	for i, f := range b.Figures {
		if f.ID == figureID {
			fig = i
			break
		}
	}
	if fig < 0 {
		return "", fmt.Errorf("%w: %s", ErrFigureNotFound, figureID)
	}

	paper := d.editor.Paper()
	prompt, err := CaptionPrompt(b.Figures[fig].Description, b.Title, paper.Title, d.editor.Abstract())
	if err != nil {
		return "", err
	}
	caption, err := d.backend.GenerateText(ctx, Request{
		System:      captionSystem,
		Prompt:      prompt,
		MaxTokens:   captionMaxTokens,
		Temperature: defaultTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("generating caption: %w", err)
	}

	_, err = d.editor.UpdateSection(sectionID, func(tb *types.TextBlock) {
		for i := range tb.Figures {
			if tb.Figures[i].ID == figureID {
				tb.Figures[i].Caption = caption
			}
		}
	})
	if err != nil {
		return "", err
	}
	return caption, nil
}

// GenerateAbstract writes the Abstract section from the rest of the paper.
func (d *Drafter) GenerateAbstract(ctx context.Context) (references.Result, error) {
	var abstractID string
	for _, b := range d.editor.Blocks() {
		if document.IsAbstract(b) {
			abstractID = b.ID
			break
		}
	}
	if abstractID == "" {
		return references.Result{}, ErrNoAbstractSection
	}

	paper := d.editor.Paper()
	prompt, err := AbstractPrompt(paper.Title, d.editor.ContextContent())
	if err != nil {
		return references.Result{}, err
	}
	text, err := d.backend.GenerateText(ctx, Request{
		System:      abstractSystem,
		Prompt:      prompt,
		MaxTokens:   abstractMaxTokens,
		Temperature: defaultTemperature,
	})
	if err != nil {
		return references.Result{}, fmt.Errorf("generating abstract: %w", err)
	}
	return d.editor.SetBody(abstractID, text)
}

// SuggestTitles returns up to five alternative titles for the paper.
func (d *Drafter) SuggestTitles(ctx context.Context) ([]string, error) {
	paper := d.editor.Paper()
	paperContext := d.editor.Abstract()
	if paperContext == "" {
		paperContext = d.editor.ContextContent()
	}
	prompt, err := TitlesPrompt(paper.Title, paperContext)
	if err != nil {
		return nil, err
	}
	text, err := d.backend.GenerateText(ctx, Request{
		System:      titlesSystem,
		Prompt:      prompt,
		MaxTokens:   titlesMaxTokens,
		Temperature: titlesTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("suggesting titles: %w", err)
	}

	var titles []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		titles = append(titles, line)
		if len(titles) == maxTitleSuggestions {
			break
		}
	}
	return titles, nil
}

// Rewrite asks the model to improve selected text in a section and applies
// the result in place of the first occurrence.
func (d *Drafter) Rewrite(ctx context.Context, sectionID, selected, instructions string) (string, references.Result, error) {
	b, err := d.editor.Section(sectionID)
	if err != nil {
		return "", references.Result{}, err
	}
	if selected == "" || !strings.Contains(b.Body, selected) {
		return "", references.Result{}, document.ErrSelectionNotFound
	}

	paper := d.editor.Paper()
	prompt, err := RewritePrompt(selected, instructions, b.Title, paper.Title, d.editor.Abstract())
	if err != nil {
		return "", references.Result{}, err
	}
	text, err := d.backend.GenerateText(ctx, Request{
		System:      rewriteSystem,
		Prompt:      prompt,
		MaxTokens:   rewriteMaxTokens,
		Temperature: defaultTemperature,
	})
	if err != nil {
		return "", references.Result{}, fmt.Errorf("rewriting text: %w", err)
	}

	res, err := d.editor.ApplyRewrite(sectionID, selected, text)
	if err != nil {
		return "", references.Result{}, err
	}
	return text, res, nil
}
