// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/paper-drafter/internal/container"
	"github.com/pdiddy/paper-drafter/internal/references"
	"github.com/pdiddy/paper-drafter/pkg/types"
)

// DefaultTeXImage is the container image used to compile PDFs.
const DefaultTeXImage = "texlive/texlive:latest"

// PDF compiles the LaTeX export of p, together with its BibTeX file, in a
// TeX container and returns the resulting PDF. Compiler output is written to
// log.
func PDF(ctx context.Context, rt container.Runtime, image string, p types.Paper, library []types.LibraryCitation, log io.Writer) ([]byte, error) {
	if image == "" {
		image = DefaultTeXImage
	}
	if err := rt.ImageExists(image); err != nil {
		return nil, fmt.Errorf("%w (pull it with '%s pull %s')", err, rt.Name(), image)
	}

	tex, err := LaTeX(p)
	if err != nil {
		return nil, err
	}
	bib := BibTeX(references.Derive(p.Blocks), library)

	dir, err := os.MkdirTemp("", "paper-drafter-pdf-")
	if err != nil {
		return nil, fmt.Errorf("creating build directory: %w", err)
	}
	defer os.RemoveAll(dir)

	if err := os.WriteFile(filepath.Join(dir, "paper.tex"), []byte(tex), 0o644); err != nil {
		return nil, fmt.Errorf("writing paper.tex: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "references.bib"), []byte(bib), 0o644); err != nil {
		return nil, fmt.Errorf("writing references.bib: %w", err)
	}

	cmd := []string{"latexmk", "-pdf", "-interaction=nonstopmode", "-halt-on-error", "paper.tex"}
	if err := rt.Run(ctx, image, dir, cmd, log); err != nil {
		return nil, fmt.Errorf("compiling PDF: %w", err)
	}

	out, err := os.ReadFile(filepath.Join(dir, "paper.pdf"))
	if err != nil {
		return nil, fmt.Errorf("reading compiled PDF: %w", err)
	}
	return out, nil
}
