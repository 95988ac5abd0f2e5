// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export renders a paper as LaTeX, BibTeX, JSON or YAML. Citation
// markers become \cite{refN} keys whose numbers match the References block.
package export

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/pdiddy/paper-drafter/internal/citation"
	"github.com/pdiddy/paper-drafter/internal/document"
	"github.com/pdiddy/paper-drafter/internal/references"
	"github.com/pdiddy/paper-drafter/pkg/types"
)

const (
	defaultTitle   = "Your Academic Paper Title"
	defaultAuthors = "Author Name"
	pendingContent = "Content to be generated..."
)

var latexTmpl = template.Must(template.New("latex").Parse(`\documentclass{article}
\usepackage[utf8]{inputenc}
\usepackage{amsmath}
\usepackage{amsfonts}
\usepackage{amssymb}
\usepackage{cite}
\usepackage{url}

\title{ {{- .Title -}} }
\author{ {{- .Authors -}} }
\date{\today}

\begin{document}

\maketitle
{{if .Abstract}}
\begin{abstract}
{{.Abstract}}
\end{abstract}
{{end}}
{{- range .Sections}}
\section{ {{- .Title -}} }
{{.Body}}
{{range .Figures}}
\begin{figure}[h]
\centering
% {{.Description}}
\caption{ {{- .Caption -}} }
\end{figure}
{{end}}
{{- end}}
{{- if .HasCitations}}
\bibliographystyle{unsrt}
\bibliography{references}
{{end}}
\end{document}
`))

type latexSection struct {
	Title   string
	Body    string
	Figures []latexFigure
}

type latexFigure struct {
	Description string
	Caption     string
}

// CiteKey returns the BibTeX key of a derived reference.
func CiteKey(r types.Reference) string {
	return "ref" + strconv.Itoa(r.Index)
}

// LaTeX renders the paper as a standalone article. The Abstract block goes
// into the abstract environment, the References block is replaced by a
// \bibliography pointing at the BibTeX export, and every other block becomes
// a \section. Blocks without a body fall back to their description.
func LaTeX(p types.Paper) (string, error) {
	refs := references.Derive(p.Blocks)

	data := struct {
		Title        string
		Authors      string
		Abstract     string
		Sections     []latexSection
		HasCitations bool
	}{
		Title:        EscapeLaTeX(orDefault(p.Title, defaultTitle)),
		Authors:      EscapeLaTeX(orDefault(p.Authors, defaultAuthors)),
		HasCitations: len(refs) > 0,
	}

	for _, b := range p.Blocks {
		if references.IsReferencesBlock(b) {
			continue
		}
		if document.IsAbstract(b) && b.HasBody() {
			data.Abstract = latexBody(b.Body, refs)
			continue
		}

		body := pendingContent
		switch {
		case b.HasBody():
			body = b.Body
		case b.Description != "":
			body = b.Description
		}
		sec := latexSection{
			Title: EscapeLaTeX(b.Title),
			Body:  latexBody(body, refs),
		}
		for _, f := range b.Figures {
			if f.Caption == "" {
				continue
			}
			sec.Figures = append(sec.Figures, latexFigure{
				Description: strings.ReplaceAll(f.Description, "\n", " "),
				Caption:     latexBody(f.Caption, refs),
			})
		}
		data.Sections = append(data.Sections, sec)
	}

	var buf bytes.Buffer
	if err := latexTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering LaTeX: %w", err)
	}
	return buf.String(), nil
}

// latexBody escapes text and turns each known citation marker into a
// \cite command. Markers are swapped for NUL-delimited tokens first so the
// escaper never sees the command's backslash.
func latexBody(text string, refs []types.Reference) string {
	tokenized := citation.ReplaceMarkers(text, refs, func(r types.Reference) string {
		return "\x00" + strconv.Itoa(r.Index) + "\x00"
	})
	escaped := EscapeLaTeX(tokenized)
	for _, r := range refs {
		escaped = strings.ReplaceAll(escaped, "\x00"+strconv.Itoa(r.Index)+"\x00", `\cite{`+CiteKey(r)+`}`)
	}
	return escaped
}

var latexEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`&`, `\&`,
	`%`, `\%`,
	`$`, `\$`,
	`#`, `\#`,
	`_`, `\_`,
	`{`, `\{`,
	`}`, `\}`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
)

// EscapeLaTeX escapes the characters LaTeX treats specially.
func EscapeLaTeX(s string) string {
	return latexEscaper.Replace(s)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
