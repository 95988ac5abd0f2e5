// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"strings"

	"github.com/pdiddy/paper-drafter/pkg/types"
)

// BibTeX renders one @misc entry per derived reference, keyed refN so the
// \cite commands of the LaTeX export resolve, followed by an @article entry
// for every library citation.
func BibTeX(refs []types.Reference, library []types.LibraryCitation) string {
	var sb strings.Builder
	sb.WriteString("% BibTeX entries generated by paper-drafter\n")

	for _, r := range refs {
		fmt.Fprintf(&sb, "\n@misc{%s,\n", CiteKey(r))
		writeField(&sb, "note", EscapeLaTeX(r.Reason))
		sb.WriteString("}\n")
	}

	for _, c := range library {
		fmt.Fprintf(&sb, "\n@article{%s,\n", c.BibtexKey)
		writeField(&sb, "title", EscapeLaTeX(c.Title))
		writeField(&sb, "author", EscapeLaTeX(bibAuthors(c.Authors)))
		writeField(&sb, "journal", EscapeLaTeX(c.Journal))
		writeField(&sb, "year", EscapeLaTeX(c.Year))
		writeField(&sb, "doi", c.DOI)
		writeField(&sb, "url", c.URL)
		sb.WriteString("}\n")
	}
	return sb.String()
}

// writeField writes one "  key = {value}," line; empty values are omitted.
func writeField(sb *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(sb, "  %s = {%s},\n", key, value)
}

// bibAuthors turns a comma-separated author line into BibTeX's "and" form.
func bibAuthors(authors string) string {
	var names []string
	for _, a := range strings.Split(authors, ",") {
		if a = strings.TrimSpace(a); a != "" {
			names = append(names, a)
		}
	}
	return strings.Join(names, " and ")
}
