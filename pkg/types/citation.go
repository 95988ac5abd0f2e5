// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Reference is one numbered entry of a derived reference list.
type Reference struct {
	// Index is the 1-based position in first-seen order.
	Index int `json:"index" yaml:"index"`

	// Reason is the trimmed text of the [CITE: ...] marker.
	Reason string `json:"reason" yaml:"reason"`
}

// LibraryCitation is a bibliographic record the user keeps alongside the
// paper. Records are informational; the generated reference list never
// depends on them.
type LibraryCitation struct {
	// ID is the record identifier (e.g. "citation-<uuid>").
	ID string `json:"id" yaml:"id"`

	// Title is the cited work's title.
	Title string `json:"title" yaml:"title"`

	// Authors is the author line as typed (e.g. "Ashish Vaswani, Noam Shazeer").
	Authors string `json:"authors" yaml:"authors"`

	// Journal is the venue (optional).
	Journal string `json:"journal,omitempty" yaml:"journal,omitempty"`

	// Year is the publication year as entered.
	Year string `json:"year" yaml:"year"`

	// DOI is the digital object identifier (optional).
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// URL links to the work (optional).
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// BibtexKey is the citation key used in BibTeX output.
	BibtexKey string `json:"bibtex_key" yaml:"bibtex_key"`
}
