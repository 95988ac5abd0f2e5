// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// BlockKind distinguishes ordinary sections from the generated References
// section. An empty kind marks a legacy block written before kinds existed.
type BlockKind string

const (
	KindStandard   BlockKind = "standard"
	KindReferences BlockKind = "references"
)

// Figure is a figure attached to a section.
type Figure struct {
	// ID is the figure's unique identifier within the paper.
	ID string `json:"id" yaml:"id"`

	// Description is the author's description used to generate the caption.
	Description string `json:"description" yaml:"description"`

	// Caption is the generated or edited caption.
	Caption string `json:"caption,omitempty" yaml:"caption,omitempty"`
}

// Subsection structures a section's generation prompt.
type Subsection struct {
	// Title is the subsection heading.
	Title string `json:"title" yaml:"title"`

	// Description explains what the subsection covers.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// BulletPoints lists key points the subsection must make.
	BulletPoints []string `json:"bullet_points,omitempty" yaml:"bullet_points,omitempty"`

	// MinWordCount is an optional lower bound on generated length.
	MinWordCount int `json:"min_word_count,omitempty" yaml:"min_word_count,omitempty"`
}

// TextBlock is one section of the document.
type TextBlock struct {
	// ID is assigned at creation and never changes.
	ID string `json:"id" yaml:"id"`

	// Title is the section heading shown to the user.
	Title string `json:"title" yaml:"title"`

	// Kind tags the References block explicitly.
	Kind BlockKind `json:"kind,omitempty" yaml:"kind,omitempty"`

	// Description explains what the section covers; it steers generation.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// BulletPoints lists key points for the whole section.
	BulletPoints []string `json:"bullet_points,omitempty" yaml:"bullet_points,omitempty"`

	// Subsections optionally structures the section.
	Subsections []Subsection `json:"subsections,omitempty" yaml:"subsections,omitempty"`

	// Figures lists figures placed in the section.
	Figures []Figure `json:"figures,omitempty" yaml:"figures,omitempty"`

	// MinWordCount is an optional lower bound on generated length.
	MinWordCount int `json:"min_word_count,omitempty" yaml:"min_word_count,omitempty"`

	// Body is the generated or edited text. Empty means not yet generated.
	Body string `json:"body,omitempty" yaml:"body,omitempty"`
}

// HasBody reports whether the block has generated or edited text.
func (b TextBlock) HasBody() bool {
	return b.Body != ""
}

// Clone returns a deep copy of the block so callers can hand out snapshots
// without sharing slices.
func (b TextBlock) Clone() TextBlock {
	c := b
	if b.BulletPoints != nil {
		c.BulletPoints = append([]string(nil), b.BulletPoints...)
	}
	if b.Subsections != nil {
		c.Subsections = make([]Subsection, len(b.Subsections))
		for i, s := range b.Subsections {
			s.BulletPoints = append([]string(nil), s.BulletPoints...)
			c.Subsections[i] = s
		}
	}
	if b.Figures != nil {
		c.Figures = append([]Figure(nil), b.Figures...)
	}
	return c
}

// CloneBlocks deep-copies a block collection.
func CloneBlocks(blocks []TextBlock) []TextBlock {
	if blocks == nil {
		return nil
	}
	out := make([]TextBlock, len(blocks))
	for i, b := range blocks {
		out[i] = b.Clone()
	}
	return out
}

// Paper is the full document: metadata plus the ordered block collection.
type Paper struct {
	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Authors is the free-form author line (e.g. "A. Smith, B. Jones").
	Authors string `json:"authors" yaml:"authors"`

	// Blocks holds the sections in document order.
	Blocks []TextBlock `json:"blocks" yaml:"blocks"`
}

// Clone returns a deep copy of the paper.
func (p Paper) Clone() Paper {
	c := p
	c.Blocks = CloneBlocks(p.Blocks)
	return c
}

// OutlineSection describes one section in a file-based project's
// outline.yaml. The body lives in File.
type OutlineSection struct {
	// ID is the block identifier.
	ID string `json:"id" yaml:"id"`

	// Number is the two-digit sequence number (e.g. "01", "02").
	Number string `json:"number" yaml:"number"`

	// Title is the section heading.
	Title string `json:"title" yaml:"title"`

	// Kind tags the References section.
	Kind BlockKind `json:"kind,omitempty" yaml:"kind,omitempty"`

	// File is the section's filename (e.g. "01-introduction.md").
	File string `json:"file" yaml:"file"`

	// Description explains what the section covers.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// BulletPoints lists key points for the section.
	BulletPoints []string `json:"bullet_points,omitempty" yaml:"bullet_points,omitempty"`

	// Subsections describes the section's internal structure.
	Subsections []Subsection `json:"subsections,omitempty" yaml:"subsections,omitempty"`

	// Figures lists the section's figures.
	Figures []Figure `json:"figures,omitempty" yaml:"figures,omitempty"`

	// MinWordCount is an optional lower bound on generated length.
	MinWordCount int `json:"min_word_count,omitempty" yaml:"min_word_count,omitempty"`
}

// Outline holds a file-based project's metadata and structure.
type Outline struct {
	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Authors is the author line.
	Authors string `json:"authors" yaml:"authors"`

	// Sections lists the paper's sections in order.
	Sections []OutlineSection `json:"sections" yaml:"sections"`
}
