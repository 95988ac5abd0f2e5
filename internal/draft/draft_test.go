// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package draft

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/pdiddy/paper-drafter/internal/references"
	"github.com/pdiddy/paper-drafter/pkg/types"
)

// writeFile is a test helper that creates a file with the given content.
func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

const twoSectionOutline = `title: Sparse Attention
authors: Ada Lovelace
sections:
  - id: intro
    number: "01"
    title: Introduction
    file: 01-introduction.md
    description: "Motivates the work."
  - id: methods
    number: "02"
    title: Methods
    file: 02-methods.md
`

func TestLoadOutline(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		wantCount int
		wantErr   bool
	}{
		{
			name:      "valid outline",
			yaml:      twoSectionOutline,
			wantCount: 2,
		},
		{
			name:      "empty sections",
			yaml:      "sections: []\n",
			wantCount: 0,
		},
		{
			name:    "invalid yaml",
			yaml:    ":::bad\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, OutlineFile, tt.yaml)

			outline, err := LoadOutline(dir)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(outline.Sections) != tt.wantCount {
				t.Errorf("len(Sections) = %d, want %d", len(outline.Sections), tt.wantCount)
			}
		})
	}
}

func TestLoadOutlineMissingFile(t *testing.T) {
	if _, err := LoadOutline(t.TempDir()); err == nil {
		t.Error("expected error for missing outline.yaml")
	}
}

func TestSectionFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "02-methods.md", "")
	writeFile(t, dir, "01-introduction.md", "")
	writeFile(t, dir, "notes.md", "")
	writeFile(t, dir, OutlineFile, "")
	if err := os.Mkdir(filepath.Join(dir, "03-dir.md"), 0o755); err != nil {
		t.Fatal(err)
	}

	files, err := SectionFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(dir, "01-introduction.md"),
		filepath.Join(dir, "02-methods.md"),
	}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("SectionFiles = %v, want %v", files, want)
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		title, want string
	}{
		{"Introduction", "introduction"},
		{"Related Work", "related-work"},
		{"  Results & Discussion!  ", "results-discussion"},
		{"???", "section"},
	}
	for _, tt := range tests {
		if got := Slug(tt.title); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
	if got := SectionFileName(6, "Conclusion"); got != "07-conclusion.md" {
		t.Errorf("SectionFileName = %q", got)
	}
}

func TestLoadProject(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, OutlineFile, twoSectionOutline)
	writeFile(t, dir, "01-introduction.md", "Hello [CITE: x].\n\n")

	paper, err := LoadProject(dir)
	if err != nil {
		t.Fatal(err)
	}
	if paper.Title != "Sparse Attention" || paper.Authors != "Ada Lovelace" {
		t.Errorf("metadata = %q / %q", paper.Title, paper.Authors)
	}
	if len(paper.Blocks) != 2 {
		t.Fatalf("len(Blocks) = %d, want 2", len(paper.Blocks))
	}
	if paper.Blocks[0].Body != "Hello [CITE: x]." {
		t.Errorf("body = %q", paper.Blocks[0].Body)
	}
	if paper.Blocks[0].Description != "Motivates the work." {
		t.Errorf("description = %q", paper.Blocks[0].Description)
	}
	if paper.Blocks[1].Body != "" {
		t.Errorf("missing file should load as empty body, got %q", paper.Blocks[1].Body)
	}
}

func TestLoadProjectDerivesIDs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, OutlineFile, "sections:\n  - title: Intro\n    file: 01-intro.md\n")

	paper, err := LoadProject(dir)
	if err != nil {
		t.Fatal(err)
	}
	if paper.Blocks[0].ID != "section-01-intro" {
		t.Errorf("ID = %q", paper.Blocks[0].ID)
	}
}

func TestSaveProjectRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "paper")
	paper := types.Paper{
		Title:   "T",
		Authors: "A",
		Blocks: []types.TextBlock{
			{ID: "a", Title: "Introduction", Kind: types.KindStandard, Body: "Intro [CITE: x]",
				BulletPoints: []string{"why"}, MinWordCount: 200,
				Subsections: []types.Subsection{{Title: "Scope"}},
				Figures:     []types.Figure{{ID: "f1", Description: "plot", Caption: "A plot"}}},
			{ID: "b", Title: "Related Work", Kind: types.KindStandard},
			{ID: "r", Title: "References", Kind: types.KindReferences, Body: "[1] x"},
		},
	}

	if err := SaveProject(dir, paper); err != nil {
		t.Fatal(err)
	}

	for _, f := range []string{"01-introduction.md", "02-related-work.md", "03-references.md", OutlineFile} {
		if _, err := os.Stat(filepath.Join(dir, f)); err != nil {
			t.Errorf("expected %s: %v", f, err)
		}
	}
	if got := readFile(t, dir, "02-related-work.md"); got != "" {
		t.Errorf("empty body written as %q", got)
	}

	loaded, err := LoadProject(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(loaded, paper) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, paper)
	}
}

func TestSyncProjectCreatesReferences(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, OutlineFile, twoSectionOutline)
	writeFile(t, dir, "01-introduction.md", "Foo [CITE: prior survey] bar.\n")
	writeFile(t, dir, "02-methods.md", "Baz [CITE: dataset source].\n")

	s := references.New(references.WithIDGenerator(func() string { return "refs" }))
	res, err := SyncProject(dir, s)
	if err != nil {
		t.Fatal(err)
	}
	if res.Action != references.ActionCreated {
		t.Fatalf("Action = %s, want created", res.Action)
	}

	if got := readFile(t, dir, "03-references.md"); got != "[1] prior survey\n[2] dataset source\n" {
		t.Errorf("references file = %q", got)
	}
	outline, err := LoadOutline(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(outline.Sections) != 3 {
		t.Fatalf("outline has %d sections, want 3", len(outline.Sections))
	}
	last := outline.Sections[2]
	if last.ID != "refs" || last.Kind != types.KindReferences || last.Number != "03" {
		t.Errorf("references section = %+v", last)
	}

	// A second pass finds nothing to do and writes nothing.
	before, _ := os.Stat(filepath.Join(dir, OutlineFile))
	res, err = SyncProject(dir, s)
	if err != nil {
		t.Fatal(err)
	}
	if res.Action != references.ActionNone {
		t.Errorf("second pass Action = %s, want none", res.Action)
	}
	after, _ := os.Stat(filepath.Join(dir, OutlineFile))
	if !before.ModTime().Equal(after.ModTime()) {
		t.Error("outline rewritten on a no-op pass")
	}
}

func TestPaperFromOutlineIgnoresLaterOutlineEdits(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, OutlineFile, twoSectionOutline)
	writeFile(t, dir, "01-introduction.md", "Foo [CITE: prior survey].\n")

	outline, err := LoadOutline(dir)
	if err != nil {
		t.Fatal(err)
	}
	// The outline on disk changes after it was read.
	writeFile(t, dir, OutlineFile, "title: Other\nsections: []\n")

	paper, err := paperFromOutline(dir, outline)
	if err != nil {
		t.Fatal(err)
	}
	if len(paper.Blocks) != len(outline.Sections) {
		t.Fatalf("got %d blocks for %d outline sections", len(paper.Blocks), len(outline.Sections))
	}
	for i, b := range paper.Blocks {
		if b.ID != outline.Sections[i].ID {
			t.Errorf("block %d id = %q, want %q", i, b.ID, outline.Sections[i].ID)
		}
	}
	if paper.Title != "Sparse Attention" {
		t.Errorf("Title = %q", paper.Title)
	}
}

func TestSyncProjectUpdatesOnlyReferencesFile(t *testing.T) {
	dir := t.TempDir()
	outline := twoSectionOutline + `  - id: refs
    number: "03"
    title: References
    kind: references
    file: 03-references.md
`
	writeFile(t, dir, OutlineFile, outline)
	writeFile(t, dir, "01-introduction.md", "[CITE: x]\n")
	writeFile(t, dir, "02-methods.md", "[CITE: y]\n")
	writeFile(t, dir, "03-references.md", "[1] x\n")

	res, err := SyncProject(dir, references.New())
	if err != nil {
		t.Fatal(err)
	}
	if res.Action != references.ActionUpdated {
		t.Fatalf("Action = %s", res.Action)
	}
	if got := readFile(t, dir, "03-references.md"); got != "[1] x\n[2] y\n" {
		t.Errorf("references file = %q", got)
	}
	if got := readFile(t, dir, OutlineFile); got != outline {
		t.Error("outline should be untouched on update")
	}
}

func TestSyncProjectStalePolicies(t *testing.T) {
	setup := func(t *testing.T) string {
		dir := t.TempDir()
		writeFile(t, dir, OutlineFile, twoSectionOutline+`  - id: refs
    number: "03"
    title: References
    kind: references
    file: 03-references.md
`)
		writeFile(t, dir, "01-introduction.md", "no markers\n")
		writeFile(t, dir, "03-references.md", "[1] old\n")
		return dir
	}

	t.Run("keep", func(t *testing.T) {
		dir := setup(t)
		res, err := SyncProject(dir, references.New())
		if err != nil {
			t.Fatal(err)
		}
		if res.Action != references.ActionNone {
			t.Errorf("Action = %s", res.Action)
		}
		if got := readFile(t, dir, "03-references.md"); got != "[1] old\n" {
			t.Errorf("references file = %q", got)
		}
	})

	t.Run("clear", func(t *testing.T) {
		dir := setup(t)
		if _, err := SyncProject(dir, references.New(references.WithStalePolicy(types.StaleClear))); err != nil {
			t.Fatal(err)
		}
		if got := readFile(t, dir, "03-references.md"); !strings.HasPrefix(got, "No citations found") {
			t.Errorf("references file = %q", got)
		}
	})

	t.Run("remove", func(t *testing.T) {
		dir := setup(t)
		res, err := SyncProject(dir, references.New(references.WithStalePolicy(types.StaleRemove)))
		if err != nil {
			t.Fatal(err)
		}
		if res.Action != references.ActionRemoved {
			t.Fatalf("Action = %s", res.Action)
		}
		if _, err := os.Stat(filepath.Join(dir, "03-references.md")); !os.IsNotExist(err) {
			t.Error("references file should be removed")
		}
		outline, err := LoadOutline(dir)
		if err != nil {
			t.Fatal(err)
		}
		if len(outline.Sections) != 2 {
			t.Errorf("outline has %d sections, want 2", len(outline.Sections))
		}
	})
}

func TestStatusWritesNothing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, OutlineFile, twoSectionOutline)
	writeFile(t, dir, "01-introduction.md", "[CITE: x]\n")

	res, err := Status(dir, references.New())
	if err != nil {
		t.Fatal(err)
	}
	if !res.Changed() {
		t.Error("Status should report a pending change")
	}
	if _, err := os.Stat(filepath.Join(dir, "03-references.md")); !os.IsNotExist(err) {
		t.Error("Status must not write files")
	}
}
