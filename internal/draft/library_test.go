// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package draft

import (
	"reflect"
	"testing"

	"github.com/pdiddy/paper-drafter/pkg/types"
)

func TestLibraryRoundTrip(t *testing.T) {
	dir := t.TempDir()

	got, err := LoadLibrary(dir)
	if err != nil {
		t.Fatalf("LoadLibrary on empty project: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d items, want 0", len(got))
	}

	items := []types.LibraryCitation{{
		ID:        "citation-1",
		Title:     "Attention Is All You Need",
		Authors:   "Ashish Vaswani",
		Year:      "2017",
		BibtexKey: "vaswani2017",
	}}
	if err := SaveLibrary(dir, items); err != nil {
		t.Fatal(err)
	}
	got, err = LoadLibrary(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, items) {
		t.Errorf("LoadLibrary = %+v, want %+v", got, items)
	}
}

func TestLoadLibraryInvalid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, LibraryFile, "{not: [valid")
	if _, err := LoadLibrary(dir); err == nil {
		t.Error("expected parse error")
	}
}

func TestIsSectionFile(t *testing.T) {
	tests := map[string]bool{
		"01-introduction.md": true,
		"12-x.md":            true,
		"1-intro.md":         false,
		"README.md":          false,
		"01-intro.md.swp":    false,
		"outline.yaml":       false,
	}
	for name, want := range tests {
		if got := IsSectionFile(name); got != want {
			t.Errorf("IsSectionFile(%q) = %v, want %v", name, got, want)
		}
	}
}
