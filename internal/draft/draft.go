// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package draft loads and saves file-based paper projects: an outline.yaml
// describing the sections plus one NN-slug.md file per section body.
package draft

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-drafter/internal/references"
	"github.com/pdiddy/paper-drafter/pkg/types"
)

// OutlineFile is the name of the outline in a project directory.
const OutlineFile = "outline.yaml"

// sectionFilePattern matches numbered section files: NN-slug.md.
var sectionFilePattern = regexp.MustCompile(`^\d{2}-.+\.md$`)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// IsSectionFile reports whether name is a numbered section file.
func IsSectionFile(name string) bool {
	return sectionFilePattern.MatchString(name)
}

// LoadOutline reads outline.yaml from a paper project directory.
func LoadOutline(projectDir string) (*types.Outline, error) {
	data, err := os.ReadFile(filepath.Join(projectDir, OutlineFile))
	if err != nil {
		return nil, fmt.Errorf("reading outline: %w", err)
	}
	var outline types.Outline
	if err := yaml.Unmarshal(data, &outline); err != nil {
		return nil, fmt.Errorf("parsing outline: %w", err)
	}
	return &outline, nil
}

// SaveOutline writes outline.yaml into a paper project directory.
func SaveOutline(projectDir string, outline *types.Outline) error {
	data, err := yaml.Marshal(outline)
	if err != nil {
		return fmt.Errorf("marshaling outline: %w", err)
	}
	if err := os.WriteFile(filepath.Join(projectDir, OutlineFile), data, 0o644); err != nil {
		return fmt.Errorf("writing outline: %w", err)
	}
	return nil
}

// SectionFiles returns the ordered list of numbered section file paths
// (NN-*.md) in a paper project directory.
func SectionFiles(projectDir string) ([]string, error) {
	entries, err := os.ReadDir(projectDir)
	if err != nil {
		return nil, fmt.Errorf("reading project directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if sectionFilePattern.MatchString(e.Name()) {
			files = append(files, filepath.Join(projectDir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// Slug turns a section title into a filename fragment.
func Slug(title string) string {
	s := strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if s == "" {
		return "section"
	}
	return s
}

// SectionFileName returns the file name for the section at position i
// (zero-based).
func SectionFileName(i int, title string) string {
	return fmt.Sprintf("%02d-%s.md", i+1, Slug(title))
}

// LoadProject reads the outline and every section body into a Paper. A
// section whose file does not exist yet has an empty body.
func LoadProject(projectDir string) (types.Paper, error) {
	outline, err := LoadOutline(projectDir)
	if err != nil {
		return types.Paper{}, err
	}
	return paperFromOutline(projectDir, outline)
}

// paperFromOutline reads the section bodies named by outline. Block i
// always corresponds to outline.Sections[i].
func paperFromOutline(projectDir string, outline *types.Outline) (types.Paper, error) {
	paper := types.Paper{Title: outline.Title, Authors: outline.Authors}
	for _, sec := range outline.Sections {
		body, err := readSection(projectDir, sec.File)
		if err != nil {
			return types.Paper{}, err
		}
		paper.Blocks = append(paper.Blocks, blockFromOutline(sec, body))
	}
	return paper, nil
}

// SaveProject writes paper as a project: sections are renumbered in block
// order and every file is rewritten. Files of sections no longer in the
// paper are left alone.
func SaveProject(projectDir string, paper types.Paper) error {
	if err := os.MkdirAll(projectDir, 0o755); err != nil {
		return fmt.Errorf("creating project directory: %w", err)
	}

	outline := &types.Outline{Title: paper.Title, Authors: paper.Authors}
	for i, b := range paper.Blocks {
		sec := outlineFromBlock(b)
		sec.Number = fmt.Sprintf("%02d", i+1)
		sec.File = SectionFileName(i, b.Title)
		outline.Sections = append(outline.Sections, sec)

		if err := writeSection(projectDir, sec.File, b.Body); err != nil {
			return err
		}
	}
	return SaveOutline(projectDir, outline)
}

// SyncProject loads a project, synchronises its References section and
// writes back only what the pass changed: the References file when its
// body changed, plus the outline when the section was created or removed.
func SyncProject(projectDir string, s *references.Synchronizer) (references.Result, error) {
	outline, err := LoadOutline(projectDir)
	if err != nil {
		return references.Result{}, err
	}
	paper, err := paperFromOutline(projectDir, outline)
	if err != nil {
		return references.Result{}, err
	}

	res := s.Sync(paper.Blocks)

	switch res.Action {
	case references.ActionNone:
		return res, nil

	case references.ActionUpdated, references.ActionCleared:
		idx, _ := references.Find(res.Blocks)
		sec := outline.Sections[idx]
		if err := writeSection(projectDir, sec.File, res.Blocks[idx].Body); err != nil {
			return res, err
		}

	case references.ActionCreated:
		b := res.Blocks[len(res.Blocks)-1]
		n := len(outline.Sections)
		sec := outlineFromBlock(b)
		sec.Number = fmt.Sprintf("%02d", n+1)
		sec.File = SectionFileName(n, b.Title)
		outline.Sections = append(outline.Sections, sec)
		if err := writeSection(projectDir, sec.File, b.Body); err != nil {
			return res, err
		}
		if err := SaveOutline(projectDir, outline); err != nil {
			return res, err
		}

	case references.ActionRemoved:
		for i, sec := range outline.Sections {
			if sectionID(sec) != res.BlockID {
				continue
			}
			outline.Sections = append(outline.Sections[:i], outline.Sections[i+1:]...)
			if err := os.Remove(filepath.Join(projectDir, sec.File)); err != nil && !errors.Is(err, os.ErrNotExist) {
				return res, fmt.Errorf("removing %s: %w", sec.File, err)
			}
			break
		}
		if err := SaveOutline(projectDir, outline); err != nil {
			return res, err
		}
	}
	return res, nil
}

// Status reports what SyncProject would do without writing anything.
func Status(projectDir string, s *references.Synchronizer) (references.Result, error) {
	paper, err := LoadProject(projectDir)
	if err != nil {
		return references.Result{}, err
	}
	return s.Sync(paper.Blocks), nil
}

func readSection(projectDir, file string) (string, error) {
	if file == "" {
		return "", nil
	}
	data, err := os.ReadFile(filepath.Join(projectDir, file))
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", file, err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

func writeSection(projectDir, file, body string) error {
	content := body
	if content != "" {
		content += "\n"
	}
	if err := os.WriteFile(filepath.Join(projectDir, file), []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", file, err)
	}
	return nil
}

// sectionID returns the section's id, derived from its file name for
// outlines written by hand without ids.
func sectionID(sec types.OutlineSection) string {
	if sec.ID != "" {
		return sec.ID
	}
	return "section-" + strings.TrimSuffix(sec.File, ".md")
}

func blockFromOutline(sec types.OutlineSection, body string) types.TextBlock {
	return types.TextBlock{
		ID:           sectionID(sec),
		Title:        sec.Title,
		Kind:         sec.Kind,
		Description:  sec.Description,
		BulletPoints: sec.BulletPoints,
		Subsections:  sec.Subsections,
		Figures:      sec.Figures,
		MinWordCount: sec.MinWordCount,
		Body:         body,
	}
}

func outlineFromBlock(b types.TextBlock) types.OutlineSection {
	return types.OutlineSection{
		ID:           b.ID,
		Title:        b.Title,
		Kind:         b.Kind,
		Description:  b.Description,
		BulletPoints: b.BulletPoints,
		Subsections:  b.Subsections,
		Figures:      b.Figures,
		MinWordCount: b.MinWordCount,
	}
}
