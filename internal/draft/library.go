// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package draft

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-drafter/pkg/types"
)

// LibraryFile holds a project's citation library.
const LibraryFile = "library.yaml"

// LoadLibrary reads library.yaml. A project without one has an empty library.
func LoadLibrary(projectDir string) ([]types.LibraryCitation, error) {
	data, err := os.ReadFile(filepath.Join(projectDir, LibraryFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading library: %w", err)
	}
	var items []types.LibraryCitation
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parsing library: %w", err)
	}
	return items, nil
}

// SaveLibrary writes library.yaml.
func SaveLibrary(projectDir string, items []types.LibraryCitation) error {
	if items == nil {
		items = []types.LibraryCitation{}
	}
	data, err := yaml.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshaling library: %w", err)
	}
	if err := os.WriteFile(filepath.Join(projectDir, LibraryFile), data, 0o644); err != nil {
		return fmt.Errorf("writing library: %w", err)
	}
	return nil
}
