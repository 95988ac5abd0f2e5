// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"encoding/json"
	"fmt"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-drafter/internal/references"
	"github.com/pdiddy/paper-drafter/pkg/types"
)

// Document is the structured export of a paper: the paper itself plus the
// reference list derived from its markers.
type Document struct {
	Paper      types.Paper       `json:"paper" yaml:"paper"`
	References []types.Reference `json:"references" yaml:"references"`
}

func newDocument(p types.Paper) Document {
	refs := references.Derive(p.Blocks)
	if refs == nil {
		refs = []types.Reference{}
	}
	return Document{Paper: p, References: refs}
}

// JSON renders the paper and its reference list as indented JSON.
func JSON(p types.Paper) ([]byte, error) {
	data, err := json.MarshalIndent(newDocument(p), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling JSON: %w", err)
	}
	return data, nil
}

// YAML renders the paper and its reference list as YAML.
func YAML(p types.Paper) ([]byte, error) {
	data, err := yaml.Marshal(newDocument(p))
	if err != nil {
		return nil, fmt.Errorf("marshaling YAML: %w", err)
	}
	return data, nil
}
