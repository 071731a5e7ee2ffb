// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"encoding/json"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/abdoljh/questscholar/pkg/types"
)

// ExportEntry joins one paper with its critic evaluation (if any) for
// export. The orchestrator reads export files to inspect run state without
// opening the database.
type ExportEntry struct {
	Paper      types.PaperRecord `json:"paper" yaml:"paper"`
	Evaluation *types.Evaluation `json:"evaluation,omitempty" yaml:"evaluation,omitempty"`
}

// ExportEntries returns the joined paper/evaluation view in collection order.
func (s *Session) ExportEntries() []ExportEntry {
	entries := make([]ExportEntry, len(s.Papers))
	for i, p := range s.Papers {
		entries[i] = ExportEntry{Paper: p}
		if ev, ok := s.Evaluation(p.Title); ok {
			entries[i].Evaluation = &ev
		}
	}
	return entries
}

// ExportYAML writes the joined session view to path as YAML.
func (s *Session) ExportYAML(path string) error {
	data, err := yaml.Marshal(s.ExportEntries())
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the joined session view to path as indented JSON.
func (s *Session) ExportJSON(path string) error {
	data, err := json.MarshalIndent(s.ExportEntries(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
