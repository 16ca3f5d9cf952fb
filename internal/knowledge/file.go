package knowledge

import (
	"encoding/json"
	"fmt"
	"os"
)

// graphFile is the on-disk shape of a concept store export.
type graphFile struct {
	Concepts []Concept `json:"concepts"`
	Edges    []Edge    `json:"edges"`
}

// LoadGraph reads a JSON concept store export and builds the graph.
func LoadGraph(path string) (*Graph, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read graph file: %w", err)
	}
	var f graphFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse graph file %s: %w", path, err)
	}
	if len(f.Concepts) == 0 {
		return nil, fmt.Errorf("graph file %s contains no concepts", path)
	}
	return NewGraph(f.Concepts, f.Edges)
}
