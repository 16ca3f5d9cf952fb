package knowledge

import (
	"fmt"
	"strings"
)

// CycleError reports that a set of edges would form a directed cycle.
// Cycle holds one offending path, first node repeated at the end.
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("prerequisite cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

// UnknownConceptError reports a reference to a concept absent from the graph.
type UnknownConceptError struct {
	ID string
}

func (e *UnknownConceptError) Error() string {
	return fmt.Sprintf("unknown concept: %q", e.ID)
}
