package pbx

import (
	"errors"
	"fmt"
)

// Sentinels matched by errors.Is against the typed errors below.
var (
	ErrMissingNode  = errors.New("missing node")
	ErrInconsistent = errors.New("graph inconsistent")
)

// MissingNodeError reports a named target, group or phase the caller depends on
// that does not exist in the graph.
type MissingNodeError struct {
	Kind string // "target", "group", "phase", "project"
	Name string
}

func (e *MissingNodeError) Error() string {
	return fmt.Sprintf("%s %q not found in project", e.Kind, e.Name)
}

func (e *MissingNodeError) Is(target error) bool { return target == ErrMissingNode }

// GraphConsistencyError reports a reference that points at a node which is
// absent or of the wrong kind.
type GraphConsistencyError struct {
	ID     ID
	Ref    ID
	Reason string
}

func (e *GraphConsistencyError) Error() string {
	if e.Ref == "" {
		return fmt.Sprintf("object %s: %s", e.ID, e.Reason)
	}
	return fmt.Sprintf("object %s -> %s: %s", e.ID, e.Ref, e.Reason)
}

func (e *GraphConsistencyError) Is(target error) bool { return target == ErrInconsistent }

func missing(kind, name string) error {
	return &MissingNodeError{Kind: kind, Name: name}
}

func inconsistent(id, ref ID, format string, args ...any) error {
	return &GraphConsistencyError{ID: id, Ref: ref, Reason: fmt.Sprintf(format, args...)}
}
