package trees

import (
	"errors"
	"fmt"
)

// Error kinds returned by the tree and the query engine. Callers match them
// with errors.Is; NodeNotFound additionally carries the failing segment.
var (
	ErrInvalidName           = errors.New("illegal node name")
	ErrNotADirectory         = errors.New("file has no children")
	ErrNotAFile              = errors.New("dir has no content")
	ErrDuplicateName         = errors.New("duplicate name")
	ErrNodeNotFound          = errors.New("node not found")
	ErrRootCreationForbidden = errors.New("can not create root")
)

// NotFoundError reports the first path segment that had no matching child.
type NotFoundError struct {
	Segment string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found child node %s", e.Segment)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNodeNotFound
}

func notFound(segment string) error {
	return &NotFoundError{Segment: segment}
}
