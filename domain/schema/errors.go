package schema

import (
	"errors"
	"fmt"
)

// ErrStructuralMismatch matches every *StructuralMismatch with errors.Is.
var ErrStructuralMismatch = errors.New("structural mismatch")

// StructuralMismatch is returned by Decode when a required field is missing
// or a value does not have the declared shape.
type StructuralMismatch struct {
	Path   string // JSON pointer to the offending value, "" for the document root
	Reason string
	Err    error // underlying decoder error, if any
}

func (e *StructuralMismatch) Error() string {
	path := e.Path
	if path == "" {
		path = "/"
	}
	return fmt.Sprintf("structural mismatch at %s: %s", path, e.Reason)
}

// Is reports whether target is ErrStructuralMismatch.
func (e *StructuralMismatch) Is(target error) bool {
	return target == ErrStructuralMismatch
}

func (e *StructuralMismatch) Unwrap() error {
	return e.Err
}

func mismatch(path, format string, args ...any) *StructuralMismatch {
	return &StructuralMismatch{Path: path, Reason: fmt.Sprintf(format, args...)}
}
