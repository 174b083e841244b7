package reactor

import (
	"errors"
	"fmt"
)

// ErrNonexistentCell is returned by RemoveCallback when the compute cell
// has no callback registry, which is the case for any cell that never had
// a callback added.
var ErrNonexistentCell = errors.New("reactor: nonexistent cell")

// ErrNonexistentCallback is returned by RemoveCallback when the cell's
// callback registry exists but does not contain the callback, either
// because the ID was issued for a different cell or because the callback
// was already removed.
var ErrNonexistentCallback = errors.New("reactor: nonexistent callback")

// MissingDependencyError is returned by CreateCompute when a dependency
// does not name an existing cell. Dependencies are checked in declaration
// order and the first missing one is reported.
type MissingDependencyError struct {
	// Dependency is the offending ID.
	Dependency CellID
}

// Error implements the error interface.
func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("reactor: missing dependency %s", e.Dependency)
}
