package reactor

import "fmt"

// CellID identifies a cell of either kind inside a Reactor. It is a closed
// union: the only implementations are InputCellID and ComputeCellID.
// IDs are immutable, unique across the whole process, and comparable, so a
// CellID can be used as a map key.
type CellID interface {
	fmt.Stringer

	// isCell restricts the union to the two cell kinds.
	isCell()
}

// InputCellID identifies an input cell created by CreateInput.
// The zero value names no cell.
type InputCellID struct {
	id uint64
}

// ComputeCellID identifies a compute cell created by CreateCompute.
// The zero value names no cell.
type ComputeCellID struct {
	id uint64
}

// CallbackID identifies a callback registered with AddCallback. Callback
// IDs are drawn from the same counter as cell IDs but are not cells and do
// not satisfy CellID.
type CallbackID struct {
	id uint64
}

func (c InputCellID) isCell()   {}
func (c ComputeCellID) isCell() {}

// String renders the ID with its kind, e.g. "input:17".
func (c InputCellID) String() string { return fmt.Sprintf("input:%d", c.id) }

// String renders the ID with its kind, e.g. "compute:9".
func (c ComputeCellID) String() string { return fmt.Sprintf("compute:%d", c.id) }

// String renders the ID with its kind, e.g. "callback:3".
func (c CallbackID) String() string { return fmt.Sprintf("callback:%d", c.id) }
