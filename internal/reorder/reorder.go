// Package reorder implements manual drag-and-drop ordering of a list.
package reorder

import (
	"errors"
	"fmt"
)

var (
	ErrNoDrag     = errors.New("no drag in progress")
	ErrDragActive = errors.New("drag already in progress")
	ErrOutOfRange = errors.New("index out of range")
)

// Move returns a new slice in which the element at from has been extracted
// and reinserted at to. Elements between the two positions shift by one.
// The input slice is left untouched.
func Move[T any](items []T, from, to int) ([]T, error) {
	n := len(items)
	if from < 0 || from >= n {
		return nil, fmt.Errorf("from %d of %d: %w", from, n, ErrOutOfRange)
	}
	if to < 0 || to >= n {
		return nil, fmt.Errorf("to %d of %d: %w", to, n, ErrOutOfRange)
	}

	out := make([]T, 0, n)
	out = append(out, items...)
	if from == to {
		return out, nil
	}

	moved := out[from]
	if from < to {
		copy(out[from:to], out[from+1:to+1])
	} else {
		copy(out[to+1:from+1], out[to:from])
	}
	out[to] = moved
	return out, nil
}

// DragSession is the two-step drag protocol: Start records the source
// position, End the destination. A session is reusable after End or Cancel.
type DragSession struct {
	active bool
	from   int
}

// Start begins a drag from index from of a list of length n.
func (d *DragSession) Start(from, n int) error {
	if d.active {
		return ErrDragActive
	}
	if from < 0 || from >= n {
		return fmt.Errorf("start %d of %d: %w", from, n, ErrOutOfRange)
	}
	d.active = true
	d.from = from
	return nil
}

// Active reports whether a drag is in progress.
func (d *DragSession) Active() bool { return d.active }

// Cancel abandons the current drag.
func (d *DragSession) Cancel() { d.active = false }

// End finishes the drag at index to and returns the source index together
// with whether anything moved.
func (d *DragSession) End(to, n int) (from int, moved bool, err error) {
	if !d.active {
		return 0, false, ErrNoDrag
	}
	if to < 0 || to >= n {
		return 0, false, fmt.Errorf("end %d of %d: %w", to, n, ErrOutOfRange)
	}
	d.active = false
	return d.from, d.from != to, nil
}
