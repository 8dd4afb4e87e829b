package domain

import "time"

// Identity describes the initiator of an inbound event as seen by the
// transport: a stable identity string plus a cosmetic display name.
type Identity struct {
	ID   string
	Name string
}

// Assignment records an active checkout of a car. A car carries an
// assignment iff it is currently taken for a shift.
type Assignment struct {
	DriverID   string    `json:"driver_id"`
	DriverName string    `json:"driver_name"`
	ShiftStart time.Time `json:"shift_start"`
}

// Car is a fleet roster entry. IDs are assigned sequentially starting at 1
// and are never reused.
type Car struct {
	ID          int         `json:"id"`
	Description string      `json:"description"`
	Assignment  *Assignment `json:"assignment,omitempty"`
}

// Free reports whether the car has no active assignment.
func (c Car) Free() bool {
	return c.Assignment == nil
}

// Clone returns a copy that shares no pointers with the receiver.
func (c Car) Clone() Car {
	out := c
	if c.Assignment != nil {
		a := *c.Assignment
		out.Assignment = &a
	}
	return out
}
