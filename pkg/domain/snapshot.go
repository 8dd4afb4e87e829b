package domain

import "slices"

// Snapshot is the full persisted state: roster, shift history and the admin
// identity set, written to durable storage as one document.
type Snapshot struct {
	Cars   []Car
	Shifts []Shift
	Admins []string
}

// NewSnapshot returns an empty snapshot with non-nil collections.
func NewSnapshot() Snapshot {
	return Snapshot{
		Cars:   []Car{},
		Shifts: []Shift{},
		Admins: []string{},
	}
}

// Clone returns a deep copy safe for concurrent readers.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Cars:   make([]Car, len(s.Cars)),
		Shifts: make([]Shift, len(s.Shifts)),
		Admins: slices.Clone(s.Admins),
	}
	for i, c := range s.Cars {
		out.Cars[i] = c.Clone()
	}
	for i, sh := range s.Shifts {
		out.Shifts[i] = sh.Clone()
	}
	return out
}
