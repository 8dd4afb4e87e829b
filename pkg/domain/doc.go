/*
Package domain contains the core domain models for the motorpool engine.

It defines the fundamental entities of the fleet workflow: Cars and their
Assignments, immutable Shift records with ordered condition media, and the
Snapshot persisted as one document. This package is kept pure and free of
external dependencies like I/O or persistence, following Hexagonal
Architecture principles.

# Key Entities

  - Car: A roster entry with a sequential id and an optional Assignment.
  - Shift: One committed checkout, immutable, with a description snapshot.
  - Snapshot: The full persisted state (cars, shifts, admins).
  - Identity: A transport-side initiator (stable id + display name).

Failure modes are sentinel errors (ErrAlreadyOccupied, ErrUnauthorized, ...)
meant to be matched with errors.Is after wrapping.
*/
package domain
