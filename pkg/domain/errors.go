package domain

import "errors"

// ErrUnauthorized is returned when a non-admin invokes an admin operation.
var ErrUnauthorized = errors.New("unauthorized")

// ErrInvalidCarID is returned when an operation references an unknown car.
var ErrInvalidCarID = errors.New("invalid car id")

// ErrAlreadyOccupied is returned when a car is taken between selection and
// commit. There is no force-override.
var ErrAlreadyOccupied = errors.New("car already occupied")

// ErrNoActiveAssignment is returned by release when the driver holds no car.
var ErrNoActiveAssignment = errors.New("no active assignment")

// ErrSessionCorrupt signals a workflow invariant violation, e.g. a commit
// attempted without a chosen car.
var ErrSessionCorrupt = errors.New("checkout session corrupt")

// ErrNoSession is returned when stage input arrives for an identity that has
// no active checkout session.
var ErrNoSession = errors.New("no active session")

// ErrNoFreeCars is returned when a checkout is started with an empty
// candidate set.
var ErrNoFreeCars = errors.New("no free cars")

// ErrStoreIO wraps persistence failures. An operation that fails with it has
// not been applied in memory.
var ErrStoreIO = errors.New("snapshot store failure")

// ErrMalformedSelection is returned when a menu token does not parse or
// refers to a stale ledger position.
var ErrMalformedSelection = errors.New("malformed selection token")
