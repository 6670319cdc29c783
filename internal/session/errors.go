package session

import "errors"

var (
	// ErrInvalidSession is returned when required identity fields are missing.
	ErrInvalidSession = errors.New("the userId and userName are required")

	// ErrDuplicateSession is returned when a generated token already exists in
	// the store. Astronomically unlikely, but checked.
	ErrDuplicateSession = errors.New("the user session is already created")

	// ErrInvalidArgument is returned when an empty token (or an unset TTL) is
	// passed to a store operation.
	ErrInvalidArgument = errors.New("invalid argument")
)
