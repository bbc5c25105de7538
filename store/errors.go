package store

import "errors"

var (
	// ErrStateNotFound indicates no world state has been committed yet.
	ErrStateNotFound = errors.New("store: state not found")

	// ErrPropertyNotFound indicates the property was not found in the projection.
	ErrPropertyNotFound = errors.New("store: property not found")

	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("store: required parameter is nil")

	// ErrOutOfOrder indicates committed events do not continue the log contiguously.
	ErrOutOfOrder = errors.New("store: event sequence out of order")
)
