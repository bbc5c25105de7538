package storage

import "errors"

var (
	// ErrNotFound indicates no document exists for the given hash.
	ErrNotFound = errors.New("storage: document not found")

	// ErrIOFailure indicates a file read/write error.
	ErrIOFailure = errors.New("storage: I/O failure")

	// ErrEmptyContent indicates an attempt to store an empty document.
	ErrEmptyContent = errors.New("storage: document is empty")

	// ErrInvalidBaseDir indicates the base directory path is invalid.
	ErrInvalidBaseDir = errors.New("storage: invalid base directory")

	// ErrTooLarge indicates a document, stored or decompressed, exceeds MaxDocumentSize.
	ErrTooLarge = errors.New("storage: document exceeds maximum size")

	// ErrHashMismatch indicates stored content no longer matches its fingerprint.
	ErrHashMismatch = errors.New("storage: document hash mismatch")
)
