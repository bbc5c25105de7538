// Package storage keeps property metadata documents off-ledger, addressed by
// the same fingerprint a PropertyAsset records as its metadata hash.
package storage

import "github.com/bitfsorg/propshare-go/ledger"

// MaxDocumentSize bounds a single metadata document.
const MaxDocumentSize = 16 << 20

// Store provides content-addressed storage for metadata documents.
type Store interface {
	// Put stores doc and returns its fingerprint. Storing the same
	// document twice is a no-op.
	Put(doc []byte) (ledger.Hash, error)

	// Get retrieves a document and verifies it against hash.
	Get(hash ledger.Hash) ([]byte, error)

	// Has checks if a document exists for hash.
	Has(hash ledger.Hash) (bool, error)

	// Delete removes the document for hash.
	Delete(hash ledger.Hash) error

	// List returns the hashes of all stored documents.
	List() ([]ledger.Hash, error)
}
