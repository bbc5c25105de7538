package storage

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bitfsorg/propshare-go/asset"
	"github.com/bitfsorg/propshare-go/ledger"
)

// FileStore implements Store using the local filesystem.
// Documents are gzip-compressed at: {baseDir}/{hex(hash[:1])}/{hex(hash)}
// The first byte (2 hex chars) is used as a subdirectory for sharding.
type FileStore struct {
	baseDir string
	mu      sync.RWMutex
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a document store under baseDir, creating it if needed.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		return nil, ErrInvalidBaseDir
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// HashToPath converts a document hash to its filesystem path.
func HashToPath(baseDir string, hash ledger.Hash) string {
	hexHash := hash.String()
	return filepath.Join(baseDir, hexHash[:2], hexHash)
}

func (fs *FileStore) filePath(hash ledger.Hash) string {
	return HashToPath(fs.baseDir, hash)
}

// Put stores doc and returns its fingerprint.
func (fs *FileStore) Put(doc []byte) (ledger.Hash, error) {
	if len(doc) == 0 {
		return ledger.Hash{}, ErrEmptyContent
	}
	if len(doc) > MaxDocumentSize {
		return ledger.Hash{}, ErrTooLarge
	}
	hash, err := asset.Fingerprint(bytes.NewReader(doc))
	if err != nil {
		return ledger.Hash{}, err
	}
	packed, err := compressGZIP(doc)
	if err != nil {
		return ledger.Hash{}, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	path := fs.filePath(hash)
	if _, err := os.Stat(path); err == nil {
		return hash, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return ledger.Hash{}, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	if err := os.WriteFile(path, packed, 0600); err != nil {
		return ledger.Hash{}, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return hash, nil
}

// Get retrieves a document by hash and checks its fingerprint.
func (fs *FileStore) Get(hash ledger.Hash) ([]byte, error) {
	fs.mu.RLock()
	packed, err := os.ReadFile(fs.filePath(hash))
	fs.mu.RUnlock()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, hash)
		}
		return nil, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}

	doc, err := decompressGZIP(packed)
	if err != nil {
		return nil, err
	}
	got, err := asset.Fingerprint(bytes.NewReader(doc))
	if err != nil {
		return nil, err
	}
	if got != hash {
		return nil, fmt.Errorf("%w: %s holds %s", ErrHashMismatch, hash, got)
	}
	return doc, nil
}

// Has checks if a document exists for hash.
func (fs *FileStore) Has(hash ledger.Hash) (bool, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	_, err := os.Stat(fs.filePath(hash))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return true, nil
}

// Delete removes the document for hash.
func (fs *FileStore) Delete(hash ledger.Hash) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := os.Remove(fs.filePath(hash)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, hash)
		}
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return nil
}

// List returns all stored hashes by scanning the shard directories.
func (fs *FileStore) List() ([]ledger.Hash, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	entries, err := os.ReadDir(fs.baseDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}

	var result []ledger.Hash
	for _, entry := range entries {
		// Shard directories are 2-character hex strings
		if !entry.IsDir() || len(entry.Name()) != 2 {
			continue
		}
		files, err := os.ReadDir(filepath.Join(fs.baseDir, entry.Name()))
		if err != nil {
			continue
		}
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			hash, err := ledger.ParseHash(f.Name())
			if err != nil {
				continue // skip foreign files
			}
			result = append(result, hash)
		}
	}
	return result, nil
}
