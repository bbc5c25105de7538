package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/propshare-go/asset"
	"github.com/bitfsorg/propshare-go/ledger"
)

// newTestStore creates a FileStore in a temporary directory.
func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return store
}

// --- NewFileStore tests ---

func TestNewFileStore_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "docs")
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	assert.NotNil(t, store)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewFileStore_EmptyDir(t *testing.T) {
	_, err := NewFileStore("")
	assert.ErrorIs(t, err, ErrInvalidBaseDir)
}

// --- Put / Get tests ---

func TestFileStore_PutAndGet(t *testing.T) {
	store := newTestStore(t)
	doc := []byte(`{"address":"12 Elm Street","parcel":"A-113"}`)

	hash, err := store.Put(doc)
	require.NoError(t, err)

	want, err := asset.Fingerprint(bytes.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, want, hash, "documents are addressed by their metadata fingerprint")

	got, err := store.Get(hash)
	require.NoError(t, err)
	assert.Equal(t, doc, got)

	again, err := store.Put(doc)
	require.NoError(t, err)
	assert.Equal(t, hash, again)
}

func TestFileStore_ShardedAndCompressed(t *testing.T) {
	store := newTestStore(t)
	doc := bytes.Repeat([]byte("deed "), 1000)

	hash, err := store.Put(doc)
	require.NoError(t, err)

	path := HashToPath(store.baseDir, hash)
	assert.Equal(t, hash.String()[:2], filepath.Base(filepath.Dir(path)))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Less(t, info.Size(), int64(len(doc)))
}

func TestFileStore_Errors(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Put(nil)
	assert.ErrorIs(t, err, ErrEmptyContent)

	_, err = store.Put(make([]byte, MaxDocumentSize+1))
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = store.Get(ledger.Hash{0x01})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, store.Delete(ledger.Hash{0x01}), ErrNotFound)
}

func TestFileStore_DetectsTampering(t *testing.T) {
	store := newTestStore(t)
	hash, err := store.Put([]byte("original"))
	require.NoError(t, err)

	forged, err := compressGZIP([]byte("forged"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(HashToPath(store.baseDir, hash), forged, 0600))

	_, err = store.Get(hash)
	assert.ErrorIs(t, err, ErrHashMismatch)

	require.NoError(t, os.WriteFile(HashToPath(store.baseDir, hash), []byte("not gzip"), 0600))
	_, err = store.Get(hash)
	assert.ErrorIs(t, err, ErrIOFailure)
}

// --- Has / Delete / List tests ---

func TestFileStore_HasDeleteList(t *testing.T) {
	store := newTestStore(t)

	h1, err := store.Put([]byte("one"))
	require.NoError(t, err)
	h2, err := store.Put([]byte("two"))
	require.NoError(t, err)

	ok, err := store.Has(h1)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, os.WriteFile(filepath.Join(store.baseDir, "README"), []byte("x"), 0600))
	list, err := store.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []ledger.Hash{h1, h2}, list)

	require.NoError(t, store.Delete(h1))
	ok, err = store.Has(h1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStore_ConcurrentPut(t *testing.T) {
	store := newTestStore(t)
	doc := []byte("shared document")

	var wg sync.WaitGroup
	hashes := make([]ledger.Hash, 8)
	for i := range hashes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h, err := store.Put(doc)
			assert.NoError(t, err)
			hashes[i] = h
		}(i)
	}
	wg.Wait()

	for _, h := range hashes {
		assert.Equal(t, hashes[0], h)
	}
	list, err := store.List()
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
