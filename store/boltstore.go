package store

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/bitfsorg/propshare-go/ledger"
)

var (
	bucketEvents     = []byte("events")
	bucketState      = []byte("state")
	bucketProperties = []byte("properties")
	bucketMeta       = []byte("meta")

	keyWorld  = []byte("world")
	keyCursor = []byte("indexer_cursor")
)

// BoltStore wraps a bbolt database holding the event log, the world state
// and the property projection.
type BoltStore struct {
	db *bbolt.DB
}

// Compile-time interface checks.
var (
	_ Ledger        = (*BoltStore)(nil)
	_ PropertyStore = (*BoltStore)(nil)
)

// OpenBoltStore opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltStore(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("store: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("store: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketEvents, bucketState, bucketProperties, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("boltstore: create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: create buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// seqKey encodes a sequence number as an 8-byte big-endian key for sorted storage.
func seqKey(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}

// encodeGob serializes a value using gob encoding.
func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeGob deserializes gob-encoded data into a value.
func decodeGob(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

func lastSeq(tx *bbolt.Tx) uint64 {
	k, _ := tx.Bucket(bucketEvents).Cursor().Last()
	if k == nil {
		return 0
	}
	return binary.BigEndian.Uint64(k)
}

// Commit appends events and replaces the world state in one bbolt transaction.
func (s *BoltStore) Commit(events []ledger.Event, state []byte) error {
	if state == nil {
		return fmt.Errorf("%w: state", ErrNilParam)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := checkContiguous(lastSeq(tx), events); err != nil {
			return err
		}
		eb := tx.Bucket(bucketEvents)
		for i := range events {
			data, err := encodeGob(&events[i])
			if err != nil {
				return fmt.Errorf("encode event %d: %w", events[i].Seq, err)
			}
			if err := eb.Put(seqKey(events[i].Seq), data); err != nil {
				return fmt.Errorf("boltstore: put event: %w", err)
			}
		}
		if err := tx.Bucket(bucketState).Put(keyWorld, state); err != nil {
			return fmt.Errorf("boltstore: put state: %w", err)
		}
		return nil
	})
}

// LoadState returns the last committed world state.
func (s *BoltStore) LoadState() ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketState).Get(keyWorld)
		if data == nil {
			return ErrStateNotFound
		}
		out = append([]byte(nil), data...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Events returns up to limit events after the given Seq.
func (s *BoltStore) Events(after uint64, limit int) ([]ledger.Event, error) {
	var out []ledger.Event
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketEvents).Cursor()
		for k, v := c.Seek(seqKey(after + 1)); k != nil; k, v = c.Next() {
			if limit > 0 && len(out) >= limit {
				break
			}
			var ev ledger.Event
			if err := decodeGob(v, &ev); err != nil {
				return fmt.Errorf("boltstore: decode event %d: %w", binary.BigEndian.Uint64(k), err)
			}
			out = append(out, ev)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LastSeq returns the Seq of the newest event.
func (s *BoltStore) LastSeq() (uint64, error) {
	var seq uint64
	err := s.db.View(func(tx *bbolt.Tx) error {
		seq = lastSeq(tx)
		return nil
	})
	return seq, err
}

// PutProperty inserts or replaces a record keyed by asset address.
func (s *BoltStore) PutProperty(rec *PropertyRecord) error {
	if rec == nil {
		return fmt.Errorf("%w: property record", ErrNilParam)
	}
	data, err := encodeGob(rec)
	if err != nil {
		return fmt.Errorf("encode property: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketProperties).Put(rec.Asset[:], data); err != nil {
			return fmt.Errorf("boltstore: put property: %w", err)
		}
		return nil
	})
}

// GetProperty retrieves a record by asset address.
func (s *BoltStore) GetProperty(assetAddr ledger.Address) (*PropertyRecord, error) {
	var rec PropertyRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketProperties).Get(assetAddr[:])
		if data == nil {
			return ErrPropertyNotFound
		}
		if err := decodeGob(data, &rec); err != nil {
			return fmt.Errorf("boltstore: decode property: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListProperties returns every record ordered by asset id.
func (s *BoltStore) ListProperties() ([]*PropertyRecord, error) {
	var out []*PropertyRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketProperties).ForEach(func(_, v []byte) error {
			var rec PropertyRecord
			if err := decodeGob(v, &rec); err != nil {
				return fmt.Errorf("boltstore: decode property: %w", err)
			}
			out = append(out, &rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sortRecords(out)
	return out, nil
}

// Cursor returns the projection cursor.
func (s *BoltStore) Cursor() (uint64, error) {
	var seq uint64
	err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(bucketMeta).Get(keyCursor); v != nil {
			seq = binary.BigEndian.Uint64(v)
		}
		return nil
	})
	return seq, err
}

// SetCursor records the projection cursor.
func (s *BoltStore) SetCursor(seq uint64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketMeta).Put(keyCursor, seqKey(seq))
	})
}
