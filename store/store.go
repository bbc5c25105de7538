package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/bitfsorg/propshare-go/asset"
	"github.com/bitfsorg/propshare-go/ledger"
)

// EventLog is the append-only, replayable event log.
type EventLog interface {
	// Events returns up to limit events with Seq > after, in Seq order.
	// A limit <= 0 returns everything.
	Events(after uint64, limit int) ([]ledger.Event, error)

	// LastSeq returns the Seq of the newest event, or 0 for an empty log.
	LastSeq() (uint64, error)
}

// Ledger persists committed world state together with its events.
type Ledger interface {
	EventLog

	// Commit appends events and replaces the encoded world state in one write.
	Commit(events []ledger.Event, state []byte) error

	// LoadState returns the last committed world state, or ErrStateNotFound.
	LoadState() ([]byte, error)
}

// PropertyRecord is one row of the off-ledger property projection.
type PropertyRecord struct {
	AssetID      uint64         `json:"asset_id"`
	Asset        ledger.Address `json:"asset"`
	Token        ledger.Address `json:"token"`
	Owner        ledger.Address `json:"owner"`
	Name         string         `json:"name"`
	Symbol       string         `json:"symbol"`
	MetadataHash ledger.Hash    `json:"metadata_hash"`
	Valuation    uint64         `json:"valuation"`
	Status       asset.Status   `json:"status"`
	CreatedAt    uint64         `json:"created_at"`
	LastSeq      uint64         `json:"last_seq"` // newest event applied to this row
}

// PropertyStore persists the property projection and its replay cursor.
type PropertyStore interface {
	// PutProperty inserts or replaces a record keyed by asset address.
	PutProperty(rec *PropertyRecord) error

	// GetProperty retrieves a record by asset address.
	GetProperty(asset ledger.Address) (*PropertyRecord, error)

	// ListProperties returns every record ordered by asset id.
	ListProperties() ([]*PropertyRecord, error)

	// Cursor returns the Seq of the last event the projection consumed.
	Cursor() (uint64, error)

	// SetCursor records the Seq of the last consumed event.
	SetCursor(seq uint64) error
}

// checkContiguous verifies events continue a log whose newest Seq is last.
func checkContiguous(last uint64, events []ledger.Event) error {
	for _, ev := range events {
		if ev.Seq != last+1 {
			return fmt.Errorf("%w: got %d after %d", ErrOutOfOrder, ev.Seq, last)
		}
		last = ev.Seq
	}
	return nil
}

func sortRecords(recs []*PropertyRecord) {
	sort.Slice(recs, func(i, j int) bool { return recs[i].AssetID < recs[j].AssetID })
}

// MemStore is an in-memory implementation of Ledger and PropertyStore for testing.
type MemStore struct {
	mu     sync.RWMutex
	events []ledger.Event
	state  []byte
	props  map[ledger.Address]PropertyRecord
	cursor uint64
}

// Compile-time interface checks.
var (
	_ Ledger        = (*MemStore)(nil)
	_ PropertyStore = (*MemStore)(nil)
)

// NewMemStore creates a new in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{props: make(map[ledger.Address]PropertyRecord)}
}

// Commit appends events and replaces the world state.
func (s *MemStore) Commit(events []ledger.Event, state []byte) error {
	if state == nil {
		return fmt.Errorf("%w: state", ErrNilParam)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := checkContiguous(uint64(len(s.events)), events); err != nil {
		return err
	}
	s.events = append(s.events, events...)
	s.state = append([]byte(nil), state...)
	return nil
}

// LoadState returns the last committed world state.
func (s *MemStore) LoadState() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state == nil {
		return nil, ErrStateNotFound
	}
	return append([]byte(nil), s.state...), nil
}

// Events returns up to limit events after the given Seq.
func (s *MemStore) Events(after uint64, limit int) ([]ledger.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if after >= uint64(len(s.events)) {
		return nil, nil
	}
	page := s.events[after:]
	if limit > 0 && len(page) > limit {
		page = page[:limit]
	}
	return append([]ledger.Event(nil), page...), nil
}

// LastSeq returns the Seq of the newest event.
func (s *MemStore) LastSeq() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.events)), nil
}

// PutProperty inserts or replaces a record.
func (s *MemStore) PutProperty(rec *PropertyRecord) error {
	if rec == nil {
		return fmt.Errorf("%w: property record", ErrNilParam)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.props[rec.Asset] = *rec
	return nil
}

// GetProperty retrieves a record by asset address.
func (s *MemStore) GetProperty(assetAddr ledger.Address) (*PropertyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.props[assetAddr]
	if !ok {
		return nil, ErrPropertyNotFound
	}
	return &rec, nil
}

// ListProperties returns every record ordered by asset id.
func (s *MemStore) ListProperties() ([]*PropertyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*PropertyRecord, 0, len(s.props))
	for _, rec := range s.props {
		rec := rec
		out = append(out, &rec)
	}
	sortRecords(out)
	return out, nil
}

// Cursor returns the projection cursor.
func (s *MemStore) Cursor() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursor, nil
}

// SetCursor records the projection cursor.
func (s *MemStore) SetCursor(seq uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor = seq
	return nil
}
