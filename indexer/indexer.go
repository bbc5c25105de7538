// Package indexer projects the event log into a queryable property list.
// Consumers see the log at least once, so every Apply is idempotent keyed by
// asset address.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bitfsorg/propshare-go/asset"
	"github.com/bitfsorg/propshare-go/factory"
	"github.com/bitfsorg/propshare-go/ledger"
	"github.com/bitfsorg/propshare-go/store"
)

const replayPageSize = 200

var mCursor = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "propshare",
	Subsystem: "indexer",
	Name:      "cursor",
	Help:      "Seq of the last event projected",
})

// Indexer replays events into a store.PropertyStore.
type Indexer struct {
	events   store.EventLog
	props    store.PropertyStore
	log      *slog.Logger
	pageSize int
}

// New returns an indexer reading events and writing props.
func New(events store.EventLog, props store.PropertyStore, log *slog.Logger) *Indexer {
	if log == nil {
		log = slog.Default()
	}
	return &Indexer{events: events, props: props, log: log, pageSize: replayPageSize}
}

// Sync applies every event after the persisted cursor and returns the new cursor.
func (ix *Indexer) Sync(ctx context.Context) (uint64, error) {
	if ix.events == nil || ix.props == nil {
		return 0, fmt.Errorf("indexer: event log and property store are required")
	}
	lastSeq, err := ix.props.Cursor()
	if err != nil {
		return 0, fmt.Errorf("indexer: read cursor: %w", err)
	}
	for {
		if err := ctx.Err(); err != nil {
			return lastSeq, err
		}
		events, err := ix.events.Events(lastSeq, ix.pageSize)
		if err != nil {
			return lastSeq, fmt.Errorf("indexer: list events: %w", err)
		}
		if len(events) == 0 {
			return lastSeq, nil
		}
		for _, ev := range events {
			if err := ix.Apply(ctx, ev); err != nil {
				return lastSeq, err
			}
			lastSeq = ev.Seq
		}
		if err := ix.props.SetCursor(lastSeq); err != nil {
			return lastSeq, fmt.Errorf("indexer: write cursor: %w", err)
		}
		mCursor.Set(float64(lastSeq))
	}
}

// Run syncs every interval until ctx is cancelled.
func (ix *Indexer) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if seq, err := ix.Sync(ctx); err != nil && !errors.Is(err, context.Canceled) {
			ix.log.Error("index sync failed", "cursor", seq, "error", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Apply projects one event. Events already reflected in a record are skipped.
func (ix *Indexer) Apply(_ context.Context, ev ledger.Event) error {
	switch p := ev.Payload.(type) {
	case factory.PropertyRegistered:
		if _, err := ix.props.GetProperty(p.Asset); err == nil {
			return nil
		} else if !errors.Is(err, store.ErrPropertyNotFound) {
			return fmt.Errorf("indexer: get property %s: %w", p.Asset, err)
		}
		return ix.put(&store.PropertyRecord{
			AssetID:      p.AssetID,
			Asset:        p.Asset,
			Token:        p.Token,
			Owner:        p.Owner,
			Name:         p.Name,
			Symbol:       p.Symbol,
			MetadataHash: p.MetadataHash,
			Valuation:    p.Valuation,
			Status:       asset.StatusActive,
			CreatedAt:    ev.Height,
			LastSeq:      ev.Seq,
		})
	case asset.PropertyRejected:
		return ix.update(ev, p.Asset, func(rec *store.PropertyRecord) {
			rec.Status = asset.StatusRejected
		})
	case asset.ValuationUpdated:
		return ix.update(ev, p.Asset, func(rec *store.PropertyRecord) {
			rec.Valuation = p.Current
		})
	}
	return nil
}

func (ix *Indexer) update(ev ledger.Event, assetAddr ledger.Address, fn func(*store.PropertyRecord)) error {
	rec, err := ix.props.GetProperty(assetAddr)
	if errors.Is(err, store.ErrPropertyNotFound) {
		ix.log.Warn("event for unindexed property", "seq", ev.Seq, "event", ev.Name(), "asset", assetAddr)
		return nil
	}
	if err != nil {
		return fmt.Errorf("indexer: get property %s: %w", assetAddr, err)
	}
	if rec.LastSeq >= ev.Seq {
		return nil
	}
	fn(rec)
	rec.LastSeq = ev.Seq
	return ix.put(rec)
}

func (ix *Indexer) put(rec *store.PropertyRecord) error {
	if err := ix.props.PutProperty(rec); err != nil {
		return fmt.Errorf("indexer: put property %s: %w", rec.Asset, err)
	}
	ix.log.Debug("property indexed", "asset", rec.Asset, "id", rec.AssetID, "status", rec.Status, "seq", rec.LastSeq)
	return nil
}
