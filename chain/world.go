package chain

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bitfsorg/propshare-go/ledger"
	"github.com/bitfsorg/propshare-go/store"
)

// World is the ledger substrate: it runs transactions one at a time, commits
// them all-or-nothing, and persists state and events through a store.Ledger.
type World struct {
	mu        sync.RWMutex
	state     *State
	committed []byte // encoding of state at the last commit
	seq       uint64
	halted    error // set when a rollback could not restore committed state
	store     store.Ledger
	log       *slog.Logger
}

// Receipt describes a committed transaction.
type Receipt struct {
	Height   uint64           `json:"height"`
	Deployed []ledger.Address `json:"deployed,omitempty"`
	Events   []ledger.Event   `json:"events"`
}

// Open loads the world persisted in st, or starts an empty one.
func Open(st store.Ledger, log *slog.Logger) (*World, error) {
	if st == nil {
		return nil, ErrNilStore
	}
	if log == nil {
		log = slog.Default()
	}

	w := &World{store: st, log: log}
	data, err := st.LoadState()
	switch {
	case errors.Is(err, store.ErrStateNotFound):
		w.state = newState()
		if w.committed, err = encodeState(w.state); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("chain: load state: %w", err)
	default:
		if w.state, err = decodeState(data); err != nil {
			return nil, err
		}
		w.committed = data
	}
	if w.seq, err = st.LastSeq(); err != nil {
		return nil, fmt.Errorf("chain: load event log: %w", err)
	}
	mHeight.Set(float64(w.state.Height))
	return w, nil
}

// Execute runs fn as one transaction at the next height. If fn fails, or the
// commit cannot be persisted, every contract is restored to its last committed
// state and no event is published.
func (w *World) Execute(fn func(ctx *ledger.Context) error) (*Receipt, error) {
	return w.execute(fn, nil)
}

// Fund mints amount native units into account. Funding is the only source of
// native units; it exists for genesis and test setups.
func (w *World) Fund(account ledger.Address, amount uint64) (*Receipt, error) {
	if account.IsZero() {
		return nil, fmt.Errorf("%w: fund zero address", ledger.ErrInvalidArgument)
	}
	if amount == 0 {
		return nil, ErrZeroFunding
	}
	return w.execute(func(ctx *ledger.Context) error {
		if _, err := ledger.AddUnits(ctx.Balance(account), amount); err != nil {
			return fmt.Errorf("chain: fund %s: %w", account, err)
		}
		ctx.Emit(ledger.ZeroAddress, ledger.Funded{Account: account, Amount: amount})
		return nil
	}, map[ledger.Address]uint64{account: amount})
}

func (w *World) execute(fn func(ctx *ledger.Context) error, mint map[ledger.Address]uint64) (*Receipt, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.halted != nil {
		return nil, w.halted
	}

	height := w.state.Height + 1
	ctx := ledger.NewContext(height, w.state, w.log.With("height", height))
	if err := fn(ctx); err != nil {
		w.rollback(height, err)
		return nil, err
	}

	start := time.Now()
	fx := ctx.Effects()
	for addr, amount := range mint {
		d := fx.Deltas[addr]
		d.Credit += amount
		fx.Deltas[addr] = d
	}
	w.state.apply(height, fx)

	events := make([]ledger.Event, len(fx.Events))
	for i, ev := range fx.Events {
		ev.Seq = w.seq + uint64(i) + 1
		ev.ID = uuid.New()
		events[i] = ev
	}
	data, err := encodeState(w.state)
	if err == nil {
		err = w.store.Commit(events, data)
	}
	if err != nil {
		err = fmt.Errorf("chain: commit height %d: %w", height, err)
		w.rollback(height, err)
		return nil, err
	}
	w.committed = data
	w.seq += uint64(len(events))
	mCommitDuration.Observe(time.Since(start).Seconds())

	rcpt := &Receipt{Height: height, Events: events}
	for _, c := range fx.Deploys {
		rcpt.Deployed = append(rcpt.Deployed, c.ContractAddress())
	}
	mTxCommitted.Inc()
	mHeight.Set(float64(height))
	for _, ev := range events {
		mEvents.WithLabelValues(ev.Name()).Inc()
	}
	w.log.Debug("transaction committed", "height", height, "events", len(events), "deployed", len(rcpt.Deployed))
	return rcpt, nil
}

// rollback discards in-place contract mutations by reloading the last commit.
// If that fails the world halts: every later Execute returns ErrHalted.
func (w *World) rollback(height uint64, cause error) {
	mTxFailed.Inc()
	w.log.Warn("transaction rolled back", "height", height, "error", cause)
	s, err := decodeState(w.committed)
	if err != nil {
		w.halted = fmt.Errorf("%w: height %d: %w", ErrHalted, height, err)
		w.log.Error("restore committed state; world halted", "height", height, "error", err)
		return
	}
	w.state = s
}

// View runs fn against committed state under a read lock. fn must not mutate s.
func (w *World) View(fn func(s *State) error) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return fn(w.state)
}

// Height returns the height of the last committed transaction.
func (w *World) Height() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state.Height
}

// Balance returns addr's committed native-unit balance.
func (w *World) Balance(addr ledger.Address) uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state.Balance(addr)
}

// Events returns up to limit committed events after Seq after.
func (w *World) Events(after uint64, limit int) ([]ledger.Event, error) {
	return w.store.Events(after, limit)
}

// Store returns the backing event log.
func (w *World) Store() store.EventLog { return w.store }

// DumpJSON renders the whole committed state from its persisted encoding, so
// two dumps are equal exactly when the committed states are.
func (w *World) DumpJSON() ([]byte, error) {
	w.mu.RLock()
	data := w.committed
	w.mu.RUnlock()

	s, err := decodeState(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(s)
}
