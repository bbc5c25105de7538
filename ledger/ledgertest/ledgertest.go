// Package ledgertest provides an in-memory ledger.State for component tests.
package ledgertest

import (
	"io"
	"log/slog"

	"github.com/bitfsorg/propshare-go/ledger"
)

// State is a minimal committed world. It applies effects but never rolls back.
type State struct {
	Height    uint64
	Contracts map[ledger.Address]ledger.Contract
	Balances  map[ledger.Address]uint64
	Nonces    map[ledger.Address]uint64
	Events    []ledger.Event
}

// NewState returns an empty world.
func NewState() *State {
	return &State{
		Contracts: make(map[ledger.Address]ledger.Contract),
		Balances:  make(map[ledger.Address]uint64),
		Nonces:    make(map[ledger.Address]uint64),
	}
}

func (s *State) Lookup(addr ledger.Address) (ledger.Contract, bool) {
	c, ok := s.Contracts[addr]
	return c, ok
}

func (s *State) Nonce(addr ledger.Address) uint64   { return s.Nonces[addr] }
func (s *State) Balance(addr ledger.Address) uint64 { return s.Balances[addr] }

// Put installs contracts directly.
func (s *State) Put(cs ...ledger.Contract) {
	for _, c := range cs {
		s.Contracts[c.ContractAddress()] = c
	}
}

// Context opens a transaction at the next height with a silent logger.
func (s *State) Context() *ledger.Context {
	return ledger.NewContext(s.Height+1, s, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// Commit applies ctx's buffered effects and returns its events.
func (s *State) Commit(ctx *ledger.Context) []ledger.Event {
	fx := ctx.Effects()
	for _, c := range fx.Deploys {
		s.Contracts[c.ContractAddress()] = c
	}
	for a, n := range fx.Nonces {
		s.Nonces[a] = n
	}
	for a, d := range fx.Deltas {
		s.Balances[a] = s.Balances[a] + d.Credit - d.Debit
	}
	for i := range fx.Events {
		fx.Events[i].Seq = uint64(len(s.Events)) + 1
		s.Events = append(s.Events, fx.Events[i])
	}
	s.Height = ctx.Height()
	return fx.Events
}

// Addr returns an address filled with seed.
func Addr(seed byte) ledger.Address {
	var a ledger.Address
	for i := range a {
		a[i] = seed
	}
	return a
}

// Names lists the event names of evs in order.
func Names(evs []ledger.Event) []string {
	out := make([]string, len(evs))
	for i, ev := range evs {
		out[i] = ev.Name()
	}
	return out
}

// Pending returns the names of the events ctx has buffered so far.
func Pending(ctx *ledger.Context) []string {
	return Names(ctx.Effects().Events)
}
