package chain

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/bitfsorg/propshare-go/ledger"
)

// State is the committed world: every deployed contract plus native-unit
// balances and deployer nonces.
type State struct {
	Height    uint64                             `json:"height"`
	Nonces    map[ledger.Address]uint64          `json:"nonces"`
	Balances  map[ledger.Address]uint64          `json:"balances"`
	Contracts map[ledger.Address]ledger.Contract `json:"contracts"`
}

var _ ledger.State = (*State)(nil)

func newState() *State {
	s := &State{}
	s.init()
	return s
}

// init restores maps gob leaves nil when they were empty.
func (s *State) init() {
	if s.Nonces == nil {
		s.Nonces = make(map[ledger.Address]uint64)
	}
	if s.Balances == nil {
		s.Balances = make(map[ledger.Address]uint64)
	}
	if s.Contracts == nil {
		s.Contracts = make(map[ledger.Address]ledger.Contract)
	}
}

// Lookup returns the contract deployed at addr.
func (s *State) Lookup(addr ledger.Address) (ledger.Contract, bool) {
	c, ok := s.Contracts[addr]
	return c, ok
}

// Nonce returns the number of contracts deployed by addr.
func (s *State) Nonce(addr ledger.Address) uint64 { return s.Nonces[addr] }

// Balance returns the native-unit balance of addr.
func (s *State) Balance(addr ledger.Address) uint64 { return s.Balances[addr] }

// Get resolves the contract at addr as T.
func Get[T any](s *State, addr ledger.Address) (T, error) {
	return ledger.Resolve[T](s, addr)
}

// apply folds a successful transaction into the state.
func (s *State) apply(height uint64, fx ledger.Effects) {
	for _, c := range fx.Deploys {
		s.Contracts[c.ContractAddress()] = c
	}
	for addr, n := range fx.Nonces {
		s.Nonces[addr] = n
	}
	for addr, d := range fx.Deltas {
		bal := s.Balances[addr] + d.Credit - d.Debit
		if bal == 0 {
			delete(s.Balances, addr)
			continue
		}
		s.Balances[addr] = bal
	}
	s.Height = height
}

func encodeState(s *State) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, fmt.Errorf("chain: encode state: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeState(data []byte) (*State, error) {
	var s State
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	s.init()
	return &s, nil
}
