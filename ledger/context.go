package ledger

import (
	"fmt"
	"log/slog"
	"math/bits"
	"sort"
)

// Contract is any component deployed at an address.
type Contract interface {
	ContractAddress() Address
}

// State is the committed world as seen by a transaction.
type State interface {
	// Lookup returns the contract deployed at addr.
	Lookup(addr Address) (Contract, bool)

	// Nonce returns the number of contracts deployed by addr.
	Nonce(addr Address) uint64

	// Balance returns the native-unit balance of addr.
	Balance(addr Address) uint64
}

// Resolver looks up contracts by address.
type Resolver interface {
	Lookup(addr Address) (Contract, bool)
}

// Resolve looks up the contract at addr and asserts that it implements T.
// The zero address fails closed with ErrUninitializedDependency.
func Resolve[T any](r Resolver, addr Address) (T, error) {
	var zero T
	if addr.IsZero() {
		return zero, ErrUninitializedDependency
	}
	c, ok := r.Lookup(addr)
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrNotFound, addr)
	}
	t, ok := c.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s is %T", ErrInterfaceMismatch, addr, c)
	}
	return t, nil
}

// Context is a single transaction against State. Deployments, nonce bumps,
// native-unit transfers and events are buffered here and only become visible
// when the substrate commits the context. Contract storage is mutated in place,
// so every operation validates fully before it writes.
type Context struct {
	height  uint64
	state   State
	log     *slog.Logger
	deploys map[Address]Contract
	order   []Address
	nonces  map[Address]uint64
	credits map[Address]uint64
	debits  map[Address]uint64
	events  []Event
}

// NewContext starts a transaction at height over state.
func NewContext(height uint64, state State, log *slog.Logger) *Context {
	if log == nil {
		log = slog.Default()
	}
	return &Context{
		height:  height,
		state:   state,
		log:     log,
		deploys: make(map[Address]Contract),
		nonces:  make(map[Address]uint64),
		credits: make(map[Address]uint64),
		debits:  make(map[Address]uint64),
	}
}

// Height returns the ledger height this transaction commits at.
func (c *Context) Height() uint64 { return c.height }

// Logger returns the transaction logger.
func (c *Context) Logger() *slog.Logger { return c.log }

// Lookup sees pending deployments before committed state.
func (c *Context) Lookup(addr Address) (Contract, bool) {
	if ct, ok := c.deploys[addr]; ok {
		return ct, true
	}
	return c.state.Lookup(addr)
}

// Nonce returns the deployer nonce including pending deployments.
func (c *Context) Nonce(addr Address) uint64 {
	if n, ok := c.nonces[addr]; ok {
		return n
	}
	return c.state.Nonce(addr)
}

// Deploy derives the next contract address for deployer and registers the
// contract returned by build.
func (c *Context) Deploy(deployer Address, build func(addr Address) Contract) Contract {
	nonce := c.Nonce(deployer)
	addr := DeriveAddress(deployer, nonce)
	c.nonces[deployer] = nonce + 1

	ct := build(addr)
	c.deploys[addr] = ct
	c.order = append(c.order, addr)
	return ct
}

// Balance returns the native-unit balance including staged transfers.
func (c *Context) Balance(addr Address) uint64 {
	return c.state.Balance(addr) + c.credits[addr] - c.debits[addr]
}

// Transfer stages a movement of native units.
func (c *Context) Transfer(from, to Address, amount uint64) error {
	if to.IsZero() {
		return fmt.Errorf("%w: transfer to zero address", ErrInvalidArgument)
	}
	if bal := c.Balance(from); bal < amount {
		return fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientFunds, from, bal, amount)
	}
	if from != to {
		if _, err := AddUnits(c.Balance(to), amount); err != nil {
			return fmt.Errorf("%w: credit %d to %s", err, amount, to)
		}
	}
	c.debits[from] += amount
	c.credits[to] += amount
	return nil
}

// AddUnits returns a+b, or ErrOverflow if the sum does not fit.
func AddUnits(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrOverflow
	}
	return sum, nil
}

// Emit buffers an event from emitter.
func (c *Context) Emit(emitter Address, p Payload) {
	c.events = append(c.events, Event{Height: c.height, Emitter: emitter, Payload: p})
}

// Effects is the buffered outcome of a successful transaction.
type Effects struct {
	Deploys []Contract
	Nonces  map[Address]uint64
	Deltas  map[Address]Delta
	Events  []Event
}

// Delta is the net native-unit movement of one account.
type Delta struct {
	Credit uint64
	Debit  uint64
}

// Effects returns the buffered outcome in deterministic order.
func (c *Context) Effects() Effects {
	fx := Effects{
		Nonces: c.nonces,
		Deltas: make(map[Address]Delta, len(c.credits)+len(c.debits)),
		Events: c.events,
	}
	for _, addr := range c.order {
		fx.Deploys = append(fx.Deploys, c.deploys[addr])
	}
	for addr, v := range c.credits {
		d := fx.Deltas[addr]
		d.Credit = v
		fx.Deltas[addr] = d
	}
	for addr, v := range c.debits {
		d := fx.Deltas[addr]
		d.Debit = v
		fx.Deltas[addr] = d
	}
	return fx
}

// SortAddresses orders addrs bytewise in place.
func SortAddresses(addrs []Address) {
	sort.Slice(addrs, func(i, j int) bool { return addrs[i].Compare(addrs[j]) < 0 })
}
