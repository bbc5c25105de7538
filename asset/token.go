package asset

import (
	"fmt"
	"sort"

	"github.com/bitfsorg/propshare-go/access"
	"github.com/bitfsorg/propshare-go/ledger"
	"github.com/bitfsorg/propshare-go/registry"
)

// ShareToken is the fungible ownership ledger of one property.
// Supply is fixed at creation; the sum of Balances always equals TotalSupply.
type ShareToken struct {
	access.Control
	Name        string
	Symbol      string
	Asset       ledger.Address
	Registry    ledger.Address
	Restricted  bool // transfers require allow-list approval of both sides
	TotalSupply uint64
	Balances    map[ledger.Address]uint64 // nonzero balances only
	Snapshots   []Snapshot
}

// Holding is one holder's balance.
type Holding struct {
	Holder  ledger.Address `json:"holder"`
	Balance uint64         `json:"balance"`
}

// Snapshot is an immutable capture of every nonzero balance at a height.
type Snapshot struct {
	ID       uint64    `json:"id"`
	Height   uint64    `json:"height"`
	Supply   uint64    `json:"supply"`
	Holdings []Holding `json:"holdings"` // sorted by holder
}

// BalanceOf returns holder's recorded balance, or zero.
func (s *Snapshot) BalanceOf(holder ledger.Address) uint64 {
	for _, h := range s.Holdings {
		if h.Holder == holder {
			return h.Balance
		}
	}
	return 0
}

// Transfer is emitted when shares move between holders.
type Transfer struct {
	From   ledger.Address `json:"from"`
	To     ledger.Address `json:"to"`
	Amount uint64         `json:"amount"`
}

func (Transfer) EventName() string { return "Transfer" }

// SnapshotTaken is emitted when balances are frozen.
type SnapshotTaken struct {
	SnapshotID uint64 `json:"snapshot_id"`
	Height     uint64 `json:"height"`
	Holders    int    `json:"holders"`
}

func (SnapshotTaken) EventName() string { return "SnapshotTaken" }

func init() {
	ledger.RegisterContract(&ShareToken{})
	ledger.RegisterPayload(Transfer{})
	ledger.RegisterPayload(SnapshotTaken{})
}

// TokenParams configures a new share token.
type TokenParams struct {
	Name       string
	Symbol     string
	Asset      ledger.Address
	Registry   ledger.Address
	Restricted bool
	Supply     uint64
	Owner      ledger.Address // receives the whole supply
}

// NewShareToken mints the whole supply to params.Owner. admin becomes the
// token's only ADMIN.
func NewShareToken(addr, admin ledger.Address, params TokenParams) (*ShareToken, error) {
	if params.Supply == 0 {
		return nil, ErrZeroSupply
	}
	if params.Owner.IsZero() {
		return nil, fmt.Errorf("%w: token owner is zero address", ledger.ErrInvalidArgument)
	}
	return &ShareToken{
		Control:     access.NewControl(addr, admin),
		Name:        params.Name,
		Symbol:      params.Symbol,
		Asset:       params.Asset,
		Registry:    params.Registry,
		Restricted:  params.Restricted,
		TotalSupply: params.Supply,
		Balances:    map[ledger.Address]uint64{params.Owner: params.Supply},
	}, nil
}

// approvalChecker is what a restricted token needs from the APPROVAL slot.
type approvalChecker interface {
	Check(account ledger.Address) bool
}

// BalanceOf returns holder's live balance.
func (t *ShareToken) BalanceOf(holder ledger.Address) uint64 { return t.Balances[holder] }

// Holdings returns every nonzero balance sorted by holder.
func (t *ShareToken) Holdings() []Holding {
	out := make([]Holding, 0, len(t.Balances))
	for addr, bal := range t.Balances {
		if bal > 0 {
			out = append(out, Holding{Holder: addr, Balance: bal})
		}
	}
	sortHoldings(out)
	return out
}

// Transfer moves amount shares from caller to to. In restricted mode both
// sides are checked against the allow-list currently in the registry.
func (t *ShareToken) Transfer(ctx *ledger.Context, caller, to ledger.Address, amount uint64) error {
	if t.Restricted {
		if err := t.checkApproved(ctx, caller, to); err != nil {
			return err
		}
	}
	if to.IsZero() {
		return fmt.Errorf("%w: transfer to zero address", ledger.ErrInvalidArgument)
	}
	bal := t.Balances[caller]
	if amount > bal {
		return fmt.Errorf("%w: %s has %d, sends %d", ErrInsufficientBalance, caller, bal, amount)
	}
	if amount > 0 && caller != to {
		t.move(caller, to, amount)
	}
	ctx.Emit(t.Contract, Transfer{From: caller, To: to, Amount: amount})
	return nil
}

func (t *ShareToken) checkApproved(ctx *ledger.Context, from, to ledger.Address) error {
	list, _, err := registry.Lookup[approvalChecker](ctx, t.Registry, registry.Approval)
	if err != nil {
		return fmt.Errorf("asset: restricted transfer: %w", err)
	}
	for _, who := range []ledger.Address{from, to} {
		if !list.Check(who) {
			return fmt.Errorf("%w: %s", ErrNotApproved, who)
		}
	}
	return nil
}

func (t *ShareToken) move(from, to ledger.Address, amount uint64) {
	if t.Balances == nil {
		t.Balances = make(map[ledger.Address]uint64)
	}
	t.Balances[from] -= amount
	if t.Balances[from] == 0 {
		delete(t.Balances, from)
	}
	t.Balances[to] += amount
}

// Snapshot freezes every nonzero balance at the current height. SNAPSHOT only.
// Cost is linear in the holder count.
func (t *ShareToken) Snapshot(ctx *ledger.Context, caller ledger.Address) (uint64, error) {
	if err := t.Require(caller, access.Snapshot); err != nil {
		return 0, err
	}
	snap := Snapshot{
		ID:       uint64(len(t.Snapshots)) + 1,
		Height:   ctx.Height(),
		Supply:   t.TotalSupply,
		Holdings: t.Holdings(),
	}
	t.Snapshots = append(t.Snapshots, snap)
	ctx.Emit(t.Contract, SnapshotTaken{SnapshotID: snap.ID, Height: snap.Height, Holders: len(snap.Holdings)})
	return snap.ID, nil
}

// SnapshotAt returns a copy of snapshot id.
func (t *ShareToken) SnapshotAt(id uint64) (Snapshot, error) {
	if id == 0 || id > uint64(len(t.Snapshots)) {
		return Snapshot{}, fmt.Errorf("%w: %d on %s", ErrSnapshotNotFound, id, t.Contract)
	}
	s := t.Snapshots[id-1]
	s.Holdings = append([]Holding(nil), s.Holdings...)
	return s, nil
}

// SnapshotBalanceOf returns holder's balance recorded in snapshot id.
func (t *ShareToken) SnapshotBalanceOf(id uint64, holder ledger.Address) (uint64, error) {
	s, err := t.SnapshotAt(id)
	if err != nil {
		return 0, err
	}
	return s.BalanceOf(holder), nil
}

func sortHoldings(h []Holding) {
	sort.Slice(h, func(i, j int) bool { return h[i].Holder.Compare(h[j].Holder) < 0 })
}
