package revshare

import (
	"fmt"

	"github.com/bitfsorg/propshare-go/access"
	"github.com/bitfsorg/propshare-go/asset"
	"github.com/bitfsorg/propshare-go/ledger"
)

// Revenue pools native-unit income per share token and pays it out to
// snapshot holders. Payouts are pull-based: a round only records who may
// claim what; holders collect with Claim.
type Revenue struct {
	access.Control
	RestrictDeposits bool                      // deposits require ADMIN or DISTRIBUTOR
	Pools            map[ledger.Address]uint64 // token -> undistributed units
	Rounds           []Round
}

// Round is one distribution against one snapshot.
type Round struct {
	ID          uint64                  `json:"id"`
	Token       ledger.Address          `json:"token"`
	SnapshotID  uint64                  `json:"snapshot_id"`
	Height      uint64                  `json:"height"`
	RevenuePool uint64                  `json:"revenue_pool"`
	Remainder   uint64                  `json:"remainder"`
	Supply      uint64                  `json:"supply"`
	Payouts     []Distribution          `json:"payouts"` // sorted by address
	Claimed     map[ledger.Address]bool `json:"claimed"`
}

// Share returns holder's payout in the round, claimed or not.
func (r *Round) Share(holder ledger.Address) uint64 {
	for _, p := range r.Payouts {
		if p.Address == holder {
			return p.Amount
		}
	}
	return 0
}

// New returns a revenue engine at addr administered by admin.
func New(addr, admin ledger.Address, restrictDeposits bool) *Revenue {
	return &Revenue{
		Control:          access.NewControl(addr, admin),
		RestrictDeposits: restrictDeposits,
		Pools:            make(map[ledger.Address]uint64),
	}
}

// Deposited is emitted when income is added to a token's pool.
type Deposited struct {
	Token  ledger.Address `json:"token"`
	From   ledger.Address `json:"from"`
	Amount uint64         `json:"amount"`
	Pool   uint64         `json:"pool"`
}

func (Deposited) EventName() string { return "Deposited" }

// DistributionRound is emitted when a round becomes claimable.
type DistributionRound struct {
	Round       uint64         `json:"round"`
	Token       ledger.Address `json:"token"`
	SnapshotID  uint64         `json:"snapshot_id"`
	RevenuePool uint64         `json:"revenue_pool"`
	Remainder   uint64         `json:"remainder"`
	Holders     int            `json:"holders"`
}

func (DistributionRound) EventName() string { return "DistributionRound" }

// Claimed is emitted when a holder collects a payout.
type Claimed struct {
	Round  uint64         `json:"round"`
	Holder ledger.Address `json:"holder"`
	Amount uint64         `json:"amount"`
}

func (Claimed) EventName() string { return "Claimed" }

func init() {
	ledger.RegisterContract(&Revenue{})
	ledger.RegisterPayload(Deposited{})
	ledger.RegisterPayload(DistributionRound{})
	ledger.RegisterPayload(Claimed{})
}

// snapshotter is what the engine needs from a share token.
type snapshotter interface {
	HasRole(role access.Role, account ledger.Address) bool
	Snapshot(ctx *ledger.Context, caller ledger.Address) (uint64, error)
	SnapshotAt(id uint64) (asset.Snapshot, error)
}

// Deposit moves amount native units from caller into token's pool.
func (r *Revenue) Deposit(ctx *ledger.Context, caller, token ledger.Address, amount uint64) error {
	if r.RestrictDeposits {
		if err := r.RequireAny(caller, access.Admin, access.Distributor); err != nil {
			return err
		}
	}
	if amount == 0 {
		return ErrZeroDeposit
	}
	if _, err := ledger.Resolve[snapshotter](ctx, token); err != nil {
		return fmt.Errorf("revshare: deposit: %w", err)
	}
	pool, err := ledger.AddUnits(r.Pools[token], amount)
	if err != nil {
		return fmt.Errorf("revshare: deposit into pool of %s: %w", token, err)
	}
	if err := ctx.Transfer(caller, r.Contract, amount); err != nil {
		return fmt.Errorf("revshare: deposit: %w", err)
	}
	if r.Pools == nil {
		r.Pools = make(map[ledger.Address]uint64)
	}
	r.Pools[token] = pool
	ctx.Emit(r.Contract, Deposited{Token: token, From: caller, Amount: amount, Pool: r.Pools[token]})
	return nil
}

// Distribute snapshots token and opens a claimable round over its whole pool.
// DISTRIBUTOR only. The token must have granted SNAPSHOT to this engine, and
// its snapshot must account for the whole supply. The floor remainder stays
// pooled for the next round.
func (r *Revenue) Distribute(ctx *ledger.Context, caller, token ledger.Address) (uint64, error) {
	if err := r.Require(caller, access.Distributor); err != nil {
		return 0, err
	}
	tok, err := ledger.Resolve[snapshotter](ctx, token)
	if err != nil {
		return 0, fmt.Errorf("revshare: distribute: %w", err)
	}
	if !tok.HasRole(access.Snapshot, r.Contract) {
		return 0, fmt.Errorf("%w: token %s has not granted SNAPSHOT to %s", ledger.ErrMissingCapability, token, r.Contract)
	}
	pool := r.Pools[token]
	if pool == 0 {
		return 0, fmt.Errorf("%w: token %s", ErrInsufficientPayment, token)
	}

	snapID, err := tok.Snapshot(ctx, r.Contract)
	if err != nil {
		return 0, fmt.Errorf("revshare: distribute: %w", err)
	}
	snap, err := tok.SnapshotAt(snapID)
	if err != nil {
		return 0, fmt.Errorf("revshare: distribute: %w", err)
	}
	entries := make([]RevShareEntry, len(snap.Holdings))
	for i, h := range snap.Holdings {
		entries[i] = RevShareEntry{Address: h.Holder, Share: h.Balance}
	}
	if err := ValidateShareConservation(entries, []RevShareEntry{{Address: token, Share: snap.Supply}}); err != nil {
		return 0, fmt.Errorf("revshare: distribute: snapshot %d of %s: %w", snapID, token, err)
	}
	payouts, remainder, err := DistributeRevenue(pool, entries, snap.Supply)
	if err != nil {
		return 0, fmt.Errorf("revshare: distribute: %w", err)
	}
	if err := ValidateDistribution(payouts, entries, pool, snap.Supply); err != nil {
		return 0, fmt.Errorf("revshare: distribute: %w", err)
	}

	round := Round{
		ID:          uint64(len(r.Rounds)) + 1,
		Token:       token,
		SnapshotID:  snapID,
		Height:      ctx.Height(),
		RevenuePool: pool,
		Remainder:   remainder,
		Supply:      snap.Supply,
		Payouts:     payouts,
		Claimed:     make(map[ledger.Address]bool),
	}
	r.Rounds = append(r.Rounds, round)
	r.Pools[token] = remainder
	ctx.Emit(r.Contract, DistributionRound{
		Round:       round.ID,
		Token:       token,
		SnapshotID:  snapID,
		RevenuePool: pool,
		Remainder:   remainder,
		Holders:     len(payouts),
	})
	ctx.Logger().Info("distribution round opened",
		"round", round.ID, "token", token, "snapshot", snapID, "pool", pool, "remainder", remainder)
	return round.ID, nil
}

// Claim pays caller's share of a round. A share can be claimed once; a
// holder with no share gets a successful no-op.
func (r *Revenue) Claim(ctx *ledger.Context, caller ledger.Address, roundID uint64) (uint64, error) {
	round, err := r.round(roundID)
	if err != nil {
		return 0, err
	}
	if round.Claimed[caller] {
		return 0, fmt.Errorf("%w: round %d holder %s", ledger.ErrAlreadyClaimed, roundID, caller)
	}
	amount := round.Share(caller)
	if amount == 0 {
		return 0, nil
	}
	if err := ctx.Transfer(r.Contract, caller, amount); err != nil {
		return 0, fmt.Errorf("revshare: claim: %w", err)
	}
	if round.Claimed == nil {
		round.Claimed = make(map[ledger.Address]bool)
	}
	round.Claimed[caller] = true
	ctx.Emit(r.Contract, Claimed{Round: roundID, Holder: caller, Amount: amount})
	return amount, nil
}

// Pool returns token's undistributed balance.
func (r *Revenue) Pool(token ledger.Address) uint64 { return r.Pools[token] }

// Round returns a copy of round id.
func (r *Revenue) Round(id uint64) (Round, error) {
	round, err := r.round(id)
	if err != nil {
		return Round{}, err
	}
	out := *round
	out.Payouts = append([]Distribution(nil), round.Payouts...)
	out.Claimed = make(map[ledger.Address]bool, len(round.Claimed))
	for k, v := range round.Claimed {
		out.Claimed[k] = v
	}
	return out, nil
}

// Claimable returns what holder can still collect from round id.
func (r *Revenue) Claimable(id uint64, holder ledger.Address) (uint64, error) {
	round, err := r.round(id)
	if err != nil {
		return 0, err
	}
	if round.Claimed[holder] {
		return 0, nil
	}
	return round.Share(holder), nil
}

func (r *Revenue) round(id uint64) (*Round, error) {
	if id == 0 || id > uint64(len(r.Rounds)) {
		return nil, fmt.Errorf("%w: %d", ErrRoundNotFound, id)
	}
	return &r.Rounds[id-1], nil
}
