package revshare_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/propshare-go/access"
	"github.com/bitfsorg/propshare-go/asset"
	"github.com/bitfsorg/propshare-go/ledger"
	"github.com/bitfsorg/propshare-go/ledger/ledgertest"
	"github.com/bitfsorg/propshare-go/revshare"
)

var (
	admin   = ledgertest.Addr(0x01)
	alice   = ledgertest.Addr(0xAA)
	bob     = ledgertest.Addr(0xBB)
	outside = ledgertest.Addr(0xEE)
	tokAddr = ledgertest.Addr(0x70)
	revAddr = ledgertest.Addr(0x80)
)

type fixture struct {
	st  *ledgertest.State
	tok *asset.ShareToken
	rev *revshare.Revenue
}

// newFixture deploys a 1000-share token held 600/400 by alice and bob and a
// revenue engine holding SNAPSHOT on it.
func newFixture(t *testing.T, restrictDeposits bool) *fixture {
	t.Helper()
	st := ledgertest.NewState()
	tok, err := asset.NewShareToken(tokAddr, admin, asset.TokenParams{
		Name: "Elm Street Shares", Symbol: "ELM", Supply: 1000, Owner: alice,
	})
	require.NoError(t, err)
	rev := revshare.New(revAddr, admin, restrictDeposits)
	st.Put(tok, rev)
	st.Balances[alice] = 1000
	st.Balances[outside] = 1000

	ctx := st.Context()
	require.NoError(t, tok.Transfer(ctx, alice, bob, 400))
	require.NoError(t, tok.GrantRole(ctx, admin, access.Snapshot, revAddr))
	require.NoError(t, rev.GrantRole(ctx, admin, access.Distributor, admin))
	st.Commit(ctx)
	return &fixture{st: st, tok: tok, rev: rev}
}

func (f *fixture) deposit(t *testing.T, from ledger.Address, amount uint64) {
	t.Helper()
	ctx := f.st.Context()
	require.NoError(t, f.rev.Deposit(ctx, from, tokAddr, amount))
	f.st.Commit(ctx)
}

func TestDeposit(t *testing.T) {
	f := newFixture(t, false)

	ctx := f.st.Context()
	require.NoError(t, f.rev.Deposit(ctx, outside, tokAddr, 250))
	evs := f.st.Commit(ctx)

	require.Equal(t, []string{"Deposited"}, ledgertest.Names(evs))
	dep := evs[0].Payload.(revshare.Deposited)
	assert.Equal(t, revshare.Deposited{Token: tokAddr, From: outside, Amount: 250, Pool: 250}, dep)
	assert.Equal(t, uint64(250), f.rev.Pool(tokAddr))
	assert.Equal(t, uint64(750), f.st.Balances[outside])
	assert.Equal(t, uint64(250), f.st.Balances[revAddr])
}

func TestDeposit_Errors(t *testing.T) {
	f := newFixture(t, false)

	ctx := f.st.Context()
	assert.ErrorIs(t, f.rev.Deposit(ctx, outside, tokAddr, 0), revshare.ErrZeroDeposit)
	assert.ErrorIs(t, f.rev.Deposit(ctx, outside, ledger.ZeroAddress, 10), ledger.ErrUninitializedDependency)
	assert.ErrorIs(t, f.rev.Deposit(ctx, outside, ledgertest.Addr(0x99), 10), ledger.ErrNotFound)
	assert.ErrorIs(t, f.rev.Deposit(ctx, outside, revAddr, 10), ledger.ErrInterfaceMismatch)
	assert.ErrorIs(t, f.rev.Deposit(ctx, outside, tokAddr, 5000), ledger.ErrInsufficientFunds)
	assert.Empty(t, ledgertest.Pending(ctx))
	assert.Zero(t, f.rev.Pool(tokAddr))
}

func TestDeposit_PoolOverflow(t *testing.T) {
	f := newFixture(t, false)
	f.st.Balances[alice] = math.MaxUint64
	f.st.Balances[outside] = math.MaxUint64
	f.deposit(t, alice, math.MaxUint64)

	ctx := f.st.Context()
	err := f.rev.Deposit(ctx, outside, tokAddr, math.MaxUint64)
	assert.ErrorIs(t, err, ledger.ErrOverflow)
	assert.Empty(t, ledgertest.Pending(ctx))
	assert.Equal(t, uint64(math.MaxUint64), f.rev.Pool(tokAddr))
	assert.Equal(t, uint64(math.MaxUint64), ctx.Balance(outside))
}

func TestDeposit_Restricted(t *testing.T) {
	f := newFixture(t, true)

	ctx := f.st.Context()
	assert.ErrorIs(t, f.rev.Deposit(ctx, outside, tokAddr, 10), ledger.ErrUnauthorized)

	require.NoError(t, f.rev.GrantRole(ctx, admin, access.Distributor, outside))
	require.NoError(t, f.rev.Deposit(ctx, outside, tokAddr, 10))
	assert.Equal(t, uint64(10), f.rev.Pool(tokAddr))
}

func TestDistribute(t *testing.T) {
	f := newFixture(t, false)
	f.deposit(t, outside, 101)

	ctx := f.st.Context()
	id, err := f.rev.Distribute(ctx, admin, tokAddr)
	require.NoError(t, err)
	evs := f.st.Commit(ctx)
	assert.Equal(t, uint64(1), id)
	assert.Equal(t, []string{"SnapshotTaken", "DistributionRound"}, ledgertest.Names(evs))

	round, err := f.rev.Round(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(101), round.RevenuePool)
	assert.Equal(t, uint64(1000), round.Supply)
	assert.Equal(t, uint64(1), round.Remainder)
	assert.Equal(t, uint64(60), round.Share(alice))
	assert.Equal(t, uint64(40), round.Share(bob))
	assert.Equal(t, uint64(1), f.rev.Pool(tokAddr), "remainder stays pooled")

	// Balances moving after the snapshot do not change the round.
	ctx = f.st.Context()
	require.NoError(t, f.tok.Transfer(ctx, bob, alice, 400))
	f.st.Commit(ctx)
	got, err := f.rev.Claimable(id, bob)
	require.NoError(t, err)
	assert.Equal(t, uint64(40), got)
}

func TestDistribute_Errors(t *testing.T) {
	t.Run("not distributor", func(t *testing.T) {
		f := newFixture(t, false)
		f.deposit(t, outside, 100)
		_, err := f.rev.Distribute(f.st.Context(), outside, tokAddr)
		assert.ErrorIs(t, err, ledger.ErrUnauthorized)
	})

	t.Run("empty pool", func(t *testing.T) {
		f := newFixture(t, false)
		ctx := f.st.Context()
		_, err := f.rev.Distribute(ctx, admin, tokAddr)
		assert.ErrorIs(t, err, revshare.ErrInsufficientPayment)
		assert.Empty(t, ledgertest.Pending(ctx))
		assert.Empty(t, f.tok.Snapshots)
	})

	t.Run("snapshot not granted", func(t *testing.T) {
		f := newFixture(t, false)
		f.deposit(t, outside, 100)
		ctx := f.st.Context()
		require.NoError(t, f.tok.RevokeRole(ctx, admin, access.Snapshot, revAddr))
		_, err := f.rev.Distribute(ctx, admin, tokAddr)
		assert.ErrorIs(t, err, ledger.ErrMissingCapability)
		assert.Empty(t, f.rev.Rounds)
		assert.Equal(t, uint64(100), f.rev.Pool(tokAddr))
	})
}

// shortToken reports a snapshot whose holdings cover only part of its supply.
type shortToken struct{ addr ledger.Address }

func (s *shortToken) ContractAddress() ledger.Address          { return s.addr }
func (s *shortToken) HasRole(access.Role, ledger.Address) bool { return true }

func (s *shortToken) Snapshot(*ledger.Context, ledger.Address) (uint64, error) { return 1, nil }

func (s *shortToken) SnapshotAt(uint64) (asset.Snapshot, error) {
	return asset.Snapshot{ID: 1, Supply: 1000, Holdings: []asset.Holding{{Holder: alice, Balance: 600}}}, nil
}

func TestDistribute_SnapshotMustCoverSupply(t *testing.T) {
	f := newFixture(t, false)
	short := &shortToken{addr: ledgertest.Addr(0x71)}
	f.st.Put(short)
	f.deposit(t, outside, 100)

	ctx := f.st.Context()
	require.NoError(t, f.rev.Deposit(ctx, outside, short.addr, 100))
	f.st.Commit(ctx)

	ctx = f.st.Context()
	_, err := f.rev.Distribute(ctx, admin, short.addr)
	assert.ErrorIs(t, err, revshare.ErrShareConservationViolation)
	assert.Empty(t, f.rev.Rounds)
	assert.Empty(t, ledgertest.Pending(ctx))
	assert.Equal(t, uint64(100), f.rev.Pool(short.addr))

	_, err = f.rev.Distribute(ctx, admin, tokAddr)
	require.NoError(t, err, "a consistent token still distributes")
}

func TestClaim(t *testing.T) {
	f := newFixture(t, false)
	f.deposit(t, outside, 100)

	ctx := f.st.Context()
	id, err := f.rev.Distribute(ctx, admin, tokAddr)
	require.NoError(t, err)
	f.st.Commit(ctx)

	ctx = f.st.Context()
	amount, err := f.rev.Claim(ctx, alice, id)
	require.NoError(t, err)
	evs := f.st.Commit(ctx)
	assert.Equal(t, uint64(60), amount)
	require.Equal(t, []string{"Claimed"}, ledgertest.Names(evs))
	assert.Equal(t, revshare.Claimed{Round: id, Holder: alice, Amount: 60}, evs[0].Payload)
	assert.Equal(t, uint64(1060), f.st.Balances[alice])

	claimable, err := f.rev.Claimable(id, alice)
	require.NoError(t, err)
	assert.Zero(t, claimable)

	ctx = f.st.Context()
	_, err = f.rev.Claim(ctx, alice, id)
	assert.ErrorIs(t, err, ledger.ErrAlreadyClaimed)
	assert.Empty(t, ledgertest.Pending(ctx))

	ctx = f.st.Context()
	amount, err = f.rev.Claim(ctx, bob, id)
	require.NoError(t, err)
	f.st.Commit(ctx)
	assert.Equal(t, uint64(40), amount)
	assert.Zero(t, f.st.Balances[revAddr])
}

func TestClaim_NoShare(t *testing.T) {
	f := newFixture(t, false)
	f.deposit(t, outside, 100)
	ctx := f.st.Context()
	id, err := f.rev.Distribute(ctx, admin, tokAddr)
	require.NoError(t, err)
	f.st.Commit(ctx)

	ctx = f.st.Context()
	amount, err := f.rev.Claim(ctx, outside, id)
	require.NoError(t, err)
	assert.Zero(t, amount)
	assert.Empty(t, ledgertest.Pending(ctx))

	_, err = f.rev.Claim(ctx, alice, 7)
	assert.ErrorIs(t, err, revshare.ErrRoundNotFound)
}

func TestRound_ReturnsCopy(t *testing.T) {
	f := newFixture(t, false)
	f.deposit(t, outside, 100)
	ctx := f.st.Context()
	id, err := f.rev.Distribute(ctx, admin, tokAddr)
	require.NoError(t, err)
	f.st.Commit(ctx)

	round, err := f.rev.Round(id)
	require.NoError(t, err)
	round.Payouts[0].Amount = 999
	round.Claimed[alice] = true

	again, err := f.rev.Round(id)
	require.NoError(t, err)
	assert.NotEqual(t, uint64(999), again.Payouts[0].Amount)
	assert.False(t, again.Claimed[alice])
}
