package asset_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"

	"github.com/bitfsorg/propshare-go/access"
	"github.com/bitfsorg/propshare-go/allowlist"
	"github.com/bitfsorg/propshare-go/asset"
	"github.com/bitfsorg/propshare-go/ledger"
	"github.com/bitfsorg/propshare-go/ledger/ledgertest"
	"github.com/bitfsorg/propshare-go/registry"
)

var (
	admin     = ledgertest.Addr(0x01)
	owner     = ledgertest.Addr(0xAA)
	buyer     = ledgertest.Addr(0xBB)
	other     = ledgertest.Addr(0xCC)
	snapshots = ledgertest.Addr(0x5E)
	regAddr   = ledgertest.Addr(0xE0)
	listAddr  = ledgertest.Addr(0xE1)
	tokAddr   = ledgertest.Addr(0xE2)
	assetAddr = ledgertest.Addr(0xE3)
)

type fixture struct {
	st    *ledgertest.State
	reg   *registry.Registry
	list  *allowlist.AllowList
	token *asset.ShareToken
}

func newFixture(t *testing.T, restricted bool) *fixture {
	t.Helper()
	st := ledgertest.NewState()
	reg := registry.New(regAddr, admin)
	list := allowlist.New(listAddr, admin)
	tok, err := asset.NewShareToken(tokAddr, admin, asset.TokenParams{
		Name: "Elm Street Shares", Symbol: "ELM", Asset: assetAddr, Registry: regAddr,
		Restricted: restricted, Supply: 1000, Owner: owner,
	})
	require.NoError(t, err)
	st.Put(reg, list, tok)

	ctx := st.Context()
	require.NoError(t, reg.SetApproval(ctx, admin, listAddr))
	require.NoError(t, tok.GrantRole(ctx, admin, access.Snapshot, snapshots))
	st.Commit(ctx)
	return &fixture{st: st, reg: reg, list: list, token: tok}
}

func (f *fixture) supplyHeld() uint64 {
	var sum uint64
	for _, h := range f.token.Holdings() {
		sum += h.Balance
	}
	return sum
}

// --- ShareToken tests ---

func TestNewShareToken(t *testing.T) {
	f := newFixture(t, false)
	assert.EqualValues(t, 1000, f.token.TotalSupply)
	assert.EqualValues(t, 1000, f.token.BalanceOf(owner))
	assert.Equal(t, []asset.Holding{{Holder: owner, Balance: 1000}}, f.token.Holdings())

	_, err := asset.NewShareToken(tokAddr, admin, asset.TokenParams{Supply: 0, Owner: owner})
	assert.ErrorIs(t, err, asset.ErrZeroSupply)
	_, err = asset.NewShareToken(tokAddr, admin, asset.TokenParams{Supply: 1})
	assert.ErrorIs(t, err, ledger.ErrInvalidArgument)
}

func TestTransfer_ConservesSupply(t *testing.T) {
	f := newFixture(t, false)
	ctx := f.st.Context()

	steps := []struct {
		from, to ledger.Address
		amount   uint64
	}{
		{owner, buyer, 300},
		{buyer, other, 100},
		{owner, owner, 50},
		{other, buyer, 100},
		{buyer, owner, 0},
	}
	for _, s := range steps {
		require.NoError(t, f.token.Transfer(ctx, s.from, s.to, s.amount))
		assert.EqualValues(t, f.token.TotalSupply, f.supplyHeld())
	}
	assert.EqualValues(t, 700, f.token.BalanceOf(owner))
	assert.EqualValues(t, 300, f.token.BalanceOf(buyer))
	assert.Zero(t, f.token.BalanceOf(other))
	assert.Len(t, f.token.Holdings(), 2, "emptied balances leave the holder list")

	evs := f.st.Commit(ctx)
	assert.Len(t, evs, len(steps))
	assert.Equal(t, asset.Transfer{From: owner, To: buyer, Amount: 300}, evs[0].Payload)
}

func TestTransfer_Errors(t *testing.T) {
	f := newFixture(t, false)
	ctx := f.st.Context()

	assert.ErrorIs(t, f.token.Transfer(ctx, owner, buyer, 1001), asset.ErrInsufficientBalance)
	assert.ErrorIs(t, f.token.Transfer(ctx, buyer, owner, 1), asset.ErrInsufficientBalance)
	assert.ErrorIs(t, f.token.Transfer(ctx, owner, ledger.ZeroAddress, 1), ledger.ErrInvalidArgument)
	assert.EqualValues(t, 1000, f.token.BalanceOf(owner))
	assert.Empty(t, ledgertest.Pending(ctx))
}

func TestTransfer_Restricted(t *testing.T) {
	f := newFixture(t, true)
	ctx := f.st.Context()

	err := f.token.Transfer(ctx, owner, buyer, 10)
	assert.ErrorIs(t, err, asset.ErrNotApproved)
	assert.ErrorIs(t, err, ledger.ErrUnauthorized)

	require.NoError(t, f.list.Approve(ctx, admin, owner))
	assert.ErrorIs(t, f.token.Transfer(ctx, owner, buyer, 10), asset.ErrNotApproved, "recipient must be approved too")

	require.NoError(t, f.list.Approve(ctx, admin, buyer))
	require.NoError(t, f.token.Transfer(ctx, owner, buyer, 10))

	require.NoError(t, f.list.Revoke(ctx, admin, owner))
	assert.ErrorIs(t, f.token.Transfer(ctx, buyer, owner, 5), asset.ErrNotApproved)
	assert.EqualValues(t, 10, f.token.BalanceOf(buyer))
}

func TestTransfer_RestrictedFollowsRegistry(t *testing.T) {
	f := newFixture(t, true)
	ctx := f.st.Context()

	list2 := allowlist.New(ledgertest.Addr(0xE9), admin)
	f.st.Put(list2)
	require.NoError(t, list2.Approve(ctx, admin, owner))
	require.NoError(t, list2.Approve(ctx, admin, buyer))

	assert.ErrorIs(t, f.token.Transfer(ctx, owner, buyer, 1), asset.ErrNotApproved)
	require.NoError(t, f.reg.SetApproval(ctx, admin, list2.Contract))
	assert.NoError(t, f.token.Transfer(ctx, owner, buyer, 1), "repointed allow-list takes effect on the next transfer")
}

func TestTransfer_RestrictedUnsetApproval(t *testing.T) {
	st := ledgertest.NewState()
	reg := registry.New(regAddr, admin)
	tok, err := asset.NewShareToken(tokAddr, admin, asset.TokenParams{
		Registry: regAddr, Restricted: true, Supply: 10, Owner: owner,
	})
	require.NoError(t, err)
	st.Put(reg, tok)

	err = tok.Transfer(st.Context(), owner, buyer, 1)
	assert.ErrorIs(t, err, ledger.ErrUninitializedDependency)
	assert.EqualValues(t, 10, tok.BalanceOf(owner))
}

// --- Snapshot tests ---

func TestSnapshot_RequiresRole(t *testing.T) {
	f := newFixture(t, false)
	ctx := f.st.Context()

	_, err := f.token.Snapshot(ctx, owner)
	assert.ErrorIs(t, err, ledger.ErrUnauthorized)
	_, err = f.token.Snapshot(ctx, admin)
	assert.ErrorIs(t, err, ledger.ErrUnauthorized, "ADMIN alone cannot snapshot")
	assert.Empty(t, f.token.Snapshots)
}

func TestShareToken_RoleHoldersAndHoldings(t *testing.T) {
	f := newFixture(t, false)
	assert.Equal(t, []ledger.Address{snapshots}, f.token.Holders(access.Snapshot))
	assert.Equal(t, []ledger.Address{admin}, f.token.Holders(access.Admin))
	assert.Equal(t, []asset.Holding{{Holder: owner, Balance: 1000}}, f.token.Holdings())
}

func TestSnapshot_Immutable(t *testing.T) {
	f := newFixture(t, false)
	ctx := f.st.Context()
	require.NoError(t, f.token.Transfer(ctx, owner, buyer, 250))

	id1, err := f.token.Snapshot(ctx, snapshots)
	require.NoError(t, err)
	assert.EqualValues(t, 1, id1)
	before, err := f.token.SnapshotAt(id1)
	require.NoError(t, err)

	require.NoError(t, f.token.Transfer(ctx, owner, other, 500))
	require.NoError(t, f.token.Transfer(ctx, buyer, other, 250))

	after, err := f.token.SnapshotAt(id1)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	bal, err := f.token.SnapshotBalanceOf(id1, buyer)
	require.NoError(t, err)
	assert.EqualValues(t, 250, bal)
	bal, err = f.token.SnapshotBalanceOf(id1, other)
	require.NoError(t, err)
	assert.Zero(t, bal)

	// Mutating a returned copy must not reach the stored snapshot.
	after.Holdings[0].Balance = 1
	again, _ := f.token.SnapshotAt(id1)
	assert.Equal(t, before, again)

	id2, err := f.token.Snapshot(ctx, snapshots)
	require.NoError(t, err)
	assert.EqualValues(t, 2, id2)
	s2, _ := f.token.SnapshotAt(id2)
	assert.EqualValues(t, 750, s2.BalanceOf(other))
	assert.Equal(t, f.st.Height+1, s2.Height)

	_, err = f.token.SnapshotAt(3)
	assert.ErrorIs(t, err, asset.ErrSnapshotNotFound)
	_, err = f.token.SnapshotAt(0)
	assert.ErrorIs(t, err, asset.ErrSnapshotNotFound)
}

// --- PropertyAsset tests ---

func newProperty() *asset.PropertyAsset {
	return &asset.PropertyAsset{
		Control:   access.NewControl(assetAddr, admin),
		ID:        1,
		Owner:     owner,
		Valuation: 500_000,
		Status:    asset.StatusActive,
		Token:     tokAddr,
	}
}

func TestReject_Terminal(t *testing.T) {
	st := ledgertest.NewState()
	p := newProperty()
	ctx := st.Context()

	assert.ErrorIs(t, p.Reject(ctx, owner), ledger.ErrUnauthorized, "owner is not the asset ADMIN")
	require.NoError(t, p.Reject(ctx, admin))
	assert.Equal(t, asset.StatusRejected, p.Status)
	assert.ErrorIs(t, p.Reject(ctx, admin), asset.ErrRejected)
	assert.ErrorIs(t, p.UpdateValuation(ctx, admin, 1), asset.ErrRejected)

	evs := st.Commit(ctx)
	require.Len(t, evs, 1)
	assert.Equal(t, asset.PropertyRejected{AssetID: 1, Asset: assetAddr, Sender: admin}, evs[0].Payload)
}

func TestReject_FromCreated(t *testing.T) {
	st := ledgertest.NewState()
	p := newProperty()
	p.Status = asset.StatusCreated
	require.NoError(t, p.Reject(st.Context(), admin))
	assert.Equal(t, asset.StatusRejected, p.Status)
}

func TestUpdateValuation(t *testing.T) {
	st := ledgertest.NewState()
	p := newProperty()
	ctx := st.Context()

	assert.ErrorIs(t, p.UpdateValuation(ctx, owner, 1), ledger.ErrUnauthorized)
	require.NoError(t, p.UpdateValuation(ctx, admin, 650_000))
	require.NoError(t, p.UpdateValuation(ctx, admin, 650_000))
	assert.EqualValues(t, 650_000, p.Valuation)

	evs := st.Commit(ctx)
	require.Len(t, evs, 1)
	assert.Equal(t, asset.ValuationUpdated{AssetID: 1, Asset: assetAddr, Previous: 500_000, Current: 650_000}, evs[0].Payload)
}

func TestStatus_Text(t *testing.T) {
	for _, s := range []asset.Status{asset.StatusCreated, asset.StatusActive, asset.StatusRejected} {
		text, err := s.MarshalText()
		require.NoError(t, err)
		var back asset.Status
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, s, back)
	}
	var s asset.Status
	assert.ErrorIs(t, s.UnmarshalText([]byte("Pending")), ledger.ErrInvalidArgument)
}

// --- Fingerprint tests ---

func TestFingerprint(t *testing.T) {
	doc := "deed: 12 Elm Street, parcel 7"
	h, err := asset.Fingerprint(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, ledger.Hash(blake2b.Sum256([]byte(doc))), h)

	h2, err := asset.Fingerprint(strings.NewReader(doc + "."))
	require.NoError(t, err)
	assert.NotEqual(t, h, h2)
}
