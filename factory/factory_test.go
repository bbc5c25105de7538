package factory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/propshare-go/access"
	"github.com/bitfsorg/propshare-go/asset"
	"github.com/bitfsorg/propshare-go/factory"
	"github.com/bitfsorg/propshare-go/ledger"
	"github.com/bitfsorg/propshare-go/ledger/ledgertest"
	"github.com/bitfsorg/propshare-go/registry"
	"github.com/bitfsorg/propshare-go/revshare"
)

var (
	admin   = ledgertest.Addr(0x01)
	creator = ledgertest.Addr(0x02)
	owner   = ledgertest.Addr(0xAA)
	regAddr = ledgertest.Addr(0xE0)
	facAddr = ledgertest.Addr(0xE1)
	rev1    = ledgertest.Addr(0xF1)
	rev2    = ledgertest.Addr(0xF2)
)

type fixture struct {
	st  *ledgertest.State
	reg *registry.Registry
	fac *factory.Factory
}

func newFixture(t *testing.T, withRevenue bool) *fixture {
	t.Helper()
	st := ledgertest.NewState()
	reg := registry.New(regAddr, admin)
	fac := factory.New(facAddr, admin, regAddr, false)
	st.Put(reg, fac, revshare.New(rev1, admin, false), revshare.New(rev2, admin, false))

	ctx := st.Context()
	require.NoError(t, reg.SetFactory(ctx, admin, facAddr))
	if withRevenue {
		require.NoError(t, reg.SetRevenue(ctx, admin, rev1))
	}
	require.NoError(t, fac.GrantRole(ctx, admin, access.Creator, creator))
	st.Commit(ctx)
	return &fixture{st: st, reg: reg, fac: fac}
}

func params() factory.Params {
	return factory.Params{
		Owner:       owner,
		Name:        "12 Elm Street",
		Symbol:      "ELM",
		Valuation:   750_000,
		TokenSupply: 1000,
		TokenName:   "Elm Street Shares",
		TokenSymbol: "ELMS",
	}
}

func (f *fixture) create(t *testing.T, p factory.Params) (factory.Result, []ledger.Event) {
	t.Helper()
	ctx := f.st.Context()
	res, err := f.fac.CreateProperty(ctx, creator, p)
	require.NoError(t, err)
	return res, f.st.Commit(ctx)
}

func (f *fixture) token(t *testing.T, addr ledger.Address) *asset.ShareToken {
	t.Helper()
	tok, err := ledger.Resolve[*asset.ShareToken](f.st, addr)
	require.NoError(t, err)
	return tok
}

// --- CreateProperty tests ---

func TestCreateProperty(t *testing.T) {
	f := newFixture(t, true)
	res, evs := f.create(t, params())

	assert.EqualValues(t, 1, res.AssetID)
	assert.Equal(t, ledger.DeriveAddress(facAddr, 0), res.Asset)
	assert.Equal(t, ledger.DeriveAddress(facAddr, 1), res.Token)

	prop, err := ledger.Resolve[*asset.PropertyAsset](f.st, res.Asset)
	require.NoError(t, err)
	assert.Equal(t, asset.StatusActive, prop.Status)
	assert.Equal(t, owner, prop.Owner)
	assert.Equal(t, res.Token, prop.Token)
	assert.EqualValues(t, 750_000, prop.Valuation)
	assert.True(t, prop.HasRole(access.Admin, creator), "creating caller administers the asset")
	assert.False(t, prop.HasRole(access.Admin, facAddr))

	tok := f.token(t, res.Token)
	assert.EqualValues(t, 1000, tok.BalanceOf(owner))
	assert.Equal(t, res.Asset, tok.Asset)
	assert.True(t, tok.HasRole(access.Admin, facAddr), "factory administers the token")
	assert.Equal(t, []ledger.Address{rev1}, tok.Holders(access.Snapshot))

	assert.Equal(t, []string{"RoleGranted", "PropertyRegistered"}, ledgertest.Names(evs))
	assert.Equal(t, factory.PropertyRegistered{
		AssetID: 1, Owner: owner, Asset: res.Asset, Token: res.Token,
		Name: "12 Elm Street", Symbol: "ELM", Valuation: 750_000,
	}, evs[1].Payload)
	assert.Equal(t, facAddr, evs[1].Emitter)

	got, err := f.fac.Property(1)
	require.NoError(t, err)
	assert.Equal(t, factory.Property{ID: 1, Asset: res.Asset, Token: res.Token}, got)
	assert.Equal(t, []factory.Property{got}, f.fac.Properties())
}

func TestCreateProperty_SequentialIDs(t *testing.T) {
	f := newFixture(t, true)
	r1, _ := f.create(t, params())
	r2, _ := f.create(t, params())
	assert.EqualValues(t, 1, r1.AssetID)
	assert.EqualValues(t, 2, r2.AssetID)
	assert.NotEqual(t, r1.Token, r2.Token)
	assert.Len(t, f.fac.Properties(), 2)
}

func TestCreateProperty_Errors(t *testing.T) {
	tests := []struct {
		name   string
		caller ledger.Address
		modify func(*factory.Params)
		want   error
	}{
		{"non-creator", owner, func(*factory.Params) {}, ledger.ErrUnauthorized},
		{"admin without creator", admin, func(*factory.Params) {}, ledger.ErrUnauthorized},
		{"unauthorized before validation", owner, func(p *factory.Params) { p.TokenSupply = 0 }, ledger.ErrUnauthorized},
		{"zero owner", creator, func(p *factory.Params) { p.Owner = ledger.ZeroAddress }, factory.ErrZeroOwner},
		{"zero supply", creator, func(p *factory.Params) { p.TokenSupply = 0 }, factory.ErrZeroSupply},
		{"empty token name", creator, func(p *factory.Params) { p.TokenName = " " }, factory.ErrEmptyTokenName},
		{"empty token symbol", creator, func(p *factory.Params) { p.TokenSymbol = "" }, factory.ErrEmptyTokenName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, true)
			p := params()
			tt.modify(&p)
			ctx := f.st.Context()
			_, err := f.fac.CreateProperty(ctx, tt.caller, p)
			assert.ErrorIs(t, err, tt.want)

			fx := ctx.Effects()
			assert.Empty(t, fx.Deploys)
			assert.Empty(t, fx.Events)
			assert.Empty(t, f.fac.Properties())
		})
	}
}

func TestCreateProperty_RevenueUnset(t *testing.T) {
	f := newFixture(t, false)
	res, evs := f.create(t, params())

	tok := f.token(t, res.Token)
	assert.Empty(t, tok.Holders(access.Snapshot))
	assert.Equal(t, []string{"SnapshotGrantSkipped", "PropertyRegistered"}, ledgertest.Names(evs))
	skipped := evs[0].Payload.(factory.SnapshotGrantSkipped)
	assert.Equal(t, res.Token, skipped.Token)

	ctx := f.st.Context()
	assert.ErrorIs(t, f.fac.GrantSnapshotRoleToRevenue(ctx, admin, res.Token), ledger.ErrUninitializedDependency)

	require.NoError(t, f.reg.SetRevenue(ctx, admin, rev1))
	require.NoError(t, f.fac.GrantSnapshotRoleToRevenue(ctx, admin, res.Token))
	assert.Equal(t, []ledger.Address{rev1}, tok.Holders(access.Snapshot))
}

// --- Registry re-resolution ---

func TestGrantSnapshot_FollowsRegistry(t *testing.T) {
	f := newFixture(t, true)
	p1, _ := f.create(t, params())

	ctx := f.st.Context()
	require.NoError(t, f.reg.SetRevenue(ctx, admin, rev2))
	f.st.Commit(ctx)
	p2, _ := f.create(t, params())

	assert.Equal(t, []ledger.Address{rev1}, f.token(t, p1.Token).Holders(access.Snapshot))
	assert.Equal(t, []ledger.Address{rev2}, f.token(t, p2.Token).Holders(access.Snapshot))

	ctx = f.st.Context()
	require.NoError(t, f.fac.GrantSnapshotRoleToRevenue(ctx, admin, p1.Token))
	evs := f.st.Commit(ctx)
	assert.Equal(t, []ledger.Address{rev2}, f.token(t, p1.Token).Holders(access.Snapshot))
	assert.Equal(t, []string{"RoleRevoked", "RoleGranted"}, ledgertest.Names(evs))

	ctx = f.st.Context()
	require.NoError(t, f.fac.GrantSnapshotRoleToRevenue(ctx, admin, p1.Token))
	assert.Empty(t, ledgertest.Pending(ctx), "repair is idempotent")
}

func TestGrantSnapshot_Errors(t *testing.T) {
	f := newFixture(t, true)
	res, _ := f.create(t, params())
	ctx := f.st.Context()

	assert.ErrorIs(t, f.fac.GrantSnapshotRoleToRevenue(ctx, creator, res.Token), ledger.ErrUnauthorized)
	assert.ErrorIs(t, f.fac.GrantSnapshotRoleToRevenue(ctx, admin, res.Asset), factory.ErrPropertyNotFound)
	assert.Empty(t, ledgertest.Pending(ctx))
}

func TestProperty_NotFound(t *testing.T) {
	f := newFixture(t, true)
	_, err := f.fac.Property(1)
	assert.ErrorIs(t, err, factory.ErrPropertyNotFound)
	_, err = f.fac.Property(0)
	assert.ErrorIs(t, err, ledger.ErrInvalidArgument)
}
