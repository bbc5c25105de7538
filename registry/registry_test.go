package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/propshare-go/access"
	"github.com/bitfsorg/propshare-go/allowlist"
	"github.com/bitfsorg/propshare-go/ledger"
	"github.com/bitfsorg/propshare-go/ledger/ledgertest"
	"github.com/bitfsorg/propshare-go/registry"
)

var (
	admin   = ledgertest.Addr(0x01)
	outside = ledgertest.Addr(0x02)
	regAddr = ledgertest.Addr(0xE0)
)

type checker interface {
	Check(ledger.Address) bool
}

func TestParseEntry(t *testing.T) {
	for _, s := range []string{"factory", "APPROVAL", " Revenue "} {
		_, err := registry.ParseEntry(s)
		assert.NoError(t, err, s)
	}
	_, err := registry.ParseEntry("oracle")
	assert.ErrorIs(t, err, registry.ErrUnknownEntry)
}

func TestGetters_SentinelWhenUnset(t *testing.T) {
	r := registry.New(regAddr, admin)
	assert.True(t, r.GetFactory().IsZero())
	assert.True(t, r.GetApproval().IsZero())
	assert.True(t, r.GetRevenue().IsZero())

	_, err := r.Resolve(registry.Revenue)
	assert.ErrorIs(t, err, ledger.ErrUninitializedDependency)
}

func TestSetters(t *testing.T) {
	st := ledgertest.NewState()
	r := registry.New(regAddr, admin)
	f1, f2 := ledgertest.Addr(0x11), ledgertest.Addr(0x12)

	ctx := st.Context()
	require.NoError(t, r.SetFactory(ctx, admin, f1))
	require.NoError(t, r.SetApproval(ctx, admin, ledgertest.Addr(0x21)))
	require.NoError(t, r.SetRevenue(ctx, admin, ledgertest.Addr(0x31)))
	require.NoError(t, r.SetFactory(ctx, admin, f2))
	evs := st.Commit(ctx)

	assert.Equal(t, f2, r.GetFactory())
	assert.Equal(t, ledgertest.Addr(0x21), r.GetApproval())
	assert.Equal(t, ledgertest.Addr(0x31), r.GetRevenue())
	got, err := r.Resolve(registry.Factory)
	require.NoError(t, err)
	assert.Equal(t, f2, got)

	require.Len(t, evs, 4)
	assert.Equal(t, registry.Updated{Entry: registry.Factory, Previous: f1, Current: f2}, evs[3].Payload)
	assert.Equal(t, "RegistryUpdated", evs[3].Name())
}

func TestSet_Errors(t *testing.T) {
	tests := []struct {
		name   string
		caller ledger.Address
		entry  registry.Entry
		addr   ledger.Address
		want   error
	}{
		{"non-admin", outside, registry.Factory, ledgertest.Addr(0x11), ledger.ErrUnauthorized},
		{"zero address", admin, registry.Factory, ledger.ZeroAddress, ledger.ErrInvalidArgument},
		{"unknown entry", admin, registry.Entry("ORACLE"), ledgertest.Addr(0x11), registry.ErrUnknownEntry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := ledgertest.NewState()
			r := registry.New(regAddr, admin)
			ctx := st.Context()
			assert.ErrorIs(t, r.Set(ctx, tt.caller, tt.entry, tt.addr), tt.want)
			assert.Empty(t, ledgertest.Pending(ctx))
			assert.Empty(t, r.Slots)
		})
	}
}

// --- Lookup tests ---

func TestLookup(t *testing.T) {
	st := ledgertest.NewState()
	r := registry.New(regAddr, admin)
	list := allowlist.New(ledgertest.Addr(0x21), admin)
	st.Put(r, list)

	_, _, err := registry.Lookup[checker](st, regAddr, registry.Approval)
	assert.ErrorIs(t, err, ledger.ErrUninitializedDependency, "unset slot fails closed")

	ctx := st.Context()
	require.NoError(t, r.SetApproval(ctx, admin, list.Contract))
	got, addr, err := registry.Lookup[checker](st, regAddr, registry.Approval)
	require.NoError(t, err)
	assert.Equal(t, list.Contract, addr)
	assert.Same(t, list, got.(*allowlist.AllowList))

	// The registry does not validate what it stores; dependents fail loudly.
	require.NoError(t, r.SetApproval(ctx, admin, regAddr))
	_, _, err = registry.Lookup[checker](st, regAddr, registry.Approval)
	assert.ErrorIs(t, err, ledger.ErrInterfaceMismatch)

	require.NoError(t, r.SetApproval(ctx, admin, ledgertest.Addr(0x99)))
	_, _, err = registry.Lookup[checker](st, regAddr, registry.Approval)
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	_, _, err = registry.Lookup[checker](st, ledger.ZeroAddress, registry.Approval)
	assert.ErrorIs(t, err, ledger.ErrUninitializedDependency)
}

func TestRegistry_RoleTransfer(t *testing.T) {
	st := ledgertest.NewState()
	r := registry.New(regAddr, admin)
	ctx := st.Context()

	require.NoError(t, r.TransferRole(ctx, admin, access.Admin, admin, outside))
	assert.ErrorIs(t, r.SetFactory(ctx, admin, ledgertest.Addr(0x11)), ledger.ErrUnauthorized)
	assert.NoError(t, r.SetFactory(ctx, outside, ledgertest.Addr(0x11)))
}
