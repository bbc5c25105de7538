package chain

import (
	"fmt"

	"github.com/bitfsorg/propshare-go/access"
	"github.com/bitfsorg/propshare-go/allowlist"
	"github.com/bitfsorg/propshare-go/factory"
	"github.com/bitfsorg/propshare-go/ledger"
	"github.com/bitfsorg/propshare-go/registry"
	"github.com/bitfsorg/propshare-go/revshare"
)

// Options configures a bootstrapped deployment.
type Options struct {
	RestrictTransfers bool // share tokens check the allow-list on transfer
	RestrictDeposits  bool // revenue deposits require ADMIN or DISTRIBUTOR
}

// Deployment holds the addresses of a bootstrapped component set.
type Deployment struct {
	Registry  ledger.Address `json:"registry"`
	AllowList ledger.Address `json:"allowlist"`
	Factory   ledger.Address `json:"factory"`
	Revenue   ledger.Address `json:"revenue"`
}

// DeployRegistry deploys a registry administered by admin.
func DeployRegistry(ctx *ledger.Context, admin ledger.Address) *registry.Registry {
	return ctx.Deploy(admin, func(addr ledger.Address) ledger.Contract {
		return registry.New(addr, admin)
	}).(*registry.Registry)
}

// DeployAllowList deploys an allow-list administered by admin.
func DeployAllowList(ctx *ledger.Context, admin ledger.Address) *allowlist.AllowList {
	return ctx.Deploy(admin, func(addr ledger.Address) ledger.Contract {
		return allowlist.New(addr, admin)
	}).(*allowlist.AllowList)
}

// DeployFactory deploys a factory bound to registryAddr.
func DeployFactory(ctx *ledger.Context, admin, registryAddr ledger.Address, restrictTransfers bool) *factory.Factory {
	return ctx.Deploy(admin, func(addr ledger.Address) ledger.Contract {
		return factory.New(addr, admin, registryAddr, restrictTransfers)
	}).(*factory.Factory)
}

// DeployRevenue deploys a revenue engine administered by admin.
func DeployRevenue(ctx *ledger.Context, admin ledger.Address, restrictDeposits bool) *revshare.Revenue {
	return ctx.Deploy(admin, func(addr ledger.Address) ledger.Contract {
		return revshare.New(addr, admin, restrictDeposits)
	}).(*revshare.Revenue)
}

// Bootstrap deploys a registry, allow-list, factory and revenue engine with
// admin as ADMIN of each, wires all three registry slots, and gives admin
// CREATOR on the factory and DISTRIBUTOR on the revenue engine.
func (w *World) Bootstrap(admin ledger.Address, opts Options) (Deployment, error) {
	if admin.IsZero() {
		return Deployment{}, fmt.Errorf("%w: bootstrap admin is zero address", ledger.ErrInvalidArgument)
	}
	var d Deployment
	_, err := w.Execute(func(ctx *ledger.Context) error {
		reg := DeployRegistry(ctx, admin)
		list := DeployAllowList(ctx, admin)
		fac := DeployFactory(ctx, admin, reg.Contract, opts.RestrictTransfers)
		rev := DeployRevenue(ctx, admin, opts.RestrictDeposits)

		if err := reg.SetFactory(ctx, admin, fac.Contract); err != nil {
			return err
		}
		if err := reg.SetApproval(ctx, admin, list.Contract); err != nil {
			return err
		}
		if err := reg.SetRevenue(ctx, admin, rev.Contract); err != nil {
			return err
		}
		if err := fac.GrantRole(ctx, admin, access.Creator, admin); err != nil {
			return err
		}
		if err := rev.GrantRole(ctx, admin, access.Distributor, admin); err != nil {
			return err
		}
		d = Deployment{Registry: reg.Contract, AllowList: list.Contract, Factory: fac.Contract, Revenue: rev.Contract}
		return nil
	})
	if err != nil {
		return Deployment{}, fmt.Errorf("chain: bootstrap: %w", err)
	}
	w.log.Info("deployment bootstrapped", "registry", d.Registry, "allowlist", d.AllowList,
		"factory", d.Factory, "revenue", d.Revenue)
	return d, nil
}
