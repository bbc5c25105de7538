package main

import (
	"github.com/spf13/cobra"

	"github.com/bitfsorg/propshare-go/access"
	"github.com/bitfsorg/propshare-go/allowlist"
	"github.com/bitfsorg/propshare-go/ledger"
	"github.com/bitfsorg/propshare-go/registry"
)

var cmdApprove = &cobra.Command{
	Use:   "approve [address]",
	Short: "Approve an address on the allow-list",
	Args:  cobra.ExactArgs(1),
	Run:   func(cmd *cobra.Command, args []string) { allowListCall(cmd, args[0], (*allowlist.AllowList).Approve) },
}

var cmdRevoke = &cobra.Command{
	Use:   "revoke [address]",
	Short: "Revoke an address from the allow-list",
	Args:  cobra.ExactArgs(1),
	Run:   func(cmd *cobra.Command, args []string) { allowListCall(cmd, args[0], (*allowlist.AllowList).Revoke) },
}

var cmdGrantRole = &cobra.Command{
	Use:   "grant-role [component] [role] [account]",
	Short: "Grant a role on a component",
	Args:  cobra.ExactArgs(3),
	Run:   grantRole,
}

var cmdRevokeRole = &cobra.Command{
	Use:   "revoke-role [component] [role] [account]",
	Short: "Revoke a role on a component",
	Args:  cobra.ExactArgs(3),
	Run:   revokeRole,
}

var cmdTransferRole = &cobra.Command{
	Use:   "transfer-role [component] [role] [from] [to]",
	Short: "Atomically move a role between accounts",
	Args:  cobra.ExactArgs(4),
	Run:   transferRole,
}

var cmdSetRegistry = &cobra.Command{
	Use:   "set-registry [entry] [address]",
	Short: "Point a registry entry (factory, approval, revenue) at an address",
	Args:  cobra.ExactArgs(2),
	Run:   setRegistry,
}

func init() {
	cmdMain.AddCommand(cmdApprove, cmdRevoke, cmdGrantRole, cmdRevokeRole, cmdTransferRole, cmdSetRegistry)
}

// roleAdmin is the role surface every component shares.
type roleAdmin interface {
	GrantRole(ctx *ledger.Context, caller ledger.Address, role access.Role, account ledger.Address) error
	RevokeRole(ctx *ledger.Context, caller ledger.Address, role access.Role, account ledger.Address) error
	TransferRole(ctx *ledger.Context, caller ledger.Address, role access.Role, from, to ledger.Address) error
}

func allowListCall(cmd *cobra.Command, target string, fn func(*allowlist.AllowList, *ledger.Context, ledger.Address, ledger.Address) error) {
	n, err := openNode(flagMain.DataDir, true)
	check(err)
	defer n.Close()

	caller, err := n.caller(flagMain.Key)
	check(err)
	who, err := n.resolveAddress(target)
	check(err)
	rcpt, err := n.world.Execute(func(ctx *ledger.Context) error {
		list, _, err := registry.Lookup[*allowlist.AllowList](ctx, n.dep.Registry, registry.Approval)
		if err != nil {
			return err
		}
		return fn(list, ctx, caller, who)
	})
	check(err)
	printJSON(cmd.OutOrStdout(), rcpt)
}

// roleCall runs fn against the component named by args[0] with the role
// named by args[1]; the remaining args are resolved as accounts.
func roleCall(cmd *cobra.Command, args []string, fn func(c roleAdmin, ctx *ledger.Context, caller ledger.Address, role access.Role, accounts []ledger.Address) error) {
	n, err := openNode(flagMain.DataDir, true)
	check(err)
	defer n.Close()

	caller, err := n.caller(flagMain.Key)
	check(err)
	target, err := n.resolveAddress(args[0])
	check(err)
	role, err := access.ParseRole(args[1])
	check(err)
	accounts := make([]ledger.Address, 0, len(args)-2)
	for _, a := range args[2:] {
		addr, err := n.resolveAddress(a)
		check(err)
		accounts = append(accounts, addr)
	}
	rcpt, err := n.world.Execute(func(ctx *ledger.Context) error {
		c, err := ledger.Resolve[roleAdmin](ctx, target)
		if err != nil {
			return err
		}
		return fn(c, ctx, caller, role, accounts)
	})
	check(err)
	printJSON(cmd.OutOrStdout(), rcpt)
}

func grantRole(cmd *cobra.Command, args []string) {
	roleCall(cmd, args, func(c roleAdmin, ctx *ledger.Context, caller ledger.Address, role access.Role, acc []ledger.Address) error {
		return c.GrantRole(ctx, caller, role, acc[0])
	})
}

func revokeRole(cmd *cobra.Command, args []string) {
	roleCall(cmd, args, func(c roleAdmin, ctx *ledger.Context, caller ledger.Address, role access.Role, acc []ledger.Address) error {
		return c.RevokeRole(ctx, caller, role, acc[0])
	})
}

func transferRole(cmd *cobra.Command, args []string) {
	roleCall(cmd, args, func(c roleAdmin, ctx *ledger.Context, caller ledger.Address, role access.Role, acc []ledger.Address) error {
		return c.TransferRole(ctx, caller, role, acc[0], acc[1])
	})
}

func setRegistry(cmd *cobra.Command, args []string) {
	entry, err := registry.ParseEntry(args[0])
	check(err)

	n, err := openNode(flagMain.DataDir, true)
	check(err)
	defer n.Close()

	caller, err := n.caller(flagMain.Key)
	check(err)
	addr, err := n.resolveAddress(args[1])
	check(err)
	rcpt, err := n.world.Execute(func(ctx *ledger.Context) error {
		reg, err := ledger.Resolve[*registry.Registry](ctx, n.dep.Registry)
		if err != nil {
			return err
		}
		return reg.Set(ctx, caller, entry, addr)
	})
	check(err)
	printJSON(cmd.OutOrStdout(), rcpt)
}
