package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/propshare-go/ledger"
	"github.com/bitfsorg/propshare-go/registry"
	"github.com/bitfsorg/propshare-go/revshare"
)

var cmdDeposit = &cobra.Command{
	Use:   "deposit [token] [amount]",
	Short: "Deposit revenue into a token's pool",
	Args:  cobra.ExactArgs(2),
	Run:   deposit,
}

var cmdDistribute = &cobra.Command{
	Use:   "distribute [token]",
	Short: "Snapshot a token and open a claimable round over its pool",
	Args:  cobra.ExactArgs(1),
	Run:   distribute,
}

var cmdClaim = &cobra.Command{
	Use:   "claim [round]",
	Short: "Claim the signing key's share of a round",
	Args:  cobra.ExactArgs(1),
	Run:   claim,
}

func init() {
	cmdMain.AddCommand(cmdDeposit, cmdDistribute, cmdClaim)
}

// revenueCall runs fn against the revenue engine the registry currently names.
func revenueCall(cmd *cobra.Command, fn func(rev *revshare.Revenue, ctx *ledger.Context, caller ledger.Address) error) {
	n, err := openNode(flagMain.DataDir, true)
	check(err)
	defer n.Close()

	caller, err := n.caller(flagMain.Key)
	check(err)
	rcpt, err := n.world.Execute(func(ctx *ledger.Context) error {
		rev, _, err := registry.Lookup[*revshare.Revenue](ctx, n.dep.Registry, registry.Revenue)
		if err != nil {
			return err
		}
		return fn(rev, ctx, caller)
	})
	check(err)
	printJSON(cmd.OutOrStdout(), rcpt)
}

func deposit(cmd *cobra.Command, args []string) {
	token, err := ledger.ParseAddress(args[0])
	check(err)
	amount, err := strconv.ParseUint(args[1], 10, 64)
	checkf(err, "invalid amount %q", args[1])
	revenueCall(cmd, func(rev *revshare.Revenue, ctx *ledger.Context, caller ledger.Address) error {
		return rev.Deposit(ctx, caller, token, amount)
	})
}

func distribute(cmd *cobra.Command, args []string) {
	token, err := ledger.ParseAddress(args[0])
	check(err)
	revenueCall(cmd, func(rev *revshare.Revenue, ctx *ledger.Context, caller ledger.Address) error {
		_, err := rev.Distribute(ctx, caller, token)
		return err
	})
}

func claim(cmd *cobra.Command, args []string) {
	round, err := strconv.ParseUint(args[0], 10, 64)
	checkf(err, "invalid round %q", args[0])
	revenueCall(cmd, func(rev *revshare.Revenue, ctx *ledger.Context, caller ledger.Address) error {
		_, err := rev.Claim(ctx, caller, round)
		return err
	})
}
