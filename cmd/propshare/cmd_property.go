package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/propshare-go/asset"
	"github.com/bitfsorg/propshare-go/factory"
	"github.com/bitfsorg/propshare-go/ledger"
	"github.com/bitfsorg/propshare-go/registry"
	"github.com/bitfsorg/propshare-go/storage"
)

var cmdCreateProperty = &cobra.Command{
	Use:   "create-property",
	Short: "Register a property and issue its share token",
	Args:  cobra.NoArgs,
	Run:   createProperty,
}

var flagCreate struct {
	Owner        string
	Name         string
	Symbol       string
	MetadataFile string
	MetadataHash string
	Valuation    uint64
	Supply       uint64
	TokenName    string
	TokenSymbol  string
}

var cmdRejectProperty = &cobra.Command{
	Use:   "reject-property [asset]",
	Short: "Mark a property as rejected",
	Args:  cobra.ExactArgs(1),
	Run:   rejectProperty,
}

var cmdUpdateValuation = &cobra.Command{
	Use:   "update-valuation [asset] [valuation]",
	Short: "Record a new valuation for a property",
	Args:  cobra.ExactArgs(2),
	Run:   updateValuation,
}

var cmdGrantSnapshot = &cobra.Command{
	Use:   "grant-snapshot [token]",
	Short: "Point a token's SNAPSHOT role at the current revenue engine",
	Args:  cobra.ExactArgs(1),
	Run:   grantSnapshot,
}

var cmdTransfer = &cobra.Command{
	Use:   "transfer [token] [to] [amount]",
	Short: "Transfer property shares",
	Args:  cobra.ExactArgs(3),
	Run:   transferShares,
}

func init() {
	f := cmdCreateProperty.Flags()
	f.StringVar(&flagCreate.Owner, "owner", "", "Address or key name that receives the whole supply")
	f.StringVar(&flagCreate.Name, "name", "", "Property name")
	f.StringVar(&flagCreate.Symbol, "symbol", "", "Property symbol")
	f.StringVar(&flagCreate.MetadataFile, "metadata-file", "", "Document to fingerprint as the metadata hash")
	f.StringVar(&flagCreate.MetadataHash, "metadata-hash", "", "Hex metadata hash (instead of --metadata-file)")
	f.Uint64Var(&flagCreate.Valuation, "valuation", 0, "Valuation in the smallest currency unit")
	f.Uint64Var(&flagCreate.Supply, "supply", 0, "Number of shares to issue")
	f.StringVar(&flagCreate.TokenName, "token-name", "", "Share token name")
	f.StringVar(&flagCreate.TokenSymbol, "token-symbol", "", "Share token symbol")
	_ = cmdCreateProperty.MarkFlagRequired("owner")
	_ = cmdCreateProperty.MarkFlagRequired("supply")
	cmdCreateProperty.MarkFlagsMutuallyExclusive("metadata-file", "metadata-hash")

	cmdMain.AddCommand(cmdCreateProperty, cmdRejectProperty, cmdUpdateValuation, cmdGrantSnapshot, cmdTransfer)
}

// metadataHash stores --metadata-file in the document store and returns its
// fingerprint, or parses --metadata-hash.
func metadataHash(docs storage.Store) (ledger.Hash, error) {
	switch {
	case flagCreate.MetadataFile != "":
		doc, err := os.ReadFile(flagCreate.MetadataFile)
		if err != nil {
			return ledger.Hash{}, err
		}
		return docs.Put(doc)
	case flagCreate.MetadataHash != "":
		return ledger.ParseHash(flagCreate.MetadataHash)
	}
	return ledger.Hash{}, nil
}

func createProperty(cmd *cobra.Command, _ []string) {
	n, err := openNode(flagMain.DataDir, true)
	check(err)
	defer n.Close()

	caller, err := n.caller(flagMain.Key)
	check(err)
	owner, err := n.resolveAddress(flagCreate.Owner)
	check(err)
	hash, err := metadataHash(n.docs)
	checkf(err, "metadata")

	params := factory.Params{
		Owner:        owner,
		Name:         flagCreate.Name,
		Symbol:       flagCreate.Symbol,
		MetadataHash: hash,
		Valuation:    flagCreate.Valuation,
		TokenSupply:  flagCreate.Supply,
		TokenName:    flagCreate.TokenName,
		TokenSymbol:  flagCreate.TokenSymbol,
	}
	if params.TokenName == "" {
		params.TokenName = params.Name
	}
	if params.TokenSymbol == "" {
		params.TokenSymbol = params.Symbol
	}

	var res factory.Result
	_, err = n.world.Execute(func(ctx *ledger.Context) error {
		fac, _, err := registry.Lookup[*factory.Factory](ctx, n.dep.Registry, registry.Factory)
		if err != nil {
			return err
		}
		res, err = fac.CreateProperty(ctx, caller, params)
		return err
	})
	check(err)
	printJSON(cmd.OutOrStdout(), res)
}

func rejectProperty(cmd *cobra.Command, args []string) {
	n, err := openNode(flagMain.DataDir, true)
	check(err)
	defer n.Close()

	caller, err := n.caller(flagMain.Key)
	check(err)
	addr, err := ledger.ParseAddress(args[0])
	check(err)
	rcpt, err := n.world.Execute(func(ctx *ledger.Context) error {
		p, err := ledger.Resolve[*asset.PropertyAsset](ctx, addr)
		if err != nil {
			return err
		}
		return p.Reject(ctx, caller)
	})
	check(err)
	printJSON(cmd.OutOrStdout(), rcpt)
}

func updateValuation(cmd *cobra.Command, args []string) {
	n, err := openNode(flagMain.DataDir, true)
	check(err)
	defer n.Close()

	caller, err := n.caller(flagMain.Key)
	check(err)
	addr, err := ledger.ParseAddress(args[0])
	check(err)
	valuation, err := strconv.ParseUint(args[1], 10, 64)
	checkf(err, "invalid valuation %q", args[1])
	rcpt, err := n.world.Execute(func(ctx *ledger.Context) error {
		p, err := ledger.Resolve[*asset.PropertyAsset](ctx, addr)
		if err != nil {
			return err
		}
		return p.UpdateValuation(ctx, caller, valuation)
	})
	check(err)
	printJSON(cmd.OutOrStdout(), rcpt)
}

func grantSnapshot(cmd *cobra.Command, args []string) {
	n, err := openNode(flagMain.DataDir, true)
	check(err)
	defer n.Close()

	caller, err := n.caller(flagMain.Key)
	check(err)
	token, err := ledger.ParseAddress(args[0])
	check(err)
	rcpt, err := n.world.Execute(func(ctx *ledger.Context) error {
		fac, _, err := registry.Lookup[*factory.Factory](ctx, n.dep.Registry, registry.Factory)
		if err != nil {
			return err
		}
		return fac.GrantSnapshotRoleToRevenue(ctx, caller, token)
	})
	check(err)
	printJSON(cmd.OutOrStdout(), rcpt)
}

func transferShares(cmd *cobra.Command, args []string) {
	n, err := openNode(flagMain.DataDir, true)
	check(err)
	defer n.Close()

	caller, err := n.caller(flagMain.Key)
	check(err)
	token, err := ledger.ParseAddress(args[0])
	check(err)
	to, err := n.resolveAddress(args[1])
	check(err)
	amount, err := strconv.ParseUint(args[2], 10, 64)
	checkf(err, "invalid amount %q", args[2])
	rcpt, err := n.world.Execute(func(ctx *ledger.Context) error {
		tok, err := ledger.Resolve[*asset.ShareToken](ctx, token)
		if err != nil {
			return fmt.Errorf("token %s: %w", token, err)
		}
		return tok.Transfer(ctx, caller, to, amount)
	})
	check(err)
	printJSON(cmd.OutOrStdout(), rcpt)
}
