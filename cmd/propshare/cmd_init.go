package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/spf13/cobra"

	"github.com/bitfsorg/propshare-go/chain"
	"github.com/bitfsorg/propshare-go/config"
	"github.com/bitfsorg/propshare-go/keystore"
	"github.com/bitfsorg/propshare-go/ledger"
)

var cmdInit = &cobra.Command{
	Use:   "init",
	Short: "Write a default config, create the admin key and bootstrap a deployment",
	Args:  cobra.NoArgs,
	Run:   initNode,
}

var cmdKeygen = &cobra.Command{
	Use:   "keygen [name]",
	Short: "Generate a signing key and print its address",
	Args:  cobra.ExactArgs(1),
	Run:   keygen,
}

var cmdFund = &cobra.Command{
	Use:   "fund [account] [amount]",
	Short: "Mint native units into an account",
	Args:  cobra.ExactArgs(2),
	Run:   fund,
}

var flagKeygen struct {
	Mnemonic string
	Index    uint32
}

func init() {
	cmdKeygen.Flags().StringVar(&flagKeygen.Mnemonic, "mnemonic", "", "Restore the key from this BIP39 mnemonic instead of generating one")
	cmdKeygen.Flags().Uint32Var(&flagKeygen.Index, "index", 0, "Derivation index used with --mnemonic")
	cmdMain.AddCommand(cmdInit, cmdKeygen, cmdFund)
}

type initResult struct {
	chain.Deployment
	AdminMnemonic string `json:"admin_mnemonic,omitempty"`
}

func initNode(cmd *cobra.Command, _ []string) {
	d, mnemonic, err := bootstrapDataDir(flagMain.DataDir, flagMain.Key)
	check(err)
	printJSON(cmd.OutOrStdout(), initResult{Deployment: d, AdminMnemonic: mnemonic})
}

// bootstrapDataDir prepares dataDir and deploys a fresh component set owned
// by the key adminName. If that key has to be created, its mnemonic is returned.
func bootstrapDataDir(dataDir, adminName string) (chain.Deployment, string, error) {
	cfgPath := config.ConfigPath(dataDir)
	if _, err := os.Stat(cfgPath); errors.Is(err, os.ErrNotExist) {
		cfg, err := config.LoadEnv()
		if err != nil {
			return chain.Deployment{}, "", err
		}
		cfg.DataDir = dataDir
		if err := config.SaveConfig(cfgPath, cfg); err != nil {
			return chain.Deployment{}, "", err
		}
	}
	n, err := openNode(dataDir, false)
	if err != nil {
		return chain.Deployment{}, "", err
	}
	defer n.Close()

	if _, err := os.Stat(n.cfg.DeploymentPath()); err == nil {
		return chain.Deployment{}, "", fmt.Errorf("deployment already exists at %s", n.cfg.DeploymentPath())
	}

	var mnemonic string
	keys := keysIn(dataDir)
	if _, err := keys.Load(adminName); errors.Is(err, keystore.ErrKeyNotFound) {
		if _, mnemonic, err = keys.Generate(adminName, n.cfg.Mainnet()); err != nil {
			return chain.Deployment{}, "", err
		}
	} else if err != nil {
		return chain.Deployment{}, "", err
	}

	admin, err := n.caller(adminName)
	if err != nil {
		return chain.Deployment{}, "", err
	}
	d, err := n.world.Bootstrap(admin, chain.Options{
		RestrictTransfers: n.cfg.RestrictTransfers,
		RestrictDeposits:  n.cfg.RestrictDeposits,
	})
	if err != nil {
		return chain.Deployment{}, "", err
	}
	return d, mnemonic, writeDeployment(n.cfg.DeploymentPath(), d)
}

type keyInfo struct {
	Name     string         `json:"name"`
	Address  ledger.Address `json:"address"`
	P2PKH    string         `json:"p2pkh"`
	Mnemonic string         `json:"mnemonic,omitempty"`
}

func keygen(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(flagMain.DataDir)
	check(err)
	keys := keysIn(cfg.DataDir)

	info := keyInfo{Name: args[0]}
	var priv *ec.PrivateKey
	if flagKeygen.Mnemonic != "" {
		priv, err = keys.Restore(args[0], flagKeygen.Mnemonic, flagKeygen.Index, cfg.Mainnet())
	} else {
		priv, info.Mnemonic, err = keys.Generate(args[0], cfg.Mainnet())
	}
	check(err)
	info.Address = ledger.AddressFromPublicKey(priv.PubKey())
	info.P2PKH, err = info.Address.Encode(cfg.Mainnet())
	check(err)
	printJSON(cmd.OutOrStdout(), info)
}

func fund(cmd *cobra.Command, args []string) {
	n, err := openNode(flagMain.DataDir, false)
	check(err)
	defer n.Close()

	account, err := n.resolveAddress(args[0])
	check(err)
	amount, err := strconv.ParseUint(args[1], 10, 64)
	checkf(err, "invalid amount %q", args[1])
	rcpt, err := n.world.Fund(account, amount)
	check(err)
	printJSON(cmd.OutOrStdout(), rcpt)
}
