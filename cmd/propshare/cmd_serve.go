package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/propshare-go/api"
	"github.com/bitfsorg/propshare-go/indexer"
)

var cmdServe = &cobra.Command{
	Use:   "serve",
	Short: "Serve the query API and keep the property index current",
	Args:  cobra.NoArgs,
	Run:   serve,
}

var cmdIndex = &cobra.Command{
	Use:   "index",
	Short: "Bring the property index up to date once",
	Args:  cobra.NoArgs,
	Run:   index,
}

var flagServe struct {
	Listen string
}

func init() {
	cmdServe.Flags().StringVarP(&flagServe.Listen, "listen", "l", "", "Listen address (defaults to listen_addr from the config)")
	cmdMain.AddCommand(cmdServe, cmdIndex)
}

func serve(cmd *cobra.Command, _ []string) {
	n, err := openNode(flagMain.DataDir, true)
	check(err)
	defer n.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ix := indexer.New(n.world.Store(), n.db, n.log)
	go func() { _ = ix.Run(ctx, n.cfg.IndexInterval) }()

	addr := flagServe.Listen
	if addr == "" {
		addr = n.cfg.ListenAddr
	}
	check(api.New(n.world, n.db, n.docs, n.dep, n.log).ListenAndServe(ctx, addr))
}

func index(cmd *cobra.Command, _ []string) {
	n, err := openNode(flagMain.DataDir, false)
	check(err)
	defer n.Close()

	seq, err := indexer.New(n.world.Store(), n.db, n.log).Sync(cmd.Context())
	check(err)
	printJSON(cmd.OutOrStdout(), map[string]uint64{"cursor": seq})
}
