package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/propshare-go/config"
)

var cmdMain = &cobra.Command{
	Use:   "propshare",
	Short: "Property tokenization ledger operator",
	Run:   printUsageAndExit1,
}

var flagMain struct {
	DataDir  string
	Key      string
	Password string
}

func init() {
	cmdMain.PersistentFlags().StringVarP(&flagMain.DataDir, "data-dir", "d", config.DefaultDataDir(), "Directory for configuration, keys and the ledger database")
	cmdMain.PersistentFlags().StringVarP(&flagMain.Key, "key", "k", "admin", "Name of the key that signs the call")
	cmdMain.PersistentFlags().StringVar(&flagMain.Password, "password", os.Getenv(config.EnvPrefix+"_KEY_PASSWORD"), "Password protecting the key files")
}

func main() {
	_ = cmdMain.Execute()
}

func printUsageAndExit1(cmd *cobra.Command, args []string) {
	_ = cmd.Usage()
	os.Exit(1)
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func check(err error) {
	if err != nil {
		fatalf("%v", err)
	}
}

func checkf(err error, format string, otherArgs ...interface{}) {
	if err != nil {
		fatalf(format+": %v", append(otherArgs, err)...)
	}
}

func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	check(enc.Encode(v))
}
