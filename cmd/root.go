package cmd

import (
	"fmt"
	"os"

	"github.com/gkvlabs/gKV/cmd/kv"
	"github.com/gkvlabs/gKV/cmd/serve"
	"github.com/gkvlabs/gKV/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "1.0.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "gkv",
		Short: "distributed key-value store with corruption fencing",
		Long: fmt.Sprintf(`gKV (v%s)

A distributed, consistent key-value store written in Go, leveraging RAFT
consensus for linearizability and fault tolerance. Every served database is
wrapped in a corruption latch: the first sign of corrupted state permanently
fences the shard so unreliable data is never served.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of gKV",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("gKV v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "serializer"
	RootCmd.PersistentFlags().String(key, "json", util.WrapString("serializer to use (json, gob, binary)"))
	key = "transport"
	RootCmd.PersistentFlags().String(key, "http", util.WrapString("transport to use (http, tcp, unix)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
