package kv

import (
	"fmt"

	"github.com/gkvlabs/gKV/lib/db"
	"github.com/spf13/cobra"
)

var (
	putCmd = &cobra.Command{
		Use:   "put [key] [value]",
		Short: "Stores the value for a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := args[1]
			if err := rpcDatabase.Put([]byte(key), []byte(value)); err != nil {
				return err
			} else {
				fmt.Println("put successfully")
			}
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value, err := rpcDatabase.Get([]byte(key))
			if err != nil {
				if db.IsNotFound(err) {
					fmt.Printf("key=%s, found=false\n", key)
					return nil
				}
				return err
			}
			fmt.Printf("key=%s, found=true, value=%s\n", key, value)
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [key]",
		Short: "Deletes a key value pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if err := rpcDatabase.Delete([]byte(key)); err != nil {
				return err
			} else {
				fmt.Println("delete successfully")
			}
			return nil
		},
	}
	hasCmd = &cobra.Command{
		Use:   "has [key]",
		Short: "Checks if a key exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if found, err := rpcDatabase.Has([]byte(key)); err != nil {
				return err
			} else {
				fmt.Printf("key=%s, found=%t\n", key, found)
			}
			return nil
		},
	}
	keysCmd = &cobra.Command{
		Use:   "keys",
		Short: "Lists all key value pairs, optionally bounded by --start and --prefix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, _ := cmd.Flags().GetString("start")
			prefix, _ := cmd.Flags().GetString("prefix")

			var startBytes, prefixBytes []byte
			if start != "" {
				startBytes = []byte(start)
			}
			if prefix != "" {
				prefixBytes = []byte(prefix)
			}

			it, err := rpcDatabase.NewIteratorWithStartAndPrefix(startBytes, prefixBytes)
			if err != nil {
				return err
			}
			defer it.Release()

			count := 0
			for it.Next() {
				fmt.Printf("%s=%s\n", it.Key(), it.Value())
				count++
			}
			if err := it.Error(); err != nil {
				return err
			}
			fmt.Printf("(%d entries)\n", count)
			return nil
		},
	}
	healthCmd = &cobra.Command{
		Use:   "health",
		Short: "Queries the health report of the shard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := rpcDatabase.HealthCheck()
			if err != nil {
				return err
			}
			fmt.Printf("%s\n", report)
			return nil
		},
	}
)

func init() {
	keysCmd.Flags().String("start", "", "Smallest key (inclusive) to list")
	keysCmd.Flags().String("prefix", "", "Only list keys with this prefix")
}
