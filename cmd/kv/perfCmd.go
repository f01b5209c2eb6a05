package kv

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gkvlabs/gKV/cmd/util"
	"github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for gKV servers",
		Long:    "",
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix        = "__test"
	perfLargeValueSizeKB = 100
	perfNumThreads       = 10
	perfKeySpread        = 100
	perfNumOps           = 10000
	perfSkip             = make([]string, 0)
)

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. put,get)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of threads to use for the benchmark"))
	key = "large-value-size"
	perfTestCmd.Flags().Int(key, 1000, util.WrapString("How large the value for the put-large test should be (in KB)"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "ops"
	perfTestCmd.Flags().Int(key, 10000, util.WrapString("How many operations to perform per benchmark"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfLargeValueSizeKB = viper.GetInt("large-value-size")
	perfKeySpread = viper.GetInt("keys")
	perfNumThreads = viper.GetInt("threads")
	perfNumOps = viper.GetInt("ops")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	return nil
}

func runPerf(_ *cobra.Command, _ []string) error {

	fmt.Println("Performance testing tool for gKV servers")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.GetClientConfig().String())
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Printf("Operations per benchmark: %d\n", perfNumOps)
	fmt.Println()

	fmt.Println("starting tests...")

	// Create results map
	results := make(map[string]metrics.Timer)

	record := func(name string, timer metrics.Timer) {
		results[name] = timer
		printResult(name, timer)
	}

	// PUT
	record("put", runBenchmark("put", func(counter int) error {
		return rpcDatabase.Put(perfKey("put", counter), []byte("test"))
	}))
	cleanupKeys("put")

	// PUT LARGE
	largeValue := make([]byte, perfLargeValueSizeKB*1024)
	record("put-large", runBenchmark("put-large", func(counter int) error {
		return rpcDatabase.Put(perfKey("put-large", counter), largeValue)
	}))
	cleanupKeys("put-large")

	// GET
	prepareKeys("get")
	record("get", runBenchmark("get", func(counter int) error {
		_, err := rpcDatabase.Get(perfKey("get", counter))
		return err
	}))
	cleanupKeys("get")

	// DELETE
	prepareKeys("delete")
	record("delete", runBenchmark("delete", func(counter int) error {
		return rpcDatabase.Delete(perfKey("delete", counter))
	}))

	// HAS
	prepareKeys("has")
	record("has", runBenchmark("has", func(counter int) error {
		_, err := rpcDatabase.Has(perfKey("has", counter))
		return err
	}))
	cleanupKeys("has")

	// HAS (missing keys)
	record("has-not", runBenchmark("has-not", func(counter int) error {
		_, err := rpcDatabase.Has(perfKey("has-not", counter))
		return err
	}))

	// MIXED
	prepareKeys("mixed")
	record("mixed", runBenchmark("mixed", func(counter int) error {
		key := perfKey("mixed", counter)
		switch counter % 4 {
		case 0:
			return rpcDatabase.Put(key, []byte("test"))
		case 1:
			_, err := rpcDatabase.Get(key)
			return err
		case 2:
			return rpcDatabase.Delete(key)
		default:
			_, err := rpcDatabase.Has(key)
			return err
		}
	}))
	cleanupKeys("mixed")

	// Write results to csv if specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	// Check if the test is in the skip list
	for _, skip := range perfSkip {
		if test == skip {
			return true
		}
	}
	return false
}

// perfKey returns the i-th test key for a benchmark (with wraparound)
func perfKey(name string, i int) []byte {
	return []byte(fmt.Sprintf("%s-%s-%d", perfKeyPrefix, name, i%perfKeySpread))
}

// prepareKeys stores a value under every test key of a benchmark
func prepareKeys(name string) {
	if shouldSkip(name) {
		return
	}
	for i := 0; i < perfKeySpread; i++ {
		if err := rpcDatabase.Put(perfKey(name, i), []byte("test")); err != nil {
			log.Printf("(%s) - error setting key: %v\n", name, err)
		}
	}
}

// cleanupKeys removes all test keys of a benchmark
func cleanupKeys(name string) {
	if shouldSkip(name) {
		return
	}
	for i := 0; i < perfKeySpread; i++ {
		if err := rpcDatabase.Delete(perfKey(name, i)); err != nil {
			log.Printf("(%s) - error deleting key: %v\n", name, err)
		}
	}
}

// runBenchmark executes op perfNumOps times spread over perfNumThreads
// goroutines, timing every call. Errors are logged but do not abort the
// benchmark: a not-found during has-not is part of the workload.
func runBenchmark(name string, op func(counter int) error) metrics.Timer {
	timer := metrics.NewTimer()
	if shouldSkip(name) {
		return timer
	}

	var wg sync.WaitGroup
	opsPerThread := perfNumOps / perfNumThreads

	for t := 0; t < perfNumThreads; t++ {
		wg.Add(1)
		go func(thread int) {
			defer wg.Done()
			for i := 0; i < opsPerThread; i++ {
				counter := thread*opsPerThread + i
				start := time.Now()
				if err := op(counter); err != nil {
					log.Printf("(%s) - operation error: %v\n", name, err)
				}
				timer.UpdateSince(start)
			}
		}(t)
	}

	wg.Wait()
	return timer
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, timer metrics.Timer) {
	if timer.Count() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	mean := time.Duration(int64(timer.Mean()))
	p95 := time.Duration(int64(timer.Percentile(0.95)))
	p99 := time.Duration(int64(timer.Percentile(0.99)))
	opsPerSec := 1e9 / timer.Mean()

	fmt.Printf("%-20smean=%-12s p95=%-12s p99=%-12s %.0f ops/sec\n", test, mean, p95, p99, opsPerSec)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]metrics.Timer) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	config := util.GetClientConfig()

	// Write header
	header := []string{
		"Test", "Count", "MeanNs", "P95Ns", "P99Ns", "OpsPerSec", "Skipped",
		"Endpoints", "TimeoutSec", "RetryCount", "ConnectionsPerEndpoint",
		"ShardID", "Serializer", "Transport",
		"Threads", "LargeValueSizeKB", "Keys Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	// Write test results
	for test, timer := range results {
		skipped := timer.Count() == 0
		var opsPerSec float64
		if !skipped {
			opsPerSec = 1e9 / timer.Mean()
		}

		row := []string{
			test,
			strconv.FormatInt(timer.Count(), 10),
			fmt.Sprintf("%.0f", timer.Mean()),
			fmt.Sprintf("%.0f", timer.Percentile(0.95)),
			fmt.Sprintf("%.0f", timer.Percentile(0.99)),
			fmt.Sprintf("%.0f", opsPerSec),
			strconv.FormatBool(skipped),
			strings.Join(config.Endpoints, ";"),
			strconv.Itoa(config.TimeoutSecond),
			strconv.Itoa(config.RetryCount),
			strconv.Itoa(config.ConnectionsPerEndpoint),
			strconv.FormatUint(util.GetShardID(), 10),
			viper.GetString("serializer"),
			viper.GetString("transport"),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfLargeValueSizeKB),
			strconv.Itoa(perfKeySpread),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}
