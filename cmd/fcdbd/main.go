package main

import (
	"fmt"
	"os"

	"github.com/fcdb-io/fcdb/pkg/fcdberr"
	"github.com/fcdb-io/fcdb/pkg/log"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps a returned error to the process exit code fcdbd
// documents: 0 success, 1 usage/config error, 2 integrity failure, 3
// capability denied. Errors cobra itself raises (bad flags, unknown
// subcommands) carry no fcdberr.Kind and fall back to 1.
func exitCodeFor(err error) int {
	if fcdberr.KindOf(err) == fcdberr.KindUnknown {
		return 1
	}
	return fcdberr.KindOf(err).ExitCode()
}

var rootCmd = &cobra.Command{
	Use:   "fcdbd",
	Short: "fcdb - temporal, content-addressed property-graph database",
	Long: `fcdbd is the operational CLI for fcdb: a temporal property-graph
database with pack-file content-addressable storage, a hierarchical
Bloom filter index, capability-based access control, and an adaptive
query planner.

It exercises the graph store directly for one-shot operations and
runs as a long-lived process under "serve" for the Bloom adaptation
ticker, metrics, and health endpoints. Query-language front-ends are
out of scope; this is plumbing, not a client.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"fcdbd version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(nodeCmd)
	rootCmd.AddCommand(edgeCmd)
	rootCmd.AddCommand(traverseCmd)
	rootCmd.AddCommand(serveCmd)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}
