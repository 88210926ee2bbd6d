package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "flow-log-parser",
	Short: "Tag flow log records and count them per tag and per port/protocol",
	Long: `flow-log-parser reads flow logs, maps every record to a tag using a lookup
table keyed by destination port and protocol, and writes two reports: the
number of records per tag and the number of records per port/protocol pair.

See "flow-log-parser run -h" for the arguments of a run.`,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
