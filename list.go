package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shebbar27/flow-log-parser/input"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "protocols",
		Short: "List the built-in protocol table",
		Long: `Lists the protocol numbers and keywords used when no protocol mappings file
is given to run. Keywords are matched case-insensitively against the lookup table.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listProtocols(cmd)
		},
	})
}

func listProtocols(cmd *cobra.Command) error {
	rows := input.BuiltinProtocols()
	t := tabwriter.NewWriter(cmd.OutOrStdout(), 3, 4, 2, ' ', 0)
	fmt.Fprintf(t, "Decimal\tKeyword\n")
	for _, row := range rows {
		fmt.Fprintf(t, "%s\t%s\n", row.Decimal, row.Keyword)
	}
	return t.Flush()
}
