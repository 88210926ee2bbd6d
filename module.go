package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shebbar27/flow-log-parser/flows"
	"github.com/shebbar27/flow-log-parser/util"
)

type moduleDefinition struct {
	name, arghelp string
	help          func(io.Writer, string) error
	list          func() ([]util.ModuleDescription, error)
}

var modules = []moduleDefinition{
	{
		"exporter", "List available exporters and options",
		flows.ExporterHelp,
		flows.ListExporters,
	},
}

func init() {
	for _, def := range modules {
		rootCmd.AddCommand(newModuleCmd(def))
	}
}

func newModuleCmd(def moduleDefinition) *cobra.Command {
	return &cobra.Command{
		Use:   fmt.Sprintf("%ss [%s]", def.name, def.name),
		Short: def.arghelp,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.ErrOrStderr()
			if len(args) == 1 {
				return def.help(out, args[0])
			}

			descs, err := def.list()
			if err != nil {
				fmt.Fprintf(out, "No %ss registered.\n", def.name)
				return nil
			}
			fmt.Fprintf(out, "List of %ss:\n\n", def.name)

			t := tabwriter.NewWriter(out, 3, 4, 5, ' ', 0)
			for _, desc := range descs {
				fmt.Fprintf(t, "%s\t%s\n", desc.Name(), desc.Description())
			}
			t.Flush()

			fmt.Fprintf(out, "\nTo query the options of a %s use:\n%s <%s>\n", def.name, cmd.CommandPath(), def.name)
			return nil
		},
	}
}
