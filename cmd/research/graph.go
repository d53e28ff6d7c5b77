package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aishitdharwal/ai-agent/graph"
	"github.com/aishitdharwal/ai-agent/research"
)

var graphFormat string

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the stateful agent's workflow",
	Args:  cobra.NoArgs,
	// Rendering needs no configuration.
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter := graph.NewExporter(research.Workflow())
		switch graphFormat {
		case "mermaid":
			fmt.Fprint(cmd.OutOrStdout(), exporter.DrawMermaid())
		case "ascii":
			fmt.Fprint(cmd.OutOrStdout(), exporter.DrawASCII())
		default:
			return fmt.Errorf("unknown format %q (want mermaid or ascii)", graphFormat)
		}
		return nil
	},
}

func init() {
	graphCmd.Flags().StringVar(&graphFormat, "format", "ascii", "output format (mermaid, ascii)")
	rootCmd.AddCommand(graphCmd)
}
