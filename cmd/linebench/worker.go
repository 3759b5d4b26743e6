package main

import (
	"fmt"
	"runtime"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/seantiz/linebench/internal/isolate"
	"github.com/seantiz/linebench/internal/strategy"
)

// newWorkerCommand returns the hidden subcommand run by process isolates. It
// reads one framed request from stdin and streams framed messages to stdout.
func newWorkerCommand() *cobra.Command {
	return &cobra.Command{
		Use:    "worker",
		Short:  "Run as an isolate worker on stdin/stdout",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return isolate.Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func newStrategiesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List the available strategies and their concurrency models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := strategy.NewDefaultRegistry(strategy.Options{PoolSize: runtime.NumCPU()})
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tMODEL\tPARALLEL\tSHARED SINK")
			for _, info := range reg.List() {
				caps := info.Capabilities
				fmt.Fprintf(tw, "%s\t%s\t%t\t%t\n", info.Name, caps.Model, caps.Parallel, caps.SharedSink)
			}
			return tw.Flush()
		},
	}
}
