package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/avelst/skein/internal/cli"
)

var watchCmd = &cobra.Command{
	Use:   "watch <workflow-id>",
	Short: "Stream live run status for a workflow",
	Long:  `Attaches to the workflow service and prints workflow.status telemetry as it arrives. With --execute a run is started first; with --graph the final state is rendered as a Mermaid diagram.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		level, _ := cmd.Flags().GetString("log-level")
		graph, _ := cmd.Flags().GetBool("graph")
		execute, _ := cmd.Flags().GetBool("execute")
		notify, _ := cmd.Flags().GetBool("notify")

		err := cli.RunWatch(cli.WatchOptions{
			Server:     serverURL(cmd),
			WorkflowID: args[0],
			Graph:      graph,
			Execute:    execute,
			Notify:     notify,
			LogLevel:   level,
		})
		if err != nil {
			fmt.Printf("Watch failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	watchCmd.Flags().Bool("graph", false, "Print a Mermaid diagram of the final run state")
	watchCmd.Flags().Bool("execute", false, "Start a run before watching and exit when it finishes")
	watchCmd.Flags().Bool("notify", false, "Show an OS notification when a run finishes")
	rootCmd.AddCommand(watchCmd)
}
