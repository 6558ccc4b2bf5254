package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/avelst/skein/internal/cli"
	"github.com/avelst/skein/internal/presentation/graph"
	"github.com/avelst/skein/pkg/domain"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <workflow-id-or-file>",
	Short: "Export the workflow graph visualization",
	Long:  `Outputs a Mermaid diagram (graph TD) for a workflow, loaded from a file (.yaml/.json) or fetched from the workflow service by id.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		w, err := resolveWorkflow(cmd, args[0])
		if err != nil {
			fmt.Printf("Error loading workflow: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(graph.GenerateMermaid(w, nil))
	},
}

func resolveWorkflow(cmd *cobra.Command, ref string) (domain.Workflow, error) {
	if _, err := os.Stat(ref); err == nil {
		return cli.LoadWorkflow(ref)
	}

	level, _ := cmd.Flags().GetString("log-level")
	client, err := newClient(cmd, level)
	if err != nil {
		return domain.Workflow{}, err
	}
	defer client.Close()
	return client.Store().Get(cmd.Context(), ref)
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
