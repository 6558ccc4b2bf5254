package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/avelst/skein/internal/cli"
	"github.com/avelst/skein/pkg/registry"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Work with the built-in workflow templates",
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available templates",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range registry.NewRegistry().Names() {
			fmt.Println(name)
		}
	},
}

var templatesNewCmd = &cobra.Command{
	Use:   "new <template> <name>",
	Short: "Instantiate a template with fresh ids",
	Long:  `Creates a workflow from a template. By default the result is written to the workflow service; with --out it is written to a file instead.`,
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runTemplatesNew(cmd, args[0], args[1]); err != nil {
			fmt.Printf("Failed to create workflow: %v\n", err)
			os.Exit(1)
		}
	},
}

func runTemplatesNew(cmd *cobra.Command, template, name string) error {
	flow, err := registry.NewRegistry().Instantiate(template, name)
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")
	if out != "" {
		if err := cli.SaveWorkflow(out, flow); err != nil {
			return err
		}
		fmt.Printf("Wrote workflow %s to %s\n", flow.ID, out)
		return nil
	}

	level, _ := cmd.Flags().GetString("log-level")
	client, err := newClient(cmd, level)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Store().Save(cmd.Context(), flow); err != nil {
		return err
	}
	fmt.Printf("Created workflow %s on %s\n", flow.ID, serverURL(cmd))
	return nil
}

func init() {
	templatesNewCmd.Flags().String("out", "", "Write the workflow to a file instead of the service")
	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesNewCmd)
	rootCmd.AddCommand(templatesCmd)
}
