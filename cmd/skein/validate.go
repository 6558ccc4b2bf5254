package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/avelst/skein/internal/cli"
	"github.com/avelst/skein/internal/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a workflow file for consistency",
	Long:  `Loads a workflow from a YAML or JSON file and reports broken edges, duplicate ids, directionality violations, and unreachable nodes.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		w, err := cli.LoadWorkflow(args[0])
		if err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}

		report := validator.ValidateWorkflow(w)
		for _, warning := range report.Warnings {
			fmt.Printf("warning: %s\n", warning)
		}
		if !report.OK() {
			fmt.Printf("Validation failed: %v\n", report.Err())
			os.Exit(1)
		}
		fmt.Println("Workflow is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
