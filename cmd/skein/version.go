package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avelst/skein"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of skein",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("skein version %s\n", skein.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
