package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"soundstage/server"
)

var rootCmd = &cobra.Command{
	Use:   "soundstage",
	Short: "soundstage is a multi-track spatial audio editing backend.",
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
