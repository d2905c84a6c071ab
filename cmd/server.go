package cmd

import (
	"github.com/spf13/cobra"

	"soundstage/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the editor backend",
	Long:  `Start the HTTP server that serves the editor API, the websocket transport feed and the web UI.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
