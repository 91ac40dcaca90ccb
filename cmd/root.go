// Package cmd contains the vpsbridge CLI commands.
package cmd

import (
	"net/http"

	"github.com/spf13/cobra"
	"github.com/vpsbridge/vpsbridge/client"
)

type subCommandGroup string

const (
	subCommandGroupBasic  subCommandGroup = "basic"
	subCommandGroupClient subCommandGroup = "client"
)

var (
	rootCmdServerURL string

	// apiClient is the REST API client used by the client-side commands.
	apiClient *client.Client
)

var rootCmd = &cobra.Command{
	Use:   "vpsbridge",
	Short: "MCP gateway for a remote VPS agent",
	Long: "vpsbridge exposes a fixed set of remote-execution tools (run command, list directory,\n" +
		"read file, write file) over the Model Context Protocol and forwards every invocation\n" +
		"to a single upstream VPS agent over HTTP.",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		apiClient = client.NewClient(rootCmdServerURL, &http.Client{})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&rootCmdServerURL,
		"server",
		"http://127.0.0.1:8080",
		"base URL of the vpsbridge server (used by client commands)",
	)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
