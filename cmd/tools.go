package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools exposed by a vpsbridge server",
	RunE:  runListTools,
	Annotations: map[string]string{
		"group": string(subCommandGroupClient),
		"order": "2",
	},
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}

func runListTools(cmd *cobra.Command, args []string) error {
	tools, err := apiClient.ListTools()
	if err != nil {
		return fmt.Errorf("failed to list tools: %w", err)
	}
	if len(tools) == 0 {
		cmd.Println("No tools available.")
		return nil
	}
	for _, t := range tools {
		cmd.Printf("%s\t%s\n", t.Name, t.Description)
	}
	return nil
}
