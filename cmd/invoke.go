package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var invokeCmdArgs []string

var invokeCmd = &cobra.Command{
	Use:   "invoke <name>",
	Short: "Invoke a tool on a vpsbridge server",
	Long: "Invokes a tool by name. Arguments are passed as repeated --arg key=value flags.\n\n" +
		"eg: vpsbridge invoke vps_run_command --arg cmd='uptime'",
	Args: cobra.ExactArgs(1),
	RunE: runInvokeTool,
	Annotations: map[string]string{
		"group": string(subCommandGroupClient),
		"order": "4",
	},
}

func init() {
	invokeCmd.Flags().StringArrayVar(
		&invokeCmdArgs,
		"arg",
		nil,
		"tool argument as key=value (repeatable)",
	)
	rootCmd.AddCommand(invokeCmd)
}

func runInvokeTool(cmd *cobra.Command, args []string) error {
	toolArgs := make(map[string]any, len(invokeCmdArgs))
	for _, kv := range invokeCmdArgs {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return fmt.Errorf("invalid --arg value '%s', expected key=value", kv)
		}
		toolArgs[k] = v
	}

	result, err := apiClient.InvokeTool(args[0], toolArgs)
	if err != nil {
		return fmt.Errorf("failed to invoke tool '%s': %w", args[0], err)
	}

	for _, block := range result.Content {
		cmd.Println(block.Text)
	}
	return nil
}
