package cmd

import (
	"github.com/spf13/cobra"
	"github.com/vpsbridge/vpsbridge/pkg/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the vpsbridge version",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.GetVersion())
	},
	Annotations: map[string]string{
		"group": string(subCommandGroupBasic),
		"order": "9",
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
