package get

import (
	"emsbot/cmd/emsbot/get/config"

	"github.com/spf13/cobra"
)

func init() {
	Command.AddCommand(config.Command)
}

var Command = &cobra.Command{
	Use:     "get",
	Aliases: []string{"g"},
	Short:   "Retrieves resources",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}
