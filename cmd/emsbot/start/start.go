package start

import (
	"emsbot/cmd/emsbot/start/bot"

	"github.com/spf13/cobra"
)

func init() {
	Command.AddCommand(bot.Command)
}

var Command = &cobra.Command{
	Use:     "start",
	Aliases: []string{"s"},
	Short:   "Starts a component",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}
