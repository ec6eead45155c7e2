package submit

import (
	"emsbot/cmd/emsbot/submit/request"

	"github.com/spf13/cobra"
)

func init() {
	Command.AddCommand(request.Command)
}

var Command = &cobra.Command{
	Use:     "submit",
	Aliases: []string{"sub"},
	Short:   "Submits resources",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}
