package emsbot

import (
	"emsbot/cmd/emsbot/get"
	"emsbot/cmd/emsbot/start"
	"emsbot/cmd/emsbot/submit"
	"emsbot/internal/cli"
	"emsbot/internal/common"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var availableLogLevels = []string{
	string(common.LogLevelTrace),
	string(common.LogLevelDebug),
	string(common.LogLevelInfo),
	string(common.LogLevelWarn),
	string(common.LogLevelError),
}

var persistentFlags cli.Flags = cli.Flags{
	{
		Name:         "log-level",
		Short:        'l',
		DefaultValue: "info",
		Usage:        fmt.Sprintf("Sets the log level (one of [%s])", strings.Join(availableLogLevels, ", ")),
		Type:         cli.FlagTypeString,
	},
}

func init() {
	Command.AddCommand(get.Command)
	Command.AddCommand(start.Command)
	Command.AddCommand(submit.Command)
	Command.SilenceErrors = true
	Command.SilenceUsage = true

	persistentFlags.AddToCommand(Command, true)

	cobra.OnInitialize(func() {
		persistentFlags.BindViper(Command, true)
		cli.InitLogging(viper.GetString("log-level"))
	})

	cli.InitConfig()
}

var Command = &cobra.Command{
	Use:   "emsbot",
	Short: "Chat-driven request and approval workflows for staffing teams",
	Long:  "Chat-driven request and approval workflows for staffing teams",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}
