package config

import (
	"emsbot/internal/cli"
	"emsbot/internal/config"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	flags.AddToCommand(Command)
}

var flags cli.Flags = cli.Flags{
	{
		Name:         "config-path",
		Short:        'c',
		DefaultValue: "./emsbot.json",
		Usage:        "defines the path to the workflow configuration document",
		Type:         cli.FlagTypeString,
	},
}

var Command = &cobra.Command{
	Use:     "config",
	Aliases: []string{"c"},
	Short:   "Displays the workflow configuration document",
	PreRun: func(cmd *cobra.Command, args []string) {
		flags.BindViper(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := viper.GetString("config-path")
		store := config.NewStore(configPath)
		description, err := store.Describe()
		if err != nil {
			if errors.Is(err, config.ErrNotFound) {
				return fmt.Errorf("no configuration document exists at path[%s] yet, start the bot to begin onboarding", configPath)
			}
			return fmt.Errorf("failed to describe the configuration document: %s", err)
		}
		fmt.Println(description)
		return nil
	},
}
