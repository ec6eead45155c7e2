package bot

import (
	"context"
	"emsbot/internal/approvals"
	"emsbot/internal/bot"
	"emsbot/internal/cache"
	"emsbot/internal/cli"
	"emsbot/internal/common"
	"emsbot/internal/config"
	"emsbot/internal/integrations/telegram"
	"emsbot/internal/onboarding"
	"emsbot/internal/requests"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
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
	{
		Name:         "telegram-bot-token",
		DefaultValue: "",
		Usage:        "the telegram bot token used to connect to the chat platform",
		Type:         cli.FlagTypeString,
	},
	{
		Name:         "admin-channel-id",
		DefaultValue: int64(0),
		Usage:        "defines the chat where onboarding and administrative commands happen",
		Type:         cli.FlagTypeInteger,
	},
	{
		Name:         "redis-enabled",
		DefaultValue: false,
		Usage:        "when this flag is specified, redis is used as the request ledger instead of process memory",
		Type:         cli.FlagTypeBool,
	},
	{
		Name:         "redis-addr",
		DefaultValue: "localhost:6379",
		Usage:        "defines the hostname (including port) of the redis server",
		Type:         cli.FlagTypeString,
	},
	{
		Name:         "redis-username",
		DefaultValue: "",
		Usage:        "defines the username used to login to redis",
		Type:         cli.FlagTypeString,
	},
	{
		Name:         "redis-password",
		DefaultValue: "",
		Usage:        "defines the password used to login to redis",
		Type:         cli.FlagTypeString,
	},
	{
		Name:         "http-enabled",
		DefaultValue: true,
		Usage:        "when this flag is specified, the http api is served",
		Type:         cli.FlagTypeBool,
	},
	{
		Name:         "http-addr",
		DefaultValue: "0.0.0.0:8080",
		Usage:        "defines the address the http api listens on",
		Type:         cli.FlagTypeString,
	},
	{
		Name:         "http-auth-token",
		DefaultValue: "",
		Usage:        "when set, the http api requires this bearer token",
		Type:         cli.FlagTypeString,
	},
}

var Command = &cobra.Command{
	Use:     "bot",
	Aliases: []string{"b"},
	Short:   "Starts the workflow bot",
	Long:    "Starts the workflow bot which onboards its channel configuration, receives requests from members, and routes them to their reviewers for a decision",
	PreRun: func(cmd *cobra.Command, args []string) {
		flags.BindViper(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		serviceLogs := make(chan common.ServiceLog, 64)
		common.StartServiceLogLoop(serviceLogs)

		isRedisEnabled := viper.GetBool("redis-enabled")
		logrus.Debugf("redis-enabled status: %v", isRedisEnabled)
		if isRedisEnabled {
			if err := cache.InitRedis(cache.InitRedisOpts{
				Addr:        viper.GetString("redis-addr"),
				Username:    viper.GetString("redis-username"),
				Password:    viper.GetString("redis-password"),
				ServiceLogs: serviceLogs,
			}); err != nil {
				return fmt.Errorf("failed to initialise the redis ledger: %s", err)
			}
			logrus.Infof("redis ledger initialised")
		} else {
			cache.InitMemory()
			logrus.Infof("in-memory ledger initialised")
		}

		configPath := viper.GetString("config-path")
		store := config.NewStore(configPath)
		document, err := store.Load()
		if err != nil {
			if !errors.Is(err, config.ErrNotFound) {
				return fmt.Errorf("failed to load the configuration document: %s", err)
			}
			logrus.Infof("no configuration document at path[%s] yet, onboarding starts from scratch", configPath)
			document = config.Document{}
		}

		telegramBotToken := viper.GetString("telegram-bot-token")
		if telegramBotToken == "" {
			return fmt.Errorf("failed to receive a telegram bot token")
		}
		adminChannelId := viper.GetInt64("admin-channel-id")
		if adminChannelId == 0 {
			return fmt.Errorf("failed to receive an admin channel id")
		}

		// the update handler needs the dispatcher which needs the
		// surface which needs the bot, so the handler is bound after
		// construction; updates only flow once the bot starts
		var handler telegram.Handler
		telegramBot, err := telegram.New(telegram.NewOpts{
			BotToken: telegramBotToken,
			DefaultHandler: func(ctx context.Context, b *telegram.Bot, update *telegram.Update) {
				if handler != nil {
					handler(ctx, b, update)
				}
			},
			ServiceLogs: serviceLogs,
		})
		if err != nil {
			return fmt.Errorf("failed to initialise the telegram bot: %s", err)
		}

		surface := bot.NewTelegramSurface(bot.NewTelegramSurfaceOpts{
			AdminChannelId: adminChannelId,
			Bot:            telegramBot,
			ServiceLogs:    serviceLogs,
		})
		sequencer := onboarding.NewSequencer(onboarding.NewSequencerOpts{
			Store:       store,
			Document:    document,
			Admin:       surface,
			ServiceLogs: serviceLogs,
		})
		workflow := requests.NewWorkflow(requests.NewWorkflowOpts{
			Store:       store,
			Notifier:    surface,
			ServiceLogs: serviceLogs,
		})
		gate := approvals.NewGate(approvals.NewGateOpts{
			Workflow:    workflow,
			Renderer:    surface,
			ServiceLogs: serviceLogs,
		})
		dispatcher := bot.NewDispatcher(bot.NewDispatcherOpts{
			AdminChannelId: adminChannelId,
			Store:          store,
			Sequencer:      sequencer,
			Workflow:       workflow,
			Gate:           gate,
			Publisher:      surface,
			ServiceLogs:    serviceLogs,
		})
		handler = bot.GetDefaultHandler(bot.NewDefaultHandlerOpts{
			AdminChannelId: adminChannelId,
			Dispatcher:     dispatcher,
			Store:          store,
			ServiceLogs:    serviceLogs,
		})

		httpDone := make(chan common.Done)
		isHttpEnabled := viper.GetBool("http-enabled")
		logrus.Debugf("http-enabled status: %v", isHttpEnabled)
		if isHttpEnabled {
			httpServerOpts := requests.StartHttpServerOpts{
				Addr:        viper.GetString("http-addr"),
				Done:        httpDone,
				ServiceLogs: serviceLogs,
				Workflow:    workflow,
			}
			if authToken := viper.GetString("http-auth-token"); authToken != "" {
				httpServerOpts.BearerAuth = &requests.StartHttpServerBearerAuthOpts{
					Token: authToken,
				}
			}
			go func() {
				if err := requests.StartHttpServer(httpServerOpts); err != nil {
					logrus.Errorf("http server stopped: %s", err)
				}
			}()
		}

		signals := make(chan os.Signal, 1)
		signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			receivedSignal := <-signals
			logrus.Infof("received signal[%s], shutting down...", receivedSignal)
			close(httpDone)
			telegramBot.Done <- common.Done{}
		}()

		dispatcher.Activate()
		telegramBot.Start()
		return nil
	},
}
