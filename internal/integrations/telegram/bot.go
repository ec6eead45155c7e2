package telegram

import (
	"context"
	"emsbot/internal/common"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Bot represents a Telegram bot instance
type Bot struct {
	// Client is an instance of the third-party library we use for
	// interacting with Telegram
	Client *bot.Bot

	// Done is a channel that upon receiving a message, terminates
	// the bot gracefully
	Done chan common.Done

	// ServiceLogs is the channel to send logs to for logging via
	// the centralised logger
	ServiceLogs chan<- common.ServiceLog
}

type NewOpts struct {
	BotToken       string
	DefaultHandler Handler
	ServiceLogs    chan<- common.ServiceLog
}

func New(opts NewOpts) (*Bot, error) {
	serviceLogs := opts.ServiceLogs
	if serviceLogs == nil {
		serviceLogs = common.GetNoopServiceLog()
	}
	instance := &Bot{
		Done:        make(chan common.Done),
		ServiceLogs: serviceLogs,
	}
	client, err := bot.New(
		opts.BotToken,
		bot.WithDefaultHandler(func(ctx context.Context, _ *bot.Bot, update *models.Update) {
			opts.DefaultHandler(ctx, instance, FromBotUpdate(update))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create a telegram client: %s", err)
	}
	instance.Client = client
	return instance, nil
}

func (b *Bot) EscapeMarkdown(input string) string {
	return bot.EscapeMarkdown(input)
}

// SendMessage sends a message to a chat and returns the platform ID
// of the created message so callers can address it later
func (b *Bot) SendMessage(chatId int64, message string, markup ...models.ReplyMarkup) (int, error) {
	b.ServiceLogs <- common.ServiceLogf(
		common.LogLevelDebug,
		"chat[%v] >> '%s'", chatId, message,
	)
	messageParameters := &bot.SendMessageParams{
		ChatID:    chatId,
		Text:      message,
		ParseMode: "MarkdownV2",
	}
	if len(markup) > 0 {
		messageParameters.ReplyMarkup = markup[0]
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	sentMessage, err := b.Client.SendMessage(ctx, messageParameters)
	if err != nil {
		return 0, fmt.Errorf("failed to send message: %s", err)
	}
	return sentMessage.ID, nil
}

// ReplyMessage sends a message linked to an existing one in a chat
func (b *Bot) ReplyMessage(chatId int64, replyMessageId int, message string, markup ...models.ReplyMarkup) error {
	b.ServiceLogs <- common.ServiceLogf(
		common.LogLevelDebug,
		"chat[%v] >> '%s'", chatId, message,
	)
	messageParameters := &bot.SendMessageParams{
		ChatID: chatId,
		Text:   message,
		ReplyParameters: &models.ReplyParameters{
			ChatID:    chatId,
			MessageID: replyMessageId,
		},
		ParseMode: "MarkdownV2",
	}
	if len(markup) > 0 {
		messageParameters.ReplyMarkup = markup[0]
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := b.Client.SendMessage(ctx, messageParameters); err != nil {
		return fmt.Errorf("failed to send message: %s", err)
	}
	return nil
}

// UpdateMessage replaces the text (and markup, when provided) of an
// existing message; passing no markup strips any inline keyboard
func (b *Bot) UpdateMessage(chatId int64, messageId int, newMessage string, markup ...models.ReplyMarkup) error {
	b.ServiceLogs <- common.ServiceLogf(
		common.LogLevelDebug,
		"chat[%v].UpdateMessage[%v] '%s' (markup: %v)",
		chatId,
		messageId,
		newMessage,
		len(markup) > 0,
	)
	editMessageParameters := &bot.EditMessageTextParams{
		ChatID:    chatId,
		MessageID: messageId,
		ParseMode: "MarkdownV2",
		Text:      newMessage,
	}
	if len(markup) > 0 && markup[0] != nil {
		editMessageParameters.ReplyMarkup = markup[0]
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := b.Client.EditMessageText(ctx, editMessageParameters); err != nil {
		return fmt.Errorf("failed to edit text of message[%v] in chat[%v]: %s", messageId, chatId, err)
	}
	return nil
}

// AnswerCallback acknowledges a pressed inline button with a small
// notice visible only to the user who pressed it
func (b *Bot) AnswerCallback(callbackId string, text string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := b.Client.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackId,
		Text:            text,
	}); err != nil {
		return fmt.Errorf("failed to answer callback[%s]: %s", callbackId, err)
	}
	return nil
}

func (b *Bot) Start() {
	go func() {
		<-b.Done
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := b.Client.Close(ctx); err != nil {
			b.ServiceLogs <- common.ServiceLogf(common.LogLevelError, "failed to close bot: %s", err)
		}
	}()
	b.ServiceLogs <- common.ServiceLogf(common.LogLevelInfo, "starting a telegram bot...")
	b.Client.Start(context.Background())
}
