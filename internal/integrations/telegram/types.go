package telegram

import (
	"context"

	"github.com/go-telegram/bot/models"
)

// Handler is a wrapper around the third party implementation's handler function
type Handler func(context context.Context, bot *Bot, update *Update)

// Update is a wrapper around the third party implementation's update model
type Update struct {
	CallbackData   string         `json:"callbackData"`
	CallbackId     string         `json:"callbackId"`
	ChatId         int64          `json:"chatId"`
	IsReply        bool           `json:"isReply"`
	Message        string         `json:"message"`
	MessageId      int            `json:"messageId"`
	Raw            *models.Update `json:"-"`
	ReplyMessageId int            `json:"replyMessageId"`
	SenderId       int64          `json:"senderId"`
	SenderUsername string         `json:"senderUsername"`
}

// FromBotUpdate normalises the third party update model into our own
func FromBotUpdate(raw *models.Update) *Update {
	update := &Update{Raw: raw}
	if raw.Message != nil {
		update.ChatId = raw.Message.Chat.ID
		update.Message = raw.Message.Text
		update.MessageId = raw.Message.ID
		if raw.Message.From != nil {
			update.SenderId = raw.Message.From.ID
			update.SenderUsername = raw.Message.From.Username
		}
		if raw.Message.ReplyToMessage != nil {
			update.IsReply = true
			update.ReplyMessageId = raw.Message.ReplyToMessage.ID
		}
	}
	if raw.CallbackQuery != nil {
		update.CallbackData = raw.CallbackQuery.Data
		update.CallbackId = raw.CallbackQuery.ID
		update.SenderId = raw.CallbackQuery.From.ID
		update.SenderUsername = raw.CallbackQuery.From.Username
		if raw.CallbackQuery.Message.Message != nil {
			update.ChatId = raw.CallbackQuery.Message.Message.Chat.ID
			update.MessageId = raw.CallbackQuery.Message.Message.ID
		}
	}
	return update
}
