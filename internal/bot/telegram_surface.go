package bot

import (
	"emsbot/internal/common"
	"emsbot/internal/integrations/telegram"
	"emsbot/internal/requests"
	"fmt"
	"strings"
)

type NewTelegramSurfaceOpts struct {
	// AdminChannelId is the chat the onboarding sequencer and the
	// administrative commands operate in
	AdminChannelId int64

	Bot         *telegram.Bot
	ServiceLogs chan<- common.ServiceLog
}

// TelegramSurface adapts the telegram integration to the interfaces
// the workflow core speaks: it prompts the administrative channel,
// publishes the request entry points, delivers request notifications,
// and re-renders them once decided
type TelegramSurface struct {
	adminChannelId int64
	bot            *telegram.Bot
	serviceLogs    chan<- common.ServiceLog
}

func NewTelegramSurface(opts NewTelegramSurfaceOpts) *TelegramSurface {
	serviceLogs := opts.ServiceLogs
	if serviceLogs == nil {
		serviceLogs = common.GetNoopServiceLog()
	}
	return &TelegramSurface{
		adminChannelId: opts.AdminChannelId,
		bot:            opts.Bot,
		serviceLogs:    serviceLogs,
	}
}

// SendMessage delivers a plain notice to the administrative channel
func (s *TelegramSurface) SendMessage(text string) error {
	if _, err := s.bot.SendMessage(s.adminChannelId, s.bot.EscapeMarkdown(text)); err != nil {
		return fmt.Errorf("failed to message the administrative channel: %w", err)
	}
	return nil
}

// PublishEntryPoints posts the message members press to open a
// submission form, one button per request kind
func (s *TelegramSurface) PublishEntryPoints(channelId int64) error {
	message := s.bot.EscapeMarkdown("Press a button below to submit a request:")
	if _, err := s.bot.SendMessage(channelId, message, getEntryPointsKeyboard()); err != nil {
		return fmt.Errorf("failed to publish entry points: %w", err)
	}
	return nil
}

// SendRequestNotification posts a pending request with its decision
// keyboard and returns the handle of the created message
func (s *TelegramSurface) SendRequestNotification(channelId int64, record requests.Record) (requests.MessageRef, error) {
	messageId, err := s.bot.SendMessage(
		channelId,
		getRequestNotificationMessage(record),
		getDecisionKeyboard(record.Id),
	)
	if err != nil {
		return requests.MessageRef{}, fmt.Errorf("failed to notify channel[%v]: %w", channelId, err)
	}
	return requests.MessageRef{ChatId: channelId, MessageId: messageId}, nil
}

// FinalizeRequestNotification rewrites a decided request's message in
// its terminal form; passing no markup strips the decision keyboard so
// the affordances disappear together with the pending state
func (s *TelegramSurface) FinalizeRequestNotification(record requests.Record) error {
	if record.Message == nil {
		// the notification never went out (unrouted submission), there
		// is nothing to re-render
		return nil
	}
	if err := s.bot.UpdateMessage(
		record.Message.ChatId,
		record.Message.MessageId,
		getDecidedNotificationMessage(record),
	); err != nil {
		return fmt.Errorf("failed to finalize the notification of request[%s]: %w", record.Id, err)
	}
	return nil
}

// formatCodeBlock wraps text in a fenced code block; inside code
// entities only backslashes and backticks need escaping
func formatCodeBlock(text string) string {
	replacer := strings.NewReplacer("\\", "\\\\", "`", "\\`")
	return fmt.Sprintf("```\n%s\n```", replacer.Replace(text))
}
