package bot

import (
	"emsbot/internal/approvals"
	"emsbot/internal/integrations/telegram"
	"emsbot/internal/requests"
	"fmt"
	"strings"

	"github.com/go-telegram/bot/models"
)

// getEntryPointsKeyboard returns the keyboard published to the request
// channel, one button per request kind
func getEntryPointsKeyboard() *models.InlineKeyboardMarkup {
	buttons := []models.InlineKeyboardButton{}
	for _, kind := range requests.Kinds {
		buttons = append(buttons, models.InlineKeyboardButton{
			Text:         kind.Title(),
			CallbackData: createSubmitCallbackData(kind),
		})
	}
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{buttons},
	}
}

// getDecisionKeyboard returns the approve/deny keyboard attached to a
// pending request's notification
func getDecisionKeyboard(requestId string) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{{
			models.InlineKeyboardButton{
				Text:         "Approve",
				CallbackData: createDecisionCallbackData(approvals.DecisionApprove, requestId),
			},
			models.InlineKeyboardButton{
				Text:         "Deny",
				CallbackData: createDecisionCallbackData(approvals.DecisionDeny, requestId),
			},
		}},
	}
}

func getMentionLine(notifyRoles []string) string {
	if len(notifyRoles) == 0 {
		return "nobody is configured to review this"
	}
	return strings.Join(notifyRoles, ", ")
}

// getRequestNotificationMessage renders a pending request for its
// notification channel: mention line plus a structured summary
func getRequestNotificationMessage(record requests.Record) string {
	return telegram.FormatInputf(
		"*📨 New Request: %s*\n"+
			"*Reviewers*: %s\n\n"+
			"*Submitter*: %s\n"+
			"*From*: `%s`\n"+
			"*To*: `%s`\n"+
			"*Duration*: `%s`\n"+
			"*Reason*: %s\n"+
			"*Submitted at*: `%s`\n"+
			"\nStatus: *PENDING*",
		record.Kind.Title(),
		getMentionLine(record.NotifyRoles),
		record.Submitter.Name,
		record.Start,
		record.End,
		record.FormatDuration(),
		reasonOrPlaceholder(record.Reason),
		record.SubmittedAt.Format("2006-01-02 15:04:05"),
	)
}

// getDecidedNotificationMessage renders a decided request in its
// terminal, non-interactive form
func getDecidedNotificationMessage(record requests.Record) string {
	decider := ""
	decidedAt := ""
	if record.DecidedBy != nil {
		decider = record.DecidedBy.Name
	}
	if record.DecidedAt != nil {
		decidedAt = record.DecidedAt.Format("2006-01-02 15:04:05")
	}
	if record.Status == requests.StatusApproved {
		return telegram.FormatInputf(
			"*✅ Request: %s*\n\n"+
				"*Submitter*: %s\n"+
				"*From*: `%s`\n"+
				"*To*: `%s`\n"+
				"*Duration*: `%s`\n"+
				"*Reason*: %s\n"+
				"*Decided by*: %s\n"+
				"*Decided at*: `%s`\n"+
				"\nStatus: *APPROVED*",
			record.Kind.Title(),
			record.Submitter.Name,
			record.Start,
			record.End,
			record.FormatDuration(),
			reasonOrPlaceholder(record.Reason),
			decider,
			decidedAt,
		)
	}
	return telegram.FormatInputf(
		"*❌ Request: %s*\n\n"+
			"*Submitter*: %s\n"+
			"*From*: `%s`\n"+
			"*To*: `%s`\n"+
			"*Duration*: `%s`\n"+
			"*Reason*: %s\n"+
			"*Decided by*: %s\n"+
			"*Decided at*: `%s`\n"+
			"*Denial reason*: %s\n"+
			"\nStatus: *DENIED*",
		record.Kind.Title(),
		record.Submitter.Name,
		record.Start,
		record.End,
		record.FormatDuration(),
		reasonOrPlaceholder(record.Reason),
		decider,
		decidedAt,
		reasonOrPlaceholder(record.DenialReason),
	)
}

// getFormPrompt tells a member what to reply with after they pressed
// an entry point button
func getFormPrompt(kind requests.Kind) string {
	if kind.IsTimeRanged() {
		return fmt.Sprintf("Submitting: %s\nReply to this message with `HH:MM HH:MM reason` where the reason is optional", kind.Title())
	}
	return fmt.Sprintf("Submitting: %s\nReply to this message with `DD.MM.YYYY DD.MM.YYYY reason` where the reason is optional", kind.Title())
}

func getDenialReasonPrompt() string {
	return "Reply to this message with the reason for denying the request"
}

func reasonOrPlaceholder(reason string) string {
	if reason == "" {
		return "not given"
	}
	return reason
}
