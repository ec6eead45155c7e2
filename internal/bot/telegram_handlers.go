package bot

import (
	"context"
	"emsbot/internal/approvals"
	"emsbot/internal/cache"
	"emsbot/internal/common"
	"emsbot/internal/config"
	"emsbot/internal/integrations/telegram"
	"emsbot/internal/mentions"
	"emsbot/internal/requests"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot/models"
)

// pendingPromptTtl bounds how long a force-reply prompt stays
// answerable; after this the member has to press the button again
const pendingPromptTtl = 10 * time.Minute

// pendingForm is cached while a member fills in a submission prompt
type pendingForm struct {
	Kind            requests.Kind `json:"kind"`
	PromptMessageId int           `json:"promptMessageId"`
}

// pendingDenial is cached while a reviewer types a denial reason
type pendingDenial struct {
	RequestId       string `json:"requestId"`
	PromptMessageId int    `json:"promptMessageId"`
}

func createPendingFormCacheKey(chatId int64, senderId int64) string {
	return fmt.Sprintf("pending:form:%v:%v", chatId, senderId)
}

func createPendingDenialCacheKey(chatId int64, senderId int64) string {
	return fmt.Sprintf("pending:denial:%v:%v", chatId, senderId)
}

type NewDefaultHandlerOpts struct {
	AdminChannelId int64
	Dispatcher     *Dispatcher
	Store          *config.Store
	ServiceLogs    chan<- common.ServiceLog
}

// GetDefaultHandler returns the handler that translates every telegram
// update into a typed event (or a prompt round-trip) for the
// dispatcher; anything it doesn't recognise is dropped silently
func GetDefaultHandler(opts NewDefaultHandlerOpts) telegram.Handler {
	serviceLogs := opts.ServiceLogs
	if serviceLogs == nil {
		serviceLogs = common.GetNoopServiceLog()
	}
	handler := &updateHandler{
		adminChannelId: opts.AdminChannelId,
		dispatcher:     opts.Dispatcher,
		store:          opts.Store,
		serviceLogs:    serviceLogs,
	}
	return func(_ context.Context, bot *telegram.Bot, update *telegram.Update) {
		if update.CallbackData != "" {
			handler.handleCallback(bot, update)
			return
		}
		if update.Message != "" {
			handler.handleMessage(bot, update)
		}
	}
}

type updateHandler struct {
	adminChannelId int64
	dispatcher     *Dispatcher
	store          *config.Store
	serviceLogs    chan<- common.ServiceLog
}

// actorIdentity assembles who is acting, with their roles as the
// configuration document holds them right now. Roles are deliberately
// not cached anywhere: authorization checks must see membership
// changes that happened after a request was submitted
func (h *updateHandler) actorIdentity(update *telegram.Update) requests.Identity {
	identity := requests.Identity{
		Id:   update.SenderId,
		Name: update.SenderUsername,
	}
	document, err := h.store.Load()
	if err != nil {
		if !errors.Is(err, config.ErrNotFound) {
			h.serviceLogs <- common.ServiceLogf(common.LogLevelWarn, "failed to load roles for user[%v]: %s", update.SenderId, err)
		}
		return identity
	}
	identity.Roles = document.MemberRoles(update.SenderId)
	return identity
}

func (h *updateHandler) handleCallback(bot *telegram.Bot, update *telegram.Update) {
	action, value := parseCallbackData(update.CallbackData)
	switch action {
	case callbackActionSubmit:
		h.startForm(bot, update, requests.Kind(value))
	case callbackActionApprove:
		notice := h.dispatcher.Dispatch(Event{
			Type:      EventDecisionPressed,
			ChannelId: update.ChatId,
			Actor:     h.actorIdentity(update),
			Decision: &DecisionPress{
				RequestId: value,
				Decision:  approvals.DecisionApprove,
			},
		})
		h.answerCallback(bot, update, notice)
	case callbackActionDeny:
		h.startDenial(bot, update, value)
	default:
		h.serviceLogs <- common.ServiceLogf(common.LogLevelDebug, "ignoring callback with action[%s]", action)
	}
}

// startForm opens a submission prompt: a force-reply message whose
// answer carries the form fields
func (h *updateHandler) startForm(bot *telegram.Bot, update *telegram.Update, kind requests.Kind) {
	if !kind.IsValid() {
		h.answerCallback(bot, update, "Unknown request type.")
		return
	}
	promptMessageId, err := bot.SendMessage(
		update.ChatId,
		getFormPrompt(kind),
		&models.ForceReply{ForceReply: true, Selective: true},
	)
	if err != nil {
		h.serviceLogs <- common.ServiceLogf(common.LogLevelError, "failed to prompt user[%v] for a %s form: %s", update.SenderId, kind, err)
		h.answerCallback(bot, update, "Something went wrong, please try again.")
		return
	}
	if err := h.savePending(
		createPendingFormCacheKey(update.ChatId, update.SenderId),
		pendingForm{Kind: kind, PromptMessageId: promptMessageId},
	); err != nil {
		h.serviceLogs <- common.ServiceLogf(common.LogLevelError, "failed to save the pending form of user[%v]: %s", update.SenderId, err)
		h.answerCallback(bot, update, "Something went wrong, please try again.")
		return
	}
	h.answerCallback(bot, update, "Reply to the prompt to submit your request.")
}

// startDenial collects the mandatory denial reason before any decision
// is attempted; authorization happens when the reasoned decision lands
func (h *updateHandler) startDenial(bot *telegram.Bot, update *telegram.Update, requestId string) {
	promptMessageId, err := bot.SendMessage(
		update.ChatId,
		bot.EscapeMarkdown(getDenialReasonPrompt()),
		&models.ForceReply{ForceReply: true, Selective: true},
	)
	if err != nil {
		h.serviceLogs <- common.ServiceLogf(common.LogLevelError, "failed to prompt user[%v] for a denial reason: %s", update.SenderId, err)
		h.answerCallback(bot, update, "Something went wrong, please try again.")
		return
	}
	if err := h.savePending(
		createPendingDenialCacheKey(update.ChatId, update.SenderId),
		pendingDenial{RequestId: requestId, PromptMessageId: promptMessageId},
	); err != nil {
		h.serviceLogs <- common.ServiceLogf(common.LogLevelError, "failed to save the pending denial of user[%v]: %s", update.SenderId, err)
		h.answerCallback(bot, update, "Something went wrong, please try again.")
		return
	}
	h.answerCallback(bot, update, "Reply to the prompt with the denial reason.")
}

func (h *updateHandler) handleMessage(bot *telegram.Bot, update *telegram.Update) {
	if update.IsReply {
		if h.consumeDenialReply(bot, update) {
			return
		}
		if h.consumeFormReply(bot, update) {
			return
		}
	}
	if update.ChatId == h.adminChannelId && strings.HasPrefix(strings.TrimSpace(update.Message), "/") {
		h.handleAdminCommand(bot, update)
		return
	}
	// everything else is only meaningful as onboarding input; the
	// dispatcher drops it when the sequencer isn't waiting
	h.dispatcher.Dispatch(Event{
		Type:      EventOnboardingReply,
		ChannelId: update.ChatId,
		Actor:     h.actorIdentity(update),
		Reply:     update.Message,
	})
}

// consumeDenialReply matches a reply against the sender's pending
// denial prompt; it reports whether the reply was consumed
func (h *updateHandler) consumeDenialReply(bot *telegram.Bot, update *telegram.Update) bool {
	key := createPendingDenialCacheKey(update.ChatId, update.SenderId)
	pending := pendingDenial{}
	if !h.loadPending(key, &pending) {
		return false
	}
	if pending.PromptMessageId != update.ReplyMessageId {
		return false
	}
	reason := strings.TrimSpace(update.Message)
	if reason == "" {
		// the prompt stays pending, the reviewer can reply again
		h.replyNotice(bot, update, "A reason is required to deny a request.")
		return true
	}
	notice := h.dispatcher.Dispatch(Event{
		Type:      EventDecisionPressed,
		ChannelId: update.ChatId,
		Actor:     h.actorIdentity(update),
		Decision: &DecisionPress{
			RequestId: pending.RequestId,
			Decision:  approvals.DecisionDeny,
			Reason:    reason,
		},
	})
	h.deletePending(key)
	h.replyNotice(bot, update, notice)
	return true
}

// consumeFormReply matches a reply against the sender's pending
// submission prompt; it reports whether the reply was consumed
func (h *updateHandler) consumeFormReply(bot *telegram.Bot, update *telegram.Update) bool {
	key := createPendingFormCacheKey(update.ChatId, update.SenderId)
	pending := pendingForm{}
	if !h.loadPending(key, &pending) {
		return false
	}
	if pending.PromptMessageId != update.ReplyMessageId {
		return false
	}
	fields := strings.Fields(update.Message)
	if len(fields) < 2 {
		h.replyNotice(bot, update, "Expected at least a start and an end, like in the prompt, try again.")
		return true
	}
	actor := h.actorIdentity(update)
	notice := h.dispatcher.Dispatch(Event{
		Type:      EventFormSubmitted,
		ChannelId: update.ChatId,
		Actor:     actor,
		Submission: &requests.Submission{
			Kind:      pending.Kind,
			Submitter: actor,
			Start:     fields[0],
			End:       fields[1],
			Reason:    strings.Join(fields[2:], " "),
		},
	})
	// one prompt, one attempt; a rejected submission means pressing
	// the entry point again
	h.deletePending(key)
	h.replyNotice(bot, update, notice)
	return true
}

func (h *updateHandler) handleAdminCommand(bot *telegram.Bot, update *telegram.Update) {
	message := strings.TrimSpace(update.Message)
	fields := strings.Fields(message)
	command := fields[0]
	arguments := strings.TrimSpace(strings.TrimPrefix(message, command))
	switch command {
	case "/config":
		description, err := h.store.Describe()
		if err != nil {
			h.sendAdminNotice(bot, fmt.Sprintf("Failed to load the configuration: %s", err))
			return
		}
		h.sendAdminMessage(bot, formatCodeBlock(description))
	case "/mentions":
		document, err := h.store.Load()
		if err != nil && !errors.Is(err, config.ErrNotFound) {
			h.sendAdminNotice(bot, fmt.Sprintf("Failed to load the configuration: %s", err))
			return
		}
		h.sendAdminMessage(bot, formatCodeBlock(mentions.Format(document.MentionMap())))
	case "/mention":
		h.handleMentionCommand(bot, arguments)
	case "/roles":
		h.handleRolesCommand(bot, arguments)
	default:
		h.serviceLogs <- common.ServiceLogf(common.LogLevelDebug, "ignoring unknown command[%s]", command)
	}
}

// handleMentionCommand sets one mention map entry wholesale, replacing
// whatever targets the role mapped to before
func (h *updateHandler) handleMentionCommand(bot *telegram.Bot, arguments string) {
	parts := strings.SplitN(arguments, "=", 2)
	if len(parts) != 2 {
		h.sendAdminNotice(bot, "Usage: /mention <role> = <target>, <target>, ...")
		return
	}
	role := strings.TrimSpace(parts[0])
	targets := mentions.ParseTargets(parts[1])
	if role == "" {
		h.sendAdminNotice(bot, "Usage: /mention <role> = <target>, <target>, ...")
		return
	}
	if err := h.store.Update(func(document config.Document) error {
		document.SetMentionMap(mentions.Upsert(document.MentionMap(), role, targets))
		return nil
	}); err != nil {
		h.sendAdminNotice(bot, fmt.Sprintf("Failed to save the mention map: %s", err))
		return
	}
	h.sendAdminNotice(bot, fmt.Sprintf("Mapped '%s' to %v target(s).", role, len(targets)))
}

// handleRolesCommand replaces one member's role set wholesale
func (h *updateHandler) handleRolesCommand(bot *telegram.Bot, arguments string) {
	parts := strings.SplitN(arguments, "=", 2)
	if len(parts) != 2 {
		h.sendAdminNotice(bot, "Usage: /roles <member id> = <role>, <role>, ...")
		return
	}
	memberId, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil || memberId == 0 {
		h.sendAdminNotice(bot, "Usage: /roles <member id> = <role>, <role>, ...")
		return
	}
	roles := mentions.ParseTargets(parts[1])
	if err := h.store.Update(func(document config.Document) error {
		document.SetMemberRoles(memberId, roles)
		return nil
	}); err != nil {
		h.sendAdminNotice(bot, fmt.Sprintf("Failed to save the member roles: %s", err))
		return
	}
	h.sendAdminNotice(bot, fmt.Sprintf("Member %v now holds %v role(s).", memberId, len(roles)))
}

func (h *updateHandler) savePending(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal the pending entry: %w", err)
	}
	if err := cache.Get().Set(key, string(data), pendingPromptTtl); err != nil {
		return fmt.Errorf("failed to cache the pending entry: %w", err)
	}
	return nil
}

// loadPending reports whether a pending entry exists at `key` and
// parses it into `value`; an unparseable entry is dropped
func (h *updateHandler) loadPending(key string, value any) bool {
	data, err := cache.Get().Get(key)
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(data), value); err != nil {
		h.serviceLogs <- common.ServiceLogf(common.LogLevelWarn, "dropping an unparseable pending entry at key[%s]: %s", key, err)
		h.deletePending(key)
		return false
	}
	return true
}

func (h *updateHandler) deletePending(key string) {
	if err := cache.Get().Del(key); err != nil {
		h.serviceLogs <- common.ServiceLogf(common.LogLevelWarn, "failed to delete the pending entry at key[%s]: %s", key, err)
	}
}

func (h *updateHandler) replyNotice(bot *telegram.Bot, update *telegram.Update, notice string) {
	if notice == "" {
		return
	}
	if err := bot.ReplyMessage(update.ChatId, update.MessageId, bot.EscapeMarkdown(notice)); err != nil {
		h.serviceLogs <- common.ServiceLogf(common.LogLevelError, "failed to send a notice to chat[%v]: %s", update.ChatId, err)
	}
}

func (h *updateHandler) answerCallback(bot *telegram.Bot, update *telegram.Update, notice string) {
	if err := bot.AnswerCallback(update.CallbackId, notice); err != nil {
		h.serviceLogs <- common.ServiceLogf(common.LogLevelError, "failed to answer callback[%s]: %s", update.CallbackId, err)
	}
}

func (h *updateHandler) sendAdminNotice(bot *telegram.Bot, notice string) {
	h.sendAdminMessage(bot, bot.EscapeMarkdown(notice))
}

func (h *updateHandler) sendAdminMessage(bot *telegram.Bot, message string) {
	if _, err := bot.SendMessage(h.adminChannelId, message); err != nil {
		h.serviceLogs <- common.ServiceLogf(common.LogLevelError, "failed to message the administrative channel: %s", err)
	}
}
