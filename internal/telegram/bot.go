// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package telegram connects the session router to Telegram via long polling.
package telegram

import (
	"context"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/pdiddy/movie-assistant/internal/logging"
	"github.com/pdiddy/movie-assistant/internal/session"
)

// PollTimeout is the long-polling timeout in seconds.
const PollTimeout = 60

// API is the part of *tgbotapi.BotAPI the loop uses.
type API interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Handler answers one message.
type Handler interface {
	Handle(ctx context.Context, msg session.Message) session.Reply
}

// NewBot authenticates token against the Bot API. httpClient may be nil.
func NewBot(token string, httpClient *http.Client) (*tgbotapi.BotAPI, error) {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, httpClient)
}

// Run receives updates until ctx is cancelled or the update channel closes.
// Updates are handled one at a time, each to completion.
func Run(ctx context.Context, bot API, h Handler) error {
	log := logging.Component(ctx, "telegram")

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = PollTimeout
	updates := bot.GetUpdatesChan(cfg)
	log.Info().Msg("polling for updates")

	for {
		select {
		case <-ctx.Done():
			bot.StopReceivingUpdates()
			log.Info().Msg("stopped polling")
			return nil
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			handleUpdate(ctx, bot, h, u)
		}
	}
}

func handleUpdate(ctx context.Context, bot API, h Handler, u tgbotapi.Update) {
	msg, chatID, ok := toMessage(u)
	if !ok {
		return
	}
	ctx = logging.ContextWithNewTurnID(ctx)
	log := logging.Component(ctx, "telegram")

	if _, err := bot.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		log.Debug().Err(err).Msg("sending typing action")
	}

	reply := h.Handle(ctx, msg)
	if strings.TrimSpace(reply.Text) == "" {
		return
	}
	if _, err := bot.Send(tgbotapi.NewMessage(chatID, reply.Text)); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("sending reply")
	}
}

// toMessage converts a text update into a session message. Updates without
// a text message (edits, stickers, callbacks) are skipped.
func toMessage(u tgbotapi.Update) (session.Message, int64, bool) {
	m := u.Message
	if m == nil || m.Chat == nil || strings.TrimSpace(m.Text) == "" {
		return session.Message{}, 0, false
	}
	msg := session.Message{Text: m.Text}
	if m.From != nil {
		msg.UserID = m.From.ID
		msg.Username = m.From.UserName
	} else {
		msg.UserID = m.Chat.ID
	}
	if m.IsCommand() {
		msg.Command = m.Command()
		msg.Args = strings.TrimSpace(m.CommandArguments())
	}
	return msg, m.Chat.ID, true
}
