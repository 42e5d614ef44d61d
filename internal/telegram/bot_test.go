// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/movie-assistant/internal/logging"
	"github.com/pdiddy/movie-assistant/internal/session"
)

type fakeAPI struct {
	updates chan tgbotapi.Update
	stopped bool
	sent    []tgbotapi.MessageConfig
	actions int
	sendErr error
}

func newFakeAPI(us ...tgbotapi.Update) *fakeAPI {
	ch := make(chan tgbotapi.Update, len(us))
	for _, u := range us {
		ch <- u
	}
	return &fakeAPI{updates: ch}
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel { return f.updates }
func (f *fakeAPI) StopReceivingUpdates()                                        { f.stopped = true }

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if mc, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, mc)
	}
	return tgbotapi.Message{}, f.sendErr
}

func (f *fakeAPI) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.actions++
	return &tgbotapi.APIResponse{Ok: true}, nil
}

type echoHandler struct {
	got     []session.Message
	turnIDs []string
}

func (h *echoHandler) Handle(ctx context.Context, msg session.Message) session.Reply {
	h.got = append(h.got, msg)
	h.turnIDs = append(h.turnIDs, logging.TurnIDFromContext(ctx))
	if msg.Command != "" {
		return session.Reply{Text: "cmd:" + msg.Command + ":" + msg.Args}
	}
	return session.Reply{Text: "text:" + msg.Text}
}

func textUpdate(chatID, userID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text: text,
		Chat: &tgbotapi.Chat{ID: chatID},
		From: &tgbotapi.User{ID: userID, UserName: "user"},
	}}
}

func commandUpdate(chatID, userID int64, text string, cmdLen int) tgbotapi.Update {
	u := textUpdate(chatID, userID, text)
	u.Message.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: cmdLen}}
	return u
}

func TestToMessage(t *testing.T) {
	msg, chatID, ok := toMessage(textUpdate(10, 20, "комедия"))
	require.True(t, ok)
	assert.Equal(t, int64(10), chatID)
	assert.Equal(t, session.Message{UserID: 20, Username: "user", Text: "комедия"}, msg)

	msg, _, ok = toMessage(commandUpdate(10, 20, "/similar@movie_bot Матрица", len("/similar@movie_bot")))
	require.True(t, ok)
	assert.Equal(t, "similar", msg.Command)
	assert.Equal(t, "Матрица", msg.Args)

	_, _, ok = toMessage(tgbotapi.Update{})
	assert.False(t, ok)

	_, _, ok = toMessage(textUpdate(1, 2, "  "))
	assert.False(t, ok)

	u := textUpdate(30, 0, "ужасы")
	u.Message.From = nil
	msg, _, ok = toMessage(u)
	require.True(t, ok)
	assert.Equal(t, int64(30), msg.UserID)
}

func TestRunHandlesUpdatesInOrder(t *testing.T) {
	api := newFakeAPI(
		commandUpdate(1, 100, "/start", len("/start")),
		tgbotapi.Update{},
		textUpdate(2, 200, "фантастика про космос"),
	)
	close(api.updates)
	h := &echoHandler{}

	require.NoError(t, Run(context.Background(), api, h))

	require.Len(t, api.sent, 2)
	assert.Equal(t, int64(1), api.sent[0].ChatID)
	assert.Equal(t, "cmd:start:", api.sent[0].Text)
	assert.Equal(t, int64(2), api.sent[1].ChatID)
	assert.Equal(t, "text:фантастика про космос", api.sent[1].Text)
	assert.Equal(t, 2, api.actions)

	require.Len(t, h.turnIDs, 2)
	assert.NotEmpty(t, h.turnIDs[0])
	assert.NotEqual(t, h.turnIDs[0], h.turnIDs[1])
}

func TestRunSendFailureDoesNotStopLoop(t *testing.T) {
	api := newFakeAPI(textUpdate(1, 1, "раз"), textUpdate(1, 1, "два"))
	api.sendErr = errors.New("forbidden: bot was blocked by the user")
	close(api.updates)
	h := &echoHandler{}

	require.NoError(t, Run(context.Background(), api, h))
	assert.Len(t, h.got, 2)
}

func TestRunStopsOnCancel(t *testing.T) {
	api := newFakeAPI()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- Run(ctx, api, &echoHandler{}) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.True(t, api.stopped)
}
