package telegram

import (
	"context"
	"errors"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-bot/api/internal/registration"
)

type fakeBot struct {
	mu        sync.Mutex
	sent      []tgbotapi.Chattable
	requests  []tgbotapi.Chattable
	rejectMD  bool
	fileLinks map[string]string
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if m, ok := c.(tgbotapi.MessageConfig); ok && b.rejectMD && m.ParseMode != "" {
		return tgbotapi.Message{}, errors.New("Bad Request: can't parse entities")
	}
	b.sent = append(b.sent, c)
	return tgbotapi.Message{}, nil
}

func (b *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (b *fakeBot) GetFileDirectURL(fileID string) (string, error) {
	if u, ok := b.fileLinks[fileID]; ok {
		return u, nil
	}
	return "", errors.New("file not found")
}

type call struct {
	kind, arg string
	op        registration.Operator
	photo     []byte
	photoErr  error
}

type fakeMachine struct {
	mu      sync.Mutex
	calls   []call
	replies []registration.Reply
}

func (m *fakeMachine) record(c call) []registration.Reply {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, c)
	return m.replies
}

func (m *fakeMachine) Command(_ context.Context, op registration.Operator, name, args string) []registration.Reply {
	return m.record(call{kind: "command", arg: name + "|" + args, op: op})
}

func (m *fakeMachine) Photo(ctx context.Context, op registration.Operator, fetch registration.PhotoSource) []registration.Reply {
	data, err := fetch(ctx)
	return m.record(call{kind: "photo", op: op, photo: data, photoErr: err})
}

func (m *fakeMachine) Text(_ context.Context, op registration.Operator, text string) []registration.Reply {
	return m.record(call{kind: "text", arg: text, op: op})
}

func (m *fakeMachine) Callback(_ context.Context, op registration.Operator, data string) []registration.Reply {
	return m.record(call{kind: "callback", arg: data, op: op})
}

func newRouter(replies ...registration.Reply) (*Router, *fakeBot, *fakeMachine) {
	bot := &fakeBot{fileLinks: map[string]string{"big": "https://files/big.jpg", "doc": "https://files/doc.jpg"}}
	m := &fakeMachine{replies: replies}
	r := &Router{
		Bot:     bot,
		Machine: m,
		Download: func(_ context.Context, url string) ([]byte, error) {
			return []byte("bytes of " + url), nil
		},
	}
	return r, bot, m
}

func message(text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: 7, FirstName: "Ana"},
		Chat: &tgbotapi.Chat{ID: 70},
		Text: text,
	}}
}

func command(text string) tgbotapi.Update {
	upd := message(text)
	upd.Message.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len([]rune(text[:indexOrLen(text, ' ')]))}}
	return upd
}

func indexOrLen(s string, c byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}
	return len(s)
}

func TestCommandIsRoutedWithArguments(t *testing.T) {
	r, bot, m := newRouter(registration.Reply{Text: "*ok*", Markdown: true, Keyboard: [][]registration.Button{{{Text: "A", Data: "a"}}}})
	r.HandleUpdate(context.Background(), command("/Salida 45678912"))
	r.Wait()

	require.Len(t, m.calls, 1)
	assert.Equal(t, "command", m.calls[0].kind)
	assert.Equal(t, "salida|45678912", m.calls[0].arg)
	assert.Equal(t, registration.Operator{ID: 7, Name: "Ana"}, m.calls[0].op)

	require.Len(t, bot.sent, 1)
	msg := bot.sent[0].(tgbotapi.MessageConfig)
	assert.Equal(t, int64(70), msg.ChatID)
	assert.Equal(t, tgbotapi.ModeMarkdown, msg.ParseMode)
	kb := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	assert.Equal(t, "a", *kb.InlineKeyboard[0][0].CallbackData)
}

func TestPhotoUsesLargestSize(t *testing.T) {
	r, _, m := newRouter()
	upd := message("")
	upd.Message.Photo = []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "big"}}
	r.HandleUpdate(context.Background(), upd)
	r.Wait()

	require.Len(t, m.calls, 1)
	assert.Equal(t, "photo", m.calls[0].kind)
	assert.Equal(t, "bytes of https://files/big.jpg", string(m.calls[0].photo))
}

func TestImageDocumentCountsAsPhoto(t *testing.T) {
	r, _, m := newRouter()
	upd := message("")
	upd.Message.Document = &tgbotapi.Document{FileID: "doc", MimeType: "image/jpeg"}
	r.HandleUpdate(context.Background(), upd)

	pdf := message("")
	pdf.Message.Document = &tgbotapi.Document{FileID: "doc", MimeType: "application/pdf"}
	r.HandleUpdate(context.Background(), pdf)
	r.Wait()

	require.Len(t, m.calls, 1)
	assert.Equal(t, "photo", m.calls[0].kind)
}

func TestCallbackReplacesMessageAndAcks(t *testing.T) {
	r, bot, m := newRouter(registration.Reply{Text: "next", Replace: true})
	r.HandleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb1",
		From:    &tgbotapi.User{ID: 7},
		Message: &tgbotapi.Message{MessageID: 55, Chat: &tgbotapi.Chat{ID: 70}},
		Data:    "dur:short",
	}})
	r.Wait()

	assert.Equal(t, "dur:short", m.calls[0].arg)
	require.Len(t, bot.sent, 1)
	edit := bot.sent[0].(tgbotapi.EditMessageTextConfig)
	assert.Equal(t, 55, edit.MessageID)
	assert.Nil(t, edit.ReplyMarkup)
	require.Len(t, bot.requests, 1)
	assert.Equal(t, "cb1", bot.requests[0].(tgbotapi.CallbackConfig).CallbackQueryID)
}

func TestAlertAnswersCallback(t *testing.T) {
	r, bot, _ := newRouter(registration.Reply{Text: "ocupada", Alert: true})
	r.HandleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb2",
		From:    &tgbotapi.User{ID: 7},
		Message: &tgbotapi.Message{MessageID: 1, Chat: &tgbotapi.Chat{ID: 70}},
		Data:    "busy:2",
	}})
	r.Wait()

	assert.Empty(t, bot.sent)
	require.Len(t, bot.requests, 1)
	cb := bot.requests[0].(tgbotapi.CallbackConfig)
	assert.True(t, cb.ShowAlert)
	assert.Equal(t, "ocupada", cb.Text)
}

func TestDocumentReply(t *testing.T) {
	r, bot, _ := newRouter(registration.Reply{Document: &registration.Document{Name: "r.xlsx", Data: []byte("x")}})
	r.HandleUpdate(context.Background(), command("/resumen"))
	r.Wait()

	require.Len(t, bot.sent, 1)
	doc := bot.sent[0].(tgbotapi.DocumentConfig)
	assert.Equal(t, "r.xlsx", doc.File.(tgbotapi.FileBytes).Name)
}

func TestMarkdownFallsBackToPlainText(t *testing.T) {
	r, bot, _ := newRouter(registration.Reply{Text: "bad_*markdown", Markdown: true})
	bot.rejectMD = true
	r.HandleUpdate(context.Background(), message("hola"))
	r.Wait()

	require.Len(t, bot.sent, 1)
	assert.Empty(t, bot.sent[0].(tgbotapi.MessageConfig).ParseMode)
}

func TestUpdatesRunConcurrently(t *testing.T) {
	r, _, m := newRouter()
	for i := 0; i < 20; i++ {
		r.HandleUpdate(context.Background(), message("x"))
	}
	r.Wait()
	assert.Len(t, m.calls, 20)
}
