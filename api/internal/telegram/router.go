package telegram

import (
	"context"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"hotel-bot/api/internal/registration"
)

// Sender — часть tgbotapi.BotAPI, которой пользуется роутер.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Machine — сценарий регистрации (registration.Machine).
type Machine interface {
	Command(ctx context.Context, op registration.Operator, name, args string) []registration.Reply
	Photo(ctx context.Context, op registration.Operator, fetch registration.PhotoSource) []registration.Reply
	Text(ctx context.Context, op registration.Operator, text string) []registration.Reply
	Callback(ctx context.Context, op registration.Operator, data string) []registration.Reply
}

type Router struct {
	Bot     Sender
	Machine Machine
	// Download скачивает файл по прямой ссылке Telegram; nil — download.
	Download func(ctx context.Context, url string) ([]byte, error)

	wg sync.WaitGroup
}

// HandleUpdate обрабатывает апдейт в отдельной горутине: долгое распознавание
// у одного оператора не задерживает остальных.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				log.WithField("update", upd.UpdateID).Errorf("telegram: panic: %v", rec)
			}
		}()
		r.handle(ctx, upd)
	}()
}

// Wait ждёт завершения всех запущенных обработчиков.
func (r *Router) Wait() { r.wg.Wait() }

func (r *Router) handle(ctx context.Context, upd tgbotapi.Update) {
	// callback-кнопки
	if cb := upd.CallbackQuery; cb != nil {
		r.handleCallback(ctx, *cb)
		return
	}
	msg := upd.Message
	if msg == nil || msg.From == nil {
		return
	}
	op := operatorOf(msg.From)
	cid := msg.Chat.ID

	var replies []registration.Reply
	switch {
	case msg.IsCommand():
		replies = r.Machine.Command(ctx, op, strings.ToLower(msg.Command()), msg.CommandArguments())
	case len(msg.Photo) > 0:
		// самое большое разрешение — последнее
		replies = r.Machine.Photo(ctx, op, r.fileSource(msg.Photo[len(msg.Photo)-1].FileID))
	case msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/"):
		// фото, отправленное файлом, без сжатия Telegram
		replies = r.Machine.Photo(ctx, op, r.fileSource(msg.Document.FileID))
	case msg.Text != "":
		replies = r.Machine.Text(ctx, op, msg.Text)
	default:
		return
	}
	r.render(cid, 0, "", replies)
}

func (r *Router) handleCallback(ctx context.Context, cb tgbotapi.CallbackQuery) {
	if cb.From == nil || cb.Message == nil {
		_, _ = r.Bot.Request(tgbotapi.NewCallback(cb.ID, "")) // ack
		return
	}
	replies := r.Machine.Callback(ctx, operatorOf(cb.From), cb.Data)
	r.render(cb.Message.Chat.ID, cb.Message.MessageID, cb.ID, replies)
}

func operatorOf(u *tgbotapi.User) registration.Operator {
	return registration.Operator{ID: u.ID, Name: strings.TrimSpace(u.FirstName)}
}

func (r *Router) fileSource(fileID string) registration.PhotoSource {
	return func(ctx context.Context) ([]byte, error) {
		url, err := r.Bot.GetFileDirectURL(fileID)
		if err != nil {
			return nil, err
		}
		dl := r.Download
		if dl == nil {
			dl = download
		}
		return dl(ctx, url)
	}
}
