package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"hotel-bot/api/internal/registration"
)

// render отправляет ответы сценария. msgID/callbackID заданы, если апдейт — нажатие кнопки.
func (r *Router) render(chatID int64, msgID int, callbackID string, replies []registration.Reply) {
	answered := false
	for _, rep := range replies {
		switch {
		case rep.Alert && callbackID != "" && !answered:
			if _, err := r.Bot.Request(tgbotapi.NewCallbackWithAlert(callbackID, rep.Text)); err != nil {
				log.Warnf("telegram: answer callback: %v", err)
			}
			answered = true
		case rep.Document != nil:
			doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: rep.Document.Name, Bytes: rep.Document.Data})
			r.send(doc)
		case rep.Replace && msgID != 0:
			r.send(editConfig(chatID, msgID, rep))
		default:
			r.send(messageConfig(chatID, rep))
		}
	}
	if callbackID != "" && !answered {
		_, _ = r.Bot.Request(tgbotapi.NewCallback(callbackID, "")) // ack
	}
}

func messageConfig(chatID int64, rep registration.Reply) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, rep.Text)
	if rep.Markdown {
		msg.ParseMode = tgbotapi.ModeMarkdown
	}
	if len(rep.Keyboard) > 0 {
		msg.ReplyMarkup = inlineKeyboard(rep.Keyboard)
	}
	return msg
}

func editConfig(chatID int64, msgID int, rep registration.Reply) tgbotapi.EditMessageTextConfig {
	edit := tgbotapi.NewEditMessageText(chatID, msgID, rep.Text)
	if rep.Markdown {
		edit.ParseMode = tgbotapi.ModeMarkdown
	}
	if len(rep.Keyboard) > 0 {
		kb := inlineKeyboard(rep.Keyboard)
		edit.ReplyMarkup = &kb
	}
	return edit
}

// send: если Telegram не принял разметку, повторяем простым текстом.
func (r *Router) send(c tgbotapi.Chattable) {
	_, err := r.Bot.Send(c)
	if err == nil {
		return
	}
	switch v := c.(type) {
	case tgbotapi.MessageConfig:
		if v.ParseMode != "" {
			v.ParseMode = ""
			_, err = r.Bot.Send(v)
		}
	case tgbotapi.EditMessageTextConfig:
		if v.ParseMode != "" {
			v.ParseMode = ""
			_, err = r.Bot.Send(v)
		}
	}
	if err != nil {
		log.Warnf("telegram: send: %v", err)
	}
}

func inlineKeyboard(kb [][]registration.Button) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb))
	for _, row := range kb {
		btns := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			btns = append(btns, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		}
		rows = append(rows, btns)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
