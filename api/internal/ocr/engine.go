package ocr

import (
	"context"
	"fmt"
	"strings"
)

// Engine — внешний LLM-сервис: распознавание текста с фото документа и
// структурирование текста в JSON.
type Engine interface {
	Name() string
	GetModel() string
	// Transcribe возвращает дословный текст документа на фото.
	Transcribe(ctx context.Context, image []byte, prompt string) (string, error)
	// Complete возвращает JSON-ответ на текстовый запрос.
	Complete(ctx context.Context, system, user string) (string, error)
}

// Select выбирает движок по имени из LLM_ENGINE; "gpt" — синоним openai.
func Select(name string, engines ...Engine) (Engine, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "gpt" {
		name = "openai"
	}
	for _, e := range engines {
		if e != nil && e.Name() == name {
			return e, nil
		}
	}
	return nil, fmt.Errorf("ocr: engine %q is not configured", name)
}
