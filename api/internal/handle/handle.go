package handle

import (
	"context"
	"encoding/json"
	"net/http"

	"hotel-bot/api/internal/extract"
)

// Extractor — пайплайн извлечения полей документа.
type Extractor interface {
	Extract(ctx context.Context, photo []byte) extract.Result
}

type Handle struct {
	ext Extractor
	// APIKey — если задан, запрос должен нести заголовок X-API-Key.
	APIKey string
	// MaxBody — предел тела запроса; больше — 413.
	MaxBody int64
}

func New(ext Extractor, apiKey string) *Handle {
	return &Handle{ext: ext, APIKey: apiKey, MaxBody: maxBody}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
