package handle

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"hotel-bot/api/internal/extract"
)

// base64 раздувает 20 MiB фото примерно до 27 MiB
const maxBody = 28 << 20

type ExtractRequest struct {
	ImageB64 string `json:"image_b64"`
}

type ExtractResponse struct {
	extract.Result
	Quality extract.Quality `json:"quality"`
}

// Extract — POST /v1/extract: JSON {"image_b64": ...} или сырое изображение в теле.
func (h *Handle) Extract(w http.ResponseWriter, r *http.Request) {
	if h.APIKey != "" && subtle.ConstantTimeCompare([]byte(r.Header.Get("X-API-Key")), []byte(h.APIKey)) != 1 {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	img, err := readImage(http.MaxBytesReader(w, r.Body, h.MaxBody), r.Header.Get("Content-Type"))
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		http.Error(w, "image too large", http.StatusRequestEntityTooLarge)
		return
	}
	if err != nil || len(img) == 0 {
		http.Error(w, "bad image", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 180*time.Second)
	defer cancel()

	res := h.ext.Extract(ctx, img)
	writeJSON(w, http.StatusOK, ExtractResponse{Result: res, Quality: res.Quality()})
}

func readImage(body io.Reader, contentType string) ([]byte, error) {
	if !strings.HasPrefix(contentType, "application/json") {
		return io.ReadAll(body)
	}
	var req ExtractRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return nil, err
	}
	return base64.StdEncoding.DecodeString(strings.TrimSpace(req.ImageB64))
}
