package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// фото документа не бывает больше ~20 МБ (лимит Bot API на скачивание)
const maxDownload = 20 << 20

func download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download: status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxDownload))
}

func httpClient() *http.Client {
	return &http.Client{Timeout: 60 * time.Second}
}
