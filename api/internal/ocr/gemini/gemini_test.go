package gemini

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

// failingServer отвечает 400 на любой запрос и считает вызовы.
func failingServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"bad request","status":"INVALID_ARGUMENT"}}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newTestEngine(srv *httptest.Server) *Engine {
	e := New("test-key", "gemini-2.5-flash", 0.1)
	e.ClientOptions = []option.ClientOption{
		option.WithEndpoint(srv.URL),
		option.WithHTTPClient(srv.Client()),
	}
	return e
}

func TestCompleteFailsAfterSingleCall(t *testing.T) {
	srv, calls := failingServer(t)

	_, err := newTestEngine(srv).Complete(context.Background(), "system", "text")
	require.Error(t, err)
	assert.EqualValues(t, 1, calls.Load())
}

func TestTranscribeFailsAfterSingleCall(t *testing.T) {
	srv, calls := failingServer(t)

	_, err := newTestEngine(srv).Transcribe(context.Background(), []byte("\xff\xd8\xff"), "read")
	require.Error(t, err)
	assert.EqualValues(t, 1, calls.Load())
}

func TestEmptyKey(t *testing.T) {
	_, err := New("", "m", 0).Complete(context.Background(), "s", "u")
	assert.ErrorContains(t, err, "GEMINI_API_KEY")
}
