package handle

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-bot/api/internal/extract"
)

type stubExtractor struct{ got []byte }

func (s *stubExtractor) Extract(_ context.Context, photo []byte) extract.Result {
	s.got = photo
	return extract.Result{
		Fields: extract.Fields{IDNumber: extract.Some("45678912"), FullName: extract.Some("ANA QUISPE")},
		Source: extract.SourceModel,
	}
}

func TestExtractJSONBody(t *testing.T) {
	ext := &stubExtractor{}
	h := New(ext, "")
	body := `{"image_b64": "` + base64.StdEncoding.EncodeToString([]byte("jpeg")) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/extract", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.Extract(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jpeg", string(ext.got))

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "good", out["quality"])
	fields := out["fields"].(map[string]any)
	assert.Equal(t, "45678912", fields["id_number"])
	assert.Nil(t, fields["birth_date"])
}

func TestExtractRawBody(t *testing.T) {
	ext := &stubExtractor{}
	req := httptest.NewRequest(http.MethodPost, "/v1/extract", strings.NewReader("raw-bytes"))
	req.Header.Set("Content-Type", "image/jpeg")
	rec := httptest.NewRecorder()

	New(ext, "").Extract(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "raw-bytes", string(ext.got))
}

func TestExtractRejects(t *testing.T) {
	h := New(&stubExtractor{}, "secret")

	rec := httptest.NewRecorder()
	h.Extract(rec, httptest.NewRequest(http.MethodPost, "/v1/extract", strings.NewReader("x")))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/v1/extract", strings.NewReader(`{"image_b64": "%%%"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", "secret")
	rec = httptest.NewRecorder()
	h.Extract(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExtractTooLarge(t *testing.T) {
	ext := &stubExtractor{}
	h := New(ext, "")
	h.MaxBody = 8

	req := httptest.NewRequest(http.MethodPost, "/v1/extract", strings.NewReader("0123456789abcdef"))
	req.Header.Set("Content-Type", "image/jpeg")
	rec := httptest.NewRecorder()
	h.Extract(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Nil(t, ext.got)

	body := `{"image_b64": "` + base64.StdEncoding.EncodeToString([]byte("a long enough image")) + `"}`
	req = httptest.NewRequest(http.MethodPost, "/v1/extract", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	h.Extract(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Nil(t, ext.got)
}
