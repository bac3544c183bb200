package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/masjid/internal/config"
	"github.com/Nixie-Tech-LLC/masjid/internal/db/dbtest"
	"github.com/Nixie-Tech-LLC/masjid/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/masjid/internal/storage"
)

type memVersions struct{ tags map[string]int }

func (m *memVersions) Current(_ context.Context, resource string) (string, error) {
	return string(rune('a' + m.tags[resource])), nil
}

func (m *memVersions) Invalidate(_ context.Context, resource string) error {
	m.tags[resource]++
	return nil
}

type recordingAnnouncer struct{ got []string }

func (r *recordingAnnouncer) Announce(resource string) { r.got = append(r.got, resource) }

func newServer(t *testing.T, deps Dependencies) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := dbtest.NewMemoryStore()
	hash, err := middleware.HashPassword("admin123")
	require.NoError(t, err)
	id, err := store.CreateUser("admin@masjid.com", hash, "Admin Pengurus")
	require.NoError(t, err)

	cfg := &config.Server{
		SecretKey:      "secret",
		UploadDir:      t.TempDir(),
		MaxUploadBytes: 1024,
		MaxBodyBytes:   256,
	}
	r := gin.New()
	RegisterRoutes(r, cfg, store, storage.NewLocalStorage(cfg.UploadDir), deps)

	token, err := middleware.GenerateJWT(id, cfg.SecretKey)
	require.NoError(t, err)
	return r, token
}

func request(r *gin.Engine, method, path, token, body string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWriteInvalidatesETag(t *testing.T) {
	versions := &memVersions{tags: map[string]int{}}
	announcer := &recordingAnnouncer{}
	r, token := newServer(t, Dependencies{Versions: versions, Announcer: announcer})

	w := request(r, http.MethodGet, "/api/finance", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)

	w = request(r, http.MethodGet, "/api/finance", "", "", "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, w.Code)

	w = request(r, http.MethodPost, "/api/finance", token, `{"title":"Infaq","amount":1000,"type":"income"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, []string{"finance"}, announcer.got)

	w = request(r, http.MethodGet, "/api/finance", "", "", "If-None-Match", etag)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEqual(t, etag, w.Header().Get("ETag"))

	// profile changes are not announced
	w = request(r, http.MethodPut, "/api/auth/profile", token, `{"name":"Takmir"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"finance"}, announcer.got)
}

func TestRoutesWithoutOptionalDependencies(t *testing.T) {
	r, token := newServer(t, Dependencies{})

	w := request(r, http.MethodGet, "/api/prayer-times", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("ETag"))

	w = request(r, http.MethodPut, "/api/contact-info", token, `{"address":"Jl. Merdeka"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOversizedBody(t *testing.T) {
	r, token := newServer(t, Dependencies{})

	big := `{"history":"` + string(bytes.Repeat([]byte("x"), 512)) + `"}`
	w := request(r, http.MethodPut, "/api/about-info", token, big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestCORSExposesETag(t *testing.T) {
	r, _ := newServer(t, Dependencies{})

	w := request(r, http.MethodGet, "/api/events", "", "", "Origin", "http://board.local")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, strings.ToLower(w.Header().Get("Access-Control-Expose-Headers")), "etag")
}
