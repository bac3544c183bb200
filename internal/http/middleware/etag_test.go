package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVersions struct {
	tags        map[string]string
	invalidated []string
	err         error
}

func (f *fakeVersions) Current(_ context.Context, resource string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.tags[resource], nil
}

func (f *fakeVersions) Invalidate(_ context.Context, resource string) error {
	f.invalidated = append(f.invalidated, resource)
	return nil
}

type fakeAnnouncer struct{ resources []string }

func (f *fakeAnnouncer) Announce(resource string) { f.resources = append(f.resources, resource) }

func newEngine(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/api", mw)
	g.GET("/events", func(c *gin.Context) { c.JSON(http.StatusOK, []string{"a"}) })
	g.PUT("/events/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	g.DELETE("/events/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	g.PUT("/auth/profile", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestETag(t *testing.T) {
	versions := &fakeVersions{tags: map[string]string{"events": "v1"}}
	r := newEngine(ETag(versions, "/api"))

	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/events", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `"v1"`, w.Header().Get("ETag"))

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req.Header.Set("If-None-Match", `"v1"`)
	w = serve(r, req)
	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Empty(t, w.Body.String())

	versions.tags["events"] = "v2"
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `"v2"`, w.Header().Get("ETag"))
}

func TestETagLookupFailurePassesThrough(t *testing.T) {
	r := newEngine(ETag(&fakeVersions{err: errors.New("redis down")}, "/api"))

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req.Header.Set("If-None-Match", `"v1"`)
	w := serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("ETag"))
}

func TestChanged(t *testing.T) {
	versions := &fakeVersions{}
	announcer := &fakeAnnouncer{}
	r := newEngine(Changed(versions, announcer, "/api", "auth"))

	serve(r, httptest.NewRequest(http.MethodGet, "/api/events", nil))
	serve(r, httptest.NewRequest(http.MethodPut, "/api/events/1", nil))
	serve(r, httptest.NewRequest(http.MethodDelete, "/api/events/1", nil))
	serve(r, httptest.NewRequest(http.MethodPut, "/api/auth/profile", nil))

	assert.Equal(t, []string{"events"}, versions.invalidated)
	assert.Equal(t, []string{"events"}, announcer.resources)
}

func TestChangedWithoutCollaborators(t *testing.T) {
	r := newEngine(Changed(nil, nil, "/api"))
	w := serve(r, httptest.NewRequest(http.MethodPut, "/api/events/1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
