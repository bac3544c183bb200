package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type VersionSource interface {
	Current(ctx context.Context, resource string) (string, error)
	Invalidate(ctx context.Context, resource string) error
}

type Announcer interface {
	Announce(resource string)
}

// resourceOf maps "/api/events/:id" mounted under "/api" to "events".
func resourceOf(c *gin.Context, prefix string) string {
	rest := strings.TrimPrefix(c.FullPath(), prefix)
	rest = strings.TrimPrefix(rest, "/")
	name, _, _ := strings.Cut(rest, "/")
	return name
}

// ETag answers 304 when If-None-Match carries the resource's current version.
// Version lookup failures fall through to a normal response.
func ETag(versions VersionSource, prefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}
		resource := resourceOf(c, prefix)
		tag, err := versions.Current(c.Request.Context(), resource)
		if err != nil {
			log.Warn().Err(err).Str("resource", resource).Msg("[etag] version lookup failed")
			c.Next()
			return
		}

		etag := `"` + tag + `"`
		c.Header("ETag", etag)
		if c.GetHeader("If-None-Match") == etag {
			c.AbortWithStatus(http.StatusNotModified)
			return
		}
		c.Next()
	}
}

// Changed invalidates the resource version and announces the change after
// every successful write. Either collaborator may be nil.
func Changed(versions VersionSource, announcer Announcer, prefix string, skip ...string) gin.HandlerFunc {
	skipped := make(map[string]bool, len(skip))
	for _, s := range skip {
		skipped[s] = true
	}
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method == http.MethodGet || c.Writer.Status() >= 400 {
			return
		}
		resource := resourceOf(c, prefix)
		if resource == "" || skipped[resource] {
			return
		}
		if versions != nil {
			if err := versions.Invalidate(c.Request.Context(), resource); err != nil {
				log.Warn().Err(err).Str("resource", resource).Msg("[etag] invalidate failed")
			}
		}
		if announcer != nil {
			announcer.Announce(resource)
		}
	}
}

// MaxBodyBytes caps request bodies; reads past the limit fail with *http.MaxBytesError.
func MaxBodyBytes(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
