// Package gateway is the typed client for the masjid backend API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// TokenSource supplies the bearer credential attached to every request.
type TokenSource interface {
	Token() string
}

type Config struct {
	BaseURL       string
	Timeout       time.Duration
	MaxImageBytes int64
	HTTPClient    *http.Client
}

type cachedBody struct {
	etag string
	body []byte
}

// Client performs one request per (resource, verb) pair. It never retries.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	host          string
	maxImageBytes int64

	mu     sync.RWMutex
	tokens TokenSource

	cacheMu sync.Mutex
	cache   map[string]cachedBody
}

func New(cfg Config) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api base url %q", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	maxImage := cfg.MaxImageBytes
	if maxImage == 0 {
		maxImage = 5 << 20
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		httpClient:    httpClient,
		baseURL:       strings.TrimSuffix(cfg.BaseURL, "/"),
		host:          u.Scheme + "://" + u.Host,
		maxImageBytes: maxImage,
		cache:         make(map[string]cachedBody),
	}, nil
}

func (c *Client) SetTokenSource(ts TokenSource) {
	c.mu.Lock()
	c.tokens = ts
	c.mu.Unlock()
}

// Host is the origin uploaded images are served from.
func (c *Client) Host() string { return c.host }

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, header http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrUnreachable, method, path, err)
	}
	return resp, nil
}

// get decodes a read, replaying the remembered body when the server answers 304.
func (c *Client) get(ctx context.Context, path string, target any) error {
	c.cacheMu.Lock()
	cached, hasCached := c.cache[path]
	c.cacheMu.Unlock()

	header := http.Header{}
	if hasCached {
		header.Set("If-None-Match", cached.etag)
	}

	resp, err := c.do(ctx, http.MethodGet, path, nil, "", header)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		if !hasCached {
			return &APIError{Status: resp.StatusCode, Message: "not modified without a cached body"}
		}
		log.Debug().Str("path", path).Msg("[gateway] not modified")
		return json.Unmarshal(cached.body, target)
	}
	if resp.StatusCode >= 400 {
		return errorFromResponse(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read %s: %w", ErrUnreachable, path, err)
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	if etag := resp.Header.Get("ETag"); etag != "" {
		c.cacheMu.Lock()
		c.cache[path] = cachedBody{etag: etag, body: body}
		c.cacheMu.Unlock()
	}
	return nil
}

func (c *Client) sendJSON(ctx context.Context, method, path string, payload, target any) error {
	var body io.Reader
	contentType := ""
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}

	resp, err := c.do(ctx, method, path, body, contentType, nil)
	if err != nil {
		return err
	}
	return decodeResponse(resp, target)
}

func (c *Client) sendMultipart(ctx context.Context, method, path string, fields [][2]string, file *ImageFile, target any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return fmt.Errorf("write field %s: %w", f[0], err)
		}
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, escapeQuotes(file.Name)))
		h.Set("Content-Type", file.contentType())
		part, err := w.CreatePart(h)
		if err != nil {
			return fmt.Errorf("create image part: %w", err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return fmt.Errorf("write image part: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close multipart body: %w", err)
	}

	resp, err := c.do(ctx, method, path, &buf, w.FormDataContentType(), nil)
	if err != nil {
		return err
	}
	return decodeResponse(resp, target)
}

func decodeResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return errorFromResponse(resp)
	}
	if target == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) checkImageSize(what string, size int) error {
	if int64(size) > c.maxImageBytes {
		return payloadTooLarge(what, int64(size), c.maxImageBytes)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string { return quoteEscaper.Replace(s) }
