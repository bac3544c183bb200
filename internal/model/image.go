package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

type ImageKind int

const (
	ImageNone ImageKind = iota
	ImageInline
	ImageUpload
	ImageAbsolute
)

func (k ImageKind) String() string {
	switch k {
	case ImageInline:
		return "inline"
	case ImageUpload:
		return "upload"
	case ImageAbsolute:
		return "absolute"
	default:
		return "none"
	}
}

// ImageRef is an image reference as stored by the backend: inline data, a path
// under /uploads, or an absolute URL.
type ImageRef struct {
	kind  ImageKind
	value string
}

func InlineImage(data string) ImageRef  { return ImageRef{kind: ImageInline, value: data} }
func AbsoluteImage(url string) ImageRef { return ImageRef{kind: ImageAbsolute, value: url} }

func UploadedImage(path string) ImageRef {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return ImageRef{kind: ImageUpload, value: path}
}

// ParseImageRef classifies a raw stored value.
func ParseImageRef(raw string) ImageRef {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return ImageRef{}
	case strings.HasPrefix(raw, "data:"):
		return InlineImage(raw)
	case strings.HasPrefix(raw, "http://"), strings.HasPrefix(raw, "https://"):
		return AbsoluteImage(raw)
	default:
		return UploadedImage(raw)
	}
}

func (r ImageRef) Kind() ImageKind { return r.kind }
func (r ImageRef) IsZero() bool    { return r.kind == ImageNone }
func (r ImageRef) String() string  { return r.value }

// Size is the number of bytes the reference occupies on the wire.
func (r ImageRef) Size() int { return len(r.value) }

// Resolve turns the reference into a URL a renderer can load. Uploads are
// resolved against host; inline data and absolute URLs are already renderable.
func (r ImageRef) Resolve(host string) string {
	switch r.kind {
	case ImageUpload:
		return strings.TrimSuffix(host, "/") + r.value
	case ImageInline, ImageAbsolute:
		return r.value
	default:
		return ""
	}
}

func (r ImageRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.value)
}

func (r *ImageRef) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = ImageRef{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("image reference: %w", err)
	}
	*r = ParseImageRef(s)
	return nil
}

func (r *ImageRef) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*r = ImageRef{}
	case string:
		*r = ParseImageRef(v)
	case []byte:
		*r = ParseImageRef(string(v))
	default:
		return fmt.Errorf("cannot scan %T into ImageRef", src)
	}
	return nil
}

func (r ImageRef) Value() (driver.Value, error) {
	if r.IsZero() {
		return nil, nil
	}
	return r.value, nil
}
