// Package storage persists uploaded event images.
package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/masjid/internal/model"
)

// UploadsPrefix is the URL path local uploads are served under.
const UploadsPrefix = "/uploads/"

var ErrUnsupportedType = errors.New("only .jpg, .jpeg and .png images are allowed")

type Storage interface {
	SaveImage(fileHeader *multipart.FileHeader) (model.ImageRef, error)
	// Delete removes an image this storage saved earlier; other references are ignored.
	Delete(ref model.ImageRef) error
}

type LocalStorage struct {
	uploadDir string
}

type SpacesStorage struct {
	client *s3.S3
	bucket string
	cdnURL string
}

func NewLocalStorage(uploadDir string) *LocalStorage {
	return &LocalStorage{uploadDir: uploadDir}
}

func NewSpacesStorage(endpoint, region, bucket, cdnURL, accessKey, secretKey string) (*SpacesStorage, error) {
	config := &aws.Config{
		Credentials:      credentials.NewStaticCredentials(accessKey, secretKey, ""),
		Endpoint:         aws.String(endpoint),
		Region:           aws.String(region),
		S3ForcePathStyle: aws.Bool(false),
	}

	sess, err := session.NewSession(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &SpacesStorage{
		client: s3.New(sess),
		bucket: bucket,
		cdnURL: strings.TrimSuffix(cdnURL, "/"),
	}, nil
}

var allowedExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// ValidateImage accepts jpg, jpeg and png by extension.
func ValidateImage(filename string) error {
	if _, ok := allowedExt[strings.ToLower(filepath.Ext(filename))]; !ok {
		return ErrUnsupportedType
	}
	return nil
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// normalizeFilename keeps a readable base name and appends a random suffix.
func normalizeFilename(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	base = unsafeChars.ReplaceAllString(strings.ReplaceAll(base, " ", "_"), "")
	if base == "" {
		base = "image"
	}
	suffix, err := gonanoid.Generate("abcdefghijklmnopqrstuvwxyz0123456789", 10)
	if err != nil {
		suffix = "0000000000"
	}
	return fmt.Sprintf("%s-%s%s", base, suffix, ext)
}

func (ls *LocalStorage) SaveImage(fileHeader *multipart.FileHeader) (model.ImageRef, error) {
	if err := ValidateImage(fileHeader.Filename); err != nil {
		return model.ImageRef{}, err
	}
	name := normalizeFilename(fileHeader.Filename)
	log.Debug().Str("original", fileHeader.Filename).Str("normalized", name).Msg("image upload normalized")

	if err := os.MkdirAll(ls.uploadDir, 0o755); err != nil {
		return model.ImageRef{}, fmt.Errorf("failed to create upload directory: %w", err)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return model.ImageRef{}, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(ls.uploadDir, name))
	if err != nil {
		return model.ImageRef{}, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return model.ImageRef{}, fmt.Errorf("failed to save file: %w", err)
	}
	return model.UploadedImage(UploadsPrefix + name), nil
}

func (ls *LocalStorage) Delete(ref model.ImageRef) error {
	if ref.Kind() != model.ImageUpload || !strings.HasPrefix(ref.String(), UploadsPrefix) {
		return nil
	}
	path := filepath.Join(ls.uploadDir, filepath.Base(ref.String()))
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

func (ss *SpacesStorage) SaveImage(fileHeader *multipart.FileHeader) (model.ImageRef, error) {
	if err := ValidateImage(fileHeader.Filename); err != nil {
		return model.ImageRef{}, err
	}
	name := normalizeFilename(fileHeader.Filename)

	src, err := fileHeader.Open()
	if err != nil {
		return model.ImageRef{}, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	key := "uploads/" + name
	_, err = ss.client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(ss.bucket),
		Key:         aws.String(key),
		Body:        src,
		ContentType: aws.String(allowedExt[filepath.Ext(name)]),
		ACL:         aws.String("public-read"),
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to upload image to Spaces")
		return model.ImageRef{}, fmt.Errorf("failed to upload to Spaces: %w", err)
	}
	return model.AbsoluteImage(ss.cdnURL + "/" + key), nil
}

func (ss *SpacesStorage) Delete(ref model.ImageRef) error {
	prefix := ss.cdnURL + "/"
	if ref.Kind() != model.ImageAbsolute || !strings.HasPrefix(ref.String(), prefix) {
		return nil
	}
	key := strings.TrimPrefix(ref.String(), prefix)
	_, err := ss.client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(ss.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s from Spaces: %w", key, err)
	}
	return nil
}
