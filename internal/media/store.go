// Package media stores uploaded images in S3-compatible object storage.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Upload folders. The folder scopes where the clinic UI shows the image.
const (
	FolderPresupuestos = "presupuestos"
	FolderTratamientos = "tratamientos"
	FolderGeneral      = "general"
)

// MaxUploadBytes caps a single image upload.
const MaxUploadBytes = 5 << 20

var (
	ErrInvalidFolder      = errors.New("media: folder must be presupuestos, tratamientos or general")
	ErrUnsupportedContent = errors.New("media: only JPEG, PNG and WEBP images are accepted")
	ErrTooLarge           = errors.New("media: file exceeds the 5MB limit")
)

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// ValidFolder reports whether f is an accepted upload folder.
func ValidFolder(f string) bool {
	switch f {
	case FolderPresupuestos, FolderTratamientos, FolderGeneral:
		return true
	}
	return false
}

// S3API is the subset of the S3 client used by the store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// StoredObject points at an uploaded image.
type StoredObject struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// Store uploads images to a bucket and hands back public URLs.
type Store struct {
	client        S3API
	bucket        string
	publicBaseURL string
}

func NewStore(client S3API, bucket, publicBaseURL string) *Store {
	return &Store{client: client, bucket: bucket, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}
}

// Put stores the image under folder/<uuid><ext>, keyed by content type.
func (s *Store) Put(ctx context.Context, folder, contentType string, data []byte) (*StoredObject, error) {
	if !ValidFolder(folder) {
		return nil, ErrInvalidFolder
	}
	ext, ok := extensions[contentType]
	if !ok {
		return nil, ErrUnsupportedContent
	}
	if len(data) > MaxUploadBytes {
		return nil, ErrTooLarge
	}

	key := path.Join(folder, uuid.New().String()+ext)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("media: put object: %w", err)
	}

	return &StoredObject{Path: key, URL: s.publicBaseURL + "/" + key}, nil
}

// Delete removes a previously uploaded image.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("media: delete object: %w", err)
	}
	return nil
}
