package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/minio/minio-go/v7"
)

// ImageStorage range les images produits et les visuels clients dans un
// bucket MinIO.
type ImageStorage struct {
	client   *minio.Client
	bucket   string
	endpoint string
	secure   bool
}

func NewImageStorage(client *minio.Client, bucket, endpoint string, secure bool) *ImageStorage {
	return &ImageStorage{client: client, bucket: bucket, endpoint: endpoint, secure: secure}
}

// PutImage enregistre l'image sous <prefix>/<unixnano><ext> et retourne
// son URL publique.
func (s *ImageStorage) PutImage(ctx context.Context, prefix, contentType string, data []byte) (string, error) {
	ext := mimetype.Lookup(contentType)
	suffix := ""
	if ext != nil {
		suffix = ext.Extension()
	}
	object := fmt.Sprintf("%s/%d%s", strings.Trim(prefix, "/"), time.Now().UnixNano(), suffix)

	_, err := s.client.PutObject(ctx, s.bucket, object, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("upload MinIO: %w", err)
	}

	log.Printf("✅ Image envoyée sur MinIO: %s", object)
	return s.publicURL(object), nil
}

// SignedURL produit une URL temporaire pour un objet du bucket, à partir
// de son nom ou de son URL publique.
func (s *ImageStorage) SignedURL(ctx context.Context, objectOrURL string, ttl time.Duration) (string, error) {
	object := strings.TrimPrefix(objectOrURL, s.publicURL(""))
	u, err := s.client.PresignedGetObject(ctx, s.bucket, object, ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("URL signée MinIO: %w", err)
	}
	return u.String(), nil
}

func (s *ImageStorage) publicURL(object string) string {
	scheme := "http"
	if s.secure {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.endpoint, s.bucket, object)
}
