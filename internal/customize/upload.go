package customize

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrNotAnImage    = errors.New("le fichier n'est pas une image")
	ErrImageTooLarge = errors.New("image trop volumineuse")
	ErrEmptyImage    = errors.New("fichier vide")
)

// ImageStore range une image et retourne l'URL à laquelle la servir.
type ImageStore interface {
	PutImage(ctx context.Context, prefix, contentType string, data []byte) (string, error)
}

// ReadImage lit au plus maxBytes octets et vérifie par signature qu'il
// s'agit bien d'une image. Retourne le contenu, son type MIME et
// l'extension associée.
func ReadImage(r io.Reader, maxBytes int64) ([]byte, string, string, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, "", "", fmt.Errorf("lecture image: %w", err)
	}
	if len(data) == 0 {
		return nil, "", "", ErrEmptyImage
	}
	if int64(len(data)) > maxBytes {
		return nil, "", "", ErrImageTooLarge
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, "", "", ErrNotAnImage
	}
	return data, mt.String(), mt.Extension(), nil
}

func DataURI(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// StoreImage passe par le stockage objet s'il existe, sinon garde l'image
// inline sous forme de data URI.
func StoreImage(ctx context.Context, store ImageStore, prefix, contentType string, data []byte) (string, error) {
	if store == nil {
		return DataURI(contentType, data), nil
	}
	return store.PutImage(ctx, prefix, contentType, data)
}
