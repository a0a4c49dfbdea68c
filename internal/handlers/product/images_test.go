package product

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

type fakeStorage struct {
	puts        int
	contentType string
	putErr      error
	signErr     error
}

func (f *fakeStorage) PutImage(_ context.Context, prefix, contentType string, data []byte) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	f.puts++
	f.contentType = contentType
	return "http://minio.local/atelier/" + prefix + "/img.png", nil
}

func (f *fakeStorage) SignedURL(_ context.Context, url string, _ time.Duration) (string, error) {
	if f.signErr != nil {
		return "", f.signErr
	}
	return url + "?X-Amz-Signature=abc", nil
}

func uploadRequest(t *testing.T, h *Handler, field string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "upload.bin")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	r := gin.New()
	r.POST("/images", h.UploadImage)

	req := httptest.NewRequest(http.MethodPost, "/images", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUploadImageStoresAndSigns(t *testing.T) {
	store := &fakeStorage{}
	h := NewHandler(nil, store, 1<<20)

	w := uploadRequest(t, h, "file", pngHeader)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "http://minio.local/atelier/products/img.png", resp["image_url"])
	assert.Equal(t, "http://minio.local/atelier/products/img.png?X-Amz-Signature=abc", resp["signed_url"])
	assert.Equal(t, 1, store.puts)
	assert.Equal(t, "image/png", store.contentType)
}

func TestUploadImageWithoutSignedURL(t *testing.T) {
	h := NewHandler(nil, &fakeStorage{signErr: errors.New("presign")}, 1<<20)

	w := uploadRequest(t, h, "file", pngHeader)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "signed_url")
}

func TestUploadImageRejections(t *testing.T) {
	store := &fakeStorage{}
	h := NewHandler(nil, store, 1<<10)

	assert.Equal(t, http.StatusUnsupportedMediaType, uploadRequest(t, h, "file", []byte("juste du texte")).Code)
	assert.Equal(t, http.StatusRequestEntityTooLarge, uploadRequest(t, h, "file", append(pngHeader, make([]byte, 1<<10)...)).Code)
	assert.Equal(t, http.StatusBadRequest, uploadRequest(t, h, "image", pngHeader).Code)
	assert.Zero(t, store.puts)

	failing := NewHandler(nil, &fakeStorage{putErr: errors.New("minio down")}, 1<<20)
	assert.Equal(t, http.StatusInternalServerError, uploadRequest(t, failing, "file", pngHeader).Code)

	unconfigured := NewHandler(nil, nil, 1<<20)
	assert.Equal(t, http.StatusServiceUnavailable, uploadRequest(t, unconfigured, "file", pngHeader).Code)
}
