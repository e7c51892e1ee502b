package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/ikkim/maison-backend/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStorageTest(baseURL string) *S3Storage {
	return NewS3Storage(context.Background(), config.S3Config{
		Region:          "eu-west-1",
		Bucket:          "maison-test",
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
		BaseURL:         baseURL,
	})
}

func TestS3Storage_PresignProductImage(t *testing.T) {
	s := setupStorageTest("https://cdn.maison.test/")

	resp, err := s.PresignProductImage(context.Background(), "Dress.JPG", "image/jpeg", 2048)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(resp.Key, "products/"))
	assert.True(t, strings.HasSuffix(resp.Key, ".jpg"))
	assert.Equal(t, "https://cdn.maison.test/"+resp.Key, resp.FileURL)
	assert.Contains(t, resp.UploadURL, "maison-test")
	assert.Contains(t, resp.UploadURL, "X-Amz-Signature")
	assert.False(t, resp.ExpiresAt.IsZero())
}

func TestS3Storage_DirectFileURL(t *testing.T) {
	s := setupStorageTest("")

	resp, err := s.PresignProductImage(context.Background(), "bag.png", "image/png", 10)
	require.NoError(t, err)
	assert.Equal(t, "https://maison-test.s3.eu-west-1.amazonaws.com/"+resp.Key, resp.FileURL)
}

func TestS3Storage_Validation(t *testing.T) {
	s := setupStorageTest("")
	ctx := context.Background()

	_, err := s.PresignProductImage(ctx, "notes.pdf", "application/pdf", 10)
	assert.ErrorIs(t, err, ErrUnsupportedContentType)

	_, err = s.PresignProductImage(ctx, "huge.png", "image/png", MaxImageSize+1)
	assert.ErrorIs(t, err, ErrFileTooLarge)

	_, err = s.PresignProductImage(ctx, "empty.png", "image/png", 0)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}
