package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePresigner struct {
	keys []string
}

func (p *fakePresigner) PresignPut(_ context.Context, key, contentType string) (string, error) {
	p.keys = append(p.keys, key)
	return "https://s3.example.com/" + key + "?sig=1&ct=" + contentType, nil
}

func (p *fakePresigner) PublicURL(key string) string { return "https://cdn.example.com/" + key }

func (p *fakePresigner) TTL() time.Duration { return 15 * time.Minute }

func TestPresignUpload(t *testing.T) {
	ctx := context.Background()
	p := &fakePresigner{}
	svc := NewMediaService(p)

	ticket, err := svc.PresignUpload(ctx, 7, "Image/PNG")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^uploads/7/[0-9a-f-]{36}\.png$`), ticket.Key)
	assert.Equal(t, "https://cdn.example.com/"+ticket.Key, ticket.URL)
	assert.Contains(t, ticket.UploadURL, ticket.Key)
	assert.Equal(t, 900, ticket.ExpiresIn)

	_, err = svc.PresignUpload(ctx, 7, "application/pdf")
	assert.True(t, errors.Is(err, ErrUnsupportedUpload))
	assert.Len(t, p.keys, 1)
}

func TestPresignUploadDisabled(t *testing.T) {
	_, err := NewMediaService(nil).PresignUpload(context.Background(), 1, "image/jpeg")
	require.True(t, errors.Is(err, ErrUploadsDisabled))
	assert.Equal(t, 503, err.(*AppError).HTTPStatus())
}
