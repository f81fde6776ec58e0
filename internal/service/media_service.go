package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ObjectPresigner 对象存储直传签名
type ObjectPresigner interface {
	PresignPut(ctx context.Context, key, contentType string) (string, error)
	PublicURL(key string) string
	TTL() time.Duration
}

// UploadTicket 直传凭证
type UploadTicket struct {
	Key       string `json:"key"`
	UploadURL string `json:"uploadUrl"`
	URL       string `json:"url"`
	ExpiresIn int    `json:"expiresIn"`
}

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// MediaService 图片直传
type MediaService struct {
	presigner ObjectPresigner
}

// NewMediaService presigner 为 nil 时上传接口返回 503
func NewMediaService(presigner ObjectPresigner) *MediaService {
	return &MediaService{presigner: presigner}
}

// PresignUpload 为当前用户签发图片上传地址，key 为 uploads/<userId>/<uuid>.<ext>
func (s *MediaService) PresignUpload(ctx context.Context, userID uint, contentType string) (*UploadTicket, error) {
	if s.presigner == nil {
		return nil, ErrUploadsDisabled
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, ErrUnsupportedUpload
	}

	key := fmt.Sprintf("uploads/%d/%s.%s", userID, uuid.NewString(), ext)
	url, err := s.presigner.PresignPut(ctx, key, contentType)
	if err != nil {
		return nil, err
	}
	return &UploadTicket{
		Key:       key,
		UploadURL: url,
		URL:       s.presigner.PublicURL(key),
		ExpiresIn: int(s.presigner.TTL().Seconds()),
	}, nil
}
