package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"unisphere/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Presigner 为客户端签发 S3 直传地址，图片不经过应用服务器
type Presigner struct {
	cfg    config.StorageConfig
	client *s3.PresignClient
}

// NewPresigner 未配置 Bucket 时返回 nil, nil
func NewPresigner(ctx context.Context, cfg config.StorageConfig) (*Presigner, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		// 自定义端点（MinIO 等）使用路径风格
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &Presigner{cfg: cfg, client: s3.NewPresignClient(client)}, nil
}

// PresignPut 签发 PUT 上传地址
func (p *Presigner) PresignPut(ctx context.Context, key, contentType string) (string, error) {
	req, err := p.client.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.cfg.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(p.TTL()))
	if err != nil {
		return "", fmt.Errorf("presign put %s: %w", key, err)
	}
	return req.URL, nil
}

// PublicURL 上传完成后对外访问的地址
func (p *Presigner) PublicURL(key string) string {
	switch {
	case p.cfg.PublicBaseURL != "":
		return strings.TrimRight(p.cfg.PublicBaseURL, "/") + "/" + key
	case p.cfg.Endpoint != "":
		return strings.TrimRight(p.cfg.Endpoint, "/") + "/" + p.cfg.Bucket + "/" + key
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", p.cfg.Bucket, p.cfg.Region, key)
	}
}

// TTL 上传地址有效期
func (p *Presigner) TTL() time.Duration {
	if p.cfg.PresignTTL <= 0 {
		return 15 * time.Minute
	}
	return p.cfg.PresignTTL
}
