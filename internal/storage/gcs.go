package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSOptions GCS 存储参数
type GCSOptions struct {
	Bucket          string
	CredentialsFile string
	PublicBaseURL   string
}

// GCSStore Google Cloud Storage 存储
type GCSStore struct {
	client        *storage.Client
	bucket        *storage.BucketHandle
	name          string
	publicBaseURL string
}

// NewGCSStore 创建 GCS 存储并确认存储桶可访问
// 未配置凭据文件时使用默认应用凭据。
func NewGCSStore(ctx context.Context, opts GCSOptions) (*GCSStore, error) {
	bucketName := strings.TrimSpace(opts.Bucket)
	if bucketName == "" {
		return nil, errors.New("gcs bucket is required")
	}
	var clientOpts []option.ClientOption
	if file := strings.TrimSpace(opts.CredentialsFile); file != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(file))
	}
	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create gcs client failed: %w", err)
	}
	bucket := client.Bucket(bucketName)
	if _, err := bucket.Attrs(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("gcs bucket %q not accessible: %w", bucketName, err)
	}
	base := strings.TrimSpace(opts.PublicBaseURL)
	if base == "" {
		base = "https://storage.googleapis.com/" + bucketName
	}
	return &GCSStore{client: client, bucket: bucket, name: bucketName, publicBaseURL: base}, nil
}

// Put 对象在 Close 成功后才提交；写入失败时取消上下文放弃上传
func (s *GCSStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	cleaned, err := cleanKey(key)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	writer := s.bucket.Object(cleaned).NewWriter(ctx)
	writer.ContentType = contentType
	if _, err := writer.Write(data); err != nil {
		cancel()
		_ = writer.Close()
		return fmt.Errorf("upload %s failed: %w", cleaned, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("commit %s failed: %w", cleaned, err)
	}
	return nil
}

// Get 读取对象
func (s *GCSStore) Get(ctx context.Context, key string) ([]byte, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	reader, err := s.bucket.Object(cleaned).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}

// Delete 删除对象，不存在视为成功
func (s *GCSStore) Delete(ctx context.Context, key string) error {
	cleaned, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := s.bucket.Object(cleaned).Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return err
	}
	return nil
}

// Exists 判断对象是否存在
func (s *GCSStore) Exists(ctx context.Context, key string) (bool, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return false, err
	}
	if _, err := s.bucket.Object(cleaned).Attrs(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// URL 对外访问地址
func (s *GCSStore) URL(key string) string {
	return joinURL(s.publicBaseURL, key)
}

// Close 关闭客户端
func (s *GCSStore) Close() error {
	return s.client.Close()
}
