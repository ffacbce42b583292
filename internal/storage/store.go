package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrNotFound 产物不存在
var ErrNotFound = errors.New("artifact not found")

// ErrInvalidKey 存储键不合法
var ErrInvalidKey = errors.New("invalid artifact key")

// Store 收据产物存储
// 键为 "/" 分隔的相对路径，例如 receipts_qr/PR-11F-20250301-0042.svg。Put 对读者原子可见。
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	URL(key string) string
}

// Key 拼接命名空间与文件名
func Key(namespace, filename string) string {
	return path.Join(namespace, filename)
}

// cleanKey 规范化存储键，拒绝绝对路径与越级访问
func cleanKey(key string) (string, error) {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" || strings.HasPrefix(trimmed, "/") || strings.Contains(trimmed, `\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	cleaned := path.Clean(trimmed)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return cleaned, nil
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
