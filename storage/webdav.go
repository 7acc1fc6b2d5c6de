package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/studio-b12/gowebdav"
)

// WebDAVConfig WebDAV 配置结构
type WebDAVConfig struct {
	URL      string
	Username string
	Password string
	RootPath string
}

// WebDAVStorage WebDAV 存储实现
type WebDAVStorage struct {
	client   *gowebdav.Client
	rootPath string
}

// NewWebDAVStorage 创建 WebDAV 存储提供者并验证连接
func NewWebDAVStorage(cfg WebDAVConfig) (*WebDAVStorage, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("webdav URL is required")
	}

	rootPath := strings.Trim(cfg.RootPath, "/")
	if rootPath != "" {
		rootPath = "/" + rootPath
	}

	s := &WebDAVStorage{
		client:   gowebdav.NewClient(cfg.URL, cfg.Username, cfg.Password),
		rootPath: rootPath,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Health(ctx); err != nil {
		return nil, fmt.Errorf("webdav connection test failed: %w", err)
	}
	return s, nil
}

// callWebDAV 在 goroutine 中执行阻塞的客户端调用，使其可被 ctx 取消。
// gowebdav 客户端本身不接受 context。
func callWebDAV[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type result struct {
		val T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn()
		done <- result{val: v, err: err}
	}()

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case res := <-done:
		return res.val, res.err
	}
}

// fullPath 生成完整的 WebDAV 路径
func (s *WebDAVStorage) fullPath(identifier string) string {
	identifier = strings.TrimLeft(identifier, "/")
	if s.rootPath != "" {
		return s.rootPath + "/" + identifier
	}
	return "/" + identifier
}

// ensureParentDir 逐级创建父目录，目录已存在不算错误
func (s *WebDAVStorage) ensureParentDir(ctx context.Context, fullPath string) error {
	parentDir := path.Dir(fullPath)
	if parentDir == "/" || parentDir == "." {
		return nil
	}

	currentPath := ""
	for _, part := range strings.Split(strings.Trim(parentDir, "/"), "/") {
		if part == "" {
			continue
		}
		currentPath = currentPath + "/" + part

		dir := currentPath
		_, err := callWebDAV(ctx, func() (struct{}, error) {
			return struct{}{}, s.client.Mkdir(dir, os.FileMode(0755))
		})
		if err != nil && !isCollectionExistsError(err) {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// isCollectionExistsError 判断是否为目录已存在的错误
// 不同 WebDAV 服务器对重复 MKCOL 的报错文本不一致。
func isCollectionExistsError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	for _, s := range []string{"already exists", "Conflict", "conflict", "409", "Method Not Allowed", "405"} {
		if strings.Contains(errStr, s) {
			return true
		}
	}
	return false
}

// SaveWithContext 保存文件到 WebDAV
func (s *WebDAVStorage) SaveWithContext(ctx context.Context, identifier string, file io.Reader) error {
	if !IsValidIdentifier(identifier) {
		return fmt.Errorf("invalid file identifier: %s", identifier)
	}

	fullPath := s.fullPath(identifier)
	if err := s.ensureParentDir(ctx, fullPath); err != nil {
		return fmt.Errorf("failed to ensure parent directory for %s: %w", identifier, err)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("failed to read file content: %w", err)
	}

	_, err = callWebDAV(ctx, func() (struct{}, error) {
		return struct{}{}, s.client.Write(fullPath, data, 0644)
	})
	if err != nil {
		return fmt.Errorf("failed to write file %s: %w", identifier, err)
	}
	return nil
}

// GetWithContext 从 WebDAV 获取文件
func (s *WebDAVStorage) GetWithContext(ctx context.Context, identifier string) (io.ReadCloser, error) {
	if !IsValidIdentifier(identifier) {
		return nil, fmt.Errorf("invalid file identifier: %s", identifier)
	}

	fullPath := s.fullPath(identifier)
	data, err := callWebDAV(ctx, func() ([]byte, error) {
		return s.client.Read(fullPath)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", identifier, err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// DeleteWithContext 从 WebDAV 删除文件
func (s *WebDAVStorage) DeleteWithContext(ctx context.Context, identifier string) error {
	if !IsValidIdentifier(identifier) {
		return fmt.Errorf("invalid file identifier: %s", identifier)
	}

	fullPath := s.fullPath(identifier)
	_, err := callWebDAV(ctx, func() (struct{}, error) {
		return struct{}{}, s.client.Remove(fullPath)
	})
	return err
}

// Exists 检查文件是否存在
func (s *WebDAVStorage) Exists(ctx context.Context, identifier string) (bool, error) {
	if !IsValidIdentifier(identifier) {
		return false, fmt.Errorf("invalid file identifier: %s", identifier)
	}

	fullPath := s.fullPath(identifier)
	return callWebDAV(ctx, func() (bool, error) {
		_, err := s.client.Stat(fullPath)
		if err == nil {
			return true, nil
		}
		if gowebdav.IsErrNotFound(err) {
			return false, nil
		}
		return false, err
	})
}

// Health 检查存储健康状态
func (s *WebDAVStorage) Health(ctx context.Context) error {
	_, err := callWebDAV(ctx, func() ([]os.FileInfo, error) {
		return s.client.ReadDir(s.rootPath)
	})
	return err
}

// Name 返回存储名称
func (s *WebDAVStorage) Name() string {
	return "webdav"
}
