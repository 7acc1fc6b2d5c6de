package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// identifierPattern 合法的对象标识符：相对路径段，不含 ".."
var identifierPattern = regexp.MustCompile(`^[a-zA-Z0-9_\-./]+$`)

// IsValidIdentifier 检查对象标识符是否合法
func IsValidIdentifier(identifier string) bool {
	if identifier == "" || strings.Contains(identifier, "..") {
		return false
	}
	if strings.HasPrefix(identifier, "/") {
		return false
	}
	return identifierPattern.MatchString(identifier)
}

// LocalStorage 本地文件存储实现
type LocalStorage struct {
	absBasePath string
}

// NewLocalStorage 创建本地存储提供者
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for '%s': %w", basePath, err)
	}

	if err := os.MkdirAll(absPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create local storage directory '%s': %w", absPath, err)
	}

	return &LocalStorage{
		absBasePath: absPath + string(os.PathSeparator),
	}, nil
}

// SaveWithContext 保存文件到本地存储
func (s *LocalStorage) SaveWithContext(ctx context.Context, identifier string, file io.Reader) error {
	if !IsValidIdentifier(identifier) {
		return fmt.Errorf("invalid file identifier: %s", identifier)
	}

	dstPath := filepath.Join(s.absBasePath, identifier)

	// 确保最终路径在 basePath 内
	if !strings.HasPrefix(dstPath, s.absBasePath) {
		return fmt.Errorf("invalid file path, potential directory traversal: %s", identifier)
	}

	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory for '%s': %w", dstPath, err)
	}

	dst, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file '%s': %w", dstPath, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		_ = os.Remove(dstPath)
		return fmt.Errorf("failed to copy file content to '%s': %w", dstPath, err)
	}

	return nil
}

// GetWithContext 从本地存储获取文件
func (s *LocalStorage) GetWithContext(ctx context.Context, identifier string) (io.ReadCloser, error) {
	if !IsValidIdentifier(identifier) {
		return nil, fmt.Errorf("invalid file identifier: %s", identifier)
	}

	srcPath := filepath.Join(s.absBasePath, identifier)
	if !strings.HasPrefix(srcPath, s.absBasePath) {
		return nil, fmt.Errorf("invalid file path: %s", identifier)
	}

	f, err := os.Open(srcPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file '%s': %w", srcPath, err)
	}
	return f, nil
}

// DeleteWithContext 从本地存储删除文件
func (s *LocalStorage) DeleteWithContext(ctx context.Context, identifier string) error {
	if !IsValidIdentifier(identifier) {
		return fmt.Errorf("invalid file identifier: %s", identifier)
	}

	dstPath := filepath.Join(s.absBasePath, identifier)
	if !strings.HasPrefix(dstPath, s.absBasePath) {
		return fmt.Errorf("invalid file path: %s", identifier)
	}

	err := os.Remove(dstPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file '%s': %w", dstPath, err)
	}
	return nil
}

// Exists 检查文件是否存在
func (s *LocalStorage) Exists(ctx context.Context, identifier string) (bool, error) {
	if !IsValidIdentifier(identifier) {
		return false, fmt.Errorf("invalid file identifier: %s", identifier)
	}

	_, err := os.Stat(filepath.Join(s.absBasePath, identifier))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Health 检查存储健康状态
func (s *LocalStorage) Health(ctx context.Context) error {
	info, err := os.Stat(s.absBasePath)
	if err != nil {
		return fmt.Errorf("local storage base path not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("local storage base path is not a directory: %s", s.absBasePath)
	}
	return nil
}

// Name 返回存储名称
func (s *LocalStorage) Name() string {
	return "local"
}
