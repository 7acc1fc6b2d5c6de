// Package errs defines the sentinel error kinds shared by every service
// and repository. Handlers translate each kind into an HTTP status in one
// place; the services themselves only wrap these sentinels with context.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound 资源不存在（或对非特权用户隐藏的"不是你的"资源）
var ErrNotFound = errors.New("not found")

// ErrForbidden 资源存在但角色/所有权不允许此操作
var ErrForbidden = errors.New("forbidden")

// ErrConflict 唯一键冲突（邮箱、标签名）
var ErrConflict = errors.New("conflict")

// ErrInvalidInput 输入格式或取值非法
var ErrInvalidInput = errors.New("invalid input")

// ErrUnauthenticated 未认证（令牌缺失/过期/scope 错误、账号被封禁）
var ErrUnauthenticated = errors.New("unauthenticated")

// NotFoundf wraps ErrNotFound with a formatted message.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// Forbiddenf wraps ErrForbidden with a formatted message.
func Forbiddenf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrForbidden)...)
}

// Conflictf wraps ErrConflict with a formatted message.
func Conflictf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrConflict)...)
}

// InvalidInputf wraps ErrInvalidInput with a formatted message.
func InvalidInputf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidInput)...)
}

// Unauthenticatedf wraps ErrUnauthenticated with a formatted message.
func Unauthenticatedf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrUnauthenticated)...)
}

// HTTPStatus 将错误类别映射为 HTTP 状态码
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
