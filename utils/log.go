package utils

import (
	"strings"
	"unicode"
)

// SanitizeLogMessage 过滤不可打印字符，防止日志注入
func SanitizeLogMessage(msg string) string {
	var sb strings.Builder
	for _, r := range msg {
		switch {
		case r == '\n' || r == '\t':
			sb.WriteRune(r)
		case unicode.IsPrint(r) || unicode.IsGraphic(r):
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// SanitizeLogUsername 截断并清洗用于日志的用户名
func SanitizeLogUsername(username string) string {
	if len(username) > 50 {
		username = username[:50] + "..."
	}
	return SanitizeLogMessage(username)
}
