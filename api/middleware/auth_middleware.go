package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/merkulive/photoshare/api/common"
	"github.com/merkulive/photoshare/database/repo/accounts"
	"github.com/merkulive/photoshare/internal/auth"
	"github.com/merkulive/photoshare/internal/authz"
)

const (
	ContextUserIDKey   = "user_id"
	ContextUsernameKey = "username"
	ContextRoleKey     = "role"
	ContextActorKey    = "actor"
)

// JWTAuth Bearer 访问令牌认证
// 令牌解析后按邮箱加载用户，被封禁的账号即使令牌有效也被拒绝。
func JWTAuth(jwtService *auth.JWTService, accountsRepo *accounts.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			common.RespondErrorAbort(c, http.StatusUnauthorized, "No Authorization request header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			common.RespondErrorAbort(c, http.StatusUnauthorized, "Authorization field format error")
			return
		}

		email, err := jwtService.ParseToken(parts[1], auth.ScopeAccess)
		if err != nil {
			common.RespondErrorAbort(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		user, err := accountsRepo.WithContext(c.Request.Context()).GetUserByEmail(email)
		if err != nil {
			common.RespondErrorAbort(c, http.StatusUnauthorized, "could not validate credentials")
			return
		}
		if !user.IsActive {
			common.RespondErrorAbort(c, http.StatusUnauthorized, "account is inactive")
			return
		}

		c.Set(ContextUserIDKey, user.ID)
		c.Set(ContextUsernameKey, user.Username)
		c.Set(ContextRoleKey, string(user.Role))
		c.Set(ContextActorKey, authz.FromUser(user))

		c.Next()
	}
}

// ActorFromContext 从请求上下文取出认证后的 Actor；未认证时返回匿名
func ActorFromContext(c *gin.Context) authz.Actor {
	val, exists := c.Get(ContextActorKey)
	if !exists {
		return authz.Anonymous()
	}
	actor, ok := val.(authz.Actor)
	if !ok {
		return authz.Anonymous()
	}
	return actor
}
