package core

import (
	"github.com/gin-gonic/gin"

	"github.com/merkulive/photoshare/api/common"
	handlerAuth "github.com/merkulive/photoshare/api/handler/auth"
	handlerComments "github.com/merkulive/photoshare/api/handler/comments"
	handlerImages "github.com/merkulive/photoshare/api/handler/images"
	handlerMedia "github.com/merkulive/photoshare/api/handler/media"
	handlerTags "github.com/merkulive/photoshare/api/handler/tags"
	handlerUsers "github.com/merkulive/photoshare/api/handler/users"
	"github.com/merkulive/photoshare/api/middleware"
	"github.com/merkulive/photoshare/config"
	"github.com/merkulive/photoshare/database/models"
	"github.com/merkulive/photoshare/internal/app"
)

// RouterDependencies 路由注册依赖
type RouterDependencies struct {
	Container       *app.Container
	AuthRateLimiter *middleware.IPRateLimiter
	APIRateLimiter  *middleware.IPRateLimiter
}

// RegisterRoutes 注册所有路由
func RegisterRoutes(router *gin.Engine, deps *RouterDependencies) {
	container := deps.Container

	authHandler := handlerAuth.NewHandler(container.LoginService(), container.ProfileService())
	imageHandler := handlerImages.NewHandler(container.ImagesService(), container.AccountsRepo())
	commentHandler := handlerComments.NewHandler(container.CommentsService())
	tagHandler := handlerTags.NewHandler(container.TagsService())
	userHandler := handlerUsers.NewHandler(container.ProfileService())
	mediaHandler := handlerMedia.NewHandler(container.StorageFactory())

	requireAuth := middleware.JWTAuth(container.JWTService(), container.AccountsRepo())

	// 基础路由
	healthHandler := NewHealthHandler(container)
	router.GET("/health", healthHandler.Handle)
	router.GET("/version", func(c *gin.Context) {
		common.RespondSuccess(c, gin.H{
			"version": config.Version,
			"commit":  config.CommitHash,
		})
	})

	// 托管文件访问
	mediaGroup := router.Group("/media")
	mediaGroup.Use(deps.APIRateLimiter.Middleware())
	{
		mediaGroup.GET("/*key", mediaHandler.Serve) // GET /media/{key}
	}

	apiGroup := router.Group("/api")
	apiGroup.Use(func(c *gin.Context) { // 所有API禁止缓存
		c.Header("Cache-Control", "no-store")
		c.Next()
	})
	{
		// 认证路由
		authGroup := apiGroup.Group("/auth")
		authGroup.Use(deps.AuthRateLimiter.Middleware())
		{
			authGroup.POST("/signup", authHandler.Signup)              // POST /api/auth/signup
			authGroup.POST("/login", authHandler.Login)                // POST /api/auth/login
			authGroup.POST("/refresh", authHandler.Refresh)            // POST /api/auth/refresh
			authGroup.POST("/logout", requireAuth, authHandler.Logout) // POST /api/auth/logout
		}

		// 公开读路由
		public := apiGroup.Group("")
		public.Use(deps.APIRateLimiter.Middleware())
		{
			publicImages := public.Group("/images")
			{
				publicImages.GET("/search", imageHandler.Search)                // GET /api/images/search?q=
				publicImages.GET("/search_by_tags", imageHandler.SearchByTags)  // GET /api/images/search_by_tags?tags=
				publicImages.GET("/rank", imageHandler.Rank)                    // GET /api/images/rank?order=
				publicImages.GET("/by-view", imageHandler.GetByViewURL)         // GET /api/images/by-view?url=
				publicImages.GET("/:id", imageHandler.Get)                      // GET /api/images/{id}
				publicImages.GET("/:id/rates", imageHandler.Reactions)          // GET /api/images/{id}/rates
				publicImages.GET("/:id/comments", commentHandler.ListByImage)   // GET /api/images/{id}/comments
			}

			publicTags := public.Group("/tags")
			{
				publicTags.GET("", tagHandler.List)    // GET /api/tags
				publicTags.GET("/:id", tagHandler.Get) // GET /api/tags/{id}
			}

			public.GET("/users/:username", userHandler.GetProfile) // GET /api/users/{username}
		}

		// 需认证路由
		v1 := apiGroup.Group("/v1")
		v1.Use(deps.APIRateLimiter.Middleware())
		v1.Use(requireAuth)
		{
			imagesGroup := v1.Group("/images")
			{
				imagesGroup.GET("", imageHandler.ListOwn)   // GET /api/v1/images
				imagesGroup.POST("", imageHandler.Create)   // POST /api/v1/images
				imagesGroup.POST("/upload", imageHandler.Upload) // POST /api/v1/images/upload
				imagesGroup.PUT("/:id", imageHandler.Update)     // PUT /api/v1/images/{id}
				imagesGroup.DELETE("/:id", imageHandler.Delete)  // DELETE /api/v1/images/{id}

				imagesGroup.POST("/:id/like", imageHandler.AddLike)          // POST /api/v1/images/{id}/like
				imagesGroup.DELETE("/:id/like", imageHandler.RemoveLike)     // DELETE /api/v1/images/{id}/like
				imagesGroup.POST("/:id/dislike", imageHandler.AddDislike)    // POST /api/v1/images/{id}/dislike
				imagesGroup.DELETE("/:id/dislike", imageHandler.RemoveDislike) // DELETE /api/v1/images/{id}/dislike

				imagesGroup.POST("/:id/transform", imageHandler.Transform)  // POST /api/v1/images/{id}/transform
				imagesGroup.POST("/:id/comments", commentHandler.Create)    // POST /api/v1/images/{id}/comments
			}

			commentsGroup := v1.Group("/comments")
			{
				commentsGroup.PUT("/:id", commentHandler.Update)    // PUT /api/v1/comments/{id}
				commentsGroup.DELETE("/:id", commentHandler.Delete) // DELETE /api/v1/comments/{id}
			}

			tagsGroup := v1.Group("/tags")
			{
				tagsGroup.POST("", tagHandler.Create)       // POST /api/v1/tags
				tagsGroup.PUT("/:id", tagHandler.Update)    // PUT /api/v1/tags/{id}
				tagsGroup.DELETE("/:id", tagHandler.Delete) // DELETE /api/v1/tags/{id}
			}

			accountGroup := v1.Group("/account")
			{
				accountGroup.GET("", userHandler.Me)              // GET /api/v1/account
				accountGroup.PATCH("", userHandler.UpdateSettings) // PATCH /api/v1/account
			}

			// 按用户名列出他人图片，版主及以上
			usersGroup := v1.Group("/users")
			usersGroup.Use(middleware.RequireRole(string(models.RoleModerator), string(models.RoleAdmin)))
			{
				usersGroup.GET("/:username/images", imageHandler.ListByUsername) // GET /api/v1/users/{username}/images
			}

			adminGroup := v1.Group("/admin")
			adminGroup.Use(middleware.RequireRole(string(models.RoleAdmin)))
			{
				adminGroup.PATCH("/users/:id/role", userHandler.SetRole) // PATCH /api/v1/admin/users/{id}/role
				adminGroup.POST("/users/:id/ban", userHandler.Ban)       // POST /api/v1/admin/users/{id}/ban
				adminGroup.POST("/users/:id/unban", userHandler.Unban)   // POST /api/v1/admin/users/{id}/unban
			}
		}
	}
}
