package app

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/merkulive/photoshare/cache"
	"github.com/merkulive/photoshare/config"
	"github.com/merkulive/photoshare/database"
	"github.com/merkulive/photoshare/database/repo/accounts"
	commentsRepo "github.com/merkulive/photoshare/database/repo/comments"
	imagesRepo "github.com/merkulive/photoshare/database/repo/images"
	tagsRepo "github.com/merkulive/photoshare/database/repo/tags"
	"github.com/merkulive/photoshare/internal/auth"
	"github.com/merkulive/photoshare/internal/comments"
	"github.com/merkulive/photoshare/internal/images"
	"github.com/merkulive/photoshare/internal/profile"
	"github.com/merkulive/photoshare/internal/rating"
	"github.com/merkulive/photoshare/internal/tags"
	"github.com/merkulive/photoshare/storage"
)

// Container 依赖注入容器 - 管理所有服务的生命周期
type Container struct {
	config *config.Config

	db             *gorm.DB
	storageFactory *storage.Factory
	cacheProvider  cache.Provider

	accountsRepo *accounts.Repository
	imagesRepo   *imagesRepo.Repository
	tagsRepo     *tagsRepo.Repository
	commentsRepo *commentsRepo.Repository

	jwtService      *auth.JWTService
	loginService    *auth.LoginService
	ratingEngine    *rating.Engine
	tagsService     *tags.Service
	imagesService   *images.Service
	commentsService *comments.Service
	profileService  *profile.Service
}

// NewContainer 创建新的依赖注入容器
func NewContainer(cfg *config.Config) *Container {
	return &Container{config: cfg}
}

// Init 初始化所有服务
func (c *Container) Init() error {
	log.Println("Initializing DI container...")

	db, err := database.NewDB(c.config)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	c.db = db
	log.Println("Database initialized")

	storageFactory, err := storage.NewFactory(c.config)
	if err != nil {
		return fmt.Errorf("failed to initialize storage factory: %w", err)
	}
	c.storageFactory = storageFactory

	cacheProvider, err := cache.NewProvider(c.config)
	if err != nil {
		return fmt.Errorf("failed to initialize cache provider: %w", err)
	}
	c.cacheProvider = cacheProvider
	log.Printf("Cache provider initialized: %s", cacheProvider.Name())

	c.accountsRepo = accounts.NewRepository(db)
	c.imagesRepo = imagesRepo.NewRepository(db)
	c.tagsRepo = tagsRepo.NewRepository(db)
	c.commentsRepo = commentsRepo.NewRepository(db)
	log.Println("Repositories initialized")

	jwtService, err := auth.NewJWTService(c.config)
	if err != nil {
		return fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	c.jwtService = jwtService
	c.loginService = auth.NewLoginService(c.accountsRepo, jwtService)

	c.ratingEngine = rating.NewEngine(db)
	c.tagsService = tags.NewService(c.tagsRepo)
	c.imagesService = images.NewService(c.imagesRepo, c.tagsService, c.ratingEngine, c.storageFactory, c.cacheProvider, c.config)
	c.commentsService = comments.NewService(c.commentsRepo, c.imagesRepo)
	c.profileService = profile.NewService(c.accountsRepo, c.imagesRepo, c.cacheProvider)

	log.Println("DI container initialized successfully")
	return nil
}

// Close 释放容器持有的资源
func (c *Container) Close() {
	if c.cacheProvider != nil {
		if err := c.cacheProvider.Close(); err != nil {
			log.Printf("Error closing cache provider: %v", err)
		}
	}
	if c.db != nil {
		if sqlDB, err := c.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Printf("Error closing database: %v", err)
			}
		}
	}
}

// Config 获取配置
func (c *Container) Config() *config.Config {
	return c.config
}

// DB 获取数据库连接
func (c *Container) DB() *gorm.DB {
	return c.db
}

// StorageFactory 获取存储工厂
func (c *Container) StorageFactory() *storage.Factory {
	return c.storageFactory
}

// CacheProvider 获取缓存提供者
func (c *Container) CacheProvider() cache.Provider {
	return c.cacheProvider
}

// AccountsRepo 获取账户仓库
func (c *Container) AccountsRepo() *accounts.Repository {
	return c.accountsRepo
}

// JWTService 获取 JWT 服务
func (c *Container) JWTService() *auth.JWTService {
	return c.jwtService
}

// LoginService 获取登录服务
func (c *Container) LoginService() *auth.LoginService {
	return c.loginService
}

// RatingEngine 获取评分引擎
func (c *Container) RatingEngine() *rating.Engine {
	return c.ratingEngine
}

// TagsService 获取标签服务
func (c *Container) TagsService() *tags.Service {
	return c.tagsService
}

// ImagesService 获取图片服务
func (c *Container) ImagesService() *images.Service {
	return c.imagesService
}

// CommentsService 获取评论服务
func (c *Container) CommentsService() *comments.Service {
	return c.commentsService
}

// ProfileService 获取用户账号服务
func (c *Container) ProfileService() *profile.Service {
	return c.profileService
}
