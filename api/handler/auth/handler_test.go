package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/merkulive/photoshare/database"
	accountsRepo "github.com/merkulive/photoshare/database/repo/accounts"
	imagesRepo "github.com/merkulive/photoshare/database/repo/images"
	authSvc "github.com/merkulive/photoshare/internal/auth"
	"github.com/merkulive/photoshare/internal/profile"
)

// setupTest 初始化测试环境：真实服务 + 内存数据库
func setupTest(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	accounts := accountsRepo.NewRepository(db)
	jwtService := authSvc.NewJWTServiceWithConfig(authSvc.TokenConfig{
		Secret:     []byte("test-secret-key-at-least-32-characters-long"),
		AccessTTL:  30 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	})
	handler := NewHandler(
		authSvc.NewLoginService(accounts, jwtService),
		profile.NewService(accounts, imagesRepo.NewRepository(db), nil),
	)

	router := gin.New()
	router.POST("/api/auth/signup", handler.Signup)
	router.POST("/api/auth/login", handler.Login)
	router.POST("/api/auth/refresh", handler.Refresh)
	return router
}

func postJSON(router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBuffer(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// TestSignup_InvalidJSON 测试无效 JSON
func TestSignup_InvalidJSON(t *testing.T) {
	router := setupTest(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", bytes.NewBufferString("invalid json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestSignup_MissingFields 测试缺少必填字段
func TestSignup_MissingFields(t *testing.T) {
	router := setupTest(t)

	w := postJSON(router, "/api/auth/signup", map[string]string{"username": "alice"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestSignupLoginRefresh_Flow 注册、登录、刷新的完整流程
func TestSignupLoginRefresh_Flow(t *testing.T) {
	router := setupTest(t)

	w := postJSON(router, "/api/auth/signup", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var signupResp struct {
		Status string `json:"status"`
		Data   struct {
			Role string `json:"role"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &signupResp))
	assert.Equal(t, "success", signupResp.Status)
	assert.Equal(t, "admin", signupResp.Data.Role)

	w = postJSON(router, "/api/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var loginResp struct {
		Data struct {
			AccessToken  string `json:"access_token"`
			RefreshToken string `json:"refresh_token"`
			TokenType    string `json:"token_type"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loginResp))
	assert.Equal(t, "bearer", loginResp.Data.TokenType)
	require.NotEmpty(t, loginResp.Data.RefreshToken)

	w = postJSON(router, "/api/auth/refresh", map[string]string{
		"refresh_token": loginResp.Data.RefreshToken,
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

// TestLogin_WrongPassword 密码错误返回 401
func TestLogin_WrongPassword(t *testing.T) {
	router := setupTest(t)

	w := postJSON(router, "/api/auth/signup", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(router, "/api/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// TestSignup_DuplicateEmail 重复注册返回 409
func TestSignup_DuplicateEmail(t *testing.T) {
	router := setupTest(t)

	body := map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "secret123",
	}
	w := postJSON(router, "/api/auth/signup", body)
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(router, "/api/auth/signup", body)
	assert.Equal(t, http.StatusConflict, w.Code)
}
