package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storerating-backend/internal/app/model"
	apperrors "github.com/ikkim/storerating-backend/internal/errors"
	"github.com/ikkim/storerating-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testJWTSecret = "test-jwt-secret-for-middleware"

type fakeUsers map[uint]*model.User

func (f fakeUsers) FindByID(id uint) (*model.User, error) {
	if id == 500 {
		return nil, errors.New("connection reset")
	}
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func setupMiddlewareTest() (*gin.Engine, *AuthMiddleware) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	users := fakeUsers{
		1: {ID: 1, Role: model.RoleNormalUser},
		2: {ID: 2, Role: model.RoleSystemAdmin},
		3: {ID: 3, Role: model.RoleStoreOwner},
	}
	return router, NewAuthMiddleware(testJWTSecret, users)
}

func generateTestToken(t *testing.T, userID uint, role model.UserRole) string {
	token, _, err := util.GenerateToken(userID, string(role), testJWTSecret)
	require.NoError(t, err)
	return token
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apperrors.ErrorResponse {
	var body apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func callerHandler(c *gin.Context) {
	caller, ok := GetCaller(c)
	if !ok {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": caller.ID, "role": caller.Role})
}

func TestAuthMiddleware_Authenticate_Success(t *testing.T) {
	router, auth := setupMiddlewareTest()
	router.GET("/test", auth.Authenticate(), callerHandler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+generateTestToken(t, 1, model.RoleNormalUser))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(1), body["id"])
	assert.Equal(t, "NORMAL_USER", body["role"])
}

func TestAuthMiddleware_Authenticate_UsesStoredRole(t *testing.T) {
	router, auth := setupMiddlewareTest()
	router.GET("/test", auth.Authenticate(), callerHandler)

	// the token claims SYSTEM_ADMIN but user 1 is a NORMAL_USER
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+generateTestToken(t, 1, model.RoleSystemAdmin))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"NORMAL_USER"`)
}

func TestAuthMiddleware_Authenticate_Failures(t *testing.T) {
	expired, _, err := util.GenerateTokenAt(1, "NORMAL_USER", testJWTSecret, time.Now().Add(-61*time.Minute))
	require.NoError(t, err)
	otherSecret, _, err := util.GenerateToken(1, "NORMAL_USER", "another-secret")
	require.NoError(t, err)
	unknownUser, _, err := util.GenerateToken(42, "NORMAL_USER", testJWTSecret)
	require.NoError(t, err)
	dbFailure, _, err := util.GenerateToken(500, "NORMAL_USER", testJWTSecret)
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   string
	}{
		{name: "Missing header", header: "", wantStatus: http.StatusUnauthorized, wantCode: apperrors.AuthUnauthorized},
		{name: "Wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized, wantCode: apperrors.AuthTokenInvalid},
		{name: "Empty bearer", header: "Bearer ", wantStatus: http.StatusUnauthorized, wantCode: apperrors.AuthTokenInvalid},
		{name: "Garbage token", header: "Bearer not.a.jwt", wantStatus: http.StatusUnauthorized, wantCode: apperrors.AuthTokenInvalid},
		{name: "Token older than one hour", header: "Bearer " + expired, wantStatus: http.StatusUnauthorized, wantCode: apperrors.AuthTokenExpired},
		{name: "Wrong signing secret", header: "Bearer " + otherSecret, wantStatus: http.StatusUnauthorized, wantCode: apperrors.AuthTokenInvalid},
		{name: "User no longer exists", header: "Bearer " + unknownUser, wantStatus: http.StatusUnauthorized, wantCode: apperrors.AuthUserNotFound},
		{name: "Lookup failure", header: "Bearer " + dbFailure, wantStatus: http.StatusInternalServerError, wantCode: apperrors.InternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, auth := setupMiddlewareTest()
			reached := false
			router.GET("/test", auth.Authenticate(), func(c *gin.Context) {
				reached = true
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.False(t, reached)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, w).Error)
		})
	}
}

func TestAuthMiddleware_Authenticate_QueryToken(t *testing.T) {
	token := generateTestToken(t, 3, model.RoleStoreOwner)

	tests := []struct {
		name       string
		websocket  bool
		wantStatus int
	}{
		{name: "Websocket handshake", websocket: true, wantStatus: http.StatusOK},
		{name: "Plain request", websocket: false, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, auth := setupMiddlewareTest()
			router.GET("/feed", auth.Authenticate(), callerHandler)

			req := httptest.NewRequest(http.MethodGet, "/feed?token="+token, nil)
			if tt.websocket {
				req.Header.Set("Connection", "Upgrade")
				req.Header.Set("Upgrade", "websocket")
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestAuthMiddleware_Authenticate_HeaderWinsOverQuery(t *testing.T) {
	router, auth := setupMiddlewareTest()
	router.GET("/feed", auth.Authenticate(), callerHandler)

	req := httptest.NewRequest(http.MethodGet, "/feed?token="+generateTestToken(t, 3, model.RoleStoreOwner), nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apperrors.AuthTokenInvalid, decodeError(t, w).Error)
}

func TestAuthMiddleware_RequireRole(t *testing.T) {
	tests := []struct {
		name       string
		userID     uint
		allowed    []model.UserRole
		wantStatus int
	}{
		{name: "Admin allowed", userID: 2, allowed: []model.UserRole{model.RoleSystemAdmin}, wantStatus: http.StatusOK},
		{name: "Normal user on admin route", userID: 1, allowed: []model.UserRole{model.RoleSystemAdmin}, wantStatus: http.StatusForbidden},
		{name: "Owner on owner route", userID: 3, allowed: []model.UserRole{model.RoleStoreOwner}, wantStatus: http.StatusOK},
		{name: "Admin in multi-role allowlist", userID: 2, allowed: []model.UserRole{model.RoleNormalUser, model.RoleSystemAdmin}, wantStatus: http.StatusOK},
		{name: "Owner outside multi-role allowlist", userID: 3, allowed: []model.UserRole{model.RoleNormalUser, model.RoleSystemAdmin}, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, auth := setupMiddlewareTest()
			router.GET("/test", auth.Authenticate(), auth.RequireRole(tt.allowed...), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set("Authorization", "Bearer "+generateTestToken(t, tt.userID, model.RoleNormalUser))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusForbidden {
				assert.Equal(t, apperrors.AuthzForbidden, decodeError(t, w).Error)
			}
		})
	}
}

func TestAuthMiddleware_RequireRole_WithoutAuthenticate(t *testing.T) {
	router, auth := setupMiddlewareTest()
	router.GET("/test", auth.RequireRole(model.RoleSystemAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, apperrors.AuthzRoleNotFound, decodeError(t, w).Error)
}
