package controller

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storerating-backend/internal/app/model"
	"github.com/ikkim/storerating-backend/internal/app/repository"
	"github.com/ikkim/storerating-backend/internal/app/service"
	"github.com/ikkim/storerating-backend/internal/db"
	"github.com/ikkim/storerating-backend/internal/middleware"
	ws "github.com/ikkim/storerating-backend/internal/websocket"
	"github.com/ikkim/storerating-backend/pkg/util"
	"github.com/stretchr/testify/require"
)

const (
	testSecret   = "test-secret"
	testPassword = "Password#123"
)

type controllerFixture struct {
	router     *gin.Engine
	hub        *ws.Hub
	userRepo   repository.UserRepository
	storeRepo  repository.StoreRepository
	ratingRepo repository.RatingRepository
}

// setupControllerTest mounts every controller on the same paths the server
// uses, backed by an in-memory database.
func setupControllerTest(t *testing.T) *controllerFixture {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	userRepo := repository.NewUserRepository(testDB)
	storeRepo := repository.NewStoreRepository(testDB)
	ratingRepo := repository.NewRatingRepository(testDB)

	hub := ws.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	authService := service.NewAuthService(userRepo, nil, testSecret)
	adminService := service.NewAdminService(userRepo, storeRepo, ratingRepo)

	authCtrl := NewAuthController(authService)
	adminCtrl := NewAdminController(adminService, service.NewReportService(adminService))
	storeCtrl := NewStoreController(service.NewStoreService(storeRepo, ratingRepo))
	ratingCtrl := NewRatingController(service.NewRatingService(ratingRepo, storeRepo, hub))
	ownerCtrl := NewOwnerController(service.NewOwnerService(storeRepo, ratingRepo), hub, []string{"http://localhost:5173"})

	auth := middleware.NewAuthMiddleware(testSecret, userRepo)

	router := gin.New()
	router.Use(middleware.LoggingMiddleware())
	api := router.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", authCtrl.Register)
	authGroup.POST("/login", authCtrl.Login)
	authGroup.PUT("/update-password", auth.Authenticate(), authCtrl.UpdatePassword)
	authGroup.GET("/me", auth.Authenticate(), authCtrl.GetMe)

	admin := api.Group("/admin", auth.Authenticate(), auth.RequireRole(model.RoleSystemAdmin))
	admin.GET("/dashboard-stats", adminCtrl.DashboardStats)
	admin.POST("/users", adminCtrl.CreateUser)
	admin.GET("/users", adminCtrl.ListUsers)
	admin.POST("/stores", adminCtrl.CreateStore)
	admin.GET("/stores", adminCtrl.ListStores)
	admin.GET("/stores/export", adminCtrl.ExportStores)
	admin.GET("/ratings", adminCtrl.ListRatings)

	api.GET("/users/stores", auth.Authenticate(),
		auth.RequireRole(model.RoleNormalUser, model.RoleSystemAdmin), storeCtrl.ListStores)

	ratings := api.Group("/ratings", auth.Authenticate(), auth.RequireRole(model.RoleNormalUser))
	ratings.POST("", ratingCtrl.Submit)
	ratings.PUT("", ratingCtrl.Modify)

	owner := api.Group("/owner", auth.Authenticate(), auth.RequireRole(model.RoleStoreOwner))
	owner.GET("/dashboard", ownerCtrl.Dashboard)
	owner.GET("/feed", ownerCtrl.Feed)

	return &controllerFixture{
		router:     router,
		hub:        hub,
		userRepo:   userRepo,
		storeRepo:  storeRepo,
		ratingRepo: ratingRepo,
	}
}

// account creates a user with testPassword and returns it with a valid token.
func (f *controllerFixture) account(t *testing.T, name, email string, role model.UserRole) (*model.User, string) {
	t.Helper()
	hash, err := util.HashPassword(testPassword)
	require.NoError(t, err)
	u := &model.User{Name: name, Email: email, PasswordHash: hash, Address: "Test Address", Role: role}
	require.NoError(t, f.userRepo.Create(u))

	token, _, err := util.GenerateToken(u.ID, string(role), testSecret)
	require.NoError(t, err)
	return u, token
}

func (f *controllerFixture) store(t *testing.T, name, email string, ownerID *uint) *model.Store {
	t.Helper()
	s := &model.Store{Name: name, Email: email, Address: "Store Address", OwnerID: ownerID}
	require.NoError(t, f.storeRepo.Create(s))
	return s
}

func (f *controllerFixture) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	switch b := body.(type) {
	case nil:
		reader = &bytes.Buffer{}
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewBuffer(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

type errorBody struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	decode(t, w, &body)
	return body
}

func uintPtr(v uint) *uint { return &v }
