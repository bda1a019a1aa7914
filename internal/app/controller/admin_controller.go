package controller

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storerating-backend/internal/app/service"
	apperrors "github.com/ikkim/storerating-backend/internal/errors"
	"github.com/ikkim/storerating-backend/internal/middleware"
)

const (
	xlsxContentType     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	storeReportFilename = "stores.xlsx"
)

type AdminController struct {
	adminService  service.AdminService
	reportService service.ReportService
}

func NewAdminController(adminService service.AdminService, reportService service.ReportService) *AdminController {
	return &AdminController{
		adminService:  adminService,
		reportService: reportService,
	}
}

// DashboardStats returns user, store and rating totals
// GET /api/admin/dashboard-stats
func (ctrl *AdminController) DashboardStats(c *gin.Context) {
	stats, err := ctrl.adminService.DashboardStats()
	if err != nil {
		respondError(c, err, "dashboard stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// CreateUser creates a user of any role
// POST /api/admin/users
func (ctrl *AdminController) CreateUser(c *gin.Context) {
	var req service.CreateUserInput
	if !bindJSON(c, &req) {
		return
	}

	user, err := ctrl.adminService.CreateUser(req)
	if err != nil {
		respondError(c, err, "create user")
		return
	}

	c.JSON(http.StatusCreated, profile(user))
}

// CreateStore creates a store, optionally assigned to a STORE_OWNER
// POST /api/admin/stores
func (ctrl *AdminController) CreateStore(c *gin.Context) {
	var req service.CreateStoreInput
	if !bindJSON(c, &req) {
		return
	}

	store, err := ctrl.adminService.CreateStore(req)
	if err != nil {
		respondError(c, err, "create store")
		return
	}

	c.JSON(http.StatusCreated, store)
}

// ListUsers GET /api/admin/users?name=&email=&address=&role=&sortField=&sortOrder=
func (ctrl *AdminController) ListUsers(c *gin.Context) {
	var q service.UserQuery
	if !bindQuery(c, &q) {
		return
	}

	users, err := ctrl.adminService.ListUsers(q)
	if err != nil {
		respondError(c, err, "list users")
		return
	}
	c.JSON(http.StatusOK, users)
}

// ListStores GET /api/admin/stores?name=&email=&address=&sortField=&sortOrder=
func (ctrl *AdminController) ListStores(c *gin.Context) {
	var q service.StoreQuery
	if !bindQuery(c, &q) {
		return
	}

	stores, err := ctrl.adminService.ListStores(q)
	if err != nil {
		respondError(c, err, "list stores")
		return
	}
	c.JSON(http.StatusOK, stores)
}

// ExportStores streams the store list as an XLSX attachment
// GET /api/admin/stores/export
func (ctrl *AdminController) ExportStores(c *gin.Context) {
	var q service.StoreQuery
	if !bindQuery(c, &q) {
		return
	}

	buf, err := ctrl.reportService.ExportStores(q)
	if err != nil {
		respondError(c, err, "export stores")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", storeReportFilename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ListRatings GET /api/admin/ratings?storeId=&userId=&sortField=&sortOrder=
func (ctrl *AdminController) ListRatings(c *gin.Context) {
	var q service.RatingQuery
	if !bindQuery(c, &q) {
		return
	}

	ratings, err := ctrl.adminService.ListRatings(q)
	if err != nil {
		respondError(c, err, "list ratings")
		return
	}
	c.JSON(http.StatusOK, ratings)
}

func bindQuery(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		middleware.GetLoggerFromContext(c).Warn("Invalid query parameters", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid query parameters")
		return false
	}
	return true
}
