package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storerating-backend/internal/app/model"
	"github.com/ikkim/storerating-backend/internal/app/service"
	"github.com/ikkim/storerating-backend/internal/middleware"
)

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func authResponse(result *service.AuthResult) gin.H {
	return gin.H{
		"id":        result.User.ID,
		"name":      result.User.Name,
		"email":     result.User.Email,
		"address":   result.User.Address,
		"role":      result.User.Role,
		"token":     result.Token,
		"expiresAt": result.ExpiresAt,
	}
}

// Register handles public registration. The role is always NORMAL_USER.
// POST /api/auth/register
func (ctrl *AuthController) Register(c *gin.Context) {
	var req service.RegisterInput
	if !bindJSON(c, &req) {
		return
	}

	result, err := ctrl.authService.Register(req)
	if err != nil {
		respondError(c, err, "register user")
		return
	}

	c.JSON(http.StatusCreated, authResponse(result))
}

// Login handles user login
// POST /api/auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := ctrl.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err, "login")
		return
	}

	c.JSON(http.StatusOK, authResponse(result))
}

// UpdatePassword changes the caller's password after checking the old one.
// PUT /api/auth/update-password
func (ctrl *AuthController) UpdatePassword(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req service.UpdatePasswordInput
	if !bindJSON(c, &req) {
		return
	}

	if err := ctrl.authService.UpdatePassword(caller.ID, req); err != nil {
		respondError(c, err, "update password")
		return
	}

	middleware.GetLoggerFromContext(c).Info("Password updated", map[string]interface{}{
		"user_id": caller.ID,
	})
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

// GetMe returns the caller's profile
// GET /api/auth/me
func (ctrl *AuthController) GetMe(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	user, err := ctrl.authService.GetUserByID(caller.ID)
	if err != nil {
		respondError(c, err, "get user")
		return
	}

	c.JSON(http.StatusOK, profile(user))
}

func profile(user *model.User) gin.H {
	return gin.H{
		"id":        user.ID,
		"name":      user.Name,
		"email":     user.Email,
		"address":   user.Address,
		"role":      user.Role,
		"createdAt": user.CreatedAt,
	}
}
