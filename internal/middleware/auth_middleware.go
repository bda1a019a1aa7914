package middleware

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storerating-backend/internal/app/model"
	"github.com/ikkim/storerating-backend/internal/errors"
	"github.com/ikkim/storerating-backend/pkg/util"
	"gorm.io/gorm"
)

const callerKey = "caller"

// TokenQueryParam carries the token on websocket handshakes.
const TokenQueryParam = "token"

// Caller is the authenticated user of a request. Role is read from the
// users table on every request, not from the token.
type Caller struct {
	ID   uint
	Role model.UserRole
}

// UserLookup loads the user a token was issued for.
type UserLookup interface {
	FindByID(id uint) (*model.User, error)
}

type AuthMiddleware struct {
	jwtSecret string
	users     UserLookup
}

func NewAuthMiddleware(jwtSecret string, users UserLookup) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
		users:     users,
	}
}

// Authenticate validates the bearer token and stores the Caller. A websocket
// handshake without an Authorization header may pass the token as ?token=.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		var token string
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
				log.Warn("Invalid authorization header format", map[string]interface{}{
					"path": c.Request.URL.Path,
				})
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "Not authorized, token failed")
				return
			}
			token = parts[1]
		} else if c.IsWebsocket() {
			// Browsers cannot set headers on a websocket handshake.
			token = c.Query(TokenQueryParam)
			if token != "" {
				log.Debug("Using token from query parameter", map[string]interface{}{
					"path": c.Request.URL.Path,
				})
			}
		}

		if token == "" {
			log.Warn("Missing authorization header", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.Unauthorized(c, "Not authorized, no token")
			return
		}

		claims, err := util.ValidateToken(token, m.jwtSecret)
		if err != nil {
			log.Warn("Token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			if stderrors.Is(err, util.ErrExpiredToken) {
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenExpired, "Session expired, please log in again")
			} else {
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "Not authorized, token failed")
			}
			return
		}

		user, err := m.users.FindByID(claims.UserID)
		if err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				log.Warn("Token user no longer exists", map[string]interface{}{
					"user_id": claims.UserID,
				})
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthUserNotFound, "Not authorized, user not found")
				return
			}
			log.Error("Failed to load token user", err, map[string]interface{}{
				"user_id": claims.UserID,
			})
			errors.InternalError(c, "")
			return
		}

		c.Set(callerKey, Caller{ID: user.ID, Role: user.Role})

		log.Debug("User authenticated successfully", map[string]interface{}{
			"user_id": user.ID,
			"role":    user.Role,
		})

		c.Next()
	}
}

// RequireRole allows the request only when the caller's role is listed.
// It must run after Authenticate.
func (m *AuthMiddleware) RequireRole(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		caller, ok := GetCaller(c)
		if !ok {
			log.Warn("Role information not found in context", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.RespondWithError(c, http.StatusForbidden, errors.AuthzRoleNotFound, "Role information not found")
			return
		}

		for _, r := range roles {
			if caller.Role == r {
				c.Next()
				return
			}
		}

		log.Warn("Insufficient permissions", map[string]interface{}{
			"user_id":        caller.ID,
			"user_role":      caller.Role,
			"required_roles": roles,
			"path":           c.Request.URL.Path,
		})
		errors.Forbidden(c, "")
	}
}

// GetCaller returns the Caller stored by Authenticate.
func GetCaller(c *gin.Context) (Caller, bool) {
	v, exists := c.Get(callerKey)
	if !exists {
		return Caller{}, false
	}
	caller, ok := v.(Caller)
	return caller, ok
}
