package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ikkim/storerating-backend/internal/app/model"
	"github.com/ikkim/storerating-backend/internal/app/repository"
	"github.com/ikkim/storerating-backend/pkg/logger"
	"github.com/ikkim/storerating-backend/pkg/metrics"
	"github.com/ikkim/storerating-backend/pkg/util"
	"github.com/ikkim/storerating-backend/pkg/validation"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidOldPassword = errors.New("old password is incorrect")
	ErrUserNotFound       = errors.New("user not found")
	ErrTooManyAttempts    = errors.New("too many failed login attempts, try again later")
)

// LoginGuard throttles repeated login failures for one email.
// A nil guard disables throttling.
type LoginGuard interface {
	Blocked(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) (int64, error)
	Reset(ctx context.Context, email string) error
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=20,max=60"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password_policy"`
	Address  string `json:"address" validate:"required,max=400"`
}

type UpdatePasswordInput struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,password_policy"`
}

// AuthResult is a user together with a freshly issued access token.
type AuthResult struct {
	User      *model.User
	Token     string
	ExpiresAt time.Time
}

type AuthService interface {
	Register(input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	UpdatePassword(userID uint, input UpdatePasswordInput) error
	GetUserByID(id uint) (*model.User, error)
}

type authService struct {
	userRepo  repository.UserRepository
	guard     LoginGuard
	jwtSecret string
}

func NewAuthService(userRepo repository.UserRepository, guard LoginGuard, jwtSecret string) AuthService {
	return &authService{
		userRepo:  userRepo,
		guard:     guard,
		jwtSecret: jwtSecret,
	}
}

func (s *authService) Register(input RegisterInput) (*AuthResult, error) {
	input.Email = strings.TrimSpace(input.Email)
	logger.Info("Attempting user registration", map[string]interface{}{
		"email": input.Email,
	})

	if err := validation.Struct(input); err != nil {
		metrics.RecordAuth("register", "invalid")
		return nil, err
	}

	user, err := createAccount(s.userRepo, input.Name, input.Email, input.Password, input.Address, model.RoleNormalUser)
	if err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			metrics.RecordAuth("register", "conflict")
		}
		return nil, err
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	metrics.RecordAuth("register", "success")
	logger.Info("User registered successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return result, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	logger.Info("Login attempt", map[string]interface{}{
		"email": email,
	})

	if email == "" || password == "" {
		return nil, validation.Field("email", "email and password are required")
	}

	if s.guard != nil {
		blocked, err := s.guard.Blocked(ctx, email)
		if err != nil {
			// Fail open when the guard is unavailable.
			logger.Warn("Login guard unavailable", map[string]interface{}{
				"error": err.Error(),
			})
		} else if blocked {
			metrics.RecordAuth("login", "blocked")
			logger.Warn("Login blocked: too many failures", map[string]interface{}{
				"email": email,
			})
			return nil, ErrTooManyAttempts
		}
	}

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: user not found", map[string]interface{}{
				"email": email,
			})
			s.recordFailure(ctx, email)
			return nil, ErrInvalidCredentials
		}
		logger.Error("Failed to find user", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"email":   email,
			"user_id": user.ID,
		})
		s.recordFailure(ctx, email)
		return nil, ErrInvalidCredentials
	}

	if s.guard != nil {
		if err := s.guard.Reset(ctx, email); err != nil {
			logger.Warn("Failed to reset login guard", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	metrics.RecordAuth("login", "success")
	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return result, nil
}

func (s *authService) recordFailure(ctx context.Context, email string) {
	metrics.RecordAuth("login", "failure")
	if s.guard == nil {
		return
	}
	if _, err := s.guard.RecordFailure(ctx, email); err != nil {
		logger.Warn("Failed to record login failure", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (s *authService) UpdatePassword(userID uint, input UpdatePasswordInput) error {
	logger.Info("Updating password", map[string]interface{}{
		"user_id": userID,
	})

	if err := validation.Struct(input); err != nil {
		return err
	}

	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}

	if !util.VerifyPassword(user.PasswordHash, input.OldPassword) {
		logger.Warn("Password update failed: old password mismatch", map[string]interface{}{
			"user_id": userID,
		})
		return ErrInvalidOldPassword
	}

	hash, err := util.HashPassword(input.NewPassword)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}

	if err := s.userRepo.UpdatePasswordHash(userID, hash); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	logger.Info("Password updated successfully", map[string]interface{}{
		"user_id": userID,
	})
	return nil
}

func (s *authService) GetUserByID(id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("User not found", map[string]interface{}{
				"user_id": id,
			})
			return nil, ErrUserNotFound
		}
		logger.Error("Failed to fetch user", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, err
	}
	return user, nil
}

func (s *authService) issue(user *model.User) (*AuthResult, error) {
	token, expiresAt, err := util.GenerateToken(user.ID, string(user.Role), s.jwtSecret)
	if err != nil {
		logger.Error("Failed to generate token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// createAccount hashes the password and inserts a user, mapping both the
// pre-check and a lost insert race to ErrEmailAlreadyExists. Input must
// already be validated.
func createAccount(repo repository.UserRepository, name, email, password, address string, role model.UserRole) (*model.User, error) {
	existing, err := repo.FindByEmail(email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check existing user", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}
	if existing != nil {
		logger.Warn("Account creation failed: email already exists", map[string]interface{}{
			"email": email,
		})
		return nil, ErrEmailAlreadyExists
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Address:      address,
		Role:         role,
	}
	if err := repo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}
	return user, nil
}
