package repository

import (
	"errors"

	"github.com/ikkim/storerating-backend/internal/app/model"
	"github.com/ikkim/storerating-backend/pkg/logger"
	"gorm.io/gorm"
)

// UserFilter narrows the admin user list. Text fields match
// case-insensitively anywhere in the column; Role must match exactly.
type UserFilter struct {
	Name    string
	Email   string
	Address string
	Role    model.UserRole
	Sort    UserSortField
	Order   SortOrder
}

type UserRepository interface {
	Create(user *model.User) error
	FindByID(id uint) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	UpdatePasswordHash(id uint, hash string) error
	List(filter UserFilter) ([]model.User, error)
	Count() (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	logger.Debug("Creating user in database", map[string]interface{}{
		"email": user.Email,
		"role":  user.Role,
	})

	if err := r.db.Create(user).Error; err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"email": user.Email,
		})
		return err
	}

	logger.Debug("User created in database", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return nil
}

func (r *userRepository) FindByID(id uint) (*model.User, error) {
	logger.Debug("Finding user by ID in database", map[string]interface{}{
		"user_id": id,
	})

	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Debug("User not found by ID", map[string]interface{}{
				"user_id": id,
			})
			return nil, err
		}
		logger.Error("Failed to find user by ID in database", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	logger.Debug("Finding user by email in database", map[string]interface{}{
		"email": email,
	})

	var user model.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		logger.Debug("User not found by email", map[string]interface{}{
			"email": email,
			"error": err.Error(),
		})
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) UpdatePasswordHash(id uint, hash string) error {
	logger.Debug("Updating user password hash", map[string]interface{}{
		"user_id": id,
	})

	result := r.db.Model(&model.User{}).Where("id = ?", id).Update("password_hash", hash)
	if result.Error != nil {
		logger.Error("Failed to update user password hash", result.Error, map[string]interface{}{
			"user_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) List(filter UserFilter) ([]model.User, error) {
	logger.Debug("Listing users", map[string]interface{}{
		"name":    filter.Name,
		"email":   filter.Email,
		"address": filter.Address,
		"role":    filter.Role,
	})

	query := r.db.Model(&model.User{})
	if filter.Name != "" {
		query = query.Where(containsClause("users", "name"), containsPattern(filter.Name))
	}
	if filter.Email != "" {
		query = query.Where(containsClause("users", "email"), containsPattern(filter.Email))
	}
	if filter.Address != "" {
		query = query.Where(containsClause("users", "address"), containsPattern(filter.Address))
	}
	if filter.Role != "" {
		query = query.Where("users.role = ?", filter.Role)
	}

	var users []model.User
	err := query.
		Order(orderBy(filter.Sort.column(), filter.Order)).
		Order(tieBreaker("users")).
		Find(&users).Error
	if err != nil {
		logger.Error("Failed to list users", err)
		return nil, err
	}

	logger.Debug("Users listed", map[string]interface{}{
		"count": len(users),
	})
	return users, nil
}

func (r *userRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&model.User{}).Count(&count).Error; err != nil {
		logger.Error("Failed to count users", err)
		return 0, err
	}
	return count, nil
}
