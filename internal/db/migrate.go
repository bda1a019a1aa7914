package db

import (
	"errors"
	"fmt"

	"github.com/ikkim/storerating-backend/config"
	"github.com/ikkim/storerating-backend/internal/app/model"
	"github.com/ikkim/storerating-backend/pkg/logger"
	"github.com/ikkim/storerating-backend/pkg/util"
	"github.com/ikkim/storerating-backend/pkg/validation"
	"gorm.io/gorm"
)

// Models is the migration set, parents first.
var Models = []interface{}{
	&model.User{},
	&model.Store{},
	&model.Rating{},
}

// Migrate runs database migrations
func Migrate() error {
	return MigrateDB(DB)
}

func MigrateDB(gdb *gorm.DB) error {
	logger.Info("Running database migrations...")

	if err := gdb.AutoMigrate(Models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(Models),
	})
	return nil
}

type adminSeed struct {
	Name     string `json:"name" validate:"required,min=20,max=60"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password_policy"`
	Address  string `json:"address" validate:"required,max=400"`
}

// SeedAdmin creates the configured SYSTEM_ADMIN unless one already exists.
// Public registration cannot create administrators, so this is the only
// way the first one comes into being.
func SeedAdmin(gdb *gorm.DB, cfg config.AdminConfig) error {
	if !cfg.Enabled() {
		logger.Debug("Admin bootstrap not configured, skipping")
		return nil
	}

	var count int64
	if err := gdb.Model(&model.User{}).Where("role = ?", model.RoleSystemAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Info("System admin already present, skipping bootstrap", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	seed := adminSeed{Name: cfg.Name, Email: cfg.Email, Password: cfg.Password, Address: cfg.Address}
	if err := validation.Struct(seed); err != nil {
		return fmt.Errorf("admin bootstrap config: %w", err)
	}

	var existing model.User
	err := gdb.Where("email = ?", cfg.Email).First(&existing).Error
	if err == nil {
		return fmt.Errorf("admin bootstrap: email %s already belongs to a %s account", cfg.Email, existing.Role)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := util.HashPassword(cfg.Password)
	if err != nil {
		return err
	}

	admin := &model.User{
		Name:         cfg.Name,
		Email:        cfg.Email,
		PasswordHash: hash,
		Address:      cfg.Address,
		Role:         model.RoleSystemAdmin,
	}
	if err := gdb.Create(admin).Error; err != nil {
		logger.Error("Failed to create system admin", err, map[string]interface{}{
			"email": cfg.Email,
		})
		return err
	}

	logger.Info("System admin created", map[string]interface{}{
		"user_id": admin.ID,
		"email":   admin.Email,
	})
	return nil
}
