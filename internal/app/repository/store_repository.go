package repository

import (
	"github.com/ikkim/storerating-backend/internal/app/model"
	"github.com/ikkim/storerating-backend/pkg/logger"
	"gorm.io/gorm"
)

type StoreFilter struct {
	Name         string
	Email        string
	Address      string
	Sort         StoreSortField
	Order        SortOrder
	IncludeOwner bool
}

type StoreRepository interface {
	Create(store *model.Store) error
	FindByID(id uint) (*model.Store, error)
	FindByName(name string) (*model.Store, error)
	FindByEmail(email string) (*model.Store, error)
	FindFirstByOwnerID(ownerID uint) (*model.Store, error)
	FindByOwnerIDs(ownerIDs []uint) ([]model.Store, error)
	List(filter StoreFilter) ([]model.Store, error)
	Count() (int64, error)
}

type storeRepository struct {
	db *gorm.DB
}

func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepository{db: db}
}

func (r *storeRepository) Create(store *model.Store) error {
	logger.Debug("Creating store in database", map[string]interface{}{
		"name":     store.Name,
		"email":    store.Email,
		"owner_id": store.OwnerID,
	})

	if err := r.db.Create(store).Error; err != nil {
		logger.Error("Failed to create store in database", err, map[string]interface{}{
			"name":  store.Name,
			"email": store.Email,
		})
		return err
	}

	logger.Debug("Store created in database", map[string]interface{}{
		"store_id": store.ID,
		"name":     store.Name,
	})
	return nil
}

func (r *storeRepository) FindByID(id uint) (*model.Store, error) {
	var store model.Store
	if err := r.db.First(&store, id).Error; err != nil {
		logger.Debug("Store not found by ID", map[string]interface{}{
			"store_id": id,
			"error":    err.Error(),
		})
		return nil, err
	}
	return &store, nil
}

func (r *storeRepository) FindByName(name string) (*model.Store, error) {
	var store model.Store
	if err := r.db.Where("name = ?", name).First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepository) FindByEmail(email string) (*model.Store, error) {
	var store model.Store
	if err := r.db.Where("email = ?", email).First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// FindFirstByOwnerID returns the owner's earliest store (lowest id).
func (r *storeRepository) FindFirstByOwnerID(ownerID uint) (*model.Store, error) {
	logger.Debug("Finding store by owner", map[string]interface{}{
		"owner_id": ownerID,
	})

	var store model.Store
	err := r.db.Where("owner_id = ?", ownerID).Order("id ASC").First(&store).Error
	if err != nil {
		return nil, err
	}
	return &store, nil
}

// FindByOwnerIDs returns stores for the given owners ordered by id.
func (r *storeRepository) FindByOwnerIDs(ownerIDs []uint) ([]model.Store, error) {
	if len(ownerIDs) == 0 {
		return []model.Store{}, nil
	}

	var stores []model.Store
	if err := r.db.Where("owner_id IN ?", ownerIDs).Order("id ASC").Find(&stores).Error; err != nil {
		logger.Error("Failed to find stores by owners", err, map[string]interface{}{
			"owner_count": len(ownerIDs),
		})
		return nil, err
	}
	return stores, nil
}

func (r *storeRepository) List(filter StoreFilter) ([]model.Store, error) {
	logger.Debug("Listing stores", map[string]interface{}{
		"name":    filter.Name,
		"email":   filter.Email,
		"address": filter.Address,
	})

	query := r.db.Model(&model.Store{})
	if filter.IncludeOwner {
		query = query.Preload("Owner")
	}
	if filter.Name != "" {
		query = query.Where(containsClause("stores", "name"), containsPattern(filter.Name))
	}
	if filter.Email != "" {
		query = query.Where(containsClause("stores", "email"), containsPattern(filter.Email))
	}
	if filter.Address != "" {
		query = query.Where(containsClause("stores", "address"), containsPattern(filter.Address))
	}

	var stores []model.Store
	err := query.
		Order(orderBy(filter.Sort.column(), filter.Order)).
		Order(tieBreaker("stores")).
		Find(&stores).Error
	if err != nil {
		logger.Error("Failed to list stores", err)
		return nil, err
	}

	logger.Debug("Stores listed", map[string]interface{}{
		"count": len(stores),
	})
	return stores, nil
}

func (r *storeRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&model.Store{}).Count(&count).Error; err != nil {
		logger.Error("Failed to count stores", err)
		return 0, err
	}
	return count, nil
}
