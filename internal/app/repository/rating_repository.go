package repository

import (
	"github.com/ikkim/storerating-backend/internal/app/model"
	"github.com/ikkim/storerating-backend/pkg/logger"
	"github.com/ikkim/storerating-backend/pkg/rating"
	"gorm.io/gorm"
)

type RatingFilter struct {
	StoreID uint
	UserID  uint
	Sort    RatingSortField
	Order   SortOrder
}

type RatingRepository interface {
	Create(r *model.Rating) error
	FindByUserAndStore(userID, storeID uint) (*model.Rating, error)
	UpdateValue(id uint, value int) error
	EntriesByStore(storeIDs []uint) (map[uint][]rating.Entry, error)
	FindByStoreWithUsers(storeID uint) ([]model.Rating, error)
	List(filter RatingFilter) ([]model.Rating, error)
	Count() (int64, error)
}

type ratingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) Create(rt *model.Rating) error {
	logger.Debug("Creating rating in database", map[string]interface{}{
		"user_id":  rt.UserID,
		"store_id": rt.StoreID,
		"value":    rt.Value,
	})

	if err := r.db.Create(rt).Error; err != nil {
		logger.Error("Failed to create rating in database", err, map[string]interface{}{
			"user_id":  rt.UserID,
			"store_id": rt.StoreID,
		})
		return err
	}

	logger.Debug("Rating created in database", map[string]interface{}{
		"rating_id": rt.ID,
	})
	return nil
}

func (r *ratingRepository) FindByUserAndStore(userID, storeID uint) (*model.Rating, error) {
	var rt model.Rating
	err := r.db.Where("user_id = ? AND store_id = ?", userID, storeID).First(&rt).Error
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

func (r *ratingRepository) UpdateValue(id uint, value int) error {
	logger.Debug("Updating rating value", map[string]interface{}{
		"rating_id": id,
		"value":     value,
	})

	result := r.db.Model(&model.Rating{}).Where("id = ?", id).Update("value", value)
	if result.Error != nil {
		logger.Error("Failed to update rating value", result.Error, map[string]interface{}{
			"rating_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type ratingEntryRow struct {
	StoreID uint
	UserID  uint
	Value   int
}

// EntriesByStore loads the (user, value) pairs of the given stores, grouped
// by store id. A nil slice loads every store.
func (r *ratingRepository) EntriesByStore(storeIDs []uint) (map[uint][]rating.Entry, error) {
	out := make(map[uint][]rating.Entry)
	if storeIDs != nil && len(storeIDs) == 0 {
		return out, nil
	}

	query := r.db.Model(&model.Rating{}).Select("store_id, user_id, value")
	if storeIDs != nil {
		query = query.Where("store_id IN ?", storeIDs)
	}

	var rows []ratingEntryRow
	if err := query.Scan(&rows).Error; err != nil {
		logger.Error("Failed to load rating entries", err, map[string]interface{}{
			"store_count": len(storeIDs),
		})
		return nil, err
	}

	for _, row := range rows {
		out[row.StoreID] = append(out[row.StoreID], rating.Entry{UserID: row.UserID, Value: row.Value})
	}
	return out, nil
}

// FindByStoreWithUsers returns a store's ratings with the rater preloaded,
// newest first.
func (r *ratingRepository) FindByStoreWithUsers(storeID uint) ([]model.Rating, error) {
	var ratings []model.Rating
	err := r.db.Preload("User").
		Where("store_id = ?", storeID).
		Order("created_at DESC").Order("id DESC").
		Find(&ratings).Error
	if err != nil {
		logger.Error("Failed to find ratings by store", err, map[string]interface{}{
			"store_id": storeID,
		})
		return nil, err
	}
	return ratings, nil
}

func (r *ratingRepository) List(filter RatingFilter) ([]model.Rating, error) {
	logger.Debug("Listing ratings", map[string]interface{}{
		"store_id": filter.StoreID,
		"user_id":  filter.UserID,
	})

	query := r.db.Model(&model.Rating{}).
		Joins("JOIN users ON users.id = ratings.user_id").
		Joins("JOIN stores ON stores.id = ratings.store_id").
		Preload("User").
		Preload("Store")
	if filter.StoreID != 0 {
		query = query.Where("ratings.store_id = ?", filter.StoreID)
	}
	if filter.UserID != 0 {
		query = query.Where("ratings.user_id = ?", filter.UserID)
	}

	var ratings []model.Rating
	err := query.
		Order(orderBy(filter.Sort.column(), filter.Order)).
		Order(tieBreaker("ratings")).
		Find(&ratings).Error
	if err != nil {
		logger.Error("Failed to list ratings", err)
		return nil, err
	}
	return ratings, nil
}

func (r *ratingRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&model.Rating{}).Count(&count).Error; err != nil {
		logger.Error("Failed to count ratings", err)
		return 0, err
	}
	return count, nil
}
