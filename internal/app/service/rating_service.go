package service

import (
	"errors"

	"github.com/ikkim/storerating-backend/internal/app/model"
	"github.com/ikkim/storerating-backend/internal/app/repository"
	"github.com/ikkim/storerating-backend/pkg/logger"
	"github.com/ikkim/storerating-backend/pkg/metrics"
	"github.com/ikkim/storerating-backend/pkg/rating"
	"github.com/ikkim/storerating-backend/pkg/validation"
	"gorm.io/gorm"
)

var (
	ErrStoreNotFound       = errors.New("store not found")
	ErrRatingNotFound      = errors.New("rating not found for this store, submit one first")
	ErrRatingAlreadyExists = errors.New("you have already rated this store, modify your rating instead")
	ErrInvalidRatingValue  = errors.New("rating must be between 1 and 5")
)

type RatingInput struct {
	StoreID uint `json:"storeId" validate:"required"`
	Value   int  `json:"value" validate:"min=1,max=5"`
}

// RatingPublisher fans rating changes out to live subscribers of a store.
type RatingPublisher interface {
	Publish(storeID uint, event interface{}) error
}

const (
	EventRatingSubmitted = "rating.submitted"
	EventRatingModified  = "rating.modified"
)

// RatingEvent carries the changed rating and the store's new aggregate.
type RatingEvent struct {
	Type          string   `json:"type"`
	StoreID       uint     `json:"storeId"`
	UserID        uint     `json:"userId"`
	Value         int      `json:"value"`
	AverageRating *float64 `json:"averageRating"`
	RatingCount   int      `json:"ratingCount"`
}

// RatingService moves a (user, store) rating from absent to present via
// Submit and mutates it in place via Modify. There is no delete.
type RatingService interface {
	Submit(userID uint, input RatingInput) (*model.Rating, error)
	Modify(userID uint, input RatingInput) (*model.Rating, error)
}

type ratingService struct {
	ratingRepo repository.RatingRepository
	storeRepo  repository.StoreRepository
	publisher  RatingPublisher
}

// NewRatingService builds the service. A nil publisher disables live events.
func NewRatingService(ratingRepo repository.RatingRepository, storeRepo repository.StoreRepository, publisher RatingPublisher) RatingService {
	return &ratingService{
		ratingRepo: ratingRepo,
		storeRepo:  storeRepo,
		publisher:  publisher,
	}
}

func (s *ratingService) validate(input RatingInput) error {
	if !rating.ValidValue(input.Value) {
		return ErrInvalidRatingValue
	}
	return validation.Struct(input)
}

func (s *ratingService) Submit(userID uint, input RatingInput) (*model.Rating, error) {
	logger.Info("Submitting rating", map[string]interface{}{
		"user_id":  userID,
		"store_id": input.StoreID,
		"value":    input.Value,
	})

	if err := s.validate(input); err != nil {
		metrics.RecordRatingWrite("submit", "invalid")
		return nil, err
	}

	if _, err := s.storeRepo.FindByID(input.StoreID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.RecordRatingWrite("submit", "not_found")
			return nil, ErrStoreNotFound
		}
		return nil, err
	}

	if _, err := s.ratingRepo.FindByUserAndStore(userID, input.StoreID); err == nil {
		metrics.RecordRatingWrite("submit", "conflict")
		return nil, ErrRatingAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	rt := &model.Rating{UserID: userID, StoreID: input.StoreID, Value: input.Value}
	if err := s.ratingRepo.Create(rt); err != nil {
		// a concurrent submit for the same pair won the unique index
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			metrics.RecordRatingWrite("submit", "conflict")
			return nil, ErrRatingAlreadyExists
		}
		return nil, err
	}

	metrics.RecordRatingWrite("submit", "success")
	logger.Info("Rating submitted", map[string]interface{}{
		"rating_id": rt.ID,
	})
	s.publish(EventRatingSubmitted, rt)
	return rt, nil
}

func (s *ratingService) Modify(userID uint, input RatingInput) (*model.Rating, error) {
	logger.Info("Modifying rating", map[string]interface{}{
		"user_id":  userID,
		"store_id": input.StoreID,
		"value":    input.Value,
	})

	if err := s.validate(input); err != nil {
		metrics.RecordRatingWrite("modify", "invalid")
		return nil, err
	}

	rt, err := s.ratingRepo.FindByUserAndStore(userID, input.StoreID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.RecordRatingWrite("modify", "not_found")
			return nil, ErrRatingNotFound
		}
		return nil, err
	}

	if err := s.ratingRepo.UpdateValue(rt.ID, input.Value); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.RecordRatingWrite("modify", "not_found")
			return nil, ErrRatingNotFound
		}
		return nil, err
	}
	rt.Value = input.Value

	metrics.RecordRatingWrite("modify", "success")
	logger.Info("Rating modified", map[string]interface{}{
		"rating_id": rt.ID,
	})
	s.publish(EventRatingModified, rt)
	return rt, nil
}

// publish sends the change with the store's recomputed aggregate. Failures
// are logged; the write has already committed.
func (s *ratingService) publish(eventType string, rt *model.Rating) {
	if s.publisher == nil {
		return
	}

	entries, err := s.ratingRepo.EntriesByStore([]uint{rt.StoreID})
	if err != nil {
		logger.Warn("Failed to load aggregate for rating event", map[string]interface{}{
			"store_id": rt.StoreID,
			"error":    err.Error(),
		})
		return
	}
	sum := rating.Summarize(entries[rt.StoreID], 0)

	event := RatingEvent{
		Type:          eventType,
		StoreID:       rt.StoreID,
		UserID:        rt.UserID,
		Value:         rt.Value,
		AverageRating: sum.Average,
		RatingCount:   sum.Count,
	}
	if err := s.publisher.Publish(rt.StoreID, event); err != nil {
		logger.Warn("Failed to publish rating event", map[string]interface{}{
			"store_id": rt.StoreID,
			"error":    err.Error(),
		})
	}
}
