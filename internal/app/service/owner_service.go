package service

import (
	"errors"

	"github.com/ikkim/storerating-backend/internal/app/model"
	"github.com/ikkim/storerating-backend/internal/app/repository"
	"github.com/ikkim/storerating-backend/pkg/logger"
	"github.com/ikkim/storerating-backend/pkg/rating"
	"gorm.io/gorm"
)

var ErrOwnerStoreNotFound = errors.New("no store found for this owner")

type OwnerService interface {
	StoreForOwner(ownerID uint) (*model.Store, error)
	Dashboard(ownerID uint) (*OwnerDashboard, error)
}

type ownerService struct {
	storeRepo  repository.StoreRepository
	ratingRepo repository.RatingRepository
}

func NewOwnerService(storeRepo repository.StoreRepository, ratingRepo repository.RatingRepository) OwnerService {
	return &ownerService{
		storeRepo:  storeRepo,
		ratingRepo: ratingRepo,
	}
}

// StoreForOwner returns the owner's earliest store.
func (s *ownerService) StoreForOwner(ownerID uint) (*model.Store, error) {
	store, err := s.storeRepo.FindFirstByOwnerID(ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Owner has no store", map[string]interface{}{
				"owner_id": ownerID,
			})
			return nil, ErrOwnerStoreNotFound
		}
		return nil, err
	}
	return store, nil
}

// Dashboard reports the owner's store: its average and who rated it.
func (s *ownerService) Dashboard(ownerID uint) (*OwnerDashboard, error) {
	store, err := s.StoreForOwner(ownerID)
	if err != nil {
		return nil, err
	}

	ratings, err := s.ratingRepo.FindByStoreWithUsers(store.ID)
	if err != nil {
		return nil, err
	}

	entries := make([]rating.Entry, 0, len(ratings))
	raters := make([]RaterView, 0, len(ratings))
	for _, r := range ratings {
		entries = append(entries, rating.Entry{UserID: r.UserID, Value: r.Value})
		rater := RaterView{UserID: r.UserID, RatingValue: r.Value}
		if r.User != nil {
			rater.UserName = r.User.Name
			rater.UserEmail = r.User.Email
		}
		raters = append(raters, rater)
	}
	sum := rating.Summarize(entries, 0)

	return &OwnerDashboard{
		StoreID:       store.ID,
		StoreName:     store.Name,
		AverageRating: sum.Average,
		RatingCount:   sum.Count,
		UsersWhoRated: raters,
	}, nil
}
