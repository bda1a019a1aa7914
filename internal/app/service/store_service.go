package service

import (
	"github.com/ikkim/storerating-backend/internal/app/repository"
	"github.com/ikkim/storerating-backend/pkg/logger"
)

type StoreService interface {
	ListForUser(callerID uint, q StoreQuery) ([]UserStoreView, error)
}

type storeService struct {
	storeRepo  repository.StoreRepository
	ratingRepo repository.RatingRepository
}

func NewStoreService(storeRepo repository.StoreRepository, ratingRepo repository.RatingRepository) StoreService {
	return &storeService{
		storeRepo:  storeRepo,
		ratingRepo: ratingRepo,
	}
}

// ListForUser lists stores with their overall rating and the caller's own
// submitted value. Only name and address are filterable here.
func (s *storeService) ListForUser(callerID uint, q StoreQuery) ([]UserStoreView, error) {
	logger.Debug("Listing stores for user", map[string]interface{}{
		"user_id": callerID,
		"name":    q.Name,
		"address": q.Address,
	})

	stores, err := s.storeRepo.List(repository.StoreFilter{
		Name:    q.Name,
		Address: q.Address,
		Sort:    repository.ParsePublicStoreSortField(q.SortField),
		Order:   repository.ParseSortOrder(q.SortOrder),
	})
	if err != nil {
		return nil, err
	}

	summaries, err := summarizeStores(s.ratingRepo, stores, callerID)
	if err != nil {
		return nil, err
	}

	views := make([]UserStoreView, 0, len(stores))
	for _, st := range stores {
		sum := summaries[st.ID]
		views = append(views, UserStoreView{
			ID:                  st.ID,
			Name:                st.Name,
			Address:             st.Address,
			OverallRating:       sum.Average,
			RatingCount:         sum.Count,
			UserSubmittedRating: sum.CallerValue,
		})
	}
	return views, nil
}
