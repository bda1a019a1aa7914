package service

import (
	"errors"
	"strings"

	"github.com/ikkim/storerating-backend/internal/app/model"
	"github.com/ikkim/storerating-backend/internal/app/repository"
	"github.com/ikkim/storerating-backend/pkg/logger"
	"github.com/ikkim/storerating-backend/pkg/rating"
	"github.com/ikkim/storerating-backend/pkg/validation"
	"gorm.io/gorm"
)

var (
	ErrStoreNameExists   = errors.New("store with this name already exists")
	ErrStoreEmailExists  = errors.New("store with this email already exists")
	ErrStoreOwnerInvalid = errors.New("provided owner ID is not a valid store owner")
	ErrOwnerHasStore     = errors.New("store owner already has a store")
)

type CreateUserInput struct {
	Name     string `json:"name" validate:"required,min=20,max=60"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password_policy"`
	Address  string `json:"address" validate:"required,max=400"`
	Role     string `json:"role" validate:"required,user_role"`
}

type CreateStoreInput struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Address string `json:"address" validate:"required,max=400"`
	OwnerID *uint  `json:"ownerId"`
}

type AdminService interface {
	DashboardStats() (*DashboardStats, error)
	CreateUser(input CreateUserInput) (*model.User, error)
	CreateStore(input CreateStoreInput) (*model.Store, error)
	ListUsers(q UserQuery) ([]AdminUserView, error)
	ListStores(q StoreQuery) ([]AdminStoreView, error)
	ListRatings(q RatingQuery) ([]AdminRatingView, error)
}

type adminService struct {
	userRepo   repository.UserRepository
	storeRepo  repository.StoreRepository
	ratingRepo repository.RatingRepository
}

func NewAdminService(
	userRepo repository.UserRepository,
	storeRepo repository.StoreRepository,
	ratingRepo repository.RatingRepository,
) AdminService {
	return &adminService{
		userRepo:   userRepo,
		storeRepo:  storeRepo,
		ratingRepo: ratingRepo,
	}
}

func (s *adminService) DashboardStats() (*DashboardStats, error) {
	users, err := s.userRepo.Count()
	if err != nil {
		return nil, err
	}
	stores, err := s.storeRepo.Count()
	if err != nil {
		return nil, err
	}
	ratings, err := s.ratingRepo.Count()
	if err != nil {
		return nil, err
	}
	return &DashboardStats{TotalUsers: users, TotalStores: stores, TotalRatings: ratings}, nil
}

func (s *adminService) CreateUser(input CreateUserInput) (*model.User, error) {
	input.Email = strings.TrimSpace(input.Email)
	logger.Info("Admin creating user", map[string]interface{}{
		"email": input.Email,
		"role":  input.Role,
	})

	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	user, err := createAccount(s.userRepo, input.Name, input.Email, input.Password, input.Address, model.UserRole(input.Role))
	if err != nil {
		return nil, err
	}

	logger.Info("User created by admin", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return user, nil
}

func (s *adminService) CreateStore(input CreateStoreInput) (*model.Store, error) {
	input.Email = strings.TrimSpace(input.Email)
	logger.Info("Admin creating store", map[string]interface{}{
		"name":     input.Name,
		"email":    input.Email,
		"owner_id": input.OwnerID,
	})

	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	if _, err := s.storeRepo.FindByEmail(input.Email); err == nil {
		return nil, ErrStoreEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if _, err := s.storeRepo.FindByName(input.Name); err == nil {
		return nil, ErrStoreNameExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if input.OwnerID != nil {
		if err := s.checkOwner(*input.OwnerID); err != nil {
			return nil, err
		}
	}

	store := &model.Store{
		Name:    input.Name,
		Email:   input.Email,
		Address: input.Address,
		OwnerID: input.OwnerID,
	}
	if err := s.storeRepo.Create(store); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, s.duplicateStoreError(input.Email)
		}
		return nil, err
	}

	logger.Info("Store created", map[string]interface{}{
		"store_id": store.ID,
		"name":     store.Name,
	})
	return store, nil
}

// checkOwner requires an existing STORE_OWNER without a store.
func (s *adminService) checkOwner(ownerID uint) error {
	owner, err := s.userRepo.FindByID(ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStoreOwnerInvalid
		}
		return err
	}
	if owner.Role != model.RoleStoreOwner {
		logger.Warn("Store owner has wrong role", map[string]interface{}{
			"owner_id": ownerID,
			"role":     owner.Role,
		})
		return ErrStoreOwnerInvalid
	}

	if _, err := s.storeRepo.FindFirstByOwnerID(ownerID); err == nil {
		return ErrOwnerHasStore
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

// duplicateStoreError resolves which unique column a concurrent insert won.
func (s *adminService) duplicateStoreError(email string) error {
	if _, err := s.storeRepo.FindByEmail(email); err == nil {
		return ErrStoreEmailExists
	}
	return ErrStoreNameExists
}

func (s *adminService) ListUsers(q UserQuery) ([]AdminUserView, error) {
	filter := repository.UserFilter{
		Name:    q.Name,
		Email:   q.Email,
		Address: q.Address,
		Sort:    repository.ParseUserSortField(q.SortField),
		Order:   repository.ParseSortOrder(q.SortOrder),
	}
	// Unknown roles are ignored rather than matching nothing.
	if role := model.UserRole(q.Role); role.Valid() {
		filter.Role = role
	}

	users, err := s.userRepo.List(filter)
	if err != nil {
		return nil, err
	}

	var ownerIDs []uint
	for _, u := range users {
		if u.Role == model.RoleStoreOwner {
			ownerIDs = append(ownerIDs, u.ID)
		}
	}

	storeByOwner := map[uint]model.Store{}
	summaries := map[uint]rating.Summary{}
	if len(ownerIDs) > 0 {
		stores, err := s.storeRepo.FindByOwnerIDs(ownerIDs)
		if err != nil {
			return nil, err
		}
		storeIDs := make([]uint, 0, len(stores))
		for _, st := range stores {
			// stores arrive ordered by id; keep the earliest per owner
			if _, seen := storeByOwner[*st.OwnerID]; !seen {
				storeByOwner[*st.OwnerID] = st
				storeIDs = append(storeIDs, st.ID)
			}
		}
		entries, err := s.ratingRepo.EntriesByStore(storeIDs)
		if err != nil {
			return nil, err
		}
		summaries = rating.SummarizeByStore(entries, 0)
	}

	views := make([]AdminUserView, 0, len(users))
	for _, u := range users {
		view := AdminUserView{
			ID:      u.ID,
			Name:    u.Name,
			Email:   u.Email,
			Address: u.Address,
			Role:    u.Role,
		}
		if st, ok := storeByOwner[u.ID]; ok {
			view.Store = &StoreRef{ID: st.ID, Name: st.Name}
			view.StoreAverageRating = summaries[st.ID].Average
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *adminService) ListStores(q StoreQuery) ([]AdminStoreView, error) {
	stores, err := s.storeRepo.List(repository.StoreFilter{
		Name:         q.Name,
		Email:        q.Email,
		Address:      q.Address,
		Sort:         repository.ParseStoreSortField(q.SortField),
		Order:        repository.ParseSortOrder(q.SortOrder),
		IncludeOwner: true,
	})
	if err != nil {
		return nil, err
	}

	summaries, err := summarizeStores(s.ratingRepo, stores, 0)
	if err != nil {
		return nil, err
	}

	views := make([]AdminStoreView, 0, len(stores))
	for _, st := range stores {
		sum := summaries[st.ID]
		view := AdminStoreView{
			ID:            st.ID,
			Name:          st.Name,
			Email:         st.Email,
			Address:       st.Address,
			AverageRating: sum.Average,
			RatingCount:   sum.Count,
		}
		if st.Owner != nil {
			view.Owner = &UserRef{ID: st.Owner.ID, Name: st.Owner.Name, Email: st.Owner.Email}
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *adminService) ListRatings(q RatingQuery) ([]AdminRatingView, error) {
	field, order := repository.ParseRatingSort(q.SortField, q.SortOrder)
	ratings, err := s.ratingRepo.List(repository.RatingFilter{
		StoreID: q.StoreID,
		UserID:  q.UserID,
		Sort:    field,
		Order:   order,
	})
	if err != nil {
		return nil, err
	}

	views := make([]AdminRatingView, 0, len(ratings))
	for _, r := range ratings {
		view := AdminRatingView{ID: r.ID, Value: r.Value, CreatedAt: r.CreatedAt}
		if r.User != nil {
			view.User = UserRef{ID: r.User.ID, Name: r.User.Name, Email: r.User.Email}
		}
		if r.Store != nil {
			view.Store = StoreRef{ID: r.Store.ID, Name: r.Store.Name, Address: r.Store.Address}
		}
		views = append(views, view)
	}
	return views, nil
}

// summarizeStores loads the ratings of stores in one query and aggregates
// them. Stores without ratings map to the zero Summary.
func summarizeStores(repo repository.RatingRepository, stores []model.Store, callerID uint) (map[uint]rating.Summary, error) {
	ids := make([]uint, 0, len(stores))
	for _, st := range stores {
		ids = append(ids, st.ID)
	}
	entries, err := repo.EntriesByStore(ids)
	if err != nil {
		return nil, err
	}
	return rating.SummarizeByStore(entries, callerID), nil
}
