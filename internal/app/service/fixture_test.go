package service

import (
	"testing"

	"github.com/ikkim/storerating-backend/internal/app/model"
	"github.com/ikkim/storerating-backend/internal/app/repository"
	"github.com/ikkim/storerating-backend/internal/db"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testPassword = "Password#123"

type serviceFixture struct {
	db         *gorm.DB
	userRepo   repository.UserRepository
	storeRepo  repository.StoreRepository
	ratingRepo repository.RatingRepository
}

func setupServiceTest(t *testing.T) *serviceFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	return &serviceFixture{
		db:         testDB,
		userRepo:   repository.NewUserRepository(testDB),
		storeRepo:  repository.NewStoreRepository(testDB),
		ratingRepo: repository.NewRatingRepository(testDB),
	}
}

// user inserts a user directly; the password hash is not usable for login.
func (f *serviceFixture) user(t *testing.T, name, email string, role model.UserRole) *model.User {
	t.Helper()
	u := &model.User{Name: name, Email: email, PasswordHash: "x", Address: "Test Address", Role: role}
	require.NoError(t, f.userRepo.Create(u))
	return u
}

func (f *serviceFixture) store(t *testing.T, name, email string, ownerID *uint) *model.Store {
	t.Helper()
	s := &model.Store{Name: name, Email: email, Address: "Store Address", OwnerID: ownerID}
	require.NoError(t, f.storeRepo.Create(s))
	return s
}

func (f *serviceFixture) rate(t *testing.T, userID, storeID uint, value int) {
	t.Helper()
	require.NoError(t, f.ratingRepo.Create(&model.Rating{UserID: userID, StoreID: storeID, Value: value}))
}

func (f *serviceFixture) userCount(t *testing.T) int64 {
	t.Helper()
	n, err := f.userRepo.Count()
	require.NoError(t, err)
	return n
}

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }
