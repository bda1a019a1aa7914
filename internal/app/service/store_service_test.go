package service

import (
	"testing"

	"github.com/ikkim/storerating-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeNames(views []UserStoreView) []string {
	names := make([]string, 0, len(views))
	for _, v := range views {
		names = append(names, v.Name)
	}
	return names
}

func TestStoreService_ListForUser_Filters(t *testing.T) {
	f := setupServiceTest(t)
	svc := NewStoreService(f.storeRepo, f.ratingRepo)
	caller := f.user(t, "Listing Normal User Account", "caller@example.com", model.RoleNormalUser)

	f.store(t, "Harbor Cafe", "harbor@example.com", nil)
	f.store(t, "Hill Bakery", "hill@example.com", nil)
	f.store(t, "Central Books", "central@example.com", nil)

	tests := []struct {
		name  string
		query StoreQuery
		want  []string
	}{
		{"no filter sorts by name", StoreQuery{}, []string{"Central Books", "Harbor Cafe", "Hill Bakery"}},
		{"name is case-insensitive", StoreQuery{Name: "h"}, []string{"Harbor Cafe", "Hill Bakery"}},
		{"address filter", StoreQuery{Address: "store addr"}, []string{"Central Books", "Harbor Cafe", "Hill Bakery"}},
		{"email is not filterable here", StoreQuery{Email: "harbor"}, []string{"Central Books", "Harbor Cafe", "Hill Bakery"}},
		{"descending", StoreQuery{SortField: "name", SortOrder: "desc"}, []string{"Hill Bakery", "Harbor Cafe", "Central Books"}},
		{"email sort falls back to name", StoreQuery{SortField: "email"}, []string{"Central Books", "Harbor Cafe", "Hill Bakery"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			views, err := svc.ListForUser(caller.ID, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, storeNames(views))
		})
	}
}

func TestStoreService_ListForUser_CallerRating(t *testing.T) {
	f := setupServiceTest(t)
	svc := NewStoreService(f.storeRepo, f.ratingRepo)
	caller := f.user(t, "Listing Normal User Account", "caller@example.com", model.RoleNormalUser)
	other := f.user(t, "Another Listing User Account", "other@example.com", model.RoleNormalUser)

	store := f.store(t, "Rated Store", "rated@example.com", nil)
	f.rate(t, other.ID, store.ID, 5)

	views, err := svc.ListForUser(caller.ID, StoreQuery{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, floatPtr(5), views[0].OverallRating)
	assert.Equal(t, 1, views[0].RatingCount)
	assert.Nil(t, views[0].UserSubmittedRating)

	f.rate(t, caller.ID, store.ID, 2)
	views, err = svc.ListForUser(caller.ID, StoreQuery{})
	require.NoError(t, err)
	assert.Equal(t, floatPtr(3.5), views[0].OverallRating)
	assert.Equal(t, intPtr(2), views[0].UserSubmittedRating)
}
