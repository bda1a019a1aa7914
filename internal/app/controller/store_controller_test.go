package controller

import (
	"net/http"
	"testing"

	"github.com/ikkim/storerating-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreController_ListStores(t *testing.T) {
	f := setupControllerTest(t)
	user, token := f.account(t, normalName, "user@example.com", model.RoleNormalUser)
	other, _ := f.account(t, "Another Normal User Account", "other@example.com", model.RoleNormalUser)
	rated := f.store(t, "Rated Store", "rated@example.com", nil)
	f.store(t, "Unrated Store", "unrated@example.com", nil)
	require.NoError(t, f.ratingRepo.Create(&model.Rating{UserID: user.ID, StoreID: rated.ID, Value: 4}))
	require.NoError(t, f.ratingRepo.Create(&model.Rating{UserID: other.ID, StoreID: rated.ID, Value: 3}))

	w := f.do(t, http.MethodGet, "/api/users/stores?sortField=name", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body []map[string]interface{}
	decode(t, w, &body)
	require.Len(t, body, 2)

	assert.Equal(t, "Rated Store", body[0]["name"])
	assert.Equal(t, 3.5, body[0]["overallRating"])
	assert.Equal(t, float64(4), body[0]["userSubmittedRating"])

	assert.Equal(t, "Unrated Store", body[1]["name"])
	assert.Nil(t, body[1]["overallRating"])
	assert.Nil(t, body[1]["userSubmittedRating"])
}

func TestStoreController_ListStores_Roles(t *testing.T) {
	f := setupControllerTest(t)
	_, adminToken := f.account(t, adminName, "admin@example.com", model.RoleSystemAdmin)
	_, ownerToken := f.account(t, ownerName, "owner@example.com", model.RoleStoreOwner)

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/users/stores", adminToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, f.do(t, http.MethodGet, "/api/users/stores", ownerToken, nil).Code)
}
