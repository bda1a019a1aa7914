package service

import (
	"time"

	"github.com/ikkim/storerating-backend/internal/app/model"
)

// Nil pointers serialize as null: no ratings, not rated, no owner, no store.

type UserRef struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type StoreRef struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

type DashboardStats struct {
	TotalUsers   int64 `json:"totalUsers"`
	TotalStores  int64 `json:"totalStores"`
	TotalRatings int64 `json:"totalRatings"`
}

type AdminStoreView struct {
	ID            uint     `json:"id"`
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	Address       string   `json:"address"`
	Owner         *UserRef `json:"owner"`
	AverageRating *float64 `json:"averageRating"`
	RatingCount   int      `json:"ratingCount"`
}

type AdminUserView struct {
	ID                 uint           `json:"id"`
	Name               string         `json:"name"`
	Email              string         `json:"email"`
	Address            string         `json:"address"`
	Role               model.UserRole `json:"role"`
	Store              *StoreRef      `json:"store"`
	StoreAverageRating *float64       `json:"storeAverageRating"`
}

type AdminRatingView struct {
	ID        uint      `json:"id"`
	Value     int       `json:"value"`
	CreatedAt time.Time `json:"createdAt"`
	User      UserRef   `json:"user"`
	Store     StoreRef  `json:"store"`
}

type UserStoreView struct {
	ID                  uint     `json:"id"`
	Name                string   `json:"name"`
	Address             string   `json:"address"`
	OverallRating       *float64 `json:"overallRating"`
	RatingCount         int      `json:"ratingCount"`
	UserSubmittedRating *int     `json:"userSubmittedRating"`
}

type RaterView struct {
	UserID      uint   `json:"userId"`
	UserName    string `json:"userName"`
	UserEmail   string `json:"userEmail"`
	RatingValue int    `json:"ratingValue"`
}

type OwnerDashboard struct {
	StoreID       uint        `json:"storeId"`
	StoreName     string      `json:"storeName"`
	AverageRating *float64    `json:"averageRating"`
	RatingCount   int         `json:"ratingCount"`
	UsersWhoRated []RaterView `json:"usersWhoRated"`
}

// Query types carry raw query-string values; services parse sort names
// into the repository enums.

type UserQuery struct {
	Name      string `form:"name"`
	Email     string `form:"email"`
	Address   string `form:"address"`
	Role      string `form:"role"`
	SortField string `form:"sortField"`
	SortOrder string `form:"sortOrder"`
}

type StoreQuery struct {
	Name      string `form:"name"`
	Email     string `form:"email"`
	Address   string `form:"address"`
	SortField string `form:"sortField"`
	SortOrder string `form:"sortOrder"`
}

type RatingQuery struct {
	StoreID   uint   `form:"storeId"`
	UserID    uint   `form:"userId"`
	SortField string `form:"sortField"`
	SortOrder string `form:"sortOrder"`
}
