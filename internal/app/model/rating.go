package model

import (
	"time"
)

// Rating is one user's score for one store. (user_id, store_id) is unique:
// a second submit for the same pair is rejected by the index.
type Rating struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_ratings_user_store" json:"userId"`
	StoreID   uint      `gorm:"not null;uniqueIndex:idx_ratings_user_store;index" json:"storeId"`
	Value     int       `gorm:"not null;check:chk_ratings_value,value >= 1 AND value <= 5" json:"value"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	User  *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Store *Store `gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE" json:"store,omitempty"`
}

func (Rating) TableName() string {
	return "ratings"
}
