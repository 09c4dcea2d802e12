package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Task categories.
const (
	TaskCategoryRecycling    = "recycling"
	TaskCategoryConservation = "conservation"
	TaskCategoryWater        = "water"
	TaskCategoryCommunity    = "community"
	TaskCategoryEnergy       = "energy"
	TaskCategoryOther        = "other"
)

// Task defines an environmental action students can complete for points.
type Task struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	Title           string    `gorm:"size:255;not null" json:"title"`
	Description     string    `gorm:"type:text" json:"description"`
	Category        string    `gorm:"size:32;not null;index" json:"category"`
	Difficulty      string    `gorm:"size:16;not null" json:"difficulty"`
	Points          int       `gorm:"not null" json:"points"`
	LocationLat     *float64  `json:"location_lat"`
	LocationLng     *float64  `json:"location_lng"`
	LocationRadiusM *float64  `json:"location_radius_m"`
	CreatedBy       string    `gorm:"size:64" json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID when none is set.
func (t *Task) BeforeCreate(*gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// HasGeofence reports whether the task requires a submission location.
func (t Task) HasGeofence() bool {
	return t.LocationLat != nil && t.LocationLng != nil && t.LocationRadiusM != nil && *t.LocationRadiusM > 0
}
