package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
	Name      string         `gorm:"size:255;not null"`
	Email     string         `gorm:"size:255;not null;unique"`
	Nickname  string         `gorm:"size:64;not null;uniqueIndex"`
	Images    []Image
}

// Image is one catalog slot. A user owns at most one original (IsResized false)
// and one thumbnail (IsResized true); uploads overwrite the slot in place.
//
// For thumbnails OriginFileName holds the thumbnail object name and StoredKey
// the original's key.
type Image struct {
	ID             uint `gorm:"primarykey"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	UserID         uint   `gorm:"not null;uniqueIndex:idx_images_slot"`
	User           *User  `json:"user,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	IsResized      bool   `gorm:"not null;default:false;uniqueIndex:idx_images_slot"`
	OriginFileName string `gorm:"size:512;not null"`
	StoredKey      string `gorm:"size:512;not null;index"`
	MimeType       string `gorm:"size:128"`
}
