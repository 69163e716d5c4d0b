// Package catalog persists image slots and their owners with GORM.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/petermazzocco/go-profile-images/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("record not found")

type Catalog struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Catalog {
	return &Catalog{db: db}
}

// Migrate creates or updates the users and images tables.
func (c *Catalog) Migrate(ctx context.Context) error {
	return c.db.WithContext(ctx).AutoMigrate(&models.User{}, &models.Image{})
}

// FindSlot returns the owner's original (resized false) or thumbnail record.
func (c *Catalog) FindSlot(ctx context.Context, ownerID uint, resized bool) (*models.Image, error) {
	return findSlot(c.db.WithContext(ctx), ownerID, resized)
}

func findSlot(tx *gorm.DB, ownerID uint, resized bool) (*models.Image, error) {
	var image models.Image
	err := tx.Where("user_id = ? AND is_resized = ?", ownerID, resized).First(&image).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find slot user=%d resized=%t: %w", ownerID, resized, err)
	}
	return &image, nil
}

// Upsert writes rec into the (UserID, IsResized) slot. An existing record has
// its file name, key and mime type overwritten; otherwise a new row is
// inserted. The insert carries an ON CONFLICT clause on the slot index, so
// concurrent first uploads for one owner still end with a single row.
func (c *Catalog) Upsert(ctx context.Context, rec models.Image) (*models.Image, error) {
	var saved *models.Image
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := findSlot(tx, rec.UserID, rec.IsResized)
		switch {
		case err == nil:
			current.OriginFileName = rec.OriginFileName
			current.StoredKey = rec.StoredKey
			current.MimeType = rec.MimeType
			if err := tx.Save(current).Error; err != nil {
				return fmt.Errorf("update slot %d: %w", current.ID, err)
			}
			saved = current
			return nil
		case errors.Is(err, ErrNotFound):
		default:
			return err
		}

		fresh := models.Image{
			UserID:         rec.UserID,
			IsResized:      rec.IsResized,
			OriginFileName: rec.OriginFileName,
			StoredKey:      rec.StoredKey,
			MimeType:       rec.MimeType,
		}
		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "is_resized"}},
			DoUpdates: clause.AssignmentColumns([]string{"origin_file_name", "stored_key", "mime_type", "updated_at"}),
		}).Create(&fresh).Error
		if err != nil {
			return fmt.Errorf("insert slot user=%d resized=%t: %w", rec.UserID, rec.IsResized, err)
		}

		saved, err = findSlot(tx, rec.UserID, rec.IsResized)
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// Images lists every record owned by ownerID, originals first.
func (c *Catalog) Images(ctx context.Context, ownerID uint) ([]models.Image, error) {
	var images []models.Image
	err := c.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("is_resized ASC").
		Find(&images).Error
	if err != nil {
		return nil, fmt.Errorf("list images user=%d: %w", ownerID, err)
	}
	return images, nil
}
