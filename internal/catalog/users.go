package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/petermazzocco/go-profile-images/models"
	"gorm.io/gorm"
)

func (c *Catalog) FindOwner(ctx context.Context, nickname string) (*models.User, error) {
	var user models.User
	err := c.db.WithContext(ctx).Where("nickname = ?", nickname).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user %q: %w", nickname, err)
	}
	return &user, nil
}

// UserWithImages loads a user and its image records.
func (c *Catalog) UserWithImages(ctx context.Context, nickname string) (*models.User, error) {
	var user models.User
	err := c.db.WithContext(ctx).Preload("Images").Where("nickname = ?", nickname).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user %q: %w", nickname, err)
	}
	return &user, nil
}

// EnsureUser returns the user registered under email, creating it on first
// login.
func (c *Catalog) EnsureUser(ctx context.Context, name, email, nickname string) (*models.User, error) {
	db := c.db.WithContext(ctx)

	var user models.User
	err := db.Where("email = ?", email).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find user %q: %w", email, err)
	}

	user = models.User{Name: name, Email: email, Nickname: nickname}
	if err := db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user %q: %w", email, err)
	}
	return &user, nil
}
