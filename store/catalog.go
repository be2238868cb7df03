package store

import (
	"errors"
	"fmt"

	"wardrobe-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCatalog is the database-backed ProductCatalog.
type GormCatalog struct {
	DB *gorm.DB
}

func NewCatalog(db *gorm.DB) *GormCatalog {
	return &GormCatalog{DB: db}
}

func (c *GormCatalog) Find(id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := c.DB.Where("id = ?", id).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch product: %w", err)
	}
	return &product, nil
}
