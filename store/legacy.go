package store

import (
	"encoding/json"
	"strings"

	"wardrobe-backend/models"

	"gorm.io/gorm"
)

// legacyAddPayload is the add-request body a defective legacy writer
// persisted into the owner column instead of the owner identifier.
type legacyAddPayload struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func parseLegacyOwner(owner string) (legacyAddPayload, bool) {
	if !strings.HasPrefix(owner, "{") {
		return legacyAddPayload{}, false
	}
	var p legacyAddPayload
	if err := json.Unmarshal([]byte(owner), &p); err != nil {
		return legacyAddPayload{}, false
	}
	if p.ProductID == "" {
		return legacyAddPayload{}, false
	}
	return p, true
}

// CountLegacyRows reports how many cart and wishlist rows still carry a
// payload-shaped owner. The rows themselves are repaired on next read, when
// the reader's identity is known; this count gives migrations visibility into
// the remaining backlog.
func CountLegacyRows(db *gorm.DB) (carts int64, wishlists int64, err error) {
	if err = db.Model(&models.Cart{}).Where("owner_id LIKE ?", "{%").Count(&carts).Error; err != nil {
		return 0, 0, err
	}
	if err = db.Model(&models.Wishlist{}).Where("owner_id LIKE ?", "{%").Count(&wishlists).Error; err != nil {
		return 0, 0, err
	}
	return carts, wishlists, nil
}
