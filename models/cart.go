package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cart is an owned collection keyed by (owner_id, is_guest). The owner id is
// either an authenticated user id or a client-held guest id, so the guest flag
// is part of the key: a guest cart and a user cart may coexist until merged.
//
// Carts and their items are hard-deleted. A soft-deleted guest cart would keep
// occupying the (owner_id, is_guest) unique index and block the fresh empty
// cart a retired guest id is supposed to get.
type Cart struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OwnerID   string     `gorm:"not null;uniqueIndex:idx_carts_owner" json:"owner_id"`
	IsGuest   bool       `gorm:"not null;uniqueIndex:idx_carts_owner" json:"is_guest"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	Subtotal  float64    `gorm:"default:0" json:"subtotal"`
	Discount  float64    `gorm:"default:0" json:"discount"`
	Total     float64    `gorm:"default:0" json:"total"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CartItem is one line of a cart. UnitPrice is captured when the line is
// added and is not refreshed on later views. The (cart_id, product_id)
// unique index makes one-line-per-product structural rather than a side
// effect of lookups.
type CartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CartID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_line" json:"cart_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_line" json:"product_id"`
	Product   Product   `gorm:"foreignKey:ProductID" json:"product"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	UnitPrice float64   `gorm:"not null" json:"unit_price"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i *CartItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// FindItem returns the line for productID, or nil.
func (c *Cart) FindItem(productID uuid.UUID) *CartItem {
	for idx := range c.Items {
		if c.Items[idx].ProductID == productID {
			return &c.Items[idx]
		}
	}
	return nil
}

// RecalculateTotals rederives subtotal and total from the lines. Totals are
// never trusted from storage; every mutation calls this before saving.
func (c *Cart) RecalculateTotals() {
	subtotal := 0.0
	for _, item := range c.Items {
		subtotal += float64(item.Quantity) * item.UnitPrice
	}
	c.Subtotal = subtotal
	if c.Discount > subtotal {
		c.Discount = subtotal
	}
	if c.Discount < 0 {
		c.Discount = 0
	}
	c.Total = subtotal - c.Discount
}

// ApplyDiscount sets the cart discount and returns the new total. The
// discount is clamped to [0, subtotal].
func (c *Cart) ApplyDiscount(amount float64) float64 {
	c.Discount = amount
	c.RecalculateTotals()
	return c.Total
}
