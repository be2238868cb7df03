package store

import (
	"errors"
	"fmt"

	"wardrobe-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCartStore is the database-backed CartStore.
type GormCartStore struct {
	DB *gorm.DB
}

func NewCartStore(db *gorm.DB) *GormCartStore {
	return &GormCartStore{DB: db}
}

func (s *GormCartStore) FetchOrCreate(ownerID string, isGuest bool) (*models.Cart, error) {
	cart, err := s.Get(ownerID, isGuest)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	// A legacy writer used to clobber the owner column with the raw JSON of
	// an add request. Such a row is unreachable by owner lookup, so claim it
	// here: the embedded line transfers and the owner column goes back to a
	// plain id.
	if claimed, err := s.claimLegacyRow(ownerID, isGuest); err != nil {
		return nil, err
	} else if claimed != nil {
		return claimed, nil
	}

	// Insert-if-absent at the store level. Two near-simultaneous first
	// requests must not produce two rows, so never read-then-write here.
	fresh := models.Cart{ID: uuid.New(), OwnerID: ownerID, IsGuest: isGuest}
	if err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}, {Name: "is_guest"}},
		DoNothing: true,
	}).Create(&fresh).Error; err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}

	cart, err = s.Get(ownerID, isGuest)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrConflict
	}
	return cart, err
}

func (s *GormCartStore) Get(ownerID string, isGuest bool) (*models.Cart, error) {
	var cart models.Cart
	err := s.DB.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("cart_items.created_at ASC") }).
		Preload("Items.Product").
		Preload("Items.Product.Images").
		Where("owner_id = ? AND is_guest = ?", ownerID, isGuest).
		First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch cart: %w", err)
	}
	return &cart, nil
}

// Save replaces the cart's lines wholesale and writes the recomputed totals,
// all inside one transaction. Loaded lines keep their ids and created_at, so
// insertion order survives the rewrite.
func (s *GormCartStore) Save(cart *models.Cart) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("clear cart lines: %w", err)
		}
		for i := range cart.Items {
			cart.Items[i].CartID = cart.ID
			line := models.CartItem{
				ID:        cart.Items[i].ID,
				CartID:    cart.ID,
				ProductID: cart.Items[i].ProductID,
				Quantity:  cart.Items[i].Quantity,
				UnitPrice: cart.Items[i].UnitPrice,
				CreatedAt: cart.Items[i].CreatedAt,
			}
			if err := tx.Create(&line).Error; err != nil {
				return fmt.Errorf("write cart line: %w", err)
			}
		}
		err := tx.Model(&models.Cart{}).Where("id = ?", cart.ID).Updates(map[string]interface{}{
			"subtotal": cart.Subtotal,
			"discount": cart.Discount,
			"total":    cart.Total,
			"owner_id": cart.OwnerID,
		}).Error
		if err != nil {
			return fmt.Errorf("update cart totals: %w", err)
		}
		return nil
	})
}

func (s *GormCartStore) Delete(ownerID string, isGuest bool) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		err := tx.Where("owner_id = ? AND is_guest = ?", ownerID, isGuest).First(&cart).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("find cart: %w", err)
		}
		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("delete cart lines: %w", err)
		}
		if err := tx.Delete(&cart).Error; err != nil {
			return fmt.Errorf("delete cart: %w", err)
		}
		return nil
	})
}

// MergeGuestIntoUser folds the guest cart into the user cart. Quantities are
// summed for shared products; other guest lines are appended with their
// captured unit price. The merged user cart is persisted before the guest
// record is deleted, so a crash in between leaves the guest cart intact and
// the merge retryable. Once the guest record is gone a repeat call finds
// nothing to merge and returns the user cart unchanged.
func (s *GormCartStore) MergeGuestIntoUser(guestID, userID string) (*models.Cart, error) {
	userCart, err := s.FetchOrCreate(userID, false)
	if err != nil {
		return nil, err
	}

	guestCart, err := s.Get(guestID, true)
	if errors.Is(err, ErrNotFound) {
		return userCart, nil
	}
	if err != nil {
		return nil, err
	}
	if len(guestCart.Items) == 0 {
		return userCart, nil
	}

	for _, guestItem := range guestCart.Items {
		if line := userCart.FindItem(guestItem.ProductID); line != nil {
			line.Quantity += guestItem.Quantity
		} else {
			userCart.Items = append(userCart.Items, models.CartItem{
				ID:        uuid.New(),
				CartID:    userCart.ID,
				ProductID: guestItem.ProductID,
				Quantity:  guestItem.Quantity,
				UnitPrice: guestItem.UnitPrice,
			})
		}
	}
	userCart.RecalculateTotals()

	if err := s.Save(userCart); err != nil {
		return nil, err
	}
	if err := s.Delete(guestID, true); err != nil {
		return nil, err
	}

	return s.Get(userID, false)
}

// claimLegacyRow looks for a cart whose owner column holds a legacy add
// payload, and repairs it on behalf of ownerID: the embedded line (priced
// from the catalog when the product still exists) becomes the cart's only
// content and the owner column goes back to the plain identifier. Lines the
// row accumulated before the clobber belong to whoever wrote the payload,
// not to the next reader, and are unattributable once the owner is gone, so
// they do not transfer. Returns nil when no such row exists.
func (s *GormCartStore) claimLegacyRow(ownerID string, isGuest bool) (*models.Cart, error) {
	var cart models.Cart
	err := s.DB.
		Where("owner_id LIKE ? AND is_guest = ?", "{%", isGuest).
		First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan legacy carts: %w", err)
	}

	payload, ok := parseLegacyOwner(cart.OwnerID)
	if !ok {
		return nil, nil
	}

	cart.Items = nil
	productID, err := uuid.Parse(payload.ProductID)
	if err == nil && payload.Quantity > 0 {
		unitPrice := 0.0
		var product models.Product
		if err := s.DB.Where("id = ?", productID).First(&product).Error; err == nil {
			unitPrice = product.PriceAmount
		}
		cart.Items = []models.CartItem{{
			ID:        uuid.New(),
			CartID:    cart.ID,
			ProductID: productID,
			Quantity:  payload.Quantity,
			UnitPrice: unitPrice,
		}}
	}

	cart.OwnerID = ownerID
	cart.RecalculateTotals()
	if err := s.Save(&cart); err != nil {
		return nil, err
	}
	return s.Get(ownerID, isGuest)
}
