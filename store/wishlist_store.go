package store

import (
	"errors"
	"fmt"

	"wardrobe-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormWishlistStore is the database-backed WishlistStore.
type GormWishlistStore struct {
	DB *gorm.DB
}

func NewWishlistStore(db *gorm.DB) *GormWishlistStore {
	return &GormWishlistStore{DB: db}
}

func (s *GormWishlistStore) FetchOrCreate(ownerID string, isGuest bool) (*models.Wishlist, error) {
	wishlist, err := s.Get(ownerID, isGuest)
	if err == nil {
		return wishlist, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if claimed, err := s.claimLegacyRow(ownerID, isGuest); err != nil {
		return nil, err
	} else if claimed != nil {
		return claimed, nil
	}

	fresh := models.Wishlist{ID: uuid.New(), OwnerID: ownerID, IsGuest: isGuest}
	if err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}, {Name: "is_guest"}},
		DoNothing: true,
	}).Create(&fresh).Error; err != nil {
		return nil, fmt.Errorf("create wishlist: %w", err)
	}

	wishlist, err = s.Get(ownerID, isGuest)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrConflict
	}
	return wishlist, err
}

func (s *GormWishlistStore) Get(ownerID string, isGuest bool) (*models.Wishlist, error) {
	var wishlist models.Wishlist
	err := s.DB.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("wishlist_items.created_at ASC") }).
		Preload("Items.Product").
		Preload("Items.Product.Images").
		Where("owner_id = ? AND is_guest = ?", ownerID, isGuest).
		First(&wishlist).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch wishlist: %w", err)
	}
	return &wishlist, nil
}

func (s *GormWishlistStore) Save(wishlist *models.Wishlist) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("wishlist_id = ?", wishlist.ID).Delete(&models.WishlistItem{}).Error; err != nil {
			return fmt.Errorf("clear wishlist entries: %w", err)
		}
		for i := range wishlist.Items {
			wishlist.Items[i].WishlistID = wishlist.ID
			entry := models.WishlistItem{
				ID:         wishlist.Items[i].ID,
				WishlistID: wishlist.ID,
				ProductID:  wishlist.Items[i].ProductID,
				CreatedAt:  wishlist.Items[i].CreatedAt,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return fmt.Errorf("write wishlist entry: %w", err)
			}
		}
		err := tx.Model(&models.Wishlist{}).Where("id = ?", wishlist.ID).
			Update("owner_id", wishlist.OwnerID).Error
		if err != nil {
			return fmt.Errorf("update wishlist: %w", err)
		}
		return nil
	})
}

func (s *GormWishlistStore) Delete(ownerID string, isGuest bool) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var wishlist models.Wishlist
		err := tx.Where("owner_id = ? AND is_guest = ?", ownerID, isGuest).First(&wishlist).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("find wishlist: %w", err)
		}
		if err := tx.Where("wishlist_id = ?", wishlist.ID).Delete(&models.WishlistItem{}).Error; err != nil {
			return fmt.Errorf("delete wishlist entries: %w", err)
		}
		if err := tx.Delete(&wishlist).Error; err != nil {
			return fmt.Errorf("delete wishlist: %w", err)
		}
		return nil
	})
}

// MergeGuestIntoUser unions the guest wishlist into the user wishlist.
// Duplicate product references collapse. Same persist-then-retire ordering
// as the cart merge, with the same idempotence on retry.
func (s *GormWishlistStore) MergeGuestIntoUser(guestID, userID string) (*models.Wishlist, error) {
	userList, err := s.FetchOrCreate(userID, false)
	if err != nil {
		return nil, err
	}

	guestList, err := s.Get(guestID, true)
	if errors.Is(err, ErrNotFound) {
		return userList, nil
	}
	if err != nil {
		return nil, err
	}
	if len(guestList.Items) == 0 {
		return userList, nil
	}

	for _, guestItem := range guestList.Items {
		if userList.Contains(guestItem.ProductID) {
			continue
		}
		userList.Items = append(userList.Items, models.WishlistItem{
			ID:         uuid.New(),
			WishlistID: userList.ID,
			ProductID:  guestItem.ProductID,
		})
	}

	if err := s.Save(userList); err != nil {
		return nil, err
	}
	if err := s.Delete(guestID, true); err != nil {
		return nil, err
	}

	return s.Get(userID, false)
}

// claimLegacyRow mirrors the cart-side repair: a wishlist whose owner column
// holds an add payload is adopted by the next reader with the embedded
// product as its only entry, and the owner column is restored to the plain
// identifier. Entries accumulated before the clobber do not transfer.
func (s *GormWishlistStore) claimLegacyRow(ownerID string, isGuest bool) (*models.Wishlist, error) {
	var wishlist models.Wishlist
	err := s.DB.
		Where("owner_id LIKE ? AND is_guest = ?", "{%", isGuest).
		First(&wishlist).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan legacy wishlists: %w", err)
	}

	payload, ok := parseLegacyOwner(wishlist.OwnerID)
	if !ok {
		return nil, nil
	}

	wishlist.Items = nil
	if productID, err := uuid.Parse(payload.ProductID); err == nil {
		wishlist.Items = []models.WishlistItem{{
			ID:         uuid.New(),
			WishlistID: wishlist.ID,
			ProductID:  productID,
		}}
	}

	wishlist.OwnerID = ownerID
	if err := s.Save(&wishlist); err != nil {
		return nil, err
	}
	return s.Get(ownerID, isGuest)
}
