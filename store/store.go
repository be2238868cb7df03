// Package store persists the owned collections (carts and wishlists) keyed by
// (owner_id, is_guest) and runs the guest-to-user merges. Handlers receive
// these interfaces so tests can back them with an in-memory database.
package store

import (
	"errors"

	"wardrobe-backend/models"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a concurrent first-access race was not
	// absorbed by the insert-if-absent upsert. Callers may retry.
	ErrConflict = errors.New("concurrent creation conflict")
)

// CartStore persists carts. Collections are created lazily on first access;
// Delete removes the record and its lines entirely.
type CartStore interface {
	// FetchOrCreate returns the cart for (ownerID, isGuest), creating an
	// empty one atomically if none exists.
	FetchOrCreate(ownerID string, isGuest bool) (*models.Cart, error)
	// Get returns the cart for (ownerID, isGuest) or ErrNotFound.
	Get(ownerID string, isGuest bool) (*models.Cart, error)
	// Save replaces the cart's lines and totals in one transaction.
	Save(cart *models.Cart) error
	// Delete removes the cart record and its lines.
	Delete(ownerID string, isGuest bool) error
	// MergeGuestIntoUser folds the guest cart into the user cart, persists
	// the user cart, then retires the guest record. Missing or empty guest
	// cart is a no-op, which also makes the merge idempotent.
	MergeGuestIntoUser(guestID, userID string) (*models.Cart, error)
}

// WishlistStore is the set-semantics counterpart of CartStore.
type WishlistStore interface {
	FetchOrCreate(ownerID string, isGuest bool) (*models.Wishlist, error)
	Get(ownerID string, isGuest bool) (*models.Wishlist, error)
	Save(wishlist *models.Wishlist) error
	Delete(ownerID string, isGuest bool) error
	MergeGuestIntoUser(guestID, userID string) (*models.Wishlist, error)
}

// ProductCatalog is the external product lookup the mutators consult before
// adding an entry.
type ProductCatalog interface {
	// Find returns the product or ErrNotFound.
	Find(id uuid.UUID) (*models.Product, error)
}
