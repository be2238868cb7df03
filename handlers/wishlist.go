package handlers

import (
	"errors"
	"net/http"

	"wardrobe-backend/middleware"
	"wardrobe-backend/models"
	"wardrobe-backend/store"
	"wardrobe-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type WishlistHandler struct {
	Wishlists store.WishlistStore
	Catalog   store.ProductCatalog
}

func (h *WishlistHandler) GetWishlist(c *gin.Context) {
	ownerID, isGuest, ok := ownerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	wishlist, err := h.Wishlists.FetchOrCreate(ownerID, isGuest)
	if err != nil {
		storeError(c, err, "Failed to fetch wishlist")
		return
	}

	c.JSON(http.StatusOK, wishlist)
}

func (h *WishlistHandler) AddToWishlist(c *gin.Context) {
	ownerID, isGuest, ok := ownerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		ProductID uuid.UUID `json:"product_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	product, err := h.Catalog.Find(req.ProductID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up product"})
		return
	}

	wishlist, err := h.Wishlists.FetchOrCreate(ownerID, isGuest)
	if err != nil {
		storeError(c, err, "Failed to fetch wishlist")
		return
	}

	// Adding a product already on the list succeeds without duplicating it.
	if !wishlist.Contains(req.ProductID) {
		wishlist.Items = append(wishlist.Items, models.WishlistItem{
			ID:         uuid.New(),
			WishlistID: wishlist.ID,
			ProductID:  product.ID,
		})
		if err := h.Wishlists.Save(wishlist); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save wishlist"})
			return
		}
		wishlist, err = h.Wishlists.Get(ownerID, isGuest)
		if err != nil {
			storeError(c, err, "Failed to fetch wishlist")
			return
		}
	}

	c.JSON(http.StatusOK, wishlist)
}

func (h *WishlistHandler) RemoveFromWishlist(c *gin.Context) {
	ownerID, isGuest, ok := ownerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	wishlist, err := h.Wishlists.FetchOrCreate(ownerID, isGuest)
	if err != nil {
		storeError(c, err, "Failed to fetch wishlist")
		return
	}

	changed := false
	for i := range wishlist.Items {
		if wishlist.Items[i].ProductID == productID {
			wishlist.Items = append(wishlist.Items[:i], wishlist.Items[i+1:]...)
			changed = true
			break
		}
	}

	if changed {
		if err := h.Wishlists.Save(wishlist); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save wishlist"})
			return
		}
		wishlist, err = h.Wishlists.Get(ownerID, isGuest)
		if err != nil {
			storeError(c, err, "Failed to fetch wishlist")
			return
		}
	}

	c.JSON(http.StatusOK, wishlist)
}

func (h *WishlistHandler) ClearWishlist(c *gin.Context) {
	ownerID, isGuest, ok := ownerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	wishlist, err := h.Wishlists.FetchOrCreate(ownerID, isGuest)
	if err != nil {
		storeError(c, err, "Failed to fetch wishlist")
		return
	}

	wishlist.Items = nil
	if err := h.Wishlists.Save(wishlist); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear wishlist"})
		return
	}

	wishlist, err = h.Wishlists.Get(ownerID, isGuest)
	if err != nil {
		storeError(c, err, "Failed to fetch wishlist")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Wishlist cleared", "wishlist": wishlist})
}

// MergeWishlist mirrors CartHandler.MergeCart for the wishlist set.
func (h *WishlistHandler) MergeWishlist(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	guestID := c.GetHeader(middleware.GuestIDHeader)
	if !utils.IsValidGuestID(guestID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Both guest ID and user authentication are required"})
		return
	}

	merged, err := h.Wishlists.MergeGuestIntoUser(guestID, userID.(uuid.UUID).String())
	if err != nil {
		storeError(c, err, "Failed to merge wishlists")
		return
	}

	c.JSON(http.StatusOK, merged)
}
