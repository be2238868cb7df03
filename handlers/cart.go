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
	"gorm.io/gorm"
)

type CartHandler struct {
	DB      *gorm.DB
	Carts   store.CartStore
	Catalog store.ProductCatalog
}

// ownerFromContext reads the identity placed by IdentityMiddleware or
// AuthMiddleware.
func ownerFromContext(c *gin.Context) (string, bool, bool) {
	ownerID, exists := c.Get("owner_id")
	if !exists {
		return "", false, false
	}
	isGuest, _ := c.Get("is_guest")
	guest, _ := isGuest.(bool)
	return ownerID.(string), guest, true
}

// storeError maps store failures to a response. Conflicts are surfaced as
// retryable.
func storeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, store.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Concurrent update, please retry"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func (h *CartHandler) GetCart(c *gin.Context) {
	ownerID, isGuest, ok := ownerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	cart, err := h.Carts.FetchOrCreate(ownerID, isGuest)
	if err != nil {
		storeError(c, err, "Failed to fetch cart")
		return
	}

	c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) AddToCart(c *gin.Context) {
	ownerID, isGuest, ok := ownerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		ProductID uuid.UUID `json:"product_id" binding:"required"`
		Quantity  int       `json:"quantity" binding:"required,min=1"`
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

	cart, err := h.Carts.FetchOrCreate(ownerID, isGuest)
	if err != nil {
		storeError(c, err, "Failed to fetch cart")
		return
	}

	// Repeated adds accumulate on the existing line. The unit price stays
	// as captured by the first add; it is not refreshed on later views.
	if line := cart.FindItem(req.ProductID); line != nil {
		line.Quantity += req.Quantity
	} else {
		cart.Items = append(cart.Items, models.CartItem{
			ID:        uuid.New(),
			CartID:    cart.ID,
			ProductID: product.ID,
			Quantity:  req.Quantity,
			UnitPrice: product.PriceAmount,
		})
	}

	cart.RecalculateTotals()
	if err := h.Carts.Save(cart); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save cart"})
		return
	}

	updated, err := h.Carts.Get(ownerID, isGuest)
	if err != nil {
		storeError(c, err, "Failed to fetch cart")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *CartHandler) UpdateCartItem(c *gin.Context) {
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

	// Quantity is a pointer so an explicit zero reaches the remove branch
	// instead of failing the required binding.
	var req struct {
		Quantity *int `json:"quantity" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	cart, err := h.Carts.FetchOrCreate(ownerID, isGuest)
	if err != nil {
		storeError(c, err, "Failed to fetch cart")
		return
	}

	line := cart.FindItem(productID)
	if line == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found in cart"})
		return
	}

	// Setting quantity to zero or below removes the line. A non-positive
	// quantity is never persisted.
	if *req.Quantity <= 0 {
		removeLine(cart, productID)
	} else {
		line.Quantity = *req.Quantity
	}

	cart.RecalculateTotals()
	if err := h.Carts.Save(cart); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save cart"})
		return
	}

	updated, err := h.Carts.Get(ownerID, isGuest)
	if err != nil {
		storeError(c, err, "Failed to fetch cart")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *CartHandler) RemoveFromCart(c *gin.Context) {
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

	cart, err := h.Carts.FetchOrCreate(ownerID, isGuest)
	if err != nil {
		storeError(c, err, "Failed to fetch cart")
		return
	}

	// Removing a product that is not in the cart succeeds unchanged.
	if removeLine(cart, productID) {
		cart.RecalculateTotals()
		if err := h.Carts.Save(cart); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save cart"})
			return
		}
		cart, err = h.Carts.Get(ownerID, isGuest)
		if err != nil {
			storeError(c, err, "Failed to fetch cart")
			return
		}
	}

	c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) ApplyDiscount(c *gin.Context) {
	ownerID, isGuest, ok := ownerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		DiscountAmount *float64 `json:"discount_amount" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}
	if *req.DiscountAmount < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Discount must not be negative"})
		return
	}

	cart, err := h.Carts.FetchOrCreate(ownerID, isGuest)
	if err != nil {
		storeError(c, err, "Failed to fetch cart")
		return
	}

	newTotal := cart.ApplyDiscount(*req.DiscountAmount)
	if err := h.Carts.Save(cart); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Discount applied",
		"subtotal":  cart.Subtotal,
		"discount":  cart.Discount,
		"new_total": newTotal,
		"cart":      cart,
	})
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	ownerID, isGuest, ok := ownerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	cart, err := h.Carts.FetchOrCreate(ownerID, isGuest)
	if err != nil {
		storeError(c, err, "Failed to fetch cart")
		return
	}

	// Clear empties the lines but keeps the record and its identity.
	cart.Items = nil
	cart.Discount = 0
	cart.RecalculateTotals()
	if err := h.Carts.Save(cart); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
		return
	}

	if !isGuest {
		var user models.User
		if err := h.DB.Where("id = ?", ownerID).First(&user).Error; err == nil && user.Email != "" {
			utils.SendCartClearedEmail(user.Email, user.Name)
		}
	}

	cart, err = h.Carts.Get(ownerID, isGuest)
	if err != nil {
		storeError(c, err, "Failed to fetch cart")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared", "cart": cart})
}

// MergeCart folds the guest cart named by the X-Guest-ID header into the
// authenticated caller's cart. Requires a valid session; the guest record is
// retired on success. Calling again after the guest record is gone is a
// no-op, so concurrent or repeated merges are safe.
func (h *CartHandler) MergeCart(c *gin.Context) {
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

	merged, err := h.Carts.MergeGuestIntoUser(guestID, userID.(uuid.UUID).String())
	if err != nil {
		storeError(c, err, "Failed to merge carts")
		return
	}

	c.JSON(http.StatusOK, merged)
}

// removeLine drops the line for productID and reports whether anything
// changed.
func removeLine(cart *models.Cart, productID uuid.UUID) bool {
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			return true
		}
	}
	return false
}
