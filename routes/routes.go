package routes

import (
	"time"

	"wardrobe-backend/handlers"
	"wardrobe-backend/middleware"
	"wardrobe-backend/store"
	"wardrobe-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB) {
	carts := store.NewCartStore(db)
	wishlists := store.NewWishlistStore(db)
	catalog := store.NewCatalog(db)

	catalogCache := middleware.NewResponseCache(5 * time.Minute)
	catalogLimiter := middleware.NewRateLimiter(120, time.Minute)

	authHandler := &handlers.AuthHandler{DB: db, Carts: carts, Wishlists: wishlists}
	productHandler := &handlers.ProductHandler{DB: db, Cache: catalogCache, Jobs: utils.NewJobStore()}
	cartHandler := &handlers.CartHandler{DB: db, Carts: carts, Catalog: catalog}
	wishlistHandler := &handlers.WishlistHandler{Wishlists: wishlists, Catalog: catalog}

	// Public routes
	api := r.Group("/api")
	{
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)
	}

	// Public catalog, rate limited and served from the TTL cache
	catalogRoutes := api.Group("/products")
	catalogRoutes.Use(catalogLimiter.Middleware())
	catalogRoutes.Use(catalogCache.Middleware(5 * time.Minute))
	{
		catalogRoutes.GET("", productHandler.GetProducts)
		catalogRoutes.GET("/stats", productHandler.GetProductStats)
		catalogRoutes.GET("/filter-options", productHandler.GetFilterOptions)
		catalogRoutes.GET("/collections", productHandler.GetCollections)
		catalogRoutes.GET("/collections/:collection", productHandler.GetCollectionProducts)
		catalogRoutes.GET("/:id", productHandler.GetProduct)
		catalogRoutes.GET("/:id/related", productHandler.GetRelatedProducts)
	}

	// Owned collections: a bearer token or a guest id both resolve to an
	// owner, so these work for anonymous and signed-in shoppers alike.
	owned := api.Group("")
	owned.Use(middleware.IdentityMiddleware())
	{
		owned.GET("/cart", cartHandler.GetCart)
		owned.POST("/cart/items", cartHandler.AddToCart)
		owned.PUT("/cart/items/:productId", cartHandler.UpdateCartItem)
		owned.DELETE("/cart/items/:productId", cartHandler.RemoveFromCart)
		owned.POST("/cart/clear", cartHandler.ClearCart)

		owned.GET("/wishlist", wishlistHandler.GetWishlist)
		owned.POST("/wishlist/items", wishlistHandler.AddToWishlist)
		owned.DELETE("/wishlist/items/:productId", wishlistHandler.RemoveFromWishlist)
		owned.POST("/wishlist/clear", wishlistHandler.ClearWishlist)
	}

	// Protected routes (require authentication)
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/auth/profile", authHandler.GetProfile)

		// Merge needs both identities: the token names the user, the
		// X-Guest-ID header names the guest collection to fold in.
		protected.POST("/cart/discount", cartHandler.ApplyDiscount)
		protected.POST("/cart/merge", cartHandler.MergeCart)
		protected.POST("/wishlist/merge", wishlistHandler.MergeWishlist)
	}

	// Admin routes (require admin role)
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	{
		admin.POST("/products", productHandler.CreateProduct)
		admin.PUT("/products/:id", productHandler.UpdateProduct)
		admin.DELETE("/products/:id", productHandler.DeleteProduct)
		admin.GET("/products", productHandler.GetProductsPaginated)

		admin.POST("/products/bulk", productHandler.BatchImportProducts)
		admin.GET("/products/bulk/:id", productHandler.GetBatchJobStatus)
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
