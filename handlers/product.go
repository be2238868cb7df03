package handlers

import (
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"wardrobe-backend/dtos"
	"wardrobe-backend/middleware"
	"wardrobe-backend/models"
	"wardrobe-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductHandler struct {
	DB    *gorm.DB
	Cache *middleware.ResponseCache
	Jobs  *utils.JobStore
}

// generateSKU builds a unique fallback SKU when the payload omits one.
func generateSKU() string {
	return fmt.Sprintf("WRD-%d%04d", time.Now().Unix()%100000, rand.Intn(10000))
}

// applyFilters translates the catalog query parameters onto a product query.
// Shared by the public listing and the collection listing.
func applyFilters(c *gin.Context, query *gorm.DB) *gorm.DB {
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("LOWER(name) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?)", like, like)
	}
	if t := c.Query("type"); t != "" {
		query = query.Where("type = ?", t)
	}
	if category := c.Query("productCategory"); category != "" {
		query = query.Where("product_category = ?", category)
	}
	if collection := c.Query("collection"); collection != "" {
		query = query.Where("collection = ?", collection)
	}
	if color := c.Query("color"); color != "" {
		query = query.Where("color_family = ?", color)
	}
	if material := c.Query("material"); material != "" {
		query = query.Where("material = ?", material)
	}
	if designer := c.Query("designer"); designer != "" {
		query = query.Where("designer_name = ?", designer)
	}
	if configuration := c.Query("configuration"); configuration != "" {
		query = query.Where("configuration = ?", configuration)
	}
	if tag := c.Query("tag"); tag != "" {
		query = query.Where("LOWER(tags) LIKE LOWER(?)", "%"+tag+"%")
	}
	if minPrice := c.Query("minPrice"); minPrice != "" {
		if v, err := strconv.ParseFloat(minPrice, 64); err == nil {
			query = query.Where("price_amount >= ?", v)
		}
	}
	if maxPrice := c.Query("maxPrice"); maxPrice != "" {
		if v, err := strconv.ParseFloat(maxPrice, 64); err == nil {
			query = query.Where("price_amount <= ?", v)
		}
	}
	return query
}

// applySort maps the sort query parameter to an ORDER BY. Unknown values fall
// back to newest-first so the parameter can never inject SQL.
func applySort(c *gin.Context, query *gorm.DB) *gorm.DB {
	switch c.Query("sort") {
	case "price_asc":
		return query.Order("price_amount ASC")
	case "price_desc":
		return query.Order("price_amount DESC")
	case "rating":
		return query.Order("average_rating DESC")
	case "name":
		return query.Order("name ASC")
	default:
		return query.Order("created_at DESC")
	}
}

func (h *ProductHandler) GetProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := applyFilters(c, h.DB.Model(&models.Product{}))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	var products []models.Product
	query = applySort(c, query).Preload("Images")
	if err := query.Offset((page - 1) * limit).Limit(limit).Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	totalPages := (total + int64(limit) - 1) / int64(limit)
	c.JSON(http.StatusOK, gin.H{
		"products":    products,
		"total":       total,
		"page":        page,
		"limit":       limit,
		"total_pages": totalPages,
	})
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	id := c.Param("id")
	var product models.Product

	if err := h.DB.Preload("Images").Where("id = ?", id).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, product)
}

// GetRelatedProducts returns up to five products sharing the collection,
// category or type of the given product. Collection matches are queried
// first so the closest relatives fill the slots.
func (h *ProductHandler) GetRelatedProducts(c *gin.Context) {
	id := c.Param("id")
	var product models.Product

	if err := h.DB.Where("id = ?", id).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	related := make([]models.Product, 0, 5)
	seen := map[uuid.UUID]bool{product.ID: true}

	for _, cond := range []struct {
		column string
		value  string
	}{
		{"collection", product.Collection},
		{"product_category", product.ProductCategory},
		{"type", product.Type},
	} {
		if len(related) >= 5 || cond.value == "" {
			continue
		}
		var batch []models.Product
		err := h.DB.Preload("Images").
			Where(cond.column+" = ?", cond.value).
			Where("id <> ?", product.ID).
			Order("created_at DESC").
			Limit(5).
			Find(&batch).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch related products"})
			return
		}
		for _, p := range batch {
			if len(related) >= 5 {
				break
			}
			if !seen[p.ID] {
				seen[p.ID] = true
				related = append(related, p)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"products": related})
}

func (h *ProductHandler) GetProductStats(c *gin.Context) {
	var stats struct {
		Count      int64   `json:"count"`
		AvgPrice   float64 `json:"avg_price"`
		MinPrice   float64 `json:"min_price"`
		MaxPrice   float64 `json:"max_price"`
		TotalStock int64   `json:"total_stock"`
	}

	err := h.DB.Model(&models.Product{}).
		Select("COUNT(*) AS count, " +
			"COALESCE(AVG(price_amount), 0) AS avg_price, " +
			"COALESCE(MIN(price_amount), 0) AS min_price, " +
			"COALESCE(MAX(price_amount), 0) AS max_price, " +
			"COALESCE(SUM(stock_quantity), 0) AS total_stock").
		Scan(&stats).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetFilterOptions returns the distinct values the storefront renders as
// filter facets.
func (h *ProductHandler) GetFilterOptions(c *gin.Context) {
	options := gin.H{}
	for param, column := range map[string]string{
		"types":              "type",
		"product_categories": "product_category",
		"collections":        "collection",
		"color_families":     "color_family",
		"materials":          "material",
		"designers":          "designer_name",
		"configurations":     "configuration",
		"styles":             "style",
	} {
		var values []string
		if err := h.DB.Model(&models.Product{}).
			Distinct(column).
			Where(column+" <> ''").
			Order(column).
			Pluck(column, &values).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch filter options"})
			return
		}
		options[param] = values
	}

	var priceRange struct {
		MinPrice float64 `json:"min_price"`
		MaxPrice float64 `json:"max_price"`
	}
	h.DB.Model(&models.Product{}).
		Select("COALESCE(MIN(price_amount), 0) AS min_price, COALESCE(MAX(price_amount), 0) AS max_price").
		Scan(&priceRange)
	options["price_range"] = priceRange

	c.JSON(http.StatusOK, options)
}

func (h *ProductHandler) GetCollections(c *gin.Context) {
	var collections []struct {
		Collection string `json:"collection"`
		Count      int64  `json:"count"`
	}

	err := h.DB.Model(&models.Product{}).
		Select("collection, COUNT(*) AS count").
		Where("collection <> ''").
		Group("collection").
		Order("collection").
		Scan(&collections).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch collections"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"collections": collections})
}

func (h *ProductHandler) GetCollectionProducts(c *gin.Context) {
	collection := c.Param("collection")

	var products []models.Product
	err := applySort(c, h.DB.Preload("Images").Where("collection = ?", collection)).
		Find(&products).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch collection"})
		return
	}
	if len(products) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Collection not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"collection": collection, "products": products})
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req dtos.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	if req.SKU == "" {
		req.SKU = generateSKU()
		log.Printf("Auto-generated SKU: %s", req.SKU)
	}

	product := models.Product{
		ID:              uuid.New(),
		SKU:             req.SKU,
		Name:            req.Name,
		Description:     req.Description,
		Type:            req.Type,
		ProductCategory: req.ProductCategory,
		PriceAmount:     req.PriceAmount,
		PriceCurrency:   req.PriceCurrency,
		StockQuantity:   req.StockQuantity,
		Collection:      req.Collection,
		Material:        req.Material,
		ColorFamily:     req.ColorFamily,
		ColorShade:      req.ColorShade,
		Width:           req.Width,
		Height:          req.Height,
		Depth:           req.Depth,
		Doors:           req.Doors,
		Configuration:   req.Configuration,
		Style:           req.Style,
		ShutterMaterial: req.ShutterMaterial,
		ShutterFinish:   req.ShutterFinish,
		FinishType:      req.FinishType,
		Brand:           req.Brand,
		DesignerName:    req.DesignerName,
		DesignerArea:    req.DesignerArea,
		DesignerRoyalty: req.DesignerRoyalty,
		Tags:            req.Tags,
		Features:        req.Features,
	}
	if product.PriceCurrency == "" {
		product.PriceCurrency = "INR"
	}

	if err := h.DB.Create(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	if len(req.Images) > 0 {
		images := make([]models.ProductImage, 0, len(req.Images))
		for i, img := range req.Images {
			images = append(images, models.ProductImage{
				ProductID: product.ID,
				ImageURL:  img.ImageURL,
				AltText:   img.AltText,
				IsPrimary: img.IsPrimary || i == 0,
			})
		}
		if err := h.DB.Create(&images).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save product images"})
			return
		}
	}

	if h.Cache != nil {
		h.Cache.Flush()
	}

	h.DB.Preload("Images").First(&product, product.ID)
	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id := c.Param("id")
	var product models.Product

	if err := h.DB.Preload("Images").Where("id = ?", id).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	var req dtos.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	oldPrice := product.PriceAmount

	if req.SKU != "" {
		product.SKU = req.SKU
	}
	product.Name = req.Name
	product.Description = req.Description
	product.Type = req.Type
	product.ProductCategory = req.ProductCategory
	product.PriceAmount = req.PriceAmount
	if req.PriceCurrency != "" {
		product.PriceCurrency = req.PriceCurrency
	}
	product.StockQuantity = req.StockQuantity
	product.Collection = req.Collection
	product.Material = req.Material
	product.ColorFamily = req.ColorFamily
	product.ColorShade = req.ColorShade
	product.Width = req.Width
	product.Height = req.Height
	product.Depth = req.Depth
	product.Doors = req.Doors
	product.Configuration = req.Configuration
	product.Style = req.Style
	product.ShutterMaterial = req.ShutterMaterial
	product.ShutterFinish = req.ShutterFinish
	product.FinishType = req.FinishType
	product.Brand = req.Brand
	product.DesignerName = req.DesignerName
	product.DesignerArea = req.DesignerArea
	product.DesignerRoyalty = req.DesignerRoyalty
	product.Tags = req.Tags
	product.Features = req.Features

	if err := h.DB.Save(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	// Replace the image set when the payload carries one.
	if req.Images != nil {
		h.DB.Where("product_id = ?", product.ID).Delete(&models.ProductImage{})
		if len(req.Images) > 0 {
			images := make([]models.ProductImage, 0, len(req.Images))
			for i, img := range req.Images {
				images = append(images, models.ProductImage{
					ProductID: product.ID,
					ImageURL:  img.ImageURL,
					AltText:   img.AltText,
					IsPrimary: img.IsPrimary || i == 0,
				})
			}
			if err := h.DB.Create(&images).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save product images"})
				return
			}
		}
	}

	if oldPrice != product.PriceAmount {
		h.notifyWishlistHolders(&product, oldPrice)
	}

	if h.Cache != nil {
		h.Cache.Flush()
	}

	h.DB.Preload("Images").First(&product, product.ID)
	c.JSON(http.StatusOK, product)
}

// notifyWishlistHolders emails every signed-in user holding the product on a
// wishlist about the price change. Guest wishlists have no address to mail.
func (h *ProductHandler) notifyWishlistHolders(product *models.Product, oldPrice float64) {
	var ownerIDs []string
	err := h.DB.Model(&models.Wishlist{}).
		Joins("JOIN wishlist_items ON wishlist_items.wishlist_id = wishlists.id").
		Where("wishlist_items.product_id = ? AND wishlists.is_guest = ?", product.ID, false).
		Pluck("wishlists.owner_id", &ownerIDs).Error
	if err != nil || len(ownerIDs) == 0 {
		if err != nil {
			log.Printf("Failed to look up wishlist holders for %s: %v", product.ID, err)
		}
		return
	}

	var users []models.User
	if err := h.DB.Where("id IN ?", ownerIDs).Find(&users).Error; err != nil {
		log.Printf("Failed to load wishlist holders for %s: %v", product.ID, err)
		return
	}

	for _, user := range users {
		utils.SendPriceChangeEmail(user.Email, user.Name, product.Name,
			oldPrice, product.PriceAmount, product.PriceCurrency)
	}
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id := c.Param("id")
	var product models.Product

	if err := h.DB.First(&product, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	if err := h.DB.Delete(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}

	if h.Cache != nil {
		h.Cache.Flush()
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

func (h *ProductHandler) GetProductsPaginated(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	var products []models.Product
	var total int64

	query := h.DB.Model(&models.Product{}).Preload("Images")
	if search := c.Query("search"); search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?) OR sku LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	query.Count(&total)
	query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&products)

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"total":    total,
		"page":     page,
		"limit":    limit,
	})
}
