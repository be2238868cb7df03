package handlers

import (
	"log"
	"net/http"
	"sync"

	"wardrobe-backend/dtos"
	"wardrobe-backend/models"
	"wardrobe-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BatchImportProducts accepts a bulk JSON import, registers a job and
// processes the rows in the background. The response carries the job id the
// client polls for progress.
func (h *ProductHandler) BatchImportProducts(c *gin.Context) {
	var req dtos.ProductImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	job := h.Jobs.CreateJob(len(req.Products))
	go h.processBatchImport(job.ID, req.Products)

	c.JSON(http.StatusAccepted, gin.H{
		"job_id": job.ID.String(),
		"status": "processing",
		"total":  job.Total,
	})
}

// GetBatchJobStatus returns the tracked state of a bulk import job.
func (h *ProductHandler) GetBatchJobStatus(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job ID"})
		return
	}

	job, exists := h.Jobs.GetJob(jobID)
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}

	c.JSON(http.StatusOK, job)
}

// processBatchImport prepares rows concurrently, then writes creates and
// updates in batches. Rows are matched to existing products by SKU.
func (h *ProductHandler) processBatchImport(jobID uuid.UUID, items []dtos.ProductImportItem) {
	h.Jobs.UpdateJob(jobID, func(j *dtos.BatchJob) {
		j.Status = dtos.JobStatusProcessing
	})

	// Resolve existing SKUs up front so workers never race each other on
	// the same lookup.
	skus := make([]string, 0, len(items))
	for _, item := range items {
		skus = append(skus, item.SKU)
	}
	var existing []models.Product
	if err := h.DB.Where("sku IN ?", skus).Find(&existing).Error; err != nil {
		log.Printf("Bulk import %s: failed to load existing products: %v", jobID, err)
		h.Jobs.CompleteJob(jobID, dtos.JobStatusFailed)
		return
	}
	existingBySKU := make(map[string]models.Product, len(existing))
	for _, p := range existing {
		existingBySKU[p.SKU] = p
	}

	var (
		mu        sync.Mutex
		toCreate  []models.Product
		toUpdate  []models.Product
		newImages []models.ProductImage
	)

	const maxConcurrent = 5
	semaphore := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup

	for i, item := range items {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(row int, data dtos.ProductImportItem) {
			defer wg.Done()
			defer func() { <-semaphore }()

			product, isUpdate := prepareImportRow(data, existingBySKU)

			mu.Lock()
			defer mu.Unlock()

			if isUpdate {
				toUpdate = append(toUpdate, product)
				h.Jobs.UpdateJob(jobID, func(j *dtos.BatchJob) {
					j.Processed++
					j.Updated++
				})
			} else {
				toCreate = append(toCreate, product)
				for idx, url := range data.ImageURLs {
					newImages = append(newImages, models.ProductImage{
						ProductID: product.ID,
						ImageURL:  url,
						IsPrimary: idx == 0,
					})
				}
				h.Jobs.UpdateJob(jobID, func(j *dtos.BatchJob) {
					j.Processed++
					j.Created++
				})
			}
		}(i, item)
	}

	wg.Wait()

	const batchSize = 100
	failed := false

	if len(toCreate) > 0 {
		if err := h.DB.CreateInBatches(toCreate, batchSize).Error; err != nil {
			log.Printf("Bulk import %s: create failed: %v", jobID, err)
			failed = true
		} else {
			log.Printf("Bulk import %s: created %d products", jobID, len(toCreate))
		}
	}

	if len(toUpdate) > 0 {
		if err := h.DB.Save(&toUpdate).Error; err != nil {
			log.Printf("Bulk import %s: update failed: %v", jobID, err)
			failed = true
		} else {
			log.Printf("Bulk import %s: updated %d products", jobID, len(toUpdate))
		}
	}

	if len(newImages) > 0 {
		if err := h.DB.CreateInBatches(newImages, batchSize).Error; err != nil {
			log.Printf("Bulk import %s: image create failed: %v", jobID, err)
		}
	}

	if h.Cache != nil {
		h.Cache.Flush()
	}

	if failed {
		h.Jobs.CompleteJob(jobID, dtos.JobStatusFailed)
		return
	}
	h.Jobs.CompleteJob(jobID, dtos.JobStatusCompleted)
}

// prepareImportRow maps an import row onto a new or existing product. The
// second return value reports whether the row updates an existing product.
func prepareImportRow(data dtos.ProductImportItem, existingBySKU map[string]models.Product) (models.Product, bool) {
	product, isUpdate := existingBySKU[data.SKU]
	if !isUpdate {
		product = models.Product{ID: uuid.New(), SKU: data.SKU}
	}

	product.Name = data.Name
	product.Description = data.Description
	product.Type = data.Type
	product.ProductCategory = data.ProductCategory
	product.PriceAmount = data.PriceAmount
	product.PriceCurrency = data.PriceCurrency
	if product.PriceCurrency == "" {
		product.PriceCurrency = "INR"
	}
	product.StockQuantity = data.StockQuantity
	product.Collection = data.Collection
	product.Material = data.Material
	product.ColorFamily = data.ColorFamily
	product.ColorShade = data.ColorShade
	product.Width = data.Width
	product.Height = data.Height
	product.Depth = data.Depth
	product.Doors = data.Doors
	product.Configuration = data.Configuration
	product.Style = data.Style
	product.ShutterMaterial = data.ShutterMaterial
	product.ShutterFinish = data.ShutterFinish
	product.FinishType = data.FinishType
	product.Brand = data.Brand
	product.DesignerName = data.DesignerName
	product.DesignerArea = data.DesignerArea
	product.DesignerRoyalty = data.DesignerRoyalty
	product.Tags = data.Tags
	product.Features = data.Features

	return product, isUpdate
}
