package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Product struct {
	ID              uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SKU             string         `gorm:"uniqueIndex;not null" json:"sku"`
	Name            string         `gorm:"not null;index" json:"name"`
	Description     string         `json:"description"`
	Type            string         `gorm:"not null;index" json:"type"`             // Wardrobe, Storage
	ProductCategory string         `gorm:"not null;index" json:"product_category"` // Sliding Wardrobe, Openable Wardrobe, Sliding Storage, Openable Storage
	PriceAmount     float64        `gorm:"not null;index" json:"price_amount"`
	PriceCurrency   string         `gorm:"default:INR" json:"price_currency"`
	StockQuantity   int            `gorm:"default:0" json:"stock_quantity"`
	ReservedStock   int            `gorm:"default:0" json:"reserved_stock"`
	Collection      string         `gorm:"index" json:"collection"`
	Material        string         `json:"material"`
	ColorFamily     string         `gorm:"index" json:"color_family"`
	ColorShade      string         `json:"color_shade"`
	Width           float64        `json:"width"`
	Height          float64        `json:"height"`
	Depth           float64        `json:"depth"`
	Doors           int            `json:"doors"`
	Configuration   string         `gorm:"index" json:"configuration"`
	Style           string         `json:"style"` // Modern, Sleek, Elegant, Essential
	ShutterMaterial string         `json:"shutter_material"`
	ShutterFinish   string         `json:"shutter_finish"`
	FinishType      string         `json:"finish_type"`
	Brand           string         `json:"brand"`
	DesignerName    string         `gorm:"not null" json:"designer_name"`
	DesignerArea    string         `json:"designer_area"`
	DesignerRoyalty float64        `json:"designer_royalty"`
	Tags            string         `json:"tags"`     // comma separated
	Features        string         `json:"features"` // comma separated
	AverageRating   float64        `gorm:"default:0" json:"average_rating"`
	TotalReviews    int            `gorm:"default:0" json:"total_reviews"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
	Images          []ProductImage `gorm:"foreignKey:ProductID" json:"images,omitempty"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
