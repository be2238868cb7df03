package dtos

// ProductRequest is the admin create/update payload. Images arrive as URLs;
// upload happens outside this service.
type ProductRequest struct {
	SKU             string                `json:"sku"`
	Name            string                `json:"name" binding:"required"`
	Description     string                `json:"description"`
	Type            string                `json:"type" binding:"required,oneof=Wardrobe Storage"`
	ProductCategory string                `json:"product_category" binding:"required"`
	PriceAmount     float64               `json:"price_amount" binding:"required,min=0"`
	PriceCurrency   string                `json:"price_currency"`
	StockQuantity   int                   `json:"stock_quantity" binding:"min=0"`
	Collection      string                `json:"collection"`
	Material        string                `json:"material"`
	ColorFamily     string                `json:"color_family"`
	ColorShade      string                `json:"color_shade"`
	Width           float64               `json:"width"`
	Height          float64               `json:"height"`
	Depth           float64               `json:"depth"`
	Doors           int                   `json:"doors"`
	Configuration   string                `json:"configuration"`
	Style           string                `json:"style"`
	ShutterMaterial string                `json:"shutter_material"`
	ShutterFinish   string                `json:"shutter_finish"`
	FinishType      string                `json:"finish_type"`
	Brand           string                `json:"brand"`
	DesignerName    string                `json:"designer_name" binding:"required"`
	DesignerArea    string                `json:"designer_area"`
	DesignerRoyalty float64               `json:"designer_royalty"`
	Tags            string                `json:"tags"`
	Features        string                `json:"features"`
	Images          []ProductImageRequest `json:"images"`
}

type ProductImageRequest struct {
	ImageURL  string `json:"image_url" binding:"required"`
	AltText   string `json:"alt_text"`
	IsPrimary bool   `json:"is_primary"`
}
