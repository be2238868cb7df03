package dtos

// ProductImportRequest is the body of the bulk catalog import endpoint.
type ProductImportRequest struct {
	Products []ProductImportItem `json:"products" binding:"required,min=1,max=2000"`
}

// ProductImportItem is one product row of a bulk import. Rows are matched to
// existing products by SKU; matches update in place, the rest are created.
type ProductImportItem struct {
	SKU             string   `json:"sku" binding:"required"`
	Name            string   `json:"name" binding:"required"`
	Description     string   `json:"description"`
	Type            string   `json:"type" binding:"required,oneof=Wardrobe Storage"`
	ProductCategory string   `json:"product_category" binding:"required"`
	PriceAmount     float64  `json:"price_amount" binding:"required,min=0.01"`
	PriceCurrency   string   `json:"price_currency"`
	StockQuantity   int      `json:"stock_quantity" binding:"min=0"`
	Collection      string   `json:"collection"`
	Material        string   `json:"material"`
	ColorFamily     string   `json:"color_family"`
	ColorShade      string   `json:"color_shade"`
	Width           float64  `json:"width"`
	Height          float64  `json:"height"`
	Depth           float64  `json:"depth"`
	Doors           int      `json:"doors"`
	Configuration   string   `json:"configuration"`
	Style           string   `json:"style"`
	ShutterMaterial string   `json:"shutter_material"`
	ShutterFinish   string   `json:"shutter_finish"`
	FinishType      string   `json:"finish_type"`
	Brand           string   `json:"brand"`
	DesignerName    string   `json:"designer_name" binding:"required"`
	DesignerArea    string   `json:"designer_area"`
	DesignerRoyalty float64  `json:"designer_royalty"`
	Tags            string   `json:"tags"`
	Features        string   `json:"features"`
	ImageURLs       []string `json:"image_urls"`
}
