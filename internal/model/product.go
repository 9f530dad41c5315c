package model

type Product struct {
	BaseModel
	SKU              string  `db:"sku" json:"sku"`
	Barcode          *string `db:"barcode" json:"barcode"` // Nullable
	Name             string  `db:"name" json:"name"`
	Description      *string `db:"description" json:"description"`
	StockTracked     bool    `db:"stock_tracked" json:"stock_tracked"`
	ReorderThreshold *int64  `db:"reorder_threshold" json:"reorder_threshold"` // Nullable, >= 0 when set
	IsActive         bool    `db:"is_active" json:"is_active"`
}

// Service is a composite offering that may consume several products in
// fixed quantities when performed (e.g. a treatment using supplies).
type Service struct {
	BaseModel
	Name              string        `db:"name" json:"name"`
	ConsumesInventory bool          `db:"consumes_inventory" json:"consumes_inventory"`
	Items             []ServiceItem `db:"-" json:"items"`
}

type ServiceItem struct {
	ServiceID string `db:"service_id" json:"service_id"`
	ProductID string `db:"product_id" json:"product_id"`
	Quantity  int64  `db:"quantity" json:"quantity"`
}
