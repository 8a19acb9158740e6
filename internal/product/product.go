package product

// Product is the catalog slice the transaction core reads and mutates.
// Prices are always read from here at decision time; client-submitted
// prices are never trusted.
type Product struct {
	ID          int     `json:"productId"`
	VendorID    int     `json:"vendorId"`
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Status      string  `json:"status"`
	IsActive    bool    `json:"isActive"`
	DownloadURL *string `json:"downloadUrl,omitempty"`
	SalesCount  int     `json:"salesCount"`
	CreatedAt   string  `json:"createdAt,omitempty"`
	UpdatedAt   string  `json:"updatedAt,omitempty"`
}

const (
	TypePhysical = "physical"
	TypeDigital  = "digital"
	TypeService  = "service"
)

const (
	StatusDraft   = "draft"
	StatusActive  = "active"
	StatusSoldOut = "sold_out"
)

// Purchasable reports whether the product can appear on a new order.
func (p Product) Purchasable() bool {
	return p.IsActive && p.Status == StatusActive
}
