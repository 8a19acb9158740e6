package download

import "time"

// Access is one digital-delivery entitlement, unique per
// (user, product, order). Re-ordering the same product creates a new
// grant under the new order id, never a duplicate of an existing one.
type Access struct {
	ID             int        `json:"accessId"`
	UserID         int        `json:"userId"`
	ProductID      int        `json:"productId"`
	OrderID        int        `json:"orderId"`
	DownloadCount  int        `json:"downloadCount"`
	MaxDownloads   *int       `json:"maxDownloads,omitempty"`
	ExpiresAt      *time.Time `json:"expiresAt,omitempty"`
	IsRevoked      bool       `json:"isRevoked"`
	RevokedAt      *time.Time `json:"revokedAt,omitempty"`
	RevokedBy      *int       `json:"revokedBy,omitempty"`
	LastDownloadAt *time.Time `json:"lastDownloadAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}
