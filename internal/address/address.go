package address

import "time"

// Address is a saved shipping destination in the buyer's address book.
// Orders snapshot the rendered line at creation, so later edits or
// deletions never touch placed orders.
type Address struct {
	ID        int       `json:"addressId"`
	UserID    int       `json:"userId"`
	Label     string    `json:"label"`
	Line      string    `json:"line"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
