package address

type Repository interface {
	ListByUser(userID int) ([]Address, error)

	// GetByID is scoped to the owner; another user's address id behaves
	// as if it does not exist.
	GetByID(userID, id int) (Address, error)

	Create(a Address) (Address, error)
	Update(a Address) (Address, error)
	Delete(userID, id int) error
}
