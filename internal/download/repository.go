package download

type Repository interface {
	// Grant inserts the entitlement, silently keeping the existing row if
	// the (user, product, order) triple is already granted.
	Grant(userID, productID, orderID int) error

	Get(userID, productID, orderID int) (Access, error)

	// Consume bumps downloadCount and lastDownloadAt in one guarded
	// update; returns apperr.ErrLimitReached when the cap is hit.
	Consume(id int) error

	Revoke(userID, productID, orderID, revokedBy int) error
}
