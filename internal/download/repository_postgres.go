package download

import (
	"database/sql"
	"fmt"

	"github.com/TheVish04/ecommerce2-sub001/internal/apperr"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Grant relies on the unique (user_id, product_id, order_id) index so the
// operation is idempotent at the storage layer.
func (r *PostgresRepository) Grant(userID, productID, orderID int) error {
	_, err := r.db.Exec(`INSERT INTO download_access (user_id, product_id, order_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id, order_id) DO NOTHING`,
		userID, productID, orderID)
	return err
}

func (r *PostgresRepository) Get(userID, productID, orderID int) (Access, error) {
	var a Access
	var maxDL sql.NullInt64
	var revokedBy sql.NullInt64
	err := r.db.QueryRow(`SELECT access_id, user_id, product_id, order_id, download_count,
			max_downloads, expires_at, is_revoked, revoked_at, revoked_by, last_download_at, created_at
		FROM download_access
		WHERE user_id = $1 AND product_id = $2 AND order_id = $3`,
		userID, productID, orderID).Scan(
		&a.ID, &a.UserID, &a.ProductID, &a.OrderID, &a.DownloadCount,
		&maxDL, &a.ExpiresAt, &a.IsRevoked, &a.RevokedAt, &revokedBy, &a.LastDownloadAt, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return Access{}, fmt.Errorf("download access: %w", apperr.ErrNotFound)
	}
	if err != nil {
		return Access{}, err
	}
	if maxDL.Valid {
		v := int(maxDL.Int64)
		a.MaxDownloads = &v
	}
	if revokedBy.Valid {
		v := int(revokedBy.Int64)
		a.RevokedBy = &v
	}
	return a, nil
}

// Consume re-checks every gate inside the update so a grant that is
// revoked, expired, or capped between the service-level read and this
// write can never be consumed.
func (r *PostgresRepository) Consume(id int) error {
	res, err := r.db.Exec(`UPDATE download_access
		SET download_count = download_count + 1, last_download_at = now()
		WHERE access_id = $1
		  AND NOT is_revoked
		  AND (expires_at IS NULL OR expires_at > now())
		  AND (max_downloads IS NULL OR download_count < max_downloads)`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.ErrLimitReached
	}
	return nil
}

func (r *PostgresRepository) Revoke(userID, productID, orderID, revokedBy int) error {
	res, err := r.db.Exec(`UPDATE download_access
		SET is_revoked = TRUE, revoked_at = now(), revoked_by = $4
		WHERE user_id = $1 AND product_id = $2 AND order_id = $3`,
		userID, productID, orderID, revokedBy)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("download access: %w", apperr.ErrNotFound)
	}
	return nil
}
