package address

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

const addressColumns = `address_id, user_id, label, line, phone, created_at, updated_at`

func (r *PostgresRepository) ListByUser(userID int) ([]Address, error) {
	rows, err := r.db.Query(`SELECT `+addressColumns+`
		FROM shipping_addresses WHERE user_id = $1 ORDER BY address_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Address, 0)
	for rows.Next() {
		var a Address
		if err := rows.Scan(&a.ID, &a.UserID, &a.Label, &a.Line, &a.Phone, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetByID(userID, id int) (Address, error) {
	var a Address
	err := r.db.QueryRow(`SELECT `+addressColumns+`
		FROM shipping_addresses WHERE user_id = $1 AND address_id = $2`, userID, id).
		Scan(&a.ID, &a.UserID, &a.Label, &a.Line, &a.Phone, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return Address{}, fmt.Errorf("address %d: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return Address{}, err
	}
	return a, nil
}

func (r *PostgresRepository) Create(a Address) (Address, error) {
	err := r.db.QueryRow(`INSERT INTO shipping_addresses (user_id, label, line, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING `+addressColumns,
		a.UserID, a.Label, a.Line, a.Phone).
		Scan(&a.ID, &a.UserID, &a.Label, &a.Line, &a.Phone, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return Address{}, err
	}
	return a, nil
}

func (r *PostgresRepository) Update(a Address) (Address, error) {
	err := r.db.QueryRow(`UPDATE shipping_addresses
		SET label = $3, line = $4, phone = $5, updated_at = now()
		WHERE user_id = $1 AND address_id = $2
		RETURNING `+addressColumns,
		a.UserID, a.ID, a.Label, a.Line, a.Phone).
		Scan(&a.ID, &a.UserID, &a.Label, &a.Line, &a.Phone, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return Address{}, fmt.Errorf("address %d: %w", a.ID, apperr.ErrNotFound)
	}
	if err != nil {
		return Address{}, err
	}
	return a, nil
}

func (r *PostgresRepository) Delete(userID, id int) error {
	res, err := r.db.Exec(`DELETE FROM shipping_addresses WHERE user_id = $1 AND address_id = $2`, userID, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("address %d: %w", id, apperr.ErrNotFound)
	}
	return nil
}
