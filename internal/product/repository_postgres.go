package product

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/TheVish04/ecommerce2-sub001/internal/apperr"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const productColumns = `product_id, vendor_id, name, type, price, stock, status, is_active, download_url, sales_count`

func scanProduct(row interface{ Scan(...any) error }) (Product, error) {
	var p Product
	var url sql.NullString
	err := row.Scan(&p.ID, &p.VendorID, &p.Name, &p.Type, &p.Price, &p.Stock, &p.Status, &p.IsActive, &url, &p.SalesCount)
	if err != nil {
		return Product{}, err
	}
	if url.Valid {
		p.DownloadURL = &url.String
	}
	return p, nil
}

func (r *PostgresRepository) GetByID(id int) (Product, error) {
	row := r.db.QueryRow(`SELECT `+productColumns+` FROM products WHERE product_id = $1`, id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return Product{}, fmt.Errorf("product %d: %w", id, apperr.ErrNotFound)
	}
	return p, err
}

func (r *PostgresRepository) ListByIDs(ids []int) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}

	rows, err := r.db.Query(`SELECT `+productColumns+` FROM products
		WHERE product_id = ANY($1::int[])
		ORDER BY array_position($1::int[], product_id)`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Product, 0, len(ids))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DecrementStock is the only concurrency-sensitive write in the core: the
// stock check and subtraction happen in one statement so two racing
// requests can never both pass a zero floor. sold_out is set in the same
// update when the decrement empties the shelf.
func (r *PostgresRepository) DecrementStock(id, qty int) error {
	res, err := r.db.Exec(`UPDATE products
		SET stock = stock - $2,
		    status = CASE WHEN stock - $2 <= 0 THEN 'sold_out' ELSE status END,
		    updated_at = now()
		WHERE product_id = $1 AND type = 'physical' AND stock >= $2`, id, qty)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("product %d: %w", id, apperr.ErrInsufficientStock)
	}
	return nil
}

func (r *PostgresRepository) IncrementSales(id, qty int) error {
	_, err := r.db.Exec(`UPDATE products SET sales_count = sales_count + $2 WHERE product_id = $1`, id, qty)
	return err
}
