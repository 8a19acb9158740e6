package order

import (
	"database/sql"
	"encoding/json"
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

func (r *PostgresRepository) Create(o Order) (Order, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return Order{}, err
	}
	defer tx.Rollback()

	err = tx.QueryRow(`INSERT INTO orders
			(buyer_id, total_amount, status, payment_status, razorpay_order_id, razorpay_payment_id, shipping_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING order_id, created_at, updated_at`,
		o.BuyerID, o.TotalAmount, o.Status, o.PaymentStatus, o.RazorpayOrderID, o.RazorpayPaymentID, o.ShippingAddress).
		Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return Order{}, err
	}

	for _, it := range o.Items {
		opts, err := json.Marshal(it.Options)
		if err != nil {
			return Order{}, err
		}
		if _, err := tx.Exec(`INSERT INTO order_items (order_id, product_id, quantity, unit_price, options)
			VALUES ($1, $2, $3, $4, $5)`,
			o.ID, it.ProductID, it.Quantity, it.UnitPrice, opts); err != nil {
			return Order{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Order{}, err
	}
	return o, nil
}

const orderColumns = `order_id, buyer_id, total_amount, status, payment_status,
	razorpay_order_id, razorpay_payment_id, shipping_address, created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (Order, error) {
	var o Order
	var gwOrder, gwPayment sql.NullString
	err := row.Scan(&o.ID, &o.BuyerID, &o.TotalAmount, &o.Status, &o.PaymentStatus,
		&gwOrder, &gwPayment, &o.ShippingAddress, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return Order{}, err
	}
	if gwOrder.Valid {
		o.RazorpayOrderID = &gwOrder.String
	}
	if gwPayment.Valid {
		o.RazorpayPaymentID = &gwPayment.String
	}
	return o, nil
}

func (r *PostgresRepository) GetByID(id int) (Order, error) {
	row := r.db.QueryRow(`SELECT `+orderColumns+` FROM orders WHERE order_id = $1`, id)
	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return Order{}, fmt.Errorf("order %d: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return Order{}, err
	}

	items, err := r.loadItems([]int{o.ID})
	if err != nil {
		return Order{}, err
	}
	o.Items = items[o.ID]
	return o, nil
}

func (r *PostgresRepository) ListByBuyer(buyerID int) ([]Order, error) {
	rows, err := r.db.Query(`SELECT `+orderColumns+` FROM orders
		WHERE buyer_id = $1 ORDER BY order_id DESC`, buyerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]Order, 0)
	ids := make([]int, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	items, err := r.loadItems(ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, nil
}

func (r *PostgresRepository) loadItems(orderIDs []int) (map[int][]Item, error) {
	out := make(map[int][]Item, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(`SELECT order_id, product_id, quantity, unit_price, options
		FROM order_items
		WHERE order_id = ANY($1::int[])
		ORDER BY item_id`, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var orderID int
		var it Item
		var opts []byte
		if err := rows.Scan(&orderID, &it.ProductID, &it.Quantity, &it.UnitPrice, &opts); err != nil {
			return nil, err
		}
		if len(opts) > 0 {
			_ = json.Unmarshal(opts, &it.Options)
		}
		out[orderID] = append(out[orderID], it)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) UpdateStatus(id int, status string) error {
	res, err := r.db.Exec(`UPDATE orders SET status = $2, updated_at = now() WHERE order_id = $1`, id, status)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("order %d: %w", id, apperr.ErrNotFound)
	}
	return nil
}

func (r *PostgresRepository) FindByGatewayPayment(externalOrderID, externalPaymentID string) (Order, bool, error) {
	row := r.db.QueryRow(`SELECT `+orderColumns+` FROM orders
		WHERE razorpay_order_id = $1 AND razorpay_payment_id = $2`, externalOrderID, externalPaymentID)
	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return Order{}, false, nil
	}
	if err != nil {
		return Order{}, false, err
	}

	items, err := r.loadItems([]int{o.ID})
	if err != nil {
		return Order{}, false, err
	}
	o.Items = items[o.ID]
	return o, true, nil
}
