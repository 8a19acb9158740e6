package commission

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/TheVish04/ecommerce2-sub001/internal/apperr"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const commissionColumns = `commission_id, service_id, customer_id, vendor_id, title, requirements,
	budget, deadline, reference_images, delivery_files, status, payment_status,
	razorpay_order_id, razorpay_payment_id, platform_fee, vendor_amount, fee_percent, paid_at,
	created_at, updated_at`

func scanCommission(row interface{ Scan(...any) error }) (Commission, error) {
	var c Commission
	var refImages, deliveryFiles []byte
	var gwOrder, gwPayment sql.NullString
	var fee, vendorAmt, feePct sql.NullFloat64

	err := row.Scan(&c.ID, &c.ServiceID, &c.CustomerID, &c.VendorID, &c.Title, &c.Requirements,
		&c.Budget, &c.Deadline, &refImages, &deliveryFiles, &c.Status, &c.PaymentStatus,
		&gwOrder, &gwPayment, &fee, &vendorAmt, &feePct, &c.PaidAt,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return Commission{}, err
	}

	if len(refImages) > 0 {
		_ = json.Unmarshal(refImages, &c.ReferenceImages)
	}
	if len(deliveryFiles) > 0 {
		_ = json.Unmarshal(deliveryFiles, &c.DeliveryFiles)
	}
	if gwOrder.Valid {
		c.RazorpayOrderID = &gwOrder.String
	}
	if gwPayment.Valid {
		c.RazorpayPaymentID = &gwPayment.String
	}
	if fee.Valid {
		c.PlatformFee = &fee.Float64
	}
	if vendorAmt.Valid {
		c.VendorAmount = &vendorAmt.Float64
	}
	if feePct.Valid {
		c.FeePercent = &feePct.Float64
	}
	return c, nil
}

func (r *PostgresRepository) Create(c Commission) (Commission, error) {
	refImages, err := json.Marshal(c.ReferenceImages)
	if err != nil {
		return Commission{}, err
	}

	err = r.db.QueryRow(`INSERT INTO commissions
			(service_id, customer_id, vendor_id, title, requirements, budget, deadline, reference_images, status, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING commission_id, created_at, updated_at`,
		c.ServiceID, c.CustomerID, c.VendorID, c.Title, c.Requirements,
		c.Budget, c.Deadline, refImages, c.Status, c.PaymentStatus).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return Commission{}, err
	}
	return c, nil
}

func (r *PostgresRepository) GetByID(id int) (Commission, error) {
	row := r.db.QueryRow(`SELECT `+commissionColumns+` FROM commissions WHERE commission_id = $1`, id)
	c, err := scanCommission(row)
	if err == sql.ErrNoRows {
		return Commission{}, fmt.Errorf("commission %d: %w", id, apperr.ErrNotFound)
	}
	return c, err
}

func (r *PostgresRepository) ListForUser(userID int) ([]Commission, error) {
	rows, err := r.db.Query(`SELECT `+commissionColumns+` FROM commissions
		WHERE customer_id = $1 OR vendor_id = $1
		ORDER BY commission_id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Commission, 0)
	for rows.Next() {
		c, err := scanCommission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) UpdateStatus(id int, status string) error {
	res, err := r.db.Exec(`UPDATE commissions SET status = $2, updated_at = now() WHERE commission_id = $1`, id, status)
	if err != nil {
		return err
	}
	return affected(res, id)
}

// AppendDeliveryFiles concatenates onto the jsonb array in place so two
// submissions cannot overwrite each other's files.
func (r *PostgresRepository) AppendDeliveryFiles(id int, files []DeliveryFile, status string) error {
	data, err := json.Marshal(files)
	if err != nil {
		return err
	}
	res, err := r.db.Exec(`UPDATE commissions
		SET delivery_files = coalesce(delivery_files, '[]'::jsonb) || $2::jsonb,
		    status = $3,
		    updated_at = now()
		WHERE commission_id = $1`, id, data, status)
	if err != nil {
		return err
	}
	return affected(res, id)
}

func (r *PostgresRepository) SetGatewayOrder(id int, externalOrderID string) error {
	res, err := r.db.Exec(`UPDATE commissions SET razorpay_order_id = $2, updated_at = now()
		WHERE commission_id = $1`, id, externalOrderID)
	if err != nil {
		return err
	}
	return affected(res, id)
}

// MarkPaid only fires while paymentStatus is still pending, so a replayed
// verification can never overwrite the frozen fee split. When the guard
// loses to a concurrent payment the commission still exists, so that case
// surfaces as ErrAlreadyPaid rather than ErrNotFound.
func (r *PostgresRepository) MarkPaid(id int, externalOrderID, externalPaymentID string, platformFee, vendorAmount, feePercent float64, paidAt time.Time) error {
	res, err := r.db.Exec(`UPDATE commissions
		SET payment_status = 'paid',
		    razorpay_order_id = $2,
		    razorpay_payment_id = $3,
		    platform_fee = $4,
		    vendor_amount = $5,
		    fee_percent = $6,
		    paid_at = $7,
		    updated_at = now()
		WHERE commission_id = $1 AND payment_status = 'pending'`,
		id, externalOrderID, externalPaymentID, platformFee, vendorAmount, feePercent, paidAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var status string
		err := r.db.QueryRow(`SELECT payment_status FROM commissions WHERE commission_id = $1`, id).Scan(&status)
		if err == sql.ErrNoRows {
			return fmt.Errorf("commission %d: %w", id, apperr.ErrNotFound)
		}
		if err != nil {
			return err
		}
		return fmt.Errorf("commission %d: %w", id, apperr.ErrAlreadyPaid)
	}
	return nil
}

func affected(res sql.Result, id int) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("commission %d: %w", id, apperr.ErrNotFound)
	}
	return nil
}
