package commission

import "time"

type Repository interface {
	Create(c Commission) (Commission, error)
	GetByID(id int) (Commission, error)

	// ListForUser returns commissions where the user is either the
	// customer or the vendor.
	ListForUser(userID int) ([]Commission, error)

	UpdateStatus(id int, status string) error

	// AppendDeliveryFiles adds files to the append-only delivery list and
	// sets the status in the same update.
	AppendDeliveryFiles(id int, files []DeliveryFile, status string) error

	SetGatewayOrder(id int, externalOrderID string) error

	// MarkPaid freezes the fee split and gateway correlation in a single
	// write alongside paymentStatus=paid.
	MarkPaid(id int, externalOrderID, externalPaymentID string, platformFee, vendorAmount, feePercent float64, paidAt time.Time) error
}
