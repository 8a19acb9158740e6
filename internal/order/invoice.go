package order

import (
	"bytes"
	"html/template"
	"time"

	"github.com/TheVish04/ecommerce2-sub001/internal/product"
)

// TaxRatePercent is the fixed-rate placeholder applied to every invoice.
const TaxRatePercent = 18.0

type InvoiceLine struct {
	ProductID int     `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	Amount    float64 `json:"amount"`
}

// Invoice is a pure projection of an order; building or rendering one
// never mutates order state.
type Invoice struct {
	OrderID       int           `json:"orderId"`
	BuyerID       int           `json:"buyerId"`
	Status        string        `json:"status"`
	PaymentStatus string        `json:"paymentStatus"`
	Lines         []InvoiceLine `json:"lines"`
	Subtotal      float64       `json:"subtotal"`
	TaxRate       float64       `json:"taxRate"`
	Tax           float64       `json:"tax"`
	Total         float64       `json:"total"`
	IssuedAt      time.Time     `json:"issuedAt"`
}

// BuildInvoice derives the invoice from the frozen order amounts. Tax is
// a fixed surcharge on totalAmount, rounded half away from zero to two
// decimals; the grand total is rounded the same way.
func BuildInvoice(o Order, products map[int]product.Product) Invoice {
	lines := make([]InvoiceLine, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, InvoiceLine{
			ProductID: it.ProductID,
			Name:      products[it.ProductID].Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Amount:    round2(it.UnitPrice * float64(it.Quantity)),
		})
	}

	tax := round2(o.TotalAmount * TaxRatePercent / 100)
	return Invoice{
		OrderID:       o.ID,
		BuyerID:       o.BuyerID,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		Lines:         lines,
		Subtotal:      o.TotalAmount,
		TaxRate:       TaxRatePercent,
		Tax:           tax,
		Total:         round2(o.TotalAmount + tax),
		IssuedAt:      time.Now().UTC(),
	}
}

var invoiceTmpl = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Invoice #{{.OrderID}}</title>
<style>
body { font-family: sans-serif; margin: 40px; color: #222; }
table { width: 100%; border-collapse: collapse; margin-top: 16px; }
th, td { border-bottom: 1px solid #ddd; padding: 8px; text-align: left; }
td.num, th.num { text-align: right; }
tfoot td { border: none; font-weight: bold; }
</style>
</head>
<body>
<h1>Invoice #{{.OrderID}}</h1>
<p>Order status: {{.Status}} / payment: {{.PaymentStatus}}</p>
<table>
<thead>
<tr><th>Item</th><th class="num">Qty</th><th class="num">Unit price</th><th class="num">Amount</th></tr>
</thead>
<tbody>
{{range .Lines}}<tr><td>{{.Name}}</td><td class="num">{{.Quantity}}</td><td class="num">{{printf "%.2f" .UnitPrice}}</td><td class="num">{{printf "%.2f" .Amount}}</td></tr>
{{end}}</tbody>
<tfoot>
<tr><td colspan="3" class="num">Subtotal</td><td class="num">{{printf "%.2f" .Subtotal}}</td></tr>
<tr><td colspan="3" class="num">Tax ({{printf "%.0f" .TaxRate}}%)</td><td class="num">{{printf "%.2f" .Tax}}</td></tr>
<tr><td colspan="3" class="num">Total</td><td class="num">{{printf "%.2f" .Total}}</td></tr>
</tfoot>
</table>
</body>
</html>
`))

// RenderHTML produces a self-contained printable document.
func RenderHTML(inv Invoice) (string, error) {
	var buf bytes.Buffer
	if err := invoiceTmpl.Execute(&buf, inv); err != nil {
		return "", err
	}
	return buf.String(), nil
}
