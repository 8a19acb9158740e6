package order

import (
	"strings"
	"testing"

	"github.com/TheVish04/ecommerce2-sub001/internal/product"
)

func TestBuildInvoice_TaxAndTotal(t *testing.T) {
	o := Order{
		ID:            7,
		BuyerID:       1,
		Items:         []Item{{ProductID: 10, Quantity: 2, UnitPrice: 500}},
		TotalAmount:   1000,
		Status:        StatusPending,
		PaymentStatus: PaymentPaid,
	}
	prods := map[int]product.Product{10: {ID: 10, Name: "Canvas print"}}

	inv := BuildInvoice(o, prods)

	if inv.Subtotal != 1000 {
		t.Errorf("subtotal = %v, want 1000", inv.Subtotal)
	}
	if inv.Tax != 180 {
		t.Errorf("tax = %v, want 180", inv.Tax)
	}
	if inv.Total != 1180 {
		t.Errorf("total = %v, want 1180", inv.Total)
	}
	if len(inv.Lines) != 1 || inv.Lines[0].Name != "Canvas print" || inv.Lines[0].Amount != 1000 {
		t.Errorf("unexpected lines: %+v", inv.Lines)
	}
}

func TestBuildInvoice_Rounding(t *testing.T) {
	o := Order{TotalAmount: 99.99, Items: nil}
	inv := BuildInvoice(o, nil)

	// 99.99 * 18% = 17.9982 → 18.00
	if inv.Tax != 18.00 {
		t.Errorf("tax = %v, want 18.00", inv.Tax)
	}
	if inv.Total != 117.99 {
		t.Errorf("total = %v, want 117.99", inv.Total)
	}
}

func TestRenderHTML(t *testing.T) {
	o := Order{
		ID:            7,
		Items:         []Item{{ProductID: 10, Quantity: 1, UnitPrice: 1000}},
		TotalAmount:   1000,
		Status:        StatusPending,
		PaymentStatus: PaymentPaid,
	}
	inv := BuildInvoice(o, map[int]product.Product{10: {ID: 10, Name: "Canvas print"}})

	html, err := RenderHTML(inv)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	for _, want := range []string{"Invoice #7", "Canvas print", "180.00", "1180.00", "<!DOCTYPE html>"} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered invoice missing %q", want)
		}
	}
}
