package billing

import (
	"testing"

	"go-salon-ws/internal/model"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestSubtotal(t *testing.T) {
	got := Subtotal(dec("300"), []decimal.Decimal{dec("150"), dec("50")})
	if !got.Equal(dec("500")) {
		t.Errorf("Subtotal = %s, want 500", got)
	}

	got = Subtotal(dec("300"), nil)
	if !got.Equal(dec("300")) {
		t.Errorf("Subtotal with no extras = %s, want 300", got)
	}
}

func TestDiscountAmount(t *testing.T) {
	cases := []struct {
		name     string
		subtotal string
		percent  string
		want     string
	}{
		{"twenty percent of 500", "500", "20", "100"},
		{"fifty percent of zero", "0", "50", "0"},
		{"zero percent", "500", "0", "0"},
		{"hundred percent", "500", "100", "500"},
		{"negative percent clamps to zero", "500", "-10", "0"},
		{"fractional", "199.99", "10", "19.999"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DiscountAmount(dec(tc.subtotal), dec(tc.percent))
			if !got.Equal(dec(tc.want)) {
				t.Errorf("DiscountAmount(%s, %s) = %s, want %s", tc.subtotal, tc.percent, got, tc.want)
			}
		})
	}
}

func TestDiscountNeverExceedsSubtotal(t *testing.T) {
	got := DiscountAmount(dec("100"), dec("250"))
	if !got.Equal(dec("100")) {
		t.Errorf("discount = %s, must be capped at the subtotal", got)
	}
}

func TestTotalDue(t *testing.T) {
	got := TotalDue(dec("500"), dec("100"), dec("72"))
	if !got.Equal(dec("472")) {
		t.Errorf("TotalDue = %s, want 472", got)
	}

	// Never negative
	got = TotalDue(dec("100"), dec("100"), dec("0"))
	if !got.Equal(decimal.Zero) {
		t.Errorf("TotalDue = %s, want 0", got)
	}
}

func TestClampPercent(t *testing.T) {
	if got, out := ClampPercent(dec("45")); out || !got.Equal(dec("45")) {
		t.Errorf("in-range percent changed: %s, out=%v", got, out)
	}
	if got, out := ClampPercent(dec("-5")); !out || !got.Equal(decimal.Zero) {
		t.Errorf("negative percent = %s, out=%v, want 0 and out-of-range", got, out)
	}
	if got, out := ClampPercent(dec("120")); !out || !got.Equal(dec("100")) {
		t.Errorf("over-100 percent = %s, out=%v, want 100 and out-of-range", got, out)
	}
}

func TestValidateCheckoutPaymentMethod(t *testing.T) {
	if errs := ValidateCheckout("", "", decimal.Zero); len(errs) != 1 || errs[0].Field != "payment_method" {
		t.Errorf("missing method should yield a payment_method error, got %v", errs)
	}
	if errs := ValidateCheckout("cheque", "", decimal.Zero); len(errs) == 0 {
		t.Error("unknown method must be rejected")
	}
	if errs := ValidateCheckout(model.PaymentCash, "", decimal.Zero); len(errs) != 0 {
		t.Errorf("cash needs no reference id, got %v", errs)
	}
}

func TestValidateCheckoutNonCashNeedsReference(t *testing.T) {
	if errs := ValidateCheckout(model.PaymentCard, "", decimal.Zero); len(errs) != 1 || errs[0].Field != "reference_id" {
		t.Errorf("card without reference should fail on reference_id, got %v", errs)
	}
	// Whitespace is not a reference
	if errs := ValidateCheckout(model.PaymentUPI, "   ", decimal.Zero); len(errs) != 1 {
		t.Errorf("blank reference must be rejected, got %v", errs)
	}
	if errs := ValidateCheckout(model.PaymentCard, "TXN-123", decimal.Zero); len(errs) != 0 {
		t.Errorf("card with reference should pass, got %v", errs)
	}
}

func TestValidateCheckoutDiscountRange(t *testing.T) {
	if errs := ValidateCheckout(model.PaymentCash, "", dec("150")); len(errs) != 1 || errs[0].Field != "discount_percent" {
		t.Errorf("out-of-range discount should fail, got %v", errs)
	}
}
