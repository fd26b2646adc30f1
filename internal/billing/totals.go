// Package billing holds the pure checkout computations. Discounts are always
// derived from the current subtotal at calculation time, never carried over
// as a stored figure from an earlier price.
package billing

import (
	"strings"

	"go-salon-ws/internal/model"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Subtotal is the base service price plus all selected extra-service prices
func Subtotal(basePrice decimal.Decimal, extras []decimal.Decimal) decimal.Decimal {
	total := basePrice
	for _, p := range extras {
		total = total.Add(p)
	}
	return total
}

// DiscountAmount computes subtotal * percent / 100, capped at the subtotal
// so a discount can never push the total negative
func DiscountAmount(subtotal, percent decimal.Decimal) decimal.Decimal {
	if percent.IsNegative() || subtotal.IsNegative() {
		return decimal.Zero
	}
	amount := subtotal.Mul(percent).Div(hundred)
	if amount.GreaterThan(subtotal) {
		return subtotal
	}
	return amount
}

// TotalDue is max(0, subtotal - discount + tax)
func TotalDue(subtotal, discount, tax decimal.Decimal) decimal.Decimal {
	total := subtotal.Sub(discount).Add(tax)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

// ClampPercent constrains a discount percent to [0, 100] and reports whether
// the input was out of range
func ClampPercent(percent decimal.Decimal) (decimal.Decimal, bool) {
	if percent.IsNegative() {
		return decimal.Zero, true
	}
	if percent.GreaterThan(hundred) {
		return hundred, true
	}
	return percent, false
}

// FieldError surfaces a validation failure at the field level; it is never
// sent to the remote store
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateCheckout gates submission: a payment method must be selected,
// non-cash payments need a reference id, and the discount percent must be
// within range.
func ValidateCheckout(method model.PaymentMethod, referenceID string, discountPercent decimal.Decimal) []FieldError {
	var errs []FieldError

	switch method {
	case model.PaymentCash, model.PaymentCard, model.PaymentUPI:
	case "":
		errs = append(errs, FieldError{Field: "payment_method", Message: "Payment method is required"})
	default:
		errs = append(errs, FieldError{Field: "payment_method", Message: "Unknown payment method"})
	}

	if method != "" && method != model.PaymentCash && strings.TrimSpace(referenceID) == "" {
		errs = append(errs, FieldError{Field: "reference_id", Message: "Reference id is required for non-cash payments"})
	}

	if _, outOfRange := ClampPercent(discountPercent); outOfRange {
		errs = append(errs, FieldError{Field: "discount_percent", Message: "Discount must be between 0 and 100"})
	}

	return errs
}
