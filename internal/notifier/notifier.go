package notifier

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go-salon-ws/internal/config"

	"github.com/shopspring/decimal"
)

// InvoiceLine is one billed item on the delivered summary
type InvoiceLine struct {
	Name  string
	Price decimal.Decimal
}

// InvoiceSummary is the fully computed billing summary handed to the
// delivery integration. The document format is the integration's concern.
type InvoiceSummary struct {
	InvoiceNumber string
	StoreName     string
	CustomerName  string
	CustomerPhone string
	Lines         []InvoiceLine
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
	PaymentMethod string
}

// Sender delivers an invoice summary through an external messaging channel
type Sender interface {
	SendInvoice(ctx context.Context, summary InvoiceSummary) error
}

// Service posts invoice messages to a hosted messaging API. Delivery is
// best-effort; callers must not treat a failure here as a billing failure.
type Service struct {
	apiURL  string
	token   string
	client  *http.Client
	enabled bool
}

func New(cfg config.NotifierConfig) *Service {
	return &Service{
		apiURL:  cfg.APIURL,
		token:   cfg.Token,
		client:  &http.Client{},
		enabled: cfg.APIURL != "" && cfg.Token != "",
	}
}

// IsEnabled checks if delivery is configured
func (s *Service) IsEnabled() bool {
	return s.enabled
}

func (s *Service) SendInvoice(ctx context.Context, summary InvoiceSummary) error {
	if !s.enabled {
		return nil
	}

	data := url.Values{}
	data.Set("to", summary.CustomerPhone)
	data.Set("message", formatInvoiceMessage(summary))

	req, err := http.NewRequestWithContext(ctx, "POST", s.apiURL, bytes.NewBufferString(data.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("invoice delivery rejected with status %d", resp.StatusCode)
	}
	return nil
}

func formatInvoiceMessage(summary InvoiceSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nInvoice %s\n\n", summary.StoreName, summary.InvoiceNumber)
	for _, line := range summary.Lines {
		fmt.Fprintf(&b, "%s: %s\n", line.Name, line.Price.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nSubtotal: %s\n", summary.Subtotal.StringFixed(2))
	if summary.Discount.IsPositive() {
		fmt.Fprintf(&b, "Discount: -%s\n", summary.Discount.StringFixed(2))
	}
	if summary.Tax.IsPositive() {
		fmt.Fprintf(&b, "Tax: %s\n", summary.Tax.StringFixed(2))
	}
	fmt.Fprintf(&b, "Total: %s\nPaid via %s\n\nThank you for visiting, %s!",
		summary.Total.StringFixed(2), summary.PaymentMethod, summary.CustomerName)
	return b.String()
}
