// Package mirror copies recorded payments to the payment gateway's document
// API. Delivery is best effort: failures are logged and never surface to the
// caller.
package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/freightdesk/internal/invoice"
	"github.com/MrJamesThe3rd/freightdesk/internal/payment"
)

type Client struct {
	url      string
	apiToken string
	client   *http.Client
	log      *zap.Logger
	wg       sync.WaitGroup
}

// New returns a mirror client. An empty url disables mirroring.
func New(url, apiToken string, log *zap.Logger) *Client {
	return &Client{
		url:      url,
		apiToken: apiToken,
		client:   &http.Client{Timeout: 10 * time.Second},
		log:      log,
	}
}

type paymentDoc struct {
	ID            string `json:"id"`
	Amount        string `json:"amount"`
	Method        string `json:"method"`
	TransactionID string `json:"transaction_id,omitempty"`
	PaidAt        string `json:"paid_at"`
}

type document struct {
	InvoiceNumber string       `json:"invoice_number"`
	BookingID     string       `json:"booking_id"`
	Total         string       `json:"total"`
	Paid          string       `json:"paid"`
	Remaining     string       `json:"remaining"`
	Status        string       `json:"status"`
	Payments      []paymentDoc `json:"payments"`
}

func newDocument(inv *invoice.Invoice, payments []*payment.Payment) document {
	doc := document{
		InvoiceNumber: inv.Number,
		BookingID:     inv.BookingID.String(),
		Total:         inv.Total.StringFixed(2),
		Paid:          inv.Paid.StringFixed(2),
		Remaining:     inv.Remaining.StringFixed(2),
		Status:        string(inv.Status),
		Payments:      make([]paymentDoc, 0, len(payments)),
	}

	for _, p := range payments {
		pd := paymentDoc{
			ID:     p.ID.String(),
			Amount: p.Amount.StringFixed(2),
			Method: string(p.Method),
			PaidAt: p.PaidAt.UTC().Format(time.RFC3339),
		}

		if p.TransactionID != nil {
			pd.TransactionID = *p.TransactionID
		}

		doc.Payments = append(doc.Payments, pd)
	}

	return doc
}

// PublishPayments sends the payments in the background and returns at once.
func (c *Client) PublishPayments(ctx context.Context, inv *invoice.Invoice, payments []*payment.Payment) {
	if c.url == "" || len(payments) == 0 {
		return
	}

	doc := newDocument(inv, payments)

	c.wg.Go(func() {
		if err := c.send(ctx, doc); err != nil {
			c.log.Warn("payment mirror failed",
				zap.String("invoice_number", doc.InvoiceNumber),
				zap.Int("payments", len(doc.Payments)),
				zap.Error(err),
			)
		}
	})
}

// Wait blocks until in-flight deliveries finish.
func (c *Client) Wait() {
	c.wg.Wait()
}

func (c *Client) send(ctx context.Context, doc document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	if c.apiToken != "" {
		req.Header.Set("Authorization", "Token "+c.apiToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	return nil
}
