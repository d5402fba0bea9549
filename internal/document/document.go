package document

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrRenderFailed is returned when a PDF could not be produced. The caller
// may retry later.
var ErrRenderFailed = errors.New("document rendering failed")

type Kind string

const (
	KindDeal    Kind = "deal"
	KindReceipt Kind = "receipt"
)

type Party struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	TaxID   string `json:"tax_id,omitempty"`
}

type LineItem struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

// Snapshot is everything a rendered document shows. It is built once from
// persisted state and never read back from the renderer.
type Snapshot struct {
	Kind      Kind             `json:"kind"`
	Language  string           `json:"language"`
	Number    string           `json:"number"`
	Customer  Party            `json:"customer"`
	Provider  *Party           `json:"provider,omitempty"`
	Items     []LineItem       `json:"items"`
	Subtotal  decimal.Decimal  `json:"subtotal"`
	Tax       *decimal.Decimal `json:"tax,omitempty"`
	TaxRate   decimal.Decimal  `json:"tax_rate"`
	Total     decimal.Decimal  `json:"total"`
	Paid      decimal.Decimal  `json:"paid"`
	Remaining decimal.Decimal  `json:"remaining"`
	Status    string           `json:"status"`
	IssuedAt  time.Time        `json:"issued_at"`
	DueDate   time.Time        `json:"due_date"`
}

// Filename is the object name a rendered snapshot is stored under.
func (s Snapshot) Filename() string {
	return fmt.Sprintf("%s/%s.pdf", s.Kind, strings.ToLower(s.Number))
}

// Renderer turns a snapshot into a PDF and returns where it can be fetched.
type Renderer interface {
	Render(ctx context.Context, s Snapshot) (string, error)
}

// Disabled is the renderer used when no PDF backend is configured.
type Disabled struct{}

func (Disabled) Render(context.Context, Snapshot) (string, error) {
	return "", fmt.Errorf("%w: pdf rendering is disabled", ErrRenderFailed)
}
