package document_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/freightdesk/internal/document"
)

func sampleSnapshot() document.Snapshot {
	return document.Snapshot{
		Kind:     document.KindDeal,
		Language: "en",
		Number:   "INV-000042",
		Customer: document.Party{Name: "Acme <Freight>", TaxID: "PT123"},
		Provider: &document.Party{Name: "Road Runner Haulage"},
		Items: []document.LineItem{{
			Description: "Container haul",
			Quantity:    1,
			UnitPrice:   decimal.RequireFromString("1000"),
			Total:       decimal.RequireFromString("1000"),
		}},
		Subtotal:  decimal.RequireFromString("1000"),
		Tax:       new(decimal.RequireFromString("180")),
		TaxRate:   decimal.RequireFromString("0.18"),
		Total:     decimal.RequireFromString("1180"),
		Paid:      decimal.Zero,
		Remaining: decimal.RequireFromString("1180"),
		Status:    "pending",
		IssuedAt:  time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		DueDate:   time.Date(2026, 4, 9, 0, 0, 0, 0, time.UTC),
	}
}

func TestHTML(t *testing.T) {
	out, err := document.HTML(sampleSnapshot())
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, "Deal INV-000042")
	assert.Contains(t, html, "Acme &lt;Freight&gt;")
	assert.Contains(t, html, "Tax (18%)")
	assert.Contains(t, html, "1180.00")
	assert.Contains(t, html, "Due 2026-04-09")
	assert.Contains(t, html, "Road Runner Haulage")
}

func TestHTML_WithoutTax(t *testing.T) {
	s := sampleSnapshot()
	s.Tax = nil
	s.Provider = nil

	out, err := document.HTML(s)
	require.NoError(t, err)

	assert.NotContains(t, string(out), "Tax (")
	assert.NotContains(t, string(out), "Carrier")
}

func TestSnapshot_Filename(t *testing.T) {
	assert.Equal(t, "deal/inv-000042.pdf", sampleSnapshot().Filename())
}

func TestDisabled(t *testing.T) {
	_, err := document.Disabled{}.Render(context.Background(), sampleSnapshot())
	assert.ErrorIs(t, err, document.ErrRenderFailed)
}
