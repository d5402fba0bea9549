package importer

import (
	"github.com/MrJamesThe3rd/freightdesk/internal/importer/statement"
	"github.com/MrJamesThe3rd/freightdesk/internal/payment"
)

// LineStatus is what happened to one statement line.
type LineStatus string

const (
	// LineMatched means the line was matched to an invoice but not applied
	// because the import was a preview.
	LineMatched   LineStatus = "matched"
	LineApplied   LineStatus = "applied"
	LineDuplicate LineStatus = "duplicate"
	LineUnmatched LineStatus = "unmatched"
	LineDebit     LineStatus = "debit"
	LineFailed    LineStatus = "failed"
)

// MatchSource tells how a line was tied to its invoice.
type MatchSource string

const (
	MatchInvoiceNumber MatchSource = "invoice_number"
	MatchMapping       MatchSource = "mapping"
)

type LineResult struct {
	Line          statement.Line
	Status        LineStatus
	TransactionID string
	InvoiceNumber string
	MatchedBy     MatchSource
	Outcome       payment.Outcome
	Error         string
}

type Report struct {
	Profile string
	Charset string
	Lines   []LineResult
}

func (r *Report) Count(status LineStatus) int {
	n := 0

	for _, l := range r.Lines {
		if l.Status == status {
			n++
		}
	}

	return n
}
