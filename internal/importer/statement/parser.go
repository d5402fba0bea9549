// Package statement parses bank statement CSV exports into dated, signed
// lines.
package statement

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	enc "github.com/MrJamesThe3rd/freightdesk/internal/encoding"
)

var ErrUnknownFormat = errors.New("no matching statement format found")

// Line is one movement of a statement. Amount is always positive; Credit
// tells money in from money out.
type Line struct {
	Row         int
	Date        time.Time
	Description string
	Reference   string
	Amount      decimal.Decimal
	Credit      bool
}

// Fingerprint identifies the line across re-imports of overlapping
// statements. It is used as the payment transaction id.
func (l Line) Fingerprint() string {
	h := sha256.Sum256([]byte(strings.Join([]string{
		l.Date.Format("2006-01-02"),
		l.Amount.StringFixed(2),
		strings.ToUpper(l.Description),
		l.Reference,
	}, "|")))

	return "stmt-" + hex.EncodeToString(h[:12])
}

// Statement is a parsed file.
type Statement struct {
	Profile string
	Charset string
	Lines   []Line
}

// Parser reads bank CSV exports. It auto-detects the encoding and which
// known layout is used by matching column headers against profiles.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) (*Statement, error) {
	utf8r, charset, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read statement: %w", err)
	}

	for _, comma := range []rune{';', ','} {
		rows, err := readRows(data, comma)
		if err != nil {
			continue
		}

		profile, cols, headerIdx := detectProfile(rows, comma)
		if profile == nil {
			continue
		}

		lines, err := parseRows(profile, cols, rows[headerIdx+1:], headerIdx)
		if err != nil {
			return nil, err
		}

		return &Statement{Profile: profile.Name, Charset: charset, Lines: lines}, nil
	}

	return nil, ErrUnknownFormat
}

func readRows(data []byte, comma rune) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	return rows, nil
}

// colIndex maps column names to their index in the row.
type colIndex map[string]int

// detectProfile scans rows for a header that matches a known profile.
// Returns the matched profile, column index map, and header row index.
func detectProfile(rows [][]string, comma rune) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.TrimSpace(cell)
			if name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if profiles[i].Comma == comma && matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows extracts lines from data rows using the matched profile.
// headerRowNum is the 0-based index of the header in the original file.
func parseRows(p *Profile, cols colIndex, rows [][]string, headerRowNum int) ([]Line, error) {
	dateIdx := cols[p.DateCol]
	descIdx := cols[p.DescCol]

	refIdx := -1
	if idx, ok := cols[p.RefCol]; ok && p.RefCol != "" {
		refIdx = idx
	}

	var lines []Line

	for i, row := range rows {
		rowNum := headerRowNum + i + 2 // 1-based, skipping header

		date, ok := parseDate(row, dateIdx, p.DateLayout)
		if !ok {
			continue
		}

		desc := cellValue(row, descIdx)
		if desc == "" {
			return nil, fmt.Errorf("row %d: missing description", rowNum)
		}

		amount, credit, ok := lineAmount(p, cols, row)
		if !ok {
			continue
		}

		lines = append(lines, Line{
			Row:         rowNum,
			Date:        date,
			Description: desc,
			Reference:   cellValue(row, refIdx),
			Amount:      amount,
			Credit:      credit,
		})
	}

	return lines, nil
}

// parseDate returns false for empty or unparseable cells (footer rows etc).
func parseDate(row []string, idx int, layout string) (time.Time, bool) {
	s := cellValue(row, idx)
	if s == "" {
		return time.Time{}, false
	}

	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

func lineAmount(p *Profile, cols colIndex, row []string) (decimal.Decimal, bool, bool) {
	switch p.AmountMode {
	case amountSingle:
		return singleAmount(row, cols[p.AmountCol], p.DecimalComma)
	case amountSplit:
		return splitAmount(row, cols[p.DebitCol], cols[p.CreditCol], p.DecimalComma)
	}

	return decimal.Zero, false, false
}

func singleAmount(row []string, idx int, decimalComma bool) (decimal.Decimal, bool, bool) {
	s := cellValue(row, idx)
	if s == "" {
		return decimal.Zero, false, false
	}

	d, err := parseAmount(s, decimalComma)
	if err != nil || d.IsZero() {
		return decimal.Zero, false, false
	}

	return d.Abs(), d.IsPositive(), true
}

func splitAmount(row []string, debitIdx, creditIdx int, decimalComma bool) (decimal.Decimal, bool, bool) {
	if s := cellValue(row, debitIdx); s != "" {
		d, err := parseAmount(s, decimalComma)
		if err == nil && !d.IsZero() {
			return d.Abs(), false, true
		}
	}

	if s := cellValue(row, creditIdx); s != "" {
		d, err := parseAmount(s, decimalComma)
		if err == nil && !d.IsZero() {
			return d.Abs(), true, true
		}
	}

	return decimal.Zero, false, false
}

// cellValue safely gets a trimmed cell value from a row.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
