package statement

// amountMode determines how amounts are extracted from a row.
type amountMode int

const (
	// amountSingle means one signed column (e.g. "Montante" with value "-10,00").
	amountSingle amountMode = iota
	// amountSplit means separate debit and credit columns.
	amountSplit
)

// Profile describes the column layout of one bank's CSV statement export.
// Supporting another bank is adding a Profile to the profiles slice.
type Profile struct {
	Name         string
	Comma        rune
	DateLayout   string
	DecimalComma bool
	DateCol      string
	DescCol      string
	RefCol       string // optional
	AmountMode   amountMode
	AmountCol    string // used when AmountMode == amountSingle
	DebitCol     string // used when AmountMode == amountSplit
	CreditCol    string // used when AmountMode == amountSplit
}

// requiredCols returns the column names that must be present for this profile to match.
func (p Profile) requiredCols() []string {
	cols := []string{p.DateCol, p.DescCol}

	switch p.AmountMode {
	case amountSingle:
		cols = append(cols, p.AmountCol)
	case amountSplit:
		cols = append(cols, p.DebitCol, p.CreditCol)
	}

	return cols
}

// profiles is tried in order during auto-detection. More specific profiles
// come first to avoid false matches.
var profiles = []Profile{
	{
		Name:         "cgd-cartao",
		Comma:        ';',
		DateLayout:   "02-01-2006",
		DecimalComma: true,
		DateCol:      "Data",
		DescCol:      "Descrição",
		AmountMode:   amountSplit,
		DebitCol:     "Débito",
		CreditCol:    "Crédito",
	},
	{
		Name:         "cgd-extrato",
		Comma:        ';',
		DateLayout:   "02-01-2006",
		DecimalComma: true,
		DateCol:      "Data mov.",
		DescCol:      "Descrição",
		AmountMode:   amountSingle,
		AmountCol:    "Movimento",
	},
	{
		Name:         "cgd-conta",
		Comma:        ';',
		DateLayout:   "02-01-2006",
		DecimalComma: true,
		DateCol:      "Data mov.",
		DescCol:      "Descrição",
		AmountMode:   amountSingle,
		AmountCol:    "Montante",
	},
	{
		Name:       "generic-split",
		Comma:      ',',
		DateLayout: "2006-01-02",
		DateCol:    "Date",
		DescCol:    "Description",
		RefCol:     "Reference",
		AmountMode: amountSplit,
		DebitCol:   "Debit",
		CreditCol:  "Credit",
	},
	{
		Name:       "generic",
		Comma:      ',',
		DateLayout: "2006-01-02",
		DateCol:    "Date",
		DescCol:    "Description",
		RefCol:     "Reference",
		AmountMode: amountSingle,
		AmountCol:  "Amount",
	},
}
