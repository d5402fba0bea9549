package document

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/document.html
var documentTemplate string

var funcs = template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
	"percent": func(d decimal.Decimal) string {
		return d.Mul(decimal.NewFromInt(100)).StringFixed(0) + "%"
	},
	"date": func(t time.Time) string { return t.Format("2006-01-02") },
	"title": func(lang, s string) string {
		tag, err := language.Parse(lang)
		if err != nil {
			tag = language.English
		}

		return cases.Title(tag).String(s)
	},
}

var tmpl = template.Must(template.New("document").Funcs(funcs).Parse(documentTemplate))

// HTML renders the snapshot as a standalone printable page.
func HTML(s Snapshot) ([]byte, error) {
	if s.Language == "" {
		s.Language = "en"
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, s); err != nil {
		return nil, fmt.Errorf("executing document template: %w", err)
	}

	return buf.Bytes(), nil
}
