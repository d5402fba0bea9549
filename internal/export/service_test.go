package export

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/freightdesk/internal/deal"
	"github.com/MrJamesThe3rd/freightdesk/internal/invoice"
)

type dealsFunc func(ctx context.Context, filter deal.ListFilter) ([]*deal.Deal, error)

func (f dealsFunc) List(ctx context.Context, filter deal.ListFilter) ([]*deal.Deal, error) {
	return f(ctx, filter)
}

func TestService_Export(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Token test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		switch r.URL.Path {
		case "/deal/inv-000001.pdf":
			w.Header().Set("Content-Type", "application/pdf")
			w.Header().Set("Content-Disposition", `attachment; filename="invoice 1.pdf"`)
			w.Write([]byte("fake pdf content"))
		case "/deal/inv-000002.pdf":
			w.Header().Set("Content-Type", "application/pdf")
			w.Write([]byte("fake pdf content"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer ts.Close()

	created := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	d1 := &deal.Deal{ID: uuid.New(), InvoiceNumber: "INV-000001", CreatedAt: created, PDFURL: new(ts.URL + "/deal/inv-000001.pdf")}
	d2 := &deal.Deal{ID: uuid.New(), InvoiceNumber: "INV-000002", CreatedAt: created, PDFURL: new(ts.URL + "/deal/inv-000002.pdf")}
	d3 := &deal.Deal{ID: uuid.New(), InvoiceNumber: "INV-000003", CreatedAt: created}

	start := created.AddDate(0, 0, -7)

	svc := NewService(dealsFunc(func(_ context.Context, filter deal.ListFilter) ([]*deal.Deal, error) {
		require.NotNil(t, filter.StartDate)
		assert.True(t, start.Equal(*filter.StartDate))

		return []*deal.Deal{d1, d2, d3}, nil
	}), "test-token")

	dir := t.TempDir()

	items, err := svc.Export(context.Background(), deal.ListFilter{StartDate: &start}, dir)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Same(t, d1, items[0].Deal)
	assert.Equal(t, "invoice_1.pdf", filepath.Base(items[0].FilePath))

	content, err := os.ReadFile(items[0].FilePath)
	require.NoError(t, err)
	assert.Equal(t, "fake pdf content", string(content))

	assert.Equal(t, "20260302_INV-000002.pdf", filepath.Base(items[1].FilePath))
	assert.Empty(t, items[2].FilePath)
}

func TestService_Export_DownloadFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	d := &deal.Deal{ID: uuid.New(), InvoiceNumber: "INV-000001", PDFURL: new(ts.URL + "/x.pdf")}

	svc := NewService(dealsFunc(func(context.Context, deal.ListFilter) ([]*deal.Deal, error) {
		return []*deal.Deal{d}, nil
	}), "")

	_, err := svc.Export(context.Background(), deal.ListFilter{}, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code 403")
}

func TestService_Export_ListFailure(t *testing.T) {
	svc := NewService(dealsFunc(func(context.Context, deal.ListFilter) ([]*deal.Deal, error) {
		return nil, errors.New("db down")
	}), "")

	_, err := svc.Export(context.Background(), deal.ListFilter{}, t.TempDir())
	require.ErrorContains(t, err, "listing deals")
}

func TestService_GenerateSummary(t *testing.T) {
	s := &Service{}

	created := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	items := []Item{
		{
			Deal: &deal.Deal{
				CreatedAt:     created,
				InvoiceNumber: "INV-000001",
				Total:         decimal.RequireFromString("118"),
				Status:        invoice.StatusPaid,
			},
			FilePath: "/tmp/inv-000001.pdf",
		},
		{
			Deal: &deal.Deal{
				CreatedAt:     created,
				InvoiceNumber: "INV-000002",
				Total:         decimal.RequireFromString("12.5"),
				Status:        invoice.StatusPending,
			},
		},
	}

	body := s.GenerateSummary(items)

	assert.Contains(t, body, "* 2026-03-02 | INV-000001 | 118.00 € | paid | inv-000001.pdf\n")
	assert.Contains(t, body, "* 2026-03-02 | INV-000002 | 12.50 € | pending | no document\n")
}

func TestWriteZip(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.pdf"), []byte("A"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, SummaryFile), []byte("summary"), 0o644))

	var buf bytes.Buffer
	require.NoError(t, WriteZip(&buf, dir))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	files := map[string]string{}

	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)

		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()

		files[f.Name] = string(data)
	}

	assert.Equal(t, map[string]string{"a.pdf": "A", SummaryFile: "summary"}, files)
}
