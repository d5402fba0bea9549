// Package export collects the PDF documents of invoice deals for a period.
package export

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/freightdesk/internal/deal"
)

const SummaryFile = "summary.txt"

type DealLister interface {
	List(ctx context.Context, filter deal.ListFilter) ([]*deal.Deal, error)
}

// Item is one exported deal with its local file path, empty when the deal
// has no document yet.
type Item struct {
	Deal     *deal.Deal
	FilePath string
}

type Service struct {
	deals    DealLister
	client   *http.Client
	apiToken string
}

func NewService(deals DealLister, apiToken string) *Service {
	return &Service{
		deals:    deals,
		client:   &http.Client{Timeout: 30 * time.Second},
		apiToken: apiToken,
	}
}

// Export downloads the documents of the deals matching filter to outputDir.
func (s *Service) Export(ctx context.Context, filter deal.ListFilter, outputDir string) ([]Item, error) {
	deals, err := s.deals.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing deals: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	items := make([]Item, 0, len(deals))

	for _, d := range deals {
		item := Item{Deal: d}

		if d.PDFURL != nil && *d.PDFURL != "" {
			path, err := s.download(ctx, d, outputDir)
			if err != nil {
				return nil, fmt.Errorf("downloading document for deal %s: %w", d.ID, err)
			}

			item.FilePath = path
		}

		items = append(items, item)
	}

	return items, nil
}

func (s *Service) download(ctx context.Context, d *deal.Deal, dir string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, *d.PDFURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	if s.apiToken != "" {
		req.Header.Set("Authorization", "Token "+s.apiToken)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code %d for url %s", resp.StatusCode, *d.PDFURL)
	}

	path := filepath.Join(dir, filename(resp, d))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}

	return path, nil
}

func filename(resp *http.Response, d *deal.Deal) string {
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			if name, ok := params["filename"]; ok && name != "" {
				return strings.ReplaceAll(filepath.Base(name), " ", "_")
			}
		}
	}

	ext := ".pdf"

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if exts, _ := mime.ExtensionsByType(ct); len(exts) > 0 {
			ext = exts[0]
		}
	}

	safe := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}

		return '_'
	}, d.InvoiceNumber)

	// YYYYMMDD_INV-000001.pdf
	return fmt.Sprintf("%s_%s%s", d.CreatedAt.Format("20060102"), safe, ext)
}

// GenerateSummary lists the exported deals one per line, suitable for an
// email to the accountant.
func (s *Service) GenerateSummary(items []Item) string {
	var sb strings.Builder

	for _, item := range items {
		file := "no document"
		if item.FilePath != "" {
			file = filepath.Base(item.FilePath)
		}

		fmt.Fprintf(&sb, "* %s | %s | %s € | %s | %s\n",
			item.Deal.CreatedAt.Format("2006-01-02"),
			item.Deal.InvoiceNumber,
			item.Deal.Total.StringFixed(2),
			item.Deal.Status,
			file,
		)
	}

	return sb.String()
}

// WriteZip archives every file in dir into w.
func WriteZip(w io.Writer, dir string) error {
	zw := zip.NewWriter(w)

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		zf, err := zw.Create(rel)
		if err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		_, err = io.Copy(zf, f)

		return err
	})
	if err != nil {
		_ = zw.Close()
		return fmt.Errorf("archiving %s: %w", dir, err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing archive: %w", err)
	}

	return nil
}
