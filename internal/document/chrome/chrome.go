// Package chrome renders documents with headless Chrome and uploads the PDF.
package chrome

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/freightdesk/internal/document"
)

type Uploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

type Renderer struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	uploader    Uploader
	log         *zap.Logger
}

// New starts a browser allocator. With remoteURL set it attaches to a running
// Chrome instead of launching one.
func New(remoteURL string, uploader Uploader, log *zap.Logger) *Renderer {
	r := &Renderer{uploader: uploader, log: log}

	if remoteURL != "" {
		r.allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), remoteURL)
		return r
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)

	return r
}

func (r *Renderer) Close() {
	r.allocCancel()
}

func (r *Renderer) Render(ctx context.Context, s document.Snapshot) (string, error) {
	html, err := document.HTML(s)
	if err != nil {
		return "", fmt.Errorf("%w: %w", document.ErrRenderFailed, err)
	}

	pdf, err := r.print(ctx, string(html))
	if err != nil {
		return "", fmt.Errorf("%w: printing %s: %w", document.ErrRenderFailed, s.Number, err)
	}

	url, err := r.uploader.Upload(ctx, s.Filename(), pdf, "application/pdf")
	if err != nil {
		return "", fmt.Errorf("%w: %w", document.ErrRenderFailed, err)
	}

	return url, nil
}

func (r *Renderer) print(ctx context.Context, html string) ([]byte, error) {
	browserCtx, cancel := chromedp.NewContext(r.allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			r.log.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer cancel()

	// Tie the browser tab to the caller's deadline.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var pdf []byte

	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}

			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				Do(ctx)
			if err != nil {
				return err
			}

			pdf = data

			return nil
		}),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		return nil, err
	}

	return pdf, nil
}
