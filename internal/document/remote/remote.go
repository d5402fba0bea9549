// Package remote renders documents through an external PDF service.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/MrJamesThe3rd/freightdesk/internal/document"
)

type Client struct {
	url    string
	client *http.Client
}

// New returns a renderer posting snapshots to url. Deadlines come from the
// caller's context.
func New(url string) *Client {
	return &Client{url: url, client: &http.Client{}}
}

type renderResponse struct {
	PDFURL string `json:"pdf_url"`
}

func (c *Client) Render(ctx context.Context, s document.Snapshot) (string, error) {
	body, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encoding snapshot: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", document.ErrRenderFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: status %d: %s", document.ErrRenderFailed, resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out renderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decoding response: %w", document.ErrRenderFailed, err)
	}

	if out.PDFURL == "" {
		return "", fmt.Errorf("%w: response has no pdf_url", document.ErrRenderFailed)
	}

	return out.PDFURL, nil
}
