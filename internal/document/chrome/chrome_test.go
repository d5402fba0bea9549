package chrome_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/freightdesk/internal/document"
	"github.com/MrJamesThe3rd/freightdesk/internal/document/chrome"
)

type uploader struct {
	calls int
}

func (u *uploader) Upload(context.Context, string, []byte, string) (string, error) {
	u.calls++
	return "https://files.example.com/x.pdf", nil
}

func TestRenderer_UnreachableBrowser(t *testing.T) {
	up := &uploader{}

	r := chrome.New("ws://127.0.0.1:1/devtools/browser/none", up, zap.NewNop())
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := r.Render(ctx, document.Snapshot{Kind: document.KindDeal, Number: "INV-000001"})

	assert.ErrorIs(t, err, document.ErrRenderFailed)
	assert.Zero(t, up.calls)
}
