package report

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// maxPhotoBytes bounds how much of a delivery URL we are willing to
// embed in a report.
const maxPhotoBytes = 10 << 20

// Fetcher downloads photo bytes so reports can embed them instead of
// linking out to the object store.
type Fetcher struct {
	client *http.Client
	log    *zap.Logger
}

// NewFetcher builds a fetcher with the given per-request timeout.
func NewFetcher(timeout time.Duration, log *zap.Logger) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// Fill downloads each item's photo into Item.Data. Items whose download
// fails keep a nil Data; renderers fall back to the URL for those.
func (f *Fetcher) Fill(ctx context.Context, items []Item) []Item {
	for i := range items {
		data, contentType, err := f.fetch(ctx, items[i].URL)
		if err != nil {
			f.log.Warn("fetch report photo", zap.String("url", items[i].URL), zap.Error(err))
			continue
		}
		items[i].Data = data
		items[i].ContentType = contentType
	}
	return items
}

func (f *Fetcher) fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build photo request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch photo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch photo: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read photo body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" || !strings.HasPrefix(contentType, "image/") {
		contentType = "image/jpeg"
	}
	return data, contentType, nil
}
