package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"content-curator/pkg/curator"
	"content-curator/pkg/domain"
)

// BatchItem is one entry of a batch file.
type BatchItem struct {
	// Type is video, video_link, youtube, text or article. Empty infers it
	// from the URL.
	Type string `json:"type"`
	URL  string `json:"url"`
	// YouTubeURL is accepted as an alias of URL for video items.
	YouTubeURL string   `json:"youtubeUrl,omitempty"`
	Title      string   `json:"title,omitempty"`
	Level      string   `json:"level"`
	Tags       []string `json:"tags,omitempty"`
}

// LoadBatch reads a batch file holding either a JSON array of items or a
// single item object.
func LoadBatch(path string) ([]BatchItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read batch file: %w", err)
	}
	return ParseBatch(data)
}

// ParseBatch decodes batch file contents.
func ParseBatch(data []byte) ([]BatchItem, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("batch file is empty")
	}

	if trimmed[0] == '[' {
		var items []BatchItem
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decode batch array: %w", err)
		}
		return items, nil
	}

	var item BatchItem
	if err := json.Unmarshal(trimmed, &item); err != nil {
		return nil, fmt.Errorf("decode batch item: %w", err)
	}
	return []BatchItem{item}, nil
}

// Request converts the item to a curation request.
func (b BatchItem) Request() curator.Request {
	url := strings.TrimSpace(b.URL)
	if url == "" {
		url = strings.TrimSpace(b.YouTubeURL)
	}
	return curator.Request{
		URL:   url,
		Level: b.Level,
		Tags:  b.Tags,
		Kind:  batchKind(b.Type),
	}
}

func batchKind(t string) domain.ContentType {
	if strings.TrimSpace(t) == "" {
		return ""
	}
	kind, err := domain.ParseContentType(t)
	if err != nil {
		// The curator rejects unknown kinds per item.
		return domain.ContentType(t)
	}
	return kind
}

// RunBatch curates items in file order. With dryRun, nothing is fetched or
// written; each item is only checked against the catalog. One failing item
// never stops the run.
func (i *Ingester) RunBatch(ctx context.Context, items []BatchItem, dryRun bool) (*Summary, error) {
	summary := &Summary{Items: make([]ItemResult, 0, len(items))}
	for n, b := range items {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		item := i.curateOne(ctx, b.Request(), dryRun)
		if item.Title == "" {
			item.Title = b.Title
		}
		i.logProgress(n+1, len(items), item)
		summary.add(item)
	}
	return summary, nil
}
