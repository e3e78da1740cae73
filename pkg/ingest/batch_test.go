package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-curator/pkg/curator"
	"content-curator/pkg/domain"
)

func TestParseBatch(t *testing.T) {
	items, err := ParseBatch([]byte(`[
		{"type":"video","url":"https://youtu.be/abcDEFghijK","level":"A2","tags":["gatit"]},
		{"type":"text","url":"https://ro.example.org/a","level":"B1"}
	]`))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, domain.ContentTypeVideoLink, items[0].Request().Kind)
	assert.Equal(t, []string{"gatit"}, items[0].Request().Tags)
	assert.Equal(t, domain.ContentTypeText, items[1].Request().Kind)

	items, err = ParseBatch([]byte(`  {"type":"youtube","youtubeUrl":"https://youtu.be/abcDEFghijK","level":"C1"}`))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "https://youtu.be/abcDEFghijK", items[0].Request().URL)
	assert.Equal(t, domain.ContentTypeVideoLink, items[0].Request().Kind)

	for _, bad := range []string{"", "   ", "[", `{"type":`, `"text"`} {
		_, err := ParseBatch([]byte(bad))
		assert.Error(t, err, bad)
	}
}

func TestBatchKind(t *testing.T) {
	assert.Equal(t, domain.ContentType(""), batchKind(""))
	assert.Equal(t, domain.ContentTypeVideoLink, batchKind("Video"))
	assert.Equal(t, domain.ContentTypeText, batchKind("article"))
	assert.Equal(t, domain.ContentType("podcast"), batchKind("podcast"))
}

func TestLoadBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"url":"https://youtu.be/abcDEFghijK","level":"A1"}`), 0o644))

	items, err := LoadBatch(path)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Empty(t, items[0].Request().Kind)
	assert.Equal(t, domain.ContentTypeVideoLink, curator.InferKind(items[0].Request().URL))

	_, err = LoadBatch(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestRunBatchContinuesPastFailures(t *testing.T) {
	s := newSite(t)
	h := newHarness(t)
	items := []BatchItem{
		{Type: "video", URL: "https://www.youtube.com/watch?v=abcDEFghijK", Level: "A2"},
		{Type: "text", URL: s.server.URL + "/cartofi", Level: "B2", Tags: []string{"mancare"}},
		{Type: "video", URL: "https://youtu.be/abcDEFghijK", Level: "A2"},
		{Type: "text", URL: s.server.URL + "/missing", Level: "B2"},
		{Type: "video", URL: "https://youtu.be/zzzzzzzzzzz", Level: "Z9"},
		{Type: "podcast", URL: "https://ro.example.org/p", Level: "A1"},
	}

	summary, err := h.ingester.RunBatch(context.Background(), items, false)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Inserted)
	assert.Equal(t, 1, summary.Duplicates)
	assert.Equal(t, 3, summary.Failed)
	assert.Equal(t, ItemDuplicate, summary.Items[2].Status)
	assert.Equal(t, domain.KindInvalidLevel, summary.Items[4].Kind)
	assert.Equal(t, 2, h.count(t))
}

func TestRunBatchDryRun(t *testing.T) {
	s := newSite(t)
	h := newHarness(t)
	items := []BatchItem{
		{Type: "video", URL: "https://youtu.be/abcDEFghijK", Level: "A2"},
		{Type: "text", URL: s.server.URL + "/cartofi", Level: "B2"},
		{Type: "text", URL: s.server.URL + "/cartofi", Level: "Z2"},
	}

	summary, err := h.ingester.RunBatch(context.Background(), items, true)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Planned)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, "abcDEFghijK", summary.Items[0].ID)
	assert.Equal(t, 0, h.count(t))
	assert.Equal(t, int32(0), s.pages.Load())
}

func TestRunBatchStopsOnCancel(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := h.ingester.RunBatch(ctx, []BatchItem{{URL: "https://youtu.be/abcDEFghijK", Level: "A1"}}, false)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, summary.Items)
}
