package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-curator/pkg/catalog"
	"content-curator/pkg/config"
	"content-curator/pkg/content"
	"content-curator/pkg/curator"
	"content-curator/pkg/domain"
	"content-curator/pkg/httpclient"
	"content-curator/pkg/video"
)

type stubVideos struct{}

func (stubVideos) Resolve(_ context.Context, ref string) (*video.Metadata, error) {
	id, err := video.ExtractID(ref)
	if err != nil {
		return nil, err
	}
	return &video.Metadata{
		ID:       id,
		Title:    "Video " + id,
		Channel:  "Canal",
		WatchURL: "https://www.youtube.com/watch?v=" + id,
		EmbedURL: "https://www.youtube.com/embed/" + id,
	}, nil
}

func (stubVideos) Transcript(context.Context, string) (string, bool) { return "", false }

func articlePage(title string) string {
	return `<html lang="ro"><head><title>` + title + `</title></head><body><article>
<h1>` + title + `</h1>
<p>Acesta este primul paragraf al articolului despre ` + title + `. Textul este suficient de lung pentru a fi considerat conținut principal de către extractor.</p>
<p>Al doilea paragraf continuă povestea cu mai multe detalii despre oraș, oameni, tradiții și istoria locului, astfel încât cititorul să aibă ce citi.</p>
<p>Ultimul paragraf încheie articolul și mulțumește cititorilor pentru atenția acordată acestui material educațional.</p>
</article></body></html>`
}

// site serves a sitemap plus article pages.
type site struct {
	server *httptest.Server
	hits   atomic.Int32
	pages  atomic.Int32
}

func newSite(t *testing.T, paths ...string) *site {
	t.Helper()
	s := &site{}
	mux := http.NewServeMux()
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		var b strings.Builder
		b.WriteString(`<urlset>`)
		b.WriteString(`<url><loc>` + s.server.URL + `/</loc></url>`)
		for _, p := range paths {
			fmt.Fprintf(&b, `<url><loc>%s/%s</loc></url>`, s.server.URL, p)
		}
		b.WriteString(`</urlset>`)
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, b.String())
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		s.pages.Add(1)
		name := strings.Trim(r.URL.Path, "/")
		if name == "" || name == "missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, articlePage(name))
	})
	s.server = httptest.NewServer(mux)
	t.Cleanup(s.server.Close)
	return s
}

type harness struct {
	store    catalog.Store
	ingester *Ingester
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store, err := catalog.OpenBackend(context.Background(), config.Catalog{
		Backend:    config.BackendSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "catalog.db"),
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	cur := curator.New(store, stubVideos{}, content.NewExtractor(content.Config{}, nil),
		content.NewArtifactStore(filepath.Join(t.TempDir(), "text")))
	client := httpclient.NewClient(httpclient.BrowserClient)
	return &harness{store: store, ingester: New(cur, DefaultSources(client, nil), nil)}
}

func (h *harness) count(t *testing.T) int {
	t.Helper()
	all, err := h.store.ListAll(context.Background())
	require.NoError(t, err)
	return len(all)
}

func TestIngestFeedFromSitemap(t *testing.T) {
	s := newSite(t, "cafea", "ceai", "cafea", "missing")
	h := newHarness(t)
	ctx := context.Background()

	summary, err := h.ingester.IngestFeed(ctx, FeedRequest{
		Location: s.server.URL + "/sitemap.xml",
		Kind:     domain.ContentTypeText,
		Level:    "B1",
		Tags:     []string{"bauturi"},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Discovered)
	assert.Equal(t, 2, summary.Skipped, "root and repeat")
	assert.Equal(t, 2, summary.Inserted)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Items, 3)
	assert.Equal(t, domain.KindExtractionFailure, summary.Items[2].Kind)
	assert.Equal(t, 2, h.count(t))

	rec, err := h.store.Get(ctx, content.ContentID(s.server.URL+"/cafea"))
	require.NoError(t, err)
	assert.Equal(t, domain.LevelB1, rec.Level)
	assert.Equal(t, []string{"bauturi"}, rec.Tags)

	again, err := h.ingester.IngestFeed(ctx, FeedRequest{
		Location: s.server.URL + "/sitemap.xml",
		Kind:     domain.ContentTypeText,
		Level:    "B1",
	})
	require.NoError(t, err)
	assert.Equal(t, 4, again.Skipped, "catalogued ids are skipped")
	assert.Equal(t, 0, again.Inserted)
	assert.Equal(t, 2, h.count(t))
}

func TestIngestFeedMax(t *testing.T) {
	s := newSite(t, "unu", "doi", "trei")
	h := newHarness(t)

	summary, err := h.ingester.IngestFeed(context.Background(), FeedRequest{
		Location: s.server.URL + "/sitemap.xml",
		Level:    "A2",
		Max:      2,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Inserted)
	assert.Equal(t, 2, h.count(t))
}

func TestIngestFeedDryRunWritesNothing(t *testing.T) {
	s := newSite(t, "unu", "doi")
	h := newHarness(t)

	summary, err := h.ingester.IngestFeed(context.Background(), FeedRequest{
		Location: s.server.URL + "/sitemap.xml",
		Level:    "A2",
		DryRun:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Planned)
	assert.Equal(t, 0, h.count(t))
	assert.Equal(t, int32(0), s.pages.Load(), "only the sitemap is fetched")
}

func TestIngestFeedRejectsBadInputBeforeFetching(t *testing.T) {
	s := newSite(t, "unu")
	h := newHarness(t)

	_, err := h.ingester.IngestFeed(context.Background(), FeedRequest{Location: s.server.URL + "/sitemap.xml", Level: "D1"})
	assert.ErrorIs(t, err, domain.ErrInvalidLevel)

	_, err = h.ingester.IngestFeed(context.Background(), FeedRequest{Location: s.server.URL + "/sitemap.xml", Level: "A1", Kind: "podcast"})
	assert.Error(t, err)
	assert.Equal(t, int32(0), s.hits.Load())
}

func TestIngestFeedUnreadableLocation(t *testing.T) {
	h := newHarness(t)
	_, err := h.ingester.IngestFeed(context.Background(), FeedRequest{Location: filepath.Join(t.TempDir(), "nope.txt"), Level: "A1"})
	assert.ErrorContains(t, err, "no source could read")
}

func TestRootAndSeenFilters(t *testing.T) {
	entries := []Entry{
		{URL: "https://ro.example.org/"},
		{URL: "https://ro.example.org/a"},
		{URL: "https://ro.example.org"},
		{URL: "https://ro.example.org/a"},
		{URL: "https://ro.example.org/b/"},
	}
	kept, err := FilterEntries(context.Background(), entries, NewRootURLFilter(), NewSeenFilter())
	require.NoError(t, err)
	assert.Equal(t, []Entry{{URL: "https://ro.example.org/a"}, {URL: "https://ro.example.org/b/"}}, kept)
}
