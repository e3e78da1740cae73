package curator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-curator/pkg/catalog"
	"content-curator/pkg/config"
	"content-curator/pkg/content"
	"content-curator/pkg/domain"
	"content-curator/pkg/video"
)

var fixedNow = time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type fakeVideos struct {
	meta        *video.Metadata
	err         error
	transcript  string
	resolves    int
	transcripts int
}

func (f *fakeVideos) Resolve(_ context.Context, ref string) (*video.Metadata, error) {
	f.resolves++
	if f.err != nil {
		return nil, f.err
	}
	if _, err := video.ExtractID(ref); err != nil {
		return nil, err
	}
	m := *f.meta
	return &m, nil
}

func (f *fakeVideos) Transcript(_ context.Context, _ string) (string, bool) {
	f.transcripts++
	return f.transcript, f.transcript != ""
}

type fakeArticles struct {
	article *content.Article
	err     error
	calls   int
}

func (f *fakeArticles) Extract(_ context.Context, rawURL string) (*content.Article, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	a := *f.article
	a.ID = content.ContentID(rawURL)
	a.URL = rawURL
	return &a, nil
}

type failingArtifacts struct{}

func (failingArtifacts) Save(context.Context, string, string) (string, error) {
	return "", errors.New("disk full")
}

func newStore(t *testing.T) catalog.Store {
	t.Helper()
	store, err := catalog.OpenBackend(context.Background(), config.Catalog{
		Backend:    config.BackendSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "catalog.db"),
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleMeta() *video.Metadata {
	return &video.Metadata{
		ID:       "abcDEFghijK",
		Title:    "Gătit simplu",
		Channel:  "ChefRo",
		WatchURL: "https://www.youtube.com/watch?v=abcDEFghijK",
		EmbedURL: "https://www.youtube.com/embed/abcDEFghijK",
	}
}

func sampleArticle() *content.Article {
	return &content.Article{
		Title:    "Istoria Bucureștiului",
		Body:     "Bucureștiul este capitala României.",
		Authors:  []string{"Ion Popescu"},
		Language: "ro",
	}
}

func listAll(t *testing.T, store catalog.Store) []domain.ContentRecord {
	t.Helper()
	all, err := store.ListAll(context.Background())
	require.NoError(t, err)
	return all
}

func TestCurateVideoEndToEnd(t *testing.T) {
	var oembedHits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/oembed", func(w http.ResponseWriter, r *http.Request) {
		oembedHits.Add(1)
		assert.Contains(t, r.URL.Query().Get("url"), "v=abcDEFghijK")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"title":"Gătit simplu","author_name":"ChefRo"}`)
	})
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><script>var ytInitialPlayerResponse = {"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[{"baseUrl":"/api/timedtext?lang=en","languageCode":"en"}]}}};</script></html>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	resolver := video.NewResolver(video.Config{
		OEmbedURL: srv.URL + "/oembed",
		WatchBase: srv.URL + "/watch",
	}, nil)
	store := newStore(t)
	artifacts := content.NewArtifactStore(t.TempDir())
	c := New(store, resolver, &fakeArticles{}, artifacts, WithClock(fixedClock))

	out, err := c.Curate(context.Background(), Request{
		URL:   "https://youtube.com/watch?v=abcDEFghijK",
		Level: "A2",
		Tags:  []string{"cooking", "food"},
		Kind:  domain.ContentTypeVideoLink,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusInserted, out.Status)
	assert.Equal(t, int32(1), oembedHits.Load())

	stored, err := store.Get(context.Background(), "abcDEFghijK")
	require.NoError(t, err)
	assert.Equal(t, domain.ContentTypeVideoLink, stored.Type)
	assert.Equal(t, "Gătit simplu", stored.Title)
	require.NotNil(t, stored.EmbedURL)
	assert.Equal(t, "https://www.youtube.com/embed/abcDEFghijK", *stored.EmbedURL)
	assert.Equal(t, domain.LevelA2, stored.Level)
	assert.Nil(t, stored.Duration)
	assert.Nil(t, stored.Transcript)
	assert.Equal(t, "cooking,food", domain.JoinTags(stored.Tags))
	require.NotNil(t, stored.Channel)
	assert.Equal(t, "ChefRo", *stored.Channel)
	assert.True(t, fixedNow.Equal(stored.CreatedAt))
}

func TestCurateVideoAttachesTranscript(t *testing.T) {
	store := newStore(t)
	videos := &fakeVideos{meta: sampleMeta(), transcript: "Bună ziua"}
	c := New(store, videos, &fakeArticles{}, content.NewArtifactStore(t.TempDir()), WithClock(fixedClock))

	out, err := c.Curate(context.Background(), Request{URL: "abcDEFghijK", Level: "B1", Kind: domain.ContentTypeVideoLink})
	require.NoError(t, err)
	require.NotNil(t, out.Record.Transcript)
	assert.Equal(t, "Bună ziua", *out.Record.Transcript)
	assert.Equal(t, []string{}, out.Record.Tags)
	assert.Empty(t, out.ArtifactPath)
}

func TestCurateDuplicateLeavesCatalogUnchanged(t *testing.T) {
	store := newStore(t)
	videos := &fakeVideos{meta: sampleMeta()}
	c := New(store, videos, &fakeArticles{}, content.NewArtifactStore(t.TempDir()), WithClock(fixedClock))
	req := Request{URL: "https://youtu.be/abcDEFghijK", Level: "A2", Tags: []string{"cooking"}, Kind: domain.ContentTypeVideoLink}

	first, err := c.Curate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, StatusInserted, first.Status)

	videos.meta.Title = "Renamed"
	later := New(store, videos, &fakeArticles{}, content.NewArtifactStore(t.TempDir()),
		WithClock(func() time.Time { return fixedNow.Add(time.Hour) }))
	second, err := later.Curate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, StatusDuplicate, second.Status)

	all := listAll(t, store)
	require.Len(t, all, 1)
	assert.Equal(t, "Gătit simplu", all[0].Title)
	assert.True(t, fixedNow.Equal(all[0].CreatedAt))
}

func TestCurateInvalidLevelHasNoSideEffects(t *testing.T) {
	store := newStore(t)
	videos := &fakeVideos{meta: sampleMeta()}
	articles := &fakeArticles{article: sampleArticle()}
	dir := t.TempDir()
	c := New(store, videos, articles, content.NewArtifactStore(dir))

	for _, level := range []string{"", "a2", "D1", "C3"} {
		_, err := c.Curate(context.Background(), Request{URL: "https://example.com/a", Level: level, Kind: domain.ContentTypeText})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidLevel)
		assert.Equal(t, domain.KindInvalidLevel, domain.KindOf(err))
	}
	_, err := c.Curate(context.Background(), Request{URL: "abcDEFghijK", Level: "Z", Kind: domain.ContentTypeVideoLink})
	require.Error(t, err)

	assert.Zero(t, videos.resolves)
	assert.Zero(t, articles.calls)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, listAll(t, store))
}

func TestCurateResolverFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		ref  string
		kind domain.FailureKind
	}{
		{"metadata unavailable", fmt.Errorf("%w: 404", domain.ErrMetadataUnavailable), "abcDEFghijK", domain.KindMetadataUnavailable},
		{"invalid reference", nil, "https://example.com/nope", domain.KindInvalidReference},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStore(t)
			c := New(store, &fakeVideos{meta: sampleMeta(), err: tt.err}, &fakeArticles{}, content.NewArtifactStore(t.TempDir()))

			out, err := c.Curate(context.Background(), Request{URL: tt.ref, Level: "A1", Kind: domain.ContentTypeVideoLink})
			require.Error(t, err)
			assert.Nil(t, out)

			var failure *domain.Failure
			require.ErrorAs(t, err, &failure)
			assert.Equal(t, tt.kind, failure.Kind)
			assert.Empty(t, listAll(t, store))
		})
	}
}

func TestCurateText(t *testing.T) {
	store := newStore(t)
	dir := t.TempDir()
	c := New(store, &fakeVideos{}, &fakeArticles{article: sampleArticle()}, content.NewArtifactStore(dir), WithClock(fixedClock))

	rawURL := "https://ro.example.org/istoria-bucurestiului"
	out, err := c.Curate(context.Background(), Request{URL: rawURL, Level: "B2", Tags: []string{"istorie"}})
	require.NoError(t, err)
	assert.Equal(t, StatusInserted, out.Status)

	rec := out.Record
	assert.Equal(t, "256e566d86d3", rec.ID)
	assert.Equal(t, domain.ContentTypeText, rec.Type)
	assert.Equal(t, rawURL, rec.SourceURL)
	assert.Nil(t, rec.EmbedURL)
	assert.Nil(t, rec.Channel)
	assert.Nil(t, rec.Duration)
	require.NotNil(t, rec.Transcript)
	assert.Equal(t, "Bucureștiul este capitala României.", *rec.Transcript)

	assert.Equal(t, filepath.Join(dir, "256e566d86d3.txt"), out.ArtifactPath)
	data, err := os.ReadFile(out.ArtifactPath)
	require.NoError(t, err)
	assert.Equal(t, *rec.Transcript, string(data))

	stored, err := store.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec, stored)
}

func TestCurateTextExtractionFailureLeavesCatalogUnchanged(t *testing.T) {
	store := newStore(t)
	dir := t.TempDir()
	articles := &fakeArticles{err: fmt.Errorf("%w: status 404", domain.ErrExtractionFailure)}
	c := New(store, &fakeVideos{}, articles, content.NewArtifactStore(dir))

	_, err := c.Curate(context.Background(), Request{URL: "https://example.com/gone", Level: "C1", Kind: domain.ContentTypeText})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtractionFailure)
	assert.Equal(t, domain.KindExtractionFailure, domain.KindOf(err))

	assert.Empty(t, listAll(t, store))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCurateArtifactFailureIsInternal(t *testing.T) {
	store := newStore(t)
	c := New(store, &fakeVideos{}, &fakeArticles{article: sampleArticle()}, failingArtifacts{})

	_, err := c.Curate(context.Background(), Request{URL: "https://example.com/a", Level: "A1", Kind: domain.ContentTypeText})
	require.Error(t, err)
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
	assert.Empty(t, listAll(t, store))
}

func TestCurateUnknownKind(t *testing.T) {
	c := New(newStore(t), &fakeVideos{}, &fakeArticles{}, failingArtifacts{})
	_, err := c.Curate(context.Background(), Request{URL: "https://example.com/a", Level: "A1", Kind: "podcast"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidRecord)
}

func TestPlan(t *testing.T) {
	store := newStore(t)
	c := New(store, &fakeVideos{meta: sampleMeta()}, &fakeArticles{article: sampleArticle()}, content.NewArtifactStore(t.TempDir()), WithClock(fixedClock))
	ctx := context.Background()

	_, err := c.Curate(ctx, Request{URL: "https://www.youtube.com/watch?v=abcDEFghijK", Level: "A2"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		req    Request
		action PlanAction
		id     string
	}{
		{"duplicate video", Request{URL: "https://youtu.be/abcDEFghijK", Level: "A2"}, PlanDuplicate, "abcDEFghijK"},
		{"new video", Request{URL: "https://youtu.be/dQw4w9WgXcQ", Level: "A2"}, PlanInsert, "dQw4w9WgXcQ"},
		{"new text", Request{URL: "https://example.com/article", Level: "B1"}, PlanInsert, "141fbc787408"},
		{"bad level", Request{URL: "https://example.com/article", Level: "b1"}, PlanInvalid, ""},
		{"bad video", Request{URL: "https://www.youtube.com/watch?v=short", Level: "B1"}, PlanInvalid, ""},
		{"bad kind", Request{URL: "https://example.com/x", Level: "B1", Kind: "podcast"}, PlanInvalid, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := c.Plan(ctx, tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.action, plan.Action)
			assert.Equal(t, tt.id, plan.ID)
			if tt.action == PlanInvalid {
				assert.NotEmpty(t, plan.Reason)
			}
		})
	}
}

func TestInferKind(t *testing.T) {
	assert.Equal(t, domain.ContentTypeVideoLink, InferKind("https://www.youtube.com/watch?v=abcDEFghijK"))
	assert.Equal(t, domain.ContentTypeVideoLink, InferKind("https://youtu.be/abcDEFghijK"))
	assert.Equal(t, domain.ContentTypeVideoLink, InferKind("https://m.youtube.com/watch?v=abcDEFghijK"))
	assert.Equal(t, domain.ContentTypeText, InferKind("https://digi24.ro/stiri/actualitate"))
	assert.Equal(t, domain.ContentTypeText, InferKind("abcDEFghijK"))
}
