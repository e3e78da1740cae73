package ingest

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"content-curator/pkg/curator"
	"content-curator/pkg/domain"
)

// Filter decides whether a discovered URL should be curated.
type Filter interface {
	ShouldKeep(ctx context.Context, url string) (bool, error)
}

// FilterEntries applies all filters to entries, in order.
func FilterEntries(ctx context.Context, entries []Entry, filters ...Filter) ([]Entry, error) {
	filtered := make([]Entry, 0, len(entries))

	for _, entry := range entries {
		keep := true
		for _, f := range filters {
			shouldKeep, err := f.ShouldKeep(ctx, entry.URL)
			if err != nil {
				return nil, fmt.Errorf("filter error for URL %s: %w", entry.URL, err)
			}
			if !shouldKeep {
				keep = false
				break
			}
		}
		if keep {
			filtered = append(filtered, entry)
		}
	}

	return filtered, nil
}

// RootURLFilter drops site roots such as https://example.com/.
type RootURLFilter struct{}

func NewRootURLFilter() *RootURLFilter {
	return &RootURLFilter{}
}

func (f *RootURLFilter) ShouldKeep(_ context.Context, urlStr string) (bool, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		// Unparseable URLs are kept and fail during curation.
		return true, nil
	}
	return strings.Trim(parsed.Path, "/") != "", nil
}

// SeenFilter drops URLs already passed earlier in the same run.
type SeenFilter struct {
	seen map[string]bool
}

func NewSeenFilter() *SeenFilter {
	return &SeenFilter{seen: make(map[string]bool)}
}

func (f *SeenFilter) ShouldKeep(_ context.Context, urlStr string) (bool, error) {
	if f.seen[urlStr] {
		return false, nil
	}
	f.seen[urlStr] = true
	return true, nil
}

// Planner previews a curation request without network access.
type Planner interface {
	Plan(ctx context.Context, req curator.Request) (*curator.Plan, error)
}

// CatalogFilter drops URLs whose derived record id is already catalogued.
type CatalogFilter struct {
	planner Planner
	kind    domain.ContentType
}

// NewCatalogFilter checks URLs as records of kind. An empty kind is inferred
// per URL.
func NewCatalogFilter(planner Planner, kind domain.ContentType) *CatalogFilter {
	return &CatalogFilter{planner: planner, kind: kind}
}

func (f *CatalogFilter) ShouldKeep(ctx context.Context, urlStr string) (bool, error) {
	// Any valid level works here; only the id matters.
	plan, err := f.planner.Plan(ctx, curator.Request{URL: urlStr, Kind: f.kind, Level: string(domain.LevelA1)})
	if err != nil {
		return false, err
	}
	return plan.Action != curator.PlanDuplicate, nil
}
