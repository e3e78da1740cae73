// Package ingest feeds many URLs through the curation pipeline: URL lists,
// RSS/Atom feeds, sitemaps and JSON batch files.
package ingest

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"content-curator/pkg/curator"
	"content-curator/pkg/domain"
	"content-curator/pkg/logging"
)

// ItemStatus is the per-URL result of a run.
type ItemStatus string

const (
	ItemInserted    ItemStatus = "inserted"
	ItemDuplicate   ItemStatus = "duplicate"
	ItemFailed      ItemStatus = "failed"
	ItemWouldInsert ItemStatus = "would_insert"
)

// ItemResult reports one curated URL.
type ItemResult struct {
	URL    string             `json:"url"`
	ID     string             `json:"id,omitempty"`
	Title  string             `json:"title,omitempty"`
	Status ItemStatus         `json:"status"`
	Kind   domain.FailureKind `json:"failure_kind,omitempty"`
	Error  string             `json:"error,omitempty"`
}

// Summary aggregates a run. Discovered and Skipped are only set for feed runs.
type Summary struct {
	Discovered int          `json:"discovered,omitempty"`
	Skipped    int          `json:"skipped,omitempty"`
	Inserted   int          `json:"inserted"`
	Duplicates int          `json:"duplicates"`
	Failed     int          `json:"failed"`
	Planned    int          `json:"would_insert,omitempty"`
	Items      []ItemResult `json:"items"`
}

func (s *Summary) add(item ItemResult) {
	switch item.Status {
	case ItemInserted:
		s.Inserted++
	case ItemDuplicate:
		s.Duplicates++
	case ItemWouldInsert:
		s.Planned++
	default:
		s.Failed++
	}
	s.Items = append(s.Items, item)
}

// Curator is the part of curator.Curator an Ingester drives.
type Curator interface {
	Planner
	Curate(ctx context.Context, req curator.Request) (*curator.Outcome, error)
}

// Ingester runs curation requests sequentially.
type Ingester struct {
	curator Curator
	sources []Source
	logger  *zap.Logger
}

// New builds an Ingester. Sources are tried in order when discovering a feed
// location; the first one that yields entries wins.
func New(c Curator, sources []Source, logger *zap.Logger) *Ingester {
	return &Ingester{curator: c, sources: sources, logger: logging.OrNop(logger)}
}

// FeedRequest describes a bulk run over a discovered URL list.
type FeedRequest struct {
	Location string
	// Kind applies to every discovered URL. Empty infers it per URL.
	Kind  domain.ContentType
	Level string
	Tags  []string
	// Max caps how many new URLs are curated. Zero means no cap.
	Max    int
	DryRun bool
}

// IngestFeed discovers URLs at req.Location, drops site roots, repeats and
// already catalogued ids, then curates the rest one at a time.
func (i *Ingester) IngestFeed(ctx context.Context, req FeedRequest) (*Summary, error) {
	if _, err := domain.ParseLevel(req.Level); err != nil {
		return nil, domain.NewFailure(err)
	}
	if req.Kind != "" {
		kind, err := domain.ParseContentType(string(req.Kind))
		if err != nil {
			return nil, domain.NewFailure(fmt.Errorf("%w: %v", domain.ErrInvalidRecord, err))
		}
		req.Kind = kind
	}

	entries, err := i.discover(ctx, req.Location)
	if err != nil {
		return nil, err
	}

	kept, err := FilterEntries(ctx, entries,
		NewRootURLFilter(),
		NewSeenFilter(),
		NewCatalogFilter(i.curator, req.Kind),
	)
	if err != nil {
		return nil, err
	}
	if req.Max > 0 && len(kept) > req.Max {
		kept = kept[:req.Max]
	}

	summary := &Summary{
		Discovered: len(entries),
		Skipped:    len(entries) - len(kept),
		Items:      make([]ItemResult, 0, len(kept)),
	}
	i.logger.Info("curating discovered URLs",
		zap.String("location", req.Location),
		zap.Int("discovered", len(entries)),
		zap.Int("selected", len(kept)))

	for n, entry := range kept {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		item := i.curateOne(ctx, curator.Request{
			URL:   entry.URL,
			Level: req.Level,
			Tags:  req.Tags,
			Kind:  req.Kind,
		}, req.DryRun)
		if item.Title == "" {
			item.Title = entry.Title
		}
		i.logProgress(n+1, len(kept), item)
		summary.add(item)
	}
	return summary, nil
}

func (i *Ingester) discover(ctx context.Context, location string) ([]Entry, error) {
	if len(i.sources) == 0 {
		return nil, fmt.Errorf("no sources configured")
	}
	var errs []error
	for _, src := range i.sources {
		entries, err := src.Fetch(ctx, location)
		if err == nil {
			i.logger.Debug("source matched", zap.String("source", src.Name()), zap.Int("entries", len(entries)))
			return entries, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
	}
	return nil, fmt.Errorf("no source could read %s: %w", location, errors.Join(errs...))
}

func (i *Ingester) curateOne(ctx context.Context, req curator.Request, dryRun bool) ItemResult {
	item := ItemResult{URL: req.URL}

	if dryRun {
		plan, err := i.curator.Plan(ctx, req)
		if err != nil {
			item.Status, item.Kind, item.Error = ItemFailed, domain.KindOf(err), err.Error()
			return item
		}
		item.ID = plan.ID
		switch plan.Action {
		case curator.PlanInsert:
			item.Status = ItemWouldInsert
		case curator.PlanDuplicate:
			item.Status = ItemDuplicate
		default:
			item.Status, item.Error = ItemFailed, plan.Reason
		}
		return item
	}

	outcome, err := i.curator.Curate(ctx, req)
	if err != nil {
		item.Status, item.Kind, item.Error = ItemFailed, domain.KindOf(err), err.Error()
		return item
	}
	item.ID = outcome.Record.ID
	item.Title = outcome.Record.Title
	if outcome.Status == curator.StatusDuplicate {
		item.Status = ItemDuplicate
	} else {
		item.Status = ItemInserted
	}
	return item
}

func (i *Ingester) logProgress(n, total int, item ItemResult) {
	fields := []zap.Field{
		zap.String("progress", fmt.Sprintf("%d/%d", n, total)),
		zap.String("url", item.URL),
		zap.String("status", string(item.Status)),
	}
	if item.Error != "" {
		i.logger.Warn("item failed", append(fields, zap.String("error", item.Error))...)
		return
	}
	i.logger.Info("item processed", fields...)
}
