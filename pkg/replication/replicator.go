// Package replication copies catalog records between backends, for example
// from a local SQLite catalog to Supabase.
package replication

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"content-curator/pkg/catalog"
	"content-curator/pkg/domain"
	"content-curator/pkg/logging"
)

const (
	defaultBatchSize = 100
	defaultWorkers   = 5
	progressEvery    = 1000
)

// Config wires the replication dependencies.
type Config struct {
	Source catalog.Store
	Target catalog.Store

	// BatchSize and Workers default to 100 and 5.
	BatchSize int
	Workers   int
	Logger    *zap.Logger
}

// Result counts what a run did. Skipped records already existed in the target.
type Result struct {
	Processed int `json:"processed"`
	Inserted  int `json:"inserted"`
	Skipped   int `json:"skipped"`
}

// Replicator performs a one-shot, copy-everything replication. Records are
// written with insert-if-absent, so reruns are safe and never overwrite.
type Replicator struct {
	source    catalog.Store
	target    catalog.Store
	batchSize int
	workers   int
	logger    *zap.Logger
}

func NewReplicator(cfg Config) (*Replicator, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("source catalog is required")
	}
	if cfg.Target == nil {
		return nil, fmt.Errorf("target catalog is required")
	}
	r := &Replicator{
		source:    cfg.Source,
		target:    cfg.Target,
		batchSize: cfg.BatchSize,
		workers:   cfg.Workers,
		logger:    logging.OrNop(cfg.Logger),
	}
	if r.batchSize <= 0 {
		r.batchSize = defaultBatchSize
	}
	if r.workers <= 0 {
		r.workers = defaultWorkers
	}
	return r, nil
}

// Replicate reads every record from the source and inserts the ones the
// target lacks. The first insert error aborts the run.
func (r *Replicator) Replicate(ctx context.Context) (Result, error) {
	records, err := r.source.ListAll(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("read source catalog: %w", err)
	}

	r.logger.Info("loaded source records", zap.Int("count", len(records)))

	result, err := r.processBatches(ctx, records)
	if err != nil {
		return result, err
	}

	r.logger.Info("replication complete",
		zap.Int("processed", result.Processed),
		zap.Int("inserted", result.Inserted),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

// processBatches fans batches out to workers and fails fast on error.
func (r *Replicator) processBatches(ctx context.Context, records []domain.ContentRecord) (Result, error) {
	type batchJob struct {
		batch      []domain.ContentRecord
		start, end int
	}
	type batchResult struct {
		inserted, skipped int
		err               error
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	numBatches := (len(records) + r.batchSize - 1) / r.batchSize
	jobs := make(chan batchJob, numBatches)
	results := make(chan batchResult, numBatches)

	for start := 0; start < len(records); start += r.batchSize {
		end := min(start+r.batchSize, len(records))
		jobs <- batchJob{batch: records[start:end], start: start, end: end}
	}
	close(jobs)

	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				inserted, skipped, err := r.processBatch(ctx, job.batch, job.start, job.end)
				results <- batchResult{inserted: inserted, skipped: skipped, err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var total Result
	var firstErr error
	for res := range results {
		total.Inserted += res.inserted
		total.Skipped += res.skipped
		total.Processed = total.Inserted + total.Skipped
		if res.err != nil && firstErr == nil {
			firstErr = res.err
			cancel()
		}
		if total.Processed%progressEvery == 0 && total.Processed > 0 {
			r.logger.Info("replication progress",
				zap.Int("processed", total.Processed),
				zap.Int("total", len(records)),
				zap.Int("inserted", total.Inserted))
		}
	}
	return total, firstErr
}

func (r *Replicator) processBatch(ctx context.Context, batch []domain.ContentRecord, start, end int) (int, int, error) {
	r.logger.Debug("processing batch", zap.Int("start", start), zap.Int("end", end))

	inserted, skipped := 0, 0
	for i := range batch {
		if err := ctx.Err(); err != nil {
			return inserted, skipped, err
		}
		res, err := r.target.Insert(ctx, &batch[i])
		if err != nil {
			return inserted, skipped, fmt.Errorf("insert %s (batch [%d:%d]): %w", batch[i].ID, start, end, err)
		}
		if res == catalog.Inserted {
			inserted++
		} else {
			skipped++
		}
	}
	return inserted, skipped, nil
}
