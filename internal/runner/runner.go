package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"brickmatch/internal/catalog"
	"brickmatch/internal/config"
	"brickmatch/internal/logging"
	"brickmatch/internal/resolution"
)

// ErrRunActive is returned when another process already holds the run lock.
var ErrRunActive = errors.New("another resolution run is active")

// Resolver produces a resolution outcome for one catalog record.
type Resolver interface {
	Resolve(ctx context.Context, record catalog.Record) resolution.Outcome
}

// Progress is a point-in-time snapshot delivered to the progress callback
// after each processed record.
type Progress struct {
	Processed int
	Total     int
	Found     int
	Current   string
}

// Options tunes a single run.
type Options struct {
	// Limit bounds how many records the run processes. Zero means all
	// pending records.
	Limit int
	// ResumeFromID skips catalog records at or below this id.
	ResumeFromID int64
	// Progress, when set, is invoked after every processed record.
	Progress func(Progress)
}

// Report summarizes a completed or interrupted run.
type Report struct {
	RunID         string
	Processed     int
	Found         int
	NotFound      int
	Multiple      int
	Errors        int
	Duration      time.Duration
	LastCatalogID int64
	Interrupted   bool
}

// Runner drives resolution batches against the store.
type Runner struct {
	store    *resolution.Store
	resolver Resolver
	cfg      *config.Config
	logger   *slog.Logger
	lock     *flock.Flock
}

// New builds a runner. The lock file lives next to the database so two
// processes pointed at the same data directory exclude each other.
func New(store *resolution.Store, resolver Resolver, cfg *config.Config, logger *slog.Logger) *Runner {
	return &Runner{
		store:    store,
		resolver: resolver,
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "runner"),
		lock:     flock.New(filepath.Join(cfg.Paths.DataDir, "brickmatch.lock")),
	}
}

// Run processes pending records in catalog-id order until the limit is
// reached, the queue drains, or the context is cancelled. Cancellation is
// not an error: the run stops after the in-flight record and the report is
// marked interrupted, leaving the cursor position in LastCatalogID.
func (r *Runner) Run(ctx context.Context, opts Options) (*Report, error) {
	release, err := r.acquireLock()
	if err != nil {
		return nil, err
	}
	defer release()

	report := &Report{RunID: uuid.NewString()}
	started := time.Now()
	defer func() { report.Duration = time.Since(started) }()

	total, err := r.pendingTotal(ctx, opts.Limit)
	if err != nil {
		return nil, err
	}

	limiter := newLimiter(r.cfg.Batch.RecordDelayMs)
	cursor := opts.ResumeFromID
	remaining := opts.Limit

	r.logger.Info("run started",
		logging.String("run_id", report.RunID),
		logging.Int("pending", total),
		logging.Int64("resume_from", opts.ResumeFromID))

	for {
		page := r.cfg.Batch.PageSize
		if remaining > 0 && remaining < page {
			page = remaining
		}
		tasks, err := r.store.Pending(ctx, page, cursor)
		if err != nil {
			return report, err
		}
		if len(tasks) == 0 {
			break
		}

		for _, task := range tasks {
			if ctx.Err() != nil {
				report.Interrupted = true
				r.logger.Info("run interrupted",
					logging.String("run_id", report.RunID),
					logging.Int64("last_catalog_id", report.LastCatalogID))
				return report, nil
			}
			if err := limiter.Wait(ctx); err != nil {
				report.Interrupted = true
				return report, nil
			}

			r.processTask(ctx, task, report)
			cursor = task.Catalog.ID
			report.LastCatalogID = task.Catalog.ID

			if opts.Progress != nil {
				opts.Progress(Progress{
					Processed: report.Processed,
					Total:     total,
					Found:     report.Found,
					Current:   task.Catalog.Label(),
				})
			}
			if interrupted := r.pauseIfDue(ctx, report.Processed); interrupted {
				report.Interrupted = true
				return report, nil
			}
		}

		if remaining > 0 {
			remaining -= len(tasks)
			if remaining <= 0 {
				break
			}
		}
	}

	r.logger.Info("run finished",
		logging.String("run_id", report.RunID),
		logging.Int("processed", report.Processed),
		logging.Int("found", report.Found),
		logging.Int("not_found", report.NotFound),
		logging.Int("multiple", report.Multiple),
		logging.Int("errors", report.Errors))
	return report, nil
}

// Retry re-queues not_found records under the attempt cap and runs them
// through the pipeline again, oldest attempt first.
func (r *Runner) Retry(ctx context.Context, limit int) (*Report, error) {
	release, err := r.acquireLock()
	if err != nil {
		return nil, err
	}
	defer release()

	report := &Report{RunID: uuid.NewString()}
	started := time.Now()
	defer func() { report.Duration = time.Since(started) }()

	tasks, err := r.store.NotFound(ctx, limit, r.cfg.Matching.MaxAttempts)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return report, nil
	}

	ids := make([]int64, 0, len(tasks))
	for _, task := range tasks {
		ids = append(ids, task.ResolutionID)
	}
	if err := r.store.ResetToPending(ctx, ids); err != nil {
		return nil, err
	}

	r.logger.Info("retry started",
		logging.String("run_id", report.RunID),
		logging.Int("records", len(tasks)))

	limiter := newLimiter(r.cfg.Batch.RecordDelayMs)
	for _, task := range tasks {
		if ctx.Err() != nil {
			report.Interrupted = true
			return report, nil
		}
		if err := limiter.Wait(ctx); err != nil {
			report.Interrupted = true
			return report, nil
		}
		r.processTask(ctx, task, report)
		report.LastCatalogID = task.Catalog.ID
		if interrupted := r.pauseIfDue(ctx, report.Processed); interrupted {
			report.Interrupted = true
			return report, nil
		}
	}
	return report, nil
}

// processTask resolves one record and persists whatever happened. Errors are
// recorded against the record rather than aborting the batch, so one bad
// record cannot stall the rest of the queue.
func (r *Runner) processTask(ctx context.Context, task resolution.Task, report *Report) {
	outcome := r.resolver.Resolve(ctx, task.Catalog)
	report.Processed++

	err := r.store.SaveOutcome(ctx, task.ResolutionID, outcome)
	if errors.Is(err, resolution.ErrASINConflict) {
		r.logger.Warn("asin already claimed, demoting to ambiguous",
			logging.String("set", task.Catalog.SetNumber),
			logging.String("asin", outcome.MatchedASIN))
		outcome = r.conflictOutcome(task.Catalog, outcome)
		err = r.store.SaveOutcome(ctx, task.ResolutionID, outcome)
	}
	if err != nil {
		report.Errors++
		r.logger.Error("failed to persist outcome",
			logging.String("set", task.Catalog.SetNumber),
			logging.Error(err))
		if recordErr := r.store.RecordError(ctx, task.ResolutionID, err.Error()); recordErr != nil {
			r.logger.Error("failed to record error", logging.Error(recordErr))
		}
		return
	}

	switch outcome.Status {
	case resolution.StatusFound:
		report.Found++
		r.logger.Info("matched",
			logging.String("set", task.Catalog.SetNumber),
			logging.String("asin", outcome.MatchedASIN),
			logging.String("method", string(outcome.Method)),
			logging.Int("confidence", outcome.Confidence))
	case resolution.StatusMultiple:
		report.Multiple++
		r.logger.Info("ambiguous",
			logging.String("set", task.Catalog.SetNumber),
			logging.Int("alternatives", len(outcome.Alternatives)))
	case resolution.StatusNotFound:
		report.NotFound++
		r.logger.Info("no match", logging.String("set", task.Catalog.SetNumber))
	}
}

// conflictOutcome rewrites a found outcome whose ASIN is already claimed by
// another record. The first claimant keeps the match; this record becomes
// ambiguous with the contested ASIN listed first so a human can arbitrate.
func (r *Runner) conflictOutcome(record catalog.Record, outcome resolution.Outcome) resolution.Outcome {
	alternatives := []resolution.Alternative{{
		ASIN:       outcome.MatchedASIN,
		Title:      record.Name,
		Confidence: outcome.Confidence,
	}}
	for _, alt := range outcome.Alternatives {
		if alt.ASIN == outcome.MatchedASIN {
			continue
		}
		alternatives = append(alternatives, alt)
	}
	if limit := r.cfg.Matching.MaxAlternatives; limit > 0 && len(alternatives) > limit {
		alternatives = alternatives[:limit]
	}
	return resolution.Outcome{
		Status:       resolution.StatusMultiple,
		Alternatives: alternatives,
		LastError:    fmt.Sprintf("asin %s already matched to another record", outcome.MatchedASIN),
	}
}

// pauseIfDue sleeps the configured pause between bursts of records. Returns
// true when the context was cancelled during the pause.
func (r *Runner) pauseIfDue(ctx context.Context, processed int) bool {
	every := r.cfg.Batch.PauseEvery
	seconds := r.cfg.Batch.PauseSeconds
	if every <= 0 || seconds <= 0 || processed == 0 || processed%every != 0 {
		return false
	}
	r.logger.Debug("pausing between bursts", logging.Int("processed", processed), logging.Int("seconds", seconds))
	timer := time.NewTimer(time.Duration(seconds) * time.Second)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return true
	case <-timer.C:
		return false
	}
}

func (r *Runner) acquireLock() (func(), error) {
	locked, err := r.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring run lock: %w", err)
	}
	if !locked {
		return nil, ErrRunActive
	}
	return func() {
		if err := r.lock.Unlock(); err != nil {
			r.logger.Warn("failed to release run lock", logging.Error(err))
		}
	}, nil
}

func (r *Runner) pendingTotal(ctx context.Context, limit int) (int, error) {
	summary, err := r.store.Summary(ctx)
	if err != nil {
		return 0, err
	}
	total := summary.Counts[resolution.StatusPending]
	if limit > 0 && limit < total {
		total = limit
	}
	return total, nil
}

func newLimiter(delayMs int) *rate.Limiter {
	if delayMs <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Duration(delayMs)*time.Millisecond), 1)
}
