package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/UnknownOlympus/locus/internal/metrics"
	"github.com/UnknownOlympus/locus/internal/models"
	"github.com/UnknownOlympus/locus/internal/places"
	"github.com/UnknownOlympus/locus/internal/repository"
	"golang.org/x/time/rate"
)

// Outcome labels for the TaskProcessed metric.
const (
	resultResolved = "resolved"
	resultFailed   = "failed"
)

// Config holds the tuning knobs of the ResolverService.
type Config struct {
	Workers      int           // Number of concurrent workers per batch
	PollInterval time.Duration // Interval between polls for new tasks
	BatchSize    int           // Maximum number of tasks fetched per poll
	MaxAttempts  int           // Tasks that failed this many times are skipped
	RateLimit    float64       // Lookups per second across all workers, 0 disables pacing
}

// ResolverService resolves the place ids attached to tasks into stored addresses.
// It periodically fetches unresolved tasks and fans them out to a pool of workers
// that call the place details lookup and persist the outcome.
type ResolverService struct {
	log          *slog.Logger         // Logger for service activities
	repo         repository.Interface // Task storage
	lookup       places.Lookup        // Place details backend
	metrics      *metrics.Metrics     // Metrics for worker and task accounting
	limiter      *rate.Limiter        // Paces lookups, nil when unlimited
	numWorkers   int                  // Number of concurrent workers
	pollInterval time.Duration        // Interval for polling new tasks
	batchSize    int                  // Tasks fetched per poll
	maxAttempts  int                  // Attempt ceiling passed to the repository
}

// NewResolverService creates a new instance of ResolverService.
func NewResolverService(
	log *slog.Logger,
	repo repository.Interface,
	lookup places.Lookup,
	metrics *metrics.Metrics,
	cfg Config,
) *ResolverService {
	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	return &ResolverService{
		log:          log,
		repo:         repo,
		lookup:       lookup,
		metrics:      metrics,
		limiter:      limiter,
		numWorkers:   max(cfg.Workers, 1),
		pollInterval: cfg.PollInterval,
		batchSize:    cfg.BatchSize,
		maxAttempts:  cfg.MaxAttempts,
	}
}

// Run starts the resolver, which periodically polls for new tasks to resolve.
// It listens for a cancellation signal from the context to gracefully stop the service.
func (rs *ResolverService) Run(ctx context.Context) {
	ticker := time.NewTicker(rs.pollInterval)
	defer ticker.Stop()

	rs.log.InfoContext(ctx, "Place resolver started...")

	for {
		select {
		case <-ctx.Done():
			rs.log.InfoContext(ctx, "Place resolver stopped.")
			return
		case <-ticker.C:
			rs.log.InfoContext(ctx, "Polling for new tasks to resolve...")
			rs.processTasks(ctx)
		}
	}
}

// processTasks fetches one batch of tasks, starts the worker pool and waits for it to drain.
func (rs *ResolverService) processTasks(ctx context.Context) {
	tasks, err := rs.repo.FetchTasksForResolution(ctx, rs.batchSize, rs.maxAttempts)
	if err != nil {
		rs.log.ErrorContext(ctx, "Failed to fetch tasks", "error", err)
		return
	}
	if len(tasks) == 0 {
		rs.log.InfoContext(ctx, "No tasks to process.")
		return
	}

	rs.log.InfoContext(ctx, "Found tasks to process. Starting worker pool.",
		"jobs", len(tasks), "num_workers", rs.numWorkers)

	jobs := make(chan models.Task, len(tasks))
	var wgr sync.WaitGroup

	for i := 1; i <= rs.numWorkers; i++ {
		wgr.Add(1)
		go rs.worker(ctx, i, &wgr, jobs)
	}

	for _, task := range tasks {
		jobs <- task
	}
	close(jobs)

	wgr.Wait()
	rs.log.InfoContext(ctx, "Processing batch finished")
}

func (rs *ResolverService) worker(ctx context.Context, idx int, wg *sync.WaitGroup, jobs <-chan models.Task) {
	defer wg.Done()
	for task := range jobs {
		if rs.limiter != nil {
			if err := rs.limiter.Wait(ctx); err != nil {
				rs.log.DebugContext(ctx, "Worker stopped waiting for its turn", "worker", idx, "error", err)
				return
			}
		}

		rs.metrics.ActiveWorkers.Inc()
		rs.resolve(ctx, idx, task)
		rs.metrics.ActiveWorkers.Dec()
	}
}

// resolve looks up a single task and records the outcome in the repository.
func (rs *ResolverService) resolve(ctx context.Context, idx int, task models.Task) {
	rs.log.DebugContext(ctx, "Processing task", "worker", idx, "task", task.ID)

	resp, err := rs.lookup.GetMapPlace(ctx, task.PlaceID)
	if err != nil {
		rs.log.ErrorContext(ctx, "Failed to look up place", "worker", idx, "task", task.ID, "error", err)
		rs.fail(ctx, idx, task, err.Error())
		return
	}

	okResp, ok := resp.(places.OK)
	if !ok {
		rs.log.WarnContext(ctx, "Place was not resolved",
			"worker", idx, "task", task.ID, "status", resp.Status())
		rs.fail(ctx, idx, task, failureMessage(resp))
		return
	}

	rs.metrics.TaskProcessed.WithLabelValues(resultResolved).Inc()

	if err = rs.repo.UpdateTaskPlace(ctx, task.ID, ResolvedPlace(okResp.Result)); err != nil {
		rs.log.ErrorContext(ctx, "Failed to update place for task", "worker", idx, "task", task.ID, "error", err)
		return
	}
	rs.log.DebugContext(ctx, "Worker successfully processed the task", "worker", idx, "task", task.ID)
}

func (rs *ResolverService) fail(ctx context.Context, idx int, task models.Task, msg string) {
	rs.metrics.TaskProcessed.WithLabelValues(resultFailed).Inc()

	if err := rs.repo.IncrementFailureCount(ctx, task.ID, msg); err != nil {
		rs.log.ErrorContext(ctx, "Could not update failure count for task",
			"worker", idx, "task", task.ID, "error", err)
	}
}

// failureMessage renders a non-OK response as the text stored in resolution_error.
func failureMessage(resp places.Response) string {
	switch r := resp.(type) {
	case places.RequestDenied:
		if r.ErrorMessage != "" {
			return fmt.Sprintf("%s: %s", r.Status(), r.ErrorMessage)
		}
	case places.UnknownError:
		if r.RawStatus != "" && r.RawStatus != string(places.StatusUnknownError) {
			return fmt.Sprintf("%s: %s", r.Status(), r.RawStatus)
		}
	}
	return string(resp.Status())
}

// ResolvedPlace projects a place details result onto the fields stored for a task.
func ResolvedPlace(result places.PlaceResult) models.ResolvedPlace {
	place := models.ResolvedPlace{FormattedAddress: result.FormattedAddress}
	place.City, _ = result.City()
	place.PostalCode, _ = result.PostalCode()
	place.CountryCode, _ = result.CountryCode()

	if result.Geometry != nil {
		place.Coordinates = &models.Coordinates{
			Latitude:  result.Geometry.Location.Lat,
			Longitude: result.Geometry.Location.Lng,
		}
	}

	return place
}
