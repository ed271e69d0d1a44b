package badger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/timshannon/badgerhold/v4"

	"github.com/tomclarkson/marketlens/internal/common"
	"github.com/tomclarkson/marketlens/internal/models"
)

type jobRunStore struct {
	store  *Store
	logger *common.Logger
}

// NewJobRunStore creates a new JobRunStore backed by BadgerHold.
func NewJobRunStore(store *Store, logger *common.Logger) *jobRunStore {
	return &jobRunStore{store: store, logger: logger}
}

func (s *jobRunStore) Create(_ context.Context, run *models.JobRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.Status == "" {
		run.Status = models.JobStatusPending
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	if err := s.store.db.Insert(run.ID, run); err != nil {
		return fmt.Errorf("failed to create job run: %w", err)
	}
	s.logger.Debug().Str("id", run.ID).Str("type", run.JobType).Str("ticker", run.Ticker).Msg("Job run created")
	return nil
}

func (s *jobRunStore) Start(ctx context.Context, id string) error {
	run, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	run.Status = models.JobStatusRunning
	run.StartedAt = time.Now()
	if err := s.store.db.Update(id, run); err != nil {
		return fmt.Errorf("failed to start job run '%s': %w", id, err)
	}
	return nil
}

func (s *jobRunStore) Complete(ctx context.Context, id string, jobErr error, durationMS int64) error {
	run, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	run.Status = models.JobStatusCompleted
	if jobErr != nil {
		run.Status = models.JobStatusFailed
		run.Error = jobErr.Error()
	}
	run.CompletedAt = time.Now()
	run.DurationMS = durationMS
	if err := s.store.db.Update(id, run); err != nil {
		return fmt.Errorf("failed to complete job run '%s': %w", id, err)
	}
	s.logger.Debug().Str("id", id).Str("status", run.Status).Int64("duration_ms", durationMS).Msg("Job run completed")
	return nil
}

func (s *jobRunStore) Get(_ context.Context, id string) (*models.JobRun, error) {
	var run models.JobRun
	err := s.store.db.Get(id, &run)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("job run '%s' not found", id)
		}
		return nil, fmt.Errorf("failed to get job run '%s': %w", id, err)
	}
	return &run, nil
}

func (s *jobRunStore) List(_ context.Context, limit int) ([]*models.JobRun, error) {
	var runs []models.JobRun
	if err := s.store.db.Find(&runs, nil); err != nil {
		return nil, fmt.Errorf("failed to list job runs: %w", err)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	result := make([]*models.JobRun, len(runs))
	for i := range runs {
		result[i] = &runs[i]
	}
	return result, nil
}

func (s *jobRunStore) ListByTicker(_ context.Context, ticker string) ([]*models.JobRun, error) {
	var runs []models.JobRun
	if err := s.store.db.Find(&runs, badgerhold.Where("Ticker").Eq(ticker)); err != nil {
		return nil, fmt.Errorf("failed to list job runs for '%s': %w", ticker, err)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	result := make([]*models.JobRun, len(runs))
	for i := range runs {
		result[i] = &runs[i]
	}
	return result, nil
}

func (s *jobRunStore) PurgeCompleted(_ context.Context, olderThan time.Time) (int, error) {
	var runs []models.JobRun
	query := badgerhold.Where("Status").In(models.JobStatusCompleted, models.JobStatusFailed)
	if err := s.store.db.Find(&runs, query); err != nil {
		return 0, fmt.Errorf("failed to find completed job runs: %w", err)
	}

	count := 0
	for _, run := range runs {
		if run.CompletedAt.After(olderThan) {
			continue
		}
		if err := s.store.db.Delete(run.ID, models.JobRun{}); err != nil {
			return count, fmt.Errorf("failed to delete job run '%s': %w", run.ID, err)
		}
		count++
	}
	s.logger.Debug().Int("count", count).Msg("Purged completed job runs")
	return count, nil
}
