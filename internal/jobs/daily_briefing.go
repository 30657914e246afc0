package jobs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"dailybriefing/internal/models"
)

// DailyBriefingJobName is the scheduler name of the briefing job
const DailyBriefingJobName = "daily_briefing"

// ErrRunInProgress is returned when a manual trigger overlaps a running briefing
var ErrRunInProgress = errors.New("a briefing run is already in progress")

// BriefingRunner executes one end-to-end briefing run
type BriefingRunner func(ctx context.Context, trigger string) models.RunResult

// DailyBriefingJob runs the briefing pipeline on schedule or on demand.
// At most one run is in flight at a time.
type DailyBriefingJob struct {
	run     BriefingRunner
	timeout time.Duration

	runMu sync.Mutex

	mu         sync.Mutex
	lastResult *models.RunResult
	lastRunAt  time.Time
}

// NewDailyBriefingJob creates the job. A zero timeout means the run is bounded
// only by the caller's context.
func NewDailyBriefingJob(run BriefingRunner, timeout time.Duration) *DailyBriefingJob {
	return &DailyBriefingJob{run: run, timeout: timeout}
}

// Run is invoked by the scheduler
func (j *DailyBriefingJob) Run(ctx context.Context) error {
	result, err := j.Trigger(ctx, "schedule")
	if err != nil {
		return err
	}
	if !result.OK() {
		return fmt.Errorf("briefing run returned %d: %s", result.StatusCode, result.Body)
	}
	return nil
}

// Trigger runs the briefing now unless another run is in flight
func (j *DailyBriefingJob) Trigger(ctx context.Context, trigger string) (models.RunResult, error) {
	if !j.runMu.TryLock() {
		log.Printf("⏭️  [BRIEFING-JOB] Run requested by %s while another run is in progress", trigger)
		return models.RunResult{}, ErrRunInProgress
	}
	defer j.runMu.Unlock()

	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	startedAt := time.Now()
	result := j.run(ctx, trigger)

	j.mu.Lock()
	j.lastResult = &result
	j.lastRunAt = startedAt
	j.mu.Unlock()

	return result, nil
}

// LastResult returns the most recent run result, if any
func (j *DailyBriefingJob) LastResult() (*models.RunResult, time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lastResult, j.lastRunAt
}
