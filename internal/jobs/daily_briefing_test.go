package jobs

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"dailybriefing/internal/models"
)

func TestDailyBriefingJob_Run(t *testing.T) {
	tests := []struct {
		name    string
		result  models.RunResult
		wantErr bool
	}{
		{"success", models.NewSuccessResult("January 13, 2026", "id-1"), false},
		{"failure", models.NewFailureResult("January 13, 2026", errors.New("API Error")), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotTrigger string
			job := NewDailyBriefingJob(func(ctx context.Context, trigger string) models.RunResult {
				gotTrigger = trigger
				return tt.result
			}, 0)

			err := job.Run(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("Run() error = %v, wantErr %v", err, tt.wantErr)
			}
			if gotTrigger != "schedule" {
				t.Errorf("trigger = %q", gotTrigger)
			}

			last, at := job.LastResult()
			if last == nil || last.StatusCode != tt.result.StatusCode || at.IsZero() {
				t.Errorf("LastResult() = %v, %v", last, at)
			}
		})
	}
}

func TestDailyBriefingJob_Timeout(t *testing.T) {
	var hasDeadline bool
	job := NewDailyBriefingJob(func(ctx context.Context, trigger string) models.RunResult {
		_, hasDeadline = ctx.Deadline()
		return models.NewSuccessResult("d", "")
	}, time.Minute)

	if _, err := job.Trigger(context.Background(), "api"); err != nil {
		t.Fatal(err)
	}
	if !hasDeadline {
		t.Error("run context should carry the configured timeout")
	}
}

func TestDailyBriefingJob_RejectsOverlap(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	job := NewDailyBriefingJob(func(ctx context.Context, trigger string) models.RunResult {
		close(started)
		<-release
		return models.NewSuccessResult("d", "")
	}, 0)

	done := make(chan models.RunResult)
	go func() {
		result, _ := job.Trigger(context.Background(), "schedule")
		done <- result
	}()
	<-started

	if _, err := job.Trigger(context.Background(), "api"); !errors.Is(err, ErrRunInProgress) {
		t.Errorf("overlapping Trigger() error = %v, want ErrRunInProgress", err)
	}

	close(release)
	if result := <-done; result.StatusCode != http.StatusOK {
		t.Errorf("first run StatusCode = %d", result.StatusCode)
	}
}
