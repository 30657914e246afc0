package jobs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/robfig/cron/v3"
)

// ErrJobNotFound is returned by RunNow for an unknown job name
var ErrJobNotFound = errors.New("job not found")

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Job interface that all scheduled jobs must implement
type Job interface {
	Run(ctx context.Context) error
}

// Schedule is a five-field cron expression evaluated in a timezone
type Schedule struct {
	Cron     string
	Timezone string
}

// Validate checks the cron expression and timezone
func (s Schedule) Validate() error {
	if _, err := cronParser.Parse(s.Cron); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", s.Cron, err)
	}
	if _, err := time.LoadLocation(s.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", s.Timezone, err)
	}
	return nil
}

// NextAfter returns the first activation strictly after t
func (s Schedule) NextAfter(t time.Time) (time.Time, error) {
	sched, err := cronParser.Parse(s.Cron)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cron expression %q: %w", s.Cron, err)
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q: %w", s.Timezone, err)
	}
	return sched.Next(t.In(loc)), nil
}

func (s Schedule) withTZ() string {
	// CRON_TZ=America/Chicago 0 5 * * *
	return fmt.Sprintf("CRON_TZ=%s %s", s.Timezone, s.Cron)
}

type registeredJob struct {
	job      Job
	schedule Schedule
	lastRun  time.Time
	lastErr  error
	running  bool
}

// JobScheduler manages and runs scheduled jobs on top of gocron
type JobScheduler struct {
	scheduler gocron.Scheduler
	jobs      map[string]*registeredJob
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	running   bool
	drain     time.Duration
	now       func() time.Time
}

// NewJobScheduler creates a new job scheduler. Stop waits up to drain for
// in-flight runs before cancelling them; zero cancels immediately.
func NewJobScheduler(drain time.Duration) (*JobScheduler, error) {
	opts := []gocron.SchedulerOption{gocron.WithLocation(time.UTC)}
	if drain > 0 {
		opts = append(opts, gocron.WithStopTimeout(drain))
	}
	scheduler, err := gocron.NewScheduler(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &JobScheduler{
		scheduler: scheduler,
		jobs:      make(map[string]*registeredJob),
		ctx:       ctx,
		cancel:    cancel,
		drain:     drain,
		now:       time.Now,
	}, nil
}

// Register adds a job to the scheduler
func (s *JobScheduler) Register(name string, job Job, schedule Schedule) error {
	if err := schedule.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("cannot register %s: scheduler already started", name)
	}

	s.jobs[name] = &registeredJob{job: job, schedule: schedule}
	log.Printf("✅ [SCHEDULER] Registered job: %s (cron: %s, tz: %s)", name, schedule.Cron, schedule.Timezone)
	return nil
}

// Start registers every job with gocron and begins running them
func (s *JobScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	for name, rj := range s.jobs {
		if _, err := s.scheduler.NewJob(
			gocron.CronJob(rj.schedule.withTZ(), false),
			gocron.NewTask(func() {
				s.runJob(name)
			}),
			gocron.WithName(name),
			// a run still in flight when the next tick fires skips that tick
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		); err != nil {
			return fmt.Errorf("failed to create job %s: %w", name, err)
		}

		next, _ := rj.schedule.NextAfter(s.now())
		log.Printf("⏰ [SCHEDULER] Job '%s' scheduled to run at %s (in %v)",
			name, next.Format(time.RFC3339), time.Until(next).Round(time.Second))
	}

	s.scheduler.Start()
	s.running = true
	log.Printf("🚀 [SCHEDULER] Started job scheduler with %d jobs", len(s.jobs))
	return nil
}

// runJob executes a job and records its outcome
func (s *JobScheduler) runJob(name string) {
	s.mu.Lock()
	rj, exists := s.jobs[name]
	if !exists || rj.running {
		s.mu.Unlock()
		if exists {
			log.Printf("⏭️  [SCHEDULER] Job '%s' still running, skipping", name)
		}
		return
	}
	rj.running = true
	s.wg.Add(1)
	s.mu.Unlock()

	defer s.wg.Done()

	log.Printf("▶️  [SCHEDULER] Running job: %s", name)
	startTime := s.now()

	err := rj.job.Run(s.ctx)
	if err != nil {
		log.Printf("❌ [SCHEDULER] Job '%s' failed: %v", name, err)
	} else {
		log.Printf("✅ [SCHEDULER] Job '%s' completed in %v", name, time.Since(startTime))
	}

	s.mu.Lock()
	rj.running = false
	rj.lastRun = startTime
	rj.lastErr = err
	s.mu.Unlock()
}

// Stop stops scheduling, gives in-flight runs up to the drain period to
// finish, then cancels whatever is left and waits for it
func (s *JobScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	log.Println("🛑 [SCHEDULER] Stopping job scheduler...")
	s.running = false
	s.mu.Unlock()

	if err := s.scheduler.Shutdown(); err != nil {
		log.Printf("⚠️  [SCHEDULER] Shutdown error: %v", err)
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(s.drain):
		log.Printf("⚠️  [SCHEDULER] Runs still in flight after %v, cancelling", s.drain)
		s.cancel()
		<-done
	}
	s.cancel()

	log.Println("✅ [SCHEDULER] Job scheduler stopped")
}

// RunNow runs a specific job immediately, outside its schedule
func (s *JobScheduler) RunNow(name string) error {
	s.mu.Lock()
	_, exists := s.jobs[name]
	s.mu.Unlock()

	if !exists {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}

	log.Printf("🚀 [SCHEDULER] Running job '%s' immediately", name)
	s.runJob(name)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[name].lastErr
}

// GetStatus returns the status of all jobs
func (s *JobScheduler) GetStatus() map[string]JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	status := make(map[string]JobStatus, len(s.jobs))
	for name, rj := range s.jobs {
		st := JobStatus{
			Name:       name,
			Cron:       rj.schedule.Cron,
			Timezone:   rj.schedule.Timezone,
			Registered: true,
			Running:    rj.running,
		}
		if next, err := rj.schedule.NextAfter(now); err == nil {
			st.NextRunTime = next
		}
		if !rj.lastRun.IsZero() {
			last := rj.lastRun
			st.LastRunTime = &last
		}
		if rj.lastErr != nil {
			st.LastError = rj.lastErr.Error()
		}
		status[name] = st
	}

	return status
}

// JobStatus represents the status of a job
type JobStatus struct {
	Name        string     `json:"name"`
	Cron        string     `json:"cron"`
	Timezone    string     `json:"timezone"`
	NextRunTime time.Time  `json:"next_run_time"`
	LastRunTime *time.Time `json:"last_run_time,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
	Running     bool       `json:"running"`
	Registered  bool       `json:"registered"`
}
