package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is a unit of scheduled work.
type Job interface {
	Name() string
	Schedule() string // standard 5-field cron spec or descriptor (@daily)
	Run(ctx context.Context) error
}

// Result records one execution of a job.
type Result struct {
	Start    time.Time
	Duration time.Duration
	Err      error
}

// Scheduler runs jobs on their cron schedules. A job that is still running
// when its next tick fires is skipped.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc

	mu   sync.RWMutex
	jobs map[string]Job
	last map[string]Result
}

// New creates a scheduler
func New(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		jobs:   make(map[string]Job),
		last:   make(map[string]Result),
	}
}

// Add registers a job.
func (s *Scheduler) Add(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := job.Name()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already exists", name)
	}

	if _, err := s.cron.AddFunc(job.Schedule(), func() { s.run(s.ctx, job) }); err != nil {
		return fmt.Errorf("scheduling job %s: %w", name, err)
	}
	s.jobs[name] = job

	s.logger.Info("job scheduled", zap.String("job", name), zap.String("schedule", job.Schedule()))
	return nil
}

// RunNow executes a registered job synchronously, outside its schedule.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.RLock()
	job, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("job %s not found", name)
	}
	return s.run(ctx, job)
}

// Last returns the most recent result of a job.
func (s *Scheduler) Last(name string) (Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.last[name]
	return r, ok
}

// Jobs lists registered job names.
func (s *Scheduler) Jobs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Start begins firing jobs
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.Int("jobs", len(s.Jobs())))
	s.cron.Start()
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context, job Job) error {
	name := job.Name()
	start := time.Now()

	err := job.Run(ctx)
	res := Result{Start: start, Duration: time.Since(start), Err: err}

	s.mu.Lock()
	s.last[name] = res
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("job failed", zap.String("job", name), zap.Duration("duration", res.Duration), zap.Error(err))
	} else {
		s.logger.Info("job completed", zap.String("job", name), zap.Duration("duration", res.Duration))
	}
	return err
}

// FuncJob adapts a function to Job.
type FuncJob struct {
	name     string
	schedule string
	fn       func(ctx context.Context) error
}

// NewFuncJob creates a job running fn on schedule.
func NewFuncJob(name, schedule string, fn func(ctx context.Context) error) *FuncJob {
	return &FuncJob{name: name, schedule: schedule, fn: fn}
}

func (j *FuncJob) Name() string                  { return j.name }
func (j *FuncJob) Schedule() string              { return j.schedule }
func (j *FuncJob) Run(ctx context.Context) error { return j.fn(ctx) }
