package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/marketpulse/backend/pkg/constants"
)

// Job is one scheduled task the service runs
type Job struct {
	Name     string
	Spec     string // cron expression, UTC
	Run      func(ctx context.Context) error
	schedule cron.Schedule
	nextRun  time.Time
	running  bool
}

// SchedulerService manages the recurring notification jobs (heartbeat,
// calendar digest) on a polling ticker loop.
type SchedulerService struct {
	jobs     []*Job
	stopChan chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	running  bool
	stopped  bool // Prevents double-close of stopChan
}

// NewSchedulerService creates a scheduler with the standard job set
func NewSchedulerService(tasks *TaskService) (*SchedulerService, error) {
	s := &SchedulerService{
		stopChan: make(chan struct{}),
	}

	if err := s.AddJob(constants.DeliveryKindHeartbeat, constants.ScheduleHeartbeat, tasks.RunHeartbeat); err != nil {
		return nil, err
	}
	if err := s.AddJob(constants.DeliveryKindDigest, constants.ScheduleDigest, tasks.RunDigest); err != nil {
		return nil, err
	}

	return s, nil
}

// AddJob registers a job under a cron expression (standard 5-field, UTC)
func (s *SchedulerService) AddJob(name, spec string, run func(ctx context.Context) error) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(spec)
	if err != nil {
		return fmt.Errorf("invalid cron expression for job %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, &Job{
		Name:     name,
		Spec:     spec,
		Run:      run,
		schedule: schedule,
		nextRun:  schedule.Next(time.Now().UTC()),
	})
	return nil
}

// Start begins the scheduler background loop. Blocks until Stop is called;
// run it in a goroutine.
func (s *SchedulerService) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	log.Println("⏰ Scheduler service starting...")

	ticker := time.NewTicker(time.Duration(constants.ScheduleCheckInterval) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runDueJobs()
		case <-s.stopChan:
			log.Println("⏰ Scheduler service stopping...")
			s.wg.Wait() // Wait for running jobs to complete
			log.Println("⏰ Scheduler service stopped")
			return
		}
	}
}

// Stop gracefully stops the scheduler
func (s *SchedulerService) Stop() {
	s.mu.Lock()
	if !s.running || s.stopped {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.stopped = true
	s.mu.Unlock()

	close(s.stopChan)
}

// Running reports whether the scheduler loop is active
func (s *SchedulerService) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRuns returns the next scheduled time per job, used by /status and
// the health endpoint
func (s *SchedulerService) NextRuns() map[string]time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]time.Time, len(s.jobs))
	for _, job := range s.jobs {
		next[job.Name] = job.nextRun
	}
	return next
}

// Trigger runs a job by name immediately, regardless of its schedule.
// Returns the job's error; an unknown name is an error.
func (s *SchedulerService) Trigger(ctx context.Context, name string) error {
	s.mu.Lock()
	var target *Job
	for _, job := range s.jobs {
		if job.Name == name {
			target = job
			break
		}
	}
	s.mu.Unlock()

	if target == nil {
		return fmt.Errorf("unknown job: %s", name)
	}

	return s.execute(ctx, target)
}

// runDueJobs finds and executes all due jobs
func (s *SchedulerService) runDueJobs() {
	now := time.Now().UTC()

	s.mu.Lock()
	var due []*Job
	for _, job := range s.jobs {
		if !now.Before(job.nextRun) {
			due = append(due, job)
			job.nextRun = job.schedule.Next(now)
		}
	}
	s.mu.Unlock()

	for _, job := range due {
		s.wg.Add(1)
		go func(j *Job) {
			defer s.wg.Done()
			s.executeScheduled(j)
		}(job)
	}
}

// executeScheduled runs one due job with a runtime cap
func (s *SchedulerService) executeScheduled(job *Job) {
	timeout := time.Duration(constants.ScheduleMaxRuntimeMins) * time.Minute
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.execute(ctx, job); err != nil {
		log.Printf("❌ Scheduled job %s failed: %v", job.Name, err)
	}
}

// execute runs a job with the in-flight lock and panic recovery
func (s *SchedulerService) execute(ctx context.Context, job *Job) error {
	// Atomically acquire the per-job execution lock
	s.mu.Lock()
	if job.running {
		s.mu.Unlock()
		log.Printf("⏭️ Job %s is already running, skipping", job.Name)
		return nil
	}
	job.running = true
	s.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("🔥 Panic in job %s: %v", job.Name, r)
		}
		s.mu.Lock()
		job.running = false
		s.mu.Unlock()
	}()

	log.Printf("⏰ Running job: %s", job.Name)
	startTime := time.Now()
	err := job.Run(ctx)
	duration := time.Since(startTime)

	if err != nil {
		return fmt.Errorf("job %s failed after %v: %w", job.Name, duration, err)
	}

	log.Printf("✅ Job %s completed in %v", job.Name, duration)
	return nil
}
