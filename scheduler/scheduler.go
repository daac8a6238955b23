package scheduler

import (
	"fmt"
	"sync"
	"time"

	"goaltracker/logger"

	"github.com/go-co-op/gocron"
)

type EventScheduler interface {
	Start()
	Stop()
	AddJob(id, cronExpr string, task func()) error
	RemoveJob(id string) error
	GetJob(id string) (*JobInfo, bool)
	ListJobs() map[string]*JobInfo
	IsRunning() bool
}

type JobInfo struct {
	ID       string
	CronExpr string
	LastRun  *time.Time
	NextRun  *time.Time

	job *gocron.Job
}

type GocronScheduler struct {
	scheduler *gocron.Scheduler
	jobs      map[string]*JobInfo
	mu        sync.RWMutex
	running   bool
}

// NewEventScheduler returns a UTC scheduler in which a job never overlaps
// with its own previous run.
func NewEventScheduler() *GocronScheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	return &GocronScheduler{
		scheduler: s,
		jobs:      make(map[string]*JobInfo),
	}
}

func (s *GocronScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		logger.Warn("Scheduler is already running")
		return
	}

	s.scheduler.StartAsync()
	s.running = true
	logger.Info("Scheduler started", "jobs", len(s.jobs))
}

func (s *GocronScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.scheduler.Stop()
	s.running = false
	logger.Info("Scheduler stopped")
}

func (s *GocronScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// AddJob schedules task under id. cronExpr is a five-field cron expression
// or a descriptor such as "@every 1h".
func (s *GocronScheduler) AddJob(id, cronExpr string, task func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[id]; exists {
		return fmt.Errorf("job with ID %s already exists", id)
	}

	job, err := s.scheduler.Cron(cronExpr).Do(func() {
		now := time.Now()
		logger.Debug("Executing job", "job", id)

		s.mu.Lock()
		if info, exists := s.jobs[id]; exists {
			info.LastRun = &now
		}
		s.mu.Unlock()

		task()
	})
	if err != nil {
		return fmt.Errorf("failed to create job %s: %w", id, err)
	}

	nextRun := job.NextRun()
	s.jobs[id] = &JobInfo{ID: id, CronExpr: cronExpr, NextRun: &nextRun, job: job}

	logger.Info("Job added", "job", id, "cron", cronExpr, "next_run", nextRun.Format(time.RFC3339))
	return nil
}

func (s *GocronScheduler) RemoveJob(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, exists := s.jobs[id]
	if !exists {
		return fmt.Errorf("job with ID %s not found", id)
	}

	s.scheduler.RemoveByReference(info.job)
	delete(s.jobs, id)
	logger.Info("Job removed", "job", id)
	return nil
}

func (s *GocronScheduler) GetJob(id string) (*JobInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, exists := s.jobs[id]
	if !exists {
		return nil, false
	}
	return info.snapshot(), true
}

func (s *GocronScheduler) ListJobs() map[string]*JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make(map[string]*JobInfo, len(s.jobs))
	for id, info := range s.jobs {
		jobs[id] = info.snapshot()
	}
	return jobs
}

// snapshot copies the info so callers never share the scheduler's pointers.
func (j *JobInfo) snapshot() *JobInfo {
	info := &JobInfo{ID: j.ID, CronExpr: j.CronExpr, job: j.job}
	if j.LastRun != nil {
		lastRun := *j.LastRun
		info.LastRun = &lastRun
	}
	if j.job != nil {
		nextRun := j.job.NextRun()
		info.NextRun = &nextRun
	}
	return info
}
