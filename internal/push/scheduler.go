package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rsawyer/homewarden/internal/clock"
	"github.com/rsawyer/homewarden/internal/maintenance"
	"github.com/rsawyer/homewarden/internal/store"
	"github.com/rsawyer/homewarden/internal/task"
)

// Scheduler periodically classifies active items and sends one due-work
// reminder per day to every subscribed device.
type Scheduler struct {
	mu               sync.RWMutex
	service          *Service
	pushStore        *store.PushStore
	maintenanceStore *store.MaintenanceStore
	taskStore        *store.TaskStore
	clk              clock.Clock
	logger           *slog.Logger
	interval         time.Duration
	lastSentDay      string
	cancel           context.CancelFunc
	done             chan struct{}
}

// NewScheduler creates a reminder scheduler that wakes every interval.
func NewScheduler(svc *Service, ps *store.PushStore, ms *store.MaintenanceStore, ts *store.TaskStore, clk clock.Clock, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		service:          svc,
		pushStore:        ps,
		maintenanceStore: ms,
		taskStore:        ts,
		clk:              clk,
		logger:           logger,
		interval:         interval,
	}
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Scheduler) tick() {
	today := clock.Today(s.clk)
	day := today.Format("2006-01-02")

	s.mu.RLock()
	alreadySent := s.lastSentDay == day
	s.mu.RUnlock()
	if alreadySent {
		return
	}

	overdue, dueSoon := s.countDueWork(today)
	if overdue == 0 && dueSoon == 0 {
		return
	}

	payload := Payload{
		Title: "Home Warden",
		Body:  reminderBody(overdue, dueSoon),
		URL:   "/",
		Tag:   "due-reminder",
	}
	s.sendToAll(payload)

	s.mu.Lock()
	s.lastSentDay = day
	s.mu.Unlock()
}

// countDueWork tallies overdue and due-soon obligations across both
// collections as of today.
func (s *Scheduler) countDueWork(today time.Time) (overdue, dueSoon int) {
	items, err := s.maintenanceStore.ListActive()
	if err != nil {
		s.logger.Error("scheduler list maintenance", "error", err)
		return 0, 0
	}
	for _, item := range items {
		if item.Status.Terminal() {
			continue
		}
		switch maintenance.Classify(item, today) {
		case maintenance.DueOverdue:
			overdue++
		case maintenance.DueSoon:
			dueSoon++
		}
	}

	tasks, err := s.taskStore.ListActive()
	if err != nil {
		s.logger.Error("scheduler list tasks", "error", err)
		return overdue, dueSoon
	}
	for _, t := range tasks {
		if task.IsOverdue(t, today) {
			overdue++
		}
	}
	return overdue, dueSoon
}

func reminderBody(overdue, dueSoon int) string {
	switch {
	case overdue > 0 && dueSoon > 0:
		return fmt.Sprintf("%d overdue and %d due soon", overdue, dueSoon)
	case overdue > 0:
		return fmt.Sprintf("%d overdue", overdue)
	default:
		return fmt.Sprintf("%d due soon", dueSoon)
	}
}

func (s *Scheduler) sendToAll(payload Payload) {
	subs, err := s.pushStore.List()
	if err != nil {
		s.logger.Error("scheduler list subscriptions", "error", err)
		return
	}

	for _, sub := range subs {
		if err := s.service.Send(&sub, payload); err != nil {
			if errors.Is(err, ErrExpired) {
				s.pushStore.DeleteByEndpoint(sub.Endpoint)
			} else {
				s.logger.Error("scheduler send reminder", "error", err)
			}
		}
	}
}
