// Package autologout resets every operator session at a fixed wall-clock
// hour each day. The trigger lives outside the state machine: it simply
// calls the session manager's reset sweep plus a logout collaborator.
package autologout

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Resetter is the slice of the session manager the scheduler needs.
type Resetter interface {
	ResetAll(ctx context.Context) error
}

// LogoutFunc is invoked after the session sweep, e.g. to force operator
// logout in the surrounding system. May be nil.
type LogoutFunc func(ctx context.Context) error

// Scheduler runs the daily reset.
type Scheduler struct {
	cron    *cron.Cron
	manager Resetter
	logout  LogoutFunc
	logger  *slog.Logger
}

// New creates a scheduler that fires every day at the given hour and
// minute (local time).
func New(manager Resetter, logout LogoutFunc, hour, minute int, logger *slog.Logger) (*Scheduler, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return nil, fmt.Errorf("invalid auto-logout time %02d:%02d", hour, minute)
	}

	s := &Scheduler{
		cron:    cron.New(),
		manager: manager,
		logout:  logout,
		logger:  logger,
	}

	spec := fmt.Sprintf("%d %d * * *", minute, hour)
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("failed to schedule auto-logout: %w", err)
	}
	return s, nil
}

// Start begins the schedule in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// run performs one sweep.
func (s *Scheduler) run() {
	ctx := context.Background()
	s.logger.Info("daily auto-logout sweep starting")

	if err := s.manager.ResetAll(ctx); err != nil {
		s.logger.Error("auto-logout session sweep failed", "err", err)
	}
	if s.logout != nil {
		if err := s.logout(ctx); err != nil {
			s.logger.Error("auto-logout collaborator failed", "err", err)
		}
	}
}
