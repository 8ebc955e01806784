// Copyright (c) 2026 ND Labs
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the background maintenance jobs: the VIP
// expiry sweep and audit log retention.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/nd-labs/eduspace/internal/service"
)

// eventRetention is how long audit entries are kept.
const eventRetention = 90 * 24 * time.Hour

// Scheduler owns the cron instance and its jobs.
type Scheduler struct {
	users  *service.UserService
	events *service.EventService
	cron   *cron.Cron
	logger *slog.Logger
}

// New creates a Scheduler.
func New(users *service.UserService, events *service.EventService, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		users:  users,
		events: events,
		cron:   cron.New(),
		logger: logger,
	}
}

// Start registers the jobs and starts the cron loop. The VIP sweep
// runs hourly so expiry does not wait for the next login; retention
// runs once a day.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("@hourly", s.sweepVIPs); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("@daily", s.pruneEvents); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) sweepVIPs() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := s.users.ExpireVIPs(ctx, time.Now())
	if err != nil {
		s.logger.Error("vip expiry sweep failed", "error", err)
		return
	}
	if n > 0 {
		s.logger.Info("vip expiry sweep demoted accounts", "count", n)
	}
}

func (s *Scheduler) pruneEvents() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := s.events.DeleteOldEvents(ctx, eventRetention); err != nil {
		s.logger.Error("event retention sweep failed", "error", err)
	}
}
