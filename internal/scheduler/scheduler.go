// Copyright (c) 2026 PageForge Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic publication-window sweep.
package scheduler

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pageforge/pageforge/internal/model"
	"github.com/pageforge/pageforge/internal/store"
)

// Invalidator drops cached lookups for a page. A nil invalidator is a
// no-op.
type Invalidator interface {
	InvalidatePage(ctx context.Context, pageID int64)
}

// Scheduler unpublishes pages whose publication window has closed.
type Scheduler struct {
	queries *store.Queries
	cron    *cron.Cron
	logger  *slog.Logger
	cache   Invalidator
	now     func() time.Time
}

// New creates a scheduler instance.
func New(db *sql.DB, logger *slog.Logger, cache Invalidator) *Scheduler {
	return &Scheduler{
		queries: store.New(db),
		cron:    cron.New(),
		logger:  logger,
		cache:   cache,
		now:     time.Now,
	}
}

// Start begins the sweep, checking for expired pages every minute.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("* * * * *", func() {
		if err := s.SweepExpired(context.Background()); err != nil {
			s.logger.Error("sweeping expired pages", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running sweep.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// SweepExpired unpublishes the public titles of every page whose
// publication window closed, so the pages drop off the public site.
func (s *Scheduler) SweepExpired(ctx context.Context) error {
	now := s.now()
	pages, err := s.queries.ListExpiredPages(ctx, now)
	if err != nil {
		return err
	}
	if len(pages) == 0 {
		return nil
	}

	s.logger.Info("unpublishing expired pages", "count", len(pages))

	for _, page := range pages {
		if err := s.queries.UnpublishTitlesForPage(ctx, page.ID); err != nil {
			s.logger.Error("unpublishing expired page", "page_id", page.ID, "error", err)
			continue
		}
		if s.cache != nil {
			s.cache.InvalidatePage(ctx, page.ID)
		}
		if err := s.queries.CreateEvent(ctx, store.CreateEventParams{
			Level:    model.EventLevelInfo,
			Category: model.EventCategoryPublish,
			Message:  "page unpublished after publication window closed",
			Metadata: fmt.Sprintf(`{"page_id":"%d"}`, page.ID),
		}); err != nil {
			s.logger.Warn("recording expiry event", "page_id", page.ID, "error", err)
		}
	}
	return nil
}
