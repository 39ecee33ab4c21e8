// Copyright (c) 2026 PageForge Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/pageforge/pageforge/internal/store"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := store.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := store.Migrate(db); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	return db
}

type recordingInvalidator struct {
	pageIDs []int64
}

func (r *recordingInvalidator) InvalidatePage(_ context.Context, pageID int64) {
	r.pageIDs = append(r.pageIDs, pageID)
}

func TestSchedulerStartStop(t *testing.T) {
	s := New(testDB(t), slog.Default(), nil)

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Stop()
}

func TestSweepExpired(t *testing.T) {
	db := testDB(t)
	q := store.New(db)
	ctx := context.Background()
	now := time.Now()

	expired, err := q.CreatePage(ctx, store.CreatePageParams{
		PublicationDate:    sql.NullTime{Time: now.Add(-2 * time.Hour), Valid: true},
		PublicationEndDate: sql.NullTime{Time: now.Add(-time.Hour), Valid: true},
	})
	if err != nil {
		t.Fatalf("CreatePage: %v", err)
	}
	live, err := q.CreatePage(ctx, store.CreatePageParams{
		PublicationDate: sql.NullTime{Time: now.Add(-time.Hour), Valid: true},
	})
	if err != nil {
		t.Fatalf("CreatePage: %v", err)
	}
	for i, page := range []int64{expired.ID, live.ID} {
		if _, err := q.CreateTitle(ctx, store.CreateTitleParams{
			PageID:    page,
			Language:  "en",
			Title:     "Sweep",
			Slug:      "sweep",
			Path:      "sweep",
			Published: true,
		}); err != nil {
			t.Fatalf("CreateTitle %d: %v", i, err)
		}
	}

	inv := &recordingInvalidator{}
	s := New(db, slog.Default(), inv)
	if err := s.SweepExpired(ctx); err != nil {
		t.Fatalf("SweepExpired: %v", err)
	}

	expiredTitles, err := q.ListTitlesForPage(ctx, expired.ID, false)
	if err != nil {
		t.Fatalf("ListTitlesForPage: %v", err)
	}
	if len(expiredTitles) != 1 || expiredTitles[0].Published {
		t.Fatalf("expired page titles = %+v, want unpublished", expiredTitles)
	}

	liveTitles, err := q.ListTitlesForPage(ctx, live.ID, false)
	if err != nil {
		t.Fatalf("ListTitlesForPage: %v", err)
	}
	if len(liveTitles) != 1 || !liveTitles[0].Published {
		t.Fatalf("live page titles = %+v, want still published", liveTitles)
	}

	if len(inv.pageIDs) != 1 || inv.pageIDs[0] != expired.ID {
		t.Fatalf("invalidated pages = %v, want [%d]", inv.pageIDs, expired.ID)
	}

	// A second sweep finds nothing left to do.
	if err := s.SweepExpired(ctx); err != nil {
		t.Fatalf("SweepExpired (again): %v", err)
	}
	if len(inv.pageIDs) != 1 {
		t.Fatalf("second sweep invalidated again: %v", inv.pageIDs)
	}
}
