// Copyright (c) 2026 PageForge Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"database/sql"
	"errors"
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

func publishPage(t *testing.T, db *sql.DB, path string) int64 {
	t.Helper()
	ctx := context.Background()
	q := store.New(db)

	page, err := q.CreatePage(ctx, store.CreatePageParams{
		PublicationDate: sql.NullTime{Time: time.Now().Add(-time.Hour), Valid: true},
	})
	if err != nil {
		t.Fatalf("creating page: %v", err)
	}
	_, err = q.CreateTitle(ctx, store.CreateTitleParams{
		PageID:    page.ID,
		Language:  "en",
		Title:     "Cached",
		Slug:      path,
		Path:      path,
		Published: true,
	})
	if err != nil {
		t.Fatalf("creating title: %v", err)
	}
	return page.ID
}

func TestPageCacheResolvePath(t *testing.T) {
	db := testDB(t)
	pageID := publishPage(t, db, "cached")

	backend := NewMemoryCache(time.Minute)
	defer backend.Close()
	pc := NewPageCache(backend, db)
	ctx := context.Background()
	noSite := sql.NullInt64{}

	resolved, err := pc.ResolvePath(ctx, noSite, "en", "cached")
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	if resolved.Page.ID != pageID || resolved.Title.Title != "Cached" {
		t.Fatalf("ResolvePath = page %d title %q", resolved.Page.ID, resolved.Title.Title)
	}

	// Second lookup is served from cache even after the row is gone.
	if err := store.New(db).DeletePage(ctx, pageID); err != nil {
		t.Fatalf("deleting page: %v", err)
	}
	cached, err := pc.ResolvePath(ctx, noSite, "en", "cached")
	if err != nil {
		t.Fatalf("ResolvePath (cached): %v", err)
	}
	if cached.Page.ID != pageID {
		t.Fatalf("cached page ID = %d, want %d", cached.Page.ID, pageID)
	}
}

func TestPageCacheResolvePathMiss(t *testing.T) {
	db := testDB(t)
	backend := NewMemoryCache(time.Minute)
	defer backend.Close()
	pc := NewPageCache(backend, db)

	_, err := pc.ResolvePath(context.Background(), sql.NullInt64{}, "en", "nope")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("ResolvePath(absent) err = %v, want sql.ErrNoRows", err)
	}
}

func TestPageCacheInvalidatePage(t *testing.T) {
	db := testDB(t)
	pageID := publishPage(t, db, "stale")

	backend := NewMemoryCache(time.Minute)
	defer backend.Close()
	pc := NewPageCache(backend, db)
	ctx := context.Background()
	noSite := sql.NullInt64{}

	if _, err := pc.ResolvePath(ctx, noSite, "en", "stale"); err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}

	if err := store.New(db).DeletePage(ctx, pageID); err != nil {
		t.Fatalf("deleting page: %v", err)
	}
	pc.InvalidatePage(ctx, pageID)

	if _, err := pc.ResolvePath(ctx, noSite, "en", "stale"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("ResolvePath(invalidated) err = %v, want sql.ErrNoRows", err)
	}
}
