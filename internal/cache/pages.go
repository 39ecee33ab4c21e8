// Copyright (c) 2026 PageForge Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pageforge/pageforge/internal/model"
	"github.com/pageforge/pageforge/internal/store"
)

// ResolvedPage is a published title together with its page, as served
// for a URL path.
type ResolvedPage struct {
	Title model.Title `json:"title"`
	Page  model.Page  `json:"page"`
}

// PageCache caches published page lookups by (site, language, path).
// Entries are invalidated whenever the page's content changes.
type PageCache struct {
	cache   Cache
	queries *store.Queries

	// Reverse index: page ID -> cache keys written by this process,
	// for invalidation.
	mu           sync.Mutex
	keysByPageID map[int64][]string
}

// NewPageCache creates a page cache over the given backend.
func NewPageCache(backend Cache, db *sql.DB) *PageCache {
	return &PageCache{
		cache:        backend,
		queries:      store.New(db),
		keysByPageID: make(map[int64][]string),
	}
}

func pageKey(siteID sql.NullInt64, language, path string) string {
	site := "none"
	if siteID.Valid {
		site = fmt.Sprintf("%d", siteID.Int64)
	}
	return fmt.Sprintf("page:%s:%s:%s", site, language, path)
}

// ResolvePath returns the published title and page serving the given
// URL path, from cache when possible. A miss that is also absent from
// the database returns sql.ErrNoRows.
func (c *PageCache) ResolvePath(ctx context.Context, siteID sql.NullInt64, language, path string) (*ResolvedPage, error) {
	key := pageKey(siteID, language, path)

	if data, err := c.cache.Get(ctx, key); err == nil {
		var resolved ResolvedPage
		if err := json.Unmarshal(data, &resolved); err == nil {
			return &resolved, nil
		}
		// Corrupt entry, drop it and fall through to the database
		_ = c.cache.Delete(ctx, key)
	}

	title, err := c.queries.GetPublishedTitleByPath(ctx, store.GetPublishedTitleByPathParams{
		SiteID:   siteID,
		Language: language,
		Path:     path,
		Now:      time.Now(),
	})
	if err != nil {
		return nil, err
	}
	page, err := c.queries.GetPageByID(ctx, title.PageID)
	if err != nil {
		return nil, err
	}

	resolved := &ResolvedPage{Title: title, Page: page}
	c.storeEntry(ctx, key, resolved)
	return resolved, nil
}

func (c *PageCache) storeEntry(ctx context.Context, key string, resolved *ResolvedPage) {
	data, err := json.Marshal(resolved)
	if err != nil {
		slog.Warn("marshaling page cache entry", "key", key, "error", err)
		return
	}
	if err := c.cache.Set(ctx, key, data, 0); err != nil {
		if !errors.Is(err, ErrCacheClosed) {
			slog.Warn("writing page cache entry", "key", key, "error", err)
		}
		return
	}

	c.mu.Lock()
	c.keysByPageID[resolved.Page.ID] = append(c.keysByPageID[resolved.Page.ID], key)
	c.mu.Unlock()
}

// InvalidatePage drops every cached lookup recorded for the page.
func (c *PageCache) InvalidatePage(ctx context.Context, pageID int64) {
	c.mu.Lock()
	keys := c.keysByPageID[pageID]
	delete(c.keysByPageID, pageID)
	c.mu.Unlock()

	for _, key := range keys {
		if err := c.cache.Delete(ctx, key); err != nil && !errors.Is(err, ErrCacheClosed) {
			slog.Warn("invalidating page cache entry", "key", key, "error", err)
		}
	}
}

// Clear drops the whole cache.
func (c *PageCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.keysByPageID = make(map[int64][]string)
	c.mu.Unlock()
	return c.cache.Clear(ctx)
}
