// Copyright (c) 2026 PageForge Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/pageforge/pageforge/internal/cache"
	"github.com/pageforge/pageforge/internal/model"
	"github.com/pageforge/pageforge/internal/store"
)

// PageService implements page-level queries for the public site and
// the admin tree views.
type PageService struct {
	queries  *store.Queries
	resolver store.SiteResolver
	cache    *cache.PageCache
}

// NewPageService creates a PageService. The resolver supplies the
// current site for queries that are not given one explicitly.
func NewPageService(db *sql.DB, resolver store.SiteResolver) *PageService {
	return &PageService{
		queries:  store.New(db),
		resolver: resolver,
	}
}

// SetCache attaches a page lookup cache.
func (s *PageService) SetCache(c *cache.PageCache) {
	s.cache = c
}

// Published returns the pages visible on the site right now, in tree
// order. An empty language matches content in any language.
func (s *PageService) Published(ctx context.Context, site *model.Site, language string) ([]model.Page, error) {
	return s.queries.Pages(s.resolver).Published(ctx, site, language).All(ctx)
}

// RootPages returns the site's root pages in tree order.
func (s *PageService) RootPages(ctx context.Context, site *model.Site) ([]model.Page, error) {
	return s.queries.Pages(s.resolver).OnSite(ctx, site).AllRoot().All(ctx)
}

// GetHome returns the site's home page, the first published root page
// in tree order. Returns store.ErrNoHome when the site has none.
func (s *PageService) GetHome(ctx context.Context, site *model.Site) (model.Page, error) {
	return s.queries.Pages(s.resolver).GetHome(ctx, site)
}

// GetPage fetches a page by ID.
func (s *PageService) GetPage(ctx context.Context, id int64) (model.Page, error) {
	return s.queries.GetPageByID(ctx, id)
}

// CreatePage inserts a page under the given parent on the given site.
func (s *PageService) CreatePage(ctx context.Context, arg store.CreatePageParams) (model.Page, error) {
	return s.queries.CreatePage(ctx, arg)
}

// ResolvePath returns the published title and page serving a URL path
// on the site, through the cache when one is attached. Returns
// sql.ErrNoRows when no published page serves the path.
func (s *PageService) ResolvePath(ctx context.Context, site *model.Site, language, path string) (*cache.ResolvedPage, error) {
	var siteID sql.NullInt64
	if site == nil && s.resolver != nil {
		if current, err := s.resolver.Current(ctx); err == nil {
			site = &current
		}
	}
	if site != nil {
		siteID = sql.NullInt64{Int64: site.ID, Valid: true}
	}

	if s.cache != nil {
		return s.cache.ResolvePath(ctx, siteID, language, path)
	}

	title, err := s.queries.GetPublishedTitleByPath(ctx, store.GetPublishedTitleByPathParams{
		SiteID:   siteID,
		Language: language,
		Path:     path,
		Now:      time.Now(),
	})
	if err != nil {
		return nil, err
	}
	page, err := s.queries.GetPageByID(ctx, title.PageID)
	if err != nil {
		return nil, err
	}
	return &cache.ResolvedPage{Title: title, Page: page}, nil
}
