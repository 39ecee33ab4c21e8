// Copyright (c) 2026 PageForge Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/pageforge/pageforge/internal/model"
)

// SiteResolver resolves the current site for queries that were not
// given one explicitly. Implementations live outside the store so the
// resolution policy (request host, configuration) stays injectable.
type SiteResolver interface {
	Current(ctx context.Context) (model.Site, error)
}

// PageQuery is an immutable, chainable filter over the pages table.
// Each method returns a copy; the zero conditions select every page.
// Results are always ordered by tree path.
type PageQuery struct {
	q        *Queries
	resolver SiteResolver
	now      func() time.Time
	conds    []string
	args     []any
}

// Pages starts a page query. The resolver may be nil, in which case
// unscoped OnSite calls filter for pages without a site.
func (q *Queries) Pages(resolver SiteResolver) PageQuery {
	return PageQuery{q: q, resolver: resolver, now: time.Now}
}

func (pq PageQuery) where(cond string, args ...any) PageQuery {
	// Copy the slices so branching off a shared base query is safe.
	conds := make([]string, len(pq.conds), len(pq.conds)+1)
	copy(conds, pq.conds)
	pq.conds = append(conds, cond)

	newArgs := make([]any, len(pq.args), len(pq.args)+len(args))
	copy(newArgs, pq.args)
	pq.args = append(newArgs, args...)
	return pq
}

// OnSite filters to the given site. With a nil site the current site
// is resolved via the SiteResolver; if no site can be determined the
// query degrades to pages without a site rather than failing.
func (pq PageQuery) OnSite(ctx context.Context, site *model.Site) PageQuery {
	if site == nil && pq.resolver != nil {
		if current, err := pq.resolver.Current(ctx); err == nil {
			site = &current
		}
	}
	if site == nil {
		return pq.where("p.site_id IS NULL")
	}
	return pq.where("p.site_id = ?", site.ID)
}

// AllRoot filters to pages without a parent, across all sites.
func (pq PageQuery) AllRoot() PageQuery {
	return pq.where("p.parent_id IS NULL")
}

// Published filters to pages visible on the given site right now: the
// publication window is open and a published title exists, optionally
// in the given language. An empty language matches any.
func (pq PageQuery) Published(ctx context.Context, site *model.Site, language string) PageQuery {
	now := pq.now()
	pq = pq.OnSite(ctx, site)
	pq = pq.where("(p.publication_date IS NULL OR p.publication_date <= ?)", now)
	pq = pq.where("(p.publication_end_date IS NULL OR p.publication_end_date > ?)", now)
	if language != "" {
		return pq.where(
			"EXISTS (SELECT 1 FROM titles t WHERE t.page_id = p.id AND t.published = 1 AND t.language = ?)",
			language)
	}
	return pq.where(
		"EXISTS (SELECT 1 FROM titles t WHERE t.page_id = p.id AND t.published = 1)")
}

// GetHome returns the first published root page of the site in tree
// order. Returns ErrNoHome when the site has none.
func (pq PageQuery) GetHome(ctx context.Context, site *model.Site) (model.Page, error) {
	home, err := pq.Published(ctx, site, "").AllRoot().First(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Page{}, ErrNoHome
	}
	return home, err
}

func (pq PageQuery) sql(limit string) (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT p.id, p.site_id, p.parent_id, p.tree_path, p.publication_date,")
	b.WriteString(" p.publication_end_date, p.created_at, p.updated_at FROM pages p")
	if len(pq.conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(pq.conds, " AND "))
	}
	b.WriteString(" ORDER BY p.tree_path")
	b.WriteString(limit)
	return b.String(), pq.args
}

// All executes the query and returns the matching pages in tree order.
func (pq PageQuery) All(ctx context.Context) ([]model.Page, error) {
	query, args := pq.sql("")
	rows, err := pq.q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPages(rows)
}

// First executes the query and returns the first matching page.
// Returns sql.ErrNoRows when nothing matches.
func (pq PageQuery) First(ctx context.Context) (model.Page, error) {
	query, args := pq.sql(" LIMIT 1")
	row := pq.q.db.QueryRowContext(ctx, query, args...)
	return scanPage(row)
}

// Count executes the query and returns the number of matching pages.
func (pq PageQuery) Count(ctx context.Context) (int64, error) {
	var b strings.Builder
	b.WriteString("SELECT COUNT(*) FROM pages p")
	if len(pq.conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(pq.conds, " AND "))
	}
	var n int64
	err := pq.q.db.QueryRowContext(ctx, b.String(), pq.args...).Scan(&n)
	return n, err
}
