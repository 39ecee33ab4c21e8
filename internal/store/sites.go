// Copyright (c) 2026 PageForge Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/pageforge/pageforge/internal/model"
)

const siteColumns = "id, domain, name, is_default, created_at, updated_at"

func scanSite(row interface{ Scan(...any) error }) (model.Site, error) {
	var s model.Site
	err := row.Scan(&s.ID, &s.Domain, &s.Name, &s.IsDefault, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// CreateSiteParams holds the fields for CreateSite.
type CreateSiteParams struct {
	Domain    string
	Name      string
	IsDefault bool
}

// CreateSite inserts a new site.
func (q *Queries) CreateSite(ctx context.Context, arg CreateSiteParams) (model.Site, error) {
	now := time.Now()
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO sites (domain, name, is_default, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		arg.Domain, arg.Name, arg.IsDefault, now, now)
	if err != nil {
		return model.Site{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Site{}, err
	}
	return q.GetSiteByID(ctx, id)
}

// GetSiteByID fetches a site by ID.
func (q *Queries) GetSiteByID(ctx context.Context, id int64) (model.Site, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+siteColumns+" FROM sites WHERE id = ?", id)
	return scanSite(row)
}

// GetSiteByDomain fetches a site by its domain name.
func (q *Queries) GetSiteByDomain(ctx context.Context, domain string) (model.Site, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+siteColumns+" FROM sites WHERE domain = ?", domain)
	return scanSite(row)
}

// GetDefaultSite fetches the site marked as default.
func (q *Queries) GetDefaultSite(ctx context.Context) (model.Site, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+siteColumns+" FROM sites WHERE is_default = 1 LIMIT 1")
	return scanSite(row)
}

// ListSites returns all sites ordered by domain.
func (q *Queries) ListSites(ctx context.Context) ([]model.Site, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+siteColumns+" FROM sites ORDER BY domain")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sites []model.Site
	for rows.Next() {
		s, err := scanSite(rows)
		if err != nil {
			return nil, err
		}
		sites = append(sites, s)
	}
	return sites, rows.Err()
}
