// Copyright (c) 2026 PageForge Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package sites resolves which site a query or request belongs to.
package sites

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"strings"

	"github.com/pageforge/pageforge/internal/model"
	"github.com/pageforge/pageforge/internal/store"
)

// ErrNoCurrentSite is returned when no default site is configured.
var ErrNoCurrentSite = errors.New("no current site configured")

// Resolver resolves sites from the sites table. It satisfies
// store.SiteResolver.
type Resolver struct {
	queries *store.Queries
}

// NewResolver creates a site resolver backed by the database.
func NewResolver(db *sql.DB) *Resolver {
	return &Resolver{queries: store.New(db)}
}

// Current returns the site marked as default. Callers treat an error
// as "no site": page queries degrade to an unscoped filter.
func (r *Resolver) Current(ctx context.Context) (model.Site, error) {
	site, err := r.queries.GetDefaultSite(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Site{}, ErrNoCurrentSite
	}
	return site, err
}

// FromHost returns the site serving the given request host, ignoring
// any port. Unknown hosts fall back to the default site.
func (r *Resolver) FromHost(ctx context.Context, host string) (model.Site, error) {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(host)

	site, err := r.queries.GetSiteByDomain(ctx, host)
	if err == nil {
		return site, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.Site{}, err
	}
	return r.Current(ctx)
}
