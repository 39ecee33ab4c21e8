// Copyright (c) 2026 PageForge Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Page represents a node in the page tree. Content lives on the page's
// titles, one per language, in draft and public variants.
type Page struct {
	ID                 int64         `json:"id"`
	SiteID             sql.NullInt64 `json:"site_id"`
	ParentID           sql.NullInt64 `json:"parent_id"`
	TreePath           string        `json:"tree_path"` // materialized, lexicographic tree order
	PublicationDate    sql.NullTime  `json:"publication_date"`
	PublicationEndDate sql.NullTime  `json:"publication_end_date"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// IsRoot returns true if the page has no parent.
func (p *Page) IsRoot() bool {
	return !p.ParentID.Valid
}

// InPublicationWindow reports whether the page's publication window is
// open at the given instant. A missing publication date means "already
// started"; a missing end date means "never ends". The end date is
// exclusive.
func (p *Page) InPublicationWindow(now time.Time) bool {
	if p.PublicationDate.Valid && p.PublicationDate.Time.After(now) {
		return false
	}
	if p.PublicationEndDate.Valid && !p.PublicationEndDate.Time.After(now) {
		return false
	}
	return true
}
