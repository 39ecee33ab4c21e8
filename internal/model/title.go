// Copyright (c) 2026 PageForge Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"fmt"
	"time"
)

// Publisher states. A draft enters StateDirty when its content changes
// relative to the stored row; publishing resets it to StateDefault.
const (
	PublisherStateDefault = 0
	PublisherStateDirty   = 1
)

// Title is the localized content of a page: one row per (page,
// language) and draft/public variant. PublisherPublicID links a draft
// to its published counterpart and vice versa.
type Title struct {
	ID                int64          `json:"id"`
	PageID            int64          `json:"page_id"`
	Language          string         `json:"language"`
	Title             string         `json:"title"`
	PageTitle         sql.NullString `json:"page_title"`       // overrides the html title tag
	MenuTitle         sql.NullString `json:"menu_title"`       // overrides the title in menus
	MetaDescription   sql.NullString `json:"meta_description"` // search engine snippet
	Slug              string         `json:"slug"`
	Path              string         `json:"path"`
	HasURLOverwrite   bool           `json:"has_url_overwrite"`
	Redirect          sql.NullString `json:"redirect"`
	CreationDate      time.Time      `json:"creation_date"`
	Published         bool           `json:"published"`
	PublisherIsDraft  bool           `json:"publisher_is_draft"`
	PublisherPublicID sql.NullInt64  `json:"publisher_public_id"`
	PublisherState    int            `json:"publisher_state"`
}

func (t *Title) String() string {
	return fmt.Sprintf("%s (%s, %s)", t.Title, t.Slug, t.Language)
}

// OverwriteURL returns the explicitly overwritten path, or "" when the
// path is derived from the page tree.
func (t *Title) OverwriteURL() string {
	if t.HasURLOverwrite {
		return t.Path
	}
	return ""
}

// IsDirty reports whether the title has unpublished draft changes.
func (t *Title) IsDirty() bool {
	return t.PublisherState == PublisherStateDirty
}

// TrackedFieldsEqual compares the fields whose change marks a draft
// dirty: title, page_title, menu_title, meta_description, slug,
// has_url_overwrite and redirect. Publisher bookkeeping and path are
// deliberately excluded.
func (t *Title) TrackedFieldsEqual(other *Title) bool {
	if other == nil {
		return false
	}
	return t.Title == other.Title &&
		t.PageTitle == other.PageTitle &&
		t.MenuTitle == other.MenuTitle &&
		t.MetaDescription == other.MetaDescription &&
		t.Slug == other.Slug &&
		t.HasURLOverwrite == other.HasURLOverwrite &&
		t.Redirect == other.Redirect
}

// EmptyTitle is a null object standing in for a missing translation.
// All content accessors return zero values so callers can render it
// without nil checks.
type EmptyTitle struct {
	Language string
}

// NewEmptyTitle returns an EmptyTitle for the requested language.
func NewEmptyTitle(language string) *EmptyTitle {
	return &EmptyTitle{Language: language}
}

func (e *EmptyTitle) Title() string           { return "" }
func (e *EmptyTitle) Slug() string            { return "" }
func (e *EmptyTitle) Path() string            { return "" }
func (e *EmptyTitle) MetaDescription() string { return "" }
func (e *EmptyTitle) Redirect() string        { return "" }
func (e *EmptyTitle) MenuTitle() string       { return "" }
func (e *EmptyTitle) PageTitle() string       { return "" }
func (e *EmptyTitle) HasURLOverwrite() bool   { return false }
func (e *EmptyTitle) Published() bool         { return false }

// OverwriteURL always returns "" for an empty title.
func (e *EmptyTitle) OverwriteURL() string { return "" }
