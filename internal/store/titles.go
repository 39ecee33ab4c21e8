// Copyright (c) 2026 PageForge Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/pageforge/pageforge/internal/model"
)

const titleColumns = `id, page_id, language, title, page_title, menu_title, meta_description,
	slug, path, has_url_overwrite, redirect, creation_date, published,
	publisher_is_draft, publisher_public_id, publisher_state`

func scanTitle(row interface{ Scan(...any) error }) (model.Title, error) {
	var t model.Title
	err := row.Scan(&t.ID, &t.PageID, &t.Language, &t.Title, &t.PageTitle,
		&t.MenuTitle, &t.MetaDescription, &t.Slug, &t.Path, &t.HasURLOverwrite,
		&t.Redirect, &t.CreationDate, &t.Published, &t.PublisherIsDraft,
		&t.PublisherPublicID, &t.PublisherState)
	return t, err
}

// CreateTitleParams holds the fields for CreateTitle.
type CreateTitleParams struct {
	PageID           int64
	Language         string
	Title            string
	PageTitle        sql.NullString
	MenuTitle        sql.NullString
	MetaDescription  sql.NullString
	Slug             string
	Path             string
	HasURLOverwrite  bool
	Redirect         sql.NullString
	Published        bool
	PublisherIsDraft bool
	PublisherState   int
}

// CreateTitle inserts a title row.
func (q *Queries) CreateTitle(ctx context.Context, arg CreateTitleParams) (model.Title, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO titles (page_id, language, title, page_title, menu_title, meta_description,
		 slug, path, has_url_overwrite, redirect, creation_date, published,
		 publisher_is_draft, publisher_state)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.PageID, arg.Language, arg.Title, arg.PageTitle, arg.MenuTitle,
		arg.MetaDescription, arg.Slug, arg.Path, arg.HasURLOverwrite,
		arg.Redirect, time.Now(), arg.Published, arg.PublisherIsDraft, arg.PublisherState)
	if err != nil {
		return model.Title{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Title{}, err
	}
	return q.GetTitleByID(ctx, id)
}

// GetTitleByID fetches a title by ID.
func (q *Queries) GetTitleByID(ctx context.Context, id int64) (model.Title, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+titleColumns+" FROM titles WHERE id = ?", id)
	return scanTitle(row)
}

// GetTitleParams identifies a title by page, language and variant.
type GetTitleParams struct {
	PageID   int64
	Language string
	IsDraft  bool
}

// GetTitle fetches the title for a page, language and draft/public
// variant. Returns sql.ErrNoRows when none exists.
func (q *Queries) GetTitle(ctx context.Context, arg GetTitleParams) (model.Title, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+titleColumns+" FROM titles WHERE page_id = ? AND language = ? AND publisher_is_draft = ?",
		arg.PageID, arg.Language, arg.IsDraft)
	return scanTitle(row)
}

// ListTitlesForPage returns all titles of one variant for a page,
// ordered by language for stable iteration.
func (q *Queries) ListTitlesForPage(ctx context.Context, pageID int64, isDraft bool) ([]model.Title, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+titleColumns+" FROM titles WHERE page_id = ? AND publisher_is_draft = ? ORDER BY language",
		pageID, isDraft)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTitles(rows)
}

// ListPublicTitles returns published public titles.
func (q *Queries) ListPublicTitles(ctx context.Context) ([]model.Title, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+titleColumns+" FROM titles WHERE publisher_is_draft = 0 AND published = 1 ORDER BY page_id, language")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTitles(rows)
}

// ListDraftTitles returns all draft titles.
func (q *Queries) ListDraftTitles(ctx context.Context) ([]model.Title, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+titleColumns+" FROM titles WHERE publisher_is_draft = 1 ORDER BY page_id, language")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTitles(rows)
}

// UpdateTitleParams holds the fields for UpdateTitle.
type UpdateTitleParams struct {
	ID              int64
	Title           string
	PageTitle       sql.NullString
	MenuTitle       sql.NullString
	MetaDescription sql.NullString
	Slug            string
	Path            string
	HasURLOverwrite bool
	Redirect        sql.NullString
	Published       bool
	PublisherState  int
}

// UpdateTitle overwrites the content and publisher state of a title.
func (q *Queries) UpdateTitle(ctx context.Context, arg UpdateTitleParams) (model.Title, error) {
	_, err := q.db.ExecContext(ctx,
		`UPDATE titles SET title = ?, page_title = ?, menu_title = ?, meta_description = ?,
		 slug = ?, path = ?, has_url_overwrite = ?, redirect = ?, published = ?, publisher_state = ?
		 WHERE id = ?`,
		arg.Title, arg.PageTitle, arg.MenuTitle, arg.MetaDescription,
		arg.Slug, arg.Path, arg.HasURLOverwrite, arg.Redirect,
		arg.Published, arg.PublisherState, arg.ID)
	if err != nil {
		return model.Title{}, err
	}
	return q.GetTitleByID(ctx, arg.ID)
}

// UpdateTitlePath sets only the derived path of a title.
func (q *Queries) UpdateTitlePath(ctx context.Context, id int64, path string) error {
	_, err := q.db.ExecContext(ctx, "UPDATE titles SET path = ? WHERE id = ?", path, id)
	return err
}

// SetTitlePublisherState sets the publisher state of a title.
func (q *Queries) SetTitlePublisherState(ctx context.Context, id int64, state int) error {
	_, err := q.db.ExecContext(ctx, "UPDATE titles SET publisher_state = ? WHERE id = ?", state, id)
	return err
}

// LinkTitles points the draft and its public counterpart at each other.
func (q *Queries) LinkTitles(ctx context.Context, draftID, publicID int64) error {
	if _, err := q.db.ExecContext(ctx,
		"UPDATE titles SET publisher_public_id = ? WHERE id = ?", publicID, draftID); err != nil {
		return err
	}
	_, err := q.db.ExecContext(ctx,
		"UPDATE titles SET publisher_public_id = ? WHERE id = ?", draftID, publicID)
	return err
}

// GetPublishedTitleByPathParams identifies a public title by site,
// language and URL path.
type GetPublishedTitleByPathParams struct {
	SiteID   sql.NullInt64
	Language string
	Path     string
	Now      time.Time
}

// GetPublishedTitleByPath fetches the published public title serving
// the given URL path, restricted to pages on the site with an open
// publication window.
func (q *Queries) GetPublishedTitleByPath(ctx context.Context, arg GetPublishedTitleByPathParams) (model.Title, error) {
	var site string
	args := []any{arg.Path, arg.Language}
	if arg.SiteID.Valid {
		site = "p.site_id = ?"
		args = append(args, arg.SiteID.Int64)
	} else {
		site = "p.site_id IS NULL"
	}
	args = append(args, arg.Now, arg.Now)

	row := q.db.QueryRowContext(ctx,
		`SELECT t.id, t.page_id, t.language, t.title, t.page_title, t.menu_title, t.meta_description,
		 t.slug, t.path, t.has_url_overwrite, t.redirect, t.creation_date, t.published,
		 t.publisher_is_draft, t.publisher_public_id, t.publisher_state
		 FROM titles t JOIN pages p ON p.id = t.page_id
		 WHERE t.path = ? AND t.language = ? AND t.published = 1 AND t.publisher_is_draft = 0
		 AND `+site+`
		 AND (p.publication_date IS NULL OR p.publication_date <= ?)
		 AND (p.publication_end_date IS NULL OR p.publication_end_date > ?)`,
		args...)
	return scanTitle(row)
}

// UnpublishTitlesForPage clears the published flag on a page's public titles.
func (q *Queries) UnpublishTitlesForPage(ctx context.Context, pageID int64) error {
	_, err := q.db.ExecContext(ctx,
		"UPDATE titles SET published = 0 WHERE page_id = ? AND publisher_is_draft = 0", pageID)
	return err
}

func collectTitles(rows *sql.Rows) ([]model.Title, error) {
	var titles []model.Title
	for rows.Next() {
		t, err := scanTitle(rows)
		if err != nil {
			return nil, err
		}
		titles = append(titles, t)
	}
	return titles, rows.Err()
}
