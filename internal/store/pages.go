// Copyright (c) 2026 PageForge Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pageforge/pageforge/internal/model"
)

const pageColumns = "id, site_id, parent_id, tree_path, publication_date, publication_end_date, created_at, updated_at"

func scanPage(row interface{ Scan(...any) error }) (model.Page, error) {
	var p model.Page
	err := row.Scan(&p.ID, &p.SiteID, &p.ParentID, &p.TreePath,
		&p.PublicationDate, &p.PublicationEndDate, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// CreatePageParams holds the fields for CreatePage.
type CreatePageParams struct {
	SiteID             sql.NullInt64
	ParentID           sql.NullInt64
	PublicationDate    sql.NullTime
	PublicationEndDate sql.NullTime
}

// CreatePage inserts a page and materializes its tree path. Each tree
// level contributes a fixed-width step so that ordering by tree_path
// walks the tree depth first.
func (q *Queries) CreatePage(ctx context.Context, arg CreatePageParams) (model.Page, error) {
	treePath, err := q.nextTreePath(ctx, arg.ParentID)
	if err != nil {
		return model.Page{}, fmt.Errorf("computing tree path: %w", err)
	}

	now := time.Now()
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO pages (site_id, parent_id, tree_path, publication_date, publication_end_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		arg.SiteID, arg.ParentID, treePath, arg.PublicationDate, arg.PublicationEndDate, now, now)
	if err != nil {
		return model.Page{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Page{}, err
	}
	return q.GetPageByID(ctx, id)
}

// nextTreePath returns the tree path for a new child of the given
// parent: the parent's path plus a zero-padded sibling counter.
func (q *Queries) nextTreePath(ctx context.Context, parentID sql.NullInt64) (string, error) {
	var prefix string
	var siblings int64
	if parentID.Valid {
		parent, err := q.GetPageByID(ctx, parentID.Int64)
		if err != nil {
			return "", err
		}
		prefix = parent.TreePath
		err = q.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM pages WHERE parent_id = ?", parentID.Int64).Scan(&siblings)
		if err != nil {
			return "", err
		}
	} else {
		err := q.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM pages WHERE parent_id IS NULL").Scan(&siblings)
		if err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("%s%04d", prefix, siblings+1), nil
}

// GetPageByID fetches a page by ID.
func (q *Queries) GetPageByID(ctx context.Context, id int64) (model.Page, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+pageColumns+" FROM pages WHERE id = ?", id)
	return scanPage(row)
}

// UpdatePagePublicationParams holds the fields for UpdatePagePublication.
type UpdatePagePublicationParams struct {
	ID                 int64
	PublicationDate    sql.NullTime
	PublicationEndDate sql.NullTime
}

// UpdatePagePublication sets the publication window of a page.
func (q *Queries) UpdatePagePublication(ctx context.Context, arg UpdatePagePublicationParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE pages SET publication_date = ?, publication_end_date = ?, updated_at = ? WHERE id = ?`,
		arg.PublicationDate, arg.PublicationEndDate, time.Now(), arg.ID)
	return err
}

// SetPagePublicationDate sets only the publication date. Used to
// backfill a date on pages that got published without one.
func (q *Queries) SetPagePublicationDate(ctx context.Context, id int64, date sql.NullTime) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE pages SET publication_date = ?, updated_at = ? WHERE id = ?`,
		date, time.Now(), id)
	return err
}

// ListChildPages returns the direct children of a page in tree order.
func (q *Queries) ListChildPages(ctx context.Context, parentID int64) ([]model.Page, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+pageColumns+" FROM pages WHERE parent_id = ? ORDER BY tree_path", parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPages(rows)
}

// ListPages returns all pages in tree order.
func (q *Queries) ListPages(ctx context.Context) ([]model.Page, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+pageColumns+" FROM pages ORDER BY tree_path")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPages(rows)
}

// ListExpiredPages returns pages whose publication window closed at or
// before the given instant and that still carry published public
// titles, so each expiry is handled once.
func (q *Queries) ListExpiredPages(ctx context.Context, now time.Time) ([]model.Page, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+pageColumns+` FROM pages
		 WHERE publication_end_date IS NOT NULL AND publication_end_date <= ?
		 AND EXISTS (SELECT 1 FROM titles t WHERE t.page_id = pages.id
		             AND t.publisher_is_draft = 0 AND t.published = 1)`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPages(rows)
}

// DeletePage removes a page. Children and titles cascade.
func (q *Queries) DeletePage(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, "DELETE FROM pages WHERE id = ?", id)
	return err
}

func collectPages(rows *sql.Rows) ([]model.Page, error) {
	var pages []model.Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}
