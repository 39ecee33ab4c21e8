// Copyright (c) 2026 PageForge Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/pageforge/pageforge/internal/model"
)

const revisionColumns = `id, batch_id, title_id, page_id, language, title, page_title, menu_title,
	meta_description, slug, path, has_url_overwrite, redirect, published, comment, changed_by, created_at`

func scanRevision(row interface{ Scan(...any) error }) (model.TitleRevision, error) {
	var r model.TitleRevision
	err := row.Scan(&r.ID, &r.BatchID, &r.TitleID, &r.PageID, &r.Language,
		&r.Title, &r.PageTitle, &r.MenuTitle, &r.MetaDescription, &r.Slug,
		&r.Path, &r.HasURLOverwrite, &r.Redirect, &r.Published, &r.Comment,
		&r.ChangedBy, &r.CreatedAt)
	return r, err
}

// CreateTitleRevisionParams holds the fields for CreateTitleRevision.
type CreateTitleRevisionParams struct {
	BatchID   string
	Title     model.Title
	Comment   string
	ChangedBy sql.NullInt64
}

// CreateTitleRevision snapshots a title's content fields. Publisher
// bookkeeping fields are not versioned.
func (q *Queries) CreateTitleRevision(ctx context.Context, arg CreateTitleRevisionParams) (model.TitleRevision, error) {
	t := arg.Title
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO title_revisions (batch_id, title_id, page_id, language, title, page_title,
		 menu_title, meta_description, slug, path, has_url_overwrite, redirect, published,
		 comment, changed_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.BatchID, t.ID, t.PageID, t.Language, t.Title, t.PageTitle,
		t.MenuTitle, t.MetaDescription, t.Slug, t.Path, t.HasURLOverwrite,
		t.Redirect, t.Published, arg.Comment, arg.ChangedBy, time.Now())
	if err != nil {
		return model.TitleRevision{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.TitleRevision{}, err
	}
	row := q.db.QueryRowContext(ctx,
		"SELECT "+revisionColumns+" FROM title_revisions WHERE id = ?", id)
	return scanRevision(row)
}

// ListTitleRevisions returns the revision history of a title, newest first.
func (q *Queries) ListTitleRevisions(ctx context.Context, titleID int64) ([]model.TitleRevision, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+revisionColumns+" FROM title_revisions WHERE title_id = ? ORDER BY id DESC", titleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var revs []model.TitleRevision
	for rows.Next() {
		r, err := scanRevision(rows)
		if err != nil {
			return nil, err
		}
		revs = append(revs, r)
	}
	return revs, rows.Err()
}
