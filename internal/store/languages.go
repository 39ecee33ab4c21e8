// Copyright (c) 2026 PageForge Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/pageforge/pageforge/internal/model"
)

const languageColumns = "id, code, name, native_name, is_default, is_active, fallbacks, position, created_at, updated_at"

func scanLanguage(row interface{ Scan(...any) error }) (model.Language, error) {
	var l model.Language
	err := row.Scan(&l.ID, &l.Code, &l.Name, &l.NativeName, &l.IsDefault,
		&l.IsActive, &l.Fallbacks, &l.Position, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

// CreateLanguageParams holds the fields for CreateLanguage.
type CreateLanguageParams struct {
	Code       string
	Name       string
	NativeName string
	IsDefault  bool
	IsActive   bool
	Fallbacks  string
	Position   int
}

// CreateLanguage inserts a new language.
func (q *Queries) CreateLanguage(ctx context.Context, arg CreateLanguageParams) (model.Language, error) {
	now := time.Now()
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO languages (code, name, native_name, is_default, is_active, fallbacks, position, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Code, arg.Name, arg.NativeName, arg.IsDefault, arg.IsActive,
		arg.Fallbacks, arg.Position, now, now)
	if err != nil {
		return model.Language{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Language{}, err
	}
	row := q.db.QueryRowContext(ctx,
		"SELECT "+languageColumns+" FROM languages WHERE id = ?", id)
	return scanLanguage(row)
}

// GetLanguageByCode fetches a language by its ISO code.
func (q *Queries) GetLanguageByCode(ctx context.Context, code string) (model.Language, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+languageColumns+" FROM languages WHERE code = ?", code)
	return scanLanguage(row)
}

// GetDefaultLanguage fetches the language marked as default.
func (q *Queries) GetDefaultLanguage(ctx context.Context) (model.Language, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+languageColumns+" FROM languages WHERE is_default = 1 LIMIT 1")
	return scanLanguage(row)
}

// ListActiveLanguages returns active languages in position order.
func (q *Queries) ListActiveLanguages(ctx context.Context) ([]model.Language, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+languageColumns+" FROM languages WHERE is_active = 1 ORDER BY position, code")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var langs []model.Language
	for rows.Next() {
		l, err := scanLanguage(rows)
		if err != nil {
			return nil, err
		}
		langs = append(langs, l)
	}
	return langs, rows.Err()
}
