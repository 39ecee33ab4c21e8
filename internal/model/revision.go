// Copyright (c) 2026 PageForge Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// TitleRevision is a historical snapshot of a title's content fields.
// Publisher bookkeeping (draft flag, public link, dirty state) is not
// versioned. Revisions written by a single operation share a batch ID.
type TitleRevision struct {
	ID              int64
	BatchID         string // uuid grouping revisions from one operation
	TitleID         int64
	PageID          int64
	Language        string
	Title           string
	PageTitle       sql.NullString
	MenuTitle       sql.NullString
	MetaDescription sql.NullString
	Slug            string
	Path            string
	HasURLOverwrite bool
	Redirect        sql.NullString
	Published       bool
	Comment         string
	ChangedBy       sql.NullInt64
	CreatedAt       time.Time
}
