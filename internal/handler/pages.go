// Copyright (c) 2026 PageForge Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/pageforge/pageforge/internal/model"
	"github.com/pageforge/pageforge/internal/store"
	"github.com/pageforge/pageforge/internal/util"
)

type createPageRequest struct {
	SiteID             *int64  `json:"site_id"`
	ParentID           *int64  `json:"parent_id"`
	PublicationDate    *string `json:"publication_date"`     // RFC 3339
	PublicationEndDate *string `json:"publication_end_date"` // RFC 3339
}

type pageRow struct {
	ID                 int64  `json:"id"`
	SiteID             *int64 `json:"site_id,omitempty"`
	ParentID           *int64 `json:"parent_id,omitempty"`
	TreePath           string `json:"tree_path"`
	PublicationDate    string `json:"publication_date,omitempty"`
	PublicationEndDate string `json:"publication_end_date,omitempty"`
}

func toPageRow(p *model.Page) pageRow {
	row := pageRow{ID: p.ID, TreePath: p.TreePath}
	if p.SiteID.Valid {
		row.SiteID = &p.SiteID.Int64
	}
	if p.ParentID.Valid {
		row.ParentID = &p.ParentID.Int64
	}
	if p.PublicationDate.Valid {
		row.PublicationDate = p.PublicationDate.Time.Format(time.RFC3339)
	}
	if p.PublicationEndDate.Valid {
		row.PublicationEndDate = p.PublicationEndDate.Time.Format(time.RFC3339)
	}
	return row
}

// CreatePage creates a page, optionally under a parent and with a
// publication window.
func (h *Handler) CreatePage(w http.ResponseWriter, r *http.Request) {
	var req createPageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "invalid JSON body", nil)
		return
	}

	arg := store.CreatePageParams{}
	if req.SiteID != nil {
		arg.SiteID = util.NullInt64FromValue(*req.SiteID)
	}
	if req.ParentID != nil {
		arg.ParentID = util.NullInt64FromValue(*req.ParentID)
	}

	fieldErrors := map[string]string{}
	if req.PublicationDate != nil {
		t, err := time.Parse(time.RFC3339, *req.PublicationDate)
		if err != nil {
			fieldErrors["publication_date"] = "must be an RFC 3339 timestamp"
		} else {
			arg.PublicationDate.Time, arg.PublicationDate.Valid = t, true
		}
	}
	if req.PublicationEndDate != nil {
		t, err := time.Parse(time.RFC3339, *req.PublicationEndDate)
		if err != nil {
			fieldErrors["publication_end_date"] = "must be an RFC 3339 timestamp"
		} else {
			arg.PublicationEndDate.Time, arg.PublicationEndDate.Valid = t, true
		}
	}
	if len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	page, err := h.pages.CreatePage(r.Context(), arg)
	if err != nil {
		slog.Error("creating page", "error", err)
		WriteInternalError(w, "creating page")
		return
	}
	WriteCreated(w, toPageRow(&page))
}

// ListPages lists pages in tree order. With published=1 only pages
// currently visible on the requesting site are returned, optionally
// restricted to a language.
func (h *Handler) ListPages(w http.ResponseWriter, r *http.Request) {
	var (
		pages []model.Page
		err   error
	)
	if r.URL.Query().Get("published") == "1" {
		site := h.currentSite(r)
		pages, err = h.pages.Published(r.Context(), site, r.URL.Query().Get("lang"))
	} else {
		pages, err = h.queries.ListPages(r.Context())
	}
	if err != nil {
		slog.Error("listing pages", "error", err)
		WriteInternalError(w, "listing pages")
		return
	}

	rows := make([]pageRow, 0, len(pages))
	for i := range pages {
		rows = append(rows, toPageRow(&pages[i]))
	}
	WriteSuccess(w, rows)
}

// ListEvents returns the most recent event log entries.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.queries.ListRecentEvents(r.Context(), 50)
	if err != nil {
		slog.Error("listing events", "error", err)
		WriteInternalError(w, "listing events")
		return
	}

	type eventRow struct {
		ID       int64  `json:"id"`
		Level    string `json:"level"`
		Category string `json:"category"`
		Message  string `json:"message"`
	}
	rows := make([]eventRow, 0, len(events))
	for _, e := range events {
		rows = append(rows, eventRow{ID: e.ID, Level: e.Level, Category: e.Category, Message: e.Message})
	}
	WriteSuccess(w, rows)
}
