// Copyright (c) 2026 PageForge Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pageforge/pageforge/internal/middleware"
	"github.com/pageforge/pageforge/internal/model"
	"github.com/pageforge/pageforge/internal/service"
	"github.com/pageforge/pageforge/internal/util"
)

// upsertTitleRequest carries title form input. Pointer fields
// distinguish "not submitted" from "submitted empty": only submitted
// fields overwrite the stored row.
type upsertTitleRequest struct {
	Title           *string `json:"title"`
	Slug            *string `json:"slug"`
	PageTitle       *string `json:"page_title"`
	MenuTitle       *string `json:"menu_title"`
	MetaDescription *string `json:"meta_description"`
	OverwriteURL    *string `json:"overwrite_url"`
	Redirect        *string `json:"redirect"`
}

func (h *Handler) pageParam(w http.ResponseWriter, r *http.Request) (model.Page, bool) {
	pageID, err := strconv.ParseInt(chi.URLParam(r, "pageID"), 10, 64)
	if err != nil {
		WriteBadRequest(w, "invalid page ID", nil)
		return model.Page{}, false
	}
	page, err := h.pages.GetPage(r.Context(), pageID)
	if errors.Is(err, sql.ErrNoRows) {
		WriteNotFound(w, "page not found")
		return model.Page{}, false
	}
	if err != nil {
		slog.Error("loading page", "page_id", pageID, "error", err)
		WriteInternalError(w, "loading page")
		return model.Page{}, false
	}
	return page, true
}

func (h *Handler) languageParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	language := chi.URLParam(r, "language")
	if !util.IsValidLangCode(language) {
		WriteBadRequest(w, "invalid language code", nil)
		return "", false
	}
	return language, true
}

// UpsertTitle creates or updates the draft title for a page and
// language from submitted fields.
func (h *Handler) UpsertTitle(w http.ResponseWriter, r *http.Request) {
	page, ok := h.pageParam(w, r)
	if !ok {
		return
	}
	language, ok := h.languageParam(w, r)
	if !ok {
		return
	}

	var req upsertTitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "invalid JSON body", nil)
		return
	}

	form := service.NewTitleForm()
	declare := func(field string, value *string) {
		if value != nil {
			form.Set(field, h.sanitize.Sanitize(strings.TrimSpace(*value)))
		}
	}
	declare(service.FieldTitle, req.Title)
	declare(service.FieldPageTitle, req.PageTitle)
	declare(service.FieldMenuTitle, req.MenuTitle)
	declare(service.FieldMetaDescription, req.MetaDescription)
	declare(service.FieldOverwriteURL, req.OverwriteURL)
	declare(service.FieldRedirect, req.Redirect)

	if req.Slug != nil {
		slug := util.Slugify(*req.Slug)
		if slug == "" && req.Title != nil {
			slug = util.Slugify(*req.Title)
		}
		if !util.IsValidSlug(slug) {
			WriteValidationError(w, map[string]string{"slug": "cannot be turned into a valid slug"})
			return
		}
		form.Set(service.FieldSlug, slug)
	} else if req.Title != nil {
		// Creating without an explicit slug derives one from the title.
		if slug := util.Slugify(*req.Title); util.IsValidSlug(slug) {
			form.Set(service.FieldSlug, slug)
		}
	}

	title, err := h.titles.SetOrCreate(r.Context(), middleware.GetUser(r), &page, form, language)
	if err != nil {
		slog.Error("upserting title", "page_id", page.ID, "language", language, "error", err)
		WriteInternalError(w, "saving title")
		return
	}
	WriteSuccess(w, title)
}

// ListTitles returns a page's draft titles across languages.
func (h *Handler) ListTitles(w http.ResponseWriter, r *http.Request) {
	page, ok := h.pageParam(w, r)
	if !ok {
		return
	}
	titles, err := h.queries.ListTitlesForPage(r.Context(), page.ID, true)
	if err != nil {
		slog.Error("listing titles", "page_id", page.ID, "error", err)
		WriteInternalError(w, "listing titles")
		return
	}
	WriteSuccess(w, titles)
}

// PublishTitle publishes the draft title for a page and language.
func (h *Handler) PublishTitle(w http.ResponseWriter, r *http.Request) {
	page, ok := h.pageParam(w, r)
	if !ok {
		return
	}
	language, ok := h.languageParam(w, r)
	if !ok {
		return
	}

	public, err := h.titles.Publish(r.Context(), middleware.GetUser(r), &page, language)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "no draft title to publish")
			return
		}
		slog.Error("publishing title", "page_id", page.ID, "language", language, "error", err)
		WriteInternalError(w, "publishing title")
		return
	}
	WriteSuccess(w, public)
}

// ListRevisions returns a title's revision history, newest first.
func (h *Handler) ListRevisions(w http.ResponseWriter, r *http.Request) {
	titleID, err := strconv.ParseInt(chi.URLParam(r, "titleID"), 10, 64)
	if err != nil {
		WriteBadRequest(w, "invalid title ID", nil)
		return
	}
	revisions, err := h.titles.Revisions(r.Context(), titleID)
	if err != nil {
		slog.Error("listing revisions", "title_id", titleID, "error", err)
		WriteInternalError(w, "listing revisions")
		return
	}
	WriteSuccess(w, revisions)
}
