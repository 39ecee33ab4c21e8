// Copyright (c) 2026 PageForge Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pageforge/pageforge/internal/model"
	"github.com/pageforge/pageforge/internal/store"
)

// titleDocument is the public JSON shape of a title. A missing
// translation renders as an empty document, never as null.
type titleDocument struct {
	Language        string `json:"language"`
	Title           string `json:"title"`
	PageTitle       string `json:"page_title"`
	MenuTitle       string `json:"menu_title"`
	MetaDescription string `json:"meta_description"`
	Slug            string `json:"slug"`
	Path            string `json:"path"`
	Published       bool   `json:"published"`
}

func titleDoc(t *model.Title) titleDocument {
	return titleDocument{
		Language:        t.Language,
		Title:           t.Title,
		PageTitle:       t.PageTitle.String,
		MenuTitle:       t.MenuTitle.String,
		MetaDescription: t.MetaDescription.String,
		Slug:            t.Slug,
		Path:            t.Path,
		Published:       t.Published,
	}
}

func emptyTitleDoc(e *model.EmptyTitle) titleDocument {
	return titleDocument{
		Language:        e.Language,
		Title:           e.Title(),
		PageTitle:       e.PageTitle(),
		MenuTitle:       e.MenuTitle(),
		MetaDescription: e.MetaDescription(),
		Slug:            e.Slug(),
		Path:            e.Path(),
		Published:       e.Published(),
	}
}

type pageDocument struct {
	ID       int64         `json:"id"`
	ParentID *int64        `json:"parent_id,omitempty"`
	Title    titleDocument `json:"title"`
	Redirect string        `json:"redirect,omitempty"`
}

func pageDoc(p *model.Page, title titleDocument, redirect string) pageDocument {
	doc := pageDocument{ID: p.ID, Title: title, Redirect: redirect}
	if p.ParentID.Valid {
		doc.ParentID = &p.ParentID.Int64
	}
	return doc
}

// requestLanguage picks the content language: an explicit lang query
// parameter wins, otherwise the Accept-Language header is matched
// against the active languages.
func (h *Handler) requestLanguage(r *http.Request) string {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		return lang
	}
	if h.matcher != nil {
		return h.matcher.Match(r.Header.Get("Accept-Language"))
	}
	return h.defaultLanguage
}

func (h *Handler) currentSite(r *http.Request) *model.Site {
	if h.sites == nil {
		return nil
	}
	site, err := h.sites.FromHost(r.Context(), r.Host)
	if err != nil {
		return nil
	}
	return &site
}

// Home returns the site's home page, the first published root page in
// tree order.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	site := h.currentSite(r)
	language := h.requestLanguage(r)

	home, err := h.pages.GetHome(r.Context(), site)
	if errors.Is(err, store.ErrNoHome) {
		WriteNotFound(w, "no published home page")
		return
	}
	if err != nil {
		slog.Error("resolving home page", "error", err)
		WriteInternalError(w, "resolving home page")
		return
	}

	title, err := h.titles.GetPublicTitle(r.Context(), &home, language, true)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		slog.Error("loading home title", "page_id", home.ID, "error", err)
		WriteInternalError(w, "loading home title")
		return
	}

	doc := emptyTitleDoc(model.NewEmptyTitle(language))
	if title != nil {
		doc = titleDoc(title)
	}
	WriteSuccess(w, pageDoc(&home, doc, ""))
}

// Resolve serves a URL path: the published page and title it maps to,
// or the redirect recorded on the title.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(r.URL.Query().Get("path"), "/")
	if path == "" {
		WriteBadRequest(w, "path parameter is required", nil)
		return
	}
	site := h.currentSite(r)
	language := h.requestLanguage(r)

	resolved, err := h.pages.ResolvePath(r.Context(), site, language, path)
	if errors.Is(err, sql.ErrNoRows) {
		WriteNotFound(w, "no published page at this path")
		return
	}
	if err != nil {
		slog.Error("resolving path", "path", path, "error", err)
		WriteInternalError(w, "resolving path")
		return
	}

	WriteSuccess(w, pageDoc(&resolved.Page, titleDoc(&resolved.Title), resolved.Title.Redirect.String))
}
