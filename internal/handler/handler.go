// Copyright (c) 2026 PageForge Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler provides the REST API handlers.
package handler

import (
	"database/sql"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/microcosm-cc/bluemonday"

	"github.com/pageforge/pageforge/internal/i18n"
	"github.com/pageforge/pageforge/internal/middleware"
	"github.com/pageforge/pageforge/internal/service"
	"github.com/pageforge/pageforge/internal/sites"
	"github.com/pageforge/pageforge/internal/store"
)

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	db       *sql.DB
	queries  *store.Queries
	sessions *scs.SessionManager
	titles   *service.TitleService
	pages    *service.PageService
	sites    *sites.Resolver
	matcher  *i18n.Matcher
	sanitize *bluemonday.Policy

	defaultLanguage string
}

// New creates the API handler.
func New(db *sql.DB, sm *scs.SessionManager, titles *service.TitleService,
	pages *service.PageService, siteResolver *sites.Resolver, matcher *i18n.Matcher,
	defaultLanguage string) *Handler {
	return &Handler{
		db:              db,
		queries:         store.New(db),
		sessions:        sm,
		titles:          titles,
		pages:           pages,
		sites:           siteResolver,
		matcher:         matcher,
		sanitize:        bluemonday.StrictPolicy(),
		defaultLanguage: defaultLanguage,
	}
}

// Routes returns the API route tree. Session middleware is expected to
// wrap the returned handler.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/status", h.Status)

	r.With(middleware.LoginRateLimit()).Post("/auth/login", h.Login)
	r.Post("/auth/logout", h.Logout)

	// Public site surface
	r.Get("/site/home", h.Home)
	r.Get("/site/resolve", h.Resolve)

	// Editing surface
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(h.sessions))
		r.Use(middleware.LoadUser(h.sessions, h.db))

		r.Get("/auth/me", h.Me)

		r.Post("/pages", h.CreatePage)
		r.Get("/pages", h.ListPages)
		r.Get("/pages/{pageID}/titles", h.ListTitles)
		r.Put("/pages/{pageID}/titles/{language}", h.UpsertTitle)
		r.Post("/pages/{pageID}/titles/{language}/publish", h.PublishTitle)
		r.Get("/titles/{titleID}/revisions", h.ListRevisions)

		r.With(middleware.RequireAdmin).Get("/events", h.ListEvents)
	})

	return r
}

// StatusResponse contains API status information.
type StatusResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Status returns the API status.
func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, StatusResponse{Status: "ok", Version: "v1"})
}
