// Copyright (c) 2026 PageForge Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pageforge/pageforge/internal/auth"
	"github.com/pageforge/pageforge/internal/model"
)

// Default admin credentials
const (
	DefaultAdminEmail    = "admin@example.com"
	DefaultAdminPassword = "changeme"
	DefaultAdminName     = "Administrator"
)

// Seed creates initial data: the default site, the default language, an
// admin user and a published home page. Runs once; a present admin user
// skips the seed.
func Seed(ctx context.Context, db *sql.DB, siteDomain string) error {
	queries := New(db)

	_, err := queries.GetUserByEmail(ctx, DefaultAdminEmail)
	if err == nil {
		slog.Info("admin user already exists, skipping seed")
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	passwordHash, err := auth.HashPassword(DefaultAdminPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	user, err := queries.CreateUser(ctx, CreateUserParams{
		Email:        DefaultAdminEmail,
		PasswordHash: passwordHash,
		Role:         model.RoleAdmin,
		Name:         DefaultAdminName,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	site, err := queries.CreateSite(ctx, CreateSiteParams{
		Domain:    siteDomain,
		Name:      siteDomain,
		IsDefault: true,
	})
	if err != nil {
		return fmt.Errorf("creating default site: %w", err)
	}

	if _, err := queries.CreateLanguage(ctx, CreateLanguageParams{
		Code:       "en",
		Name:       "English",
		NativeName: "English",
		IsDefault:  true,
		IsActive:   true,
	}); err != nil {
		return fmt.Errorf("creating default language: %w", err)
	}

	if err := seedHomePage(ctx, queries, site.ID); err != nil {
		return err
	}

	slog.Info("created default admin user",
		"id", user.ID,
		"email", user.Email,
		"password", DefaultAdminPassword,
	)

	return nil
}

// seedHomePage creates a root page with a draft and published public
// title so a fresh deployment serves a home page immediately.
func seedHomePage(ctx context.Context, queries *Queries, siteID int64) error {
	page, err := queries.CreatePage(ctx, CreatePageParams{
		SiteID: sql.NullInt64{Int64: siteID, Valid: true},
		PublicationDate: sql.NullTime{
			Time:  time.Now().Add(-5 * time.Second),
			Valid: true,
		},
	})
	if err != nil {
		return fmt.Errorf("creating home page: %w", err)
	}

	title := CreateTitleParams{
		PageID:         page.ID,
		Language:       "en",
		Title:          "Home",
		Slug:           "home",
		Path:           "home",
		Published:      true,
		PublisherState: model.PublisherStateDefault,
	}

	title.PublisherIsDraft = true
	draft, err := queries.CreateTitle(ctx, title)
	if err != nil {
		return fmt.Errorf("creating home draft title: %w", err)
	}

	title.PublisherIsDraft = false
	public, err := queries.CreateTitle(ctx, title)
	if err != nil {
		return fmt.Errorf("creating home public title: %w", err)
	}

	if err := queries.LinkTitles(ctx, draft.ID, public.ID); err != nil {
		return fmt.Errorf("linking home titles: %w", err)
	}
	return nil
}
