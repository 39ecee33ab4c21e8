// Copyright (c) 2026 PageForge Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service implements the business rules over the store: title
// resolution with language fallback, form-driven upserts, dirty-state
// tracking, path derivation and publishing.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pageforge/pageforge/internal/i18n"
	"github.com/pageforge/pageforge/internal/model"
	"github.com/pageforge/pageforge/internal/store"
	"github.com/pageforge/pageforge/internal/util"
)

// CacheInvalidator drops cached lookups for a page after its content
// changes. A nil invalidator is a no-op.
type CacheInvalidator interface {
	InvalidatePage(ctx context.Context, pageID int64)
}

// TitleService implements title retrieval and mutation.
type TitleService struct {
	db        *sql.DB
	queries   *store.Queries
	fallbacks i18n.FallbackResolver
	cache     CacheInvalidator
}

// NewTitleService creates a TitleService. The fallback resolver
// supplies the language chains tried when exact-language content is
// missing.
func NewTitleService(db *sql.DB, fallbacks i18n.FallbackResolver) *TitleService {
	return &TitleService{
		db:        db,
		queries:   store.New(db),
		fallbacks: fallbacks,
	}
}

// SetCache attaches a cache invalidator.
func (s *TitleService) SetCache(c CacheInvalidator) {
	s.cache = c
}

// GetTitle returns the draft title for a page and language. On a miss
// with fallback enabled, the page's other draft titles are scanned in
// fallback-chain order and the first match is returned; no match
// yields (nil, nil). Without fallback a miss returns sql.ErrNoRows.
func (s *TitleService) GetTitle(ctx context.Context, page *model.Page, language string, fallback bool) (*model.Title, error) {
	return s.getTitle(ctx, s.queries, page.ID, language, true, fallback)
}

// GetPublicTitle is GetTitle for the public variant.
func (s *TitleService) GetPublicTitle(ctx context.Context, page *model.Page, language string, fallback bool) (*model.Title, error) {
	return s.getTitle(ctx, s.queries, page.ID, language, false, fallback)
}

func (s *TitleService) getTitle(ctx context.Context, q *store.Queries, pageID int64, language string, isDraft, fallback bool) (*model.Title, error) {
	title, err := q.GetTitle(ctx, store.GetTitleParams{
		PageID:   pageID,
		Language: language,
		IsDraft:  isDraft,
	})
	if err == nil {
		return &title, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if !fallback {
		return nil, err
	}

	titles, err := q.ListTitlesForPage(ctx, pageID, isDraft)
	if err != nil {
		return nil, err
	}
	for _, lang := range s.fallbacks.FallbackLanguages(ctx, language) {
		for i := range titles {
			if titles[i].Language == lang {
				return &titles[i], nil
			}
		}
	}
	return nil, nil
}

// Public returns published public titles.
func (s *TitleService) Public(ctx context.Context) ([]model.Title, error) {
	return s.queries.ListPublicTitles(ctx)
}

// Drafts returns all draft titles.
func (s *TitleService) Drafts(ctx context.Context) ([]model.Title, error) {
	return s.queries.ListDraftTitles(ctx)
}

// SetOrCreate upserts the draft title for (page, language) from form
// input. On create the base fields present in the form are copied; on
// update only fields the form declared overwrite the stored row. URL
// overwrite and the advanced fields apply only when the actor has the
// advanced-settings permission.
func (s *TitleService) SetOrCreate(ctx context.Context, actor *model.User, page *model.Page, form *TitleForm, language string) (*model.Title, error) {
	advanced := actor != nil && actor.HasAdvancedSettingsPermission()

	existing, err := s.queries.GetTitle(ctx, store.GetTitleParams{
		PageID:   page.ID,
		Language: language,
		IsDraft:  true,
	})
	if errors.Is(err, sql.ErrNoRows) {
		title := &model.Title{
			PageID:           page.ID,
			Language:         language,
			PublisherIsDraft: true,
		}
		for _, field := range baseTitleFields {
			if form.Declared(field) {
				setTitleField(title, field, form.Get(field))
			}
		}
		if advanced {
			if overwrite := form.Get(FieldOverwriteURL); overwrite != "" {
				title.HasURLOverwrite = true
				title.Path = overwrite
			} else {
				title.HasURLOverwrite = false
			}
			for _, field := range advancedTitleFields {
				setTitleField(title, field, form.Get(field))
			}
		}
		if err := s.Save(ctx, title, false); err != nil {
			return nil, err
		}
		s.recordRevision(ctx, s.queries, *title, "created", actor)
		s.invalidate(ctx, page.ID)
		return title, nil
	}
	if err != nil {
		return nil, err
	}

	for _, field := range baseTitleFields {
		if form.Declared(field) {
			setTitleField(&existing, field, form.Get(field))
		}
	}
	if advanced {
		if form.Declared(FieldOverwriteURL) {
			overwrite := form.Get(FieldOverwriteURL)
			existing.HasURLOverwrite = overwrite != ""
			existing.Path = overwrite
		}
		for _, field := range advancedTitleFields {
			if form.Declared(field) {
				setTitleField(&existing, field, form.Get(field))
			}
		}
	}
	if err := s.Save(ctx, &existing, false); err != nil {
		return nil, err
	}
	s.recordRevision(ctx, s.queries, existing, "edited", actor)
	s.invalidate(ctx, page.ID)
	return &existing, nil
}

// setTitleField assigns a cleaned form value to the named field.
func setTitleField(t *model.Title, field, value string) {
	switch field {
	case FieldSlug:
		t.Slug = value
	case FieldTitle:
		t.Title = value
	case FieldMetaDescription:
		t.MetaDescription = util.NullStringFromValue(value)
	case FieldPageTitle:
		t.PageTitle = util.NullStringFromValue(value)
	case FieldMenuTitle:
		t.MenuTitle = util.NullStringFromValue(value)
	case FieldRedirect:
		t.Redirect = util.NullStringFromValue(value)
	}
}

// Save persists a title, applying the publisher bookkeeping: a
// published title backfills a missing page publication date, and a
// draft whose tracked fields changed is marked dirty unless keepState
// is set. The derived path is refreshed on every save.
func (s *TitleService) Save(ctx context.Context, t *model.Title, keepState bool) error {
	page, err := s.queries.GetPageByID(ctx, t.PageID)
	if err != nil {
		return fmt.Errorf("loading page %d: %w", t.PageID, err)
	}

	// Published pages should always have a publication date. Backfill
	// one slightly in the past so the page is visible immediately.
	if t.Published && !page.PublicationDate.Valid {
		backfill := sql.NullTime{Time: time.Now().Add(-5 * time.Second), Valid: true}
		if err := s.queries.SetPagePublicationDate(ctx, page.ID, backfill); err != nil {
			return fmt.Errorf("backfilling publication date: %w", err)
		}
	}

	if t.PublisherIsDraft && !keepState {
		dirty, err := s.IsNewDirty(ctx, t)
		if err != nil {
			return err
		}
		if dirty {
			t.PublisherState = model.PublisherStateDirty
		}
	}

	if err := s.UpdatePath(ctx, t); err != nil {
		return err
	}

	if t.ID == 0 {
		created, err := s.queries.CreateTitle(ctx, store.CreateTitleParams{
			PageID:           t.PageID,
			Language:         t.Language,
			Title:            t.Title,
			PageTitle:        t.PageTitle,
			MenuTitle:        t.MenuTitle,
			MetaDescription:  t.MetaDescription,
			Slug:             t.Slug,
			Path:             t.Path,
			HasURLOverwrite:  t.HasURLOverwrite,
			Redirect:         t.Redirect,
			Published:        t.Published,
			PublisherIsDraft: t.PublisherIsDraft,
			PublisherState:   t.PublisherState,
		})
		if err != nil {
			return fmt.Errorf("creating title: %w", err)
		}
		*t = created
		return nil
	}

	updated, err := s.queries.UpdateTitle(ctx, store.UpdateTitleParams{
		ID:              t.ID,
		Title:           t.Title,
		PageTitle:       t.PageTitle,
		MenuTitle:       t.MenuTitle,
		MetaDescription: t.MetaDescription,
		Slug:            t.Slug,
		Path:            t.Path,
		HasURLOverwrite: t.HasURLOverwrite,
		Redirect:        t.Redirect,
		Published:       t.Published,
		PublisherState:  t.PublisherState,
	})
	if err != nil {
		return fmt.Errorf("updating title %d: %w", t.ID, err)
	}
	*t = updated
	return nil
}

// IsNewDirty reports whether the title is unsaved or differs from the
// stored row in any tracked field.
func (s *TitleService) IsNewDirty(ctx context.Context, t *model.Title) (bool, error) {
	if t.ID == 0 {
		return true, nil
	}
	old, err := s.queries.GetTitleByID(ctx, t.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return !t.TrackedFieldsEqual(&old), nil
}

// UpdatePath recomputes the title's path from its slug and the parent
// page's title, unless an explicit URL overwrite is set. When the
// parent has no resolvable title even via fallback the parent segment
// is dropped and a warning logged.
func (s *TitleService) UpdatePath(ctx context.Context, t *model.Title) error {
	return s.updatePath(ctx, s.queries, t)
}

func (s *TitleService) updatePath(ctx context.Context, q *store.Queries, t *model.Title) error {
	if t.HasURLOverwrite {
		return nil
	}
	t.Path = t.Slug

	page, err := q.GetPageByID(ctx, t.PageID)
	if err != nil {
		return fmt.Errorf("loading page %d: %w", t.PageID, err)
	}
	if !page.ParentID.Valid {
		return nil
	}

	parentTitle, err := s.getTitle(ctx, q, page.ParentID.Int64, t.Language, t.PublisherIsDraft, true)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if parentTitle == nil || parentTitle.Path == "" {
		slog.Warn("parent title unresolved, path falls back to bare slug",
			"page_id", t.PageID,
			"parent_id", page.ParentID.Int64,
			"language", t.Language,
		)
		return nil
	}
	t.Path = parentTitle.Path + "/" + t.Slug
	return nil
}

// Publish copies the draft title for (page, language) onto its public
// counterpart, creating and linking one if needed, and resets the
// draft's dirty state.
func (s *TitleService) Publish(ctx context.Context, actor *model.User, page *model.Page, language string) (*model.Title, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning publish: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	q := s.queries.WithTx(tx)

	draft, err := q.GetTitle(ctx, store.GetTitleParams{
		PageID:   page.ID,
		Language: language,
		IsDraft:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("loading draft: %w", err)
	}

	// Derive the public path against the public page tree so child
	// paths follow their published parents.
	publicPath := draft.Path
	if !draft.HasURLOverwrite {
		probe := draft
		probe.PublisherIsDraft = false
		if err := s.updatePath(ctx, q, &probe); err != nil {
			return nil, err
		}
		publicPath = probe.Path
	}

	public, err := q.GetTitle(ctx, store.GetTitleParams{
		PageID:   page.ID,
		Language: language,
		IsDraft:  false,
	})
	switch {
	case errors.Is(err, sql.ErrNoRows):
		public, err = q.CreateTitle(ctx, store.CreateTitleParams{
			PageID:           page.ID,
			Language:         language,
			Title:            draft.Title,
			PageTitle:        draft.PageTitle,
			MenuTitle:        draft.MenuTitle,
			MetaDescription:  draft.MetaDescription,
			Slug:             draft.Slug,
			Path:             publicPath,
			HasURLOverwrite:  draft.HasURLOverwrite,
			Redirect:         draft.Redirect,
			Published:        true,
			PublisherIsDraft: false,
			PublisherState:   model.PublisherStateDefault,
		})
		if err != nil {
			return nil, fmt.Errorf("creating public title: %w", err)
		}
		if err := q.LinkTitles(ctx, draft.ID, public.ID); err != nil {
			return nil, fmt.Errorf("linking titles: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("loading public title: %w", err)
	default:
		public, err = q.UpdateTitle(ctx, store.UpdateTitleParams{
			ID:              public.ID,
			Title:           draft.Title,
			PageTitle:       draft.PageTitle,
			MenuTitle:       draft.MenuTitle,
			MetaDescription: draft.MetaDescription,
			Slug:            draft.Slug,
			Path:            publicPath,
			HasURLOverwrite: draft.HasURLOverwrite,
			Redirect:        draft.Redirect,
			Published:       true,
			PublisherState:  model.PublisherStateDefault,
		})
		if err != nil {
			return nil, fmt.Errorf("updating public title: %w", err)
		}
	}

	// The draft is now in sync with its public counterpart.
	draft, err = q.UpdateTitle(ctx, store.UpdateTitleParams{
		ID:              draft.ID,
		Title:           draft.Title,
		PageTitle:       draft.PageTitle,
		MenuTitle:       draft.MenuTitle,
		MetaDescription: draft.MetaDescription,
		Slug:            draft.Slug,
		Path:            draft.Path,
		HasURLOverwrite: draft.HasURLOverwrite,
		Redirect:        draft.Redirect,
		Published:       true,
		PublisherState:  model.PublisherStateDefault,
	})
	if err != nil {
		return nil, fmt.Errorf("resetting draft state: %w", err)
	}

	if !page.PublicationDate.Valid {
		backfill := sql.NullTime{Time: time.Now().Add(-5 * time.Second), Valid: true}
		if err := q.SetPagePublicationDate(ctx, page.ID, backfill); err != nil {
			return nil, fmt.Errorf("backfilling publication date: %w", err)
		}
	}

	batch := uuid.New().String()
	s.recordRevisionBatch(ctx, q, batch, "published", actor, draft, public)

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing publish: %w", err)
	}

	if err := s.queries.CreateEvent(ctx, store.CreateEventParams{
		Level:    model.EventLevelInfo,
		Category: model.EventCategoryPublish,
		Message:  fmt.Sprintf("published %q (%s)", public.Title, language),
		UserID:   actorID(actor),
	}); err != nil {
		slog.Warn("recording publish event", "error", err)
	}

	s.invalidate(ctx, page.ID)
	return &public, nil
}

func (s *TitleService) recordRevision(ctx context.Context, q *store.Queries, t model.Title, comment string, actor *model.User) {
	s.recordRevisionBatch(ctx, q, uuid.New().String(), comment, actor, t)
}

func (s *TitleService) recordRevisionBatch(ctx context.Context, q *store.Queries, batch, comment string, actor *model.User, titles ...model.Title) {
	for _, t := range titles {
		if _, err := q.CreateTitleRevision(ctx, store.CreateTitleRevisionParams{
			BatchID:   batch,
			Title:     t,
			Comment:   comment,
			ChangedBy: actorNullID(actor),
		}); err != nil {
			slog.Warn("recording title revision", "title_id", t.ID, "error", err)
		}
	}
}

// Revisions returns the revision history of a title, newest first.
func (s *TitleService) Revisions(ctx context.Context, titleID int64) ([]model.TitleRevision, error) {
	return s.queries.ListTitleRevisions(ctx, titleID)
}

func (s *TitleService) invalidate(ctx context.Context, pageID int64) {
	if s.cache != nil {
		s.cache.InvalidatePage(ctx, pageID)
	}
}

func actorID(actor *model.User) int64 {
	if actor == nil {
		return 0
	}
	return actor.ID
}

func actorNullID(actor *model.User) sql.NullInt64 {
	if actor == nil {
		return sql.NullInt64{}
	}
	return util.NullInt64FromValue(actor.ID)
}
