package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/pageforge/pageforge/internal/model"
)

// testDB creates a temporary test database.
func testDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp("", "pageforge-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	f.Close()

	db, err := NewDB(dbPath)
	if err != nil {
		os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}

	return db, cleanup
}

func TestCreateSite(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	site, err := q.CreateSite(ctx, CreateSiteParams{
		Domain:    "example.com",
		Name:      "Example",
		IsDefault: true,
	})
	if err != nil {
		t.Fatalf("CreateSite: %v", err)
	}
	if site.ID == 0 {
		t.Error("site.ID should not be 0")
	}
	if site.Domain != "example.com" {
		t.Errorf("Domain = %q, want %q", site.Domain, "example.com")
	}

	got, err := q.GetDefaultSite(ctx)
	if err != nil {
		t.Fatalf("GetDefaultSite: %v", err)
	}
	if got.ID != site.ID {
		t.Errorf("GetDefaultSite ID = %d, want %d", got.ID, site.ID)
	}

	byDomain, err := q.GetSiteByDomain(ctx, "example.com")
	if err != nil {
		t.Fatalf("GetSiteByDomain: %v", err)
	}
	if byDomain.ID != site.ID {
		t.Errorf("GetSiteByDomain ID = %d, want %d", byDomain.ID, site.ID)
	}
}

func TestCreateLanguage(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	en, err := q.CreateLanguage(ctx, CreateLanguageParams{
		Code: "en", Name: "English", NativeName: "English",
		IsDefault: true, IsActive: true, Position: 0,
	})
	if err != nil {
		t.Fatalf("CreateLanguage: %v", err)
	}
	if _, err := q.CreateLanguage(ctx, CreateLanguageParams{
		Code: "de", Name: "German", NativeName: "Deutsch",
		IsActive: true, Fallbacks: "en", Position: 1,
	}); err != nil {
		t.Fatalf("CreateLanguage de: %v", err)
	}

	def, err := q.GetDefaultLanguage(ctx)
	if err != nil {
		t.Fatalf("GetDefaultLanguage: %v", err)
	}
	if def.ID != en.ID {
		t.Errorf("default language = %q, want en", def.Code)
	}

	active, err := q.ListActiveLanguages(ctx)
	if err != nil {
		t.Fatalf("ListActiveLanguages: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("len(active) = %d, want 2", len(active))
	}
	if active[0].Code != "en" || active[1].Code != "de" {
		t.Errorf("active order = [%s %s], want [en de]", active[0].Code, active[1].Code)
	}
}

func TestCreatePageTreePath(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	root1, err := q.CreatePage(ctx, CreatePageParams{})
	if err != nil {
		t.Fatalf("CreatePage root1: %v", err)
	}
	root2, err := q.CreatePage(ctx, CreatePageParams{})
	if err != nil {
		t.Fatalf("CreatePage root2: %v", err)
	}
	child, err := q.CreatePage(ctx, CreatePageParams{
		ParentID: sql.NullInt64{Int64: root1.ID, Valid: true},
	})
	if err != nil {
		t.Fatalf("CreatePage child: %v", err)
	}

	if root1.TreePath != "0001" {
		t.Errorf("root1.TreePath = %q, want %q", root1.TreePath, "0001")
	}
	if root2.TreePath != "0002" {
		t.Errorf("root2.TreePath = %q, want %q", root2.TreePath, "0002")
	}
	if child.TreePath != "00010001" {
		t.Errorf("child.TreePath = %q, want %q", child.TreePath, "00010001")
	}

	// Tree order: root1, its child, then root2
	pages, err := q.ListPages(ctx)
	if err != nil {
		t.Fatalf("ListPages: %v", err)
	}
	wantOrder := []int64{root1.ID, child.ID, root2.ID}
	if len(pages) != len(wantOrder) {
		t.Fatalf("len(pages) = %d, want %d", len(pages), len(wantOrder))
	}
	for i, want := range wantOrder {
		if pages[i].ID != want {
			t.Errorf("pages[%d].ID = %d, want %d", i, pages[i].ID, want)
		}
	}
}

func TestCreateAndGetTitle(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	page, err := q.CreatePage(ctx, CreatePageParams{})
	if err != nil {
		t.Fatalf("CreatePage: %v", err)
	}

	created, err := q.CreateTitle(ctx, CreateTitleParams{
		PageID:           page.ID,
		Language:         "en",
		Title:            "Home",
		Slug:             "home",
		Path:             "home",
		PublisherIsDraft: true,
	})
	if err != nil {
		t.Fatalf("CreateTitle: %v", err)
	}
	if created.ID == 0 {
		t.Error("created.ID should not be 0")
	}
	if created.CreationDate.IsZero() {
		t.Error("CreationDate should be set")
	}

	got, err := q.GetTitle(ctx, GetTitleParams{PageID: page.ID, Language: "en", IsDraft: true})
	if err != nil {
		t.Fatalf("GetTitle: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("GetTitle ID = %d, want %d", got.ID, created.ID)
	}

	// Public variant does not exist yet
	_, err = q.GetTitle(ctx, GetTitleParams{PageID: page.ID, Language: "en", IsDraft: false})
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetTitle public variant err = %v, want sql.ErrNoRows", err)
	}
}

func TestTitleUniquePerVariant(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	page, err := q.CreatePage(ctx, CreatePageParams{})
	if err != nil {
		t.Fatalf("CreatePage: %v", err)
	}

	if _, err := q.CreateTitle(ctx, CreateTitleParams{
		PageID: page.ID, Language: "en", Title: "Draft", Slug: "a", PublisherIsDraft: true,
	}); err != nil {
		t.Fatalf("CreateTitle draft: %v", err)
	}

	// A second draft for the same (page, language) violates the
	// uniqueness constraint.
	if _, err := q.CreateTitle(ctx, CreateTitleParams{
		PageID: page.ID, Language: "en", Title: "Another", Slug: "b", PublisherIsDraft: true,
	}); err == nil {
		t.Error("expected unique constraint violation for duplicate draft")
	}

	// The public variant for the same pair is fine.
	if _, err := q.CreateTitle(ctx, CreateTitleParams{
		PageID: page.ID, Language: "en", Title: "Public", Slug: "a", PublisherIsDraft: false,
	}); err != nil {
		t.Errorf("CreateTitle public: %v", err)
	}
}

func TestLinkTitles(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	page, err := q.CreatePage(ctx, CreatePageParams{})
	if err != nil {
		t.Fatalf("CreatePage: %v", err)
	}
	draft, err := q.CreateTitle(ctx, CreateTitleParams{
		PageID: page.ID, Language: "en", Title: "Home", Slug: "home", PublisherIsDraft: true,
	})
	if err != nil {
		t.Fatalf("CreateTitle draft: %v", err)
	}
	public, err := q.CreateTitle(ctx, CreateTitleParams{
		PageID: page.ID, Language: "en", Title: "Home", Slug: "home", PublisherIsDraft: false,
	})
	if err != nil {
		t.Fatalf("CreateTitle public: %v", err)
	}

	if err := q.LinkTitles(ctx, draft.ID, public.ID); err != nil {
		t.Fatalf("LinkTitles: %v", err)
	}

	draft, err = q.GetTitleByID(ctx, draft.ID)
	if err != nil {
		t.Fatalf("GetTitleByID draft: %v", err)
	}
	public, err = q.GetTitleByID(ctx, public.ID)
	if err != nil {
		t.Fatalf("GetTitleByID public: %v", err)
	}

	if !draft.PublisherPublicID.Valid || draft.PublisherPublicID.Int64 != public.ID {
		t.Errorf("draft.PublisherPublicID = %v, want %d", draft.PublisherPublicID, public.ID)
	}
	if !public.PublisherPublicID.Valid || public.PublisherPublicID.Int64 != draft.ID {
		t.Errorf("public.PublisherPublicID = %v, want %d", public.PublisherPublicID, draft.ID)
	}
}

func TestListPublicAndDraftTitles(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	page, err := q.CreatePage(ctx, CreatePageParams{})
	if err != nil {
		t.Fatalf("CreatePage: %v", err)
	}

	for _, arg := range []CreateTitleParams{
		{PageID: page.ID, Language: "en", Slug: "home", PublisherIsDraft: true},
		{PageID: page.ID, Language: "en", Slug: "home", PublisherIsDraft: false, Published: true},
		{PageID: page.ID, Language: "de", Slug: "start", PublisherIsDraft: false, Published: false},
	} {
		if _, err := q.CreateTitle(ctx, arg); err != nil {
			t.Fatalf("CreateTitle %s: %v", arg.Language, err)
		}
	}

	public, err := q.ListPublicTitles(ctx)
	if err != nil {
		t.Fatalf("ListPublicTitles: %v", err)
	}
	// Only the published public row qualifies
	if len(public) != 1 || public[0].Language != "en" {
		t.Errorf("ListPublicTitles = %d rows, want the published en row", len(public))
	}

	drafts, err := q.ListDraftTitles(ctx)
	if err != nil {
		t.Fatalf("ListDraftTitles: %v", err)
	}
	if len(drafts) != 1 || !drafts[0].PublisherIsDraft {
		t.Errorf("ListDraftTitles = %d rows, want 1 draft", len(drafts))
	}
}

func TestCreateTitleRevision(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	page, err := q.CreatePage(ctx, CreatePageParams{})
	if err != nil {
		t.Fatalf("CreatePage: %v", err)
	}
	title, err := q.CreateTitle(ctx, CreateTitleParams{
		PageID: page.ID, Language: "en", Title: "Home", Slug: "home", PublisherIsDraft: true,
	})
	if err != nil {
		t.Fatalf("CreateTitle: %v", err)
	}

	rev, err := q.CreateTitleRevision(ctx, CreateTitleRevisionParams{
		BatchID: "batch-1",
		Title:   title,
		Comment: "initial",
	})
	if err != nil {
		t.Fatalf("CreateTitleRevision: %v", err)
	}
	if rev.TitleID != title.ID || rev.Slug != "home" {
		t.Errorf("revision = %+v, want snapshot of title %d", rev, title.ID)
	}

	title.Slug = "start"
	if _, err := q.UpdateTitle(ctx, UpdateTitleParams{
		ID: title.ID, Title: title.Title, Slug: title.Slug, Path: "start",
	}); err != nil {
		t.Fatalf("UpdateTitle: %v", err)
	}
	updated, err := q.GetTitleByID(ctx, title.ID)
	if err != nil {
		t.Fatalf("GetTitleByID: %v", err)
	}
	if _, err := q.CreateTitleRevision(ctx, CreateTitleRevisionParams{
		BatchID: "batch-2",
		Title:   updated,
		Comment: "rename",
	}); err != nil {
		t.Fatalf("CreateTitleRevision second: %v", err)
	}

	revs, err := q.ListTitleRevisions(ctx, title.ID)
	if err != nil {
		t.Fatalf("ListTitleRevisions: %v", err)
	}
	if len(revs) != 2 {
		t.Fatalf("len(revs) = %d, want 2", len(revs))
	}
	// Newest first
	if revs[0].Slug != "start" || revs[1].Slug != "home" {
		t.Errorf("revision order = [%s %s], want [start home]", revs[0].Slug, revs[1].Slug)
	}
}

func TestListExpiredPages(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	now := time.Now()
	expired, err := q.CreatePage(ctx, CreatePageParams{
		PublicationEndDate: sql.NullTime{Time: now.Add(-time.Hour), Valid: true},
	})
	if err != nil {
		t.Fatalf("CreatePage expired: %v", err)
	}
	live, err := q.CreatePage(ctx, CreatePageParams{
		PublicationEndDate: sql.NullTime{Time: now.Add(time.Hour), Valid: true},
	})
	if err != nil {
		t.Fatalf("CreatePage live: %v", err)
	}
	if _, err := q.CreatePage(ctx, CreatePageParams{}); err != nil {
		t.Fatalf("CreatePage no window: %v", err)
	}
	for _, page := range []model.Page{expired, live} {
		if _, err := q.CreateTitle(ctx, CreateTitleParams{
			PageID:    page.ID,
			Language:  "en",
			Title:     "Windowed",
			Slug:      "windowed",
			Path:      "windowed",
			Published: true,
		}); err != nil {
			t.Fatalf("CreateTitle: %v", err)
		}
	}

	got, err := q.ListExpiredPages(ctx, now)
	if err != nil {
		t.Fatalf("ListExpiredPages: %v", err)
	}
	if len(got) != 1 || got[0].ID != expired.ID {
		t.Errorf("ListExpiredPages = %d rows, want only page %d", len(got), expired.ID)
	}

	// Once the public titles are unpublished the page drops out.
	if err := q.UnpublishTitlesForPage(ctx, expired.ID); err != nil {
		t.Fatalf("UnpublishTitlesForPage: %v", err)
	}
	got, err = q.ListExpiredPages(ctx, now)
	if err != nil {
		t.Fatalf("ListExpiredPages (after unpublish): %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ListExpiredPages = %d rows after unpublish, want 0", len(got))
	}
}

func TestSeed(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()

	if err := Seed(ctx, db, "example.com"); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	// Second run is a no-op
	if err := Seed(ctx, db, "example.com"); err != nil {
		t.Fatalf("Seed rerun: %v", err)
	}

	q := New(db)
	user, err := q.GetUserByEmail(ctx, DefaultAdminEmail)
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if user.Role != model.RoleAdmin {
		t.Errorf("Role = %q, want %q", user.Role, model.RoleAdmin)
	}

	site, err := q.GetDefaultSite(ctx)
	if err != nil {
		t.Fatalf("GetDefaultSite: %v", err)
	}
	if _, err := q.GetDefaultLanguage(ctx); err != nil {
		t.Errorf("GetDefaultLanguage: %v", err)
	}

	// A fresh deployment serves a home page immediately.
	home, err := q.Pages(nil).GetHome(ctx, &site)
	if err != nil {
		t.Fatalf("GetHome: %v", err)
	}
	draft, err := q.GetTitle(ctx, GetTitleParams{PageID: home.ID, Language: "en", IsDraft: true})
	if err != nil {
		t.Fatalf("GetTitle (draft): %v", err)
	}
	public, err := q.GetTitle(ctx, GetTitleParams{PageID: home.ID, Language: "en", IsDraft: false})
	if err != nil {
		t.Fatalf("GetTitle (public): %v", err)
	}
	if !public.Published {
		t.Error("seeded home public title is not published")
	}
	if draft.PublisherPublicID.Int64 != public.ID || public.PublisherPublicID.Int64 != draft.ID {
		t.Error("seeded home draft and public titles are not linked")
	}
}
