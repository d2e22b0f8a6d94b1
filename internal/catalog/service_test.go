package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/perpusdesa/perpusdesa-backend/internal/books"
	"github.com/perpusdesa/perpusdesa-backend/internal/categories"
	"github.com/perpusdesa/perpusdesa-backend/internal/waitlist"
	"github.com/perpusdesa/perpusdesa-backend/pkg/db/models"
	"github.com/perpusdesa/perpusdesa-backend/pkg/enums"
	pkgerrors "github.com/perpusdesa/perpusdesa-backend/pkg/errors"
	"github.com/perpusdesa/perpusdesa-backend/pkg/pagination"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:catalog_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Category{},
		&models.User{},
		&models.Book{},
		&models.Borrowing{},
		&models.Waitlist{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		CatalogRepo:  NewRepository(db),
		BookRepo:     books.NewRepository(db),
		CategoryRepo: categories.NewRepository(db),
		WaitlistRepo: waitlist.NewRepository(db),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func seedCategory(t *testing.T, db *gorm.DB, name string) uuid.UUID {
	t.Helper()
	category := models.Category{Name: name}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	return category.ID
}

func seedBook(t *testing.T, db *gorm.DB, categoryID uuid.UUID, title, author string, available int, status enums.BookStatus) uuid.UUID {
	t.Helper()
	book := models.Book{
		CategoryID:     categoryID,
		Title:          title,
		Author:         author,
		Publisher:      "Gramedia",
		Year:           2001,
		Pages:          200,
		Stock:          5,
		AvailableStock: available,
		Status:         status,
	}
	if err := db.Create(&book).Error; err != nil {
		t.Fatalf("seed book %s: %v", title, err)
	}
	return book.ID
}

func TestListSearchMatchesTitleAuthorPublisher(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	fiksi := seedCategory(t, db, "Fiksi")

	seedBook(t, db, fiksi, "Laskar Pelangi", "Andrea Hirata", 3, enums.BookStatusAvailable)
	seedBook(t, db, fiksi, "Sang Pemimpi", "Andrea Hirata", 3, enums.BookStatusAvailable)
	seedBook(t, db, fiksi, "Bumi Manusia", "Pramoedya Ananta Toer", 3, enums.BookStatusAvailable)

	page, err := svc.List(ctx, Filters{Search: "andrea"}, pagination.Params{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Books) != 2 {
		t.Fatalf("expected 2 matches by author, got %d", len(page.Books))
	}

	page, err = svc.List(ctx, Filters{Search: "BUMI"}, pagination.Params{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Books) != 1 || page.Books[0].Title != "Bumi Manusia" {
		t.Fatalf("expected title match, got %+v", page.Books)
	}

	page, err = svc.List(ctx, Filters{Search: "gramedia"}, pagination.Params{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Books) != 3 {
		t.Fatalf("expected publisher match on all, got %d", len(page.Books))
	}
}

func TestListStatusTersediaMeansLoanable(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	fiksi := seedCategory(t, db, "Fiksi")

	onShelf := seedBook(t, db, fiksi, "Tersedia", "A", 2, enums.BookStatusAvailable)
	seedBook(t, db, fiksi, "Habis", "B", 0, enums.BookStatusAvailable)
	seedBook(t, db, fiksi, "Rusak", "C", 2, enums.BookStatusDamaged)

	page, err := svc.List(ctx, Filters{Status: enums.BookStatusAvailable}, pagination.Params{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Books) != 1 || page.Books[0].ID != onShelf {
		t.Fatalf("expected only the loanable title, got %+v", page.Books)
	}

	// Other statuses filter on the stored value alone.
	page, err = svc.List(ctx, Filters{Status: enums.BookStatusDamaged}, pagination.Params{})
	if err != nil {
		t.Fatalf("list damaged: %v", err)
	}
	if len(page.Books) != 1 || page.Books[0].Title != "Rusak" {
		t.Fatalf("expected the damaged title, got %+v", page.Books)
	}
}

func TestListCategoryFilterAndDropdown(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	fiksi := seedCategory(t, db, "Fiksi")
	sejarah := seedCategory(t, db, "Sejarah")

	seedBook(t, db, fiksi, "Novel", "A", 1, enums.BookStatusAvailable)
	seedBook(t, db, sejarah, "Babad Tanah Jawi", "B", 1, enums.BookStatusAvailable)

	page, err := svc.List(ctx, Filters{CategoryID: sejarah}, pagination.Params{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Books) != 1 || page.Books[0].Title != "Babad Tanah Jawi" {
		t.Fatalf("unexpected rows %+v", page.Books)
	}
	if len(page.Categories) != 2 {
		t.Fatalf("expected both categories in dropdown, got %d", len(page.Categories))
	}
}

func TestDetailRelatedAndViewerFlag(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	fiksi := seedCategory(t, db, "Fiksi")
	sejarah := seedCategory(t, db, "Sejarah")

	target := seedBook(t, db, fiksi, "Utama", "A", 1, enums.BookStatusAvailable)
	for i, title := range []string{"Satu", "Dua", "Tiga", "Empat", "Lima"} {
		seedBook(t, db, fiksi, title, "B", 1+i, enums.BookStatusAvailable)
	}
	seedBook(t, db, fiksi, "Kosong", "C", 0, enums.BookStatusAvailable)
	seedBook(t, db, sejarah, "Lain Kategori", "D", 1, enums.BookStatusAvailable)

	viewer := models.User{Name: "Tono", Email: uuid.NewString() + "@desa.id", PasswordHash: "x"}
	if err := db.Create(&viewer).Error; err != nil {
		t.Fatalf("seed viewer: %v", err)
	}

	detail, err := svc.Detail(ctx, target, uuid.Nil)
	if err != nil {
		t.Fatalf("detail anonymous: %v", err)
	}
	if detail.HasPendingRequest {
		t.Fatal("anonymous viewer cannot have a pending request")
	}
	if len(detail.Related) != 4 {
		t.Fatalf("expected 4 related titles, got %d", len(detail.Related))
	}
	for _, related := range detail.Related {
		if related.CategoryID != fiksi || related.ID == target || related.AvailableStock == 0 {
			t.Fatalf("unexpected related title %+v", related)
		}
	}

	if err := db.Create(&models.Waitlist{
		UserID: viewer.ID,
		BookID: target,
		Status: enums.WaitlistStatusPending,
	}).Error; err != nil {
		t.Fatalf("seed waitlist: %v", err)
	}
	detail, err = svc.Detail(ctx, target, viewer.ID)
	if err != nil {
		t.Fatalf("detail viewer: %v", err)
	}
	if !detail.HasPendingRequest {
		t.Fatal("expected pending flag for queued viewer")
	}
}

func TestDetailUnknownBook(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)

	_, err := svc.Detail(context.Background(), uuid.New(), uuid.Nil)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
