package waitlist

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/perpusdesa/perpusdesa-backend/internal/books"
	"github.com/perpusdesa/perpusdesa-backend/internal/users"
	"github.com/perpusdesa/perpusdesa-backend/pkg/db/models"
	"github.com/perpusdesa/perpusdesa-backend/pkg/enums"
	pkgerrors "github.com/perpusdesa/perpusdesa-backend/pkg/errors"
	"github.com/perpusdesa/perpusdesa-backend/pkg/pagination"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (g gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return g.db.WithContext(ctx).Transaction(fn)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:waitlist_" + uuid.NewString() + "?mode=memory&cache=shared"
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
		Tx:           gormTxRunner{db: db},
		WaitlistRepo: NewRepository(db),
		BookRepo:     books.NewRepository(db),
		UserRepo:     users.NewRepository(db),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func seedMember(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()
	user := models.User{
		Name:         "Rina",
		Email:        uuid.NewString() + "@desa.id",
		PasswordHash: "x",
		Role:         enums.UserRoleMember,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user.ID
}

func seedBook(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()
	category := models.Category{Name: "Umum " + uuid.NewString()[:8]}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	book := models.Book{
		CategoryID:     category.ID,
		Title:          "Ronggeng Dukuh Paruk",
		Author:         "Ahmad Tohari",
		Publisher:      "Gramedia",
		Year:           1982,
		Pages:          408,
		Stock:          1,
		AvailableStock: 0,
		Status:         enums.BookStatusAvailable,
	}
	if err := db.Create(&book).Error; err != nil {
		t.Fatalf("seed book: %v", err)
	}
	return book.ID
}

func TestRequestCreatesPendingEntry(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	userID := seedMember(t, db)
	bookID := seedBook(t, db)

	entry, err := svc.Request(ctx, userID, bookID, nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if entry.Status != enums.WaitlistStatusPending {
		t.Fatalf("expected menunggu, got %s", entry.Status)
	}
	if entry.ApprovedAt != nil {
		t.Fatal("fresh entry must not carry an approval timestamp")
	}

	// Queueing never touches the shelf.
	var book models.Book
	if err := db.First(&book, "id = ?", bookID).Error; err != nil {
		t.Fatalf("load book: %v", err)
	}
	if book.AvailableStock != 0 {
		t.Fatalf("unexpected shelf count %d", book.AvailableStock)
	}
}

func TestRequestDuplicatePendingRejected(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	userID := seedMember(t, db)
	bookID := seedBook(t, db)

	if _, err := svc.Request(ctx, userID, bookID, nil); err != nil {
		t.Fatalf("first request: %v", err)
	}
	_, err := svc.Request(ctx, userID, bookID, nil)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}

	// A different member may still queue for the same book.
	if _, err := svc.Request(ctx, seedMember(t, db), bookID, nil); err != nil {
		t.Fatalf("second member request: %v", err)
	}
}

func TestRequestAllowedAgainAfterResolution(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	userID := seedMember(t, db)
	bookID := seedBook(t, db)

	entry, err := svc.Request(ctx, userID, bookID, nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := svc.Resolve(ctx, entry.ID, enums.WaitlistStatusRejected, nil); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if _, err := svc.Request(ctx, userID, bookID, nil); err != nil {
		t.Fatalf("re-request after rejection: %v", err)
	}
}

func TestResolveApprovalTimestamps(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	entry, err := svc.Request(ctx, seedMember(t, db), seedBook(t, db), nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	approved, err := svc.Resolve(ctx, entry.ID, enums.WaitlistStatusApproved, nil)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.ApprovedAt == nil {
		t.Fatal("expected approval timestamp")
	}
	firstApproval := *approved.ApprovedAt

	rejected, err := svc.Resolve(ctx, entry.ID, enums.WaitlistStatusRejected, nil)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.ApprovedAt != nil {
		t.Fatal("rejection must clear the approval timestamp")
	}

	time.Sleep(5 * time.Millisecond)
	reapproved, err := svc.Resolve(ctx, entry.ID, enums.WaitlistStatusApproved, nil)
	if err != nil {
		t.Fatalf("re-approve: %v", err)
	}
	if reapproved.ApprovedAt == nil || !reapproved.ApprovedAt.After(firstApproval) {
		t.Fatalf("expected refreshed approval timestamp, got %v", reapproved.ApprovedAt)
	}
}

func TestRemoveAndPendingForUser(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	userID := seedMember(t, db)

	first, err := svc.Request(ctx, userID, seedBook(t, db), nil)
	if err != nil {
		t.Fatalf("first request: %v", err)
	}
	if _, err := svc.Request(ctx, userID, seedBook(t, db), nil); err != nil {
		t.Fatalf("second request: %v", err)
	}

	pending, err := svc.PendingForUser(ctx, userID)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending entries, got %d", len(pending))
	}

	if err := svc.Remove(ctx, first.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	pending, err = svc.PendingForUser(ctx, userID)
	if err != nil {
		t.Fatalf("pending after remove: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending entry, got %d", len(pending))
	}
}

func TestListStats(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	userID := seedMember(t, db)

	kept, err := svc.Request(ctx, userID, seedBook(t, db), nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	second, err := svc.Request(ctx, userID, seedBook(t, db), nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := svc.Resolve(ctx, second.ID, enums.WaitlistStatusApproved, nil); err != nil {
		t.Fatalf("approve: %v", err)
	}

	page, err := svc.List(ctx, pagination.Params{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Waitlists) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(page.Waitlists))
	}
	if page.Stats.Pending != 1 || page.Stats.Approved != 1 || page.Stats.Rejected != 0 {
		t.Fatalf("unexpected stats %+v", page.Stats)
	}
	still, err := svc.Get(ctx, kept.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if still.Status != enums.WaitlistStatusPending {
		t.Fatalf("expected untouched entry to stay menunggu, got %s", still.Status)
	}
}
