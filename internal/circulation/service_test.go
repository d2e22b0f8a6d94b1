package circulation

import (
	"context"
	"sync"
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
	dsn := "file:circulation_" + uuid.NewString() + "?mode=memory&cache=shared&_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// sqlite serializes writers; a single pooled connection keeps
	// concurrent transactions from tripping over shared-cache locks.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
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
		Tx:            gormTxRunner{db: db},
		BorrowingRepo: NewRepository(db),
		BookRepo:      books.NewRepository(db),
		UserRepo:      users.NewRepository(db),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func seedMember(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()
	user := models.User{
		Name:         "Dewi",
		Email:        uuid.NewString() + "@desa.id",
		PasswordHash: "x",
		Role:         enums.UserRoleMember,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user.ID
}

func seedBook(t *testing.T, db *gorm.DB, stock, available int) uuid.UUID {
	t.Helper()
	category := models.Category{Name: "Umum " + uuid.NewString()[:8]}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	book := models.Book{
		CategoryID:     category.ID,
		Title:          "Di Bawah Lindungan Ka'bah",
		Author:         "Hamka",
		Publisher:      "Balai Pustaka",
		Year:           1938,
		Pages:          140,
		Stock:          stock,
		AvailableStock: available,
		Status:         enums.BookStatusAvailable,
	}
	if err := db.Create(&book).Error; err != nil {
		t.Fatalf("seed book: %v", err)
	}
	return book.ID
}

func loadBook(t *testing.T, db *gorm.DB, id uuid.UUID) models.Book {
	t.Helper()
	var book models.Book
	if err := db.First(&book, "id = ?", id).Error; err != nil {
		t.Fatalf("load book: %v", err)
	}
	return book
}

func date(daysFromNow int) time.Time {
	return time.Now().AddDate(0, 0, daysFromNow)
}

func TestIssueTakesCopyOffShelf(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	userID := seedMember(t, db)
	bookID := seedBook(t, db, 3, 3)

	borrowing, err := svc.Issue(ctx, IssueInput{
		UserID:  userID,
		BookID:  bookID,
		DueDate: date(7),
	})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if borrowing.Status != enums.BorrowingStatusActive {
		t.Fatalf("expected dipinjam, got %s", borrowing.Status)
	}
	if borrowing.ReturnedDate != nil {
		t.Fatal("active loan must not carry a returned date")
	}
	if borrowing.User == nil || borrowing.Book == nil {
		t.Fatal("expected member and book preloaded")
	}

	book := loadBook(t, db, bookID)
	if book.AvailableStock != 2 || book.Stock != 3 {
		t.Fatalf("unexpected counters: stock=%d available=%d", book.Stock, book.AvailableStock)
	}
}

func TestIssueRejectsBadDueDate(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)

	_, err := svc.Issue(context.Background(), IssueInput{
		UserID:       seedMember(t, db),
		BookID:       seedBook(t, db, 1, 1),
		BorrowedDate: date(0),
		DueDate:      date(-1),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestIssueOutOfStock(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	userID := seedMember(t, db)
	bookID := seedBook(t, db, 2, 0)

	_, err := svc.Issue(ctx, IssueInput{UserID: userID, BookID: bookID, DueDate: date(7)})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeOutOfStock {
		t.Fatalf("expected out of stock, got %v", err)
	}

	// The failed issue must leave no ledger row behind.
	var count int64
	if err := db.Model(&models.Borrowing{}).Where("book_id = ?", bookID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no borrowings, got %d", count)
	}
}

func TestIssueLastCopyRace(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	bookID := seedBook(t, db, 1, 1)
	first := seedMember(t, db)
	second := seedMember(t, db)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, userID := range []uuid.UUID{first, second} {
		wg.Add(1)
		go func(slot int, id uuid.UUID) {
			defer wg.Done()
			_, err := svc.Issue(ctx, IssueInput{UserID: id, BookID: bookID, DueDate: date(7)})
			results[slot] = err
		}(i, userID)
	}
	wg.Wait()

	var won, lost int
	for _, err := range results {
		switch {
		case err == nil:
			won++
		case pkgerrors.As(err) != nil && pkgerrors.As(err).Code() == pkgerrors.CodeOutOfStock:
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if won != 1 || lost != 1 {
		t.Fatalf("expected exactly one winner, got won=%d lost=%d", won, lost)
	}

	book := loadBook(t, db, bookID)
	if book.AvailableStock != 0 {
		t.Fatalf("expected empty shelf, got %d", book.AvailableStock)
	}
	var count int64
	if err := db.Model(&models.Borrowing{}).Where("book_id = ?", bookID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one ledger row, got %d", count)
	}
}

func TestReturnPutsCopyBack(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	bookID := seedBook(t, db, 1, 1)

	borrowing, err := svc.Issue(ctx, IssueInput{
		UserID:  seedMember(t, db),
		BookID:  bookID,
		DueDate: date(7),
	})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if loadBook(t, db, bookID).AvailableStock != 0 {
		t.Fatal("expected shelf empty after issue")
	}

	returned := enums.BorrowingStatusReturned
	updated, err := svc.Update(ctx, borrowing.ID, UpdateInput{Status: &returned})
	if err != nil {
		t.Fatalf("return: %v", err)
	}
	if updated.Status != enums.BorrowingStatusReturned || updated.ReturnedDate == nil {
		t.Fatalf("expected stamped return, got %+v", updated)
	}
	if loadBook(t, db, bookID).AvailableStock != 1 {
		t.Fatal("expected copy back on the shelf")
	}

	// A second save of the already-returned loan must not release again.
	notes := "kondisi baik"
	if _, err := svc.Update(ctx, borrowing.ID, UpdateInput{Notes: &notes}); err != nil {
		t.Fatalf("edit notes: %v", err)
	}
	if loadBook(t, db, bookID).AvailableStock != 1 {
		t.Fatal("expected shelf count unchanged after notes edit")
	}
}

func TestOverdueLabelKeepsCopyOut(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	bookID := seedBook(t, db, 1, 1)

	borrowing, err := svc.Issue(ctx, IssueInput{
		UserID:  seedMember(t, db),
		BookID:  bookID,
		DueDate: date(7),
	})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	late := enums.BorrowingStatusOverdue
	updated, err := svc.Update(ctx, borrowing.ID, UpdateInput{Status: &late})
	if err != nil {
		t.Fatalf("label overdue: %v", err)
	}
	if updated.Status != enums.BorrowingStatusOverdue {
		t.Fatalf("expected terlambat, got %s", updated.Status)
	}
	if loadBook(t, db, bookID).AvailableStock != 0 {
		t.Fatal("labelling a loan overdue must not touch the shelf")
	}
}

func TestRemoveActiveLoanRestoresStock(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	bookID := seedBook(t, db, 2, 2)

	borrowing, err := svc.Issue(ctx, IssueInput{
		UserID:  seedMember(t, db),
		BookID:  bookID,
		DueDate: date(7),
	})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := svc.Remove(ctx, borrowing.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if loadBook(t, db, bookID).AvailableStock != 2 {
		t.Fatal("expected copy restored after delete")
	}
	if _, err := svc.Get(ctx, borrowing.ID); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRemoveReturnedLoanLeavesStockAlone(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	bookID := seedBook(t, db, 1, 1)

	borrowing, err := svc.Issue(ctx, IssueInput{
		UserID:  seedMember(t, db),
		BookID:  bookID,
		DueDate: date(7),
	})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	returned := enums.BorrowingStatusReturned
	if _, err := svc.Update(ctx, borrowing.ID, UpdateInput{Status: &returned}); err != nil {
		t.Fatalf("return: %v", err)
	}
	if err := svc.Remove(ctx, borrowing.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if loadBook(t, db, bookID).AvailableStock != 1 {
		t.Fatal("deleting a returned loan must not release again")
	}
}

func TestListStatsAndOverdueAreLive(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	userID := seedMember(t, db)

	// One loan on time, one past due, one returned.
	onTime := seedBook(t, db, 1, 1)
	pastDue := seedBook(t, db, 1, 1)
	done := seedBook(t, db, 1, 1)

	if _, err := svc.Issue(ctx, IssueInput{UserID: userID, BookID: onTime, DueDate: date(7)}); err != nil {
		t.Fatalf("issue on-time: %v", err)
	}
	lateLoan, err := svc.Issue(ctx, IssueInput{UserID: userID, BookID: pastDue, DueDate: date(3)})
	if err != nil {
		t.Fatalf("issue late: %v", err)
	}
	if err := db.Model(&models.Borrowing{}).Where("id = ?", lateLoan.ID).
		UpdateColumn("due_date", date(-2)).Error; err != nil {
		t.Fatalf("backdate: %v", err)
	}
	doneLoan, err := svc.Issue(ctx, IssueInput{UserID: userID, BookID: done, DueDate: date(7)})
	if err != nil {
		t.Fatalf("issue done: %v", err)
	}
	returned := enums.BorrowingStatusReturned
	if _, err := svc.Update(ctx, doneLoan.ID, UpdateInput{Status: &returned}); err != nil {
		t.Fatalf("return: %v", err)
	}

	page, err := svc.List(ctx, pagination.Params{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Borrowings) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(page.Borrowings))
	}
	if page.Stats.Active != 2 || page.Stats.Returned != 1 || page.Stats.Overdue != 1 {
		t.Fatalf("unexpected stats %+v", page.Stats)
	}

	overdue, err := svc.Overdue(ctx)
	if err != nil {
		t.Fatalf("overdue: %v", err)
	}
	if len(overdue) != 1 || overdue[0].ID != lateLoan.ID {
		t.Fatalf("unexpected overdue rows: %+v", overdue)
	}
}
