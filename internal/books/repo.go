package books

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/perpusdesa/perpusdesa-backend/pkg/db/models"
	"github.com/perpusdesa/perpusdesa-backend/pkg/enums"
	"github.com/perpusdesa/perpusdesa-backend/pkg/pagination"
)

// Repository encapsulates book persistence, including the stock counters the
// circulation coordinator mutates.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a books repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads the book with its category.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	var book models.Book
	if err := r.db.WithContext(ctx).
		Preload("Category").
		First(&book, "id = ?", id).
		Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// List returns one page of books, newest first, with categories preloaded.
func (r *Repository) List(ctx context.Context, page, limit int) ([]models.Book, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Book{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Book
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Order("created_at DESC").
		Offset(pagination.Offset(page, limit)).
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Create inserts a new book row.
func (r *Repository) Create(ctx context.Context, book *models.Book) (*models.Book, error) {
	if err := r.db.WithContext(ctx).Create(book).Error; err != nil {
		return nil, err
	}
	return book, nil
}

// Update saves the full book row.
func (r *Repository) Update(ctx context.Context, book *models.Book) (*models.Book, error) {
	if err := r.db.WithContext(ctx).Save(book).Error; err != nil {
		return nil, err
	}
	return book, nil
}

// Delete removes the book row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Book{}, "id = ?", id).Error
}

// ReserveCopy takes one copy off the shelf with a single conditional update,
// so two concurrent loans cannot both take the last copy. It reports false
// when no loanable copy remains.
func (r *Repository) ReserveCopy(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ? AND available_stock > 0 AND status = ?", id, enums.BookStatusAvailable).
		UpdateColumn("available_stock", gorm.Expr("available_stock - 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ReleaseCopy puts one copy back on the shelf, clamped at the total stock.
// The clamp matters after a stock-shrink edit while copies were still out.
func (r *Repository) ReleaseCopy(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ?", id).
		UpdateColumn("available_stock", gorm.Expr(
			"CASE WHEN available_stock < stock THEN available_stock + 1 ELSE available_stock END",
		)).
		Error
}

// CountActiveBorrowings counts loans still out for the book.
func (r *Repository) CountActiveBorrowings(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Borrowing{}).
		Where("book_id = ? AND status = ?", id, enums.BorrowingStatusActive).
		Count(&count).
		Error; err != nil {
		return 0, err
	}
	return count, nil
}

// BorrowingsForBook returns the book's borrowing history, newest first.
func (r *Repository) BorrowingsForBook(ctx context.Context, id uuid.UUID) ([]models.Borrowing, error) {
	var rows []models.Borrowing
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("book_id = ?", id).
		Order("created_at DESC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// PendingWaitlistsForBook returns the book's open waitlist entries.
func (r *Repository) PendingWaitlistsForBook(ctx context.Context, id uuid.UUID) ([]models.Waitlist, error) {
	var rows []models.Waitlist
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("book_id = ? AND status = ?", id, enums.WaitlistStatusPending).
		Order("created_at ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountAll counts every title, for the dashboard totals.
func (r *Repository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Book{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// LowStock returns loanable books running low, at most limit rows.
func (r *Repository) LowStock(ctx context.Context, threshold, limit int) ([]models.Book, error) {
	var rows []models.Book
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Where("available_stock > 0 AND available_stock <= ? AND status = ?", threshold, enums.BookStatusAvailable).
		Order("available_stock ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	return rows, nil
}
