package circulation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/perpusdesa/perpusdesa-backend/pkg/db/models"
	"github.com/perpusdesa/perpusdesa-backend/pkg/enums"
	"github.com/perpusdesa/perpusdesa-backend/pkg/pagination"
)

// Repository encapsulates borrowing-ledger persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a circulation repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads a loan with its member and book.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Borrowing, error) {
	var borrowing models.Borrowing
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Book").
		Preload("Book.Category").
		First(&borrowing, "id = ?", id).
		Error; err != nil {
		return nil, err
	}
	return &borrowing, nil
}

// Create inserts a new loan row.
func (r *Repository) Create(ctx context.Context, borrowing *models.Borrowing) (*models.Borrowing, error) {
	if err := r.db.WithContext(ctx).Create(borrowing).Error; err != nil {
		return nil, err
	}
	return borrowing, nil
}

// Update saves the full loan row.
func (r *Repository) Update(ctx context.Context, borrowing *models.Borrowing) (*models.Borrowing, error) {
	if err := r.db.WithContext(ctx).Save(borrowing).Error; err != nil {
		return nil, err
	}
	return borrowing, nil
}

// Delete removes the loan row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Borrowing{}, "id = ?", id).Error
}

// List returns one page of loans, newest first, with members and books.
func (r *Repository) List(ctx context.Context, page, limit int) ([]models.Borrowing, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Borrowing{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Borrowing
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Book").
		Order("created_at DESC").
		Offset(pagination.Offset(page, limit)).
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListActive returns every loan still out.
func (r *Repository) ListActive(ctx context.Context) ([]models.Borrowing, error) {
	var rows []models.Borrowing
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Book").
		Where("status = ?", enums.BorrowingStatusActive).
		Order("due_date ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListOverdue returns loans still out whose due date has passed.
func (r *Repository) ListOverdue(ctx context.Context, now time.Time) ([]models.Borrowing, error) {
	var rows []models.Borrowing
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Book").
		Where("status = ? AND due_date < ?", enums.BorrowingStatusActive, now).
		Order("due_date ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountByStatus counts loans with the stored status.
func (r *Repository) CountByStatus(ctx context.Context, status enums.BorrowingStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Borrowing{}).
		Where("status = ?", status).
		Count(&count).
		Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountOverdue counts active loans past their due date.
func (r *Repository) CountOverdue(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Borrowing{}).
		Where("status = ? AND due_date < ?", enums.BorrowingStatusActive, now).
		Count(&count).
		Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Recent returns the latest loans for the dashboard.
func (r *Repository) Recent(ctx context.Context, limit int) ([]models.Borrowing, error) {
	var rows []models.Borrowing
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Book").
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ActiveForUser returns the member's loans still out.
func (r *Repository) ActiveForUser(ctx context.Context, userID uuid.UUID) ([]models.Borrowing, error) {
	var rows []models.Borrowing
	if err := r.db.WithContext(ctx).
		Preload("Book").
		Preload("Book.Category").
		Where("user_id = ? AND status = ?", userID, enums.BorrowingStatusActive).
		Order("due_date ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// RecentReturnedForUser returns the member's latest returned loans.
func (r *Repository) RecentReturnedForUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Borrowing, error) {
	var rows []models.Borrowing
	if err := r.db.WithContext(ctx).
		Preload("Book").
		Where("user_id = ? AND status = ?", userID, enums.BorrowingStatusReturned).
		Order("returned_date DESC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountForUserByStatus counts the member's loans with the stored status.
func (r *Repository) CountForUserByStatus(ctx context.Context, userID uuid.UUID, status enums.BorrowingStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Borrowing{}).
		Where("user_id = ? AND status = ?", userID, status).
		Count(&count).
		Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountOverdueForUser counts the member's active loans past their due date.
func (r *Repository) CountOverdueForUser(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Borrowing{}).
		Where("user_id = ? AND status = ? AND due_date < ?", userID, enums.BorrowingStatusActive, now).
		Count(&count).
		Error; err != nil {
		return 0, err
	}
	return count, nil
}
