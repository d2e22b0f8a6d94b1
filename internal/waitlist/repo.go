package waitlist

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/perpusdesa/perpusdesa-backend/pkg/db/models"
	"github.com/perpusdesa/perpusdesa-backend/pkg/enums"
	"github.com/perpusdesa/perpusdesa-backend/pkg/pagination"
)

// Repository encapsulates waitlist persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a waitlist repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads a queue entry with its member and book.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Waitlist, error) {
	var entry models.Waitlist
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Book").
		Preload("Book.Category").
		First(&entry, "id = ?", id).
		Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// Create inserts a new queue entry.
func (r *Repository) Create(ctx context.Context, entry *models.Waitlist) (*models.Waitlist, error) {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// Update saves the full queue entry.
func (r *Repository) Update(ctx context.Context, entry *models.Waitlist) (*models.Waitlist, error) {
	if err := r.db.WithContext(ctx).Save(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// Delete removes the queue entry.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Waitlist{}, "id = ?", id).Error
}

// HasPending reports whether the member already waits for the book.
func (r *Repository) HasPending(ctx context.Context, userID, bookID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Waitlist{}).
		Where("user_id = ? AND book_id = ? AND status = ?", userID, bookID, enums.WaitlistStatusPending).
		Count(&count).
		Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns one page of queue entries, newest first.
func (r *Repository) List(ctx context.Context, page, limit int) ([]models.Waitlist, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Waitlist{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Waitlist
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

// CountByStatus counts queue entries with the given status.
func (r *Repository) CountByStatus(ctx context.Context, status enums.WaitlistStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Waitlist{}).
		Where("status = ?", status).
		Count(&count).
		Error; err != nil {
		return 0, err
	}
	return count, nil
}

// PendingForUser returns the member's open queue entries, oldest first.
func (r *Repository) PendingForUser(ctx context.Context, userID uuid.UUID) ([]models.Waitlist, error) {
	var rows []models.Waitlist
	if err := r.db.WithContext(ctx).
		Preload("Book").
		Preload("Book.Category").
		Where("user_id = ? AND status = ?", userID, enums.WaitlistStatusPending).
		Order("created_at ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// RecentPending returns the oldest unresolved entries for the dashboard.
func (r *Repository) RecentPending(ctx context.Context, limit int) ([]models.Waitlist, error) {
	var rows []models.Waitlist
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Book").
		Where("status = ?", enums.WaitlistStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	return rows, nil
}
