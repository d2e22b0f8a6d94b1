package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/perpusdesa/perpusdesa-backend/pkg/db/models"
	"github.com/perpusdesa/perpusdesa-backend/pkg/enums"
	"github.com/perpusdesa/perpusdesa-backend/pkg/pagination"
)

const relatedBookCount = 4

// Repository runs the public catalog queries over the books table.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Search returns one filtered page of titles with categories preloaded.
func (r *Repository) Search(ctx context.Context, filters Filters, page, limit int) ([]models.Book, int64, error) {
	var total int64
	if err := applyFilters(r.db.WithContext(ctx).Model(&models.Book{}), filters).
		Count(&total).
		Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Book
	if err := applyFilters(r.db.WithContext(ctx).Model(&models.Book{}), filters).
		Preload("Category").
		Order("title ASC").
		Offset(pagination.Offset(page, limit)).
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Related returns up to four other loanable titles from the same category.
func (r *Repository) Related(ctx context.Context, categoryID, excludeID uuid.UUID) ([]models.Book, error) {
	var rows []models.Book
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Where("category_id = ? AND id <> ?", categoryID, excludeID).
		Where("status = ? AND available_stock > 0", enums.BookStatusAvailable).
		Order("created_at DESC").
		Limit(relatedBookCount).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func applyFilters(query *gorm.DB, filters Filters) *gorm.DB {
	if term := strings.TrimSpace(filters.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		query = query.Where(
			"LOWER(title) LIKE ? OR LOWER(author) LIKE ? OR LOWER(publisher) LIKE ?",
			like, like, like,
		)
	}
	if filters.CategoryID != uuid.Nil {
		query = query.Where("category_id = ?", filters.CategoryID)
	}
	switch filters.Status {
	case "":
	case enums.BookStatusAvailable:
		// "tersedia" on the public catalog means actually loanable.
		query = query.Where("status = ? AND available_stock > 0", enums.BookStatusAvailable)
	default:
		query = query.Where("status = ?", filters.Status)
	}
	return query
}
