package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/perpusdesa/perpusdesa-backend/internal/books"
	"github.com/perpusdesa/perpusdesa-backend/internal/categories"
	"github.com/perpusdesa/perpusdesa-backend/internal/waitlist"
	pkgerrors "github.com/perpusdesa/perpusdesa-backend/pkg/errors"
	"github.com/perpusdesa/perpusdesa-backend/pkg/pagination"
)

// ServiceParams groups dependencies for the catalog service.
type ServiceParams struct {
	CatalogRepo  *Repository
	BookRepo     *books.Repository
	CategoryRepo *categories.Repository
	WaitlistRepo *waitlist.Repository
}

// Service exposes the public, read-only catalog.
type Service interface {
	List(ctx context.Context, filters Filters, params pagination.Params) (CatalogPage, error)
	Detail(ctx context.Context, bookID, viewerID uuid.UUID) (Detail, error)
}

type service struct {
	catalogRepo  *Repository
	bookRepo     *books.Repository
	categoryRepo *categories.Repository
	waitlistRepo *waitlist.Repository
}

// NewService builds a catalog service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.CatalogRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog repo is required")
	}
	if params.BookRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book repo is required")
	}
	if params.CategoryRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category repo is required")
	}
	if params.WaitlistRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "waitlist repo is required")
	}
	return &service{
		catalogRepo:  params.CatalogRepo,
		bookRepo:     params.BookRepo,
		categoryRepo: params.CategoryRepo,
		waitlistRepo: params.WaitlistRepo,
	}, nil
}

// List returns a filtered catalog page plus the category list for the
// filter dropdown.
func (s *service) List(ctx context.Context, filters Filters, params pagination.Params) (CatalogPage, error) {
	if filters.Status != "" && !filters.Status.IsValid() {
		return CatalogPage{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown book status")
	}

	page := pagination.NormalizePage(params.Page)
	limit := pagination.NormalizeLimit(params.Limit)
	rows, total, err := s.catalogRepo.Search(ctx, filters, page, limit)
	if err != nil {
		return CatalogPage{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "search catalog")
	}
	allCategories, err := s.categoryRepo.ListAll(ctx)
	if err != nil {
		return CatalogPage{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	return CatalogPage{
		Books:      rows,
		Categories: allCategories,
		Pagination: pagination.NewPage(page, limit, total),
	}, nil
}

// Detail returns the public view of one title. A nil viewer id means an
// anonymous request; the pending flag stays false.
func (s *service) Detail(ctx context.Context, bookID, viewerID uuid.UUID) (Detail, error) {
	if bookID == uuid.Nil {
		return Detail{}, pkgerrors.New(pkgerrors.CodeValidation, "book id is required")
	}
	book, err := s.bookRepo.FindByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Detail{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "book not found")
		}
		return Detail{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load book")
	}

	related, err := s.catalogRepo.Related(ctx, book.CategoryID, book.ID)
	if err != nil {
		return Detail{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load related books")
	}

	hasPending := false
	if viewerID != uuid.Nil {
		hasPending, err = s.waitlistRepo.HasPending(ctx, viewerID, bookID)
		if err != nil {
			return Detail{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check viewer queue state")
		}
	}

	return Detail{
		Book:              *book,
		HasPendingRequest: hasPending,
		Related:           related,
	}, nil
}
