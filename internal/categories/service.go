package categories

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/perpusdesa/perpusdesa-backend/pkg/db/models"
	pkgerrors "github.com/perpusdesa/perpusdesa-backend/pkg/errors"
	"github.com/perpusdesa/perpusdesa-backend/pkg/pagination"
)

// ServiceParams groups dependencies for the categories service.
type ServiceParams struct {
	CategoryRepo *Repository
}

// Service exposes business rules for category administration.
type Service interface {
	Create(ctx context.Context, input CategoryInput) (*models.Category, error)
	Update(ctx context.Context, id uuid.UUID, input CategoryInput) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.Category, error)
	List(ctx context.Context, params pagination.Params) (CategoryPage, error)
	ListAll(ctx context.Context) ([]models.Category, error)
}

type service struct {
	categoryRepo *Repository
}

// NewService builds a categories service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.CategoryRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category repo is required")
	}
	return &service{categoryRepo: params.CategoryRepo}, nil
}

// Create inserts a category after checking the name is unused.
func (s *service) Create(ctx context.Context, input CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}
	taken, err := s.categoryRepo.NameExists(ctx, name, uuid.Nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check category name")
	}
	if taken {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "category name already in use")
	}

	category := &models.Category{
		Name:        name,
		Description: input.Description,
	}
	if _, err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create category")
	}
	return category, nil
}

// Update edits the category name and description.
func (s *service) Update(ctx context.Context, id uuid.UUID, input CategoryInput) (*models.Category, error) {
	category, err := s.loadCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}
	taken, err := s.categoryRepo.NameExists(ctx, name, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check category name")
	}
	if taken {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "category name already in use")
	}

	category.Name = name
	category.Description = input.Description
	if _, err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update category")
	}
	return category, nil
}

// Delete removes a category unless books still reference it.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.loadCategory(ctx, id); err != nil {
		return err
	}
	inUse, err := s.categoryRepo.CountBooks(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count category books")
	}
	if inUse > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "category still has books attached")
	}
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete category")
	}
	return nil
}

// Get returns a single category.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return s.loadCategory(ctx, id)
}

// List returns a paginated category page.
func (s *service) List(ctx context.Context, params pagination.Params) (CategoryPage, error) {
	page := pagination.NormalizePage(params.Page)
	limit := pagination.NormalizeLimit(params.Limit)
	rows, total, err := s.categoryRepo.List(ctx, page, limit)
	if err != nil {
		return CategoryPage{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	return CategoryPage{
		Categories: rows,
		Pagination: pagination.NewPage(page, limit, total),
	}, nil
}

// ListAll returns every category unpaginated.
func (s *service) ListAll(ctx context.Context) ([]models.Category, error) {
	rows, err := s.categoryRepo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	return rows, nil
}

func (s *service) loadCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category id is required")
	}
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load category")
	}
	return category, nil
}
