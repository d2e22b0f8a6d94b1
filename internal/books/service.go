package books

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/perpusdesa/perpusdesa-backend/internal/categories"
	"github.com/perpusdesa/perpusdesa-backend/pkg/db/models"
	"github.com/perpusdesa/perpusdesa-backend/pkg/enums"
	pkgerrors "github.com/perpusdesa/perpusdesa-backend/pkg/errors"
	"github.com/perpusdesa/perpusdesa-backend/pkg/pagination"
)

const firstPrintedBookYear = 1450

// ServiceParams groups dependencies for the books service.
type ServiceParams struct {
	BookRepo     *Repository
	CategoryRepo *categories.Repository
}

// Service exposes business rules for book administration.
type Service interface {
	Create(ctx context.Context, input BookInput) (*models.Book, error)
	Update(ctx context.Context, id uuid.UUID, input BookInput) (*models.Book, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (BookDetail, error)
	List(ctx context.Context, params pagination.Params) (BookPage, error)
}

type service struct {
	bookRepo     *Repository
	categoryRepo *categories.Repository
}

// NewService builds a books service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.BookRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book repo is required")
	}
	if params.CategoryRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category repo is required")
	}
	return &service{
		bookRepo:     params.BookRepo,
		categoryRepo: params.CategoryRepo,
	}, nil
}

// Create inserts a new title with its full stock on the shelf.
func (s *service) Create(ctx context.Context, input BookInput) (*models.Book, error) {
	if err := s.validateInput(ctx, input); err != nil {
		return nil, err
	}

	book := &models.Book{
		CategoryID:     input.CategoryID,
		Title:          strings.TrimSpace(input.Title),
		Author:         strings.TrimSpace(input.Author),
		Publisher:      strings.TrimSpace(input.Publisher),
		Year:           input.Year,
		Pages:          input.Pages,
		Stock:          input.Stock,
		AvailableStock: input.Stock,
		ShelfPosition:  strings.TrimSpace(input.ShelfPosition),
		Description:    input.Description,
		ISBN:           input.ISBN,
		Status:         input.Status,
	}
	if book.Status == "" {
		book.Status = enums.BookStatusAvailable
	}
	if _, err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create book")
	}
	return book, nil
}

// Update edits a title. A stock change shifts the shelf count by the same
// delta, floored at zero so copies already out stay accounted for, and
// capped at the new total.
func (s *service) Update(ctx context.Context, id uuid.UUID, input BookInput) (*models.Book, error) {
	book, err := s.loadBook(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validateInput(ctx, input); err != nil {
		return nil, err
	}

	delta := input.Stock - book.Stock
	available := book.AvailableStock + delta
	if available < 0 {
		available = 0
	}
	if available > input.Stock {
		available = input.Stock
	}

	book.CategoryID = input.CategoryID
	book.Title = strings.TrimSpace(input.Title)
	book.Author = strings.TrimSpace(input.Author)
	book.Publisher = strings.TrimSpace(input.Publisher)
	book.Year = input.Year
	book.Pages = input.Pages
	book.Stock = input.Stock
	book.AvailableStock = available
	book.ShelfPosition = strings.TrimSpace(input.ShelfPosition)
	book.Description = input.Description
	book.ISBN = input.ISBN
	if input.Status != "" {
		book.Status = input.Status
	}
	book.Category = nil

	if _, err := s.bookRepo.Update(ctx, book); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update book")
	}
	return book, nil
}

// Delete removes a title unless copies are still out with members.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.loadBook(ctx, id); err != nil {
		return err
	}
	active, err := s.bookRepo.CountActiveBorrowings(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count active borrowings")
	}
	if active > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "book still has copies out on loan")
	}
	if err := s.bookRepo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete book")
	}
	return nil
}

// Get returns the administrative detail view of one title.
func (s *service) Get(ctx context.Context, id uuid.UUID) (BookDetail, error) {
	book, err := s.loadBook(ctx, id)
	if err != nil {
		return BookDetail{}, err
	}
	borrowings, err := s.bookRepo.BorrowingsForBook(ctx, id)
	if err != nil {
		return BookDetail{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load book borrowings")
	}
	pending, err := s.bookRepo.PendingWaitlistsForBook(ctx, id)
	if err != nil {
		return BookDetail{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load book waitlists")
	}
	return BookDetail{
		Book:             *book,
		Borrowings:       borrowings,
		PendingWaitlists: pending,
	}, nil
}

// List returns a paginated book page.
func (s *service) List(ctx context.Context, params pagination.Params) (BookPage, error) {
	page := pagination.NormalizePage(params.Page)
	limit := pagination.NormalizeLimit(params.Limit)
	rows, total, err := s.bookRepo.List(ctx, page, limit)
	if err != nil {
		return BookPage{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list books")
	}
	return BookPage{
		Books:      rows,
		Pagination: pagination.NewPage(page, limit, total),
	}, nil
}

func (s *service) validateInput(ctx context.Context, input BookInput) error {
	details := map[string]string{}
	if strings.TrimSpace(input.Title) == "" {
		details["title"] = "title is required"
	}
	if strings.TrimSpace(input.Author) == "" {
		details["author"] = "author is required"
	}
	if strings.TrimSpace(input.Publisher) == "" {
		details["publisher"] = "publisher is required"
	}
	if input.Year < firstPrintedBookYear || input.Year > time.Now().Year() {
		details["year"] = "year is out of range"
	}
	if input.Pages <= 0 {
		details["pages"] = "pages must be positive"
	}
	if input.Stock < 0 {
		details["stock"] = "stock cannot be negative"
	}
	if input.Status != "" && !input.Status.IsValid() {
		details["status"] = "unknown book status"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid book payload").WithDetails(details)
	}

	if input.CategoryID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "category id is required")
	}
	if _, err := s.categoryRepo.FindByID(ctx, input.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "category not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load category")
	}
	return nil
}

func (s *service) loadBook(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book id is required")
	}
	book, err := s.bookRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "book not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load book")
	}
	return book, nil
}
