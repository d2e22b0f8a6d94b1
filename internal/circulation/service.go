package circulation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/perpusdesa/perpusdesa-backend/internal/books"
	"github.com/perpusdesa/perpusdesa-backend/internal/users"
	"github.com/perpusdesa/perpusdesa-backend/pkg/db/models"
	"github.com/perpusdesa/perpusdesa-backend/pkg/enums"
	pkgerrors "github.com/perpusdesa/perpusdesa-backend/pkg/errors"
	"github.com/perpusdesa/perpusdesa-backend/pkg/pagination"
)

// TxRunner runs a function inside one database transaction. *db.Client
// satisfies it; tests substitute a plain gorm transaction wrapper.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams groups dependencies for the circulation service.
type ServiceParams struct {
	Tx            TxRunner
	BorrowingRepo *Repository
	BookRepo      *books.Repository
	UserRepo      *users.Repository
}

// Service coordinates the borrowing ledger with book stock. Every mutation
// runs the ledger write and the stock counter update in one transaction.
type Service interface {
	Issue(ctx context.Context, input IssueInput) (*models.Borrowing, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Borrowing, error)
	Remove(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.Borrowing, error)
	List(ctx context.Context, params pagination.Params) (BorrowingPage, error)
	Active(ctx context.Context) ([]models.Borrowing, error)
	Overdue(ctx context.Context) ([]models.Borrowing, error)
}

type service struct {
	tx            TxRunner
	borrowingRepo *Repository
	bookRepo      *books.Repository
	userRepo      *users.Repository
	now           func() time.Time
}

// NewService builds a circulation service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tx runner is required")
	}
	if params.BorrowingRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "borrowing repo is required")
	}
	if params.BookRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book repo is required")
	}
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user repo is required")
	}
	return &service{
		tx:            params.Tx,
		borrowingRepo: params.BorrowingRepo,
		bookRepo:      params.BookRepo,
		userRepo:      params.UserRepo,
		now:           time.Now,
	}, nil
}

// Issue records a new loan. The copy is taken off the shelf and the ledger
// row written in the same transaction; when two requests race for the last
// copy, exactly one of them gets it.
func (s *service) Issue(ctx context.Context, input IssueInput) (*models.Borrowing, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.BookID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book id is required")
	}
	borrowedDate := input.BorrowedDate
	if borrowedDate.IsZero() {
		borrowedDate = s.today()
	}
	if !input.DueDate.After(borrowedDate) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "due date must be after the borrowed date")
	}
	if _, err := s.userRepo.FindByID(ctx, input.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "member not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load member")
	}

	borrowing := &models.Borrowing{
		UserID:       input.UserID,
		BookID:       input.BookID,
		BorrowedDate: borrowedDate,
		DueDate:      input.DueDate,
		Status:       enums.BorrowingStatusActive,
		Notes:        input.Notes,
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		bookRepo := s.bookRepo.WithTx(tx)
		if _, err := bookRepo.FindByID(ctx, input.BookID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "book not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load book")
		}
		reserved, err := bookRepo.ReserveCopy(ctx, input.BookID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reserve copy")
		}
		if !reserved {
			return pkgerrors.New(pkgerrors.CodeOutOfStock, "no loanable copy available")
		}
		if _, err := s.borrowingRepo.WithTx(tx).Create(ctx, borrowing); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create borrowing")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, borrowing.ID)
}

// Update applies an administrative edit to a loan. The transition from
// dipinjam to dikembalikan puts the copy back on the shelf and stamps the
// return date in the same transaction; no other transition touches stock.
func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Borrowing, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "borrowing id is required")
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown borrowing status")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.borrowingRepo.WithTx(tx)
		borrowing, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "borrowing not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load borrowing")
		}

		if input.DueDate != nil {
			if !input.DueDate.After(borrowing.BorrowedDate) {
				return pkgerrors.New(pkgerrors.CodeValidation, "due date must be after the borrowed date")
			}
			borrowing.DueDate = *input.DueDate
		}
		if input.Notes != nil {
			borrowing.Notes = input.Notes
		}
		if input.ReturnedDate != nil {
			borrowing.ReturnedDate = input.ReturnedDate
		}

		if input.Status != nil && *input.Status != borrowing.Status {
			from := borrowing.Status
			borrowing.Status = *input.Status
			switch {
			case from == enums.BorrowingStatusActive && *input.Status == enums.BorrowingStatusReturned:
				if borrowing.ReturnedDate == nil {
					today := s.today()
					borrowing.ReturnedDate = &today
				}
				if err := s.bookRepo.WithTx(tx).ReleaseCopy(ctx, borrowing.BookID); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "release copy")
				}
			case *input.Status == enums.BorrowingStatusActive:
				borrowing.ReturnedDate = nil
			}
		}
		if borrowing.Status == enums.BorrowingStatusReturned && borrowing.ReturnedDate == nil {
			today := s.today()
			borrowing.ReturnedDate = &today
		}

		borrowing.User = nil
		borrowing.Book = nil
		if _, err := repo.Update(ctx, borrowing); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update borrowing")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Remove deletes a loan. When the loan is still out, the copy goes back on
// the shelf in the same transaction so the counters stay consistent.
func (s *service) Remove(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "borrowing id is required")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.borrowingRepo.WithTx(tx)
		borrowing, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "borrowing not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load borrowing")
		}
		if borrowing.Status == enums.BorrowingStatusActive {
			if err := s.bookRepo.WithTx(tx).ReleaseCopy(ctx, borrowing.BookID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "release copy")
			}
		}
		if err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete borrowing")
		}
		return nil
	})
}

// Get returns one loan with its member and book.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Borrowing, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "borrowing id is required")
	}
	borrowing, err := s.borrowingRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "borrowing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load borrowing")
	}
	return borrowing, nil
}

// List returns a paginated ledger page with live stats.
func (s *service) List(ctx context.Context, params pagination.Params) (BorrowingPage, error) {
	page := pagination.NormalizePage(params.Page)
	limit := pagination.NormalizeLimit(params.Limit)
	rows, total, err := s.borrowingRepo.List(ctx, page, limit)
	if err != nil {
		return BorrowingPage{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list borrowings")
	}
	stats, err := s.stats(ctx)
	if err != nil {
		return BorrowingPage{}, err
	}
	return BorrowingPage{
		Borrowings: rows,
		Stats:      stats,
		Pagination: pagination.NewPage(page, limit, total),
	}, nil
}

// Active returns every loan still out.
func (s *service) Active(ctx context.Context) ([]models.Borrowing, error) {
	rows, err := s.borrowingRepo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list active borrowings")
	}
	return rows, nil
}

// Overdue returns loans still out past their due date. Overdue is always
// computed from the due date; the stored terlambat status is only an
// administrative label.
func (s *service) Overdue(ctx context.Context) ([]models.Borrowing, error) {
	rows, err := s.borrowingRepo.ListOverdue(ctx, s.today())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list overdue borrowings")
	}
	return rows, nil
}

func (s *service) stats(ctx context.Context) (Stats, error) {
	active, err := s.borrowingRepo.CountByStatus(ctx, enums.BorrowingStatusActive)
	if err != nil {
		return Stats{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count active")
	}
	returned, err := s.borrowingRepo.CountByStatus(ctx, enums.BorrowingStatusReturned)
	if err != nil {
		return Stats{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count returned")
	}
	overdue, err := s.borrowingRepo.CountOverdue(ctx, s.today())
	if err != nil {
		return Stats{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count overdue")
	}
	return Stats{Active: active, Overdue: overdue, Returned: returned}, nil
}

func (s *service) today() time.Time {
	year, month, day := s.now().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
