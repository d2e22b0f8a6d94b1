package waitlist

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

// TxRunner runs a function inside one database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams groups dependencies for the waitlist service.
type ServiceParams struct {
	Tx           TxRunner
	WaitlistRepo *Repository
	BookRepo     *books.Repository
	UserRepo     *users.Repository
}

// Service exposes business rules for the waitlist queue. Queue entries are
// bookkeeping only; they never reserve a copy.
type Service interface {
	Request(ctx context.Context, userID, bookID uuid.UUID, notes *string) (*models.Waitlist, error)
	Resolve(ctx context.Context, id uuid.UUID, status enums.WaitlistStatus, notes *string) (*models.Waitlist, error)
	Remove(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.Waitlist, error)
	List(ctx context.Context, params pagination.Params) (WaitlistPage, error)
	PendingForUser(ctx context.Context, userID uuid.UUID) ([]models.Waitlist, error)
}

type service struct {
	tx           TxRunner
	waitlistRepo *Repository
	bookRepo     *books.Repository
	userRepo     *users.Repository
	now          func() time.Time
}

// NewService builds a waitlist service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tx runner is required")
	}
	if params.WaitlistRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "waitlist repo is required")
	}
	if params.BookRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book repo is required")
	}
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user repo is required")
	}
	return &service{
		tx:           params.Tx,
		waitlistRepo: params.WaitlistRepo,
		bookRepo:     params.BookRepo,
		userRepo:     params.UserRepo,
		now:          time.Now,
	}, nil
}

// Request queues the member for a book. A member holds at most one open
// entry per book; the guard runs inside the create transaction.
func (s *service) Request(ctx context.Context, userID, bookID uuid.UUID, notes *string) (*models.Waitlist, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if bookID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book id is required")
	}
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "member not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load member")
	}
	if _, err := s.bookRepo.FindByID(ctx, bookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "book not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load book")
	}

	entry := &models.Waitlist{
		UserID: userID,
		BookID: bookID,
		Status: enums.WaitlistStatusPending,
		Notes:  notes,
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.waitlistRepo.WithTx(tx)
		pending, err := repo.HasPending(ctx, userID, bookID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check pending entry")
		}
		if pending {
			return pkgerrors.New(pkgerrors.CodeConflict, "member already waits for this book")
		}
		if _, err := repo.Create(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create waitlist entry")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, entry.ID)
}

// Resolve moves a queue entry to any of the three states. The approval
// timestamp follows the status: stamped on disetujui, cleared otherwise,
// refreshed on re-approval.
func (s *service) Resolve(ctx context.Context, id uuid.UUID, status enums.WaitlistStatus, notes *string) (*models.Waitlist, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown waitlist status")
	}
	entry, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	entry.Status = status
	if notes != nil {
		entry.Notes = notes
	}
	if status == enums.WaitlistStatusApproved {
		approvedAt := s.now()
		entry.ApprovedAt = &approvedAt
	} else {
		entry.ApprovedAt = nil
	}

	entry.User = nil
	entry.Book = nil
	if _, err := s.waitlistRepo.Update(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update waitlist entry")
	}
	return s.Get(ctx, id)
}

// Remove deletes a queue entry. Entries never hold stock, so there is
// nothing to release.
func (s *service) Remove(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.waitlistRepo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete waitlist entry")
	}
	return nil
}

// Get returns one queue entry with its member and book.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Waitlist, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "waitlist id is required")
	}
	entry, err := s.waitlistRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "waitlist entry not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load waitlist entry")
	}
	return entry, nil
}

// List returns a paginated queue page with stats.
func (s *service) List(ctx context.Context, params pagination.Params) (WaitlistPage, error) {
	page := pagination.NormalizePage(params.Page)
	limit := pagination.NormalizeLimit(params.Limit)
	rows, total, err := s.waitlistRepo.List(ctx, page, limit)
	if err != nil {
		return WaitlistPage{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list waitlist entries")
	}

	var stats Stats
	for status, target := range map[enums.WaitlistStatus]*int64{
		enums.WaitlistStatusPending:  &stats.Pending,
		enums.WaitlistStatusApproved: &stats.Approved,
		enums.WaitlistStatusRejected: &stats.Rejected,
	} {
		count, err := s.waitlistRepo.CountByStatus(ctx, status)
		if err != nil {
			return WaitlistPage{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count waitlist entries")
		}
		*target = count
	}

	return WaitlistPage{
		Waitlists:  rows,
		Stats:      stats,
		Pagination: pagination.NewPage(page, limit, total),
	}, nil
}

// PendingForUser returns the member's open queue entries.
func (s *service) PendingForUser(ctx context.Context, userID uuid.UUID) ([]models.Waitlist, error) {
	rows, err := s.waitlistRepo.PendingForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list pending entries")
	}
	return rows, nil
}
