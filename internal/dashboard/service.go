package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/perpusdesa/perpusdesa-backend/internal/books"
	"github.com/perpusdesa/perpusdesa-backend/internal/categories"
	"github.com/perpusdesa/perpusdesa-backend/internal/circulation"
	"github.com/perpusdesa/perpusdesa-backend/internal/users"
	"github.com/perpusdesa/perpusdesa-backend/internal/waitlist"
	"github.com/perpusdesa/perpusdesa-backend/pkg/enums"
	pkgerrors "github.com/perpusdesa/perpusdesa-backend/pkg/errors"
)

const (
	recentRowCount    = 5
	lowStockThreshold = 2
)

// ServiceParams groups dependencies for the dashboard service.
type ServiceParams struct {
	BookRepo      *books.Repository
	CategoryRepo  *categories.Repository
	UserRepo      *users.Repository
	BorrowingRepo *circulation.Repository
	WaitlistRepo  *waitlist.Repository
}

// Service aggregates the read models behind the two home screens.
type Service interface {
	Admin(ctx context.Context) (AdminOverview, error)
	Member(ctx context.Context, userID uuid.UUID) (MemberOverview, error)
}

type service struct {
	bookRepo      *books.Repository
	categoryRepo  *categories.Repository
	userRepo      *users.Repository
	borrowingRepo *circulation.Repository
	waitlistRepo  *waitlist.Repository
	now           func() time.Time
}

// NewService builds a dashboard service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.BookRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book repo is required")
	}
	if params.CategoryRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category repo is required")
	}
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user repo is required")
	}
	if params.BorrowingRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "borrowing repo is required")
	}
	if params.WaitlistRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "waitlist repo is required")
	}
	return &service{
		bookRepo:      params.BookRepo,
		categoryRepo:  params.CategoryRepo,
		userRepo:      params.UserRepo,
		borrowingRepo: params.BorrowingRepo,
		waitlistRepo:  params.WaitlistRepo,
		now:           time.Now,
	}, nil
}

// Admin builds the librarian overview. Overdue is computed live from due
// dates, independent of the stored terlambat label.
func (s *service) Admin(ctx context.Context) (AdminOverview, error) {
	overview := AdminOverview{}

	var err error
	if overview.Totals.Books, err = s.bookRepo.CountAll(ctx); err != nil {
		return AdminOverview{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count books")
	}
	if overview.Totals.Categories, err = s.categoryRepo.CountAll(ctx); err != nil {
		return AdminOverview{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count categories")
	}
	if overview.Totals.Members, err = s.userRepo.CountByRole(ctx, enums.UserRoleMember); err != nil {
		return AdminOverview{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count members")
	}
	if overview.ActiveBorrowings, err = s.borrowingRepo.CountByStatus(ctx, enums.BorrowingStatusActive); err != nil {
		return AdminOverview{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count active borrowings")
	}
	if overview.OverdueBorrowings, err = s.borrowingRepo.CountOverdue(ctx, s.now()); err != nil {
		return AdminOverview{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count overdue borrowings")
	}
	if overview.PendingWaitlists, err = s.waitlistRepo.CountByStatus(ctx, enums.WaitlistStatusPending); err != nil {
		return AdminOverview{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count pending waitlists")
	}
	if overview.RecentBorrowings, err = s.borrowingRepo.Recent(ctx, recentRowCount); err != nil {
		return AdminOverview{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load recent borrowings")
	}
	if overview.PendingQueue, err = s.waitlistRepo.RecentPending(ctx, recentRowCount); err != nil {
		return AdminOverview{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load pending queue")
	}
	if overview.LowStockBooks, err = s.bookRepo.LowStock(ctx, lowStockThreshold, recentRowCount); err != nil {
		return AdminOverview{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load low stock books")
	}
	return overview, nil
}

// Member builds a member's personal overview.
func (s *service) Member(ctx context.Context, userID uuid.UUID) (MemberOverview, error) {
	if userID == uuid.Nil {
		return MemberOverview{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	overview := MemberOverview{}

	var err error
	if overview.Stats.Active, err = s.borrowingRepo.CountForUserByStatus(ctx, userID, enums.BorrowingStatusActive); err != nil {
		return MemberOverview{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count active borrowings")
	}
	if overview.Stats.Returned, err = s.borrowingRepo.CountForUserByStatus(ctx, userID, enums.BorrowingStatusReturned); err != nil {
		return MemberOverview{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count returned borrowings")
	}
	if overview.Stats.Overdue, err = s.borrowingRepo.CountOverdueForUser(ctx, userID, s.now()); err != nil {
		return MemberOverview{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count overdue borrowings")
	}
	if overview.ActiveBorrowings, err = s.borrowingRepo.ActiveForUser(ctx, userID); err != nil {
		return MemberOverview{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load active borrowings")
	}
	if overview.PendingWaitlists, err = s.waitlistRepo.PendingForUser(ctx, userID); err != nil {
		return MemberOverview{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load pending waitlists")
	}
	overview.Stats.Waiting = int64(len(overview.PendingWaitlists))
	if overview.RecentReturns, err = s.borrowingRepo.RecentReturnedForUser(ctx, userID, recentRowCount); err != nil {
		return MemberOverview{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load recent returns")
	}
	return overview, nil
}
