package dashboard

import (
	"github.com/perpusdesa/perpusdesa-backend/pkg/db/models"
)

// Totals are the headline counters on the admin dashboard.
type Totals struct {
	Books      int64 `json:"books"`
	Categories int64 `json:"categories"`
	Members    int64 `json:"members"`
}

// AdminOverview is the librarian's home screen.
type AdminOverview struct {
	Totals            Totals             `json:"totals"`
	ActiveBorrowings  int64              `json:"active_borrowings"`
	OverdueBorrowings int64              `json:"overdue_borrowings"`
	PendingWaitlists  int64              `json:"pending_waitlists"`
	RecentBorrowings  []models.Borrowing `json:"recent_borrowings"`
	PendingQueue      []models.Waitlist  `json:"pending_queue"`
	LowStockBooks     []models.Book      `json:"low_stock_books"`
}

// MemberStats are the member's personal counters.
type MemberStats struct {
	Active   int64 `json:"active"`
	Overdue  int64 `json:"overdue"`
	Returned int64 `json:"returned"`
	Waiting  int64 `json:"waiting"`
}

// MemberOverview is the member's home screen.
type MemberOverview struct {
	Stats            MemberStats        `json:"stats"`
	ActiveBorrowings []models.Borrowing `json:"active_borrowings"`
	PendingWaitlists []models.Waitlist  `json:"pending_waitlists"`
	RecentReturns    []models.Borrowing `json:"recent_returns"`
}
