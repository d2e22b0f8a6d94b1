package circulation

import (
	"time"

	"github.com/google/uuid"

	"github.com/perpusdesa/perpusdesa-backend/pkg/db/models"
	"github.com/perpusdesa/perpusdesa-backend/pkg/enums"
	"github.com/perpusdesa/perpusdesa-backend/pkg/pagination"
)

// IssueInput carries the fields needed to record a new loan.
type IssueInput struct {
	UserID       uuid.UUID
	BookID       uuid.UUID
	BorrowedDate time.Time
	DueDate      time.Time
	Notes        *string
}

// UpdateInput is a partial administrative edit of an existing loan. Nil
// fields stay untouched.
type UpdateInput struct {
	DueDate      *time.Time
	ReturnedDate *time.Time
	Status       *enums.BorrowingStatus
	Notes        *string
}

// Stats summarizes the ledger for list views and the dashboard. Overdue is
// computed live from due dates, not from the stored status.
type Stats struct {
	Active   int64 `json:"active"`
	Overdue  int64 `json:"overdue"`
	Returned int64 `json:"returned"`
}

// BorrowingPage is one page of loans with ledger stats and pagination.
type BorrowingPage struct {
	Borrowings []models.Borrowing `json:"borrowings"`
	Stats      Stats              `json:"stats"`
	Pagination pagination.Page    `json:"pagination"`
}
