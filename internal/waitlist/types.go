package waitlist

import (
	"github.com/perpusdesa/perpusdesa-backend/pkg/db/models"
	"github.com/perpusdesa/perpusdesa-backend/pkg/pagination"
)

// Stats summarizes the queue for list views and the dashboard.
type Stats struct {
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}

// WaitlistPage is one page of queue entries with stats and pagination.
type WaitlistPage struct {
	Waitlists  []models.Waitlist `json:"waitlists"`
	Stats      Stats             `json:"stats"`
	Pagination pagination.Page   `json:"pagination"`
}
