package books

import (
	"github.com/google/uuid"

	"github.com/perpusdesa/perpusdesa-backend/pkg/db/models"
	"github.com/perpusdesa/perpusdesa-backend/pkg/enums"
	"github.com/perpusdesa/perpusdesa-backend/pkg/pagination"
)

// BookInput carries the writable book fields for create and update.
type BookInput struct {
	CategoryID    uuid.UUID
	Title         string
	Author        string
	Publisher     string
	Year          int
	Pages         int
	Stock         int
	ShelfPosition string
	Description   *string
	ISBN          *string
	Status        enums.BookStatus
}

// BookPage is one page of books together with pagination metadata.
type BookPage struct {
	Books      []models.Book   `json:"books"`
	Pagination pagination.Page `json:"pagination"`
}

// BookDetail is the administrative view of one title: the book itself plus
// its borrowing history and any pending waitlist entries.
type BookDetail struct {
	Book             models.Book        `json:"book"`
	Borrowings       []models.Borrowing `json:"borrowings"`
	PendingWaitlists []models.Waitlist  `json:"pending_waitlists"`
}
