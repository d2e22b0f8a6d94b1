package catalog

import (
	"github.com/google/uuid"

	"github.com/perpusdesa/perpusdesa-backend/pkg/db/models"
	"github.com/perpusdesa/perpusdesa-backend/pkg/enums"
	"github.com/perpusdesa/perpusdesa-backend/pkg/pagination"
)

// Filters narrows the public catalog list. Zero values mean "no filter".
// Status tersedia is the loanable predicate, not just the stored status.
type Filters struct {
	Search     string
	CategoryID uuid.UUID
	Status     enums.BookStatus
}

// CatalogPage is one page of catalog titles with the category list for
// filter dropdowns.
type CatalogPage struct {
	Books      []models.Book     `json:"books"`
	Categories []models.Category `json:"categories"`
	Pagination pagination.Page   `json:"pagination"`
}

// Detail is the public view of one title, aware of the viewer's own queue
// state when the request is authenticated.
type Detail struct {
	Book              models.Book   `json:"book"`
	HasPendingRequest bool          `json:"has_pending_request"`
	Related           []models.Book `json:"related"`
}
