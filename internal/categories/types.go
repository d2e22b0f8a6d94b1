package categories

import (
	"github.com/perpusdesa/perpusdesa-backend/pkg/db/models"
	"github.com/perpusdesa/perpusdesa-backend/pkg/pagination"
)

// CategoryInput carries the writable category fields for create and update.
type CategoryInput struct {
	Name        string
	Description *string
}

// CategoryPage is one page of categories together with pagination metadata.
type CategoryPage struct {
	Categories []models.Category `json:"categories"`
	Pagination pagination.Page   `json:"pagination"`
}
