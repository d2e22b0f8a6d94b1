package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/perpusdesa/perpusdesa-backend/pkg/enums"
)

// Book represents one catalog title together with its stock counters.
// AvailableStock counts the copies currently on the shelf; the number of
// copies out on loan is always Stock - AvailableStock.
type Book struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	CategoryID     uuid.UUID        `gorm:"column:category_id;type:uuid;not null;index:books_category_id_idx" json:"category_id"`
	Title          string           `gorm:"column:title;not null;index:books_title_idx" json:"title"`
	Author         string           `gorm:"column:author;not null;index:books_author_idx" json:"author"`
	Publisher      string           `gorm:"column:publisher;not null" json:"publisher"`
	Year           int              `gorm:"column:year;not null" json:"year"`
	Pages          int              `gorm:"column:pages;not null" json:"pages"`
	Stock          int              `gorm:"column:stock;not null;default:0" json:"stock"`
	AvailableStock int              `gorm:"column:available_stock;not null;default:0" json:"available_stock"`
	ShelfPosition  string           `gorm:"column:shelf_position;not null" json:"shelf_position"`
	Description    *string          `gorm:"column:description" json:"description,omitempty"`
	ISBN           *string          `gorm:"column:isbn" json:"isbn,omitempty"`
	Status         enums.BookStatus `gorm:"column:status;not null;default:tersedia;index:books_status_idx" json:"status"`
	Category       *Category        `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (b *Book) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
