package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/perpusdesa/perpusdesa-backend/pkg/enums"
)

// Borrowing records a single copy of a book being out with a member.
//
// Status dipinjam implies ReturnedDate is nil; status dikembalikan implies
// ReturnedDate is set. The circulation service maintains both alongside the
// book's available stock inside one transaction.
type Borrowing struct {
	ID           uuid.UUID             `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID             `gorm:"column:user_id;type:uuid;not null;index:borrowings_user_id_idx" json:"user_id"`
	BookID       uuid.UUID             `gorm:"column:book_id;type:uuid;not null;index:borrowings_book_id_idx" json:"book_id"`
	BorrowedDate time.Time             `gorm:"column:borrowed_date;type:date;not null" json:"borrowed_date"`
	DueDate      time.Time             `gorm:"column:due_date;type:date;not null;index:borrowings_status_due_date_idx,priority:2" json:"due_date"`
	ReturnedDate *time.Time            `gorm:"column:returned_date;type:date" json:"returned_date,omitempty"`
	Status       enums.BorrowingStatus `gorm:"column:status;not null;default:dipinjam;index:borrowings_status_due_date_idx,priority:1" json:"status"`
	Notes        *string               `gorm:"column:notes" json:"notes,omitempty"`
	User         *User                 `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Book         *Book                 `gorm:"foreignKey:BookID" json:"book,omitempty"`
	CreatedAt    time.Time             `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time             `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (b *Borrowing) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
