package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/perpusdesa/perpusdesa-backend/pkg/enums"
)

// Waitlist is a member's request to be considered for a book. Entries never
// reserve inventory; administrators resolve them by hand.
//
// The composite unique index mirrors the relational schema, but the stronger
// rule (one menunggu entry per member and book) is enforced by the waitlist
// service inside its create transaction.
type Waitlist struct {
	ID         uuid.UUID            `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID            `gorm:"column:user_id;type:uuid;not null;index:waitlists_user_id_idx;uniqueIndex:waitlists_user_book_status_key,priority:1" json:"user_id"`
	BookID     uuid.UUID            `gorm:"column:book_id;type:uuid;not null;index:waitlists_book_id_idx;uniqueIndex:waitlists_user_book_status_key,priority:2" json:"book_id"`
	Status     enums.WaitlistStatus `gorm:"column:status;not null;default:menunggu;index:waitlists_status_idx;uniqueIndex:waitlists_user_book_status_key,priority:3" json:"status"`
	Notes      *string              `gorm:"column:notes" json:"notes,omitempty"`
	ApprovedAt *time.Time           `gorm:"column:approved_at" json:"approved_at,omitempty"`
	User       *User                `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Book       *Book                `gorm:"foreignKey:BookID" json:"book,omitempty"`
	CreatedAt  time.Time            `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time            `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (w *Waitlist) BeforeCreate(*gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}
