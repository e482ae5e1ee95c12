package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Upload records a stored receipt image. When OCR succeeds the row is linked
// to the expense created (or drafted) from it; failed scans keep the row with
// the failure reason so they can be reviewed instead of silently vanishing.
type Upload struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	FileName     string    `gorm:"size:255;not null" json:"fileName"`
	StorePath    string    `gorm:"size:512" json:"storePath"`
	ContentType  string    `gorm:"size:128" json:"contentType,omitempty"`
	ExpenseID    *string   `gorm:"type:uuid;index" json:"expenseId,omitempty"`
	Failed       bool      `gorm:"default:false;index" json:"failed"`
	FailedReason string    `gorm:"size:255" json:"failedReason,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *Upload) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
