package models

import (
	"time"

	"github.com/google/uuid"
)

type Bracelet struct {
	BaseUUIDModel
	NfcID   string     `gorm:"column:nfc_id;type:text;uniqueIndex;not null" json:"nfcId"`
	UserID  *uuid.UUID `gorm:"type:uuid;index"                              json:"userId"`
	BoundAt *time.Time `gorm:"type:timestamp"                               json:"boundAt"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// IsBound reports whether the bracelet currently has an owner.
func (b *Bracelet) IsBound() bool {
	return b.UserID != nil
}

// BelongsTo reports whether the bracelet is bound to the given user.
func (b *Bracelet) BelongsTo(userID uuid.UUID) bool {
	return b.UserID != nil && *b.UserID == userID
}

// BindingStatus describes a tag id's registry state without exposing the row.
type BindingStatus struct {
	Exists  bool       `json:"exists"`
	IsBound bool       `json:"isBound"`
	UserID  *uuid.UUID `json:"userId,omitempty"`
}
