package model

import (
	"time"

	"gorm.io/gorm"
)

// Document is one persisted entity collection (stores, prices, users, ...)
// when the relational document store is in use. Body holds the JSON encoding.
type Document struct {
	Key       string    `gorm:"column:doc_key;type:varchar(64);primaryKey" json:"key"`
	Body      string    `gorm:"type:jsonb;not null" json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Audit User Tracking
	UpdatedBy string `gorm:"type:varchar(64)" json:"updated_by"`
}

func (Document) TableName() string {
	return "ledger_documents"
}

// Hook Before Save: writes without an author are attributed to the system.
func (d *Document) BeforeSave(tx *gorm.DB) (err error) {
	if d.UpdatedBy == "" {
		d.UpdatedBy = SystemActor.Username
	}
	return
}
