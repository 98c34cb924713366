package repository

import (
	"errors"

	"go-stock-ledger/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore keeps documents as rows of the ledger_documents table.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore migrates the documents table and returns the store.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&model.Document{}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Get(key string) ([]byte, error) {
	var doc model.Document
	err := s.db.First(&doc, "doc_key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(doc.Body), nil
}

// Put upserts the row for key.
func (s *GormStore) Put(key string, data []byte) error {
	doc := model.Document{Key: key, Body: string(data)}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "doc_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"body", "updated_at", "updated_by"}),
	}).Create(&doc).Error
}
