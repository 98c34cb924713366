package repository

import (
	"fmt"

	"go-stock-ledger/internal/config"
	"go-stock-ledger/pkg/database"

	"github.com/sirupsen/logrus"
)

// OpenDocumentStore builds the DocumentStore selected by STORAGE_DRIVER.
func OpenDocumentStore(cfg *config.Config) (DocumentStore, error) {
	log := logrus.WithField("driver", cfg.Storage.Driver)

	switch cfg.Storage.Driver {
	case config.DriverFile:
		log.WithField("dir", cfg.Storage.DataDir).Info("Using file document store")
		return NewFileStore(cfg.Storage.DataDir)

	case config.DriverMemory:
		log.Warn("Using in-memory document store; data is lost on exit")
		return NewMemoryStore(), nil

	case config.DriverPostgres:
		db, err := database.ConnectDB(cfg.Database.DSN())
		if err != nil {
			return nil, err
		}
		return NewGormStore(db)

	case config.DriverS3:
		client, err := NewS3Client(cfg.AWS.Region, cfg.AWS.AccessKeyID, cfg.AWS.SecretAccessKey)
		if err != nil {
			return nil, err
		}
		log.WithField("bucket", cfg.AWS.S3Bucket).Info("Using S3 document store")
		return NewS3Store(client, cfg.AWS.S3Bucket, cfg.AWS.S3Prefix), nil
	}

	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
