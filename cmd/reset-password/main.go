package main

import (
	"flag"

	"go-stock-ledger/internal/config"
	"go-stock-ledger/internal/repository"
	"go-stock-ledger/internal/service"
	"go-stock-ledger/pkg/jwt"

	"github.com/sirupsen/logrus"
)

func main() {
	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}

	username := flag.String("user", cfg.Admin.Username, "account to reset")
	newPassword := flag.String("password", cfg.Admin.Password, "new password")
	flag.Parse()

	// 2. Setup Storage
	store, err := repository.OpenDocumentStore(cfg)
	if err != nil {
		logrus.Fatalf("Failed to open document store: %v", err)
	}

	accounts, err := service.NewAccountDirectory(repository.NewAccountRepo(store), jwt.NewManager(cfg.JWT.SecretKey, cfg.JWT.TTL), nil, cfg.Admin.Username)
	if err != nil {
		logrus.Fatalf("Failed to load accounts: %v", err)
	}

	// 3. Make sure the built-in administrator exists before resetting it
	if _, err := accounts.EnsureBootstrapAdmin(*newPassword); err != nil {
		logrus.Fatalf("Failed to create administrator: %v", err)
	}

	// 4. Reset
	if err := accounts.ResetPassword(*username, *newPassword); err != nil {
		logrus.Fatalf("Failed to reset password for %s: %v", *username, err)
	}

	logrus.Infof("Password for %s has been reset; existing sessions are signed out", *username)
}
