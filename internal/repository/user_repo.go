package repository

import (
	"go-stock-ledger/internal/model"
)

type AccountRepository interface {
	// LoadAccounts returns the username -> account map; found is false on first run.
	LoadAccounts() (accounts map[string]model.Account, found bool, err error)
	SaveAccounts(accounts map[string]model.Account) error
}

type accountRepo struct {
	store DocumentStore
}

func NewAccountRepo(store DocumentStore) AccountRepository {
	return &accountRepo{store: store}
}

func (r *accountRepo) LoadAccounts() (map[string]model.Account, bool, error) {
	accounts := make(map[string]model.Account)
	found, err := loadDocument(r.store, KindUsers, &accounts)
	if err != nil {
		return nil, false, err
	}
	if accounts == nil {
		accounts = make(map[string]model.Account)
	}
	return accounts, found, nil
}

func (r *accountRepo) SaveAccounts(accounts map[string]model.Account) error {
	return saveDocument(r.store, KindUsers, accounts)
}
