package repository

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrDocumentNotFound is returned by a DocumentStore when nothing has been
// written under the key yet. It is the only error callers may treat as
// "use the default".
var ErrDocumentNotFound = errors.New("document not found")

// Kind names one persisted entity collection.
type Kind string

const (
	KindStores          Kind = "stores"
	KindPrices          Kind = "prices"
	KindBarcodes        Kind = "barcodes"
	KindSuppliers       Kind = "suppliers"
	KindCategories      Kind = "categories"
	KindStockQuantities Kind = "stock_quantities"
	KindStoreAddresses  Kind = "store_addresses"
	KindPurchaseOrders  Kind = "purchase_orders"
	KindPendingChanges  Kind = "pending_changes"
	KindUsers           Kind = "users"
)

// DocumentStore is a key-value store holding one JSON document per Kind.
// Documents are read and written independently; there is no cross-document
// transaction.
type DocumentStore interface {
	Get(key string) ([]byte, error)
	Put(key string, data []byte) error
}

// loadDocument decodes the document for kind into v. found is false (and err
// nil) when the document does not exist; a present but undecodable document
// is an error.
func loadDocument(store DocumentStore, kind Kind, v interface{}) (found bool, err error) {
	data, err := store.Get(string(kind))
	if errors.Is(err, ErrDocumentNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", kind, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", kind, err)
	}
	return true, nil
}

func saveDocument(store DocumentStore, kind Kind, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}
	if err := store.Put(string(kind), data); err != nil {
		return fmt.Errorf("write %s: %w", kind, err)
	}
	return nil
}
