package repository

import (
	"errors"
	"fmt"

	"go-stock-ledger/internal/model"

	"github.com/shopspring/decimal"
)

// CatalogData holds every catalog collection, one field per document Kind.
type CatalogData struct {
	Stores          map[string][]string            // store -> products carried
	Prices          map[string]decimal.Decimal     // product -> unit price
	Barcodes        map[string]string              // product -> barcode
	Suppliers       map[string]model.Supplier      // product -> supplier
	Categories      map[string]model.Category      // product -> category
	StockQuantities map[string]int                 // product -> global quantity
	StoreAddresses  map[string]string              // store -> delivery address
	PurchaseOrders  map[string]model.PurchaseOrder // PO id -> snapshot
	PendingChanges  []model.ChangeRequest
}

// NewCatalogData returns empty, non-nil collections.
func NewCatalogData() *CatalogData {
	return &CatalogData{
		Stores:          make(map[string][]string),
		Prices:          make(map[string]decimal.Decimal),
		Barcodes:        make(map[string]string),
		Suppliers:       make(map[string]model.Supplier),
		Categories:      make(map[string]model.Category),
		StockQuantities: make(map[string]int),
		StoreAddresses:  make(map[string]string),
		PurchaseOrders:  make(map[string]model.PurchaseOrder),
		PendingChanges:  []model.ChangeRequest{},
	}
}

// CatalogKinds lists the documents owned by the catalog, in load order.
var CatalogKinds = []Kind{
	KindStores, KindPrices, KindBarcodes, KindSuppliers, KindCategories,
	KindStockQuantities, KindStoreAddresses, KindPurchaseOrders, KindPendingChanges,
}

type CatalogRepository interface {
	// Load reads every catalog document. Missing documents keep their empty
	// default, except stores which falls back to the seed catalog. seeded
	// reports whether that fallback happened.
	Load() (data *CatalogData, seeded bool, err error)
	// Save writes the listed documents from data.
	Save(data *CatalogData, kinds ...Kind) error
}

type catalogRepo struct {
	store DocumentStore
}

func NewCatalogRepo(store DocumentStore) CatalogRepository {
	return &catalogRepo{store: store}
}

func (r *catalogRepo) target(data *CatalogData, kind Kind) (interface{}, error) {
	switch kind {
	case KindStores:
		return &data.Stores, nil
	case KindPrices:
		return &data.Prices, nil
	case KindBarcodes:
		return &data.Barcodes, nil
	case KindSuppliers:
		return &data.Suppliers, nil
	case KindCategories:
		return &data.Categories, nil
	case KindStockQuantities:
		return &data.StockQuantities, nil
	case KindStoreAddresses:
		return &data.StoreAddresses, nil
	case KindPurchaseOrders:
		return &data.PurchaseOrders, nil
	case KindPendingChanges:
		return &data.PendingChanges, nil
	}
	return nil, fmt.Errorf("%s is not a catalog document", kind)
}

func (r *catalogRepo) Load() (*CatalogData, bool, error) {
	data := NewCatalogData()
	seeded := false
	var errs []error

	for _, kind := range CatalogKinds {
		target, err := r.target(data, kind)
		if err != nil {
			return nil, false, err
		}
		found, err := loadDocument(r.store, kind, target)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !found && kind == KindStores {
			data.Stores = SeedStores()
			seeded = true
		}
	}
	if len(errs) > 0 {
		return nil, false, errors.Join(errs...)
	}

	data.ensureNonNil()
	return data, seeded, nil
}

func (r *catalogRepo) Save(data *CatalogData, kinds ...Kind) error {
	var errs []error
	for _, kind := range kinds {
		target, err := r.target(data, kind)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := saveDocument(r.store, kind, target); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ensureNonNil repairs collections decoded from a literal JSON null.
func (d *CatalogData) ensureNonNil() {
	empty := NewCatalogData()
	if d.Stores == nil {
		d.Stores = empty.Stores
	}
	for store, products := range d.Stores {
		if products == nil {
			d.Stores[store] = []string{}
		}
	}
	if d.Prices == nil {
		d.Prices = empty.Prices
	}
	if d.Barcodes == nil {
		d.Barcodes = empty.Barcodes
	}
	if d.Suppliers == nil {
		d.Suppliers = empty.Suppliers
	}
	if d.Categories == nil {
		d.Categories = empty.Categories
	}
	if d.StockQuantities == nil {
		d.StockQuantities = empty.StockQuantities
	}
	if d.StoreAddresses == nil {
		d.StoreAddresses = empty.StoreAddresses
	}
	if d.PurchaseOrders == nil {
		d.PurchaseOrders = empty.PurchaseOrders
	}
	if d.PendingChanges == nil {
		d.PendingChanges = empty.PendingChanges
	}
}
