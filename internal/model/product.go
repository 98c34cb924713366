package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ProductInput is the payload for adding a product to one or more stores.
// A nil Price or empty Category is filled in by the catalog heuristics.
type ProductInput struct {
	Name         string           `json:"name" validate:"required"`
	Stores       []string         `json:"stores" validate:"required,min=1,dive,required"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	Barcode      string           `json:"barcode,omitempty"`
	Supplier     Supplier         `json:"supplier" validate:"supplier"`
	Category     Category         `json:"category,omitempty" validate:"omitempty,category"`
	InitialStock int              `json:"initial_stock" validate:"gte=0"`
}

// Normalize trims names and fills the supplier default.
func (in *ProductInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Barcode = strings.TrimSpace(in.Barcode)
	in.Supplier = NormalizeSupplier(in.Supplier)
	in.Stores = trimAll(in.Stores)
}

// ProductUpdate replaces every attribute of a product, optionally renaming it.
// Stores is the complete membership list after the update.
type ProductUpdate struct {
	NewName       string          `json:"new_name" validate:"required"`
	Price         decimal.Decimal `json:"price"`
	Barcode       string          `json:"barcode"`
	Supplier      Supplier        `json:"supplier" validate:"supplier"`
	Stores        []string        `json:"stores" validate:"dive,required"`
	Category      Category        `json:"category" validate:"omitempty,category"`
	StockQuantity int             `json:"stock_quantity"`
}

func (u *ProductUpdate) Normalize() {
	u.NewName = strings.TrimSpace(u.NewName)
	u.Barcode = strings.TrimSpace(u.Barcode)
	u.Supplier = NormalizeSupplier(u.Supplier)
	u.Stores = trimAll(u.Stores)
}

// ProductView is a read model of everything the catalog knows about a product.
type ProductView struct {
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	PriceIsStored bool            `json:"price_is_stored"`
	Barcode       string          `json:"barcode,omitempty"`
	Supplier      Supplier        `json:"supplier,omitempty"`
	Category      Category        `json:"category"`
	StockQuantity int             `json:"stock_quantity"`
	Locations     []string        `json:"locations"`
	StoreCount    int             `json:"store_count"`
}

// StoreSummary describes one branch.
type StoreSummary struct {
	Name         string `json:"name"`
	Address      string `json:"address,omitempty"`
	ProductCount int    `json:"product_count"`
}

// CatalogStats backs the dashboard.
type CatalogStats struct {
	TotalStores         int            `json:"total_stores"`
	TotalProducts       int            `json:"total_products"`
	AvgProductsPerStore int            `json:"avg_products_per_store"`
	MostStockedStore    string         `json:"most_stocked_store"`
	StoreRanking        []StoreSummary `json:"store_ranking"`
	PendingChangeCount  int            `json:"pending_change_count"`
	SavedPurchaseOrders int            `json:"saved_purchase_orders"`
}

func trimAll(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, strings.TrimSpace(n))
	}
	return out
}
