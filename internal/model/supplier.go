package model

import "strings"

// Supplier is a vendor the chain orders from.
type Supplier string

const (
	SupplierPRAN     Supplier = "PRAN"
	SupplierBarbican Supplier = "BARBICAN"
	SupplierDrinko   Supplier = "DRINKO"
	SupplierOther    Supplier = "OTHER"
)

var Suppliers = []Supplier{SupplierPRAN, SupplierBarbican, SupplierDrinko, SupplierOther}

func (s Supplier) Valid() bool {
	for _, known := range Suppliers {
		if s == known {
			return true
		}
	}
	return false
}

// NormalizeSupplier upper-cases the label; blank means OTHER.
func NormalizeSupplier(s Supplier) Supplier {
	v := Supplier(strings.ToUpper(strings.TrimSpace(string(s))))
	if v == "" {
		return SupplierOther
	}
	return v
}
