package model

import "strings"

// Category is the shelf grouping of a product. The set is closed; anything
// the rules cannot place lands in CategoryOther.
type Category string

const (
	CategoryBasilSeed     Category = "Basil Seed Drinks"
	CategoryJuice         Category = "Juices"
	CategoryDairy         Category = "Dairy & Creamer"
	CategoryBeverage      Category = "Beverages"
	CategoryCooking       Category = "Cooking Essentials"
	CategorySnack         Category = "Snacks"
	CategoryConfectionery Category = "Confectionery"
	CategoryOther         Category = "Other"
)

// Categories in display order.
var Categories = []Category{
	CategoryBasilSeed,
	CategoryJuice,
	CategoryDairy,
	CategoryBeverage,
	CategoryCooking,
	CategorySnack,
	CategoryConfectionery,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory matches a label case-insensitively against the known categories.
func ParseCategory(label string) (Category, bool) {
	label = strings.TrimSpace(label)
	for _, known := range Categories {
		if strings.EqualFold(string(known), label) {
			return known, true
		}
	}
	return "", false
}
