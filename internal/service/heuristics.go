package service

import (
	"strings"

	"go-stock-ledger/internal/model"

	"github.com/shopspring/decimal"
)

// DefaultPrice applies when neither the name nor the category table matches.
var DefaultPrice = decimal.RequireFromString("3.00")

// categoryRule matches when every word in all is present and, if any is
// non-empty, at least one word in any is present.
type categoryRule struct {
	all      []string
	any      []string
	category model.Category
}

func (r categoryRule) matches(name string) bool {
	for _, w := range r.all {
		if !strings.Contains(name, w) {
			return false
		}
	}
	if len(r.any) == 0 {
		return true
	}
	for _, w := range r.any {
		if strings.Contains(name, w) {
			return true
		}
	}
	return false
}

// categoryRules is evaluated top to bottom; the first match wins.
var categoryRules = []categoryRule{
	{any: []string{"BASIL SEED"}, category: model.CategoryBasilSeed},
	{any: []string{"LASSI", "CREAMER"}, category: model.CategoryDairy},
	{any: []string{"GHEE", "OIL", "MASALA"}, category: model.CategoryCooking},
	{all: []string{"COCONUT", "WATER"}, category: model.CategoryBeverage},
	{all: []string{"ENERGY", "DRINK"}, category: model.CategoryBeverage},
	{any: []string{"JUS", "JUICE"}, category: model.CategoryJuice},
	{any: []string{"FLOAT", "BARBICAN", "BES MINUMAN", "TAMARIND", "SOUR PLUM", "BIRD NEST", "SOYA", "TEH"}, category: model.CategoryBeverage},
	{any: []string{"CHANACHUR", "PUFFED RICE", "BISCUIT", "POTATA", "CHOCO STICK"}, category: model.CategorySnack},
	{any: []string{"LOLLIPOP", "PREMIO", "HUMPTY DUMPTY", "CANDY"}, category: model.CategoryConfectionery},
}

// Categorize infers a category from the product name. It never fails:
// unmatched names are CategoryOther.
func Categorize(productName string) model.Category {
	name := strings.ToUpper(productName)
	for _, rule := range categoryRules {
		if rule.matches(name) {
			return rule.category
		}
	}
	return model.CategoryOther
}

type priceRule struct {
	keyword string
	price   decimal.Decimal
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// namePrices is evaluated top to bottom; the first keyword found wins.
var namePrices = []priceRule{
	{"BASIL SEED", price("2.50")},
	{"JUS PET", price("4.00")},
	{"LASSI", price("3.50")},
	{"VEGETABLE GHEE", price("8.00")},
	{"CHANACHUR", price("3.00")},
	{"MUSTARD OIL", price("6.00")},
	{"BARBICAN", price("2.80")},
	{"ENERGY DRINK", price("2.00")},
	{"LOLLIPOP", price("1.50")},
	{"CREAMER", price("5.00")},
	{"COCONUT WATER", price("3.50")},
	{"FLOAT", price("2.20")},
	{"TAMARIND", price("2.80")},
	{"SOYA", price("2.50")},
	{"BIRD NEST", price("8.50")},
	{"PUFFED RICE", price("4.50")},
	{"BISCUITS", price("3.50")},
	{"BES MINUMAN", price("1.80")},
	{"POTATA", price("3.50")},
	{"COOLING", price("2.50")},
	{"SOUR PLUM", price("2.80")},
	{"BRIYANI MASALA", price("4.50")},
	{"HUMPTY DUMPTY", price("2.00")},
}

// categoryPrices backs names that no keyword covers.
var categoryPrices = map[model.Category]decimal.Decimal{
	model.CategoryBasilSeed:     price("2.50"),
	model.CategoryJuice:         price("3.80"),
	model.CategoryDairy:         price("4.00"),
	model.CategoryBeverage:      price("2.50"),
	model.CategoryCooking:       price("6.50"),
	model.CategorySnack:         price("3.20"),
	model.CategoryConfectionery: price("1.50"),
}

// EstimatePrice guesses a unit price from the product name, then from its
// inferred category, then DefaultPrice. Pure; always positive.
func EstimatePrice(productName string) decimal.Decimal {
	name := strings.ToUpper(productName)
	for _, rule := range namePrices {
		if strings.Contains(name, rule.keyword) {
			return rule.price
		}
	}
	if p, ok := categoryPrices[Categorize(productName)]; ok {
		return p
	}
	return DefaultPrice
}
