package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrDuplicateLine = errors.New("product is already on this purchase order")
	ErrLineNotFound  = errors.New("product is not on this purchase order")
)

// OrderLine is one product row of a purchase order.
// FOC (free of charge) units are delivered but not billed.
type OrderLine struct {
	Product   string          `json:"product"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Discount  decimal.Decimal `json:"discount"`
	FOC       int             `json:"foc"`
}

// NetQuantity is the billable quantity.
func (l OrderLine) NetQuantity() int {
	return l.Quantity - l.FOC
}

// Total = net quantity * unit price - discount.
func (l OrderLine) Total() decimal.Decimal {
	return decimal.NewFromInt(int64(l.NetQuantity())).Mul(l.UnitPrice).Sub(l.Discount)
}

// Validate checks the line's own arithmetic constraints.
func (l OrderLine) Validate() error {
	if strings.TrimSpace(l.Product) == "" {
		return errors.New("product is required")
	}
	if l.Quantity < 1 {
		return fmt.Errorf("quantity for %q must be at least 1", l.Product)
	}
	if l.FOC < 0 || l.FOC > l.Quantity {
		return fmt.Errorf("FOC quantity for %q must be between 0 and %d", l.Product, l.Quantity)
	}
	if l.UnitPrice.IsNegative() {
		return fmt.Errorf("unit price for %q cannot be negative", l.Product)
	}
	if l.Discount.IsNegative() {
		return fmt.Errorf("discount for %q cannot be negative", l.Product)
	}
	return nil
}

// Draft is a purchase order under construction. Each product appears at most once.
type Draft struct {
	Lines []OrderLine `json:"lines"`
}

func (d *Draft) index(product string) int {
	for i, l := range d.Lines {
		if l.Product == product {
			return i
		}
	}
	return -1
}

func (d *Draft) Contains(product string) bool {
	return d.index(product) >= 0
}

// Add appends a validated line; a product already on the draft is rejected.
func (d *Draft) Add(line OrderLine) error {
	if err := line.Validate(); err != nil {
		return err
	}
	if d.Contains(line.Product) {
		return ErrDuplicateLine
	}
	d.Lines = append(d.Lines, line)
	return nil
}

// Update replaces the line for line.Product in place.
func (d *Draft) Update(line OrderLine) error {
	i := d.index(line.Product)
	if i < 0 {
		return ErrLineNotFound
	}
	if err := line.Validate(); err != nil {
		return err
	}
	d.Lines[i] = line
	return nil
}

func (d *Draft) Remove(product string) error {
	i := d.index(product)
	if i < 0 {
		return ErrLineNotFound
	}
	d.Lines = append(d.Lines[:i], d.Lines[i+1:]...)
	return nil
}

func (d *Draft) Clear() {
	d.Lines = nil
}

func (d *Draft) Total() decimal.Decimal {
	return SumLines(d.Lines)
}

// Clone returns a copy that shares no line storage with d.
func (d *Draft) Clone() Draft {
	lines := make([]OrderLine, len(d.Lines))
	copy(lines, d.Lines)
	return Draft{Lines: lines}
}

// SumLines is the order total: the sum of the line totals.
func SumLines(lines []OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Total())
	}
	return total
}

// OrderHeader carries what the user fills in when submitting a draft.
type OrderHeader struct {
	Supplier        Supplier `json:"supplier" validate:"supplier"`
	DeliveryDate    string   `json:"delivery_date" validate:"required,datetime=2006-01-02"`
	CompanyName     string   `json:"company_name"`
	DeliveryAddress string   `json:"delivery_address"`
	Store           string   `json:"store"`
}

// PurchaseOrder is an immutable saved snapshot of a draft.
type PurchaseOrder struct {
	ID              string          `json:"id"`
	Supplier        Supplier        `json:"supplier"`
	DeliveryDate    string          `json:"delivery_date"` // YYYY-MM-DD
	CompanyName     string          `json:"company_name"`
	DeliveryAddress string          `json:"delivery_address,omitempty"`
	Store           string          `json:"store,omitempty"`
	CreatedBy       string          `json:"created_by"`
	CreatedAt       time.Time       `json:"created_at"`
	Lines           []OrderLine     `json:"lines"`
	Total           decimal.Decimal `json:"total"`
}

// OrderNumber formats the timestamp part of a purchase order identifier.
func OrderNumber(t time.Time) string {
	return "PO-" + t.Format("20060102-150405")
}
