package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/repository"
	"go-stock-ledger/pkg/validator"

	"github.com/shopspring/decimal"
)

// LineInput is one draft row as entered by the user. A nil UnitPrice takes
// the catalog price.
type LineInput struct {
	Product   string           `json:"product"`
	Quantity  int              `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
	Discount  decimal.Decimal  `json:"discount"`
	FOC       int              `json:"foc"`
}

func draftError(err error) error {
	switch {
	case errors.Is(err, model.ErrDuplicateLine):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case errors.Is(err, model.ErrLineNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	default:
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
}

func (l *Ledger) draftFor(username string) *model.Draft {
	d, ok := l.drafts[username]
	if !ok {
		d = &model.Draft{}
		l.drafts[username] = d
	}
	return d
}

// Draft returns a copy of the actor's purchase order under construction.
func (l *Ledger) Draft(actor model.Actor) model.Draft {
	l.mu.Lock()
	defer l.mu.Unlock()
	if d, ok := l.drafts[actor.Username]; ok {
		return d.Clone()
	}
	return model.Draft{Lines: []model.OrderLine{}}
}

// editDraft runs fn against the actor's draft. Drafts are session state and
// are never written to the repository.
func (l *Ledger) editDraft(actor model.Actor, fn func(d *model.Draft) error) (model.Draft, error) {
	var out model.Draft
	err := l.mutate(actor, model.PrivOrderCreate, func() ([]repository.Kind, error) {
		d := l.draftFor(actor.Username)
		if err := fn(d); err != nil {
			return nil, err
		}
		out = d.Clone()
		return nil, nil
	})
	return out, err
}

func (l *Ledger) AddDraftLine(actor model.Actor, in LineInput) (model.Draft, error) {
	in.Product = strings.TrimSpace(in.Product)
	return l.editDraft(actor, func(d *model.Draft) error {
		if !l.known(in.Product) {
			return fmt.Errorf("%w: product '%s' does not exist", ErrNotFound, in.Product)
		}
		line := model.OrderLine{
			Product:   in.Product,
			Quantity:  in.Quantity,
			UnitPrice: l.priceOf(in.Product),
			Discount:  in.Discount,
			FOC:       in.FOC,
		}
		if in.UnitPrice != nil {
			line.UnitPrice = *in.UnitPrice
		}
		if err := d.Add(line); err != nil {
			return draftError(err)
		}
		return nil
	})
}

// UpdateDraftLine replaces an existing line. A nil UnitPrice keeps the
// line's current price.
func (l *Ledger) UpdateDraftLine(actor model.Actor, in LineInput) (model.Draft, error) {
	in.Product = strings.TrimSpace(in.Product)
	return l.editDraft(actor, func(d *model.Draft) error {
		line := model.OrderLine{
			Product:  in.Product,
			Quantity: in.Quantity,
			Discount: in.Discount,
			FOC:      in.FOC,
		}
		for _, existing := range d.Lines {
			if existing.Product == in.Product {
				line.UnitPrice = existing.UnitPrice
			}
		}
		if in.UnitPrice != nil {
			line.UnitPrice = *in.UnitPrice
		}
		if err := d.Update(line); err != nil {
			return draftError(err)
		}
		return nil
	})
}

func (l *Ledger) RemoveDraftLine(actor model.Actor, product string) (model.Draft, error) {
	product = strings.TrimSpace(product)
	return l.editDraft(actor, func(d *model.Draft) error {
		if err := d.Remove(product); err != nil {
			return draftError(err)
		}
		return nil
	})
}

func (l *Ledger) ClearDraft(actor model.Actor) error {
	_, err := l.editDraft(actor, func(d *model.Draft) error {
		d.Clear()
		return nil
	})
	return err
}

// SubmitDraft snapshots the actor's draft as a saved purchase order and
// empties the draft. Missing company name and delivery address are filled
// from the configured company and the chosen store.
func (l *Ledger) SubmitDraft(actor model.Actor, header model.OrderHeader) (model.PurchaseOrder, error) {
	header.Supplier = model.NormalizeSupplier(header.Supplier)
	header.CompanyName = strings.TrimSpace(header.CompanyName)
	header.DeliveryAddress = strings.TrimSpace(header.DeliveryAddress)
	header.Store = strings.TrimSpace(header.Store)

	var saved model.PurchaseOrder
	err := l.mutate(actor, model.PrivOrderCreate, func() ([]repository.Kind, error) {
		if err := validator.FirstError(&header); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		d := l.drafts[actor.Username]
		if d == nil || len(d.Lines) == 0 {
			return nil, fmt.Errorf("%w: purchase order has no lines", ErrInvalid)
		}
		if header.Store != "" {
			if !l.storeExists(header.Store) {
				return nil, fmt.Errorf("%w: store '%s' does not exist", ErrNotFound, header.Store)
			}
			if header.DeliveryAddress == "" {
				header.DeliveryAddress = l.data.StoreAddresses[header.Store]
			}
		}
		if header.CompanyName == "" {
			header.CompanyName = l.cfg.CompanyName
		}

		po := model.PurchaseOrder{
			Supplier:        header.Supplier,
			DeliveryDate:    header.DeliveryDate,
			CompanyName:     header.CompanyName,
			DeliveryAddress: header.DeliveryAddress,
			Store:           header.Store,
			CreatedBy:       actor.Username,
			CreatedAt:       l.cfg.Now(),
			Lines:           d.Clone().Lines,
		}
		if err := l.storeOrder(&po); err != nil {
			return nil, err
		}
		d.Clear()
		saved = po
		return []repository.Kind{repository.KindPurchaseOrders}, nil
	})
	if !Applied(err) {
		return model.PurchaseOrder{}, err
	}
	l.publishOrderSaved(actor, saved)
	return saved, err
}

// SavePurchaseOrder stores a complete snapshot built by the caller. Saved
// orders are immutable: an ID that is already taken is a conflict. A blank
// ID is assigned from the creation time.
func (l *Ledger) SavePurchaseOrder(actor model.Actor, po model.PurchaseOrder) (model.PurchaseOrder, error) {
	po.ID = strings.TrimSpace(po.ID)
	po.Supplier = model.NormalizeSupplier(po.Supplier)
	po.Lines = append([]model.OrderLine(nil), po.Lines...)
	for i := range po.Lines {
		po.Lines[i].Product = strings.TrimSpace(po.Lines[i].Product)
	}

	err := l.mutate(actor, model.PrivOrderCreate, func() ([]repository.Kind, error) {
		if !po.Supplier.Valid() {
			return nil, fmt.Errorf("%w: unknown supplier '%s'", ErrInvalid, po.Supplier)
		}
		for _, line := range po.Lines {
			if !l.known(line.Product) {
				return nil, fmt.Errorf("%w: product '%s' does not exist", ErrNotFound, line.Product)
			}
		}
		if po.CreatedBy == "" {
			po.CreatedBy = actor.Username
		}
		if po.CreatedAt.IsZero() {
			po.CreatedAt = l.cfg.Now()
		}
		if po.CompanyName == "" {
			po.CompanyName = l.cfg.CompanyName
		}
		if err := l.storeOrder(&po); err != nil {
			return nil, err
		}
		return []repository.Kind{repository.KindPurchaseOrders}, nil
	})
	if !Applied(err) {
		return model.PurchaseOrder{}, err
	}
	l.publishOrderSaved(actor, po)
	return po, err
}

// storeOrder validates the lines, assigns the ID and total, and records po.
// Callers hold l.mu.
func (l *Ledger) storeOrder(po *model.PurchaseOrder) error {
	if len(po.Lines) == 0 {
		return fmt.Errorf("%w: purchase order has no lines", ErrInvalid)
	}
	var check model.Draft
	for _, line := range po.Lines {
		if err := check.Add(line); err != nil {
			return draftError(err)
		}
	}

	if po.ID == "" {
		po.ID = l.nextOrderID(po)
	} else if _, exists := l.data.PurchaseOrders[po.ID]; exists {
		return fmt.Errorf("%w: purchase order '%s' already exists", ErrConflict, po.ID)
	}
	po.Total = model.SumLines(po.Lines)
	l.data.PurchaseOrders[po.ID] = *po
	return nil
}

// nextOrderID derives the ID from the creation second and appends -2, -3, ...
// while the ID is taken.
func (l *Ledger) nextOrderID(po *model.PurchaseOrder) string {
	base := model.OrderNumber(po.CreatedAt)
	id := base
	for n := 2; ; n++ {
		if _, taken := l.data.PurchaseOrders[id]; !taken {
			return id
		}
		id = fmt.Sprintf("%s-%d", base, n)
	}
}

func (l *Ledger) publishOrderSaved(actor model.Actor, po model.PurchaseOrder) {
	l.publish(actor, model.EventOrderSaved, po.ID,
		fmt.Sprintf("%s saved purchase order %s for %s (%s)", actor.Username, po.ID, po.Supplier, po.Total.StringFixed(2)))
}

func (l *Ledger) DeletePurchaseOrder(actor model.Actor, id string) (Outcome, error) {
	id = strings.TrimSpace(id)
	err := l.mutate(actor, model.PrivOrderDelete, func() ([]repository.Kind, error) {
		if _, ok := l.data.PurchaseOrders[id]; !ok {
			return nil, fmt.Errorf("%w: purchase order '%s' does not exist", ErrNotFound, id)
		}
		delete(l.data.PurchaseOrders, id)
		return []repository.Kind{repository.KindPurchaseOrders}, nil
	})
	if !Applied(err) {
		return "", err
	}
	l.publish(actor, model.EventOrderDeleted, id,
		fmt.Sprintf("%s deleted purchase order %s", actor.Username, id))
	return OutcomeApplied, err
}

// PurchaseOrders lists saved orders, newest first.
func (l *Ledger) PurchaseOrders() []model.PurchaseOrder {
	l.mu.Lock()
	defer l.mu.Unlock()

	orders := make([]model.PurchaseOrder, 0, len(l.data.PurchaseOrders))
	for _, po := range l.data.PurchaseOrders {
		orders = append(orders, po)
	}
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].ID > orders[j].ID
	})
	return orders
}

func (l *Ledger) PurchaseOrder(id string) (model.PurchaseOrder, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	po, ok := l.data.PurchaseOrders[id]
	if !ok {
		return model.PurchaseOrder{}, fmt.Errorf("%w: purchase order '%s' does not exist", ErrNotFound, id)
	}
	return po, nil
}
