package service

import (
	"fmt"
	"strings"

	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/repository"
	"go-stock-ledger/pkg/validator"
)

var productKinds = []repository.Kind{
	repository.KindStores, repository.KindPrices, repository.KindBarcodes,
	repository.KindSuppliers, repository.KindCategories, repository.KindStockQuantities,
}

func validateProductInput(in *model.ProductInput) error {
	if in.Name == "" {
		return fmt.Errorf("%w: product name is required", ErrInvalid)
	}
	if len(in.Stores) == 0 {
		return fmt.Errorf("%w: select at least one store", ErrInvalid)
	}
	if in.Price != nil && in.Price.IsNegative() {
		return fmt.Errorf("%w: price cannot be negative", ErrInvalid)
	}
	if in.InitialStock < 0 {
		return fmt.Errorf("%w: initial stock cannot be negative", ErrInvalid)
	}
	if err := validator.FirstError(in); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// AddProduct adds a product to the listed stores. Callers without the
// product:create privilege get a pending change request instead.
func (l *Ledger) AddProduct(actor model.Actor, in model.ProductInput) (Outcome, error) {
	in.Normalize()
	in.Stores = cleanNames(in.Stores)
	if err := validateProductInput(&in); err != nil {
		return "", err
	}

	if !actor.Can(model.PrivProductCreate) {
		return l.requestChange(actor, model.NewAddProductRequest(in, actor.Username, l.cfg.Now()))
	}

	err := l.mutate(actor, model.PrivProductCreate, func() ([]repository.Kind, error) {
		return l.applyAddProduct(in)
	})
	if !Applied(err) {
		return "", err
	}
	l.publish(actor, model.EventProductAdded, in.Name,
		fmt.Sprintf("%s added '%s' to %s", actor.Username, in.Name, strings.Join(in.Stores, ", ")))
	return OutcomeApplied, err
}

// applyAddProduct assumes l.mu is held and in is validated.
func (l *Ledger) applyAddProduct(in model.ProductInput) ([]repository.Kind, error) {
	for _, s := range in.Stores {
		if !l.storeExists(s) {
			return nil, fmt.Errorf("%w: store '%s' does not exist", ErrNotFound, s)
		}
	}

	l.products[in.Name] = struct{}{}
	for _, s := range in.Stores {
		l.addMember(s, in.Name)
	}

	price := EstimatePrice(in.Name)
	if in.Price != nil {
		price = *in.Price
	}
	l.data.Prices[in.Name] = price
	if in.Barcode != "" {
		l.data.Barcodes[in.Name] = in.Barcode
	}
	l.data.Suppliers[in.Name] = in.Supplier

	category := in.Category
	if category == "" {
		category = Categorize(in.Name)
	}
	l.data.Categories[in.Name] = category
	l.data.StockQuantities[in.Name] = in.InitialStock

	return productKinds, nil
}

// AddStore creates a branch, optionally carrying an initial product list.
func (l *Ledger) AddStore(actor model.Actor, name string, initialProducts []string) (Outcome, error) {
	name = strings.TrimSpace(name)
	products := cleanNames(initialProducts)

	err := l.mutate(actor, model.PrivStoreCreate, func() ([]repository.Kind, error) {
		if name == "" {
			return nil, fmt.Errorf("%w: store name is required", ErrInvalid)
		}
		if l.storeExists(name) {
			return nil, fmt.Errorf("%w: store '%s' already exists", ErrConflict, name)
		}
		l.data.Stores[name] = products
		kinds := []repository.Kind{repository.KindStores}
		for _, p := range products {
			kinds = append(kinds, l.introduce(p)...)
		}
		return kinds, nil
	})
	if !Applied(err) {
		return "", err
	}
	l.publish(actor, model.EventStoreAdded, name,
		fmt.Sprintf("%s added store '%s' with %d product(s)", actor.Username, name, len(products)))
	return OutcomeApplied, err
}

// AddProductsToStore adds each product the store does not already carry.
func (l *Ledger) AddProductsToStore(actor model.Actor, store string, products []string) (Outcome, error) {
	store = strings.TrimSpace(store)
	names := cleanNames(products)
	added := 0

	err := l.mutate(actor, model.PrivStoreUpdate, func() ([]repository.Kind, error) {
		if !l.storeExists(store) {
			return nil, fmt.Errorf("%w: store '%s' does not exist", ErrNotFound, store)
		}
		if len(names) == 0 {
			return nil, fmt.Errorf("%w: no products given", ErrInvalid)
		}
		var kinds []repository.Kind
		for _, p := range names {
			if l.addMember(store, p) {
				added++
			}
			kinds = append(kinds, l.introduce(p)...)
		}
		if added == 0 {
			return nil, nil
		}
		return append(kinds, repository.KindStores), nil
	})
	if !Applied(err) {
		return "", err
	}
	if added > 0 {
		l.publish(actor, model.EventStoreProductsAdded, store,
			fmt.Sprintf("%s added %d product(s) to '%s'", actor.Username, added, store))
	}
	return OutcomeApplied, err
}

// DeleteProduct removes the product from every store and drops all of its
// attributes.
func (l *Ledger) DeleteProduct(actor model.Actor, name string) (Outcome, error) {
	name = strings.TrimSpace(name)
	err := l.mutate(actor, model.PrivProductDelete, func() ([]repository.Kind, error) {
		if !l.known(name) {
			return nil, fmt.Errorf("%w: product '%s' does not exist", ErrNotFound, name)
		}
		for store := range l.data.Stores {
			l.removeMember(store, name)
		}
		delete(l.products, name)
		delete(l.data.Prices, name)
		delete(l.data.Barcodes, name)
		delete(l.data.Suppliers, name)
		delete(l.data.Categories, name)
		delete(l.data.StockQuantities, name)
		return productKinds, nil
	})
	if !Applied(err) {
		return "", err
	}
	l.publish(actor, model.EventProductDeleted, name,
		fmt.Sprintf("%s deleted '%s'", actor.Username, name))
	return OutcomeApplied, err
}

// MergeProducts folds remove into keep. Stores carrying remove carry keep
// afterwards, at remove's position when they did not already have keep.
// keep's own attributes win; remove's fill the gaps.
func (l *Ledger) MergeProducts(actor model.Actor, keep, remove string) (Outcome, error) {
	keep = strings.TrimSpace(keep)
	remove = strings.TrimSpace(remove)

	err := l.mutate(actor, model.PrivProductMerge, func() ([]repository.Kind, error) {
		if keep == "" || remove == "" {
			return nil, fmt.Errorf("%w: both products are required", ErrInvalid)
		}
		if keep == remove {
			return nil, fmt.Errorf("%w: cannot merge '%s' into itself", ErrInvalid, keep)
		}
		for _, p := range []string{keep, remove} {
			if !l.known(p) {
				return nil, fmt.Errorf("%w: product '%s' does not exist", ErrNotFound, p)
			}
		}

		for store, products := range l.data.Stores {
			i := indexOf(products, remove)
			if i < 0 {
				continue
			}
			if indexOf(products, keep) >= 0 {
				l.removeMember(store, remove)
			} else {
				products[i] = keep
			}
		}

		moveKey(l.data.Prices, remove, keep, false)
		moveKey(l.data.Barcodes, remove, keep, false)
		moveKey(l.data.Suppliers, remove, keep, false)
		moveKey(l.data.Categories, remove, keep, false)
		moveKey(l.data.StockQuantities, remove, keep, false)
		delete(l.products, remove)
		return productKinds, nil
	})
	if !Applied(err) {
		return "", err
	}
	l.publish(actor, model.EventProductsMerged, keep,
		fmt.Sprintf("%s merged '%s' into '%s'", actor.Username, remove, keep))
	return OutcomeApplied, err
}

// UpdateProduct replaces every attribute of oldName and sets its store
// membership to exactly upd.Stores. Renaming onto another existing product is
// a conflict; use MergeProducts for that.
func (l *Ledger) UpdateProduct(actor model.Actor, oldName string, upd model.ProductUpdate) (Outcome, error) {
	oldName = strings.TrimSpace(oldName)
	upd.Normalize()
	upd.Stores = cleanNames(upd.Stores)
	if upd.NewName == "" {
		upd.NewName = oldName
	}

	err := l.mutate(actor, model.PrivProductUpdate, func() ([]repository.Kind, error) {
		if upd.Price.IsNegative() {
			return nil, fmt.Errorf("%w: price cannot be negative", ErrInvalid)
		}
		if err := validator.FirstError(&upd); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		if !l.known(oldName) {
			return nil, fmt.Errorf("%w: product '%s' does not exist", ErrNotFound, oldName)
		}
		newName := upd.NewName
		if newName != oldName && l.known(newName) {
			return nil, fmt.Errorf("%w: product '%s' already exists, merge the products instead", ErrConflict, newName)
		}
		for _, s := range upd.Stores {
			if !l.storeExists(s) {
				return nil, fmt.Errorf("%w: store '%s' does not exist", ErrNotFound, s)
			}
		}

		if newName != oldName {
			for _, products := range l.data.Stores {
				if i := indexOf(products, oldName); i >= 0 {
					products[i] = newName
				}
			}
			moveKey(l.data.Prices, oldName, newName, true)
			moveKey(l.data.Barcodes, oldName, newName, true)
			moveKey(l.data.Suppliers, oldName, newName, true)
			moveKey(l.data.Categories, oldName, newName, true)
			moveKey(l.data.StockQuantities, oldName, newName, true)
			delete(l.products, oldName)
			l.products[newName] = struct{}{}
		}

		l.data.Prices[newName] = upd.Price
		if upd.Barcode == "" {
			delete(l.data.Barcodes, newName)
		} else {
			l.data.Barcodes[newName] = upd.Barcode
		}
		l.data.Suppliers[newName] = upd.Supplier
		category := upd.Category
		if category == "" {
			category = Categorize(newName)
		}
		l.data.Categories[newName] = category
		l.data.StockQuantities[newName] = max(0, upd.StockQuantity)

		for store := range l.data.Stores {
			if indexOf(upd.Stores, store) >= 0 {
				l.addMember(store, newName)
			} else {
				l.removeMember(store, newName)
			}
		}
		return productKinds, nil
	})
	if !Applied(err) {
		return "", err
	}
	msg := fmt.Sprintf("%s updated '%s'", actor.Username, upd.NewName)
	if upd.NewName != oldName {
		msg = fmt.Sprintf("%s renamed '%s' to '%s'", actor.Username, oldName, upd.NewName)
	}
	l.publish(actor, model.EventProductUpdated, upd.NewName, msg)
	return OutcomeApplied, err
}

// SetStockQuantity records the global on-hand quantity. Negative values clamp to 0.
func (l *Ledger) SetStockQuantity(actor model.Actor, product string, qty int) (Outcome, error) {
	product = strings.TrimSpace(product)
	qty = max(0, qty)
	err := l.mutate(actor, model.PrivStockUpdate, func() ([]repository.Kind, error) {
		if !l.known(product) {
			return nil, fmt.Errorf("%w: product '%s' does not exist", ErrNotFound, product)
		}
		l.data.StockQuantities[product] = qty
		return []repository.Kind{repository.KindStockQuantities}, nil
	})
	if !Applied(err) {
		return "", err
	}
	l.publish(actor, model.EventStockUpdated, product,
		fmt.Sprintf("%s set stock of '%s' to %d", actor.Username, product, qty))
	return OutcomeApplied, err
}

// SetStoreAddress sets the delivery address used on purchase orders. An empty
// address clears it.
func (l *Ledger) SetStoreAddress(actor model.Actor, store, address string) (Outcome, error) {
	store = strings.TrimSpace(store)
	address = strings.TrimSpace(address)
	err := l.mutate(actor, model.PrivStoreUpdate, func() ([]repository.Kind, error) {
		if !l.storeExists(store) {
			return nil, fmt.Errorf("%w: store '%s' does not exist", ErrNotFound, store)
		}
		if address == "" {
			delete(l.data.StoreAddresses, store)
		} else {
			l.data.StoreAddresses[store] = address
		}
		return []repository.Kind{repository.KindStoreAddresses}, nil
	})
	if !Applied(err) {
		return "", err
	}
	l.publish(actor, model.EventStoreUpdated, store,
		fmt.Sprintf("%s updated the address of '%s'", actor.Username, store))
	return OutcomeApplied, err
}
