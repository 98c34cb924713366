package service

import (
	"errors"
	"sync"
	"testing"
	"time"

	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin = model.Actor{Username: "admin", Role: model.RoleAdmin}
	clerk = model.Actor{Username: "clerk", Role: model.RoleUser}

	fixedNow = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.Event
}

func (p *recordingPublisher) Publish(e model.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []model.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []model.EventType
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func newTestLedger(t *testing.T, store repository.DocumentStore) (*Ledger, *recordingPublisher) {
	t.Helper()
	events := &recordingPublisher{}
	l, err := NewLedger(repository.NewCatalogRepo(store), events, LedgerConfig{
		CompanyName: "TEST TRADING",
		Now:         func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return l, events
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestLedger_SeedCatalog(t *testing.T) {
	store := repository.NewMemoryStore()
	l, _ := newTestLedger(t, store)

	assert.Contains(t, l.Locations("HUMPTY DUMPTY"), "AMPANG")
	assert.Equal(t, "2.00", l.PriceOf("HUMPTY DUMPTY").StringFixed(2))
	assert.Equal(t, model.CategoryConfectionery, l.CategoryOf("HUMPTY DUMPTY"))
	assert.Len(t, l.Stores(), 7)

	// backfilled attributes and the seed membership are written through
	for _, kind := range []repository.Kind{repository.KindStores, repository.KindPrices, repository.KindCategories, repository.KindStockQuantities} {
		_, err := store.Get(string(kind))
		assert.NoError(t, err, kind)
	}
}

func TestLedger_ReloadsPersistedState(t *testing.T) {
	store := repository.NewMemoryStore()
	l, _ := newTestLedger(t, store)

	_, err := l.AddStore(admin, "NEW STORE", []string{"X"})
	require.NoError(t, err)
	_, err = l.SetStockQuantity(admin, "X", 12)
	require.NoError(t, err)

	reloaded, _ := newTestLedger(t, store)
	assert.Equal(t, []string{"NEW STORE"}, reloaded.Locations("X"))
	assert.Equal(t, 12, reloaded.StockQuantity("X"))
	assert.Len(t, reloaded.Stores(), 8)
}

func TestLedger_UnknownStoredCategoryIsRederived(t *testing.T) {
	store := repository.NewMemoryStore()
	require.NoError(t, store.Put(string(repository.KindCategories), []byte(`{"HUMPTY DUMPTY":"Sweets"}`)))

	l, _ := newTestLedger(t, store)
	assert.Equal(t, model.CategoryConfectionery, l.CategoryOf("HUMPTY DUMPTY"))
}

func TestLedger_CorruptDocumentBlocksStartup(t *testing.T) {
	store := repository.NewMemoryStore()
	require.NoError(t, store.Put(string(repository.KindStores), []byte(`[broken`)))

	_, err := NewLedger(repository.NewCatalogRepo(store), nil, LedgerConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load catalog")
}

func TestLedger_AddStoreTwice(t *testing.T) {
	l, _ := newTestLedger(t, repository.NewMemoryStore())

	outcome, err := l.AddStore(admin, "NEW STORE", nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, outcome)

	_, err = l.AddStore(admin, "NEW STORE", []string{"SOMETHING"})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "already exists")

	products, err := l.StoreProducts("NEW STORE", "")
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestLedger_AddStoreRequiresAdmin(t *testing.T) {
	l, _ := newTestLedger(t, repository.NewMemoryStore())

	_, err := l.AddStore(clerk, "NEW STORE", nil)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = l.StoreProducts("NEW STORE", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLedger_AddProductAsAdmin(t *testing.T) {
	l, events := newTestLedger(t, repository.NewMemoryStore())

	outcome, err := l.AddProduct(admin, model.ProductInput{
		Name:         "  PRAN JUS 330ML GUAVA ",
		Stores:       []string{"AMPANG", "PERPADUAN", "AMPANG"},
		Barcode:      "8801",
		Supplier:     "pran",
		InitialStock: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, outcome)

	view, err := l.ProductDetails("PRAN JUS 330ML GUAVA")
	require.NoError(t, err)
	assert.Equal(t, []string{"AMPANG", "PERPADUAN"}, view.Locations)
	assert.Equal(t, "3.80", view.Price.StringFixed(2))
	assert.True(t, view.PriceIsStored)
	assert.Equal(t, model.CategoryJuice, view.Category)
	assert.Equal(t, model.SupplierPRAN, view.Supplier)
	assert.Equal(t, "8801", view.Barcode)
	assert.Equal(t, 5, view.StockQuantity)
	assert.Equal(t, []model.EventType{model.EventProductAdded}, events.types())

	// re-adding is idempotent on membership
	_, err = l.AddProduct(admin, model.ProductInput{Name: "PRAN JUS 330ML GUAVA", Stores: []string{"AMPANG"}, Price: decPtr("4.10")})
	require.NoError(t, err)
	assert.Equal(t, 2, l.StockCount("PRAN JUS 330ML GUAVA"))
	assert.Equal(t, "4.10", l.PriceOf("PRAN JUS 330ML GUAVA").StringFixed(2))
}

func TestLedger_AddProductValidation(t *testing.T) {
	l, _ := newTestLedger(t, repository.NewMemoryStore())

	tests := []struct {
		name    string
		input   model.ProductInput
		wantErr error
	}{
		{"blank name", model.ProductInput{Name: " ", Stores: []string{"AMPANG"}}, ErrInvalid},
		{"no stores", model.ProductInput{Name: "X"}, ErrInvalid},
		{"negative price", model.ProductInput{Name: "X", Stores: []string{"AMPANG"}, Price: decPtr("-1")}, ErrInvalid},
		{"unknown supplier", model.ProductInput{Name: "X", Stores: []string{"AMPANG"}, Supplier: "ACME"}, ErrInvalid},
		{"unknown category", model.ProductInput{Name: "X", Stores: []string{"AMPANG"}, Category: "Toys"}, ErrInvalid},
		{"unknown store", model.ProductInput{Name: "X", Stores: []string{"AMPANG", "NOWHERE"}}, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.AddProduct(admin, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, l.Locations("X"))
			assert.NotContains(t, l.AllProducts(), "X")
		})
	}
}

func TestLedger_NonAdminAddProductIsQueued(t *testing.T) {
	input := model.ProductInput{
		Name:     "PRAN NEW FLAVOUR",
		Stores:   []string{"AMPANG", "TELUK INTAN"},
		Price:    decPtr("4.20"),
		Supplier: model.SupplierPRAN,
		Category: model.CategoryBeverage,
	}

	queued, events := newTestLedger(t, repository.NewMemoryStore())
	before := queued.Stats()

	outcome, err := queued.AddProduct(clerk, input)
	require.NoError(t, err)
	assert.Equal(t, OutcomePending, outcome)

	assert.Empty(t, queued.Locations("PRAN NEW FLAVOUR"))
	assert.NotContains(t, queued.AllProducts(), "PRAN NEW FLAVOUR")
	assert.Equal(t, before.TotalProducts, queued.Stats().TotalProducts)
	pending := queued.PendingChanges()
	require.Len(t, pending, 1)
	assert.Equal(t, model.ChangeAddProduct, pending[0].Type)
	assert.Equal(t, "clerk", pending[0].RequestedBy)
	assert.Equal(t, model.ChangePending, pending[0].Status)

	_, err = queued.ApproveChange(clerk, pending[0].ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = queued.ApproveChange(admin, pending[0].ID)
	require.NoError(t, err)
	assert.Empty(t, queued.PendingChanges())
	assert.Equal(t, []model.EventType{model.EventChangeRequested, model.EventChangeApproved}, events.types())

	direct, _ := newTestLedger(t, repository.NewMemoryStore())
	_, err = direct.AddProduct(admin, input)
	require.NoError(t, err)

	want, err := direct.ProductDetails("PRAN NEW FLAVOUR")
	require.NoError(t, err)
	got, err := queued.ProductDetails("PRAN NEW FLAVOUR")
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, direct.Stats(), queued.Stats())
}

func TestLedger_ApproveKeepsRequestThatCannotApply(t *testing.T) {
	l, _ := newTestLedger(t, repository.NewMemoryStore())

	_, err := l.AddProduct(clerk, model.ProductInput{Name: "X", Stores: []string{"NOWHERE"}})
	require.NoError(t, err)
	id := l.PendingChanges()[0].ID

	_, err = l.ApproveChange(admin, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, l.PendingChanges(), 1)

	outcome, err := l.RejectChange(admin, id)
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, outcome)
	assert.Empty(t, l.PendingChanges())
	assert.NotContains(t, l.AllProducts(), "X")

	_, err = l.RejectChange(admin, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLedger_NonAdminWritesAreDeclined(t *testing.T) {
	l, _ := newTestLedger(t, repository.NewMemoryStore())

	calls := map[string]func() error{
		"delete": func() error { _, err := l.DeleteProduct(clerk, "HUMPTY DUMPTY"); return err },
		"merge":  func() error { _, err := l.MergeProducts(clerk, "HUMPTY DUMPTY", "PRAN VARIETY LOLLIPOP"); return err },
		"update": func() error {
			_, err := l.UpdateProduct(clerk, "HUMPTY DUMPTY", model.ProductUpdate{NewName: "HD", Stores: []string{"AMPANG"}})
			return err
		},
		"stock":   func() error { _, err := l.SetStockQuantity(clerk, "HUMPTY DUMPTY", 3); return err },
		"address": func() error { _, err := l.SetStoreAddress(clerk, "AMPANG", "1 Main St"); return err },
		"add to store": func() error {
			_, err := l.AddProductsToStore(clerk, "AMPANG", []string{"Y"})
			return err
		},
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, call(), ErrForbidden)
		})
	}

	assert.Contains(t, l.Locations("HUMPTY DUMPTY"), "AMPANG")
	assert.Empty(t, l.PendingChanges())
}

func TestLedger_AddProductsToStore(t *testing.T) {
	l, events := newTestLedger(t, repository.NewMemoryStore())

	_, err := l.AddProductsToStore(admin, "AMPANG", []string{"HUMPTY DUMPTY", "NEW ITEM", " NEW ITEM "})
	require.NoError(t, err)

	products, err := l.StoreProducts("AMPANG", "new")
	require.NoError(t, err)
	assert.Equal(t, []string{"NEW ITEM"}, products)
	assert.Equal(t, []model.EventType{model.EventStoreProductsAdded}, events.types())

	_, err = l.AddProductsToStore(admin, "NOWHERE", []string{"X"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLedger_StoreWritesFillNewProductAttributes(t *testing.T) {
	store := repository.NewMemoryStore()
	l, _ := newTestLedger(t, store)

	_, err := l.AddStore(admin, "NEW STORE", []string{"PRAN JUS 330ML GUAVA"})
	require.NoError(t, err)
	_, err = l.AddProductsToStore(admin, "AMPANG", []string{"MYSTERY SNACK"})
	require.NoError(t, err)

	prices, err := store.Get(string(repository.KindPrices))
	require.NoError(t, err)
	assert.Contains(t, string(prices), "MYSTERY SNACK")

	reloaded, _ := newTestLedger(t, store)
	for _, p := range []string{"PRAN JUS 330ML GUAVA", "MYSTERY SNACK"} {
		live, err := l.ProductDetails(p)
		require.NoError(t, err)
		fromDisk, err := reloaded.ProductDetails(p)
		require.NoError(t, err)

		assert.True(t, live.PriceIsStored, p)
		assert.Equal(t, fromDisk.Price.StringFixed(2), live.Price.StringFixed(2), p)
		assert.Equal(t, fromDisk.Category, live.Category, p)
		assert.Equal(t, fromDisk.StockQuantity, live.StockQuantity, p)
	}
	assert.Equal(t, "3.80", l.PriceOf("PRAN JUS 330ML GUAVA").StringFixed(2))
}

func TestLedger_DeleteProduct(t *testing.T) {
	l, _ := newTestLedger(t, repository.NewMemoryStore())
	_, err := l.SetStockQuantity(admin, "HUMPTY DUMPTY", 40)
	require.NoError(t, err)

	_, err = l.DeleteProduct(admin, "HUMPTY DUMPTY")
	require.NoError(t, err)

	assert.Empty(t, l.Locations("HUMPTY DUMPTY"))
	assert.Equal(t, 0, l.StockQuantity("HUMPTY DUMPTY"))
	assert.Equal(t, "2.00", l.PriceOf("HUMPTY DUMPTY").StringFixed(2))
	assert.NotContains(t, l.AllProducts(), "HUMPTY DUMPTY")

	_, err = l.DeleteProduct(admin, "HUMPTY DUMPTY")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLedger_MergeProducts(t *testing.T) {
	l, _ := newTestLedger(t, repository.NewMemoryStore())

	require.NoError(t, l.addTestStore("S1", "A", "B"))
	require.NoError(t, l.addTestStore("S2", "B", "C"))
	require.NoError(t, l.addTestStore("S3", "A"))
	_, err := l.UpdateProduct(admin, "B", model.ProductUpdate{NewName: "B", Price: dec("9.99"), Barcode: "B-CODE", Stores: []string{"S1", "S2"}, StockQuantity: 7})
	require.NoError(t, err)
	_, err = l.UpdateProduct(admin, "A", model.ProductUpdate{NewName: "A", Price: dec("1.00"), Stores: []string{"S1", "S3"}})
	require.NoError(t, err)

	_, err = l.MergeProducts(admin, "A", "A")
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = l.MergeProducts(admin, "A", "B")
	require.NoError(t, err)

	assert.Equal(t, []string{"S1", "S2", "S3"}, l.Locations("A"))
	assert.Empty(t, l.Locations("B"))
	s1, _ := l.StoreProducts("S1", "")
	assert.Equal(t, []string{"A"}, s1)
	s2, _ := l.StoreProducts("S2", "")
	assert.Equal(t, []string{"A", "C"}, s2, "keep takes the removed product's position")

	view, err := l.ProductDetails("A")
	require.NoError(t, err)
	assert.Equal(t, "1.00", view.Price.StringFixed(2), "keep's own price wins")
	assert.Equal(t, "B-CODE", view.Barcode, "remove's barcode fills the gap")
	assert.Equal(t, 0, view.StockQuantity)
	assert.NotContains(t, l.AllProducts(), "B")

	_, err = l.MergeProducts(admin, "A", "B")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLedger_UpdateProductRename(t *testing.T) {
	l, events := newTestLedger(t, repository.NewMemoryStore())

	_, err := l.UpdateProduct(admin, "HUMPTY DUMPTY", model.ProductUpdate{
		NewName:       "HUMPTY DUMPTY 20G",
		Price:         dec("2.20"),
		Supplier:      "drinko",
		Stores:        []string{"PERPADUAN"},
		StockQuantity: -4,
	})
	require.NoError(t, err)

	assert.Empty(t, l.Locations("HUMPTY DUMPTY"))
	assert.Equal(t, []string{"PERPADUAN"}, l.Locations("HUMPTY DUMPTY 20G"))
	view, err := l.ProductDetails("HUMPTY DUMPTY 20G")
	require.NoError(t, err)
	assert.Equal(t, "2.20", view.Price.StringFixed(2))
	assert.Equal(t, model.SupplierDrinko, view.Supplier)
	assert.Equal(t, model.CategoryConfectionery, view.Category)
	assert.Equal(t, 0, view.StockQuantity)
	assert.NotContains(t, l.AllProducts(), "HUMPTY DUMPTY")
	assert.Equal(t, []model.EventType{model.EventProductUpdated}, events.types())
}

func TestLedger_UpdateProductRejectsBadInput(t *testing.T) {
	l, _ := newTestLedger(t, repository.NewMemoryStore())

	_, err := l.UpdateProduct(admin, "HUMPTY DUMPTY", model.ProductUpdate{NewName: "PRAN VARIETY LOLLIPOP", Stores: []string{"AMPANG"}})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = l.UpdateProduct(admin, "HUMPTY DUMPTY", model.ProductUpdate{NewName: "HD", Stores: []string{"NOWHERE"}})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = l.UpdateProduct(admin, "HUMPTY DUMPTY", model.ProductUpdate{NewName: "HD", Price: dec("-1")})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = l.UpdateProduct(admin, "NO SUCH PRODUCT", model.ProductUpdate{NewName: "HD"})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Contains(t, l.Locations("HUMPTY DUMPTY"), "AMPANG")
	assert.NotContains(t, l.AllProducts(), "HD")
}

func TestLedger_PersistenceFailureIsReported(t *testing.T) {
	store := repository.NewMemoryStore()
	l, _ := newTestLedger(t, store)
	store.FailWrites = errors.New("disk full")

	outcome, err := l.AddStore(admin, "NEW STORE", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.True(t, Applied(err))
	assert.Equal(t, OutcomeApplied, outcome)

	_, err = l.StoreProducts("NEW STORE", "")
	assert.NoError(t, err, "the in-memory change stays")
}

func TestLedger_SearchAndStats(t *testing.T) {
	l, _ := newTestLedger(t, repository.NewMemoryStore())

	assert.Contains(t, l.SearchProducts("humpty", ""), "HUMPTY DUMPTY")
	assert.Empty(t, l.SearchProducts("humpty", model.CategoryJuice))
	for _, p := range l.SearchProducts("", model.CategoryConfectionery) {
		assert.Equal(t, model.CategoryConfectionery, l.CategoryOf(p))
	}

	stats := l.Stats()
	assert.Equal(t, 7, stats.TotalStores)
	assert.Equal(t, len(l.AllProducts()), stats.TotalProducts)
	assert.Equal(t, "BATU GAJAH", stats.MostStockedStore)
	assert.Equal(t, (36+24+14+38+23+22+18)/7, stats.AvgProductsPerStore)
	require.Len(t, stats.StoreRanking, 7)
	assert.Equal(t, "AMPANG", stats.StoreRanking[6].Name)
}

func TestLedger_StoreAddress(t *testing.T) {
	l, _ := newTestLedger(t, repository.NewMemoryStore())

	_, err := l.SetStoreAddress(admin, "AMPANG", " 12 Jalan Ampang ")
	require.NoError(t, err)
	assert.Equal(t, "12 Jalan Ampang", l.StoreAddress("AMPANG"))

	_, err = l.SetStoreAddress(admin, "NOWHERE", "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLedger_IsCarried(t *testing.T) {
	l, _ := newTestLedger(t, repository.NewMemoryStore())

	all := l.IsCarried("HUMPTY DUMPTY", "")
	assert.Len(t, all, 7)
	assert.True(t, all["AMPANG"])

	assert.Equal(t, map[string]bool{"NOWHERE": false}, l.IsCarried("HUMPTY DUMPTY", "NOWHERE"))
}

// addTestStore creates a store carrying the given products.
func (l *Ledger) addTestStore(name string, products ...string) error {
	_, err := l.AddStore(admin, name, products)
	return err
}
