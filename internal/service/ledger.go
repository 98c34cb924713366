package service

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// CatalogService is the catalog and purchase-order surface used by handlers.
type CatalogService interface {
	// Queries
	IsCarried(product, store string) map[string]bool
	Locations(product string) []string
	StockCount(product string) int
	StockQuantity(product string) int
	PriceOf(product string) decimal.Decimal
	CategoryOf(product string) model.Category
	EstimatePrice(product string) decimal.Decimal
	Categorize(product string) model.Category
	AllProducts() []string
	SearchProducts(query string, category model.Category) []string
	ProductDetails(product string) (*model.ProductView, error)
	Stores() []model.StoreSummary
	StoreProducts(store, query string) ([]string, error)
	StoreAddress(store string) string
	Stats() model.CatalogStats

	// Catalog writes
	AddProduct(actor model.Actor, in model.ProductInput) (Outcome, error)
	AddStore(actor model.Actor, name string, initialProducts []string) (Outcome, error)
	AddProductsToStore(actor model.Actor, store string, products []string) (Outcome, error)
	DeleteProduct(actor model.Actor, name string) (Outcome, error)
	MergeProducts(actor model.Actor, keep, remove string) (Outcome, error)
	UpdateProduct(actor model.Actor, oldName string, upd model.ProductUpdate) (Outcome, error)
	SetStockQuantity(actor model.Actor, product string, qty int) (Outcome, error)
	SetStoreAddress(actor model.Actor, store, address string) (Outcome, error)

	// Change requests
	PendingChanges() []model.ChangeRequest
	ApproveChange(actor model.Actor, id string) (Outcome, error)
	RejectChange(actor model.Actor, id string) (Outcome, error)

	// Purchase orders
	Draft(actor model.Actor) model.Draft
	AddDraftLine(actor model.Actor, in LineInput) (model.Draft, error)
	UpdateDraftLine(actor model.Actor, in LineInput) (model.Draft, error)
	RemoveDraftLine(actor model.Actor, product string) (model.Draft, error)
	ClearDraft(actor model.Actor) error
	SubmitDraft(actor model.Actor, header model.OrderHeader) (model.PurchaseOrder, error)
	SavePurchaseOrder(actor model.Actor, po model.PurchaseOrder) (model.PurchaseOrder, error)
	DeletePurchaseOrder(actor model.Actor, id string) (Outcome, error)
	PurchaseOrders() []model.PurchaseOrder
	PurchaseOrder(id string) (model.PurchaseOrder, error)
}

var _ CatalogService = (*Ledger)(nil)

// EventPublisher receives a notification for every applied change.
type EventPublisher interface {
	Publish(event model.Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(model.Event) {}

type LedgerConfig struct {
	// CompanyName is printed on purchase orders that do not name one.
	CompanyName string
	// DefaultStockQuantity is assigned to products with no recorded quantity.
	DefaultStockQuantity int
	Now                  func() time.Time
}

// Ledger owns the store/product membership relation, every per-product
// attribute, purchase orders and the pending-change queue. All state lives
// in memory and each write goes straight through to the repository.
type Ledger struct {
	mu     sync.Mutex
	repo   repository.CatalogRepository
	events EventPublisher
	cfg    LedgerConfig
	log    *logrus.Entry

	data     *repository.CatalogData
	products map[string]struct{}
	drafts   map[string]*model.Draft // per username, never persisted
}

// NewLedger loads the catalog and backfills missing prices, categories and
// stock quantities. A document that exists but cannot be decoded is an error:
// writing through over it would destroy the data.
func NewLedger(repo repository.CatalogRepository, events EventPublisher, cfg LedgerConfig) (*Ledger, error) {
	if events == nil {
		events = nopPublisher{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	data, seeded, err := repo.Load()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	l := &Ledger{
		repo:     repo,
		events:   events,
		cfg:      cfg,
		log:      logrus.WithField("component", "ledger"),
		data:     data,
		products: make(map[string]struct{}),
		drafts:   make(map[string]*model.Draft),
	}
	l.rebuildProducts()

	touched := l.backfill()
	if seeded {
		l.log.WithField("stores", len(data.Stores)).Info("No stored catalog found, using seed catalog")
		touched = append(touched, repository.KindStores)
	}
	if len(touched) > 0 {
		// failure is already logged; the ledger still serves from memory
		_ = l.persist(touched...)
	}
	return l, nil
}

// rebuildProducts derives the global product set from membership and every
// attribute map.
func (l *Ledger) rebuildProducts() {
	for _, products := range l.data.Stores {
		for _, p := range products {
			l.products[p] = struct{}{}
		}
	}
	for p := range l.data.Prices {
		l.products[p] = struct{}{}
	}
	for p := range l.data.Categories {
		l.products[p] = struct{}{}
	}
	for p := range l.data.Suppliers {
		l.products[p] = struct{}{}
	}
	for p := range l.data.StockQuantities {
		l.products[p] = struct{}{}
	}
	for p := range l.data.Barcodes {
		l.products[p] = struct{}{}
	}
}

func (l *Ledger) backfill() []repository.Kind {
	var touched []repository.Kind
	for p := range l.products {
		touched = append(touched, l.fillDefaults(p)...)
	}
	return uniqueKinds(touched)
}

// fillDefaults gives a product its estimated price, derived category and the
// default stock level where those are missing, and returns the kinds written.
func (l *Ledger) fillDefaults(product string) []repository.Kind {
	var touched []repository.Kind
	if _, ok := l.data.Prices[product]; !ok {
		l.data.Prices[product] = EstimatePrice(product)
		touched = append(touched, repository.KindPrices)
	}
	if c, ok := l.data.Categories[product]; !ok || !c.Valid() {
		l.data.Categories[product] = Categorize(product)
		touched = append(touched, repository.KindCategories)
	}
	if _, ok := l.data.StockQuantities[product]; !ok {
		l.data.StockQuantities[product] = l.cfg.DefaultStockQuantity
		touched = append(touched, repository.KindStockQuantities)
	}
	return touched
}

// introduce adds product to the known set with default attributes.
func (l *Ledger) introduce(product string) []repository.Kind {
	l.products[product] = struct{}{}
	return l.fillDefaults(product)
}

// persist writes the given documents. Callers hold l.mu.
func (l *Ledger) persist(kinds ...repository.Kind) error {
	if len(kinds) == 0 {
		return nil
	}
	if err := l.repo.Save(l.data, uniqueKinds(kinds)...); err != nil {
		l.log.WithError(err).WithField("kinds", kinds).Warn("Failed to persist catalog documents")
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// mutate is the single write path: it checks the privilege, runs fn under the
// lock and writes through the documents fn reports as changed.
func (l *Ledger) mutate(actor model.Actor, priv model.Privilege, fn func() ([]repository.Kind, error)) error {
	if err := authorize(actor, priv); err != nil {
		l.log.WithFields(logrus.Fields{"actor": actor.Username, "privilege": priv}).Info("Declined write")
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	kinds, err := fn()
	if err != nil {
		return err
	}
	return l.persist(kinds...)
}

func authorize(actor model.Actor, priv model.Privilege) error {
	if !actor.Can(priv) {
		return fmt.Errorf("%w: '%s' requires the %s privilege", ErrForbidden, actor.Username, priv)
	}
	return nil
}

func (l *Ledger) publish(actor model.Actor, typ model.EventType, subject, message string) {
	l.log.WithFields(logrus.Fields{
		"event":   typ,
		"actor":   actor.Username,
		"subject": subject,
	}).Info(message)
	l.events.Publish(model.Event{
		Type:    typ,
		Actor:   actor.Username,
		Subject: subject,
		Message: message,
		At:      l.cfg.Now(),
	})
}

func (l *Ledger) known(product string) bool {
	_, ok := l.products[product]
	return ok
}

func (l *Ledger) storeExists(store string) bool {
	_, ok := l.data.Stores[store]
	return ok
}

// addMember adds product to store unless already carried.
func (l *Ledger) addMember(store, product string) bool {
	if indexOf(l.data.Stores[store], product) >= 0 {
		return false
	}
	l.data.Stores[store] = append(l.data.Stores[store], product)
	return true
}

func (l *Ledger) removeMember(store, product string) bool {
	products := l.data.Stores[store]
	i := indexOf(products, product)
	if i < 0 {
		return false
	}
	l.data.Stores[store] = append(products[:i], products[i+1:]...)
	return true
}

// ---- queries ----

// IsCarried reports presence per store, or for the single named store.
// An unknown store yields false.
func (l *Ledger) IsCarried(product, store string) map[string]bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	result := make(map[string]bool)
	if store != "" {
		result[store] = indexOf(l.data.Stores[store], product) >= 0
		return result
	}
	for name, products := range l.data.Stores {
		result[name] = indexOf(products, product) >= 0
	}
	return result
}

// Locations lists the stores carrying product, sorted by name.
func (l *Ledger) Locations(product string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.locations(product)
}

func (l *Ledger) locations(product string) []string {
	locations := []string{}
	for store, products := range l.data.Stores {
		if indexOf(products, product) >= 0 {
			locations = append(locations, store)
		}
	}
	sort.Strings(locations)
	return locations
}

func (l *Ledger) StockCount(product string) int {
	return len(l.Locations(product))
}

func (l *Ledger) StockQuantity(product string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.data.StockQuantities[product]
}

// PriceOf returns the stored price, or the estimate when none is stored.
func (l *Ledger) PriceOf(product string) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.priceOf(product)
}

func (l *Ledger) priceOf(product string) decimal.Decimal {
	if p, ok := l.data.Prices[product]; ok {
		return p
	}
	return EstimatePrice(product)
}

func (l *Ledger) CategoryOf(product string) model.Category {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.categoryOf(product)
}

func (l *Ledger) categoryOf(product string) model.Category {
	if c, ok := l.data.Categories[product]; ok {
		return c
	}
	return Categorize(product)
}

func (l *Ledger) EstimatePrice(product string) decimal.Decimal {
	return EstimatePrice(product)
}

func (l *Ledger) Categorize(product string) model.Category {
	return Categorize(product)
}

// AllProducts returns every known product name, sorted.
func (l *Ledger) AllProducts() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.allProducts()
}

func (l *Ledger) allProducts() []string {
	all := make([]string, 0, len(l.products))
	for p := range l.products {
		all = append(all, p)
	}
	sort.Strings(all)
	return all
}

// SearchProducts filters all products by a case-insensitive substring and,
// when category is set, by category.
func (l *Ledger) SearchProducts(query string, category model.Category) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	matches := []string{}
	for _, p := range l.allProducts() {
		if !matchesQuery(p, query) {
			continue
		}
		if category != "" && l.categoryOf(p) != category {
			continue
		}
		matches = append(matches, p)
	}
	return matches
}

func (l *Ledger) ProductDetails(product string) (*model.ProductView, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.known(product) {
		return nil, fmt.Errorf("%w: product '%s' does not exist", ErrNotFound, product)
	}
	_, stored := l.data.Prices[product]
	locations := l.locations(product)
	return &model.ProductView{
		Name:          product,
		Price:         l.priceOf(product),
		PriceIsStored: stored,
		Barcode:       l.data.Barcodes[product],
		Supplier:      l.data.Suppliers[product],
		Category:      l.categoryOf(product),
		StockQuantity: l.data.StockQuantities[product],
		Locations:     locations,
		StoreCount:    len(locations),
	}, nil
}

// Stores lists every branch, sorted by name.
func (l *Ledger) Stores() []model.StoreSummary {
	l.mu.Lock()
	defer l.mu.Unlock()

	stores := make([]model.StoreSummary, 0, len(l.data.Stores))
	for name, products := range l.data.Stores {
		stores = append(stores, model.StoreSummary{
			Name:         name,
			Address:      l.data.StoreAddresses[name],
			ProductCount: len(products),
		})
	}
	sort.Slice(stores, func(i, j int) bool { return stores[i].Name < stores[j].Name })
	return stores
}

// StoreProducts lists what a store carries, in the order it was added,
// optionally filtered by a case-insensitive substring.
func (l *Ledger) StoreProducts(store, query string) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	products, ok := l.data.Stores[store]
	if !ok {
		return nil, fmt.Errorf("%w: store '%s' does not exist", ErrNotFound, store)
	}
	matches := []string{}
	for _, p := range products {
		if matchesQuery(p, query) {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

func (l *Ledger) StoreAddress(store string) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.data.StoreAddresses[store]
}

// Stats summarizes the catalog for the dashboard.
func (l *Ledger) Stats() model.CatalogStats {
	l.mu.Lock()
	defer l.mu.Unlock()

	stats := model.CatalogStats{
		TotalStores:         len(l.data.Stores),
		TotalProducts:       len(l.products),
		PendingChangeCount:  len(l.data.PendingChanges),
		SavedPurchaseOrders: len(l.data.PurchaseOrders),
		StoreRanking:        []model.StoreSummary{},
	}

	total := 0
	for name, products := range l.data.Stores {
		total += len(products)
		stats.StoreRanking = append(stats.StoreRanking, model.StoreSummary{
			Name:         name,
			Address:      l.data.StoreAddresses[name],
			ProductCount: len(products),
		})
	}
	sort.Slice(stats.StoreRanking, func(i, j int) bool {
		a, b := stats.StoreRanking[i], stats.StoreRanking[j]
		if a.ProductCount != b.ProductCount {
			return a.ProductCount > b.ProductCount
		}
		return a.Name < b.Name
	})
	if len(stats.StoreRanking) > 0 {
		stats.AvgProductsPerStore = total / len(stats.StoreRanking)
		stats.MostStockedStore = stats.StoreRanking[0].Name
	}
	return stats
}

// ---- helpers ----

func indexOf(list []string, v string) int {
	for i, item := range list {
		if item == v {
			return i
		}
	}
	return -1
}

func matchesQuery(name, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(query))
}

func uniqueKinds(kinds []repository.Kind) []repository.Kind {
	seen := make(map[repository.Kind]bool, len(kinds))
	out := make([]repository.Kind, 0, len(kinds))
	for _, k := range kinds {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

// cleanNames trims, drops blanks and de-duplicates while keeping order.
func cleanNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n != "" && indexOf(out, n) < 0 {
			out = append(out, n)
		}
	}
	return out
}

// moveKey re-keys m[from] to m[to]. An existing m[to] is kept unless overwrite.
// m[from] is removed either way.
func moveKey[V any](m map[string]V, from, to string, overwrite bool) {
	v, ok := m[from]
	if !ok {
		return
	}
	delete(m, from)
	if _, exists := m[to]; exists && !overwrite {
		return
	}
	m[to] = v
}
