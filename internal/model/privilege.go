package model

// Privilege names one gated operation, e.g. "product:create".
type Privilege string

const (
	// Catalog
	PrivProductCreate Privilege = "product:create"
	PrivProductUpdate Privilege = "product:update"
	PrivProductDelete Privilege = "product:delete"
	PrivProductMerge  Privilege = "product:merge"
	PrivStockUpdate   Privilege = "stock:update"
	PrivStoreCreate   Privilege = "store:create"
	PrivStoreUpdate   Privilege = "store:update"

	// Change requests
	PrivChangeRequest Privilege = "change:request"
	PrivChangeResolve Privilege = "change:resolve"

	// Purchase orders
	PrivOrderCreate Privilege = "order:create"
	PrivOrderDelete Privilege = "order:delete"

	// Accounts
	PrivUserCreate  Privilege = "user:create"
	PrivUserApprove Privilege = "user:approve"
	PrivUserDelete  Privilege = "user:delete"
)

// AllPrivileges lists every privilege known to the system.
var AllPrivileges = []Privilege{
	PrivProductCreate, PrivProductUpdate, PrivProductDelete, PrivProductMerge,
	PrivStockUpdate, PrivStoreCreate, PrivStoreUpdate,
	PrivChangeRequest, PrivChangeResolve,
	PrivOrderCreate, PrivOrderDelete,
	PrivUserCreate, PrivUserApprove, PrivUserDelete,
}

// rolePrivileges: admin holds everything, a regular user may only build
// purchase orders and propose catalog changes.
var rolePrivileges = map[Role][]Privilege{
	RoleAdmin: AllPrivileges,
	RoleUser:  {PrivChangeRequest, PrivOrderCreate},
}
