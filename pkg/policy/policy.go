// Package policy is the single place that decides what a role may do.
package policy

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Capability names an action guarded by role.
type Capability string

const (
	Shop            Capability = "shop"
	ManageCatalog   Capability = "catalog:manage"
	ManageCoupons   Capability = "coupons:manage"
	ManageOrders    Capability = "orders:manage"
	ManageUsers     Capability = "users:manage"
	ModerateReviews Capability = "reviews:moderate"
	ViewStats       Capability = "stats:view"
)

var grants = map[Role]map[Capability]bool{
	RoleUser: {
		Shop: true,
	},
	RoleAdmin: {
		Shop:            true,
		ManageCatalog:   true,
		ManageCoupons:   true,
		ManageOrders:    true,
		ManageUsers:     true,
		ModerateReviews: true,
		ViewStats:       true,
	},
}

// Can reports whether role holds capability. Unknown roles hold nothing.
func Can(role string, c Capability) bool {
	return grants[Role(role)][c]
}

// IsAdmin is shorthand for the response flag clients use.
func IsAdmin(role string) bool {
	return Role(role) == RoleAdmin
}

// ValidRole reports whether role is assignable.
func ValidRole(role string) bool {
	_, ok := grants[Role(role)]
	return ok
}

// CanActOnOwned allows the owner of a resource, or anyone holding c.
func CanActOnOwned(actorID, ownerID, role string, c Capability) bool {
	return (actorID != "" && actorID == ownerID) || Can(role, c)
}
