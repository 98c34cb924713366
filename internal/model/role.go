package model

// Role is the access level attached to an account.
type Role string

// Role codes as constants
const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Actor identifies who is calling a catalog or account operation.
type Actor struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// SystemActor is used for writes that originate from the process itself
// (seeding, maintenance commands).
var SystemActor = Actor{Username: "system", Role: RoleAdmin}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Can checks if the actor's role grants the privilege.
func (a Actor) Can(p Privilege) bool {
	for _, granted := range rolePrivileges[a.Role] {
		if granted == p {
			return true
		}
	}
	return false
}
