package users

// Role classifies an account's capabilities.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleStaff  Role = "staff"
	RoleClient Role = "client"
)

// Permissions refine what a client-role account may do with records assigned
// to it. The value is meaningless for staff and admin accounts.
type Permissions string

const (
	PermissionReadOnly  Permissions = "read_only"
	PermissionReadWrite Permissions = "read_write"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	return r == RoleAdmin || r == RoleStaff || r == RoleClient
}

// User is a server-side account. PasswordHash is opaque to everything except
// the auth package.
type User struct {
	ID           int64
	Username     string
	Name         string
	PasswordHash string
	Role         Role

	// Permissions is empty for non-client roles.
	Permissions Permissions
}
