package model

// Roles this service authenticates. They double as the directory names of
// the credential tables under <dataDir>/users/.
const (
	RoleClient = "client"
	RoleSeller = "seller"
)

// User is one row of a role's credential CSV. The table is provisioned out
// of band and read-only to this service.
//
// Fields:
//  Username     – exact-match login name, unique within the role.
//  PasswordHash – bcrypt hash of the password.
//  StoreName    – for sellers, the store the account operates; empty for
//                 clients and for sellers without an assignment.
type User struct {
	Username     string
	PasswordHash string
	StoreName    string
}
