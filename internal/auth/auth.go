package auth

// Staff roles. Admins manage configuration; sales staff work leads and
// report downloads.
const (
	RoleAdmin = "admin"
	RoleSales = "sales"
)
