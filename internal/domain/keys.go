package domain

type CtxKey string

const (
	KeyUserID    CtxKey = "UserID"
	KeyUserEmail CtxKey = "Email"
	KeyUserRole  CtxKey = "Role"
	KeyRequestID CtxKey = "RequestID"
)

// Back-office roles.
const (
	RoleTA      = "ta"
	RoleHR      = "hr"
	RoleSales   = "sales"
	RoleManager = "manager"
)

// CanManageCVs reports whether role may create, activate or delete CVs and apply CV analysis.
func CanManageCVs(role string) bool {
	return role == RoleTA || role == RoleHR
}

// IsKnownRole reports whether role is one of the back-office roles.
func IsKnownRole(role string) bool {
	switch role {
	case RoleTA, RoleHR, RoleSales, RoleManager:
		return true
	}
	return false
}
