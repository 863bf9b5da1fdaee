package customer

import (
	"customer-service/internal/pkg/apperrors"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Principal is the authenticated identity making a request, bound to one
// customer id and carrying a role set.
type Principal struct {
	CustomerID int64
	Roles      []string
}

func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type Operation string

const (
	OpList   Operation = "list"
	OpGet    Operation = "get"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Authorize decides whether the principal may perform op on the customer
// owning ownerID. List and Create are open to any authenticated principal,
// Get is owner-or-admin, Update and Delete are admin-only. It returns an
// access-denied error on deny, nil on allow.
func Authorize(p Principal, op Operation, ownerID int64) error {
	switch op {
	case OpList, OpCreate:
		return nil
	case OpGet:
		if p.CustomerID == ownerID || p.HasRole(RoleAdmin) {
			return nil
		}
	case OpUpdate, OpDelete:
		if p.HasRole(RoleAdmin) {
			return nil
		}
	}
	return apperrors.NewAccessDenied()
}
