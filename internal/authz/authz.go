// Package authz is the single place where roles and ownership are compared.
package authz

import (
	"github.com/google/uuid"

	"github.com/Devvfong/inventory-management/pkg/enums"
	pkgerrors "github.com/Devvfong/inventory-management/pkg/errors"
)

// Principal is the authenticated caller. Synthetic principals stand in for
// anonymous callers when auth enforcement is switched off; they have no user row.
type Principal struct {
	UserID     uuid.UUID
	Email      string
	Role       enums.UserRole
	SupplierID *uuid.UUID
	SessionID  string
	Synthetic  bool
}

// ActorID returns the user id to record as the author of a write, or nil
// for synthetic principals.
func (p *Principal) ActorID() *uuid.UUID {
	if p == nil || p.Synthetic || p.UserID == uuid.Nil {
		return nil
	}
	id := p.UserID
	return &id
}

// IsAdmin reports whether p carries the ADMIN role.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == enums.UserRoleAdmin
}

type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionManage Action = "manage"
)

// Kind names the resource family; it only feeds error details.
type Kind string

const (
	KindProduct       Kind = "product"
	KindSupplier      Kind = "supplier"
	KindPurchaseOrder Kind = "purchase_order"
	KindTransaction   Kind = "transaction"
	KindWarehouse     Kind = "warehouse"
)

// Resource is the target of an action. OwnerSupplierID is nil for resources
// no supplier owns (warehouses, admin-only collections).
type Resource struct {
	Kind            Kind
	OwnerSupplierID *uuid.UUID
}

// Owned builds a resource owned by supplierID.
func Owned(kind Kind, supplierID uuid.UUID) Resource {
	return Resource{Kind: kind, OwnerSupplierID: &supplierID}
}

// Unowned builds a resource that only admins may act on.
func Unowned(kind Kind) Resource {
	return Resource{Kind: kind}
}

// Authorize allows or denies p performing action on res. Denials are typed
// errors: UNAUTHORIZED without an identity, FORBIDDEN otherwise.
func Authorize(p *Principal, action Action, res Resource) error {
	if p == nil || p.UserID == uuid.Nil || p.Role == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "unauthenticated")
	}

	switch p.Role {
	case enums.UserRoleAdmin:
		return nil
	case enums.UserRoleSupplier:
		if p.SupplierID != nil && res.OwnerSupplierID != nil && *p.SupplierID == *res.OwnerSupplierID {
			return nil
		}
		return denied(action, res)
	default:
		return denied(action, res)
	}
}

// RequireAdmin is Authorize against a resource no supplier can own.
func RequireAdmin(p *Principal, kind Kind) error {
	return Authorize(p, ActionManage, Unowned(kind))
}

// RequireAuthenticated only checks that a usable identity is present.
func RequireAuthenticated(p *Principal) error {
	if p == nil || p.UserID == uuid.Nil || !p.Role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "unauthenticated")
	}
	if p.Role == enums.UserRoleSupplier && p.SupplierID == nil {
		return pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
	}
	return nil
}

// ScopeSupplier returns the supplier filter list queries must apply: nil for
// admins, the caller's supplier id for suppliers. Callers must have passed
// RequireAuthenticated first.
func ScopeSupplier(p *Principal) *uuid.UUID {
	if p == nil || p.IsAdmin() {
		return nil
	}
	if p.SupplierID == nil {
		nobody := uuid.Nil
		return &nobody
	}
	id := *p.SupplierID
	return &id
}

// ResolveListSupplier merges an optional requested supplier filter with the
// caller's scope. Suppliers asking for someone else's rows are denied.
func ResolveListSupplier(p *Principal, kind Kind, requested *uuid.UUID) (*uuid.UUID, error) {
	if err := RequireAuthenticated(p); err != nil {
		return nil, err
	}
	scope := ScopeSupplier(p)
	if scope == nil {
		return requested, nil
	}
	if requested != nil && *requested != *scope {
		return nil, denied(ActionRead, Owned(kind, *requested))
	}
	return scope, nil
}

func denied(action Action, res Resource) error {
	return pkgerrors.New(pkgerrors.CodeForbidden, "access denied").
		WithDetails(map[string]any{"action": string(action), "resource": string(res.Kind)})
}
