// Package policy decides whether a principal may perform an operation.
package policy

import (
	"catapi/internal/auth"
	"catapi/internal/errors"
	"catapi/internal/model"
)

// Operation is the authorization tier required by a handler.
type Operation int

const (
	// OpPublic needs no principal.
	OpPublic Operation = iota
	// OpSelf needs a principal acting on its own resources.
	OpSelf
	// OpAdmin needs a principal with the admin role.
	OpAdmin
)

const (
	MsgTokenNotValid = "token not valid"
	MsgNotAdmin      = "You are not admin"
	MsgNotOwner      = "You are not the owner"
)

// CanAct returns nil when principal may perform op. ownerID names the owner of
// the addressed resource for self operations; pass "" when the query is
// already scoped to the principal.
func CanAct(principal *auth.Principal, op Operation, ownerID string) error {
	if op == OpPublic {
		return nil
	}
	if principal == nil || principal.ID == "" {
		return errors.Unauthenticated(MsgTokenNotValid)
	}

	switch op {
	case OpSelf:
		if ownerID != "" && ownerID != principal.ID {
			return errors.Forbidden(MsgNotOwner)
		}
		return nil
	case OpAdmin:
		if isAdmin(principal.Role) {
			return nil
		}
		return errors.Forbidden(MsgNotAdmin)
	default:
		return errors.Forbidden(MsgNotAdmin)
	}
}

func isAdmin(r model.Role) bool {
	switch r {
	case model.RoleAdmin:
		return true
	case model.RoleUser:
		return false
	default:
		return false
	}
}
