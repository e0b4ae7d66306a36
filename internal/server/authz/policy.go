// Package authz contains the authorization policy: a pure decision function
// mapping (actor, action, target) to allow or deny. It holds no state and
// never fails; denial is an ordinary outcome, not an error.
package authz

import (
	"github.com/mzarins/invsync/internal/server/inventory"
	"github.com/mzarins/invsync/internal/server/users"
)

// Action enumerates the operations the policy decides on.
type Action string

const (
	ActionCreateInventory  Action = "createInventory"
	ActionListAllInventory Action = "listAllInventory"
	ActionReadInventory    Action = "readInventory"
	ActionUpdateInventory  Action = "updateInventory"
	ActionDeleteInventory  Action = "deleteInventory"
	ActionManageUsers      Action = "manageUsers"
	ActionExportReports    Action = "exportReports"
)

// CanPerform reports whether actor may perform action. For ReadInventory and
// UpdateInventory the decision depends on the target record; a nil target is
// denied for client actors since ownership cannot be established.
//
// Rules, in precedence order:
//   - create/listAll: staff or admin
//   - delete/manageUsers: admin only
//   - read(target): staff or admin, or a client the target is assigned to
//   - update(target): staff or admin, or an assigned client with read_write
//
// Anything else is denied, including unknown roles and a nil actor.
func CanPerform(actor *users.User, action Action, target *inventory.Record) bool {
	if actor == nil {
		return false
	}

	isStaffOrAdmin := actor.Role == users.RoleStaff || actor.Role == users.RoleAdmin

	switch action {
	case ActionCreateInventory, ActionListAllInventory:
		return isStaffOrAdmin

	case ActionDeleteInventory, ActionManageUsers, ActionExportReports:
		return actor.Role == users.RoleAdmin

	case ActionReadInventory:
		if isStaffOrAdmin {
			return true
		}
		return actor.Role == users.RoleClient && isAssignedTo(target, actor.ID)

	case ActionUpdateInventory:
		if isStaffOrAdmin {
			return true
		}
		return actor.Role == users.RoleClient &&
			isAssignedTo(target, actor.ID) &&
			actor.Permissions == users.PermissionReadWrite
	}

	return false
}

func isAssignedTo(target *inventory.Record, userID int64) bool {
	return target != nil && target.AssignedTo != nil && *target.AssignedTo == userID
}
