package execution

import (
	"fmt"

	"github.com/kaitori/dispatch-go/internal/domain/shared"
	"github.com/kaitori/dispatch-go/internal/domain/staff"
)

// CanUpdateRoute is the capability check for route and stop mutations:
// a buyer may update only their own route; supervisors and admins may
// update any route.
func CanUpdateRoute(actor *staff.Staff, routeStaffID int) bool {
	switch actor.Role {
	case staff.RoleSupervisor, staff.RoleAdmin:
		return true
	case staff.RoleBuyer:
		return actor.StaffID == routeStaffID
	default:
		return false
	}
}

// AuthorizeRouteUpdate returns a ForbiddenError when the actor may not
// mutate the route.
func AuthorizeRouteUpdate(actor *staff.Staff, routeID, routeStaffID int) error {
	if CanUpdateRoute(actor, routeStaffID) {
		return nil
	}
	return shared.NewForbiddenError(actor.StaffID,
		fmt.Sprintf("staff %d may not update route %d", actor.StaffID, routeID))
}
