package notifications

import "github.com/AliAliAhmad/inspection-system-sub003/internal/registry"

// routing lists the roles broadcast for each event type in addition to the
// event's direct recipients. Rosters are read fresh on every event.
var routing = map[EventType][]registry.Role{
	EngineerReviewRequired: {registry.RoleEngineer},
	AdminReviewRequired:    {registry.RoleAdmin},
	EquipmentStopped:       {registry.RoleAdmin},
	FollowupPending:        {registry.RoleEngineer},
	FollowupOverdue:        {registry.RoleEngineer, registry.RoleAdmin},
}

// Roles returns the broadcast roles for t.
func Roles(t EventType) []registry.Role {
	return routing[t]
}
