package auth

import "schichtbuch-backend/internal/model"

// Capabilities is the set of privileged actions a user may perform. All role
// checks in the application go through CapabilitiesFor so that "who may
// confirm SAP bookings" is decided in exactly one place.
type Capabilities struct {
	// ProcessSpareParts allows confirming (and revoking) the SAP booking of
	// spare-part consumption on any entry.
	ProcessSpareParts bool
	// ViewAllSpareParts allows seeing spare-part data on entries the user
	// neither created nor contributed to.
	ViewAllSpareParts bool
	// ManageMachines allows creating and editing the machine catalog.
	ManageMachines bool
}

// CapabilitiesFor derives the capability set from a user's role.
func CapabilitiesFor(role model.Role) Capabilities {
	switch role {
	case model.RoleAdmin:
		return Capabilities{
			ProcessSpareParts: true,
			ViewAllSpareParts: true,
			ManageMachines:    true,
		}
	case model.RoleSupervisor:
		return Capabilities{
			ProcessSpareParts: true,
			ViewAllSpareParts: true,
		}
	default:
		return Capabilities{}
	}
}
