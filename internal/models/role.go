package models

// Role is the closed set of account roles stored in users.role_id.
type Role int

const (
	RoleClient   Role = 1
	RoleMechanic Role = 2
	RoleAdmin    Role = 3
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleMechanic, RoleAdmin:
		return true
	}
	return false
}

// String returns the role label used in logs.
func (r Role) String() string {
	switch r {
	case RoleClient:
		return "client"
	case RoleMechanic:
		return "mechanic"
	case RoleAdmin:
		return "admin"
	}
	return "unknown"
}

// IsStaff is true for mechanics and admins.
func (r Role) IsStaff() bool {
	return r == RoleMechanic || r == RoleAdmin
}

// Can reports whether the role holds the capability.
func (r Role) Can(c Capability) bool {
	caps, ok := Capabilities[r]
	if !ok {
		return false
	}
	_, ok = caps[c]
	return ok
}

// Capability names a single action a role may perform.
type Capability string

const (
	CapVehicleRead   Capability = "vehicle:read"
	CapVehicleWrite  Capability = "vehicle:write"
	CapVehicleDelete Capability = "vehicle:delete"

	CapRepairRead          Capability = "repair:read"
	CapRepairWrite         Capability = "repair:write"
	CapRepairDelete        Capability = "repair:delete"
	CapRepairQuoteDecision Capability = "repair:quote_decision"
	CapUpcomingMaintenance Capability = "repair:upcoming_maintenance"

	CapServiceRead   Capability = "service:read"
	CapServiceWrite  Capability = "service:write"
	CapServiceDelete Capability = "service:delete"

	CapSparePartRead     Capability = "spare_part:read"
	CapSparePartInactive Capability = "spare_part:read_inactive"
	CapSparePartWrite    Capability = "spare_part:write"
	CapSparePartDelete   Capability = "spare_part:delete"

	CapCategoryRead  Capability = "category:read"
	CapCategoryWrite Capability = "category:write"

	CapInvoiceRead   Capability = "invoice:read"
	CapInvoiceCreate Capability = "invoice:create"
	CapInvoiceExport Capability = "invoice:export"

	CapUserSelf   Capability = "user:self"
	CapUserManage Capability = "user:manage"

	// CapReadAll lifts ownership filters on reads.
	CapReadAll Capability = "resource:read_all"
	// CapActForOthers lifts ownership checks on quote decisions and invoicing.
	CapActForOthers Capability = "resource:act_for_others"
)

func capSet(caps ...Capability) map[Capability]struct{} {
	set := make(map[Capability]struct{}, len(caps))
	for _, c := range caps {
		set[c] = struct{}{}
	}
	return set
}

var staffCaps = []Capability{
	CapVehicleRead, CapVehicleWrite, CapVehicleDelete,
	CapRepairRead, CapRepairWrite, CapRepairDelete,
	CapServiceRead, CapServiceWrite, CapServiceDelete,
	CapSparePartRead, CapSparePartWrite,
	CapCategoryRead,
	CapInvoiceRead, CapInvoiceCreate, CapInvoiceExport,
	CapUserSelf,
	CapReadAll,
}

// Capabilities is the static role to capability table.
var Capabilities = map[Role]map[Capability]struct{}{
	RoleClient: capSet(
		CapVehicleRead,
		CapRepairRead, CapRepairQuoteDecision, CapUpcomingMaintenance,
		CapServiceRead,
		CapSparePartRead,
		CapCategoryRead,
		CapInvoiceRead,
		CapUserSelf,
	),
	RoleMechanic: capSet(staffCaps...),
	RoleAdmin: capSet(append(append([]Capability{}, staffCaps...),
		CapRepairQuoteDecision,
		CapSparePartInactive, CapSparePartDelete,
		CapCategoryWrite,
		CapUserManage,
		CapActForOthers,
	)...),
}
