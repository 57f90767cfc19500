package newsroom

// Capability is a named permission checked against a role. Checks go through
// the role evaluator so role semantics live in one place.
type Capability string

const (
	// CapabilityViewOwnDashboard grants access to the member dashboard
	CapabilityViewOwnDashboard Capability = "view-own-dashboard"
	// CapabilityAuthorContent grants authoring of own content items
	CapabilityAuthorContent Capability = "author-content"
	// CapabilityEditAnyContent grants editing of any content item
	CapabilityEditAnyContent Capability = "edit-any-content"
	// CapabilityAdministerSite grants site administration
	CapabilityAdministerSite Capability = "administer-site"
)

// roleLevels orders the hierarchy; each role implies every capability of the
// roles below it.
var roleLevels = map[Role]int{
	RoleReader: 0,
	RoleWriter: 1,
	RoleEditor: 2,
	RoleAdmin:  3,
}

// capabilityFloor maps each capability to the minimum role that grants it.
var capabilityFloor = map[Capability]Role{
	CapabilityViewOwnDashboard: RoleReader,
	CapabilityAuthorContent:    RoleWriter,
	CapabilityEditAnyContent:   RoleEditor,
	CapabilityAdministerSite:   RoleAdmin,
}

// IsValid checks if the role is one of the predefined valid roles
func (r Role) IsValid() bool {
	_, ok := roleLevels[r]
	return ok
}

// Can reports whether the role grants the capability. Unknown roles and
// unknown capabilities deny. Pure, no I/O.
func (r Role) Can(c Capability) bool {
	level, ok := roleLevels[r]
	if !ok {
		return false
	}

	floor, ok := capabilityFloor[c]
	if !ok {
		return false
	}

	return level >= roleLevels[floor]
}

// IsAtLeast checks if this role meets the minimum required level
func (r Role) IsAtLeast(minRole Role) bool {
	currentLevel, exists := roleLevels[r]
	if !exists {
		return false
	}

	minLevel, exists := roleLevels[minRole]
	if !exists {
		return false
	}

	return currentLevel >= minLevel
}

// Capabilities returns every capability the role grants, in floor order.
func (r Role) Capabilities() []Capability {
	var out []Capability
	for _, c := range AllCapabilities() {
		if r.Can(c) {
			out = append(out, c)
		}
	}
	return out
}

// AllRoles returns all predefined roles in hierarchical order
func AllRoles() []Role {
	return []Role{
		RoleReader,
		RoleWriter,
		RoleEditor,
		RoleAdmin,
	}
}

// AllCapabilities returns the closed capability set in ascending floor order.
func AllCapabilities() []Capability {
	return []Capability{
		CapabilityViewOwnDashboard,
		CapabilityAuthorContent,
		CapabilityEditAnyContent,
		CapabilityAdministerSite,
	}
}

// ParseRole safely parses a string into a Role type
func ParseRole(roleStr string) (Role, bool) {
	role := Role(roleStr)
	return role, role.IsValid()
}
