package access

// Section is a console area. Baseline sections need no capability.
type Section struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Capability Capability `json:"capability,omitempty"`
	Baseline   bool       `json:"-"`
}

// DefaultSections is the console section registry in display order.
var DefaultSections = []Section{
	{ID: "dashboard", Title: "Dashboard", Baseline: true},
	{ID: "approvals", Title: "Approvals", Capability: CapMemberManagement},
	{ID: "teams", Title: "Team Management", Capability: CapTeamManagement},
	{ID: "tasks", Title: "Task Management", Capability: CapTaskManagement},
	{ID: "reports", Title: "Reports", Capability: CapReportsView},
	{ID: "users", Title: "User Management", Capability: CapMemberManagement},
	{ID: "hierarchy", Title: "Hierarchy", Capability: CapHierarchyView},
	{ID: "panchayath-notes", Title: "Panchayath Notes", Capability: CapPanchayathNotes},
	{ID: "panchayaths", Title: "Settings", Capability: CapSettings},
	{ID: "notifications", Title: "Notifications", Capability: CapChat},
	{ID: "permissions", Title: "Permissions", Capability: CapPermissionManagement},
}

// CanAccess reports whether p holds key. Admins hold every key; for anyone
// else an unregistered key is never granted.
func CanAccess(p Principal, key string) bool {
	if p.Kind.IsAdmin() {
		return true
	}
	if !Known(key) {
		return false
	}
	return p.Capabilities.Has(key)
}

// VisibleSections filters registry by CanAccess, keeping registry order.
func VisibleSections(p Principal, registry []Section) []Section {
	out := make([]Section, 0, len(registry))
	if !p.Authenticated() {
		return out
	}
	for _, s := range registry {
		if s.Baseline || CanAccess(p, string(s.Capability)) {
			out = append(out, s)
		}
	}
	return out
}
