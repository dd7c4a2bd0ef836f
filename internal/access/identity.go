package access

import "github.com/fieldops/field-console/internal/domain"

// Kind discriminates principals.
type Kind string

const (
	KindGuest           Kind = "guest"
	KindMember          Kind = "member"
	KindTeamMemberAdmin Kind = "team_member_admin"
	KindAdmin           Kind = "admin"
	KindSuperAdmin      Kind = "super_admin"
)

// IsAdmin reports whether the kind bypasses granular checks.
func (k Kind) IsAdmin() bool {
	return k == KindAdmin || k == KindSuperAdmin
}

// Scope is the organizational subset a principal may see. A scope that is
// neither All nor bound to a panchayath sees nothing.
type Scope struct {
	All          bool   `json:"all"`
	PanchayathID string `json:"panchayath_id,omitempty"`
}

// Empty reports whether the scope admits no rows.
func (s Scope) Empty() bool {
	return !s.All && s.PanchayathID == ""
}

// SessionData is the serialized session object written at login.
type SessionData struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Role         string   `json:"role,omitempty"`
	PanchayathID string   `json:"panchayath_id,omitempty"`
	AgentID      string   `json:"agent_id,omitempty"`
	TeamIDs      []string `json:"team_ids,omitempty"`
	TeamName     string   `json:"team_name,omitempty"`
	Phone        string   `json:"phone,omitempty"`
}

// SessionContext carries the three session slots for one request.
type SessionContext struct {
	Admin  *SessionData
	Member *SessionData
	Guest  *SessionData
}

// Principal is the actor behind a request. It is immutable once built;
// WithCapabilities returns a copy.
type Principal struct {
	Kind         Kind
	ID           string
	Name         string
	Scope        Scope
	AdminUserID  string
	AgentID      string
	TeamIDs      []string
	TeamName     string
	Phone        string
	Capabilities CapabilitySet
}

// Anonymous returns the principal used when no session is present.
func Anonymous() Principal {
	return Principal{Kind: KindGuest}
}

// Authenticated reports whether a session backed the principal.
func (p Principal) Authenticated() bool {
	return p.ID != ""
}

// WithCapabilities returns a copy of p carrying caps.
func (p Principal) WithCapabilities(caps CapabilitySet) Principal {
	p.Capabilities = caps
	if p.TeamIDs != nil {
		p.TeamIDs = append([]string(nil), p.TeamIDs...)
	}
	return p
}

// Resolve builds the principal from session state. The admin slot wins over
// member, member over guest. A slot with an unrecognised role or no id is
// treated as absent. The capability set is left empty for the Aggregator.
func Resolve(sc SessionContext) Principal {
	if p, ok := fromAdminSlot(sc.Admin); ok {
		return p
	}
	if p, ok := fromScopedSlot(sc.Member, KindMember); ok {
		return p
	}
	if p, ok := fromScopedSlot(sc.Guest, KindGuest); ok {
		return p
	}
	return Anonymous()
}

func fromAdminSlot(s *SessionData) (Principal, bool) {
	if s == nil || s.ID == "" {
		return Principal{}, false
	}
	p := Principal{ID: s.ID, Name: s.Name}
	switch domain.AdminRole(s.Role) {
	case domain.AdminRoleSuperAdmin:
		p.Kind = KindSuperAdmin
	case domain.AdminRoleAdmin:
		p.Kind = KindAdmin
	case domain.AdminRoleTeamMemberAdmin:
		if s.AgentID == "" {
			return Principal{}, false
		}
		p.Kind = KindTeamMemberAdmin
		p.AgentID = s.AgentID
		p.TeamIDs = append([]string(nil), s.TeamIDs...)
		p.TeamName = s.TeamName
		p.Phone = s.Phone
		p.Scope = Scope{PanchayathID: s.PanchayathID}
		return p, true
	default:
		return Principal{}, false
	}
	p.AdminUserID = s.ID
	p.Scope = Scope{All: true}
	return p, true
}

func fromScopedSlot(s *SessionData, kind Kind) (Principal, bool) {
	if s == nil || s.ID == "" {
		return Principal{}, false
	}
	if s.Role != "" && s.Role != string(kind) {
		return Principal{}, false
	}
	return Principal{
		Kind:  kind,
		ID:    s.ID,
		Name:  s.Name,
		Phone: s.Phone,
		Scope: Scope{PanchayathID: s.PanchayathID},
	}, true
}
