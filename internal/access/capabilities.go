package access

import "sort"

// Capability is a registered permission key. Keys match Permission.Name in
// the store.
type Capability string

const (
	CapTeamManagement       Capability = "team_management"
	CapTaskManagement       Capability = "task_management"
	CapReportsView          Capability = "reports_view"
	CapMemberManagement     Capability = "member_management"
	CapHierarchyView        Capability = "hierarchy_view"
	CapPanchayathNotes      Capability = "panchayath_notes"
	CapSettings             Capability = "settings"
	CapChat                 Capability = "chat"
	CapPermissionManagement Capability = "permission_management"
)

// Registry lists every capability the console understands.
var Registry = []Capability{
	CapTeamManagement,
	CapTaskManagement,
	CapReportsView,
	CapMemberManagement,
	CapHierarchyView,
	CapPanchayathNotes,
	CapSettings,
	CapChat,
	CapPermissionManagement,
}

// Known reports whether key is in the registry.
func Known(key string) bool {
	for _, c := range Registry {
		if string(c) == key {
			return true
		}
	}
	return false
}

// CapabilitySet is a resolved, de-duplicated set of capability keys. The zero
// value is empty. AllCapabilities returns the admin sentinel.
type CapabilitySet struct {
	all  bool
	keys map[string]struct{}
}

// AllCapabilities is the sentinel held by admins and super admins.
func AllCapabilities() CapabilitySet {
	return CapabilitySet{all: true}
}

// NewCapabilitySet builds a set from keys, dropping blanks and duplicates.
func NewCapabilitySet(keys ...string) CapabilitySet {
	set := CapabilitySet{keys: make(map[string]struct{}, len(keys))}
	for _, k := range keys {
		if k == "" {
			continue
		}
		set.keys[k] = struct{}{}
	}
	return set
}

// IsAll reports whether s is the admin sentinel.
func (s CapabilitySet) IsAll() bool {
	return s.all
}

// Has reports membership. The sentinel contains every key.
func (s CapabilitySet) Has(key string) bool {
	if s.all {
		return true
	}
	_, ok := s.keys[key]
	return ok
}

// Keys returns the explicit keys in sorted order. The sentinel has none.
func (s CapabilitySet) Keys() []string {
	out := make([]string, 0, len(s.keys))
	for k := range s.keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of explicit keys.
func (s CapabilitySet) Len() int {
	return len(s.keys)
}

// Union returns a new set holding the keys of both.
func (s CapabilitySet) Union(other CapabilitySet) CapabilitySet {
	if s.all || other.all {
		return AllCapabilities()
	}
	out := NewCapabilitySet(s.Keys()...)
	for k := range other.keys {
		out.keys[k] = struct{}{}
	}
	return out
}
