// Package hierarchy derives reporting views over scope-filtered agents and
// panchayaths: per-role counts, text and selector filters, and a tree grouped
// by panchayath following the role ladder.
package hierarchy

import (
	"sort"
	"strings"

	"github.com/fieldops/field-console/internal/domain"
)

// AllValue selects every panchayath or every role.
const AllValue = "all"

// Filters is the selector state of the hierarchy screen.
type Filters struct {
	Search       string
	PanchayathID string
	Role         string
}

func (f Filters) allPanchayaths() bool {
	return f.PanchayathID == "" || f.PanchayathID == AllValue
}

func (f Filters) allRoles() bool {
	return f.Role == "" || f.Role == AllValue
}

// Counts holds the total and one entry per ladder role, zero included.
type Counts struct {
	Total  int                      `json:"total"`
	ByRole map[domain.AgentRole]int `json:"by_role"`
}

// AgentNode is one agent and the agents reporting to it.
type AgentNode struct {
	Agent    domain.Agent
	Children []*AgentNode
}

// PanchayathNode groups the agent forest of one panchayath.
type PanchayathNode struct {
	Panchayath domain.Panchayath
	Roots      []*AgentNode
}

// Summary is the derived hierarchy view.
type Summary struct {
	Counts Counts
	Agents []domain.Agent
	Tree   []PanchayathNode
}

// Matches reports whether a passes every active filter. Search is a
// case-insensitive substring match over name, phone or ward.
func Matches(a domain.Agent, f Filters) bool {
	if !a.Role.Valid() {
		return false
	}
	if !f.allPanchayaths() && a.PanchayathID != f.PanchayathID {
		return false
	}
	if !f.allRoles() && string(a.Role) != f.Role {
		return false
	}
	term := strings.ToLower(strings.TrimSpace(f.Search))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(a.Name), term) ||
		strings.Contains(strings.ToLower(a.Phone), term) ||
		strings.Contains(strings.ToLower(a.Ward), term)
}

// Filter returns the matching agents ordered by name. Agents whose role is
// not on the ladder never match.
func Filter(agents []domain.Agent, f Filters) []domain.Agent {
	out := make([]domain.Agent, 0, len(agents))
	for _, a := range agents {
		if Matches(a, f) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// CountByRole tallies agents per ladder role.
func CountByRole(agents []domain.Agent) Counts {
	counts := Counts{ByRole: make(map[domain.AgentRole]int, len(domain.RoleLadder))}
	for _, role := range domain.RoleLadder {
		counts.ByRole[role] = 0
	}
	for _, a := range agents {
		if _, ok := counts.ByRole[a.Role]; !ok {
			continue
		}
		counts.ByRole[a.Role]++
		counts.Total++
	}
	return counts
}

// Summarize filters agents and builds counts and the panchayath tree. Inputs
// must already be scope filtered.
func Summarize(agents []domain.Agent, panchayaths []domain.Panchayath, f Filters) Summary {
	filtered := Filter(agents, f)
	return Summary{
		Counts: CountByRole(filtered),
		Agents: filtered,
		Tree:   buildTree(filtered, panchayaths, f),
	}
}

func buildTree(agents []domain.Agent, panchayaths []domain.Panchayath, f Filters) []PanchayathNode {
	groups := make(map[string][]domain.Agent)
	for _, a := range agents {
		groups[a.PanchayathID] = append(groups[a.PanchayathID], a)
	}

	ordered := append([]domain.Panchayath(nil), panchayaths...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Name != ordered[j].Name {
			return ordered[i].Name < ordered[j].Name
		}
		return ordered[i].ID < ordered[j].ID
	})

	tree := []PanchayathNode{}
	seen := make(map[string]bool, len(ordered))
	for _, p := range ordered {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		if !f.allPanchayaths() && p.ID != f.PanchayathID {
			continue
		}
		members := groups[p.ID]
		if len(members) == 0 && f.allPanchayaths() {
			continue
		}
		tree = append(tree, PanchayathNode{Panchayath: p, Roots: buildForest(members)})
	}

	// agents whose panchayath was not supplied still get a group
	var unknown []string
	for id := range groups {
		if !seen[id] {
			unknown = append(unknown, id)
		}
	}
	sort.Strings(unknown)
	for _, id := range unknown {
		tree = append(tree, PanchayathNode{Panchayath: domain.Panchayath{ID: id}, Roots: buildForest(groups[id])})
	}
	return tree
}

// buildForest links agents to a superior one rung up in the same group. Any
// other agent, including one whose superior is missing, becomes a root.
func buildForest(agents []domain.Agent) []*AgentNode {
	nodes := make(map[string]*AgentNode, len(agents))
	for _, a := range agents {
		nodes[a.ID] = &AgentNode{Agent: a}
	}

	roots := []*AgentNode{}
	for _, a := range agents {
		node := nodes[a.ID]
		if parent := superiorNode(a, nodes); parent != nil {
			parent.Children = append(parent.Children, node)
			continue
		}
		roots = append(roots, node)
	}

	sort.SliceStable(roots, func(i, j int) bool {
		ri, rj := roots[i].Agent.Role.Rank(), roots[j].Agent.Role.Rank()
		if ri != rj {
			return ri < rj
		}
		return byName(roots[i], roots[j])
	})
	for _, n := range nodes {
		sort.SliceStable(n.Children, func(i, j int) bool { return byName(n.Children[i], n.Children[j]) })
	}
	return roots
}

func superiorNode(a domain.Agent, nodes map[string]*AgentNode) *AgentNode {
	if a.SuperiorID == nil || *a.SuperiorID == a.ID {
		return nil
	}
	parent, ok := nodes[*a.SuperiorID]
	if !ok {
		return nil
	}
	want, ok := a.Role.Superior()
	if !ok || parent.Agent.Role != want {
		return nil
	}
	return parent
}

func byName(a, b *AgentNode) bool {
	if a.Agent.Name != b.Agent.Name {
		return a.Agent.Name < b.Agent.Name
	}
	return a.Agent.ID < b.Agent.ID
}
