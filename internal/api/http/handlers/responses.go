package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/fieldops/field-console/internal/access"
	"github.com/fieldops/field-console/internal/api/dto"
	"github.com/fieldops/field-console/internal/domain"
	"github.com/fieldops/field-console/internal/hierarchy"
	"github.com/fieldops/field-console/internal/service"
)

func parseBoolQuery(c *fiber.Ctx, key string, defaultVal bool) bool {
	if val := c.Query(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func parseIntQuery(c *fiber.Ctx, key string, defaultVal int) int {
	if val := c.Query(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultVal
}

// optionalQuery returns nil for a missing or blank parameter.
func optionalQuery(c *fiber.Ctx, key string) *string {
	val := strings.TrimSpace(c.Query(key))
	if val == "" {
		return nil
	}
	return &val
}

func sessionResponse(s *service.Session) dto.SessionResponse {
	return dto.SessionResponse{
		Slot:      s.Slot,
		Token:     s.Token,
		ExpiresAt: s.Meta.ExpiresAt,
		Session:   s.Data,
	}
}

func principalResponse(p access.Principal) dto.PrincipalResponse {
	resp := dto.PrincipalResponse{
		Kind:          p.Kind,
		ID:            p.ID,
		Name:          p.Name,
		Authenticated: p.Authenticated(),
		Scope:         p.Scope,
		AgentID:       p.AgentID,
		TeamIDs:       p.TeamIDs,
		TeamName:      p.TeamName,
		Capabilities:  []string{},
		AllAccess:     p.Capabilities.IsAll(),
	}
	if !resp.AllAccess {
		resp.Capabilities = p.Capabilities.Keys()
	}
	return resp
}

func adminUserResponse(u *domain.AdminUser) dto.AdminUserResponse {
	return dto.AdminUserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

func permissionResponse(p *domain.Permission) dto.PermissionResponse {
	return dto.PermissionResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
	}
}

func optionalPermission(p *domain.Permission) *dto.PermissionResponse {
	if p == nil {
		return nil
	}
	resp := permissionResponse(p)
	return &resp
}

func teamGrantResponse(g *domain.TeamPermission) dto.GrantResponse {
	return dto.GrantResponse{
		ID:           g.ID,
		GranteeType:  "team",
		GranteeID:    g.TeamID,
		PermissionID: g.PermissionID,
		Permission:   optionalPermission(g.Permission),
		GrantedBy:    g.GrantedBy,
		CreatedAt:    g.CreatedAt,
	}
}

func userGrantResponse(g *domain.UserPermission) dto.GrantResponse {
	return dto.GrantResponse{
		ID:           g.ID,
		GranteeType:  "user",
		GranteeID:    g.AdminUserID,
		PermissionID: g.PermissionID,
		Permission:   optionalPermission(g.Permission),
		GrantedBy:    g.GrantedBy,
		CreatedAt:    g.CreatedAt,
	}
}

func teamResponse(t *domain.Team) dto.TeamResponse {
	return dto.TeamResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		IsActive:    t.IsActive,
		HasPassword: t.PasswordHash != nil,
		CreatedAt:   t.CreatedAt,
	}
}

func teamMemberResponse(m *domain.TeamMember) dto.TeamMemberResponse {
	resp := dto.TeamMemberResponse{
		ID:        m.ID,
		TeamID:    m.TeamID,
		AgentID:   m.AgentID,
		CreatedAt: m.CreatedAt,
	}
	if m.Agent != nil {
		agent := agentResponse(m.Agent)
		resp.Agent = &agent
	}
	return resp
}

func panchayathResponse(p *domain.Panchayath) dto.PanchayathResponse {
	return dto.PanchayathResponse{
		ID:        p.ID,
		Name:      p.Name,
		District:  p.District,
		State:     p.State,
		CreatedAt: p.CreatedAt,
	}
}

func agentResponse(a *domain.Agent) dto.AgentResponse {
	return dto.AgentResponse{
		ID:           a.ID,
		Name:         a.Name,
		Role:         a.Role,
		PanchayathID: a.PanchayathID,
		SuperiorID:   a.SuperiorID,
		Phone:        a.Phone,
		Ward:         a.Ward,
		IsCustomer:   a.IsCustomer,
		CreatedAt:    a.CreatedAt,
	}
}

func agentResponses(agents []domain.Agent) []dto.AgentResponse {
	out := make([]dto.AgentResponse, 0, len(agents))
	for i := range agents {
		out = append(out, agentResponse(&agents[i]))
	}
	return out
}

func agentNodeResponses(nodes []*hierarchy.AgentNode) []dto.AgentNodeResponse {
	out := make([]dto.AgentNodeResponse, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, dto.AgentNodeResponse{
			Agent:    agentResponse(&n.Agent),
			Children: agentNodeResponses(n.Children),
		})
	}
	return out
}

func summaryResponse(s hierarchy.Summary) dto.HierarchySummaryResponse {
	tree := make([]dto.PanchayathTreeResponse, 0, len(s.Tree))
	for i := range s.Tree {
		tree = append(tree, dto.PanchayathTreeResponse{
			Panchayath: panchayathResponse(&s.Tree[i].Panchayath),
			Roots:      agentNodeResponses(s.Tree[i].Roots),
		})
	}
	return dto.HierarchySummaryResponse{
		Total:  s.Counts.Total,
		ByRole: s.Counts.ByRole,
		Agents: agentResponses(s.Agents),
		Tree:   tree,
	}
}

func noteResponse(n *domain.Note) dto.NoteResponse {
	return dto.NoteResponse{
		ID:           n.ID,
		PanchayathID: n.PanchayathID,
		AgentID:      n.AgentID,
		Category:     n.Category,
		Body:         n.Body,
		CreatedBy:    n.CreatedBy,
		CreatedAt:    n.CreatedAt,
		UpdatedAt:    n.UpdatedAt,
	}
}

func taskResponse(t *domain.Task) dto.TaskResponse {
	return dto.TaskResponse{
		ID:           t.ID,
		PanchayathID: t.PanchayathID,
		TeamID:       t.TeamID,
		AssigneeID:   t.AssigneeID,
		Title:        t.Title,
		Description:  t.Description,
		Status:       t.Status,
		Priority:     t.Priority,
		DueDate:      t.DueDate,
		CreatedBy:    t.CreatedBy,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func registrationResponse(r *domain.RegistrationRequest) dto.RegistrationResponse {
	return dto.RegistrationResponse{
		ID:           r.ID,
		Username:     r.Username,
		MobileNumber: r.MobileNumber,
		PanchayathID: r.PanchayathID,
		Ward:         r.Ward,
		Status:       r.Status,
		ReviewedBy:   r.ReviewedBy,
		ReviewedAt:   r.ReviewedAt,
		CreatedAt:    r.CreatedAt,
	}
}
