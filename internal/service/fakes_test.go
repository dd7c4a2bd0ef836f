package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fieldops/field-console/internal/domain"
	"github.com/fieldops/field-console/internal/events"
	"github.com/fieldops/field-console/internal/repository"
)

var errUniqueViolation = &pgconn.PgError{Code: "23505", ConstraintName: "unique"}

type idSeq struct {
	mu sync.Mutex
	n  int
}

func (s *idSeq) next(prefix string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s-%d", prefix, s.n)
}

// memStore backs every fake repository so tests can share state.
type memStore struct {
	mu          sync.Mutex
	ids         idSeq
	perms       map[string]*domain.Permission
	teams       map[string]*domain.Team
	members     []domain.TeamMember
	teamGrants  []domain.TeamPermission
	userGrants  []domain.UserPermission
	agents      map[string]*domain.Agent
	panchayaths map[string]*domain.Panchayath
	admins      map[string]*domain.AdminUser
	notes       map[string]*domain.Note
	tasks       map[string]*domain.Task
	regs        map[string]*domain.RegistrationRequest
	activity    []domain.Activity
	failWith    error
}

func newMemStore() *memStore {
	return &memStore{
		perms:       map[string]*domain.Permission{},
		teams:       map[string]*domain.Team{},
		agents:      map[string]*domain.Agent{},
		panchayaths: map[string]*domain.Panchayath{},
		admins:      map[string]*domain.AdminUser{},
		notes:       map[string]*domain.Note{},
		tasks:       map[string]*domain.Task{},
		regs:        map[string]*domain.RegistrationRequest{},
	}
}

func (m *memStore) seedPermission(name string, active bool) *domain.Permission {
	p := &domain.Permission{ID: "perm-" + name, Name: name, IsActive: active}
	m.perms[p.ID] = p
	return p
}

func (m *memStore) seedCatalogue() {
	for _, name := range []string{"team_management", "task_management", "reports_view", "member_management",
		"hierarchy_view", "panchayath_notes", "settings", "chat", "permission_management"} {
		m.seedPermission(name, true)
	}
}

// ---- permissions

type fakePermissionRepo struct{ *memStore }

var _ repository.PermissionRepository = fakePermissionRepo{}

func (f fakePermissionRepo) Create(_ context.Context, perm *domain.Permission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.perms {
		if p.Name == perm.Name {
			return errUniqueViolation
		}
	}
	perm.ID = f.ids.next("perm")
	cp := *perm
	f.perms[perm.ID] = &cp
	return nil
}

func (f fakePermissionRepo) Update(_ context.Context, perm *domain.Permission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.perms[perm.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *perm
	f.perms[perm.ID] = &cp
	return nil
}

func (f fakePermissionRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.perms[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.perms, id)
	kept := f.teamGrants[:0]
	for _, g := range f.teamGrants {
		if g.PermissionID != id {
			kept = append(kept, g)
		}
	}
	f.teamGrants = kept
	return nil
}

func (f fakePermissionRepo) GetByID(_ context.Context, id string) (*domain.Permission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	p, ok := f.perms[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (f fakePermissionRepo) GetByName(_ context.Context, name string) (*domain.Permission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.perms {
		if p.Name == name {
			cp := *p
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f fakePermissionRepo) List(_ context.Context, includeInactive bool) ([]domain.Permission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Permission{}
	for _, p := range f.perms {
		if p.IsActive || includeInactive {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f fakePermissionRepo) GrantTeam(_ context.Context, grant *domain.TeamPermission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, g := range f.teamGrants {
		if g.TeamID == grant.TeamID && g.PermissionID == grant.PermissionID {
			return errUniqueViolation
		}
	}
	grant.ID = f.ids.next("tg")
	f.teamGrants = append(f.teamGrants, *grant)
	return nil
}

func (f fakePermissionRepo) RevokeTeam(_ context.Context, teamID, permissionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, g := range f.teamGrants {
		if g.TeamID == teamID && g.PermissionID == permissionID {
			f.teamGrants = append(f.teamGrants[:i], f.teamGrants[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f fakePermissionRepo) ListTeamGrants(_ context.Context, teamID string) ([]domain.TeamPermission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := []domain.TeamPermission{}
	for _, g := range f.teamGrants {
		if g.TeamID == teamID {
			if p, ok := f.perms[g.PermissionID]; ok {
				cp := *p
				g.Permission = &cp
			}
			out = append(out, g)
		}
	}
	return out, nil
}

func (f fakePermissionRepo) GrantUser(_ context.Context, grant *domain.UserPermission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, g := range f.userGrants {
		if g.AdminUserID == grant.AdminUserID && g.PermissionID == grant.PermissionID {
			return errUniqueViolation
		}
	}
	grant.ID = f.ids.next("ug")
	f.userGrants = append(f.userGrants, *grant)
	return nil
}

func (f fakePermissionRepo) RevokeUser(_ context.Context, adminUserID, permissionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, g := range f.userGrants {
		if g.AdminUserID == adminUserID && g.PermissionID == permissionID {
			f.userGrants = append(f.userGrants[:i], f.userGrants[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f fakePermissionRepo) ListUserGrants(_ context.Context, adminUserID string) ([]domain.UserPermission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.UserPermission{}
	for _, g := range f.userGrants {
		if g.AdminUserID == adminUserID {
			if p, ok := f.perms[g.PermissionID]; ok {
				cp := *p
				g.Permission = &cp
			}
			out = append(out, g)
		}
	}
	return out, nil
}

// ---- teams

type fakeTeamRepo struct{ *memStore }

var _ repository.TeamRepository = fakeTeamRepo{}

func (f fakeTeamRepo) Create(_ context.Context, team *domain.Team) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if team.ID == "" {
		team.ID = f.ids.next("team")
	}
	cp := *team
	f.teams[team.ID] = &cp
	return nil
}

func (f fakeTeamRepo) Update(_ context.Context, team *domain.Team) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.teams[team.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *team
	f.teams[team.ID] = &cp
	return nil
}

func (f fakeTeamRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.teams[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.teams, id)
	kept := f.members[:0]
	for _, m := range f.members {
		if m.TeamID != id {
			kept = append(kept, m)
		}
	}
	f.members = kept
	return nil
}

func (f fakeTeamRepo) GetByID(_ context.Context, id string) (*domain.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.teams[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *t
	return &cp, nil
}

func (f fakeTeamRepo) List(_ context.Context, includeInactive bool) ([]domain.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Team{}
	for _, t := range f.teams {
		if t.IsActive || includeInactive {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f fakeTeamRepo) ListForAgent(_ context.Context, agentID string) ([]domain.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := []domain.Team{}
	for _, m := range f.members {
		if m.AgentID == agentID {
			if t, ok := f.teams[m.TeamID]; ok {
				out = append(out, *t)
			}
		}
	}
	return out, nil
}

func (f fakeTeamRepo) AddMember(_ context.Context, member *domain.TeamMember) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.members {
		if m.TeamID == member.TeamID && m.AgentID == member.AgentID {
			return errUniqueViolation
		}
	}
	member.ID = f.ids.next("member")
	f.members = append(f.members, *member)
	return nil
}

func (f fakeTeamRepo) RemoveMember(_ context.Context, teamID, agentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, m := range f.members {
		if m.TeamID == teamID && m.AgentID == agentID {
			f.members = append(f.members[:i], f.members[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f fakeTeamRepo) ListMembers(_ context.Context, teamID string) ([]domain.TeamMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.TeamMember{}
	for _, m := range f.members {
		if m.TeamID == teamID {
			out = append(out, m)
		}
	}
	return out, nil
}

// ---- agents and panchayaths

type fakeAgentRepo struct{ *memStore }

var _ repository.AgentRepository = fakeAgentRepo{}

func (f fakeAgentRepo) Create(_ context.Context, agent *domain.Agent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if agent.ID == "" {
		agent.ID = f.ids.next("agent")
	}
	cp := *agent
	f.agents[agent.ID] = &cp
	return nil
}

func (f fakeAgentRepo) Update(_ context.Context, agent *domain.Agent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.agents[agent.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *agent
	f.agents[agent.ID] = &cp
	return nil
}

func (f fakeAgentRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.agents[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.agents, id)
	return nil
}

func (f fakeAgentRepo) GetByID(_ context.Context, id string) (*domain.Agent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.agents[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

func (f fakeAgentRepo) GetByPhone(_ context.Context, phone string) (*domain.Agent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.agents {
		if a.Phone == phone {
			cp := *a
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f fakeAgentRepo) List(_ context.Context, filter repository.AgentFilter) ([]domain.Agent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := []domain.Agent{}
	for _, a := range f.agents {
		if filter.PanchayathID != nil && a.PanchayathID != *filter.PanchayathID {
			continue
		}
		if filter.Role != nil && a.Role != *filter.Role {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type fakePanchayathRepo struct{ *memStore }

var _ repository.PanchayathRepository = fakePanchayathRepo{}

func (f fakePanchayathRepo) Create(_ context.Context, p *domain.Panchayath) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID == "" {
		p.ID = f.ids.next("panchayath")
	}
	cp := *p
	f.panchayaths[p.ID] = &cp
	return nil
}

func (f fakePanchayathRepo) Update(_ context.Context, p *domain.Panchayath) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.panchayaths[p.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *p
	f.panchayaths[p.ID] = &cp
	return nil
}

func (f fakePanchayathRepo) GetByID(_ context.Context, id string) (*domain.Panchayath, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.panchayaths[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (f fakePanchayathRepo) List(_ context.Context, onlyID *string) ([]domain.Panchayath, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Panchayath{}
	for _, p := range f.panchayaths {
		if onlyID != nil && p.ID != *onlyID {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ---- admins

type fakeAdminRepo struct{ *memStore }

var _ repository.AdminUserRepository = fakeAdminRepo{}

func (f fakeAdminRepo) Create(_ context.Context, user *domain.AdminUser) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.admins {
		if u.Username == user.Username {
			return errUniqueViolation
		}
	}
	if user.ID == "" {
		user.ID = f.ids.next("admin")
	}
	cp := *user
	f.admins[user.ID] = &cp
	return nil
}

func (f fakeAdminRepo) GetByID(_ context.Context, id string) (*domain.AdminUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.admins[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (f fakeAdminRepo) GetByUsername(_ context.Context, username string) (*domain.AdminUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.admins {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

// ---- notes, tasks, registrations

type fakeNoteRepo struct{ *memStore }

var _ repository.NoteRepository = fakeNoteRepo{}

func (f fakeNoteRepo) Create(_ context.Context, note *domain.Note) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	note.ID = f.ids.next("note")
	cp := *note
	f.notes[note.ID] = &cp
	return nil
}

func (f fakeNoteRepo) Update(_ context.Context, note *domain.Note) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.notes[note.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *note
	f.notes[note.ID] = &cp
	return nil
}

func (f fakeNoteRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.notes[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.notes, id)
	return nil
}

func (f fakeNoteRepo) GetByID(_ context.Context, id string) (*domain.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notes[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *n
	return &cp, nil
}

func (f fakeNoteRepo) List(_ context.Context, filter repository.NoteFilter) ([]domain.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Note{}
	for _, n := range f.notes {
		if filter.PanchayathID != nil && n.PanchayathID != *filter.PanchayathID {
			continue
		}
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeTaskRepo struct{ *memStore }

var _ repository.TaskRepository = fakeTaskRepo{}

func (f fakeTaskRepo) Create(_ context.Context, task *domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	task.ID = f.ids.next("task")
	cp := *task
	f.tasks[task.ID] = &cp
	return nil
}

func (f fakeTaskRepo) Update(_ context.Context, task *domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tasks[task.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *task
	f.tasks[task.ID] = &cp
	return nil
}

func (f fakeTaskRepo) GetByID(_ context.Context, id string) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *t
	return &cp, nil
}

func (f fakeTaskRepo) List(_ context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Task{}
	for _, t := range f.tasks {
		if filter.PanchayathID != nil && t.PanchayathID != *filter.PanchayathID {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeRegistrationRepo struct{ *memStore }

var _ repository.RegistrationRepository = fakeRegistrationRepo{}

func (f fakeRegistrationRepo) Create(_ context.Context, req *domain.RegistrationRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.regs {
		if r.MobileNumber == req.MobileNumber {
			return errUniqueViolation
		}
	}
	if req.ID == "" {
		req.ID = f.ids.next("reg")
	}
	cp := *req
	f.regs[req.ID] = &cp
	return nil
}

func (f fakeRegistrationRepo) GetByID(_ context.Context, id string) (*domain.RegistrationRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.regs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *r
	return &cp, nil
}

func (f fakeRegistrationRepo) GetByMobile(_ context.Context, mobile string) (*domain.RegistrationRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.regs {
		if r.MobileNumber == mobile {
			cp := *r
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f fakeRegistrationRepo) List(_ context.Context, filter repository.RegistrationFilter) ([]domain.RegistrationRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.RegistrationRequest{}
	for _, r := range f.regs {
		if filter.Status != nil && r.Status != *filter.Status {
			continue
		}
		if filter.PanchayathID != nil && (r.PanchayathID == nil || *r.PanchayathID != *filter.PanchayathID) {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f fakeRegistrationRepo) UpdateStatus(_ context.Context, req *domain.RegistrationRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.regs[req.ID]
	if !ok || r.Status != domain.RegistrationPending {
		return pgx.ErrNoRows
	}
	r.Status = req.Status
	r.ReviewedBy = req.ReviewedBy
	return nil
}

// ---- activity

type fakeActivityRepo struct{ *memStore }

var _ repository.ActivityRepository = fakeActivityRepo{}

func (f fakeActivityRepo) Create(_ context.Context, entry *domain.Activity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry.ID = f.ids.next("activity")
	f.activity = append(f.activity, *entry)
	return nil
}

func (f fakeActivityRepo) List(_ context.Context, subject string, _ int) ([]domain.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Activity{}
	for i := len(f.activity) - 1; i >= 0; i-- {
		if subject == "" || f.activity[i].Subject == subject {
			out = append(out, f.activity[i])
		}
	}
	return out, nil
}

// ---- collaborators

type countingInvalidator struct {
	mu    sync.Mutex
	calls int
	order *[]string
}

func (c *countingInvalidator) Invalidate(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.order != nil {
		*c.order = append(*c.order, "invalidate")
	}
}

func (c *countingInvalidator) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
	order  *[]string
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	if d.order != nil {
		*d.order = append(*d.order, "publish:"+string(event.Type))
	}
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.EventType, 0, len(d.events))
	for _, e := range d.events {
		out = append(out, e.Type)
	}
	return out
}
