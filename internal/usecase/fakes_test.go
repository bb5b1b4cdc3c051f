package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"staffing-hub/internal/domain/request"
	"staffing-hub/internal/domain/staffing"
	"staffing-hub/internal/event"
	"staffing-hub/internal/repository"

	"github.com/google/uuid"
)

// memStore is an in-memory stand-in for every repository the usecases use.
// InsertPending and ApplyResolution hold the mutex across check and write,
// mirroring the partial unique index and the state compare-and-swap.
type memStore struct {
	mu sync.Mutex

	employees   map[uuid.UUID]staffing.Employee
	empSkills   map[uuid.UUID][]staffing.EmployeeSkill
	admins      map[uuid.UUID]staffing.Administrator
	projects    map[uuid.UUID]staffing.Project
	roles       map[uuid.UUID]staffing.Role
	requests    map[uuid.UUID]request.Request
	assignments []staffing.Assignment
	skillNames  map[uuid.UUID]string

	listErr     error
	eligibleErr error
}

func newMemStore() *memStore {
	return &memStore{
		employees:  map[uuid.UUID]staffing.Employee{},
		empSkills:  map[uuid.UUID][]staffing.EmployeeSkill{},
		admins:     map[uuid.UUID]staffing.Administrator{},
		projects:   map[uuid.UUID]staffing.Project{},
		roles:      map[uuid.UUID]staffing.Role{},
		requests:   map[uuid.UUID]request.Request{},
		skillNames: map[uuid.UUID]string{},
	}
}

func (m *memStore) addSkill(name string) uuid.UUID {
	id := uuid.New()
	m.skillNames[id] = name
	return id
}

func (m *memStore) addEmployee(name string, status staffing.EmployeeStatus, availability int, levels map[uuid.UUID]int) uuid.UUID {
	id := uuid.New()
	m.employees[id] = staffing.Employee{ID: id, FullName: name, Status: status, AvailabilityPct: availability}
	for skillID, lvl := range levels {
		m.empSkills[id] = append(m.empSkills[id], staffing.EmployeeSkill{
			EmployeeID: id, SkillID: skillID, SkillName: m.skillNames[skillID], Level: lvl,
		})
	}
	return id
}

func (m *memStore) addAdmin(name string) uuid.UUID {
	id := uuid.New()
	m.admins[id] = staffing.Administrator{ID: id, FullName: name}
	return id
}

func (m *memStore) addProject(name string, status staffing.ProjectStatus, manager uuid.UUID) uuid.UUID {
	id := uuid.New()
	m.projects[id] = staffing.Project{ID: id, Name: name, Status: status, ManagerID: manager}
	return id
}

func (m *memStore) addRole(projectID uuid.UUID, title string, reqs ...staffing.RoleSkillRequirement) uuid.UUID {
	id := uuid.New()
	for i := range reqs {
		reqs[i].RoleID = id
		reqs[i].SkillName = m.skillNames[reqs[i].SkillID]
	}
	m.roles[id] = staffing.Role{
		ID: id, ProjectID: projectID, Title: title, Description: title,
		Requirements: append([]staffing.RoleSkillRequirement{}, reqs...),
		CreatedAt:    time.Now().UTC(),
	}
	return id
}

// EmployeeRepository, AdministratorRepository, ProjectRepository

func (m *memStore) FindEmployeeByID(_ context.Context, id uuid.UUID) (staffing.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.employees[id]
	if !ok {
		return staffing.Employee{}, repository.ErrEmployeeNotFound
	}
	return e, nil
}

func (m *memStore) FindAdministratorByID(_ context.Context, id uuid.UUID) (staffing.Administrator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.admins[id]
	if !ok {
		return staffing.Administrator{}, repository.ErrAdministratorNotFound
	}
	return a, nil
}

func (m *memStore) ListAdministrators(context.Context) ([]staffing.Administrator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]staffing.Administrator, 0, len(m.admins))
	for _, a := range m.admins {
		out = append(out, a)
	}
	return out, nil
}

func (m *memStore) FindProjectByID(_ context.Context, id uuid.UUID) (staffing.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return staffing.Project{}, repository.ErrProjectNotFound
	}
	return p, nil
}

func (m *memStore) FindProjectsByIDs(_ context.Context, ids []uuid.UUID) ([]staffing.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]staffing.Project, 0, len(ids))
	for _, id := range ids {
		if p, ok := m.projects[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// SkillProfileRepository

func (m *memStore) FindRequirementsByRoleID(_ context.Context, roleID uuid.UUID) ([]staffing.RoleSkillRequirement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]staffing.RoleSkillRequirement{}, m.roles[roleID].Requirements...), nil
}

func (m *memStore) ListEligibleEmployees(context.Context) ([]staffing.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.eligibleErr != nil {
		return nil, m.eligibleErr
	}
	out := make([]staffing.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		if e.Eligible() {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memStore) FindSkillsByEmployeeIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID][]staffing.EmployeeSkill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[uuid.UUID][]staffing.EmployeeSkill, len(ids))
	for _, id := range ids {
		out[id] = m.empSkills[id]
	}
	return out, nil
}

func (m *memStore) CountSkills(_ context.Context, ids []uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, id := range ids {
		if _, ok := m.skillNames[id]; ok {
			n++
		}
	}
	return n, nil
}

// RoleRepository

func (m *memStore) Create(_ context.Context, role staffing.Role) (staffing.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[role.ProjectID]; !ok {
		return staffing.Role{}, repository.ErrDanglingReference
	}
	for i, r := range role.Requirements {
		name, ok := m.skillNames[r.SkillID]
		if !ok {
			return staffing.Role{}, repository.ErrDanglingReference
		}
		role.Requirements[i].SkillName = name
	}
	m.roles[role.ID] = role
	return role, nil
}

func (m *memStore) FindByID(_ context.Context, id uuid.UUID) (staffing.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.roles[id]
	if !ok {
		return staffing.Role{}, repository.ErrRoleNotFound
	}
	return r, nil
}

func (m *memStore) ListByProjectIDs(_ context.Context, ids []uuid.UUID) ([]staffing.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := make([]staffing.Role, 0)
	for _, r := range m.roles {
		if want[r.ProjectID] && !r.Deleted() {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) SoftDelete(_ context.Context, d repository.RoleDeletion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.roles[d.RoleID]
	if !ok || r.Deleted() {
		return repository.ErrRoleNotFound
	}
	at := d.At
	reason := d.Reason
	r.DeletedAt = &at
	r.DeletionReason = &reason
	r.DeletedBy = d.DeletedBy
	m.roles[d.RoleID] = r
	return nil
}

// requestRepo adapts memStore to RequestRepository; FindByID collides with
// the role lookup.
type requestRepo struct{ *memStore }

func (r requestRepo) HasPending(_ context.Context, employeeID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, req := range r.requests {
		if req.EmployeeID == employeeID && req.State == request.StatePendiente {
			return true, nil
		}
	}
	return false, nil
}

func (r requestRepo) InsertPending(_ context.Context, req request.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.requests {
		if existing.EmployeeID == req.EmployeeID && existing.State == request.StatePendiente {
			return repository.ErrPendingRequestExists
		}
	}
	r.requests[req.ID] = req
	return nil
}

func (r requestRepo) FindByID(_ context.Context, id uuid.UUID) (request.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return request.Request{}, repository.ErrRequestNotFound
	}
	return req, nil
}

func (r requestRepo) ApplyResolution(_ context.Context, req request.Request) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.requests[req.ID]
	if !ok || current.State != request.StatePendiente {
		return false, nil
	}
	r.requests[req.ID] = req
	return true, nil
}

func (r requestRepo) List(_ context.Context, f repository.RequestFilter) ([]repository.RequestView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]repository.RequestView, 0)
	for _, req := range r.requests {
		if f.State != nil && req.State != *f.State {
			continue
		}
		v := repository.RequestView{
			Request:      req,
			EmployeeName: r.employees[req.EmployeeID].FullName,
			RoleTitle:    r.roles[req.RoleID].Title,
		}
		p := r.projects[r.roles[req.RoleID].ProjectID]
		v.ProjectID = p.ID
		v.ProjectName = p.Name
		if f.Requester != "" && !strings.Contains(strings.ToLower(v.EmployeeName), strings.ToLower(f.Requester)) {
			continue
		}
		if f.Project != "" && !strings.Contains(strings.ToLower(v.ProjectName), strings.ToLower(f.Project)) {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// assignmentRepo adapts memStore to AssignmentRepository.
type assignmentRepo struct{ *memStore }

func (r assignmentRepo) ListActiveByRoleIDs(_ context.Context, roleIDs []uuid.UUID) ([]staffing.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := make(map[uuid.UUID]bool, len(roleIDs))
	for _, id := range roleIDs {
		want[id] = true
	}
	out := make([]staffing.Assignment, 0)
	for _, a := range r.assignments {
		if a.Active && want[a.RoleID] {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r assignmentRepo) Materialize(_ context.Context, a staffing.Assignment, reassign bool) (staffing.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	role, ok := r.roles[a.RoleID]
	if !ok || role.Deleted() {
		return staffing.Assignment{}, repository.ErrRoleNotFound
	}
	for _, existing := range r.assignments {
		if existing.RequestID != nil && a.RequestID != nil && *existing.RequestID == *a.RequestID {
			return staffing.Assignment{}, repository.ErrAlreadyMaterialized
		}
	}
	for i, existing := range r.assignments {
		if existing.RoleID == a.RoleID && existing.Active {
			if !reassign {
				return staffing.Assignment{}, repository.ErrActiveAssignmentExists
			}
			end := a.StartDate
			r.assignments[i].Active = false
			r.assignments[i].EndDate = &end
		}
	}
	a.Active = true
	r.assignments = append(r.assignments, a)
	return a, nil
}

// memCache is a RankingCache backed by a map.
type memCache struct {
	mu      sync.Mutex
	entries map[string]any
	locks   map[string]bool
	deleted []string
}

func newMemCache() *memCache {
	return &memCache{entries: map[string]any{}, locks: map[string]bool{}}
}

func (c *memCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	if dst, ok := out.(*CandidateRanking); ok {
		*dst = v.(CandidateRanking)
	}
	return true, nil
}

func (c *memCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
		delete(c.locks, k)
		c.deleted = append(c.deleted, k)
	}
	return nil
}

func (c *memCache) SetIfNotExists(_ context.Context, key, _ string, _ time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locks[key] {
		return false, nil
	}
	c.locks[key] = true
	return true, nil
}

type recordingPublisher struct {
	mu  sync.Mutex
	got []event.Event
	err error
}

func (p *recordingPublisher) Publish(_ context.Context, evt event.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = append(p.got, evt)
	return p.err
}

func (p *recordingPublisher) kinds() []event.Kind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]event.Kind, 0, len(p.got))
	for _, e := range p.got {
		out = append(out, e.Kind)
	}
	return out
}
