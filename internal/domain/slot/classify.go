package slot

import (
	"sort"

	"staffing-hub/internal/domain/staffing"

	"github.com/google/uuid"
)

type State string

const (
	StatePendiente  State = "pendiente"
	StateAsignado   State = "asignado"
	StateCompletado State = "completado"
)

type Snapshot struct {
	Projects    []staffing.Project
	Roles       []staffing.Role
	Assignments []staffing.Assignment
}

type Entry struct {
	Role       staffing.Role
	Project    staffing.Project
	State      State
	Assignment *staffing.Assignment
}

type Classification struct {
	Pendientes  []Entry
	Asignados   []Entry
	Completados []Entry
}

// Classify buckets every live role of the snapshot's projects. Deleted roles
// and roles whose project is not part of the snapshot are left out.
func Classify(s Snapshot) Classification {
	projects := make(map[uuid.UUID]staffing.Project, len(s.Projects))
	for _, p := range s.Projects {
		projects[p.ID] = p
	}

	active := ActiveByRole(s.Assignments)

	out := Classification{
		Pendientes:  make([]Entry, 0),
		Asignados:   make([]Entry, 0),
		Completados: make([]Entry, 0),
	}
	for _, r := range s.Roles {
		if r.Deleted() {
			continue
		}
		p, ok := projects[r.ProjectID]
		if !ok {
			continue
		}

		e := Entry{Role: r, Project: p}
		if a, ok := active[r.ID]; ok {
			a := a
			e.Assignment = &a
		}
		e.State = stateOf(e.Assignment != nil, p.Status)

		switch e.State {
		case StatePendiente:
			out.Pendientes = append(out.Pendientes, e)
		case StateAsignado:
			out.Asignados = append(out.Asignados, e)
		case StateCompletado:
			out.Completados = append(out.Completados, e)
		}
	}

	sortEntries(out.Pendientes)
	sortEntries(out.Asignados)
	sortEntries(out.Completados)
	return out
}

// ActiveByRole picks, per role, the most recent assignment still flagged
// active.
func ActiveByRole(assignments []staffing.Assignment) map[uuid.UUID]staffing.Assignment {
	out := make(map[uuid.UUID]staffing.Assignment)
	for _, a := range assignments {
		if !a.Active {
			continue
		}
		cur, ok := out[a.RoleID]
		if !ok || a.StartDate.After(cur.StartDate) {
			out[a.RoleID] = a
		}
	}
	return out
}

func stateOf(hasActive bool, status staffing.ProjectStatus) State {
	if !hasActive {
		return StatePendiente
	}
	if status.Completed() {
		return StateCompletado
	}
	return StateAsignado
}

func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Project.Name != entries[j].Project.Name {
			return entries[i].Project.Name < entries[j].Project.Name
		}
		if entries[i].Role.Title != entries[j].Role.Title {
			return entries[i].Role.Title < entries[j].Role.Title
		}
		return entries[i].Role.ID.String() < entries[j].Role.ID.String()
	})
}
