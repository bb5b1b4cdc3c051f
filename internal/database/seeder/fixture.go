package seeder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"staffing-hub/internal/database"
	"staffing-hub/internal/domain/staffing"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Fixture is a YAML description of reference data: the skill catalog, the
// people, the projects and their open roles. Entities reference each other by
// key; IDs are derived from keys so reloading a fixture is idempotent.
type Fixture struct {
	Skills         []FixtureSkill         `yaml:"skills"`
	Employees      []FixtureEmployee      `yaml:"employees"`
	Administrators []FixtureAdministrator `yaml:"administrators"`
	Projects       []FixtureProject       `yaml:"projects"`
	Roles          []FixtureRole          `yaml:"roles"`
}

type FixtureSkill struct {
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
}

type FixtureEmployee struct {
	Email        string         `yaml:"email"`
	FullName     string         `yaml:"full_name"`
	Status       string         `yaml:"status"`
	Availability *int           `yaml:"availability_pct"`
	Skills       map[string]int `yaml:"skills"`
}

type FixtureAdministrator struct {
	Key         string `yaml:"key"`
	FullName    string `yaml:"full_name"`
	Department  string `yaml:"department"`
	AccessLevel int    `yaml:"access_level"`
}

type FixtureProject struct {
	Key          string    `yaml:"key"`
	Name         string    `yaml:"name"`
	Status       string    `yaml:"status"`
	ManagerID    uuid.UUID `yaml:"manager_id"`
	StartDate    string    `yaml:"start_date"`
	EstimatedEnd string    `yaml:"estimated_end_date"`
}

type FixtureRole struct {
	Key                     string               `yaml:"key"`
	Project                 string               `yaml:"project"`
	Title                   string               `yaml:"title"`
	Description             string               `yaml:"description"`
	RequiredExperienceLevel string               `yaml:"required_experience_level"`
	Skills                  []FixtureRequirement `yaml:"skills"`
}

type FixtureRequirement struct {
	Skill      string `yaml:"skill"`
	MinLevel   int    `yaml:"min_level"`
	Importance int    `yaml:"importance"`
}

const dateLayout = "2006-01-02"

var ErrInvalidFixture = errors.New("invalid fixture")

// FixtureID derives the stable ID of a fixture entity.
func FixtureID(kind, key string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("staffing-hub/"+kind+"/"+strings.ToLower(strings.TrimSpace(key))))
}

func LoadFixture(r io.Reader) (Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return Fixture{}, nil
		}
		return Fixture{}, fmt.Errorf("decode fixture: %w", err)
	}
	if err := f.Validate(); err != nil {
		return Fixture{}, err
	}
	return f, nil
}

// Validate checks enum values, ranges and that every reference resolves
// within the fixture.
func (f Fixture) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	skills := make(map[string]bool, len(f.Skills))
	for _, s := range f.Skills {
		name := strings.ToLower(strings.TrimSpace(s.Name))
		if name == "" {
			add("skill without name")
			continue
		}
		if skills[name] {
			add("duplicate skill %q", s.Name)
		}
		skills[name] = true
		switch staffing.SkillCategory(strings.ToUpper(s.Category)) {
		case staffing.SkillCategoryTechnical, staffing.SkillCategorySoft:
		default:
			add("skill %q: unknown category %q", s.Name, s.Category)
		}
	}

	for _, e := range f.Employees {
		if strings.TrimSpace(e.Email) == "" || strings.TrimSpace(e.FullName) == "" {
			add("employee %q: email and full_name are required", e.Email)
		}
		switch staffing.EmployeeStatus(e.status()) {
		case staffing.EmployeeBanca, staffing.EmployeeAsignado, staffing.EmployeeInactivo:
		default:
			add("employee %q: unknown status %q", e.Email, e.Status)
		}
		if a := e.availability(); a < 0 || a > 100 {
			add("employee %q: availability_pct must be between 0 and 100", e.Email)
		}
		for name, lvl := range e.Skills {
			if !skills[strings.ToLower(name)] {
				add("employee %q: unknown skill %q", e.Email, name)
			}
			if !staffing.ValidLevel(lvl) {
				add("employee %q: level %d for %q out of range", e.Email, lvl, name)
			}
		}
	}

	for _, a := range f.Administrators {
		if strings.TrimSpace(a.Key) == "" || strings.TrimSpace(a.FullName) == "" {
			add("administrator %q: key and full_name are required", a.Key)
		}
	}

	projects := make(map[string]bool, len(f.Projects))
	for _, p := range f.Projects {
		if strings.TrimSpace(p.Key) == "" || strings.TrimSpace(p.Name) == "" {
			add("project %q: key and name are required", p.Key)
		}
		projects[strings.ToLower(p.Key)] = true
		if !staffing.ProjectStatus(strings.ToUpper(p.Status)).Valid() {
			add("project %q: unknown status %q", p.Key, p.Status)
		}
		if p.ManagerID == uuid.Nil {
			add("project %q: manager_id is required", p.Key)
		}
		for _, d := range []string{p.StartDate, p.EstimatedEnd} {
			if _, err := parseDate(d); err != nil {
				add("project %q: %v", p.Key, err)
			}
		}
	}

	for _, r := range f.Roles {
		if !projects[strings.ToLower(r.Project)] {
			add("role %q: unknown project %q", r.Key, r.Project)
		}
		if strings.TrimSpace(r.Title) == "" || strings.TrimSpace(r.Description) == "" {
			add("role %q: title and description are required", r.Key)
		}
		seen := make(map[string]bool, len(r.Skills))
		for _, req := range r.Skills {
			name := strings.ToLower(req.Skill)
			if !skills[name] {
				add("role %q: unknown skill %q", r.Key, req.Skill)
			}
			if seen[name] {
				add("role %q: duplicate skill %q", r.Key, req.Skill)
			}
			seen[name] = true
			if !staffing.ValidLevel(req.MinLevel) {
				add("role %q: min_level %d out of range", r.Key, req.MinLevel)
			}
			if !staffing.ValidImportance(req.Importance) {
				add("role %q: importance must be 1, 3 or 5", r.Key)
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidFixture, strings.Join(problems, "; "))
	}
	return nil
}

func (e FixtureEmployee) status() string {
	if s := strings.ToUpper(strings.TrimSpace(e.Status)); s != "" {
		return s
	}
	return string(staffing.EmployeeBanca)
}

func (e FixtureEmployee) availability() int {
	if e.Availability == nil {
		return 100
	}
	return *e.Availability
}

func parseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("date %q must be YYYY-MM-DD", raw)
	}
	return &t, nil
}

// FixtureSeeder upserts a Fixture inside one transaction.
type FixtureSeeder struct {
	Fixture Fixture
}

func (FixtureSeeder) Name() string { return "fixture" }

func (s FixtureSeeder) Run(ctx context.Context, db database.DB) error {
	if err := s.Fixture.Validate(); err != nil {
		return err
	}

	return database.WithTx(ctx, db, func(tx database.Tx) error {
		f := s.Fixture
		for _, sk := range f.Skills {
			if _, err := tx.Exec(ctx,
				`INSERT INTO skills (id, name, category) VALUES ($1, $2, $3)
				 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, category = EXCLUDED.category`,
				FixtureID("skill", sk.Name), strings.TrimSpace(sk.Name), strings.ToUpper(sk.Category),
			); err != nil {
				return fmt.Errorf("skill %q: %w", sk.Name, err)
			}
		}

		for _, e := range f.Employees {
			id := FixtureID("employee", e.Email)
			if _, err := tx.Exec(ctx,
				`INSERT INTO employees (id, full_name, email, status, availability_pct) VALUES ($1, $2, $3, $4, $5)
				 ON CONFLICT (id) DO UPDATE SET full_name = EXCLUDED.full_name, status = EXCLUDED.status,
				 availability_pct = EXCLUDED.availability_pct`,
				id, strings.TrimSpace(e.FullName), strings.TrimSpace(e.Email), e.status(), e.availability(),
			); err != nil {
				return fmt.Errorf("employee %q: %w", e.Email, err)
			}
			for name, lvl := range e.Skills {
				if _, err := tx.Exec(ctx,
					`INSERT INTO employee_skills (employee_id, skill_id, level) VALUES ($1, $2, $3)
					 ON CONFLICT (employee_id, skill_id) DO UPDATE SET level = EXCLUDED.level`,
					id, FixtureID("skill", name), lvl,
				); err != nil {
					return fmt.Errorf("employee %q skill %q: %w", e.Email, name, err)
				}
			}
		}

		for _, a := range f.Administrators {
			level := a.AccessLevel
			if level <= 0 {
				level = 1
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO administrators (id, full_name, department, access_level) VALUES ($1, $2, $3, $4)
				 ON CONFLICT (id) DO UPDATE SET full_name = EXCLUDED.full_name, department = EXCLUDED.department,
				 access_level = EXCLUDED.access_level`,
				FixtureID("administrator", a.Key), strings.TrimSpace(a.FullName), a.Department, level,
			); err != nil {
				return fmt.Errorf("administrator %q: %w", a.Key, err)
			}
		}

		for _, p := range f.Projects {
			start, _ := parseDate(p.StartDate)
			end, _ := parseDate(p.EstimatedEnd)
			if _, err := tx.Exec(ctx,
				`INSERT INTO projects (id, name, status, start_date, estimated_end_date, manager_id) VALUES ($1, $2, $3, $4, $5, $6)
				 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, status = EXCLUDED.status,
				 start_date = EXCLUDED.start_date, estimated_end_date = EXCLUDED.estimated_end_date,
				 manager_id = EXCLUDED.manager_id`,
				FixtureID("project", p.Key), strings.TrimSpace(p.Name), strings.ToUpper(p.Status), start, end, p.ManagerID,
			); err != nil {
				return fmt.Errorf("project %q: %w", p.Key, err)
			}
		}

		for _, r := range f.Roles {
			id := FixtureID("role", r.Key)
			if _, err := tx.Exec(ctx,
				`INSERT INTO roles (id, project_id, title, description, required_experience_level) VALUES ($1, $2, $3, $4, $5)
				 ON CONFLICT (id) DO NOTHING`,
				id, FixtureID("project", r.Project), strings.TrimSpace(r.Title), strings.TrimSpace(r.Description), r.RequiredExperienceLevel,
			); err != nil {
				return fmt.Errorf("role %q: %w", r.Key, err)
			}
			for _, req := range r.Skills {
				if _, err := tx.Exec(ctx,
					`INSERT INTO role_skill_requirements (role_id, skill_id, min_level, importance) VALUES ($1, $2, $3, $4)
					 ON CONFLICT (role_id, skill_id) DO NOTHING`,
					id, FixtureID("skill", req.Skill), req.MinLevel, req.Importance,
				); err != nil {
					return fmt.Errorf("role %q skill %q: %w", r.Key, req.Skill, err)
				}
			}
		}
		return nil
	})
}
