package seeder

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"staffing-hub/internal/database"

	"github.com/rs/zerolog"
)

const validFixture = `
skills:
  - name: React
    category: technical
  - name: Node
    category: TECHNICAL
employees:
  - email: ana@example.com
    full_name: Ana
    skills:
      react: 3
  - email: bruno@example.com
    full_name: Bruno
    status: asignado
    availability_pct: 40
    skills:
      React: 1
      Node: 2
administrators:
  - key: ops
    full_name: Olga
projects:
  - key: portal
    name: Portal Clientes
    status: ACTIVO
    manager_id: 7f1c2a4e-3a58-4d53-9a44-7a0a3c1e2b10
    start_date: "2026-01-15"
roles:
  - key: portal-frontend
    project: portal
    title: Frontend Developer
    description: Builds the customer portal
    skills:
      - skill: React
        min_level: 3
        importance: 5
      - skill: Node
        min_level: 2
        importance: 1
`

func TestLoadFixture_Valid(t *testing.T) {
	f, err := LoadFixture(strings.NewReader(validFixture))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(f.Skills) != 2 || len(f.Employees) != 2 || len(f.Roles) != 1 {
		t.Fatalf("unexpected fixture: %+v", f)
	}
	if f.Employees[0].status() != "BANCA" || f.Employees[0].availability() != 100 {
		t.Fatalf("expected defaults for the first employee")
	}
	if f.Employees[1].status() != "ASIGNADO" || f.Employees[1].availability() != 40 {
		t.Fatalf("unexpected second employee: %+v", f.Employees[1])
	}
}

func TestLoadFixture_Invalid(t *testing.T) {
	cases := map[string]string{
		"unknown skill on role": strings.Replace(validFixture, "- skill: Node", "- skill: Rust", 1),
		"bad importance":        strings.Replace(validFixture, "importance: 1", "importance: 2", 1),
		"bad project status":    strings.Replace(validFixture, "status: ACTIVO", "status: OPEN", 1),
		"bad date":              strings.Replace(validFixture, `"2026-01-15"`, `"15/01/2026"`, 1),
		"unknown project":       strings.Replace(validFixture, "project: portal", "project: intranet", 1),
		"bad level":             strings.Replace(validFixture, "react: 3", "react: 9", 1),
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadFixture(strings.NewReader(doc)); !errors.Is(err, ErrInvalidFixture) {
				t.Fatalf("expected ErrInvalidFixture, got %v", err)
			}
		})
	}
}

func TestLoadFixture_UnknownFieldRejected(t *testing.T) {
	doc := validFixture + "\nteams: []\n"
	if _, err := LoadFixture(strings.NewReader(doc)); err == nil {
		t.Fatalf("expected decode error for unknown field")
	}
}

func TestFixtureID_IsStableAndCaseInsensitive(t *testing.T) {
	if FixtureID("skill", "React") != FixtureID("skill", " react ") {
		t.Fatalf("expected case-insensitive ids")
	}
	if FixtureID("skill", "react") == FixtureID("role", "react") {
		t.Fatalf("expected kind to separate id spaces")
	}
}

type recordingTx struct {
	execs     []string
	failOn    string
	committed bool
}

func (t *recordingTx) Exec(_ context.Context, query string, _ ...any) (int64, error) {
	if t.failOn != "" && strings.Contains(query, t.failOn) {
		return 0, errors.New("boom")
	}
	t.execs = append(t.execs, query)
	return 1, nil
}

func (t *recordingTx) Query(context.Context, string, ...any) (database.Rows, error) {
	return nil, errors.New("not supported")
}

func (t *recordingTx) QueryRow(context.Context, string, ...any) database.Row { return nil }

func (t *recordingTx) Commit(context.Context) error {
	t.committed = true
	return nil
}

func (t *recordingTx) Rollback(context.Context) error { return nil }

type recordingDB struct {
	*recordingTx
}

func (d recordingDB) Ping(context.Context) error { return nil }

func (d recordingDB) Close() error { return nil }

func (d recordingDB) Begin(context.Context) (database.Tx, error) { return d.recordingTx, nil }

func (d recordingDB) SQLDB() *sql.DB { return nil }

func countPrefix(stmts []string, prefix string) int {
	n := 0
	for _, s := range stmts {
		if strings.HasPrefix(s, prefix) {
			n++
		}
	}
	return n
}

func TestRunner_SeedsFixtureInOneTransaction(t *testing.T) {
	f, err := LoadFixture(strings.NewReader(validFixture))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	tx := &recordingTx{}
	r := Runner{Seeders: []Seeder{FixtureSeeder{Fixture: f}}, Logger: zerolog.Nop()}

	if err := r.Run(context.Background(), recordingDB{tx}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !tx.committed {
		t.Fatalf("expected commit")
	}
	if got := countPrefix(tx.execs, "INSERT INTO skills"); got != 2 {
		t.Fatalf("expected 2 skill upserts, got %d", got)
	}
	if got := countPrefix(tx.execs, "INSERT INTO employee_skills"); got != 3 {
		t.Fatalf("expected 3 employee skill upserts, got %d", got)
	}
	if got := countPrefix(tx.execs, "INSERT INTO role_skill_requirements"); got != 2 {
		t.Fatalf("expected 2 requirement inserts, got %d", got)
	}
}

func TestRunner_WrapsSeederError(t *testing.T) {
	f, err := LoadFixture(strings.NewReader(validFixture))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	tx := &recordingTx{failOn: "INSERT INTO roles"}
	r := Runner{Seeders: []Seeder{FixtureSeeder{Fixture: f}}, Logger: zerolog.Nop()}

	err = r.Run(context.Background(), recordingDB{tx})
	if err == nil || !strings.Contains(err.Error(), "seed fixture") {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if tx.committed {
		t.Fatalf("expected no commit on failure")
	}
}
