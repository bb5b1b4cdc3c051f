package integration

import (
	"context"
	"errors"
	"math"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"staffing-hub/internal/config"
	"staffing-hub/internal/database"
	"staffing-hub/internal/database/migration"
	dbpostgres "staffing-hub/internal/database/postgres"
	"staffing-hub/internal/database/seeder"
	"staffing-hub/internal/domain/request"
	"staffing-hub/internal/repository"
	"staffing-hub/internal/usecase"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type workflow struct {
	ranking  *usecase.Ranking
	requests *usecase.Requests
	slots    *usecase.Slots

	fixture seeder.Fixture
	suffix  string
}

func (w workflow) id(kind, key string) uuid.UUID {
	return seeder.FixtureID(kind, key+"-"+w.suffix)
}

func TestIntegration_StaffingWorkflow(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	db := connectTestDB(t, ctx)
	defer func() { _ = db.Close() }()

	runMigrations(t, ctx, db)

	w := newWorkflow(t, ctx, db)
	defer cleanupFixture(t, db, w)

	frontend := w.id("role", "frontend")
	ana := w.id("employee", "ana@example.com")
	bruno := w.id("employee", "bruno@example.com")
	gone := w.id("employee", "gone@example.com")
	admin := w.id("administrator", "ops")
	project := w.id("project", "portal")

	t.Run("ranking orders by weighted fit", func(t *testing.T) {
		out, err := w.ranking.RankCandidates(ctx, frontend)
		if err != nil {
			t.Fatalf("rank: %v", err)
		}
		scores := map[uuid.UUID]float64{}
		order := map[uuid.UUID]int{}
		for i, c := range out.Candidates {
			scores[c.EmployeeID] = c.Score
			order[c.EmployeeID] = i
		}
		if _, ok := scores[gone]; ok {
			t.Fatalf("inactive employee must not be ranked")
		}
		if math.Abs(scores[ana]-500.0/6.0) > 0.01 || math.Abs(scores[bruno]-800.0/18.0) > 0.01 {
			t.Fatalf("unexpected scores ana=%v bruno=%v", scores[ana], scores[bruno])
		}
		if order[ana] > order[bruno] {
			t.Fatalf("expected ana ranked before bruno")
		}
	})

	t.Run("single pending request per employee", func(t *testing.T) {
		in := usecase.CreateRequestInput{
			EmployeeID: ana, RoleID: frontend, AdministratorID: admin, Justification: "strong React", Urgency: 4,
		}
		first, err := w.requests.Create(ctx, in)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if _, err := w.requests.Create(ctx, in); !errors.Is(err, usecase.ErrAlreadyPending) {
			t.Fatalf("expected ErrAlreadyPending, got %v", err)
		}

		if _, err := w.requests.Resolve(ctx, first.ID, usecase.ResolveRequestInput{
			Outcome: request.StateRechazada, Comments: "not now",
		}); err != nil {
			t.Fatalf("reject: %v", err)
		}
		if _, err := w.requests.Resolve(ctx, first.ID, usecase.ResolveRequestInput{
			Outcome: request.StateAprobada,
		}); !errors.Is(err, usecase.ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
		if ok, err := w.requests.CanSubmit(ctx, ana); err != nil || !ok {
			t.Fatalf("expected ana to be able to submit again, ok=%v err=%v", ok, err)
		}
	})

	t.Run("concurrent creates admit exactly one", func(t *testing.T) {
		const n = 8
		var wg sync.WaitGroup
		var mu sync.Mutex
		created, pending := 0, 0
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := w.requests.Create(ctx, usecase.CreateRequestInput{
					EmployeeID: bruno, RoleID: frontend, AdministratorID: admin, Justification: "race", Urgency: 2,
				})
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					created++
				case errors.Is(err, usecase.ErrAlreadyPending):
					pending++
				default:
					t.Errorf("unexpected err: %v", err)
				}
			}()
		}
		wg.Wait()
		if created != 1 || pending != n-1 {
			t.Fatalf("expected 1 created and %d pending, got %d and %d", n-1, created, pending)
		}
	})

	t.Run("approval materializes the assignment", func(t *testing.T) {
		req, err := w.requests.Create(ctx, usecase.CreateRequestInput{
			EmployeeID: ana, RoleID: frontend, AdministratorID: admin, Justification: "second try", Urgency: 5,
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		approved, err := w.requests.Resolve(ctx, req.ID, usecase.ResolveRequestInput{
			Outcome: request.StateAprobada, Comments: "welcome", ResolvedBy: &admin,
		})
		if err != nil {
			t.Fatalf("approve: %v", err)
		}
		a, err := w.slots.MaterializeAssignment(ctx, approved.ID, false)
		if err != nil {
			t.Fatalf("materialize: %v", err)
		}
		if a.EmployeeID != ana || a.RoleID != frontend || !a.Active {
			t.Fatalf("unexpected assignment: %+v", a)
		}

		out, err := w.slots.ClassifyRoles(ctx, []uuid.UUID{project}, nil)
		if err != nil {
			t.Fatalf("classify: %v", err)
		}
		found := false
		for _, e := range out.Asignados {
			if e.Role.ID == frontend {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected frontend role to be assigned: %+v", out)
		}
	})

	t.Run("list filters by project name", func(t *testing.T) {
		items, err := w.requests.List(ctx, usecase.ListRequestsParams{Project: "portal " + w.suffix})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(items) != 3 {
			t.Fatalf("expected 3 requests for the project, got %d", len(items))
		}
		for i := 1; i < len(items); i++ {
			if items[i].CreatedAt.After(items[i-1].CreatedAt) {
				t.Fatalf("expected newest first")
			}
		}
	})
}

func newWorkflow(t *testing.T, ctx context.Context, db database.DB) workflow {
	t.Helper()

	suffix := uuid.NewString()[:8]
	key := func(k string) string { return k + "-" + suffix }
	react, node := "React "+suffix, "Node "+suffix
	availability := 100

	f := seeder.Fixture{
		Skills: []seeder.FixtureSkill{
			{Name: react, Category: "TECHNICAL"},
			{Name: node, Category: "TECHNICAL"},
		},
		Employees: []seeder.FixtureEmployee{
			{Email: key("ana@example.com"), FullName: "Ana " + suffix, Availability: &availability, Skills: map[string]int{react: 3}},
			{Email: key("bruno@example.com"), FullName: "Bruno " + suffix, Availability: &availability, Skills: map[string]int{react: 1, node: 2}},
			{Email: key("gone@example.com"), FullName: "Gone " + suffix, Status: "INACTIVO", Skills: map[string]int{react: 5, node: 5}},
		},
		Administrators: []seeder.FixtureAdministrator{{Key: key("ops"), FullName: "Olga " + suffix}},
		Projects: []seeder.FixtureProject{{
			Key: key("portal"), Name: "Portal " + suffix, Status: "ACTIVO", ManagerID: uuid.New(),
		}},
		Roles: []seeder.FixtureRole{{
			Key: key("frontend"), Project: key("portal"), Title: "Frontend", Description: "Portal UI",
			Skills: []seeder.FixtureRequirement{
				{Skill: react, MinLevel: 3, Importance: 5},
				{Skill: node, MinLevel: 2, Importance: 1},
			},
		}},
	}
	if err := (seeder.FixtureSeeder{Fixture: f}).Run(ctx, db); err != nil {
		t.Fatalf("seed: %v", err)
	}

	directory := repository.NewPostgresDirectoryRepository(db)
	profiles := repository.NewPostgresSkillProfileRepository(db)
	roles := repository.NewPostgresRoleRepository(db)
	requests := repository.NewPostgresRequestRepository(db)
	assignments := repository.NewPostgresAssignmentRepository(db)
	logger := zerolog.Nop()

	return workflow{
		ranking:  usecase.NewRankingUsecase(roles, profiles, nil, logger),
		requests: usecase.NewRequestUsecase(requests, directory, directory, roles, nil, logger),
		slots:    usecase.NewSlotUsecase(roles, directory, assignments, requests, profiles, nil, nil, logger),
		fixture:  f,
		suffix:   suffix,
	}
}

func cleanupFixture(t *testing.T, db database.DB, w workflow) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	employees := make([]uuid.UUID, 0, len(w.fixture.Employees))
	for _, e := range w.fixture.Employees {
		employees = append(employees, seeder.FixtureID("employee", e.Email))
	}
	skills := make([]uuid.UUID, 0, len(w.fixture.Skills))
	for _, s := range w.fixture.Skills {
		skills = append(skills, seeder.FixtureID("skill", s.Name))
	}
	role := w.id("role", "frontend")
	project := w.id("project", "portal")
	admin := w.id("administrator", "ops")

	stmts := []struct {
		q    string
		args []any
	}{
		{`DELETE FROM assignments WHERE role_id = $1`, []any{role}},
		{`DELETE FROM assignment_requests WHERE employee_id = ANY($1)`, []any{employees}},
		{`DELETE FROM roles WHERE id = $1`, []any{role}},
		{`DELETE FROM projects WHERE id = $1`, []any{project}},
		{`DELETE FROM administrators WHERE id = $1`, []any{admin}},
		{`DELETE FROM employees WHERE id = ANY($1)`, []any{employees}},
		{`DELETE FROM skills WHERE id = ANY($1)`, []any{skills}},
	}
	for _, s := range stmts {
		if _, err := db.Exec(ctx, s.q, s.args...); err != nil {
			t.Errorf("cleanup %q: %v", s.q, err)
		}
	}
}

func connectTestDB(t *testing.T, ctx context.Context) database.DB {
	t.Helper()

	host := stringsOrDefault(os.Getenv("STAFFING_TEST_DB_HOST"), os.Getenv("DB_HOST"))
	port := stringsOrDefault(os.Getenv("STAFFING_TEST_DB_PORT"), os.Getenv("DB_PORT"))
	name := stringsOrDefault(os.Getenv("STAFFING_TEST_DB_NAME"), os.Getenv("DB_NAME"))
	user := stringsOrDefault(os.Getenv("STAFFING_TEST_DB_USER"), os.Getenv("DB_USER"))
	pass := stringsOrDefault(os.Getenv("STAFFING_TEST_DB_PASSWORD"), os.Getenv("DB_PASSWORD"))
	ssl := stringsOrDefault(os.Getenv("STAFFING_TEST_DB_SSL_MODE"), os.Getenv("DB_SSL_MODE"))

	if host == "" || port == "" || name == "" || user == "" {
		t.Skip("missing test DB env vars: set STAFFING_TEST_DB_HOST/PORT/NAME/USER/PASSWORD (or DB_HOST/DB_PORT/DB_NAME/DB_USER/DB_PASSWORD)")
	}
	if ssl == "" {
		ssl = "disable"
	}

	db, err := dbpostgres.Connect(ctx, config.DatabaseConfig{
		DBHost:     host,
		DBPort:     port,
		DBName:     name,
		DBUser:     user,
		DBPassword: pass,
		DBSSLMode:  ssl,
	})
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return db
}

func runMigrations(t *testing.T, ctx context.Context, db database.DB) {
	t.Helper()
	r := migration.Runner{Logger: zerolog.Nop()}
	if err := r.Run(ctx, db.SQLDB()); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
}

func stringsOrDefault(v, def string) string {
	if strings.TrimSpace(v) != "" {
		return v
	}
	return def
}
