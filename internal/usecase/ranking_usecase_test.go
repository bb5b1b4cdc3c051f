package usecase

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"staffing-hub/internal/domain/staffing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func TestRanking_ScenarioOrdersByWeightedFit(t *testing.T) {
	store := newMemStore()
	react := store.addSkill("React")
	node := store.addSkill("Node")
	project := store.addProject("Portal", staffing.ProjectActivo, uuid.New())
	role := store.addRole(project, "Frontend",
		staffing.RoleSkillRequirement{SkillID: react, MinLevel: 3, Importance: 5},
		staffing.RoleSkillRequirement{SkillID: node, MinLevel: 2, Importance: 1},
	)
	a := store.addEmployee("A", staffing.EmployeeBanca, 100, map[uuid.UUID]int{react: 3})
	b := store.addEmployee("B", staffing.EmployeeBanca, 100, map[uuid.UUID]int{react: 1, node: 2})
	store.addEmployee("Gone", staffing.EmployeeInactivo, 100, map[uuid.UUID]int{react: 5, node: 5})

	uc := NewRankingUsecase(store, store, nil, zerolog.Nop())
	out, err := uc.RankCandidates(context.Background(), role)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(out.Candidates) != 2 {
		t.Fatalf("expected 2 eligible candidates, got %d", len(out.Candidates))
	}
	if out.Candidates[0].EmployeeID != a || out.Candidates[1].EmployeeID != b {
		t.Fatalf("expected A before B")
	}
	if math.Abs(out.Candidates[0].Score-500.0/6.0) > 0.01 {
		t.Fatalf("expected A ~83.3, got %v", out.Candidates[0].Score)
	}
	if math.Abs(out.Candidates[1].Score-800.0/18.0) > 0.01 {
		t.Fatalf("expected B ~44.4, got %v", out.Candidates[1].Score)
	}
}

func TestRanking_UnknownAndDeletedRole(t *testing.T) {
	store := newMemStore()
	project := store.addProject("Portal", staffing.ProjectActivo, uuid.New())
	role := store.addRole(project, "QA")
	r := store.roles[role]
	now := time.Now()
	r.DeletedAt = &now
	store.roles[role] = r

	uc := NewRankingUsecase(store, store, nil, zerolog.Nop())
	if _, err := uc.RankCandidates(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown role, got %v", err)
	}
	if _, err := uc.RankCandidates(context.Background(), role); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for deleted role, got %v", err)
	}
}

func TestRanking_EmptyPool(t *testing.T) {
	store := newMemStore()
	project := store.addProject("Portal", staffing.ProjectActivo, uuid.New())
	role := store.addRole(project, "QA")

	uc := NewRankingUsecase(store, store, nil, zerolog.Nop())
	out, err := uc.RankCandidates(context.Background(), role)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.Candidates == nil || len(out.Candidates) != 0 {
		t.Fatalf("expected empty, non-nil result")
	}
}

func TestRanking_CachesPerRole(t *testing.T) {
	store := newMemStore()
	goSkill := store.addSkill("Go")
	project := store.addProject("Portal", staffing.ProjectActivo, uuid.New())
	role := store.addRole(project, "Backend", staffing.RoleSkillRequirement{SkillID: goSkill, MinLevel: 2, Importance: 3})
	store.addEmployee("A", staffing.EmployeeBanca, 100, map[uuid.UUID]int{goSkill: 2})

	cache := newMemCache()
	uc := NewRankingUsecase(store, store, cache, zerolog.Nop())
	ctx := context.Background()

	first, err := uc.RankCandidates(ctx, role)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, ok := cache.entries[RankingCacheKey(role)]; !ok {
		t.Fatalf("expected ranking to be cached")
	}

	store.addEmployee("B", staffing.EmployeeBanca, 100, map[uuid.UUID]int{goSkill: 5})
	second, err := uc.RankCandidates(ctx, role)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(second.Candidates) != len(first.Candidates) {
		t.Fatalf("expected cached result, got %d candidates", len(second.Candidates))
	}

	invalidateRanking(ctx, cache, role)
	third, err := uc.RankCandidates(ctx, role)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(third.Candidates) != 2 {
		t.Fatalf("expected recomputed ranking with 2 candidates, got %d", len(third.Candidates))
	}
}

func TestRanking_LockHeldFallsBackToCompute(t *testing.T) {
	store := newMemStore()
	project := store.addProject("Portal", staffing.ProjectActivo, uuid.New())
	role := store.addRole(project, "QA")
	store.addEmployee("A", staffing.EmployeeBanca, 50, nil)

	cache := newMemCache()
	cache.locks[rankingLockKey(role)] = true

	uc := NewRankingUsecase(store, store, cache, zerolog.Nop())
	uc.lockWait = time.Millisecond

	out, err := uc.RankCandidates(context.Background(), role)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(out.Candidates) != 1 || out.Candidates[0].Score != 100 {
		t.Fatalf("expected one candidate scored 100, got %+v", out.Candidates)
	}
	if !cache.locks[rankingLockKey(role)] {
		t.Fatalf("a lock held by another caller must not be released")
	}
}

func TestRanking_ComputeFailureReleasesLock(t *testing.T) {
	store := newMemStore()
	project := store.addProject("Portal", staffing.ProjectActivo, uuid.New())
	role := store.addRole(project, "QA")
	store.eligibleErr = errors.New("connection reset")

	cache := newMemCache()
	uc := NewRankingUsecase(store, store, cache, zerolog.Nop())

	if _, err := uc.RankCandidates(context.Background(), role); !errors.Is(err, ErrInternal) {
		t.Fatalf("expected ErrInternal, got %v", err)
	}
	if cache.locks[rankingLockKey(role)] {
		t.Fatalf("expected rebuild lock to be released after a failed compute")
	}
	if _, ok := cache.entries[RankingCacheKey(role)]; ok {
		t.Fatalf("failed compute must not be cached")
	}

	store.eligibleErr = nil
	if _, err := uc.RankCandidates(context.Background(), role); err != nil {
		t.Fatalf("expected recovery once the store is back, got %v", err)
	}
}
