package usecase

import (
	"context"
	"errors"
	"time"

	"staffing-hub/internal/domain/ranking"
	"staffing-hub/internal/domain/staffing"
	"staffing-hub/internal/metrics"
	"staffing-hub/internal/repository"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// CandidateRanking is the ranked pool for one role. It is what gets cached.
type CandidateRanking struct {
	RoleID     uuid.UUID        `json:"role_id"`
	Candidates []ranking.Ranked `json:"candidates"`
	RankedAt   time.Time        `json:"ranked_at"`
}

type RankingUsecase interface {
	RankCandidates(ctx context.Context, roleID uuid.UUID) (CandidateRanking, error)
}

type Ranking struct {
	roles    repository.RoleRepository
	profiles repository.SkillProfileRepository
	cache    RankingCache
	log      zerolog.Logger

	lockWait time.Duration
	now      func() time.Time
}

func NewRankingUsecase(roles repository.RoleRepository, profiles repository.SkillProfileRepository, cache RankingCache, logger zerolog.Logger) *Ranking {
	return &Ranking{
		roles:    roles,
		profiles: profiles,
		cache:    cache,
		log:      logger.With().Str("component", "ranking").Logger(),
		lockWait: 300 * time.Millisecond,
		now:      time.Now,
	}
}

// RankCandidates scores every eligible employee against the role's
// requirements. The result is cached per role; when another caller holds the
// rebuild lock we wait briefly for its result before computing our own.
func (u *Ranking) RankCandidates(ctx context.Context, roleID uuid.UUID) (CandidateRanking, error) {
	if roleID == uuid.Nil {
		return CandidateRanking{}, validationf("role id is required")
	}

	role, err := u.roles.FindByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, repository.ErrRoleNotFound) {
			return CandidateRanking{}, ErrNotFound
		}
		u.log.Error().Err(err).Str("role_id", roleID.String()).Msg("load role")
		return CandidateRanking{}, ErrInternal
	}
	if role.Deleted() {
		return CandidateRanking{}, ErrNotFound
	}

	cacheKey := RankingCacheKey(roleID)
	if out, ok := u.fromCache(ctx, cacheKey); ok {
		return out, nil
	}

	if u.cache != nil {
		lockKey := rankingLockKey(roleID)
		ok, err := u.cache.SetIfNotExists(ctx, lockKey, "1", 30*time.Second)
		if err == nil && ok {
			defer func() { _ = u.cache.Delete(context.WithoutCancel(ctx), lockKey) }()
		}
		if err == nil && !ok {
			select {
			case <-ctx.Done():
				return CandidateRanking{}, ctx.Err()
			case <-time.After(u.lockWait):
			}
			if out, ok := u.fromCache(ctx, cacheKey); ok {
				return out, nil
			}
			u.log.Debug().Str("role_id", roleID.String()).Msg("ranking lock wait fallback")
		}
	}

	timer := prometheus.NewTimer(metrics.RankingDuration.WithLabelValues("compute"))
	out, err := u.compute(ctx, role)
	timer.ObserveDuration()
	if err != nil {
		return CandidateRanking{}, err
	}

	if u.cache != nil {
		_ = u.cache.SetJSON(ctx, cacheKey, out, 0)
	}
	return out, nil
}

func (u *Ranking) fromCache(ctx context.Context, key string) (CandidateRanking, bool) {
	if u.cache == nil {
		return CandidateRanking{}, false
	}
	var cached CandidateRanking
	hit, err := u.cache.GetJSON(ctx, key, &cached)
	if err != nil || !hit {
		return CandidateRanking{}, false
	}
	u.log.Debug().Str("key", key).Msg("ranking cache hit")
	return cached, true
}

func (u *Ranking) compute(ctx context.Context, role staffing.Role) (CandidateRanking, error) {
	reqs := role.Requirements
	if reqs == nil {
		loaded, err := u.profiles.FindRequirementsByRoleID(ctx, role.ID)
		if err != nil {
			u.log.Error().Err(err).Str("role_id", role.ID.String()).Msg("load requirements")
			return CandidateRanking{}, ErrInternal
		}
		reqs = loaded
	}

	employees, err := u.profiles.ListEligibleEmployees(ctx)
	if err != nil {
		u.log.Error().Err(err).Msg("list eligible employees")
		return CandidateRanking{}, ErrInternal
	}

	ids := make([]uuid.UUID, 0, len(employees))
	for _, e := range employees {
		if e.Eligible() {
			ids = append(ids, e.ID)
		}
	}
	skillsByEmployee, err := u.profiles.FindSkillsByEmployeeIDs(ctx, ids)
	if err != nil {
		u.log.Error().Err(err).Msg("load employee skills")
		return CandidateRanking{}, ErrInternal
	}

	candidates := make([]ranking.Candidate, 0, len(ids))
	for _, e := range employees {
		if !e.Eligible() {
			continue
		}
		skills := skillsByEmployee[e.ID]
		cs := make([]ranking.CandidateSkill, 0, len(skills))
		for _, s := range skills {
			cs = append(cs, ranking.CandidateSkill{SkillID: s.SkillID, SkillName: s.SkillName, Level: s.Level})
		}
		candidates = append(candidates, ranking.Candidate{
			EmployeeID:      e.ID,
			FullName:        e.FullName,
			AvailabilityPct: e.AvailabilityPct,
			Skills:          cs,
		})
	}

	rr := make([]ranking.Requirement, 0, len(reqs))
	for _, r := range reqs {
		rr = append(rr, ranking.Requirement{
			SkillID:    r.SkillID,
			SkillName:  r.SkillName,
			MinLevel:   r.MinLevel,
			Importance: r.Importance,
		})
	}

	return CandidateRanking{
		RoleID:     role.ID,
		Candidates: ranking.Rank(candidates, rr),
		RankedAt:   u.now().UTC(),
	}, nil
}
