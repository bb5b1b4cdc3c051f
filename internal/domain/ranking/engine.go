package ranking

import (
	"sort"

	"github.com/google/uuid"
)

type CandidateSkill struct {
	SkillID   uuid.UUID
	SkillName string
	Level     int
}

type Requirement struct {
	SkillID    uuid.UUID
	SkillName  string
	MinLevel   int
	Importance int
}

type Candidate struct {
	EmployeeID      uuid.UUID
	FullName        string
	AvailabilityPct int
	Skills          []CandidateSkill
}

type SkillFit struct {
	SkillID      uuid.UUID
	SkillName    string
	MinLevel     int
	Demonstrated int
	Importance   int
	Fulfillment  float64
}

type Result struct {
	Score   float64
	Matched []SkillFit
	Missing []SkillFit
}

type Ranked struct {
	EmployeeID      uuid.UUID
	FullName        string
	Score           float64
	AvailabilityPct int
	Matched         []SkillFit
	Missing         []SkillFit
}

// Calculate scores one candidate against a role's requirements.
//
// Each requirement contributes importance * min(demonstrated/min, 1); the sum
// is normalised by the total importance and scaled to 0-100. A role without
// requirements scores 100.
func Calculate(skills []CandidateSkill, reqs []Requirement) Result {
	levelBySkillID := make(map[uuid.UUID]int, len(skills))
	for _, s := range skills {
		if s.SkillID == uuid.Nil {
			continue
		}
		levelBySkillID[s.SkillID] = clampInt(s.Level, 0, 5)
	}

	matched := make([]SkillFit, 0, len(reqs))
	missing := make([]SkillFit, 0)

	var weighted float64
	var totalWeight float64
	for _, r := range reqs {
		if r.SkillID == uuid.Nil {
			continue
		}
		minLvl := clampInt(r.MinLevel, 1, 5)
		weight := r.Importance
		if weight < 1 {
			weight = 1
		}

		demonstrated := levelBySkillID[r.SkillID]
		fit := fulfillment(demonstrated, minLvl)

		weighted += float64(weight) * fit
		totalWeight += float64(weight)

		sf := SkillFit{
			SkillID:      r.SkillID,
			SkillName:    r.SkillName,
			MinLevel:     minLvl,
			Demonstrated: demonstrated,
			Importance:   weight,
			Fulfillment:  fit,
		}
		if demonstrated <= 0 {
			missing = append(missing, sf)
			continue
		}
		matched = append(matched, sf)
	}

	if totalWeight == 0 {
		return Result{Score: 100, Matched: matched, Missing: missing}
	}

	score := 100 * weighted / totalWeight
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return Result{Score: score, Matched: matched, Missing: missing}
}

// Rank scores every candidate and orders them by score, then availability,
// then employee id. No candidate is dropped.
func Rank(candidates []Candidate, reqs []Requirement) []Ranked {
	out := make([]Ranked, 0, len(candidates))
	for _, c := range candidates {
		res := Calculate(c.Skills, reqs)
		out = append(out, Ranked{
			EmployeeID:      c.EmployeeID,
			FullName:        c.FullName,
			Score:           res.Score,
			AvailabilityPct: c.AvailabilityPct,
			Matched:         res.Matched,
			Missing:         res.Missing,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].AvailabilityPct != out[j].AvailabilityPct {
			return out[i].AvailabilityPct > out[j].AvailabilityPct
		}
		return out[i].EmployeeID.String() < out[j].EmployeeID.String()
	})
	return out
}

func fulfillment(demonstrated, minLvl int) float64 {
	if demonstrated <= 0 {
		return 0
	}
	if demonstrated >= minLvl {
		return 1
	}
	return float64(demonstrated) / float64(minLvl)
}

func clampInt(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}
