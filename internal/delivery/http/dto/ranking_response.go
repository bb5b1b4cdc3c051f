package dto

import (
	"math"
	"time"

	"staffing-hub/internal/domain/ranking"
	"staffing-hub/internal/usecase"

	"github.com/google/uuid"
)

type SkillFitResponse struct {
	SkillID      uuid.UUID `json:"skill_id"`
	SkillName    string    `json:"skill_name"`
	MinLevel     int       `json:"min_level"`
	Demonstrated int       `json:"demonstrated_level"`
	Importance   int       `json:"importance"`
	Fulfillment  float64   `json:"fulfillment"`
}

type CandidateResponse struct {
	EmployeeID         uuid.UUID          `json:"employee_id"`
	FullName           string             `json:"full_name"`
	CompatibilityScore float64            `json:"compatibility_score"`
	AvailabilityPct    int                `json:"availability_pct"`
	MatchedSkills      []SkillFitResponse `json:"matched_skills"`
	MissingSkills      []SkillFitResponse `json:"missing_skills"`
}

type RankingResponse struct {
	RoleID     uuid.UUID           `json:"role_id"`
	RankedAt   time.Time           `json:"ranked_at"`
	Candidates []CandidateResponse `json:"candidates"`
}

func NewRankingResponse(r usecase.CandidateRanking) RankingResponse {
	out := RankingResponse{
		RoleID:     r.RoleID,
		RankedAt:   r.RankedAt,
		Candidates: make([]CandidateResponse, 0, len(r.Candidates)),
	}
	for _, c := range r.Candidates {
		out.Candidates = append(out.Candidates, CandidateResponse{
			EmployeeID:         c.EmployeeID,
			FullName:           c.FullName,
			CompatibilityScore: round1(c.Score),
			AvailabilityPct:    c.AvailabilityPct,
			MatchedSkills:      skillFits(c.Matched),
			MissingSkills:      skillFits(c.Missing),
		})
	}
	return out
}

func skillFits(in []ranking.SkillFit) []SkillFitResponse {
	out := make([]SkillFitResponse, 0, len(in))
	for _, f := range in {
		out = append(out, SkillFitResponse{
			SkillID:      f.SkillID,
			SkillName:    f.SkillName,
			MinLevel:     f.MinLevel,
			Demonstrated: f.Demonstrated,
			Importance:   f.Importance,
			Fulfillment:  math.Round(f.Fulfillment*100) / 100,
		})
	}
	return out
}

// round1 rounds a score to one decimal for display; ordering is decided on
// the unrounded value.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
