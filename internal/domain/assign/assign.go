// Package assign ranks an organization's active employees against a task's
// required skills.
package assign

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/rizeos/workforce/internal/adapters/repository"
	"github.com/rizeos/workforce/pkg/metrics"
)

// Blend weights and ranking bounds.
const (
	skillWeight        = 0.70
	productivityWeight = 0.30

	// DefaultProductivityScore stands in for employees without a score row.
	DefaultProductivityScore = 50

	// highProductivityThreshold gates the productivity remark in explanations.
	highProductivityThreshold = 80

	maxCandidates = 3
)

// CandidateSource yields an organization's active employees with their
// productivity scores, nil when no score row exists.
type CandidateSource interface {
	ActiveWithScores(ctx context.Context, orgID string) ([]repository.Candidate, error)
}

// Candidate is one ranked assignment recommendation.
type Candidate struct {
	EmployeeID    string   `json:"employee_id"`
	Name          string   `json:"name"`
	Role          string   `json:"role"`
	MatchedSkills []string `json:"matched_skills"`
	MatchScore    int      `json:"match_score"`
	Explanation   string   `json:"explanation"`
}

// Engine is a pure read-and-rank recommender with no side effects.
type Engine struct {
	source CandidateSource
}

// NewEngine creates a smart-assign engine over the given source.
func NewEngine(source CandidateSource) *Engine {
	return &Engine{source: source}
}

// Recommend ranks the org's active employees against requiredSkills and
// returns at most three candidates with a positive match score, sorted by
// score descending. Ties break on ascending employee id so results are
// reproducible.
func (e *Engine) Recommend(ctx context.Context, orgID string, requiredSkills []string) ([]Candidate, error) {
	if len(requiredSkills) == 0 {
		return nil, ErrNoRequiredSkills
	}
	metrics.RecordAssignRequest()

	employees, err := e.source.ActiveWithScores(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}

	candidates := make([]Candidate, 0, len(employees))
	for _, emp := range employees {
		matched := intersect(requiredSkills, emp.Employee.Skills)
		skillMatch := float64(len(matched)) / float64(len(requiredSkills))

		productivity := DefaultProductivityScore
		if emp.Productivity != nil {
			productivity = *emp.Productivity
		}
		normalizedProductivity := float64(productivity) / 100

		score := skillMatch*skillWeight + normalizedProductivity*productivityWeight

		explanation := fmt.Sprintf("%d%% skill match.", int(math.Round(skillMatch*100)))
		if productivity > highProductivityThreshold {
			explanation += " High historical productivity."
		}

		candidates = append(candidates, Candidate{
			EmployeeID:    emp.Employee.ID,
			Name:          emp.Employee.Name,
			Role:          emp.Employee.Role,
			MatchedSkills: matched,
			MatchScore:    int(math.Round(score * 100)),
			Explanation:   explanation,
		})
	}

	ranked := candidates[:0]
	for _, c := range candidates {
		if c.MatchScore > 0 {
			ranked = append(ranked, c)
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].MatchScore != ranked[j].MatchScore {
			return ranked[i].MatchScore > ranked[j].MatchScore
		}
		return ranked[i].EmployeeID < ranked[j].EmployeeID
	})
	if len(ranked) > maxCandidates {
		ranked = ranked[:maxCandidates]
	}
	return ranked, nil
}

// intersect keeps the required skills the employee has, preserving the
// required order. Matching is exact and case-sensitive.
func intersect(required, owned []string) []string {
	set := make(map[string]struct{}, len(owned))
	for _, s := range owned {
		set[s] = struct{}{}
	}
	matched := make([]string, 0, len(required))
	for _, s := range required {
		if _, ok := set[s]; ok {
			matched = append(matched, s)
		}
	}
	return matched
}
