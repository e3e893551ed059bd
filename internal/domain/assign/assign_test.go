package assign_test

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/rizeos/workforce/internal/adapters/repository"
	"github.com/rizeos/workforce/internal/domain/assign"
	"github.com/rizeos/workforce/internal/domain/model"
)

type fakeSource struct {
	candidates []repository.Candidate
	err        error
}

func (f *fakeSource) ActiveWithScores(_ context.Context, _ string) ([]repository.Candidate, error) {
	return f.candidates, f.err
}

func candidate(id, name string, skills []string, productivity *int) repository.Candidate {
	return repository.Candidate{
		Employee: model.Employee{
			ID:     id,
			OrgID:  "org-1",
			Name:   name,
			Role:   "Engineer",
			Skills: model.StringList(skills),
			Status: model.EmployeeActive,
		},
		Productivity: productivity,
	}
}

func scorePtr(v int) *int { return &v }

func TestRecommend(t *testing.T) {
	Convey("Given a smart-assign engine", t, func() {
		ctx := context.Background()

		Convey("When the required skill list is empty", func() {
			engine := assign.NewEngine(&fakeSource{})

			_, err := engine.Recommend(ctx, "org-1", nil)

			Convey("Then it fails with a validation error", func() {
				So(errors.Is(err, assign.ErrNoRequiredSkills), ShouldBeTrue)
			})
		})

		Convey("When an employee matches half the skills with score 90", func() {
			source := &fakeSource{candidates: []repository.Candidate{
				candidate("emp-x", "X", []string{"React"}, scorePtr(90)),
			}}
			engine := assign.NewEngine(source)

			got, err := engine.Recommend(ctx, "org-1", []string{"React", "SQL"})

			Convey("Then the blended score is 62 with a productivity remark", func() {
				So(err, ShouldBeNil)
				So(len(got), ShouldEqual, 1)
				So(got[0].MatchScore, ShouldEqual, 62)
				So(got[0].MatchedSkills, ShouldResemble, []string{"React"})
				So(got[0].Explanation, ShouldEqual, "50% skill match. High historical productivity.")
			})
		})

		Convey("When an employee has no score row", func() {
			source := &fakeSource{candidates: []repository.Candidate{
				candidate("emp-a", "A", []string{"Go"}, nil),
			}}
			engine := assign.NewEngine(source)

			got, err := engine.Recommend(ctx, "org-1", []string{"Go"})

			Convey("Then the default productivity of 50 applies", func() {
				So(err, ShouldBeNil)
				So(len(got), ShouldEqual, 1)
				// 1.0*0.70 + 0.5*0.30 = 0.85
				So(got[0].MatchScore, ShouldEqual, 85)
				So(got[0].Explanation, ShouldEqual, "100% skill match.")
			})
		})

		Convey("When more than three employees match", func() {
			source := &fakeSource{candidates: []repository.Candidate{
				candidate("emp-1", "One", []string{"Go", "SQL"}, scorePtr(90)),
				candidate("emp-2", "Two", []string{"Go", "SQL"}, scorePtr(70)),
				candidate("emp-3", "Three", []string{"Go"}, scorePtr(60)),
				candidate("emp-4", "Four", []string{"SQL"}, scorePtr(95)),
				candidate("emp-5", "Five", []string{"Rust"}, scorePtr(99)),
			}}
			engine := assign.NewEngine(source)

			got, err := engine.Recommend(ctx, "org-1", []string{"Go", "SQL"})

			Convey("Then at most three sorted candidates return", func() {
				So(err, ShouldBeNil)
				So(len(got), ShouldEqual, 3)
				So(got[0].MatchScore, ShouldBeGreaterThanOrEqualTo, got[1].MatchScore)
				So(got[1].MatchScore, ShouldBeGreaterThanOrEqualTo, got[2].MatchScore)
				for _, c := range got {
					So(c.MatchScore, ShouldBeGreaterThan, 0)
				}
			})
		})

		Convey("When two candidates tie on score", func() {
			source := &fakeSource{candidates: []repository.Candidate{
				candidate("emp-b", "B", []string{"Go"}, scorePtr(60)),
				candidate("emp-a", "A", []string{"Go"}, scorePtr(60)),
			}}
			engine := assign.NewEngine(source)

			got, err := engine.Recommend(ctx, "org-1", []string{"Go"})

			Convey("Then the lower employee id ranks first", func() {
				So(err, ShouldBeNil)
				So(len(got), ShouldEqual, 2)
				So(got[0].EmployeeID, ShouldEqual, "emp-a")
				So(got[1].EmployeeID, ShouldEqual, "emp-b")
			})
		})

		Convey("When skill matching would be case-insensitive", func() {
			source := &fakeSource{candidates: []repository.Candidate{
				candidate("emp-a", "A", []string{"react"}, scorePtr(90)),
			}}
			engine := assign.NewEngine(source)

			got, err := engine.Recommend(ctx, "org-1", []string{"React"})

			Convey("Then exact matching still applies and productivity alone keeps them in", func() {
				So(err, ShouldBeNil)
				// 0*0.70 + 0.9*0.30 = 0.27
				So(len(got), ShouldEqual, 1)
				So(got[0].MatchScore, ShouldEqual, 27)
				So(got[0].MatchedSkills, ShouldBeEmpty)
			})
		})

		Convey("When no candidate scores above zero", func() {
			zero := 0
			source := &fakeSource{candidates: []repository.Candidate{
				candidate("emp-a", "A", []string{"Rust"}, &zero),
			}}
			engine := assign.NewEngine(source)

			got, err := engine.Recommend(ctx, "org-1", []string{"Go"})

			Convey("Then the result is empty, not an error", func() {
				So(err, ShouldBeNil)
				So(got, ShouldBeEmpty)
			})
		})

		Convey("When the source fails", func() {
			engine := assign.NewEngine(&fakeSource{err: errors.New("db down")})

			_, err := engine.Recommend(ctx, "org-1", []string{"Go"})

			Convey("Then the error propagates", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
