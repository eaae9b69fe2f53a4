package reconcile_test

import (
	"testing"
	"time"

	"talent-hub-backend/internal/domain"
	"talent-hub-backend/internal/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func existingProject() domain.TalentProject {
	return domain.TalentProject{
		ID:           10,
		TalentID:     1,
		ProjectName:  "Payments Platform",
		Position:     "Tech Lead",
		Description:  "Card settlement service",
		Technologies: []string{"Go", "PostgreSQL"},
		StartDate:    date(2021, 3, 1),
		EndDate:      date(2022, 1, 1),
	}
}

func TestFindProjectDuplicate(t *testing.T) {
	det := reconcile.NewDetector(reconcile.DefaultOptions())
	existing := []domain.TalentProject{existingProject()}

	t.Run("Should recommend identical for a field-for-field copy", func(t *testing.T) {
		candidate := domain.ExtractedProject{
			ProjectName:  "payments  platform",
			Position:     "Tech Lead",
			Description:  "Card settlement service",
			Technologies: []string{"postgresql", "go"},
			StartDate:    "2021-03",
			EndDate:      "2022-01",
		}
		dup, ok := det.FindProjectDuplicate(candidate, existing)
		require.True(t, ok)
		assert.Equal(t, domain.RecommendIdentical, dup.Recommendation)
		assert.Equal(t, int64(10), dup.Existing.ID)
	})

	t.Run("Should recommend update when descriptive fields differ", func(t *testing.T) {
		candidate := domain.ExtractedProject{ProjectName: "Payments Platform", Description: "Rewrote settlement", Technologies: []string{"Go"}}
		dup, ok := det.FindProjectDuplicate(candidate, existing)
		require.True(t, ok)
		assert.Equal(t, domain.RecommendUpdate, dup.Recommendation)
	})

	t.Run("Should recommend keep_both on a loose name match with shared technology", func(t *testing.T) {
		candidate := domain.ExtractedProject{ProjectName: "Payments", Technologies: []string{"GO", "Kafka"}}
		dup, ok := det.FindProjectDuplicate(candidate, existing)
		require.True(t, ok)
		assert.Equal(t, domain.RecommendKeepBoth, dup.Recommendation)
	})

	t.Run("Should not match a loose name without shared technology", func(t *testing.T) {
		candidate := domain.ExtractedProject{ProjectName: "Payments", Technologies: []string{"Java"}}
		_, ok := det.FindProjectDuplicate(candidate, existing)
		assert.False(t, ok)
	})

	t.Run("Should not match an unrelated project", func(t *testing.T) {
		_, ok := det.FindProjectDuplicate(domain.ExtractedProject{ProjectName: "Mobile App"}, existing)
		assert.False(t, ok)
	})
}

func TestFindWorkExperienceDuplicate(t *testing.T) {
	existing := []domain.TalentWorkExperience{{
		ID:          20,
		Company:     "Acme",
		Position:    "Backend Engineer",
		Description: "APIs",
		StartDate:   date(2020, 1, 1),
	}}
	det := reconcile.NewDetector(reconcile.DefaultOptions())

	t.Run("Should recommend identical for an ongoing copy", func(t *testing.T) {
		candidate := domain.ExtractedWorkExperience{Company: "ACME", Position: "backend engineer", Description: "APIs", StartDate: "2020-01", EndDate: "present"}
		dup, ok := det.FindWorkExperienceDuplicate(candidate, existing)
		require.True(t, ok)
		assert.Equal(t, domain.RecommendIdentical, dup.Recommendation)
	})

	t.Run("Should recommend update when dates differ", func(t *testing.T) {
		candidate := domain.ExtractedWorkExperience{Company: "Acme", Position: "Backend Engineer", Description: "APIs", StartDate: "2020-01", EndDate: "2023-06"}
		dup, ok := det.FindWorkExperienceDuplicate(candidate, existing)
		require.True(t, ok)
		assert.Equal(t, domain.RecommendUpdate, dup.Recommendation)
	})

	t.Run("Should recommend keep_both on loose names with overlapping dates", func(t *testing.T) {
		candidate := domain.ExtractedWorkExperience{Company: "Acme Corp", Position: "Senior Backend Engineer", StartDate: "2021-06"}
		dup, ok := det.FindWorkExperienceDuplicate(candidate, existing)
		require.True(t, ok)
		assert.Equal(t, domain.RecommendKeepBoth, dup.Recommendation)
	})

	t.Run("Should not match loose names with disjoint dates", func(t *testing.T) {
		closed := []domain.TalentWorkExperience{{Company: "Acme", Position: "Backend Engineer", StartDate: date(2015, 1, 1), EndDate: date(2016, 1, 1)}}
		candidate := domain.ExtractedWorkExperience{Company: "Acme Corp", Position: "Senior Backend Engineer", StartDate: "2019-01", EndDate: "2020-01"}
		_, ok := det.FindWorkExperienceDuplicate(candidate, closed)
		assert.False(t, ok)
	})

	t.Run("Should honour the date tolerance", func(t *testing.T) {
		closed := []domain.TalentWorkExperience{{Company: "Acme", Position: "Backend Engineer", StartDate: date(2015, 1, 1), EndDate: date(2020, 1, 1)}}
		candidate := domain.ExtractedWorkExperience{Company: "Acme Corp", Position: "Senior Backend Engineer", StartDate: "2020-01-20"}

		_, ok := det.FindWorkExperienceDuplicate(candidate, closed)
		assert.True(t, ok)

		strict := reconcile.NewDetector(reconcile.Options{DateToleranceDays: 0, MinSharedTechnologies: 1})
		_, ok = strict.FindWorkExperienceDuplicate(candidate, closed)
		assert.False(t, ok)
	})
}

func TestOngoingRangesHaveNoHorizon(t *testing.T) {
	det := reconcile.NewDetector(reconcile.DefaultOptions())
	ongoing := []domain.TalentWorkExperience{{Company: "Acme", Position: "Backend Engineer", StartDate: date(2030, 1, 1)}}

	t.Run("Should overlap an ongoing role with dates past 2038", func(t *testing.T) {
		candidate := domain.ExtractedWorkExperience{Company: "Acme Corp", Position: "Senior Backend Engineer", StartDate: "2040-01", EndDate: "2041-01"}
		dup, ok := det.FindWorkExperienceDuplicate(candidate, ongoing)
		require.True(t, ok)
		assert.Equal(t, domain.RecommendKeepBoth, dup.Recommendation)
	})
}

func TestFindIdentical(t *testing.T) {
	t.Run("Should find an exact project behind an earlier loose match", func(t *testing.T) {
		existing := []domain.TalentProject{
			{ID: 1, ProjectName: "Payments", Technologies: []string{"Go"}},
			{ID: 2, ProjectName: "Payments Gateway", Technologies: []string{"Go"}},
		}
		candidate := domain.ExtractedProject{ProjectName: "payments gateway", Technologies: []string{"go"}}

		dup, ok := reconcile.NewDetector(reconcile.DefaultOptions()).FindProjectDuplicate(candidate, existing)
		require.True(t, ok)
		assert.Equal(t, int64(1), dup.Existing.ID, "loose match still wins the review heuristic")

		same, ok := reconcile.FindIdenticalProject(candidate, existing)
		require.True(t, ok)
		assert.Equal(t, int64(2), same.ID)
	})

	t.Run("Should not treat a differing project as identical", func(t *testing.T) {
		existing := []domain.TalentProject{{ID: 2, ProjectName: "Payments Gateway", Technologies: []string{"Go"}}}
		_, ok := reconcile.FindIdenticalProject(domain.ExtractedProject{ProjectName: "Payments Gateway", Technologies: []string{"Rust"}}, existing)
		assert.False(t, ok)
	})

	t.Run("Should find an exact work experience behind an earlier loose match", func(t *testing.T) {
		existing := []domain.TalentWorkExperience{
			{ID: 1, Company: "Acme", Position: "Engineer", StartDate: date(2020, 1, 1), EndDate: date(2022, 6, 1)},
			{ID: 2, Company: "Acme", Position: "Senior Engineer", StartDate: date(2021, 1, 1), EndDate: date(2022, 6, 1)},
		}
		candidate := domain.ExtractedWorkExperience{Company: "ACME", Position: "senior engineer", StartDate: "2021-01", EndDate: "2022-06"}

		same, ok := reconcile.FindIdenticalWorkExperience(candidate, existing)
		require.True(t, ok)
		assert.Equal(t, int64(2), same.ID)
	})

	t.Run("Should ignore a candidate without identifying fields", func(t *testing.T) {
		_, ok := reconcile.FindIdenticalWorkExperience(domain.ExtractedWorkExperience{}, []domain.TalentWorkExperience{{ID: 1}})
		assert.False(t, ok)
	})
}
