package report_test

import (
	"bytes"
	"testing"
	"time"

	"talent-hub-backend/internal/domain"
	"talent-hub-backend/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleResult() *domain.ComparisonResult {
	start := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	catalogID := int64(4)
	return &domain.ComparisonResult{
		TalentID: 9,
		BasicInfo: domain.BasicInfoComparison{
			Current:       domain.BasicInfo{FullName: "Jane Doe", Email: "jane@old.example.com"},
			Suggested:     domain.BasicInfo{FullName: "Jane Doe", Email: "jane@example.com"},
			ChangedFields: []domain.BasicInfoField{domain.FieldEmail},
			HasChanges:    true,
		},
		Skills: domain.SkillComparison{
			MatchedInCatalog:  []domain.SkillMatch{{FromCV: domain.ExtractedSkill{Name: "golang", YearsExp: 5}, CatalogID: &catalogID, CatalogName: "Go"}},
			UnmatchedFreeText: []domain.SkillMatch{{FromCV: domain.ExtractedSkill{Name: "Fortran 77"}}},
		},
		Projects: domain.ProjectComparison{
			NewEntries: []domain.ExtractedProject{{ProjectName: "Ledger", Technologies: []string{"Go", "Kafka"}}},
			PotentialDuplicates: []domain.ProjectDuplicate{{
				Existing:       domain.TalentProject{ID: 12, ProjectName: "Payments", StartDate: &start},
				FromCV:         domain.ExtractedProject{ProjectName: "Payments"},
				Recommendation: domain.RecommendUpdate,
			}},
		},
		Certificates: domain.CertificateComparison{NewFromCV: []domain.ExtractedCertificate{{Name: "CKA", IssuedBy: "CNCF"}}},
	}
}

func TestComparisonWorkbook(t *testing.T) {
	data, err := report.ComparisonWorkbook(sampleResult())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	t.Run("Should create one sheet per section in order", func(t *testing.T) {
		assert.Equal(t, []string{
			report.SheetBasicInfo, report.SheetSkills, report.SheetJobRoleLevels,
			report.SheetProjects, report.SheetWorkExperiences, report.SheetCertificates,
		}, f.GetSheetList())
	})

	t.Run("Should flag changed basic info fields", func(t *testing.T) {
		rows, err := f.GetRows(report.SheetBasicInfo)
		require.NoError(t, err)
		require.Len(t, rows, 5)
		assert.Equal(t, []string{"email", "jane@old.example.com", "jane@example.com", "yes"}, rows[2])
		assert.Equal(t, "fullName", rows[1][0])
		assert.NotContains(t, rows[1], "yes")
	})

	t.Run("Should list catalog matches before free text skills", func(t *testing.T) {
		rows, err := f.GetRows(report.SheetSkills)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "Go", rows[1][1])
		assert.Equal(t, "5", rows[1][3])
		assert.Equal(t, "not in catalog", rows[2][4])
	})

	t.Run("Should describe duplicates with the existing entry", func(t *testing.T) {
		rows, err := f.GetRows(report.SheetProjects)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "Go, Kafka", rows[1][2])
		assert.Equal(t, "update", rows[2][5])
		assert.Equal(t, "#12 Payments (2021-01 – present)", rows[2][6])
	})

	t.Run("Should keep header rows on empty sections", func(t *testing.T) {
		rows, err := f.GetRows(report.SheetWorkExperiences)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Company (CV)", rows[0][0])
	})
}

func TestComparisonWorkbookRejectsNil(t *testing.T) {
	_, err := report.ComparisonWorkbook(nil)
	assert.Error(t, err)
}
