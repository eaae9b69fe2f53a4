// Package report renders a comparison result as an XLSX workbook for offline review.
package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"talent-hub-backend/internal/domain"

	"github.com/xuri/excelize/v2"
)

const (
	SheetBasicInfo       = "Basic Info"
	SheetSkills          = "Skills"
	SheetJobRoleLevels   = "Job Role Levels"
	SheetProjects        = "Projects"
	SheetWorkExperiences = "Work Experience"
	SheetCertificates    = "Certificates"
)

type sheet struct {
	f      *excelize.File
	name   string
	row    int
	header int
	marked int
}

// ComparisonWorkbook renders one sheet per comparison section.
func ComparisonWorkbook(result *domain.ComparisonResult) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("report: nil comparison result")
	}
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}
	changedStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFF2CC"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	builders := []struct {
		name  string
		build func(*sheet, *domain.ComparisonResult) error
	}{
		{SheetBasicInfo, basicInfoSheet},
		{SheetSkills, skillsSheet},
		{SheetJobRoleLevels, jobRoleLevelsSheet},
		{SheetProjects, projectsSheet},
		{SheetWorkExperiences, workExperiencesSheet},
		{SheetCertificates, certificatesSheet},
	}
	for i, b := range builders {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", b.name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(b.name); err != nil {
			return nil, err
		}
		s := &sheet{f: f, name: b.name, row: 1, header: headerStyle, marked: changedStyle}
		if err := b.build(s, result); err != nil {
			return nil, fmt.Errorf("failed to create %s sheet: %w", b.name, err)
		}
	}
	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *sheet) headers(widths []float64, titles ...string) error {
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := s.f.SetColWidth(s.name, col, col, w); err != nil {
			return err
		}
	}
	if err := s.append(titles...); err != nil {
		return err
	}
	return s.style(s.row-1, len(titles), s.header)
}

func (s *sheet) append(values ...string) error {
	cell, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		return err
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := s.f.SetSheetRow(s.name, cell, &row); err != nil {
		return err
	}
	s.row++
	return nil
}

func (s *sheet) style(row, cols, style int) error {
	from, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	to, err := excelize.CoordinatesToCellName(cols, row)
	if err != nil {
		return err
	}
	return s.f.SetCellStyle(s.name, from, to, style)
}

func basicInfoSheet(s *sheet, r *domain.ComparisonResult) error {
	if err := s.headers([]float64{18, 36, 36, 10}, "Field", "Current", "From CV", "Changed"); err != nil {
		return err
	}
	changed := map[domain.BasicInfoField]bool{}
	for _, f := range r.BasicInfo.ChangedFields {
		changed[f] = true
	}
	for _, field := range domain.BasicInfoFields {
		mark := ""
		if changed[field] {
			mark = "yes"
		}
		if err := s.append(string(field), r.BasicInfo.Current.Get(field), r.BasicInfo.Suggested.Get(field), mark); err != nil {
			return err
		}
		if changed[field] {
			if err := s.style(s.row-1, 4, s.marked); err != nil {
				return err
			}
		}
	}
	return nil
}

func skillsSheet(s *sheet, r *domain.ComparisonResult) error {
	if err := s.headers([]float64{28, 28, 12, 10, 22}, "Skill (CV)", "Catalog", "Level", "Years", "Status"); err != nil {
		return err
	}
	for _, m := range r.Skills.MatchedInCatalog {
		if err := s.append(m.FromCV.Name, m.CatalogName, m.FromCV.Level, number(m.FromCV.YearsExp), "new, in catalog"); err != nil {
			return err
		}
	}
	for _, m := range r.Skills.UnmatchedFreeText {
		if err := s.append(m.FromCV.Name, "", m.FromCV.Level, number(m.FromCV.YearsExp), "not in catalog"); err != nil {
			return err
		}
	}
	return nil
}

func jobRoleLevelsSheet(s *sheet, r *domain.ComparisonResult) error {
	if err := s.headers([]float64{28, 14, 34, 10, 14, 22}, "Position (CV)", "Level (CV)", "Catalog", "Years", "Rate / month", "Status"); err != nil {
		return err
	}
	for _, m := range r.JobRoleLevels.MatchedInCatalog {
		if err := s.append(m.FromCV.Position, m.FromCV.Level, m.CatalogName, number(m.FromCV.YearsOfExp), number(m.FromCV.RatePerMonth), "new, in catalog"); err != nil {
			return err
		}
	}
	for _, m := range r.JobRoleLevels.UnmatchedFreeText {
		if err := s.append(m.FromCV.Position, m.FromCV.Level, "", number(m.FromCV.YearsOfExp), number(m.FromCV.RatePerMonth), "not in catalog"); err != nil {
			return err
		}
	}
	return nil
}

func projectsSheet(s *sheet, r *domain.ComparisonResult) error {
	if err := s.headers([]float64{30, 20, 34, 12, 12, 14, 30}, "Project (CV)", "Position", "Technologies", "Start", "End", "Recommendation", "Existing project"); err != nil {
		return err
	}
	for _, p := range r.Projects.NewEntries {
		if err := s.append(p.ProjectName, p.Position, strings.Join(p.Technologies, ", "), p.StartDate, p.EndDate, "new", ""); err != nil {
			return err
		}
	}
	for _, d := range r.Projects.PotentialDuplicates {
		p := d.FromCV
		existing := fmt.Sprintf("#%d %s (%s – %s)", d.Existing.ID, d.Existing.ProjectName, day(d.Existing.StartDate, "?"), day(d.Existing.EndDate, "present"))
		if err := s.append(p.ProjectName, p.Position, strings.Join(p.Technologies, ", "), p.StartDate, p.EndDate, string(d.Recommendation), existing); err != nil {
			return err
		}
	}
	return nil
}

func workExperiencesSheet(s *sheet, r *domain.ComparisonResult) error {
	if err := s.headers([]float64{26, 26, 12, 12, 14, 36}, "Company (CV)", "Position", "Start", "End", "Recommendation", "Existing entry"); err != nil {
		return err
	}
	for _, w := range r.WorkExperiences.NewEntries {
		if err := s.append(w.Company, w.Position, w.StartDate, w.EndDate, "new", ""); err != nil {
			return err
		}
	}
	for _, d := range r.WorkExperiences.PotentialDuplicates {
		w := d.FromCV
		existing := fmt.Sprintf("#%d %s at %s (%s – %s)", d.Existing.ID, d.Existing.Position, d.Existing.Company, day(d.Existing.StartDate, "?"), day(d.Existing.EndDate, "present"))
		if err := s.append(w.Company, w.Position, w.StartDate, w.EndDate, string(d.Recommendation), existing); err != nil {
			return err
		}
	}
	return nil
}

func certificatesSheet(s *sheet, r *domain.ComparisonResult) error {
	if err := s.headers([]float64{34, 26, 14}, "Certificate (CV)", "Issued by", "Issued"); err != nil {
		return err
	}
	for _, c := range r.Certificates.NewFromCV {
		if err := s.append(c.Name, c.IssuedBy, c.IssuedDate); err != nil {
			return err
		}
	}
	return nil
}

func number(v float64) string {
	if v == 0 {
		return ""
	}
	return strings.TrimSuffix(fmt.Sprintf("%.1f", v), ".0")
}

func day(t *time.Time, missing string) string {
	if t == nil {
		return missing
	}
	return t.Format("2006-01")
}
