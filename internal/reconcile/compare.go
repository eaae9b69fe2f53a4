package reconcile

import "talent-hub-backend/internal/domain"

// Compare diffs extraction against talent using catalog for skill and job role level matching.
// It performs no I/O and returns the same result for the same inputs.
func Compare(extraction *domain.CVExtraction, talent *domain.Talent, catalog domain.Catalog, det *Detector) domain.ComparisonResult {
	if det == nil {
		det = NewDetector(DefaultOptions())
	}
	if extraction == nil {
		extraction = &domain.CVExtraction{}
	}
	return domain.ComparisonResult{
		TalentID:        talent.ID,
		BasicInfo:       compareBasicInfo(talent.BasicInfo, extraction.BasicInfo),
		Skills:          compareSkills(extraction.Skills, talent.Skills, catalog.Skills),
		JobRoleLevels:   compareJobRoleLevels(extraction.JobRoleLevels, talent.JobRoleLevels, catalog.JobRoleLevels),
		Projects:        compareProjects(extraction.Projects, talent.Projects, det),
		WorkExperiences: compareWorkExperiences(extraction.WorkExperiences, talent.WorkExperiences, det),
		Certificates:    compareCertificates(extraction.Certificates, talent.Certificates),
	}
}

func compareBasicInfo(current, suggested domain.BasicInfo) domain.BasicInfoComparison {
	out := domain.BasicInfoComparison{
		Current:       current,
		Suggested:     suggested,
		ChangedFields: []domain.BasicInfoField{},
	}
	for _, f := range domain.BasicInfoFields {
		if IsValueDifferent(current.Get(f), suggested.Get(f)) {
			out.ChangedFields = append(out.ChangedFields, f)
		}
	}
	out.HasChanges = len(out.ChangedFields) > 0
	return out
}

func compareSkills(extracted []domain.ExtractedSkill, profile []domain.TalentSkill, catalog []domain.Skill) domain.SkillComparison {
	byName := make(map[string]domain.Skill, len(catalog))
	for _, s := range catalog {
		key := NormalizeName(s.Name)
		if _, dup := byName[key]; !dup {
			byName[key] = s
		}
	}
	onProfileID := make(map[int64]bool, len(profile))
	onProfileName := make(map[string]bool, len(profile))
	for _, s := range profile {
		onProfileID[s.SkillID] = true
		onProfileName[NormalizeName(s.Name)] = true
	}

	out := domain.SkillComparison{MatchedInCatalog: []domain.SkillMatch{}, UnmatchedFreeText: []domain.SkillMatch{}}
	seen := make(map[string]bool, len(extracted))
	for _, s := range extracted {
		key := NormalizeName(s.Name)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true

		entry, ok := byName[key]
		if !ok {
			out.UnmatchedFreeText = append(out.UnmatchedFreeText, domain.SkillMatch{FromCV: s, OnProfile: onProfileName[key]})
			continue
		}
		if onProfileID[entry.ID] {
			continue
		}
		id := entry.ID
		out.MatchedInCatalog = append(out.MatchedInCatalog, domain.SkillMatch{FromCV: s, CatalogID: &id, CatalogName: entry.Name})
	}
	return out
}

func jobRoleLevelKey(position, level string) string {
	return NormalizeName(position) + "|" + NormalizeName(level)
}

func compareJobRoleLevels(extracted []domain.ExtractedJobRoleLevel, profile []domain.TalentJobRoleLevel, catalog []domain.JobRoleLevel) domain.JobRoleLevelComparison {
	byKey := make(map[string]domain.JobRoleLevel, len(catalog)*2)
	for _, j := range catalog {
		for _, key := range []string{jobRoleLevelKey(j.Position, j.Level), jobRoleLevelKey(j.DisplayName(), "")} {
			if _, dup := byKey[key]; !dup {
				byKey[key] = j
			}
		}
	}
	onProfileID := make(map[int64]bool, len(profile))
	onProfileKey := make(map[string]bool, len(profile))
	for _, j := range profile {
		onProfileID[j.JobRoleLevelID] = true
		onProfileKey[jobRoleLevelKey(j.Position, j.Level)] = true
	}

	out := domain.JobRoleLevelComparison{MatchedInCatalog: []domain.JobRoleLevelMatch{}, UnmatchedFreeText: []domain.JobRoleLevelMatch{}}
	seen := make(map[string]bool, len(extracted))
	matched := make(map[int64]bool, len(extracted))
	for _, j := range extracted {
		if IsBlank(j.Position) {
			continue
		}
		key := jobRoleLevelKey(j.Position, j.Level)
		if seen[key] {
			continue
		}
		seen[key] = true

		entry, ok := byKey[key]
		if !ok {
			out.UnmatchedFreeText = append(out.UnmatchedFreeText, domain.JobRoleLevelMatch{FromCV: j, OnProfile: onProfileKey[key]})
			continue
		}
		if onProfileID[entry.ID] || matched[entry.ID] {
			continue
		}
		matched[entry.ID] = true
		id := entry.ID
		out.MatchedInCatalog = append(out.MatchedInCatalog, domain.JobRoleLevelMatch{FromCV: j, CatalogID: &id, CatalogName: entry.DisplayName()})
	}
	return out
}

func compareProjects(extracted []domain.ExtractedProject, existing []domain.TalentProject, det *Detector) domain.ProjectComparison {
	out := domain.ProjectComparison{NewEntries: []domain.ExtractedProject{}, PotentialDuplicates: []domain.ProjectDuplicate{}}
	seen := make(map[string]bool, len(extracted))
	for _, p := range extracted {
		key := NormalizeName(p.ProjectName)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		if dup, ok := det.FindProjectDuplicate(p, existing); ok {
			out.PotentialDuplicates = append(out.PotentialDuplicates, *dup)
			continue
		}
		out.NewEntries = append(out.NewEntries, p)
	}
	return out
}

func compareWorkExperiences(extracted []domain.ExtractedWorkExperience, existing []domain.TalentWorkExperience, det *Detector) domain.WorkExperienceComparison {
	out := domain.WorkExperienceComparison{NewEntries: []domain.ExtractedWorkExperience{}, PotentialDuplicates: []domain.WorkExperienceDuplicate{}}
	seen := make(map[string]bool, len(extracted))
	for _, w := range extracted {
		if IsBlank(w.Position) && IsBlank(w.Company) {
			continue
		}
		key := NormalizeName(w.Position) + "|" + NormalizeName(w.Company) + "|" + NormalizeName(w.StartDate)
		if seen[key] {
			continue
		}
		seen[key] = true
		if dup, ok := det.FindWorkExperienceDuplicate(w, existing); ok {
			out.PotentialDuplicates = append(out.PotentialDuplicates, *dup)
			continue
		}
		out.NewEntries = append(out.NewEntries, w)
	}
	return out
}

func compareCertificates(extracted []domain.ExtractedCertificate, existing []domain.TalentCertificate) domain.CertificateComparison {
	have := make(map[string]bool, len(existing))
	for _, c := range existing {
		have[NormalizeName(c.Name)] = true
	}
	out := domain.CertificateComparison{NewFromCV: []domain.ExtractedCertificate{}}
	for _, c := range extracted {
		key := NormalizeName(c.Name)
		if key == "" || have[key] {
			continue
		}
		have[key] = true
		out.NewFromCV = append(out.NewFromCV, c)
	}
	return out
}
