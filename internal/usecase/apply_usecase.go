package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"talent-hub-backend/internal/audit"
	"talent-hub-backend/internal/domain"
	"talent-hub-backend/internal/reconcile"
	"talent-hub-backend/pkg/logger"
)

type outcome int

const (
	outcomeCreated outcome = iota
	outcomeUpdated
	outcomeSkipped
)

var errExistingNotFound = errors.New("existing entry not found on this talent")

type decisionApplier struct {
	talentRepo  domain.TalentRepository
	catalogRepo domain.CatalogRepository
	audit       *audit.Logger
}

func NewDecisionApplier(talentRepo domain.TalentRepository, catalogRepo domain.CatalogRepository, auditLog *audit.Logger) domain.DecisionApplier {
	if auditLog == nil {
		auditLog = audit.Nop()
	}
	return &decisionApplier{talentRepo: talentRepo, catalogRepo: catalogRepo, audit: auditLog}
}

// applyRun holds the per-call state: the talent snapshot is kept current as items are written
// so later decisions in the same request see earlier ones.
type applyRun struct {
	*decisionApplier
	talent *domain.Talent
	resp   *domain.ApplyCVUpdatesResponse

	skills []domain.Skill
	jrls   []domain.JobRoleLevel
	certs  []domain.CertificateType
}

func (r *applyRun) record(ctx context.Context, d domain.DomainName, ref string, fn func() (outcome, error)) {
	stats := r.resp.Statistics.For(d)
	if err := ctx.Err(); err != nil {
		stats.Failed++
		r.resp.Failures = append(r.resp.Failures, domain.ApplyFailure{Domain: d, ItemRef: ref, Reason: err.Error()})
		return
	}
	res, err := fn()
	if err != nil {
		stats.Failed++
		r.resp.Failures = append(r.resp.Failures, domain.ApplyFailure{Domain: d, ItemRef: ref, Reason: err.Error()})
		logger.Log.Warn("decision failed", "talent_id", r.talent.ID, "domain", d, "item", ref, "error", err)
		return
	}
	switch res {
	case outcomeCreated:
		stats.Created++
	case outcomeUpdated:
		stats.Updated++
	case outcomeSkipped:
		stats.Skipped++
	}
}

// Apply processes every domain in order; only a missing talent aborts the call.
func (a *decisionApplier) Apply(ctx context.Context, talentID int64, req domain.ApplyCVUpdatesRequest) (*domain.ApplyCVUpdatesResponse, error) {
	talent, err := loadTalent(ctx, a.talentRepo, talentID)
	if err != nil {
		return nil, err
	}

	r := &applyRun{
		decisionApplier: a,
		talent:          talent,
		resp:            &domain.ApplyCVUpdatesResponse{TalentID: talentID, Failures: []domain.ApplyFailure{}},
	}

	if req.BasicInfo != nil {
		r.record(ctx, domain.DomainBasicInfo, req.BasicInfo.ItemRef(), func() (outcome, error) {
			return r.applyBasicInfo(ctx, req.BasicInfo)
		})
	}
	for _, d := range req.Skills {
		r.record(ctx, domain.DomainSkills, d.ItemRef(), func() (outcome, error) { return r.applySkill(ctx, d) })
	}
	for _, d := range req.JobRoleLevels {
		r.record(ctx, domain.DomainJobRoleLevels, d.ItemRef(), func() (outcome, error) { return r.applyJobRoleLevel(ctx, d) })
	}
	for _, d := range req.Certificates {
		r.record(ctx, domain.DomainCertificates, d.ItemRef(), func() (outcome, error) { return r.applyCertificate(ctx, d) })
	}
	for _, d := range req.Projects {
		r.record(ctx, domain.DomainProjects, d.ItemRef(), func() (outcome, error) { return r.applyProject(ctx, d) })
	}
	for _, d := range req.WorkExperiences {
		r.record(ctx, domain.DomainWorkExperiences, d.ItemRef(), func() (outcome, error) { return r.applyWorkExperience(ctx, d) })
	}

	a.audit.Log(ctx, audit.Event{
		Event:    audit.EventDecisionsApplied,
		TalentID: talentID,
		Details:  map[string]any{"statistics": r.resp.Statistics, "failures": len(r.resp.Failures)},
	})
	return r.resp, nil
}

func (r *applyRun) applyBasicInfo(ctx context.Context, d domain.BasicInfoDecision) (outcome, error) {
	switch d := d.(type) {
	case domain.SkipBasicInfo:
		return outcomeSkipped, nil
	case domain.UpdateBasicInfo:
		merged := r.talent.BasicInfo
		changed := false
		for _, f := range d.Fields {
			v := d.Values.Get(f)
			if reconcile.IsValueDifferent(merged.Get(f), v) {
				merged.Set(f, strings.TrimSpace(v))
				changed = true
			}
		}
		if !changed {
			return outcomeSkipped, nil
		}
		if err := r.talentRepo.UpdateBasicInfo(ctx, r.talent.ID, merged); err != nil {
			return 0, fmt.Errorf("update basic info: %w", err)
		}
		r.talent.BasicInfo = merged
		return outcomeUpdated, nil
	}
	return 0, fmt.Errorf("unsupported basic info decision %T", d)
}

func (r *applyRun) catalogSkills(ctx context.Context) ([]domain.Skill, error) {
	if r.skills == nil {
		skills, err := r.catalogRepo.ListSkills(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: list skills: %w", domain.ErrExternalService, err)
		}
		r.skills = skills
	}
	return r.skills, nil
}

// resolveSkill finds the catalog skill by id or name, creating it when unknown.
func (r *applyRun) resolveSkill(ctx context.Context, name string, catalogID *int64) (*domain.Skill, error) {
	skills, err := r.catalogSkills(ctx)
	if err != nil {
		return nil, err
	}
	key := reconcile.NormalizeName(name)
	for i := range skills {
		if catalogID != nil && skills[i].ID == *catalogID {
			return &skills[i], nil
		}
		if catalogID == nil && reconcile.NormalizeName(skills[i].Name) == key {
			return &skills[i], nil
		}
	}
	if catalogID != nil {
		return nil, fmt.Errorf("skill %d is not in the catalog", *catalogID)
	}
	created, err := r.catalogRepo.CreateSkill(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, fmt.Errorf("create catalog skill: %w", err)
	}
	r.skills = append(r.skills, *created)
	return created, nil
}

func (r *applyRun) applySkill(ctx context.Context, d domain.SkillDecision) (outcome, error) {
	switch d := d.(type) {
	case domain.SkipSkill:
		return outcomeSkipped, nil
	case domain.CreateSkill:
		if reconcile.IsBlank(d.Skill.Name) && d.CatalogID == nil {
			return 0, errors.New("skill name is required")
		}
		skill, err := r.resolveSkill(ctx, d.Skill.Name, d.CatalogID)
		if err != nil {
			return 0, err
		}
		created, err := r.talentRepo.AddSkill(ctx, r.talent.ID, domain.TalentSkill{
			SkillID:  skill.ID,
			Name:     skill.Name,
			Level:    d.Skill.Level,
			YearsExp: d.Skill.YearsExp,
		})
		if err != nil {
			return 0, fmt.Errorf("link skill: %w", err)
		}
		if !created {
			return outcomeSkipped, nil
		}
		return outcomeCreated, nil
	}
	return 0, fmt.Errorf("unsupported skill decision %T", d)
}

func (r *applyRun) resolveJobRoleLevel(ctx context.Context, position, level string, catalogID *int64) (*domain.JobRoleLevel, error) {
	if r.jrls == nil {
		jrls, err := r.catalogRepo.ListJobRoleLevels(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: list job role levels: %w", domain.ErrExternalService, err)
		}
		r.jrls = jrls
	}
	p, l := reconcile.NormalizeName(position), reconcile.NormalizeName(level)
	for i := range r.jrls {
		j := &r.jrls[i]
		if catalogID != nil && j.ID == *catalogID {
			return j, nil
		}
		if catalogID == nil && reconcile.NormalizeName(j.Position) == p && reconcile.NormalizeName(j.Level) == l {
			return j, nil
		}
	}
	if catalogID != nil {
		return nil, fmt.Errorf("job role level %d is not in the catalog", *catalogID)
	}
	created, err := r.catalogRepo.CreateJobRoleLevel(ctx, strings.TrimSpace(position), strings.TrimSpace(level))
	if err != nil {
		return nil, fmt.Errorf("create catalog job role level: %w", err)
	}
	r.jrls = append(r.jrls, *created)
	return created, nil
}

func (r *applyRun) applyJobRoleLevel(ctx context.Context, d domain.JobRoleLevelDecision) (outcome, error) {
	switch d := d.(type) {
	case domain.SkipJobRoleLevel:
		return outcomeSkipped, nil
	case domain.CreateJobRoleLevel:
		if reconcile.IsBlank(d.JobRoleLevel.Position) && d.CatalogID == nil {
			return 0, errors.New("position is required")
		}
		jrl, err := r.resolveJobRoleLevel(ctx, d.JobRoleLevel.Position, d.JobRoleLevel.Level, d.CatalogID)
		if err != nil {
			return 0, err
		}
		created, err := r.talentRepo.AddJobRoleLevel(ctx, r.talent.ID, domain.TalentJobRoleLevel{
			JobRoleLevelID: jrl.ID,
			Position:       jrl.Position,
			Level:          jrl.Level,
			YearsOfExp:     d.JobRoleLevel.YearsOfExp,
			RatePerMonth:   d.JobRoleLevel.RatePerMonth,
		})
		if err != nil {
			return 0, fmt.Errorf("link job role level: %w", err)
		}
		if !created {
			return outcomeSkipped, nil
		}
		return outcomeCreated, nil
	}
	return 0, fmt.Errorf("unsupported job role level decision %T", d)
}

func (r *applyRun) certificateTypeID(ctx context.Context, name string) *int64 {
	if r.certs == nil {
		types, err := r.catalogRepo.ListCertificateTypes(ctx)
		if err != nil {
			logger.Log.Warn("certificate types unavailable", "error", err)
			r.certs = []domain.CertificateType{}
			return nil
		}
		r.certs = types
	}
	key := reconcile.NormalizeName(name)
	for _, t := range r.certs {
		if reconcile.NormalizeName(t.Name) == key {
			id := t.ID
			return &id
		}
	}
	return nil
}

func (r *applyRun) applyCertificate(ctx context.Context, d domain.CertificateDecision) (outcome, error) {
	switch d := d.(type) {
	case domain.SkipCertificate:
		return outcomeSkipped, nil
	case domain.CreateCertificate:
		name := strings.TrimSpace(d.Certificate.Name)
		if name == "" {
			return 0, errors.New("certificate name is required")
		}
		for _, c := range r.talent.Certificates {
			if reconcile.NormalizeName(c.Name) == reconcile.NormalizeName(name) {
				return outcomeSkipped, nil
			}
		}
		cert := &domain.TalentCertificate{
			TalentID:          r.talent.ID,
			CertificateTypeID: r.certificateTypeID(ctx, name),
			Name:              name,
			IssuedBy:          strings.TrimSpace(d.Certificate.IssuedBy),
			IssuedDate:        reconcile.ParseDatePtr(d.Certificate.IssuedDate),
		}
		if err := r.talentRepo.CreateCertificate(ctx, cert); err != nil {
			return 0, fmt.Errorf("create certificate: %w", err)
		}
		r.talent.Certificates = append(r.talent.Certificates, *cert)
		return outcomeCreated, nil
	}
	return 0, fmt.Errorf("unsupported certificate decision %T", d)
}

func (r *applyRun) findProject(id int64) (int, error) {
	for i, p := range r.talent.Projects {
		if p.ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("project #%d: %w", id, errExistingNotFound)
}

func (r *applyRun) applyProject(ctx context.Context, d domain.ProjectDecision) (outcome, error) {
	switch d := d.(type) {
	case domain.SkipProject:
		return outcomeSkipped, nil
	case domain.CreateProject:
		if reconcile.IsBlank(d.Project.ProjectName) {
			return 0, errors.New("project name is required")
		}
		if _, ok := reconcile.FindIdenticalProject(d.Project, r.talent.Projects); ok {
			return outcomeSkipped, nil
		}
		p := projectFromExtraction(r.talent.ID, d.Project)
		if err := r.talentRepo.CreateProject(ctx, &p); err != nil {
			return 0, fmt.Errorf("create project: %w", err)
		}
		r.talent.Projects = append(r.talent.Projects, p)
		return outcomeCreated, nil
	case domain.UpdateProject:
		return r.rewriteProject(ctx, d.ExistingID, func(p domain.TalentProject) domain.TalentProject {
			return overwriteProject(p, d.Project)
		})
	case domain.MergeProject:
		return r.rewriteProject(ctx, d.ExistingID, func(p domain.TalentProject) domain.TalentProject {
			return mergeProject(p, d.Project)
		})
	}
	return 0, fmt.Errorf("unsupported project decision %T", d)
}

func (r *applyRun) rewriteProject(ctx context.Context, id int64, change func(domain.TalentProject) domain.TalentProject) (outcome, error) {
	i, err := r.findProject(id)
	if err != nil {
		return 0, err
	}
	current := r.talent.Projects[i]
	next := change(current)
	if projectsEqual(current, next) {
		return outcomeSkipped, nil
	}
	if err := r.talentRepo.UpdateProject(ctx, &next); err != nil {
		return 0, fmt.Errorf("update project: %w", err)
	}
	r.talent.Projects[i] = next
	return outcomeUpdated, nil
}

func (r *applyRun) findWorkExperience(id int64) (int, error) {
	for i, w := range r.talent.WorkExperiences {
		if w.ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("work experience #%d: %w", id, errExistingNotFound)
}

func (r *applyRun) applyWorkExperience(ctx context.Context, d domain.WorkExperienceDecision) (outcome, error) {
	switch d := d.(type) {
	case domain.SkipWorkExperience:
		return outcomeSkipped, nil
	case domain.CreateWorkExperience:
		if reconcile.IsBlank(d.WorkExperience.Company) || reconcile.IsBlank(d.WorkExperience.Position) {
			return 0, errors.New("company and position are required")
		}
		if _, ok := reconcile.FindIdenticalWorkExperience(d.WorkExperience, r.talent.WorkExperiences); ok {
			return outcomeSkipped, nil
		}
		w := workFromExtraction(r.talent.ID, d.WorkExperience)
		if err := r.talentRepo.CreateWorkExperience(ctx, &w); err != nil {
			return 0, fmt.Errorf("create work experience: %w", err)
		}
		r.talent.WorkExperiences = append(r.talent.WorkExperiences, w)
		return outcomeCreated, nil
	case domain.UpdateWorkExperience:
		return r.rewriteWork(ctx, d.ExistingID, func(w domain.TalentWorkExperience) domain.TalentWorkExperience {
			return overwriteWork(w, d.WorkExperience)
		})
	case domain.MergeWorkExperience:
		return r.rewriteWork(ctx, d.ExistingID, func(w domain.TalentWorkExperience) domain.TalentWorkExperience {
			return mergeWork(w, d.WorkExperience)
		})
	}
	return 0, fmt.Errorf("unsupported work experience decision %T", d)
}

func (r *applyRun) rewriteWork(ctx context.Context, id int64, change func(domain.TalentWorkExperience) domain.TalentWorkExperience) (outcome, error) {
	i, err := r.findWorkExperience(id)
	if err != nil {
		return 0, err
	}
	current := r.talent.WorkExperiences[i]
	next := change(current)
	if worksEqual(current, next) {
		return outcomeSkipped, nil
	}
	if err := r.talentRepo.UpdateWorkExperience(ctx, &next); err != nil {
		return 0, fmt.Errorf("update work experience: %w", err)
	}
	r.talent.WorkExperiences[i] = next
	return outcomeUpdated, nil
}

func projectFromExtraction(talentID int64, e domain.ExtractedProject) domain.TalentProject {
	return domain.TalentProject{
		TalentID:     talentID,
		ProjectName:  strings.TrimSpace(e.ProjectName),
		Position:     strings.TrimSpace(e.Position),
		Description:  strings.TrimSpace(e.Description),
		Technologies: unionTokens(nil, e.Technologies),
		StartDate:    reconcile.ParseDatePtr(e.StartDate),
		EndDate:      reconcile.ParseDatePtr(e.EndDate),
	}
}

func workFromExtraction(talentID int64, e domain.ExtractedWorkExperience) domain.TalentWorkExperience {
	return domain.TalentWorkExperience{
		TalentID:    talentID,
		Company:     strings.TrimSpace(e.Company),
		Position:    strings.TrimSpace(e.Position),
		Description: strings.TrimSpace(e.Description),
		StartDate:   reconcile.ParseDatePtr(e.StartDate),
		EndDate:     reconcile.ParseDatePtr(e.EndDate),
	}
}

func replaceIfSet(current, v string) string {
	if reconcile.IsBlank(v) {
		return current
	}
	return strings.TrimSpace(v)
}

func fillIfBlank(current, v string) string {
	if reconcile.IsBlank(current) {
		return strings.TrimSpace(v)
	}
	return current
}

// overwriteProject replaces fields with every non-blank value from the CV.
func overwriteProject(p domain.TalentProject, e domain.ExtractedProject) domain.TalentProject {
	p.ProjectName = replaceIfSet(p.ProjectName, e.ProjectName)
	p.Position = replaceIfSet(p.Position, e.Position)
	p.Description = replaceIfSet(p.Description, e.Description)
	if len(e.Technologies) > 0 {
		p.Technologies = unionTokens(nil, e.Technologies)
	}
	if t := reconcile.ParseDatePtr(e.StartDate); t != nil {
		p.StartDate = t
	}
	if t := reconcile.ParseDatePtr(e.EndDate); t != nil {
		p.EndDate = t
	}
	return p
}

// mergeProject keeps existing values, fills blanks, unions technologies and widens the range.
func mergeProject(p domain.TalentProject, e domain.ExtractedProject) domain.TalentProject {
	p.Position = fillIfBlank(p.Position, e.Position)
	p.Description = fillIfBlank(p.Description, e.Description)
	p.Technologies = unionTokens(p.Technologies, e.Technologies)
	p.StartDate = earliest(p.StartDate, reconcile.ParseDatePtr(e.StartDate))
	p.EndDate = latest(p.EndDate, reconcile.ParseDatePtr(e.EndDate))
	return p
}

func overwriteWork(w domain.TalentWorkExperience, e domain.ExtractedWorkExperience) domain.TalentWorkExperience {
	w.Company = replaceIfSet(w.Company, e.Company)
	w.Position = replaceIfSet(w.Position, e.Position)
	w.Description = replaceIfSet(w.Description, e.Description)
	if t := reconcile.ParseDatePtr(e.StartDate); t != nil {
		w.StartDate = t
	}
	if t, ok, ongoing := reconcile.ParseDate(e.EndDate); ok {
		w.EndDate = &t
	} else if ongoing {
		w.EndDate = nil
	}
	return w
}

// mergeWork widens the range; an ongoing end on either side stays ongoing.
func mergeWork(w domain.TalentWorkExperience, e domain.ExtractedWorkExperience) domain.TalentWorkExperience {
	w.Description = fillIfBlank(w.Description, e.Description)
	w.StartDate = earliest(w.StartDate, reconcile.ParseDatePtr(e.StartDate))
	if w.EndDate != nil {
		if _, _, ongoing := reconcile.ParseDate(e.EndDate); ongoing {
			w.EndDate = nil
		} else {
			w.EndDate = latest(w.EndDate, reconcile.ParseDatePtr(e.EndDate))
		}
	}
	return w
}

func earliest(a, b *time.Time) *time.Time {
	if a == nil {
		return b
	}
	if b != nil && b.Before(*a) {
		return b
	}
	return a
}

func latest(a, b *time.Time) *time.Time {
	if a == nil {
		return b
	}
	if b != nil && b.After(*a) {
		return b
	}
	return a
}

// unionTokens appends tokens from add that base lacks, comparing normalized values.
func unionTokens(base, add []string) []string {
	out := slices.Clone(base)
	seen := make(map[string]bool, len(base)+len(add))
	for _, t := range base {
		seen[reconcile.NormalizeName(t)] = true
	}
	for _, t := range add {
		key := reconcile.NormalizeName(t)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, strings.TrimSpace(t))
	}
	return out
}

func projectsEqual(a, b domain.TalentProject) bool {
	return a.ProjectName == b.ProjectName &&
		a.Position == b.Position &&
		a.Description == b.Description &&
		slices.Equal(a.Technologies, b.Technologies) &&
		reconcile.SameDay(a.StartDate, b.StartDate) &&
		reconcile.SameDay(a.EndDate, b.EndDate)
}

func worksEqual(a, b domain.TalentWorkExperience) bool {
	return a.Company == b.Company &&
		a.Position == b.Position &&
		a.Description == b.Description &&
		reconcile.SameDay(a.StartDate, b.StartDate) &&
		reconcile.SameDay(a.EndDate, b.EndDate)
}
