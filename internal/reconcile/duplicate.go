package reconcile

import (
	"time"

	"talent-hub-backend/internal/domain"
)

// Options tunes the loose duplicate heuristic.
type Options struct {
	// DateToleranceDays widens both ranges before checking work experience overlap.
	DateToleranceDays int
	// MinSharedTechnologies is the number of common technology tokens a loose project match needs.
	MinSharedTechnologies int
}

func DefaultOptions() Options {
	return Options{DateToleranceDays: 31, MinSharedTechnologies: 1}
}

type Detector struct {
	opts Options
}

func NewDetector(opts Options) *Detector {
	if opts.DateToleranceDays < 0 {
		opts.DateToleranceDays = 0
	}
	if opts.MinSharedTechnologies < 1 {
		opts.MinSharedTechnologies = 1
	}
	return &Detector{opts: opts}
}

// FindProjectDuplicate returns the first existing project the candidate plausibly duplicates.
func (d *Detector) FindProjectDuplicate(candidate domain.ExtractedProject, existing []domain.TalentProject) (*domain.ProjectDuplicate, bool) {
	name := NormalizeName(candidate.ProjectName)
	if name == "" {
		return nil, false
	}
	for _, e := range existing {
		var rec domain.Recommendation
		switch {
		case NormalizeName(e.ProjectName) == name:
			rec = domain.RecommendUpdate
			if projectContentEqual(candidate, e) {
				rec = domain.RecommendIdentical
			}
		case containsEither(e.ProjectName, candidate.ProjectName) &&
			sharedTokens(candidate.Technologies, e.Technologies) >= d.opts.MinSharedTechnologies:
			rec = domain.RecommendKeepBoth
		default:
			continue
		}
		return &domain.ProjectDuplicate{Existing: e, FromCV: candidate, Recommendation: rec}, true
	}
	return nil, false
}

// FindWorkExperienceDuplicate matches on position and company together.
func (d *Detector) FindWorkExperienceDuplicate(candidate domain.ExtractedWorkExperience, existing []domain.TalentWorkExperience) (*domain.WorkExperienceDuplicate, bool) {
	position, company := NormalizeName(candidate.Position), NormalizeName(candidate.Company)
	if position == "" && company == "" {
		return nil, false
	}
	cStart, cEnd := extractedRange(candidate.StartDate, candidate.EndDate)
	for _, e := range existing {
		var rec domain.Recommendation
		switch {
		case NormalizeName(e.Position) == position && NormalizeName(e.Company) == company:
			rec = domain.RecommendUpdate
			if workContentEqual(candidate, e) {
				rec = domain.RecommendIdentical
			}
		case looseEqual(e.Position, candidate.Position) && looseEqual(e.Company, candidate.Company) &&
			d.overlaps(cStart, cEnd, e.StartDate, e.EndDate):
			rec = domain.RecommendKeepBoth
		default:
			continue
		}
		return &domain.WorkExperienceDuplicate{Existing: e, FromCV: candidate, Recommendation: rec}, true
	}
	return nil, false
}

// FindIdenticalProject scans the whole list for an entry equal to candidate on every
// comparable field, ignoring loose matches that come earlier.
func FindIdenticalProject(candidate domain.ExtractedProject, existing []domain.TalentProject) (*domain.TalentProject, bool) {
	name := NormalizeName(candidate.ProjectName)
	if name == "" {
		return nil, false
	}
	for i := range existing {
		if NormalizeName(existing[i].ProjectName) == name && projectContentEqual(candidate, existing[i]) {
			return &existing[i], true
		}
	}
	return nil, false
}

// FindIdenticalWorkExperience is FindIdenticalProject for work experience.
func FindIdenticalWorkExperience(candidate domain.ExtractedWorkExperience, existing []domain.TalentWorkExperience) (*domain.TalentWorkExperience, bool) {
	position, company := NormalizeName(candidate.Position), NormalizeName(candidate.Company)
	if position == "" && company == "" {
		return nil, false
	}
	for i := range existing {
		e := &existing[i]
		if NormalizeName(e.Position) == position && NormalizeName(e.Company) == company && workContentEqual(candidate, *e) {
			return e, true
		}
	}
	return nil, false
}

func looseEqual(a, b string) bool {
	return NormalizeName(a) == NormalizeName(b) || containsEither(a, b)
}

// overlaps treats a missing start as the distant past and a missing end as ongoing.
func (d *Detector) overlaps(aStart, aEnd, bStart, bEnd *time.Time) bool {
	tol := time.Duration(d.opts.DateToleranceDays) * 24 * time.Hour
	as, ae := bounds(aStart, aEnd)
	bs, be := bounds(bStart, bEnd)
	return !as.Add(-tol).After(be) && !bs.After(ae.Add(tol))
}

var (
	distantPast   = time.Unix(0, 0).AddDate(-100, 0, 0)
	distantFuture = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
)

func bounds(start, end *time.Time) (time.Time, time.Time) {
	s, e := distantPast, distantFuture
	if start != nil {
		s = *start
	}
	if end != nil {
		e = *end
	}
	return s, e
}

func extractedRange(start, end string) (*time.Time, *time.Time) {
	return ParseDatePtr(start), ParseDatePtr(end)
}

func sharedTokens(a, b []string) int {
	set := make(map[string]bool, len(b))
	for _, t := range b {
		if n := NormalizeName(t); n != "" {
			set[n] = true
		}
	}
	shared := 0
	for _, t := range a {
		n := NormalizeName(t)
		if set[n] {
			shared++
			delete(set, n)
		}
	}
	return shared
}

func sameTokenSet(a, b []string) bool {
	na, nb := tokenSet(a), tokenSet(b)
	if len(na) != len(nb) {
		return false
	}
	for t := range na {
		if !nb[t] {
			return false
		}
	}
	return true
}

func tokenSet(list []string) map[string]bool {
	set := make(map[string]bool, len(list))
	for _, t := range list {
		if n := NormalizeName(t); n != "" {
			set[n] = true
		}
	}
	return set
}

func projectContentEqual(c domain.ExtractedProject, e domain.TalentProject) bool {
	return NormalizeName(c.Position) == NormalizeName(e.Position) &&
		NormalizeName(c.Description) == NormalizeName(e.Description) &&
		sameTokenSet(c.Technologies, e.Technologies) &&
		SameDay(ParseDatePtr(c.StartDate), e.StartDate) &&
		SameDay(ParseDatePtr(c.EndDate), e.EndDate)
}

func workContentEqual(c domain.ExtractedWorkExperience, e domain.TalentWorkExperience) bool {
	return NormalizeName(c.Description) == NormalizeName(e.Description) &&
		SameDay(ParseDatePtr(c.StartDate), e.StartDate) &&
		SameDay(ParseDatePtr(c.EndDate), e.EndDate)
}
