package domain

import (
	"context"
	"fmt"
)

// Decisions are closed sum types: each domain interface is implemented only by the
// action structs in this file, so the applier can switch over them exhaustively.

type Decision interface {
	ItemRef() string
}

type BasicInfoDecision interface {
	Decision
	basicInfoDecision()
}

// UpdateBasicInfo copies the listed fields from Values onto the profile.
type UpdateBasicInfo struct {
	Fields []BasicInfoField
	Values BasicInfo
}

type SkipBasicInfo struct{}

func (UpdateBasicInfo) basicInfoDecision() {}
func (SkipBasicInfo) basicInfoDecision()   {}
func (UpdateBasicInfo) ItemRef() string    { return "basicInfo" }
func (SkipBasicInfo) ItemRef() string      { return "basicInfo" }

type SkillDecision interface {
	Decision
	skillDecision()
}

// CreateSkill links the skill to the talent, creating the catalog entry when CatalogID is nil
// and no entry with the same name exists.
type CreateSkill struct {
	Skill     ExtractedSkill
	CatalogID *int64
}

type SkipSkill struct {
	Name string
}

func (CreateSkill) skillDecision()    {}
func (SkipSkill) skillDecision()      {}
func (d CreateSkill) ItemRef() string { return d.Skill.Name }
func (d SkipSkill) ItemRef() string   { return d.Name }

type JobRoleLevelDecision interface {
	Decision
	jobRoleLevelDecision()
}

type CreateJobRoleLevel struct {
	JobRoleLevel ExtractedJobRoleLevel
	CatalogID    *int64
}

type SkipJobRoleLevel struct {
	Position string
	Level    string
}

func (CreateJobRoleLevel) jobRoleLevelDecision() {}
func (SkipJobRoleLevel) jobRoleLevelDecision()   {}
func (d CreateJobRoleLevel) ItemRef() string {
	return jobRoleLevelRef(d.JobRoleLevel.Position, d.JobRoleLevel.Level)
}
func (d SkipJobRoleLevel) ItemRef() string { return jobRoleLevelRef(d.Position, d.Level) }

func jobRoleLevelRef(position, level string) string {
	if level == "" {
		return position
	}
	return fmt.Sprintf("%s – %s", position, level)
}

type CertificateDecision interface {
	Decision
	certificateDecision()
}

type CreateCertificate struct {
	Certificate ExtractedCertificate
}

type SkipCertificate struct {
	Name string
}

func (CreateCertificate) certificateDecision() {}
func (SkipCertificate) certificateDecision()   {}
func (d CreateCertificate) ItemRef() string    { return d.Certificate.Name }
func (d SkipCertificate) ItemRef() string      { return d.Name }

type ProjectDecision interface {
	Decision
	projectDecision()
}

type CreateProject struct {
	Project ExtractedProject
}

// UpdateProject overwrites the existing record with the non-blank values from the CV.
type UpdateProject struct {
	ExistingID int64
	Project    ExtractedProject
}

// MergeProject fills blanks on the existing record, unions technologies and widens the dates.
type MergeProject struct {
	ExistingID int64
	Project    ExtractedProject
}

type SkipProject struct {
	ProjectName string
}

func (CreateProject) projectDecision()  {}
func (UpdateProject) projectDecision()  {}
func (MergeProject) projectDecision()   {}
func (SkipProject) projectDecision()    {}
func (d CreateProject) ItemRef() string { return d.Project.ProjectName }
func (d UpdateProject) ItemRef() string {
	return fmt.Sprintf("%s (#%d)", d.Project.ProjectName, d.ExistingID)
}
func (d MergeProject) ItemRef() string {
	return fmt.Sprintf("%s (#%d)", d.Project.ProjectName, d.ExistingID)
}
func (d SkipProject) ItemRef() string { return d.ProjectName }

type WorkExperienceDecision interface {
	Decision
	workExperienceDecision()
}

type CreateWorkExperience struct {
	WorkExperience ExtractedWorkExperience
}

type UpdateWorkExperience struct {
	ExistingID     int64
	WorkExperience ExtractedWorkExperience
}

type MergeWorkExperience struct {
	ExistingID     int64
	WorkExperience ExtractedWorkExperience
}

type SkipWorkExperience struct {
	Company  string
	Position string
}

func (CreateWorkExperience) workExperienceDecision() {}
func (UpdateWorkExperience) workExperienceDecision() {}
func (MergeWorkExperience) workExperienceDecision()  {}
func (SkipWorkExperience) workExperienceDecision()   {}
func (d CreateWorkExperience) ItemRef() string {
	return workRef(d.WorkExperience.Position, d.WorkExperience.Company)
}
func (d UpdateWorkExperience) ItemRef() string {
	return fmt.Sprintf("%s (#%d)", workRef(d.WorkExperience.Position, d.WorkExperience.Company), d.ExistingID)
}
func (d MergeWorkExperience) ItemRef() string {
	return fmt.Sprintf("%s (#%d)", workRef(d.WorkExperience.Position, d.WorkExperience.Company), d.ExistingID)
}
func (d SkipWorkExperience) ItemRef() string { return workRef(d.Position, d.Company) }

func workRef(position, company string) string {
	return fmt.Sprintf("%s @ %s", position, company)
}

// ApplyCVUpdatesRequest is the reviewer's disposition for each comparison item.
type ApplyCVUpdatesRequest struct {
	BasicInfo       BasicInfoDecision
	Skills          []SkillDecision
	JobRoleLevels   []JobRoleLevelDecision
	Certificates    []CertificateDecision
	Projects        []ProjectDecision
	WorkExperiences []WorkExperienceDecision
}

type DomainName string

const (
	DomainBasicInfo       DomainName = "basicInfo"
	DomainSkills          DomainName = "skills"
	DomainJobRoleLevels   DomainName = "jobRoleLevels"
	DomainCertificates    DomainName = "certificates"
	DomainProjects        DomainName = "projects"
	DomainWorkExperiences DomainName = "workExperiences"
)

type DomainStatistics struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

type UpdateStatistics struct {
	BasicInfo       DomainStatistics `json:"basicInfo"`
	Skills          DomainStatistics `json:"skills"`
	JobRoleLevels   DomainStatistics `json:"jobRoleLevels"`
	Certificates    DomainStatistics `json:"certificates"`
	Projects        DomainStatistics `json:"projects"`
	WorkExperiences DomainStatistics `json:"workExperiences"`
}

func (s *UpdateStatistics) For(d DomainName) *DomainStatistics {
	switch d {
	case DomainBasicInfo:
		return &s.BasicInfo
	case DomainSkills:
		return &s.Skills
	case DomainJobRoleLevels:
		return &s.JobRoleLevels
	case DomainCertificates:
		return &s.Certificates
	case DomainProjects:
		return &s.Projects
	case DomainWorkExperiences:
		return &s.WorkExperiences
	}
	panic(fmt.Sprintf("unknown decision domain %q", d))
}

type ApplyFailure struct {
	Domain  DomainName `json:"domain"`
	ItemRef string     `json:"itemRef"`
	Reason  string     `json:"reason"`
}

type ApplyCVUpdatesResponse struct {
	TalentID   int64            `json:"talentId"`
	Statistics UpdateStatistics `json:"statistics"`
	Failures   []ApplyFailure   `json:"failures"`
}

// HasFailures reports whether any item failed; the caller decides whether that blocks.
func (r *ApplyCVUpdatesResponse) HasFailures() bool {
	return len(r.Failures) > 0
}

type DecisionApplier interface {
	Apply(ctx context.Context, talentID int64, req ApplyCVUpdatesRequest) (*ApplyCVUpdatesResponse, error)
}
