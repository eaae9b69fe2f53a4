package domain

import "context"

// ComparisonResult is the diff between a CV extraction and the talent's profile, handed to
// the human reviewer.
type ComparisonResult struct {
	TalentID        int64                    `json:"talentId"`
	BasicInfo       BasicInfoComparison      `json:"basicInfo"`
	Skills          SkillComparison          `json:"skills"`
	JobRoleLevels   JobRoleLevelComparison   `json:"jobRoleLevels"`
	Projects        ProjectComparison        `json:"projects"`
	WorkExperiences WorkExperienceComparison `json:"workExperiences"`
	Certificates    CertificateComparison    `json:"certificates"`
}

type BasicInfoComparison struct {
	Current       BasicInfo        `json:"current"`
	Suggested     BasicInfo        `json:"suggested"`
	ChangedFields []BasicInfoField `json:"changedFields"`
	HasChanges    bool             `json:"hasChanges"`
}

type SkillMatch struct {
	FromCV    ExtractedSkill `json:"fromCv"`
	CatalogID *int64         `json:"catalogId,omitempty"`
	// CatalogName is the canonical spelling from the catalog.
	CatalogName string `json:"catalogName,omitempty"`
	OnProfile   bool   `json:"onProfile"`
}

type SkillComparison struct {
	// MatchedInCatalog holds skills that exist in the catalog but not yet on the profile.
	MatchedInCatalog []SkillMatch `json:"matchedInCatalog"`
	// UnmatchedFreeText holds skills the catalog does not know; informational only.
	UnmatchedFreeText []SkillMatch `json:"unmatchedFreeText"`
}

type JobRoleLevelMatch struct {
	FromCV      ExtractedJobRoleLevel `json:"fromCv"`
	CatalogID   *int64                `json:"catalogId,omitempty"`
	CatalogName string                `json:"catalogName,omitempty"`
	OnProfile   bool                  `json:"onProfile"`
}

type JobRoleLevelComparison struct {
	MatchedInCatalog  []JobRoleLevelMatch `json:"matchedInCatalog"`
	UnmatchedFreeText []JobRoleLevelMatch `json:"unmatchedFreeText"`
}

type Recommendation string

const (
	RecommendIdentical Recommendation = "identical"
	RecommendUpdate    Recommendation = "update"
	RecommendKeepBoth  Recommendation = "keep_both"
)

type ProjectDuplicate struct {
	Existing       TalentProject    `json:"existing"`
	FromCV         ExtractedProject `json:"fromCv"`
	Recommendation Recommendation   `json:"recommendation"`
}

type ProjectComparison struct {
	NewEntries          []ExtractedProject `json:"newEntries"`
	PotentialDuplicates []ProjectDuplicate `json:"potentialDuplicates"`
}

type WorkExperienceDuplicate struct {
	Existing       TalentWorkExperience    `json:"existing"`
	FromCV         ExtractedWorkExperience `json:"fromCv"`
	Recommendation Recommendation          `json:"recommendation"`
}

type WorkExperienceComparison struct {
	NewEntries          []ExtractedWorkExperience `json:"newEntries"`
	PotentialDuplicates []WorkExperienceDuplicate `json:"potentialDuplicates"`
}

type CertificateComparison struct {
	NewFromCV []ExtractedCertificate `json:"newFromCv"`
}

type ComparisonUsecase interface {
	Compare(ctx context.Context, talentID int64, extraction *CVExtraction) (*ComparisonResult, error)
}
