package domain

import (
	"context"
	"time"
)

// BasicInfo holds the scalar identity fields compared against a CV.
type BasicInfo struct {
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	LocationName string `json:"locationName"`
}

type BasicInfoField string

const (
	FieldFullName     BasicInfoField = "fullName"
	FieldEmail        BasicInfoField = "email"
	FieldPhone        BasicInfoField = "phone"
	FieldLocationName BasicInfoField = "locationName"
)

// BasicInfoFields lists the tracked fields in display order.
var BasicInfoFields = []BasicInfoField{FieldFullName, FieldEmail, FieldPhone, FieldLocationName}

func (b BasicInfo) Get(f BasicInfoField) string {
	switch f {
	case FieldFullName:
		return b.FullName
	case FieldEmail:
		return b.Email
	case FieldPhone:
		return b.Phone
	case FieldLocationName:
		return b.LocationName
	}
	return ""
}

func (b *BasicInfo) Set(f BasicInfoField, v string) {
	switch f {
	case FieldFullName:
		b.FullName = v
	case FieldEmail:
		b.Email = v
	case FieldPhone:
		b.Phone = v
	case FieldLocationName:
		b.LocationName = v
	}
}

type TalentSkill struct {
	SkillID  int64   `json:"skillId"`
	Name     string  `json:"name"`
	Level    string  `json:"level,omitempty"`
	YearsExp float64 `json:"yearsExp,omitempty"`
}

type TalentJobRoleLevel struct {
	JobRoleLevelID int64   `json:"jobRoleLevelId"`
	Position       string  `json:"position"`
	Level          string  `json:"level"`
	YearsOfExp     float64 `json:"yearsOfExp,omitempty"`
	RatePerMonth   float64 `json:"ratePerMonth,omitempty"`
}

type TalentCertificate struct {
	ID                int64      `json:"id"`
	TalentID          int64      `json:"talentId"`
	CertificateTypeID *int64     `json:"certificateTypeId,omitempty"`
	Name              string     `json:"name"`
	IssuedBy          string     `json:"issuedBy,omitempty"`
	IssuedDate        *time.Time `json:"issuedDate,omitempty"`
}

type TalentProject struct {
	ID           int64      `json:"id"`
	TalentID     int64      `json:"talentId"`
	ProjectName  string     `json:"projectName"`
	Position     string     `json:"position,omitempty"`
	Description  string     `json:"description,omitempty"`
	Technologies []string   `json:"technologies,omitempty"`
	StartDate    *time.Time `json:"startDate,omitempty"`
	EndDate      *time.Time `json:"endDate,omitempty"`
}

type TalentWorkExperience struct {
	ID          int64      `json:"id"`
	TalentID    int64      `json:"talentId"`
	Company     string     `json:"company"`
	Position    string     `json:"position"`
	Description string     `json:"description,omitempty"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	// EndDate nil means the position is ongoing.
	EndDate *time.Time `json:"endDate,omitempty"`
}

type Talent struct {
	ID int64 `json:"id"`
	BasicInfo
	Skills          []TalentSkill          `json:"skills"`
	JobRoleLevels   []TalentJobRoleLevel   `json:"jobRoleLevels"`
	Certificates    []TalentCertificate    `json:"certificates"`
	Projects        []TalentProject        `json:"projects"`
	WorkExperiences []TalentWorkExperience `json:"workExperiences"`
}

type TalentRepository interface {
	// GetByID loads the full profile; returns nil, nil when the talent does not exist.
	GetByID(ctx context.Context, id int64) (*Talent, error)
	UpdateBasicInfo(ctx context.Context, id int64, info BasicInfo) error
	// AddSkill links a catalog skill; created is false when the link already existed.
	AddSkill(ctx context.Context, talentID int64, skill TalentSkill) (created bool, err error)
	AddJobRoleLevel(ctx context.Context, talentID int64, jrl TalentJobRoleLevel) (created bool, err error)
	CreateCertificate(ctx context.Context, cert *TalentCertificate) error
	CreateProject(ctx context.Context, p *TalentProject) error
	UpdateProject(ctx context.Context, p *TalentProject) error
	CreateWorkExperience(ctx context.Context, w *TalentWorkExperience) error
	UpdateWorkExperience(ctx context.Context, w *TalentWorkExperience) error
}
