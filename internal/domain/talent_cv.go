package domain

import (
	"context"
	"time"
)

// TalentCV is one versioned CV document a talent holds for a job role level.
type TalentCV struct {
	ID                       int64      `json:"id"`
	TalentID                 int64      `json:"talentId"`
	JobRoleLevelID           int64      `json:"jobRoleLevelId"`
	Version                  int        `json:"version"`
	CVFileURL                string     `json:"cvFileUrl"`
	IsActive                 bool       `json:"isActive"`
	Summary                  string     `json:"summary"`
	IsGeneratedFromTemplate  bool       `json:"isGeneratedFromTemplate"`
	SourceTemplateID         *int64     `json:"sourceTemplateId,omitempty"`
	GeneratedForJobRequestID *int64     `json:"generatedForJobRequestId,omitempty"`
	CreatedAt                time.Time  `json:"createdAt"`
	UpdatedAt                time.Time  `json:"updatedAt"`
	DeletedAt                *time.Time `json:"deletedAt,omitempty"`
}

type TalentCVCreate struct {
	TalentID                 int64  `json:"talentId" validate:"required,gt=0"`
	JobRoleLevelID           int64  `json:"jobRoleLevelId" validate:"required,gt=0"`
	Version                  int    `json:"version" validate:"cv_version"`
	CVFileURL                string `json:"cvFileUrl" validate:"required,max=2048"`
	IsActive                 bool   `json:"isActive"`
	Summary                  string `json:"summary" validate:"max=4000,no_emoji"`
	IsGeneratedFromTemplate  bool   `json:"isGeneratedFromTemplate"`
	SourceTemplateID         *int64 `json:"sourceTemplateId,omitempty"`
	GeneratedForJobRequestID *int64 `json:"generatedForJobRequestId,omitempty"`
}

// TalentCVFilter narrows List; nil fields are not applied.
type TalentCVFilter struct {
	TalentID       *int64
	JobRoleLevelID *int64
	IsActive       *bool
	ExcludeDeleted bool
}

// TalentCVUpdate carries the mutable fields; TalentID scopes the write.
type TalentCVUpdate struct {
	TalentID int64
	Summary  *string
	IsActive *bool
}

type TalentCVRepository interface {
	List(ctx context.Context, filter TalentCVFilter) ([]TalentCV, error)
	// GetByID returns nil, nil for unknown or deleted records.
	GetByID(ctx context.Context, id int64) (*TalentCV, error)
	Create(ctx context.Context, in TalentCVCreate) (*TalentCV, error)
	UpdateFields(ctx context.Context, id int64, upd TalentCVUpdate) (*TalentCV, error)
	DeleteByID(ctx context.Context, id int64) error
}

// SideEffect reports the outcome of a best-effort secondary operation.
// A failed side effect never fails the primary operation it belongs to.
type SideEffect struct {
	Operation string `json:"operation"`
	Target    string `json:"target"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
}

type ActivationResult struct {
	CV          *TalentCV    `json:"cv"`
	SideEffects []SideEffect `json:"sideEffects,omitempty"`
}

type DeletionResult struct {
	CVID        int64        `json:"cvId"`
	SideEffects []SideEffect `json:"sideEffects,omitempty"`
}

type SweepReport struct {
	TalentsScanned int          `json:"talentsScanned"`
	Deactivated    []int64      `json:"deactivated"`
	Activated      []int64      `json:"activated"`
	SideEffects    []SideEffect `json:"sideEffects,omitempty"`
}

type TalentCVUsecase interface {
	List(ctx context.Context, filter TalentCVFilter) ([]TalentCV, error)
	Get(ctx context.Context, id int64) (*TalentCV, error)
	SuggestNextVersion(ctx context.Context, talentID, jobRoleLevelID int64) (int, error)
	ValidateVersion(ctx context.Context, candidate int, talentID, jobRoleLevelID int64) error
	Create(ctx context.Context, in TalentCVCreate) (*ActivationResult, error)
	UpdateSummary(ctx context.Context, id int64, summary string) (*TalentCV, error)
	Activate(ctx context.Context, id int64) (*ActivationResult, error)
	Deactivate(ctx context.Context, id int64) (*TalentCV, error)
	Delete(ctx context.Context, id int64) (*DeletionResult, error)
	Sweep(ctx context.Context, talentID *int64) (*SweepReport, error)
}
