package domain

import (
	"context"
	"fmt"
)

type Skill struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// JobRoleLevel pairs a position with a seniority level, e.g. "Backend Engineer – Senior".
type JobRoleLevel struct {
	ID        int64  `json:"id"`
	JobRoleID int64  `json:"jobRoleId"`
	Position  string `json:"position"`
	Level     string `json:"level"`
}

func (j JobRoleLevel) DisplayName() string {
	if j.Level == "" {
		return j.Position
	}
	return fmt.Sprintf("%s – %s", j.Position, j.Level)
}

type CertificateType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Catalog is a read-only snapshot of the reference lists used for matching.
type Catalog struct {
	Skills           []Skill           `json:"skills"`
	JobRoleLevels    []JobRoleLevel    `json:"jobRoleLevels"`
	CertificateTypes []CertificateType `json:"certificateTypes"`
}

type CatalogRepository interface {
	ListSkills(ctx context.Context) ([]Skill, error)
	// CreateSkill returns the existing entry when the name is already present (case-insensitive).
	CreateSkill(ctx context.Context, name string) (*Skill, error)
	ListJobRoleLevels(ctx context.Context) ([]JobRoleLevel, error)
	// CreateJobRoleLevel resolves or creates both the job role and its level.
	CreateJobRoleLevel(ctx context.Context, position, level string) (*JobRoleLevel, error)
	ListCertificateTypes(ctx context.Context) ([]CertificateType, error)
}
