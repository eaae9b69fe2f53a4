package postgres

import (
	"context"
	"fmt"
	"strings"

	"talent-hub-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type catalogRepository struct {
	db *pgxpool.Pool
}

func NewCatalogRepository(db *pgxpool.Pool) domain.CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) ListSkills(ctx context.Context) ([]domain.Skill, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM skills ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list skills: %w", err)
	}
	defer rows.Close()

	skills := []domain.Skill{}
	for rows.Next() {
		var s domain.Skill
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		skills = append(skills, s)
	}
	return skills, rows.Err()
}

// CreateSkill upserts on the case-insensitive name index. The no-op update lets RETURNING
// yield the existing row.
func (r *catalogRepository) CreateSkill(ctx context.Context, name string) (*domain.Skill, error) {
	var s domain.Skill
	err := r.db.QueryRow(ctx, `
		INSERT INTO skills (name, created_at) VALUES ($1, NOW())
		ON CONFLICT (LOWER(name)) DO UPDATE SET name = skills.name
		RETURNING id, name`, strings.TrimSpace(name),
	).Scan(&s.ID, &s.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to create skill %q: %w", name, err)
	}
	return &s, nil
}

func (r *catalogRepository) ListJobRoleLevels(ctx context.Context) ([]domain.JobRoleLevel, error) {
	rows, err := r.db.Query(ctx, `
		SELECT jrl.id, jr.id, jr.name, jrl.level
		FROM job_role_levels jrl JOIN job_roles jr ON jr.id = jrl.job_role_id
		ORDER BY jr.name, jrl.level`)
	if err != nil {
		return nil, fmt.Errorf("failed to list job role levels: %w", err)
	}
	defer rows.Close()

	levels := []domain.JobRoleLevel{}
	for rows.Next() {
		var j domain.JobRoleLevel
		if err := rows.Scan(&j.ID, &j.JobRoleID, &j.Position, &j.Level); err != nil {
			return nil, err
		}
		levels = append(levels, j)
	}
	return levels, rows.Err()
}

func (r *catalogRepository) CreateJobRoleLevel(ctx context.Context, position, level string) (*domain.JobRoleLevel, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	j := domain.JobRoleLevel{Level: strings.TrimSpace(level)}
	err = tx.QueryRow(ctx, `
		INSERT INTO job_roles (name, created_at) VALUES ($1, NOW())
		ON CONFLICT (LOWER(name)) DO UPDATE SET name = job_roles.name
		RETURNING id, name`, strings.TrimSpace(position),
	).Scan(&j.JobRoleID, &j.Position)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve job role %q: %w", position, err)
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO job_role_levels (job_role_id, level, created_at) VALUES ($1, $2, NOW())
		ON CONFLICT (job_role_id, LOWER(level)) DO UPDATE SET level = job_role_levels.level
		RETURNING id, level`, j.JobRoleID, j.Level,
	).Scan(&j.ID, &j.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve job role level %q: %w", j.DisplayName(), err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *catalogRepository) ListCertificateTypes(ctx context.Context) ([]domain.CertificateType, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM certificate_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list certificate types: %w", err)
	}
	defer rows.Close()

	types := []domain.CertificateType{}
	for rows.Next() {
		var c domain.CertificateType
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		types = append(types, c)
	}
	return types, rows.Err()
}
