package postgres

import (
	"context"
	"errors"
	"fmt"

	"talent-hub-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type talentRepository struct {
	db *pgxpool.Pool
}

func NewTalentRepository(db *pgxpool.Pool) domain.TalentRepository {
	return &talentRepository{db: db}
}

func (r *talentRepository) GetByID(ctx context.Context, id int64) (*domain.Talent, error) {
	t := &domain.Talent{
		ID:              id,
		Skills:          []domain.TalentSkill{},
		JobRoleLevels:   []domain.TalentJobRoleLevel{},
		Certificates:    []domain.TalentCertificate{},
		Projects:        []domain.TalentProject{},
		WorkExperiences: []domain.TalentWorkExperience{},
	}

	// 1. Identity
	err := r.db.QueryRow(ctx,
		`SELECT full_name, email, phone, location_name FROM talents WHERE id = $1`, id,
	).Scan(&t.FullName, &t.Email, &t.Phone, &t.LocationName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch talent: %w", err)
	}

	// 2. Skills (pivot + catalog)
	rows, err := r.db.Query(ctx, `
		SELECT s.id, s.name, ts.level, ts.years_exp
		FROM talent_skills ts JOIN skills s ON s.id = ts.skill_id
		WHERE ts.talent_id = $1 ORDER BY s.name`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch skills: %w", err)
	}
	for rows.Next() {
		var s domain.TalentSkill
		if err := rows.Scan(&s.SkillID, &s.Name, &s.Level, &s.YearsExp); err != nil {
			rows.Close()
			return nil, err
		}
		t.Skills = append(t.Skills, s)
	}
	rows.Close()

	// 3. Job role levels
	rows, err = r.db.Query(ctx, `
		SELECT jrl.id, jr.name, jrl.level, tj.years_of_exp, tj.rate_per_month
		FROM talent_job_role_levels tj
		JOIN job_role_levels jrl ON jrl.id = tj.job_role_level_id
		JOIN job_roles jr ON jr.id = jrl.job_role_id
		WHERE tj.talent_id = $1 ORDER BY jr.name, jrl.level`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch job role levels: %w", err)
	}
	for rows.Next() {
		var j domain.TalentJobRoleLevel
		if err := rows.Scan(&j.JobRoleLevelID, &j.Position, &j.Level, &j.YearsOfExp, &j.RatePerMonth); err != nil {
			rows.Close()
			return nil, err
		}
		t.JobRoleLevels = append(t.JobRoleLevels, j)
	}
	rows.Close()

	// 4. Certificates
	rows, err = r.db.Query(ctx, `
		SELECT id, talent_id, certificate_type_id, name, issued_by, issued_date
		FROM talent_certificates WHERE talent_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch certificates: %w", err)
	}
	for rows.Next() {
		var c domain.TalentCertificate
		if err := rows.Scan(&c.ID, &c.TalentID, &c.CertificateTypeID, &c.Name, &c.IssuedBy, &c.IssuedDate); err != nil {
			rows.Close()
			return nil, err
		}
		t.Certificates = append(t.Certificates, c)
	}
	rows.Close()

	// 5. Projects
	rows, err = r.db.Query(ctx, `
		SELECT id, talent_id, project_name, position, description, technologies, start_date, end_date
		FROM talent_projects WHERE talent_id = $1 ORDER BY start_date DESC NULLS LAST, id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch projects: %w", err)
	}
	for rows.Next() {
		var (
			p    domain.TalentProject
			tech []string
		)
		if err := rows.Scan(&p.ID, &p.TalentID, &p.ProjectName, &p.Position, &p.Description,
			pq.Array(&tech), &p.StartDate, &p.EndDate); err != nil {
			rows.Close()
			return nil, err
		}
		p.Technologies = tech
		t.Projects = append(t.Projects, p)
	}
	rows.Close()

	// 6. Work experiences
	rows, err = r.db.Query(ctx, `
		SELECT id, talent_id, company, position, description, start_date, end_date
		FROM talent_work_experiences WHERE talent_id = $1 ORDER BY start_date DESC NULLS LAST, id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch work experiences: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var w domain.TalentWorkExperience
		if err := rows.Scan(&w.ID, &w.TalentID, &w.Company, &w.Position, &w.Description, &w.StartDate, &w.EndDate); err != nil {
			return nil, err
		}
		t.WorkExperiences = append(t.WorkExperiences, w)
	}
	return t, rows.Err()
}

func (r *talentRepository) UpdateBasicInfo(ctx context.Context, id int64, info domain.BasicInfo) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE talents SET full_name = $2, email = $3, phone = $4, location_name = $5, updated_at = NOW()
		WHERE id = $1`, id, info.FullName, info.Email, info.Phone, info.LocationName)
	if err != nil {
		return fmt.Errorf("failed to update basic info: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *talentRepository) AddSkill(ctx context.Context, talentID int64, skill domain.TalentSkill) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO talent_skills (talent_id, skill_id, level, years_exp, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (talent_id, skill_id) DO NOTHING`,
		talentID, skill.SkillID, skill.Level, skill.YearsExp)
	if err != nil {
		return false, fmt.Errorf("failed to link skill %d: %w", skill.SkillID, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *talentRepository) AddJobRoleLevel(ctx context.Context, talentID int64, jrl domain.TalentJobRoleLevel) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO talent_job_role_levels (talent_id, job_role_level_id, years_of_exp, rate_per_month, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (talent_id, job_role_level_id) DO NOTHING`,
		talentID, jrl.JobRoleLevelID, jrl.YearsOfExp, jrl.RatePerMonth)
	if err != nil {
		return false, fmt.Errorf("failed to link job role level %d: %w", jrl.JobRoleLevelID, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *talentRepository) CreateCertificate(ctx context.Context, c *domain.TalentCertificate) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO talent_certificates (talent_id, certificate_type_id, name, issued_by, issued_date, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW()) RETURNING id`,
		c.TalentID, c.CertificateTypeID, c.Name, c.IssuedBy, c.IssuedDate,
	).Scan(&c.ID)
}

func (r *talentRepository) CreateProject(ctx context.Context, p *domain.TalentProject) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO talent_projects (talent_id, project_name, position, description, technologies, start_date, end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW()) RETURNING id`,
		p.TalentID, p.ProjectName, p.Position, p.Description, pq.Array(nonNil(p.Technologies)), p.StartDate, p.EndDate,
	).Scan(&p.ID)
}

func (r *talentRepository) UpdateProject(ctx context.Context, p *domain.TalentProject) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE talent_projects SET project_name = $3, position = $4, description = $5, technologies = $6,
			start_date = $7, end_date = $8, updated_at = NOW()
		WHERE id = $1 AND talent_id = $2`,
		p.ID, p.TalentID, p.ProjectName, p.Position, p.Description, pq.Array(nonNil(p.Technologies)), p.StartDate, p.EndDate)
	if err != nil {
		return fmt.Errorf("failed to update project %d: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *talentRepository) CreateWorkExperience(ctx context.Context, w *domain.TalentWorkExperience) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO talent_work_experiences (talent_id, company, position, description, start_date, end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW()) RETURNING id`,
		w.TalentID, w.Company, w.Position, w.Description, w.StartDate, w.EndDate,
	).Scan(&w.ID)
}

func (r *talentRepository) UpdateWorkExperience(ctx context.Context, w *domain.TalentWorkExperience) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE talent_work_experiences SET company = $3, position = $4, description = $5,
			start_date = $6, end_date = $7, updated_at = NOW()
		WHERE id = $1 AND talent_id = $2`,
		w.ID, w.TalentID, w.Company, w.Position, w.Description, w.StartDate, w.EndDate)
	if err != nil {
		return fmt.Errorf("failed to update work experience %d: %w", w.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// nonNil keeps NOT NULL array columns from receiving a SQL NULL.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
