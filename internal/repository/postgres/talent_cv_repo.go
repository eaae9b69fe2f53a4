package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"talent-hub-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

const talentCVColumns = `id, talent_id, job_role_level_id, version, cv_file_url, is_active, summary,
	is_generated_from_template, source_template_id, generated_for_job_request_id,
	created_at, updated_at, deleted_at`

type talentCVRepository struct {
	db *pgxpool.Pool
}

func NewTalentCVRepository(db *pgxpool.Pool) domain.TalentCVRepository {
	return &talentCVRepository{db: db}
}

func scanTalentCV(row pgx.Row) (*domain.TalentCV, error) {
	var cv domain.TalentCV
	err := row.Scan(
		&cv.ID, &cv.TalentID, &cv.JobRoleLevelID, &cv.Version, &cv.CVFileURL, &cv.IsActive, &cv.Summary,
		&cv.IsGeneratedFromTemplate, &cv.SourceTemplateID, &cv.GeneratedForJobRequestID,
		&cv.CreatedAt, &cv.UpdatedAt, &cv.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &cv, nil
}

func (r *talentCVRepository) List(ctx context.Context, filter domain.TalentCVFilter) ([]domain.TalentCV, error) {
	var (
		where []string
		args  []interface{}
	)
	add := func(cond string, v interface{}) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if filter.TalentID != nil {
		add("talent_id = $%d", *filter.TalentID)
	}
	if filter.JobRoleLevelID != nil {
		add("job_role_level_id = $%d", *filter.JobRoleLevelID)
	}
	if filter.IsActive != nil {
		add("is_active = $%d", *filter.IsActive)
	}
	if filter.ExcludeDeleted {
		where = append(where, "deleted_at IS NULL")
	}

	query := "SELECT " + talentCVColumns + " FROM talent_cvs"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY job_role_level_id, version DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list talent cvs: %w", err)
	}
	defer rows.Close()

	cvs := []domain.TalentCV{}
	for rows.Next() {
		cv, err := scanTalentCV(rows)
		if err != nil {
			return nil, err
		}
		cvs = append(cvs, *cv)
	}
	return cvs, rows.Err()
}

func (r *talentCVRepository) GetByID(ctx context.Context, id int64) (*domain.TalentCV, error) {
	query := "SELECT " + talentCVColumns + " FROM talent_cvs WHERE id = $1 AND deleted_at IS NULL"
	cv, err := scanTalentCV(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return cv, nil
}

func (r *talentCVRepository) Create(ctx context.Context, in domain.TalentCVCreate) (*domain.TalentCV, error) {
	query := `
		INSERT INTO talent_cvs (
			talent_id, job_role_level_id, version, cv_file_url, is_active, summary,
			is_generated_from_template, source_template_id, generated_for_job_request_id,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING ` + talentCVColumns

	cv, err := scanTalentCV(r.db.QueryRow(ctx, query,
		in.TalentID, in.JobRoleLevelID, in.Version, in.CVFileURL, in.IsActive, in.Summary,
		in.IsGeneratedFromTemplate, in.SourceTemplateID, in.GeneratedForJobRequestID,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domain.ErrVersionCollision
		}
		return nil, fmt.Errorf("failed to create talent cv: %w", err)
	}
	return cv, nil
}

func (r *talentCVRepository) UpdateFields(ctx context.Context, id int64, upd domain.TalentCVUpdate) (*domain.TalentCV, error) {
	query := `
		UPDATE talent_cvs SET
			summary = COALESCE($3, summary),
			is_active = COALESCE($4, is_active),
			updated_at = NOW()
		WHERE id = $1 AND talent_id = $2 AND deleted_at IS NULL
		RETURNING ` + talentCVColumns

	cv, err := scanTalentCV(r.db.QueryRow(ctx, query, id, upd.TalentID, upd.Summary, upd.IsActive))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update talent cv %d: %w", id, err)
	}
	return cv, nil
}

// DeleteByID soft-deletes the record; the version number becomes reusable.
func (r *talentCVRepository) DeleteByID(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE talent_cvs SET deleted_at = NOW(), is_active = FALSE, updated_at = NOW()
		 WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to delete talent cv %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
