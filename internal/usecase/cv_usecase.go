package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"talent-hub-backend/internal/audit"
	"talent-hub-backend/internal/domain"
	"talent-hub-backend/pkg/apperror"
	"talent-hub-backend/pkg/logger"
	"talent-hub-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

const (
	opDeactivateSibling = "deactivate_sibling"
	opDeleteFile        = "delete_file"
	opActivate          = "activate"
)

type talentCVUsecase struct {
	repo     domain.TalentCVRepository
	store    domain.ObjectStore
	validate *validator.Validate
	audit    *audit.Logger
}

func NewTalentCVUsecase(repo domain.TalentCVRepository, store domain.ObjectStore, validate *validator.Validate, auditLog *audit.Logger) domain.TalentCVUsecase {
	if auditLog == nil {
		auditLog = audit.Nop()
	}
	return &talentCVUsecase{repo: repo, store: store, validate: validate, audit: auditLog}
}

// attempt runs a best-effort side effect. Failures are logged and reported, never returned.
func (u *talentCVUsecase) attempt(ctx context.Context, talentID, cvID int64, op, target string, fn func() error) domain.SideEffect {
	se := domain.SideEffect{Operation: op, Target: target, OK: true}
	if err := fn(); err != nil {
		se.OK = false
		se.Error = err.Error()
		logger.Log.Warn("best-effort operation failed",
			"operation", op, "target", target, "talent_id", talentID, "cv_id", cvID, "error", err)
		u.audit.SideEffectFailed(ctx, talentID, cvID, se)
	}
	return se
}

func cvNotFound() *apperror.AppError {
	return apperror.New(http.StatusNotFound, "CV not found", domain.ErrNotFound)
}

func (u *talentCVUsecase) load(ctx context.Context, id int64) (*domain.TalentCV, error) {
	if id <= 0 {
		return nil, apperror.BadRequest("Invalid CV ID")
	}
	cv, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("load cv %d: %w", id, err))
	}
	if cv == nil {
		return nil, cvNotFound()
	}
	return cv, nil
}

func (u *talentCVUsecase) activeForTalent(ctx context.Context, talentID int64) ([]domain.TalentCV, error) {
	active := true
	cvs, err := u.repo.List(ctx, domain.TalentCVFilter{TalentID: &talentID, IsActive: &active, ExcludeDeleted: true})
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("list active cvs: %w", err))
	}
	return cvs, nil
}

func (u *talentCVUsecase) List(ctx context.Context, filter domain.TalentCVFilter) ([]domain.TalentCV, error) {
	cvs, err := u.repo.List(ctx, filter)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("list cvs: %w", err))
	}
	return cvs, nil
}

func (u *talentCVUsecase) Get(ctx context.Context, id int64) (*domain.TalentCV, error) {
	return u.load(ctx, id)
}

func (u *talentCVUsecase) versionsFor(ctx context.Context, talentID, jobRoleLevelID int64) ([]int, error) {
	if talentID <= 0 {
		return nil, apperror.BadRequest("Invalid talent ID").WithField("talentId")
	}
	if jobRoleLevelID <= 0 {
		return nil, apperror.BadRequest("Job role level is required").WithField("jobRoleLevelId")
	}
	cvs, err := u.repo.List(ctx, domain.TalentCVFilter{TalentID: &talentID, JobRoleLevelID: &jobRoleLevelID, ExcludeDeleted: true})
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("list cv versions: %w", err))
	}
	versions := make([]int, 0, len(cvs))
	for _, cv := range cvs {
		versions = append(versions, cv.Version)
	}
	return versions, nil
}

// SuggestNextVersion returns 1 for a new (talent, job role level) pair, else max+1.
func (u *talentCVUsecase) SuggestNextVersion(ctx context.Context, talentID, jobRoleLevelID int64) (int, error) {
	versions, err := u.versionsFor(ctx, talentID, jobRoleLevelID)
	if err != nil {
		return 0, err
	}
	next := 1
	for _, v := range versions {
		if v >= next {
			next = v + 1
		}
	}
	return next, nil
}

func (u *talentCVUsecase) ValidateVersion(ctx context.Context, candidate int, talentID, jobRoleLevelID int64) error {
	if candidate < 1 || candidate > validation.MaxCVVersion {
		return apperror.BadRequest(fmt.Sprintf("Version must be a whole number between 1 and %d", validation.MaxCVVersion)).WithField("version")
	}
	versions, err := u.versionsFor(ctx, talentID, jobRoleLevelID)
	if err != nil {
		return err
	}
	if len(versions) == 0 && candidate != 1 {
		return apperror.BadRequest("The first CV for a job role level must be version 1").WithField("version")
	}
	for _, v := range versions {
		if v == candidate {
			return apperror.Conflict(
				fmt.Sprintf("Version %d already exists for this job role level", candidate),
				domain.ErrVersionCollision,
			).WithField("version")
		}
	}
	return nil
}

func (u *talentCVUsecase) Create(ctx context.Context, in domain.TalentCVCreate) (*domain.ActivationResult, error) {
	if err := u.validate.Struct(in); err != nil {
		msgs := validation.FormatValidationErrors(err)
		return nil, apperror.New(http.StatusBadRequest, msgs[0], err).WithField(validation.FirstField(err))
	}
	if err := u.ValidateVersion(ctx, in.Version, in.TalentID, in.JobRoleLevelID); err != nil {
		return nil, err
	}

	active, err := u.activeForTalent(ctx, in.TalentID)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 && !in.IsActive {
		logger.Log.Info("forcing first cv active", "talent_id", in.TalentID, "job_role_level_id", in.JobRoleLevelID)
		in.IsActive = true
	}

	cv, err := u.repo.Create(ctx, in)
	if err != nil {
		if errors.Is(err, domain.ErrVersionCollision) {
			return nil, apperror.Conflict(
				fmt.Sprintf("Version %d already exists for this job role level", in.Version), err,
			).WithField("version")
		}
		return nil, apperror.Internal(fmt.Errorf("create cv: %w", err))
	}

	result := &domain.ActivationResult{CV: cv}
	if cv.IsActive {
		result.SideEffects = u.deactivateSiblings(ctx, cv)
	}
	u.audit.Log(ctx, audit.Event{
		Event:    audit.EventCVCreated,
		TalentID: cv.TalentID,
		CVID:     cv.ID,
		Details:  map[string]any{"job_role_level_id": cv.JobRoleLevelID, "version": cv.Version, "is_active": cv.IsActive},
	})
	return result, nil
}

// deactivateSiblings switches off every other active CV of the same talent and job role level.
func (u *talentCVUsecase) deactivateSiblings(ctx context.Context, target *domain.TalentCV) []domain.SideEffect {
	active := true
	siblings, err := u.repo.List(ctx, domain.TalentCVFilter{
		TalentID:       &target.TalentID,
		JobRoleLevelID: &target.JobRoleLevelID,
		IsActive:       &active,
		ExcludeDeleted: true,
	})
	if err != nil {
		se := domain.SideEffect{Operation: opDeactivateSibling, Target: "siblings", Error: err.Error()}
		logger.Log.Warn("failed to list sibling cvs", "cv_id", target.ID, "error", err)
		u.audit.SideEffectFailed(ctx, target.TalentID, target.ID, se)
		return []domain.SideEffect{se}
	}

	var effects []domain.SideEffect
	inactive := false
	for _, s := range siblings {
		if s.ID == target.ID {
			continue
		}
		effects = append(effects, u.attempt(ctx, target.TalentID, target.ID, opDeactivateSibling, strconv.FormatInt(s.ID, 10), func() error {
			_, err := u.repo.UpdateFields(ctx, s.ID, domain.TalentCVUpdate{TalentID: s.TalentID, IsActive: &inactive})
			return err
		}))
	}
	return effects
}

func (u *talentCVUsecase) UpdateSummary(ctx context.Context, id int64, summary string) (*domain.TalentCV, error) {
	if err := u.validate.Var(summary, "max=4000,no_emoji"); err != nil {
		return nil, apperror.BadRequest("Summary must be at most 4000 characters without emoji").WithField("summary")
	}
	cv, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}
	updated, err := u.repo.UpdateFields(ctx, id, domain.TalentCVUpdate{TalentID: cv.TalentID, Summary: &summary})
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("update cv summary: %w", err))
	}
	u.audit.Log(ctx, audit.Event{Event: audit.EventCVSummaryUpdated, TalentID: cv.TalentID, CVID: id})
	return updated, nil
}

// Activate makes the CV active and deactivates its siblings. Sibling failures are reported in
// the result and leave the target active.
func (u *talentCVUsecase) Activate(ctx context.Context, id int64) (*domain.ActivationResult, error) {
	cv, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}

	effects := u.deactivateSiblings(ctx, cv)

	if !cv.IsActive {
		active := true
		cv, err = u.repo.UpdateFields(ctx, id, domain.TalentCVUpdate{TalentID: cv.TalentID, IsActive: &active})
		if err != nil {
			return nil, apperror.Internal(fmt.Errorf("activate cv %d: %w", id, err))
		}
	}

	u.audit.Log(ctx, audit.Event{Event: audit.EventCVActivated, TalentID: cv.TalentID, CVID: cv.ID})
	return &domain.ActivationResult{CV: cv, SideEffects: effects}, nil
}

// Deactivate refuses to switch off the talent's only active CV.
func (u *talentCVUsecase) Deactivate(ctx context.Context, id int64) (*domain.TalentCV, error) {
	cv, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !cv.IsActive {
		return cv, nil
	}

	active, err := u.activeForTalent(ctx, cv.TalentID)
	if err != nil {
		return nil, err
	}
	if len(active) == 1 && active[0].ID == cv.ID {
		return nil, apperror.Conflict(
			"This is the talent's only active CV. Activate another CV before deactivating it.",
			domain.ErrLastActiveCV,
		).WithField("isActive")
	}

	inactive := false
	updated, err := u.repo.UpdateFields(ctx, id, domain.TalentCVUpdate{TalentID: cv.TalentID, IsActive: &inactive})
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("deactivate cv %d: %w", id, err))
	}
	u.audit.Log(ctx, audit.Event{Event: audit.EventCVDeactivated, TalentID: cv.TalentID, CVID: cv.ID})
	return updated, nil
}

// Delete removes the stored file first, then always soft-deletes the record.
func (u *talentCVUsecase) Delete(ctx context.Context, id int64) (*domain.DeletionResult, error) {
	cv, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if cv.IsActive {
		return nil, apperror.Conflict("Deactivate the CV before deleting it", domain.ErrActiveDeletion).WithField("isActive")
	}

	result := &domain.DeletionResult{CVID: id}
	if cv.CVFileURL != "" && u.store != nil {
		result.SideEffects = append(result.SideEffects, u.attempt(ctx, cv.TalentID, cv.ID, opDeleteFile, cv.CVFileURL, func() error {
			return u.store.Delete(ctx, cv.CVFileURL)
		}))
	}

	if err := u.repo.DeleteByID(ctx, id); err != nil {
		return nil, apperror.Internal(fmt.Errorf("delete cv %d: %w", id, err))
	}
	u.audit.Log(ctx, audit.Event{Event: audit.EventCVDeleted, TalentID: cv.TalentID, CVID: cv.ID})
	return result, nil
}

// Sweep converges activation state: one active CV per (talent, job role level) keeping the
// highest version, and at least one active CV per talent that has any.
func (u *talentCVUsecase) Sweep(ctx context.Context, talentID *int64) (*domain.SweepReport, error) {
	cvs, err := u.repo.List(ctx, domain.TalentCVFilter{TalentID: talentID, ExcludeDeleted: true})
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("list cvs for sweep: %w", err))
	}

	byTalent := make(map[int64][]domain.TalentCV)
	var talentIDs []int64
	for _, cv := range cvs {
		if _, ok := byTalent[cv.TalentID]; !ok {
			talentIDs = append(talentIDs, cv.TalentID)
		}
		byTalent[cv.TalentID] = append(byTalent[cv.TalentID], cv)
	}
	sort.Slice(talentIDs, func(i, j int) bool { return talentIDs[i] < talentIDs[j] })

	report := &domain.SweepReport{TalentsScanned: len(talentIDs), Deactivated: []int64{}, Activated: []int64{}}
	for _, tid := range talentIDs {
		u.sweepTalent(ctx, tid, byTalent[tid], report)
	}

	u.audit.Log(ctx, audit.Event{
		Event:   audit.EventSweepCompleted,
		Details: map[string]any{"talents": report.TalentsScanned, "deactivated": report.Deactivated, "activated": report.Activated},
	})
	return report, nil
}

func (u *talentCVUsecase) sweepTalent(ctx context.Context, talentID int64, cvs []domain.TalentCV, report *domain.SweepReport) {
	activeByRole := make(map[int64][]domain.TalentCV)
	for _, cv := range cvs {
		if cv.IsActive {
			activeByRole[cv.JobRoleLevelID] = append(activeByRole[cv.JobRoleLevelID], cv)
		}
	}

	roles := make([]int64, 0, len(activeByRole))
	for r := range activeByRole {
		roles = append(roles, r)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })

	inactive := false
	for _, r := range roles {
		active := activeByRole[r]
		if len(active) < 2 {
			continue
		}
		sort.Slice(active, func(i, j int) bool { return active[i].Version > active[j].Version })
		for _, extra := range active[1:] {
			se := u.attempt(ctx, talentID, extra.ID, opDeactivateSibling, strconv.FormatInt(extra.ID, 10), func() error {
				_, err := u.repo.UpdateFields(ctx, extra.ID, domain.TalentCVUpdate{TalentID: talentID, IsActive: &inactive})
				return err
			})
			if se.OK {
				report.Deactivated = append(report.Deactivated, extra.ID)
			} else {
				report.SideEffects = append(report.SideEffects, se)
			}
		}
	}

	if len(activeByRole) > 0 || len(cvs) == 0 {
		return
	}

	target := pickFallbackActive(cvs)
	active := true
	se := u.attempt(ctx, talentID, target.ID, opActivate, strconv.FormatInt(target.ID, 10), func() error {
		_, err := u.repo.UpdateFields(ctx, target.ID, domain.TalentCVUpdate{TalentID: talentID, IsActive: &active})
		return err
	})
	if se.OK {
		report.Activated = append(report.Activated, target.ID)
	} else {
		report.SideEffects = append(report.SideEffects, se)
	}
}

// pickFallbackActive takes the job role level of the most recently created CV and returns
// its highest version.
func pickFallbackActive(cvs []domain.TalentCV) domain.TalentCV {
	latest := cvs[0]
	for _, cv := range cvs[1:] {
		if cv.CreatedAt.After(latest.CreatedAt) || (cv.CreatedAt.Equal(latest.CreatedAt) && cv.ID > latest.ID) {
			latest = cv
		}
	}
	best := latest
	for _, cv := range cvs {
		if cv.JobRoleLevelID == latest.JobRoleLevelID && cv.Version > best.Version {
			best = cv
		}
	}
	return best
}
