package workflow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"talent-hub-backend/internal/audit"
	"talent-hub-backend/internal/domain"
	"talent-hub-backend/pkg/apperror"
	"talent-hub-backend/pkg/logger"

	"github.com/google/uuid"
)

// Limiter gates the externally billed analysis step per operator.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type Deps struct {
	Store     domain.ObjectStore
	Extractor domain.Extractor
	Compare   domain.ComparisonUsecase
	Apply     domain.DecisionApplier
	CVs       domain.TalentCVUsecase
	// Limiter is optional.
	Limiter Limiter
	Audit   *audit.Logger
}

type Service struct {
	deps Deps
}

func NewService(deps Deps) *Service {
	if deps.Audit == nil {
		deps.Audit = audit.Nop()
	}
	return &Service{deps: deps}
}

// FormView is what the full CV form is prefilled with.
type FormView struct {
	TalentID         int64                          `json:"talentId"`
	CVFileURL        string                         `json:"cvFileUrl"`
	JobRoleLevelID   *int64                         `json:"jobRoleLevelId,omitempty"`
	SuggestedVersion int                            `json:"suggestedVersion,omitempty"`
	ApplyResult      *domain.ApplyCVUpdatesResponse `json:"applyResult,omitempty"`
}

type SubmitForm struct {
	JobRoleLevelID int64  `json:"jobRoleLevelId" binding:"required,gt=0"`
	Version        int    `json:"version" binding:"required,gt=0"`
	IsActive       bool   `json:"isActive"`
	Summary        string `json:"summary" binding:"max=4000,no_emoji"`
}

func invalidTransition(s State, a Action) error {
	return apperror.Conflict(fmt.Sprintf("Cannot %s while the workflow is %s", strings.ReplaceAll(string(a), "_", " "), strings.ReplaceAll(string(s), "_", " ")), domain.ErrInvalidTransition)
}

func (s *Session) guardLocked(a Action) error {
	if !allowed(s.state, a, s.comparison) {
		if a == ActionConfirm && s.state == StateReviewing {
			return apperror.Conflict("The comparison has no basic info changes to confirm; proceed instead", domain.ErrNothingToConfirm)
		}
		return invalidTransition(s.state, a)
	}
	return nil
}

// SelectFile attaches a file, replacing any earlier selection. A file stored by a failed
// analysis of the earlier selection is released.
func (svc *Service) SelectFile(ctx context.Context, sess *Session, file domain.CVFile) (Snapshot, error) {
	sess.mu.Lock()
	if err := sess.guardLocked(ActionSelectFile); err != nil {
		sess.mu.Unlock()
		return Snapshot{}, err
	}
	if len(file.Data) == 0 {
		sess.mu.Unlock()
		return Snapshot{}, apperror.BadRequest("File is empty").WithField("file")
	}
	stale, talentID := sess.fileURL, sess.TalentID
	sess.clearLocked()
	sess.file = &file
	sess.state = StateFileSelected
	snap := sess.snapshotLocked()
	sess.mu.Unlock()

	if stale != "" {
		svc.releaseFile(ctx, talentID, stale)
	}
	return snap, nil
}

// Preview creates a revocable reference to the selected file. No network call is made.
func (svc *Service) Preview(ctx context.Context, sess *Session) (Snapshot, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := sess.guardLocked(ActionPreview); err != nil {
		return Snapshot{}, err
	}
	sess.previewRef = uuid.NewString()
	sess.state = StatePreviewing
	return sess.snapshotLocked(), nil
}

// PreviewFile returns the selected file if ref is the live preview reference.
func (svc *Service) PreviewFile(sess *Session, ref string) (*domain.CVFile, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.previewRef == "" || sess.previewRef != ref || sess.file == nil {
		return nil, apperror.NotFound("Preview not available")
	}
	f := *sess.file
	return &f, nil
}

// Analyze uploads the file, extracts it and compares it with the profile. It requires explicit
// confirmation. On failure the session returns to Previewing so the operator can retry.
func (svc *Service) Analyze(ctx context.Context, sess *Session, confirmed bool) (Snapshot, error) {
	sess.mu.Lock()
	if err := sess.guardLocked(ActionAnalyze); err != nil {
		sess.mu.Unlock()
		return Snapshot{}, err
	}
	if !confirmed {
		sess.mu.Unlock()
		return Snapshot{}, apperror.New(http.StatusBadRequest, "Analysis must be confirmed before it starts", domain.ErrConfirmationRequired).WithField("confirmed")
	}
	if svc.deps.Limiter != nil {
		ok, err := svc.deps.Limiter.Allow(ctx, sess.OwnerID)
		if err != nil {
			logger.Log.Warn("analysis limiter unavailable", "error", err)
		} else if !ok {
			sess.mu.Unlock()
			svc.deps.Audit.Log(ctx, audit.Event{Event: audit.EventAnalysisLimited, TalentID: sess.TalentID})
			return Snapshot{}, apperror.TooManyRequests("Too many CV analyses, please try again later")
		}
	}
	sess.state = StateAnalyzing
	sess.lastError = ""
	epoch := sess.epoch
	file := *sess.file
	fileURL := sess.fileURL
	talentID := sess.TalentID
	sess.mu.Unlock()

	svc.deps.Audit.Log(ctx, audit.Event{Event: audit.EventAnalysisRequested, TalentID: talentID, Details: map[string]any{"file": file.Name}})

	uploaded := ""
	extraction, comparison, err := func() (*domain.CVExtraction, *domain.ComparisonResult, error) {
		if fileURL == "" {
			url, err := svc.deps.Store.Upload(ctx, ObjectName(talentID, file.Name), file.ContentType, bytes.NewReader(file.Data), int64(len(file.Data)), func(sent, total int64) {
				logger.Log.Debug("cv upload progress", "talent_id", talentID, "sent", sent, "total", total)
			})
			if err != nil {
				return nil, nil, apperror.Upstream("Failed to store the CV file, please retry", fmt.Errorf("%w: %w", domain.ErrExternalService, err))
			}
			uploaded = url
			fileURL = url
		}
		extraction, err := svc.deps.Extractor.Extract(ctx, file)
		if err != nil {
			var appErr *apperror.AppError
			if errors.As(err, &appErr) {
				return nil, nil, err
			}
			return nil, nil, apperror.Upstream("CV analysis failed, please retry", fmt.Errorf("%w: %w", domain.ErrExternalService, err))
		}
		comparison, err := svc.deps.Compare.Compare(ctx, talentID, extraction)
		if err != nil {
			return nil, nil, err
		}
		return extraction, comparison, nil
	}()

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.epoch != epoch || sess.state != StateAnalyzing {
		// Cancelled while analyzing: nobody owns the upload any more.
		if uploaded != "" {
			svc.releaseFile(ctx, talentID, uploaded)
		}
		return sess.snapshotLocked(), invalidTransition(sess.state, ActionAnalyze)
	}
	if uploaded != "" {
		sess.fileURL = uploaded
	}
	if err != nil {
		sess.state = StatePreviewing
		sess.lastError = err.Error()
		return sess.snapshotLocked(), err
	}
	sess.extraction = extraction
	sess.comparison = comparison
	sess.state = StateReviewing
	return sess.snapshotLocked(), nil
}

// Report returns the comparison under review or already accepted.
func (svc *Service) Report(sess *Session) (*domain.ComparisonResult, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.comparison == nil {
		return nil, apperror.NotFound("No comparison available")
	}
	return sess.comparison, nil
}

// Confirm applies the reviewer's decisions and reveals the full form. The session sits in
// Applying, unlocked, while the decisions are written.
func (svc *Service) Confirm(ctx context.Context, sess *Session, req domain.ApplyCVUpdatesRequest) (Snapshot, error) {
	sess.mu.Lock()
	if err := sess.guardLocked(ActionConfirm); err != nil {
		sess.mu.Unlock()
		return Snapshot{}, err
	}
	sess.state = StateApplying
	talentID := sess.TalentID
	sess.mu.Unlock()

	resp, err := svc.deps.Apply.Apply(ctx, talentID, req)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err != nil {
		sess.state = StateReviewing
		sess.lastError = err.Error()
		return sess.snapshotLocked(), err
	}
	sess.applied = resp
	sess.lastError = ""
	sess.state = StateConfirmed
	return sess.snapshotLocked(), nil
}

// Proceed accepts the comparison without applying anything.
func (svc *Service) Proceed(ctx context.Context, sess *Session) (Snapshot, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := sess.guardLocked(ActionProceed); err != nil {
		return Snapshot{}, err
	}
	sess.state = StateConfirmed
	return sess.snapshotLocked(), nil
}

// Form is only reachable after an analysis pass.
func (svc *Service) Form(ctx context.Context, sess *Session, jobRoleLevelID *int64) (*FormView, error) {
	sess.mu.Lock()
	state, talentID, fileURL, applied := sess.state, sess.TalentID, sess.fileURL, sess.applied
	sess.mu.Unlock()

	if state != StateConfirmed {
		return nil, apperror.Conflict("The CV form is available only after the analysis is accepted", domain.ErrInvalidTransition)
	}
	view := &FormView{TalentID: talentID, CVFileURL: fileURL, JobRoleLevelID: jobRoleLevelID, ApplyResult: applied}
	if jobRoleLevelID != nil {
		next, err := svc.deps.CVs.SuggestNextVersion(ctx, talentID, *jobRoleLevelID)
		if err != nil {
			return nil, err
		}
		view.SuggestedVersion = next
	}
	return view, nil
}

// Submit validates the version and creates the CV. A validation failure returns the session to
// Confirmed with the field error attached.
func (svc *Service) Submit(ctx context.Context, sess *Session, form SubmitForm) (Snapshot, error) {
	sess.mu.Lock()
	if err := sess.guardLocked(ActionSubmit); err != nil {
		sess.mu.Unlock()
		return Snapshot{}, err
	}
	sess.state = StateSubmitting
	talentID, fileURL := sess.TalentID, sess.fileURL
	sess.mu.Unlock()

	created, err := func() (*domain.ActivationResult, error) {
		if err := svc.deps.CVs.ValidateVersion(ctx, form.Version, talentID, form.JobRoleLevelID); err != nil {
			return nil, err
		}
		return svc.deps.CVs.Create(ctx, domain.TalentCVCreate{
			TalentID:       talentID,
			JobRoleLevelID: form.JobRoleLevelID,
			Version:        form.Version,
			CVFileURL:      fileURL,
			IsActive:       form.IsActive,
			Summary:        form.Summary,
		})
	}()

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err != nil {
		sess.state = StateConfirmed
		sess.lastError = err.Error()
		return sess.snapshotLocked(), err
	}
	sess.created = created
	sess.lastError = ""
	sess.state = StateDone
	return sess.snapshotLocked(), nil
}

// Cancel discards the comparison and preview and deletes the stored file, if any.
func (svc *Service) Cancel(ctx context.Context, sess *Session) (Snapshot, error) {
	sess.mu.Lock()
	if err := sess.guardLocked(ActionCancel); err != nil {
		sess.mu.Unlock()
		return Snapshot{}, err
	}
	from := sess.state
	fileURL := sess.fileURL
	talentID := sess.TalentID
	sess.clearLocked()
	snap := sess.snapshotLocked()
	sess.mu.Unlock()

	if fileURL != "" {
		svc.releaseFile(ctx, talentID, fileURL)
	}
	svc.deps.Audit.Log(ctx, audit.Event{Event: audit.EventWorkflowCancelled, TalentID: talentID, Details: map[string]any{"from": from}})
	return snap, nil
}

// Reset returns a finished workflow to Idle for the next upload.
func (svc *Service) Reset(ctx context.Context, sess *Session) (Snapshot, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := sess.guardLocked(ActionReset); err != nil {
		return Snapshot{}, err
	}
	sess.clearLocked()
	return sess.snapshotLocked(), nil
}

func (svc *Service) releaseFile(ctx context.Context, talentID int64, url string) {
	if err := svc.deps.Store.Delete(ctx, url); err != nil {
		se := domain.SideEffect{Operation: "delete_file", Target: url, Error: err.Error()}
		logger.Log.Warn("failed to release uploaded cv", "talent_id", talentID, "url", url, "error", err)
		svc.deps.Audit.SideEffectFailed(ctx, talentID, 0, se)
	}
}

// ObjectName is the storage key for a talent's uploaded CV: cvs/<talent>/<uuid><ext>.
func ObjectName(talentID int64, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	return fmt.Sprintf("cvs/%d/%s%s", talentID, uuid.NewString(), ext)
}
