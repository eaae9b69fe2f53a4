package usecase_test

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"talent-hub-backend/internal/domain"

	"github.com/stretchr/testify/mock"
)

// memCVRepo is an in-memory TalentCVRepository with per-id write failures.
type memCVRepo struct {
	mu      sync.Mutex
	nextID  int64
	cvs     map[int64]*domain.TalentCV
	failIDs map[int64]error
	clock   time.Time
}

func newMemCVRepo() *memCVRepo {
	return &memCVRepo{cvs: map[int64]*domain.TalentCV{}, failIDs: map[int64]error{}, clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (r *memCVRepo) seed(cv domain.TalentCV) *domain.TalentCV {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	if cv.ID == 0 {
		cv.ID = r.nextID
	} else if cv.ID > r.nextID {
		r.nextID = cv.ID
	}
	if cv.CreatedAt.IsZero() {
		r.clock = r.clock.Add(time.Minute)
		cv.CreatedAt = r.clock
	}
	r.cvs[cv.ID] = &cv
	return &cv
}

func (r *memCVRepo) List(ctx context.Context, f domain.TalentCVFilter) ([]domain.TalentCV, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.TalentCV
	for _, cv := range r.cvs {
		if f.TalentID != nil && cv.TalentID != *f.TalentID {
			continue
		}
		if f.JobRoleLevelID != nil && cv.JobRoleLevelID != *f.JobRoleLevelID {
			continue
		}
		if f.IsActive != nil && cv.IsActive != *f.IsActive {
			continue
		}
		if f.ExcludeDeleted && cv.DeletedAt != nil {
			continue
		}
		out = append(out, *cv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memCVRepo) GetByID(ctx context.Context, id int64) (*domain.TalentCV, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cv, ok := r.cvs[id]
	if !ok || cv.DeletedAt != nil {
		return nil, nil
	}
	cp := *cv
	return &cp, nil
}

func (r *memCVRepo) Create(ctx context.Context, in domain.TalentCVCreate) (*domain.TalentCV, error) {
	existing, _ := r.List(ctx, domain.TalentCVFilter{TalentID: &in.TalentID, JobRoleLevelID: &in.JobRoleLevelID, ExcludeDeleted: true})
	for _, cv := range existing {
		if cv.Version == in.Version {
			return nil, domain.ErrVersionCollision
		}
	}
	return r.seed(domain.TalentCV{
		TalentID:       in.TalentID,
		JobRoleLevelID: in.JobRoleLevelID,
		Version:        in.Version,
		CVFileURL:      in.CVFileURL,
		IsActive:       in.IsActive,
		Summary:        in.Summary,
	}), nil
}

func (r *memCVRepo) UpdateFields(ctx context.Context, id int64, upd domain.TalentCVUpdate) (*domain.TalentCV, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failIDs[id]; err != nil {
		return nil, err
	}
	cv, ok := r.cvs[id]
	if !ok || cv.TalentID != upd.TalentID {
		return nil, domain.ErrNotFound
	}
	if upd.Summary != nil {
		cv.Summary = *upd.Summary
	}
	if upd.IsActive != nil {
		cv.IsActive = *upd.IsActive
	}
	cp := *cv
	return &cp, nil
}

func (r *memCVRepo) DeleteByID(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cv, ok := r.cvs[id]
	if !ok {
		return domain.ErrNotFound
	}
	now := r.clock
	cv.DeletedAt = &now
	return nil
}

func (r *memCVRepo) activeIDs(talentID int64) []int64 {
	active := true
	cvs, _ := r.List(context.Background(), domain.TalentCVFilter{TalentID: &talentID, IsActive: &active, ExcludeDeleted: true})
	ids := make([]int64, 0, len(cvs))
	for _, cv := range cvs {
		ids = append(ids, cv.ID)
	}
	return ids
}

type memStore struct {
	err     error
	deleted []string
}

func (s *memStore) Upload(ctx context.Context, name, contentType string, body io.Reader, size int64, progress domain.ProgressFunc) (string, error) {
	return "https://files.test/" + name, nil
}

func (s *memStore) Delete(ctx context.Context, url string) error {
	s.deleted = append(s.deleted, url)
	return s.err
}

// memTalentRepo stores a single talent and enforces link uniqueness like the database does.
type memTalentRepo struct {
	talent   *domain.Talent
	nextID   int64
	failures map[string]error
	writes   int
}

func newMemTalentRepo(t *domain.Talent) *memTalentRepo {
	return &memTalentRepo{talent: t, nextID: 100, failures: map[string]error{}}
}

func (r *memTalentRepo) fail(op string) error {
	return r.failures[op]
}

func (r *memTalentRepo) GetByID(ctx context.Context, id int64) (*domain.Talent, error) {
	if r.talent == nil || r.talent.ID != id {
		return nil, nil
	}
	cp := *r.talent
	cp.Skills = append([]domain.TalentSkill(nil), r.talent.Skills...)
	cp.JobRoleLevels = append([]domain.TalentJobRoleLevel(nil), r.talent.JobRoleLevels...)
	cp.Certificates = append([]domain.TalentCertificate(nil), r.talent.Certificates...)
	cp.Projects = append([]domain.TalentProject(nil), r.talent.Projects...)
	cp.WorkExperiences = append([]domain.TalentWorkExperience(nil), r.talent.WorkExperiences...)
	return &cp, nil
}

func (r *memTalentRepo) UpdateBasicInfo(ctx context.Context, id int64, info domain.BasicInfo) error {
	if err := r.fail("basic"); err != nil {
		return err
	}
	r.writes++
	r.talent.BasicInfo = info
	return nil
}

func (r *memTalentRepo) AddSkill(ctx context.Context, talentID int64, s domain.TalentSkill) (bool, error) {
	if err := r.fail("skill:" + strings.ToLower(s.Name)); err != nil {
		return false, err
	}
	for _, have := range r.talent.Skills {
		if have.SkillID == s.SkillID {
			return false, nil
		}
	}
	r.writes++
	r.talent.Skills = append(r.talent.Skills, s)
	return true, nil
}

func (r *memTalentRepo) AddJobRoleLevel(ctx context.Context, talentID int64, j domain.TalentJobRoleLevel) (bool, error) {
	for _, have := range r.talent.JobRoleLevels {
		if have.JobRoleLevelID == j.JobRoleLevelID {
			return false, nil
		}
	}
	r.writes++
	r.talent.JobRoleLevels = append(r.talent.JobRoleLevels, j)
	return true, nil
}

func (r *memTalentRepo) CreateCertificate(ctx context.Context, c *domain.TalentCertificate) error {
	r.nextID++
	c.ID = r.nextID
	r.writes++
	r.talent.Certificates = append(r.talent.Certificates, *c)
	return nil
}

func (r *memTalentRepo) CreateProject(ctx context.Context, p *domain.TalentProject) error {
	if err := r.fail("project:" + strings.ToLower(p.ProjectName)); err != nil {
		return err
	}
	r.nextID++
	p.ID = r.nextID
	r.writes++
	r.talent.Projects = append(r.talent.Projects, *p)
	return nil
}

func (r *memTalentRepo) UpdateProject(ctx context.Context, p *domain.TalentProject) error {
	for i := range r.talent.Projects {
		if r.talent.Projects[i].ID == p.ID {
			r.writes++
			r.talent.Projects[i] = *p
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *memTalentRepo) CreateWorkExperience(ctx context.Context, w *domain.TalentWorkExperience) error {
	r.nextID++
	w.ID = r.nextID
	r.writes++
	r.talent.WorkExperiences = append(r.talent.WorkExperiences, *w)
	return nil
}

func (r *memTalentRepo) UpdateWorkExperience(ctx context.Context, w *domain.TalentWorkExperience) error {
	for i := range r.talent.WorkExperiences {
		if r.talent.WorkExperiences[i].ID == w.ID {
			r.writes++
			r.talent.WorkExperiences[i] = *w
			return nil
		}
	}
	return domain.ErrNotFound
}

type memCatalogRepo struct {
	skills []domain.Skill
	jrls   []domain.JobRoleLevel
	certs  []domain.CertificateType
}

func (r *memCatalogRepo) ListSkills(ctx context.Context) ([]domain.Skill, error) {
	return append([]domain.Skill(nil), r.skills...), nil
}

func (r *memCatalogRepo) CreateSkill(ctx context.Context, name string) (*domain.Skill, error) {
	for _, s := range r.skills {
		if strings.EqualFold(s.Name, name) {
			return &s, nil
		}
	}
	s := domain.Skill{ID: int64(len(r.skills) + 1000), Name: name}
	r.skills = append(r.skills, s)
	return &s, nil
}

func (r *memCatalogRepo) ListJobRoleLevels(ctx context.Context) ([]domain.JobRoleLevel, error) {
	return append([]domain.JobRoleLevel(nil), r.jrls...), nil
}

func (r *memCatalogRepo) CreateJobRoleLevel(ctx context.Context, position, level string) (*domain.JobRoleLevel, error) {
	j := domain.JobRoleLevel{ID: int64(len(r.jrls) + 500), Position: position, Level: level}
	r.jrls = append(r.jrls, j)
	return &j, nil
}

func (r *memCatalogRepo) ListCertificateTypes(ctx context.Context) ([]domain.CertificateType, error) {
	return r.certs, nil
}

// MockCatalogRepo drives error paths.
type MockCatalogRepo struct {
	mock.Mock
}

func (m *MockCatalogRepo) ListSkills(ctx context.Context) ([]domain.Skill, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Skill), args.Error(1)
}

func (m *MockCatalogRepo) CreateSkill(ctx context.Context, name string) (*domain.Skill, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Skill), args.Error(1)
}

func (m *MockCatalogRepo) ListJobRoleLevels(ctx context.Context) ([]domain.JobRoleLevel, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JobRoleLevel), args.Error(1)
}

func (m *MockCatalogRepo) CreateJobRoleLevel(ctx context.Context, position, level string) (*domain.JobRoleLevel, error) {
	args := m.Called(ctx, position, level)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JobRoleLevel), args.Error(1)
}

func (m *MockCatalogRepo) ListCertificateTypes(ctx context.Context) ([]domain.CertificateType, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CertificateType), args.Error(1)
}

// MockCVRepo drives repository failure paths.
type MockCVRepo struct {
	mock.Mock
}

func (m *MockCVRepo) List(ctx context.Context, f domain.TalentCVFilter) ([]domain.TalentCV, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TalentCV), args.Error(1)
}

func (m *MockCVRepo) GetByID(ctx context.Context, id int64) (*domain.TalentCV, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TalentCV), args.Error(1)
}

func (m *MockCVRepo) Create(ctx context.Context, in domain.TalentCVCreate) (*domain.TalentCV, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TalentCV), args.Error(1)
}

func (m *MockCVRepo) UpdateFields(ctx context.Context, id int64, upd domain.TalentCVUpdate) (*domain.TalentCV, error) {
	args := m.Called(ctx, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TalentCV), args.Error(1)
}

func (m *MockCVRepo) DeleteByID(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

var errBoom = errors.New("boom")
