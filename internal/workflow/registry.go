package workflow

import (
	"context"
	"sync"
	"time"

	"talent-hub-backend/pkg/apperror"
	"talent-hub-backend/pkg/logger"

	"github.com/google/uuid"
)

// Registry keeps sessions in process memory. Expired sessions are collected lazily on access;
// those still holding an uploaded file are cancelled so the file is released.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	svc      *Service
	now      func() time.Time
}

func NewRegistry(svc *Service, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Registry{sessions: make(map[string]*Session), ttl: ttl, svc: svc, now: time.Now}
}

func (r *Registry) Create(ctx context.Context, talentID int64, ownerID string) *Session {
	r.collect(ctx)

	now := r.now()
	s := &Session{
		ID:        uuid.NewString(),
		TalentID:  talentID,
		OwnerID:   ownerID,
		state:     StateIdle,
		createdAt: now,
		expiresAt: now.Add(r.ttl),
	}
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Get returns the owner's session and extends its lifetime.
func (r *Registry) Get(ctx context.Context, id, ownerID string) (*Session, error) {
	r.collect(ctx)

	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok || s.OwnerID != ownerID {
		return nil, apperror.NotFound("Workflow not found or expired")
	}
	s.mu.Lock()
	s.expiresAt = r.now().Add(r.ttl)
	s.mu.Unlock()
	return s, nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// busy states have work in flight that owns the session.
func busy(s State) bool {
	return s == StateAnalyzing || s == StateApplying || s == StateSubmitting
}

func (r *Registry) collect(ctx context.Context) {
	now := r.now()
	var expired []*Session

	r.mu.Lock()
	for id, s := range r.sessions {
		s.mu.Lock()
		dead := now.After(s.expiresAt) && !busy(s.state)
		s.mu.Unlock()
		if dead {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		if r.svc != nil && Cancellable(s.State()) {
			if _, err := r.svc.Cancel(context.WithoutCancel(ctx), s); err != nil {
				logger.Log.Warn("failed to cancel expired workflow", "workflow_id", s.ID, "error", err)
			}
		}
	}
}
