package workflow

import (
	"sync"
	"time"

	"talent-hub-backend/internal/domain"
)

// Session is the server-side state of one CV workflow. All fields are guarded by mu.
type Session struct {
	mu sync.Mutex

	ID       string
	TalentID int64
	OwnerID  string

	state      State
	file       *domain.CVFile
	previewRef string
	fileURL    string
	extraction *domain.CVExtraction
	comparison *domain.ComparisonResult
	applied    *domain.ApplyCVUpdatesResponse
	created    *domain.ActivationResult
	lastError  string

	// epoch increments on every cancel or reset so a late analysis result can tell it is stale.
	epoch uint64

	createdAt time.Time
	expiresAt time.Time
}

// Snapshot is the JSON view of a session.
type Snapshot struct {
	ID          string                         `json:"id"`
	TalentID    int64                          `json:"talentId"`
	State       State                          `json:"state"`
	Actions     []Action                       `json:"actions"`
	FileName    string                         `json:"fileName,omitempty"`
	FileSize    int                            `json:"fileSize,omitempty"`
	PreviewRef  string                         `json:"previewRef,omitempty"`
	FileURL     string                         `json:"fileUrl,omitempty"`
	Comparison  *domain.ComparisonResult       `json:"comparison,omitempty"`
	ApplyResult *domain.ApplyCVUpdatesResponse `json:"applyResult,omitempty"`
	CV          *domain.ActivationResult       `json:"cv,omitempty"`
	LastError   string                         `json:"lastError,omitempty"`
	ExpiresAt   time.Time                      `json:"expiresAt"`
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:          s.ID,
		TalentID:    s.TalentID,
		State:       s.state,
		Actions:     Actions(s.state, s.comparison),
		PreviewRef:  s.previewRef,
		FileURL:     s.fileURL,
		Comparison:  s.comparison,
		ApplyResult: s.applied,
		CV:          s.created,
		LastError:   s.lastError,
		ExpiresAt:   s.expiresAt,
	}
	if snap.Actions == nil {
		snap.Actions = []Action{}
	}
	if s.file != nil {
		snap.FileName = s.file.Name
		snap.FileSize = len(s.file.Data)
	}
	return snap
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// clearLocked drops everything tied to the selected file and returns to Idle.
func (s *Session) clearLocked() {
	s.state = StateIdle
	s.file = nil
	s.previewRef = ""
	s.fileURL = ""
	s.extraction = nil
	s.comparison = nil
	s.applied = nil
	s.created = nil
	s.lastError = ""
	s.epoch++
}
