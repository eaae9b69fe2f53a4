// Package audit writes the CV lifecycle trail as structured zap records, separate from the
// application log.
package audit

import (
	"context"
	"os"
	"time"

	"talent-hub-backend/internal/domain"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type EventType string

const (
	EventCVCreated          EventType = "cv_created"
	EventCVActivated        EventType = "cv_activated"
	EventCVDeactivated      EventType = "cv_deactivated"
	EventCVDeleted          EventType = "cv_deleted"
	EventCVSummaryUpdated   EventType = "cv_summary_updated"
	EventSideEffectFailed   EventType = "side_effect_failed"
	EventSweepCompleted     EventType = "sweep_completed"
	EventDecisionsApplied   EventType = "decisions_applied"
	EventAnalysisRequested  EventType = "analysis_requested"
	EventAnalysisLimited    EventType = "analysis_rate_limited"
	EventWorkflowCancelled  EventType = "workflow_cancelled"
	EventUnauthorizedAccess EventType = "unauthorized_access"
)

// Event is one audit record. ActorID and RequestID are filled from the context when empty.
type Event struct {
	Event     EventType
	ActorID   string
	RequestID string
	TalentID  int64
	CVID      int64
	Details   map[string]any
}

type Logger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
}

var defaultLogger *Logger

// Init builds the production audit logger writing JSON to stdout and makes it the default.
func Init(serviceName, environment string) *Logger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	z, err := cfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		z, _ = zap.NewProduction()
	}
	defaultLogger = New(z, serviceName, environment)
	return defaultLogger
}

func New(z *zap.Logger, serviceName, environment string) *Logger {
	return &Logger{zapLogger: z, serviceName: serviceName, environment: environment}
}

// Nop discards every event.
func Nop() *Logger {
	return New(zap.NewNop(), "", "")
}

// Default returns the logger built by Init, or a no-op logger before Init runs.
func Default() *Logger {
	if defaultLogger == nil {
		return Nop()
	}
	return defaultLogger
}

func Environment() string {
	if env := os.Getenv("GIN_MODE"); env == "release" {
		return "production"
	}
	return "development"
}

func levelFor(e EventType) zapcore.Level {
	switch e {
	case EventSideEffectFailed, EventAnalysisLimited:
		return zapcore.WarnLevel
	case EventUnauthorizedAccess:
		return zapcore.ErrorLevel
	}
	return zapcore.InfoLevel
}

func (l *Logger) Log(ctx context.Context, e Event) {
	if l == nil {
		return
	}
	if e.ActorID == "" {
		e.ActorID, _ = ctx.Value(domain.KeyUserID).(string)
	}
	if e.RequestID == "" {
		e.RequestID, _ = ctx.Value(domain.KeyRequestID).(string)
	}

	fields := []zap.Field{
		zap.String("event", string(e.Event)),
		zap.Time("at", time.Now().UTC()),
	}
	if l.serviceName != "" {
		fields = append(fields, zap.String("service", l.serviceName), zap.String("env", l.environment))
	}
	if e.ActorID != "" {
		fields = append(fields, zap.String("actor_id", e.ActorID))
	}
	if e.RequestID != "" {
		fields = append(fields, zap.String("request_id", e.RequestID))
	}
	if e.TalentID != 0 {
		fields = append(fields, zap.Int64("talent_id", e.TalentID))
	}
	if e.CVID != 0 {
		fields = append(fields, zap.Int64("cv_id", e.CVID))
	}
	if len(e.Details) > 0 {
		fields = append(fields, zap.Any("details", e.Details))
	}
	l.zapLogger.Log(levelFor(e.Event), string(e.Event), fields...)
}

// SideEffectFailed records a best-effort operation that did not succeed.
func (l *Logger) SideEffectFailed(ctx context.Context, talentID, cvID int64, se domain.SideEffect) {
	l.Log(ctx, Event{
		Event:    EventSideEffectFailed,
		TalentID: talentID,
		CVID:     cvID,
		Details:  map[string]any{"operation": se.Operation, "target": se.Target, "error": se.Error},
	})
}

func (l *Logger) Sync() {
	if l != nil {
		_ = l.zapLogger.Sync()
	}
}
