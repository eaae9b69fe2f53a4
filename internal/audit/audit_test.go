package audit_test

import (
	"context"
	"testing"

	"talent-hub-backend/internal/audit"
	"talent-hub-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogFillsActorFromContext(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := audit.New(zap.New(core), "talent-hub", "test")

	ctx := context.WithValue(context.Background(), domain.KeyUserID, "user-1")
	ctx = context.WithValue(ctx, domain.KeyRequestID, "req-9")
	l.Log(ctx, audit.Event{Event: audit.EventCVActivated, TalentID: 3, CVID: 7})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "cv_activated", entry.Message)
	assert.Equal(t, zapcore.InfoLevel, entry.Level)
	fields := entry.ContextMap()
	assert.Equal(t, "user-1", fields["actor_id"])
	assert.Equal(t, "req-9", fields["request_id"])
	assert.Equal(t, int64(7), fields["cv_id"])
}

func TestSideEffectFailedIsWarning(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := audit.New(zap.New(core), "", "")

	l.SideEffectFailed(context.Background(), 1, 2, domain.SideEffect{Operation: "delete_file", Target: "cv.pdf", Error: "timeout"})

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *audit.Logger
	assert.NotPanics(t, func() { l.Log(context.Background(), audit.Event{Event: audit.EventCVCreated}) })
}
