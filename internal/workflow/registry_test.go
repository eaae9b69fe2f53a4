package workflow

import (
	"context"
	"io"
	"testing"
	"time"

	"talent-hub-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingStore struct {
	deleted []string
}

func (s *recordingStore) Upload(ctx context.Context, name, contentType string, body io.Reader, size int64, progress domain.ProgressFunc) (string, error) {
	return "https://files.test/" + name, nil
}

func (s *recordingStore) Delete(ctx context.Context, url string) error {
	s.deleted = append(s.deleted, url)
	return nil
}

func TestRegistryOwnership(t *testing.T) {
	reg := NewRegistry(nil, time.Minute)
	sess := reg.Create(context.Background(), 1, "owner")

	got, err := reg.Get(context.Background(), sess.ID, "owner")
	require.NoError(t, err)
	assert.Same(t, sess, got)

	_, err = reg.Get(context.Background(), sess.ID, "someone-else")
	assert.Error(t, err)
}

func TestRegistryExpiryReleasesFiles(t *testing.T) {
	ctx := context.Background()
	store := &recordingStore{}
	reg := NewRegistry(NewService(Deps{Store: store}), time.Minute)
	clock := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return clock }

	reviewing := reg.Create(ctx, 1, "owner")
	reviewing.state = StateReviewing
	reviewing.fileURL = "https://files.test/cv.pdf"
	reviewing.comparison = &domain.ComparisonResult{}

	idle := reg.Create(ctx, 2, "owner")

	clock = clock.Add(2 * time.Minute)
	_, err := reg.Get(ctx, reviewing.ID, "owner")
	assert.Error(t, err)
	_, err = reg.Get(ctx, idle.ID, "owner")
	assert.Error(t, err)

	assert.Equal(t, 0, reg.Len())
	assert.Equal(t, []string{"https://files.test/cv.pdf"}, store.deleted)
	assert.Equal(t, StateIdle, reviewing.State())
}

func TestRegistryKeepsBusySessions(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(nil, time.Minute)
	clock := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return clock }

	sess := reg.Create(ctx, 1, "owner")
	sess.state = StateAnalyzing

	clock = clock.Add(time.Hour)
	_, err := reg.Get(ctx, sess.ID, "owner")
	assert.NoError(t, err)
}
