package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"talent-hub-backend/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore emulates the Redis commands with go-redis result constructors.
type memStore struct {
	mu   sync.Mutex
	data map[string]string
	ttl  map[string]time.Duration
	down bool
}

var errDown = errors.New("dial tcp: connection refused")

func newMemStore() *memStore {
	return &memStore{data: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (m *memStore) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return redis.NewStringResult("", errDown)
	}
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memStore) Set(ctx context.Context, key string, value interface{}, exp time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return redis.NewStatusResult("", errDown)
	}
	m.data[key] = string(value.([]byte))
	m.ttl[key] = exp
	return redis.NewStatusResult("OK", nil)
}

func (m *memStore) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return redis.NewIntResult(0, errDown)
	}
	var n int64
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			delete(m.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

type countingCatalog struct {
	skills    []domain.Skill
	levels    []domain.JobRoleLevel
	certTypes []domain.CertificateType
	loads     int
	err       error
}

func (c *countingCatalog) ListSkills(ctx context.Context) ([]domain.Skill, error) {
	c.loads++
	return c.skills, c.err
}

func (c *countingCatalog) CreateSkill(ctx context.Context, name string) (*domain.Skill, error) {
	s := domain.Skill{ID: int64(len(c.skills) + 1), Name: name}
	c.skills = append(c.skills, s)
	return &s, nil
}

func (c *countingCatalog) ListJobRoleLevels(ctx context.Context) ([]domain.JobRoleLevel, error) {
	c.loads++
	return c.levels, c.err
}

func (c *countingCatalog) CreateJobRoleLevel(ctx context.Context, position, level string) (*domain.JobRoleLevel, error) {
	j := domain.JobRoleLevel{ID: int64(len(c.levels) + 1), Position: position, Level: level}
	c.levels = append(c.levels, j)
	return &j, nil
}

func (c *countingCatalog) ListCertificateTypes(ctx context.Context) ([]domain.CertificateType, error) {
	c.loads++
	return c.certTypes, c.err
}

func TestCatalogCache(t *testing.T) {
	ctx := context.Background()

	t.Run("Should serve repeated reads from the cache", func(t *testing.T) {
		inner := &countingCatalog{skills: []domain.Skill{{ID: 1, Name: "Go"}}}
		store := newMemStore()
		repo := NewCatalogCache(inner, store, time.Minute)

		first, err := repo.ListSkills(ctx)
		require.NoError(t, err)
		second, err := repo.ListSkills(ctx)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, inner.loads)
		assert.Equal(t, time.Minute, store.ttl[keySkills])
	})

	t.Run("Should invalidate the list when an entry is created", func(t *testing.T) {
		inner := &countingCatalog{}
		repo := NewCatalogCache(inner, newMemStore(), time.Minute)

		_, err := repo.ListJobRoleLevels(ctx)
		require.NoError(t, err)
		_, err = repo.CreateJobRoleLevel(ctx, "Backend Engineer", "Senior")
		require.NoError(t, err)
		levels, err := repo.ListJobRoleLevels(ctx)
		require.NoError(t, err)

		require.Len(t, levels, 1)
		assert.Equal(t, "Backend Engineer – Senior", levels[0].DisplayName())
		assert.Equal(t, 2, inner.loads)
	})

	t.Run("Should fall through to the database when Redis is down", func(t *testing.T) {
		inner := &countingCatalog{certTypes: []domain.CertificateType{{ID: 3, Name: "AWS"}}}
		store := newMemStore()
		store.down = true
		repo := NewCatalogCache(inner, store, time.Minute)

		types, err := repo.ListCertificateTypes(ctx)
		require.NoError(t, err)
		assert.Equal(t, inner.certTypes, types)

		_, err = repo.CreateSkill(ctx, "Rust")
		assert.NoError(t, err)
	})

	t.Run("Should reload over a corrupt entry", func(t *testing.T) {
		inner := &countingCatalog{skills: []domain.Skill{{ID: 1, Name: "Go"}}}
		store := newMemStore()
		store.data[keySkills] = "{not json"
		repo := NewCatalogCache(inner, store, time.Minute)

		skills, err := repo.ListSkills(ctx)
		require.NoError(t, err)
		assert.Equal(t, inner.skills, skills)
		assert.Equal(t, 1, inner.loads)
	})

	t.Run("Should not cache a failed load", func(t *testing.T) {
		inner := &countingCatalog{err: errors.New("db down")}
		store := newMemStore()
		repo := NewCatalogCache(inner, store, time.Minute)

		_, err := repo.ListSkills(ctx)
		assert.Error(t, err)
		assert.Empty(t, store.data)
	})
}
