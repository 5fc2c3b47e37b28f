package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// ScoreCacheTestSuite тестовый suite для Redis кеша температуры
type ScoreCacheTestSuite struct {
	suite.Suite
	miniRedis *miniredis.Miniredis
	client    *redis.Client
	cache     *ScoreCache
}

func TestScoreCacheSuite(t *testing.T) {
	suite.Run(t, new(ScoreCacheTestSuite))
}

func (s *ScoreCacheTestSuite) SetupSuite() {
	var err error
	s.miniRedis, err = miniredis.Run()
	require.NoError(s.T(), err)

	s.client = redis.NewClient(&redis.Options{
		Addr: s.miniRedis.Addr(),
	})

	s.cache = NewScoreCache(s.client, 30*time.Minute)
}

func (s *ScoreCacheTestSuite) SetupTest() {
	s.miniRedis.FlushAll()
}

func (s *ScoreCacheTestSuite) TearDownSuite() {
	s.client.Close()
	s.miniRedis.Close()
}

func (s *ScoreCacheTestSuite) TestSetAndGet() {
	ctx := context.Background()
	userID := uuid.New()

	err := s.cache.Set(ctx, userID, 66.5)
	s.NoError(err)

	score, ok, err := s.cache.Get(ctx, userID)
	s.NoError(err)
	s.True(ok)
	s.Equal(66.5, score)
}

func (s *ScoreCacheTestSuite) TestGet_Miss() {
	ctx := context.Background()

	score, ok, err := s.cache.Get(ctx, uuid.New())

	s.NoError(err)
	s.False(ok)
	s.Equal(0.0, score)
}

func (s *ScoreCacheTestSuite) TestGet_ExpiredByTTL() {
	ctx := context.Background()
	userID := uuid.New()

	err := s.cache.Set(ctx, userID, 42.0)
	s.NoError(err)

	// Прокручиваем время за границу TTL
	s.miniRedis.FastForward(31 * time.Minute)

	_, ok, err := s.cache.Get(ctx, userID)
	s.NoError(err)
	s.False(ok)
}

func (s *ScoreCacheTestSuite) TestInvalidate() {
	ctx := context.Background()
	userID := uuid.New()

	err := s.cache.Set(ctx, userID, 96.5)
	s.NoError(err)

	err = s.cache.Invalidate(ctx, userID)
	s.NoError(err)

	_, ok, err := s.cache.Get(ctx, userID)
	s.NoError(err)
	s.False(ok)
}

func (s *ScoreCacheTestSuite) TestInvalidate_MissingKeyIsNoop() {
	ctx := context.Background()

	err := s.cache.Invalidate(ctx, uuid.New())

	s.NoError(err)
}

func (s *ScoreCacheTestSuite) TestSet_OverwritesPreviousValue() {
	ctx := context.Background()
	userID := uuid.New()

	s.NoError(s.cache.Set(ctx, userID, 36.5))
	s.NoError(s.cache.Set(ctx, userID, 39.0))

	score, ok, err := s.cache.Get(ctx, userID)
	s.NoError(err)
	s.True(ok)
	s.Equal(39.0, score)
}
