//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"unemigw/internal/student/cache"
	"unemigw/internal/student/models"
	"unemigw/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *cache.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = cache.NewRedisStore(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	key := cache.Key("0912345678", true, true)
	result := models.Result{
		PublicData: models.PublicRecord{
			Documento:          "0912345678",
			Usuario:            models.StrPtr("jperez"),
			Email:              models.StrPtr("juan@mail.com"),
			EmailInstitucional: models.StrPtr("jperez@unemi.edu.ec"),
			EsPregrado:         models.Ptr(true),
			Perfiles:           []string{"1", "2"},
		},
		PrivateData: &models.PrivateRecord{
			IDPerfil: models.StrPtr("1"),
			Carrera:  models.StrPtr("SOFTWARE"),
			UpdateAt: time.Now().UTC().Format(time.RFC3339),
		},
	}

	s.Require().NoError(s.store.Set(ctx, key, result, time.Minute))

	found, err := s.store.Get(ctx, key)
	s.Require().NoError(err)
	s.Equal(result.PublicData, found.PublicData)
	s.Require().NotNil(found.PrivateData)
	s.Equal(*result.PrivateData.IDPerfil, *found.PrivateData.IDPerfil)
	s.Equal(*result.PrivateData.Carrera, *found.PrivateData.Carrera)
}

func (s *RedisStoreSuite) TestMissingKey() {
	_, err := s.store.Get(context.Background(), cache.Key("0000000000", true, true))
	s.ErrorIs(err, cache.ErrNotFound)
}

func (s *RedisStoreSuite) TestEntryExpires() {
	ctx := context.Background()
	key := cache.Key("0912345678", true, false)

	s.Require().NoError(s.store.Set(ctx, key, models.Result{}, 50*time.Millisecond))

	_, err := s.store.Get(ctx, key)
	s.Require().NoError(err)

	time.Sleep(150 * time.Millisecond)

	_, err = s.store.Get(ctx, key)
	s.ErrorIs(err, cache.ErrNotFound)
}
