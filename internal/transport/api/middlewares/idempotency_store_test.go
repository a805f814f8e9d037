package middlewares

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

// RedisStoreTestSuite запускается только при заданном TEST_REDIS_ADDR.
type RedisStoreTestSuite struct {
	suite.Suite
	rdb   *redis.Client
	store *RedisIdempotencyStore
}

func TestRedisStoreSuite(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR is not set")
	}
	suite.Run(t, &RedisStoreTestSuite{rdb: redis.NewClient(&redis.Options{Addr: addr})})
}

func (s *RedisStoreTestSuite) SetupSuite() {
	s.Require().NoError(s.rdb.Ping(context.Background()).Err())
	s.store = NewRedisIdempotencyStore(s.rdb)
}

func (s *RedisStoreTestSuite) TearDownSuite() {
	_ = s.rdb.Close()
}

func (s *RedisStoreTestSuite) TestLifecycle() {
	ctx := context.Background()
	key := "idem:test:" + uuid.NewString()
	defer s.rdb.Del(ctx, key)

	stored, reserved, err := s.store.Begin(ctx, key, time.Minute)
	s.Require().NoError(err)
	s.True(reserved)
	s.Nil(stored)

	// второй запрос видит незавершенный первый.
	stored, reserved, err = s.store.Begin(ctx, key, time.Minute)
	s.Require().NoError(err)
	s.False(reserved)
	s.Nil(stored)

	resp := StoredResponse{Status: 200, ContentType: "application/json", Body: []byte(`{"code":"ABCD1234"}`)}
	s.Require().NoError(s.store.Save(ctx, key, resp, time.Minute))

	stored, reserved, err = s.store.Begin(ctx, key, time.Minute)
	s.Require().NoError(err)
	s.False(reserved)
	s.Require().NotNil(stored)
	s.Equal(resp, *stored)
}

func (s *RedisStoreTestSuite) TestRelease() {
	ctx := context.Background()
	key := "idem:test:" + uuid.NewString()
	defer s.rdb.Del(ctx, key)

	_, reserved, err := s.store.Begin(ctx, key, time.Minute)
	s.Require().NoError(err)
	s.True(reserved)

	s.Require().NoError(s.store.Release(ctx, key))

	_, reserved, err = s.store.Begin(ctx, key, time.Minute)
	s.Require().NoError(err)
	s.True(reserved)
}

func (s *RedisStoreTestSuite) TestConnectRedisEmptyAddr() {
	rdb, err := ConnectRedis(context.Background(), "")
	s.Require().NoError(err)
	s.Nil(rdb)
}
