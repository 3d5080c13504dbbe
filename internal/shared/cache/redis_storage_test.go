package cache_test

import (
	"context"
	"testing"
	"time"

	"session-studio/internal/shared/cache"
	"session-studio/internal/shared/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RedisStorageTestSuite struct {
	suite.Suite
	storage *cache.RedisStorage
}

func (suite *RedisStorageTestSuite) SetupSuite() {
	client := cache.NewRedisClient("localhost:6379", "", 15)
	storage := cache.NewRedisStorage(client, logger.NewLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := storage.Ping(ctx); err != nil {
		suite.T().Skip("Redis not available for testing")
		return
	}

	suite.storage = storage
}

func (suite *RedisStorageTestSuite) TearDownSuite() {
	if suite.storage != nil {
		suite.storage.Reset()
		suite.storage.Close()
	}
}

func (suite *RedisStorageTestSuite) TestSetGetDelete() {
	require.NoError(suite.T(), suite.storage.Set("k1", []byte("v1"), time.Minute))

	val, err := suite.storage.Get("k1")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), []byte("v1"), val)

	require.NoError(suite.T(), suite.storage.Delete("k1"))

	val, err = suite.storage.Get("k1")
	require.NoError(suite.T(), err)
	assert.Nil(suite.T(), val)
}

func (suite *RedisStorageTestSuite) TestGet_MissingKeyIsNotAnError() {
	val, err := suite.storage.Get("never-set")
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), val)
}

func (suite *RedisStorageTestSuite) TestSet_Expiration() {
	require.NoError(suite.T(), suite.storage.Set("short-lived", []byte("v"), 50*time.Millisecond))

	time.Sleep(100 * time.Millisecond)

	val, err := suite.storage.Get("short-lived")
	require.NoError(suite.T(), err)
	assert.Nil(suite.T(), val)
}

func TestRedisStorageTestSuite(t *testing.T) {
	suite.Run(t, new(RedisStorageTestSuite))
}
