package mongodb_test

import (
	"context"
	"testing"
	"time"

	"session-studio/internal/auth/adapter/persistence/mongodb"
	"session-studio/internal/auth/domain/model"
	"session-studio/internal/auth/domain/repository"
	"session-studio/internal/auth/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoAuthRepoTestSuite struct {
	suite.Suite
	client     *mongo.Client
	database   *mongo.Database
	repository repository.AuthRepository
}

func (suite *MongoAuthRepoTestSuite) SetupSuite() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI("mongodb://localhost:27017"))
	if err != nil {
		suite.T().Skip("MongoDB not available for testing")
		return
	}
	if err := client.Ping(ctx, nil); err != nil {
		suite.T().Skip("MongoDB not available for testing")
		return
	}

	suite.client = client
	suite.database = client.Database("auth_test_db")

	repo, err := mongodb.NewMongoAuthRepository(suite.database)
	if err != nil {
		suite.T().Skip("Failed to create repository for testing")
		return
	}
	suite.repository = repo
}

func (suite *MongoAuthRepoTestSuite) TearDownSuite() {
	if suite.client != nil {
		suite.database.Drop(context.Background())
		suite.client.Disconnect(context.Background())
	}
}

func (suite *MongoAuthRepoTestSuite) TestCreateUser_NilUser() {
	err := suite.repository.CreateUser(context.Background(), nil)
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "user cannot be nil")
}

func (suite *MongoAuthRepoTestSuite) TestGetUserByEmail_EmptyEmail() {
	user, err := suite.repository.GetUserByEmail(context.Background(), "")
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), user)
	assert.Contains(suite.T(), err.Error(), "email cannot be empty")
}

func (suite *MongoAuthRepoTestSuite) TestGetUserByID_EmptyID() {
	user, err := suite.repository.GetUserByID(context.Background(), "")
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), user)
	assert.Contains(suite.T(), err.Error(), "user ID cannot be empty")
}

func (suite *MongoAuthRepoTestSuite) TestCreateAndFetchUser() {
	ctx := context.Background()
	user := &model.User{
		ID:           "roundtrip-user",
		Email:        "roundtrip@example.com",
		PasswordHash: "hash",
	}

	require.NoError(suite.T(), suite.repository.CreateUser(ctx, user))

	byEmail, err := suite.repository.GetUserByEmail(ctx, "roundtrip@example.com")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "roundtrip-user", byEmail.ID)

	byID, err := suite.repository.GetUserByID(ctx, "roundtrip-user")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "roundtrip@example.com", byID.Email)
}

func (suite *MongoAuthRepoTestSuite) TestCreateUser_DuplicateEmail() {
	ctx := context.Background()
	first := &model.User{ID: "dup-1", Email: "dup@example.com", PasswordHash: "hash"}
	second := &model.User{ID: "dup-2", Email: "dup@example.com", PasswordHash: "hash"}

	require.NoError(suite.T(), suite.repository.CreateUser(ctx, first))

	err := suite.repository.CreateUser(ctx, second)
	assert.ErrorIs(suite.T(), err, usecase.ErrEmailTaken)
}

func (suite *MongoAuthRepoTestSuite) TestGetUserByEmail_NotFound() {
	user, err := suite.repository.GetUserByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(suite.T(), err, usecase.ErrUserNotFound)
	assert.Nil(suite.T(), user)
}

func TestMongoAuthRepoTestSuite(t *testing.T) {
	suite.Run(t, new(MongoAuthRepoTestSuite))
}
