package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	sessionhttp "session-studio/internal/sessions/adapter/http"
	"session-studio/internal/sessions/domain/model"
	"session-studio/internal/sessions/usecase"
	apperrors "session-studio/internal/shared/errors"
	"session-studio/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// Mock usecase
type mockSessionUsecase struct {
	mock.Mock
}

func (m *mockSessionUsecase) CreateOrUpdateDraft(ctx context.Context, callerID string, input usecase.SaveDraftInput) (*model.Session, error) {
	args := m.Called(ctx, callerID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *mockSessionUsecase) Publish(ctx context.Context, callerID string, input usecase.PublishInput) (*model.Session, error) {
	args := m.Called(ctx, callerID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *mockSessionUsecase) Get(ctx context.Context, callerID, id string) (*model.Session, error) {
	args := m.Called(ctx, callerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *mockSessionUsecase) ListOwned(ctx context.Context, callerID string) ([]*model.Session, error) {
	args := m.Called(ctx, callerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Session), args.Error(1)
}

func (m *mockSessionUsecase) ListPublished(ctx context.Context) ([]*model.Session, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Session), args.Error(1)
}

// stubGate lets tests flip between an authenticated caller and a rejection
// without dragging the real token stack in.
type stubGate struct {
	userID string
}

func (g *stubGate) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if g.userID == "" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": "Access denied. No token provided.",
			})
		}
		c.SetUserContext(utils.WithUserID(c.UserContext(), g.userID))
		return c.Next()
	}
}

type SessionRouterTestSuite struct {
	suite.Suite
	app    *fiber.App
	mockUC *mockSessionUsecase
	gate   *stubGate
}

func (suite *SessionRouterTestSuite) SetupTest() {
	suite.mockUC = &mockSessionUsecase{}
	suite.gate = &stubGate{userID: "user-a"}

	handler := sessionhttp.NewSessionHTTPHandler(suite.mockUC, nil)
	suite.app = fiber.New()
	handler.SetupSessionRoutes(suite.app, suite.gate)
}

func (suite *SessionRouterTestSuite) request(method, path string, payload interface{}) *http.Response {
	var req *http.Request
	if payload != nil {
		body, err := json.Marshal(payload)
		require.NoError(suite.T(), err)
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	resp, err := suite.app.Test(req)
	require.NoError(suite.T(), err)
	return resp
}

func (suite *SessionRouterTestSuite) decode(resp *http.Response) map[string]interface{} {
	var body map[string]interface{}
	require.NoError(suite.T(), json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func (suite *SessionRouterTestSuite) TestSaveDraft_CreatesDraftFromTagString() {
	// Arrange
	stored := &model.Session{
		ID:      "s1",
		OwnerID: "user-a",
		Title:   "Morning Flow",
		Tags:    model.TagList{"yoga", "am"},
		Status:  model.StatusDraft,
	}
	suite.mockUC.On("CreateOrUpdateDraft", mock.Anything, "user-a", mock.MatchedBy(func(input usecase.SaveDraftInput) bool {
		// Tags typed as "yoga, am" must arrive as a decoded list
		return input.ID == nil && input.Tags != nil && len(*input.Tags) == 2
	})).Return(stored, nil)

	// Act
	resp := suite.request("POST", "/my-sessions/save-draft", fiber.Map{
		"title": "Morning Flow",
		"tags":  "yoga, am",
	})

	// Assert
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	body := suite.decode(resp)
	assert.Equal(suite.T(), true, body["success"])
	assert.Equal(suite.T(), "Draft saved successfully.", body["message"])

	session := body["session"].(map[string]interface{})
	assert.Equal(suite.T(), "s1", session["id"])
	assert.Equal(suite.T(), "draft", session["status"])
	suite.mockUC.AssertExpectations(suite.T())
}

func (suite *SessionRouterTestSuite) TestSaveDraft_InvalidBody() {
	// Arrange
	req := httptest.NewRequest("POST", "/my-sessions/save-draft", bytes.NewReader([]byte("{broken")))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp, err := suite.app.Test(req)

	// Assert
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusBadRequest, resp.StatusCode)
	suite.mockUC.AssertNotCalled(suite.T(), "CreateOrUpdateDraft", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *SessionRouterTestSuite) TestPublish_Success() {
	// Arrange
	stored := &model.Session{ID: "s1", OwnerID: "user-a", Title: "Morning Flow", Status: model.StatusPublished}
	suite.mockUC.On("Publish", mock.Anything, "user-a", mock.MatchedBy(func(input usecase.PublishInput) bool {
		return input.ID == "s1"
	})).Return(stored, nil)

	// Act
	resp := suite.request("POST", "/my-sessions/publish", fiber.Map{"id": "s1"})

	// Assert
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	body := suite.decode(resp)
	assert.Equal(suite.T(), "Session published successfully.", body["message"])

	session := body["session"].(map[string]interface{})
	assert.Equal(suite.T(), "published", session["status"])
	assert.Equal(suite.T(), "Morning Flow", session["title"])
	suite.mockUC.AssertExpectations(suite.T())
}

func (suite *SessionRouterTestSuite) TestPublish_MissingID() {
	// Arrange
	suite.mockUC.On("Publish", mock.Anything, "user-a", mock.Anything).
		Return(nil, apperrors.NewValidationError("Session ID is required to publish."))

	// Act
	resp := suite.request("POST", "/my-sessions/publish", fiber.Map{})

	// Assert
	assert.Equal(suite.T(), http.StatusBadRequest, resp.StatusCode)
	body := suite.decode(resp)
	assert.Equal(suite.T(), false, body["success"])
	assert.Equal(suite.T(), "Session ID is required to publish.", body["message"])
}

func (suite *SessionRouterTestSuite) TestGet_Success() {
	// Arrange
	stored := &model.Session{ID: "s1", OwnerID: "user-a", Title: "Morning Flow"}
	suite.mockUC.On("Get", mock.Anything, "user-a", "s1").Return(stored, nil)

	// Act
	resp := suite.request("GET", "/my-sessions/s1", nil)

	// Assert
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	body := suite.decode(resp)
	session := body["session"].(map[string]interface{})
	assert.Equal(suite.T(), "s1", session["id"])
}

func (suite *SessionRouterTestSuite) TestGet_NotFound() {
	// Arrange
	suite.mockUC.On("Get", mock.Anything, "user-a", "missing").
		Return(nil, apperrors.NewNotFoundError("session"))

	// Act
	resp := suite.request("GET", "/my-sessions/missing", nil)

	// Assert
	assert.Equal(suite.T(), http.StatusNotFound, resp.StatusCode)
	body := suite.decode(resp)
	assert.Equal(suite.T(), false, body["success"])
}

func (suite *SessionRouterTestSuite) TestGet_InternalErrorIsMasked() {
	// Arrange
	suite.mockUC.On("Get", mock.Anything, "user-a", "s1").
		Return(nil, apperrors.NewInternalError("mongo exploded"))

	// Act
	resp := suite.request("GET", "/my-sessions/s1", nil)

	// Assert: the caller never sees the internal detail
	assert.Equal(suite.T(), http.StatusInternalServerError, resp.StatusCode)
	body := suite.decode(resp)
	assert.Equal(suite.T(), "Internal server error", body["message"])
}

func (suite *SessionRouterTestSuite) TestListOwned_Success() {
	// Arrange
	sessions := []*model.Session{
		{ID: "s2", OwnerID: "user-a", Status: model.StatusDraft},
		{ID: "s1", OwnerID: "user-a", Status: model.StatusPublished},
	}
	suite.mockUC.On("ListOwned", mock.Anything, "user-a").Return(sessions, nil)

	// Act
	resp := suite.request("GET", "/my-sessions/", nil)

	// Assert
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	body := suite.decode(resp)
	assert.Len(suite.T(), body["sessions"], 2)
}

func (suite *SessionRouterTestSuite) TestListPublished_PublicNoAuth() {
	// Arrange: gate rejects everything, the public feed must still answer
	suite.gate.userID = ""
	sessions := []*model.Session{{ID: "s1", Status: model.StatusPublished}}
	suite.mockUC.On("ListPublished", mock.Anything).Return(sessions, nil)

	// Act
	resp := suite.request("GET", "/sessions", nil)

	// Assert
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	body := suite.decode(resp)
	assert.Len(suite.T(), body["sessions"], 1)
}

func (suite *SessionRouterTestSuite) TestProtectedRoutes_RejectedWithoutAuth() {
	// Arrange
	suite.gate.userID = ""

	testCases := []struct {
		method string
		path   string
	}{
		{"GET", "/my-sessions/"},
		{"POST", "/my-sessions/save-draft"},
		{"POST", "/my-sessions/publish"},
		{"GET", "/my-sessions/s1"},
	}

	for _, tc := range testCases {
		suite.Run(tc.method+" "+tc.path, func() {
			resp := suite.request(tc.method, tc.path, fiber.Map{})
			assert.Equal(suite.T(), http.StatusForbidden, resp.StatusCode)
		})
	}
	suite.mockUC.AssertNotCalled(suite.T(), "ListOwned", mock.Anything, mock.Anything)
	suite.mockUC.AssertNotCalled(suite.T(), "CreateOrUpdateDraft", mock.Anything, mock.Anything, mock.Anything)
}

func TestSessionRouterTestSuite(t *testing.T) {
	suite.Run(t, new(SessionRouterTestSuite))
}
