package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/prompt_books/internal/apperrors"
	"github.com/SscSPs/prompt_books/internal/core/domain"
	portssvc "github.com/SscSPs/prompt_books/internal/core/ports/services"
	"github.com/SscSPs/prompt_books/internal/core/services"
	"github.com/SscSPs/prompt_books/internal/dto"
	"github.com/SscSPs/prompt_books/internal/handlers"
	"github.com/SscSPs/prompt_books/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock DraftService ---
type MockDraftService struct {
	mock.Mock
}

func (m *MockDraftService) GetDraft(ctx context.Context, actor domain.Actor, draftID string) (*domain.Draft, error) {
	args := m.Called(ctx, actor, draftID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Draft), args.Error(1)
}

func (m *MockDraftService) ListDrafts(ctx context.Context, actor domain.Actor, params dto.ListDraftsParams) ([]domain.Draft, *string, error) {
	args := m.Called(ctx, actor, params)
	var drafts []domain.Draft
	if v := args.Get(0); v != nil {
		drafts = v.([]domain.Draft)
	}
	var next *string
	if v := args.Get(1); v != nil {
		next = v.(*string)
	}
	return drafts, next, args.Error(2)
}

func (m *MockDraftService) CreateDraft(ctx context.Context, actor domain.Actor, req dto.CreateDraftRequest) (*domain.Draft, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Draft), args.Error(1)
}

func (m *MockDraftService) EditDraft(ctx context.Context, actor domain.Actor, draftID string, req dto.UpdateDraftRequest) (*domain.Draft, error) {
	args := m.Called(ctx, actor, draftID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Draft), args.Error(1)
}

func (m *MockDraftService) ApproveDraft(ctx context.Context, actor domain.Actor, draftID string) (*domain.Draft, error) {
	args := m.Called(ctx, actor, draftID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Draft), args.Error(1)
}

func (m *MockDraftService) PostDraft(ctx context.Context, actor domain.Actor, draftID string) (string, error) {
	args := m.Called(ctx, actor, draftID)
	return args.String(0), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.DraftSvcFacade = (*MockDraftService)(nil)

type DraftHandlerTestSuite struct {
	suite.Suite
	router           *gin.Engine
	mockDraftService *MockDraftService
	actor            domain.Actor
}

func (suite *DraftHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.mockDraftService = new(MockDraftService)
	suite.actor = domain.Actor{TenantID: testTenant, UserID: "user-1", Role: domain.RoleAccountant}

	suite.router = gin.New()
	handlers.RegisterRoutes(suite.router, testConfig(), &portssvc.ServiceContainer{Draft: suite.mockDraftService}, nil)
}

func (suite *DraftHandlerTestSuite) post(draftID string) *httptest.ResponseRecorder {
	token, err := middleware.GenerateActorToken(suite.actor, testSecret, testIssuer, time.Hour)
	suite.Require().NoError(err)
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/drafts/"+draftID+"/post", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *DraftHandlerTestSuite) TestPostSuccess() {
	suite.mockDraftService.On("PostDraft", mock.Anything, suite.actor, "d-1").Return("e-1", nil).Once()

	w := suite.post("d-1")

	suite.Equal(http.StatusOK, w.Code)
	var body dto.PostDraftResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal(dto.PostDraftResponse{DraftID: "d-1", EntryID: "e-1"}, body)
	suite.mockDraftService.AssertExpectations(suite.T())
}

func (suite *DraftHandlerTestSuite) TestPostErrorMapping() {
	tests := []struct {
		name     string
		err      error
		status   int
		contains string
	}{
		{"not approved", fmt.Errorf("%w (draft d-1 is draft)", services.ErrNotApproved), http.StatusConflict, "is draft"},
		{"unbalanced", fmt.Errorf("%w: debits 10.00 != credits 9.00", apperrors.ErrValidation), http.StatusBadRequest, "10.00"},
		{"no mapping", services.ErrNoMapping, http.StatusBadRequest, "does not post"},
		{"missing draft", apperrors.ErrNotFound, http.StatusNotFound, "not found"},
		{"forbidden", apperrors.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"manual resolution", services.ErrManualResolution, http.StatusUnprocessableEntity, "reconcile_bank"},
		{"partial write", fmt.Errorf("%w: journal entry e-9 was left without lines", apperrors.ErrPartialWrite), http.StatusInternalServerError, "e-9"},
		{"store down", fmt.Errorf("dial tcp: connection refused"), http.StatusInternalServerError, "Failed to post draft"},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			suite.mockDraftService.On("PostDraft", mock.Anything, suite.actor, "d-1").Return("", tt.err).Once()

			w := suite.post("d-1")

			suite.Equal(tt.status, w.Code)
			suite.Contains(w.Body.String(), tt.contains)
		})
	}
}

func (suite *DraftHandlerTestSuite) TestInternalErrorTextIsHidden() {
	suite.mockDraftService.On("PostDraft", mock.Anything, suite.actor, "d-2").Return("", fmt.Errorf("dial tcp 10.0.0.5:5432: connection refused")).Once()

	w := suite.post("d-2")

	suite.Equal(http.StatusInternalServerError, w.Code)
	suite.NotContains(w.Body.String(), "10.0.0.5")
}

func (suite *DraftHandlerTestSuite) TestConfigurationErrorCarriesRemediation() {
	cfgErr := &apperrors.ConfigurationError{Intent: "create_invoice", MissingCodes: []string{"4000"}, Remediation: "Create or reactivate account(s) 4000"}
	suite.mockDraftService.On("PostDraft", mock.Anything, suite.actor, "d-1").Return("", fmt.Errorf("resolve: %w", cfgErr)).Once()

	w := suite.post("d-1")

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	var body map[string]any
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal([]any{"4000"}, body["missingCodes"])
	suite.Contains(body["remediation"], "4000")
}

func TestDraftHandler(t *testing.T) {
	suite.Run(t, new(DraftHandlerTestSuite))
}
