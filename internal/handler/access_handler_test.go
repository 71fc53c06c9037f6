package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-schedule-api/internal/middleware"
	"github.com/noah-isme/lms-schedule-api/internal/models"
	"github.com/noah-isme/lms-schedule-api/internal/service"
	"github.com/noah-isme/lms-schedule-api/pkg/response"
)

type assessmentStoreStub struct {
	assessments map[string]*models.Assessment
	submissions map[string]*models.AssessmentSubmission
}

func (s *assessmentStoreStub) FindByID(_ context.Context, id string) (*models.Assessment, error) {
	if a, ok := s.assessments[id]; ok {
		return a, nil
	}
	return nil, sql.ErrNoRows
}

func (s *assessmentStoreStub) FindSubmission(_ context.Context, assessmentID, studentID string) (*models.AssessmentSubmission, error) {
	if sub, ok := s.submissions[assessmentID+"/"+studentID]; ok {
		return sub, nil
	}
	return nil, nil
}

func newAccessHandlerForTest(store *assessmentStoreStub) *AccessHandler {
	svc := service.NewWindowService(store, 15*time.Minute, nil, nil)
	return NewAccessHandler(svc)
}

func TestAccessHandlerCheckAccessDefaultsToCaller(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := &assessmentStoreStub{
		assessments: map[string]*models.Assessment{
			"a-1": {
				ID:                 "a-1",
				StartTime:          time.Now().UTC().Add(-10 * time.Minute),
				EndTime:            time.Now().UTC().Add(50 * time.Minute),
				GracePeriodMinutes: 15,
			},
		},
		submissions: map[string]*models.AssessmentSubmission{},
	}
	h := newAccessHandlerForTest(store)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/assessments/a-1/access", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "a-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "stu-1", Role: models.RoleStudent})

	h.CheckAccess(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.AccessDecision `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.CanAccess)
	assert.Equal(t, models.AccessAllowed, envelope.Data.Status)
}

func TestAccessHandlerCheckAccessUnknownAssessment(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newAccessHandlerForTest(&assessmentStoreStub{
		assessments: map[string]*models.Assessment{},
		submissions: map[string]*models.AssessmentSubmission{},
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/assessments/missing/access?studentId=stu-1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	h.CheckAccess(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAccessHandlerCheckAccessRequiresIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newAccessHandlerForTest(&assessmentStoreStub{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/assessments/a-1/access", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "a-1"}}

	h.CheckAccess(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAccessHandlerValidateWindowReportsViolations(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newAccessHandlerForTest(&assessmentStoreStub{})

	body, _ := json.Marshal(ValidateWindowRequest{
		StartTime:          "2024-03-04T10:00:00Z",
		EndTime:            "2024-03-04T09:00:00Z",
		GracePeriodMinutes: -5,
	})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/windows/validate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.ValidateWindow(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.WindowConfigReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.False(t, envelope.Data.Valid)
	assert.NotEmpty(t, envelope.Data.Violations)
}

func TestAccessHandlerValidateWindowRejectsBadBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newAccessHandlerForTest(&assessmentStoreStub{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/windows/validate", bytes.NewReader([]byte(`not json`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.ValidateWindow(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
}
