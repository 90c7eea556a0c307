package handler_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Gagan3036/compliance-platform-api/internal/domain"
)

func seedQuestion(env *testEnv, category string, weight, correct int) string {
	id := bson.NewObjectID()
	env.questions.questions[id.Hex()] = domain.Question{
		ID:            id,
		Question:      "Which regulation governs data subject access requests?",
		Options:       []string{"HIPAA", "GDPR", "SOX", "PCI-DSS"},
		CorrectAnswer: correct,
		Category:      category,
		Weight:        weight,
		CreatedAt:     time.Now().UTC(),
	}
	return id.Hex()
}

func TestSubmitEndpoint(t *testing.T) {
	env := newTestEnv(t)
	questionID := seedQuestion(env, "GDPR", 2, 1)

	res, body := env.do(t, http.MethodPost, "/api/submit", gin.H{
		"userId": "emp-42", "name": "Alice", "questionId": questionID, "selectedOption": 1,
	}, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, true, body["isCorrect"])
	require.Equal(t, float64(2), body["scoreEarned"])
	require.Equal(t, float64(100), body["overallPercentage"])

	category := body["categoryScore"].(map[string]any)
	require.Equal(t, "GDPR", category["complianceName"])
	require.Equal(t, float64(2), category["totalScored"])
	require.Equal(t, float64(2), category["totalWeighted"])

	res, body = env.do(t, http.MethodPost, "/api/submit", gin.H{
		"userId": "emp-42", "questionId": questionID, "selectedOption": 3,
	}, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, false, body["isCorrect"])
	require.Equal(t, float64(0), body["scoreEarned"])
	require.Equal(t, float64(50), body["overallPercentage"])
}

func TestSubmitEndpointValidation(t *testing.T) {
	env := newTestEnv(t)
	questionID := seedQuestion(env, "GDPR", 2, 1)

	res, body := env.do(t, http.MethodPost, "/api/submit", gin.H{
		"userId": "emp-42", "questionId": questionID,
	}, nil)
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
	require.Equal(t, domain.CodeValidation, body["code"])

	res, body = env.do(t, http.MethodPost, "/api/submit", gin.H{
		"questionId": questionID, "selectedOption": 0,
	}, nil)
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
	require.Equal(t, domain.CodeValidation, body["code"])

	// selectedOption 0 is a real answer, not a missing field.
	res, body = env.do(t, http.MethodPost, "/api/submit", gin.H{
		"userId": "emp-42", "questionId": questionID, "selectedOption": 0,
	}, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, false, body["isCorrect"])
}

func TestSubmitEndpointCounterFailureStillScores(t *testing.T) {
	env := newTestEnv(t)
	questionID := seedQuestion(env, "GDPR", 2, 1)
	env.questions.failIncr = true

	res, body := env.do(t, http.MethodPost, "/api/submit", gin.H{
		"userId": "emp-42", "name": "Alice", "questionId": questionID, "selectedOption": 1,
	}, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, true, body["isCorrect"])
	require.Equal(t, float64(2), body["scoreEarned"])
	require.Equal(t, float64(100), body["overallPercentage"])

	// The submission persisted even though the counter write failed.
	saved := env.scores.users["emp-42"]
	require.Len(t, saved.QuestionHistory, 1)
	require.Equal(t, 2, saved.TotalScore)
	require.EqualValues(t, 0, env.questions.questions[questionID].Responses)
}

func TestSubmitEndpointUnknownQuestion(t *testing.T) {
	env := newTestEnv(t)

	res, body := env.do(t, http.MethodPost, "/api/submit", gin.H{
		"userId": "emp-42", "questionId": bson.NewObjectID().Hex(), "selectedOption": 1,
	}, nil)
	require.Equal(t, http.StatusNotFound, res.StatusCode)
	require.Equal(t, domain.CodeNotFound, body["code"])
	require.Empty(t, env.scores.users)
}

func TestSubmitEndpointStoreFailureIsInternal(t *testing.T) {
	env := newTestEnv(t)
	questionID := seedQuestion(env, "GDPR", 2, 1)
	env.questions.getErr = errors.New("server selection timeout")

	res, body := env.do(t, http.MethodPost, "/api/submit", gin.H{
		"userId": "emp-42", "questionId": questionID, "selectedOption": 1,
	}, nil)
	require.Equal(t, http.StatusInternalServerError, res.StatusCode)
	require.Equal(t, domain.CodeInternal, body["code"])
}

func TestHistoryEndpoint(t *testing.T) {
	env := newTestEnv(t)
	questionID := seedQuestion(env, "GDPR", 2, 1)

	res, body := env.do(t, http.MethodPost, "/api/submit", gin.H{
		"userId": "emp-42", "name": "Alice", "questionId": questionID, "selectedOption": 1,
	}, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	_ = body

	res, user := env.do(t, http.MethodGet, "/api/history/emp-42", nil, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "emp-42", user["userId"])
	require.Equal(t, "Alice", user["name"])
	require.Len(t, user["questionHistory"], 1)
	require.NotContains(t, user, "_id")

	res, errBody := env.do(t, http.MethodGet, "/api/history/nobody", nil, nil)
	require.Equal(t, http.StatusNotFound, res.StatusCode)
	require.Equal(t, domain.CodeNotFound, errBody["code"])
}

func TestShowUsersEndpoint(t *testing.T) {
	env := newTestEnv(t)
	questionID := seedQuestion(env, "GDPR", 2, 1)

	for _, userID := range []string{"emp-1", "emp-2"} {
		res, _ := env.do(t, http.MethodPost, "/api/submit", gin.H{
			"userId": userID, "name": "User " + userID, "questionId": questionID, "selectedOption": 1,
		}, nil)
		require.Equal(t, http.StatusOK, res.StatusCode)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/showUsers", strings.NewReader(""))
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, strings.HasPrefix(strings.TrimSpace(w.Body.String()), "["))
	require.Contains(t, w.Body.String(), "emp-1")
	require.Contains(t, w.Body.String(), "emp-2")
}

func TestAnalyticsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	gdpr := seedQuestion(env, "GDPR", 2, 1)
	hipaa := seedQuestion(env, "HIPAA", 3, 0)

	for _, submission := range []gin.H{
		{"userId": "emp-42", "name": "Alice", "questionId": gdpr, "selectedOption": 1},
		{"userId": "emp-42", "questionId": hipaa, "selectedOption": 2},
	} {
		res, _ := env.do(t, http.MethodPost, "/api/submit", submission, nil)
		require.Equal(t, http.StatusOK, res.StatusCode)
	}

	res, body := env.do(t, http.MethodGet, "/api/analytics/emp-42", nil, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "emp-42", body["userId"])
	require.Equal(t, "Alice", body["name"])
	require.Equal(t, float64(2), body["totalScore"])
	require.Equal(t, float64(5), body["totalPossibleScore"])
	require.InDelta(t, 40.0, body["overallPercentage"].(float64), 0.0001)
	require.Len(t, body["categoryScores"], 2)
	require.Len(t, body["recentActivity"], 2)

	res, errBody := env.do(t, http.MethodGet, "/api/analytics/nobody", nil, nil)
	require.Equal(t, http.StatusNotFound, res.StatusCode)
	require.Equal(t, domain.CodeNotFound, errBody["code"])
}
