package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/zap"

	"github.com/Gagan3036/compliance-platform-api/internal/config"
	"github.com/Gagan3036/compliance-platform-api/internal/domain"
	httptransport "github.com/Gagan3036/compliance-platform-api/internal/http"
	"github.com/Gagan3036/compliance-platform-api/internal/http/handler"
	"github.com/Gagan3036/compliance-platform-api/internal/http/middleware"
	"github.com/Gagan3036/compliance-platform-api/internal/service"
	"github.com/Gagan3036/compliance-platform-api/internal/token"
)

type testEnv struct {
	router    *gin.Engine
	users     *fakeUserRepo
	questions *fakeQuestionRepo
	scores    *fakeScoreRepo
	issuer    *token.Issuer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := &fakeUserRepo{users: make(map[int64]domain.AuthUser)}
	questions := &fakeQuestionRepo{questions: make(map[string]domain.Question)}
	scores := &fakeScoreRepo{users: make(map[string]domain.QuizUser)}

	issuer := token.NewIssuer("access-secret", "refresh-secret", time.Minute, time.Hour)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	authService := service.NewAuthService(users, issuer, node, zap.NewNop())
	scoringService := service.NewScoringService(questions, scores, zap.NewNop())

	cfg := config.Config{
		ServiceName:        "compliance-quiz-test",
		CORSAllowedOrigins: []string{"*"},
		CORSAllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		CORSAllowedHeaders: []string{"Authorization", "Content-Type"},
	}

	router := httptransport.NewRouter(cfg,
		handler.NewAuthHandler(authService),
		handler.NewQuizHandler(scoringService),
		&middleware.Auth{Issuer: issuer},
	)

	return &testEnv{router: router, users: users, questions: questions, scores: scores, issuer: issuer}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers map[string]string) (*http.Response, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	res := w.Result()
	var decoded map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return res, decoded
}

func (e *testEnv) register(t *testing.T, email, passwd, name string) map[string]any {
	t.Helper()
	res, body := e.do(t, http.MethodPost, "/api/auth/register", gin.H{
		"email": email, "password": passwd, "name": name,
	}, nil)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	return body
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestRegisterEndpoint(t *testing.T) {
	env := newTestEnv(t)

	body := env.register(t, "a@b.com", "pw1", "Alice")
	require.Equal(t, "User registered successfully", body["message"])
	require.NotEmpty(t, body["accessToken"])
	require.NotEmpty(t, body["refreshToken"])

	user := body["user"].(map[string]any)
	require.Equal(t, "a@b.com", user["email"])
	require.NotContains(t, user, "password")
	require.NotContains(t, user, "passwordHash")

	res, errBody := env.do(t, http.MethodPost, "/api/auth/register", gin.H{
		"email": "a@b.com", "password": "pw2", "name": "Eve",
	}, nil)
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
	require.Equal(t, domain.CodeDuplicateEmail, errBody["code"])
}

func TestRegisterEndpointValidation(t *testing.T) {
	env := newTestEnv(t)

	res, body := env.do(t, http.MethodPost, "/api/auth/register", gin.H{"email": "a@b.com"}, nil)
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
	require.Equal(t, domain.CodeValidation, body["code"])
}

func TestLoginEndpointStatusCodes(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "a@b.com", "pw1", "Alice")

	res, _ := env.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": "a@b.com", "password": "pw1"}, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	res, body := env.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": "a@b.com", "password": "nope"}, nil)
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
	require.Equal(t, domain.CodeInvalidCredentials, body["code"])

	for id, user := range env.users.users {
		user.Profile.IsActive = false
		env.users.users[id] = user
	}

	res, body = env.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": "a@b.com", "password": "pw1"}, nil)
	require.Equal(t, http.StatusForbidden, res.StatusCode)
	require.Equal(t, domain.CodeAccountDeactivated, body["code"])
}

func TestRefreshEndpointStatusCodes(t *testing.T) {
	env := newTestEnv(t)
	registered := env.register(t, "a@b.com", "pw1", "Alice")

	res, body := env.do(t, http.MethodPost, "/api/auth/refresh", gin.H{
		"refreshToken": registered["refreshToken"],
	}, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.NotEmpty(t, body["accessToken"])
	require.NotEmpty(t, body["refreshToken"])

	// The superseded token is rejected.
	res, errBody := env.do(t, http.MethodPost, "/api/auth/refresh", gin.H{
		"refreshToken": registered["refreshToken"],
	}, nil)
	require.Equal(t, http.StatusForbidden, res.StatusCode)
	require.Equal(t, domain.CodeInvalidRefreshToken, errBody["code"])

	res, errBody = env.do(t, http.MethodPost, "/api/auth/refresh", gin.H{}, nil)
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
	require.Equal(t, domain.CodeUnauthorized, errBody["code"])
}

func TestLogoutEndpointNeverFails(t *testing.T) {
	env := newTestEnv(t)
	registered := env.register(t, "a@b.com", "pw1", "Alice")

	res, body := env.do(t, http.MethodPost, "/api/auth/logout", gin.H{
		"refreshToken": registered["refreshToken"],
	}, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "Logout successful", body["message"])

	res, _ = env.do(t, http.MethodPost, "/api/auth/logout", gin.H{"refreshToken": "unknown"}, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	res, _ = env.do(t, http.MethodPost, "/api/auth/logout", nil, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
}

func TestProfileEndpoints(t *testing.T) {
	env := newTestEnv(t)
	registered := env.register(t, "a@b.com", "pw1", "Alice")
	access := registered["accessToken"].(string)

	res, _ := env.do(t, http.MethodGet, "/api/auth/profile", nil, nil)
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, _ = env.do(t, http.MethodGet, "/api/auth/profile", nil, bearer("garbage"))
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, body := env.do(t, http.MethodGet, "/api/auth/profile", nil, bearer(access))
	require.Equal(t, http.StatusOK, res.StatusCode)
	user := body["user"].(map[string]any)
	require.Equal(t, "a@b.com", user["email"])

	res, body = env.do(t, http.MethodPut, "/api/auth/profile", gin.H{
		"name": "", "phone": "555-0199",
	}, bearer(access))
	require.Equal(t, http.StatusOK, res.StatusCode)
	updated := body["user"].(map[string]any)
	profile := updated["profile"].(map[string]any)
	require.Equal(t, "Alice", profile["name"])
	require.Equal(t, "555-0199", profile["phone"])
}

func TestListUsersEndpointRequiresPermission(t *testing.T) {
	env := newTestEnv(t)
	registered := env.register(t, "a@b.com", "pw1", "Alice")
	access := registered["accessToken"].(string)

	res, body := env.do(t, http.MethodGet, "/api/auth/users", nil, bearer(access))
	require.Equal(t, http.StatusForbidden, res.StatusCode)
	require.Equal(t, domain.CodeForbidden, body["code"])

	for id, user := range env.users.users {
		user.Permissions.CanViewAllUsers = true
		env.users.users[id] = user
	}

	res, body = env.do(t, http.MethodGet, "/api/auth/users", nil, bearer(access))
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Len(t, body["users"], 1)
}

type fakeUserRepo struct {
	users map[int64]domain.AuthUser
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (domain.AuthUser, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return domain.AuthUser{}, mongo.ErrNoDocuments
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (domain.AuthUser, error) {
	user, ok := f.users[id]
	if !ok {
		return domain.AuthUser{}, mongo.ErrNoDocuments
	}
	return user, nil
}

func (f *fakeUserRepo) GetByRefreshToken(ctx context.Context, refreshToken string) (domain.AuthUser, error) {
	for _, user := range f.users {
		if user.RefreshToken != "" && user.RefreshToken == refreshToken {
			return user, nil
		}
	}
	return domain.AuthUser{}, mongo.ErrNoDocuments
}

func (f *fakeUserRepo) Create(ctx context.Context, user domain.AuthUser) (domain.AuthUser, error) {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user domain.AuthUser) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) List(ctx context.Context) ([]domain.AuthUser, error) {
	users := make([]domain.AuthUser, 0, len(f.users))
	for _, user := range f.users {
		users = append(users, user)
	}
	return users, nil
}

type fakeQuestionRepo struct {
	questions map[string]domain.Question
	failIncr  bool
	getErr    error
}

func (f *fakeQuestionRepo) GetByID(ctx context.Context, id string) (domain.Question, error) {
	if f.getErr != nil {
		return domain.Question{}, f.getErr
	}
	question, ok := f.questions[id]
	if !ok {
		return domain.Question{}, mongo.ErrNoDocuments
	}
	return question, nil
}

func (f *fakeQuestionRepo) IncrementResponses(ctx context.Context, id string) error {
	if f.failIncr {
		return fmt.Errorf("increment responses: transient store failure")
	}
	question, ok := f.questions[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	question.Responses++
	f.questions[id] = question
	return nil
}

type fakeScoreRepo struct {
	users map[string]domain.QuizUser
}

func (f *fakeScoreRepo) GetByUserID(ctx context.Context, userID string) (domain.QuizUser, error) {
	user, ok := f.users[userID]
	if !ok {
		return domain.QuizUser{}, mongo.ErrNoDocuments
	}
	return user, nil
}

func (f *fakeScoreRepo) Save(ctx context.Context, user domain.QuizUser) error {
	f.users[user.UserID] = user
	return nil
}

func (f *fakeScoreRepo) List(ctx context.Context) ([]domain.QuizUser, error) {
	users := make([]domain.QuizUser, 0, len(f.users))
	for _, user := range f.users {
		users = append(users, user)
	}
	return users, nil
}
