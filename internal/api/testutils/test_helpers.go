package testutils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rongwang/sitecrew-server/internal/api"
	"github.com/rongwang/sitecrew-server/internal/config"
	"github.com/rongwang/sitecrew-server/internal/ledger"
	"github.com/rongwang/sitecrew-server/internal/location"
	"github.com/rongwang/sitecrew-server/internal/models"
	"github.com/rongwang/sitecrew-server/internal/repository"
	"github.com/rongwang/sitecrew-server/internal/service"
	dbtest "github.com/rongwang/sitecrew-server/internal/testutils"
)

const testJWTSecret = "test-secret-key"

// TestContext holds all dependencies for tests
type TestContext struct {
	Router         *gin.Engine
	Repository     repository.Repository
	Service        service.Service
	Ledger         *ledger.Ledger
	JWTSecret      []byte
	DB             *sqlx.DB
	TestCompanyID  string
	TestProjectID  string
	TestUserID     string
	TestUserJWT    string
	TestHourlyRate float64
}

// SetupTestContext wires the full stack over a fresh SQLite database and
// seeds one company, project and crew member
func SetupTestContext(t *testing.T) *TestContext {
	t.Helper()

	db := dbtest.NewSQLiteDB(t)
	repo := repository.NewSQLRepository(db)
	logger := zap.NewNop()

	provider := location.NewProvider(config.LocationConfig{Timeout: time.Second}, logger)
	l := ledger.New(repo, provider, logger)
	require.NoError(t, l.Refresh(context.Background()))

	auth := config.AuthConfig{JWTSecret: testJWTSecret, TokenTTL: time.Hour}
	svc := service.NewDefaultService(repo, l, auth)

	handler := api.NewHandler(svc, repo, logger)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(gin.Recovery(), api.SecretMiddleware(testJWTSecret), api.RequestLogger(logger))
	handler.SetupRoutes(router)

	tc := &TestContext{
		Router:         router,
		Repository:     repo,
		Service:        svc,
		Ledger:         l,
		JWTSecret:      []byte(testJWTSecret),
		DB:             db,
		TestHourlyRate: 25,
	}
	tc.seed(t)
	return tc
}

func (tc *TestContext) seed(t *testing.T) {
	ctx := context.Background()

	company := &models.Company{Name: "Test Builders"}
	require.NoError(t, tc.Repository.CreateCompany(ctx, company), "Failed to create test company")

	project := &models.Project{
		Name:      "Test Site",
		Address:   "1 Test St",
		Type:      models.ProjectTypeRenovation,
		Status:    models.ProjectStatusInProgress,
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
		Budget:    10000,
		CompanyID: &company.ID,
	}
	require.NoError(t, tc.Repository.CreateProject(ctx, project), "Failed to create test project")

	tc.TestCompanyID = company.ID
	tc.TestProjectID = project.ID
	tc.TestUserID, tc.TestUserJWT = tc.CreateUser(t, "Test User", tc.TestHourlyRate)
}

// CreateUser adds a crew member and returns their id and a valid token
func (tc *TestContext) CreateUser(t *testing.T, name string, rate float64) (string, string) {
	t.Helper()

	user := &models.User{
		Name:       name,
		Role:       "Carpenter",
		HourlyRate: rate,
		CompanyID:  &tc.TestCompanyID,
	}
	require.NoError(t, tc.Repository.CreateUser(context.Background(), user), "Failed to create test user")

	return user.ID, GenerateToken(t, tc.JWTSecret, user.ID, time.Hour)
}

// GenerateToken signs a session token for userID that expires after ttl
func GenerateToken(t *testing.T, secret []byte, userID string, ttl time.Duration) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(ttl).Unix(),
		"iat": time.Now().Unix(),
	})

	tokenString, err := token.SignedString(secret)
	require.NoError(t, err, "Failed to generate JWT token")

	return tokenString
}

// PerformRequest executes an HTTP request against the router
func PerformRequest(r http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer

	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBody)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// AuthHeaders returns headers with Authorization token
func AuthHeaders(token string) map[string]string {
	return map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", token),
	}
}

// DecodeJSON unmarshals a response body into v
func DecodeJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), "Response body: %s", w.Body.String())
}
