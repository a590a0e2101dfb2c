package cases

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/procureflow/procureflow/internal/auth"
	"github.com/procureflow/procureflow/internal/config"
	"github.com/procureflow/procureflow/internal/db/models"
)

type testEnv struct {
	app         *fiber.App
	authService *auth.Service
}

func newTestEnv(t *testing.T, sf config.Salesforce) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to open sqlite in-memory db")
	require.NoError(t, db.AutoMigrate(&models.User{}))

	cfg := &config.Config{
		Auth:       config.Auth{JWTSecret: "test-secret", TokenExpiry: time.Hour},
		Salesforce: sf,
	}

	app := fiber.New()
	authService := auth.NewService(db, auth.NewTokenCodec(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry))

	Handler.Init(app, cfg, db, authService)

	return &testEnv{app: app, authService: authService}
}

func (e *testEnv) tokenFor(t *testing.T, email string, role models.Role) string {
	t.Helper()

	user, err := e.authService.CreateUser(email, "s3cret-pass", "Test "+string(role), role, "", "")
	require.NoError(t, err)

	token, err := e.authService.Tokens().Sign(user.ID)
	require.NoError(t, err)

	return token
}

func (e *testEnv) get(t *testing.T, target, token string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(fiber.MethodGet, target, nil)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := e.app.Test(req)
	require.NoError(t, err)

	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	return body
}

// stubSalesforce serves the token endpoint and a canned query result.
func stubSalesforce(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/services/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "stub-token",
			"token_type":   "Bearer",
			"instance_url": "http://" + r.Host,
		})
	})
	mux.HandleFunc("/services/data/v62.0/query", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"totalSize": 1,
			"done":      true,
			"records": []map[string]interface{}{
				{
					"Id":                         "500000000000001",
					"CaseNumber":                 "00001001",
					"Subject":                    "Office Furniture",
					"Status":                     "New",
					"Ticket_Type__c":             "IT Procurement",
					"Grand_Total_Final_Order__c": 1800000,
					"Requestor_Name__c":          "Rita",
					"Start_Date_Time__c":         "2026-08-01T10:00:00.000+0000",
				},
			},
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server
}

func TestUnconfigured(t *testing.T) {
	env := newTestEnv(t, config.Salesforce{})
	reviewer := env.tokenFor(t, "paul@example.com", models.RoleProcurement)

	resp := env.get(t, Path, reviewer)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "unavailable", body["error"])
	assert.Equal(t, "Salesforce integration is not configured", body["message"])
}

func TestRoleGuards(t *testing.T) {
	env := newTestEnv(t, config.Salesforce{})
	requestor := env.tokenFor(t, "rita@example.com", models.RoleRequestor)
	reviewer := env.tokenFor(t, "paul@example.com", models.RoleProcurement)

	t.Run("requestor cannot list cases", func(t *testing.T) {
		resp := env.get(t, Path, requestor)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})

	t.Run("anonymous gets 401", func(t *testing.T) {
		resp := env.get(t, Path, "")
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("test endpoint is admin only", func(t *testing.T) {
		resp := env.get(t, Path+"/test", reviewer)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})
}

func TestListAgainstStub(t *testing.T) {
	server := stubSalesforce(t)

	env := newTestEnv(t, config.Salesforce{
		InstanceURL:   server.URL,
		ClientID:      "client-id",
		ClientSecret:  "client-secret",
		Username:      "svc@example.com",
		Password:      "hunter2",
		SecurityToken: "TOKEN123",
		APIVersion:    "v62.0",
	})
	reviewer := env.tokenFor(t, "paul@example.com", models.RoleProcurement)

	resp := env.get(t, Path+"?status=New", reviewer)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, float64(1), body["totalSize"])
	assert.Equal(t, float64(1), body["count"])

	cases, ok := body["cases"].([]interface{})
	require.True(t, ok)
	require.Len(t, cases, 1)

	record := cases[0].(map[string]interface{})
	assert.Equal(t, "00001001", record["caseNumber"])
	assert.Equal(t, "Office Furniture", record["title"])
	assert.Equal(t, "IT Procurement", record["department"])
	assert.Equal(t, "salesforce", record["source"])

	budget, ok := record["budget"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "INR 1.8M", budget["display"])
}
