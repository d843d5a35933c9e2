package integration__test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/userhub/internal/accounts"
	"github.com/geocoder89/userhub/internal/config"
	apphttp "github.com/geocoder89/userhub/internal/http"
	"github.com/geocoder89/userhub/internal/observability"
	"github.com/geocoder89/userhub/internal/repo/memory"
	"github.com/geocoder89/userhub/internal/security"
	"github.com/geocoder89/userhub/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() config.Config {
	return config.Config{
		Env:                "test",
		SeedDemoUsers:      true,
		BcryptCost:         bcrypt.MinCost,
		CORSAllowedOrigins: []string{"http://localhost:4200"},
		MaxBodyBytes:       1 << 20,
		AuthRateLimit:      100,
		AuthRateWindow:     time.Minute,
		OTelServiceName:    "userhub-test",
		UsersCacheTTL:      time.Minute,
	}
}

type testApp struct {
	router  *gin.Engine
	service *accounts.Service
	reg     *prometheus.Registry
}

func setupApp(t *testing.T, cfg config.Config) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	sess := session.New()
	t.Cleanup(sess.Close)

	svc := accounts.NewService(memory.NewUsersRepo(), sess, security.NewHasher(cfg.BcryptCost), logger, prom)

	if cfg.SeedDemoUsers {
		_, err := svc.SeedDemoUsers(context.Background())
		require.NoError(t, err)
	}

	router := apphttp.NewRouter(apphttp.Deps{
		Log:      logger,
		Config:   cfg,
		Accounts: svc,
		Prom:     prom,
		Gatherer: reg,
	})

	return &testApp{router: router, service: svc, reg: reg}
}

func (a *testApp) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}

	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

type resultBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	User    *struct {
		ID        string `json:"id"`
		Email     string `json:"email"`
		FirstName string `json:"firstName"`
	} `json:"user"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body=%s", w.Body.String())
	return v
}

func TestAPI_RegisterLoginManageFlow(t *testing.T) {
	app := setupApp(t, testConfig())

	// seeded demo users
	w := app.do(t, http.MethodGet, "/users", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Count int `json:"count"`
	}](t, w)
	assert.Equal(t, 2, list.Count)

	// demo login
	w = app.do(t, http.MethodPost, "/auth/login", `{"email":"test@example.com","password":"password123"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[resultBody](t, w)
	assert.Equal(t, "Login successful!", res.Message)
	require.NotNil(t, res.User)
	assert.Equal(t, "1", res.User.ID)
	assert.NotContains(t, w.Body.String(), "password")

	w = app.do(t, http.MethodGet, "/session", "")
	st := decode[session.State](t, w)
	require.True(t, st.LoggedIn)
	assert.Equal(t, "1", st.User.ID)

	// register a new user
	w = app.do(t, http.MethodPost, "/auth/register", `{
		"email":"b@x.com","password":"secret1","confirmPassword":"secret1",
		"firstName":"Bo","lastName":"Ng","mobile":"+447700900123"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	res = decode[resultBody](t, w)
	assert.Equal(t, "Registration successful!", res.Message)
	newID := res.User.ID
	require.NotEmpty(t, newID)

	// same email again
	w = app.do(t, http.MethodPost, "/auth/register", `{
		"email":"b@x.com","password":"other12","confirmPassword":"other12",
		"firstName":"Cy","lastName":"Ng","mobile":"+447700900124"}`)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "User with this email already exists", decode[resultBody](t, w).Message)

	// the list cache was invalidated by the registration
	w = app.do(t, http.MethodGet, "/users", "")
	list = decode[struct {
		Count int `json:"count"`
	}](t, w)
	assert.Equal(t, 3, list.Count)

	// wrong password
	w = app.do(t, http.MethodPost, "/auth/login", `{"email":"b@x.com","password":"nope12"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid password", decode[resultBody](t, w).Message)

	// unknown email
	w = app.do(t, http.MethodPost, "/auth/login", `{"email":"ghost@x.com","password":"secret1"}`)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found. Please register first.", decode[resultBody](t, w).Message)

	// update onto a taken email
	w = app.do(t, http.MethodPatch, "/users/"+newID, `{"email":"demo@test.com"}`)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Email already exists", decode[resultBody](t, w).Message)

	// change the password, then log in with it
	w = app.do(t, http.MethodPatch, "/users/"+newID, `{"password":"fresh99","firstName":"Bob"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res = decode[resultBody](t, w)
	assert.Equal(t, "User updated successfully!", res.Message)
	assert.Equal(t, "Bob", res.User.FirstName)

	w = app.do(t, http.MethodPost, "/auth/login", `{"email":"b@x.com","password":"fresh99"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodGet, "/dashboard/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[map[string]any](t, w)
	assert.Equal(t, float64(3), stats["usersCount"])
	assert.Equal(t, true, stats["loggedIn"])

	// delete
	w = app.do(t, http.MethodDelete, "/users/2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User deleted successfully!", decode[resultBody](t, w).Message)

	w = app.do(t, http.MethodDelete, "/users/2", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found", decode[resultBody](t, w).Message)

	// logout
	w = app.do(t, http.MethodPost, "/auth/logout", "")
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.False(t, app.service.IsLoggedIn())
}

func TestAPI_ValidationErrors(t *testing.T) {
	app := setupApp(t, testConfig())

	w := app.do(t, http.MethodPost, "/auth/register", `{
		"email":"not-an-email","password":"123","confirmPassword":"321",
		"firstName":"J","lastName":"Doe","mobile":"0123"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := w.Body.String()
	for _, field := range []string{"email", "password", "confirmPassword", "firstName", "mobile"} {
		assert.Contains(t, body, `"field":"`+field+`"`)
	}

	n, err := app.service.CountUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestAPI_RequiresJSONContentType(t *testing.T) {
	app := setupApp(t, testConfig())

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"a@x.com","password":"secret1"}`))
	req.Header.Set("Content-Type", "text/plain")

	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestAPI_LoginIsRateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.AuthRateLimit = 2

	app := setupApp(t, cfg)

	for i := 0; i < 2; i++ {
		w := app.do(t, http.MethodPost, "/auth/login", `{"email":"test@example.com","password":"wrong12"}`)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}

	w := app.do(t, http.MethodPost, "/auth/login", `{"email":"test@example.com","password":"password123"}`)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.False(t, app.service.IsLoggedIn())
}

func TestAPI_MetricsAndHeaders(t *testing.T) {
	app := setupApp(t, testConfig())

	w := app.do(t, http.MethodPost, "/auth/login", `{"email":"demo@test.com","password":"demo123"}`)
	require.Equal(t, http.StatusOK, w.Code)

	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	w = app.do(t, http.MethodGet, "/users", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "private, no-cache", w.Header().Get("Cache-Control"))
	assert.NotEmpty(t, w.Header().Get("ETag"))

	w = app.do(t, http.MethodPatch, "/users/2", `{"lastName":"Smythe"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	w = app.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)

	metrics := w.Body.String()
	assert.Contains(t, metrics, "userhub_http_requests_total")
	assert.Contains(t, metrics, `userhub_store_op_results_total{op="login",result="ok"} 1`)
	assert.Contains(t, metrics, "userhub_session_logged_in 1")
	assert.Contains(t, metrics, "userhub_store_users 2")
}

func TestAPI_MultibytePasswordsAreLimitedInBytes(t *testing.T) {
	app := setupApp(t, testConfig())

	register := func(email, password string) *httptest.ResponseRecorder {
		return app.do(t, http.MethodPost, "/auth/register", `{
			"email":"`+email+`","password":"`+password+`","confirmPassword":"`+password+`",
			"firstName":"Émile","lastName":"Zola","mobile":"+33612345678"}`)
	}

	w := register("e@x.com", strings.Repeat("é", 40))
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"rule":"maxbytes"`)

	fits := strings.Repeat("é", 36)
	w = register("e@x.com", fits)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = app.do(t, http.MethodPost, "/auth/login", `{"email":"e@x.com","password":"`+fits+`"}`)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}
