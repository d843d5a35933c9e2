package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/geocoder89/userhub/internal/domain/user"
	"github.com/geocoder89/userhub/internal/http/handlers"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bindErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details struct {
			JSON   string                `json:"json"`
			Field  string                `json:"field"`
			Fields []handlers.FieldError `json:"fields"`
		} `json:"details"`
	} `json:"error"`
}

func bindRouter() *gin.Engine {
	handlers.RegisterValidators()

	r := gin.New()
	r.POST("/auth/register", func(ctx *gin.Context) {
		var req user.RegisterRequest
		if !handlers.BindJSON(ctx, &req) {
			return
		}
		ctx.Status(http.StatusCreated)
	})
	r.PATCH("/users/:id", func(ctx *gin.Context) {
		var req user.UpdateUserRequest
		if !handlers.BindJSON(ctx, &req) {
			return
		}
		ctx.Status(http.StatusOK)
	})
	return r
}

func postJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBindError(t *testing.T, w *httptest.ResponseRecorder) bindErrorResponse {
	t.Helper()

	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	var resp bindErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	require.Equal(t, "invalid_request", resp.Error.Code)

	return resp
}

func fieldErrors(resp bindErrorResponse) map[string]handlers.FieldError {
	found := map[string]handlers.FieldError{}
	for _, fieldErr := range resp.Error.Details.Fields {
		found[fieldErr.Field] = fieldErr
	}
	return found
}

func TestBindJSON_RegisterRulesUseJSONFieldNames(t *testing.T) {
	body := `{
		"email": "not-an-email",
		"password": "123",
		"confirmPassword": "321",
		"firstName": "J",
		"mobile": "0123"
	}`

	resp := decodeBindError(t, postJSON(bindRouter(), http.MethodPost, "/auth/register", body))

	wantRules := map[string]string{
		"email":           "email",
		"password":        "min",
		"confirmPassword": "eqfield",
		"firstName":       "min",
		"lastName":        "required",
		"mobile":          "mobile",
	}

	found := fieldErrors(resp)

	for field, rule := range wantRules {
		fieldErr, ok := found[field]
		require.True(t, ok, "missing field error for %q: %+v", field, resp.Error.Details.Fields)
		assert.Equal(t, rule, fieldErr.Rule, "field %q", field)
		assert.NotEmpty(t, fieldErr.Message, "field %q", field)
	}

	assert.Equal(t, "password", found["confirmPassword"].Param, "eqfield param names the json field")
}

func TestBindJSON_PasswordLimitCountsBytes(t *testing.T) {
	r := bindRouter()

	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{name: "ascii at limit", password: strings.Repeat("a", 72), valid: true},
		{name: "ascii over limit", password: strings.Repeat("a", 73)},
		{name: "multibyte at limit", password: strings.Repeat("é", 36), valid: true},
		{name: "multibyte over limit", password: strings.Repeat("é", 40)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `{
				"email": "e@x.com",
				"password": "` + tt.password + `",
				"confirmPassword": "` + tt.password + `",
				"firstName": "Émile",
				"lastName": "Zola",
				"mobile": "+3361"
			}`

			w := postJSON(r, http.MethodPost, "/auth/register", body)
			if tt.valid {
				assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
				return
			}

			pw, ok := fieldErrors(decodeBindError(t, w))["password"]
			require.True(t, ok)
			assert.Equal(t, "maxbytes", pw.Rule)
			assert.Equal(t, "72", pw.Param)
		})
	}

	w := postJSON(r, http.MethodPatch, "/users/1", `{"password":"`+strings.Repeat("é", 40)+`"}`)
	pw, ok := fieldErrors(decodeBindError(t, w))["password"]
	require.True(t, ok)
	assert.Equal(t, "maxbytes", pw.Rule)
}

func TestBindJSON_MobilePattern(t *testing.T) {
	tests := []struct {
		mobile string
		valid  bool
	}{
		{"+1234567890", true},
		{"447700900123", true},
		{"9", true},
		{"+0987654321", false},
		{"12345678901234567", false},
		{"+12 345", false},
		{"abc", false},
	}

	r := bindRouter()

	for _, tt := range tests {
		t.Run(tt.mobile, func(t *testing.T) {
			w := postJSON(r, http.MethodPatch, "/users/1", `{"mobile":"`+tt.mobile+`"}`)

			if tt.valid {
				assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
			} else {
				assert.Equal(t, http.StatusBadRequest, w.Code)
			}
		})
	}
}

func TestBindJSON_PartialUpdateSkipsAbsentFields(t *testing.T) {
	w := postJSON(bindRouter(), http.MethodPatch, "/users/1", `{"lastName":"Smith"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeBindError(t, postJSON(bindRouter(), http.MethodPatch, "/users/1", `{"lastName":"S"}`))
	require.Len(t, resp.Error.Details.Fields, 1)
	assert.Equal(t, "lastName", resp.Error.Details.Fields[0].Field)
}

func TestBindJSON_TypeMismatchUsesJSONFieldNames(t *testing.T) {
	resp := decodeBindError(t, postJSON(bindRouter(), http.MethodPatch, "/users/1", `{"firstName": 42}`))

	assert.Equal(t, "invalid_json_type", resp.Error.Details.JSON)
	assert.Equal(t, "firstName", resp.Error.Details.Field)
	require.NotEmpty(t, resp.Error.Details.Fields)
	assert.Equal(t, "type", resp.Error.Details.Fields[0].Rule)
}

func TestBindJSON_SyntaxError(t *testing.T) {
	resp := decodeBindError(t, postJSON(bindRouter(), http.MethodPost, "/auth/register", `{"email": }`))

	assert.Equal(t, "invalid_json_syntax", resp.Error.Details.JSON)
}
