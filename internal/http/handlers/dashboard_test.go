package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/userhub/internal/domain/user"
	"github.com/geocoder89/userhub/internal/http/handlers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardStats(t *testing.T) {
	tests := []struct {
		name       string
		accounts   *fakeAccounts
		wantStatus int
		wantCount  float64
		wantLogged bool
	}{
		{
			name: "logged out",
			accounts: &fakeAccounts{
				countFn: func(ctx context.Context) (int, error) { return 2, nil },
			},
			wantStatus: http.StatusOK,
			wantCount:  2,
		},
		{
			name: "logged in",
			accounts: &fakeAccounts{
				countFn: func(ctx context.Context) (int, error) { return 3, nil },
				currentFn: func() (user.User, bool) {
					return user.User{ID: "1", FirstName: "John"}, true
				},
			},
			wantStatus: http.StatusOK,
			wantCount:  3,
			wantLogged: true,
		},
		{
			name: "count fails",
			accounts: &fakeAccounts{
				countFn: func(ctx context.Context) (int, error) { return 0, errors.New("boom") },
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handlers.NewDashboardHandler(tt.accounts)
			r := setupRouter(http.MethodGet, "/dashboard/stats", h.Stats)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard/stats", nil))
			require.Equal(t, tt.wantStatus, w.Code)

			if tt.wantStatus != http.StatusOK {
				return
			}

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

			assert.Equal(t, tt.wantCount, body["usersCount"])
			assert.Equal(t, tt.wantLogged, body["loggedIn"])

			_, hasUser := body["currentUser"]
			assert.Equal(t, tt.wantLogged, hasUser)
		})
	}
}
