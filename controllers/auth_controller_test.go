package controllers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vaibhavvyavahare/railtrace/config"
	"github.com/vaibhavvyavahare/railtrace/middleware"
	"github.com/vaibhavvyavahare/railtrace/models"
	"github.com/vaibhavvyavahare/railtrace/services"
	"github.com/vaibhavvyavahare/railtrace/tests/testutil"
)

func TestLogin(t *testing.T) {
	db := setupTestEnv(t)
	vendor := testutil.CreateVendor(t, db, "V-ACME")
	testutil.CreateWorker(t, db, "W-7")

	router := setupTestRouter()
	router.POST("/api/auth/login", Login)

	tests := []struct {
		name           string
		body           map[string]interface{}
		expectedStatus int
		expectedError  string
		checkResponse  func(t *testing.T, response map[string]interface{})
	}{
		{
			name:           "vendor logs in",
			body:           map[string]interface{}{"user_id": "V-ACME", "password": testutil.DefaultPassword},
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				assert.Equal(t, "Login successful", response["message"])
				assert.Equal(t, services.RoleVendor, response["user_type"])
				assert.Equal(t, "V-ACME", response["vendor_id"])
				assert.Equal(t, vendor.VendorName, response["vendor_name"])
				assert.NotContains(t, response, "password_hash")

				claims, err := services.NewTokenIssuer(config.GetConfig()).Parse(response["token"].(string))
				require.NoError(t, err)
				assert.Equal(t, "V-ACME", claims.Subject)
				assert.Equal(t, services.RoleVendor, claims.Role)
			},
		},
		{
			name:           "worker logs in",
			body:           map[string]interface{}{"user_id": "W-7", "password": testutil.DefaultPassword},
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				assert.Equal(t, services.RoleWorker, response["user_type"])
				assert.Equal(t, "W-7", response["worker_id"])
			},
		},
		{
			name:           "wrong password",
			body:           map[string]interface{}{"user_id": "V-ACME", "password": "nope-nope-nope"},
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "INVALID_CREDENTIALS",
		},
		{
			name:           "unknown prefix",
			body:           map[string]interface{}{"user_id": "X-1", "password": testutil.DefaultPassword},
			expectedStatus: http.StatusNotFound,
			expectedError:  "USER_NOT_FOUND",
		},
		{
			name:           "missing vendor row",
			body:           map[string]interface{}{"user_id": "V-GHOST", "password": testutil.DefaultPassword},
			expectedStatus: http.StatusNotFound,
			expectedError:  "USER_NOT_FOUND",
		},
		{
			name:           "missing password",
			body:           map[string]interface{}{"user_id": "V-ACME"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performJSON(router, http.MethodPost, "/api/auth/login", tt.body)
			if tt.expectedError != "" {
				assertErrorResponse(t, w, tt.expectedStatus, tt.expectedError)
				return
			}
			require.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			response := decodeBody(t, w)
			assert.Equal(t, true, response["success"])
			if tt.checkResponse != nil {
				tt.checkResponse(t, response)
			}
		})
	}
}

func TestLoginUnknownPrefixMatchesMissingUser(t *testing.T) {
	setupTestEnv(t)
	router := setupTestRouter()
	router.POST("/api/auth/login", Login)

	unknownPrefix := performJSON(router, http.MethodPost, "/api/auth/login",
		map[string]interface{}{"user_id": "X-1", "password": testutil.DefaultPassword})
	missingRow := performJSON(router, http.MethodPost, "/api/auth/login",
		map[string]interface{}{"user_id": "V-GHOST", "password": testutil.DefaultPassword})

	assert.Equal(t, http.StatusNotFound, unknownPrefix.Code)
	assert.Equal(t, missingRow.Code, unknownPrefix.Code)
	assert.JSONEq(t, missingRow.Body.String(), unknownPrefix.Body.String())
}

func TestRegisterVendor(t *testing.T) {
	db := setupTestEnv(t)
	router := setupTestRouter()
	router.POST("/api/vendor/register", RegisterVendor)

	body := map[string]interface{}{
		"vendor_id":   "V-NEW",
		"vendor_name": "New Rail Works",
		"password":    "sleeper-pad-42",
		"email":       "ops@newrail.example",
	}
	w := performJSON(router, http.MethodPost, "/api/vendor/register", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	response := decodeBody(t, w)
	assert.Equal(t, "Vendor registered successfully", response["message"])
	assert.Equal(t, map[string]interface{}{"vendor_id": "V-NEW"}, response["vendor"])

	var stored models.Vendor
	require.NoError(t, db.First(&stored, "vendor_id = ?", "V-NEW").Error)
	assert.True(t, services.CheckPassword(stored.PasswordHash, "sleeper-pad-42"))

	assertErrorResponse(t, performJSON(router, http.MethodPost, "/api/vendor/register", body), http.StatusConflict, "USER_EXISTS")

	body["vendor_id"] = "ACME"
	assertErrorResponse(t, performJSON(router, http.MethodPost, "/api/vendor/register", body), http.StatusBadRequest, "VALIDATION_ERROR")
}

func TestCreateWorkerAndOfficer(t *testing.T) {
	setupTestEnv(t)
	router := setupTestRouter()
	officers := router.Group("/api/officer", testutil.MockAuth("O-1", services.RoleOfficer), middleware.RequireRole(services.RoleOfficer))
	officers.POST("/workers", CreateWorker)
	officers.POST("/officers", CreateOfficer)

	w := performJSON(router, http.MethodPost, "/api/officer/workers", map[string]interface{}{
		"worker_id": "W-20", "worker_name": "Ravi Kumar", "password": "track-gang-20",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	worker := decodeBody(t, w)["worker"].(map[string]interface{})
	assert.Equal(t, "W-20", worker["worker_id"])
	assert.NotContains(t, worker, "password_hash")

	w = performJSON(router, http.MethodPost, "/api/officer/officers", map[string]interface{}{
		"officer_id": "O-2", "officer_name": "Meera Iyer", "password": "inspect-all-2",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "O-2", decodeBody(t, w)["officer"].(map[string]interface{})["officer_id"])

	w = performJSON(router, http.MethodPost, "/api/officer/workers", map[string]interface{}{
		"worker_id": "O-9", "worker_name": "Wrong Prefix", "password": "track-gang-20",
	})
	assertErrorResponse(t, w, http.StatusBadRequest, "VALIDATION_ERROR")
}
