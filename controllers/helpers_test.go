package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/vaibhavvyavahare/railtrace/config"
	"github.com/vaibhavvyavahare/railtrace/services"
	"github.com/vaibhavvyavahare/railtrace/tests/testutil"
	"gorm.io/gorm"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// setupTestEnv points the package globals at a fresh database and the test config
func setupTestEnv(t *testing.T) *gorm.DB {
	t.Helper()
	db := testutil.NewTestDB(t)
	config.SetDB(db)
	config.SetConfig(testutil.TestConfig())
	services.SetLoginLimiter(services.NoopLoginLimiter{})
	services.SetS3Service(nil)
	services.SetSarvamClient(nil)
	services.SetGeminiClient(nil)
	return db
}

func performJSON(router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), w.Body.String())
	return response
}

// assertErrorResponse checks the status and the error code of a failure response
func assertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	response := decodeBody(t, w)
	require.Equal(t, false, response["success"])
	require.Equal(t, code, response["code"])
}
