package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/silicus-edu/ta-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoginRouter(password string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/login", NewLoginHandler(password).HandleLogin)
	return router
}

func postLogin(router *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestLoginIssuesToken(t *testing.T) {
	router := newLoginRouter("hunter2")

	w := postLogin(router, `{"password":"hunter2"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var res types.DataResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "success", res.Status)

	data, ok := res.Data.(map[string]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, data["access_token"])
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	router := newLoginRouter("hunter2")

	w := postLogin(router, `{"password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginBacksOffAfterFailure(t *testing.T) {
	router := newLoginRouter("hunter2")

	postLogin(router, `{"password":"wrong"}`)

	// Even the right password is throttled inside the backoff window.
	w := postLogin(router, `{"password":"hunter2"}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestLoginRejectsEmptyConfiguredPassword(t *testing.T) {
	router := newLoginRouter("")

	w := postLogin(router, `{"password":""}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginRejectsBadBody(t *testing.T) {
	router := newLoginRouter("hunter2")

	w := postLogin(router, `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
