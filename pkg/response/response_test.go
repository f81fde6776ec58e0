package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"unisphere/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusErr struct {
	status int
	msg    string
}

func (e statusErr) Error() string         { return e.msg }
func (e statusErr) HTTPStatus() int       { return e.status }
func (e statusErr) PublicMessage() string { return e.msg }

func run(t *testing.T, fn func(c *gin.Context)) (int, ErrorBody) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

	fn(c)

	var body ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestFromErrorMapsStatusError(t *testing.T) {
	wrapped := fmt.Errorf("toggle follow: %w", statusErr{status: http.StatusNotFound, msg: "User not found"})

	code, body := run(t, func(c *gin.Context) { FromError(c, wrapped) })

	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "User not found", body.Message)
}

func TestFromErrorHidesUnexpectedDetail(t *testing.T) {
	code, body := run(t, func(c *gin.Context) { FromError(c, errors.New("dial tcp 10.0.0.1:3306: refused")) })

	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Internal server error", body.Message)
	assert.Empty(t, body.Error)
}

func TestFilterUserInfoOmitsPassword(t *testing.T) {
	info := FilterUserInfo(&model.User{ID: 7, Username: "alice", Email: "alice@chitkara.edu.in", Password: "$2a$10$hash"})

	raw, err := json.Marshal(info)
	require.NoError(t, err)

	assert.NotContains(t, string(raw), "$2a$10$hash")
	assert.NotContains(t, string(raw), "password")
	assert.Nil(t, FilterUserInfo(nil))
}
