package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
	SetLogger(zap.NewNop())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, ErrorKind(""), KindOf(nil))
	assert.Equal(t, KindValidation, KindOf(Validation("bad %s", "input")))
	assert.Equal(t, KindConflict, KindOf(fmt.Errorf("wrapped: %w", Conflict("taken"))))
	assert.Equal(t, KindNotFound, KindOf(mongo.ErrNoDocuments))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.True(t, IsKind(Unauthorized("no"), KindUnauthorized))
}

func TestFromMongo(t *testing.T) {
	assert.NoError(t, FromMongo(nil, "bed", "b-1"))

	err := FromMongo(mongo.ErrNoDocuments, "bed", "b-1")
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Contains(t, err.Error(), "bed b-1 not found")

	conflict := Conflict("already there")
	assert.Same(t, conflict, FromMongo(conflict, "bed", "b-1"))

	cause := errors.New("socket closed")
	err = FromMongo(cause, "bed", "b-1")
	assert.Equal(t, KindInternal, KindOf(err))
	assert.ErrorIs(t, err, cause)
}

func respond(err error) (*httptest.ResponseRecorder, ErrorResponse) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)
	RespondError(c, err)

	var body ErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestRespondError(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		code    ErrorKind
		message string
	}{
		{Validation("amount must be positive"), http.StatusBadRequest, KindValidation, "amount must be positive"},
		{NotFound("tenant t-1 not found"), http.StatusNotFound, KindNotFound, "tenant t-1 not found"},
		{Conflict("bed is occupied"), http.StatusConflict, KindConflict, "bed is occupied"},
		{Unauthorized("invalid token"), http.StatusUnauthorized, KindUnauthorized, "invalid token"},
		{Forbidden("password change required"), http.StatusForbidden, KindForbidden, "password change required"},
		{errors.New("dial tcp: refused"), http.StatusInternalServerError, KindInternal, "internal server error"},
		{Internal(errors.New("dial tcp: refused"), "failed to load tenant"), http.StatusInternalServerError, KindInternal, "failed to load tenant"},
	}
	for _, tc := range cases {
		w, body := respond(tc.err)
		assert.Equal(t, tc.status, w.Code, tc.err.Error())
		assert.Equal(t, tc.code, body.Error.Code)
		assert.Equal(t, tc.message, body.Error.Message)
	}
}

func TestErrorHandlerRecoversPanics(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, KindInternal, body.Error.Code)
}
