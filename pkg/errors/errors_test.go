package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"ice-breakun/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestKindStatusMapping(t *testing.T) {
	cases := map[Kind]int{
		KindInternal:            http.StatusInternalServerError,
		KindValidation:          http.StatusBadRequest,
		KindUniqueViolation:     http.StatusConflict,
		KindNotFound:            http.StatusNotFound,
		KindForeignKeyViolation: http.StatusNotFound,
	}
	for kind, status := range cases {
		assert.Equal(t, status, kind.HTTPStatus(), kind.String())
	}
}

func TestKindOfLooksThroughWrapping(t *testing.T) {
	cause := stderrors.New("UNIQUE constraint failed: users.email")
	err := fmt.Errorf("service: %w", E(KindUniqueViolation, "user.create", cause))

	assert.Equal(t, KindUniqueViolation, KindOf(err))
	assert.True(t, IsKind(err, KindUniqueViolation))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindInternal, KindOf(stderrors.New("plain")))
	assert.Equal(t, KindInternal, KindOf(nil))
	assert.False(t, IsKind(nil, KindInternal))
}

func TestFromErrorKeepsAppError(t *testing.T) {
	appErr := NewError(http.StatusConflict, "DUPLICATE", "User already exists")
	assert.Same(t, appErr, FromError(fmt.Errorf("wrapped: %w", appErr)))
	assert.Equal(t, KindUniqueViolation, appErr.Kind)

	converted := FromError(E(KindNotFound, "message.get", nil))
	assert.Equal(t, http.StatusNotFound, converted.StatusCode)
	assert.Equal(t, KindNotFound, converted.Kind)
}

func TestErrorHandlerRendersFlatBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(FromKind(KindInternal, "Failed to fetch users", stderrors.New("disk I/O error")))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch users"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "disk I/O")
}

func TestErrorHandlerLogsCause(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: "debug", JSON: true, Output: &buf})

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("logger", log) }, ErrorHandler())
	r.GET("/missing", func(c *gin.Context) {
		_ = c.Error(FromKind(KindNotFound, "User not found", E(KindNotFound, "user.get", stderrors.New("record not found"))))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, buf.String(), `"cause":"User not found (cause: user.get: not_found: record not found)"`)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "plain", Describe(stderrors.New("plain")))
	assert.Equal(t, "Too many (cause: boom)", Describe(NewTooManyRequestsError("RATE", "Too many").WithCause(stderrors.New("boom"))))
	assert.Equal(t, "[NOT_FOUND] Gone", Describe(NewNotFoundError("NOT_FOUND", "Gone")))
}

func TestRecoveryWithLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RecoveryWithLogger())
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
}
