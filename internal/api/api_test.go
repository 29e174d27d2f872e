package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ice-breakun/backend/internal/api"
	"ice-breakun/backend/internal/repository"
	"ice-breakun/backend/internal/service"
	"ice-breakun/backend/internal/testutil"
	"ice-breakun/backend/pkg/config"
	apperrors "ice-breakun/backend/pkg/errors"
	"ice-breakun/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type user struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type message struct {
	ID      uint   `json:"id"`
	Content string `json:"content"`
	UserID  uint   `json:"user_id"`
	User    *user  `json:"user"`
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	r, _ := setupRouterWithDB(t)
	return r
}

func setupRouterWithDB(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)

	users := service.NewUserService(repository.NewGormUserRepository(db), nil)
	messages := service.NewMessageService(repository.NewGormMessageRepository(db), nil)

	r := gin.New()
	r.Use(apperrors.ErrorHandler(), apperrors.RecoveryWithLogger(), middleware.BodyLimit(1024))
	v1 := r.Group("/api/v1")
	api.NewUserHandler(users).RegisterRoutesV1(v1)
	api.NewMessageHandler(messages).RegisterRoutesV1(v1)
	api.NewHealthHandler("test").RegisterHealthRoutes(v1)
	return r, db
}

func request(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), rec.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, dst))
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body api.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Error
}

func createUser(t *testing.T, r http.Handler, name, email string) user {
	t.Helper()
	rec := request(r, http.MethodPost, "/api/v1/users", fmt.Sprintf(`{"name":%q,"email":%q}`, name, email))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var u user
	decodeData(t, rec, &u)
	return u
}

func createMessage(t *testing.T, r http.Handler, content string, userID uint) message {
	t.Helper()
	rec := request(r, http.MethodPost, "/api/v1/messages", fmt.Sprintf(`{"content":%q,"user_id":%d}`, content, userID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var m message
	decodeData(t, rec, &m)
	return m
}

func TestUsers_CreateAndGet(t *testing.T) {
	r := setupRouter(t)

	alice := createUser(t, r, "Alice", "alice@example.com")
	assert.NotZero(t, alice.ID)

	rec := request(r, http.MethodGet, fmt.Sprintf("/api/v1/users/%d", alice.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got user
	decodeData(t, rec, &got)
	assert.Equal(t, alice, got)
}

func TestUsers_Validation(t *testing.T) {
	r := setupRouter(t)

	tests := []struct {
		name    string
		method  string
		path    string
		body    string
		status  int
		message string
	}{
		{"create without email", http.MethodPost, "/api/v1/users", `{"name":"Alice"}`, http.StatusBadRequest, "Name and email are required"},
		{"create with blank name", http.MethodPost, "/api/v1/users", `{"name":"  ","email":"a@x.io"}`, http.StatusBadRequest, "Name and email are required"},
		{"create with empty body", http.MethodPost, "/api/v1/users", "", http.StatusBadRequest, "Name and email are required"},
		{"create with malformed json", http.MethodPost, "/api/v1/users", `{"name":`, http.StatusBadRequest, "Invalid request body"},
		{"create with trailing data", http.MethodPost, "/api/v1/users", `{"name":"A","email":"a@x.io"}extra`, http.StatusBadRequest, "Invalid request body"},
		{"create with two documents", http.MethodPost, "/api/v1/users", `{"name":"A","email":"a@x.io"}{}`, http.StatusBadRequest, "Invalid request body"},
		{"update with nothing", http.MethodPut, "/api/v1/users/1", `{}`, http.StatusBadRequest, "Name or email is required"},
		{"update with blanks", http.MethodPut, "/api/v1/users/1", `{"name":"","email":""}`, http.StatusBadRequest, "Name or email is required"},
		{"get with malformed id", http.MethodGet, "/api/v1/users/abc", "", http.StatusBadRequest, "Invalid user ID"},
		{"delete with zero id", http.MethodDelete, "/api/v1/users/0", "", http.StatusBadRequest, "Invalid user ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := request(r, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, errorMessage(t, rec))
		})
	}
}

func TestUsers_DuplicateEmail(t *testing.T) {
	r := setupRouter(t)

	createUser(t, r, "Alice", "alice@example.com")
	rec := request(r, http.MethodPost, "/api/v1/users", `{"name":"Someone else","email":"alice@example.com"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "User already exists", errorMessage(t, rec))

	bob := createUser(t, r, "Bob", "bob@example.com")
	rec = request(r, http.MethodPut, fmt.Sprintf("/api/v1/users/%d", bob.ID), `{"email":"alice@example.com"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUsers_PartialUpdate(t *testing.T) {
	r := setupRouter(t)
	alice := createUser(t, r, "Alice", "alice@example.com")

	rec := request(r, http.MethodPut, fmt.Sprintf("/api/v1/users/%d", alice.ID), `{"name":"Alicia","email":""}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got user
	decodeData(t, rec, &got)
	assert.Equal(t, "Alicia", got.Name)
	assert.Equal(t, "alice@example.com", got.Email)
}

func TestMissingEntitiesAreNotFound(t *testing.T) {
	r := setupRouter(t)

	tests := []struct {
		method  string
		path    string
		body    string
		message string
	}{
		{http.MethodGet, "/api/v1/users/999", "", "User not found"},
		{http.MethodPut, "/api/v1/users/999", `{"name":"Ghost"}`, "User not found"},
		{http.MethodDelete, "/api/v1/users/999", "", "User not found"},
		{http.MethodGet, "/api/v1/messages/999", "", "Message not found"},
		{http.MethodPut, "/api/v1/messages/999", `{"content":"x"}`, "Message not found"},
		{http.MethodDelete, "/api/v1/messages/999", "", "Message not found"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			// Repeated calls behave the same
			for i := 0; i < 2; i++ {
				rec := request(r, tt.method, tt.path, tt.body)
				assert.Equal(t, http.StatusNotFound, rec.Code)
				assert.Equal(t, tt.message, errorMessage(t, rec))
			}
		})
	}
}

func TestMessages_Validation(t *testing.T) {
	r := setupRouter(t)
	alice := createUser(t, r, "Alice", "alice@example.com")

	rec := request(r, http.MethodPost, "/api/v1/messages", `{"content":"hi"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Content and user_id are required", errorMessage(t, rec))

	rec = request(r, http.MethodPost, "/api/v1/messages", fmt.Sprintf(`{"content":"","user_id":%d}`, alice.ID))
	assert.Equal(t, "Content and user_id are required", errorMessage(t, rec))

	rec = request(r, http.MethodPost, "/api/v1/messages", `{"content":"hi","user_id":"one"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", errorMessage(t, rec))

	msg := createMessage(t, r, "hi", alice.ID)
	rec = request(r, http.MethodPut, fmt.Sprintf("/api/v1/messages/%d", msg.ID), `{"content":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Content is required", errorMessage(t, rec))

	rec = request(r, http.MethodGet, "/api/v1/messages/xyz", "")
	assert.Equal(t, "Invalid message ID", errorMessage(t, rec))
}

func TestMessages_UnknownUser(t *testing.T) {
	r := setupRouter(t)

	rec := request(r, http.MethodPost, "/api/v1/messages", `{"content":"hi","user_id":4242}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Related record not found", errorMessage(t, rec))

	rec = request(r, http.MethodGet, "/api/v1/messages", "")
	var all []message
	decodeData(t, rec, &all)
	assert.Empty(t, all)
}

func TestMessages_CRUD(t *testing.T) {
	r := setupRouter(t)
	alice := createUser(t, r, "Alice", "alice@example.com")
	bob := createUser(t, r, "Bob", "bob@example.com")

	first := createMessage(t, r, "first", alice.ID)
	require.NotNil(t, first.User)
	assert.Equal(t, "Alice", first.User.Name)
	createMessage(t, r, "from bob", bob.ID)

	rec := request(r, http.MethodPut, fmt.Sprintf("/api/v1/messages/%d", first.ID), `{"content":"edited"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var edited message
	decodeData(t, rec, &edited)
	assert.Equal(t, "edited", edited.Content)

	rec = request(r, http.MethodGet, fmt.Sprintf("/api/v1/messages/user/%d", alice.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var mine []message
	decodeData(t, rec, &mine)
	require.Len(t, mine, 1)
	assert.Equal(t, "edited", mine[0].Content)

	rec = request(r, http.MethodDelete, fmt.Sprintf("/api/v1/messages/%d", first.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var confirmation api.MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &confirmation))
	assert.Equal(t, "Message deleted successfully", confirmation.Message)

	rec = request(r, http.MethodGet, "/api/v1/messages", "")
	var all []message
	decodeData(t, rec, &all)
	require.Len(t, all, 1)
	assert.Equal(t, bob.ID, all[0].UserID)
}

func TestBodyTooLarge(t *testing.T) {
	r := setupRouter(t)

	body := fmt.Sprintf(`{"name":"Alice","email":"%s@example.com"}`, strings.Repeat("a", 2048))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = -1
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "Request body too large", errorMessage(t, rec))
}

func TestHealth(t *testing.T) {
	r := setupRouter(t)

	rec := request(r, http.MethodGet, "/api/v1/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body api.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.False(t, body.Timestamp.IsZero())
}

func TestStorageFailuresAreInternal(t *testing.T) {
	r, db := setupRouterWithDB(t)
	alice := createUser(t, r, "Alice", "alice@example.com")
	msg := createMessage(t, r, "hi", alice.ID)

	require.NoError(t, config.Close(db))

	tests := []struct {
		method  string
		path    string
		body    string
		message string
	}{
		{http.MethodGet, "/api/v1/users", "", "Failed to fetch users"},
		{http.MethodGet, fmt.Sprintf("/api/v1/users/%d", alice.ID), "", "Failed to fetch user"},
		{http.MethodPost, "/api/v1/users", `{"name":"Bob","email":"bob@example.com"}`, "Failed to create user"},
		{http.MethodPut, fmt.Sprintf("/api/v1/users/%d", alice.ID), `{"name":"Alicia"}`, "Failed to update user"},
		{http.MethodDelete, fmt.Sprintf("/api/v1/users/%d", alice.ID), "", "Failed to delete user"},
		{http.MethodGet, "/api/v1/messages", "", "Failed to fetch messages"},
		{http.MethodGet, fmt.Sprintf("/api/v1/messages/user/%d", alice.ID), "", "Failed to fetch messages"},
		{http.MethodGet, fmt.Sprintf("/api/v1/messages/%d", msg.ID), "", "Failed to fetch message"},
		{http.MethodPost, "/api/v1/messages", fmt.Sprintf(`{"content":"again","user_id":%d}`, alice.ID), "Failed to create message"},
		{http.MethodPut, fmt.Sprintf("/api/v1/messages/%d", msg.ID), `{"content":"edited"}`, "Failed to update message"},
		{http.MethodDelete, fmt.Sprintf("/api/v1/messages/%d", msg.ID), "", "Failed to delete message"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := request(r, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Equal(t, tt.message, errorMessage(t, rec))
			assert.NotContains(t, rec.Body.String(), "closed")
		})
	}
}
