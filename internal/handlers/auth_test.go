package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nholden/beacon/internal/auth"
	"github.com/nholden/beacon/internal/domain"
	"github.com/nholden/beacon/internal/handlers"
	"github.com/nholden/beacon/internal/middleware"
	"github.com/nholden/beacon/internal/storage"
	"github.com/nholden/beacon/internal/testutils"
)

func newAuthHandler(t *testing.T) (*handlers.AuthHandler, *testutils.MemoryUserStore, *auth.TokenManager) {
	t.Helper()
	users := testutils.NewMemoryUserStore()
	tokens := auth.NewTokenManager("test-secret")
	media := storage.NewMediaService(storage.NewAferoStore(afero.NewMemMapFs()))
	return handlers.NewAuthHandler(users, media, tokens), users, tokens
}

func doJSON(t *testing.T, e *echo.Echo, handler echo.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, handler(c))
	return rec
}

func TestSignup_CreatesUserAndSetsCookie(t *testing.T) {
	h, _, _ := newAuthHandler(t)
	e := echo.New()

	rec := doJSON(t, e, h.Signup, http.MethodPost, "/api/auth/signup",
		`{"fullName":"Alice Example","email":"alice@example.com","password":"hunter22"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var user domain.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEmpty(t, user.ID)
	// The password hash must never leak through the API.
	assert.NotContains(t, rec.Body.String(), "password")

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, auth.CookieName, cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
}

func TestSignup_Validation(t *testing.T) {
	h, _, _ := newAuthHandler(t)
	e := echo.New()

	cases := map[string]string{
		"missing fullName": `{"email":"a@b.com","password":"longenough"}`,
		"missing email":    `{"fullName":"A","password":"longenough"}`,
		"bad email":        `{"fullName":"A","email":"nope","password":"longenough"}`,
		"short password":   `{"fullName":"A","email":"a@b.com","password":"short"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := doJSON(t, e, h.Signup, http.MethodPost, "/api/auth/signup", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSignup_DuplicateEmailConflicts(t *testing.T) {
	h, _, _ := newAuthHandler(t)
	e := echo.New()

	body := `{"fullName":"Alice","email":"alice@example.com","password":"hunter22"}`
	rec := doJSON(t, e, h.Signup, http.MethodPost, "/api/auth/signup", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, e, h.Signup, http.MethodPost, "/api/auth/signup", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLogin(t *testing.T) {
	h, users, _ := newAuthHandler(t)
	e := echo.New()

	hash, err := auth.HashPassword("hunter22")
	require.NoError(t, err)
	_, err = users.Create(context.Background(), &domain.User{
		FullName: "Alice", Email: "alice@example.com", Password: hash,
	})
	require.NoError(t, err)

	t.Run("correct credentials", func(t *testing.T) {
		rec := doJSON(t, e, h.Login, http.MethodPost, "/api/auth/login",
			`{"email":"alice@example.com","password":"hunter22"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotEmpty(t, rec.Result().Cookies())
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := doJSON(t, e, h.Login, http.MethodPost, "/api/auth/login",
			`{"email":"alice@example.com","password":"wrong"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown email", func(t *testing.T) {
		rec := doJSON(t, e, h.Login, http.MethodPost, "/api/auth/login",
			`{"email":"nobody@example.com","password":"hunter22"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLogout_ClearsCookie(t *testing.T) {
	h, _, _ := newAuthHandler(t)
	e := echo.New()

	rec := doJSON(t, e, h.Logout, http.MethodPost, "/api/auth/logout", ``)
	assert.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, auth.CookieName, cookies[0].Name)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestCheck_ReturnsContextUser(t *testing.T) {
	h, users, _ := newAuthHandler(t)
	e := echo.New()

	user, err := users.Create(context.Background(), &domain.User{FullName: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/check", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.UserContextKey, user)

	require.NoError(t, h.Check(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alice@example.com")
}
