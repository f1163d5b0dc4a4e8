package controller

import (
	"net/http"
	"net/url"
	"testing"

	apperrors "github.com/devoriginal/account-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthController_RegisterAndLogin(t *testing.T) {
	env := setupControllerTest(t)

	w := env.do(http.MethodPost, "/auth/register", "", map[string]string{
		"name": "Ana", "email": "ana@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	body := decodeBody(t, w)
	user := body["user"].(map[string]interface{})
	assert.NotZero(t, user["id"])
	assert.Equal(t, "Ana", user["name"])
	assert.Equal(t, "ana@x.com", user["email"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "passwordHash")
	assert.NotEmpty(t, body["token"])

	w = env.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "ana@x.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decodeBody(t, w)["token"])

	w = env.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "ana@x.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apperrors.AuthInvalidCredentials, decodeBody(t, w)["error"])
}

func TestAuthController_RegisterErrors(t *testing.T) {
	env := setupControllerTest(t)
	env.register(t, "Ana", "ana@x.com", "secret1")

	tests := []struct {
		name     string
		body     map[string]string
		status   int
		wantCode string
	}{
		{
			name:     "Duplicate email",
			body:     map[string]string{"name": "Ana", "email": "ANA@x.com", "password": "secret1"},
			status:   http.StatusConflict,
			wantCode: apperrors.AuthEmailAlreadyExists,
		},
		{
			name:     "Malformed email",
			body:     map[string]string{"name": "Ana", "email": "not-an-email", "password": "secret1"},
			status:   http.StatusBadRequest,
			wantCode: apperrors.ValidationInvalidInput,
		},
		{
			name:     "Missing name",
			body:     map[string]string{"email": "b@x.com", "password": "secret1"},
			status:   http.StatusBadRequest,
			wantCode: apperrors.ValidationRequired,
		},
		{
			name:     "Bad birth date",
			body:     map[string]string{"name": "B", "email": "b@x.com", "password": "secret1", "birthAt": "1990/01/01"},
			status:   http.StatusBadRequest,
			wantCode: apperrors.ValidationInvalidFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodPost, "/auth/register", "", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.wantCode, decodeBody(t, w)["error"])
		})
	}
}

func TestAuthController_CheckEmail(t *testing.T) {
	env := setupControllerTest(t)
	env.register(t, "Ana", "ana@x.com", "secret1")

	w := env.do(http.MethodPost, "/auth", "", map[string]string{"email": "ana@x.com"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["exists"])

	w = env.do(http.MethodPost, "/auth", "", map[string]string{"email": "nobody@x.com"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["exists"])
}

func TestAuthController_MeProfileAndDelete(t *testing.T) {
	env := setupControllerTest(t)
	_, token := env.register(t, "Ana", "ana@x.com", "secret1")

	w := env.do(http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ana", decodeBody(t, w)["user"].(map[string]interface{})["name"])

	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/auth/me", "", nil).Code)

	w = env.do(http.MethodPut, "/auth/profile", token, map[string]string{"birthAt": "1990-05-17", "phone": "5511999999999"})
	require.Equal(t, http.StatusOK, w.Code)
	user := decodeBody(t, w)["user"].(map[string]interface{})
	assert.Equal(t, "1990-05-17", user["birthAt"])
	assert.Equal(t, "5511999999999", user["phone"])
	assert.Equal(t, "Ana", user["name"])

	w = env.do(http.MethodPut, "/auth/profile", token, map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.ValidationInvalidFormat, decodeBody(t, w)["error"])

	w = env.do(http.MethodDelete, "/auth/me", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	// the token outlives the account
	w = env.do(http.MethodGet, "/auth/me", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthController_ChangePassword(t *testing.T) {
	env := setupControllerTest(t)
	_, token := env.register(t, "Ana", "ana@x.com", "secret1")

	w := env.do(http.MethodPut, "/auth/password", token, map[string]string{"currentPassword": "wrong", "newPassword": "secret2"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodPut, "/auth/password", token, map[string]string{"currentPassword": "secret1", "newPassword": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPut, "/auth/password", token, map[string]string{"currentPassword": "secret1", "newPassword": "secret2"})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "ana@x.com", "password": "secret2"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthController_ForgetAndReset(t *testing.T) {
	env := setupControllerTest(t)
	env.register(t, "Ana", "ana@x.com", "secret1")

	w := env.do(http.MethodPost, "/auth/forget", "", map[string]string{"email": "nobody@x.com"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodPost, "/auth/forget", "", map[string]string{"email": "ana@x.com"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["success"])

	link, err := url.Parse(env.mailer.last().Data["url"].(string))
	require.NoError(t, err)
	token := link.Query().Get("token")

	// the mailed token is not a bearer credential
	w = env.do(http.MethodDelete, "/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodPost, "/auth/password-reset", "", map[string]string{"token": token, "password": "newpass1"})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodPost, "/auth/password-reset", "", map[string]string{"token": token, "password": "again123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.AuthResetTokenInvalid, decodeBody(t, w)["error"])

	w = env.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "ana@x.com", "password": "newpass1"})
	assert.Equal(t, http.StatusOK, w.Code)
}
