package broker

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/skybi/session-broker/internal/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginValidCredentials(t *testing.T) {
	_, server := newTestService(t, &fakePlatform{})

	for _, credential := range user.DefaultCredentials() {
		client := newTestClient(t, server)
		status, body := client.login(credential.Username, credential.Password)
		assert.Equal(t, http.StatusOK, status)
		assert.Empty(t, body)
		assert.True(t, client.hasSessionCookie())

		// A logged-in client may use the protected endpoints
		status, _ = client.removeUser("unknown", "token")
		assert.Equal(t, http.StatusInternalServerError, status)
	}
}

func TestLoginInvalidCredentialsDestroysSession(t *testing.T) {
	_, server := newTestService(t, &fakePlatform{})
	client := newTestClient(t, server)

	status, _ := client.login("publisher1", "pass")
	require.Equal(t, http.StatusOK, status)

	status, body := client.login("publisher1", "wrong")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, messageLoginFailed, body)
	assert.False(t, client.hasSessionCookie())

	status, body = client.post("/api-sessions/get-token", map[string]string{"sessionName": "room1"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, messageNotLogged, body)
}

func TestLoginValidation(t *testing.T) {
	_, server := newTestService(t, &fakePlatform{})
	client := newTestClient(t, server)

	status, _ := client.login("publisher1", "pass")
	require.Equal(t, http.StatusOK, status)

	status, body := client.post("/api-login/login", map[string]string{"user": "publisher1"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body, "validation.requestBody.parameter.missing")
	assert.False(t, client.hasSessionCookie())

	// The session presented with the rejected login must be gone
	status, body = client.post("/api-sessions/get-token", map[string]string{"sessionName": "room1"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, messageNotLogged, body)
}

func TestLoginFormBody(t *testing.T) {
	_, server := newTestService(t, &fakePlatform{})
	client := newTestClient(t, server)

	form := url.Values{"user": {"publisher2"}, "pass": {"pass"}}
	response, err := client.client.Post(server.URL+"/api-login/login", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	response.Body.Close()
	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.True(t, client.hasSessionCookie())
}

func TestLoginThrottle(t *testing.T) {
	_, server := newTestService(t, &fakePlatform{})
	client := newTestClient(t, server)

	for i := 0; i < 3; i++ {
		status, _ := client.login("publisher1", "wrong")
		require.Equal(t, http.StatusUnauthorized, status)
	}

	status, body := client.login("publisher1", "pass")
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Contains(t, body, "access.tooManyRequests")
}

func TestLogout(t *testing.T) {
	_, server := newTestService(t, &fakePlatform{})
	client := newTestClient(t, server)

	status, _ := client.login("publisher1", "pass")
	require.Equal(t, http.StatusOK, status)

	status, body := client.post("/api-login/logout", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, body)
	assert.False(t, client.hasSessionCookie())

	status, _ = client.post("/api-sessions/get-token", map[string]string{"sessionName": "room1"})
	assert.Equal(t, http.StatusUnauthorized, status)

	// Logging out an anonymous client is a no-op
	status, _ = client.post("/api-login/logout", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestProtectedEndpointsRequireLogin(t *testing.T) {
	_, server := newTestService(t, &fakePlatform{})
	client := newTestClient(t, server)

	status, body := client.post("/api-sessions/get-token", map[string]string{"sessionName": "room1"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, messageNotLogged, body)

	status, _ = client.removeUser("room1", "token")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestExpiredSessionIsRejected(t *testing.T) {
	service, server := newTestService(t, &fakePlatform{})

	rawToken, err := service.sessionStorage.Create(context.Background(), "publisher1", time.Now().Add(-time.Minute).Unix())
	require.NoError(t, err)

	request, err := http.NewRequest(http.MethodPost, server.URL+"/api-sessions/get-token", strings.NewReader(`{"sessionName":"room1"}`))
	require.NoError(t, err)
	request.AddCookie(&http.Cookie{Name: cookieNameToken, Value: rawToken})
	response, err := http.DefaultClient.Do(request)
	require.NoError(t, err)
	defer response.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, response.StatusCode)
	assert.Contains(t, response.Header.Get("Set-Cookie"), cookieNameToken+"=;")
}
