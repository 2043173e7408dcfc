package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/skybi/session-broker/internal/conference"
	"github.com/skybi/session-broker/internal/config"
	"github.com/skybi/session-broker/internal/storage/static"
	"github.com/skybi/session-broker/internal/user"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakePlatform struct {
	mtx         sync.Mutex
	sessions    int
	connections int
	fail        bool
	properties  []*conference.ConnectionProperties

	// entered and release let tests hold a session creation in flight
	entered chan struct{}
	release chan struct{}
}

type fakeHandle struct {
	id       string
	platform *fakePlatform
}

func (platform *fakePlatform) CreateSession(_ context.Context) (conference.Handle, error) {
	if platform.entered != nil {
		platform.entered <- struct{}{}
	}
	if platform.release != nil {
		<-platform.release
	}
	platform.mtx.Lock()
	defer platform.mtx.Unlock()
	if platform.fail {
		return nil, errors.New("platform unavailable")
	}
	platform.sessions++
	return &fakeHandle{id: fmt.Sprintf("ses_%d", platform.sessions), platform: platform}, nil
}

func (handle *fakeHandle) ID() string {
	return handle.id
}

func (handle *fakeHandle) CreateConnection(_ context.Context, properties *conference.ConnectionProperties) (*conference.Connection, error) {
	handle.platform.mtx.Lock()
	defer handle.platform.mtx.Unlock()
	if handle.platform.fail {
		return nil, errors.New("platform unavailable")
	}
	handle.platform.connections++
	handle.platform.properties = append(handle.platform.properties, properties)
	id := fmt.Sprintf("con_%d", handle.platform.connections)
	return &conference.Connection{ID: id, Token: handle.id + "/" + id}, nil
}

func (platform *fakePlatform) setFail(fail bool) {
	platform.mtx.Lock()
	defer platform.mtx.Unlock()
	platform.fail = fail
}

func (platform *fakePlatform) sessionCount() int {
	platform.mtx.Lock()
	defer platform.mtx.Unlock()
	return platform.sessions
}

func (platform *fakePlatform) connectionCount() int {
	platform.mtx.Lock()
	defer platform.mtx.Unlock()
	return platform.connections
}

func (platform *fakePlatform) connectionProperties() []*conference.ConnectionProperties {
	platform.mtx.Lock()
	defer platform.mtx.Unlock()
	return append([]*conference.ConnectionProperties(nil), platform.properties...)
}

type testClient struct {
	t      *testing.T
	server *httptest.Server
	client *http.Client
}

func newTestService(t *testing.T, platform conference.Platform, configure ...func(cfg *config.Config)) (*Service, *httptest.Server) {
	t.Helper()

	driver := static.New(user.DefaultCredentials(), static.WithHashCost(bcrypt.MinCost))
	require.NoError(t, driver.Initialize(context.Background()))

	service := &Service{
		Config: &config.Config{
			Environment:            "dev",
			APIAllowedOrigins:      []string{"*"},
			SessionLifetime:        time.Hour,
			SessionCleanupInterval: time.Minute,
			LoginAttemptLimit:      3,
			LoginAttemptWindow:     time.Minute,
			PlatformTimeout:        time.Second,
		},
		Storage:  driver,
		Platform: platform,
	}
	for _, fn := range configure {
		fn(service.Config)
	}
	require.NoError(t, service.Initialize())
	server := httptest.NewServer(service.router)
	t.Cleanup(func() {
		server.Close()
		service.Shutdown()
	})
	return service, server
}

func newTestClient(t *testing.T, server *httptest.Server) *testClient {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testClient{
		t:      t,
		server: server,
		client: &http.Client{Jar: jar},
	}
}

func (client *testClient) post(path string, body any) (int, string) {
	client.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(client.t, err)
		reader = strings.NewReader(string(raw))
	}
	response, err := client.client.Post(client.server.URL+path, "application/json", reader)
	require.NoError(client.t, err)
	defer response.Body.Close()
	raw, err := io.ReadAll(response.Body)
	require.NoError(client.t, err)
	return response.StatusCode, string(raw)
}

func (client *testClient) login(username, password string) (int, string) {
	return client.post("/api-login/login", map[string]string{"user": username, "pass": password})
}

func (client *testClient) getToken(sessionName string) string {
	client.t.Helper()
	status, body := client.post("/api-sessions/get-token", map[string]string{"sessionName": sessionName})
	require.Equal(client.t, http.StatusOK, status, body)
	response := map[string]string{}
	require.NoError(client.t, json.Unmarshal([]byte(body), &response))
	require.Contains(client.t, response, "0")
	return response["0"]
}

func (client *testClient) removeUser(sessionName, token string) (int, string) {
	return client.post("/api-sessions/remove-user", map[string]string{"sessionName": sessionName, "token": token})
}

func (client *testClient) hasSessionCookie() bool {
	serverURL, _ := url.Parse(client.server.URL)
	for _, cookie := range client.client.Jar.Cookies(serverURL) {
		if cookie.Name == cookieNameToken && cookie.Value != "" {
			return true
		}
	}
	return false
}
