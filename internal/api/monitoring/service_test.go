package monitoring

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/skybi/session-broker/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsEndpoint(t *testing.T) {
	metrics.RecordTokenIssued("PUBLISHER", true)

	server := httptest.NewServer((&Service{}).Handler())
	defer server.Close()

	response, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer response.Body.Close()
	body, err := io.ReadAll(response.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.Contains(t, string(body), `broker_tokens_issued_total{role="PUBLISHER"}`)
	assert.Contains(t, string(body), "broker_active_conference_sessions")
}

func TestHealthEndpoint(t *testing.T) {
	server := httptest.NewServer((&Service{}).Handler())
	defer server.Close()

	response, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	response.Body.Close()
	assert.Equal(t, http.StatusOK, response.StatusCode)
}
