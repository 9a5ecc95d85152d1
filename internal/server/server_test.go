// internal/server/server_test.go
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bi-agent/internal/common/logger"
	"bi-agent/internal/models"
	"bi-agent/internal/service"
)

type fakeAsker struct {
	resp *service.AskResponse
	err  error
	got  service.AskRequest
}

func (f *fakeAsker) Ask(_ context.Context, req service.AskRequest) (*service.AskResponse, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func newTestServer(t *testing.T, asker Asker) *httptest.Server {
	s := New(0, 5*time.Second, asker, logger.NewTestLogger(t))
	return httptest.NewServer(s.Routes())
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, &fakeAsker{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestAsk_RoundTrip(t *testing.T) {
	value := 1500.0
	asker := &fakeAsker{resp: &service.AskResponse{
		RequestID:   "req-1",
		Question:    "pipeline?",
		Intent:      models.Intent{Metric: models.MetricPipelineValue, DataSource: models.SourceDeals},
		Value:       &value,
		RecordCount: 2,
		Summary:     "Pipeline value is $1500.00 across 2 open records.",
		Caveats:     []string{},
	}}
	ts := newTestServer(t, asker)
	defer ts.Close()

	payload := `{"question":"pipeline?","sector":"healthcare"}`
	resp, err := http.Post(ts.URL+"/ask", "application/json", bytes.NewBufferString(payload))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthcare", asker.got.Sector)

	var body service.AskResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "req-1", body.RequestID)
	require.NotNil(t, body.Value)
	assert.InDelta(t, 1500, *body.Value, 1e-9)
}

func TestAsk_EmptyQuestionIs400(t *testing.T) {
	asker := &fakeAsker{err: service.ErrEmptyQuestion}
	ts := newTestServer(t, asker)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/ask", "application/json", bytes.NewBufferString(`{"question":""}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAsk_InvalidBodyIs400(t *testing.T) {
	ts := newTestServer(t, &fakeAsker{})
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/ask", "application/json", bytes.NewBufferString(`{not json`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAsk_GetIs405(t *testing.T) {
	ts := newTestServer(t, &fakeAsker{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/ask")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, &fakeAsker{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
