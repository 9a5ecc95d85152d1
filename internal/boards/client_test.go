// internal/boards/client_test.go
package boards

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bi-agent/internal/common/logger"
)

const boardResponse = `{
  "data": {
    "boards": [{
      "columns": [
        {"id": "deal_value", "title": "Deal Value"},
        {"id": "status", "title": "Status"},
        {"id": "sector", "title": "Sector"}
      ],
      "items_page": {
        "items": [{
          "id": "101",
          "name": "Acme expansion",
          "column_values": [
            {"id": "deal_value", "text": "$1,200", "value": "\"1200\"", "type": "numbers"},
            {"id": "status", "text": "Won", "value": null, "type": "status"},
            {"id": "sector", "text": "Healthcare", "value": null, "type": "text"}
          ]
        }]
      }
    }]
  }
}`

func newTestClient(t *testing.T, url string) *Client {
	return NewClient(url, "test-key", 5*time.Second, logger.NewTestLogger(t))
}

func TestFetchRecords_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req["query"], "items_page(limit: 500)")
		vars := req["variables"].(map[string]interface{})
		assert.Equal(t, []interface{}{"12345"}, vars["boardID"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(boardResponse))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	records, err := client.FetchRecords(context.Background(), "12345")
	require.NoError(t, err)

	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, "101", rec.ID)
	assert.Equal(t, "Acme expansion", rec.Name)
	require.Len(t, rec.ColumnValues, 3)

	// Column ids are resolved to their titles.
	assert.Equal(t, "Deal Value", rec.ColumnValues[0].Title)
	assert.Equal(t, "$1,200", rec.ColumnValues[0].Text)
	assert.Equal(t, `"1200"`, rec.ColumnValues[0].Value)

	// JSON null values come back empty, not as the literal "null".
	assert.Equal(t, "", rec.ColumnValues[1].Value)
}

func TestFetchRecords_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error_message":"invalid token"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.FetchRecords(context.Background(), "12345")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamFetch)
	assert.Contains(t, err.Error(), "status 401")
}

func TestFetchRecords_GraphQLError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors":[{"message":"board not accessible"}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.FetchRecords(context.Background(), "12345")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamFetch)
	assert.Contains(t, err.Error(), "board not accessible")
}

func TestFetchRecords_BoardNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"boards":[]}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.FetchRecords(context.Background(), "missing")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamFetch)
}

func TestFetchRecords_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json at all`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.FetchRecords(context.Background(), "12345")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamFetch)
}

func TestFetchRecords_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.FetchRecords(context.Background(), "12345")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamFetch)
}

func TestFetchRecords_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(boardResponse))
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	client := newTestClient(t, server.URL)
	_, err := client.FetchRecords(ctx, "12345")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamFetch)
}
