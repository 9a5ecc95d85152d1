// internal/boards/client.go

// Package boards fetches raw board data from the monday.com GraphQL API.
package boards

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"bi-agent/internal/common/httpclient"
	"bi-agent/internal/common/logger"
	"bi-agent/internal/models"
)

// ErrUpstreamFetch wraps every failure mode of the board API so callers can
// convert the whole class into a single caveat.
var ErrUpstreamFetch = errors.New("UPSTREAM_FETCH_FAILED")

// itemPageLimit is the maximum item count the API returns per page.
const itemPageLimit = 500

const boardQuery = `query ($boardID: [ID!]) {
  boards(ids: $boardID) {
    columns { id title }
    items_page(limit: %d) {
      items {
        id
        name
        column_values { id text value type }
      }
    }
  }
}`

type Client struct {
	apiURL string
	apiKey string
	client *httpclient.Client
	logger logger.Logger
}

func NewClient(apiURL, apiKey string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		apiURL: apiURL,
		apiKey: apiKey,
		client: httpclient.New(timeout),
		logger: log.WithFields(map[string]interface{}{"component": "boards-client"}),
	}
}

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

type graphQLResponse struct {
	Data struct {
		Boards []struct {
			Columns []struct {
				ID    string `json:"id"`
				Title string `json:"title"`
			} `json:"columns"`
			ItemsPage struct {
				Items []struct {
					ID           string `json:"id"`
					Name         string `json:"name"`
					ColumnValues []struct {
						ID    string          `json:"id"`
						Text  string          `json:"text"`
						Value json.RawMessage `json:"value"`
						Type  string          `json:"type"`
					} `json:"column_values"`
				} `json:"items"`
			} `json:"items_page"`
		} `json:"boards"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// FetchRecords pulls every item on a board and returns them with column ids
// resolved to their human titles, which is what the field normalizer keys on.
func (c *Client) FetchRecords(ctx context.Context, boardID string) ([]models.RawRecord, error) {
	payload := graphQLRequest{
		Query:     fmt.Sprintf(boardQuery, itemPageLimit),
		Variables: map[string]interface{}{"boardID": []string{boardID}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal query: %v", ErrUpstreamFetch, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrUpstreamFetch, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: execute request: %v", ErrUpstreamFetch, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUpstreamFetch, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrUpstreamFetch, resp.StatusCode, string(respBody))
	}

	var parsed graphQLResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("%w: unmarshal response: %v", ErrUpstreamFetch, err)
	}
	if len(parsed.Errors) > 0 {
		return nil, fmt.Errorf("%w: api error: %s", ErrUpstreamFetch, parsed.Errors[0].Message)
	}
	if len(parsed.Data.Boards) == 0 {
		return nil, fmt.Errorf("%w: board %s not found", ErrUpstreamFetch, boardID)
	}

	board := parsed.Data.Boards[0]

	titles := make(map[string]string, len(board.Columns))
	for _, col := range board.Columns {
		titles[col.ID] = col.Title
	}

	records := make([]models.RawRecord, 0, len(board.ItemsPage.Items))
	for _, item := range board.ItemsPage.Items {
		rec := models.RawRecord{ID: item.ID, Name: item.Name}
		for _, cv := range item.ColumnValues {
			value := string(cv.Value)
			if value == "null" {
				value = ""
			}
			rec.ColumnValues = append(rec.ColumnValues, models.RawColumnValue{
				ID:    cv.ID,
				Title: titles[cv.ID],
				Text:  cv.Text,
				Value: value,
				Type:  cv.Type,
			})
		}
		records = append(records, rec)
	}

	c.logger.Info("board fetched", map[string]interface{}{
		"boardId":     boardID,
		"recordCount": len(records),
	})

	return records, nil
}
