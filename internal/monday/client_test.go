package monday

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/monday-lead-relay/internal/leads"
	"github.com/wolfman30/monday-lead-relay/pkg/logging"
)

type capturedRequest struct {
	Authorization string
	Body          graphQLRequest
}

func newTestServer(t *testing.T, captured *[]capturedRequest, respond func(w http.ResponseWriter, req graphQLRequest)) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req graphQLRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode req: %v", err)
		}
		if captured != nil {
			*captured = append(*captured, capturedRequest{Authorization: r.Header.Get("Authorization"), Body: req})
		}
		respond(w, req)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func testConfig(endpoint string) Config {
	return Config{
		Endpoint:      endpoint,
		APIToken:      "tok_123",
		BoardID:       "987654",
		ColumnMapping: ColumnMapping{Email: "lead_email", Phone: "lead_phone", Source: "text_src"},
	}
}

func TestSubmit_Success(t *testing.T) {
	var captured []capturedRequest
	ts := newTestServer(t, &captured, func(w http.ResponseWriter, _ graphQLRequest) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"create_item": map[string]any{"id": "555", "name": "Alice - a@x.com"}},
		})
	})

	cfg := testConfig(ts.URL)
	sub := NewLeadSubmitter(NewClient(cfg, logging.New("error")), cfg, logging.New("error"))

	id, err := sub.Submit(context.Background(), leads.Lead{Name: "Alice", Email: "a@x.com", Phone: "7473089408"})
	require.NoError(t, err)
	assert.Equal(t, "555", id)

	require.Len(t, captured, 1)
	got := captured[0]
	assert.Equal(t, "tok_123", got.Authorization)
	assert.Equal(t, "CreateLeadItem", got.Body.OperationName)
	assert.Contains(t, got.Body.Query, "create_item(board_id: $boardId")
	assert.Equal(t, "987654", got.Body.Variables["boardId"])
	assert.Equal(t, "topics", got.Body.Variables["groupId"])
	assert.Equal(t, "Alice - a@x.com", got.Body.Variables["itemName"])

	var columns map[string]any
	require.NoError(t, json.Unmarshal([]byte(got.Body.Variables["columnValues"].(string)), &columns))
	assert.Equal(t, map[string]any{
		"name":       "Alice",
		"lead_email": map[string]any{"email": "a@x.com", "text": "a@x.com"},
		"lead_phone": "+17473089408 US",
		"text_src":   "Website",
	}, columns)
}

func TestSubmit_GraphQLErrorSurfacesFirstMessage(t *testing.T) {
	ts := newTestServer(t, nil, func(w http.ResponseWriter, _ graphQLRequest) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"errors": []map[string]any{{"message": "invalid phone format"}, {"message": "second"}},
		})
	})
	cfg := testConfig(ts.URL)
	sub := NewLeadSubmitter(NewClient(cfg, logging.New("error")), cfg, nil)

	_, err := sub.Submit(context.Background(), leads.Lead{Name: "A", Email: "a@x.com"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "invalid phone format", err.Error())
}

func TestSubmit_ErrorMessageEnvelope(t *testing.T) {
	ts := newTestServer(t, nil, func(w http.ResponseWriter, _ graphQLRequest) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error_message": "ColumnValueException",
			"error_code":    "ColumnValueException",
		})
	})
	cfg := testConfig(ts.URL)
	sub := NewLeadSubmitter(NewClient(cfg, logging.New("error")), cfg, nil)

	_, err := sub.Submit(context.Background(), leads.Lead{Name: "A", Email: "a@x.com"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "ColumnValueException", apiErr.Code)
}

func TestSubmit_NoItemID(t *testing.T) {
	ts := newTestServer(t, nil, func(w http.ResponseWriter, _ graphQLRequest) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"create_item": nil}})
	})
	cfg := testConfig(ts.URL)
	sub := NewLeadSubmitter(NewClient(cfg, logging.New("error")), cfg, nil)

	_, err := sub.Submit(context.Background(), leads.Lead{Name: "A", Email: "a@x.com"})
	assert.ErrorIs(t, err, leads.ErrNoItemID)
}

func TestSubmit_TransportAndParseFaults(t *testing.T) {
	t.Run("malformed body", func(t *testing.T) {
		ts := newTestServer(t, nil, func(w http.ResponseWriter, _ graphQLRequest) {
			_, _ = w.Write([]byte("<html>oops"))
		})
		cfg := testConfig(ts.URL)
		sub := NewLeadSubmitter(NewClient(cfg, logging.New("error")), cfg, nil)
		_, err := sub.Submit(context.Background(), leads.Lead{Name: "A", Email: "a@x.com"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "monday: unmarshal response")
	})

	t.Run("server error", func(t *testing.T) {
		ts := newTestServer(t, nil, func(w http.ResponseWriter, _ graphQLRequest) {
			http.Error(w, "upstream unavailable", http.StatusBadGateway)
		})
		cfg := testConfig(ts.URL)
		sub := NewLeadSubmitter(NewClient(cfg, logging.New("error")), cfg, nil)
		_, err := sub.Submit(context.Background(), leads.Lead{Name: "A", Email: "a@x.com"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 502")
	})

	t.Run("connection refused", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		url := ts.URL
		ts.Close()
		cfg := testConfig(url)
		sub := NewLeadSubmitter(NewClient(cfg, logging.New("error")), cfg, nil)
		_, err := sub.Submit(context.Background(), leads.Lead{Name: "A", Email: "a@x.com"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "monday: http request")
	})

	t.Run("oversized body", func(t *testing.T) {
		prev := maxResponseBytes
		maxResponseBytes = 64
		t.Cleanup(func() { maxResponseBytes = prev })

		ts := newTestServer(t, nil, func(w http.ResponseWriter, _ graphQLRequest) {
			_, _ = w.Write([]byte(`{"data":{"create_item":{"id":"1","name":"` + strings.Repeat("x", 256) + `"}}}`))
		})
		cfg := testConfig(ts.URL)
		sub := NewLeadSubmitter(NewClient(cfg, logging.New("error")), cfg, nil)
		_, err := sub.Submit(context.Background(), leads.Lead{Name: "A", Email: "a@x.com"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "monday: unmarshal response")
	})

	t.Run("missing token", func(t *testing.T) {
		cfg := testConfig("http://127.0.0.1:1")
		cfg.APIToken = ""
		sub := NewLeadSubmitter(NewClient(cfg, logging.New("error")), cfg, nil)
		_, err := sub.Submit(context.Background(), leads.Lead{Name: "A", Email: "a@x.com"})
		assert.EqualError(t, err, "monday: missing api token")
	})
}

func TestSubmit_FailoverEndToEnd(t *testing.T) {
	calls := 0
	ts := newTestServer(t, nil, func(w http.ResponseWriter, req graphQLRequest) {
		calls++
		columns := req.Variables["columnValues"].(string)
		var parsed map[string]any
		_ = json.Unmarshal([]byte(columns), &parsed)
		if _, hasPhone := parsed["lead_phone"]; hasPhone {
			_ = json.NewEncoder(w).Encode(map[string]any{"errors": []map[string]any{{"message": "invalid phone format"}}})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"create_item": map[string]any{"id": "777"}}})
	})
	cfg := testConfig(ts.URL)
	sub := NewLeadSubmitter(NewClient(cfg, logging.New("error")), cfg, nil)
	coord := leads.NewCoordinator(sub, logging.New("error")).WithDelay(0)

	res, err := coord.CreateLead(context.Background(), leads.Lead{Name: "Alice", Email: "a@x.com", Phone: "555-0001", Location: "90210"})
	require.NoError(t, err)
	assert.Equal(t, "777", res.ItemID)
	assert.Equal(t, []string{"Removed field 'your-tel' due to formatting issues"}, res.Warnings)
	assert.Equal(t, 2, calls)
}

func TestBoards(t *testing.T) {
	ts := newTestServer(t, nil, func(w http.ResponseWriter, req graphQLRequest) {
		assert.Equal(t, "Boards", req.OperationName)
		assert.EqualValues(t, 10, req.Variables["limit"])
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"boards": []map[string]any{{"id": "1", "name": "Leads"}}},
		})
	})
	c := NewClient(testConfig(ts.URL), nil)

	boards, err := c.Boards(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, boards, 1)
	assert.Equal(t, "Leads", boards[0].Name)
}

func TestBoard(t *testing.T) {
	ts := newTestServer(t, nil, func(w http.ResponseWriter, req graphQLRequest) {
		ids, _ := req.Variables["ids"].([]any)
		if len(ids) == 1 && ids[0] == "987654" {
			_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"boards": []map[string]any{{
				"id":      "987654",
				"name":    "Leads",
				"columns": []map[string]any{{"id": "lead_email", "title": "Email", "type": "email"}},
				"groups":  []map[string]any{{"id": "topics", "title": "New"}},
			}}}})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"boards": []any{}}})
	})
	c := NewClient(testConfig(ts.URL), nil)

	board, err := c.Board(context.Background(), "987654")
	require.NoError(t, err)
	require.NotNil(t, board)
	assert.Equal(t, "email", board.Columns[0].Type)
	assert.Equal(t, "topics", board.Groups[0].ID)

	board, err = c.Board(context.Background(), "1")
	require.NoError(t, err)
	assert.Nil(t, board)
}

func TestAPIErrorIsMatchable(t *testing.T) {
	err := error(&APIError{Message: "x"})
	var apiErr *APIError
	assert.True(t, errors.As(err, &apiErr))
}
