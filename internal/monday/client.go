package monday

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/wolfman30/monday-lead-relay/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var mondayTracer = otel.Tracer("leadrelay.internal.monday")

// maxResponseBytes caps how much of a monday.com response is read.
var maxResponseBytes int64 = 4 << 20

const (
	mutationCreateItem = `mutation CreateLeadItem($boardId: ID!, $groupId: String!, $itemName: String!, $columnValues: JSON!) {
  create_item(board_id: $boardId, group_id: $groupId, item_name: $itemName, column_values: $columnValues) {
    id
    name
  }
}`

	queryBoards = `query Boards($limit: Int!) {
  boards(limit: $limit) {
    id
    name
    description
  }
}`

	queryBoardInfo = `query BoardInfo($ids: [ID!]) {
  boards(ids: $ids) {
    id
    name
    columns {
      id
      title
      type
    }
    groups {
      id
      title
    }
  }
}`
)

// CreateItemMutation returns the GraphQL document used for create_item.
func CreateItemMutation() string {
	return mutationCreateItem
}

// Client is a lightweight GraphQL client for the monday.com v2 API.
type Client struct {
	endpoint   string
	httpClient *http.Client
	apiToken   string
	logger     *logging.Logger
}

// NewClient creates a monday.com client from cfg.
func NewClient(cfg Config, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	cfg = cfg.withDefaults()
	return &Client{
		endpoint: cfg.Endpoint,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		apiToken: cfg.APIToken,
		logger:   logger,
	}
}

// CreateItem runs the create_item mutation.
func (c *Client) CreateItem(ctx context.Context, req CreateItemRequest) (*Item, error) {
	out, err := execute[createItemData](ctx, c, "CreateLeadItem", mutationCreateItem, req.Variables())
	if err != nil {
		return nil, err
	}
	return out.CreateItem, nil
}

// Boards lists up to limit boards visible to the token.
func (c *Client) Boards(ctx context.Context, limit int) ([]Board, error) {
	if limit <= 0 {
		limit = 25
	}
	out, err := execute[boardsData](ctx, c, "Boards", queryBoards, map[string]any{"limit": limit})
	if err != nil {
		return nil, err
	}
	return out.Boards, nil
}

// Board fetches columns and groups of a single board. It returns nil, nil
// when the board does not exist.
func (c *Client) Board(ctx context.Context, boardID string) (*Board, error) {
	out, err := execute[boardsData](ctx, c, "BoardInfo", queryBoardInfo, map[string]any{"ids": []string{boardID}})
	if err != nil {
		return nil, err
	}
	if len(out.Boards) == 0 {
		return nil, nil
	}
	return &out.Boards[0], nil
}

func execute[T any](ctx context.Context, c *Client, operationName, query string, variables map[string]any) (T, error) {
	var zero T
	ctx, span := mondayTracer.Start(ctx, "monday.graphql")
	defer span.End()
	span.SetAttributes(attribute.String("monday.operation", operationName))

	out, err := c.do(ctx, operationName, query, variables)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return zero, err
	}
	var env graphQLResponse[T]
	if err := json.Unmarshal(out, &env); err != nil {
		return zero, fmt.Errorf("monday: unmarshal response: %w", err)
	}
	return env.Data, nil
}

// do sends one request and returns the raw body once it is known to carry
// no GraphQL or transport error.
func (c *Client) do(ctx context.Context, operationName, query string, variables map[string]any) ([]byte, error) {
	if strings.TrimSpace(c.apiToken) == "" {
		return nil, fmt.Errorf("monday: missing api token")
	}

	body, err := json.Marshal(graphQLRequest{OperationName: operationName, Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("monday: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("monday: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("monday: http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("monday: read response: %w", err)
	}

	// monday.com reports rejections in the body, sometimes with a non-200 status.
	var env graphQLResponse[json.RawMessage]
	decodeErr := json.Unmarshal(respBody, &env)
	if decodeErr == nil {
		if len(env.Errors) > 0 {
			msg := strings.TrimSpace(env.Errors[0].Message)
			if msg == "" {
				msg = "Monday.com API error"
			}
			c.logger.Error("monday api errors", "operation", operationName, "errors", env.Errors)
			return nil, &APIError{Message: msg}
		}
		if env.ErrorMessage != "" {
			c.logger.Error("monday api error", "operation", operationName, "error", env.ErrorMessage, "code", env.ErrorCode)
			return nil, &APIError{Message: env.ErrorMessage, Code: env.ErrorCode}
		}
	}

	if resp.StatusCode != http.StatusOK {
		msg := string(respBody)
		if len(msg) > 300 {
			msg = msg[:300]
		}
		return nil, fmt.Errorf("monday: status %d: %s", resp.StatusCode, msg)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("monday: unmarshal response: %w", decodeErr)
	}
	return respBody, nil
}
