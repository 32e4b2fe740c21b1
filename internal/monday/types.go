package monday

import (
	"strings"
	"time"
)

const (
	defaultEndpoint = "https://api.monday.com/v2"
	defaultGroupID  = "topics"
	defaultTimeout  = 20 * time.Second

	// sourceText is written to the source column of every website lead.
	sourceText = "Website"
)

// Config carries everything needed to talk to one monday.com board.
type Config struct {
	Endpoint      string
	APIToken      string
	BoardID       string
	GroupID       string
	ColumnMapping ColumnMapping
	Timeout       time.Duration
}

func (c Config) withDefaults() Config {
	if strings.TrimSpace(c.Endpoint) == "" {
		c.Endpoint = defaultEndpoint
	}
	if strings.TrimSpace(c.GroupID) == "" {
		c.GroupID = defaultGroupID
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	return c
}

// Item is a created board item.
type Item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Column describes a board column.
type Column struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

// Group describes a board group.
type Group struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Board is a monday.com board summary.
type Board struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Columns     []Column `json:"columns,omitempty"`
	Groups      []Group  `json:"groups,omitempty"`
}

// APIError is a rejection reported inside a monday.com response body.
type APIError struct {
	Message string
	Code    string
}

func (e *APIError) Error() string {
	return e.Message
}

type graphQLRequest struct {
	OperationName string         `json:"operationName,omitempty"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse[T any] struct {
	Data         T              `json:"data"`
	Errors       []graphQLError `json:"errors"`
	ErrorMessage string         `json:"error_message"`
	ErrorCode    string         `json:"error_code"`
}

type createItemData struct {
	CreateItem *Item `json:"create_item"`
}

type boardsData struct {
	Boards []Board `json:"boards"`
}
