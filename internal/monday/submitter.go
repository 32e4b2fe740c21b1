package monday

import (
	"context"

	"github.com/wolfman30/monday-lead-relay/internal/leads"
	"github.com/wolfman30/monday-lead-relay/pkg/logging"
)

// LeadSubmitter creates one board item per call. It never retries.
type LeadSubmitter struct {
	client *Client
	cfg    Config
	logger *logging.Logger
}

// NewLeadSubmitter binds a client to a board configuration.
func NewLeadSubmitter(client *Client, cfg Config, logger *logging.Logger) *LeadSubmitter {
	if logger == nil {
		logger = logging.Default()
	}
	return &LeadSubmitter{client: client, cfg: cfg.withDefaults(), logger: logger}
}

var _ leads.Submitter = (*LeadSubmitter)(nil)

// Submit sends lead to the board and returns the created item id.
func (s *LeadSubmitter) Submit(ctx context.Context, lead leads.Lead) (string, error) {
	req, err := BuildCreateItem(s.cfg, lead)
	if err != nil {
		return "", err
	}
	s.logger.Debug("monday create_item request",
		"board_id", req.BoardID,
		"group_id", req.GroupID,
		"item_name", req.ItemName,
		"column_values", req.ColumnValuesJSON,
	)

	item, err := s.client.CreateItem(ctx, req)
	if err != nil {
		return "", err
	}
	if item == nil || item.ID == "" {
		return "", leads.ErrNoItemID
	}
	return item.ID, nil
}

// Config returns the board configuration the submitter writes to.
func (s *LeadSubmitter) Config() Config {
	return s.cfg
}
