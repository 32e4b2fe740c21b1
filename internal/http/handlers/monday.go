package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/wolfman30/monday-lead-relay/internal/monday"
	"github.com/wolfman30/monday-lead-relay/pkg/logging"
)

type boardReader interface {
	Boards(ctx context.Context, limit int) ([]monday.Board, error)
	Board(ctx context.Context, boardID string) (*monday.Board, error)
}

// MondayConfig wires the board inspection endpoints.
type MondayConfig struct {
	Client  boardReader
	BoardID string
	// ColumnMapping is nil when MONDAY_COLUMN_MAPPING is unset.
	ColumnMapping *monday.ColumnMapping
	Logger        *logging.Logger
}

// MondayHandler exposes read-only views of the configured monday.com account.
type MondayHandler struct {
	client  boardReader
	boardID string
	mapping *monday.ColumnMapping
	logger  *logging.Logger
}

func NewMondayHandler(cfg MondayConfig) *MondayHandler {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &MondayHandler{
		client:  cfg.Client,
		boardID: cfg.BoardID,
		mapping: cfg.ColumnMapping,
		logger:  cfg.Logger,
	}
}

type mondayErrorData struct {
	MondayError string `json:"mondayError"`
}

type boardNotFoundData struct {
	BoardID string `json:"boardId"`
}

type boardInfoData struct {
	Board                *monday.Board         `json:"board"`
	CurrentColumnMapping *monday.ColumnMapping `json:"current_column_mapping"`
}

// Boards lists boards visible to the API token. ?limit= caps the count.
func (h *MondayHandler) Boards(w http.ResponseWriter, r *http.Request) {
	limit := 25
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respond(w, http.StatusBadRequest, "limit must be a positive integer", nil)
			return
		}
		limit = n
	}

	boards, err := h.client.Boards(r.Context(), limit)
	if err != nil {
		h.logger.Error("list monday boards failed", "error", err)
		h.mondayFailure(w, "Failed to fetch Monday.com boards", err)
		return
	}
	if boards == nil {
		boards = []monday.Board{}
	}
	respond(w, http.StatusOK, "Monday.com boards retrieved successfully", boards)
}

// BoardInfo returns columns and groups of the configured board together with
// the active column mapping.
func (h *MondayHandler) BoardInfo(w http.ResponseWriter, r *http.Request) {
	board, err := h.client.Board(r.Context(), h.boardID)
	if err != nil {
		h.logger.Error("fetch monday board failed", "board_id", h.boardID, "error", err)
		h.mondayFailure(w, "Failed to fetch board info", err)
		return
	}
	if board == nil {
		respond(w, http.StatusNotFound, "Board not found", boardNotFoundData{BoardID: h.boardID})
		return
	}
	respond(w, http.StatusOK, "Board information retrieved successfully", boardInfoData{
		Board:                board,
		CurrentColumnMapping: h.mapping,
	})
}

func (h *MondayHandler) mondayFailure(w http.ResponseWriter, message string, err error) {
	var apiErr *monday.APIError
	if errors.As(err, &apiErr) {
		respond(w, http.StatusInternalServerError, message, mondayErrorData{MondayError: apiErr.Message})
		return
	}
	respondError(w, http.StatusInternalServerError, message, err)
}
