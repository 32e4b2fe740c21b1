package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/wolfman30/monday-lead-relay/internal/leads"
	"github.com/wolfman30/monday-lead-relay/internal/monday"
	observemetrics "github.com/wolfman30/monday-lead-relay/internal/observability/metrics"
	"github.com/wolfman30/monday-lead-relay/pkg/logging"
)

type leadCreator interface {
	CreateLead(ctx context.Context, lead leads.Lead) (leads.Result, error)
}

type failureAlerter interface {
	LeadFailed(ctx context.Context, lead leads.Lead, ferr *leads.FailoverError) error
}

// LeadsConfig wires the lead endpoints.
type LeadsConfig struct {
	Coordinator leadCreator
	Guard       leads.Guard
	Alerter     failureAlerter
	Monday      monday.Config
	Metrics     *observemetrics.LeadMetrics
	Logger      *logging.Logger
}

// LeadsHandler serves the form webhook and the direct lead endpoints.
type LeadsHandler struct {
	coordinator leadCreator
	guard       leads.Guard
	alerter     failureAlerter
	monday      monday.Config
	metrics     *observemetrics.LeadMetrics
	logger      *logging.Logger
}

func NewLeadsHandler(cfg LeadsConfig) *LeadsHandler {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &LeadsHandler{
		coordinator: cfg.Coordinator,
		guard:       cfg.Guard,
		alerter:     cfg.Alerter,
		monday:      cfg.Monday,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger,
	}
}

const (
	msgLeadCreated         = "Lead created successfully in Monday.com"
	msgLeadCreatedAdjusted = "Lead created successfully in Monday.com (with some field adjustments)"
	msgLeadFailed          = "Failed to create lead in Monday.com after multiple attempts"
)

type contactSummary struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
}

type webhookLeadData struct {
	CF7Data      contactSummary `json:"cf7Data"`
	MondayItemID string         `json:"mondayItemId"`
	BoardID      string         `json:"boardId"`
	Warnings     []string       `json:"warnings,omitempty"`
}

type directLeadData struct {
	Lead         leads.Lead `json:"lead"`
	MondayItemID string     `json:"mondayItemId"`
	BoardID      string     `json:"boardId"`
	Warnings     []string   `json:"warnings,omitempty"`
}

type failedLeadData struct {
	MondayError     string   `json:"mondayError"`
	AttemptedFields []string `json:"attemptedFields"`
}

type unsupportedContentData struct {
	ContentType string `json:"contentType"`
	BodyPreview string `json:"bodyPreview"`
}

// CF7Webhook accepts a Contact Form 7 submission, JSON or form encoded.
func (h *LeadsHandler) CF7Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read request body", err)
		return
	}
	contentType := r.Header.Get("Content-Type")
	h.logger.Info("cf7 webhook received",
		"content_type", contentType,
		"body_length", len(body),
		"body_preview", preview(string(body), 200),
	)

	lead, err := leads.ParseSubmission(contentType, body)
	switch {
	case errors.Is(err, leads.ErrInvalidJSON):
		respond(w, http.StatusBadRequest, "Invalid JSON format in request body", nil)
		return
	case errors.Is(err, leads.ErrUnsupportedContent):
		respond(w, http.StatusBadRequest, "Unsupported content format. Expected JSON or form-encoded data",
			unsupportedContentData{ContentType: contentType, BodyPreview: preview(string(body), 100)})
		return
	case err != nil:
		respondError(w, http.StatusBadRequest, "Failed to process ContactForm7 webhook", err)
		return
	}
	if err := lead.Validate(); err != nil {
		respond(w, http.StatusBadRequest, "Missing required fields: your-name and your-email are required", nil)
		return
	}

	result, ok := h.relay(w, r, lead)
	if !ok {
		return
	}
	respond(w, http.StatusOK, successMessage(result), webhookLeadData{
		CF7Data: contactSummary{
			Name:     lead.Name,
			Email:    lead.Email,
			Phone:    lead.Phone,
			Location: lead.Location,
		},
		MondayItemID: result.ItemID,
		BoardID:      h.monday.BoardID,
		Warnings:     result.Warnings,
	})
}

// CreateLead accepts a lead in the {name,email,phone,location} shape.
func (h *LeadsHandler) CreateLead(w http.ResponseWriter, r *http.Request) {
	var req leads.CreateLeadRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON format in request body", err)
		return
	}
	lead := req.Lead()
	if err := lead.Validate(); err != nil {
		respond(w, http.StatusBadRequest, "Missing required fields: name and email are required", nil)
		return
	}

	result, ok := h.relay(w, r, lead)
	if !ok {
		return
	}
	respond(w, http.StatusOK, successMessage(result), directLeadData{
		Lead:         lead,
		MondayItemID: result.ItemID,
		BoardID:      h.monday.BoardID,
		Warnings:     result.Warnings,
	})
}

// relay claims the submission, runs failover and writes the error response
// itself. ok is false when a response has already been written.
func (h *LeadsHandler) relay(w http.ResponseWriter, r *http.Request, lead leads.Lead) (leads.Result, bool) {
	// Finish the run even if the form plugin hangs up.
	ctx := context.WithoutCancel(r.Context())

	if h.guard != nil {
		claimed, err := h.guard.Claim(ctx, lead)
		if err != nil {
			h.logger.Warn("duplicate guard unavailable", "error", err)
		} else if !claimed {
			h.metrics.ObserveDuplicate()
			h.logger.Info("duplicate submission ignored", "email", lead.Email)
			respondError(w, http.StatusConflict, "Duplicate submission ignored", leads.ErrDuplicate)
			return leads.Result{}, false
		}
	}

	result, err := h.coordinator.CreateLead(ctx, lead)
	if err == nil {
		return result, true
	}

	if h.guard != nil {
		if rerr := h.guard.Release(ctx, lead); rerr != nil {
			h.logger.Warn("duplicate guard release failed", "error", rerr)
		}
	}
	var ferr *leads.FailoverError
	if !errors.As(err, &ferr) {
		ferr = &leads.FailoverError{Message: err.Error(), LastErr: err}
	}
	if h.alerter != nil {
		if aerr := h.alerter.LeadFailed(ctx, lead, ferr); aerr != nil {
			h.logger.Error("lead failure alert failed", "error", aerr)
		}
	}
	attempted := ferr.AttemptedFieldNames()
	respond(w, http.StatusInternalServerError, msgLeadFailed, failedLeadData{
		MondayError:     ferr.Message,
		AttemptedFields: attempted,
	})
	return leads.Result{}, false
}

func successMessage(result leads.Result) string {
	if len(result.Warnings) > 0 {
		return msgLeadCreatedAdjusted
	}
	return msgLeadCreated
}

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

type sampleLeadRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
}

// decodeSample reads an optional JSON body. An empty body is not an error.
func decodeSample(w http.ResponseWriter, r *http.Request) (sampleLeadRequest, error) {
	var req sampleLeadRequest
	body, err := readBody(w, r)
	if err != nil {
		return req, err
	}
	if strings.TrimSpace(string(body)) == "" {
		return req, nil
	}
	err = json.Unmarshal(body, &req)
	return req, err
}

func (s sampleLeadRequest) lead(fallback leads.Lead) leads.Lead {
	lead := leads.Lead{
		Name:     defaultString(s.Name, fallback.Name),
		Email:    defaultString(s.Email, fallback.Email),
		Phone:    defaultString(s.Phone, fallback.Phone),
		Location: defaultString(s.Location, fallback.Location),
	}
	return lead.Normalize()
}

func defaultString(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

type debugData struct {
	BoardID            string               `json:"board_id"`
	GroupID            string               `json:"group_id"`
	ItemName           string               `json:"item_name"`
	ColumnMapping      monday.ColumnMapping `json:"column_mapping"`
	ColumnValues       []monday.ColumnValue `json:"column_values"`
	ColumnValuesObject map[string]any       `json:"column_values_object"`
	ColumnValuesJSON   string               `json:"column_values_json"`
	Mutation           string               `json:"mutation"`
	Variables          map[string]any       `json:"variables"`
	CF7Data            leads.Lead           `json:"cf7_data"`
}

var debugSample = leads.Lead{
	Name:     "Test User",
	Email:    "test@example.com",
	Phone:    "555-1234",
	Location: "12345",
}

// Debug builds the create_item request for a sample lead without sending it.
func (h *LeadsHandler) Debug(w http.ResponseWriter, r *http.Request) {
	sample, err := decodeSample(w, r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Debug failed", err)
		return
	}
	lead := sample.lead(debugSample)
	req, err := monday.BuildCreateItem(h.monday, lead)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Debug failed", err)
		return
	}
	respond(w, http.StatusOK, "Debug information for Monday.com API", debugData{
		BoardID:            req.BoardID,
		GroupID:            req.GroupID,
		ItemName:           req.ItemName,
		ColumnMapping:      req.ColumnMapping,
		ColumnValues:       req.ColumnValues,
		ColumnValuesObject: req.ColumnValuesMap,
		ColumnValuesJSON:   req.ColumnValuesJSON,
		Mutation:           monday.CreateItemMutation(),
		Variables:          req.Variables(),
		CF7Data:            lead,
	})
}

var failoverSample = leads.Lead{
	Name:     "Test Failover User",
	Email:    "test@example.com",
	Phone:    "+1-555-INVALID-PHONE",
	Location: "90210",
}

type failoverOutcome struct {
	Success         bool     `json:"success"`
	ItemID          string   `json:"itemId,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`
	Error           string   `json:"error,omitempty"`
	AttemptedFields []string `json:"attemptedFields,omitempty"`
}

type failoverTestData struct {
	TestData    leads.Lead      `json:"testData"`
	Result      failoverOutcome `json:"result"`
	Explanation string          `json:"explanation"`
}

// TestFailover runs the coordinator with a deliberately malformed phone.
// It bypasses the duplicate guard and alerts.
func (h *LeadsHandler) TestFailover(w http.ResponseWriter, r *http.Request) {
	sample, err := decodeSample(w, r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failover test failed", err)
		return
	}
	lead := sample.lead(failoverSample)
	h.logger.Info("running failover test", "lead", lead.Title(), "phone", lead.Phone)

	outcome := failoverOutcome{}
	result, err := h.coordinator.CreateLead(context.WithoutCancel(r.Context()), lead)
	if err != nil {
		var ferr *leads.FailoverError
		outcome.Error = err.Error()
		if errors.As(err, &ferr) {
			outcome.AttemptedFields = ferr.AttemptedFieldNames()
		}
	} else {
		outcome.Success = true
		outcome.ItemID = result.ItemID
		outcome.Warnings = result.Warnings
	}

	respond(w, http.StatusOK, "Failover test completed", failoverTestData{
		TestData:    lead,
		Result:      outcome,
		Explanation: "This test uses intentionally problematic phone data to demonstrate failover logic",
	})
}
