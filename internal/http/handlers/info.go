package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/wolfman30/monday-lead-relay/internal/leads"
)

const serviceName = "WP to Monday.com CRM Lead Relay"

// InfoHandler serves the service description, health and phone checks.
type InfoHandler struct {
	version     string
	environment string
	diagnostics bool
	started     time.Time
}

func NewInfoHandler(version, environment string, diagnostics bool) *InfoHandler {
	if version == "" {
		version = "1.0.0"
	}
	return &InfoHandler{
		version:     version,
		environment: environment,
		diagnostics: diagnostics,
		started:     now(),
	}
}

type webhookUsage struct {
	URL         string            `json:"url"`
	Method      string            `json:"method"`
	ContentType string            `json:"content_type"`
	Fields      map[string]string `json:"fields"`
}

type serviceInfo struct {
	Name         string       `json:"name"`
	Version      string       `json:"version"`
	Endpoints    []string     `json:"endpoints"`
	WebhookUsage webhookUsage `json:"webhook_usage"`
}

// Root describes the service and its endpoints.
func (h *InfoHandler) Root(w http.ResponseWriter, _ *http.Request) {
	endpoints := []string{
		"GET /health - Health check",
		"POST /webhook/cf7 - ContactForm7 webhook (creates leads in Monday.com)",
		"POST /api/monday/create-lead - Create lead directly in Monday.com",
		"GET /api/monday/boards - Get Monday.com boards",
		"GET /api/monday/board-info - Get columns and groups of the configured board",
		"GET /metrics - Prometheus metrics",
	}
	if h.diagnostics {
		endpoints = append(endpoints,
			"POST /api/debug - Preview the Monday.com create_item request",
			"GET /api/test-phone - Run phone formatting over reference inputs",
			"POST /api/test-failover - Exercise failover with a malformed phone",
		)
	}
	respond(w, http.StatusOK, "Welcome to the WP to Monday.com CRM Lead Relay API", serviceInfo{
		Name:      serviceName,
		Version:   h.version,
		Endpoints: endpoints,
		WebhookUsage: webhookUsage{
			URL:         "/webhook/cf7",
			Method:      http.MethodPost,
			ContentType: "application/x-www-form-urlencoded or application/json",
			Fields: map[string]string{
				string(leads.FieldName):     "Lead name",
				string(leads.FieldEmail):    "Lead email",
				string(leads.FieldPhone):    "Lead phone",
				string(leads.FieldLocation): "Lead location/zip code",
			},
		},
	})
}

type healthData struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Environment   string `json:"environment"`
}

// Health reports liveness.
func (h *InfoHandler) Health(w http.ResponseWriter, _ *http.Request) {
	respond(w, http.StatusOK, "Service is healthy", healthData{
		Status:        "healthy",
		UptimeSeconds: int64(now().Sub(h.started).Seconds()),
		Environment:   h.environment,
	})
}

type phoneResult struct {
	Input   string `json:"input"`
	Output  string `json:"output"`
	IsValid bool   `json:"isValid"`
}

type phoneSummary struct {
	TotalTests     int    `json:"totalTests"`
	ValidOutputs   int    `json:"validOutputs"`
	AllPassed      bool   `json:"allPassed"`
	ExpectedOutput string `json:"expectedOutput"`
}

type phoneTestData struct {
	Summary phoneSummary  `json:"summary"`
	Results []phoneResult `json:"results"`
}

// TestPhone formats every reference input and reports which ones normalize
// to the expected value.
func (h *InfoHandler) TestPhone(w http.ResponseWriter, _ *http.Request) {
	results := make([]phoneResult, 0, len(leads.PhoneFormatSamples))
	valid := 0
	for _, input := range leads.PhoneFormatSamples {
		out := leads.FormatPhone(input)
		ok := out == leads.PhoneSampleExpected
		if ok {
			valid++
		}
		results = append(results, phoneResult{Input: input, Output: out, IsValid: ok})
	}
	total := len(results)
	respond(w, http.StatusOK,
		fmt.Sprintf("Phone number formatting test completed: %d/%d formats converted correctly", valid, total),
		phoneTestData{
			Summary: phoneSummary{
				TotalTests:     total,
				ValidOutputs:   valid,
				AllPassed:      valid == total,
				ExpectedOutput: leads.PhoneSampleExpected,
			},
			Results: results,
		})
}
