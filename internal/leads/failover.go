package leads

import (
	"context"
	"fmt"
	"time"

	"github.com/wolfman30/monday-lead-relay/internal/observability/metrics"
	"github.com/wolfman30/monday-lead-relay/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var failoverTracer = otel.Tracer("leadrelay.internal.leads.failover")

const defaultFailoverDelay = 100 * time.Millisecond

// Submitter performs a single create-item call for a lead.
type Submitter interface {
	Submit(ctx context.Context, lead Lead) (string, error)
}

// SubmitterFunc adapts a function to the Submitter interface.
type SubmitterFunc func(ctx context.Context, lead Lead) (string, error)

func (f SubmitterFunc) Submit(ctx context.Context, lead Lead) (string, error) {
	return f(ctx, lead)
}

// Result is a successful coordinator run.
type Result struct {
	ItemID   string
	Warnings []string
	Attempts int
}

// Coordinator retries lead creation, dropping the least essential field
// after each rejected attempt.
type Coordinator struct {
	submitter Submitter
	priority  []Field
	delay     time.Duration
	sleep     func(time.Duration)
	logger    *logging.Logger
	metrics   *metrics.LeadMetrics
}

// NewCoordinator builds a coordinator over the default field priority.
func NewCoordinator(submitter Submitter, logger *logging.Logger) *Coordinator {
	if logger == nil {
		logger = logging.Default()
	}
	priority := make([]Field, len(FieldPriority))
	copy(priority, FieldPriority)
	return &Coordinator{
		submitter: submitter,
		priority:  priority,
		delay:     defaultFailoverDelay,
		sleep:     time.Sleep,
		logger:    logger,
	}
}

// WithDelay sets the flat pause between failed attempts.
func (c *Coordinator) WithDelay(d time.Duration) *Coordinator {
	if d >= 0 {
		c.delay = d
	}
	return c
}

// WithSleeper replaces time.Sleep, mainly for tests.
func (c *Coordinator) WithSleeper(fn func(time.Duration)) *Coordinator {
	if fn != nil {
		c.sleep = fn
	}
	return c
}

func (c *Coordinator) WithMetrics(m *metrics.LeadMetrics) *Coordinator {
	c.metrics = m
	return c
}

// CreateLead submits lead, degrading it on failure. The returned error is
// always a *FailoverError.
func (c *Coordinator) CreateLead(ctx context.Context, lead Lead) (Result, error) {
	ctx, span := failoverTracer.Start(ctx, "leads.failover.create")
	defer span.End()

	working := lead
	var warnings []string
	attempted := newFieldSet()
	bound := len(c.priority) + 1

	for attempt := 0; attempt < bound; attempt++ {
		present := working.PresentFields()
		attempted.add(present...)
		c.logger.Info("monday lead attempt",
			"attempt", attempt+1,
			"fields", fieldNames(present),
		)

		start := time.Now()
		itemID, err := c.submit(ctx, working)
		c.metrics.ObserveSubmissionLatency(time.Since(start).Seconds())
		if err == nil {
			c.metrics.ObserveAttempt("success")
			c.metrics.ObserveFailover("success")
			span.SetAttributes(
				attribute.Int("leads.attempts", attempt+1),
				attribute.Int("leads.fields_dropped", len(warnings)),
			)
			c.logger.Info("monday lead created",
				"item_id", itemID,
				"attempts", attempt+1,
				"warnings", len(warnings),
			)
			return Result{ItemID: itemID, Warnings: warnings, Attempts: attempt + 1}, nil
		}
		c.metrics.ObserveAttempt("failure")
		c.logger.Warn("monday lead attempt failed", "attempt", attempt+1, "error", err)

		if attempt >= len(c.priority)-2 {
			return Result{}, c.fail(span, &FailoverError{
				Message:         attemptsFailedMessage(attempt+1, err),
				Attempts:        attempt + 1,
				AttemptedFields: attempted.list(),
				LastErr:         err,
			})
		}

		field := c.priority[len(c.priority)-1-attempt]
		if working.Clear(field) {
			c.logger.Info("removing problematic field", "field", string(field))
			warnings = append(warnings, removedFieldWarning(field))
			c.metrics.ObserveFieldDropped(string(field))
		}
		c.sleep(c.delay)
	}

	return Result{}, c.fail(span, &FailoverError{
		Message:         "All failover attempts exhausted",
		Attempts:        bound,
		AttemptedFields: attempted.list(),
	})
}

func (c *Coordinator) fail(span trace.Span, ferr *FailoverError) error {
	c.metrics.ObserveFailover("failure")
	span.RecordError(ferr)
	span.SetStatus(codes.Error, ferr.Message)
	c.logger.Error("monday lead failover exhausted",
		"attempts", ferr.Attempts,
		"attempted_fields", ferr.AttemptedFieldNames(),
		"error", ferr.Message,
	)
	return ferr
}

// submit converts a missing submitter, a panic or an empty id into an error.
func (c *Coordinator) submit(ctx context.Context, lead Lead) (itemID string, err error) {
	if c.submitter == nil {
		return "", fmt.Errorf("leads: submitter not configured")
	}
	defer func() {
		if r := recover(); r != nil {
			itemID = ""
			err = fmt.Errorf("leads: submitter panic: %v", r)
		}
	}()
	itemID, err = c.submitter.Submit(ctx, lead)
	if err == nil && itemID == "" {
		err = ErrNoItemID
	}
	return itemID, err
}

// fieldSet keeps first-seen order while deduplicating.
type fieldSet struct {
	seen  map[Field]struct{}
	order []Field
}

func newFieldSet() *fieldSet {
	return &fieldSet{seen: make(map[Field]struct{})}
}

func (s *fieldSet) add(fields ...Field) {
	for _, f := range fields {
		if _, ok := s.seen[f]; ok {
			continue
		}
		s.seen[f] = struct{}{}
		s.order = append(s.order, f)
	}
}

func (s *fieldSet) list() []Field {
	out := make([]Field, len(s.order))
	copy(out, s.order)
	return out
}

func fieldNames(fields []Field) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, string(f))
	}
	return out
}
