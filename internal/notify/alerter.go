package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/wolfman30/monday-lead-relay/internal/leads"
	"github.com/wolfman30/monday-lead-relay/pkg/logging"
)

// Alerter emails operators when a lead could not be relayed, so the contact
// is not lost with the request.
type Alerter struct {
	sender EmailSender
	to     string
	logger *logging.Logger
}

func NewAlerter(sender EmailSender, to string, logger *logging.Logger) *Alerter {
	if logger == nil {
		logger = logging.Default()
	}
	return &Alerter{sender: sender, to: strings.TrimSpace(to), logger: logger}
}

// LeadFailed sends the failed lead and the failover diagnostics. A nil
// Alerter or an empty recipient is a no-op.
func (a *Alerter) LeadFailed(ctx context.Context, lead leads.Lead, ferr *leads.FailoverError) error {
	if a == nil || a.sender == nil || a.to == "" {
		return nil
	}
	msg := EmailMessage{
		To:      a.to,
		Subject: fmt.Sprintf("Lead not delivered to monday.com: %s", lead.Title()),
		Body:    failedLeadBody(lead, ferr),
	}
	if err := a.sender.Send(ctx, msg); err != nil {
		a.logger.Error("lead failure alert not sent", "error", err, "to", a.to)
		return err
	}
	return nil
}

func failedLeadBody(lead leads.Lead, ferr *leads.FailoverError) string {
	var b strings.Builder
	b.WriteString("A website lead could not be created on the monday.com board.\n\n")
	for _, f := range leads.AllFields {
		if v := lead.Get(f); v != "" {
			fmt.Fprintf(&b, "%s: %s\n", f, v)
		}
	}
	if ferr != nil {
		fmt.Fprintf(&b, "\nError: %s\n", ferr.Message)
		fmt.Fprintf(&b, "Attempts: %d\n", ferr.Attempts)
		fmt.Fprintf(&b, "Attempted fields: %s\n", strings.Join(ferr.AttemptedFieldNames(), ", "))
	}
	return b.String()
}
