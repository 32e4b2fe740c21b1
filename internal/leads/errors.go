package leads

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingName is returned when the name is blank
	ErrMissingName = errors.New("your-name is required")

	// ErrMissingEmail is returned when the email is blank
	ErrMissingEmail = errors.New("your-email is required")

	// ErrUnsupportedContent is returned when a body is neither JSON nor form encoded
	ErrUnsupportedContent = errors.New("unsupported content format: expected JSON or form-encoded data")

	// ErrInvalidJSON is returned when a body looks like JSON but does not parse
	ErrInvalidJSON = errors.New("invalid JSON format in request body")

	// ErrNoItemID is returned when monday.com answers without a created item id
	ErrNoItemID = errors.New("No item ID returned from Monday.com")

	// ErrDuplicate is returned when the same submission arrives inside the dedupe window
	ErrDuplicate = errors.New("duplicate submission")
)

// FailoverError is the terminal failure of a coordinator run.
type FailoverError struct {
	Message         string
	Attempts        int
	AttemptedFields []Field
	LastErr         error
}

func (e *FailoverError) Error() string {
	return e.Message
}

func (e *FailoverError) Unwrap() error {
	return e.LastErr
}

// AttemptedFieldNames returns the attempted fields as plain strings.
func (e *FailoverError) AttemptedFieldNames() []string {
	out := make([]string, 0, len(e.AttemptedFields))
	for _, f := range e.AttemptedFields {
		out = append(out, string(f))
	}
	return out
}

func removedFieldWarning(f Field) string {
	return fmt.Sprintf("Removed field '%s' due to formatting issues", f)
}

func attemptsFailedMessage(attempts int, lastErr error) string {
	msg := "unknown error"
	if lastErr != nil && strings.TrimSpace(lastErr.Error()) != "" {
		msg = lastErr.Error()
	}
	return fmt.Sprintf("Failed after %d attempts. Last error: %s", attempts, msg)
}
