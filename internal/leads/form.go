package leads

import (
	"encoding/json"
	"net/url"
	"strings"
)

// ParseSubmission decodes a Contact Form 7 body. JSON bodies that fail to
// decode under a JSON content type are retried as form data, matching how
// some CF7 webhook plugins mislabel their payloads.
func ParseSubmission(contentType string, body []byte) (Lead, error) {
	ct := strings.ToLower(contentType)
	text := string(body)

	switch {
	case strings.Contains(ct, "application/json"):
		lead, err := parseJSONSubmission(body)
		if err != nil {
			return parseFormSubmission(text)
		}
		return lead, nil
	case strings.Contains(ct, "application/x-www-form-urlencoded"):
		return parseFormSubmission(text)
	}

	trimmed := strings.TrimSpace(text)
	switch {
	case strings.HasPrefix(trimmed, "{"):
		lead, err := parseJSONSubmission(body)
		if err != nil {
			return Lead{}, ErrInvalidJSON
		}
		return lead, nil
	case strings.Contains(text, "=") && strings.Contains(text, "&"):
		return parseFormSubmission(text)
	}
	return Lead{}, ErrUnsupportedContent
}

// parseJSONSubmission accepts string values only; other JSON types are
// rendered with their JSON text so numeric zip codes survive.
func parseJSONSubmission(body []byte) (Lead, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return Lead{}, err
	}
	get := func(f Field) string {
		v, ok := raw[string(f)]
		if !ok {
			return ""
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return s
		}
		if string(v) == "null" {
			return ""
		}
		return string(v)
	}
	return leadFromGetter(get).Normalize(), nil
}

// parseFormSubmission keeps every pair that decodes; a malformed escape only
// loses its own pair.
func parseFormSubmission(text string) (Lead, error) {
	values, _ := url.ParseQuery(strings.TrimSpace(text))
	return leadFromGetter(func(f Field) string {
		return values.Get(string(f))
	}).Normalize(), nil
}

func leadFromGetter(get func(Field) string) Lead {
	return Lead{
		Name:     get(FieldName),
		Email:    get(FieldEmail),
		Phone:    get(FieldPhone),
		Location: get(FieldLocation),
		Subject:  get(FieldSubject),
		Message:  get(FieldMessage),
		Website:  get(FieldWebsite),
	}
}
