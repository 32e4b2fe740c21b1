package monday

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/wolfman30/monday-lead-relay/internal/leads"
)

// Per-field column ids used when a configured mapping omits a key.
const (
	fallbackNameColumn     = "name"
	fallbackEmailColumn    = "lead_email"
	fallbackPhoneColumn    = "lead_phone"
	fallbackLocationColumn = "text_mkvqtqf7"
)

// ColumnMapping maps logical lead fields to board column ids.
type ColumnMapping struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	Source   string `json:"source,omitempty"`
}

// DefaultColumnMapping is used when no mapping is configured at all.
func DefaultColumnMapping() ColumnMapping {
	return ColumnMapping{
		Name:     "name",
		Email:    "email",
		Phone:    "phone",
		Location: "location",
	}
}

// ParseColumnMapping decodes a JSON mapping; blank input yields the default.
func ParseColumnMapping(raw string) (ColumnMapping, error) {
	if strings.TrimSpace(raw) == "" {
		return DefaultColumnMapping(), nil
	}
	var m ColumnMapping
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return ColumnMapping{}, fmt.Errorf("monday: parse column mapping: %w", err)
	}
	return m, nil
}

func (m ColumnMapping) nameColumn() string     { return orDefault(m.Name, fallbackNameColumn) }
func (m ColumnMapping) emailColumn() string    { return orDefault(m.Email, fallbackEmailColumn) }
func (m ColumnMapping) phoneColumn() string    { return orDefault(m.Phone, fallbackPhoneColumn) }
func (m ColumnMapping) locationColumn() string { return orDefault(m.Location, fallbackLocationColumn) }

func orDefault(v, fallback string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return fallback
}

// ColumnValue is one column entry of a create_item call. Email is set only
// for the email column, which monday.com expects as {email, text}.
type ColumnValue struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Email string `json:"email,omitempty"`
}

// EmailValue is the wire shape of an email column.
type EmailValue struct {
	Email string `json:"email"`
	Text  string `json:"text"`
}

// BuildColumnValues lists the column entries for the non-empty lead fields,
// followed by the source marker when a source column is mapped.
func BuildColumnValues(lead leads.Lead, m ColumnMapping) []ColumnValue {
	values := make([]ColumnValue, 0, 5)
	if lead.Has(leads.FieldName) {
		values = append(values, ColumnValue{ID: m.nameColumn(), Text: lead.Name})
	}
	if lead.Has(leads.FieldEmail) {
		values = append(values, ColumnValue{ID: m.emailColumn(), Text: lead.Email, Email: lead.Email})
	}
	if lead.Has(leads.FieldPhone) {
		values = append(values, ColumnValue{ID: m.phoneColumn(), Text: leads.FormatPhone(lead.Phone)})
	}
	if lead.Has(leads.FieldLocation) {
		values = append(values, ColumnValue{ID: m.locationColumn(), Text: lead.Location})
	}
	if source := strings.TrimSpace(m.Source); source != "" {
		values = append(values, ColumnValue{ID: source, Text: sourceText})
	}
	return values
}

// ColumnValuesObject renders column entries into the column_values map.
func ColumnValuesObject(values []ColumnValue) map[string]any {
	out := make(map[string]any, len(values))
	for _, cv := range values {
		if cv.Email != "" {
			out[cv.ID] = EmailValue{Email: cv.Email, Text: cv.Text}
			continue
		}
		out[cv.ID] = cv.Text
	}
	return out
}

// CreateItemRequest is a fully prepared create_item call.
type CreateItemRequest struct {
	BoardID          string         `json:"board_id"`
	GroupID          string         `json:"group_id"`
	ItemName         string         `json:"item_name"`
	ColumnMapping    ColumnMapping  `json:"column_mapping"`
	ColumnValues     []ColumnValue  `json:"column_values"`
	ColumnValuesMap  map[string]any `json:"column_values_object"`
	ColumnValuesJSON string         `json:"column_values_json"`
}

// BuildCreateItem prepares the create_item call for lead without sending it.
func BuildCreateItem(cfg Config, lead leads.Lead) (CreateItemRequest, error) {
	cfg = cfg.withDefaults()
	boardID := strings.TrimSpace(cfg.BoardID)
	if _, err := strconv.ParseInt(boardID, 10, 64); err != nil {
		return CreateItemRequest{}, fmt.Errorf("monday: invalid board id %q", cfg.BoardID)
	}

	values := BuildColumnValues(lead, cfg.ColumnMapping)
	object := ColumnValuesObject(values)
	encoded, err := json.Marshal(object)
	if err != nil {
		return CreateItemRequest{}, fmt.Errorf("monday: encode column values: %w", err)
	}

	return CreateItemRequest{
		BoardID:          boardID,
		GroupID:          cfg.GroupID,
		ItemName:         lead.Title(),
		ColumnMapping:    cfg.ColumnMapping,
		ColumnValues:     values,
		ColumnValuesMap:  object,
		ColumnValuesJSON: string(encoded),
	}, nil
}

// Variables are the GraphQL variables for mutationCreateItem.
func (r CreateItemRequest) Variables() map[string]any {
	return map[string]any{
		"boardId":      r.BoardID,
		"groupId":      r.GroupID,
		"itemName":     r.ItemName,
		"columnValues": r.ColumnValuesJSON,
	}
}
