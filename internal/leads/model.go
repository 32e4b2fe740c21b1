package leads

import "strings"

// Field names a Contact Form 7 input carried on a lead.
type Field string

const (
	FieldName     Field = "your-name"
	FieldEmail    Field = "your-email"
	FieldPhone    Field = "your-tel"
	FieldLocation Field = "zip-code"
	FieldSubject  Field = "your-subject"
	FieldMessage  Field = "your-message"
	FieldWebsite  Field = "your-website"
)

// AllFields lists every field in display order.
var AllFields = []Field{
	FieldName,
	FieldEmail,
	FieldPhone,
	FieldLocation,
	FieldSubject,
	FieldMessage,
	FieldWebsite,
}

// FieldPriority is ordered from most to least essential. Failover walks it
// from the tail, so your-tel is dropped first and your-name last.
var FieldPriority = []Field{FieldName, FieldEmail, FieldLocation, FieldPhone}

// Lead is a normalized contact form submission. Empty values mean absent.
type Lead struct {
	Name     string `json:"your-name"`
	Email    string `json:"your-email"`
	Phone    string `json:"your-tel"`
	Location string `json:"zip-code"`
	Subject  string `json:"your-subject,omitempty"`
	Message  string `json:"your-message,omitempty"`
	Website  string `json:"your-website,omitempty"`
}

// Get returns the value stored under f.
func (l Lead) Get(f Field) string {
	switch f {
	case FieldName:
		return l.Name
	case FieldEmail:
		return l.Email
	case FieldPhone:
		return l.Phone
	case FieldLocation:
		return l.Location
	case FieldSubject:
		return l.Subject
	case FieldMessage:
		return l.Message
	case FieldWebsite:
		return l.Website
	}
	return ""
}

// Has reports whether f carries a non-blank value.
func (l Lead) Has(f Field) bool {
	return strings.TrimSpace(l.Get(f)) != ""
}

// Clear blanks f and reports whether it previously held a value.
func (l *Lead) Clear(f Field) bool {
	had := l.Has(f)
	switch f {
	case FieldName:
		l.Name = ""
	case FieldEmail:
		l.Email = ""
	case FieldPhone:
		l.Phone = ""
	case FieldLocation:
		l.Location = ""
	case FieldSubject:
		l.Subject = ""
	case FieldMessage:
		l.Message = ""
	case FieldWebsite:
		l.Website = ""
	}
	return had
}

// PresentFields returns the names of all non-empty fields.
func (l Lead) PresentFields() []Field {
	out := make([]Field, 0, len(AllFields))
	for _, f := range AllFields {
		if l.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// Title is the item name shown on the board.
func (l Lead) Title() string {
	return l.Name + " - " + l.Email
}

// Normalize trims surrounding whitespace from every field.
func (l Lead) Normalize() Lead {
	return Lead{
		Name:     strings.TrimSpace(l.Name),
		Email:    strings.TrimSpace(l.Email),
		Phone:    strings.TrimSpace(l.Phone),
		Location: strings.TrimSpace(l.Location),
		Subject:  strings.TrimSpace(l.Subject),
		Message:  strings.TrimSpace(l.Message),
		Website:  strings.TrimSpace(l.Website),
	}
}

// Validate checks the fields required before a lead may be relayed.
func (l Lead) Validate() error {
	if !l.Has(FieldName) {
		return ErrMissingName
	}
	if !l.Has(FieldEmail) {
		return ErrMissingEmail
	}
	return nil
}

// CreateLeadRequest is the body accepted by the direct create-lead endpoint.
type CreateLeadRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	ZipCode  string `json:"zipCode"`
	Subject  string `json:"subject"`
	Message  string `json:"message"`
	Website  string `json:"website"`
}

// Lead converts the request into a normalized Lead. location wins over zipCode.
func (r CreateLeadRequest) Lead() Lead {
	location := r.Location
	if strings.TrimSpace(location) == "" {
		location = r.ZipCode
	}
	return Lead{
		Name:     r.Name,
		Email:    r.Email,
		Phone:    r.Phone,
		Location: location,
		Subject:  r.Subject,
		Message:  r.Message,
		Website:  r.Website,
	}.Normalize()
}
