package leads

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSubmission(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		want        Lead
		wantErr     error
	}{
		{
			name:        "json body",
			contentType: "application/json; charset=utf-8",
			body:        `{"your-name":" Alice ","your-email":"a@x.com","your-tel":"555-0001","zip-code":90210}`,
			want:        Lead{Name: "Alice", Email: "a@x.com", Phone: "555-0001", Location: "90210"},
		},
		{
			name:        "form body",
			contentType: "application/x-www-form-urlencoded",
			body:        "your-name=Bob+Smith&your-email=b%40x.com&your-subject=Hi&your-message=Call+me",
			want:        Lead{Name: "Bob Smith", Email: "b@x.com", Subject: "Hi", Message: "Call me"},
		},
		{
			name:        "mislabelled json falls back to form",
			contentType: "application/json",
			body:        "your-name=Carol&your-email=c%40x.com",
			want:        Lead{Name: "Carol", Email: "c@x.com"},
		},
		{
			name: "sniffed json",
			body: `{"your-name":"Dan","your-email":"d@x.com","your-website":null}`,
			want: Lead{Name: "Dan", Email: "d@x.com"},
		},
		{
			name:    "sniffed broken json",
			body:    `{"your-name":`,
			wantErr: ErrInvalidJSON,
		},
		{
			name: "sniffed form",
			body: "your-name=Eve&your-email=e%40x.com",
			want: Lead{Name: "Eve", Email: "e@x.com"},
		},
		{
			name:        "unsupported",
			contentType: "text/plain",
			body:        "hello there",
			wantErr:     ErrUnsupportedContent,
		},
		{
			name:        "bad escape keeps other pairs",
			contentType: "application/x-www-form-urlencoded",
			body:        "your-name=Fay&your-email=f%40x.com&your-tel=%zz",
			want:        Lead{Name: "Fay", Email: "f@x.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSubmission(tt.contentType, []byte(tt.body))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCreateLeadRequestLead(t *testing.T) {
	req := CreateLeadRequest{Name: "Gus", Email: "g@x.com", ZipCode: "30301", Website: " https://g.example "}
	lead := req.Lead()
	assert.Equal(t, "30301", lead.Location)
	assert.Equal(t, "https://g.example", lead.Website)

	req.Location = "Atlanta"
	assert.Equal(t, "Atlanta", req.Lead().Location)
}
