package shared

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

type nameRequest struct {
	Name  string `json:"name"  validate:"max=8"`
	Score *int   `json:"score" validate:"required,min=0"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantErr     bool
		errContains string
	}{
		{name: "valid json", body: `{"name": "Ada", "score": 4}`},
		{name: "invalid json", body: `{"name": "Ada",}`, wantErr: true, errContains: "invalid character"},
		{name: "empty body", body: "", wantErr: true, errContains: "EOF"},
		{name: "unknown field", body: `{"nickname": "A"}`, wantErr: true, errContains: "unknown field"},
		{name: "trailing data", body: `{"name": "A"} {"name": "B"}`, wantErr: true, errContains: "single JSON object"},
		{name: "stray closing brace", body: `{"name": "Ada"}}`, wantErr: true, errContains: "single JSON object"},
		{name: "stray closing bracket", body: `{"name": "Ada"}]`, wantErr: true, errContains: "single JSON object"},
		{name: "trailing whitespace", body: "{\"name\": \"Ada\"}\n  \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/", strings.NewReader(tt.body))
			var target nameRequest
			err := DecodeJSON(req, &target)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, "Ada", target.Name)
		})
	}
}

type selfValidating struct{ ok bool }

func (s selfValidating) Validate() error {
	if !s.ok {
		return errors.New("custom validation failed")
	}
	return nil
}

func TestValidateRequest(t *testing.T) {
	zero, negative := 0, -1

	assert.NoError(t, ValidateRequest(&nameRequest{Name: "Ada", Score: &zero}))

	err := ValidateRequest(&nameRequest{Name: "Ada"})
	var verrs validator.ValidationErrors
	assert.True(t, errors.As(err, &verrs))

	assert.Error(t, ValidateRequest(&nameRequest{Score: &negative}))
	assert.Error(t, ValidateRequest(&nameRequest{Name: "a very long name", Score: &zero}))

	assert.NoError(t, ValidateRequest(selfValidating{ok: true}))
	assert.EqualError(t, ValidateRequest(selfValidating{}), "custom validation failed")
}
