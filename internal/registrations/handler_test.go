package registrations

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestValidateFormResponses(t *testing.T) {
	config := json.RawMessage(`[
		{"id": "company", "label": "Company name", "type": "text", "required": true},
		{"id": "team_size", "label": "Team size", "type": "number", "required": false}
	]`)

	tests := []struct {
		name      string
		config    json.RawMessage
		responses map[string]string
		wantErr   string
	}{
		{"all answered", config, map[string]string{"company": "Acme", "team_size": "12"}, ""},
		{"optional omitted", config, map[string]string{"company": "Acme"}, ""},
		{"required omitted", config, map[string]string{"team_size": "12"}, "Company name"},
		{"required empty string", config, map[string]string{"company": ""}, "Company name"},
		{"no config accepts anything", nil, nil, ""},
		{"malformed config is ignored", json.RawMessage(`{"not":"a list"}`), nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := validateFormResponses(tt.config, tt.responses)
			if tt.wantErr == "" {
				if got != "" {
					t.Fatalf("validateFormResponses = %q, want ok", got)
				}
				return
			}
			if !strings.Contains(got, tt.wantErr) {
				t.Fatalf("validateFormResponses = %q, want error naming %q", got, tt.wantErr)
			}
		})
	}
}
