package schemas

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const personSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["name"],
	"properties": {
		"name": {"type": "string"},
		"age": {"type": "number"}
	}
}`

func TestRuleSetSchema_IsValidJSON(t *testing.T) {
	var v map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(RuleSetSchema()), &v))
	assert.Contains(t, v, "definitions")
}

func TestValidateRuleSet(t *testing.T) {
	tests := []struct {
		name      string
		document  string
		wantError bool
	}{
		{
			name: "valid rule set",
			document: `{"global_rules": [{
				"id": "stage_fit", "field_to_check": "metrics.employees", "operator": "between", "value": [5, 200],
				"result_if_true": {"text": "Stage Fit", "type": "positive"}
			}]}`,
		},
		{
			name: "gated rule",
			document: `{"positive_signals": [{
				"id": "licensed", "field_to_check": "regulatory_licenses", "operator": "is_not_empty",
				"condition": {"field": "category.sector", "operator": "contains_any", "value": ["fintech"]},
				"result_if_true": {"text": "Licensed", "type": "positive"}
			}]}`,
		},
		{
			name:      "no collections",
			document:  `{"rules": []}`,
			wantError: true,
		},
		{
			name: "unknown operator",
			document: `{"global_rules": [{
				"id": "x", "field_to_check": "name", "operator": "regex", "value": ".*",
				"result_if_true": {"text": "t", "type": "positive"}
			}]}`,
			wantError: true,
		},
		{
			name: "between needs a pair",
			document: `{"global_rules": [{
				"id": "x", "field_to_check": "metrics.employees", "operator": "between", "value": [5],
				"result_if_true": {"text": "t", "type": "positive"}
			}]}`,
			wantError: true,
		},
		{
			name: "gt needs a number",
			document: `{"critical_red_flags": [{
				"id": "x", "field_to_check": "calculated.runway_months", "operator": "le", "value": "six",
				"result_if_true": {"text": "t", "type": "negative"}
			}]}`,
			wantError: true,
		},
		{
			name: "missing outcomes",
			document: `{"global_rules": [{
				"id": "x", "field_to_check": "name", "operator": "is_not_empty"
			}]}`,
			wantError: true,
		},
		{
			name: "bad feedback type",
			document: `{"global_rules": [{
				"id": "x", "field_to_check": "name", "operator": "is_not_empty",
				"result_if_true": {"text": "t", "type": "info"}
			}]}`,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRuleSet([]byte(tt.document))
			if !tt.wantError {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			validationErr, ok := err.(*ValidationError)
			require.True(t, ok, "error should be ValidationError type, got %T", err)
			assert.NotEmpty(t, validationErr.Errors)
		})
	}
}

func TestValidateRuleSet_MalformedDocument(t *testing.T) {
	err := ValidateRuleSet([]byte("{ invalid json }"))
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestValidateJSONString(t *testing.T) {
	assert.NoError(t, ValidateJSONString(personSchema, `{"name": "test"}`))

	err := ValidateJSONString(personSchema, `{"age": 30}`)
	require.Error(t, err)
	validationErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Greater(t, len(validationErr.Errors), 0)
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Errors: []FieldError{
			{Field: "name", Message: "is required"},
			{Field: "age", Message: "must be a number"},
		},
	}

	errorMsg := err.Error()
	assert.Contains(t, errorMsg, "validation failed")
	assert.Contains(t, errorMsg, "1. name: is required")
	assert.Contains(t, errorMsg, "2. age: must be a number")
}

func TestSchemaLoadError(t *testing.T) {
	cause := os.ErrNotExist
	err := &SchemaLoadError{Path: "x.json", Message: "unreadable", Cause: cause}

	assert.Equal(t, "failed to load schema x.json: unreadable: file does not exist", err.Error())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
