package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Questionnaire payloads come either as the 9-slot array the quiz front end
// posts or as the named object form. Only JSON kinds are checked here;
// unknown values of the right kind are left to the criteria builder.
const answersSchemaJSON = `{
  "definitions": {
    "choice":  {"type": ["string", "null"]},
    "numeric": {"type": ["string", "number", "null"]},
    "range": {
      "type": ["object", "null"],
      "properties": {
        "min": {"$ref": "#/definitions/numeric"},
        "max": {"$ref": "#/definitions/numeric"}
      }
    },
    "set": {
      "type": ["array", "string", "null"],
      "items": {"type": "string"}
    }
  },
  "anyOf": [
    {
      "type": "array",
      "minItems": 9,
      "maxItems": 9,
      "items": [
        {"$ref": "#/definitions/choice"},
        {"$ref": "#/definitions/range"},
        {"$ref": "#/definitions/set"},
        {"$ref": "#/definitions/range"},
        {"$ref": "#/definitions/choice"},
        {"$ref": "#/definitions/choice"},
        {"$ref": "#/definitions/set"},
        {"$ref": "#/definitions/numeric"},
        {"$ref": "#/definitions/numeric"}
      ]
    },
    {
      "type": "object",
      "properties": {
        "experience":   {"$ref": "#/definitions/choice"},
        "displacement": {"$ref": "#/definitions/range"},
        "categories":   {"$ref": "#/definitions/set"},
        "budget":       {"$ref": "#/definitions/range"},
        "acceptUsed":   {"$ref": "#/definitions/choice"},
        "region":       {"$ref": "#/definitions/choice"},
        "brands":       {"$ref": "#/definitions/set"},
        "heightCm":     {"$ref": "#/definitions/numeric"},
        "weightKg":     {"$ref": "#/definitions/numeric"}
      }
    }
  ]
}`

const criteriaSchemaJSON = `{
  "type": "object",
  "required": ["minCC", "maxCC", "minPrice", "maxPrice", "maxSeatHeight", "allowedBrands"],
  "properties": {
    "minCC":                {"type": "integer"},
    "maxCC":                {"type": "integer"},
    "minPrice":             {"type": "number"},
    "maxPrice":             {"type": "number"},
    "maxSeatHeight":        {"type": "number"},
    "bannedCylinderTokens": {"type": ["array", "null"], "items": {"type": "string"}},
    "interestedCategories": {"type": ["array", "null"], "items": {"type": "string"}},
    "allowedBrands":        {"type": "array", "items": {"type": "string"}}
  }
}`

var (
	answersSchema  = mustSchema(answersSchemaJSON)
	criteriaSchema = mustSchema(criteriaSchemaJSON)
)

func mustSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("validation: bad embedded schema: %v", err))
	}
	return schema
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ValidateAnswers checks a questionnaire payload (raw JSON) for shape.
func ValidateAnswers(raw []byte) (*ValidationResult, error) {
	return validate(answersSchema, gojsonschema.NewBytesLoader(raw))
}

// ValidateCriteria checks a filter criteria payload (raw JSON).
func ValidateCriteria(raw []byte) (*ValidationResult, error) {
	return validate(criteriaSchema, gojsonschema.NewBytesLoader(raw))
}

func validate(schema *gojsonschema.Schema, doc gojsonschema.JSONLoader) (*ValidationResult, error) {
	result, err := schema.Validate(doc)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return out, nil
}

func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// Summary joins every message into one line for job error details.
func (vr *ValidationResult) Summary() string {
	return strings.Join(vr.GetErrorMessages(), "; ")
}

func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}
