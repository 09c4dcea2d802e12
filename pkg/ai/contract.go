package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"google.golang.org/genai"
)

// FieldType enumerates the value kinds a contract field may carry.
type FieldType string

const (
	FieldInteger     FieldType = "integer"
	FieldBoolean     FieldType = "boolean"
	FieldString      FieldType = "string"
	FieldStringArray FieldType = "string_array"
)

// Field describes a single required property of a structured response.
type Field struct {
	Name        string
	Type        FieldType
	Description string
	Minimum     *int
	Maximum     *int
	MinItems    *int
	MaxItems    *int
}

// Contract is the structured-output shape a reasoner reply must satisfy.
// Every field is required and no extra properties are allowed.
type Contract struct {
	Name        string
	Description string
	Fields      []Field

	schema *jsonschema.Schema
}

// Bounds returns a pointer pair usable for Field minimum/maximum values.
func Bounds(min, max int) (*int, *int) {
	return &min, &max
}

// NewContract compiles the contract's JSON schema once so replies can be validated.
func NewContract(name, description string, fields ...Field) (Contract, error) {
	contract := Contract{Name: name, Description: description, Fields: fields}

	raw, err := json.Marshal(contract.JSONSchema())
	if err != nil {
		return Contract{}, fmt.Errorf("marshal %s schema: %w", name, err)
	}

	url := fmt.Sprintf("mem://contracts/%s.json", name)
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, bytes.NewReader(raw)); err != nil {
		return Contract{}, fmt.Errorf("add %s schema: %w", name, err)
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		return Contract{}, fmt.Errorf("compile %s schema: %w", name, err)
	}
	contract.schema = schema

	return contract, nil
}

// MustContract is NewContract for package-level contract tables.
func MustContract(name, description string, fields ...Field) Contract {
	contract, err := NewContract(name, description, fields...)
	if err != nil {
		panic(err)
	}
	return contract
}

// JSONSchema renders the contract as a JSON schema document.
func (c Contract) JSONSchema() map[string]interface{} {
	properties := make(map[string]interface{}, len(c.Fields))
	required := make([]string, 0, len(c.Fields))
	for _, field := range c.Fields {
		properties[field.Name] = field.jsonSchema()
		required = append(required, field.Name)
	}

	return map[string]interface{}{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

func (f Field) jsonSchema() map[string]interface{} {
	schema := map[string]interface{}{}
	if f.Description != "" {
		schema["description"] = f.Description
	}

	switch f.Type {
	case FieldStringArray:
		schema["type"] = "array"
		schema["items"] = map[string]interface{}{"type": "string"}
		if f.MinItems != nil {
			schema["minItems"] = *f.MinItems
		}
		if f.MaxItems != nil {
			schema["maxItems"] = *f.MaxItems
		}
	default:
		schema["type"] = string(f.Type)
		if f.Minimum != nil {
			schema["minimum"] = *f.Minimum
		}
		if f.Maximum != nil {
			schema["maximum"] = *f.Maximum
		}
	}

	return schema
}

// GenAISchema renders the contract as a Gemini response schema.
func (c Contract) GenAISchema() *genai.Schema {
	properties := make(map[string]*genai.Schema, len(c.Fields))
	required := make([]string, 0, len(c.Fields))
	for _, field := range c.Fields {
		prop := &genai.Schema{Description: field.Description}
		switch field.Type {
		case FieldInteger:
			prop.Type = genai.TypeInteger
		case FieldBoolean:
			prop.Type = genai.TypeBoolean
		case FieldStringArray:
			prop.Type = genai.TypeArray
			prop.Items = &genai.Schema{Type: genai.TypeString}
		default:
			prop.Type = genai.TypeString
		}
		properties[field.Name] = prop
		required = append(required, field.Name)
	}

	return &genai.Schema{
		Type:        genai.TypeObject,
		Description: c.Description,
		Properties:  properties,
		Required:    required,
	}
}

// Decode validates the raw reply against the contract and unmarshals it into target.
// Any deviation is reported as ErrMalformedResponse.
func (c Contract) Decode(raw json.RawMessage, target interface{}) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return fmt.Errorf("%w: empty reply", ErrMalformedResponse)
	}

	var document interface{}
	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()
	if err := decoder.Decode(&document); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if c.schema != nil {
		if err := c.schema.Validate(document); err != nil {
			return fmt.Errorf("%w: %s", ErrMalformedResponse, strings.TrimSpace(err.Error()))
		}
	}

	if err := json.Unmarshal(trimmed, target); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return nil
}
