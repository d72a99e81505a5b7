package model

import (
	"encoding/json"
	"fmt"
)

// WorkProduct is an AI-generated structured document: a mapping from field
// name to value, with a reserved _metadata entry and factual field triples
// {X, X_source, X_verified_at}.
type WorkProduct map[string]any

// MetadataKey is the reserved key holding extraction metadata.
const MetadataKey = "_metadata"

// SourceSuffix and VerifiedAtSuffix form the provenance key convention.
const (
	SourceSuffix     = "_source"
	VerifiedAtSuffix = "_verified_at"
)

// metadataFields are required inside the _metadata block.
var metadataFields = []string{"extraction_date", "model", "extractor_version"}

// ParseWorkProduct decodes a work product from JSON. A root value that is not
// a JSON object is an engine fault, never a validation finding.
func ParseWorkProduct(data []byte) (WorkProduct, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse work product: %w", err)
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("parse work product: document root is %T, expected a JSON object", raw)
	}

	return WorkProduct(obj), nil
}

// Metadata returns the _metadata block, if present and well-typed.
func (wp WorkProduct) Metadata() (map[string]any, bool) {
	raw, ok := wp[MetadataKey]
	if !ok {
		return nil, false
	}
	meta, ok := raw.(map[string]any)
	return meta, ok
}

// Source returns the *_source value for a factual field and whether the key exists.
func (wp WorkProduct) Source(field string) (any, bool) {
	v, ok := wp[field+SourceSuffix]
	return v, ok
}

// VerifiedAt returns the *_verified_at value for a factual field and whether the key exists.
func (wp WorkProduct) VerifiedAt(field string) (any, bool) {
	v, ok := wp[field+VerifiedAtSuffix]
	return v, ok
}

// FieldType is the declared semantic type of a factual field.
type FieldType string

const (
	FieldNumeric FieldType = "numeric"
	FieldText    FieldType = "text"
	FieldURL     FieldType = "url"
	FieldEnum    FieldType = "enum"
)

// FieldDescriptor declares a factual field: its name, semantic type, and
// whether its source may be null by design. Declared descriptors replace
// name-suffix discovery so that no dynamic key inspection is needed.
type FieldDescriptor struct {
	Name           string    `yaml:"name" json:"name"`
	Type           FieldType `yaml:"type" json:"type"`
	NullableSource bool      `yaml:"nullable_source,omitempty" json:"nullable_source,omitempty"`
}
