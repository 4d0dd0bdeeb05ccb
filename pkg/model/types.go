// Package model carries the renderer-facing description of a form: which
// fields exist, how they are labelled and what shape each one has. It is
// produced from the embedded form definition and consumed by the interactive
// session.
package model

// FieldType is the simplified enum for form-friendly field kinds.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeInteger FieldType = "integer"
	FieldTypeNumber  FieldType = "number"
	FieldTypeArray   FieldType = "array"
	FieldTypeObject  FieldType = "object"
)

// Field models an individual input inside the form.
type Field struct {
	Name        string    `json:"name"`
	Type        FieldType `json:"type"`
	Format      string    `json:"format,omitempty"`
	Required    bool      `json:"required"`
	Label       string    `json:"label,omitempty"`
	Description string    `json:"description,omitempty"`
	Nested      []Field   `json:"nested,omitempty"`
	Items       *Field    `json:"items,omitempty"`
}

// FormModel is the top-level representation the session consumes.
type FormModel struct {
	OperationID string  `json:"operationId"`
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Fields      []Field `json:"fields"`
}
