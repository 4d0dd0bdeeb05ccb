// Package formdef ships the profile form's field model as an embedded
// OpenAPI document and converts it into the model the interactive session
// consumes. Transforms and refinements beyond OpenAPI's vocabulary live in
// pkg/schema; this package only describes shape, labels and ordering.
package formdef

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/Eversonv4/profileform/pkg/model"
)

//go:embed profile.yaml
var profileDoc []byte

// OperationID identifies the registration operation inside the embedded
// document.
const OperationID = "registerProfile"

const fieldOrderExtension = "x-field-order"

// Load parses the embedded document and returns the profile form model.
func Load(ctx context.Context) (model.FormModel, error) {
	if err := ctx.Err(); err != nil {
		return model.FormModel{}, err
	}

	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(profileDoc)
	if err != nil {
		return model.FormModel{}, fmt.Errorf("formdef: load document: %w", err)
	}
	if spec.Paths == nil || spec.Paths.Len() == 0 {
		return model.FormModel{}, errors.New("formdef: document does not contain any paths")
	}

	operation := findOperation(spec, OperationID)
	if operation == nil {
		return model.FormModel{}, fmt.Errorf("formdef: operation %q not found", OperationID)
	}

	body := requestSchema(operation)
	if body == nil {
		return model.FormModel{}, fmt.Errorf("formdef: operation %q has no request schema", OperationID)
	}

	fm := model.FormModel{
		OperationID: OperationID,
		Description: operation.Summary,
		Fields:      convertObject(body),
	}
	if spec.Info != nil {
		fm.Title = spec.Info.Title
	}
	if len(fm.Fields) == 0 {
		return model.FormModel{}, errors.New("formdef: no fields extracted")
	}
	return fm, nil
}

func findOperation(spec *openapi3.T, opID string) *openapi3.Operation {
	for _, item := range spec.Paths.Map() {
		if item == nil {
			continue
		}
		for _, operation := range []*openapi3.Operation{
			item.Get, item.Put, item.Post, item.Delete, item.Patch,
		} {
			if operation != nil && operation.OperationID == opID {
				return operation
			}
		}
	}
	return nil
}

func requestSchema(operation *openapi3.Operation) *openapi3.Schema {
	if operation.RequestBody == nil || operation.RequestBody.Value == nil {
		return nil
	}
	mt, ok := operation.RequestBody.Value.Content["application/json"]
	if !ok || mt.Schema == nil {
		return nil
	}
	return mt.Schema.Value
}

func convertObject(src *openapi3.Schema) []model.Field {
	if src == nil || len(src.Properties) == 0 {
		return nil
	}

	required := make(map[string]bool, len(src.Required))
	for _, name := range src.Required {
		required[name] = true
	}

	fields := make([]model.Field, 0, len(src.Properties))
	for _, name := range fieldOrder(src) {
		ref := src.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		fields = append(fields, convertField(name, ref.Value, required[name]))
	}
	return fields
}

func convertField(name string, src *openapi3.Schema, required bool) model.Field {
	field := model.Field{
		Name:        name,
		Type:        fieldType(src.Type),
		Format:      src.Format,
		Required:    required,
		Label:       src.Title,
		Description: src.Description,
	}

	switch field.Type {
	case model.FieldTypeObject:
		field.Nested = convertObject(src)
	case model.FieldTypeArray:
		if src.Items != nil && src.Items.Value != nil {
			item := convertField(name+"Item", src.Items.Value, false)
			field.Items = &item
		}
	}
	return field
}

// fieldOrder honors the document's x-field-order extension; properties the
// extension misses are appended alphabetically so nothing silently drops.
func fieldOrder(src *openapi3.Schema) []string {
	seen := make(map[string]bool, len(src.Properties))
	var order []string

	if raw, ok := src.Extensions[fieldOrderExtension]; ok {
		if list, ok := raw.([]any); ok {
			for _, entry := range list {
				name, ok := entry.(string)
				if !ok {
					continue
				}
				if _, exists := src.Properties[name]; !exists || seen[name] {
					continue
				}
				seen[name] = true
				order = append(order, name)
			}
		}
	}

	var rest []string
	for name := range src.Properties {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

func fieldType(types *openapi3.Types) model.FieldType {
	if types == nil {
		return model.FieldTypeString
	}
	values := types.Slice()
	if len(values) == 0 {
		return model.FieldTypeString
	}
	switch strings.ToLower(values[0]) {
	case "integer":
		return model.FieldTypeInteger
	case "number":
		return model.FieldTypeNumber
	case "array":
		return model.FieldTypeArray
	case "object":
		return model.FieldTypeObject
	default:
		return model.FieldTypeString
	}
}
