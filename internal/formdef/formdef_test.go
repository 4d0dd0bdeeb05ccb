package formdef

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Eversonv4/profileform/pkg/model"
)

func TestLoad_FieldsFollowDeclaredOrder(t *testing.T) {
	fm, err := Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if fm.OperationID != OperationID {
		t.Fatalf("operation id %q", fm.OperationID)
	}

	var names []string
	for _, field := range fm.Fields {
		names = append(names, field.Name)
	}
	want := []string{"avatar", "name", "email", "password", "techs"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("field order (-want +got):\n%s", diff)
	}
}

func TestLoad_FieldShapes(t *testing.T) {
	fm, err := Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	byName := make(map[string]model.Field, len(fm.Fields))
	for _, field := range fm.Fields {
		byName[field.Name] = field
	}

	avatar := byName["avatar"]
	if avatar.Type != model.FieldTypeString || avatar.Format != "binary" || !avatar.Required {
		t.Errorf("avatar shape: %+v", avatar)
	}
	if email := byName["email"]; email.Format != "email" {
		t.Errorf("email shape: %+v", email)
	}
	if password := byName["password"]; password.Format != "password" {
		t.Errorf("password shape: %+v", password)
	}

	techs := byName["techs"]
	if techs.Type != model.FieldTypeArray {
		t.Fatalf("techs must be an array: %+v", techs)
	}
	if techs.Items == nil || techs.Items.Type != model.FieldTypeObject {
		t.Fatalf("techs items must be objects: %+v", techs.Items)
	}

	var children []string
	for _, child := range techs.Items.Nested {
		children = append(children, child.Name)
	}
	if diff := cmp.Diff([]string{"title", "knowledge"}, children); diff != "" {
		t.Fatalf("techs item order (-want +got):\n%s", diff)
	}
	for _, child := range techs.Items.Nested {
		if child.Name == "knowledge" && child.Type != model.FieldTypeInteger {
			t.Errorf("knowledge must be an integer field: %+v", child)
		}
	}
}

func TestLoad_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Load(ctx); err == nil {
		t.Fatalf("want error for cancelled context")
	}
}

func TestFieldOrder_AppendsUnlistedAlphabetically(t *testing.T) {
	doc := []byte(`
openapi: 3.0.3
info:
  title: order test
  version: 1.0.0
paths:
  /things:
    post:
      operationId: registerProfile
      responses:
        "200":
          description: ok
      requestBody:
        required: true
        content:
          application/json:
            schema:
              type: object
              x-field-order: [zeta]
              properties:
                zeta:
                  type: string
                beta:
                  type: string
                alpha:
                  type: string
`)
	saved := profileDoc
	profileDoc = doc
	defer func() { profileDoc = saved }()

	fm, err := Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	var names []string
	for _, field := range fm.Fields {
		names = append(names, field.Name)
	}
	if diff := cmp.Diff([]string{"zeta", "alpha", "beta"}, names); diff != "" {
		t.Fatalf("order (-want +got):\n%s", diff)
	}
}
