// Package tui drives the profile form over a terminal session: it prompts
// for every field described by the form model, feeds the raw responses into
// the form controller and renders field errors inline until a submission
// goes through.
package tui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	gojson "github.com/goccy/go-json"

	"github.com/Eversonv4/profileform/pkg/form"
	"github.com/Eversonv4/profileform/pkg/model"
	"github.com/Eversonv4/profileform/pkg/schema"
)

// Session walks a form model and collects values interactively. Validation
// happens only at submit; prompts accept whatever the user types.
type Session struct {
	driver       PromptDriver
	outputFormat OutputFormat
}

// NewSession constructs a Session with defaults (survey driver, JSON output).
func NewSession(options ...Option) (*Session, error) {
	driver, err := newSurveyDriver()
	if err != nil {
		return nil, err
	}

	s := &Session{
		driver:       driver,
		outputFormat: OutputFormatJSON,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}
	return s, nil
}

// Run prompts through the form, submits, and repeats until a submission
// succeeds or the user aborts. It returns the serialized published profile.
func (s *Session) Run(ctx context.Context, fm model.FormModel, ctrl *form.Controller) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for _, field := range fm.Fields {
			if err := s.promptField(ctx, field, ctrl); err != nil {
				return nil, err
			}
		}

		profile, err := ctrl.Submit(ctx)
		if err == nil {
			return s.serialize(profile)
		}

		if iss, ok := schema.AsIssues(err); ok {
			s.reportIssues(ctx, iss)
			continue
		}
		if errors.Is(err, form.ErrUploadFailed) {
			_ = s.driver.Info(ctx, "Upload failed, please retry.")
			continue
		}
		return nil, err
	}
}

func (s *Session) promptField(ctx context.Context, field model.Field, ctrl *form.Controller) error {
	if field.Type == model.FieldTypeArray {
		return s.promptRows(ctx, field, ctrl)
	}

	label := displayLabel(field)
	defaultVal, err := ctrl.Field(field.Name)
	if err != nil {
		return err
	}

	cfg := InputConfig{
		Message: label,
		Default: defaultVal,
		Help:    field.Description,
	}

	var response string
	if field.Format == "password" {
		response, err = s.driver.Password(ctx, cfg)
	} else {
		response, err = s.driver.Input(ctx, cfg)
	}
	if err != nil {
		return err
	}
	return ctrl.SetField(field.Name, response)
}

// promptRows runs the dynamic technology list flow: revisit existing rows
// (edit or drop each), then append new ones until the user declines.
func (s *Session) promptRows(ctx context.Context, field model.Field, ctrl *form.Controller) error {
	if field.Items == nil {
		return fmt.Errorf("tui: array field %s missing items schema", field.Name)
	}

	for i := 0; i < len(ctrl.Rows()); {
		row := ctrl.Rows()[i]
		title := row.Title
		if title == "" {
			title = fmt.Sprintf("entry %d", i+1)
		}
		keep, err := s.driver.Confirm(ctx, ConfirmConfig{
			Message: fmt.Sprintf("Keep %s?", title),
			Default: true,
		})
		if err != nil {
			return err
		}
		if !keep {
			if err := ctrl.RemoveTech(i); err != nil {
				return err
			}
			// Higher rows shifted down; revisit the same index.
			continue
		}
		if err := s.promptRowFields(ctx, field, ctrl, i); err != nil {
			return err
		}
		i++
	}

	if len(ctrl.Rows()) == 0 {
		add, err := s.driver.Confirm(ctx, ConfirmConfig{
			Message: fmt.Sprintf("Add a %s entry?", displayLabel(field)),
			Default: true,
			Help:    field.Description,
		})
		if err != nil {
			return err
		}
		if !add {
			return nil
		}
	} else {
		more, err := s.driver.Confirm(ctx, ConfirmConfig{
			Message: "Add another?",
			Default: false,
		})
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}

	for {
		ctrl.AddTech()
		index := len(ctrl.Rows()) - 1
		if err := s.promptRowFields(ctx, field, ctrl, index); err != nil {
			return err
		}

		more, err := s.driver.Confirm(ctx, ConfirmConfig{
			Message: "Add another?",
			Default: false,
		})
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

func (s *Session) promptRowFields(ctx context.Context, field model.Field, ctrl *form.Controller, index int) error {
	for _, child := range field.Items.Nested {
		path := fmt.Sprintf("%s.%d.%s", field.Name, index, child.Name)
		defaultVal, err := ctrl.Field(path)
		if err != nil {
			return err
		}
		response, err := s.driver.Input(ctx, InputConfig{
			Message: displayLabel(child),
			Default: defaultVal,
			Help:    child.Description,
		})
		if err != nil {
			return err
		}
		if err := ctrl.SetField(path, response); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) reportIssues(ctx context.Context, iss schema.Issues) {
	for _, it := range iss {
		_ = s.driver.Info(ctx, fmt.Sprintf("Invalid %s: %s", it.Path, it.Message))
	}
}

func (s *Session) serialize(profile schema.Profile) ([]byte, error) {
	switch s.outputFormat {
	case OutputFormatPrettyText:
		return []byte(prettyPrint(profile)), nil
	default:
		return gojson.Marshal(profile)
	}
}

func displayLabel(field model.Field) string {
	if field.Label != "" {
		return field.Label
	}
	return field.Name
}

func prettyPrint(profile schema.Profile) string {
	b := &strings.Builder{}
	pairs := map[string]string{
		"avatar":   profile.Avatar,
		"name":     profile.Name,
		"email":    profile.Email,
		"password": profile.Password,
	}
	keys := make([]string, 0, len(pairs))
	for key := range pairs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(b, "%s=%s\n", key, pairs[key])
	}
	for i, tech := range profile.Techs {
		fmt.Fprintf(b, "techs[%d]=%s (%d)\n", i, tech.Title, tech.Knowledge)
	}
	return b.String()
}
