// Package form owns the live state of the profile form: the raw field values,
// the dynamic technology row list and the field errors from the last submit
// attempt. It mediates between the interactive layer, the validation schema
// and the upload collaborator.
package form

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Eversonv4/profileform/pkg/schema"
	"github.com/Eversonv4/profileform/pkg/upload"
)

// DefaultBucket is the destination bucket avatars land in unless overridden.
const DefaultBucket = "project-one"

// Phase describes where a submission attempt currently is.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseValidating Phase = "validating"
	PhaseUploading  Phase = "uploading"
)

// TechRow is one editable technology entry. The ID is generated once and
// survives removals, so edits are never misattributed to a neighbouring row
// after the list shifts.
type TechRow struct {
	ID        string
	Title     string
	Knowledge string
}

// Controller holds the form state. All methods are safe for use from the
// single interactive goroutine plus a pending upload; Submit refuses to
// overlap with itself.
type Controller struct {
	mu          sync.Mutex
	avatarFiles []string
	name        string
	email       string
	password    string
	rows        []TechRow

	errs      schema.FieldErrors
	published *schema.Profile
	phase     Phase
	inFlight  bool

	uploader      upload.Uploader
	bucket        string
	uploadTimeout time.Duration
	log           *slog.Logger
}

// Option configures the controller.
type Option func(*Controller)

// WithBucket overrides the destination bucket for avatar uploads.
func WithBucket(bucket string) Option {
	return func(c *Controller) {
		if bucket != "" {
			c.bucket = bucket
		}
	}
}

// WithUploadTimeout caps how long a single avatar upload may take. Zero
// means no cap; a hanging store would otherwise pin the attempt in the
// uploading phase forever.
func WithUploadTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.uploadTimeout = d
		}
	}
}

// WithLogger overrides the controller's logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Controller) {
		if log != nil {
			c.log = log
		}
	}
}

// New constructs a Controller bound to the given upload collaborator.
func New(uploader upload.Uploader, options ...Option) (*Controller, error) {
	if uploader == nil {
		return nil, fmt.Errorf("form: uploader is required")
	}
	c := &Controller{
		uploader: uploader,
		bucket:   DefaultBucket,
		phase:    PhaseIdle,
		log:      slog.Default(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c, nil
}

// SetField updates the in-memory value at a dotted path. Nothing is validated
// here; validation is deferred to Submit.
func (c *Controller) SetField(path, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch path {
	case "avatar":
		if value == "" {
			c.avatarFiles = nil
		} else {
			c.avatarFiles = []string{value}
		}
		return nil
	case "name":
		c.name = value
		return nil
	case "email":
		c.email = value
		return nil
	case "password":
		c.password = value
		return nil
	}

	index, field, ok := techField(path)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, path)
	}
	if index < 0 || index >= len(c.rows) {
		return fmt.Errorf("%w: index %d", ErrNoSuchRow, index)
	}
	switch field {
	case "title":
		c.rows[index].Title = value
	case "knowledge":
		c.rows[index].Knowledge = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, path)
	}
	return nil
}

// Field reads the current raw value at a dotted path. Used by the interactive
// layer to pre-fill prompts when re-editing after a failed submit.
func (c *Controller) Field(path string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch path {
	case "avatar":
		if len(c.avatarFiles) == 0 {
			return "", nil
		}
		return c.avatarFiles[0], nil
	case "name":
		return c.name, nil
	case "email":
		return c.email, nil
	case "password":
		return c.password, nil
	}

	index, field, ok := techField(path)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, path)
	}
	if index < 0 || index >= len(c.rows) {
		return "", fmt.Errorf("%w: index %d", ErrNoSuchRow, index)
	}
	switch field {
	case "title":
		return c.rows[index].Title, nil
	case "knowledge":
		return c.rows[index].Knowledge, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, path)
}

// AddTech appends an empty technology row and returns its generated ID.
func (c *Controller) AddTech() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	row := TechRow{ID: uuid.NewString(), Knowledge: "0"}
	c.rows = append(c.rows, row)
	return row.ID
}

// RemoveTech deletes the row at index; rows above it shift down by one.
// Indices are positional and must be re-read after every structural change.
func (c *Controller) RemoveTech(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.rows) {
		return fmt.Errorf("%w: index %d", ErrNoSuchRow, index)
	}
	c.rows = append(c.rows[:index], c.rows[index+1:]...)
	return nil
}

// Rows returns a copy of the current technology rows in order.
func (c *Controller) Rows() []TechRow {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]TechRow(nil), c.rows...)
}

// Errors returns the field errors from the last submit attempt.
func (c *Controller) Errors() schema.FieldErrors {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.errs) == 0 {
		return nil
	}
	out := make(schema.FieldErrors, len(c.errs))
	for path, messages := range c.errs {
		out[path] = append([]string(nil), messages...)
	}
	return out
}

// Published returns the last successfully submitted profile, if any.
func (c *Controller) Published() (schema.Profile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.published == nil {
		return schema.Profile{}, false
	}
	return *c.published, true
}

// Phase reports where the current (or last) submission attempt is.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Submit runs the schema against the current values. On validation failure
// the field errors are replaced and no side effects occur. On success the
// avatar is uploaded under its own base name and the validated profile is
// published. A submit that arrives while another is in flight returns
// ErrSubmitInFlight untouched.
func (c *Controller) Submit(ctx context.Context) (schema.Profile, error) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return schema.Profile{}, ErrSubmitInFlight
	}
	c.inFlight = true
	c.phase = PhaseValidating
	in := c.snapshotLocked()
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.phase = PhaseIdle
		c.mu.Unlock()
	}()

	profile, iss := schema.Parse(in)
	if iss != nil {
		c.mu.Lock()
		c.errs = iss.Fields()
		c.mu.Unlock()
		c.log.Debug("submission rejected", "issues", len(iss))
		return schema.Profile{}, iss
	}

	c.mu.Lock()
	c.phase = PhaseUploading
	bucket := c.bucket
	c.mu.Unlock()

	key := filepath.Base(profile.Avatar)
	if err := c.uploadAvatar(ctx, bucket, key, profile.Avatar); err != nil {
		c.mu.Lock()
		c.errs = schema.Issues{{
			Path:    "avatar",
			Code:    schema.CodeUploadFailed,
			Message: "upload failed, please retry",
		}}.Fields()
		c.mu.Unlock()
		c.log.Warn("avatar upload failed", "bucket", bucket, "key", key, "error", err)
		return schema.Profile{}, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	c.mu.Lock()
	c.errs = nil
	published := profile
	c.published = &published
	c.mu.Unlock()

	c.log.Info("profile submitted", "bucket", bucket, "key", key, "techs", len(profile.Techs))
	return profile, nil
}

func (c *Controller) uploadAvatar(ctx context.Context, bucket, key, path string) error {
	if c.uploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.uploadTimeout)
		defer cancel()
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open avatar: %w", err)
	}
	defer f.Close()
	return c.uploader.Upload(ctx, bucket, key, f)
}

func (c *Controller) snapshotLocked() schema.Input {
	in := schema.Input{
		AvatarFiles: append([]string(nil), c.avatarFiles...),
		Name:        c.name,
		Email:       c.email,
		Password:    c.password,
	}
	for _, row := range c.rows {
		in.Techs = append(in.Techs, schema.TechInput{
			Title:     row.Title,
			Knowledge: row.Knowledge,
		})
	}
	return in
}

// techField splits "techs.<i>.<field>" paths.
func techField(path string) (index int, field string, ok bool) {
	rest, found := strings.CutPrefix(path, "techs.")
	if !found {
		return 0, "", false
	}
	idx, field, found := strings.Cut(rest, ".")
	if !found {
		return 0, "", false
	}
	index, err := strconv.Atoi(idx)
	if err != nil {
		return 0, "", false
	}
	return index, field, true
}
