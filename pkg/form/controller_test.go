package form

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Eversonv4/profileform/pkg/schema"
)

type captureUploader struct {
	mu     sync.Mutex
	bucket string
	key    string
	body   []byte
	calls  int
	err    error
}

func (u *captureUploader) Upload(_ context.Context, bucket, key string, body io.Reader) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls++
	u.bucket = bucket
	u.key = key
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	u.body = data
	return u.err
}

type blockingUploader struct {
	started chan struct{}
	release chan struct{}
}

func (u *blockingUploader) Upload(_ context.Context, _, _ string, body io.Reader) error {
	_, _ = io.ReadAll(body)
	close(u.started)
	<-u.release
	return nil
}

func writeAvatar(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gopher.png")
	if err := os.WriteFile(path, []byte("png-bytes"), 0o644); err != nil {
		t.Fatalf("write avatar: %v", err)
	}
	return path
}

func fillValid(t *testing.T, ctrl *Controller, avatar string) {
	t.Helper()
	set := func(path, value string) {
		if err := ctrl.SetField(path, value); err != nil {
			t.Fatalf("set %s: %v", path, err)
		}
	}
	set("avatar", avatar)
	set("name", "maria silva")
	set("email", "Maria@Gmail.com")
	set("password", "abcdef")
	ctrl.AddTech()
	ctrl.AddTech()
	set("techs.0.title", "Go")
	set("techs.0.knowledge", "80")
	set("techs.1.title", "Rust")
	set("techs.1.knowledge", "5")
}

func TestAddTech_RowsAreIndependent(t *testing.T) {
	ctrl, err := New(&captureUploader{})
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}

	first := ctrl.AddTech()
	second := ctrl.AddTech()
	if first == second {
		t.Fatalf("row ids must be unique")
	}

	rows := ctrl.Rows()
	if len(rows) != 2 {
		t.Fatalf("want 2 rows, got %d", len(rows))
	}
	for i, row := range rows {
		if row.Title != "" || row.Knowledge != "0" {
			t.Fatalf("row %d not empty: %+v", i, row)
		}
	}

	if err := ctrl.SetField("techs.0.title", "Go"); err != nil {
		t.Fatalf("set title: %v", err)
	}
	rows = ctrl.Rows()
	if rows[1].Title != "" {
		t.Fatalf("editing row 0 leaked into row 1: %+v", rows[1])
	}
}

func TestRemoveTech_ShiftsAndKeepsIdentity(t *testing.T) {
	ctrl, err := New(&captureUploader{})
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}

	ctrl.AddTech()
	keep := ctrl.AddTech()
	_ = ctrl.SetField("techs.1.title", "Rust")

	if err := ctrl.RemoveTech(0); err != nil {
		t.Fatalf("remove: %v", err)
	}

	rows := ctrl.Rows()
	if len(rows) != 1 {
		t.Fatalf("want 1 row, got %d", len(rows))
	}
	if rows[0].ID != keep || rows[0].Title != "Rust" {
		t.Fatalf("surviving row lost identity: %+v", rows[0])
	}

	if err := ctrl.RemoveTech(5); !errors.Is(err, ErrNoSuchRow) {
		t.Fatalf("want ErrNoSuchRow, got %v", err)
	}
}

func TestSetField_UnknownPath(t *testing.T) {
	ctrl, err := New(&captureUploader{})
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	if err := ctrl.SetField("nickname", "x"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("want ErrUnknownField, got %v", err)
	}
	if err := ctrl.SetField("techs.0.title", "Go"); !errors.Is(err, ErrNoSuchRow) {
		t.Fatalf("want ErrNoSuchRow, got %v", err)
	}
}

func TestSubmit_ValidationFailureHasNoSideEffects(t *testing.T) {
	uploader := &captureUploader{}
	ctrl, err := New(uploader)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}

	_, err = ctrl.Submit(context.Background())
	iss, ok := schema.AsIssues(err)
	if !ok {
		t.Fatalf("want schema issues, got %v", err)
	}
	if !iss.Has("techs", schema.CodeTooFew) {
		t.Fatalf("want too_few, got %v", iss)
	}
	if uploader.calls != 0 {
		t.Fatalf("uploader must not be called on invalid input")
	}
	if errs := ctrl.Errors(); len(errs["name"]) == 0 {
		t.Fatalf("field errors not recorded: %v", errs)
	}
	if _, ok := ctrl.Published(); ok {
		t.Fatalf("nothing should be published")
	}
	if ctrl.Phase() != PhaseIdle {
		t.Fatalf("controller must return to idle, got %s", ctrl.Phase())
	}
}

func TestSubmit_UploadsAndPublishes(t *testing.T) {
	uploader := &captureUploader{}
	ctrl, err := New(uploader, WithBucket("avatars"))
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}

	avatar := writeAvatar(t)
	fillValid(t, ctrl, avatar)

	profile, err := ctrl.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if uploader.bucket != "avatars" || uploader.key != "gopher.png" {
		t.Fatalf("upload destination %s/%s", uploader.bucket, uploader.key)
	}
	if string(uploader.body) != "png-bytes" {
		t.Fatalf("uploaded bytes %q", uploader.body)
	}

	if profile.Name != "Maria Silva" || profile.Email != "maria@gmail.com" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
	published, ok := ctrl.Published()
	if !ok {
		t.Fatalf("profile not published")
	}
	if published.Name != profile.Name || len(published.Techs) != 2 {
		t.Fatalf("published mismatch: %+v", published)
	}
	if errs := ctrl.Errors(); errs != nil {
		t.Fatalf("errors must be cleared, got %v", errs)
	}
}

func TestSubmit_UploadFailureIsReported(t *testing.T) {
	uploader := &captureUploader{err: errors.New("boom")}
	ctrl, err := New(uploader)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	fillValid(t, ctrl, writeAvatar(t))

	_, err = ctrl.Submit(context.Background())
	if !errors.Is(err, ErrUploadFailed) {
		t.Fatalf("want ErrUploadFailed, got %v", err)
	}

	errs := ctrl.Errors()
	if len(errs["avatar"]) == 0 {
		t.Fatalf("upload failure must surface on the avatar field: %v", errs)
	}
	if _, ok := ctrl.Published(); ok {
		t.Fatalf("failed upload must not publish")
	}
	if ctrl.Phase() != PhaseIdle {
		t.Fatalf("controller must return to idle, got %s", ctrl.Phase())
	}
}

func TestSubmit_RefusesReentrantCalls(t *testing.T) {
	uploader := &blockingUploader{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	ctrl, err := New(uploader)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	fillValid(t, ctrl, writeAvatar(t))

	done := make(chan error, 1)
	go func() {
		_, err := ctrl.Submit(context.Background())
		done <- err
	}()

	<-uploader.started
	if ctrl.Phase() != PhaseUploading {
		t.Fatalf("want uploading phase, got %s", ctrl.Phase())
	}
	if _, err := ctrl.Submit(context.Background()); !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("want ErrSubmitInFlight, got %v", err)
	}

	close(uploader.release)
	if err := <-done; err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if _, ok := ctrl.Published(); !ok {
		t.Fatalf("first submit must publish")
	}
}
