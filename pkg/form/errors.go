package form

import "errors"

var (
	// ErrSubmitInFlight is returned when Submit is called while a previous
	// submission is still uploading. Re-entrant submits are ignored rather
	// than raced.
	ErrSubmitInFlight = errors.New("form: submit already in flight")
	// ErrUploadFailed marks a submission that validated but whose avatar
	// upload was rejected by the store.
	ErrUploadFailed = errors.New("form: avatar upload failed")
	// ErrNoSuchRow is returned when a technology row index is out of range.
	ErrNoSuchRow = errors.New("form: no such technology row")
	// ErrUnknownField is returned for paths the form does not own.
	ErrUnknownField = errors.New("form: unknown field path")
)
