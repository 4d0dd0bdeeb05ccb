package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes. Every validation failure carries one of these so callers can
// branch on semantics instead of matching message text.
const (
	CodeRequired       = "required"
	CodeInvalidFormat  = "invalid_format"
	CodeDomainRejected = "domain_rejected"
	CodeTooShort       = "too_short"
	CodeOutOfRange     = "out_of_range"
	CodeTooFew         = "too_few"
	CodeMissingFile    = "missing_file"
	CodeUploadFailed   = "upload_failed"
)

// Issue is a single validation entry attached to a dotted field path
// (for example "techs.2.title").
type Issue struct {
	Path    string
	Code    string
	Message string
}

// Issues is a collection of validation entries that implements error.
// Parse returns every failing field at once; nothing stops at the first hit.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := len(iss)
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(b, "%s at %s", iss[i].Code, iss[i].Path)
	}
	if n := len(iss); n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	return append(dst, more...)
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// FieldErrors maps dotted field paths to the human-readable messages a
// rendering layer shows next to each field. It is rebuilt wholesale after
// every submit attempt.
type FieldErrors map[string][]string

// Fields projects the issue list into a FieldErrors map, preserving the order
// messages were reported in for each path.
func (iss Issues) Fields() FieldErrors {
	if len(iss) == 0 {
		return nil
	}
	out := make(FieldErrors, len(iss))
	for _, it := range iss {
		out[it.Path] = append(out[it.Path], it.Message)
	}
	return out
}

// Has reports whether any issue with the given code exists at the path.
func (iss Issues) Has(path, code string) bool {
	for _, it := range iss {
		if it.Path == path && it.Code == code {
			return true
		}
	}
	return false
}
