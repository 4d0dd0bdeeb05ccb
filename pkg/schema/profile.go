package schema

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// RequiredDomain is the literal suffix every accepted e-mail must carry after
// lower-casing.
const RequiredDomain = "@gmail.com"

// PasswordMinLen is the minimum password length in bytes.
const PasswordMinLen = 6

// MinTechs is the minimum number of technology entries a profile must list.
const MinTechs = 2

// Knowledge bounds, inclusive on both ends.
const (
	KnowledgeMin = 1
	KnowledgeMax = 100
)

// Input is the raw, unvalidated form entry exactly as the user typed it.
// AvatarFiles carries the user-selected file set; the first entry is taken as
// the avatar.
type Input struct {
	AvatarFiles []string
	Name        string
	Email       string
	Password    string
	Techs       []TechInput
}

// TechInput is one raw technology row. Knowledge stays a string until Parse
// coerces it; the form layer never interprets it.
type TechInput struct {
	Title     string
	Knowledge string
}

// Profile is the validated, transformed output of a successful Parse.
type Profile struct {
	Avatar   string `json:"avatar"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Techs    []Tech `json:"techs"`
}

// Tech is a validated technology entry.
type Tech struct {
	Title     string `json:"title"`
	Knowledge int    `json:"knowledge"`
}

// HTML5-style e-mail shape; domain acceptance is a separate refinement.
var emailPattern = regexp.MustCompile(
	`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

// Parse validates an Input and returns the transformed Profile. All rules are
// evaluated independently and every failing field is reported; the returned
// Issues is nil only when the whole input passed.
func Parse(in Input) (Profile, Issues) {
	var iss Issues
	var out Profile

	if len(in.AvatarFiles) == 0 {
		iss = AppendIssues(iss, Issue{
			Path:    "avatar",
			Code:    CodeMissingFile,
			Message: "select an avatar image",
		})
	} else {
		out.Avatar = in.AvatarFiles[0]
	}

	// Emptiness is checked against the untrimmed value; the trim belongs to
	// the transform, not the requirement.
	if in.Name == "" {
		iss = AppendIssues(iss, Issue{
			Path:    "name",
			Code:    CodeRequired,
			Message: "the name is required",
		})
	} else {
		out.Name = titleCase(in.Name)
	}

	switch {
	case in.Email == "":
		iss = AppendIssues(iss, Issue{
			Path:    "email",
			Code:    CodeRequired,
			Message: "the e-mail is required",
		})
	case !emailPattern.MatchString(in.Email):
		iss = AppendIssues(iss, Issue{
			Path:    "email",
			Code:    CodeInvalidFormat,
			Message: "enter a valid e-mail address",
		})
	default:
		lowered := strings.ToLower(in.Email)
		if !strings.HasSuffix(lowered, RequiredDomain) {
			iss = AppendIssues(iss, Issue{
				Path:    "email",
				Code:    CodeDomainRejected,
				Message: "the e-mail must end with " + RequiredDomain,
			})
		} else {
			out.Email = lowered
		}
	}

	if len(in.Password) < PasswordMinLen {
		iss = AppendIssues(iss, Issue{
			Path:    "password",
			Code:    CodeTooShort,
			Message: fmt.Sprintf("the password must have at least %d characters", PasswordMinLen),
		})
	} else {
		out.Password = in.Password
	}

	techs, techIssues := parseTechs(in.Techs)
	iss = AppendIssues(iss, techIssues...)
	if len(techIssues) == 0 {
		out.Techs = techs
	}

	if len(iss) > 0 {
		return Profile{}, iss
	}
	return out, nil
}

func parseTechs(in []TechInput) ([]Tech, Issues) {
	var iss Issues
	out := make([]Tech, 0, len(in))

	for i, entry := range in {
		tech := Tech{Title: entry.Title}
		if entry.Title == "" {
			iss = AppendIssues(iss, Issue{
				Path:    techPath(i, "title"),
				Code:    CodeRequired,
				Message: "the title is required",
			})
		}

		knowledge, err := strconv.Atoi(strings.TrimSpace(entry.Knowledge))
		switch {
		case err != nil:
			iss = AppendIssues(iss, Issue{
				Path:    techPath(i, "knowledge"),
				Code:    CodeInvalidFormat,
				Message: "knowledge must be a number",
			})
		case knowledge < KnowledgeMin || knowledge > KnowledgeMax:
			iss = AppendIssues(iss, Issue{
				Path:    techPath(i, "knowledge"),
				Code:    CodeOutOfRange,
				Message: fmt.Sprintf("knowledge must be between %d and %d", KnowledgeMin, KnowledgeMax),
			})
		default:
			tech.Knowledge = knowledge
		}
		out = append(out, tech)
	}

	if len(in) < MinTechs {
		iss = AppendIssues(iss, Issue{
			Path:    "techs",
			Code:    CodeTooFew,
			Message: fmt.Sprintf("add at least %d technologies", MinTechs),
		})
	}

	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

func techPath(index int, field string) string {
	return "techs." + strconv.Itoa(index) + "." + field
}

// titleCase trims the value, upper-cases the first rune of every
// space-separated word and leaves the remainder of each word untouched.
func titleCase(raw string) string {
	words := strings.Split(strings.TrimSpace(raw), " ")
	for i, word := range words {
		if word == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(word)
		words[i] = string(unicode.ToUpper(r)) + word[size:]
	}
	return strings.Join(words, " ")
}
