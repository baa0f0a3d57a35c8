package validator

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

const (
	minPasswordLen  = 8
	maxNameLen      = 80
	maxUsernameLen  = 32
	maxBodyBytes    = 64 * 1024
)

func ValidateRegister(email, username, displayName, password string) ValidationErrors {
	errs := ValidationErrors{}

	if _, err := mail.ParseAddress(email); err != nil {
		errs.Add("email", "must be a valid email address")
	}
	if username == "" || len(username) > maxUsernameLen || !usernameRegex.MatchString(username) {
		errs.Add("username", fmt.Sprintf("must be 1-%d characters: letters, digits, _ or -", maxUsernameLen))
	}
	if strings.TrimSpace(displayName) == "" || utf8.RuneCountInString(displayName) > maxNameLen {
		errs.Add("display_name", fmt.Sprintf("must be 1-%d characters", maxNameLen))
	}
	if len(password) < minPasswordLen {
		errs.Add("password", fmt.Sprintf("must be at least %d characters", minPasswordLen))
	}

	return errs
}

func ValidateLogin(email, password string) ValidationErrors {
	errs := ValidationErrors{}
	if _, err := mail.ParseAddress(email); err != nil {
		errs.Add("email", "must be a valid email address")
	}
	if password == "" {
		errs.Add("password", "password is required")
	}
	return errs
}

func ValidateWorkspaceName(name string) ValidationErrors {
	errs := ValidationErrors{}
	if strings.TrimSpace(name) == "" || utf8.RuneCountInString(name) > maxNameLen {
		errs.Add("name", fmt.Sprintf("must be 1-%d characters", maxNameLen))
	}
	return errs
}

func ValidateChannelName(name string) ValidationErrors {
	errs := ValidationErrors{}
	if strings.TrimSpace(name) == "" || utf8.RuneCountInString(name) > maxNameLen {
		errs.Add("name", fmt.Sprintf("must be 1-%d characters", maxNameLen))
	}
	return errs
}

// ValidateMessageBody bounds the opaque rich-text payload. The server never
// parses it beyond checking it is present and not absurdly large.
func ValidateMessageBody(body []byte) ValidationErrors {
	errs := ValidationErrors{}
	if len(body) == 0 {
		errs.Add("body", "message body is required")
	}
	if len(body) > maxBodyBytes {
		errs.Add("body", fmt.Sprintf("must be at most %d bytes", maxBodyBytes))
	}
	return errs
}
