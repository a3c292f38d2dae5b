package user

import (
	"net/mail"
	"strings"
)

// ValidateProfile checks the username/email constraints and returns one
// message per violated field.
func ValidateProfile(username, email string) []string {
	var msgs []string

	username = strings.TrimSpace(username)
	switch {
	case username == "":
		msgs = append(msgs, "User must have username.")
	case len(username) < 3 || len(username) > 25:
		msgs = append(msgs, "Username must be between 3 and 25 characters.")
	}

	email = strings.TrimSpace(email)
	if email == "" {
		msgs = append(msgs, "User must have an email.")
	} else if _, err := mail.ParseAddress(email); err != nil {
		msgs = append(msgs, "Email must be valid.")
	}

	return msgs
}
