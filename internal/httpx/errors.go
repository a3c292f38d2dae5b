package httpx

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// IsDuplicateKey reports whether err is a unique-constraint violation.
func IsDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(strings.ToLower(err.Error()), "duplicate key")
}

const (
	MsgInternal  = "It looks like there is an error on the server."
	MsgDuplicate = "Value that is entered and should be unique already exists. It could usually be an email."
	MsgNotFound  = "Resource not found."
)
