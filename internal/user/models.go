package user

import (
	"time"

	"github.com/jackc/pgx/v5"
)

// DefaultPicture is the placeholder every account starts with.
const DefaultPicture = "default.png"

// User is an account record. The password hash is never serialized outward.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Picture   string    `json:"picture"`
	Playlists int       `json:"playlists"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

// Columns is the select list matching Scan.
const Columns = `id, username, email, password, picture, playlists, is_admin, created_at`

func Scan(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.Password,
		&u.Picture,
		&u.Playlists,
		&u.IsAdmin,
		&u.CreatedAt,
	)
	return u, err
}
