package playlist

import (
	"time"

	"github.com/jackc/pgx/v5"
)

// Playlist is an ordered collection of song ids. Author is a snapshot of the
// owner's username at creation time, deliberately not live-joined: renaming a
// user does not rewrite historical author strings. SongsNum is denormalized
// and must always equal len(Songs).
type Playlist struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Songs     []string  `json:"songs"`
	SongsNum  int       `json:"songsNum"`
	Author    string    `json:"author"`
	IsPrivate bool      `json:"isPrivate"`
	CreatedAt time.Time `json:"createdAt"`
}

const columns = `id, user_id, name, songs, songs_num, author, is_private, created_at`

func scanPlaylist(row pgx.Row) (Playlist, error) {
	var pl Playlist
	err := row.Scan(
		&pl.ID,
		&pl.UserID,
		&pl.Name,
		&pl.Songs,
		&pl.SongsNum,
		&pl.Author,
		&pl.IsPrivate,
		&pl.CreatedAt,
	)
	return pl, err
}

func validateName(name string) []string {
	switch {
	case name == "":
		return []string{"Playlist must have a name."}
	case len(name) < 3 || len(name) > 50:
		return []string{"Playlist name must be between 3 and 50 characters."}
	}
	return nil
}
