package song

import (
	"time"

	"github.com/jackc/pgx/v5"
)

// DefaultLyrics is stored whenever a song is created without lyrics.
const DefaultLyrics = "This track has no lyrics."

type Song struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Artist    string    `json:"artist"`
	Lyrics    string    `json:"lyrics"`
	File      string    `json:"file"`
	CreatedAt time.Time `json:"createdAt"`
}

const columns = `id, title, artist, lyrics, file, created_at`

func scanSong(row pgx.Row) (Song, error) {
	var sg Song
	err := row.Scan(
		&sg.ID,
		&sg.Title,
		&sg.Artist,
		&sg.Lyrics,
		&sg.File,
		&sg.CreatedAt,
	)
	return sg, err
}
