package song

func validateMetadata(title, artist, lyrics string) []string {
	var msgs []string

	switch {
	case title == "":
		msgs = append(msgs, "Song must have a title.")
	case len(title) < 3 || len(title) > 50:
		msgs = append(msgs, "Title must be between 3 and 50 characters.")
	}

	switch {
	case artist == "":
		msgs = append(msgs, "Song must have an artist.")
	case len(artist) < 3 || len(artist) > 25:
		msgs = append(msgs, "Artist must be between 3 and 25 characters.")
	}

	// Lyrics are optional; the default placeholder is applied elsewhere.
	if lyrics != "" && (len(lyrics) < 2 || len(lyrics) > 10000) {
		msgs = append(msgs, "Lyrics must be between 2 and 10000 characters.")
	}

	return msgs
}
