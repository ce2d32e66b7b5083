package frontmatter

import (
	"fmt"
	"path/filepath"
	"time"

	"lyricindex/internal/textutil"
)

// Frontmatter keys of a lyrics document.
const (
	KeyID           = "id"
	KeyTitle        = "title"
	KeyAlbumID      = "albumId"
	KeyTrackNumber  = "trackNumber"
	KeyDescription  = "description"
	KeyYouTubeURL   = "youtubeUrl"
	KeySpotifyURL   = "spotifyUrl"
	KeyTags         = "tags"
	KeyContributors = "contributors"
	KeyCreatedAt    = "createdAt"
	KeyLrcLibID     = "lrcLibId"
	KeyVerified     = "isVerified"
	KeySyncedLyrics = "syncedLyrics"
)

// Song identifies the track a lyrics document belongs to.
type Song struct {
	Artist string
	Album  string
	Title  string
	// Track is the track number; 0 is written as an empty value.
	Track     int
	CreatedAt time.Time
}

// NewLyricsDocument builds the document written for a fetched song.
func NewLyricsDocument(song Song, lyrics string) *Document {
	var track any
	if song.Track > 0 {
		track = song.Track
	}
	created := song.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	doc := &Document{Body: lyrics}
	doc.Set(KeyID, textutil.PathSlug(song.Title))
	doc.Set(KeyTitle, song.Title)
	doc.Set(KeyAlbumID, textutil.PathSlug(song.Album))
	doc.Set(KeyTrackNumber, track)
	doc.Set(KeyDescription, fmt.Sprintf("Lyrics for %s by %s", song.Title, song.Artist))
	doc.Set(KeyYouTubeURL, "")
	doc.Set(KeySpotifyURL, "")
	doc.Set(KeyTags, []string{"lyrics"})
	doc.Set(KeyContributors, []string{song.Artist})
	doc.Set(KeyCreatedAt, created.Format(time.DateOnly))
	return doc
}

// LyricsPath returns where the lyrics document for album and title is stored
// under dir.
func LyricsPath(dir, album, title string) string {
	return filepath.Join(dir, textutil.PathSlug(album), textutil.PathSlug(title)+".md")
}
