package models

import "fmt"

// Kind discriminates the result types a catalog search can return.
type Kind string

const (
	KindTrack  Kind = "track"
	KindArtist Kind = "artist"
	KindAlbum  Kind = "album"
)

// ParseKind converts a free-form string into a [Kind].
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindTrack, KindArtist, KindAlbum:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("invalid search kind %q", s)
	}
}

// Marker returns the emoji prefix used for launcher entry titles of this kind.
func (k Kind) Marker() string {
	switch k {
	case KindTrack:
		return "🎵"
	case KindArtist:
		return "🎤"
	case KindAlbum:
		return "💿"
	default:
		return "🔍"
	}
}

// Image represents an image resource with its pixel dimensions.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SearchResult is a normalized catalog search hit.
//
// URI is the opaque playable identifier (e.g. spotify:track:...) accepted
// by the playback endpoints.
type SearchResult struct {
	Kind       Kind   `json:"kind"`
	Name       string `json:"name"`
	Detail     string `json:"detail"`
	ArtworkURL string `json:"artwork_url"`
	URI        string `json:"uri"`
}

// Device represents a Spotify Connect playback device.
type Device struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	IsActive      bool   `json:"is_active"`
	VolumePercent int    `json:"volume_percent"`
}

// NowPlaying describes the currently playing track, if any.
type NowPlaying struct {
	TrackID   string
	TrackName string
	Artist    string
	URI       string
	IsPlaying bool
}
