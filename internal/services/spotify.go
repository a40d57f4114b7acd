package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotlite/internal/models"
	"github.com/desertthunder/spotlite/internal/shared"
	"golang.org/x/time/rate"
)

const (
	spotifyBaseURL = "https://api.spotify.com/v1"

	// PlaceholderIcon is returned when a resource carries no usable artwork.
	PlaceholderIcon = "spotify_premium_icon.png"

	// searchTimeout keeps the launcher responsive while typing.
	searchTimeout = 5 * time.Second

	searchRateLimit = 5 // requests per second
)

// TokenSource provides the credentials attached to outbound API calls.
type TokenSource interface {
	// ValidToken returns a currently valid user token, refreshing if needed.
	ValidToken(ctx context.Context) (string, error)

	// SearchToken returns the app-level client-credentials token.
	SearchToken(ctx context.Context) (string, error)
}

type followers struct {
	Total int `json:"total"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	URI        string          `json:"uri"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Genres    []string       `json:"genres"`
	Followers followers      `json:"followers"`
	Images    []models.Image `json:"images"`
	URI       string         `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Artists     []SpotifyArtist `json:"artists"`
	ReleaseDate string          `json:"release_date"`
	TotalTracks int             `json:"total_tracks"`
	Images      []models.Image  `json:"images"`
	URI         string          `json:"uri"`
}

type searchResponse struct {
	Tracks struct {
		Items []SpotifyTrack `json:"items"`
	} `json:"tracks"`
	Artists struct {
		Items []SpotifyArtist `json:"items"`
	} `json:"artists"`
	Albums struct {
		Items []SpotifyAlbum `json:"items"`
	} `json:"albums"`
}

type deviceList struct {
	Devices []models.Device `json:"devices"`
}

type playerState struct {
	ShuffleState bool   `json:"shuffle_state"`
	RepeatState  string `json:"repeat_state"`
	IsPlaying    bool   `json:"is_playing"`
	Item         struct {
		ID      string          `json:"id"`
		Name    string          `json:"name"`
		URI     string          `json:"uri"`
		Artists []SpotifyArtist `json:"artists"`
	} `json:"item"`
}

// SpotifyClient performs authenticated calls against the Spotify Web API.
type SpotifyClient struct {
	baseURL      string
	searchClient *http.Client
	playerClient *http.Client
	tokens       TokenSource
	limiter      *rate.Limiter
	logger       *log.Logger
}

// NewSpotifyClient creates a client backed by the given token source.
//
// Search calls use a short fixed timeout so the launcher stays responsive;
// playback-control calls rely on the default client behavior.
func NewSpotifyClient(tokens TokenSource, logger *log.Logger) *SpotifyClient {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &SpotifyClient{
		baseURL:      spotifyBaseURL,
		searchClient: &http.Client{Timeout: searchTimeout},
		playerClient: http.DefaultClient,
		tokens:       tokens,
		limiter:      rate.NewLimiter(rate.Limit(searchRateLimit), 1),
		logger:       logger,
	}
}

// do performs a single request with the given bearer token. The optional
// body is JSON-encoded.
func (c *SpotifyClient) do(ctx context.Context, client *http.Client, method, endpoint, token string, body any) (*http.Response, error) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	return resp, nil
}

// Search queries the catalog for the given result kind and returns
// normalized summaries. Uses the client-credentials token, so it works
// without user authorization.
func (c *SpotifyClient) Search(ctx context.Context, query string, kind models.Kind, limit int) ([]models.SearchResult, error) {
	if limit <= 0 {
		limit = 10
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	token, err := c.tokens.SearchToken(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", string(kind))
	params.Set("limit", strconv.Itoa(limit))

	resp, err := c.do(ctx, c.searchClient, http.MethodGet, "/search?"+params.Encode(), token, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: search status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	var results []models.SearchResult
	switch kind {
	case models.KindTrack:
		for _, track := range parsed.Tracks.Items {
			results = append(results, normalizeTrack(track))
		}
	case models.KindArtist:
		for _, artist := range parsed.Artists.Items {
			results = append(results, normalizeArtist(artist))
		}
	case models.KindAlbum:
		for _, album := range parsed.Albums.Items {
			results = append(results, normalizeAlbum(album))
		}
	}

	return results, nil
}

// Devices lists the user's available playback devices.
func (c *SpotifyClient) Devices(ctx context.Context) ([]models.Device, error) {
	token, err := c.tokens.ValidToken(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, c.searchClient, http.MethodGet, "/me/player/devices", token, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: devices status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var parsed deviceList
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode device list: %w", err)
	}

	return parsed.Devices, nil
}

// PickDevice selects the device to target for playback: the active device
// if one is flagged, otherwise the first listed, otherwise none (empty
// string, letting the provider choose).
func PickDevice(devices []models.Device) string {
	for _, device := range devices {
		if device.IsActive {
			return device.ID
		}
	}
	if len(devices) > 0 {
		return devices[0].ID
	}
	return ""
}

// Play starts playback of the given playable identifier, optionally on a
// specific device. Success is exactly HTTP 204 or 202; anything else is a
// failure with no retry.
func (c *SpotifyClient) Play(ctx context.Context, uri, deviceID string) error {
	token, err := c.tokens.ValidToken(ctx)
	if err != nil {
		return err
	}

	endpoint := "/me/player/play"
	if deviceID != "" {
		endpoint += "?device_id=" + url.QueryEscape(deviceID)
	}

	// Track URIs are played directly; artist and album URIs start playback
	// of that context.
	var body any
	if strings.HasPrefix(uri, "spotify:track:") {
		body = map[string]any{"uris": []string{uri}, "position_ms": 0}
	} else {
		body = map[string]any{"context_uri": uri}
	}

	resp, err := c.do(ctx, c.playerClient, http.MethodPut, endpoint, token, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("%w: play status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	return nil
}

// control performs a user-authorized call where any 2xx status is success.
func (c *SpotifyClient) control(ctx context.Context, method, endpoint string, body any) error {
	token, err := c.tokens.ValidToken(ctx)
	if err != nil {
		return err
	}

	resp, err := c.do(ctx, c.playerClient, method, endpoint, token, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s status %d", shared.ErrAPIRequest, endpoint, resp.StatusCode)
	}

	return nil
}

// Resume resumes playback on the current device.
func (c *SpotifyClient) Resume(ctx context.Context) error {
	return c.control(ctx, http.MethodPut, "/me/player/play", nil)
}

// Pause pauses playback.
func (c *SpotifyClient) Pause(ctx context.Context) error {
	return c.control(ctx, http.MethodPut, "/me/player/pause", nil)
}

// Next skips to the next track.
func (c *SpotifyClient) Next(ctx context.Context) error {
	return c.control(ctx, http.MethodPost, "/me/player/next", nil)
}

// Previous returns to the previous track.
func (c *SpotifyClient) Previous(ctx context.Context) error {
	return c.control(ctx, http.MethodPost, "/me/player/previous", nil)
}

// SetVolume sets the playback volume percentage (clamped to 0-100).
func (c *SpotifyClient) SetVolume(ctx context.Context, percent int) error {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return c.control(ctx, http.MethodPut, fmt.Sprintf("/me/player/volume?volume_percent=%d", percent), nil)
}

// Queue adds a playable identifier to the playback queue.
func (c *SpotifyClient) Queue(ctx context.Context, uri string) error {
	return c.control(ctx, http.MethodPost, "/me/player/queue?uri="+url.QueryEscape(uri), nil)
}

// Like saves a track to the user's library.
func (c *SpotifyClient) Like(ctx context.Context, trackID string) error {
	return c.control(ctx, http.MethodPut, "/me/tracks?ids="+url.QueryEscape(trackID), nil)
}

// Unlike removes a track from the user's library.
func (c *SpotifyClient) Unlike(ctx context.Context, trackID string) error {
	return c.control(ctx, http.MethodDelete, "/me/tracks?ids="+url.QueryEscape(trackID), nil)
}

// CurrentlyPlaying returns the track currently playing, or nil when
// nothing is playing (the provider answers 204 in that case).
func (c *SpotifyClient) CurrentlyPlaying(ctx context.Context) (*models.NowPlaying, error) {
	token, err := c.tokens.ValidToken(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, c.searchClient, http.MethodGet, "/me/player/currently-playing", token, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: currently-playing status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var state playerState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return nil, fmt.Errorf("failed to decode player state: %w", err)
	}

	playing := &models.NowPlaying{
		TrackID:   state.Item.ID,
		TrackName: state.Item.Name,
		URI:       state.Item.URI,
		IsPlaying: state.IsPlaying,
	}
	if len(state.Item.Artists) > 0 {
		playing.Artist = state.Item.Artists[0].Name
	}

	return playing, nil
}

// playerStatus returns the current shuffle and repeat state.
func (c *SpotifyClient) playerStatus(ctx context.Context) (*playerState, error) {
	token, err := c.tokens.ValidToken(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, c.searchClient, http.MethodGet, "/me/player", token, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, shared.ErrNoDevice
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: player status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var state playerState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return nil, fmt.Errorf("failed to decode player state: %w", err)
	}

	return &state, nil
}

// ToggleShuffle flips the shuffle state.
func (c *SpotifyClient) ToggleShuffle(ctx context.Context) error {
	state, err := c.playerStatus(ctx)
	if err != nil {
		return err
	}
	return c.control(ctx, http.MethodPut, fmt.Sprintf("/me/player/shuffle?state=%t", !state.ShuffleState), nil)
}

// CycleRepeat advances the repeat mode off -> context -> track -> off.
func (c *SpotifyClient) CycleRepeat(ctx context.Context) error {
	state, err := c.playerStatus(ctx)
	if err != nil {
		return err
	}

	var next string
	switch state.RepeatState {
	case "off":
		next = "context"
	case "context":
		next = "track"
	default:
		next = "off"
	}

	return c.control(ctx, http.MethodPut, "/me/player/repeat?state="+next, nil)
}

// ArtworkURL selects a representative image for consistent menu display.
//
// Scanning widest-first: prefer the widest image whose width falls in
// [250,350]; failing that, the narrowest image at least 500 wide; failing
// that, the single widest image. No images yields [PlaceholderIcon].
func ArtworkURL(images []models.Image) string {
	if len(images) == 0 {
		return PlaceholderIcon
	}

	sorted := make([]models.Image, len(images))
	copy(sorted, images)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Width > sorted[j].Width
	})

	for _, img := range sorted {
		if img.Width >= 250 && img.Width <= 350 {
			return urlOrPlaceholder(img.URL)
		}
	}

	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i].Width >= 500 {
			return urlOrPlaceholder(sorted[i].URL)
		}
	}

	return urlOrPlaceholder(sorted[0].URL)
}

func urlOrPlaceholder(url string) string {
	if url == "" {
		return PlaceholderIcon
	}
	return url
}

func normalizeTrack(track SpotifyTrack) models.SearchResult {
	return models.SearchResult{
		Kind: models.KindTrack,
		Name: track.Name,
		Detail: fmt.Sprintf("by %s • %s • %s",
			artistNames(track.Artists),
			shared.FormatTrackDuration(track.DurationMS),
			track.Album.Name),
		ArtworkURL: ArtworkURL(track.Album.Images),
		URI:        track.URI,
	}
}

func normalizeArtist(artist SpotifyArtist) models.SearchResult {
	followersText := "Artist"
	if artist.Followers.Total > 0 {
		followersText = fmt.Sprintf("%s followers", groupDigits(artist.Followers.Total))
	}

	genres := artist.Genres
	if len(genres) == 0 {
		genres = []string{"Unknown"}
	}
	if len(genres) > 2 {
		genres = genres[:2]
	}

	return models.SearchResult{
		Kind:       models.KindArtist,
		Name:       artist.Name,
		Detail:     fmt.Sprintf("%s • %s", followersText, strings.Join(genres, ", ")),
		ArtworkURL: ArtworkURL(artist.Images),
		URI:        artist.URI,
	}
}

func normalizeAlbum(album SpotifyAlbum) models.SearchResult {
	releaseYear := album.ReleaseDate
	if len(releaseYear) > 4 {
		releaseYear = releaseYear[:4]
	}

	return models.SearchResult{
		Kind: models.KindAlbum,
		Name: album.Name,
		Detail: fmt.Sprintf("by %s • %s • %d tracks",
			artistNames(album.Artists),
			releaseYear,
			album.TotalTracks),
		ArtworkURL: ArtworkURL(album.Images),
		URI:        album.URI,
	}
}

func artistNames(artists []SpotifyArtist) string {
	names := make([]string, 0, len(artists))
	for _, artist := range artists {
		names = append(names, artist.Name)
	}
	return strings.Join(names, ", ")
}

// groupDigits formats an integer with thousands separators (e.g. 1,234,567).
func groupDigits(n int) string {
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
