// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"

	"github.com/desertthunder/spotlite/internal/desktop"
	"github.com/desertthunder/spotlite/internal/models"
)

// MockCatalog is a test double for [plugin.Catalog]. Results are keyed
// by kind; Err fails every call.
type MockCatalog struct {
	Results map[models.Kind][]models.SearchResult
	Queries []string
	Err     error
}

func (m *MockCatalog) Search(ctx context.Context, query string, kind models.Kind, limit int) ([]models.SearchResult, error) {
	m.Queries = append(m.Queries, query)
	if m.Err != nil {
		return nil, m.Err
	}

	results := m.Results[kind]
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// MockController is a test double for [plugin.Controller]. It records
// every call by name and returns Err for all of them.
type MockController struct {
	Calls      []string
	Err        error
	DeviceList []models.Device
	Playing    *models.NowPlaying

	PlayedURI    string
	PlayedDevice string
	Volume       int
	QueuedURI    string
	EditedTrack  string
}

func (m *MockController) record(name string) error {
	m.Calls = append(m.Calls, name)
	return m.Err
}

func (m *MockController) Play(ctx context.Context, uri, deviceID string) error {
	m.PlayedURI = uri
	m.PlayedDevice = deviceID
	return m.record("play")
}

func (m *MockController) Resume(ctx context.Context) error   { return m.record("resume") }
func (m *MockController) Pause(ctx context.Context) error    { return m.record("pause") }
func (m *MockController) Next(ctx context.Context) error     { return m.record("next") }
func (m *MockController) Previous(ctx context.Context) error { return m.record("previous") }

func (m *MockController) SetVolume(ctx context.Context, percent int) error {
	m.Volume = percent
	return m.record("volume")
}

func (m *MockController) Queue(ctx context.Context, uri string) error {
	m.QueuedURI = uri
	return m.record("queue")
}

func (m *MockController) Like(ctx context.Context, trackID string) error {
	m.EditedTrack = trackID
	return m.record("like")
}

func (m *MockController) Unlike(ctx context.Context, trackID string) error {
	m.EditedTrack = trackID
	return m.record("unlike")
}

func (m *MockController) ToggleShuffle(ctx context.Context) error { return m.record("shuffle") }
func (m *MockController) CycleRepeat(ctx context.Context) error   { return m.record("repeat") }

func (m *MockController) Devices(ctx context.Context) ([]models.Device, error) {
	if err := m.record("devices"); err != nil {
		return nil, err
	}
	return m.DeviceList, nil
}

func (m *MockController) CurrentlyPlaying(ctx context.Context) (*models.NowPlaying, error) {
	if err := m.record("currently_playing"); err != nil {
		return nil, err
	}
	return m.Playing, nil
}

// MockAuthorizer is a test double for [plugin.Authorizer].
type MockAuthorizer struct {
	URL        string
	IsAuthed   bool
	URLQueried bool
}

func (m *MockAuthorizer) AuthURL() string {
	m.URLQueried = true
	return m.URL
}

func (m *MockAuthorizer) Authorized() bool { return m.IsAuthed }

// MockDesktop is a test double for [plugin.DesktopApp].
type MockDesktop struct {
	Running     bool
	Launched    bool
	OpenedURI   string
	OpenedURL   string
	MediaKeys   []desktop.MediaAction
	LaunchErr   error
	OpenURIErr  error
	BrowserErr  error
	MediaKeyErr error
}

func (m *MockDesktop) IsRunning() bool { return m.Running }

func (m *MockDesktop) Launch() error {
	m.Launched = true
	return m.LaunchErr
}

func (m *MockDesktop) OpenURI(uri string) error {
	m.OpenedURI = uri
	return m.OpenURIErr
}

func (m *MockDesktop) MediaKey(action desktop.MediaAction) error {
	m.MediaKeys = append(m.MediaKeys, action)
	return m.MediaKeyErr
}

func (m *MockDesktop) OpenBrowser(url string) error {
	m.OpenedURL = url
	return m.BrowserErr
}

// MockCache is a test double for [plugin.ResultCache].
type MockCache struct {
	Entries map[string][]models.SearchResult
	Puts    int
	GetErr  error
	PutErr  error
}

func (m *MockCache) key(query string, kind models.Kind) string {
	return query + "|" + string(kind)
}

func (m *MockCache) Get(query string, kind models.Kind) ([]models.SearchResult, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	results, ok := m.Entries[m.key(query, kind)]
	if !ok {
		return nil, errors.New("miss")
	}
	return results, nil
}

func (m *MockCache) Put(query string, kind models.Kind, results []models.SearchResult) error {
	m.Puts++
	if m.PutErr != nil {
		return m.PutErr
	}
	if m.Entries == nil {
		m.Entries = make(map[string][]models.SearchResult)
	}
	m.Entries[m.key(query, kind)] = results
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}
