package auth

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotlite/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"

	// authState is a fixed state value. The callback listener accepts a
	// single request on a loopback port during an ephemeral window, so a
	// static value is sufficient.
	authState = "spotlite_auth"

	// defaultTokenLifetime is assumed when the provider omits expires_in.
	defaultTokenLifetime = time.Hour

	tokenTimeout = 5 * time.Second
)

// Broker owns the in-memory credential record and the memoized search token.
//
// It is the only component that mutates persisted token state; the [Store]
// is a passive mirror written after every successful exchange or refresh.
type Broker struct {
	config     *oauth2.Config
	search     *clientcredentials.Config
	store      Store
	httpClient *http.Client
	logger     *log.Logger

	mu          sync.Mutex
	creds       Credentials
	searchToken string

	now func() time.Time
}

// NewBroker creates a Broker from operator-supplied credentials, loading
// any previously persisted token record.
//
// A load failure is logged and treated as "never authorized".
func NewBroker(cfg shared.SpotifyConfig, store Store, logger *log.Logger) (*Broker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	redirectURI := cfg.RedirectURI
	if redirectURI == "" {
		redirectURI = "http://localhost:8080/callback"
	}

	config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"user-modify-playback-state",
			"user-read-playback-state",
			"user-read-currently-playing",
			"user-read-private",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL: spotifyAuthURL,
			// Spotify's token endpoint expects HTTP Basic auth.
			TokenURL:  spotifyTokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}

	search := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     spotifyTokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	b := &Broker{
		config:     config,
		search:     search,
		store:      store,
		httpClient: &http.Client{Timeout: tokenTimeout},
		logger:     logger,
		now:        time.Now,
	}

	if store != nil {
		creds, err := store.Load()
		if err != nil {
			logger.Debug("no persisted tokens loaded", "error", err)
		} else {
			b.creds = creds
		}
	}

	return b, nil
}

// AuthURL returns the provider's authorize endpoint URL with the plugin's
// scope set, redirect URI, and state parameter.
func (b *Broker) AuthURL() string {
	return b.config.AuthCodeURL(authState)
}

// Authorized reports whether a token record exists, without any network call.
func (b *Broker) Authorized() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.creds.Authorized()
}

// ExchangeCode trades a single-use authorization code for a token pair.
//
// On success the credential record is populated, expiry computed from the
// provider-reported lifetime (one hour when absent), and persisted
// immediately. On failure the record is left unchanged.
func (b *Broker) ExchangeCode(ctx context.Context, code string) error {
	tok, err := b.config.Exchange(b.httpContext(ctx), code)
	if err != nil {
		return fmt.Errorf("%w: code exchange: %v", shared.ErrAuthFailed, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.apply(tok)
	b.persist()
	return nil
}

// Refresh attempts to renew the access token with the refresh_token grant.
//
// Providers may omit a new refresh token, meaning "keep the existing one";
// the stored refresh token is never cleared by a response without one. Any
// failure leaves the record untouched.
func (b *Broker) Refresh(ctx context.Context) error {
	b.mu.Lock()
	refreshToken := b.creds.RefreshToken
	b.mu.Unlock()

	if refreshToken == "" {
		return shared.ErrNoRefreshToken
	}

	src := b.config.TokenSource(b.httpContext(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.apply(tok)
	b.persist()
	return nil
}

// ValidToken returns a currently valid access token.
//
// Returns [shared.ErrNotAuthenticated] when no token has ever been
// acquired. An expired token triggers exactly one refresh attempt; a token
// without a recorded expiry is returned optimistically.
func (b *Broker) ValidToken(ctx context.Context) (string, error) {
	b.mu.Lock()
	creds := b.creds
	b.mu.Unlock()

	if !creds.Authorized() {
		return "", shared.ErrNotAuthenticated
	}

	if creds.Expired(b.now()) {
		if err := b.Refresh(ctx); err != nil {
			return "", err
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.creds.AccessToken, nil
}

// SearchToken returns the app-level token used for catalog search.
//
// Fetched once per process via the client-credentials grant and memoized
// in memory only; a plugin invocation is short-lived relative to the
// token's lifetime, so no expiry tracking is done.
func (b *Broker) SearchToken(ctx context.Context) (string, error) {
	b.mu.Lock()
	if b.searchToken != "" {
		token := b.searchToken
		b.mu.Unlock()
		return token, nil
	}
	b.mu.Unlock()

	tok, err := b.search.Token(b.httpContext(ctx))
	if err != nil {
		return "", fmt.Errorf("%w: client credentials: %v", shared.ErrAuthFailed, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.searchToken = tok.AccessToken
	return b.searchToken, nil
}

// Credentials returns a copy of the current in-memory record.
func (b *Broker) Credentials() Credentials {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.creds
}

// apply merges a provider token response into the credential record.
// Callers must hold b.mu.
func (b *Broker) apply(tok *oauth2.Token) {
	b.creds.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		b.creds.RefreshToken = tok.RefreshToken
	}

	expiry := tok.Expiry
	if expiry.IsZero() {
		expiry = b.now().Add(defaultTokenLifetime)
	}
	b.creds.TokenExpires = &expiry
}

// persist mirrors the record to the store. Playback commands must not fail
// because a disk write did, so errors are logged and swallowed here.
// Callers must hold b.mu.
func (b *Broker) persist() {
	if b.store == nil {
		return
	}
	if err := b.store.Save(b.creds); err != nil {
		b.logger.Warn("failed to persist tokens", "error", err)
	}
}

// httpContext injects the broker's HTTP client so token endpoint calls
// share its timeout.
func (b *Broker) httpContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, b.httpClient)
}
