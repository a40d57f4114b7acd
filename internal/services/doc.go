// package services contains the Spotify Web API client.
//
// The client is a thin request layer: it attaches bearer tokens supplied
// by a [TokenSource], performs a single HTTP call per operation, and maps
// status codes to success or failure. It never retries; a failed call is
// reported to the caller as an error and surfaced upstream as an "action
// not completed" outcome, never a crash.
//
// Two token kinds are in play:
//
//   - catalog search uses the app-level client-credentials token
//     ([TokenSource.SearchToken]), which requires no user consent
//   - playback control, device listing, and library edits use the user
//     token ([TokenSource.ValidToken]), refreshed by the broker on demand
//
// Response types are based on
// https://developer.spotify.com/documentation/web-api/reference/
package services
