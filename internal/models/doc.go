// package models defines the normalized data model shared by the API
// client, the launcher plugin, and the local cache.
//
// The Spotify Web API returns deeply nested resource objects; the types
// here flatten them into what a launcher menu entry actually needs: a
// display name, a secondary metadata line, a representative artwork URL,
// and the opaque playable URI handed back to the playback endpoints.
package models
