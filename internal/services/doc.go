// Package services implements clients for the external providers moodlist orchestrates.
//
// # Spotify
//
// [SpotifyClient] wraps the Spotify Web API with [oauth2] for the authorization
// code flow. Unlike a single-user CLI client it never stores a token: every
// authenticated method takes the caller's access token, because one server
// process serves many sessions concurrently.
//
// # Ollama
//
// [OllamaService] talks to a locally hosted Ollama instance over its chat API
// and recovers a typed track list from free-form model output. Recovery is an
// ordered pair of parse strategies: strict JSON first, then greedy extraction
// of the trailing brace region for models that wrap JSON in prose.
//
// Both clients use bounded request timeouts; a timed-out call surfaces the same
// way as any other transport failure.
package services
