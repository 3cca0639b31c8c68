package services

// SuggestedTrack is a model-generated (title, artist) pair.
//
// Untrusted input: it has no identity beyond structural equality until the
// playlist assembler resolves it against the provider catalog.
type SuggestedTrack struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

// ResolvedTrack pairs a suggestion with the provider-native URI search found
// for it. URI is empty when the catalog had no match.
type ResolvedTrack struct {
	SuggestedTrack
	URI string
}

// Profile holds the provider profile fields a session keeps.
type Profile struct {
	UserID      string
	DisplayName string
	ImageURL    string
}

// PlaylistRef identifies a playlist created on the provider side, together
// with resolution counts for observability.
type PlaylistRef struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Requested int    `json:"requested"`
	Resolved  int    `json:"resolved"`
	Dropped   int    `json:"dropped"`
}
