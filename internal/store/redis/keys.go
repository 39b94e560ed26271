package redis

const (
	// KeyHighlights holds the JSON array of every highlight, in creation order.
	KeyHighlights = "rainbow:highlights"
	// KeyAllowedSites holds the JSON array of allowed site identifiers.
	KeyAllowedSites = "rainbow:allowed_sites"
)

// HighlightsKey returns the Redis key for the highlight list
func HighlightsKey(prefix string) string {
	return prefix + KeyHighlights
}

// AllowedSitesKey returns the Redis key for the allow-list
func AllowedSitesKey(prefix string) string {
	return prefix + KeyAllowedSites
}
