package constants

// Content limits
const (
	// MaxPostLength is the maximum number of characters in a post
	MaxPostLength = 800
	// MaxCommentLength is the maximum number of characters in a comment
	MaxCommentLength = 300
)

// Page sizes
const (
	// DefaultFeedLimit is used when a feed request does not ask for a size
	DefaultFeedLimit = 20
	// MaxFeedLimit caps any feed or author listing
	MaxFeedLimit = 100
	// SearchResultLimit caps user search results
	SearchResultLimit = 50
)

// Concurrency
const (
	// MaxConcurrentLookups bounds parallel user lookups when composing read views
	MaxConcurrentLookups = 8
)
