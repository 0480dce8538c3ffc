package config

// Default values for configuration.
const (
	// API defaults
	DefaultAPIBaseURL        = "http://localhost:8000"
	DefaultAPITimeoutSeconds = 30

	// Gateway defaults
	DefaultGatewayHost            = "0.0.0.0"
	DefaultGatewayPort            = 8080
	DefaultReadTimeoutSeconds     = 10
	DefaultWriteTimeoutSeconds    = 10
	DefaultShutdownTimeoutSeconds = 15

	// Storage defaults
	DefaultTokenFile    = ".sofa/tokens.json"
	DefaultDownloadsDir = "downloads"

	// UI defaults
	DefaultUIOrigin             = "http://localhost:3000"
	DefaultSearchDebounceMillis = 300

	// Chats defaults
	DefaultChatCacheTTLSeconds = 30
	DefaultMarkReadDelayMillis = 500

	// Logging defaults
	DefaultLogLevel = "info"
)
