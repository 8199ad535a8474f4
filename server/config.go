package server

// Config is the web server configuration.
type Config struct {
	// Address to listen on (e.g., ":8501")
	ListenAddr string

	// APIKeyEnv names the environment variable users are pointed at when the
	// completion service cannot be reached.
	APIKeyEnv string
}
