package server

// Config holds the evaluation server settings.
type Config struct {
	Port            int
	TLSCertPath     string
	TLSKeyPath      string
	Palette         []string
	CacheTTLSeconds int
}

func DefaultConfig() Config {
	return Config{
		Port:            8080,
		CacheTTLSeconds: 300,
	}
}
