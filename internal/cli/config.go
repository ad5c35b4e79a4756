package cli

import (
	"os"
	"path/filepath"

	"github.com/jcallaghan/sessionlink/internal/storage"
	filestorage "github.com/jcallaghan/sessionlink/internal/storage/file"
	redisstorage "github.com/jcallaghan/sessionlink/internal/storage/redis"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string
	DataDir   string
	RedisURL  string
	Output    string
	Verbose   bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault("SESSIONLINK_SERVER", "http://localhost:8080"),
		DataDir:   getEnvOrDefault("SESSIONLINK_DATA_DIR", defaultDataDir()),
		RedisURL:  os.Getenv("SESSIONLINK_REDIS_URL"),
		Output:    "text",
		Verbose:   false,
	}
}

// OpenStore opens the credential store the CLI persists into: Redis
// when a URL is configured, a local file otherwise. The returned
// closer is a no-op for the file store.
func (c *Config) OpenStore() (storage.Store, func() error, error) {
	if c.RedisURL != "" {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = c.RedisURL
		store, err := redisstorage.New(redisCfg)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	}

	store := filestorage.New(filepath.Join(c.DataDir, "credentials.json"))
	return store, func() error { return nil }, nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sessionlink"
	}
	return filepath.Join(home, ".sessionlink")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
