package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server ServerConfig
	Auth   AuthConfig
	Cipher CipherConfig
	Log    LogConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int
	Host string
}

// AuthConfig holds JWT and client credential configuration
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
	// Clients maps client IDs to bcrypt hashes of their secrets
	Clients map[string]string
}

// CipherConfig holds the defaults applied when a request leaves a field empty
type CipherConfig struct {
	Algorithm string
	Padding   string
	UseMDS    bool
	CacheSize int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvInt("SERVER_PORT", 8080),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			TokenTTL:  getEnvDuration("JWT_TTL", time.Hour),
			Clients:   parseClients(getEnv("AUTH_CLIENTS", "")),
		},
		Cipher: CipherConfig{
			Algorithm: getEnv("CIPHER_ALGORITHM", "TWOFISH_LITE"),
			Padding:   getEnv("CIPHER_PADDING", "PKCS7"),
			UseMDS:    getEnvBool("CIPHER_USE_MDS", false),
			CacheSize: getEnvInt("ENGINE_CACHE_SIZE", 128),
		},
		Log: LogConfig{
			Level: getEnv("TFCIPHER_LOG_LEVEL", "info"),
		},
	}
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// parseClients parses "id:hash,id2:hash2". Bcrypt hashes contain '$' but never ':' or ','.
func parseClients(raw string) map[string]string {
	clients := make(map[string]string)
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		id, hash, ok := strings.Cut(entry, ":")
		if !ok || id == "" || hash == "" {
			continue
		}
		clients[id] = hash
	}
	return clients
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// String returns a string representation of the config
func (c *Config) String() string {
	ids := make([]string, 0, len(c.Auth.Clients))
	for id := range c.Auth.Clients {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return fmt.Sprintf(`
Server: %s:%d
JWT Secret: ***
JWT TTL: %s
Clients: %v
Cipher: %s/%s (mds=%t, cache=%d)
Log Level: %s`,
		c.Server.Host, c.Server.Port,
		c.Auth.TokenTTL,
		ids,
		c.Cipher.Algorithm, c.Cipher.Padding, c.Cipher.UseMDS, c.Cipher.CacheSize,
		c.Log.Level,
	)
}
