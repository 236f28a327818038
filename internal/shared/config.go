package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/oauth2"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Transfer    TransferConfig    `toml:"transfer"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
	Amazon  AmazonConfig  `toml:"amazon"`
}

// OAuthCredentials holds the client registration and the last issued token for one service.
type OAuthCredentials struct {
	ClientID     string    `toml:"client_id"`
	ClientSecret string    `toml:"client_secret"`
	RedirectURI  string    `toml:"redirect_uri"`
	AccessToken  string    `toml:"access_token,omitempty"`
	RefreshToken string    `toml:"refresh_token,omitempty"`
	Expiry       time.Time `toml:"expiry,omitzero"`
}

// SpotifyConfig contains Spotify API credentials.
type SpotifyConfig struct {
	OAuthCredentials
}

// AmazonConfig contains Amazon Music API credentials.
type AmazonConfig struct {
	OAuthCredentials
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains settings for the local OAuth callback server.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// TransferConfig tunes the transfer pipeline.
type TransferConfig struct {
	NamePrefix       string  `toml:"name_prefix"`       // Prepended to every destination playlist name
	RateLimit        float64 `toml:"rate_limit"`        // Destination requests per second
	ReuseDestination bool    `toml:"reuse_destination"` // Reuse playlists left empty by a failed populate stage
}

// Map returns the credentials in the shape the service constructors expect.
func (c OAuthCredentials) Map() map[string]string {
	m := map[string]string{
		"client_id":     c.ClientID,
		"client_secret": c.ClientSecret,
		"redirect_uri":  c.RedirectURI,
	}
	if c.AccessToken != "" {
		m["access_token"] = c.AccessToken
	}
	if c.RefreshToken != "" {
		m["refresh_token"] = c.RefreshToken
	}
	if !c.Expiry.IsZero() {
		m["expiry"] = c.Expiry.Format(time.RFC3339)
	}
	return m
}

// Map adds the API key and base URL to the OAuth credentials.
func (c AmazonConfig) Map() map[string]string {
	m := c.OAuthCredentials.Map()
	if c.APIKey != "" {
		m["api_key"] = c.APIKey
	}
	if c.BaseURL != "" {
		m["base_url"] = c.BaseURL
	}
	return m
}

// HasToken reports whether an access token has been stored.
func (c OAuthCredentials) HasToken() bool {
	return c.AccessToken != ""
}

// Token rebuilds the stored [oauth2.Token], or nil when none is stored.
func (c OAuthCredentials) Token() *oauth2.Token {
	if !c.HasToken() {
		return nil
	}
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       c.Expiry,
	}
}

// Update stores a freshly issued token.
func (c *OAuthCredentials) Update(token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty token", ErrInvalidCredentials)
	}
	c.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		c.RefreshToken = token.RefreshToken
	}
	c.Expiry = token.Expiry
	return nil
}

// Clear drops the stored token, keeping the client registration.
func (c *OAuthCredentials) Clear() {
	c.AccessToken = ""
	c.RefreshToken = ""
	c.Expiry = time.Time{}
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// SaveConfig writes config to path as TOML.
func SaveConfig(path string, config *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
