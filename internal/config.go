package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Convert  ConvertConfig     `yaml:"convert"`
	Engine   EngineConfig      `yaml:"engine"`
	Manifest ManifestConfig    `yaml:"manifest"`
	Auth     AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Convert.Validate(); err != nil {
		return err
	}
	if err := c.Engine.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration for serve mode.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns the HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// ConvertConfig holds conversion output settings.
//
// ImageLinkPrefix and AttachmentLinkPrefix are the org link-abbreviation
// names emitted for image and PDF embeds; they must match the abbreviations
// configured in the consuming org-roam setup.
type ConvertConfig struct {
	ImageLinkPrefix      string `yaml:"image_link_prefix"`
	AttachmentLinkPrefix string `yaml:"attachment_link_prefix"`
}

// Validate validates the conversion configuration.
func (c *ConvertConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ImageLinkPrefix, validation.Required),
		validation.Field(&c.AttachmentLinkPrefix, validation.Required),
	)
}

// EngineConfig holds the external conversion engine invocation settings.
type EngineConfig struct {
	Binary string `yaml:"binary"`
	From   string `yaml:"from"`
	To     string `yaml:"to"`
	Wrap   string `yaml:"wrap"`
}

// Validate validates the engine configuration.
func (c *EngineConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Binary, validation.Required),
		validation.Field(&c.From, validation.Required),
		validation.Field(&c.To, validation.Required),
	)
}

// ManifestConfig holds the conversion manifest database path. An empty path
// disables the manifest.
type ManifestConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig holds authentication configuration for serve mode.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Convert: ConvertConfig{
			ImageLinkPrefix:      "org-roam-images",
			AttachmentLinkPrefix: "org-roam-attachments",
		},
		Engine: EngineConfig{
			Binary: "pandoc",
			From:   "markdown-tex_math_dollars-auto_identifiers",
			To:     "org",
			Wrap:   "preserve",
		},
		Manifest: ManifestConfig{
			Path: "raido.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
