// Package config holds the process-wide configuration. It is loaded once
// at startup and read-only afterwards.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the full server configuration.
type Config struct {
	Port string `env:"PORT" env-default:"5000" yaml:"port"`

	// SiteURL is the public base URL of the published site, without a
	// trailing slash.
	SiteURL string `env:"SITE_URL" yaml:"site_url"`

	// PostPath is the storage directory for titled posts, MicroPostPath
	// the one for untitled micro posts. Both carry leading and trailing
	// slashes.
	PostPath      string `env:"POST_PATH" env-default:"/posts/" yaml:"post_path"`
	MicroPostPath string `env:"MICRO_POST_PATH" env-default:"/micro/" yaml:"micro_post_path"`

	// PhotoPath is the storage directory for uploaded media; PhotoURI is
	// the public URI segment they are served from.
	PhotoPath string `env:"PHOTO_PATH" env-default:"/photos/" yaml:"photo_path"`
	PhotoURI  string `env:"PHOTO_URI" env-default:"photos" yaml:"photo_uri"`

	// SetDate enables the date metadata line.
	SetDate bool `env:"SET_DATE" env-default:"true" yaml:"set_date"`

	// DefaultTag is emitted as the tags line when a post carries no
	// category. Empty means no fallback.
	DefaultTag string `env:"DEFAULT_TAG" yaml:"default_tag"`

	// MediaEndpoint is the advertised media endpoint URL, if any.
	MediaEndpoint string `env:"MEDIA_ENDPOINT" yaml:"media_endpoint"`

	// SyndicateTo lists the syndication target identifiers advertised in
	// q=config and q=syndicate-to responses.
	SyndicateTo []string `env:"SYNDICATE_TO" yaml:"syndicate_to"`

	// TokenEndpoint is the IndieAuth token endpoint bearer tokens are
	// verified against; Me is the site identity the token must match.
	TokenEndpoint string `env:"TOKEN_ENDPOINT" env-default:"https://tokens.indieauth.com/token" yaml:"token_endpoint"`
	Me            string `env:"ME" yaml:"me"`

	// StorageBackend selects the cloud storage implementation
	// ("dropbox" or "s3").
	StorageBackend string `env:"STORAGE_BACKEND" env-default:"dropbox" yaml:"storage_backend"`

	Dropbox  DropboxConfig  `yaml:"dropbox"`
	S3       S3Config       `yaml:"s3"`
	Mastodon MastodonConfig `yaml:"mastodon"`
}

// DropboxConfig configures the Dropbox storage backend.
type DropboxConfig struct {
	Token string `env:"DROPBOX_TOKEN" yaml:"token"`
}

// S3Config configures the S3 storage backend.
type S3Config struct {
	Endpoint        string `env:"AWS_S3_ENDPOINT" yaml:"endpoint"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID" yaml:"access_key_id"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" yaml:"secret_access_key"`
	Bucket          string `env:"AWS_S3_BUCKET" yaml:"bucket"`
	Region          string `env:"AWS_S3_REGION" env-default:"us-east-1" yaml:"region"`
	UsePathStyle    bool   `env:"AWS_S3_USE_PATH_STYLE" env-default:"false" yaml:"use_path_style"`
}

// MastodonConfig configures syndication. Instance is both the API base
// URL and the identifier matched against requested syndication targets;
// an empty instance disables syndication.
type MastodonConfig struct {
	Instance string `env:"MASTODON_INSTANCE" yaml:"instance"`
	Token    string `env:"MASTODON_TOKEN" yaml:"token"`
}

// Load reads configuration from an optional YAML file (CONFIG_FILE) with
// environment variables taking precedence.
func Load() (*Config, error) {
	var cfg Config

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.SiteURL == "" {
		return errors.New("site URL is required")
	}

	switch c.StorageBackend {
	case "dropbox":
		if c.Dropbox.Token == "" {
			return errors.New("dropbox token is required for the dropbox backend")
		}
	case "s3":
		if c.S3.Bucket == "" {
			return errors.New("bucket is required for the s3 backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}

	if c.Mastodon.Instance != "" && c.Mastodon.Token == "" {
		return errors.New("mastodon token is required when an instance is configured")
	}

	return nil
}
