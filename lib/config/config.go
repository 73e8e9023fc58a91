// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/bookmarks/lib/ref"
)

// EnvironmentVariable names the variable Load reads the config path from.
const EnvironmentVariable = "BOOKMARKS_CONFIG"

// Config is the complete bookmarks configuration.
type Config struct {
	Matrix  MatrixConfig  `yaml:"matrix"`
	Paths   PathsConfig   `yaml:"paths"`
	Archive ArchiveConfig `yaml:"archive"`
}

// MatrixConfig locates the homeserver and the credentials to use.
type MatrixConfig struct {
	// Homeserver is the client-server API base URL.
	Homeserver string `yaml:"homeserver"`
	// UserID is the fully-qualified user whose account data holds the
	// bookmarks, such as "@alice:example.com".
	UserID string `yaml:"user_id"`
	// TokenFile holds the access token, one line. "-" reads stdin.
	TokenFile string `yaml:"token_file"`
}

// PathsConfig holds local filesystem locations.
type PathsConfig struct {
	// Root is the base directory for local state.
	Root string `yaml:"root"`
	// Index is the SQLite index file.
	Index string `yaml:"index"`
	// Archives is the default directory for exports.
	Archives string `yaml:"archives"`
}

// ArchiveConfig controls export encoding.
type ArchiveConfig struct {
	// Compression is "zstd", "lz4" or "none".
	Compression string `yaml:"compression"`
	// Recipients are age X25519 public keys exports are encrypted to.
	Recipients []string `yaml:"recipients"`
	// IdentityFile is the age identity used to open encrypted imports.
	IdentityFile string `yaml:"identity_file"`
}

// Default returns a Config with every path filled in under
// ~/.local/share/bookmarks. The Matrix section has no defaults.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultRoot := filepath.Join(homeDir, ".local", "share", "bookmarks")

	return &Config{
		Paths: PathsConfig{
			Root:     defaultRoot,
			Index:    "${BOOKMARKS_ROOT}/index.db",
			Archives: "${BOOKMARKS_ROOT}/archives",
		},
		Archive: ArchiveConfig{
			Compression: "zstd",
		},
	}
}

// Load reads the file named by BOOKMARKS_CONFIG.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your bookmarks.yaml, or use --config", EnvironmentVariable)
	}
	return LoadFile(configPath)
}

// LoadFile reads configuration from path over the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and expands path variables.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.expandVariables()
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} in path fields.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Paths.Root = expandVars(c.Paths.Root, vars)
	vars["BOOKMARKS_ROOT"] = c.Paths.Root

	c.Paths.Index = expandVars(c.Paths.Index, vars)
	c.Paths.Archives = expandVars(c.Paths.Archives, vars)
	c.Matrix.TokenFile = expandVars(c.Matrix.TokenFile, vars)
	c.Archive.IdentityFile = expandVars(c.Archive.IdentityFile, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		name, defaultValue := parts[1], parts[2]
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

var compressionNames = []string{"zstd", "lz4", "none"}

// Validate checks the fields every command relies on. Matrix settings
// are checked only by commands that talk to a homeserver, through
// ValidateMatrix.
func (c *Config) Validate() error {
	var errs []error
	if c.Paths.Root == "" {
		errs = append(errs, fmt.Errorf("paths.root is required"))
	}
	if c.Paths.Index == "" {
		errs = append(errs, fmt.Errorf("paths.index is required"))
	}
	if !slices.Contains(compressionNames, c.Archive.Compression) {
		errs = append(errs, fmt.Errorf("archive.compression must be one of: %v", compressionNames))
	}
	return errors.Join(errs...)
}

// ValidateMatrix checks the matrix section.
func (c *Config) ValidateMatrix() error {
	var errs []error
	if c.Matrix.Homeserver == "" {
		errs = append(errs, fmt.Errorf("matrix.homeserver is required"))
	} else if parsed, err := url.Parse(c.Matrix.Homeserver); err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		errs = append(errs, fmt.Errorf("matrix.homeserver must be an http or https URL, got %q", c.Matrix.Homeserver))
	}
	if _, err := ref.ParseUserID(c.Matrix.UserID); err != nil {
		errs = append(errs, fmt.Errorf("matrix.user_id: %w", err))
	}
	if c.Matrix.TokenFile == "" {
		errs = append(errs, fmt.Errorf("matrix.token_file is required"))
	}
	return errors.Join(errs...)
}

// UserID returns the parsed matrix.user_id.
func (c *Config) UserID() (ref.UserID, error) {
	return ref.ParseUserID(c.Matrix.UserID)
}

// EnsurePaths creates the root, index parent and archive directories.
func (c *Config) EnsurePaths() error {
	for _, path := range []string{c.Paths.Root, filepath.Dir(c.Paths.Index), c.Paths.Archives} {
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
	}
	return nil
}
